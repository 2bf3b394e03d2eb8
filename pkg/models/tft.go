package models

// TemporalFusionTransformer is the attention variant of the recurrent
// forecaster: each decoder step attends over the full history of encoder
// states, and the readout sees the decoder state concatenated with the
// attention context.
type TemporalFusionTransformer struct {
	*TimeseriesNeuralNet
}

// NewTemporalFusionTransformer builds a temporal fusion forecaster from
// cfg.
func NewTemporalFusionTransformer(cfg Config) *TemporalFusionTransformer {
	cfg.defaults()
	net := &recurrentNet{hidden: cfg.HiddenSize, seed: cfg.Seed, attention: true}
	return &TemporalFusionTransformer{TimeseriesNeuralNet: newBase(cfg, net)}
}
