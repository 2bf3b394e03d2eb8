package models

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/ramonamezquita/deepts/pkg/nn"
	"github.com/ramonamezquita/deepts/pkg/timeseries"
)

// Seq2Seq is an encoder-decoder recurrent forecaster. The encoder folds
// the history into a hidden state with a fixed random tanh recurrence
// (echo-state style); the decoder rolls the state forward with the known
// future inputs; a trained linear readout maps each decoder state to the
// targets.
type Seq2Seq struct {
	*TimeseriesNeuralNet
}

// NewSeq2Seq builds a sequence-to-sequence forecaster from cfg.
func NewSeq2Seq(cfg Config) *Seq2Seq {
	cfg.defaults()
	net := &recurrentNet{hidden: cfg.HiddenSize, seed: cfg.Seed}
	return &Seq2Seq{TimeseriesNeuralNet: newBase(cfg, net)}
}

// recurrentNet implements the shared encoder-decoder recurrence. With
// attention enabled it also returns an attention context over the encoder
// states per decoder step (used by the temporal fusion transformer).
type recurrentNet struct {
	hidden    int
	seed      int64
	attention bool

	win  *mat.Dense // hidden × encoder input
	wdec *mat.Dense // hidden × decoder input
	wrec *mat.Dense // hidden × hidden
	wq   *mat.Dense // hidden × decoder input, attention query
}

func (n *recurrentNet) Features(s timeseries.Sample) ([][]float64, error) {
	enc := inputRows(s, timeseries.EncoderCont, timeseries.EncoderCat, s.EncoderLen())
	dec := inputRows(s, timeseries.DecoderCont, timeseries.DecoderCat, s.DecoderLen())
	n.ensureInit(rowDim(enc), rowDim(dec))

	h := mat.NewVecDense(n.hidden, nil)
	var encStates [][]float64
	for _, x := range enc {
		h = n.cell(n.win, x, h)
		if n.attention {
			encStates = append(encStates, vecData(h))
		}
	}

	out := make([][]float64, len(dec))
	for i, d := range dec {
		h = n.cell(n.wdec, d, h)
		state := vecData(h)
		if !n.attention {
			out[i] = state
			continue
		}
		ctx := n.attend(d, encStates)
		feat := make([]float64, 0, 2*n.hidden)
		feat = append(feat, state...)
		feat = append(feat, ctx...)
		out[i] = feat
	}
	return out, nil
}

// cell computes tanh(W x + Wrec h).
func (n *recurrentNet) cell(w *mat.Dense, x []float64, h *mat.VecDense) *mat.VecDense {
	next := mat.NewVecDense(n.hidden, nil)
	next.MulVec(n.wrec, h)
	if w != nil && len(x) > 0 {
		tmp := mat.NewVecDense(n.hidden, nil)
		tmp.MulVec(w, mat.NewVecDense(len(x), x))
		next.AddVec(next, tmp)
	}
	for i := 0; i < n.hidden; i++ {
		next.SetVec(i, nn.Tanh(next.AtVec(i)))
	}
	return next
}

// attend computes a softmax attention context over the encoder states,
// scaled by sqrt of the hidden size.
func (n *recurrentNet) attend(d []float64, encStates [][]float64) []float64 {
	ctx := make([]float64, n.hidden)
	if len(encStates) == 0 {
		return ctx
	}
	query := make([]float64, n.hidden)
	if n.wq != nil && len(d) > 0 {
		q := mat.NewVecDense(n.hidden, nil)
		q.MulVec(n.wq, mat.NewVecDense(len(d), d))
		copy(query, vecData(q))
	}
	scores := make([]float64, len(encStates))
	scale := 1 / math.Sqrt(float64(n.hidden))
	for t, hEnc := range encStates {
		dot := 0.0
		for i := range query {
			dot += query[i] * hEnc[i]
		}
		scores[t] = dot * scale
	}
	attn := nn.Softmax(scores)
	for t, hEnc := range encStates {
		for i := range ctx {
			ctx[i] += attn[t] * hEnc[i]
		}
	}
	return ctx
}

func (n *recurrentNet) ensureInit(encDim, decDim int) {
	if n.wrec != nil {
		return
	}
	rng := rand.New(rand.NewSource(n.seed))
	n.wrec = randomDense(n.hidden, n.hidden, rng)
	if encDim > 0 {
		n.win = randomDense(n.hidden, encDim, rng)
	}
	if decDim > 0 {
		n.wdec = randomDense(n.hidden, decDim, rng)
		if n.attention {
			n.wq = randomDense(n.hidden, decDim, rng)
		}
	}
}

// randomDense fills a matrix with normal weights scaled by 1/sqrt(cols),
// keeping the recurrence contractive.
func randomDense(rows, cols int, rng *rand.Rand) *mat.Dense {
	data := make([]float64, rows*cols)
	scale := 1 / math.Sqrt(float64(cols))
	for i := range data {
		data[i] = rng.NormFloat64() * scale
	}
	return mat.NewDense(rows, cols, data)
}

func vecData(v *mat.VecDense) []float64 {
	out := make([]float64, v.Len())
	copy(out, v.RawVector().Data)
	return out
}

// inputRows concatenates the continuous and categorical tensors row-wise
// into length rows. Roles with no columns contribute nothing; when both
// are absent the rows are empty vectors.
func inputRows(s timeseries.Sample, contName, catName string, length int) [][]float64 {
	cont := sampleFloats(s, contName)
	cat := sampleFloats(s, catName)
	out := make([][]float64, length)
	for r := range out {
		var row []float64
		if cont != nil {
			row = append(row, cont[r]...)
		}
		if cat != nil {
			row = append(row, cat[r]...)
		}
		out[r] = row
	}
	return out
}

func rowDim(rows [][]float64) int {
	if len(rows) == 0 {
		return 0
	}
	return len(rows[0])
}
