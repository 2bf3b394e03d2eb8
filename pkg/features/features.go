// Package features groups time series column names by modelling role.
package features

// Features assigns dataframe columns to modelling roles. Role slices are
// mutually assigned by the caller; nothing here validates them against the
// underlying dataframe.
type Features struct {
	Target                         []string
	StaticCategoricals             []string
	StaticReals                    []string
	TimeVaryingKnownCategoricals   []string
	TimeVaryingKnownReals          []string
	TimeVaryingUnknownCategoricals []string
	TimeVaryingUnknownReals        []string
}

// New builds a Features value with every nil role normalized to an empty
// slice, so that Reals and Categoricals never concatenate nils.
func New(f Features) Features {
	f.Target = orEmpty(f.Target)
	f.StaticCategoricals = orEmpty(f.StaticCategoricals)
	f.StaticReals = orEmpty(f.StaticReals)
	f.TimeVaryingKnownCategoricals = orEmpty(f.TimeVaryingKnownCategoricals)
	f.TimeVaryingKnownReals = orEmpty(f.TimeVaryingKnownReals)
	f.TimeVaryingUnknownCategoricals = orEmpty(f.TimeVaryingUnknownCategoricals)
	f.TimeVaryingUnknownReals = orEmpty(f.TimeVaryingUnknownReals)
	return f
}

func orEmpty(ls []string) []string {
	if ls == nil {
		return []string{}
	}
	return ls
}

// TargetNames returns the target columns, always as a slice even when a
// single target was configured.
func (f Features) TargetNames() []string {
	return orEmpty(f.Target)
}

// Reals returns the continuous variables as used for modelling, in fixed
// role order: static, known, unknown.
func (f Features) Reals() []string {
	out := make([]string, 0, len(f.StaticReals)+len(f.TimeVaryingKnownReals)+len(f.TimeVaryingUnknownReals))
	out = append(out, f.StaticReals...)
	out = append(out, f.TimeVaryingKnownReals...)
	out = append(out, f.TimeVaryingUnknownReals...)
	return out
}

// Categoricals returns the categorical variables as used for modelling, in
// fixed role order: static, known, unknown.
func (f Features) Categoricals() []string {
	out := make([]string, 0, len(f.StaticCategoricals)+len(f.TimeVaryingKnownCategoricals)+len(f.TimeVaryingUnknownCategoricals))
	out = append(out, f.StaticCategoricals...)
	out = append(out, f.TimeVaryingKnownCategoricals...)
	out = append(out, f.TimeVaryingUnknownCategoricals...)
	return out
}

// IsTarget reports whether name is one of the target columns.
func (f Features) IsTarget(name string) bool {
	for _, t := range f.Target {
		if t == name {
			return true
		}
	}
	return false
}
