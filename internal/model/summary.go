package model

// SummaryRow is one line of the cross-outcome comparison table, consumed
// by the external table/plot renderer.
type SummaryRow struct {
	Index       int     `csv:"index" json:"index"`
	Outcome     string  `csv:"outcome" json:"outcome"`
	Trials      int     `csv:"trials" json:"trials"`
	PooledLogOR float64 `csv:"pooled_log_or" json:"pooled_log_or"`
	CrILow      float64 `csv:"cri_2_5" json:"cri_2_5"`
	CrIHigh     float64 `csv:"cri_97_5" json:"cri_97_5"`
	ISquared    float64 `csv:"i2" json:"i2"`
	ISquaredLow float64 `csv:"i2_2_5" json:"i2_2_5"`
	ISquaredHi  float64 `csv:"i2_97_5" json:"i2_97_5"`
}
