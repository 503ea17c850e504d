package domain

// ProgressFunc receives completion percentages in [0, 100].
type ProgressFunc func(percent float64)
