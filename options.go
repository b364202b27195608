package gridcalc

// Options holds configuration for a Grid.
type Options struct {
	evaluator  Evaluator
	blankValue float64
}

func defaultOptions() *Options {
	return &Options{
		evaluator:  NewEvaluator(),
		blankValue: 0,
	}
}

// Option configures a Grid.
type Option func(*Options)

// WithEvaluator sets the expression evaluator used for formulas.
func WithEvaluator(e Evaluator) Option {
	return func(o *Options) { o.evaluator = e }
}

// WithBlankValue sets the value an empty or textual subject contributes to
// a formula (default: 0).
func WithBlankValue(v float64) Option {
	return func(o *Options) { o.blankValue = v }
}
