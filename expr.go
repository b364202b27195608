package gridcalc

import (
	"fmt"
	"math"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// Evaluator evaluates a substituted formula expression to a number.
// Implementations must be usable for many expressions over the lifetime of
// a Grid; Evaluate failures map to the "Invalid formula" cell state.
type Evaluator interface {
	Evaluate(expression string) (float64, error)
}

// exprEvaluator implements Evaluator using expr-lang/expr over a closed
// operation set: ordinary arithmetic plus the aggregate functions below.
// No other identifiers are available to an expression.
type exprEvaluator struct {
	cache sync.Map // expression string → compiled *vm.Program
}

// NewEvaluator creates the default expression evaluator.
func NewEvaluator() Evaluator {
	return &exprEvaluator{}
}

func (e *exprEvaluator) Evaluate(expression string) (float64, error) {
	program, err := e.compile(expression)
	if err != nil {
		return 0, fmt.Errorf("compile formula %q: %w", expression, err)
	}
	result, err := expr.Run(program, aggregateEnv)
	if err != nil {
		return 0, fmt.Errorf("evaluate formula %q: %w", expression, err)
	}
	v, err := toNumber(result)
	if err != nil {
		return 0, fmt.Errorf("formula %q: %w", expression, err)
	}
	// Float division by zero yields Inf/NaN rather than a runtime error.
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, fmt.Errorf("formula %q: division by zero", expression)
	}
	return v, nil
}

func (e *exprEvaluator) compile(expression string) (*vm.Program, error) {
	if cached, ok := e.cache.Load(expression); ok {
		return cached.(*vm.Program), nil
	}
	program, err := expr.Compile(expression, expr.Env(aggregateEnv))
	if err != nil {
		return nil, err
	}
	e.cache.Store(expression, program)
	return program, nil
}

// aggregateEnv holds the aggregate operations available to formulas.
// Arguments may be numbers or the nested sequences produced for range
// tokens; numeric aggregates flatten their arguments.
var aggregateEnv = map[string]any{
	"SUM": func(args ...any) (any, error) {
		nums, err := flattenNumbers(args)
		if err != nil {
			return nil, err
		}
		sum := 0.0
		for _, n := range nums {
			sum += n
		}
		return sum, nil
	},
	"COUNT": func(args ...any) (any, error) {
		nums, err := flattenNumbers(args)
		if err != nil {
			return nil, err
		}
		return float64(len(nums)), nil
	},
	"AVG": func(args ...any) (any, error) {
		nums, err := flattenNumbers(args)
		if err != nil {
			return nil, err
		}
		if len(nums) == 0 {
			return nil, fmt.Errorf("AVG of empty argument")
		}
		sum := 0.0
		for _, n := range nums {
			sum += n
		}
		return sum / float64(len(nums)), nil
	},
	"MAX": func(args ...any) (any, error) {
		nums, err := flattenNumbers(args)
		if err != nil {
			return nil, err
		}
		if len(nums) == 0 {
			return nil, fmt.Errorf("MAX of empty argument")
		}
		max := nums[0]
		for _, n := range nums[1:] {
			if n > max {
				max = n
			}
		}
		return max, nil
	},
	"MIN": func(args ...any) (any, error) {
		nums, err := flattenNumbers(args)
		if err != nil {
			return nil, err
		}
		if len(nums) == 0 {
			return nil, fmt.Errorf("MIN of empty argument")
		}
		min := nums[0]
		for _, n := range nums[1:] {
			if n < min {
				min = n
			}
		}
		return min, nil
	},
	"ROWS": func(arg any) (any, error) {
		if rows, ok := arg.([]any); ok {
			return float64(len(rows)), nil
		}
		return 1.0, nil
	},
	"COLS": func(arg any) (any, error) {
		rows, ok := arg.([]any)
		if !ok {
			return 1.0, nil
		}
		if len(rows) == 0 {
			return 0.0, nil
		}
		if first, ok := rows[0].([]any); ok {
			return float64(len(first)), nil
		}
		return float64(len(rows)), nil
	},
}

// flattenNumbers collects the numeric leaves of a possibly nested argument
// list in order.
func flattenNumbers(args []any) ([]float64, error) {
	var nums []float64
	var walk func(arg any) error
	walk = func(arg any) error {
		if items, ok := arg.([]any); ok {
			for _, item := range items {
				if err := walk(item); err != nil {
					return err
				}
			}
			return nil
		}
		n, err := toNumber(arg)
		if err != nil {
			return err
		}
		nums = append(nums, n)
		return nil
	}
	for _, arg := range args {
		if err := walk(arg); err != nil {
			return nil, err
		}
	}
	return nums, nil
}

func toNumber(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case uint64:
		return float64(n), nil
	default:
		return 0, fmt.Errorf("non-numeric result %v (%T)", v, v)
	}
}
