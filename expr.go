package xlexport

import (
	"fmt"
	"strings"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// ExpressionEvaluator runs computed-column and formatter expressions against
// a row environment.
type ExpressionEvaluator interface {
	Evaluate(expression string, env map[string]any) (any, error)
	IsConditionTrue(condition string, env map[string]any) (bool, error)
}

// NewExpressionEvaluator returns an expr-lang evaluator. Programs are compiled
// once per expression text; the evaluator is safe for concurrent use.
func NewExpressionEvaluator() ExpressionEvaluator {
	return &programCache{programs: make(map[string]*vm.Program)}
}

type programCache struct {
	mu       sync.RWMutex
	programs map[string]*vm.Program
}

func (c *programCache) Evaluate(expression string, env map[string]any) (any, error) {
	expression = strings.TrimSpace(expression)
	if expression == "" {
		return nil, nil
	}
	program, err := c.program(expression)
	if err != nil {
		return nil, err
	}
	out, err := expr.Run(program, env)
	if err != nil {
		return nil, fmt.Errorf("run %q: %w", expression, err)
	}
	return out, nil
}

// IsConditionTrue treats nil (an absent row key) as false.
func (c *programCache) IsConditionTrue(condition string, env map[string]any) (bool, error) {
	out, err := c.Evaluate(condition, env)
	if err != nil {
		return false, err
	}
	switch v := out.(type) {
	case nil:
		return false, nil
	case bool:
		return v, nil
	default:
		return false, fmt.Errorf("condition %q yields %T, want bool", condition, out)
	}
}

func (c *programCache) program(expression string) (*vm.Program, error) {
	c.mu.RLock()
	p, ok := c.programs[expression]
	c.mu.RUnlock()
	if ok {
		return p, nil
	}
	p, err := CompileExpression(expression)
	if err != nil {
		return nil, fmt.Errorf("compile %q: %w", expression, err)
	}
	c.mu.Lock()
	c.programs[expression] = p
	c.mu.Unlock()
	return p, nil
}

// CompileExpression compiles an expression the way tables evaluate it. Row
// maps carry different keys per report, so variables are resolved at run
// time and a missing key reads as nil.
func CompileExpression(expression string) (*vm.Program, error) {
	return expr.Compile(expression,
		expr.AllowUndefinedVariables(),
		expr.Function("ratio", ratio),
	)
}

// ratio divides two numbers, yielding 0 for a zero or missing denominator so
// share columns never hold NaN.
func ratio(params ...any) (any, error) {
	if len(params) != 2 {
		return nil, fmt.Errorf("ratio takes 2 arguments, got %d", len(params))
	}
	num, ok := toNumber(params[0])
	if !ok {
		return 0.0, nil
	}
	den, ok := toNumber(params[1])
	if !ok || den == 0 {
		return 0.0, nil
	}
	return num / den, nil
}

func toNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	case float32:
		return float64(n), true
	}
	return 0, false
}

// textPart is a literal run of text or, when isExpr is set, the source of an
// expression found between the delimiters.
type textPart struct {
	src    string
	isExpr bool
}

// splitText cuts s into literal and expression parts. Nested openers must
// balance; an opener without its closer is an error.
func splitText(s, opener, closer string) ([]textPart, error) {
	var parts []textPart
	for {
		start := strings.Index(s, opener)
		if start < 0 {
			break
		}
		body := s[start+len(opener):]
		end := closingIndex(body, opener, closer)
		if end < 0 {
			return nil, fmt.Errorf("unterminated %s in %q", opener, s)
		}
		if start > 0 {
			parts = append(parts, textPart{src: s[:start]})
		}
		parts = append(parts, textPart{src: body[:end], isExpr: true})
		s = body[end+len(closer):]
	}
	if s != "" {
		parts = append(parts, textPart{src: s})
	}
	return parts, nil
}

func closingIndex(s, opener, closer string) int {
	depth := 0
	for i := 0; i+len(closer) <= len(s); i++ {
		switch {
		case strings.HasPrefix(s[i:], opener):
			depth++
		case strings.HasPrefix(s[i:], closer):
			if depth == 0 {
				return i
			}
			depth--
		}
	}
	return -1
}
