package xlexport

import (
	"fmt"
	"maps"
	"strings"
)

// Names under which a table exposes the record being written and its
// 0-based position to column and formatter expressions.
const (
	RowVar   = "row"
	IndexVar = "index"
)

// Context is the variable scope of a table or a text cell: report-level
// variables plus, while a record is bound, RowVar and IndexVar.
type Context struct {
	vars      map[string]any
	row       map[string]any
	index     int
	bound     bool
	evaluator ExpressionEvaluator
	opener    string
	closer    string

	env map[string]any // rebuilt after any change
}

// NewContext copies vars into a new Context using the evaluator and notation
// from opts.
func NewContext(vars map[string]any, opts ...Option) *Context {
	return newContext(vars, newOptions(opts))
}

func newContext(vars map[string]any, o *Options) *Context {
	c := &Context{
		vars:      maps.Clone(vars),
		evaluator: o.evaluator,
		opener:    o.notationBegin,
		closer:    o.notationEnd,
	}
	if c.vars == nil {
		c.vars = make(map[string]any)
	}
	return c
}

// Var returns a variable. A bound record shadows report variables of the same
// name.
func (c *Context) Var(name string) any {
	if c.bound {
		switch name {
		case RowVar:
			return c.row
		case IndexVar:
			return c.index
		}
	}
	return c.vars[name]
}

// Define sets a report-level variable.
func (c *Context) Define(name string, value any) {
	c.vars[name] = value
	c.env = nil
}

// BindRow exposes rec and idx to expressions until Unbind. Values added to
// rec afterwards are visible without rebinding.
func (c *Context) BindRow(rec map[string]any, idx int) {
	c.row, c.index, c.bound = rec, idx, true
	c.env = nil
}

// Unbind removes the current record.
func (c *Context) Unbind() {
	c.row, c.index, c.bound = nil, 0, false
	c.env = nil
}

// Env is the evaluation environment.
func (c *Context) Env() map[string]any {
	if c.env != nil {
		return c.env
	}
	env := maps.Clone(c.vars)
	if c.bound {
		env[RowVar] = c.row
		env[IndexVar] = c.index
	}
	c.env = env
	return env
}

// Evaluate runs an expression against Env.
func (c *Context) Evaluate(expression string) (any, error) {
	return c.evaluator.Evaluate(expression, c.Env())
}

// IsConditionTrue runs a boolean expression against Env.
func (c *Context) IsConditionTrue(condition string) (bool, error) {
	return c.evaluator.IsConditionTrue(condition, c.Env())
}

// EvaluateText interpolates the ${...} parts of s. Text that is exactly one
// expression keeps the expression's type; anything else yields a string.
func (c *Context) EvaluateText(s string) (any, error) {
	parts, err := splitText(s, c.opener, c.closer)
	if err != nil {
		return nil, err
	}
	if src, ok := soleExpression(parts); ok {
		v, err := c.Evaluate(src)
		if err != nil {
			return nil, fmt.Errorf("text %q: %w", s, err)
		}
		return v, nil
	}

	var b strings.Builder
	for _, p := range parts {
		if !p.isExpr {
			b.WriteString(p.src)
			continue
		}
		v, err := c.Evaluate(p.src)
		if err != nil {
			return nil, fmt.Errorf("text %q: %w", s, err)
		}
		if v != nil {
			fmt.Fprint(&b, v)
		}
	}
	return b.String(), nil
}

// soleExpression reports the expression when parts hold exactly one, with at
// most blank text around it.
func soleExpression(parts []textPart) (string, bool) {
	src, found := "", false
	for _, p := range parts {
		switch {
		case !p.isExpr && strings.TrimSpace(p.src) == "":
		case p.isExpr && !found:
			src, found = p.src, true
		default:
			return "", false
		}
	}
	return src, found
}
