package xlexport

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContext_RowShadowsVars(t *testing.T) {
	ctx := NewContext(map[string]any{RowVar: "outer", "total": 10.0})
	rec := map[string]any{"count": 4.0}
	ctx.BindRow(rec, 2)

	v, err := ctx.Evaluate("row.count / total")
	require.NoError(t, err)
	assert.InDelta(t, 0.4, v, 1e-9)
	assert.Equal(t, 2, ctx.Var(IndexVar))

	// computed values written into the bound record are visible at once
	rec["share"] = 0.4
	ok, err := ctx.IsConditionTrue("row.share > 0.3")
	require.NoError(t, err)
	assert.True(t, ok)

	ctx.Unbind()
	assert.Equal(t, "outer", ctx.Var(RowVar))
	assert.Nil(t, ctx.Var(IndexVar))
}

func TestContext_VarsAreCopied(t *testing.T) {
	vars := map[string]any{"a": 1}
	ctx := NewContext(vars)
	ctx.Define("b", 2)
	_, ok := vars["b"]
	assert.False(t, ok)
	assert.Equal(t, 2, ctx.Var("b"))

	v, err := NewContext(nil).Evaluate("1 + 1")
	require.NoError(t, err)
	assert.Equal(t, 2, v)
}

func TestContext_IsConditionTrue(t *testing.T) {
	ctx := NewContext(map[string]any{"performance": -0.25})
	ok, err := ctx.IsConditionTrue("performance < 0")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = ctx.IsConditionTrue("missing")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = ctx.IsConditionTrue("performance")
	assert.Error(t, err)
}

func TestContext_Ratio(t *testing.T) {
	ctx := NewContext(map[string]any{"total": 0, "count": 3, "half": 1.5})
	tests := []struct {
		expr string
		want float64
	}{
		{"ratio(count, 6)", 0.5},
		{"ratio(half, count)", 0.5},
		{"ratio(count, total)", 0},
		{"ratio(count, missing)", 0},
		{"ratio(missing, count)", 0},
	}
	for _, tt := range tests {
		v, err := ctx.Evaluate(tt.expr)
		require.NoError(t, err, tt.expr)
		assert.InDelta(t, tt.want, v, 1e-9, tt.expr)
	}
	_, err := ctx.Evaluate("ratio(count)")
	assert.Error(t, err)
}

func TestContext_EvaluateText(t *testing.T) {
	ctx := NewContext(map[string]any{"category": "Red", "count": 3})

	v, err := ctx.EvaluateText(" ${count} ")
	require.NoError(t, err)
	assert.Equal(t, 3, v)

	v, err = ctx.EvaluateText("Sales Trends - ${category} (${count} months)")
	require.NoError(t, err)
	assert.Equal(t, "Sales Trends - Red (3 months)", v)

	v, err = ctx.EvaluateText("${category}-${count}")
	require.NoError(t, err)
	assert.Equal(t, "Red-3", v)

	v, err = ctx.EvaluateText("plain text")
	require.NoError(t, err)
	assert.Equal(t, "plain text", v)

	_, err = ctx.EvaluateText("${count +}")
	assert.Error(t, err)
	_, err = ctx.EvaluateText("Total ${count")
	assert.Error(t, err)
}

func TestContext_CustomNotation(t *testing.T) {
	ctx := NewContext(map[string]any{"x": "y"}, WithExpressionNotation("{{", "}}"))
	v, err := ctx.EvaluateText("a {{x}} b")
	require.NoError(t, err)
	assert.Equal(t, "a y b", v)
}

type countingEvaluator struct {
	ExpressionEvaluator
	calls []string
}

func (c *countingEvaluator) Evaluate(expression string, env map[string]any) (any, error) {
	c.calls = append(c.calls, expression)
	return c.ExpressionEvaluator.Evaluate(expression, env)
}

func TestContext_WithEvaluator(t *testing.T) {
	ev := &countingEvaluator{ExpressionEvaluator: NewExpressionEvaluator()}
	ctx := NewContext(map[string]any{"category": "Rose"}, WithEvaluator(ev))

	v, err := ctx.EvaluateText("Sales - ${category}")
	require.NoError(t, err)
	assert.Equal(t, "Sales - Rose", v)
	assert.Equal(t, []string{"category"}, ev.calls)
}

func TestSplitText(t *testing.T) {
	parts, err := splitText("Total: ${a + b} of ${c}", "${", "}")
	require.NoError(t, err)
	assert.Equal(t, []textPart{
		{src: "Total: "},
		{src: "a + b", isExpr: true},
		{src: " of "},
		{src: "c", isExpr: true},
	}, parts)

	parts, err = splitText("${f(${x})}", "${", "}")
	require.NoError(t, err)
	assert.Equal(t, []textPart{{src: "f(${x})", isExpr: true}}, parts)
}

func TestExpressionEvaluator_ConcurrentCache(t *testing.T) {
	ev := NewExpressionEvaluator().(*programCache)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := ev.Evaluate("x * 2", map[string]any{"x": float64(i)})
			assert.NoError(t, err)
			assert.Equal(t, float64(i*2), v)
		}()
	}
	wg.Wait()
	assert.Len(t, ev.programs, 1)

	v, err := ev.Evaluate("  ", nil)
	require.NoError(t, err)
	assert.Nil(t, v)
}
