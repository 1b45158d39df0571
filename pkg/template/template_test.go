package template

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender_SubstitutesKeys(t *testing.T) {
	tpl := Compile("http://localhost/{{id}}/{{number}}")

	out, err := tpl.Render(map[string]string{"id": "tsuboshy", "number": "1234567"})
	require.NoError(t, err)
	assert.Equal(t, "http://localhost/tsuboshy/1234567", out)
}

func TestRender_MissingKey(t *testing.T) {
	tpl := Compile("http://localhost/{{id}}/{{number}}")

	_, err := tpl.Render(map[string]string{})
	require.Error(t, err)
	assert.Equal(t, "could not find value: id", err.Error())
}

func TestRender_LiteralOnly(t *testing.T) {
	tpl := Compile("https://corvus/")

	out, err := tpl.Render(nil)
	require.NoError(t, err)
	assert.Equal(t, "https://corvus/", out)
}

func TestCompile_BraceEdgeCases(t *testing.T) {
	// Single braces inside key names, stray closers, and an unmatched
	// "{{" all degrade gracefully.
	tpl := Compile("https://corvus//{{numer{}}}/{index}}/{{{number}}}/{{item")

	out, err := tpl.Render(map[string]string{
		"numer{":  "A",
		"{number": "B",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://corvus//A}/{index}}/B}/{{item", out)
}

func TestCompile_Keys(t *testing.T) {
	tpl := Compile("{{a}}/{{b}}/{{a}}")
	assert.Equal(t, []string{"a", "b"}, tpl.Keys())
}

func TestExpandNumericRanges(t *testing.T) {
	assert.Equal(t,
		[]string{"1", "2", "3", "4", "5"},
		ExpandNumericRanges("[1..5]"))

	assert.Equal(t,
		[]string{"id-1-1", "id-1-2", "id-2-1", "id-2-2"},
		ExpandNumericRanges("id-[1..2]-[1..2]"))
}

func TestExpandNumericRanges_NoRangeIsIdentity(t *testing.T) {
	assert.Equal(t, []string{"a1234"}, ExpandNumericRanges("a1234"))
	assert.Equal(t, []string{""}, ExpandNumericRanges(""))
}

func TestExpandNumericRanges_MalformedIsLiteral(t *testing.T) {
	assert.Equal(t, []string{"[1..x]"}, ExpandNumericRanges("[1..x]"))
	assert.Equal(t, []string{"[5..1]"}, ExpandNumericRanges("[5..1]"))
	assert.Equal(t, []string{"a[12"}, ExpandNumericRanges("a[12"))
	assert.Equal(t, []string{"[]"}, ExpandNumericRanges("[]"))
}

func TestProduct(t *testing.T) {
	as := []map[string]string{{"a": "1"}, {"a": "2"}}
	bs := []map[string]string{{"b": "x"}}

	got := Product(as, bs)
	require.Len(t, got, 2)
	assert.Equal(t, map[string]string{"a": "1", "b": "x"}, got[0])
	assert.Equal(t, map[string]string{"a": "2", "b": "x"}, got[1])
}

func TestProduct_SecondSideWinsOnConflict(t *testing.T) {
	got := Product(
		[]map[string]string{{"k": "var"}},
		[]map[string]string{{"k": "param"}},
	)
	require.Len(t, got, 1)
	assert.Equal(t, "param", got[0]["k"])
}

func TestDateFormatter(t *testing.T) {
	now := time.Date(2024, 5, 6, 12, 30, 0, 0, time.UTC)
	f := NewDateFormatter(now)

	assert.Equal(t, "test/20240506/page.html", f.Apply("test/%Y%m%d/page.html"))
	assert.Equal(t, "no directives", f.Apply("no directives"))
}
