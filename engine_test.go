package tidy_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/go-json-experiment/json"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhoelle/tidy"
)

func TestEngine_NormalizeJSON(t *testing.T) {
	e := tidy.New(tidy.DefaultConfig())

	v, err := e.NormalizeJSON([]byte(`{"item":"  ","date.upload":"2024-01-01","nested":{"x":"n/a","y":"value"}}`))
	require.NoError(t, err)
	c, ok := v.(*tidy.Container)
	require.True(t, ok)

	assert.Nil(t, c.Get("item"))
	assert.True(t, c.Has("item"))
	assert.Equal(t, "2024-01-01", c.Get("date.upload"))
	assert.Equal(t, "value", c.Get("nested.y"))
	assert.Nil(t, c.Get("nested.x"))

	out, err := c.ToText(false)
	require.NoError(t, err)
	assert.JSONEq(t, `{"item":null,"date.upload":"2024-01-01","nested":{"x":null,"y":"value"}}`, out)
	assert.Equal(t, []string{"item", "date.upload", "nested"}, c.KeyList())
}

func TestEngine_Normalize(t *testing.T) {
	e := tidy.New(tidy.DefaultConfig())

	t.Run("scalars are not wrapped", func(t *testing.T) {
		for in, want := range map[any]any{" x ": "x", "None": nil, 4: 4, true: true} {
			got, err := e.Normalize(in)
			require.NoError(t, err)
			assert.Equal(t, want, got, "%#v", in)
		}
		got, err := e.Normalize(nil)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("composites keep keys and shape", func(t *testing.T) {
		got, err := e.Normalize([]any{" a ", "-", []any{}, map[string]any{"k": "N/A"}})
		require.NoError(t, err)
		c := got.(*tidy.Container)
		assert.True(t, c.IsList())
		assert.Equal(t, `["a",null,[],{"k":null}]`, c.String())
	})

	t.Run("structs", func(t *testing.T) {
		got, err := e.Normalize(&point{X: 1, Y: 2, Note: " n.a "})
		require.NoError(t, err)
		assert.Equal(t, `{"x":1,"y":2,"note":null}`, got.(*tidy.Container).String())
	})

	t.Run("does not modify its input", func(t *testing.T) {
		in := tidy.MustContainer(map[string]any{"a": " x "})
		_, err := e.Normalize(in)
		require.NoError(t, err)
		assert.Equal(t, " x ", in.Get("a"))
	})
}

func TestEngine_ConfigIsCopied(t *testing.T) {
	cfg := tidy.DefaultConfig()
	e := tidy.New(cfg)
	cfg.NAValues[0] = "changed"

	got := e.Config()
	assert.Equal(t, "na", got.NAValues[0])
	got.NAValues[0] = "changed again"
	assert.Equal(t, "na", e.Config().NAValues[0])
}

func TestEngine_NormalizeMap(t *testing.T) {
	e := tidy.New(tidy.DefaultConfig())

	m, err := e.NormalizeMap(map[string]any{"b": "", "a": map[string]any{"c": " d "}})
	require.NoError(t, err)
	assert.Equal(t, 2, m.Len())
	assert.Equal(t, "a", m.Oldest().Key)

	b, ok := m.Get("b")
	assert.True(t, ok)
	assert.Nil(t, b)

	a, _ := m.Get("a")
	require.IsType(t, &tidy.Container{}, a)
	assert.Equal(t, "d", a.(*tidy.Container).Get("c"))

	_, err = e.NormalizeMap("scalar")
	var target tidy.ErrInvalidInput
	assert.True(t, errors.As(err, &target))
}

func TestEngine_NormalizeSliceAndCollection(t *testing.T) {
	e := tidy.New(tidy.DefaultConfig())

	s, err := e.NormalizeSlice([]any{" a ", "null", []any{"n a"}})
	require.NoError(t, err)
	require.Len(t, s, 3)
	assert.Equal(t, "a", s[0])
	assert.Nil(t, s[1])
	assert.Equal(t, `[null]`, s[2].(*tidy.Container).String())

	c := mustParse(t, `{"z":" none ","y":{"x":"-"},"w":"ok"}`)
	got, err := e.NormalizeCollection(c)
	require.NoError(t, err)
	assert.Equal(t, `{"z":null,"y":{"x":null},"w":"ok"}`, got.String())
	assert.Equal(t, `{"z":" none ","y":{"x":"-"},"w":"ok"}`, c.String())
}

func TestEngine_NormalizeYAML(t *testing.T) {
	e := tidy.New(tidy.DefaultConfig())

	v, err := e.NormalizeYAML([]byte("b: ' n/a '\na:\n  - x\n  - ''\n"))
	require.NoError(t, err)
	assert.Equal(t, `{"b":null,"a":["x",null]}`, v.(*tidy.Container).String())

	v, err = e.NormalizeYAML([]byte("' n/a '"))
	require.NoError(t, err)
	assert.Nil(t, v)

	v, err = e.NormalizeYAML(nil)
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestEngine_errors(t *testing.T) {
	var logs bytes.Buffer
	e := tidy.New(tidy.DefaultConfig(), tidy.WithLogger(zerolog.New(&logs)), tidy.WithMaxDepth(3))

	_, err := e.Normalize([]any{[]any{[]any{[]any{[]any{"deep"}}}}})
	var tooDeep tidy.ErrStructureTooDeep
	require.True(t, errors.As(err, &tooDeep))
	assert.Equal(t, 3, tooDeep.Limit)
	assert.Contains(t, logs.String(), "normalize failed")

	cyclic := map[string]any{}
	cyclic["self"] = cyclic
	_, err = tidy.New(tidy.DefaultConfig()).Normalize(cyclic)
	assert.True(t, errors.As(err, &tooDeep))

	_, err = e.Normalize(map[string]any{"f": func() {}})
	var invalid tidy.ErrInvalidInput
	assert.True(t, errors.As(err, &invalid))

	_, err = e.NormalizeJSON([]byte(`{"a":`))
	assert.Error(t, err)
}

func TestEngine_JSONOptions(t *testing.T) {
	e := tidy.New(tidy.DefaultConfig())

	var doc struct {
		Name  string `json:"name"`
		Meta  any    `json:"meta"`
		Label any    `json:"label"`
	}
	in := `{"name":" n/a ","meta":{"b":"-","a":[" x "]},"label":"NULL"}`
	require.NoError(t, json.Unmarshal([]byte(in), &doc, e.JSONOptions()))

	assert.Equal(t, " n/a ", doc.Name)
	assert.Nil(t, doc.Label)
	meta, ok := doc.Meta.(*tidy.Container)
	require.True(t, ok)
	assert.Equal(t, `{"b":null,"a":["x"]}`, meta.String())
}
