package tidy_test

import (
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhoelle/tidy"
)

// account implements both Mapper and Serializer; Mapper wins
type account struct {
	ID   int
	Name string
}

func (a account) ToMap() map[string]any {
	return map[string]any{"id": a.ID, "name": a.Name, "source": "mapper"}
}

func (a account) Serialize() any {
	return map[string]any{"source": "serializer"}
}

type money struct {
	Cents int
}

func (m money) Serialize() any {
	return []any{m.Cents / 100, m.Cents % 100}
}

type code string

func (c code) Serialize() any { return string(c) }

type loop struct{}

func (loop) Serialize() any { return loop{} }

// blank serializes to an empty sequence
type blank struct{}

func (blank) Serialize() any { return []any{} }

type badge struct {
	Label string
}

func (b *badge) ToMap() map[string]any {
	return map[string]any{"label": strings.ToUpper(b.Label)}
}

type audit struct {
	CreatedBy string  `json:"created_by"`
	Rate      float64 `json:"rate"`
}

// ledger holds object-like fields that convert by their own capability
type ledger struct {
	Owner  account  `json:"owner"`
	Price  money    `json:"price"`
	Badge  badge    `json:"badge"`
	Rate   float64  `json:"rate"`
	Big    uint64   `json:"big"`
	Hidden string   `json:"-"`
	Ref    *account `json:"ref,omitempty"`
	audit
}

func TestProbe(t *testing.T) {
	tests := []struct {
		v    any
		want tidy.Capability
	}{
		{account{}, tidy.CapabilityMapper},
		{&account{}, tidy.CapabilityMapper},
		{money{}, tidy.CapabilitySerializer},
		{point{}, tidy.CapabilityFields},
		{&point{}, tidy.CapabilityFields},
		{time.Now(), tidy.CapabilityNone},
		{map[string]any{}, tidy.CapabilityNone},
		{"text", tidy.CapabilityNone},
		{tidy.Empty(), tidy.CapabilityNone},
		{nil, tidy.CapabilityNone},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tidy.Probe(tt.v), "%T", tt.v)
	}
	assert.Equal(t, "serializer", tidy.CapabilitySerializer.String())
	assert.Equal(t, 4, tidy.CapabilityTotal)
}

func TestNewContainer_capabilities(t *testing.T) {
	c := tidy.MustContainer(map[string]any{
		"account": account{ID: 7, Name: "x"},
		"price":   money{Cents: 1234},
		"code":    code("AB"),
	})

	assert.Equal(t, "mapper", c.Get("account.source"))
	assert.Equal(t, 7, c.Get("account.id"))
	assert.Equal(t, 12, c.Get("price.0"))
	assert.Equal(t, 34, c.Get("price.1"))
	assert.Equal(t, "AB", c.Get("code"))

	_, err := tidy.NewContainer(loop{})
	var target tidy.ErrInvalidInput
	assert.True(t, errors.As(err, &target))
}

func TestFormatKey(t *testing.T) {
	tests := []struct {
		v    any
		want string
	}{
		{nil, ""},
		{true, "1"},
		{false, "0"},
		{12, "12"},
		{uint8(3), "3"},
		{2.0, "2"},
		{2.5, "2.5"},
		{"k", "k"},
		{code("c"), "c"},
		{time.Duration(0), "0s"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tidy.FormatKey(tt.v), "%#v", tt.v)
	}
}

func TestEngine_capabilities(t *testing.T) {
	e := tidy.New(tidy.DefaultConfig())
	v, err := e.Normalize(code(" n/a "))
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestNewContainer_structFieldsKeepGoValues(t *testing.T) {
	c := tidy.MustContainer(ledger{
		Owner:  account{ID: 7},
		Price:  money{Cents: 250},
		Badge:  badge{Label: "vip"},
		Rate:   1.0,
		Big:    math.MaxUint64,
		Hidden: "x",
		audit:  audit{CreatedBy: "ops", Rate: 9},
	})

	assert.Equal(t, []string{"owner", "price", "badge", "rate", "big", "created_by"}, c.KeyList())
	assert.Equal(t, "mapper", c.Get("owner.source"))
	assert.Equal(t, 7, c.Get("owner.id"))
	assert.Equal(t, 2, c.Get("price.0"))
	assert.Equal(t, 50, c.Get("price.1"))
	assert.Equal(t, "VIP", c.Get("badge.label"))
	assert.Equal(t, 1.0, c.Get("rate"))
	assert.Equal(t, uint64(math.MaxUint64), c.Get("big"))
	assert.Equal(t, "ops", c.Get("created_by"))
	assert.False(t, c.Has("ref"))
	assert.False(t, c.Has("Hidden"))
}

func TestEngine_nestedMapperField(t *testing.T) {
	e := tidy.New(tidy.DefaultConfig())
	v, err := e.Normalize(map[string]any{"l": ledger{Owner: account{ID: 3, Name: " n/a "}}})
	require.NoError(t, err)

	c := v.(*tidy.Container)
	assert.Equal(t, "mapper", c.Get("l.owner.source"))
	assert.Equal(t, 3, c.Get("l.owner.id"))
	assert.True(t, c.Has("l.owner.name"))
	assert.Nil(t, c.Get("l.owner.name"))
	assert.Equal(t, 0.0, c.Get("l.rate"))
}

func TestSerializer_sequenceShape(t *testing.T) {
	c := tidy.MustContainer(blank{})
	assert.True(t, c.IsList())
	assert.Equal(t, "[]", c.String())

	nested := tidy.MustContainer(map[string]any{"empty": blank{}})
	assert.Equal(t, `{"empty":[]}`, nested.String())

	e := tidy.New(tidy.DefaultConfig())
	v, err := e.Normalize(map[string]any{"empty": blank{}})
	require.NoError(t, err)
	assert.Equal(t, `{"empty":[]}`, v.(*tidy.Container).String())
}
