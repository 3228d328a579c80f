package tidy

import (
	"iter"
	"strconv"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// DefaultMaxDepth is the nesting limit applied when wrapping and
// normalizing values
const DefaultMaxDepth = 512

// Container is an insertion-ordered mapping from string keys to values that
// supports exact-key and dot-path access.
//
// Every composite value stored in a Container is itself a *Container, so
// nested data can be reached with a dot-path:
//
//	c := tidy.MustContainer(map[string]any{
//		"date.upload": "2020-01-01",
//		"date":        map[string]any{"upload": "X"},
//	})
//	c.Get("date.upload")  // "2020-01-01", the exact key wins
//	c.Get(`date\.upload`) // "2020-01-01"
//	c.Get("date.missing") // nil
//
// Only Set, Unset and Forget modify a Container; every other operation
// returns a new one. A Container is not safe for concurrent mutation.
type Container struct {
	items *orderedmap.OrderedMap[string, any]

	// seq marks a Container built from a sequence, which keeps an empty
	// one list-shaped
	seq bool
}

// Empty returns a new Container with no items
func Empty() *Container {
	return &Container{items: orderedmap.New[string, any]()}
}

// emptyList returns a new Container that reports IsList while empty
func emptyList() *Container {
	c := Empty()
	c.seq = true
	return c
}

// NewContainer wraps a sequence, mapping or object-like value. Nested
// composites are wrapped recursively. Scalars and nil are rejected with
// ErrInvalidInput.
func NewContainer(v any) (*Container, error) {
	return newContainerDepth(v, 0, DefaultMaxDepth)
}

// MustContainer is like [NewContainer] but panics on error. It is meant for
// literals in tests and examples.
func MustContainer(v any) *Container {
	c, err := NewContainer(v)
	if err != nil {
		panic(err)
	}
	return c
}

func newContainerDepth(v any, depth, limit int) (*Container, error) {
	w, err := wrap(v, depth, limit)
	if err != nil {
		return nil, err
	}
	c, ok := w.(*Container)
	if !ok {
		return nil, invalidInput(v, "not a sequence, mapping or object")
	}
	return c, nil
}

// wrap applies the wrapping rule: containers are kept, composites become
// new containers, scalars are stored as they are.
func wrap(v any, depth, limit int) (any, error) {
	if depth > limit {
		return nil, ErrStructureTooDeep{Depth: depth, Limit: limit}
	}

	switch shapeOf(v) {
	case shapeNull:
		return nil, nil
	case shapeScalar:
		return scalarValue(v), nil
	case shapeContainer:
		return v, nil
	case shapeInvalid:
		return nil, invalidInput(v, "unsupported kind")
	}

	comp, scalar, ok, err := entriesOf(v)
	if err != nil {
		return nil, err
	}
	if !ok {
		return scalar, nil
	}

	c := Empty()
	c.seq = comp.seq
	for _, e := range comp.entries {
		w, err := wrap(e.value, depth+1, limit)
		if err != nil {
			return nil, err
		}
		c.items.Set(e.key, w)
	}
	return c, nil
}

// fromEntries builds a Container from values that are already wrapped
func fromEntries(entries []entry) *Container {
	c := Empty()
	for _, e := range entries {
		c.items.Set(e.key, e.value)
	}
	return c
}

// fromValues builds a list-shaped Container from values that are already
// wrapped
func fromValues(values []any) *Container {
	c := emptyList()
	for i, v := range values {
		c.items.Set(strconv.Itoa(i), v)
	}
	return c
}

func (c *Container) entries() []entry {
	out := make([]entry, 0, c.Len())
	for k, v := range c.All() {
		out = append(out, entry{key: k, value: v})
	}
	return out
}

func (c *Container) valueList() []any {
	out := make([]any, 0, c.Len())
	for _, v := range c.All() {
		out = append(out, v)
	}
	return out
}

// Len returns the number of top-level items
func (c *Container) Len() int {
	if c == nil || c.items == nil {
		return 0
	}
	return c.items.Len()
}

// All iterates over the top-level items in insertion order
func (c *Container) All() iter.Seq2[string, any] {
	return func(yield func(string, any) bool) {
		if c == nil || c.items == nil {
			return
		}
		for p := c.items.Oldest(); p != nil; p = p.Next() {
			if !yield(p.Key, p.Value) {
				return
			}
		}
	}
}

// KeyList returns the top-level keys in insertion order
func (c *Container) KeyList() []string {
	out := make([]string, 0, c.Len())
	for k := range c.All() {
		out = append(out, k)
	}
	return out
}

// IsList reports whether the keys are exactly "0".."n-1" in order. An empty
// Container is a list only if it was built from a sequence.
func (c *Container) IsList() bool {
	if c.Len() == 0 {
		return c != nil && c.seq
	}
	i := 0
	for k := range c.All() {
		if k != strconv.Itoa(i) {
			return false
		}
		i++
	}
	return true
}

// Lookup resolves key and reports whether it was found.
//
// An exact match on the top-level keys always wins, even when key contains
// dots. Otherwise key is split into segments on dots not preceded by a
// backslash, each segment is unescaped, and the segments are resolved one
// nesting level at a time.
func (c *Container) Lookup(key string) (any, bool) {
	if c == nil || c.items == nil {
		return nil, false
	}

	if v, ok := c.items.Get(key); ok {
		return v, true
	}

	segments := SplitPath(key)
	if len(segments) == 1 {
		return c.items.Get(UnescapeKey(segments[0]))
	}

	var node any = c
	for _, segment := range segments {
		next, ok := child(node, UnescapeKey(segment))
		if !ok {
			return nil, false
		}
		node = next
	}
	return node, true
}

// child resolves one exact key below node
func child(node any, key string) (any, bool) {
	switch n := node.(type) {
	case *Container:
		if n == nil || n.items == nil {
			return nil, false
		}
		return n.items.Get(key)
	case map[string]any:
		v, ok := n[key]
		return v, ok
	case []any:
		i, err := strconv.Atoi(key)
		if err != nil || i < 0 || i >= len(n) {
			return nil, false
		}
		return n[i], true
	case *orderedmap.OrderedMap[string, any]:
		return n.Get(key)
	}
	return nil, false
}

// Get resolves key as described by [Container.Lookup] and returns nil when
// nothing is found
func (c *Container) Get(key string) any {
	v, _ := c.Lookup(key)
	return v
}

// GetOr resolves key as described by [Container.Lookup] and returns def
// when nothing is found
func (c *Container) GetOr(key string, def any) any {
	if v, ok := c.Lookup(key); ok {
		return v
	}
	return def
}

// Has reports whether key resolves, by exact key or by dot-path
func (c *Container) Has(key string) bool {
	_, ok := c.Lookup(key)
	return ok
}

// Set wraps v and stores it under the exact key. Dots in key are not
// interpreted. Set refuses a Container that already holds c, since that
// would make c contain itself.
func (c *Container) Set(key string, v any) error {
	w, err := wrap(v, 0, DefaultMaxDepth)
	if err != nil {
		return err
	}
	if nested, ok := w.(*Container); ok && reaches(nested, c) {
		return invalidInput(v, "value contains the receiving container")
	}
	if c.items == nil {
		c.items = orderedmap.New[string, any]()
	}
	c.items.Set(key, w)
	return nil
}

// reaches reports whether target is from or is nested anywhere below it
func reaches(from, target *Container) bool {
	if from == target {
		return true
	}
	for _, v := range from.All() {
		if nested, ok := v.(*Container); ok && reaches(nested, target) {
			return true
		}
	}
	return false
}

// Unset removes the exact key. Dot-paths are not followed.
func (c *Container) Unset(key string) {
	if c == nil || c.items == nil {
		return
	}
	c.items.Delete(key)
}

// Clone returns a shallow copy of c: top-level items are copied, nested
// containers are shared
func (c *Container) Clone() *Container {
	out := fromEntries(c.entries())
	out.seq = c != nil && c.seq
	return out
}

// ToMap returns the items as a map with every nested Container converted by
// [Container.ToPlain]. It makes Container a [Mapper].
func (c *Container) ToMap() map[string]any {
	out := make(map[string]any, c.Len())
	for k, v := range c.All() {
		out[k] = plain(v)
	}
	return out
}
