package tidy

import (
	"slices"
	"strconv"

	"github.com/google/go-cmp/cmp"
)

// like returns an empty Container that keeps c's list marker, for
// operations that preserve keys
func (c *Container) like() *Container {
	out := Empty()
	out.seq = c != nil && c.seq
	return out
}

// Map applies fn to every top-level value and wraps the result. When the
// result is a Container, it is mapped with fn as well, so fn sees every
// nested container and every value below it. Keys are preserved.
func (c *Container) Map(fn func(value any, key string) any) (*Container, error) {
	return c.mapDepth(fn, 0)
}

func (c *Container) mapDepth(fn func(value any, key string) any, depth int) (*Container, error) {
	if depth > DefaultMaxDepth {
		return nil, ErrStructureTooDeep{Depth: depth, Limit: DefaultMaxDepth}
	}

	out := c.like()
	for k, v := range c.All() {
		w, err := wrap(fn(v, k), depth+1, DefaultMaxDepth)
		if err != nil {
			return nil, err
		}
		if nested, ok := w.(*Container); ok {
			if w, err = nested.mapDepth(fn, depth+1); err != nil {
				return nil, err
			}
		}
		out.items.Set(k, w)
	}
	return out, nil
}

// Transform is the single-level form of Map: fn is applied to top-level
// values only and its results are stored as returned, wrapped but not
// mapped again.
func (c *Container) Transform(fn func(value any, key string) any) (*Container, error) {
	out := c.like()
	for k, v := range c.All() {
		w, err := wrap(fn(v, k), 0, DefaultMaxDepth)
		if err != nil {
			return nil, err
		}
		out.items.Set(k, w)
	}
	return out, nil
}

// Pluck resolves path against every top-level element and returns the
// results as a list. Elements that are not containers contribute nil.
func (c *Container) Pluck(path string) *Container {
	values := make([]any, 0, c.Len())
	for _, v := range c.All() {
		values = append(values, dataGet(v, path))
	}
	return fromValues(values)
}

// PluckBy is like Pluck but keys the results by the value at keyPath
func (c *Container) PluckBy(path, keyPath string) *Container {
	out := Empty()
	for _, v := range c.All() {
		out.items.Set(FormatKey(dataGet(v, keyPath)), dataGet(v, path))
	}
	return out
}

// Unique drops repeated elements, keeping the first occurrence and its
// key. With a nil Retriever elements are compared structurally; otherwise
// the retrieved values are compared with [LooseEqual].
func (c *Container) Unique(r Retriever) *Container {
	out := c.like()
	var seen []any
	for k, v := range c.All() {
		if r == nil {
			p := plainOf(v)
			if slices.ContainsFunc(seen, func(s any) bool { return cmp.Equal(s, p, equalOptions...) }) {
				continue
			}
			seen = append(seen, p)
		} else {
			id := r(v, k)
			if slices.ContainsFunc(seen, func(s any) bool { return LooseEqual(s, id) }) {
				continue
			}
			seen = append(seen, id)
		}
		out.items.Set(k, v)
	}
	return out
}

// Filter keeps the elements p selects, or the truthy elements when p is
// nil. Keys are preserved.
func (c *Container) Filter(p Predicate) *Container {
	if p == nil {
		p = func(value any, _ string) bool { return IsTruthy(value) }
	}
	out := c.like()
	for k, v := range c.All() {
		if p(v, k) {
			out.items.Set(k, v)
		}
	}
	return out
}

// Where keeps the elements whose value at path satisfies op against value.
// See [Cond] for the operators.
func (c *Container) Where(path, op string, value any) *Container {
	return c.Filter(Cond(path, op, value))
}

// Reject removes the elements p selects. A nil p removes the elements that
// are loosely equal to true.
func (c *Container) Reject(p Predicate) *Container {
	if p == nil {
		return c.RejectValue(true)
	}
	return c.Filter(Not(p))
}

// RejectValue removes the elements loosely equal to value
func (c *Container) RejectValue(value any) *Container {
	return c.Filter(func(v any, _ string) bool { return !LooseEqual(v, value) })
}

// First returns the first element p selects, or the first element when p
// is nil. def is returned when there is none.
func (c *Container) First(p Predicate, def any) any {
	for k, v := range c.All() {
		if p == nil || p(v, k) {
			return v
		}
	}
	return def
}

// Last returns the last element p selects, or the last element when p is
// nil. def is returned when there is none.
func (c *Container) Last(p Predicate, def any) any {
	entries := c.entries()
	for i := len(entries) - 1; i >= 0; i-- {
		if p == nil || p(entries[i].value, entries[i].key) {
			return entries[i].value
		}
	}
	return def
}

// FirstWhere returns the first element whose value at path satisfies op
// against value, or nil
func (c *Container) FirstWhere(path, op string, value any) any {
	return c.First(Cond(path, op, value), nil)
}

// Each calls fn for every element in order and stops as soon as fn returns
// false. It returns c.
func (c *Container) Each(fn func(value any, key string) bool) *Container {
	for k, v := range c.All() {
		if !fn(v, k) {
			break
		}
	}
	return c
}

// Every reports whether p holds for all elements. It is true for an empty
// Container.
func (c *Container) Every(p Predicate) bool {
	for k, v := range c.All() {
		if !p(v, k) {
			return false
		}
	}
	return true
}

// Contains reports whether p holds for at least one element
func (c *Container) Contains(p Predicate) bool {
	for k, v := range c.All() {
		if p(v, k) {
			return true
		}
	}
	return false
}

// ContainsValue reports whether an element is loosely equal to value
func (c *Container) ContainsValue(value any) bool {
	return c.Contains(func(v any, _ string) bool { return LooseEqual(v, value) })
}

// Search returns the key of the first element loosely equal to value
func (c *Container) Search(value any) (string, bool) {
	for k, v := range c.All() {
		if LooseEqual(v, value) {
			return k, true
		}
	}
	return "", false
}

// Except returns a copy of c without the given top-level keys
func (c *Container) Except(keys ...string) *Container {
	out := c.like()
	for k, v := range c.All() {
		if !slices.Contains(keys, k) {
			out.items.Set(k, v)
		}
	}
	return out
}

// Only returns a copy of c holding just the given top-level keys, in the
// order they appear in c
func (c *Container) Only(keys ...string) *Container {
	out := Empty()
	for k, v := range c.All() {
		if slices.Contains(keys, k) {
			out.items.Set(k, v)
		}
	}
	return out
}

// Forget removes the given exact top-level keys from c and returns c
func (c *Container) Forget(keys ...string) *Container {
	for _, k := range keys {
		c.Unset(k)
	}
	return c
}

// Collapse merges every top-level container into a single one. Elements
// that are not containers are skipped. Numeric keys are renumbered, other
// keys are overwritten by later containers.
func (c *Container) Collapse() *Container {
	out := emptyList()
	for _, v := range c.All() {
		if nested, ok := v.(*Container); ok {
			mergeInto(out, nested)
		}
	}
	return out
}

// FlatMap applies fn to every top-level value, then collapses the results
// one level
func (c *Container) FlatMap(fn func(value any, key string) any) (*Container, error) {
	mapped, err := c.Transform(fn)
	if err != nil {
		return nil, err
	}
	return mapped.Collapse(), nil
}

// Merge returns the union of c and other. Numeric keys from both are
// renumbered and appended; any other key in other overwrites the one in c.
func (c *Container) Merge(other *Container) *Container {
	out := emptyList()
	out.seq = c.IsList() && other.IsList()
	mergeInto(out, c)
	mergeInto(out, other)
	return out
}

// mergeInto appends src to dst the way a positional/associative merge
// does: integer keys are renumbered, string keys are set in place
func mergeInto(dst, src *Container) {
	next := nextIndex(dst)
	for k, v := range src.All() {
		if isIndexKey(k) {
			dst.items.Set(strconv.Itoa(next), v)
			next++
			continue
		}
		dst.items.Set(k, v)
	}
}

func nextIndex(c *Container) int {
	next := 0
	for k := range c.All() {
		if n, err := strconv.Atoi(k); err == nil && isIndexKey(k) && n >= next {
			next = n + 1
		}
	}
	return next
}

// isIndexKey reports whether k is the canonical form of an integer
func isIndexKey(k string) bool {
	n, err := strconv.Atoi(k)
	return err == nil && strconv.Itoa(n) == k
}

// GroupBy buckets the elements by the value r returns. A Retriever that
// returns a list puts the element into every group named by the list.
// Group keys are formatted with [FormatKey], so booleans become "1" and
// "0". Elements keep their keys when preserveKeys is set and are renumbered
// within their group otherwise.
func (c *Container) GroupBy(r Retriever, preserveKeys bool) *Container {
	out := Empty()
	for k, v := range c.All() {
		for _, gk := range groupKeys(r.get(v, k)) {
			group, ok := out.items.Get(gk)
			if !ok {
				group = emptyList()
				out.items.Set(gk, group)
			}
			bucket := group.(*Container)
			if preserveKeys {
				bucket.items.Set(k, v)
			} else {
				bucket.items.Set(strconv.Itoa(bucket.Len()), v)
			}
		}
	}
	return out
}

func groupKeys(v any) []string {
	if list, ok := v.(*Container); ok {
		keys := make([]string, 0, list.Len())
		for _, gk := range list.All() {
			keys = append(keys, FormatKey(gk))
		}
		return keys
	}
	if isComposite(v) {
		if list, err := NewContainer(v); err == nil {
			return groupKeys(list)
		}
	}
	return []string{FormatKey(v)}
}

// KeyBy re-keys the elements by the value r returns. Later elements win
// when two resolve to the same key.
func (c *Container) KeyBy(r Retriever) *Container {
	out := Empty()
	for k, v := range c.All() {
		out.items.Set(FormatKey(r.get(v, k)), v)
	}
	return out
}

// Reduce folds the elements from left to right, starting with initial
func (c *Container) Reduce(fn func(carry, value any, key string) any, initial any) any {
	carry := initial
	for k, v := range c.All() {
		carry = fn(carry, v, k)
	}
	return carry
}

// Sort returns the elements ordered by compare, or by [Compare] when
// compare is nil. The sort is stable and keys are preserved.
func (c *Container) Sort(compare func(a, b any) int) *Container {
	if compare == nil {
		compare = Compare
	}
	entries := c.entries()
	slices.SortStableFunc(entries, func(a, b entry) int {
		return compare(a.value, b.value)
	})
	return fromEntries(entries)
}

// SortBy orders the elements by the value r returns, ascending. The sort is
// stable and keys are preserved.
func (c *Container) SortBy(r Retriever) *Container {
	return c.sortBy(r, false)
}

// SortByDesc is SortBy in descending order
func (c *Container) SortByDesc(r Retriever) *Container {
	return c.sortBy(r, true)
}

func (c *Container) sortBy(r Retriever, desc bool) *Container {
	type keyed struct {
		entry
		sortKey any
	}
	entries := c.entries()
	pairs := make([]keyed, len(entries))
	for i, e := range entries {
		pairs[i] = keyed{entry: e, sortKey: r.get(e.value, e.key)}
	}

	slices.SortStableFunc(pairs, func(a, b keyed) int {
		if desc {
			return Compare(b.sortKey, a.sortKey)
		}
		return Compare(a.sortKey, b.sortKey)
	})

	for i, p := range pairs {
		entries[i] = p.entry
	}
	return fromEntries(entries)
}

// Tap calls fn with c and returns c
func (c *Container) Tap(fn func(*Container)) *Container {
	fn(c)
	return c
}

// Values returns the elements as a list, dropping the keys
func (c *Container) Values() *Container {
	return fromValues(c.valueList())
}

// Keys returns the top-level keys as a list
func (c *Container) Keys() *Container {
	keys := c.KeyList()
	values := make([]any, len(keys))
	for i, k := range keys {
		values[i] = k
	}
	return fromValues(values)
}

// Chunk splits the elements into consecutive groups of size elements. A
// size below one yields an empty Container. Each chunk keeps the original
// keys when preserveKeys is set and is renumbered otherwise.
func (c *Container) Chunk(size int, preserveKeys bool) *Container {
	out := emptyList()
	if size <= 0 {
		return out
	}

	var current *Container
	for k, v := range c.All() {
		if current == nil || current.Len() == size {
			current = emptyList()
			out.items.Set(strconv.Itoa(out.Len()), current)
		}
		if preserveKeys {
			current.items.Set(k, v)
		} else {
			current.items.Set(strconv.Itoa(current.Len()), v)
		}
	}
	return out
}

// ChunkByKey splits the elements into runs of consecutive elements whose
// retrieved values are loosely equal. Keys are preserved within each run.
func (c *Container) ChunkByKey(r Retriever) *Container {
	out := emptyList()

	var (
		current *Container
		last    any
	)
	for k, v := range c.All() {
		id := r.get(v, k)
		if current == nil || !LooseEqual(id, last) {
			current = Empty()
			out.items.Set(strconv.Itoa(out.Len()), current)
		}
		current.items.Set(k, v)
		last = id
	}
	return out
}

// Count returns the number of top-level items
func (c *Container) Count() int {
	return c.Len()
}

// CountWhere returns the number of elements p selects
func (c *Container) CountWhere(p Predicate) int {
	n := 0
	for k, v := range c.All() {
		if p(v, k) {
			n++
		}
	}
	return n
}

// IsEmpty reports whether c has no top-level items
func (c *Container) IsEmpty() bool {
	return c.Len() == 0
}

// IsNotEmpty reports whether c has at least one top-level item
func (c *Container) IsNotEmpty() bool {
	return c.Len() > 0
}

// Diff returns the elements of c that are not loosely equal to any element
// of other. Keys are preserved.
func (c *Container) Diff(other *Container) *Container {
	return c.Filter(func(v any, _ string) bool { return !other.ContainsValue(v) })
}

// Flatten collapses nested containers into a single level whose keys are
// dot-paths, descending at most depth levels; a depth below one descends
// without limit. Keys are escaped, so every flattened key resolves back
// through [Container.Get] on c. Empty nested containers are kept as values.
func (c *Container) Flatten(depth int) *Container {
	if depth < 1 {
		depth = -1
	}
	out := Empty()
	flattenInto(out, c, "", depth)
	return out
}

// Dot is Flatten without a depth limit
func (c *Container) Dot() *Container {
	return c.Flatten(0)
}

func flattenInto(dst, src *Container, prefix string, depth int) {
	for k, v := range src.All() {
		path := EscapeKey(k)
		if prefix != "" {
			path = prefix + "." + path
		}
		if nested, ok := v.(*Container); ok && nested.Len() > 0 && depth != 0 {
			flattenInto(dst, nested, path, depth-1)
			continue
		}
		dst.items.Set(path, v)
	}
}
