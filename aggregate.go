package tidy

import (
	"github.com/spf13/cast"
)

// retrieved resolves r against every element and drops nil results
func (c *Container) retrieved(r Retriever) []any {
	out := make([]any, 0, c.Len())
	for k, v := range c.All() {
		if got := r.get(v, k); got != nil {
			out = append(out, got)
		}
	}
	return out
}

// numeric coerces v for arithmetic. Values that cannot be coerced count as
// zero.
func numeric(v any) float64 {
	f, err := cast.ToFloat64E(v)
	if err != nil {
		if n, ok := toNumber(v); ok {
			return n
		}
		return 0
	}
	return f
}

// Sum adds up the values r retrieves, skipping nil. It is 0 for an empty
// Container.
func (c *Container) Sum(r Retriever) float64 {
	var total float64
	for _, v := range c.retrieved(r) {
		total += numeric(v)
	}
	return total
}

// Avg returns the mean of the values r retrieves, skipping nil. It reports
// false when no value is left.
func (c *Container) Avg(r Retriever) (float64, bool) {
	values := c.retrieved(r)
	if len(values) == 0 {
		return 0, false
	}
	var total float64
	for _, v := range values {
		total += numeric(v)
	}
	return total / float64(len(values)), true
}

// Min returns the smallest value r retrieves according to [Compare],
// skipping nil. It reports false when no value is left.
func (c *Container) Min(r Retriever) (any, bool) {
	return c.extreme(r, -1)
}

// Max returns the largest value r retrieves according to [Compare],
// skipping nil. It reports false when no value is left.
func (c *Container) Max(r Retriever) (any, bool) {
	return c.extreme(r, 1)
}

func (c *Container) extreme(r Retriever, sign int) (any, bool) {
	values := c.retrieved(r)
	if len(values) == 0 {
		return nil, false
	}
	best := values[0]
	for _, v := range values[1:] {
		if Compare(v, best)*sign > 0 {
			best = v
		}
	}
	return best, true
}
