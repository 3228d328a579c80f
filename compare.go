package tidy

import (
	stdcmp "cmp"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/cast"
)

// Retriever extracts the value an operation works on from a top-level
// element. A nil Retriever is the identity.
type Retriever func(value any, key string) any

// ByPath returns a Retriever resolving path against each element. Elements
// that are not containers resolve to nil, unless path is empty, in which
// case the element itself is returned.
func ByPath(path string) Retriever {
	return func(value any, _ string) any {
		return dataGet(value, path)
	}
}

func (r Retriever) get(value any, key string) any {
	if r == nil {
		return value
	}
	return r(value, key)
}

func dataGet(value any, path string) any {
	if path == "" {
		return value
	}
	switch v := value.(type) {
	case *Container:
		return v.Get(path)
	case map[string]any, []any:
		c, err := NewContainer(v)
		if err != nil {
			return nil
		}
		return c.Get(path)
	}
	return nil
}

// equalOptions lets cmp look into unexported fields of opaque values
var equalOptions = []cmp.Option{
	cmp.Exporter(func(reflect.Type) bool { return true }),
}

// Predicate reports whether a top-level element should be selected
type Predicate func(value any, key string) bool

// Operators understood by [Cond]
const (
	OpEqual          = "="
	OpLooseEqual     = "=="
	OpNotEqual       = "!="
	OpNotEqualAlt    = "<>"
	OpLess           = "<"
	OpGreater        = ">"
	OpLessOrEqual    = "<="
	OpGreaterOrEqual = ">="
	OpIdentical      = "==="
	OpNotIdentical   = "!=="
)

// Cond builds a Predicate comparing the value at path with value using op.
// An empty path compares the element itself. Unknown operators compare for
// loose equality.
//
// When exactly one side is a composite value (a Container, map, slice or
// struct) the comparison never holds, except for the inequality operators,
// which then always hold.
func Cond(path, op string, value any) Predicate {
	return func(element any, _ string) bool {
		return compareOp(dataGet(element, path), op, value)
	}
}

// Equals is Cond(path, "=", value)
func Equals(path string, value any) Predicate {
	return Cond(path, OpEqual, value)
}

// Truthy builds a Predicate selecting elements whose value at path is truthy
func Truthy(path string) Predicate {
	return func(element any, _ string) bool {
		return IsTruthy(dataGet(element, path))
	}
}

// Not inverts p
func Not(p Predicate) Predicate {
	return func(value any, key string) bool {
		return !p(value, key)
	}
}

func compareOp(retrieved any, op string, value any) bool {
	if isComposite(retrieved) != isComposite(value) {
		switch op {
		case OpNotEqual, OpNotEqualAlt, OpNotIdentical:
			return true
		}
		return false
	}

	switch op {
	case OpNotEqual, OpNotEqualAlt:
		return !LooseEqual(retrieved, value)
	case OpLess:
		return Compare(retrieved, value) < 0
	case OpGreater:
		return Compare(retrieved, value) > 0
	case OpLessOrEqual:
		return Compare(retrieved, value) <= 0
	case OpGreaterOrEqual:
		return Compare(retrieved, value) >= 0
	case OpIdentical:
		return Identical(retrieved, value)
	case OpNotIdentical:
		return !Identical(retrieved, value)
	default:
		return LooseEqual(retrieved, value)
	}
}

func isComposite(v any) bool {
	switch shapeOf(v) {
	case shapeContainer, shapeSequence, shapeMapping, shapeObject:
		return true
	}
	return false
}

// IsTruthy reports whether v counts as true: nil, false, zero numbers, "",
// "0" and empty containers are falsy, everything else is truthy
func IsTruthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != "" && t != "0"
	case *Container:
		return t.Len() > 0
	}

	if f, ok := toNumber(v); ok {
		return f != 0
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() > 0
	case reflect.Pointer:
		return !rv.IsNil()
	}
	return true
}

// toNumber converts numeric Go values and numeric strings to float64
func toNumber(v any) (float64, bool) {
	switch t := v.(type) {
	case nil, bool:
		return 0, false
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil || strings.TrimSpace(t) == "" {
			return 0, false
		}
		return f, true
	}
	if !isNumericKind(v) {
		return 0, false
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return 0, false
	}
	return f, true
}

func isNumericKind(v any) bool {
	switch reflect.ValueOf(v).Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return true
	case reflect.String:
		_, isNumber := v.(interface{ Float64() (float64, error) })
		return isNumber
	}
	return false
}

// LooseEqual compares a and b with type juggling: numbers and numeric
// strings compare by value, booleans compare by truthiness, nil equals
// every falsy scalar, and containers compare structurally.
func LooseEqual(a, b any) bool {
	if a == nil || b == nil {
		other := a
		if a == nil {
			other = b
		}
		if other == nil {
			return true
		}
		switch o := other.(type) {
		case string:
			return o == ""
		case *Container:
			return o.Len() == 0
		}
		if isComposite(other) {
			return false
		}
		return !IsTruthy(other)
	}

	if ab, ok := a.(bool); ok {
		return ab == IsTruthy(b)
	}
	if bb, ok := b.(bool); ok {
		return bb == IsTruthy(a)
	}

	if isComposite(a) || isComposite(b) {
		if !isComposite(a) || !isComposite(b) {
			return false
		}
		return cmp.Equal(plainOf(a), plainOf(b), equalOptions...)
	}

	an, aNum := toNumber(a)
	bn, bNum := toNumber(b)
	if aNum && bNum {
		return an == bn
	}

	as, aStr := a.(string)
	bs, bStr := b.(string)
	switch {
	case aStr && bStr:
		return as == bs
	case aStr:
		return as == FormatKey(b)
	case bStr:
		return bs == FormatKey(a)
	}
	return cmp.Equal(a, b, equalOptions...)
}

// Identical reports whether a and b have the same type and value.
// Containers are identical only to themselves.
func Identical(a, b any) bool {
	if ac, ok := a.(*Container); ok {
		bc, ok := b.(*Container)
		return ok && ac == bc
	}
	if reflect.TypeOf(a) != reflect.TypeOf(b) {
		return false
	}
	if a == nil {
		return true
	}
	if reflect.TypeOf(a).Comparable() {
		return a == b
	}
	return cmp.Equal(a, b, equalOptions...)
}

// Compare orders a and b: numbers (and numeric strings) numerically,
// strings lexically, booleans false before true, nil before everything
// else, containers by size. Values that cannot be ordered compare equal.
func Compare(a, b any) int {
	if a == nil || b == nil {
		switch {
		case a == nil && b == nil:
			return 0
		case a == nil:
			if LooseEqual(nil, b) {
				return 0
			}
			return -1
		default:
			if LooseEqual(a, nil) {
				return 0
			}
			return 1
		}
	}

	ab, aBool := a.(bool)
	bb, bBool := b.(bool)
	if aBool || bBool {
		if !aBool {
			ab = IsTruthy(a)
		}
		if !bBool {
			bb = IsTruthy(b)
		}
		return compareBool(ab, bb)
	}

	an, aNum := toNumber(a)
	bn, bNum := toNumber(b)
	if aNum && bNum {
		return compareFloat(an, bn)
	}

	ac, aIsC := a.(*Container)
	bc, bIsC := b.(*Container)
	if aIsC && bIsC {
		return stdcmp.Compare(ac.Len(), bc.Len())
	}
	if aIsC || bIsC || isComposite(a) || isComposite(b) {
		return 0
	}

	return strings.Compare(FormatKey(a), FormatKey(b))
}

func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	}
	return 1
}

// compareFloat treats NaN as equal to everything
func compareFloat(a, b float64) int {
	if math.IsNaN(a) || math.IsNaN(b) {
		return 0
	}
	return stdcmp.Compare(a, b)
}

func plainOf(v any) any {
	if c, ok := v.(*Container); ok {
		return c.ToPlain()
	}
	if isComposite(v) {
		if c, err := NewContainer(v); err == nil {
			return c.ToPlain()
		}
	}
	return v
}
