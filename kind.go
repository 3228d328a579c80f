package tidy

import (
	"cmp"
	"encoding"
	stdjson "encoding/json"
	"fmt"
	"reflect"
	"slices"
	"strconv"
	"strings"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Mapper is implemented by values that know how to present themselves as
// a mapping. It takes precedence over every other conversion.
type Mapper interface {
	ToMap() map[string]any
}

// Serializer is implemented by values that expose a serializable form,
// typically a map, a slice or a scalar
type Serializer interface {
	Serialize() any
}

// Capability names the conversion used to turn an object-like value into a
// mapping
type Capability int

const (
	CapabilityNone Capability = iota
	CapabilityMapper
	CapabilitySerializer
	CapabilityFields

	// CapabilityTotal is the number of capabilities defined
	CapabilityTotal = int(iota)
)

func (c Capability) String() string {
	switch c {
	case CapabilityNone:
		return "none"
	case CapabilityMapper:
		return "mapper"
	case CapabilitySerializer:
		return "serializer"
	case CapabilityFields:
		return "fields"
	default:
		return "Capability(" + strconv.Itoa(int(c)) + ")"
	}
}

// Probe returns the conversion that applies to v, checking [Mapper],
// then [Serializer], then plain struct fields. Containers, scalars and
// opaque values such as time.Time report CapabilityNone.
func Probe(v any) Capability {
	switch v.(type) {
	case *Container:
		return CapabilityNone
	case Mapper:
		return CapabilityMapper
	case Serializer:
		return CapabilitySerializer
	}
	if shapeOf(v) == shapeObject {
		return CapabilityFields
	}
	return CapabilityNone
}

// shape is the structural category of a raw value
type shape int

const (
	shapeInvalid shape = iota
	shapeNull
	shapeScalar
	shapeSequence
	shapeMapping
	shapeObject
	shapeContainer
)

var (
	textMarshalerType = reflect.TypeFor[encoding.TextMarshaler]()
	jsonMarshalerType = reflect.TypeFor[stdjson.Marshaler]()
	jsonV2Type        = reflect.TypeFor[jsonV2Marshaler]()
	mapperType        = reflect.TypeFor[Mapper]()
	serializerType    = reflect.TypeFor[Serializer]()
)

type jsonV2Marshaler interface {
	MarshalJSONV2(*jsontext.Encoder, json.Options) error
}

func shapeOf(v any) shape {
	switch v.(type) {
	case nil:
		return shapeNull
	case *Container:
		if v.(*Container) == nil {
			return shapeNull
		}
		return shapeContainer
	case string, bool, int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64, uintptr, float32, float64,
		stdjson.Number, []byte:
		return shapeScalar
	case []any:
		return shapeSequence
	case map[string]any, *orderedmap.OrderedMap[string, any]:
		return shapeMapping
	case Mapper, Serializer:
		return shapeObject
	}

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return shapeNull
		}
		if isOpaque(rv.Type()) {
			return shapeScalar
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return shapeScalar
	case reflect.Slice:
		if rv.IsNil() {
			return shapeNull
		}
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return shapeScalar
		}
		return shapeSequence
	case reflect.Array:
		return shapeSequence
	case reflect.Map:
		if rv.IsNil() {
			return shapeNull
		}
		return shapeMapping
	case reflect.Struct:
		if isOpaque(rv.Type()) || isOpaque(reflect.PointerTo(rv.Type())) {
			return shapeScalar
		}
		return shapeObject
	case reflect.Interface:
		if rv.IsNil() {
			return shapeNull
		}
		return shapeOf(rv.Elem().Interface())
	default:
		return shapeInvalid
	}
}

// isOpaque reports whether values of t encode themselves and should be
// kept as terminal values rather than enumerated field by field
func isOpaque(t reflect.Type) bool {
	return t.Implements(textMarshalerType) || t.Implements(jsonMarshalerType) || t.Implements(jsonV2Type)
}

// scalarValue dereferences pointers to scalars
func scalarValue(v any) any {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || isOpaque(rv.Type()) {
		return v
	}
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		if isOpaque(rv.Type()) {
			return rv.Interface()
		}
		rv = rv.Elem()
	}
	return rv.Interface()
}

// entry is a single key/value pair of a composite value
type entry struct {
	key   string
	value any
}

// composite is the enumerated form of a composite value
type composite struct {
	entries []entry
	seq     bool
}

// entriesOf returns the pairs of a sequence, mapping or object-like value
// in iteration order. Sequences are keyed "0".."n-1" and marked seq. A
// Serializer may present a scalar, which is returned as the second result
// with ok false.
func entriesOf(v any) (c composite, scalar any, ok bool, err error) {
	switch typed := v.(type) {
	case *Container:
		for k, val := range typed.All() {
			c.entries = append(c.entries, entry{key: k, value: val})
		}
		c.seq = typed.seq
		return c, nil, true, nil
	case []any:
		c.entries = make([]entry, len(typed))
		for i, val := range typed {
			c.entries[i] = entry{key: strconv.Itoa(i), value: val}
		}
		c.seq = true
		return c, nil, true, nil
	case *orderedmap.OrderedMap[string, any]:
		for p := typed.Oldest(); p != nil; p = p.Next() {
			c.entries = append(c.entries, entry{key: p.Key, value: p.Value})
		}
		return c, nil, true, nil
	case Mapper:
		c.entries = mapEntries(reflect.ValueOf(typed.ToMap()))
		return c, nil, true, nil
	case Serializer:
		s := typed.Serialize()
		switch shapeOf(s) {
		case shapeNull, shapeScalar:
			return c, scalarValue(s), false, nil
		case shapeInvalid:
			return c, nil, false, invalidInput(v, fmt.Sprintf("serialized form %T is not supported", s))
		}
		if _, again := s.(Serializer); again {
			return c, nil, false, invalidInput(v, "serialized form is itself a Serializer")
		}
		return entriesOf(s)
	}

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		c.entries = make([]entry, rv.Len())
		for i := range rv.Len() {
			c.entries[i] = entry{key: strconv.Itoa(i), value: rv.Index(i).Interface()}
		}
		c.seq = true
		return c, nil, true, nil
	case reflect.Map:
		c.entries = mapEntries(rv)
		return c, nil, true, nil
	case reflect.Struct:
		c.entries = fieldEntries(rv)
		return c, nil, true, nil
	}
	return c, nil, false, invalidInput(v, "not a composite value")
}

// mapEntries lists a Go map in a stable order: integer keys numerically,
// everything else by its string form
func mapEntries(rv reflect.Value) []entry {
	if !rv.IsValid() || rv.Len() == 0 {
		return []entry{}
	}

	type keyed struct {
		entry
		num    int64
		hasNum bool
	}
	pairs := make([]keyed, 0, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		k := FormatKey(iter.Key().Interface())
		n, err := strconv.ParseInt(k, 10, 64)
		pairs = append(pairs, keyed{
			entry:  entry{key: k, value: iter.Value().Interface()},
			num:    n,
			hasNum: err == nil,
		})
	}

	slices.SortFunc(pairs, func(a, b keyed) int {
		switch {
		case a.hasNum && b.hasNum:
			return cmp.Compare(a.num, b.num)
		case a.hasNum:
			return -1
		case b.hasNum:
			return 1
		}
		return cmp.Compare(a.key, b.key)
	})

	entries := make([]entry, len(pairs))
	for i, p := range pairs {
		entries[i] = p.entry
	}
	return entries
}

// field is a struct member found at a given embedding depth
type field struct {
	entry
	depth int
}

// fieldEntries enumerates the exported fields of a struct in declaration
// order, named the way they are encoded to JSON: by json tag, else by Go
// name. Fields tagged "-" and empty omitempty or omitzero fields are
// skipped. Untagged embedded structs are inlined and the shallowest field
// wins a name clash. Values are returned as Go values so nested object-like
// fields go through [Probe] like any other value.
func fieldEntries(rv reflect.Value) []entry {
	if !rv.CanAddr() {
		addressable := reflect.New(rv.Type()).Elem()
		addressable.Set(rv)
		rv = addressable
	}

	fields := structFields(rv, 0, nil)
	entries := make([]entry, 0, len(fields))
	depths := make([]int, 0, len(fields))
	pos := make(map[string]int, len(fields))
	for _, f := range fields {
		i, seen := pos[f.key]
		if !seen {
			pos[f.key] = len(entries)
			entries = append(entries, f.entry)
			depths = append(depths, f.depth)
			continue
		}
		if f.depth < depths[i] {
			entries[i] = f.entry
			depths[i] = f.depth
		}
	}
	return entries
}

func structFields(rv reflect.Value, depth int, fields []field) []field {
	t := rv.Type()
	for i := range t.NumField() {
		sf := t.Field(i)
		tag := sf.Tag.Get("json")
		if tag == "-" {
			continue
		}
		name, opts, _ := strings.Cut(tag, ",")
		fv := rv.Field(i)

		if sf.Anonymous && name == "" {
			ft := sf.Type
			if ft.Kind() == reflect.Pointer {
				if fv.IsNil() {
					continue
				}
				ft, fv = ft.Elem(), fv.Elem()
			}
			if ft.Kind() == reflect.Struct {
				fields = structFields(fv, depth+1, fields)
				continue
			}
		}
		if !sf.IsExported() || !fv.CanInterface() {
			continue
		}

		options := strings.Split(opts, ",")
		if slices.Contains(options, "omitempty") && isEmptyValue(fv) {
			continue
		}
		if slices.Contains(options, "omitzero") && fv.IsZero() {
			continue
		}
		if name == "" {
			name = sf.Name
		}
		fields = append(fields, field{entry: entry{key: name, value: fieldValue(fv)}, depth: depth})
	}
	return fields
}

// fieldValue returns the field as an interface, taking its address when
// only the pointer type implements Mapper or Serializer
func fieldValue(fv reflect.Value) any {
	if fv.Kind() != reflect.Pointer && fv.CanAddr() {
		t := fv.Type()
		if !t.Implements(mapperType) && !t.Implements(serializerType) {
			pt := reflect.PointerTo(t)
			if pt.Implements(mapperType) || pt.Implements(serializerType) {
				return fv.Addr().Interface()
			}
		}
	}
	return fv.Interface()
}

func isEmptyValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Array, reflect.Map, reflect.Slice, reflect.String:
		return v.Len() == 0
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64,
		reflect.Interface, reflect.Pointer:
		return v.IsZero()
	}
	return false
}

// FormatKey converts a value to the string form used as a Container key.
// Booleans become "1" and "0", nil becomes "", integral floats drop their
// fraction and fmt.Stringer values use their String method.
func FormatKey(v any) string {
	switch k := v.(type) {
	case nil:
		return ""
	case string:
		return k
	case bool:
		if k {
			return "1"
		}
		return "0"
	case int:
		return strconv.Itoa(k)
	case int64:
		return strconv.FormatInt(k, 10)
	case float64:
		if k == float64(int64(k)) {
			return strconv.FormatInt(int64(k), 10)
		}
		return strconv.FormatFloat(k, 'f', -1, 64)
	case float32:
		return FormatKey(float64(k))
	case stdjson.Number:
		return k.String()
	case fmt.Stringer:
		return k.String()
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(rv.Uint(), 10)
	case reflect.String:
		return rv.String()
	}
	return fmt.Sprint(v)
}
