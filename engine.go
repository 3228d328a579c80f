package tidy

import (
	"fmt"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
	"github.com/rs/zerolog"
	orderedmap "github.com/wk8/go-ordered-map/v2"
	"gopkg.in/yaml.v3"
)

// Engine recursively normalizes values: strings are classified with the
// engine's Config and every composite value becomes a *Container.
//
// An Engine holds no mutable state and is safe for concurrent use.
type Engine struct {
	cfg      Config
	logger   zerolog.Logger
	maxDepth int
}

// Option configures an Engine
type Option func(*Engine)

// WithLogger sets the logger used to report normalization failures. By
// default nothing is logged.
func WithLogger(l zerolog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// WithMaxDepth sets the nesting limit. Values that nest deeper fail with
// ErrStructureTooDeep. A limit below one keeps [DefaultMaxDepth].
func WithMaxDepth(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxDepth = n
		}
	}
}

// New returns an Engine that normalizes with a copy of cfg
func New(cfg Config, opts ...Option) *Engine {
	e := &Engine{
		cfg:      cfg.Clone(),
		logger:   zerolog.Nop(),
		maxDepth: DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Config returns a copy of the engine's configuration
func (e *Engine) Config() Config {
	return e.cfg.Clone()
}

// Normalize returns the canonical form of v. Scalars and nil are
// classified and returned as they are; sequences, mappings and object-like
// values are normalized element by element and returned as a *Container
// that keeps their keys and order.
func (e *Engine) Normalize(v any) (any, error) {
	out, err := e.normalize(v, 0)
	if err != nil {
		e.logger.Debug().Err(err).Str("type", fmt.Sprintf("%T", v)).Msg("normalize failed")
		return nil, err
	}
	return out, nil
}

func (e *Engine) normalize(v any, depth int) (any, error) {
	if depth > e.maxDepth {
		return nil, ErrStructureTooDeep{Depth: depth, Limit: e.maxDepth}
	}

	switch shapeOf(v) {
	case shapeNull:
		return nil, nil
	case shapeScalar:
		return Classify(scalarValue(v), e.cfg), nil
	case shapeInvalid:
		return nil, invalidInput(v, "unsupported kind")
	}

	comp, scalar, ok, err := entriesOf(v)
	if err != nil {
		return nil, err
	}
	if !ok {
		return Classify(scalar, e.cfg), nil
	}

	c := Empty()
	c.seq = comp.seq
	for _, en := range comp.entries {
		n, err := e.normalize(en.value, depth+1)
		if err != nil {
			return nil, err
		}
		c.items.Set(en.key, n)
	}
	return c, nil
}

// NormalizeMap normalizes the members of a mapping or object-like value
// and returns them without a Container around the top level. Nested
// composites are still returned as containers.
func (e *Engine) NormalizeMap(m any) (*orderedmap.OrderedMap[string, any], error) {
	out, err := e.normalizeMap(m)
	if err != nil {
		e.logger.Debug().Err(err).Str("type", fmt.Sprintf("%T", m)).Msg("normalize map failed")
		return nil, err
	}
	return out, nil
}

func (e *Engine) normalizeMap(m any) (*orderedmap.OrderedMap[string, any], error) {
	switch shapeOf(m) {
	case shapeMapping, shapeObject, shapeContainer, shapeSequence:
	default:
		return nil, invalidInput(m, "not a mapping or object")
	}

	comp, _, ok, err := entriesOf(m)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, invalidInput(m, "serialized form is not a mapping")
	}

	out := orderedmap.New[string, any]()
	for _, en := range comp.entries {
		n, err := e.normalize(en.value, 1)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", en.key, err)
		}
		out.Set(en.key, n)
	}
	return out, nil
}

// NormalizeSlice normalizes every element of s and returns a new slice of
// the same length
func (e *Engine) NormalizeSlice(s []any) ([]any, error) {
	out := make([]any, len(s))
	for i, v := range s {
		n, err := e.normalize(v, 1)
		if err != nil {
			err = fmt.Errorf("%d: %w", i, err)
			e.logger.Debug().Err(err).Msg("normalize slice failed")
			return nil, err
		}
		out[i] = n
	}
	return out, nil
}

// NormalizeCollection normalizes every element of c and returns a new
// Container with the same keys, order and list shape
func (e *Engine) NormalizeCollection(c *Container) (*Container, error) {
	out := c.like()
	for k, v := range c.All() {
		n, err := e.normalize(v, 1)
		if err != nil {
			err = fmt.Errorf("%s: %w", k, err)
			e.logger.Debug().Err(err).Msg("normalize collection failed")
			return nil, err
		}
		out.items.Set(k, n)
	}
	return out, nil
}

// NormalizeJSON decodes a JSON document, keeping the order of object
// members, and normalizes it. Objects and arrays yield a *Container.
func (e *Engine) NormalizeJSON(data []byte) (any, error) {
	v, err := decodeJSON(data)
	if err != nil {
		err = fmt.Errorf("failed to decode json: %w", err)
		e.logger.Debug().Err(err).Msg("normalize json failed")
		return nil, err
	}
	return e.Normalize(v)
}

// NormalizeYAML decodes a YAML document, keeping the order of mapping
// keys, and normalizes it. Mappings and sequences yield a *Container.
func (e *Engine) NormalizeYAML(data []byte) (any, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		err = fmt.Errorf("failed to decode yaml: %w", err)
		e.logger.Debug().Err(err).Msg("normalize yaml failed")
		return nil, err
	}
	if node.Kind == 0 {
		return nil, nil
	}

	v, err := decodeYAML(&node, 0)
	if err != nil {
		e.logger.Debug().Err(err).Msg("normalize yaml failed")
		return nil, err
	}
	return e.Normalize(v)
}

// JSONOptions returns options under which [json.Unmarshal] normalizes every
// value it decodes into an interface (any) target. Objects and arrays
// become *Container, strings are classified. Targets of any other type are
// decoded as usual.
//
//	var doc struct {
//	  Name string `json:"name"`
//	  Meta any    `json:"meta"`
//	}
//	err := json.Unmarshal(b, &doc, e.JSONOptions())
func (e *Engine) JSONOptions() json.Options {
	unmarshalFunc := func(dec *jsontext.Decoder, ptr *any, _ json.Options) error {
		v, err := decodeValue(dec)
		if err != nil {
			return err
		}
		n, err := e.normalize(v, 0)
		if err != nil {
			e.logger.Debug().Err(err).Msg("normalize json value failed")
			return err
		}
		*ptr = n
		return nil
	}
	return json.WithUnmarshalers(json.UnmarshalFuncV2(unmarshalFunc))
}
