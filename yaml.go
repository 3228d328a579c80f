package tidy

import (
	"errors"
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"
)

// MarshalYAML encodes c as a YAML mapping in insertion order, or as a
// sequence when c is list-shaped
func (c *Container) MarshalYAML() (any, error) {
	return c.yamlNode()
}

func (c *Container) yamlNode() (*yaml.Node, error) {
	n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	list := c.IsList()
	if list {
		n.Kind, n.Tag = yaml.SequenceNode, "!!seq"
	}

	for k, v := range c.All() {
		valueNode, err := yamlValueNode(v)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", k, err)
		}
		if list {
			n.Content = append(n.Content, valueNode)
			continue
		}
		keyNode := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k}
		n.Content = append(n.Content, keyNode, valueNode)
	}
	return n, nil
}

func yamlValueNode(v any) (*yaml.Node, error) {
	if nested, ok := v.(*Container); ok {
		return nested.yamlNode()
	}
	n := &yaml.Node{}
	if err := n.Encode(v); err != nil {
		return nil, err
	}
	return n, nil
}

// UnmarshalYAML decodes a YAML mapping or sequence into c, keeping the order
// of mapping keys. Aliases are resolved.
func (c *Container) UnmarshalYAML(node *yaml.Node) error {
	v, err := decodeYAML(node, 0)
	if err != nil {
		return err
	}
	decoded, ok := v.(*Container)
	if !ok {
		return fmt.Errorf("expected a YAML mapping or sequence, but encountered %s", node.Tag)
	}
	*c = *decoded
	return nil
}

// ParseYAML decodes a YAML mapping or sequence into a new Container without
// normalizing it
func ParseYAML(data []byte) (*Container, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("failed to decode yaml: %w", err)
	}
	c := Empty()
	if node.Kind == 0 {
		return c, nil
	}
	if err := c.UnmarshalYAML(&node); err != nil {
		return nil, err
	}
	return c, nil
}

const mergeTag = "!!merge"

func decodeYAML(node *yaml.Node, depth int) (any, error) {
	if depth > DefaultMaxDepth {
		return nil, ErrStructureTooDeep{Depth: depth, Limit: DefaultMaxDepth}
	}

	switch node.Kind {
	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			return nil, nil
		}
		return decodeYAML(node.Content[0], depth)

	case yaml.AliasNode:
		return decodeYAML(node.Alias, depth+1)

	case yaml.MappingNode:
		c := Empty()
		for i := 0; i+1 < len(node.Content); i += 2 {
			keyNode, valueNode := node.Content[i], node.Content[i+1]
			if keyNode.ShortTag() == mergeTag {
				if err := mergeYAML(c, valueNode, depth+1, true); err != nil {
					return nil, fmt.Errorf("line %d: %w", keyNode.Line, err)
				}
				continue
			}
			v, err := decodeYAML(valueNode, depth+1)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", keyNode.Line, err)
			}
			c.items.Set(keyNode.Value, v)
		}
		return c, nil

	case yaml.SequenceNode:
		c := emptyList()
		for i, elem := range node.Content {
			v, err := decodeYAML(elem, depth+1)
			if err != nil {
				return nil, fmt.Errorf("entry %d: %w", i, err)
			}
			c.items.Set(strconv.Itoa(i), v)
		}
		return c, nil

	case yaml.ScalarNode:
		var v any
		if err := node.Decode(&v); err != nil {
			return nil, fmt.Errorf("line %d: %w", node.Line, err)
		}
		return v, nil
	}
	return nil, fmt.Errorf("unsupported yaml node kind %d", node.Kind)
}

// mergeYAML copies the entries of a merged mapping (`<<: *anchor`) into c.
// Keys already in c win, so explicit keys override merged ones and earlier
// mappings of a merged sequence override later ones.
func mergeYAML(c *Container, node *yaml.Node, depth int, allowSeq bool) error {
	if node.Kind == yaml.AliasNode && node.Alias != nil {
		node = node.Alias
	}

	switch {
	case node.Kind == yaml.MappingNode:
		v, err := decodeYAML(node, depth)
		if err != nil {
			return err
		}
		for k, val := range v.(*Container).All() {
			if _, ok := c.items.Get(k); !ok {
				c.items.Set(k, val)
			}
		}
		return nil
	case node.Kind == yaml.SequenceNode && allowSeq:
		for _, elem := range node.Content {
			if err := mergeYAML(c, elem, depth+1, false); err != nil {
				return err
			}
		}
		return nil
	}
	return errors.New("merge value must be a mapping or a sequence of mappings")
}
