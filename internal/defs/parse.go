package defs

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrInvalidDocument is returned for documents that are not a definition tree.
var ErrInvalidDocument = errors.New("invalid definition document")

// Parse decodes a definition document, choosing the format from the file
// extension: ".yaml" and ".yml" are YAML, anything else JSON.
func Parse(name string, data []byte) (*Node, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return ParseYAML(data)
	default:
		return ParseJSON(data)
	}
}

// ParseJSON decodes a JSON definition document keeping key order.
func ParseJSON(data []byte) (*Node, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("%w: top level must be an object", ErrInvalidDocument)
	}
	root, err := decodeJSONObject(dec)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("%w: trailing data after document", ErrInvalidDocument)
	}
	return root, nil
}

func decodeJSONObject(dec *json.Decoder) (*Node, error) {
	n := &Node{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected key %v", tok)
		}
		v, err := decodeJSONValue(dec)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		n.put(key, v)
	}
	// closing '}'
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return n, nil
}

func decodeJSONValue(dec *json.Decoder) (interface{}, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return decodeJSONObject(dec)
		case '[':
			var items []interface{}
			for dec.More() {
				v, err := decodeJSONValue(dec)
				if err != nil {
					return nil, err
				}
				items = append(items, v)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return items, nil
		}
		return nil, fmt.Errorf("unexpected delimiter %v", t)
	case json.Number:
		return t.Float64()
	default:
		return t, nil
	}
}

// ParseYAML decodes a YAML definition document keeping key order.
func ParseYAML(data []byte) (*Node, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	top := &doc
	if top.Kind == yaml.DocumentNode {
		if len(top.Content) == 0 {
			return nil, fmt.Errorf("%w: empty document", ErrInvalidDocument)
		}
		top = top.Content[0]
	}
	if top.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: top level must be a mapping", ErrInvalidDocument)
	}
	v, err := decodeYAML(top)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	return v.(*Node), nil
}

func decodeYAML(y *yaml.Node) (interface{}, error) {
	switch y.Kind {
	case yaml.AliasNode:
		return decodeYAML(y.Alias)
	case yaml.MappingNode:
		n := &Node{}
		for i := 0; i+1 < len(y.Content); i += 2 {
			key := y.Content[i].Value
			v, err := decodeYAML(y.Content[i+1])
			if err != nil {
				return nil, fmt.Errorf("%s: %w", key, err)
			}
			n.put(key, v)
		}
		return n, nil
	case yaml.SequenceNode:
		items := make([]interface{}, 0, len(y.Content))
		for _, c := range y.Content {
			v, err := decodeYAML(c)
			if err != nil {
				return nil, err
			}
			items = append(items, v)
		}
		return items, nil
	case yaml.ScalarNode:
		var v interface{}
		if err := y.Decode(&v); err != nil {
			return nil, fmt.Errorf("line %d: %w", y.Line, err)
		}
		if i, ok := v.(int); ok {
			return float64(i), nil
		}
		return v, nil
	}
	return nil, fmt.Errorf("line %d: unsupported node kind", y.Line)
}

func (n *Node) put(key string, v interface{}) {
	if IsMeta(key) {
		n.SetMeta(key, v)
		return
	}
	if child, ok := v.(*Node); ok {
		n.Add(key, child)
		return
	}
	n.AddScalar(key, v)
}
