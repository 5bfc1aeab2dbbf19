package modelkit

import (
	"bytes"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// Representation is the ordered mapping produced by Serialize. Keys keep
// insertion order, which is schema declaration order followed by extras.
type Representation struct {
	keys   []string
	values map[string]any
}

// NewRepresentation returns an empty Representation.
func NewRepresentation() *Representation {
	return &Representation{values: map[string]any{}}
}

// Set assigns key, appending it when new.
func (r *Representation) Set(key string, v any) {
	if _, ok := r.values[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.values[key] = v
}

// Get returns the value for key.
func (r *Representation) Get(key string) (any, bool) {
	v, ok := r.values[key]
	return v, ok
}

// Delete removes key.
func (r *Representation) Delete(key string) {
	if _, ok := r.values[key]; !ok {
		return
	}
	delete(r.values, key)
	for i, k := range r.keys {
		if k == key {
			r.keys = append(r.keys[:i], r.keys[i+1:]...)
			break
		}
	}
}

// Keys returns the keys in order.
func (r *Representation) Keys() []string { return append([]string(nil), r.keys...) }

func (r *Representation) Len() int { return len(r.keys) }

// Map returns an unordered copy.
func (r *Representation) Map() map[string]any { return copyMap(r.values) }

// Clone returns a shallow copy.
func (r *Representation) Clone() *Representation {
	return &Representation{keys: append([]string(nil), r.keys...), values: copyMap(r.values)}
}

// MarshalJSON encodes the mapping as a JSON object in key order.
func (r *Representation) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(r.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalYAML encodes the mapping as a YAML mapping node in key order.
func (r *Representation) MarshalYAML() (any, error) {
	n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, k := range r.keys {
		kn := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k}
		vn := &yaml.Node{}
		if err := vn.Encode(r.values[k]); err != nil {
			return nil, err
		}
		n.Content = append(n.Content, kn, vn)
	}
	return n, nil
}
