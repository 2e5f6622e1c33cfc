package value

import (
	"errors"

	"gopkg.in/yaml.v3"
)

// Object is a string-keyed map that remembers insertion order. Re-setting an
// existing key keeps its position; deleting and setting again appends.
// A nil *Object reads as empty.
type Object struct {
	keys []string
	vals map[string]Value
}

func NewObject() *Object {
	return &Object{vals: make(map[string]Value)}
}

func (o *Object) Len() int {
	if o == nil {
		return 0
	}
	return len(o.keys)
}

func (o *Object) Keys() []string {
	if o == nil {
		return nil
	}
	return append([]string(nil), o.keys...)
}

func (o *Object) Get(key string) (Value, bool) {
	if o == nil {
		return Value{}, false
	}
	v, ok := o.vals[key]
	return v, ok
}

func (o *Object) Has(key string) bool {
	_, ok := o.Get(key)
	return ok
}

func (o *Object) Set(key string, v Value) {
	if o.vals == nil {
		o.vals = make(map[string]Value)
	}
	if _, ok := o.vals[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.vals[key] = v
}

func (o *Object) Delete(key string) {
	if o == nil {
		return
	}
	if _, ok := o.vals[key]; !ok {
		return
	}
	delete(o.vals, key)
	for i, k := range o.keys {
		if k == key {
			o.keys = append(o.keys[:i:i], o.keys[i+1:]...)
			break
		}
	}
}

// Range calls fn for every entry in order until fn returns false.
func (o *Object) Range(fn func(key string, v Value) bool) {
	if o == nil {
		return
	}
	for _, k := range o.keys {
		if !fn(k, o.vals[k]) {
			return
		}
	}
}

// Clone returns a copy whose key set can be changed independently.
func (o *Object) Clone() *Object {
	c := NewObject()
	o.Range(func(k string, v Value) bool {
		c.Set(k, v)
		return true
	})
	return c
}

func (o *Object) Equal(other *Object) bool {
	if o.Len() != other.Len() {
		return false
	}
	if o.Len() == 0 {
		return true
	}
	for i, k := range o.keys {
		if other.keys[i] != k || !o.vals[k].Equal(other.vals[k]) {
			return false
		}
	}
	return true
}

// Text is the compact serialized form, e.g. {"Type":"Text"}.
func (o *Object) Text() string {
	return Encode(ObjectOf(o))
}

func (o *Object) MarshalJSON() ([]byte, error) {
	return []byte(o.Text()), nil
}

func (o *Object) UnmarshalJSON(data []byte) error {
	v, err := Parse(string(data))
	if err != nil {
		return err
	}
	if v.kind == KindNull {
		*o = Object{}
		return nil
	}
	obj, ok := v.AsObject()
	if !ok {
		return errors.New("value: expected a JSON object")
	}
	*o = *obj
	return nil
}

func (o *Object) UnmarshalYAML(node *yaml.Node) error {
	v, err := FromNode(node)
	if err != nil {
		return err
	}
	if v.kind == KindNull {
		*o = Object{}
		return nil
	}
	obj, ok := v.AsObject()
	if !ok {
		return errors.New("value: expected a YAML mapping")
	}
	*o = *obj
	return nil
}

func (v *Value) UnmarshalYAML(node *yaml.Node) error {
	parsed, err := FromNode(node)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}
