// internal/types/block.go
package types

import "reflect"

// Data is the opaque key-value payload carried by a block.
type Data map[string]any

// Block is one content unit of a document.
// ID is the only anchor used to match blocks across two snapshots.
// An empty ID means the block has no identity yet (not persisted by the host).
type Block struct {
	ID   string `json:"id,omitempty" yaml:"id,omitempty" toml:"id,omitempty"`
	Type string `json:"type" yaml:"type" toml:"type"`
	Data Data   `json:"data" yaml:"data" toml:"data"`
}

// HasID reports whether the block carries a stable identity.
func (b Block) HasID() bool {
	return b.ID != ""
}

// Equal compares id, type and a deep comparison of data.
// A nil payload and an empty payload are considered equal.
func (b Block) Equal(other Block) bool {
	if b.ID != other.ID || b.Type != other.Type {
		return false
	}
	return b.Data.Equal(other.Data)
}

// Equal deep-compares two payloads. At every depth a nil map or slice
// equals an empty one of the same type.
func (d Data) Equal(other Data) bool {
	return equalValue(reflect.ValueOf(d), reflect.ValueOf(other))
}

// Clone returns a deep copy of the payload.
func (d Data) Clone() Data {
	if d == nil {
		return nil
	}
	out := make(Data, len(d))
	for k, v := range d {
		out[k] = cloneValue(v)
	}
	return out
}

// Clone returns a copy of the block that shares no mutable state.
func (b Block) Clone() Block {
	return Block{ID: b.ID, Type: b.Type, Data: b.Data.Clone()}
}

// Snapshot is the ordered list of blocks making up a document at one point in time.
type Snapshot []Block

// Equal reports whether both snapshots have the same length and are
// deep-equal position by position.
func (s Snapshot) Equal(other Snapshot) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if !s[i].Equal(other[i]) {
			return false
		}
	}
	return true
}

// Clone deep-copies the snapshot.
func (s Snapshot) Clone() Snapshot {
	if s == nil {
		return nil
	}
	out := make(Snapshot, len(s))
	for i, b := range s {
		out[i] = b.Clone()
	}
	return out
}

// Index maps block IDs to their position. Blocks without identity are skipped,
// so they never match anything.
func (s Snapshot) Index() map[string]int {
	idx := make(map[string]int, len(s))
	for i, b := range s {
		if b.HasID() {
			idx[b.ID] = i
		}
	}
	return idx
}

// IDs lists block IDs in document order; blocks without identity show as "-".
func (s Snapshot) IDs() []string {
	ids := make([]string, len(s))
	for i, b := range s {
		if b.HasID() {
			ids[i] = b.ID
		} else {
			ids[i] = "-"
		}
	}
	return ids
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return map[string]any(Data(t).Clone())
	case Data:
		return t.Clone()
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = cloneValue(item)
		}
		return out
	case []string:
		return append([]string(nil), t...)
	case nil:
		return nil
	default:
		return cloneReflect(reflect.ValueOf(v)).Interface()
	}
}

// cloneReflect copies maps, slices and arrays of any element type. Pointers,
// channels and structs are shared.
func cloneReflect(v reflect.Value) reflect.Value {
	switch v.Kind() {
	case reflect.Interface:
		if v.IsNil() {
			return v
		}
		out := reflect.New(v.Type()).Elem()
		out.Set(cloneReflect(v.Elem()))
		return out
	case reflect.Map:
		if v.IsNil() {
			return v
		}
		out := reflect.MakeMapWithSize(v.Type(), v.Len())
		iter := v.MapRange()
		for iter.Next() {
			out.SetMapIndex(iter.Key(), cloneReflect(iter.Value()))
		}
		return out
	case reflect.Slice:
		if v.IsNil() {
			return v
		}
		out := reflect.MakeSlice(v.Type(), v.Len(), v.Len())
		for i := 0; i < v.Len(); i++ {
			out.Index(i).Set(cloneReflect(v.Index(i)))
		}
		return out
	case reflect.Array:
		out := reflect.New(v.Type()).Elem()
		for i := 0; i < v.Len(); i++ {
			out.Index(i).Set(cloneReflect(v.Index(i)))
		}
		return out
	default:
		return v
	}
}

func equalValue(a, b reflect.Value) bool {
	if !a.IsValid() || !b.IsValid() {
		return a.IsValid() == b.IsValid()
	}
	if a.Type() != b.Type() {
		return false
	}
	switch a.Kind() {
	case reflect.Interface:
		if a.IsNil() || b.IsNil() {
			return a.IsNil() == b.IsNil()
		}
		return equalValue(a.Elem(), b.Elem())
	case reflect.Map:
		if a.Len() != b.Len() {
			return false
		}
		iter := a.MapRange()
		for iter.Next() {
			other := b.MapIndex(iter.Key())
			if !other.IsValid() || !equalValue(iter.Value(), other) {
				return false
			}
		}
		return true
	case reflect.Slice, reflect.Array:
		if a.Len() != b.Len() {
			return false
		}
		for i := 0; i < a.Len(); i++ {
			if !equalValue(a.Index(i), b.Index(i)) {
				return false
			}
		}
		return true
	default:
		return reflect.DeepEqual(a.Interface(), b.Interface())
	}
}
