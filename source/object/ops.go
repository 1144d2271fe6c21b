package object

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pscript-run/pscript/source/perr"
)

// numeric reports whether v's tag participates in the arithmetic/
// promotion matrix of SPEC_FULL.md §4.2.
func numeric(v Value) bool { return v.Tag == IntTag || v.Tag == FloatTag }

func asFloat(v Value) float64 {
	if v.Tag == IntTag {
		return float64(v.I)
	}
	return v.F
}

// Add implements +: int+int->int, float+float->float, mixed->float
// (promote), string+string->concatenation.
func (h *Heap) Add(a, b Value) (Value, error) {
	switch {
	case a.Tag == StringTag && b.Tag == StringTag:
		as, err := h.String(a)
		if err != nil {
			return Value{}, err
		}
		bs, err := h.String(b)
		if err != nil {
			return Value{}, err
		}
		return h.NewString(as + bs)
	case a.Tag == IntTag && b.Tag == IntTag:
		return IntValue(a.I + b.I), nil
	case numeric(a) && numeric(b):
		return FloatValue(asFloat(a) + asFloat(b)), nil
	default:
		return Value{}, perr.Type(nil, "cannot add %s and %s", a.Tag, b.Tag)
	}
}

func (h *Heap) arith(a, b Value, opName string, fi func(x, y int64) int64, ff func(x, y float64) float64) (Value, error) {
	switch {
	case a.Tag == IntTag && b.Tag == IntTag:
		return IntValue(fi(a.I, b.I)), nil
	case numeric(a) && numeric(b):
		return FloatValue(ff(asFloat(a), asFloat(b))), nil
	default:
		return Value{}, perr.Type(nil, "cannot %s %s and %s", opName, a.Tag, b.Tag)
	}
}

func (h *Heap) Sub(a, b Value) (Value, error) {
	return h.arith(a, b, "subtract", func(x, y int64) int64 { return x - y }, func(x, y float64) float64 { return x - y })
}

func (h *Heap) Mul(a, b Value) (Value, error) {
	return h.arith(a, b, "multiply", func(x, y int64) int64 { return x * y }, func(x, y float64) float64 { return x * y })
}

// Div implements /. Integer division truncates toward zero (SPEC_FULL.md
// §9's resolution of the open question). Division by zero is a TypeError
// regardless of operand tags, per §4.2.
func (h *Heap) Div(a, b Value) (Value, error) {
	if a.Tag == IntTag && b.Tag == IntTag {
		if b.I == 0 {
			return Value{}, perr.Type(nil, "division by zero")
		}
		return IntValue(a.I / b.I), nil
	}
	if numeric(a) && numeric(b) {
		if asFloat(b) == 0 {
			return Value{}, perr.Type(nil, "division by zero")
		}
		return FloatValue(asFloat(a) / asFloat(b)), nil
	}
	return Value{}, perr.Type(nil, "cannot divide %s and %s", a.Tag, b.Tag)
}

// Neg implements unary -.
func (h *Heap) Neg(a Value) (Value, error) {
	switch a.Tag {
	case IntTag:
		return IntValue(-a.I), nil
	case FloatTag:
		return FloatValue(-a.F), nil
	default:
		return Value{}, perr.Type(nil, "cannot negate %s", a.Tag)
	}
}

// Equal implements == and != between two values of comparable tags.
func (h *Heap) Equal(a, b Value) (bool, error) {
	switch {
	case numeric(a) && numeric(b):
		return asFloat(a) == asFloat(b), nil
	case a.Tag == BoolTag && b.Tag == BoolTag:
		return a.B == b.B, nil
	case a.Tag == StringTag && b.Tag == StringTag:
		as, err := h.String(a)
		if err != nil {
			return false, err
		}
		bs, err := h.String(b)
		if err != nil {
			return false, err
		}
		return as == bs, nil
	case a.Tag == Null && b.Tag == Null:
		return true, nil
	default:
		return false, perr.Type(nil, "cannot compare %s and %s for equality", a.Tag, b.Tag)
	}
}

// Compare implements the ordering operators <, >, <=, >= between two
// numeric or two string values. Other tag pairs raise TypeError.
func (h *Heap) Compare(a, b Value) (int, error) {
	switch {
	case numeric(a) && numeric(b):
		af, bf := asFloat(a), asFloat(b)
		switch {
		case af < bf:
			return -1, nil
		case af > bf:
			return 1, nil
		default:
			return 0, nil
		}
	case a.Tag == StringTag && b.Tag == StringTag:
		as, err := h.String(a)
		if err != nil {
			return 0, err
		}
		bs, err := h.String(b)
		if err != nil {
			return 0, err
		}
		return strings.Compare(as, bs), nil
	default:
		return 0, perr.Type(nil, "cannot order %s and %s", a.Tag, b.Tag)
	}
}

// Stringify renders v's textual form, as used by __print.
func (h *Heap) Stringify(v Value) (string, error) {
	switch v.Tag {
	case Null:
		return "null", nil
	case IntTag:
		return strconv.FormatInt(v.I, 10), nil
	case FloatTag:
		return strconv.FormatFloat(v.F, 'g', -1, 64), nil
	case BoolTag:
		return strconv.FormatBool(v.B), nil
	case StringTag:
		return h.String(v)
	case ListTag:
		l, err := h.List(v)
		if err != nil {
			return "", err
		}
		parts := make([]string, len(l.Elements))
		for i, e := range l.Elements {
			s, err := h.Stringify(e)
			if err != nil {
				return "", err
			}
			parts[i] = s
		}
		return "[" + strings.Join(parts, ", ") + "]", nil
	case StructTag:
		s, err := h.Struct(v)
		if err != nil {
			return "", err
		}
		parts := make([]string, len(s.Order))
		for i, name := range s.Order {
			fs, err := h.Stringify(s.Fields[name])
			if err != nil {
				return "", err
			}
			parts[i] = fmt.Sprintf("%s: %s", name, fs)
		}
		return s.Name + " { " + strings.Join(parts, ", ") + " }", nil
	default:
		return "", perr.Type(nil, "cannot stringify %s", v.Tag)
	}
}

// ParseInt implements the string.parse_int() member function.
func (h *Heap) ParseInt(v Value) (Value, error) {
	s, err := h.String(v)
	if err != nil {
		return Value{}, err
	}
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return Value{}, perr.Type(nil, "cannot parse %q as int", s)
	}
	return IntValue(n), nil
}

// ParseFloat implements the string.parse_float() member function.
func (h *Heap) ParseFloat(v Value) (Value, error) {
	s, err := h.String(v)
	if err != nil {
		return Value{}, err
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return Value{}, perr.Type(nil, "cannot parse %q as float", s)
	}
	return FloatValue(f), nil
}

// Format implements the string.format(args...) member function: a
// minimal positional scheme substituting "{}" left to right with the
// stringified arguments (SPEC_FULL.md §9's resolution of the open
// question on placeholder syntax).
func (h *Heap) Format(v Value, args []Value) (Value, error) {
	s, err := h.String(v)
	if err != nil {
		return Value{}, err
	}
	var out strings.Builder
	argIdx := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '{' && i+1 < len(s) && s[i+1] == '}' {
			if argIdx < len(args) {
				as, err := h.Stringify(args[argIdx])
				if err != nil {
					return Value{}, err
				}
				out.WriteString(as)
				argIdx++
			}
			i++
			continue
		}
		out.WriteByte(s[i])
	}
	return h.NewString(out.String())
}
