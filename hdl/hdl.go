// Package hdl holds the structural netlist a platform build accumulates:
// signals, clock domains, primitive instances and assignments. The netlist is
// never executed or simulated; it only exists to be dumped as structural
// Verilog and to carry the string-keyed attributes that the constraint
// emitters read back at artifact-render time.
package hdl

import (
	"fmt"

	"github.com/hdlforge/xbt/util"
)

// Value is anything that can be bound to an instance port or appear on either
// side of an assignment.
type Value interface {
	// Len returns the width of the value in bits.
	Len() int
	// Ref returns the Verilog expression referring to the value.
	Ref() string
}

// Signal is a named multi-bit wire or register.
type Signal struct {
	Name      string
	Width     int
	Reset     int
	ResetLess bool

	attrs util.OrderedMap[string, string]
}

func newSignal(name string, width int) *Signal {
	attrs := util.NewOrderedMap[string, string]()
	attrs.AllowOverrides()
	return &Signal{Name: name, Width: width, attrs: attrs}
}

// Len returns the width of the signal.
func (s *Signal) Len() int { return s.Width }

// Ref returns the Verilog reference for the whole signal.
func (s *Signal) Ref() string { return s.Name }

// Bit returns a single-bit view of the signal.
func (s *Signal) Bit(index int) Value {
	if s.Width == 1 && index == 0 {
		return s
	}
	return bitSelect{sig: s, index: index}
}

// SetAttr attaches a free-form attribute to the signal. Later writes of the
// same key win.
func (s *Signal) SetAttr(name, value string) {
	s.attrs.Insert(name, value)
}

// Attr looks up an attribute by name.
func (s *Signal) Attr(name string) (string, bool) {
	return s.attrs.Lookup(name)
}

// Attrs returns all attributes ordered by name.
func (s *Signal) Attrs() []util.OrderedMapEntry[string, string] {
	return s.attrs.Entries()
}

type bitSelect struct {
	sig   *Signal
	index int
}

func (b bitSelect) Len() int    { return 1 }
func (b bitSelect) Ref() string { return fmt.Sprintf("%s[%d]", b.sig.Name, b.index) }

// Const is a constant value of a fixed width.
type Const struct {
	Value int
	Width int
}

// C is shorthand for constructing a Const.
func C(value, width int) Const { return Const{Value: value, Width: width} }

func (c Const) Len() int    { return c.Width }
func (c Const) Ref() string { return fmt.Sprintf("%d'd%d", c.Width, c.Value) }

type inverted struct {
	v Value
}

func (n inverted) Len() int    { return n.v.Len() }
func (n inverted) Ref() string { return fmt.Sprintf("~%s", n.v.Ref()) }

// Not returns the bitwise negation of a value. Negating a negation yields the
// original value again.
func Not(v Value) Value {
	if n, ok := v.(inverted); ok {
		return n.v
	}
	return inverted{v: v}
}

// NotIf negates the value only when invert is set.
func NotIf(invert bool, v Value) Value {
	if invert {
		return Not(v)
	}
	return v
}

// BitOf returns a single-bit view of any value.
func BitOf(v Value, index int) Value {
	if v.Len() == 1 && index == 0 {
		return v
	}
	switch val := v.(type) {
	case *Signal:
		return val.Bit(index)
	case Const:
		return C((val.Value>>index)&1, 1)
	case inverted:
		return Not(BitOf(val.v, index))
	default:
		return v
	}
}

// ClockDomain groups synchronous assignments under a common clock and an
// optional reset.
type ClockDomain struct {
	Name       string
	Clk        *Signal
	Rst        *Signal
	AsyncReset bool

	// Local domains are private to the construct that created them and are
	// never looked up by name from elsewhere in the design.
	Local bool
}
