package build

import (
	"fmt"

	"github.com/hdlforge/xbt/hdl"
)

// Dir is the direction of a pin request.
type Dir string

const (
	Input    Dir = "i"
	Output   Dir = "o"
	Tristate Dir = "oe"
	InOut    Dir = "io"
)

// HasInput reports whether the request carries an input path.
func (d Dir) HasInput() bool { return d == Input || d == InOut }

// HasOutput reports whether the request carries an output path.
func (d Dir) HasOutput() bool { return d == Output || d == Tristate || d == InOut }

// HasEnable reports whether the request carries a tristate-enable.
func (d Dir) HasEnable() bool { return d == Tristate || d == InOut }

func (d Dir) valid() bool {
	switch d {
	case Input, Output, Tristate, InOut:
		return true
	}
	return false
}

// Pin is a single I/O request: a logical pin with a direction, a bit width
// and a serialization level (XDR). The I/O/OE signals (I0/I1, O0/O1 phase
// pairs at XDR 2) form the boundary between the buffer and the rest of the
// design.
type Pin struct {
	Name  string
	Dir   Dir
	Width int
	XDR   int

	// Clocks for the registered paths. Required before lowering whenever
	// XDR >= 1 for the corresponding direction.
	IClk *hdl.Signal
	OClk *hdl.Signal

	I  *hdl.Signal
	O  *hdl.Signal
	OE *hdl.Signal

	I0, I1 *hdl.Signal
	O0, O1 *hdl.Signal
}

// NewPin allocates the boundary signals for a pin request in the netlist.
func NewPin(nl *hdl.Netlist, name string, dir Dir, width, xdr int) (*Pin, error) {
	if !dir.valid() {
		return nil, fmt.Errorf("invalid pin direction %q", dir)
	}
	if width < 1 {
		return nil, fmt.Errorf("pin %q must have a positive width, got %d", name, width)
	}
	if xdr < 0 {
		return nil, fmt.Errorf("pin %q must have a non-negative serialization level, got %d", name, xdr)
	}

	pin := &Pin{Name: name, Dir: dir, Width: width, XDR: xdr}
	if dir.HasInput() {
		if xdr == 2 {
			pin.I0 = nl.Signal(name+"_i0", width)
			pin.I1 = nl.Signal(name+"_i1", width)
		} else {
			pin.I = nl.Signal(name+"_i", width)
		}
	}
	if dir.HasOutput() {
		if xdr == 2 {
			pin.O0 = nl.Signal(name+"_o0", width)
			pin.O1 = nl.Signal(name+"_o1", width)
		} else {
			pin.O = nl.Signal(name+"_o", width)
		}
	}
	if dir.HasEnable() {
		pin.OE = nl.Signal(name+"_oe", 1)
	}
	return pin, nil
}

// Inversion carries the already-negotiated polarity-inversion flags for the
// two data paths of a pin request. A nil flag is only legal when the
// corresponding direction is absent from the request.
type Inversion struct {
	Input  *bool
	Output *bool
}

// Invert is a convenience constructor for inversion flags.
func Invert(v bool) *bool { return &v }

// Check validates that every direction present in the request has a resolved
// inversion flag.
func (inv Inversion) Check(pin *Pin) error {
	if pin.Dir.HasInput() && inv.Input == nil {
		return fmt.Errorf("pin %q requests an input path but no input inversion was resolved", pin.Name)
	}
	if pin.Dir.HasOutput() && inv.Output == nil {
		return fmt.Errorf("pin %q requests an output path but no output inversion was resolved", pin.Name)
	}
	return nil
}
