// Package build carries the toolchain-agnostic half of a platform: pin
// requests, the registries of pin and clock constraint facts, template
// rendering and the build-plan runner. Vendor backends build on top of it.
package build

import (
	"fmt"
	"strconv"

	"github.com/hdlforge/xbt/hdl"
)

// Attr is a named electrical or placement attribute of a port constraint.
type Attr struct {
	Name  string
	Value string
}

// PortConstraint binds one bit of a logical port to a physical pin location.
type PortConstraint struct {
	Port  string
	Pin   string
	Attrs []Attr
}

// ClockConstraint constrains the frequency of a clock. Exactly one of Net and
// Port denotes the constrained source.
type ClockConstraint struct {
	Net       *hdl.Signal
	Port      *hdl.Signal
	Frequency float64
}

func (c ClockConstraint) signal() *hdl.Signal {
	if c.Port != nil {
		return c.Port
	}
	return c.Net
}

// PeriodNs returns the clock period in nanoseconds, formatted without
// trailing zeros (100 MHz renders as "10").
func (c ClockConstraint) PeriodNs() string {
	return strconv.FormatFloat(1e9/c.Frequency, 'g', -1, 64)
}

// Platform accumulates the structural netlist and the constraint facts of one
// build. Facts are additive and must all be registered before rendering;
// rendering is a pure read.
type Platform struct {
	Design  string
	Netlist *hdl.Netlist

	overrides map[string]string
	ports     []PortConstraint
	clocks    []ClockConstraint
}

// NewPlatform creates an empty platform for a design of the given name.
func NewPlatform(design string) *Platform {
	return &Platform{
		Design:    design,
		Netlist:   hdl.NewNetlist(design),
		overrides: map[string]string{},
	}
}

// SetOverride installs free-form text for a named override hook of the
// artifact templates.
func (p *Platform) SetOverride(name, text string) {
	p.overrides[name] = text
}

// Override returns the override text for a hook, or the default when the
// caller supplied none.
func (p *Platform) Override(name, def string) string {
	if text, ok := p.overrides[name]; ok {
		return text
	}
	return def
}

// AddPortConstraint registers the pin location and electrical attributes for
// one bit of a logical port.
func (p *Platform) AddPortConstraint(port, pin string, attrs []Attr) {
	p.ports = append(p.ports, PortConstraint{Port: port, Pin: pin, Attrs: attrs})
}

// PortConstraints returns all registered pin-location constraints in
// registration order.
func (p *Platform) PortConstraints() []PortConstraint { return p.ports }

// AddClockConstraint registers a frequency constraint for a clock net or an
// external clock port. Registering the same signal twice is an error: facts
// are additive and have no merge policy.
func (p *Platform) AddClockConstraint(net, port *hdl.Signal, frequency float64) error {
	if (net == nil) == (port == nil) {
		return fmt.Errorf("exactly one of net and port must denote the constrained clock")
	}
	if frequency <= 0 {
		return fmt.Errorf("clock frequency must be positive, got %g", frequency)
	}
	constraint := ClockConstraint{Net: net, Port: port, Frequency: frequency}
	for _, existing := range p.clocks {
		if existing.signal() == constraint.signal() {
			return fmt.Errorf("clock %q is already constrained to %g Hz",
				existing.signal().Name, existing.Frequency)
		}
	}
	p.clocks = append(p.clocks, constraint)
	return nil
}

// ClockConstraints returns all registered clock constraints in registration
// order.
func (p *Platform) ClockConstraints() []ClockConstraint { return p.clocks }

// Generic buffer fallbacks. Toolchains whose native I/O model does not expose
// a primitive for some electrical flavor degrade to these lowerings. They
// support combinational requests only.

func (p *Platform) genericCheck(flavor string, pin *Pin, inv Inversion) error {
	if pin.XDR != 0 {
		return fmt.Errorf("generic %s buffers only support serialization level 0, got %d", flavor, pin.XDR)
	}
	return inv.Check(pin)
}

// GenericOutput drives the port combinationally from the pin's output value.
func (p *Platform) GenericOutput(pin *Pin, port *hdl.Signal, inv Inversion) error {
	if err := p.genericCheck("output", pin, inv); err != nil {
		return err
	}
	p.Netlist.AssignComb(port, hdl.NotIf(*inv.Output, pin.O))
	return nil
}

// GenericTristate lowers a tristate request to one $tribuf cell per bit.
func (p *Platform) GenericTristate(pin *Pin, port *hdl.Signal, inv Inversion) error {
	if err := p.genericCheck("tristate", pin, inv); err != nil {
		return err
	}
	for bit := 0; bit < pin.Width; bit++ {
		inst := hdl.NewInstance("$tribuf", fmt.Sprintf("%s_%d", pin.Name, bit))
		inst.Bind("EN", pin.OE)
		inst.Bind("A", hdl.NotIf(*inv.Output, pin.O.Bit(bit)))
		inst.Bind("Y", port.Bit(bit))
		p.Netlist.AddInstance(inst)
	}
	return nil
}

// GenericInputOutput lowers a bidirectional request to $tribuf cells plus a
// combinational input tap.
func (p *Platform) GenericInputOutput(pin *Pin, port *hdl.Signal, inv Inversion) error {
	if err := p.genericCheck("input/output", pin, inv); err != nil {
		return err
	}
	for bit := 0; bit < pin.Width; bit++ {
		inst := hdl.NewInstance("$tribuf", fmt.Sprintf("%s_%d", pin.Name, bit))
		inst.Bind("EN", pin.OE)
		inst.Bind("A", hdl.NotIf(*inv.Output, pin.O.Bit(bit)))
		inst.Bind("Y", port.Bit(bit))
		p.Netlist.AddInstance(inst)
	}
	p.Netlist.AssignComb(pin.I, hdl.NotIf(*inv.Input, port))
	return nil
}

// GenericDiffInput taps only the positive leg of a differential pair.
func (p *Platform) GenericDiffInput(pin *Pin, portP, portN *hdl.Signal, inv Inversion) error {
	if err := p.genericCheck("differential input", pin, inv); err != nil {
		return err
	}
	p.Netlist.AssignComb(pin.I, hdl.NotIf(*inv.Input, portP))
	return nil
}

// GenericDiffOutput drives both legs of a differential pair combinationally.
func (p *Platform) GenericDiffOutput(pin *Pin, portP, portN *hdl.Signal, inv Inversion) error {
	if err := p.genericCheck("differential output", pin, inv); err != nil {
		return err
	}
	o := hdl.NotIf(*inv.Output, pin.O)
	p.Netlist.AssignComb(portP, o)
	p.Netlist.AssignComb(portN, hdl.Not(o))
	return nil
}

// GenericDiffTristate lowers a differential tristate request to $tribuf cells
// driving both legs.
func (p *Platform) GenericDiffTristate(pin *Pin, portP, portN *hdl.Signal, inv Inversion) error {
	if err := p.genericCheck("differential tristate", pin, inv); err != nil {
		return err
	}
	for bit := 0; bit < pin.Width; bit++ {
		o := hdl.NotIf(*inv.Output, pin.O.Bit(bit))
		instP := hdl.NewInstance("$tribuf", fmt.Sprintf("%s_p_%d", pin.Name, bit))
		instP.Bind("EN", pin.OE)
		instP.Bind("A", o)
		instP.Bind("Y", portP.Bit(bit))
		p.Netlist.AddInstance(instP)
		instN := hdl.NewInstance("$tribuf", fmt.Sprintf("%s_n_%d", pin.Name, bit))
		instN.Bind("EN", pin.OE)
		instN.Bind("A", hdl.Not(o))
		instN.Bind("Y", portN.Bit(bit))
		p.Netlist.AddInstance(instN)
	}
	return nil
}

// GenericDiffInputOutput lowers a differential bidirectional request to
// $tribuf cells plus a positive-leg input tap.
func (p *Platform) GenericDiffInputOutput(pin *Pin, portP, portN *hdl.Signal, inv Inversion) error {
	if err := p.GenericDiffTristate(pin, portP, portN, inv); err != nil {
		return err
	}
	p.Netlist.AssignComb(pin.I, hdl.NotIf(*inv.Input, portP))
	return nil
}
