package hdl

import (
	"fmt"

	"github.com/hdlforge/xbt/log"
	"github.com/hdlforge/xbt/util"
)

// PortDir is the direction of a top-level port.
type PortDir string

const (
	PortInput  PortDir = "input"
	PortOutput PortDir = "output"
	PortInOut  PortDir = "inout"
)

// Port is a top-level port of the design.
type Port struct {
	Signal *Signal
	Dir    PortDir
}

// ParamBinding is a named parameter of an instance, with the value already
// rendered as a Verilog token.
type ParamBinding struct {
	Name  string
	Value string
}

// PortBinding binds a named port of an instance to a value.
type PortBinding struct {
	Name  string
	Value Value
}

// Instance is a single instantiation of a vendor primitive.
type Instance struct {
	Type   string
	Name   string
	Params []ParamBinding
	Ports  []PortBinding

	attrs util.OrderedMap[string, string]
}

// NewInstance creates an instance of the given primitive type.
func NewInstance(primitive, name string) *Instance {
	attrs := util.NewOrderedMap[string, string]()
	attrs.AllowOverrides()
	return &Instance{Type: primitive, Name: name, attrs: attrs}
}

// SetAttr attaches a free-form attribute to the instance.
func (inst *Instance) SetAttr(name, value string) {
	inst.attrs.Insert(name, value)
}

// Attr looks up an instance attribute by name.
func (inst *Instance) Attr(name string) (string, bool) {
	return inst.attrs.Lookup(name)
}

// Attrs returns all instance attributes ordered by name.
func (inst *Instance) Attrs() []util.OrderedMapEntry[string, string] {
	return inst.attrs.Entries()
}

// SetParam sets a string-valued primitive parameter.
func (inst *Instance) SetParam(name, value string) {
	inst.Params = append(inst.Params, ParamBinding{Name: name, Value: fmt.Sprintf("%q", value)})
}

// SetIntParam sets an integer-valued primitive parameter.
func (inst *Instance) SetIntParam(name string, value int) {
	inst.Params = append(inst.Params, ParamBinding{Name: name, Value: fmt.Sprintf("%d", value)})
}

// Bind binds a named port of the instance to a value.
func (inst *Instance) Bind(port string, value Value) {
	inst.Ports = append(inst.Ports, PortBinding{Name: port, Value: value})
}

// Assign is a combinational assignment.
type Assign struct {
	LHS Value
	RHS Value
}

// SyncAssign is an assignment clocked in a domain.
type SyncAssign struct {
	Domain *ClockDomain
	LHS    Value
	RHS    Value
}

// Netlist is the single structural netlist under construction during one
// platform-build invocation. It is exclusively owned by the calling build
// step; there is no locking.
type Netlist struct {
	Name string

	names     map[string]int
	signals   []*Signal
	ports     []Port
	domains   []*ClockDomain
	instances []*Instance
	combs     []Assign
	syncs     []SyncAssign
}

// NewNetlist creates an empty netlist for a design of the given name.
func NewNetlist(name string) *Netlist {
	return &Netlist{
		Name:  name,
		names: map[string]int{},
	}
}

func (nl *Netlist) uniqueName(name string) string {
	count, taken := nl.names[name]
	nl.names[name]++
	if !taken {
		return name
	}
	return fmt.Sprintf("%s_%d", name, count)
}

// Signal declares a new signal. Name collisions are resolved by appending a
// counter suffix.
func (nl *Netlist) Signal(name string, width int) *Signal {
	if width < 1 {
		log.Fatal("Signal '%s' must have a positive width, got %d.\n", name, width)
	}
	sig := newSignal(nl.uniqueName(name), width)
	nl.signals = append(nl.signals, sig)
	return sig
}

// AddPort declares a new top-level port and returns its signal.
func (nl *Netlist) AddPort(name string, width int, dir PortDir) *Signal {
	sig := nl.Signal(name, width)
	nl.ports = append(nl.ports, Port{Signal: sig, Dir: dir})
	return sig
}

// AddDomain registers a clock domain. Non-local domain names must be unique;
// local domains are renamed as needed.
func (nl *Netlist) AddDomain(cd *ClockDomain) error {
	if cd.Local {
		cd.Name = nl.uniqueName(cd.Name)
	} else if _, ok := nl.Domain(cd.Name); ok {
		return fmt.Errorf("clock domain %q already exists", cd.Name)
	}
	nl.domains = append(nl.domains, cd)
	return nil
}

// Domain looks up a non-local clock domain by name.
func (nl *Netlist) Domain(name string) (*ClockDomain, bool) {
	for _, cd := range nl.domains {
		if !cd.Local && cd.Name == name {
			return cd, true
		}
	}
	return nil, false
}

// AddInstance adds a primitive instantiation.
func (nl *Netlist) AddInstance(inst *Instance) {
	inst.Name = nl.uniqueName(inst.Name)
	nl.instances = append(nl.instances, inst)
}

// AssignComb adds a combinational assignment.
func (nl *Netlist) AssignComb(lhs, rhs Value) {
	if lhs.Len() != rhs.Len() {
		log.Fatal("Width mismatch in assignment to '%s': %d vs %d.\n", lhs.Ref(), lhs.Len(), rhs.Len())
	}
	nl.combs = append(nl.combs, Assign{LHS: lhs, RHS: rhs})
}

// AssignSync adds an assignment clocked in the given domain.
func (nl *Netlist) AssignSync(cd *ClockDomain, lhs, rhs Value) {
	if lhs.Len() != rhs.Len() {
		log.Fatal("Width mismatch in assignment to '%s': %d vs %d.\n", lhs.Ref(), lhs.Len(), rhs.Len())
	}
	nl.syncs = append(nl.syncs, SyncAssign{Domain: cd, LHS: lhs, RHS: rhs})
}

// Ports returns the top-level ports in declaration order.
func (nl *Netlist) Ports() []Port { return nl.ports }

// Instances returns all primitive instantiations in creation order.
func (nl *Netlist) Instances() []*Instance { return nl.instances }

// InstancesOf returns all instantiations of the given primitive type.
func (nl *Netlist) InstancesOf(primitive string) []*Instance {
	result := []*Instance{}
	for _, inst := range nl.instances {
		if inst.Type == primitive {
			result = append(result, inst)
		}
	}
	return result
}

// Domains returns all clock domains in registration order.
func (nl *Netlist) Domains() []*ClockDomain { return nl.domains }

// CombAssigns returns all combinational assignments.
func (nl *Netlist) CombAssigns() []Assign { return nl.combs }

// SyncAssigns returns all clocked assignments.
func (nl *Netlist) SyncAssigns() []SyncAssign { return nl.syncs }
