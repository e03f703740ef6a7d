package xilinx

import (
	"fmt"

	"github.com/hdlforge/xbt/hdl"
)

// The synchronizer implementations below apply two separate but related
// timing constraints.
//
// First, the ASYNC_REG attribute prevents inference of shift registers from
// synchronizer FFs, and constrains the FFs to be placed as close as possible,
// ideally in one CLB. This attribute affects every synchronizer FF.
//
// Second, the false-path or max-delay attribute affects the path into the
// synchronizer and is placed on the first stage only: that stage is the one
// true asynchronous input boundary. If a maximum input delay is specified, a
// datapath-only maximum delay constraint is applied, limiting routing delay
// (and therefore skew) at the synchronizer input. Otherwise, a false path
// constraint omits the input path from timing analysis.

// FFSync describes a multi-stage metastability filter clocked in the target
// domain.
type FFSync struct {
	Name      string
	Stages    int
	Reset     int
	ResetLess bool

	// MaxInputDelay bounds the input path in seconds. Zero means no bound;
	// the input path is then constrained as a false path instead.
	MaxInputDelay float64

	Domain *hdl.ClockDomain
}

func (p *Platform) syncStages(name string, count, width, reset int, resetLess bool, maxInputDelay float64) ([]*hdl.Signal, error) {
	if count < 1 {
		return nil, fmt.Errorf("synchronizer %q needs at least one stage, got %d", name, count)
	}
	stages := make([]*hdl.Signal, count)
	for index := range stages {
		sig := p.Netlist.Signal(fmt.Sprintf("%s_stage%d", name, index), width)
		sig.Reset = reset
		sig.ResetLess = resetLess
		setAsyncReg(sig)
		stages[index] = sig
	}
	if maxInputDelay == 0 {
		setFalsePath(stages[0])
	} else {
		setMaxDelayNs(stages[0], maxInputDelay*1e9)
	}
	return stages, nil
}

// GetFFSync chains Stages flip-flops in the target domain and returns the
// synchronized last stage.
func (p *Platform) GetFFSync(s FFSync, input hdl.Value) (*hdl.Signal, error) {
	if s.Domain == nil {
		return nil, fmt.Errorf("synchronizer %q has no target clock domain", s.Name)
	}
	if s.Name == "" {
		s.Name = "ff_sync"
	}
	if s.Stages == 0 {
		s.Stages = 2
	}
	stages, err := p.syncStages(s.Name, s.Stages, input.Len(), s.Reset, s.ResetLess, s.MaxInputDelay)
	if err != nil {
		return nil, err
	}
	prev := input
	for _, stage := range stages {
		p.Netlist.AssignSync(s.Domain, stage, prev)
		prev = stage
	}
	return stages[len(stages)-1], nil
}

// Edge selects the active edge of an asynchronous reset input.
type Edge int

const (
	PosEdge Edge = iota
	NegEdge
)

// AsyncFFSync describes an asynchronous-reset synchronizer: assertion of the
// input propagates to the output asynchronously, deassertion only after every
// stage has been clocked in the target domain once.
type AsyncFFSync struct {
	Name   string
	Stages int
	Edge   Edge

	// MaxInputDelay bounds the input path in seconds; zero selects a false
	// path instead.
	MaxInputDelay float64

	Domain *hdl.ClockDomain
}

// GetAsyncFFSync builds the stage chain inside a private clock domain whose
// clock follows the target domain and whose asynchronous reset is the
// (possibly inverted) input.
func (p *Platform) GetAsyncFFSync(s AsyncFFSync, input hdl.Value) (*hdl.Signal, error) {
	if s.Domain == nil {
		return nil, fmt.Errorf("synchronizer %q has no target clock domain", s.Name)
	}
	if input.Len() != 1 {
		return nil, fmt.Errorf("asynchronous reset synchronizer input must be a single bit, got %d", input.Len())
	}
	if s.Name == "" {
		s.Name = "async_ff"
	}
	if s.Stages == 0 {
		s.Stages = 2
	}

	clk := p.Netlist.Signal(s.Name+"_clk", 1)
	rst := p.Netlist.Signal(s.Name+"_rst", 1)
	cd := &hdl.ClockDomain{Name: s.Name, Clk: clk, Rst: rst, AsyncReset: true, Local: true}
	if err := p.Netlist.AddDomain(cd); err != nil {
		return nil, err
	}
	p.Netlist.AssignComb(clk, s.Domain.Clk)
	if s.Edge == PosEdge {
		p.Netlist.AssignComb(rst, input)
	} else {
		p.Netlist.AssignComb(rst, hdl.Not(input))
	}

	// Every stage resets to 1 so that deassertion ripples through the chain.
	stages, err := p.syncStages(s.Name, s.Stages, 1, 1, false, s.MaxInputDelay)
	if err != nil {
		return nil, err
	}
	var prev hdl.Value = hdl.C(0, 1)
	for _, stage := range stages {
		p.Netlist.AssignSync(cd, stage, prev)
		prev = stage
	}
	return stages[len(stages)-1], nil
}
