package xilinx

import (
	"fmt"

	"github.com/hdlforge/xbt/build"
	"github.com/hdlforge/xbt/hdl"
)

// getDFF packs one asynchronously-clearable flip-flop per bit into the pad
// IOB, between d and q.
func (p *Platform) getDFF(clk *hdl.Signal, d hdl.Value, q *hdl.Signal) {
	for bit := 0; bit < q.Width; bit++ {
		inst := hdl.NewInstance(primDFF, fmt.Sprintf("%s_ff_%d", q.Name, bit))
		inst.SetAttr("IOB", "TRUE")
		inst.Bind("C", clk)
		inst.Bind("CE", hdl.C(1, 1))
		inst.Bind("CLR", hdl.C(0, 1))
		inst.Bind("D", hdl.BitOf(d, bit))
		inst.Bind("Q", q.Bit(bit))
		p.Netlist.AddInstance(inst)
	}
}

// getIDDR captures the even and odd phase of d into q1 and q2, one dual-output
// deserializer per bit.
func (p *Platform) getIDDR(clk *hdl.Signal, d *hdl.Signal, q1, q2 *hdl.Signal) {
	for bit := 0; bit < q1.Width; bit++ {
		inst := hdl.NewInstance(primIDDR, fmt.Sprintf("%s_iddr_%d", d.Name, bit))
		inst.SetParam("DDR_CLK_EDGE", "SAME_EDGE_PIPELINED")
		inst.SetParam("SRTYPE", "ASYNC")
		inst.SetIntParam("INIT_Q1", 0)
		inst.SetIntParam("INIT_Q2", 0)
		inst.Bind("C", clk)
		inst.Bind("CE", hdl.C(1, 1))
		inst.Bind("S", hdl.C(0, 1))
		inst.Bind("R", hdl.C(0, 1))
		inst.Bind("D", d.Bit(bit))
		inst.Bind("Q1", q1.Bit(bit))
		inst.Bind("Q2", q2.Bit(bit))
		p.Netlist.AddInstance(inst)
	}
}

// getODDR drives q by alternating between the even-phase d1 and odd-phase d2,
// one two-input serializer per bit.
func (p *Platform) getODDR(clk *hdl.Signal, d1, d2 *hdl.Signal, q *hdl.Signal) {
	for bit := 0; bit < q.Width; bit++ {
		inst := hdl.NewInstance(primODDR, fmt.Sprintf("%s_oddr_%d", q.Name, bit))
		inst.SetParam("DDR_CLK_EDGE", "SAME_EDGE")
		inst.SetParam("SRTYPE", "ASYNC")
		inst.SetIntParam("INIT", 0)
		inst.Bind("C", clk)
		inst.Bind("CE", hdl.C(1, 1))
		inst.Bind("S", hdl.C(0, 1))
		inst.Bind("R", hdl.C(0, 1))
		inst.Bind("D1", d1.Bit(bit))
		inst.Bind("D2", d2.Bit(bit))
		inst.Bind("Q", q.Bit(bit))
		p.Netlist.AddInstance(inst)
	}
}

// ineg returns the pad-facing signal of the input path, inserting an inverter
// towards the pin's input value when requested.
func (p *Platform) ineg(sig *hdl.Signal, invert bool) *hdl.Signal {
	if !invert {
		return sig
	}
	neg := p.Netlist.Signal(sig.Name+"_n", sig.Width)
	p.Netlist.AssignComb(sig, hdl.Not(neg))
	return neg
}

// oneg returns the pad-facing signal of the output path, inserting an
// inverter from the pin's output value when requested.
func (p *Platform) oneg(sig *hdl.Signal, invert bool) *hdl.Signal {
	if !invert {
		return sig
	}
	neg := p.Netlist.Signal(sig.Name+"_n", sig.Width)
	p.Netlist.AssignComb(neg, hdl.Not(sig))
	return neg
}

// xdrBuffer lowers the serialization level of a pin request and returns the
// pin-adjacent input, output and tristate-enable values. Levels 0 (plain
// wire), 1 (IOB-packed flip-flop per direction) and 2 (DDR register pair) are
// supported; anything else is a configuration error.
func (p *Platform) xdrBuffer(pin *build.Pin, inv build.Inversion) (i, o *hdl.Signal, t hdl.Value, err error) {
	if err := inv.Check(pin); err != nil {
		return nil, nil, nil, err
	}
	if pin.XDR >= 1 {
		if pin.Dir.HasInput() && pin.IClk == nil {
			return nil, nil, nil, fmt.Errorf("pin %q requires an input clock at serialization level %d", pin.Name, pin.XDR)
		}
		if pin.Dir.HasOutput() && pin.OClk == nil {
			return nil, nil, nil, fmt.Errorf("pin %q requires an output clock at serialization level %d", pin.Name, pin.XDR)
		}
	}

	var pinI, pinI0, pinI1 *hdl.Signal
	if pin.Dir.HasInput() {
		if pin.XDR < 2 {
			pinI = p.ineg(pin.I, *inv.Input)
		} else {
			pinI0 = p.ineg(pin.I0, *inv.Input)
			pinI1 = p.ineg(pin.I1, *inv.Input)
		}
	}
	var pinO, pinO0, pinO1 *hdl.Signal
	if pin.Dir.HasOutput() {
		if pin.XDR < 2 {
			pinO = p.oneg(pin.O, *inv.Output)
		} else {
			pinO0 = p.oneg(pin.O0, *inv.Output)
			pinO1 = p.oneg(pin.O1, *inv.Output)
		}
	}

	switch pin.XDR {
	case 0:
		i = pinI
		o = pinO
		if pin.Dir.HasEnable() {
			t = hdl.Not(pin.OE)
		}
	case 1:
		if pin.Dir.HasInput() {
			i = p.Netlist.Signal(pin.Name+"_xdr_i", pin.Width)
			p.getDFF(pin.IClk, i, pinI)
		}
		if pin.Dir.HasOutput() {
			o = p.Netlist.Signal(pin.Name+"_xdr_o", pin.Width)
			p.getDFF(pin.OClk, pinO, o)
		}
		if pin.Dir.HasEnable() {
			tff := p.Netlist.Signal(pin.Name+"_xdr_t", 1)
			p.getDFF(pin.OClk, hdl.Not(pin.OE), tff)
			t = tff
		}
	case 2:
		if pin.Dir.HasInput() {
			i = p.Netlist.Signal(pin.Name+"_xdr_i", pin.Width)
			p.getIDDR(pin.IClk, i, pinI0, pinI1)
		}
		if pin.Dir.HasOutput() {
			o = p.Netlist.Signal(pin.Name+"_xdr_o", pin.Width)
			p.getODDR(pin.OClk, pinO0, pinO1, o)
		}
		if pin.Dir.HasEnable() {
			// Enable switching does not need double-rate capture.
			tff := p.Netlist.Signal(pin.Name+"_xdr_t", 1)
			p.getDFF(pin.OClk, hdl.Not(pin.OE), tff)
			t = tff
		}
	default:
		return nil, nil, nil, fmt.Errorf("pin %q requests unsupported serialization level %d", pin.Name, pin.XDR)
	}
	return i, o, t, nil
}

// instantiateIOBuffer emits one pin-facing buffer primitive per bit for the
// given flavor, binding the internal values and the pad port(s).
func (p *Platform) instantiateIOBuffer(flavor ioFlavor, pin *build.Pin, i, o *hdl.Signal, t hdl.Value, pos, neg *hdl.Signal) {
	prim := ioPrimitives[flavor]
	for bit := 0; bit < pin.Width; bit++ {
		inst := hdl.NewInstance(prim.name, fmt.Sprintf("%s_%d", pin.Name, bit))
		if prim.tristate {
			inst.Bind("T", t)
		}
		if prim.output {
			inst.Bind("I", o.Bit(bit))
		}
		if prim.input {
			inst.Bind("O", i.Bit(bit))
		}
		switch {
		case prim.bidir && prim.diff:
			inst.Bind("IO", pos.Bit(bit))
			inst.Bind("IOB", neg.Bit(bit))
		case prim.bidir:
			inst.Bind("IO", pos.Bit(bit))
		case prim.input && !prim.output && prim.diff:
			inst.Bind("I", pos.Bit(bit))
			inst.Bind("IB", neg.Bit(bit))
		case prim.input && !prim.output:
			inst.Bind("I", pos.Bit(bit))
		case prim.diff:
			inst.Bind("O", pos.Bit(bit))
			inst.Bind("OB", neg.Bit(bit))
		default:
			inst.Bind("O", pos.Bit(bit))
		}
		p.Netlist.AddInstance(inst)
	}
}

func (p *Platform) checkFeature(flavor ioFlavor, pin *build.Pin, validXDRs ...int) error {
	for _, xdr := range validXDRs {
		if pin.XDR == xdr {
			return nil
		}
	}
	return fmt.Errorf("%s buffers are not supported at serialization level %d for the %s toolchain",
		flavor, pin.XDR, p.Toolchain)
}

// GetInput lowers a single-ended input request onto IBUF cells.
func (p *Platform) GetInput(pin *build.Pin, port *hdl.Signal, inv build.Inversion) error {
	if err := p.checkFeature(singleInput, pin, 0, 1, 2); err != nil {
		return err
	}
	i, o, t, err := p.xdrBuffer(pin, inv)
	if err != nil {
		return err
	}
	p.instantiateIOBuffer(singleInput, pin, i, o, t, port, nil)
	return nil
}

// GetOutput lowers a single-ended output request onto OBUF cells. The
// Symbiflow flow drives the pad combinationally instead, as its native I/O
// model has no explicit output buffer.
func (p *Platform) GetOutput(pin *build.Pin, port *hdl.Signal, inv build.Inversion) error {
	if err := p.checkFeature(singleOutput, pin, 0, 1, 2); err != nil {
		return err
	}
	_, o, t, err := p.xdrBuffer(pin, inv)
	if err != nil {
		return err
	}
	if p.Toolchain == Symbiflow {
		p.Netlist.AssignComb(port, o)
		return nil
	}
	p.instantiateIOBuffer(singleOutput, pin, nil, o, t, port, nil)
	return nil
}

// GetTristate lowers a single-ended tristate request onto OBUFT cells, or the
// platform base's generic lowering on Symbiflow.
func (p *Platform) GetTristate(pin *build.Pin, port *hdl.Signal, inv build.Inversion) error {
	if p.Toolchain == Symbiflow {
		if err := p.checkFeature(singleTristate, pin, 0); err != nil {
			return err
		}
		return p.GenericTristate(pin, port, inv)
	}
	if err := p.checkFeature(singleTristate, pin, 0, 1, 2); err != nil {
		return err
	}
	_, o, t, err := p.xdrBuffer(pin, inv)
	if err != nil {
		return err
	}
	p.instantiateIOBuffer(singleTristate, pin, nil, o, t, port, nil)
	return nil
}

// GetInputOutput lowers a single-ended bidirectional request onto IOBUF
// cells, or the platform base's generic lowering on Symbiflow.
func (p *Platform) GetInputOutput(pin *build.Pin, port *hdl.Signal, inv build.Inversion) error {
	if p.Toolchain == Symbiflow {
		if err := p.checkFeature(singleInOut, pin, 0); err != nil {
			return err
		}
		return p.GenericInputOutput(pin, port, inv)
	}
	if err := p.checkFeature(singleInOut, pin, 0, 1, 2); err != nil {
		return err
	}
	i, o, t, err := p.xdrBuffer(pin, inv)
	if err != nil {
		return err
	}
	p.instantiateIOBuffer(singleInOut, pin, i, o, t, port, nil)
	return nil
}

// GetDiffInput lowers a differential input request onto IBUFDS cells, or the
// platform base's positive-leg tap on Symbiflow.
func (p *Platform) GetDiffInput(pin *build.Pin, portP, portN *hdl.Signal, inv build.Inversion) error {
	if p.Toolchain == Symbiflow {
		if err := p.checkFeature(diffInput, pin, 0); err != nil {
			return err
		}
		return p.GenericDiffInput(pin, portP, portN, inv)
	}
	if err := p.checkFeature(diffInput, pin, 0, 1, 2); err != nil {
		return err
	}
	i, o, t, err := p.xdrBuffer(pin, inv)
	if err != nil {
		return err
	}
	p.instantiateIOBuffer(diffInput, pin, i, o, t, portP, portN)
	return nil
}

// GetDiffOutput lowers a differential output request onto OBUFDS cells, or
// the platform base's combinational pair drive on Symbiflow.
func (p *Platform) GetDiffOutput(pin *build.Pin, portP, portN *hdl.Signal, inv build.Inversion) error {
	if p.Toolchain == Symbiflow {
		if err := p.checkFeature(diffOutput, pin, 0); err != nil {
			return err
		}
		return p.GenericDiffOutput(pin, portP, portN, inv)
	}
	if err := p.checkFeature(diffOutput, pin, 0, 1, 2); err != nil {
		return err
	}
	_, o, t, err := p.xdrBuffer(pin, inv)
	if err != nil {
		return err
	}
	p.instantiateIOBuffer(diffOutput, pin, nil, o, t, portP, portN)
	return nil
}

// GetDiffTristate lowers a differential tristate request onto OBUFTDS cells,
// or the platform base's generic lowering on Symbiflow.
func (p *Platform) GetDiffTristate(pin *build.Pin, portP, portN *hdl.Signal, inv build.Inversion) error {
	if p.Toolchain == Symbiflow {
		if err := p.checkFeature(diffTristate, pin, 0); err != nil {
			return err
		}
		return p.GenericDiffTristate(pin, portP, portN, inv)
	}
	if err := p.checkFeature(diffTristate, pin, 0, 1, 2); err != nil {
		return err
	}
	_, o, t, err := p.xdrBuffer(pin, inv)
	if err != nil {
		return err
	}
	p.instantiateIOBuffer(diffTristate, pin, nil, o, t, portP, portN)
	return nil
}

// GetDiffInputOutput lowers a differential bidirectional request onto
// IOBUFDS cells, or the platform base's generic lowering on Symbiflow.
func (p *Platform) GetDiffInputOutput(pin *build.Pin, portP, portN *hdl.Signal, inv build.Inversion) error {
	if p.Toolchain == Symbiflow {
		if err := p.checkFeature(diffInOut, pin, 0); err != nil {
			return err
		}
		return p.GenericDiffInputOutput(pin, portP, portN, inv)
	}
	if err := p.checkFeature(diffInOut, pin, 0, 1, 2); err != nil {
		return err
	}
	i, o, t, err := p.xdrBuffer(pin, inv)
	if err != nil {
		return err
	}
	p.instantiateIOBuffer(diffInOut, pin, i, o, t, portP, portN)
	return nil
}
