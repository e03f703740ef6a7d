package xilinx

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hdlforge/xbt/build"
	"github.com/hdlforge/xbt/hdl"
)

var artyConfig = Config{Device: "xc7a35ti", Package: "csg324", Speed: "1L"}

func testPlatform(t *testing.T, toolchain Toolchain) *Platform {
	t.Helper()
	p, err := NewPlatform("top", artyConfig, toolchain)
	require.NoError(t, err)
	return p
}

func noInvert(pin *build.Pin) build.Inversion {
	inv := build.Inversion{}
	if pin.Dir.HasInput() {
		inv.Input = build.Invert(false)
	}
	if pin.Dir.HasOutput() {
		inv.Output = build.Invert(false)
	}
	return inv
}

func newPin(t *testing.T, p *Platform, name string, dir build.Dir, width, xdr int) *build.Pin {
	t.Helper()
	pin, err := build.NewPin(p.Netlist, name, dir, width, xdr)
	require.NoError(t, err)
	if xdr >= 1 {
		clk := p.Netlist.Signal(name+"_clk", 1)
		pin.IClk = clk
		pin.OClk = clk
	}
	return pin
}

func binding(t *testing.T, inst *hdl.Instance, name string) hdl.Value {
	t.Helper()
	for _, b := range inst.Ports {
		if b.Name == name {
			return b.Value
		}
	}
	t.Fatalf("instance %s has no binding for port %s", inst.Name, name)
	return nil
}

func param(t *testing.T, inst *hdl.Instance, name string) string {
	t.Helper()
	for _, p := range inst.Params {
		if p.Name == name {
			return p.Value
		}
	}
	t.Fatalf("instance %s has no parameter %s", inst.Name, name)
	return ""
}

func TestInputPrimitiveCounts(t *testing.T) {
	for _, tc := range []struct {
		xdr, width, ffs, iddrs int
	}{
		{0, 1, 0, 0},
		{0, 4, 0, 0},
		{1, 3, 3, 0},
		{2, 3, 0, 3},
	} {
		t.Run(fmt.Sprintf("xdr%d_width%d", tc.xdr, tc.width), func(t *testing.T) {
			p := testPlatform(t, Vivado)
			pin := newPin(t, p, "din", build.Input, tc.width, tc.xdr)
			port := p.Netlist.AddPort("din", tc.width, hdl.PortInput)

			require.NoError(t, p.GetInput(pin, port, noInvert(pin)))
			assert.Len(t, p.Netlist.InstancesOf("IBUF"), tc.width)
			assert.Len(t, p.Netlist.InstancesOf("FDCE"), tc.ffs)
			assert.Len(t, p.Netlist.InstancesOf("IDDR"), tc.iddrs)
		})
	}
}

func TestOutputPrimitiveCounts(t *testing.T) {
	for _, tc := range []struct {
		xdr, width, ffs, oddrs int
	}{
		{0, 2, 0, 0},
		{1, 2, 2, 0},
		{2, 2, 0, 2},
	} {
		t.Run(fmt.Sprintf("xdr%d", tc.xdr), func(t *testing.T) {
			p := testPlatform(t, Vivado)
			pin := newPin(t, p, "dout", build.Output, tc.width, tc.xdr)
			port := p.Netlist.AddPort("dout", tc.width, hdl.PortOutput)

			require.NoError(t, p.GetOutput(pin, port, noInvert(pin)))
			assert.Len(t, p.Netlist.InstancesOf("OBUF"), tc.width)
			assert.Len(t, p.Netlist.InstancesOf("FDCE"), tc.ffs)
			assert.Len(t, p.Netlist.InstancesOf("ODDR"), tc.oddrs)
		})
	}
}

func TestTristateEnableRegister(t *testing.T) {
	p := testPlatform(t, Vivado)
	pin := newPin(t, p, "bus", build.Tristate, 4, 2)
	port := p.Netlist.AddPort("bus", 4, hdl.PortOutput)

	require.NoError(t, p.GetTristate(pin, port, noInvert(pin)))
	assert.Len(t, p.Netlist.InstancesOf("OBUFT"), 4)
	assert.Len(t, p.Netlist.InstancesOf("ODDR"), 4)

	// The enable path never needs double-rate capture: one plain FF for the
	// whole bus, fed by the negated enable.
	ffs := p.Netlist.InstancesOf("FDCE")
	require.Len(t, ffs, 1)
	assert.Equal(t, "~bus_oe", binding(t, ffs[0], "D").Ref())
	for _, buf := range p.Netlist.InstancesOf("OBUFT") {
		assert.Equal(t, "bus_xdr_t", binding(t, buf, "T").Ref())
	}
}

func TestRegisteredInOutPrimitiveCounts(t *testing.T) {
	p := testPlatform(t, Vivado)
	pin := newPin(t, p, "sda", build.InOut, 2, 1)
	port := p.Netlist.AddPort("sda", 2, hdl.PortInOut)

	require.NoError(t, p.GetInputOutput(pin, port, noInvert(pin)))
	assert.Len(t, p.Netlist.InstancesOf("IOBUF"), 2)
	// One FF per bit and direction, one shared FF for the enable.
	assert.Len(t, p.Netlist.InstancesOf("FDCE"), 5)
}

func TestLevelZeroTristateEnable(t *testing.T) {
	p := testPlatform(t, Vivado)
	pin := newPin(t, p, "bus", build.Tristate, 1, 0)
	port := p.Netlist.AddPort("bus", 1, hdl.PortOutput)

	require.NoError(t, p.GetTristate(pin, port, noInvert(pin)))
	bufs := p.Netlist.InstancesOf("OBUFT")
	require.Len(t, bufs, 1)
	assert.Equal(t, "~bus_oe", binding(t, bufs[0], "T").Ref())
}

func TestRegisteredPathsRequireClocks(t *testing.T) {
	p := testPlatform(t, Vivado)
	pin, err := build.NewPin(p.Netlist, "din", build.Input, 1, 1)
	require.NoError(t, err)
	port := p.Netlist.AddPort("din", 1, hdl.PortInput)

	err = p.GetInput(pin, port, noInvert(pin))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "input clock")
}

func TestUnsupportedSerializationLevel(t *testing.T) {
	p := testPlatform(t, Vivado)
	pin := newPin(t, p, "din", build.Input, 1, 3)
	port := p.Netlist.AddPort("din", 1, hdl.PortInput)

	err := p.GetInput(pin, port, noInvert(pin))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "serialization level 3")
	assert.Contains(t, err.Error(), "single-ended input")
}

func TestRegisterPacking(t *testing.T) {
	p := testPlatform(t, Vivado)
	pin := newPin(t, p, "dout", build.Output, 1, 1)
	port := p.Netlist.AddPort("dout", 1, hdl.PortOutput)

	require.NoError(t, p.GetOutput(pin, port, noInvert(pin)))
	ffs := p.Netlist.InstancesOf("FDCE")
	require.Len(t, ffs, 1)

	iob, ok := ffs[0].Attr("IOB")
	require.True(t, ok)
	assert.Equal(t, "TRUE", iob)
	assert.Equal(t, "1'd1", binding(t, ffs[0], "CE").Ref())
	assert.Equal(t, "1'd0", binding(t, ffs[0], "CLR").Ref())
	assert.Equal(t, "dout_clk", binding(t, ffs[0], "C").Ref())
}

func TestDeserializerConfiguration(t *testing.T) {
	p := testPlatform(t, Vivado)
	pin := newPin(t, p, "din", build.Input, 1, 2)
	port := p.Netlist.AddPort("din", 1, hdl.PortInput)

	require.NoError(t, p.GetInput(pin, port, noInvert(pin)))
	iddrs := p.Netlist.InstancesOf("IDDR")
	require.Len(t, iddrs, 1)
	assert.Equal(t, `"SAME_EDGE_PIPELINED"`, param(t, iddrs[0], "DDR_CLK_EDGE"))
	assert.Equal(t, `"ASYNC"`, param(t, iddrs[0], "SRTYPE"))
	assert.Equal(t, "0", param(t, iddrs[0], "INIT_Q1"))
	assert.Equal(t, "0", param(t, iddrs[0], "INIT_Q2"))
}

func TestSerializerConfiguration(t *testing.T) {
	p := testPlatform(t, Vivado)
	pin := newPin(t, p, "dout", build.Output, 1, 2)
	port := p.Netlist.AddPort("dout", 1, hdl.PortOutput)

	require.NoError(t, p.GetOutput(pin, port, noInvert(pin)))
	oddrs := p.Netlist.InstancesOf("ODDR")
	require.Len(t, oddrs, 1)
	assert.Equal(t, `"SAME_EDGE"`, param(t, oddrs[0], "DDR_CLK_EDGE"))
	assert.Equal(t, `"ASYNC"`, param(t, oddrs[0], "SRTYPE"))
	assert.Equal(t, "0", param(t, oddrs[0], "INIT"))
}

func TestDifferentialOutputPairs(t *testing.T) {
	p := testPlatform(t, Vivado)
	pin := newPin(t, p, "data", build.Output, 2, 0)
	portP := p.Netlist.AddPort("data_p", 2, hdl.PortOutput)
	portN := p.Netlist.AddPort("data_n", 2, hdl.PortOutput)

	require.NoError(t, p.GetDiffOutput(pin, portP, portN, noInvert(pin)))
	bufs := p.Netlist.InstancesOf("OBUFDS")
	require.Len(t, bufs, 2)
	for bit, buf := range bufs {
		assert.Equal(t, fmt.Sprintf("data_p[%d]", bit), binding(t, buf, "O").Ref())
		assert.Equal(t, fmt.Sprintf("data_n[%d]", bit), binding(t, buf, "OB").Ref())
	}
}

func TestDifferentialInputPairs(t *testing.T) {
	p := testPlatform(t, Vivado)
	pin := newPin(t, p, "data", build.Input, 1, 0)
	portP := p.Netlist.AddPort("data_p", 1, hdl.PortInput)
	portN := p.Netlist.AddPort("data_n", 1, hdl.PortInput)

	require.NoError(t, p.GetDiffInput(pin, portP, portN, noInvert(pin)))
	bufs := p.Netlist.InstancesOf("IBUFDS")
	require.Len(t, bufs, 1)
	assert.Equal(t, "data_p", binding(t, bufs[0], "I").Ref())
	assert.Equal(t, "data_n", binding(t, bufs[0], "IB").Ref())
	assert.Equal(t, "data_i", binding(t, bufs[0], "O").Ref())
}

func TestSymbiflowOutputIsCombinational(t *testing.T) {
	p := testPlatform(t, Symbiflow)
	pin := newPin(t, p, "led", build.Output, 1, 0)
	port := p.Netlist.AddPort("led", 1, hdl.PortOutput)

	require.NoError(t, p.GetOutput(pin, port, noInvert(pin)))
	assert.Empty(t, p.Netlist.InstancesOf("OBUF"))

	combs := p.Netlist.CombAssigns()
	require.Len(t, combs, 1)
	assert.Equal(t, "led", combs[0].LHS.Ref())
	assert.Equal(t, "led_o", combs[0].RHS.Ref())
}

func TestSymbiflowTristateDegrades(t *testing.T) {
	p := testPlatform(t, Symbiflow)
	pin := newPin(t, p, "bus", build.Tristate, 3, 0)
	port := p.Netlist.AddPort("bus", 3, hdl.PortOutput)

	require.NoError(t, p.GetTristate(pin, port, noInvert(pin)))
	assert.Empty(t, p.Netlist.InstancesOf("OBUFT"))
	assert.Len(t, p.Netlist.InstancesOf("$tribuf"), 3)
}

func TestSymbiflowTristateRejectsRegisteredPaths(t *testing.T) {
	p := testPlatform(t, Symbiflow)
	pin := newPin(t, p, "bus", build.Tristate, 1, 1)
	port := p.Netlist.AddPort("bus", 1, hdl.PortOutput)

	err := p.GetTristate(pin, port, noInvert(pin))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Symbiflow")
	assert.Contains(t, err.Error(), "single-ended tristate")
}

func TestSymbiflowDifferentialInputTapsPositiveLeg(t *testing.T) {
	p := testPlatform(t, Symbiflow)
	pin := newPin(t, p, "data", build.Input, 1, 0)
	portP := p.Netlist.AddPort("data_p", 1, hdl.PortInput)
	portN := p.Netlist.AddPort("data_n", 1, hdl.PortInput)

	require.NoError(t, p.GetDiffInput(pin, portP, portN, noInvert(pin)))
	assert.Empty(t, p.Netlist.InstancesOf("IBUFDS"))
	combs := p.Netlist.CombAssigns()
	require.Len(t, combs, 1)
	assert.Equal(t, "data_i", combs[0].LHS.Ref())
	assert.Equal(t, "data_p", combs[0].RHS.Ref())
}

func TestOutputInversion(t *testing.T) {
	p := testPlatform(t, Vivado)
	pin := newPin(t, p, "led", build.Output, 1, 0)
	port := p.Netlist.AddPort("led", 1, hdl.PortOutput)

	inv := build.Inversion{Output: build.Invert(true)}
	require.NoError(t, p.GetOutput(pin, port, inv))

	bufs := p.Netlist.InstancesOf("OBUF")
	require.Len(t, bufs, 1)
	assert.Equal(t, "led_o_n", binding(t, bufs[0], "I").Ref())

	combs := p.Netlist.CombAssigns()
	require.Len(t, combs, 1)
	assert.Equal(t, "led_o_n", combs[0].LHS.Ref())
	assert.Equal(t, "~led_o", combs[0].RHS.Ref())
}

func TestInputInversion(t *testing.T) {
	p := testPlatform(t, Vivado)
	pin := newPin(t, p, "btn", build.Input, 1, 0)
	port := p.Netlist.AddPort("btn", 1, hdl.PortInput)

	inv := build.Inversion{Input: build.Invert(true)}
	require.NoError(t, p.GetInput(pin, port, inv))

	bufs := p.Netlist.InstancesOf("IBUF")
	require.Len(t, bufs, 1)
	assert.Equal(t, "btn_i_n", binding(t, bufs[0], "O").Ref())

	combs := p.Netlist.CombAssigns()
	require.Len(t, combs, 1)
	assert.Equal(t, "btn_i", combs[0].LHS.Ref())
	assert.Equal(t, "~btn_i_n", combs[0].RHS.Ref())
}

func TestMissingInversionFlagRejected(t *testing.T) {
	p := testPlatform(t, Vivado)
	pin := newPin(t, p, "led", build.Output, 1, 0)
	port := p.Netlist.AddPort("led", 1, hdl.PortOutput)

	err := p.GetOutput(pin, port, build.Inversion{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "inversion")
}
