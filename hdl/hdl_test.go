package hdl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueRefs(t *testing.T) {
	nl := NewNetlist("top")
	sig := nl.Signal("data", 4)

	assert.Equal(t, "data", sig.Ref())
	assert.Equal(t, "data[2]", sig.Bit(2).Ref())
	assert.Equal(t, "4'd5", C(5, 4).Ref())
	assert.Equal(t, "~data", Not(sig).Ref())

	single := nl.Signal("flag", 1)
	assert.Same(t, single, single.Bit(0))
}

func TestNotCancels(t *testing.T) {
	nl := NewNetlist("top")
	sig := nl.Signal("flag", 1)

	assert.Equal(t, sig, Not(Not(sig)))
	assert.Equal(t, Not(sig), NotIf(true, sig))
	assert.Equal(t, Value(sig), NotIf(false, sig))
}

func TestBitOf(t *testing.T) {
	nl := NewNetlist("top")
	sig := nl.Signal("data", 4)

	assert.Equal(t, "data[1]", BitOf(sig, 1).Ref())
	assert.Equal(t, "1'd1", BitOf(C(2, 4), 1).Ref())
	assert.Equal(t, "1'd0", BitOf(C(2, 4), 0).Ref())
	assert.Equal(t, "~data[3]", BitOf(Not(sig), 3).Ref())
}

func TestUniqueNames(t *testing.T) {
	nl := NewNetlist("top")
	assert.Equal(t, "clk", nl.Signal("clk", 1).Name)
	assert.Equal(t, "clk_1", nl.Signal("clk", 1).Name)
	assert.Equal(t, "clk_2", nl.Signal("clk", 1).Name)
}

func TestDomainRegistration(t *testing.T) {
	nl := NewNetlist("top")
	clk := nl.Signal("clk", 1)

	require.NoError(t, nl.AddDomain(&ClockDomain{Name: "sync", Clk: clk}))
	err := nl.AddDomain(&ClockDomain{Name: "sync", Clk: clk})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	// Local domains never collide; they are renamed instead.
	local := &ClockDomain{Name: "sync", Clk: clk, Local: true}
	require.NoError(t, nl.AddDomain(local))
	assert.Equal(t, "sync_1", local.Name)

	found, ok := nl.Domain("sync")
	require.True(t, ok)
	assert.NotSame(t, local, found)
}

func TestSignalAttrOverride(t *testing.T) {
	nl := NewNetlist("top")
	sig := nl.Signal("clk", 1)

	sig.SetAttr("keep", "FALSE")
	sig.SetAttr("keep", "TRUE")
	value, ok := sig.Attr("keep")
	require.True(t, ok)
	assert.Equal(t, "TRUE", value)
}

func TestVerilogModule(t *testing.T) {
	nl := NewNetlist("blinky")
	clk := nl.AddPort("clk", 1, PortInput)
	led := nl.AddPort("led", 1, PortOutput)
	counter := nl.Signal("counter", 8)
	counter.SetAttr("keep", "TRUE")

	cd := &ClockDomain{Name: "sync", Clk: clk}
	require.NoError(t, nl.AddDomain(cd))
	nl.AssignSync(cd, counter, Not(counter))
	nl.AssignComb(led, counter.Bit(7))

	buf := NewInstance("IBUF", "clk_buf")
	buf.Bind("I", clk)
	buf.Bind("O", nl.Signal("clk_i", 1))
	nl.AddInstance(buf)

	v := nl.Verilog()
	assert.Contains(t, v, "module blinky (")
	assert.Contains(t, v, "  input wire clk,")
	assert.Contains(t, v, "  output wire led\n")
	assert.Contains(t, v, `(* keep = "TRUE" *)`)
	assert.Contains(t, v, "reg [7:0] counter = 0;")
	assert.Contains(t, v, "IBUF clk_buf (")
	assert.Contains(t, v, "assign led = counter[7];")
	assert.Contains(t, v, "always @(posedge clk) begin")
	assert.Contains(t, v, "counter <= ~counter;")
	assert.Contains(t, v, "endmodule")
}

func TestVerilogAsyncResetDomain(t *testing.T) {
	nl := NewNetlist("top")
	clk := nl.Signal("clk", 1)
	rst := nl.Signal("rst", 1)
	stage := nl.Signal("stage", 1)
	stage.Reset = 1

	cd := &ClockDomain{Name: "por", Clk: clk, Rst: rst, AsyncReset: true}
	require.NoError(t, nl.AddDomain(cd))
	nl.AssignSync(cd, stage, C(0, 1))

	v := nl.Verilog()
	assert.Contains(t, v, "reg stage = 1;")
	assert.Contains(t, v, "always @(posedge clk or posedge rst)")
	assert.Contains(t, v, "if (rst) begin")
	assert.Contains(t, v, "stage <= 1;")
	assert.Contains(t, v, "stage <= 1'd0;")
}

func TestVerilogDeterministic(t *testing.T) {
	build := func() string {
		nl := NewNetlist("top")
		clk := nl.AddPort("clk", 1, PortInput)
		sig := nl.Signal("a", 2)
		sig.SetAttr("keep", "TRUE")
		sig.SetAttr("ASYNC_REG", "TRUE")
		cd := &ClockDomain{Name: "sync", Clk: clk}
		if err := nl.AddDomain(cd); err != nil {
			t.Fatal(err)
		}
		nl.AssignSync(cd, sig, C(1, 2))
		return nl.Verilog()
	}
	assert.Equal(t, build(), build())
}
