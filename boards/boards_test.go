package boards

import (
	"os"
	"path"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hdlforge/xbt/hdl"
	"github.com/hdlforge/xbt/xilinx"
)

const artyBoard = `
name: arty_a7
device: xc7a35ti
package: csg324
speed: 1L
default_clk: clk100
resources:
  - name: clk100
    dir: i
    pins: E3
    iostandard: LVCMOS33
    frequency: 100000000
  - name: led
    dir: o
    pins: H5 J5 T9 T10
    iostandard: LVCMOS33
  - name: eth_rx
    dir: i
    pins: C11
    pins_n: C12
    iostandard: TMDS_33
`

func parseArty(t *testing.T) *Board {
	t.Helper()
	board, err := Parse([]byte(artyBoard))
	require.NoError(t, err)
	return board
}

func TestParseBoard(t *testing.T) {
	board := parseArty(t)
	assert.Equal(t, "arty_a7", board.Name)
	assert.Equal(t, "xc7a35ticsg324-1L", board.Config().Part())
	assert.Equal(t, "clk100", board.DefaultClk)
	require.Len(t, board.Resources, 3)

	led, ok := board.Resource("led")
	require.True(t, ok)
	assert.Equal(t, 4, led.Width())
	assert.False(t, led.Differential())

	rx, ok := board.Resource("eth_rx")
	require.True(t, ok)
	assert.Equal(t, 1, rx.Width())
	assert.True(t, rx.Differential())

	_, ok = board.Resource("missing")
	assert.False(t, ok)
}

func TestParseRejectsInvalidBoards(t *testing.T) {
	for name, yaml := range map[string]string{
		"missing device": `
name: b
package: csg324
speed: 1L
`,
		"bad direction": `
name: b
device: d
package: p
speed: s
resources:
  - name: r
    dir: x
    pins: A1
`,
		"pins_n mismatch": `
name: b
device: d
package: p
speed: s
resources:
  - name: r
    dir: i
    pins: A1 A2
    pins_n: B1
`,
		"frequency on output": `
name: b
device: d
package: p
speed: s
resources:
  - name: r
    dir: o
    pins: A1
    frequency: 1000000
`,
		"unknown default clock": `
name: b
device: d
package: p
speed: s
default_clk: clk
`,
		"unknown field": `
name: b
device: d
package: p
speed: s
color: red
`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoadBoardFile(t *testing.T) {
	file := path.Join(t.TempDir(), "arty_a7.yaml")
	require.NoError(t, os.WriteFile(file, []byte(artyBoard), 0644))

	board, err := Load(file)
	require.NoError(t, err)
	assert.Equal(t, "arty_a7", board.Name)
}

func testPlatform(t *testing.T, board *Board, toolchain xilinx.Toolchain) *xilinx.Platform {
	t.Helper()
	p, err := xilinx.NewPlatform("top", board.Config(), toolchain)
	require.NoError(t, err)
	return p
}

func TestRequestOutput(t *testing.T) {
	board := parseArty(t)
	p := testPlatform(t, board, xilinx.Vivado)

	pin, err := Request(p, board, "led", 0, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 4, pin.Width)
	require.NotNil(t, pin.O)

	assert.Len(t, p.Netlist.InstancesOf("OBUF"), 4)

	constraints := p.PortConstraints()
	require.Len(t, constraints, 4)
	assert.Equal(t, "led[0]", constraints[0].Port)
	assert.Equal(t, "H5", constraints[0].Pin)
	assert.Equal(t, "led[3]", constraints[3].Port)
	assert.Equal(t, "T10", constraints[3].Pin)
	require.Len(t, constraints[0].Attrs, 1)
	assert.Equal(t, "IOSTANDARD", constraints[0].Attrs[0].Name)
	assert.Equal(t, "LVCMOS33", constraints[0].Attrs[0].Value)
}

func TestRequestClockInput(t *testing.T) {
	board := parseArty(t)
	p := testPlatform(t, board, xilinx.Vivado)

	pin, err := Request(p, board, "clk100", 0, nil, nil)
	require.NoError(t, err)
	require.NotNil(t, pin.I)

	assert.Len(t, p.Netlist.InstancesOf("IBUF"), 1)

	constraints := p.PortConstraints()
	require.Len(t, constraints, 1)
	assert.Equal(t, "clk100", constraints[0].Port)

	clocks := p.ClockConstraints()
	require.Len(t, clocks, 1)
	assert.Equal(t, "clk100", clocks[0].Port.Name)
	assert.Equal(t, "10", clocks[0].PeriodNs())
}

func TestRequestDifferentialInput(t *testing.T) {
	board := parseArty(t)
	p := testPlatform(t, board, xilinx.Vivado)

	_, err := Request(p, board, "eth_rx", 0, nil, nil)
	require.NoError(t, err)

	assert.Len(t, p.Netlist.InstancesOf("IBUFDS"), 1)

	constraints := p.PortConstraints()
	require.Len(t, constraints, 2)
	assert.Equal(t, "eth_rx_p", constraints[0].Port)
	assert.Equal(t, "C11", constraints[0].Pin)
	assert.Equal(t, "eth_rx_n", constraints[1].Port)
	assert.Equal(t, "C12", constraints[1].Pin)
}

func TestRequestRegisteredOutput(t *testing.T) {
	board := parseArty(t)
	p := testPlatform(t, board, xilinx.Vivado)
	clk := p.Netlist.Signal("clk", 1)

	_, err := Request(p, board, "led", 1, clk, clk)
	require.NoError(t, err)
	assert.Len(t, p.Netlist.InstancesOf("FDCE"), 4)
}

func TestRequestUnknownResource(t *testing.T) {
	board := parseArty(t)
	p := testPlatform(t, board, xilinx.Vivado)

	_, err := Request(p, board, "missing", 0, nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no resource")
}

func TestRequestPortDirections(t *testing.T) {
	board := parseArty(t)
	p := testPlatform(t, board, xilinx.Vivado)

	_, err := Request(p, board, "led", 0, nil, nil)
	require.NoError(t, err)
	_, err = Request(p, board, "clk100", 0, nil, nil)
	require.NoError(t, err)

	ports := p.Netlist.Ports()
	require.Len(t, ports, 2)
	assert.Equal(t, hdl.PortOutput, ports[0].Dir)
	assert.Equal(t, hdl.PortInput, ports[1].Dir)
}
