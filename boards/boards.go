// Package boards loads board definition files: the target device plus the
// named I/O resources (pin locations, electrical attributes, clock
// frequencies) a design can request.
package boards

import (
	"fmt"
	"path"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v2"

	"github.com/hdlforge/xbt/build"
	"github.com/hdlforge/xbt/hdl"
	"github.com/hdlforge/xbt/util"
	"github.com/hdlforge/xbt/xilinx"
)

// Resource is one named I/O resource of a board.
type Resource struct {
	Name string `yaml:"name" validate:"required"`
	Dir  string `yaml:"dir" validate:"required,oneof=i o oe io"`

	// Pins lists one physical pin location per bit. PinsN lists the negative
	// legs when the resource is a differential pair.
	Pins  string `yaml:"pins" validate:"required"`
	PinsN string `yaml:"pins_n"`

	IOStandard string `yaml:"iostandard"`

	// Invert requests polarity inversion between the pad and the fabric.
	Invert bool `yaml:"invert"`

	// Frequency marks a clock input and its frequency in Hz.
	Frequency float64 `yaml:"frequency"`
}

// Width returns the bit width of the resource.
func (r Resource) Width() int { return len(strings.Fields(r.Pins)) }

// Differential reports whether the resource is a differential pair.
func (r Resource) Differential() bool { return r.PinsN != "" }

// Board is a full board definition.
type Board struct {
	Name    string `yaml:"name" validate:"required"`
	Device  string `yaml:"device" validate:"required"`
	Package string `yaml:"package" validate:"required"`
	Speed   string `yaml:"speed" validate:"required"`

	DefaultClk string     `yaml:"default_clk"`
	Resources  []Resource `yaml:"resources" validate:"dive"`
}

var validate = validator.New()

// Parse loads a board definition from YAML.
func Parse(data []byte) (*Board, error) {
	var board Board
	if err := yaml.UnmarshalStrict(data, &board); err != nil {
		return nil, fmt.Errorf("invalid board definition: %w", err)
	}
	if err := validate.Struct(board); err != nil {
		return nil, fmt.Errorf("invalid board definition: %w", err)
	}
	for _, res := range board.Resources {
		if res.Differential() && len(strings.Fields(res.PinsN)) != res.Width() {
			return nil, fmt.Errorf("resource %q: pins_n must list one negative leg per bit", res.Name)
		}
		if res.Frequency > 0 && res.Dir != "i" {
			return nil, fmt.Errorf("resource %q: only inputs can carry a clock frequency", res.Name)
		}
	}
	if board.DefaultClk != "" {
		if _, ok := board.Resource(board.DefaultClk); !ok {
			return nil, fmt.Errorf("default clock %q is not a resource of board %q", board.DefaultClk, board.Name)
		}
	}
	return &board, nil
}

// Load reads and parses a board definition file.
func Load(file string) (*Board, error) {
	board, err := Parse(util.ReadFile(file))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path.Base(file), err)
	}
	return board, nil
}

// Resource looks up a resource by name.
func (b *Board) Resource(name string) (*Resource, bool) {
	for index := range b.Resources {
		if b.Resources[index].Name == name {
			return &b.Resources[index], true
		}
	}
	return nil, false
}

// Config returns the device configuration of the board.
func (b *Board) Config() xilinx.Config {
	return xilinx.Config{Device: b.Device, Package: b.Package, Speed: b.Speed}
}

func portDir(dir build.Dir) hdl.PortDir {
	switch dir {
	case build.Input:
		return hdl.PortInput
	case build.InOut:
		return hdl.PortInOut
	}
	return hdl.PortOutput
}

func constrainBits(p *xilinx.Platform, port *hdl.Signal, pins []string, attrs []build.Attr) {
	for bit, pin := range pins {
		name := port.Name
		if port.Width > 1 {
			name = fmt.Sprintf("%s[%d]", port.Name, bit)
		}
		p.AddPortConstraint(name, pin, attrs)
	}
}

// Request lowers a named board resource onto the platform at the given
// serialization level and returns the resulting pin. The IClk/OClk fields
// must be filled by the caller before requesting a level above 0.
func Request(p *xilinx.Platform, b *Board, name string, xdr int, iclk, oclk *hdl.Signal) (*build.Pin, error) {
	res, ok := b.Resource(name)
	if !ok {
		return nil, fmt.Errorf("board %q has no resource %q", b.Name, name)
	}

	pin, err := build.NewPin(p.Netlist, res.Name, build.Dir(res.Dir), res.Width(), xdr)
	if err != nil {
		return nil, err
	}
	pin.IClk = iclk
	pin.OClk = oclk

	inv := build.Inversion{}
	if pin.Dir.HasInput() {
		inv.Input = build.Invert(res.Invert)
	}
	if pin.Dir.HasOutput() {
		inv.Output = build.Invert(res.Invert)
	}

	attrs := []build.Attr{}
	if res.IOStandard != "" {
		attrs = append(attrs, build.Attr{Name: "IOSTANDARD", Value: res.IOStandard})
	}

	if res.Differential() {
		portP := p.Netlist.AddPort(res.Name+"_p", res.Width(), portDir(pin.Dir))
		portN := p.Netlist.AddPort(res.Name+"_n", res.Width(), portDir(pin.Dir))
		constrainBits(p, portP, strings.Fields(res.Pins), attrs)
		constrainBits(p, portN, strings.Fields(res.PinsN), attrs)
		switch pin.Dir {
		case build.Input:
			err = p.GetDiffInput(pin, portP, portN, inv)
		case build.Output:
			err = p.GetDiffOutput(pin, portP, portN, inv)
		case build.Tristate:
			err = p.GetDiffTristate(pin, portP, portN, inv)
		case build.InOut:
			err = p.GetDiffInputOutput(pin, portP, portN, inv)
		}
		if err != nil {
			return nil, err
		}
		if res.Frequency > 0 {
			if err := p.AddClockConstraint(nil, portP, res.Frequency); err != nil {
				return nil, err
			}
		}
		return pin, nil
	}

	port := p.Netlist.AddPort(res.Name, res.Width(), portDir(pin.Dir))
	constrainBits(p, port, strings.Fields(res.Pins), attrs)
	switch pin.Dir {
	case build.Input:
		err = p.GetInput(pin, port, inv)
	case build.Output:
		err = p.GetOutput(pin, port, inv)
	case build.Tristate:
		err = p.GetTristate(pin, port, inv)
	case build.InOut:
		err = p.GetInputOutput(pin, port, inv)
	}
	if err != nil {
		return nil, err
	}
	if res.Frequency > 0 {
		if err := p.AddClockConstraint(nil, port, res.Frequency); err != nil {
			return nil, err
		}
	}
	return pin, nil
}
