// Package xilinx lowers abstract I/O requests onto Xilinx 7-series hardware
// primitives and renders the toolchain build artifacts for them. Two
// toolchains are supported: Vivado and Symbiflow.
package xilinx

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/hdlforge/xbt/build"
	"github.com/hdlforge/xbt/config"
	"github.com/hdlforge/xbt/hdl"
)

// Toolchain selects one of the two supported toolchains. The choice is made
// once at platform construction and is immutable thereafter.
type Toolchain int

const (
	Vivado Toolchain = iota
	Symbiflow
)

func (t Toolchain) String() string {
	switch t {
	case Vivado:
		return "Vivado"
	case Symbiflow:
		return "Symbiflow"
	}
	return fmt.Sprintf("Toolchain(%d)", int(t))
}

// ParseToolchain maps a toolchain name to its variant. Any name other than
// the two supported ones is a configuration error.
func ParseToolchain(name string) (Toolchain, error) {
	switch name {
	case "Vivado", "vivado":
		return Vivado, nil
	case "Symbiflow", "symbiflow":
		return Symbiflow, nil
	}
	return 0, fmt.Errorf("unsupported toolchain %q; supported toolchains are Vivado and Symbiflow", name)
}

// Config identifies the exact target device. All fields are required.
type Config struct {
	Device  string `validate:"required"`
	Package string `validate:"required"`
	Speed   string `validate:"required"`
}

// Part returns the synthesis-tool part identifier.
func (c Config) Part() string {
	return fmt.Sprintf("%s%s-%s", c.Device, c.Package, c.Speed)
}

// Boards whose marketed part number differs from the part number the
// Symbiflow toolchain recognizes.
var symbiflowPartMap = map[string]string{
	"xc7a35ticsg324-1L": "xc7a35tcsg324-1", // Arty-A7
}

// profile exposes the three toolchain-scoped tables. Implemented once per
// Toolchain variant; selected at construction, never re-dispatched.
type profile interface {
	RequiredTools() []string
	FileTemplates() []build.FileTemplate
	CommandTemplates() []string
}

// Platform is the 7-series target platform.
type Platform struct {
	*build.Platform

	Toolchain Toolchain
	Config    Config

	profile profile
}

var validate = validator.New()

// NewPlatform constructs a platform for the given design, device and
// toolchain. Construction fails for an incomplete device configuration; an
// out-of-range toolchain value is a programmer error and panics.
func NewPlatform(design string, cfg Config, toolchain Toolchain) (*Platform, error) {
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("incomplete device configuration: %w", err)
	}
	p := &Platform{
		Platform:  build.NewPlatform(design),
		Toolchain: toolchain,
		Config:    cfg,
	}
	switch toolchain {
	case Vivado:
		p.profile = vivadoProfile{}
	case Symbiflow:
		p.profile = symbiflowProfile{}
	default:
		panic(fmt.Sprintf("unsupported toolchain %d", int(toolchain)))
	}
	return p, nil
}

// Part returns the part identifier for the selected toolchain, remapping
// marketed part numbers that Symbiflow does not recognize.
func (p *Platform) Part() string {
	part := p.Config.Part()
	if p.Toolchain == Symbiflow {
		if mapped, ok := symbiflowPartMap[part]; ok {
			return mapped
		}
	}
	return part
}

// AddClockConstraint registers a frequency constraint and pins the clock down
// with a keep attribute so the net survives synthesis under its name.
func (p *Platform) AddClockConstraint(net, port *hdl.Signal, frequency float64) error {
	if err := p.Platform.AddClockConstraint(net, port, frequency); err != nil {
		return err
	}
	if port != nil {
		setKeep(port)
	} else {
		setKeep(net)
	}
	return nil
}

// DefaultClockDomain creates the design's default clock domain from an
// external clock port.
//
// Xilinx devices have a global write enable (GWE) signal that is asserted
// during configuration and deasserted once it ends. Its deassertion is
// asynchronous to user clocks and may violate setup/hold on a user register,
// so on Vivado the clock is gated with a BUFGCTRL enabled by the STARTUPE2
// end-of-startup signal.
func (p *Platform) DefaultClockDomain(name string, clkPort *hdl.Signal, frequency float64) (*hdl.ClockDomain, error) {
	clk := p.Netlist.Signal(name+"_clk", 1)
	cd := &hdl.ClockDomain{Name: name, Clk: clk}
	if err := p.Netlist.AddDomain(cd); err != nil {
		return nil, err
	}

	switch p.Toolchain {
	case Vivado:
		ready := p.Netlist.Signal("startup_eos", 1)
		startup := hdl.NewInstance("STARTUPE2", "startup")
		startup.Bind("EOS", ready)
		p.Netlist.AddInstance(startup)

		// BUFGCTRL configured as a BUFGCE; the plain BUFGCE primitive has
		// simulation/synthesis mismatches on some Vivado releases.
		bufg := hdl.NewInstance("BUFGCTRL", name+"_bufg")
		bufg.SetParam("SIM_DEVICE", "7SERIES")
		bufg.Bind("I0", clkPort)
		bufg.Bind("S0", hdl.C(1, 1))
		bufg.Bind("CE0", ready)
		bufg.Bind("IGNORE0", hdl.C(0, 1))
		bufg.Bind("I1", hdl.C(1, 1))
		bufg.Bind("S1", hdl.C(0, 1))
		bufg.Bind("CE1", hdl.C(0, 1))
		bufg.Bind("IGNORE1", hdl.C(1, 1))
		bufg.Bind("O", clk)
		p.Netlist.AddInstance(bufg)
	case Symbiflow:
		bufg := hdl.NewInstance("BUFG", name+"_bufg")
		bufg.Bind("I", clkPort)
		bufg.Bind("O", clk)
		p.Netlist.AddInstance(bufg)
		if err := p.AddClockConstraint(clk, nil, frequency); err != nil {
			return nil, err
		}
	}
	return cd, nil
}

// RequiredTools returns the external tools the active toolchain needs in the
// execution environment.
func (p *Platform) RequiredTools() []string { return p.profile.RequiredTools() }

// EnvScriptVar returns the environment variable that may name a setup script
// for the active toolchain.
func (p *Platform) EnvScriptVar() string { return config.EnvScriptVar(p.Toolchain.String()) }

// Plan renders the accumulated netlist and constraint facts through the
// active toolchain's templates. The autogenerated header is passed in by the
// caller so rendering itself stays deterministic.
func (p *Platform) Plan(autogenerated string) (*build.Plan, error) {
	data := build.TemplateData{
		Name:          p.Design,
		Autogenerated: autogenerated,
		Part:          p.Config.Part(),
		PartMapped:    p.Part(),
		EnvVar:        p.EnvScriptVar(),
		Verilog:       p.Netlist.Verilog(),
		Ports:         p.PortConstraints(),
		Clocks:        p.ClockViews(),
	}
	return p.Render(data, p.profile.FileTemplates(), p.profile.CommandTemplates(), p.profile.RequiredTools())
}
