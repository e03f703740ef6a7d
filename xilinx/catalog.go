package xilinx

// Names of the register primitives used by the buffer strategies.
const (
	primDFF  = "FDCE"
	primIDDR = "IDDR"
	primODDR = "ODDR"
)

// ioFlavor identifies the electrical/directional flavor of a pin-facing
// buffer.
type ioFlavor int

const (
	singleInput ioFlavor = iota
	singleOutput
	singleTristate
	singleInOut
	diffInput
	diffOutput
	diffTristate
	diffInOut
)

func (f ioFlavor) String() string {
	switch f {
	case singleInput:
		return "single-ended input"
	case singleOutput:
		return "single-ended output"
	case singleTristate:
		return "single-ended tristate"
	case singleInOut:
		return "single-ended input/output"
	case diffInput:
		return "differential input"
	case diffOutput:
		return "differential output"
	case diffTristate:
		return "differential tristate"
	case diffInOut:
		return "differential input/output"
	}
	return "unknown"
}

// ioPrimitive describes one vendor I/O buffer primitive and which port roles
// it exposes. The pad-side ports follow from the roles: bidirectional buffers
// bind IO/IOB, pure inputs bind I/IB, everything else drives O/OB.
type ioPrimitive struct {
	name     string
	input    bool // produces the internal input value on O
	output   bool // consumes the internal output value on I
	tristate bool // consumes the tristate-enable on T
	bidir    bool
	diff     bool
}

// ioPrimitives is the fixed catalog mapping buffer flavor to the 7-series
// primitive implementing it.
var ioPrimitives = map[ioFlavor]ioPrimitive{
	singleInput:    {name: "IBUF", input: true},
	singleOutput:   {name: "OBUF", output: true},
	singleTristate: {name: "OBUFT", output: true, tristate: true},
	singleInOut:    {name: "IOBUF", input: true, output: true, tristate: true, bidir: true},
	diffInput:      {name: "IBUFDS", input: true, diff: true},
	diffOutput:     {name: "OBUFDS", output: true, diff: true},
	diffTristate:   {name: "OBUFTDS", output: true, tristate: true, diff: true},
	diffInOut:      {name: "IOBUFDS", input: true, output: true, tristate: true, bidir: true, diff: true},
}
