package hdl

import (
	"fmt"
	"strings"
)

func baseSignal(v Value) *Signal {
	switch val := v.(type) {
	case *Signal:
		return val
	case bitSelect:
		return val.sig
	case inverted:
		return baseSignal(val.v)
	default:
		return nil
	}
}

func rangeDecl(width int) string {
	if width == 1 {
		return ""
	}
	return fmt.Sprintf("[%d:0] ", width-1)
}

func writeAttrs(b *strings.Builder, indent string, sig *Signal) {
	attrs := sig.Attrs()
	if len(attrs) == 0 {
		return
	}
	parts := make([]string, 0, len(attrs))
	for _, attr := range attrs {
		parts = append(parts, fmt.Sprintf("%s = %q", attr.Key, attr.Value))
	}
	fmt.Fprintf(b, "%s(* %s *)\n", indent, strings.Join(parts, ", "))
}

// Verilog renders the netlist as a single structural Verilog module. The
// output is deterministic for identical netlist contents.
func (nl *Netlist) Verilog() string {
	var b strings.Builder

	isPort := map[*Signal]bool{}
	for _, port := range nl.ports {
		isPort[port.Signal] = true
	}
	isReg := map[*Signal]bool{}
	for _, sync := range nl.syncs {
		if sig := baseSignal(sync.LHS); sig != nil {
			isReg[sig] = true
		}
	}

	fmt.Fprintf(&b, "module %s (\n", nl.Name)
	for index, port := range nl.ports {
		comma := ","
		if index == len(nl.ports)-1 {
			comma = ""
		}
		fmt.Fprintf(&b, "  %s wire %s%s%s\n", port.Dir, rangeDecl(port.Signal.Width), port.Signal.Name, comma)
	}
	fmt.Fprintf(&b, ");\n")

	for _, sig := range nl.signals {
		if isPort[sig] {
			continue
		}
		writeAttrs(&b, "  ", sig)
		if isReg[sig] {
			fmt.Fprintf(&b, "  reg %s%s = %d;\n", rangeDecl(sig.Width), sig.Name, sig.Reset)
		} else {
			fmt.Fprintf(&b, "  wire %s%s;\n", rangeDecl(sig.Width), sig.Name)
		}
	}

	for _, inst := range nl.instances {
		b.WriteString("\n")
		attrs := inst.Attrs()
		if len(attrs) > 0 {
			parts := make([]string, 0, len(attrs))
			for _, attr := range attrs {
				parts = append(parts, fmt.Sprintf("%s = %q", attr.Key, attr.Value))
			}
			fmt.Fprintf(&b, "  (* %s *)\n", strings.Join(parts, ", "))
		}
		if len(inst.Params) > 0 {
			fmt.Fprintf(&b, "  %s #(\n", inst.Type)
			for index, param := range inst.Params {
				comma := ","
				if index == len(inst.Params)-1 {
					comma = ""
				}
				fmt.Fprintf(&b, "    .%s(%s)%s\n", param.Name, param.Value, comma)
			}
			fmt.Fprintf(&b, "  ) %s (\n", inst.Name)
		} else {
			fmt.Fprintf(&b, "  %s %s (\n", inst.Type, inst.Name)
		}
		for index, binding := range inst.Ports {
			comma := ","
			if index == len(inst.Ports)-1 {
				comma = ""
			}
			fmt.Fprintf(&b, "    .%s(%s)%s\n", binding.Name, binding.Value.Ref(), comma)
		}
		fmt.Fprintf(&b, "  );\n")
	}

	if len(nl.combs) > 0 {
		b.WriteString("\n")
	}
	for _, assign := range nl.combs {
		fmt.Fprintf(&b, "  assign %s = %s;\n", assign.LHS.Ref(), assign.RHS.Ref())
	}

	// One always block per clock domain, in first-use order.
	seen := []*ClockDomain{}
	for _, sync := range nl.syncs {
		found := false
		for _, cd := range seen {
			if cd == sync.Domain {
				found = true
				break
			}
		}
		if !found {
			seen = append(seen, sync.Domain)
		}
	}
	for _, cd := range seen {
		b.WriteString("\n")
		if cd.Rst != nil && cd.AsyncReset {
			fmt.Fprintf(&b, "  always @(posedge %s or posedge %s)\n", cd.Clk.Name, cd.Rst.Name)
			fmt.Fprintf(&b, "    if (%s) begin\n", cd.Rst.Name)
			for _, sync := range nl.syncs {
				if sync.Domain != cd {
					continue
				}
				sig := baseSignal(sync.LHS)
				fmt.Fprintf(&b, "      %s <= %d;\n", sync.LHS.Ref(), sig.Reset)
			}
			fmt.Fprintf(&b, "    end else begin\n")
			for _, sync := range nl.syncs {
				if sync.Domain != cd {
					continue
				}
				fmt.Fprintf(&b, "      %s <= %s;\n", sync.LHS.Ref(), sync.RHS.Ref())
			}
			fmt.Fprintf(&b, "    end\n")
		} else {
			fmt.Fprintf(&b, "  always @(posedge %s) begin\n", cd.Clk.Name)
			for _, sync := range nl.syncs {
				if sync.Domain != cd {
					continue
				}
				fmt.Fprintf(&b, "    %s <= %s;\n", sync.LHS.Ref(), sync.RHS.Ref())
			}
			fmt.Fprintf(&b, "  end\n")
		}
	}

	fmt.Fprintf(&b, "endmodule\n")
	return b.String()
}
