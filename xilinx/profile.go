package xilinx

import "github.com/hdlforge/xbt/build"

// Artifact templates. Each profile owns its own set; the shell driver is
// shared. Override hooks default to inert placeholder comments.

const buildScriptTemplate = `# {{.Autogenerated}}
set -e
if [ -z "$BASH" ] ; then exec /bin/bash "$0" "$@"; fi
[ -n "${{.EnvVar}}" ] && . "${{.EnvVar}}"
{{range .Commands}}{{.}}
{{end}}`

const verilogTemplate = `/* {{.Autogenerated}} */
{{.Verilog}}`

const vivadoTclTemplate = `# {{.Autogenerated}}
create_project -force -name {{.Name}} -part {{.Part}}
add_files {{.Name}}.v
read_xdc {{.Name}}.xdc
{{getOverride "script_after_read" "# (script_after_read placeholder)"}}
synth_design -top {{.Name}}
foreach cell [get_cells -quiet -hier -filter {xbt.vivado.false_path == "TRUE"}] {
    set_false_path -to $cell
}
foreach cell [get_cells -quiet -hier -filter {xbt.vivado.max_delay != ""}] {
    set clock [get_clocks -of_objects \
        [all_fanin -flat -startpoints_only [get_pin $cell/D]]]
    if {[llength $clock] != 0} {
        set_max_delay -datapath_only -from $clock \
            -to [get_cells $cell] [get_property xbt.vivado.max_delay $cell]
    }
}
{{getOverride "script_after_synth" "# (script_after_synth placeholder)"}}
report_timing_summary -file {{.Name}}_timing_synth.rpt
report_utilization -hierarchical -file {{.Name}}_utilization_hierarchical_synth.rpt
report_utilization -file {{.Name}}_utilization_synth.rpt
opt_design
place_design
{{getOverride "script_after_place" "# (script_after_place placeholder)"}}
report_utilization -hierarchical -file {{.Name}}_utilization_hierarchical_place.rpt
report_utilization -file {{.Name}}_utilization_place.rpt
report_io -file {{.Name}}_io.rpt
report_control_sets -verbose -file {{.Name}}_control_sets.rpt
report_clock_utilization -file {{.Name}}_clock_utilization.rpt
route_design
{{getOverride "script_after_route" "# (script_after_route placeholder)"}}
phys_opt_design
report_timing_summary -no_header -no_detailed_paths
write_checkpoint -force {{.Name}}_route.dcp
report_route_status -file {{.Name}}_route_status.rpt
report_drc -file {{.Name}}_drc.rpt
report_methodology -file {{.Name}}_methodology.rpt
report_timing_summary -datasheet -max_paths 10 -file {{.Name}}_timing.rpt
report_power -file {{.Name}}_power.rpt
{{getOverride "script_before_bitstream" "# (script_before_bitstream placeholder)"}}
write_bitstream -force -bin_file {{.Name}}.bit
{{getOverride "script_after_bitstream" "# (script_after_bitstream placeholder)"}}
quit
`

const vivadoXdcTemplate = `# {{.Autogenerated}}
{{range $port := .Ports -}}
set_property LOC {{$port.Pin}} [get_ports {{tclEscape $port.Port}}]
{{range $attr := $port.Attrs -}}
set_property {{$attr.Name}} {{tclEscape $attr.Value}} [get_ports {{tclEscape $port.Port}}]
{{end -}}
{{end -}}
{{range $clock := .Clocks -}}
{{if $clock.IsPort -}}
create_clock -name {{asciiEscape $clock.Name}} -period {{$clock.Period}} [get_ports {{tclEscape $clock.Name}}]
{{else -}}
create_clock -name {{asciiEscape $clock.Name}} -period {{$clock.Period}} [get_nets {{tclEscape $clock.Name}}]
{{end -}}
{{end -}}
{{getOverride "add_constraints" "# (add_constraints placeholder)"}}
`

const vivadoCommandTemplate = `
{{invokeTool "vivado"}}
    {{options "vivado_opts"}}
    -mode batch
    -log {{.Name}}.log
    -source {{.Name}}.tcl
`

type vivadoProfile struct{}

func (vivadoProfile) RequiredTools() []string {
	return []string{"vivado"}
}

func (vivadoProfile) FileTemplates() []build.FileTemplate {
	return []build.FileTemplate{
		{Name: "build_{{.Name}}.sh", Body: buildScriptTemplate},
		{Name: "{{.Name}}.v", Body: verilogTemplate},
		{Name: "{{.Name}}.tcl", Body: vivadoTclTemplate},
		{Name: "{{.Name}}.xdc", Body: vivadoXdcTemplate},
	}
}

func (vivadoProfile) CommandTemplates() []string {
	return []string{vivadoCommandTemplate}
}

const symbiflowPcfTemplate = `# {{.Autogenerated}}
{{range $port := .Ports -}}
set_io {{$port.Port}} {{$port.Pin}}
{{end -}}
`

const symbiflowXdcTemplate = `# {{.Autogenerated}}
{{range $port := .Ports -}}
{{range $attr := $port.Attrs -}}
set_property {{$attr.Name}} {{$attr.Value}} [get_ports {{tclEscape $port.Port}}]
{{end -}}
{{end -}}
{{getOverride "add_constraints" "# (add_constraints placeholder)"}}
`

const symbiflowSdcTemplate = `# {{.Autogenerated}}
{{range $clock := .Clocks -}}
{{if not $clock.IsPort -}}
create_clock -period {{$clock.Period}} {{asciiEscape $clock.Name}}
{{end -}}
{{end -}}
`

type symbiflowProfile struct{}

func (symbiflowProfile) RequiredTools() []string {
	return []string{"synth", "pack", "place", "route", "write_fasm", "write_bitstream"}
}

func (symbiflowProfile) FileTemplates() []build.FileTemplate {
	return []build.FileTemplate{
		{Name: "build_{{.Name}}.sh", Body: buildScriptTemplate},
		{Name: "{{.Name}}.v", Body: verilogTemplate},
		{Name: "{{.Name}}.pcf", Body: symbiflowPcfTemplate},
		{Name: "{{.Name}}.xdc", Body: symbiflowXdcTemplate},
		{Name: "{{.Name}}.sdc", Body: symbiflowSdcTemplate},
	}
}

func (symbiflowProfile) CommandTemplates() []string {
	return []string{
		`{{invokeTool "synth"}} -t {{.Name}} -v {{.Name}}.v -p {{.PartMapped}} -x {{.Name}}.xdc`,
		`{{invokeTool "pack"}} -e {{.Name}}.eblif -P {{.PartMapped}} -s {{.Name}}.sdc`,
		`{{invokeTool "place"}} -e {{.Name}}.eblif -p {{.Name}}.pcf -n {{.Name}}.net -P {{.PartMapped}} -s {{.Name}}.sdc`,
		`{{invokeTool "route"}} -e {{.Name}}.eblif -P {{.PartMapped}} -s {{.Name}}.sdc`,
		`{{invokeTool "write_fasm"}} -e {{.Name}}.eblif -P {{.PartMapped}}`,
		`{{invokeTool "write_bitstream"}} -f {{.Name}}.fasm -p {{.PartMapped}} -b {{.Name}}.bit`,
	}
}
