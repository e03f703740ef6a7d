package build

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/hdlforge/xbt/config"
)

// FileTemplate is one artifact template of a toolchain profile. Name is
// itself a template for the output file name.
type FileTemplate struct {
	Name string
	Body string
}

// ClockView is the render-time view of a clock constraint.
type ClockView struct {
	Name   string
	IsPort bool
	Period string
}

// TemplateData is the context handed to every artifact and command template.
type TemplateData struct {
	Name          string
	Autogenerated string
	Part          string
	PartMapped    string
	EnvVar        string
	Verilog       string
	Ports         []PortConstraint
	Clocks        []ClockView
	Commands      []string
}

// ClockViews returns the registered clock constraints with their frequencies
// converted to period strings for emission.
func (p *Platform) ClockViews() []ClockView {
	views := make([]ClockView, 0, len(p.clocks))
	for _, c := range p.clocks {
		views = append(views, ClockView{
			Name:   c.signal().Name,
			IsPort: c.Port != nil,
			Period: c.PeriodNs(),
		})
	}
	return views
}

// TclEscape quotes a string for use as a single Tcl word.
func TclEscape(s string) string {
	var b strings.Builder
	b.WriteByte('{')
	for _, r := range s {
		if r == '{' || r == '}' || r == '\\' {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	b.WriteByte('}')
	return b.String()
}

// AsciiEscape replaces everything outside [A-Za-z0-9_] so the result is safe
// as a constraint-file identifier.
func AsciiEscape(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r == '_' || (r >= '0' && r <= '9') || (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}

func (p *Platform) funcs() template.FuncMap {
	return template.FuncMap{
		"getOverride": p.Override,
		"options": func(name string) string {
			return strings.Join(strings.Fields(p.Override(name, "")), " ")
		},
		"tclEscape":   TclEscape,
		"asciiEscape": AsciiEscape,
		"hasSuffix":   strings.HasSuffix,
		"invokeTool":  config.ToolPath,
	}
}

// CompileTemplate compiles a Go text template, executes it, and returns the
// result as a string.
func CompileTemplate(name, tmpl string, funcs template.FuncMap, data interface{}) (string, error) {
	t, err := template.New(name).Funcs(funcs).Parse(tmpl)
	if err != nil {
		return "", fmt.Errorf("cannot parse template %q: %w", name, err)
	}
	var buff bytes.Buffer
	if err := t.Execute(&buff, data); err != nil {
		return "", fmt.Errorf("cannot execute template %q: %w", name, err)
	}
	return buff.String(), nil
}

// Render feeds the accumulated facts through a profile's command and file
// templates and returns the resulting build plan. Command templates are
// rendered first and collapsed to single lines; the build-script template
// then embeds them via .Commands.
func (p *Platform) Render(data TemplateData, files []FileTemplate, commands []string, requiredTools []string) (*Plan, error) {
	funcs := p.funcs()

	for index, command := range commands {
		line, err := CompileTemplate(fmt.Sprintf("command%d", index), command, funcs, data)
		if err != nil {
			return nil, err
		}
		data.Commands = append(data.Commands, strings.Join(strings.Fields(line), " "))
	}

	plan := &Plan{
		Name:          data.Name,
		RequiredTools: requiredTools,
		EnvVar:        data.EnvVar,
	}
	for _, file := range files {
		name, err := CompileTemplate("filename", file.Name, funcs, data)
		if err != nil {
			return nil, err
		}
		content, err := CompileTemplate(name, file.Body, funcs, data)
		if err != nil {
			return nil, err
		}
		plan.Files = append(plan.Files, Artifact{Name: name, Content: content})
	}
	return plan, nil
}
