package build

import (
	"fmt"
	"os"
	"os/exec"
	"path"

	"github.com/hdlforge/xbt/log"
	"github.com/hdlforge/xbt/util"
)

// Artifact is one rendered build product.
type Artifact struct {
	Name    string
	Content string
}

// Plan is the full set of rendered artifacts for one build, plus what is
// needed to run the toolchain on them.
type Plan struct {
	Name          string
	RequiredTools []string
	EnvVar        string
	Files         []Artifact
}

// Script returns the name of the shell driver among the plan's artifacts.
func (p *Plan) Script() string {
	return fmt.Sprintf("build_%s.sh", p.Name)
}

// Artifact returns the rendered content of the named file.
func (p *Plan) Artifact(name string) (string, bool) {
	for _, file := range p.Files {
		if file.Name == name {
			return file.Content, true
		}
	}
	return "", false
}

// Extract writes all artifacts into the given build directory.
func (p *Plan) Extract(dir string) error {
	for _, file := range p.Files {
		log.Debug("Writing '%s'.\n", file.Name)
		if err := util.WriteFile(path.Join(dir, file.Name), []byte(file.Content)); err != nil {
			return fmt.Errorf("failed to write %q: %w", file.Name, err)
		}
	}
	return nil
}

// Execute runs the shell driver in the build directory. The required external
// tools must be reachable, either on PATH or through the environment script
// named by the plan's environment variable.
func (p *Plan) Execute(dir string) error {
	if os.Getenv(p.EnvVar) == "" {
		for _, tool := range p.RequiredTools {
			if _, err := exec.LookPath(tool); err != nil {
				return fmt.Errorf("required tool %q not found; install it or set %s", tool, p.EnvVar)
			}
		}
	}

	log.Log("Running '%s'.\n", p.Script())
	cmd := exec.Command("sh", p.Script())
	cmd.Dir = dir
	if log.Verbose {
		cmd.Stdout = os.Stderr
		cmd.Stderr = os.Stderr
	} else {
		log.Spinner.Start()
		defer log.Spinner.Stop()
	}
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("build failed: %w", err)
	}
	return nil
}
