// Package config holds bironc's recognized source extensions, pass-manager
// level constants, and the optional project file, generalized from
// funvibe/funxy's internal/config/constants.go (SourceFileExtensions,
// IsTestMode) into build configuration for a compiler rather than a
// scripting-language runtime.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// SourceFileExt is the canonical biron source extension.
const SourceFileExt = ".bn"

// SourceFileExtensions are all extensions bironc treats as biron source,
// mirroring funxy's SourceFileExtensions (".lang", ".funxy", ".fx").
var SourceFileExtensions = []string{".bn", ".biron"}

// HasSourceExt reports whether path ends with a recognized source
// extension.
func HasSourceExt(path string) bool {
	for _, ext := range SourceFileExtensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}

// TrimSourceExt removes a recognized source extension from name, for
// deriving a default object/output file name from an input path.
func TrimSourceExt(name string) string {
	for _, ext := range SourceFileExtensions {
		if strings.HasSuffix(name, ext) {
			return name[:len(name)-len(ext)]
		}
	}
	return name
}

// IsTestMode mirrors funxy's flag of the same name. Nothing in bironc
// sets or reads it; it stays false unless a caller assigns it.
var IsTestMode = false

// OptLevel is a `-O0`..`-O3` pass-manager level.
type OptLevel int

const (
	O0 OptLevel = iota
	O1
	O2
	O3
)

// Pipeline returns the llvm-style pass pipeline string RunPasses expects
// for this optimization level.
func (o OptLevel) Pipeline() string {
	switch o {
	case O1:
		return "default<O1>"
	case O2:
		return "default<O2>"
	case O3:
		return "default<O3>"
	default:
		return ""
	}
}

func (o OptLevel) String() string {
	return fmt.Sprintf("O%d", int(o))
}

// ParseOptLevel parses "0".."3" (the digit following -O) into an OptLevel.
func ParseOptLevel(s string) (OptLevel, error) {
	switch s {
	case "0":
		return O0, nil
	case "1":
		return O1, nil
	case "2":
		return O2, nil
	case "3":
		return O3, nil
	default:
		return O0, fmt.Errorf("invalid optimization level -O%s", s)
	}
}

// Project is the optional bironc.yaml project file: a target triple,
// default optimization level, and extra linker flags applied before CLI
// flags, generalizing funxy's YAML-configured virtual packages
// (builtins_yaml.go) into build configuration.
type Project struct {
	Target     string   `yaml:"target"`
	OptLevel   string   `yaml:"opt_level"`
	LinkerArgs []string `yaml:"linker_args"`
	Linker     string   `yaml:"linker"`
}

// LoadProject reads and parses a bironc.yaml project file at path. A
// missing file is not an error: callers fall back to flag defaults.
func LoadProject(path string) (*Project, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Project{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}
	var p Project
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return &p, nil
}
