// Command bironc is the biron compiler driver. It lowers one or more
// translation units to object files via internal/pipeline and, absent
// -bm, links them into an executable with the system `cc`, exactly as
// funvibe/funxy's cmd/funxy/main.go shells out to exec.Command for its
// own build-tooling paths rather than linking a linker library in.
package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/biron-lang/bironc/internal/backend"
	"github.com/biron-lang/bironc/internal/backend/llvmir"
	"github.com/biron-lang/bironc/internal/config"
	"github.com/biron-lang/bironc/internal/pipeline"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		optO0      bool
		optO1      bool
		optO2      bool
		optO3      bool
		bitcode    bool
		dumpAfter  bool
		dumpIR     bool
		outPath    string
		linkerPath string
		projectCfg string
	)

	cmd := &cobra.Command{
		Use:   "bironc [flags] file...",
		Short: "Compile biron source files to a native executable",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			proj, err := config.LoadProject(projectCfg)
			if err != nil {
				return err
			}
			opt, err := resolveOptLevel(optO0, optO1, optO2, optO3, proj)
			if err != nil {
				return err
			}

			for _, f := range args {
				if !config.HasSourceExt(f) {
					return fmt.Errorf("%s: not a recognized biron source file", f)
				}
			}

			opts := pipeline.Options{
				Opt:         opt,
				EmitBitcode: bitcode,
				DumpAfter:   dumpAfter,
				DumpIR:      dumpIR,
			}

			results := pipeline.CompileAll(args, func(name string) backend.Module {
				return llvmir.New(name)
			}, opts)

			failed := false
			var objects []string
			for _, r := range results {
				for _, line := range r.FormatDiagnostics() {
					fmt.Fprintln(os.Stderr, line)
				}
				if r.HasErrors() {
					fmt.Fprintf(os.Stderr, "bironc: %s\n", r.Err)
					failed = true
					continue
				}
				objects = append(objects, r.ObjectPath)
			}
			if failed {
				return fmt.Errorf("compilation failed")
			}
			if bitcode {
				return nil
			}

			out := outPath
			if out == "" {
				out = config.TrimSourceExt(args[0])
			}
			return link(objects, out, linkerPath, proj)
		},
	}

	cmd.Flags().BoolVar(&optO0, "O0", false, "pass-manager level 0: no optimization (default)")
	cmd.Flags().BoolVar(&optO1, "O1", false, "pass-manager level 1")
	cmd.Flags().BoolVar(&optO2, "O2", false, "pass-manager level 2")
	cmd.Flags().BoolVar(&optO3, "O3", false, "pass-manager level 3")
	cmd.Flags().BoolVar(&bitcode, "bm", false, "build modules only; skip linking")
	cmd.Flags().BoolVar(&dumpAfter, "da", false, "dump each file's AST after parsing")
	cmd.Flags().BoolVar(&dumpIR, "di", false, "dump each module's IR after optimization")
	cmd.Flags().StringVarP(&outPath, "output", "o", "", "output executable path")
	cmd.Flags().StringVar(&linkerPath, "linker", "", "linker to invoke in place of cc")
	cmd.Flags().StringVar(&projectCfg, "config", "bironc.yaml", "project configuration file")

	return cmd
}

// resolveOptLevel picks the highest of -O0..-O3 given on the command line
// (spec.md §6.1: these are mutually-exclusive-in-practice literal flags, not
// a flag-plus-argument pair), falling back to the project file's opt_level
// and then O0.
func resolveOptLevel(o0, o1, o2, o3 bool, proj *config.Project) (config.OptLevel, error) {
	switch {
	case o3:
		return config.O3, nil
	case o2:
		return config.O2, nil
	case o1:
		return config.O1, nil
	case o0:
		return config.O0, nil
	}
	if proj.OptLevel != "" {
		return config.ParseOptLevel(proj.OptLevel)
	}
	return config.O0, nil
}

// link invokes cc (or an explicitly configured linker) over every
// compiled object file, the same system-linker fallback spec.md §6.1
// describes and funxy's own build path takes for anything it doesn't
// implement in Go itself.
func link(objects []string, out, linkerPath string, proj *config.Project) error {
	cc := "cc"
	if linkerPath != "" {
		cc = linkerPath
	} else if proj.Linker != "" {
		cc = proj.Linker
	}
	args := append([]string{}, objects...)
	args = append(args, "-o", out)
	args = append(args, proj.LinkerArgs...)

	cmd := exec.Command(cc, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("bironc: linking %s: %w", filepath.Base(out), err)
	}
	return nil
}
