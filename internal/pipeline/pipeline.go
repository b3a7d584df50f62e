// Package pipeline orchestrates one translation unit's lifecycle: read
// source, lex+parse, run the codegen prepass/globals/bodies stages,
// verify, run the optimizer, and emit an object file. Grounded on
// funvibe/funxy's internal/pipeline.Pipeline/Processor shape (a sequence
// of stages threading a context through) and on
// original_source/cg_unit.cpp's own unit-at-a-time compile loop.
// CompileUnit stops at the first stage that records an error. Unlike
// funxy's Pipeline, the stages here are plain steps inside CompileUnit
// rather than a Processor interface, since bironc's stages are fixed and never
// reordered or reused across a non-compiler frontend (funxy's Pipeline
// is shared between its VM, LSP, and tree-walk backends; bironc has one
// consumer).
package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"github.com/biron-lang/bironc/internal/ast"
	"github.com/biron-lang/bironc/internal/backend"
	"github.com/biron-lang/bironc/internal/codegen"
	"github.com/biron-lang/bironc/internal/config"
	"github.com/biron-lang/bironc/internal/diag"
	"github.com/biron-lang/bironc/internal/parser"
)

// Options configures one unit's compilation, set once from CLI flags and
// shared read-only across every parallel unit (spec.md §5: "no state is
// shared between translation units" — Options itself carries no per-unit
// mutable state, only the knobs every unit compiles under).
type Options struct {
	Opt        config.OptLevel
	EmitBitcode bool // -bm: emit an LLVM bitcode/IR module instead of a native object
	DumpAfter  bool // -da: dump the unit's AST after parsing
	DumpIR     bool // -di: dump the module's IR after optimization, before emission
	OutDir     string
}

// Result is one unit's outcome: its diagnostics and, on success, the path
// to its emitted object file.
type Result struct {
	// ID is a per-unit identifier stable across this process's lifetime,
	// mirroring funxy's use of google/uuid for module/session identity.
	// It is stored here only; no diagnostic or output path includes it.
	ID          uuid.UUID
	File        string
	Diagnostics []diag.Diagnostic
	ObjectPath  string
	Err         error

	sink *diag.Sink
}

// HasErrors reports whether the unit failed to compile cleanly.
func (r *Result) HasErrors() bool {
	return r.Err != nil
}

// FormatDiagnostics renders every recorded diagnostic as
// "file:line:col: severity: message", in report order.
func (r *Result) FormatDiagnostics() []string {
	out := make([]string, len(r.Diagnostics))
	for i, d := range r.Diagnostics {
		out[i] = r.sink.Format(r.File, d)
	}
	return out
}

// CompileUnit runs one source file through the full lexer parser
// codegen verify optimize emit lifecycle (spec.md §5, §6.1). It never
// touches package-level state: a fresh arena.Scratch, types.Cache, and
// backend.Module are created per call, so callers may invoke CompileUnit
// concurrently across goroutines, one per input file.
func CompileUnit(path string, newModule func(name string) backend.Module, opts Options) *Result {
	res := &Result{ID: uuid.New(), File: path}

	src, err := os.ReadFile(path)
	if err != nil {
		res.Err = fmt.Errorf("pipeline: reading %s: %w", path, err)
		return res
	}

	sink := diag.NewSink(string(src))
	res.sink = sink
	u := parser.New(string(src), path, sink).ParseUnit()
	res.Diagnostics = sink.All()
	if sink.HasErrors() {
		res.Err = fmt.Errorf("pipeline: %s: parse errors", path)
		return res
	}

	if opts.DumpAfter {
		ast.DumpUnit(os.Stderr, u)
	}

	mod := newModule(unitModuleName(path))
	cg := codegen.New(mod, sink)
	cg.Compile(u)
	res.Diagnostics = sink.All()
	if sink.HasErrors() {
		res.Err = fmt.Errorf("pipeline: %s: codegen errors", path)
		return res
	}

	if err := mod.Verify(); err != nil {
		res.Err = fmt.Errorf("pipeline: %s: module verification failed: %w", path, err)
		return res
	}

	if pipelineStr := opts.Opt.Pipeline(); pipelineStr != "" {
		if err := mod.RunPasses(pipelineStr); err != nil {
			res.Err = fmt.Errorf("pipeline: %s: optimization failed: %w", path, err)
			return res
		}
	}

	if opts.DumpIR {
		fmt.Fprintf(os.Stderr, "; --- %s: IR after optimization ---\n%s\n", path, mod.Dump())
	}

	objPath := outputPath(path, opts)
	if err := mod.EmitObject(objPath); err != nil {
		res.Err = fmt.Errorf("pipeline: %s: emitting object: %w", path, err)
		return res
	}
	res.ObjectPath = objPath
	return res
}

func unitModuleName(path string) string {
	return config.TrimSourceExt(path)
}

// CompileAll compiles every path concurrently, one goroutine per unit,
// and returns their results in input order — the "multiple translation
// units may be compiled in parallel" allowance of spec.md §5. No state
// is shared between the goroutines: newModule is called once per unit
// and must itself return a fresh backend.Module.
func CompileAll(paths []string, newModule func(name string) backend.Module, opts Options) []*Result {
	results := make([]*Result, len(paths))
	var wg sync.WaitGroup
	for i, p := range paths {
		wg.Add(1)
		go func(i int, p string) {
			defer wg.Done()
			results[i] = CompileUnit(p, newModule, opts)
		}(i, p)
	}
	wg.Wait()
	return results
}

func outputPath(path string, opts Options) string {
	base := config.TrimSourceExt(path)
	if opts.OutDir != "" {
		base = filepath.Join(opts.OutDir, filepath.Base(base))
	}
	if opts.EmitBitcode {
		return base + ".ll"
	}
	return base + ".o"
}
