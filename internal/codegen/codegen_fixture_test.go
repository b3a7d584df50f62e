package codegen_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/biron-lang/bironc/internal/backend/recording"
	"github.com/biron-lang/bironc/internal/codegen"
	"github.com/biron-lang/bironc/internal/diag"
	"github.com/biron-lang/bironc/internal/parser"
	"github.com/biron-lang/bironc/internal/testutil"
)

// TestFixtures runs every golden txtar fixture under
// internal/testutil/testdata/ (one per
// spec.md §8.4 scenario) through the full parser -> codegen lowering
// against the recording backend, and checks each against its expected
// diagnostics: none, for a fixture with no "diagnostics" archive file, or
// every listed substring appearing in some reported message, in order.
func TestFixtures(t *testing.T) {
	fixtures, err := testutil.Load("../testutil/testdata")
	require.NoError(t, err)
	require.NotEmpty(t, fixtures, "expected at least one golden fixture")

	for _, f := range fixtures {
		f := f
		t.Run(f.Name, func(t *testing.T) {
			sink := diag.NewSink(f.Source)
			u := parser.New(f.Source, f.Name+".bn", sink).ParseUnit()
			mod := recording.New(f.Name)
			cg := codegen.New(mod, sink)
			cg.Compile(u)

			if len(f.WantDiagnostics) == 0 {
				require.False(t, sink.HasErrors(), "expected a clean compile, got: %v", sink.All())
				return
			}

			require.True(t, sink.HasErrors(), "expected diagnostics, got a clean compile")
			var messages []string
			for _, d := range sink.All() {
				messages = append(messages, d.Message)
			}
			for _, want := range f.WantDiagnostics {
				found := false
				for _, msg := range messages {
					if strings.Contains(msg, want) {
						found = true
						break
					}
				}
				require.True(t, found, "expected a diagnostic containing %q, got: %v", want, messages)
			}
		})
	}
}
