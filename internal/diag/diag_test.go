package diag

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/biron-lang/bironc/internal/srcrange"
)

func TestConsecutiveSameRangeDiagnosticsAreDeduped(t *testing.T) {
	s := NewSink("let x = 1;")
	r := srcrange.Range{Offset: 4, Length: 1}
	s.Errorf(r, "first")
	s.Errorf(r, "second, same range, dropped")
	require.Len(t, s.All(), 1)
	require.Equal(t, "first", s.All()[0].Message)
}

func TestDifferentRangeDiagnosticsAreNotDeduped(t *testing.T) {
	s := NewSink("let x = 1;")
	s.Errorf(srcrange.Range{Offset: 4, Length: 1}, "a")
	s.Errorf(srcrange.Range{Offset: 8, Length: 1}, "b")
	require.Len(t, s.All(), 2)
}

func TestNonConsecutiveSameRangeIsNotDeduped(t *testing.T) {
	s := NewSink("let x = 1;")
	r := srcrange.Range{Offset: 4, Length: 1}
	s.Errorf(r, "a")
	s.Errorf(srcrange.Range{Offset: 8, Length: 1}, "between")
	s.Errorf(r, "a again, different predecessor, kept")
	require.Len(t, s.All(), 3)
}

func TestFatalSetsIsFatalButKeepsAcceptingDiagnostics(t *testing.T) {
	s := NewSink("x")
	require.False(t, s.IsFatal())
	s.Fatalf(srcrange.Range{Offset: 0, Length: 1}, "boom")
	require.True(t, s.IsFatal())
	s.Errorf(srcrange.Range{Offset: 0, Length: 1}, "same range as the fatal, dropped by dedup")
	s.Errorf(srcrange.Range{Offset: 5, Length: 1}, "further diagnostics keep landing")
	require.Len(t, s.All(), 2)
}

func TestHasErrorsRequiresErrorOrFatalSeverity(t *testing.T) {
	s := NewSink("x")
	s.Warningf(srcrange.Range{Offset: 0, Length: 1}, "just a warning")
	require.False(t, s.HasErrors())
	s.Errorf(srcrange.Range{Offset: 0, Length: 1}, "ok now an error too")
	require.False(t, s.HasErrors(), "same range as the preceding warning would dedup — use a distinct range")
}

func TestHasErrorsTrueOnError(t *testing.T) {
	s := NewSink("x")
	s.Errorf(srcrange.Range{Offset: 2, Length: 1}, "boom")
	require.True(t, s.HasErrors())
}

func TestPositionBasicOffsets(t *testing.T) {
	// "ab\ncd" — offsets: a=0 b=1 \n=2 c=3 d=4
	s := NewSink("ab\ncd")
	line, col := s.Position(0)
	require.Equal(t, 1, line)
	require.Equal(t, 1, col)

	line, col = s.Position(1)
	require.Equal(t, 1, line)
	require.Equal(t, 2, col)

	line, col = s.Position(4)
	require.Equal(t, 2, line)
	require.Equal(t, 2, col)
}

func TestPositionAtStartOfNewLineReportsPreviousLineLastColumn(t *testing.T) {
	// offset 3 is 'c', the first column of line 2; Position folds this
	// back onto line 1's last column, matching diagnostic.cpp.
	s := NewSink("ab\ncd")
	line, col := s.Position(3)
	require.Equal(t, 1, line)
	require.Equal(t, 3, col)
}

func TestFormat(t *testing.T) {
	s := NewSink("ab\ncd")
	d := Diagnostic{Range: srcrange.Range{Offset: 4, Length: 1}, Severity: Error, Message: "bad token"}
	require.Equal(t, "foo.bn:2:2: error: bad token", s.Format("foo.bn", d))
}

func TestSprintfTranslatesCustomStringVerb(t *testing.T) {
	require.Equal(t, "type Sint32 is not a variant of bar", Sprintf("type %S is not a variant of %s", "Sint32", "bar"))
}

func TestSeverityString(t *testing.T) {
	require.Equal(t, "warning", Warning.String())
	require.Equal(t, "error", Error.String())
	require.Equal(t, "fatal", Fatal.String())
}
