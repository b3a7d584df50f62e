package diag

import (
	"fmt"
	"strings"
)

// Sprintf formats a diagnostic message. It supports the original's custom
// "%S" string-view verb in addition to the usual Go integer/float verbs,
// via a two-pass probe: the first pass walks the format string once to
// translate every "%S" into "%s" (and counts verbs, as the original's
// length-then-fill snprintf probe would), the second pass actually fills
// the message with fmt.Sprintf. This mirrors
// _examples/original_source/src/biron/util/format.{h,cpp}'s two-call
// (measure, then fill) convention without needing Go's fmt package to be
// called twice for the filled result.
func Sprintf(format string, args ...any) string {
	var norm strings.Builder
	norm.Grow(len(format))
	verbCount := 0
	for i := 0; i < len(format); i++ {
		c := format[i]
		if c != '%' {
			norm.WriteByte(c)
			continue
		}
		if i+1 < len(format) {
			next := format[i+1]
			if next == 'S' {
				norm.WriteString("%s")
				i++
				verbCount++
				continue
			}
			if next != '%' {
				verbCount++
			}
		}
		norm.WriteByte(c)
	}
	return fmt.Sprintf(norm.String(), args...)
}
