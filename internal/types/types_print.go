package types

import (
	"fmt"
	"strings"
)

func stringify(t *CT) string {
	if t == nil {
		return "<nil>"
	}
	if t.typeName != "" {
		return t.typeName
	}
	switch t.kind {
	case KindPointer:
		return "*" + stringify(t.base)
	case KindSlice:
		return "[]" + stringify(t.base)
	case KindArray:
		return fmt.Sprintf("[%d]%s", t.extent, stringify(t.base))
	case KindPadding:
		return fmt.Sprintf(".pad%d", t.layout.Size)
	case KindAtomic:
		return "atom(" + stringify(t.base) + ")"
	case KindVA:
		return "..."
	case KindTuple:
		parts := make([]string, len(t.fields))
		for i, f := range t.fields {
			parts[i] = stringify(f.T)
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case KindUnion:
		parts := make([]string, len(t.fields))
		for i, f := range t.fields {
			parts[i] = stringify(f.T)
		}
		return strings.Join(parts, " | ")
	case KindFn:
		return fmt.Sprintf("fn%s -> %s", stringify(t.args), stringify(t.rets))
	case KindEnum:
		return "enum(" + stringify(t.base) + ")"
	default:
		return t.kind.String()
	}
}
