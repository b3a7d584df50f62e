// Package srcrange provides the byte-offset source ranges that every AST
// node and diagnostic in bironc carries.
package srcrange

// Range is a byte-offset span into the source buffer of a single
// translation unit. Ranges compose by span-union so a parent node's range
// always covers every child it was built from.
type Range struct {
	Offset uint32
	Length uint32
}

// End returns the offset one past the last byte covered by r.
func (r Range) End() uint32 {
	return r.Offset + r.Length
}

// Union returns the smallest range covering both a and b.
func Union(a, b Range) Range {
	start := a.Offset
	if b.Offset < start {
		start = b.Offset
	}
	end := a.End()
	if b.End() > end {
		end = b.End()
	}
	return Range{Offset: start, Length: end - start}
}
