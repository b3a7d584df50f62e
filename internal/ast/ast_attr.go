package ast

// AttrKind tags every attribute node (spec.md §3.2).
type AttrKind int

const (
	AttrSection AttrKind = iota
	AttrAlign
	AttrUsed
	AttrExport
)

// Attr is the tagged-sum interface every attribute node implements.
// Attributes attach to types, local lets, global lets, and functions.
type Attr interface {
	AttrKind() AttrKind
	Range() Range
}

// SectionAttr is `@section("name")`.
type SectionAttr struct {
	R     Range
	Value string
}

func (a *SectionAttr) AttrKind() AttrKind { return AttrSection }
func (a *SectionAttr) Range() Range       { return a.R }

// AlignAttr is `@align(n)`.
type AlignAttr struct {
	R     Range
	Value int
}

func (a *AlignAttr) AttrKind() AttrKind { return AttrAlign }
func (a *AlignAttr) Range() Range       { return a.R }

// UsedAttr is `@used(bool?)`, defaulting to true when the argument is
// omitted.
type UsedAttr struct {
	R     Range
	Value bool
}

func (a *UsedAttr) AttrKind() AttrKind { return AttrUsed }
func (a *UsedAttr) Range() Range       { return a.R }

// ExportAttr is `@export(bool?)`.
type ExportAttr struct {
	R     Range
	Value bool
}

func (a *ExportAttr) AttrKind() AttrKind { return AttrExport }
func (a *ExportAttr) Range() Range       { return a.R }

// FindSection returns the value of a `@section` attribute in attrs, if
// present.
func FindSection(attrs []Attr) (string, bool) {
	for _, a := range attrs {
		if s, ok := a.(*SectionAttr); ok {
			return s.Value, true
		}
	}
	return "", false
}

// FindAlign returns the value of an `@align` attribute in attrs, if
// present.
func FindAlign(attrs []Attr) (int, bool) {
	for _, a := range attrs {
		if al, ok := a.(*AlignAttr); ok {
			return al.Value, true
		}
	}
	return 0, false
}

// FindUsed returns the value of a `@used` attribute in attrs, if present.
func FindUsed(attrs []Attr) (bool, bool) {
	for _, a := range attrs {
		if u, ok := a.(*UsedAttr); ok {
			return u.Value, true
		}
	}
	return false, false
}

// FindExport returns the value of an `@export` attribute in attrs, if
// present.
func FindExport(attrs []Attr) (bool, bool) {
	for _, a := range attrs {
		if e, ok := a.(*ExportAttr); ok {
			return e.Value, true
		}
	}
	return false, false
}

func NewSectionAttr(a *Arena, r Range, value string) *SectionAttr {
	n := alloc[SectionAttr](a)
	n.R, n.Value = r, value
	return n
}

func NewAlignAttr(a *Arena, r Range, value int) *AlignAttr {
	n := alloc[AlignAttr](a)
	n.R, n.Value = r, value
	return n
}

func NewUsedAttr(a *Arena, r Range, value bool) *UsedAttr {
	n := alloc[UsedAttr](a)
	n.R, n.Value = r, value
	return n
}

func NewExportAttr(a *Arena, r Range, value bool) *ExportAttr {
	n := alloc[ExportAttr](a)
	n.R, n.Value = r, value
	return n
}
