// Package types implements bironc's canonical type cache (spec.md §3.4,
// §4.4): interned, structurally-unique CT nodes carrying a target Layout,
// grounded on _examples/original_source/src/biron/cg_type.{h,cpp}'s
// CgType/CgTypeCache. Go's GC gives every *CT a stable address once
// allocated, so — unlike the C++ original — this package needs no
// separate pool; the cache is a plain map keyed by a structural digest.
package types

// Kind tags every canonical type node.
type Kind int

const (
	KindU8 Kind = iota
	KindU16
	KindU32
	KindU64
	KindS8
	KindS16
	KindS32
	KindS64
	KindB8
	KindB16
	KindB32
	KindB64
	KindF32
	KindF64
	KindString
	KindPointer
	KindSlice
	KindArray
	KindPadding
	KindTuple
	KindUnion
	KindFn
	KindVA
	KindAtomic
	KindEnum
)

func (k Kind) String() string {
	switch k {
	case KindU8:
		return "u8"
	case KindU16:
		return "u16"
	case KindU32:
		return "u32"
	case KindU64:
		return "u64"
	case KindS8:
		return "s8"
	case KindS16:
		return "s16"
	case KindS32:
		return "s32"
	case KindS64:
		return "s64"
	case KindB8:
		return "b8"
	case KindB16:
		return "b16"
	case KindB32:
		return "b32"
	case KindB64:
		return "b64"
	case KindF32:
		return "f32"
	case KindF64:
		return "f64"
	case KindString:
		return "string"
	case KindPointer:
		return "pointer"
	case KindSlice:
		return "slice"
	case KindArray:
		return "array"
	case KindPadding:
		return "padding"
	case KindTuple:
		return "tuple"
	case KindUnion:
		return "union"
	case KindFn:
		return "fn"
	case KindVA:
		return "va"
	case KindAtomic:
		return "atomic"
	case KindEnum:
		return "enum"
	default:
		return "?"
	}
}

// Layout is a CT's size and alignment in target bytes (spec.md §3.4).
type Layout struct {
	Size  uint64
	Align uint64
}

// Field is one element of a tuple or union CT: an optional name (empty for
// positional elements and for inserted padding) paired with its type.
type Field struct {
	Name string
	T    *CT
}

// Enumerator is one member of an EnumType: a name and its already-resolved
// constant integer value. Enum constants are always integral (the base CT
// is an integer kind), so this avoids importing internal/cv here — a
// CV-valued field would make cv and types import each other.
type Enumerator struct {
	Name  string
	Value int64
}

// CT is a canonical type node. Immutable after Cache interns it; identity
// is structural (spec.md §3.4: "Name does not participate in identity"),
// so CT deliberately carries no name field used for equality — TypeName
// is informational only, for printing and backend named-struct reuse.
type CT struct {
	kind     Kind
	layout   Layout
	extent   uint64 // ARRAY extent
	base     *CT    // POINTER/SLICE/ARRAY/ATOMIC element, or ENUM base
	fields   []Field
	typeName string // tuple/struct name, used for printing + backend handle reuse
	args     *CT
	rets     *CT
	effects  []*CT
	enums    []Enumerator
	sign     bool // true for signed integer kinds

	handle any // lazily-produced backend type handle (internal/codegen sets this)
}

func (t *CT) Kind() Kind           { return t.kind }
func (t *CT) Layout() Layout       { return t.layout }
func (t *CT) Size() uint64         { return t.layout.Size }
func (t *CT) Align() uint64        { return t.layout.Align }
func (t *CT) Extent() uint64       { return t.extent }
func (t *CT) Base() *CT            { return t.base }
func (t *CT) Fields() []Field      { return t.fields }
func (t *CT) TypeName() string     { return t.typeName }
func (t *CT) Args() *CT            { return t.args }
func (t *CT) Rets() *CT            { return t.rets }
func (t *CT) Effects() []*CT       { return t.effects }
func (t *CT) Enumerators() []Enumerator { return t.enums }

func (t *CT) IsInteger() bool { return t.kind >= KindU8 && t.kind <= KindS64 }
func (t *CT) IsUnsigned() bool { return t.kind >= KindU8 && t.kind <= KindU64 }
func (t *CT) IsSigned() bool   { return t.kind >= KindS8 && t.kind <= KindS64 }
func (t *CT) IsBool() bool     { return t.kind >= KindB8 && t.kind <= KindB64 }
func (t *CT) IsFloat() bool    { return t.kind == KindF32 || t.kind == KindF64 }
func (t *CT) IsPointer() bool  { return t.kind == KindPointer }
func (t *CT) IsString() bool   { return t.kind == KindString }
func (t *CT) IsSlice() bool    { return t.kind == KindSlice }
func (t *CT) IsArray() bool    { return t.kind == KindArray }
func (t *CT) IsPadding() bool  { return t.kind == KindPadding }
func (t *CT) IsTuple() bool    { return t.kind == KindTuple }
func (t *CT) IsUnion() bool    { return t.kind == KindUnion }
func (t *CT) IsFn() bool       { return t.kind == KindFn }
func (t *CT) IsVA() bool       { return t.kind == KindVA }
func (t *CT) IsAtomic() bool   { return t.kind == KindAtomic }
func (t *CT) IsEnum() bool     { return t.kind == KindEnum }

// Handle returns the backend type handle previously stored by SetHandle,
// or nil if none has been produced yet.
func (t *CT) Handle() any { return t.handle }

// SetHandle records the backend type handle produced for t so later
// lookups reuse it instead of re-emitting the type (spec.md §3.4: "the
// cache is responsible for reusing named struct handles").
func (t *CT) SetHandle(h any) { t.handle = h }

// Deref returns the pointee of a POINTER CT, or the element type of a
// SLICE/ARRAY/ATOMIC CT.
func (t *CT) Deref() *CT { return t.base }

// Equal reports whether t and other are the same canonical type:
// identical kind, layout, extent, and recursively-equal children. Name is
// never compared (spec.md §3.4).
func (t *CT) Equal(other *CT) bool {
	if t == other {
		return true
	}
	if t == nil || other == nil {
		return false
	}
	if t.kind != other.kind || t.layout != other.layout || t.extent != other.extent {
		return false
	}
	if !t.base.Equal(other.base) {
		return false
	}
	// Field names are not part of a CT's structural identity (mirroring
	// CgType::operator== in the original, which compares only m_types):
	// two tuples with the same ordered element types are the same CT even
	// if their source field names differ.
	if len(t.fields) != len(other.fields) {
		return false
	}
	for i := range t.fields {
		if !t.fields[i].T.Equal(other.fields[i].T) {
			return false
		}
	}
	if !t.args.Equal(other.args) || !t.rets.Equal(other.rets) {
		return false
	}
	if len(t.effects) != len(other.effects) {
		return false
	}
	for i := range t.effects {
		if !t.effects[i].Equal(other.effects[i]) {
			return false
		}
	}
	if len(t.enums) != len(other.enums) {
		return false
	}
	for i := range t.enums {
		if t.enums[i] != other.enums[i] {
			return false
		}
	}
	return true
}

// String renders t the way a user would read it back: named aggregates
// print their name, unnamed ones print their structure (spec.md §3.4).
func (t *CT) String() string {
	return stringify(t)
}
