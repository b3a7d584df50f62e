package types

import (
	"fmt"
	"strings"
)

// Cache interns CT nodes so structurally-identical types share one
// pointer (spec.md §4.4). Construction entry points mirror
// CgTypeCache::alloc in the original: build a candidate, hash-cons it
// against what's already interned, and return the canonical node.
type Cache struct {
	interned map[string]*CT

	uints [4]*CT // U8, U16, U32, U64
	sints [4]*CT // S8, S16, S32, S64
	bools [4]*CT // B8, B16, B32, B64
	flts  [2]*CT // F32, F64
	ptr   *CT
	str   *CT
	unit  *CT // unit = ()
	va    *CT
}

// target byte widths for the built-in table (spec.md §4.4).
const ptrSize = 8

var intWidths = [4]uint64{1, 2, 4, 8}

// New creates a Cache pre-populated with the built-in table: u{8,16,32,64},
// s{8,16,32,64}, b{8,16,32,64}, f{32,64}, ptr, string, unit = (), va.
func New() *Cache {
	c := &Cache{interned: make(map[string]*CT)}
	for i, w := range intWidths {
		c.uints[i] = c.intern(&CT{kind: Kind(int(KindU8) + i), layout: Layout{w, w}, sign: false})
		c.sints[i] = c.intern(&CT{kind: Kind(int(KindS8) + i), layout: Layout{w, w}, sign: true})
		c.bools[i] = c.intern(&CT{kind: Kind(int(KindB8) + i), layout: Layout{w, w}})
	}
	c.flts[0] = c.intern(&CT{kind: KindF32, layout: Layout{4, 4}})
	c.flts[1] = c.intern(&CT{kind: KindF64, layout: Layout{8, 8}})
	c.ptr = c.intern(&CT{kind: KindPointer, layout: Layout{ptrSize, ptrSize}})
	c.str = c.intern(&CT{kind: KindString, layout: Layout{ptrSize * 2, ptrSize}})
	c.unit = c.intern(&CT{kind: KindTuple, layout: Layout{0, 1}, typeName: "()"})
	c.va = c.intern(&CT{kind: KindVA, layout: Layout{0, 1}})
	return c
}

func (c *Cache) U8() *CT  { return c.uints[0] }
func (c *Cache) U16() *CT { return c.uints[1] }
func (c *Cache) U32() *CT { return c.uints[2] }
func (c *Cache) U64() *CT { return c.uints[3] }
func (c *Cache) S8() *CT  { return c.sints[0] }
func (c *Cache) S16() *CT { return c.sints[1] }
func (c *Cache) S32() *CT { return c.sints[2] }
func (c *Cache) S64() *CT { return c.sints[3] }
func (c *Cache) B8() *CT  { return c.bools[0] }
func (c *Cache) B16() *CT { return c.bools[1] }
func (c *Cache) B32() *CT { return c.bools[2] }
func (c *Cache) B64() *CT { return c.bools[3] }
func (c *Cache) F32() *CT { return c.flts[0] }
func (c *Cache) F64() *CT { return c.flts[1] }
func (c *Cache) Ptr() *CT  { return c.ptr }
func (c *Cache) Str() *CT  { return c.str }
func (c *Cache) Unit() *CT { return c.unit }
func (c *Cache) Va() *CT   { return c.va }

// IntByWidth returns the built-in integer CT for width (8/16/32/64 bits)
// and signedness.
func (c *Cache) IntByWidth(width int, signed bool) *CT {
	idx := map[int]int{8: 0, 16: 1, 32: 2, 64: 3}[width]
	if signed {
		return c.sints[idx]
	}
	return c.uints[idx]
}

// BoolByWidth returns the built-in boolean CT of the given bit width.
func (c *Cache) BoolByWidth(width int) *CT {
	idx := map[int]int{8: 0, 16: 1, 32: 2, 64: 3}[width]
	return c.bools[idx]
}

// FloatByWidth returns the built-in float CT of the given bit width.
func (c *Cache) FloatByWidth(width int) *CT {
	if width == 32 {
		return c.flts[0]
	}
	return c.flts[1]
}

// Pointer interns `*base`.
func (c *Cache) Pointer(base *CT) *CT {
	return c.intern(&CT{kind: KindPointer, layout: Layout{ptrSize, ptrSize}, base: base})
}

// Slice interns `[]base`: a two-word {ptr, len} record.
func (c *Cache) Slice(base *CT) *CT {
	return c.intern(&CT{kind: KindSlice, layout: Layout{ptrSize * 2, ptrSize}, base: base})
}

// Array interns `[extent]base`: size = size(base)*extent, align = align(base).
func (c *Cache) Array(base *CT, extent uint64) *CT {
	return c.intern(&CT{
		kind:   KindArray,
		layout: Layout{Size: base.Size() * extent, Align: base.Align()},
		extent: extent,
		base:   base,
	})
}

// Padding interns an `[n]u8` padding pseudo-type.
func (c *Cache) Padding(n uint64) *CT {
	if n == 0 {
		return c.unit
	}
	return c.intern(&CT{kind: KindPadding, layout: Layout{n, 1}})
}

// Atomic interns an atomic wrapper over an integer or pointer base CT.
func (c *Cache) Atomic(base *CT) *CT {
	return c.intern(&CT{kind: KindAtomic, layout: base.Layout(), base: base})
}

// Tuple interns a tuple CT from ordered element types, running the
// deterministic padding-insertion algorithm from spec.md §4.4. names may
// be nil (all elements positional) or parallel to elems; name is an
// optional type name for printing/backend handle reuse (empty for an
// anonymous literal tuple type).
func (c *Cache) Tuple(elems []*CT, names []string, name string) *CT {
	fields, layout := c.layoutRecord(elems, names)
	return c.intern(&CT{kind: KindTuple, layout: layout, fields: fields, typeName: name})
}

// Union interns a union CT: `[size-of-largest-variant]u8` followed by a
// `u8` tag followed by trailing padding to the union's own alignment
// (spec.md §3.4).
func (c *Cache) Union(variants []*CT, names []string, name string) *CT {
	var maxSize, maxAlign uint64 = 0, 1
	for _, v := range variants {
		if v.Size() > maxSize {
			maxSize = v.Size()
		}
		if v.Align() > maxAlign {
			maxAlign = v.Align()
		}
	}
	tagAlign := uint64(1)
	if maxAlign < tagAlign {
		maxAlign = tagAlign
	}
	size := maxSize + 1 // payload bytes + u8 tag
	if rem := size % maxAlign; rem != 0 {
		size += maxAlign - rem
	}
	fields := make([]Field, len(variants))
	for i, v := range variants {
		n := ""
		if i < len(names) {
			n = names[i]
		}
		fields[i] = Field{Name: n, T: v}
	}
	return c.intern(&CT{
		kind:   KindUnion,
		layout: Layout{Size: size, Align: maxAlign},
		fields: fields,
		typeName: name,
	})
}

// Fn interns a function-signature CT over already-built args/rets tuple
// CTs and an ordered effect-type list.
func (c *Cache) Fn(args, rets *CT, effects []*CT) *CT {
	return c.intern(&CT{kind: KindFn, layout: Layout{ptrSize, ptrSize}, args: args, rets: rets, effects: effects})
}

// Enum interns an enumeration CT over a base integer CT and an ordered
// list of (name, value) enumerators; identity includes that list
// (spec.md §4.4).
func (c *Cache) Enum(base *CT, enumerators []Enumerator, name string) *CT {
	return c.intern(&CT{kind: KindEnum, layout: base.Layout(), base: base, enums: enumerators, typeName: name})
}

// layoutRecord runs the tuple/struct padding-insertion algorithm: align up
// to each element's alignment inserting a padding field for the gap, place
// the element, then after the last element align the whole record up to
// its own max alignment with a trailing padding field if needed.
func (c *Cache) layoutRecord(elems []*CT, names []string) ([]Field, Layout) {
	var fields []Field
	var offset, maxAlign uint64 = 0, 1
	for i, el := range elems {
		align := el.Align()
		if align > maxAlign {
			maxAlign = align
		}
		if rem := offset % align; rem != 0 {
			gap := align - rem
			fields = append(fields, Field{Name: "", T: c.Padding(gap)})
			offset += gap
		}
		name := ""
		if i < len(names) {
			name = names[i]
		}
		fields = append(fields, Field{Name: name, T: el})
		offset += el.Size()
	}
	if rem := offset % maxAlign; rem != 0 {
		gap := maxAlign - rem
		fields = append(fields, Field{Name: "", T: c.Padding(gap)})
		offset += gap
	}
	return fields, Layout{Size: offset, Align: maxAlign}
}

// intern hash-conses ct against the cache by its structural digest,
// returning the pre-existing node when one already compares Equal.
func (c *Cache) intern(ct *CT) *CT {
	key := digest(ct)
	if existing, ok := c.interned[key]; ok {
		return existing
	}
	c.interned[key] = ct
	return ct
}

// digest computes a structural key over everything CT.Equal compares, so
// two CTs that would compare Equal always produce the same digest. Name
// fields are deliberately excluded.
func digest(t *CT) string {
	if t == nil {
		return "_"
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d:%d:%d:%d:(", t.kind, t.layout.Size, t.layout.Align, t.extent)
	sb.WriteString(digest(t.base))
	sb.WriteString(")[")
	for _, f := range t.fields {
		sb.WriteString(digest(f.T))
		sb.WriteByte(',')
	}
	sb.WriteString("]<")
	sb.WriteString(digest(t.args))
	sb.WriteByte(',')
	sb.WriteString(digest(t.rets))
	sb.WriteString(">{")
	for _, e := range t.effects {
		sb.WriteString(digest(e))
		sb.WriteByte(',')
	}
	sb.WriteString("}e[")
	for _, en := range t.enums {
		fmt.Fprintf(&sb, "%s=%d,", en.Name, en.Value)
	}
	sb.WriteByte(']')
	return sb.String()
}
