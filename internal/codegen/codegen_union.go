package codegen

import (
	"math/big"

	"github.com/biron-lang/bironc/internal/backend"
	"github.com/biron-lang/bironc/internal/types"
)

// Union backend layout, fixed by backendUnionType: field 0 is the
// [payload-bytes]u8 storage, field 1 is the u8 tag, optional field 2 is
// trailing padding (spec.md §3.4's "[size-of-largest-variant]u8 followed
// by a u8 tag followed by trailing padding").
const (
	unionPayloadField = 0
	unionTagField     = 1
)

func (cg *CG) unionStructType(ct *types.CT) backend.Type {
	return cg.backendType(ct)
}

func (cg *CG) gepField(base backend.Value, structT backend.Type, index int, name string) backend.Value {
	zero := cg.Mod.ConstInt(cg.Mod.IntType(32), big.NewInt(0))
	idx := cg.Mod.ConstInt(cg.Mod.IntType(32), big.NewInt(int64(index)))
	return cg.Mod.BuildGEP(structT, base, []backend.Value{zero, idx}, name)
}

// loadUnionTag reads the discriminant byte out of a union's storage.
func (cg *CG) loadUnionTag(addr Addr) backend.Value {
	structT := cg.unionStructType(addr.T)
	tagPtr := cg.gepField(addr.Ptr, structT, unionTagField, cg.name("union.tag"))
	return cg.Mod.BuildLoad(cg.Mod.IntType(8), tagPtr, cg.name("tag"))
}

// storeUnionVariant stores value (of CT variantT) into dst's payload
// region and writes the matching tag, selecting the variant whose CT
// equals variantT (spec.md §4.5.2 "Assign": "when the LHS is a union,
// try to select the variant whose CT equals the RHS's CT").
func (cg *CG) storeUnionVariant(dst Addr, variantT *types.CT, value backend.Value) bool {
	idx, ok := unionVariantIndex(dst.T, variantT)
	if !ok {
		return false
	}
	structT := cg.unionStructType(dst.T)
	payloadPtr := cg.gepField(dst.Ptr, structT, unionPayloadField, cg.name("union.payload"))
	variantPtr := cg.Mod.BuildCast(backend.CastBitCast, payloadPtr, cg.Mod.PointerType(), cg.name("union.variant"))
	cg.Mod.BuildStore(value, variantPtr)
	tagPtr := cg.gepField(dst.Ptr, structT, unionTagField, cg.name("union.tag"))
	cg.Mod.BuildStore(cg.Mod.ConstInt(cg.Mod.IntType(8), big.NewInt(int64(idx))), tagPtr)
	return true
}
