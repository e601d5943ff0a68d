package irpass

import "github.com/alumina-lang/aluminac/internal/ir"

// ElisionPlan records which parameters and return values of which
// functions carry no runtime representation (spec.md §4.3/§4.4:
// "functions that return or take zero-sized values have those values
// elided ... rather than lowered to C"). It does not mutate the IR —
// the function's Params/ReturnType stay intact so later passes and
// diagnostics keep seeing the full signature — it is consulted by
// internal/cemit when printing a C declaration or call so it can omit
// the elided parameter/argument text while still sequencing any
// side-effecting argument expression before the call.
type ElisionPlan struct {
	zeroSizedParams map[ir.ID]map[int]bool
	zeroSizedReturn map[ir.ID]bool
}

// ComputeElisionPlan walks every function-shaped item and records which
// of its parameters, and whether its return value, are zero-sized
// according to lookup (normally internal/mono.Monomorphizer.ItemByID).
func ComputeElisionPlan(items []ir.Item, lookup func(ir.ID) ir.ItemShape) *ElisionPlan {
	plan := &ElisionPlan{
		zeroSizedParams: map[ir.ID]map[int]bool{},
		zeroSizedReturn: map[ir.ID]bool{},
	}
	for _, it := range items {
		switch v := it.(type) {
		case *ir.FunctionItem:
			plan.recordFunction(v.ItemID(), paramTypes(v.Params), v.ReturnType, lookup)
		case *ir.IntrinsicItem:
			plan.recordFunction(v.ItemID(), paramTypes(v.Params), v.ReturnType, lookup)
		}
	}
	return plan
}

func paramTypes(params []ir.Param) []ir.Type {
	out := make([]ir.Type, len(params))
	for i, p := range params {
		out[i] = p.Ty
	}
	return out
}

func (plan *ElisionPlan) recordFunction(id ir.ID, params []ir.Type, ret ir.Type, lookup func(ir.ID) ir.ItemShape) {
	elided := map[int]bool{}
	for i, ty := range params {
		if ty != nil && ir.IsZeroSized(ty, lookup) {
			elided[i] = true
		}
	}
	if len(elided) > 0 {
		plan.zeroSizedParams[id] = elided
	}
	if ret != nil && ir.IsZeroSized(ret, lookup) {
		plan.zeroSizedReturn[id] = true
	}
}

// ParamIsElided reports whether parameter index of function fn carries
// no runtime representation and should be omitted from emitted C text.
func (plan *ElisionPlan) ParamIsElided(fn ir.ID, index int) bool {
	return plan.zeroSizedParams[fn] != nil && plan.zeroSizedParams[fn][index]
}

// ReturnIsElided reports whether fn's return value is zero-sized.
func (plan *ElisionPlan) ReturnIsElided(fn ir.ID) bool {
	return plan.zeroSizedReturn[fn]
}
