package mono

import (
	"github.com/alumina-lang/aluminac/internal/ast"
	"github.com/alumina-lang/aluminac/internal/ir"
)

// intrinsicKinds maps the closed intrinsic-name set internal/itemmaker
// validated against (its knownIntrinsics) to the IR's more precise
// IntrinsicKind the C emitter switches on.
var intrinsicKinds = map[string]ir.IntrinsicKind{
	"size_of":        ir.IntrinsicSizeOf,
	"align_of":       ir.IntrinsicAlignOf,
	"type_id":        ir.IntrinsicConstExpr,
	"mem_copy":       ir.IntrinsicCFunction,
	"mem_move":       ir.IntrinsicCFunction,
	"mem_set":        ir.IntrinsicCFunction,
	"volatile_read":  ir.IntrinsicCFunction,
	"volatile_write": ir.IntrinsicCFunction,
	"unreachable":    ir.IntrinsicDanglingPointer,
	"breakpoint":     ir.IntrinsicAsm,
	"trap":           ir.IntrinsicAsm,
}

func (m *Monomorphizer) buildFunction(v *ast.FunctionItem, args []ast.Type, id ir.ID) ir.Item {
	s := subst{}
	bindSubst(v.Placeholders, args, s)
	l := m.newLctx(s)

	params := make([]ir.Param, len(v.Params))
	for i, p := range v.Params {
		ty := m.lowerType(p.Ty, l)
		l.locals[p.ID] = ty
		params[i] = ir.Param{Name: p.Name, ID: p.ID, Ty: ty}
	}
	ret := m.lowerType(v.ReturnType, l)

	var body ir.Expr
	if v.Body != nil {
		body = m.lowerExpr(v.Body, l)
	}

	fn := &ir.FunctionItem{
		Name:         v.Name,
		Params:       params,
		VarArgs:      v.VarArgs,
		ReturnType:   ret,
		Body:         body,
		Extern:       v.Extern,
		ABI:          v.ABI,
		IsMain:       v.IsMain,
		IsTestMain:   v.IsTestMain,
		AlwaysInline: v.AlwaysInline,
		NeverInline:  v.NeverInline,
		Cold:         v.Cold,
		NoReturn:     v.NoReturn,
		Exported:     v.Exported,
		LinkName:     v.LinkName,
	}
	fn.SetID(id)
	fn.SetSpan(v.Position())
	return fn
}

func (m *Monomorphizer) buildIntrinsic(v *ast.IntrinsicItem, args []ast.Type, id ir.ID) ir.Item {
	s := subst{}
	bindSubst(v.Placeholders, args, s)
	l := m.newLctx(s)

	params := make([]ir.Param, len(v.Params))
	for i, p := range v.Params {
		ty := m.lowerType(p.Ty, l)
		l.locals[p.ID] = ty
		params[i] = ir.Param{Name: p.Name, ID: p.ID, Ty: ty}
	}
	ret := m.lowerType(v.ReturnType, l)

	kind, ok := intrinsicKinds[v.IntrinsicName]
	if !ok {
		kind = ir.IntrinsicCFunction
	}

	var typeArg ir.Type
	if len(v.Placeholders) > 0 {
		if t, ok := s[v.Placeholders[0].ID]; ok {
			typeArg = m.lowerType(t, l)
		}
	}

	item := &ir.IntrinsicItem{
		Name:          v.Name,
		IntrinsicName: v.IntrinsicName,
		Kind:          kind,
		Params:        params,
		ReturnType:    ret,
		TypeArg:       typeArg,
	}
	item.SetID(id)
	item.SetSpan(v.Position())
	return item
}

func (m *Monomorphizer) buildStruct(v *ast.StructLikeItem, args []ast.Type, id ir.ID) ir.Item {
	s := subst{}
	bindSubst(v.Placeholders, args, s)
	l := m.newLctx(s)

	fields := make([]ir.Field, len(v.Fields))
	for i, f := range v.Fields {
		fields[i] = ir.Field{Name: f.Name, Ty: m.lowerType(f.Ty, l)}
	}

	item := &ir.StructItem{Name: v.Name, Fields: fields}
	item.SetID(id)
	item.SetSpan(v.Position())
	return item
}

func (m *Monomorphizer) buildEnum(v *ast.EnumItem, args []ast.Type, id ir.ID) ir.Item {
	s := subst{}
	bindSubst(v.Placeholders, args, s)
	l := m.newLctx(s)

	variants := make([]ir.EnumVariant, len(v.Variants))
	for i, ev := range v.Variants {
		var ty ir.Type
		if ev.Ty != nil {
			ty = m.lowerType(ev.Ty, l)
		}
		var value int64
		if ev.Value != nil {
			// Explicit discriminants are folded with the same integer-literal
			// evaluator array lengths use; both only need to recognize a
			// plain int literal at this stage.
			if n, ok := constEvalArrayLen(ev.Value); ok {
				value = int64(n)
			}
		}
		variants[i] = ir.EnumVariant{Name: ev.Name, Ty: ty, Value: value}
	}

	var underlying ir.Type
	if v.UnderlyingType != nil {
		underlying = m.lowerType(v.UnderlyingType, l)
	}

	item := &ir.EnumItem{Name: v.Name, Variants: variants, UnderlyingType: underlying}
	item.SetID(id)
	item.SetSpan(v.Position())
	return item
}

func (m *Monomorphizer) buildStatic(v *ast.StaticItem, id ir.ID) ir.Item {
	l := m.newLctx(subst{})
	ty := m.lowerType(v.Ty, l)

	var init ir.Expr
	if v.Init != nil {
		init = m.lowerExpr(v.Init, l)
	}

	item := &ir.StaticItem{Name: v.Name, Ty: ty, Init: init, Extern: v.Extern}
	item.SetID(id)
	item.SetSpan(v.Position())
	return item
}

func (m *Monomorphizer) buildConst(v *ast.ConstItem, id ir.ID) ir.Item {
	l := m.newLctx(subst{})
	var ty ir.Type
	if v.Ty != nil {
		ty = m.lowerType(v.Ty, l)
	}
	value := m.lowerExpr(v.Value, l)
	if ty == nil && value != nil {
		ty = value.Ty()
	}

	item := &ir.ConstItem{Name: v.Name, Ty: ty, Value: value}
	item.SetID(id)
	item.SetSpan(v.Position())
	return item
}
