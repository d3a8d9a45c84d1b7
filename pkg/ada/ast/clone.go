package ast

import "github.com/adalore/adac/pkg/ada/core"

// Instantiate deep-copies the subtree rooted at id, replacing every
// identifier whose name appears in subst with a fresh copy of the mapped
// node. This is the macro-style expansion step of a generic instantiation:
// the template's body is copied once per instance, with each formal name
// rewritten to its actual, and the copy then resolves like any ordinary
// declaration. The copy carries no resolved annotations of its own.
func (t *Tree) Instantiate(id core.NodeID, subst map[string]core.NodeID) core.NodeID {
	if !id.Valid() {
		return core.NoNode
	}

	n := t.Get(id)

	if ident, ok := n.Payload.(Identifier); ok {
		if actual, bound := subst[ident.Name]; bound {
			return t.Instantiate(actual, nil)
		}
	}

	return t.Add(n.Kind, n.Span, t.clonePayload(n.Payload, subst))
}

func (t *Tree) cloneEach(ids []core.NodeID, subst map[string]core.NodeID) []core.NodeID {
	if ids == nil {
		return nil
	}

	out := make([]core.NodeID, len(ids))
	for i, id := range ids {
		out[i] = t.Instantiate(id, subst)
	}

	return out
}

func (t *Tree) cloneComponents(decls []ComponentDecl, subst map[string]core.NodeID) []ComponentDecl {
	out := make([]ComponentDecl, len(decls))

	for i, d := range decls {
		out[i] = ComponentDecl{Names: append([]string(nil), d.Names...), Type: t.Instantiate(d.Type, subst)}
	}

	return out
}

func (t *Tree) cloneHandlers(hs []ExceptionHandler, subst map[string]core.NodeID) []ExceptionHandler {
	if hs == nil {
		return nil
	}

	out := make([]ExceptionHandler, len(hs))

	for i, h := range hs {
		out[i] = ExceptionHandler{
			Exceptions: t.cloneEach(h.Exceptions, subst),
			Others:     h.Others,
			Body:       t.cloneEach(h.Body, subst),
		}
	}

	return out
}

func (t *Tree) clonePayload(payload any, subst map[string]core.NodeID) any {
	switch p := payload.(type) {
	case SelectedComponent:
		return SelectedComponent{Prefix: t.Instantiate(p.Prefix, subst), Selector: p.Selector}
	case BinaryOp:
		return BinaryOp{Op: p.Op, Left: t.Instantiate(p.Left, subst), Right: t.Instantiate(p.Right, subst)}
	case UnaryOp:
		return UnaryOp{Op: p.Op, Operand: t.Instantiate(p.Operand, subst)}
	case Apply:
		return Apply{Prefix: t.Instantiate(p.Prefix, subst), Args: t.cloneEach(p.Args, subst)}
	case Attribute:
		return Attribute{Prefix: t.Instantiate(p.Prefix, subst), Name: p.Name, Args: t.cloneEach(p.Args, subst)}
	case Aggregate:
		assocs := make([]AggregateAssoc, len(p.Assocs))
		for i, a := range p.Assocs {
			assocs[i] = AggregateAssoc{Choices: t.cloneEach(a.Choices, subst), Value: t.Instantiate(a.Value, subst)}
		}

		return Aggregate{Assocs: assocs}
	case QualifiedExpr:
		return QualifiedExpr{TypeMark: t.Instantiate(p.TypeMark, subst), Expr: t.Instantiate(p.Expr, subst)}
	case RangeExpr:
		return RangeExpr{Low: t.Instantiate(p.Low, subst), High: t.Instantiate(p.High, subst)}
	case SubtypeIndication:
		return SubtypeIndication{Mark: t.Instantiate(p.Mark, subst), Constraint: t.Instantiate(p.Constraint, subst)}
	case ArrayTypeDef:
		return ArrayTypeDef{
			IndexSubtypes: t.cloneEach(p.IndexSubtypes, subst),
			Unconstrained: p.Unconstrained,
			Element:       t.Instantiate(p.Element, subst),
		}
	case RecordTypeDef:
		variants := make([]VariantChoice, len(p.Variants))
		for i, v := range p.Variants {
			variants[i] = VariantChoice{
				Values: t.cloneEach(v.Values, subst),
				Others: v.Others,
				Parts:  t.cloneComponents(v.Parts, subst),
			}
		}

		return RecordTypeDef{
			Discriminants: t.cloneComponents(p.Discriminants, subst),
			Components:    t.cloneComponents(p.Components, subst),
			VariantOn:     p.VariantOn,
			Variants:      variants,
		}
	case AccessTypeDef:
		return AccessTypeDef{Designated: t.Instantiate(p.Designated, subst), Constant: p.Constant}
	case DerivedTypeDef:
		return DerivedTypeDef{Parent: t.Instantiate(p.Parent, subst)}
	case FixedTypeDef:
		return FixedTypeDef{Delta: t.Instantiate(p.Delta, subst), Range: t.Instantiate(p.Range, subst)}
	case FloatTypeDef:
		return FloatTypeDef{Digits: t.Instantiate(p.Digits, subst), Range: t.Instantiate(p.Range, subst)}
	case Assignment:
		return Assignment{Target: t.Instantiate(p.Target, subst), Value: t.Instantiate(p.Value, subst)}
	case IfStatement:
		arms := make([]IfArm, len(p.Arms))
		for i, a := range p.Arms {
			arms[i] = IfArm{Cond: t.Instantiate(a.Cond, subst), Body: t.cloneEach(a.Body, subst)}
		}

		return IfStatement{Arms: arms, Else: t.cloneEach(p.Else, subst)}
	case LoopStatement:
		return LoopStatement{
			Label:     p.Label,
			Scheme:    t.Instantiate(p.Scheme, subst),
			IsForIn:   p.IsForIn,
			IsWhile:   p.IsWhile,
			ParamName: p.ParamName,
			Body:      t.cloneEach(p.Body, subst),
		}
	case CaseStatement:
		arms := make([]CaseArm, len(p.Arms))
		for i, a := range p.Arms {
			arms[i] = CaseArm{Values: t.cloneEach(a.Values, subst), Others: a.Others, Body: t.cloneEach(a.Body, subst)}
		}

		return CaseStatement{Selector: t.Instantiate(p.Selector, subst), Arms: arms}
	case BlockStatement:
		return BlockStatement{
			Label:        p.Label,
			Declarations: t.cloneEach(p.Declarations, subst),
			Body:         t.cloneEach(p.Body, subst),
			Handlers:     t.cloneHandlers(p.Handlers, subst),
		}
	case CallStatement:
		return CallStatement{Call: t.Instantiate(p.Call, subst)}
	case ReturnStatement:
		return ReturnStatement{Value: t.Instantiate(p.Value, subst)}
	case ExitStatement:
		return ExitStatement{Label: p.Label, Condition: t.Instantiate(p.Condition, subst)}
	case RaiseStatement:
		return RaiseStatement{Exception: t.Instantiate(p.Exception, subst)}
	case ObjectDecl:
		return ObjectDecl{
			Names:    append([]string(nil), p.Names...),
			Constant: p.Constant,
			Type:     t.Instantiate(p.Type, subst),
			Init:     t.Instantiate(p.Init, subst),
		}
	case NumberDecl:
		return NumberDecl{Names: append([]string(nil), p.Names...), Value: t.Instantiate(p.Value, subst)}
	case TypeDecl:
		return TypeDecl{Name: p.Name, Definition: t.Instantiate(p.Definition, subst)}
	case SubtypeDecl:
		return SubtypeDecl{Name: p.Name, Indication: t.Instantiate(p.Indication, subst)}
	case SubprogramSpec:
		params := make([]ParameterSpec, len(p.Params))
		for i, param := range p.Params {
			params[i] = ParameterSpec{
				Names:   append([]string(nil), param.Names...),
				Mode:    param.Mode,
				Type:    t.Instantiate(param.Type, subst),
				Default: t.Instantiate(param.Default, subst),
			}
		}

		return SubprogramSpec{Name: p.Name, IsFunction: p.IsFunction, Params: params, Result: t.Instantiate(p.Result, subst)}
	case SubprogramBody:
		return SubprogramBody{
			Spec:         t.Instantiate(p.Spec, subst),
			Declarations: t.cloneEach(p.Declarations, subst),
			Body:         t.cloneEach(p.Body, subst),
			Handlers:     t.cloneHandlers(p.Handlers, subst),
		}
	case PackageSpec:
		return PackageSpec{
			Name:      p.Name,
			Visible:   t.cloneEach(p.Visible, subst),
			Private:   t.cloneEach(p.Private, subst),
			IsPure:    p.IsPure,
			IsPreelab: p.IsPreelab,
		}
	case PackageBody:
		return PackageBody{
			Name:         p.Name,
			Declarations: t.cloneEach(p.Declarations, subst),
			Body:         t.cloneEach(p.Body, subst),
		}
	case ExceptionDecl:
		return ExceptionDecl{Names: append([]string(nil), p.Names...)}
	default:
		// Leaf payloads (literals, identifiers not being substituted,
		// generic formals, context clauses) carry no node references.
		return payload
	}
}
