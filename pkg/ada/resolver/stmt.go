package resolver

import (
	"github.com/adalore/adac/pkg/ada/ast"
	"github.com/adalore/adac/pkg/ada/core"
	"github.com/adalore/adac/pkg/ada/symtab"
)

// ResolveStatement resolves one statement and, recursively, every
// expression and nested statement it contains.
func (c *Context) ResolveStatement(node core.NodeID) {
	n := c.Tree.Get(node)

	switch p := n.Payload.(type) {
	case ast.Assignment:
		targetTy := c.ResolveExpression(p.Target, core.NoType)
		c.ResolveExpression(p.Value, targetTy)
	case ast.IfStatement:
		c.resolveIfStatement(p)
	case ast.LoopStatement:
		c.resolveLoopStatement(node, p)
	case ast.CaseStatement:
		c.resolveCaseStatement(p)
	case ast.BlockStatement:
		c.resolveBlockStatement(p)
	case ast.CallStatement:
		c.ResolveExpression(p.Call, core.NoType)
	case ast.ReturnStatement:
		if p.Value.Valid() {
			c.ResolveExpression(p.Value, core.NoType)
		}
	case ast.ExitStatement:
		if p.Condition.Valid() {
			c.ResolveExpression(p.Condition, c.Std.Boolean)
		}
	case ast.RaiseStatement:
		if p.Exception.Valid() {
			c.ResolveExpression(p.Exception, core.NoType)
		}
	default:
		// A null statement, and any other statement kind with no
		// sub-expressions or nested statements of its own, needs no
		// resolution work.
	}
}

func (c *Context) resolveIfStatement(p ast.IfStatement) {
	for _, arm := range p.Arms {
		c.ResolveExpression(arm.Cond, c.Std.Boolean)

		for _, s := range arm.Body {
			c.ResolveStatement(s)
		}
	}

	for _, s := range p.Else {
		c.ResolveStatement(s)
	}
}

func (c *Context) resolveLoopStatement(node core.NodeID, p ast.LoopStatement) {
	switch {
	case p.IsForIn:
		c.Syms.Push(core.NoSymbol)

		elemTy := c.ResolveExpression(p.Scheme, core.NoType)

		sym := c.Syms.NewSymbol(symtab.Variable, p.ParamName)
		sym.Type = elemTy
		c.Syms.Declare(sym)
		c.DeclSymbols[node] = []core.SymbolID{sym.ID}

		for _, s := range p.Body {
			c.ResolveStatement(s)
		}

		c.Syms.Pop()
	case p.IsWhile:
		c.ResolveExpression(p.Scheme, c.Std.Boolean)

		for _, s := range p.Body {
			c.ResolveStatement(s)
		}
	default:
		for _, s := range p.Body {
			c.ResolveStatement(s)
		}
	}
}

func (c *Context) resolveCaseStatement(p ast.CaseStatement) {
	selTy := c.ResolveExpression(p.Selector, core.NoType)

	for _, arm := range p.Arms {
		for _, v := range arm.Values {
			c.ResolveExpression(v, selTy)
		}

		for _, s := range arm.Body {
			c.ResolveStatement(s)
		}
	}
}

func (c *Context) resolveBlockStatement(p ast.BlockStatement) {
	c.Syms.Push(core.NoSymbol)

	c.resolveDeclarations(p.Declarations)

	for _, s := range p.Body {
		c.ResolveStatement(s)
	}

	for _, h := range p.Handlers {
		c.resolveExceptionHandler(h)
	}

	c.Syms.Pop()
}

func (c *Context) resolveExceptionHandler(h ast.ExceptionHandler) {
	for _, exc := range h.Exceptions {
		c.ResolveExpression(exc, core.NoType)
	}

	for _, s := range h.Body {
		c.ResolveStatement(s)
	}
}
