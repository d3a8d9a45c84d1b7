// Package ast defines the syntax tree the parser (out of scope for this
// module) is assumed to produce, and that the resolver annotates in place
// with resolved types and symbols.
package ast

// Kind is the closed set of syntax node kinds.  Every node's Payload field
// holds a value of the Go type documented against its Kind; a type switch
// on Payload recovers that type.
type Kind uint8

const (
	KindUnknown Kind = iota

	// Literals.
	KindIntegerLiteral
	KindRealLiteral
	KindStringLiteral
	KindCharacterLiteral

	// Expressions.
	KindIdentifier
	KindSelectedComponent
	KindBinaryOp
	KindUnaryOp
	KindApply // prefix(args): call, index, conversion, or slice.
	KindAttribute
	KindAggregate
	KindQualifiedExpr
	KindRangeExpr

	// Type definitions.
	KindSubtypeIndication
	KindRangeConstraint
	KindArrayTypeDef
	KindRecordTypeDef
	KindVariantPart
	KindAccessTypeDef
	KindEnumTypeDef
	KindDerivedTypeDef
	KindFixedTypeDef
	KindFloatTypeDef

	// Statements.
	KindAssignment
	KindIfStatement
	KindLoopStatement
	KindCaseStatement
	KindBlockStatement
	KindCallStatement
	KindReturnStatement
	KindExitStatement
	KindRaiseStatement
	KindNullStatement

	// Declarations.
	KindObjectDecl
	KindNumberDecl
	KindTypeDecl
	KindSubtypeDecl
	KindSubprogramSpec
	KindSubprogramBody
	KindPackageSpec
	KindPackageBody
	KindExceptionDecl
	KindParameterSpec

	// Generic formals.
	KindGenericFormalType
	KindGenericFormalObject

	// Context clauses and compilation unit.
	KindWithClause
	KindUseClause
	KindCompilationUnit

	// Generic units.
	KindGenericDecl
	KindGenericInstantiation
)

func (k Kind) String() string {
	names := [...]string{
		"unknown", "integer_literal", "real_literal", "string_literal",
		"character_literal", "identifier", "selected_component", "binary_op",
		"unary_op", "apply", "attribute", "aggregate", "qualified_expr",
		"range_expr", "subtype_indication", "range_constraint", "array_type_def",
		"record_type_def", "variant_part", "access_type_def", "enum_type_def",
		"derived_type_def", "fixed_type_def", "float_type_def", "assignment",
		"if_statement", "loop_statement", "case_statement", "block_statement",
		"call_statement", "return_statement", "exit_statement", "raise_statement",
		"null_statement", "object_decl", "number_decl", "type_decl",
		"subtype_decl", "subprogram_spec", "subprogram_body", "package_spec",
		"package_body", "exception_decl", "parameter_spec", "generic_formal_type",
		"generic_formal_object", "with_clause", "use_clause", "compilation_unit",
		"generic_decl", "generic_instantiation",
	}

	if int(k) < len(names) {
		return names[k]
	}

	return "???"
}

// IsExpression reports whether this kind produces a value and is annotated
// with a resolved type by the resolver.
func (k Kind) IsExpression() bool {
	switch k {
	case KindIntegerLiteral, KindRealLiteral, KindStringLiteral, KindCharacterLiteral,
		KindIdentifier, KindSelectedComponent, KindBinaryOp, KindUnaryOp, KindApply,
		KindAttribute, KindAggregate, KindQualifiedExpr, KindRangeExpr:
		return true
	default:
		return false
	}
}
