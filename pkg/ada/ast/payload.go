package ast

import (
	"math/big"

	"github.com/adalore/adac/pkg/ada/core"
)

// --- Literals ---------------------------------------------------------

// IntegerLiteral is the payload of KindIntegerLiteral.
type IntegerLiteral struct {
	Value *big.Int
}

// RealLiteral is the payload of KindRealLiteral.
type RealLiteral struct {
	Value float64
}

// StringLiteral is the payload of KindStringLiteral.
type StringLiteral struct {
	Value string
}

// CharacterLiteral is the payload of KindCharacterLiteral.
type CharacterLiteral struct {
	Value rune
}

// --- Expressions --------------------------------------------------------

// Identifier is the payload of KindIdentifier: a simple name reference,
// resolved against the symbol table.
type Identifier struct {
	Name string
}

// SelectedComponent is the payload of KindSelectedComponent:
// Prefix.Selector (e.g. a package-qualified name, or a record field
// access once resolved).
type SelectedComponent struct {
	Prefix   core.NodeID
	Selector string
}

// BinaryOp is the payload of KindBinaryOp.  Op is the operator symbol
// ("+", "-", "=", "and", ...), resolved identically to a function call
// against the operator's overloads.
type BinaryOp struct {
	Op          string
	Left, Right core.NodeID
}

// UnaryOp is the payload of KindUnaryOp.
type UnaryOp struct {
	Op      string
	Operand core.NodeID
}

// Apply is the payload of KindApply: prefix(args).  Its final
// interpretation — call, index, conversion, or slice — is decided by the
// resolver from the prefix's resolved symbol/type, not from the node's own
// shape; ApplyForm records that decision once made.
type Apply struct {
	Prefix core.NodeID
	Args   []core.NodeID
	Form   ApplyForm
}

// ApplyForm classifies how an Apply node was ultimately interpreted.
type ApplyForm uint8

const (
	ApplyUnresolved ApplyForm = iota
	ApplyCall
	ApplyIndex
	ApplyConversion
	ApplySlice
)

// Attribute is the payload of KindAttribute: Prefix'Name(Args).
type Attribute struct {
	Prefix core.NodeID
	Name   string
	Args   []core.NodeID
}

// AggregateAssoc is one component association within an aggregate: either
// positional (Choices empty) or named.
type AggregateAssoc struct {
	Choices []core.NodeID // empty for a positional association.
	Value   core.NodeID
}

// Aggregate is the payload of KindAggregate.
type Aggregate struct {
	Assocs []AggregateAssoc
}

// QualifiedExpr is the payload of KindQualifiedExpr: Mark'(Expr).
type QualifiedExpr struct {
	TypeMark core.NodeID
	Expr     core.NodeID
}

// RangeExpr is the payload of KindRangeExpr: Low .. High.
type RangeExpr struct {
	Low, High core.NodeID
}

// --- Type definitions -----------------------------------------------------

// SubtypeIndication is the payload of KindSubtypeIndication: a type mark
// plus an optional constraint.
type SubtypeIndication struct {
	Mark       core.NodeID
	Constraint core.NodeID // core.NoNode if unconstrained.
}

// ArrayTypeDef is the payload of KindArrayTypeDef.
type ArrayTypeDef struct {
	IndexSubtypes []core.NodeID
	Unconstrained bool // true for "array (T range <>) of ..." index forms.
	Element       core.NodeID
}

// ComponentDecl is one record component declaration.
type ComponentDecl struct {
	Names []string
	Type  core.NodeID
}

// VariantChoice is one "when ... =>" arm of a variant part.
type VariantChoice struct {
	Values []core.NodeID // empty + Others == true for "when others".
	Others bool
	Parts  []ComponentDecl
}

// RecordTypeDef is the payload of KindRecordTypeDef.
type RecordTypeDef struct {
	Discriminants []ComponentDecl
	Components    []ComponentDecl
	VariantOn     string // discriminant name selecting the variant, "" if none.
	Variants      []VariantChoice
}

// AccessTypeDef is the payload of KindAccessTypeDef.
type AccessTypeDef struct {
	Designated core.NodeID
	Constant   bool
}

// EnumTypeDef is the payload of KindEnumTypeDef.
type EnumTypeDef struct {
	Literals []string
}

// DerivedTypeDef is the payload of KindDerivedTypeDef: "is new Parent".
type DerivedTypeDef struct {
	Parent core.NodeID
}

// FixedTypeDef is the payload of KindFixedTypeDef.
type FixedTypeDef struct {
	Delta core.NodeID
	Range core.NodeID // core.NoNode if unconstrained.
}

// FloatTypeDef is the payload of KindFloatTypeDef.
type FloatTypeDef struct {
	Digits core.NodeID
	Range  core.NodeID
}

// --- Statements -----------------------------------------------------------

// Assignment is the payload of KindAssignment.
type Assignment struct {
	Target, Value core.NodeID
}

// IfArm is one "elsif"/initial branch of an if statement.
type IfArm struct {
	Cond core.NodeID
	Body []core.NodeID
}

// IfStatement is the payload of KindIfStatement.
type IfStatement struct {
	Arms [] IfArm
	Else []core.NodeID // nil if no else part.
}

// LoopStatement is the payload of KindLoopStatement.
type LoopStatement struct {
	Label string
	// Scheme is core.NoNode for a bare loop, a RangeExpr-bearing node for "for
	// I in Range loop", or a condition node for "while Cond loop".
	Scheme   core.NodeID
	IsForIn  bool
	IsWhile  bool
	ParamName string
	Body     []core.NodeID
}

// CaseArm is one "when ... =>" arm of a case statement.
type CaseArm struct {
	Values []core.NodeID
	Others bool
	Body   []core.NodeID
}

// CaseStatement is the payload of KindCaseStatement.
type CaseStatement struct {
	Selector core.NodeID
	Arms     []CaseArm
}

// BlockStatement is the payload of KindBlockStatement.
type BlockStatement struct {
	Label        string
	Declarations []core.NodeID
	Body         []core.NodeID
	Handlers     []ExceptionHandler
}

// ExceptionHandler is one "when E1 | E2 | others => statements" arm.
type ExceptionHandler struct {
	Exceptions []core.NodeID
	Others     bool
	Body       []core.NodeID
}

// CallStatement is the payload of KindCallStatement: a procedure call used
// as a statement.
type CallStatement struct {
	Call core.NodeID // an Apply node.
}

// ReturnStatement is the payload of KindReturnStatement.
type ReturnStatement struct {
	Value core.NodeID // core.NoNode for a procedure return.
}

// ExitStatement is the payload of KindExitStatement.
type ExitStatement struct {
	Label     string
	Condition core.NodeID // core.NoNode for an unconditional exit.
}

// RaiseStatement is the payload of KindRaiseStatement.
type RaiseStatement struct {
	Exception core.NodeID // core.NoNode for a bare "raise;" re-raise.
}

// --- Declarations -----------------------------------------------------------

// ObjectDecl is the payload of KindObjectDecl.
type ObjectDecl struct {
	Names    []string
	Constant bool
	Type     core.NodeID
	Init     core.NodeID // core.NoNode if no initializer.
}

// NumberDecl is the payload of KindNumberDecl: a named number.
type NumberDecl struct {
	Names []string
	Value core.NodeID
}

// TypeDecl is the payload of KindTypeDecl.
type TypeDecl struct {
	Name       string
	Definition core.NodeID
}

// SubtypeDecl is the payload of KindSubtypeDecl.
type SubtypeDecl struct {
	Name       string
	Indication core.NodeID
}

// ParameterSpec is the payload of KindParameterSpec.
type ParameterSpec struct {
	Names   []string
	Mode    ParamMode
	Type    core.NodeID
	Default core.NodeID
}

// ParamMode mirrors symtab.Mode without importing symtab, to keep the
// syntax tree independent of the symbol table package.
type ParamMode uint8

const (
	ModeIn ParamMode = iota
	ModeOut
	ModeInOut
)

// SubprogramSpec is the payload of KindSubprogramSpec.
type SubprogramSpec struct {
	Name       string
	IsFunction bool
	Params     []ParameterSpec
	Result     core.NodeID // core.NoNode for a procedure.
}

// SubprogramBody is the payload of KindSubprogramBody.
type SubprogramBody struct {
	Spec         core.NodeID
	Declarations []core.NodeID
	Body         []core.NodeID
	Handlers     []ExceptionHandler
}

// PackageSpec is the payload of KindPackageSpec.
type PackageSpec struct {
	Name        string
	Visible     []core.NodeID
	Private     []core.NodeID
	IsPure      bool
	IsPreelab   bool
}

// PackageBody is the payload of KindPackageBody.
type PackageBody struct {
	Name         string
	Declarations []core.NodeID
	Body         []core.NodeID
}

// ExceptionDecl is the payload of KindExceptionDecl.
type ExceptionDecl struct {
	Names []string
}

// --- Generic formals, context clauses, compilation unit --------------------

// GenericFormalType is the payload of KindGenericFormalType.
type GenericFormalType struct {
	Name string
}

// GenericFormalObject is the payload of KindGenericFormalObject.
type GenericFormalObject struct {
	Name string
	Type core.NodeID
}

// GenericDecl is the payload of KindGenericDecl: a generic unit template,
// carrying its formal part and the package spec or subprogram it
// parameterizes. The template itself produces no code; each instantiation
// expands a substituted copy of Item.
type GenericDecl struct {
	Formals []core.NodeID // GenericFormalType / GenericFormalObject nodes.
	Item    core.NodeID   // PackageSpec, SubprogramSpec, or SubprogramBody node.
}

// GenericInstantiation is the payload of KindGenericInstantiation:
// "package Name is new GenericName (Actuals)" (or the procedure/function
// forms). Actuals are positional, matching the template's formal part.
type GenericInstantiation struct {
	Name        string
	GenericName core.NodeID
	Actuals     []core.NodeID
}

// WithClause is the payload of KindWithClause.
type WithClause struct {
	Units []string
}

// UseClause is the payload of KindUseClause.
type UseClause struct {
	Units []string
}

// ElaborationPragma is a recognized context-clause pragma affecting
// elaboration order: Elaborate(U), Elaborate_All(U), Preelaborate, or Pure.
type ElaborationPragma struct {
	Kind ElaborationPragmaKind
	Unit string // empty for Preelaborate/Pure, which name no unit.
}

// ElaborationPragmaKind discriminates the four elaboration-affecting
// pragmas recognized on a context clause.
type ElaborationPragmaKind uint8

const (
	PragmaElaborate ElaborationPragmaKind = iota
	PragmaElaborateAll
	PragmaPreelaborate
	PragmaPure
)

// CompilationUnit is the payload of KindCompilationUnit.
type CompilationUnit struct {
	UnitName string
	WithList []core.NodeID
	UseList  []core.NodeID
	Pragmas  []ElaborationPragma
	// Body is the library item itself: a PackageSpec, PackageBody,
	// SubprogramSpec, or SubprogramBody node.
	Body core.NodeID
	// IsBody distinguishes a unit's spec from its body, since both a
	// package/subprogram spec and its body are separate compilation
	// units in the elaboration graph.
	IsBody bool
}
