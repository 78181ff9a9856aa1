// Package language is the concrete syntactic grammar for the compiled
// source language (spec §3-4.2): productions over internal/grammar's
// combinators, wired to internal/action's four semantic-action primitives
// and internal/ast's tree kinds. internal/ll1 computes FIRST/FOLLOW and the
// production table from the Grammar this package returns; internal/parser
// drives it.
package language

import (
	"github.com/arboretic/moonc/internal/action"
	"github.com/arboretic/moonc/internal/ast"
	"github.com/arboretic/moonc/internal/grammar"
	"github.com/arboretic/moonc/internal/token"
)

// Non-terminal symbols, grouped by the spec §3/§4.5-4.7 construct they build.
const (
	Program         grammar.Symbol = "Program"
	ProgramItem     grammar.Symbol = "ProgramItem"
	ProgramItemList grammar.Symbol = "ProgramItemList"

	Class           grammar.Symbol = "Class"
	InheritsList    grammar.Symbol = "InheritsList"
	IDList          grammar.Symbol = "IDList"
	IDListTail      grammar.Symbol = "IDListTail"
	ClassMemberList grammar.Symbol = "ClassMemberList"
	ClassMember     grammar.Symbol = "ClassMember"
	Visibility      grammar.Symbol = "Visibility"
	MemberDecl      grammar.Symbol = "MemberDecl"

	Attribute            grammar.Symbol = "Attribute"
	DeclIndiceList       grammar.Symbol = "DeclIndiceList"
	DeclIndiceListInner  grammar.Symbol = "DeclIndiceListInner"
	DeclArraySize        grammar.Symbol = "DeclArraySize"

	ConstructorFunc grammar.Symbol = "ConstructorFunc"
	MemberFunc      grammar.Symbol = "MemberFunc"

	Function         grammar.Symbol = "Function"
	FunctionHead     grammar.Symbol = "FunctionHead"
	FunctionID       grammar.Symbol = "FunctionID"
	FunctionIDTail   grammar.Symbol = "FunctionIDTail"
	ReturnType       grammar.Symbol = "ReturnType"
	Type             grammar.Symbol = "Type"

	ParameterList     grammar.Symbol = "ParameterList"
	ParameterListOpt  grammar.Symbol = "ParameterListOpt"
	ParameterListTail grammar.Symbol = "ParameterListTail"
	Parameter         grammar.Symbol = "Parameter"

	FunctionBody       grammar.Symbol = "FunctionBody"
	LocalVarOrStatList grammar.Symbol = "LocalVarOrStatList"
	LocalVarOrStat     grammar.Symbol = "LocalVarOrStat"
	LocalVarDecl       grammar.Symbol = "LocalVarDecl"
	Statement          grammar.Symbol = "Statement"
	StatementIDTail    grammar.Symbol = "StatementIDTail"

	FunctionCall      grammar.Symbol = "FunctionCall"
	ArgumentList      grammar.Symbol = "ArgumentList"
	ArgumentListOpt   grammar.Symbol = "ArgumentListOpt"
	ArgumentListTail  grammar.Symbol = "ArgumentListTail"

	If        grammar.Symbol = "If"
	IfBlock   grammar.Symbol = "IfBlock"
	ElseBlock grammar.Symbol = "ElseBlock"
	While     grammar.Symbol = "While"
	WhileBlock grammar.Symbol = "WhileBlock"
	Read      grammar.Symbol = "Read"
	Write     grammar.Symbol = "Write"
	Return    grammar.Symbol = "Return"

	Variable           grammar.Symbol = "Variable"
	IndexedVar         grammar.Symbol = "IndexedVar"
	NestedVar          grammar.Symbol = "NestedVar"
	NestedVarListInner grammar.Symbol = "NestedVarListInner"
	IndexExprList      grammar.Symbol = "IndexExprList"
	IndexExprListInner grammar.Symbol = "IndexExprListInner"
	IndexExpr          grammar.Symbol = "IndexExpr"

	Factor        grammar.Symbol = "Factor"
	FactorIDTail  grammar.Symbol = "FactorIDTail"
	Term          grammar.Symbol = "Term"
	RightRecTerm  grammar.Symbol = "RightRecTerm"
	ArithExpr     grammar.Symbol = "ArithExpr"
	RightRecArithExpr grammar.Symbol = "RightRecArithExpr"
	RelOp         grammar.Symbol = "RelOp"
	Expr          grammar.Symbol = "Expr"
	ExprTail      grammar.Symbol = "ExprTail"
)

// Build returns the complete syntactic grammar, with every semantic action
// bound to ids so the productions build real AST nodes as they're parsed.
func Build(ids *ast.IDAllocator) grammar.Grammar {
	leaf := action.CreateLeaf(ids)
	marker := action.CreateMarker(ids)
	fromN := func(kind ast.TreeKind, n int) grammar.Rule {
		return grammar.ActionRule{Name: "from_n:" + kind.String(), Act: action.CreateSubtreeFromN(ids, kind, n)}
	}
	untilMarker := func(kind ast.TreeKind) grammar.Rule {
		return grammar.ActionRule{Name: "until_marker:" + kind.String(), Act: action.CreateSubtreeUntilMarker(ids, kind)}
	}
	leafAction := grammar.ActionRule{Name: "leaf", Act: leaf}
	markerAction := grammar.ActionRule{Name: "marker", Act: marker}

	term := func(c token.Class) grammar.Rule { return grammar.Terminal{Class: c} }
	nt := func(s grammar.Symbol) grammar.Rule { return grammar.NonTerminal{Symbol: s} }

	productions := map[grammar.Symbol]grammar.Rule{
		// --- Program -----------------------------------------------------
		Program: grammar.Sequence{
			markerAction,
			nt(ProgramItemList),
			untilMarker(ast.Program),
		},
		ProgramItemList: grammar.Alternative{
			grammar.Sequence{nt(ProgramItem), nt(ProgramItemList)},
			grammar.Sequence{},
		},
		ProgramItem: grammar.Alternative{
			nt(Class),
			nt(Function),
		},

		// --- Class declaration --------------------------------------------
		Class: grammar.Sequence{
			term(token.KwClass),
			term(token.Id), leafAction,
			nt(InheritsList),
			term(token.OpenCubr),
			markerAction,
			nt(ClassMemberList),
			untilMarker(ast.ClassMembers),
			term(token.CloseCubr),
			term(token.Semi),
			fromN(ast.Class, 3),
		},
		InheritsList: grammar.Alternative{
			grammar.Sequence{
				term(token.KwIsA),
				markerAction,
				nt(IDList),
				untilMarker(ast.InheritsList),
			},
			grammar.Sequence{markerAction, untilMarker(ast.InheritsList)},
		},
		IDList: grammar.Sequence{term(token.Id), leafAction, nt(IDListTail)},
		IDListTail: grammar.Alternative{
			grammar.Sequence{term(token.Comma), term(token.Id), leafAction, nt(IDListTail)},
			grammar.Sequence{},
		},
		ClassMemberList: grammar.Alternative{
			grammar.Sequence{nt(ClassMember), nt(ClassMemberList)},
			grammar.Sequence{},
		},
		ClassMember: grammar.Sequence{nt(Visibility), nt(MemberDecl)},
		Visibility: grammar.Alternative{
			grammar.Sequence{term(token.KwPublic), leafAction},
			grammar.Sequence{term(token.KwPrivate), leafAction},
		},
		MemberDecl: grammar.Alternative{
			nt(Attribute),
			nt(ConstructorFunc),
			nt(MemberFunc),
		},

		// --- Attribute & array dimensions -----------------------------------
		// Attribute/ConstructorFunc/MemberFunc each take their leading
		// Visibility leaf as an extra child — ClassMember pushes it before
		// delegating to MemberDecl, and it sits on the shared node-build
		// stack under whichever of the three productions actually runs.
		Attribute: grammar.Sequence{
			term(token.KwAttribute),
			term(token.Id), leafAction,
			term(token.Colon),
			nt(Type),
			nt(DeclIndiceList),
			fromN(ast.Attribute, 4),
			term(token.Semi),
		},
		DeclIndiceList: grammar.Sequence{
			markerAction,
			nt(DeclIndiceListInner),
			untilMarker(ast.IndiceList),
		},
		DeclIndiceListInner: grammar.Alternative{
			grammar.Sequence{nt(DeclArraySize), nt(DeclIndiceListInner)},
			grammar.Sequence{},
		},
		DeclArraySize: grammar.Sequence{
			term(token.OpenSqbr),
			term(token.IntNum), leafAction,
			term(token.CloseSqbr),
		},

		// --- Constructor / member-function prototypes -----------------------
		ConstructorFunc: grammar.Sequence{
			term(token.KwConstructor),
			term(token.OpenPar),
			nt(ParameterList),
			term(token.ClosePar),
			fromN(ast.ConstructorFunc, 2),
			term(token.Semi),
		},
		MemberFunc: grammar.Sequence{
			term(token.KwFunction),
			term(token.Id), leafAction,
			term(token.OpenPar),
			nt(ParameterList),
			term(token.ClosePar),
			term(token.Arrow),
			nt(ReturnType),
			fromN(ast.MemberFunc, 4),
			term(token.Semi),
		},

		// --- Free/method function definitions --------------------------------
		Function: grammar.Sequence{
			nt(FunctionHead),
			nt(FunctionBody),
			term(token.Semi),
			fromN(ast.Function, 2),
		},
		FunctionHead: grammar.Sequence{
			term(token.KwFunction),
			nt(FunctionID),
			term(token.OpenPar),
			nt(ParameterList),
			term(token.ClosePar),
			term(token.Arrow),
			nt(ReturnType),
			fromN(ast.FunctionHead, 3),
		},
		FunctionID: grammar.Sequence{term(token.Id), leafAction, nt(FunctionIDTail)},
		FunctionIDTail: grammar.Alternative{
			grammar.Sequence{
				term(token.ScopeOp),
				term(token.Id), leafAction,
				fromN(ast.Scope, 2),
			},
			grammar.Sequence{},
		},
		ReturnType: grammar.Alternative{
			grammar.Sequence{term(token.KwVoid), leafAction},
			nt(Type),
		},
		Type: grammar.Alternative{
			grammar.Sequence{term(token.KwInteger), leafAction},
			grammar.Sequence{term(token.KwFloat), leafAction},
			grammar.Sequence{term(token.Id), leafAction},
		},

		// --- Parameters --------------------------------------------------
		ParameterList: grammar.Sequence{
			markerAction,
			nt(ParameterListOpt),
			untilMarker(ast.ParameterList),
		},
		ParameterListOpt: grammar.Alternative{
			grammar.Sequence{nt(Parameter), nt(ParameterListTail)},
			grammar.Sequence{},
		},
		ParameterListTail: grammar.Alternative{
			grammar.Sequence{term(token.Comma), nt(Parameter), nt(ParameterListTail)},
			grammar.Sequence{},
		},
		Parameter: grammar.Sequence{
			term(token.Id), leafAction,
			term(token.Colon),
			nt(Type),
			nt(DeclIndiceList),
			fromN(ast.Parameter, 3),
		},

		// --- Function body / statements -----------------------------------
		FunctionBody: grammar.Sequence{
			term(token.OpenCubr),
			markerAction,
			nt(LocalVarOrStatList),
			untilMarker(ast.FunctionBody),
			term(token.CloseCubr),
		},
		LocalVarOrStatList: grammar.Alternative{
			grammar.Sequence{nt(LocalVarOrStat), nt(LocalVarOrStatList)},
			grammar.Sequence{},
		},
		LocalVarOrStat: grammar.Alternative{
			nt(LocalVarDecl),
			nt(Statement),
		},
		LocalVarDecl: grammar.Sequence{
			term(token.KwLocalVar),
			term(token.Id), leafAction,
			term(token.Colon),
			nt(Type),
			nt(DeclIndiceList),
			fromN(ast.LocalVarDecl, 3),
			term(token.Semi),
		},
		// Statement alternatives starting with Id (Assignment, FunctionCall)
		// share a FIRST set of {Id}; StatementIDTail left-factors them so the
		// table only needs one token of lookahead to choose a branch.
		Statement: grammar.Alternative{
			grammar.Sequence{
				markerAction,
				term(token.Id), leafAction,
				nt(StatementIDTail),
			},
			grammar.Sequence{nt(If), term(token.Semi)},
			grammar.Sequence{nt(While), term(token.Semi)},
			grammar.Sequence{nt(Read), term(token.Semi)},
			grammar.Sequence{nt(Write), term(token.Semi)},
			grammar.Sequence{nt(Return), term(token.Semi)},
		},
		StatementIDTail: grammar.Alternative{
			grammar.Sequence{
				term(token.OpenPar),
				nt(ArgumentList),
				term(token.ClosePar),
				untilMarker(ast.FunctionCall),
				term(token.Semi),
			},
			grammar.Sequence{
				nt(IndexExprList),
				fromN(ast.IndexedVar, 2),
				nt(NestedVarListInner),
				untilMarker(ast.Variable),
				term(token.Assign),
				nt(Expr),
				fromN(ast.Assignment, 2),
				term(token.Semi),
			},
		},

		// --- Argument lists for calls ----------------------------------------
		ArgumentList: grammar.Sequence{
			markerAction,
			nt(ArgumentListOpt),
			untilMarker(ast.ArgumentList),
		},
		ArgumentListOpt: grammar.Alternative{
			grammar.Sequence{nt(Expr), nt(ArgumentListTail)},
			grammar.Sequence{},
		},
		ArgumentListTail: grammar.Alternative{
			grammar.Sequence{term(token.Comma), nt(Expr), nt(ArgumentListTail)},
			grammar.Sequence{},
		},

		If: grammar.Sequence{
			term(token.KwIf),
			term(token.OpenPar),
			nt(Expr),
			term(token.ClosePar),
			term(token.KwThen),
			nt(IfBlock),
			term(token.KwElse),
			nt(ElseBlock),
			fromN(ast.If, 3),
		},
		IfBlock: grammar.Sequence{
			term(token.OpenCubr),
			markerAction,
			nt(LocalVarOrStatList),
			untilMarker(ast.IfBlock),
			term(token.CloseCubr),
		},
		ElseBlock: grammar.Sequence{
			term(token.OpenCubr),
			markerAction,
			nt(LocalVarOrStatList),
			untilMarker(ast.ElseBlock),
			term(token.CloseCubr),
		},
		While: grammar.Sequence{
			term(token.KwWhile),
			term(token.OpenPar),
			nt(Expr),
			term(token.ClosePar),
			nt(WhileBlock),
			fromN(ast.While, 2),
		},
		WhileBlock: grammar.Sequence{
			term(token.OpenCubr),
			markerAction,
			nt(LocalVarOrStatList),
			untilMarker(ast.WhileBlock),
			term(token.CloseCubr),
		},
		Read: grammar.Sequence{
			term(token.KwRead),
			term(token.OpenPar),
			nt(Variable),
			term(token.ClosePar),
			fromN(ast.Read, 1),
		},
		Write: grammar.Sequence{
			term(token.KwWrite),
			term(token.OpenPar),
			nt(Expr),
			term(token.ClosePar),
			fromN(ast.Write, 1),
		},
		Return: grammar.Sequence{
			term(token.KwReturn),
			term(token.OpenPar),
			nt(Expr),
			term(token.ClosePar),
			fromN(ast.Return, 1),
		},

		// --- Variable references (possibly indexed, possibly a dotted chain) --
		// IndexedVar is built with a fixed from-n-nodes action (it is always
		// exactly Id + one IndiceList) so the single marker placed before Id
		// stays available, unconsumed, to bracket the whole Variable once the
		// nested-var chain (if any) has been parsed.
		Variable: grammar.Sequence{
			markerAction,
			term(token.Id), leafAction,
			nt(IndexExprList),
			fromN(ast.IndexedVar, 2),
			nt(NestedVarListInner),
			untilMarker(ast.Variable),
		},
		NestedVarListInner: grammar.Alternative{
			grammar.Sequence{nt(NestedVar), nt(NestedVarListInner)},
			grammar.Sequence{},
		},
		NestedVar: grammar.Sequence{
			term(token.Dot),
			term(token.Id), leafAction,
			nt(IndexExprList),
			fromN(ast.NestedVar, 2),
		},
		IndexExprList: grammar.Sequence{
			markerAction,
			nt(IndexExprListInner),
			untilMarker(ast.IndiceList),
		},
		IndexExprListInner: grammar.Alternative{
			grammar.Sequence{nt(IndexExpr), nt(IndexExprListInner)},
			grammar.Sequence{},
		},
		IndexExpr: grammar.Sequence{
			term(token.OpenSqbr),
			nt(Expr),
			term(token.CloseSqbr),
		},

		// --- Expressions: Factor -> Term -> ArithExpr -> RelExpr -> Expr -------
		Factor: grammar.Alternative{
			grammar.Sequence{term(token.IntNum), leafAction, fromN(ast.Factor, 1)},
			grammar.Sequence{term(token.FloatNum), leafAction, fromN(ast.Factor, 1)},
			grammar.Sequence{
				term(token.OpenPar),
				nt(ArithExpr),
				term(token.ClosePar),
				fromN(ast.Factor, 1),
			},
			grammar.Sequence{
				term(token.KwNot), leafAction,
				nt(Factor),
				fromN(ast.Factor, 2),
			},
			grammar.Sequence{
				term(token.Minus), leafAction,
				nt(Factor),
				fromN(ast.Factor, 2),
			},
			grammar.Sequence{
				term(token.Plus), leafAction,
				nt(Factor),
				fromN(ast.Factor, 2),
			},
			grammar.Sequence{
				markerAction,
				term(token.Id), leafAction,
				nt(FactorIDTail),
			},
		},
		FactorIDTail: grammar.Alternative{
			grammar.Sequence{
				term(token.OpenPar),
				nt(ArgumentList),
				term(token.ClosePar),
				untilMarker(ast.FunctionCall),
			},
			grammar.Sequence{
				nt(IndexExprList),
				fromN(ast.IndexedVar, 2),
				nt(NestedVarListInner),
				untilMarker(ast.Variable),
			},
		},

		Term: grammar.Sequence{
			nt(Factor),
			nt(RightRecTerm),
			fromN(ast.Term, 2),
		},
		RightRecTerm: grammar.Alternative{
			grammar.Sequence{
				term(token.Mult), leafAction,
				nt(Factor),
				nt(RightRecTerm),
				fromN(ast.RightRecTerm, 3),
			},
			grammar.Sequence{
				term(token.Div), leafAction,
				nt(Factor),
				nt(RightRecTerm),
				fromN(ast.RightRecTerm, 3),
			},
			grammar.Sequence{fromN(ast.RightRecTerm, 0)},
		},

		ArithExpr: grammar.Sequence{
			nt(Term),
			nt(RightRecArithExpr),
			fromN(ast.ArithExpr, 2),
		},
		RightRecArithExpr: grammar.Alternative{
			grammar.Sequence{
				term(token.Plus), leafAction,
				nt(Term),
				nt(RightRecArithExpr),
				fromN(ast.RightRecArithExpr, 3),
			},
			grammar.Sequence{
				term(token.Minus), leafAction,
				nt(Term),
				nt(RightRecArithExpr),
				fromN(ast.RightRecArithExpr, 3),
			},
			grammar.Sequence{fromN(ast.RightRecArithExpr, 0)},
		},

		RelOp: grammar.Alternative{
			grammar.Sequence{term(token.Eq), leafAction},
			grammar.Sequence{term(token.NotEq), leafAction},
			grammar.Sequence{term(token.Lt), leafAction},
			grammar.Sequence{term(token.Gt), leafAction},
			grammar.Sequence{term(token.LEq), leafAction},
			grammar.Sequence{term(token.GEq), leafAction},
		},
		ExprTail: grammar.Alternative{
			grammar.Sequence{nt(RelOp), nt(ArithExpr), fromN(ast.RelExpr, 3)},
			grammar.Sequence{},
		},
		Expr: grammar.Sequence{
			nt(ArithExpr),
			nt(ExprTail),
			fromN(ast.Expr, 1),
		},
	}

	return grammar.Grammar{Productions: productions, Start: Program}
}
