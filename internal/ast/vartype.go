package ast

import (
	"strconv"
	"strings"
)

// VarTypeKind is the abstract sort attached to variables and expressions
// (spec §3). It is distinct from a terminal's token.Class.
type VarTypeKind int

const (
	TInteger VarTypeKind = iota
	TFloat
	TClass
	TFunction
	TVoid
	TGlobal
	TIndiceList
	TArgumentList
	TInherits
)

// VarType is the abstract value sort for an expression or symbol. Dims holds
// declared array dimensions for Integer/Float (empty means scalar). ClassName
// is set for TClass. Rank is the operand count for TIndiceList. Args holds
// element types for TArgumentList. Names holds parent class names for
// TInherits.
type VarType struct {
	Kind      VarTypeKind
	Dims      []int
	ClassName string
	Rank      int
	Args      []VarType
	Names     []string
}

func Integer(dims []int) VarType     { return VarType{Kind: TInteger, Dims: dims} }
func Float(dims []int) VarType       { return VarType{Kind: TFloat, Dims: dims} }
func ClassType(name string) VarType  { return VarType{Kind: TClass, ClassName: name} }
func FunctionType() VarType          { return VarType{Kind: TFunction} }
func Void() VarType                  { return VarType{Kind: TVoid} }
func Global() VarType                { return VarType{Kind: TGlobal} }
func IndiceListType(rank int) VarType {
	return VarType{Kind: TIndiceList, Rank: rank}
}
func ArgumentListType(args []VarType) VarType {
	return VarType{Kind: TArgumentList, Args: args}
}
func Inherits(names []string) VarType {
	return VarType{Kind: TInherits, Names: names}
}

// Scalar reports whether this is a non-array Integer/Float.
func (v VarType) Scalar() bool {
	return (v.Kind == TInteger || v.Kind == TFloat) && len(v.Dims) == 0
}

// SameBaseVariant reports whether two types share the Integer-vs-Float
// variant (spec §4.6 ArithExpr rule: "their base variant must match").
func (v VarType) SameBaseVariant(o VarType) bool {
	return v.Kind == o.Kind && (v.Kind == TInteger || v.Kind == TFloat)
}

// Peel removes rank leading dimensions (spec §4.6 Variable indexing rule).
// Only valid for Integer/Float.
func (v VarType) Peel(rank int) VarType {
	if rank >= len(v.Dims) {
		return VarType{Kind: v.Kind}
	}
	return VarType{Kind: v.Kind, Dims: append([]int{}, v.Dims[rank:]...)}
}

// String renders the type the way a function signature key expects
// ("integer[3][4]", "MyClass", "void", ...) per spec §3's Symbol table.
func (v VarType) String() string {
	switch v.Kind {
	case TInteger:
		return "integer" + dimsString(v.Dims)
	case TFloat:
		return "float" + dimsString(v.Dims)
	case TClass:
		return v.ClassName
	case TFunction:
		return "function"
	case TVoid:
		return "void"
	case TGlobal:
		return "global"
	case TIndiceList:
		return "indicelist"
	case TArgumentList:
		parts := make([]string, len(v.Args))
		for i, a := range v.Args {
			parts[i] = a.String()
		}
		return strings.Join(parts, ", ")
	case TInherits:
		return strings.Join(v.Names, ", ")
	default:
		return "?"
	}
}

func dimsString(dims []int) string {
	var b strings.Builder
	for _, d := range dims {
		b.WriteByte('[')
		b.WriteString(strconv.Itoa(d))
		b.WriteByte(']')
	}
	return b.String()
}
