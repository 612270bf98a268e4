package typegen

import "github.com/mark3labs/openapi2ts/internal/spec"

// DeclKind distinguishes the two declaration forms.
type DeclKind int

const (
	TypeAlias DeclKind = iota
	Enum
)

func (k DeclKind) String() string {
	if k == Enum {
		return "enum"
	}
	return "type"
}

// Declaration is one emitted `export type` or `export enum`.
type Declaration struct {
	Name        string
	Kind        DeclKind
	Section     spec.Section
	Description string
	// Type is the aliased type of a TypeAlias.
	Type TypeExpr
	// Members are the values of an Enum, in declared order.
	Members []EnumMember
	// References lists the declarations this one names, in first-seen order.
	References []Reference
}

// Reference identifies a named declaration by the section that declares it.
type Reference struct {
	Section spec.Section
	Name    string
}

// EnumMember is one `Name = value` entry of an enum.
type EnumMember struct {
	Name  string
	Value any
}

// TypeExpr is a TypeScript type expression. The concrete types are Keyword,
// Literal, NamedRef, ArrayType, ObjectType, RecordType, Union and
// Intersection.
type TypeExpr interface {
	typeExpr()
}

// Keyword is a built-in type such as string or unknown.
type Keyword string

const (
	KeywordString  Keyword = "string"
	KeywordNumber  Keyword = "number"
	KeywordBoolean Keyword = "boolean"
	KeywordNull    Keyword = "null"
	KeywordUnknown Keyword = "unknown"
	KeywordAny     Keyword = "any"
	KeywordBlob    Keyword = "Blob"
)

// Literal is a single literal value: string, number, boolean or null.
type Literal struct {
	Value any
}

// NamedRef names another declaration.
type NamedRef struct {
	Section spec.Section
	Name    string
}

type ArrayType struct {
	Elem TypeExpr
}

// ObjectType is an object literal type with fields in declared order.
type ObjectType struct {
	Fields []Field
}

type Field struct {
	Name        string
	Optional    bool
	Description string
	Type        TypeExpr
}

// RecordType is Record<string, Value>.
type RecordType struct {
	Value TypeExpr
}

type Union struct {
	Members []TypeExpr
}

type Intersection struct {
	Members []TypeExpr
}

func (Keyword) typeExpr()      {}
func (Literal) typeExpr()      {}
func (NamedRef) typeExpr()     {}
func (ArrayType) typeExpr()    {}
func (ObjectType) typeExpr()   {}
func (RecordType) typeExpr()   {}
func (Union) typeExpr()        {}
func (Intersection) typeExpr() {}
