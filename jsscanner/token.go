package jsscanner

import "fmt"

// Token is a lexical token kind produced by the Scanner.
type Token int

// Token kinds. The scanner guarantees that scanning the same source twice
// produces the same sequence of kinds, which is all the comparison logic in
// this module relies on.
const (
	Illegal Token = iota
	EOS

	Identifier
	Keyword
	PrivateName

	Number
	BigInt
	String
	NoSubstitutionTemplate
	TemplateSpan
	TemplateTail
	RegExp

	LBrace
	RBrace
	LParen
	RParen
	LBrack
	RBrack
	Semicolon
	Comma
	Colon
	Period
	Ellipsis
	Conditional
	OptionalChain
	Arrow

	Assign
	AddAssign
	SubAssign
	MulAssign
	DivAssign
	ModAssign
	ExpAssign
	ShlAssign
	SarAssign
	ShrAssign
	AndAssign
	OrAssign
	XorAssign
	LogicalAndAssign
	LogicalOrAssign
	NullishAssign

	Eq
	EqStrict
	NotEq
	NotEqStrict
	Lt
	Gt
	Lte
	Gte

	Add
	Sub
	Mul
	Div
	Mod
	Exp
	Shl
	Sar
	Shr
	BitAnd
	BitOr
	BitXor
	BitNot
	Not
	LogicalAnd
	LogicalOr
	Nullish
	Inc
	Dec
)

var tokenNames = map[Token]string{
	Illegal:                "ILLEGAL",
	EOS:                    "EOS",
	Identifier:             "IDENTIFIER",
	Keyword:                "KEYWORD",
	PrivateName:            "PRIVATE_NAME",
	Number:                 "NUMBER",
	BigInt:                 "BIGINT",
	String:                 "STRING",
	NoSubstitutionTemplate: "NO_SUBSTITUTION_TEMPLATE",
	TemplateSpan:           "TEMPLATE_SPAN",
	TemplateTail:           "TEMPLATE_TAIL",
	RegExp:                 "REGEXP",
}

// String returns a human-readable name of the token kind.
func (t Token) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("PUNCT(%d)", int(t))
}

// keywords contains every reserved word scanned as Keyword. Contextual
// keywords (async, of, etc.) are scanned as plain identifiers, the way most
// lexers treat them before the parser gets involved.
var keywords = map[string]struct{}{
	"await": {}, "break": {}, "case": {}, "catch": {}, "class": {},
	"const": {}, "continue": {}, "debugger": {}, "default": {}, "delete": {},
	"do": {}, "else": {}, "enum": {}, "export": {}, "extends": {},
	"false": {}, "finally": {}, "for": {}, "function": {}, "if": {},
	"import": {}, "in": {}, "instanceof": {}, "new": {}, "null": {},
	"return": {}, "super": {}, "switch": {}, "this": {}, "throw": {},
	"true": {}, "try": {}, "typeof": {}, "var": {}, "void": {},
	"while": {}, "with": {}, "yield": {},
}
