package token

// Type identifies the lexical category of a token.
type Type string

const (
	// Single-character punctuation.
	LeftParen  Type = "("
	RightParen Type = ")"
	LeftBrace  Type = "{"
	RightBrace Type = "}"
	Comma      Type = ","
	Dot        Type = "."
	Minus      Type = "-"
	Plus       Type = "+"
	Semicolon  Type = ";"
	Slash      Type = "/"
	Star       Type = "*"

	// One- or two-character operators.
	Bang         Type = "!"
	BangEqual    Type = "!="
	Equal        Type = "="
	EqualEqual   Type = "=="
	Greater      Type = ">"
	GreaterEqual Type = ">="
	Less         Type = "<"
	LessEqual    Type = "<="

	// Literals.
	Identifier Type = "IDENT"
	String     Type = "STRING"
	Number     Type = "NUMBER"

	// Keywords.
	And      Type = "and"
	Break    Type = "break"
	Class    Type = "class"
	Continue Type = "continue"
	Else     Type = "else"
	False    Type = "false"
	For      Type = "for"
	Fun      Type = "fun"
	If       Type = "if"
	Nil      Type = "nil"
	Or       Type = "or"
	Print    Type = "print"
	Return   Type = "return"
	Super    Type = "super"
	This     Type = "this"
	True     Type = "true"
	Var      Type = "var"
	While    Type = "while"

	// EOF is an explicit terminal token so the parser can always inspect
	// the current token without bounds checks.
	EOF Type = "EOF"
)

// Token is one element of the scanner's output stream. Literal holds the
// processed text: the unquoted contents for strings, the digits for numbers,
// the name for identifiers, and the lexeme itself for everything else.
type Token struct {
	Type    Type
	Literal string
	Line    int
}

var keywords = map[string]Type{
	"and":      And,
	"break":    Break,
	"class":    Class,
	"continue": Continue,
	"else":     Else,
	"false":    False,
	"for":      For,
	"fun":      Fun,
	"if":       If,
	"nil":      Nil,
	"or":       Or,
	"print":    Print,
	"return":   Return,
	"super":    Super,
	"this":     This,
	"true":     True,
	"var":      Var,
	"while":    While,
}

// LookupIdent maps an identifier's text to its keyword type, or Identifier
// when it is not a reserved word.
func LookupIdent(ident string) Type {
	if ty, ok := keywords[ident]; ok {
		return ty
	}
	return Identifier
}
