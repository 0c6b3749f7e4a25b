package scanner

import (
	"errors"
	"fmt"

	"rox/interpreter-go/pkg/token"
)

// Error is a lexical error with the 1-based line it occurred on. Incomplete
// marks errors caused by the input ending mid-token, which interactive hosts
// use to prompt for continuation lines instead of reporting.
type Error struct {
	Line       int
	Message    string
	Incomplete bool
}

func (e *Error) Error() string {
	return fmt.Sprintf("[line %d] scan error: %s", e.Line, e.Message)
}

// IsIncomplete reports whether err represents source that ended in the
// middle of a token rather than genuinely malformed source.
func IsIncomplete(err error) bool {
	var se *Error
	return errors.As(err, &se) && se.Incomplete
}

// Scanner turns Rox source text into a token stream.
type Scanner struct {
	source  []rune
	start   int
	current int
	line    int
	tokens  []token.Token
}

// New returns a scanner over the given source text.
func New(source string) *Scanner {
	return &Scanner{source: []rune(source), line: 1}
}

// Scan lexes the entire source and returns the token stream, terminated by
// an explicit EOF token.
func Scan(source string) ([]token.Token, error) {
	return New(source).ScanTokens()
}

// ScanTokens lexes all tokens up to and including the EOF terminal.
func (s *Scanner) ScanTokens() ([]token.Token, error) {
	for !s.isAtEnd() {
		s.start = s.current
		if err := s.scanToken(); err != nil {
			return nil, err
		}
	}
	s.tokens = append(s.tokens, token.Token{Type: token.EOF, Line: s.line})
	return s.tokens, nil
}

func (s *Scanner) scanToken() error {
	c := s.advance()
	switch c {
	case '(':
		s.addToken(token.LeftParen)
	case ')':
		s.addToken(token.RightParen)
	case '{':
		s.addToken(token.LeftBrace)
	case '}':
		s.addToken(token.RightBrace)
	case ',':
		s.addToken(token.Comma)
	case '.':
		s.addToken(token.Dot)
	case '-':
		s.addToken(token.Minus)
	case '+':
		s.addToken(token.Plus)
	case ';':
		s.addToken(token.Semicolon)
	case '*':
		s.addToken(token.Star)
	case '!':
		if s.match('=') {
			s.addToken(token.BangEqual)
		} else {
			s.addToken(token.Bang)
		}
	case '=':
		if s.match('=') {
			s.addToken(token.EqualEqual)
		} else {
			s.addToken(token.Equal)
		}
	case '<':
		if s.match('=') {
			s.addToken(token.LessEqual)
		} else {
			s.addToken(token.Less)
		}
	case '>':
		if s.match('=') {
			s.addToken(token.GreaterEqual)
		} else {
			s.addToken(token.Greater)
		}
	case '/':
		if s.match('/') {
			for s.peek() != '\n' && !s.isAtEnd() {
				s.advance()
			}
		} else {
			s.addToken(token.Slash)
		}
	case ' ', '\r', '\t':
		// skip
	case '\n':
		s.line++
	case '"':
		return s.scanString()
	default:
		switch {
		case isDigit(c):
			s.scanNumber()
		case isAlpha(c):
			s.scanIdentifier()
		default:
			return &Error{Line: s.line, Message: fmt.Sprintf("unexpected character %q", c)}
		}
	}
	return nil
}

func (s *Scanner) scanString() error {
	for s.peek() != '"' && !s.isAtEnd() {
		if s.peek() == '\n' {
			s.line++
		}
		s.advance()
	}
	if s.isAtEnd() {
		// Strings span lines, so running out of input here only means the
		// closing quote has not arrived yet.
		return &Error{Line: s.line, Message: "unterminated string literal", Incomplete: true}
	}
	s.advance() // closing quote
	value := string(s.source[s.start+1 : s.current-1])
	s.tokens = append(s.tokens, token.Token{Type: token.String, Literal: value, Line: s.line})
	return nil
}

func (s *Scanner) scanNumber() {
	for isDigit(s.peek()) {
		s.advance()
	}
	// A fractional part requires a digit after the dot, so "1.foo" lexes as
	// NUMBER DOT IDENT.
	if s.peek() == '.' && isDigit(s.peekNext()) {
		s.advance()
		for isDigit(s.peek()) {
			s.advance()
		}
	}
	s.addToken(token.Number)
}

func (s *Scanner) scanIdentifier() {
	for isAlphaNumeric(s.peek()) {
		s.advance()
	}
	text := string(s.source[s.start:s.current])
	s.tokens = append(s.tokens, token.Token{Type: token.LookupIdent(text), Literal: text, Line: s.line})
}

func (s *Scanner) addToken(ty token.Type) {
	s.tokens = append(s.tokens, token.Token{Type: ty, Literal: string(s.source[s.start:s.current]), Line: s.line})
}

func (s *Scanner) advance() rune {
	c := s.source[s.current]
	s.current++
	return c
}

func (s *Scanner) match(expected rune) bool {
	if s.isAtEnd() || s.source[s.current] != expected {
		return false
	}
	s.current++
	return true
}

func (s *Scanner) peek() rune {
	if s.isAtEnd() {
		return 0
	}
	return s.source[s.current]
}

func (s *Scanner) peekNext() rune {
	if s.current+1 >= len(s.source) {
		return 0
	}
	return s.source[s.current+1]
}

func (s *Scanner) isAtEnd() bool {
	return s.current >= len(s.source)
}

func isDigit(c rune) bool {
	return c >= '0' && c <= '9'
}

func isAlpha(c rune) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isAlphaNumeric(c rune) bool {
	return isAlpha(c) || isDigit(c)
}
