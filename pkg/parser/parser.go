package parser

import (
	"errors"
	"fmt"
	"strconv"

	"rox/interpreter-go/pkg/ast"
	"rox/interpreter-go/pkg/token"
)

// maxArguments bounds both call arguments and declared parameters.
const maxArguments = 255

// Error is a syntax error with the 1-based line it occurred on. Incomplete
// marks errors caused by the input ending mid-construct, which interactive
// hosts use to prompt for continuation lines instead of reporting.
type Error struct {
	Line       int
	Message    string
	Incomplete bool
}

func (e *Error) Error() string {
	return fmt.Sprintf("[line %d] parse error: %s", e.Line, e.Message)
}

// IsIncomplete reports whether err represents source that ended in the
// middle of a construct rather than genuinely malformed source.
func IsIncomplete(err error) bool {
	var pe *Error
	return errors.As(err, &pe) && pe.Incomplete
}

// Parser is a recursive-descent parser over a scanned token stream. The
// stream always ends with an EOF terminal, so current never runs off the end.
type Parser struct {
	tokens  []token.Token
	current int
}

// New returns a parser over the given token stream.
func New(tokens []token.Token) *Parser {
	return &Parser{tokens: tokens}
}

// Parse consumes the whole stream and returns the program's statements.
func Parse(tokens []token.Token) ([]ast.Statement, error) {
	return New(tokens).ParseProgram()
}

// ParseProgram parses declarations until EOF.
func (p *Parser) ParseProgram() ([]ast.Statement, error) {
	var stmts []ast.Statement
	for !p.isAtEnd() {
		stmt, err := p.declaration()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	return stmts, nil
}

//-----------------------------------------------------------------------------
// Declarations and statements
//-----------------------------------------------------------------------------

func (p *Parser) declaration() (ast.Statement, error) {
	switch {
	case p.check(token.Class):
		return p.classDeclaration()
	case p.check(token.Fun) && p.checkNext(token.Identifier):
		// `fun name(...)` declares; a bare `fun (...)` is a function
		// literal handled by the expression grammar.
		return p.functionDeclaration()
	case p.check(token.Var):
		return p.varDeclaration()
	default:
		return p.statement()
	}
}

func (p *Parser) classDeclaration() (ast.Statement, error) {
	keyword := p.advance()
	name, err := p.consume(token.Identifier, "expected class name")
	if err != nil {
		return nil, err
	}
	var superclass *ast.VariableExpression
	if p.match(token.Less) {
		superName, err := p.consume(token.Identifier, "expected superclass name after '<'")
		if err != nil {
			return nil, err
		}
		superclass = ast.NewVariableExpression(superName.Literal, superName.Line)
	}
	if _, err := p.consume(token.LeftBrace, "expected '{' before class body"); err != nil {
		return nil, err
	}
	var methods []*ast.FunctionDeclaration
	for !p.check(token.RightBrace) && !p.isAtEnd() {
		method, err := p.method()
		if err != nil {
			return nil, err
		}
		methods = append(methods, method)
	}
	if _, err := p.consume(token.RightBrace, "expected '}' after class body"); err != nil {
		return nil, err
	}
	return ast.NewClassDeclaration(name.Literal, superclass, methods, keyword.Line), nil
}

func (p *Parser) functionDeclaration() (ast.Statement, error) {
	p.advance() // fun
	return p.method()
}

// method parses `name(params) { body }`; class bodies and fun declarations
// share the shape.
func (p *Parser) method() (*ast.FunctionDeclaration, error) {
	name, err := p.consume(token.Identifier, "expected function name")
	if err != nil {
		return nil, err
	}
	params, body, err := p.functionRest("function")
	if err != nil {
		return nil, err
	}
	return ast.NewFunctionDeclaration(name.Literal, params, body, name.Line), nil
}

// functionRest parses `(params) { body }` for declarations, methods, and
// function literals.
func (p *Parser) functionRest(kind string) ([]string, []ast.Statement, error) {
	if _, err := p.consume(token.LeftParen, fmt.Sprintf("expected '(' after %s name", kind)); err != nil {
		return nil, nil, err
	}
	var params []string
	if !p.check(token.RightParen) {
		for {
			if len(params) >= maxArguments {
				return nil, nil, p.errorAt(p.peek(), fmt.Sprintf("cannot have more than %d parameters", maxArguments))
			}
			param, err := p.consume(token.Identifier, "expected parameter name")
			if err != nil {
				return nil, nil, err
			}
			params = append(params, param.Literal)
			if !p.match(token.Comma) {
				break
			}
		}
	}
	if _, err := p.consume(token.RightParen, "expected ')' after parameters"); err != nil {
		return nil, nil, err
	}
	if _, err := p.consume(token.LeftBrace, fmt.Sprintf("expected '{' before %s body", kind)); err != nil {
		return nil, nil, err
	}
	body, err := p.blockStatements()
	if err != nil {
		return nil, nil, err
	}
	return params, body, nil
}

func (p *Parser) varDeclaration() (ast.Statement, error) {
	keyword := p.advance()
	name, err := p.consume(token.Identifier, "expected variable name")
	if err != nil {
		return nil, err
	}
	var initializer ast.Expression
	if p.match(token.Equal) {
		initializer, err = p.expression()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.consume(token.Semicolon, "expected ';' after variable declaration"); err != nil {
		return nil, err
	}
	return ast.NewVarStatement(name.Literal, initializer, keyword.Line), nil
}

func (p *Parser) statement() (ast.Statement, error) {
	switch {
	case p.check(token.Print):
		return p.printStatement()
	case p.check(token.Return):
		return p.returnStatement()
	case p.check(token.Break):
		keyword := p.advance()
		if _, err := p.consume(token.Semicolon, "expected ';' after 'break'"); err != nil {
			return nil, err
		}
		return ast.NewBreakStatement(keyword.Line), nil
	case p.check(token.Continue):
		keyword := p.advance()
		if _, err := p.consume(token.Semicolon, "expected ';' after 'continue'"); err != nil {
			return nil, err
		}
		return ast.NewContinueStatement(keyword.Line), nil
	case p.check(token.If):
		return p.ifStatement()
	case p.check(token.While):
		return p.whileStatement()
	case p.check(token.For):
		return p.forStatement()
	case p.check(token.LeftBrace):
		brace := p.advance()
		stmts, err := p.blockStatements()
		if err != nil {
			return nil, err
		}
		return ast.NewBlockStatement(stmts, brace.Line), nil
	default:
		return p.expressionStatement()
	}
}

func (p *Parser) printStatement() (ast.Statement, error) {
	keyword := p.advance()
	value, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.Semicolon, "expected ';' after value"); err != nil {
		return nil, err
	}
	return ast.NewPrintStatement(value, keyword.Line), nil
}

func (p *Parser) returnStatement() (ast.Statement, error) {
	keyword := p.advance()
	var value ast.Expression
	if !p.check(token.Semicolon) {
		var err error
		value, err = p.expression()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.consume(token.Semicolon, "expected ';' after return value"); err != nil {
		return nil, err
	}
	return ast.NewReturnStatement(value, keyword.Line), nil
}

func (p *Parser) ifStatement() (ast.Statement, error) {
	keyword := p.advance()
	if _, err := p.consume(token.LeftParen, "expected '(' after 'if'"); err != nil {
		return nil, err
	}
	condition, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.RightParen, "expected ')' after if condition"); err != nil {
		return nil, err
	}
	then, err := p.statement()
	if err != nil {
		return nil, err
	}
	var els ast.Statement
	if p.match(token.Else) {
		els, err = p.statement()
		if err != nil {
			return nil, err
		}
	}
	return ast.NewIfStatement(condition, then, els, keyword.Line), nil
}

func (p *Parser) whileStatement() (ast.Statement, error) {
	keyword := p.advance()
	if _, err := p.consume(token.LeftParen, "expected '(' after 'while'"); err != nil {
		return nil, err
	}
	condition, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.RightParen, "expected ')' after while condition"); err != nil {
		return nil, err
	}
	body, err := p.statement()
	if err != nil {
		return nil, err
	}
	return ast.NewWhileStatement(condition, body, keyword.Line), nil
}

func (p *Parser) forStatement() (ast.Statement, error) {
	keyword := p.advance()
	if _, err := p.consume(token.LeftParen, "expected '(' after 'for'"); err != nil {
		return nil, err
	}

	var initializer ast.Statement
	var err error
	switch {
	case p.match(token.Semicolon):
		// no initializer
	case p.check(token.Var):
		initializer, err = p.varDeclaration()
		if err != nil {
			return nil, err
		}
	default:
		initializer, err = p.expressionStatement()
		if err != nil {
			return nil, err
		}
	}

	var condition ast.Expression
	if !p.check(token.Semicolon) {
		condition, err = p.expression()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.consume(token.Semicolon, "expected ';' after loop condition"); err != nil {
		return nil, err
	}

	var increment ast.Expression
	if !p.check(token.RightParen) {
		increment, err = p.expression()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.consume(token.RightParen, "expected ')' after for clauses"); err != nil {
		return nil, err
	}

	body, err := p.statement()
	if err != nil {
		return nil, err
	}
	return ast.NewForStatement(initializer, condition, increment, body, keyword.Line), nil
}

func (p *Parser) blockStatements() ([]ast.Statement, error) {
	var stmts []ast.Statement
	for !p.check(token.RightBrace) && !p.isAtEnd() {
		stmt, err := p.declaration()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	if _, err := p.consume(token.RightBrace, "expected '}' after block"); err != nil {
		return nil, err
	}
	return stmts, nil
}

func (p *Parser) expressionStatement() (ast.Statement, error) {
	expr, err := p.expression()
	if err != nil {
		return nil, err
	}
	line := p.previous().Line
	if _, err := p.consume(token.Semicolon, "expected ';' after expression"); err != nil {
		return nil, err
	}
	return ast.NewExpressionStatement(expr, line), nil
}

//-----------------------------------------------------------------------------
// Expressions
//-----------------------------------------------------------------------------

func (p *Parser) expression() (ast.Expression, error) {
	return p.assignment()
}

func (p *Parser) assignment() (ast.Expression, error) {
	expr, err := p.logicOr()
	if err != nil {
		return nil, err
	}
	if p.check(token.Equal) {
		equals := p.advance()
		value, err := p.assignment()
		if err != nil {
			return nil, err
		}
		switch target := expr.(type) {
		case *ast.VariableExpression:
			return ast.NewAssignExpression(target.Name, value, equals.Line), nil
		case *ast.GetExpression:
			return ast.NewSetExpression(target.Object, target.Name, value, equals.Line), nil
		default:
			return nil, p.errorAt(equals, "invalid assignment target")
		}
	}
	return expr, nil
}

func (p *Parser) logicOr() (ast.Expression, error) {
	expr, err := p.logicAnd()
	if err != nil {
		return nil, err
	}
	for p.check(token.Or) {
		op := p.advance()
		right, err := p.logicAnd()
		if err != nil {
			return nil, err
		}
		expr = ast.NewLogicalExpression(op.Literal, expr, right, op.Line)
	}
	return expr, nil
}

func (p *Parser) logicAnd() (ast.Expression, error) {
	expr, err := p.equality()
	if err != nil {
		return nil, err
	}
	for p.check(token.And) {
		op := p.advance()
		right, err := p.equality()
		if err != nil {
			return nil, err
		}
		expr = ast.NewLogicalExpression(op.Literal, expr, right, op.Line)
	}
	return expr, nil
}

func (p *Parser) equality() (ast.Expression, error) {
	return p.binaryLevel(p.comparison, token.EqualEqual, token.BangEqual)
}

func (p *Parser) comparison() (ast.Expression, error) {
	return p.binaryLevel(p.term, token.Greater, token.GreaterEqual, token.Less, token.LessEqual)
}

func (p *Parser) term() (ast.Expression, error) {
	return p.binaryLevel(p.factor, token.Plus, token.Minus)
}

func (p *Parser) factor() (ast.Expression, error) {
	return p.binaryLevel(p.unary, token.Star, token.Slash)
}

// binaryLevel parses one left-associative precedence level.
func (p *Parser) binaryLevel(operand func() (ast.Expression, error), types ...token.Type) (ast.Expression, error) {
	expr, err := operand()
	if err != nil {
		return nil, err
	}
	for p.checkAny(types...) {
		op := p.advance()
		right, err := operand()
		if err != nil {
			return nil, err
		}
		expr = ast.NewBinaryExpression(op.Literal, expr, right, op.Line)
	}
	return expr, nil
}

func (p *Parser) unary() (ast.Expression, error) {
	if p.checkAny(token.Bang, token.Minus) {
		op := p.advance()
		operand, err := p.unary()
		if err != nil {
			return nil, err
		}
		return ast.NewUnaryExpression(op.Literal, operand, op.Line), nil
	}
	return p.call()
}

func (p *Parser) call() (ast.Expression, error) {
	expr, err := p.primary()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.check(token.LeftParen):
			paren := p.advance()
			args, err := p.arguments()
			if err != nil {
				return nil, err
			}
			expr = ast.NewCallExpression(expr, args, paren.Line)
		case p.check(token.Dot):
			p.advance()
			name, err := p.consume(token.Identifier, "expected property name after '.'")
			if err != nil {
				return nil, err
			}
			expr = ast.NewGetExpression(expr, name.Literal, name.Line)
		default:
			return expr, nil
		}
	}
}

func (p *Parser) arguments() ([]ast.Expression, error) {
	var args []ast.Expression
	if !p.check(token.RightParen) {
		for {
			if len(args) >= maxArguments {
				return nil, p.errorAt(p.peek(), fmt.Sprintf("cannot have more than %d arguments", maxArguments))
			}
			arg, err := p.expression()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if !p.match(token.Comma) {
				break
			}
		}
	}
	if _, err := p.consume(token.RightParen, "expected ')' after arguments"); err != nil {
		return nil, err
	}
	return args, nil
}

func (p *Parser) primary() (ast.Expression, error) {
	tok := p.peek()
	switch tok.Type {
	case token.Number:
		p.advance()
		value, err := strconv.ParseFloat(tok.Literal, 64)
		if err != nil {
			return nil, p.errorAt(tok, fmt.Sprintf("invalid number literal %q", tok.Literal))
		}
		return ast.NewNumberLiteral(value, tok.Line), nil
	case token.String:
		p.advance()
		return ast.NewStringLiteral(tok.Literal, tok.Line), nil
	case token.True:
		p.advance()
		return ast.NewBooleanLiteral(true, tok.Line), nil
	case token.False:
		p.advance()
		return ast.NewBooleanLiteral(false, tok.Line), nil
	case token.Nil:
		p.advance()
		return ast.NewNilLiteral(tok.Line), nil
	case token.This:
		p.advance()
		return ast.NewThisExpression(tok.Line), nil
	case token.Super:
		p.advance()
		if _, err := p.consume(token.Dot, "expected '.' after 'super'"); err != nil {
			return nil, err
		}
		method, err := p.consume(token.Identifier, "expected superclass method name")
		if err != nil {
			return nil, err
		}
		return ast.NewSuperExpression(method.Literal, tok.Line), nil
	case token.Identifier:
		p.advance()
		return ast.NewVariableExpression(tok.Literal, tok.Line), nil
	case token.Fun:
		p.advance()
		params, body, err := p.functionRest("anonymous function")
		if err != nil {
			return nil, err
		}
		return ast.NewFunctionLiteral(params, body, tok.Line), nil
	case token.LeftParen:
		p.advance()
		inner, err := p.expression()
		if err != nil {
			return nil, err
		}
		if _, err := p.consume(token.RightParen, "expected ')' after expression"); err != nil {
			return nil, err
		}
		return ast.NewGrouping(inner, tok.Line), nil
	default:
		return nil, p.errorAt(tok, fmt.Sprintf("expected expression, found %q", displayToken(tok)))
	}
}

//-----------------------------------------------------------------------------
// Token stream helpers
//-----------------------------------------------------------------------------

func (p *Parser) consume(ty token.Type, message string) (token.Token, error) {
	if p.check(ty) {
		return p.advance(), nil
	}
	return token.Token{}, p.errorAt(p.peek(), fmt.Sprintf("%s, found %q", message, displayToken(p.peek())))
}

func (p *Parser) match(ty token.Type) bool {
	if p.check(ty) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) check(ty token.Type) bool {
	return p.peek().Type == ty
}

func (p *Parser) checkAny(types ...token.Type) bool {
	for _, ty := range types {
		if p.check(ty) {
			return true
		}
	}
	return false
}

func (p *Parser) checkNext(ty token.Type) bool {
	if p.current+1 >= len(p.tokens) {
		return false
	}
	return p.tokens[p.current+1].Type == ty
}

func (p *Parser) advance() token.Token {
	tok := p.tokens[p.current]
	if !p.isAtEnd() {
		p.current++
	}
	return tok
}

func (p *Parser) peek() token.Token {
	return p.tokens[p.current]
}

func (p *Parser) previous() token.Token {
	if p.current == 0 {
		return p.tokens[0]
	}
	return p.tokens[p.current-1]
}

func (p *Parser) isAtEnd() bool {
	return p.peek().Type == token.EOF
}

// errorAt builds a parse error; errors triggered by the EOF terminal mark
// the input as incomplete rather than malformed.
func (p *Parser) errorAt(tok token.Token, message string) error {
	return &Error{Line: tok.Line, Message: message, Incomplete: tok.Type == token.EOF}
}

func displayToken(tok token.Token) string {
	if tok.Type == token.EOF {
		return "end of input"
	}
	return tok.Literal
}
