package ast

type NodeType string

const (
	NodeNumberLiteral   NodeType = "NumberLiteral"
	NodeStringLiteral   NodeType = "StringLiteral"
	NodeBooleanLiteral  NodeType = "BooleanLiteral"
	NodeNilLiteral      NodeType = "NilLiteral"
	NodeGrouping        NodeType = "Grouping"
	NodeUnaryExpression NodeType = "UnaryExpression"
	NodeBinaryExpr      NodeType = "BinaryExpression"
	NodeLogicalExpr     NodeType = "LogicalExpression"
	NodeVariableExpr    NodeType = "VariableExpression"
	NodeAssignExpr      NodeType = "AssignExpression"
	NodeCallExpr        NodeType = "CallExpression"
	NodeGetExpr         NodeType = "GetExpression"
	NodeSetExpr         NodeType = "SetExpression"
	NodeThisExpr        NodeType = "ThisExpression"
	NodeSuperExpr       NodeType = "SuperExpression"
	NodeFunctionLiteral NodeType = "FunctionLiteral"

	NodePrintStatement   NodeType = "PrintStatement"
	NodeExpressionStmt   NodeType = "ExpressionStatement"
	NodeVarStatement     NodeType = "VarStatement"
	NodeBlockStatement   NodeType = "BlockStatement"
	NodeIfStatement      NodeType = "IfStatement"
	NodeWhileStatement   NodeType = "WhileStatement"
	NodeForStatement     NodeType = "ForStatement"
	NodeFunctionDecl     NodeType = "FunctionDeclaration"
	NodeReturnStatement  NodeType = "ReturnStatement"
	NodeBreakStatement   NodeType = "BreakStatement"
	NodeContinueStmt     NodeType = "ContinueStatement"
	NodeClassDeclaration NodeType = "ClassDeclaration"
)

// Node is the shared behaviour of every AST node.
type Node interface {
	NodeType() NodeType
	isNode()
}

type nodeImpl struct {
	Type NodeType
}

func newNodeImpl(kind NodeType) nodeImpl {
	return nodeImpl{Type: kind}
}

func (n nodeImpl) NodeType() NodeType { return n.Type }
func (nodeImpl) isNode()              {}

// Marker interfaces.

type Expression interface {
	Node
	expressionNode()
}

type expressionMarker struct{}

func (expressionMarker) expressionNode() {}

type Statement interface {
	Node
	statementNode()
}

type statementMarker struct{}

func (statementMarker) statementNode() {}

//-----------------------------------------------------------------------------
// Expressions
//-----------------------------------------------------------------------------

type NumberLiteral struct {
	nodeImpl
	expressionMarker
	Value float64
	Line  int
}

func NewNumberLiteral(value float64, line int) *NumberLiteral {
	return &NumberLiteral{nodeImpl: newNodeImpl(NodeNumberLiteral), Value: value, Line: line}
}

type StringLiteral struct {
	nodeImpl
	expressionMarker
	Value string
	Line  int
}

func NewStringLiteral(value string, line int) *StringLiteral {
	return &StringLiteral{nodeImpl: newNodeImpl(NodeStringLiteral), Value: value, Line: line}
}

type BooleanLiteral struct {
	nodeImpl
	expressionMarker
	Value bool
	Line  int
}

func NewBooleanLiteral(value bool, line int) *BooleanLiteral {
	return &BooleanLiteral{nodeImpl: newNodeImpl(NodeBooleanLiteral), Value: value, Line: line}
}

type NilLiteral struct {
	nodeImpl
	expressionMarker
	Line int
}

func NewNilLiteral(line int) *NilLiteral {
	return &NilLiteral{nodeImpl: newNodeImpl(NodeNilLiteral), Line: line}
}

// Grouping keeps parenthesized expressions as distinct nodes so diagnostics
// see the source shape the user wrote.
type Grouping struct {
	nodeImpl
	expressionMarker
	Expression Expression
	Line       int
}

func NewGrouping(inner Expression, line int) *Grouping {
	return &Grouping{nodeImpl: newNodeImpl(NodeGrouping), Expression: inner, Line: line}
}

type UnaryExpression struct {
	nodeImpl
	expressionMarker
	Operator string
	Operand  Expression
	Line     int
}

func NewUnaryExpression(operator string, operand Expression, line int) *UnaryExpression {
	return &UnaryExpression{nodeImpl: newNodeImpl(NodeUnaryExpression), Operator: operator, Operand: operand, Line: line}
}

type BinaryExpression struct {
	nodeImpl
	expressionMarker
	Operator string
	Left     Expression
	Right    Expression
	Line     int
}

func NewBinaryExpression(operator string, left, right Expression, line int) *BinaryExpression {
	return &BinaryExpression{nodeImpl: newNodeImpl(NodeBinaryExpr), Operator: operator, Left: left, Right: right, Line: line}
}

// LogicalExpression covers `and`/`or`, which short-circuit and therefore
// evaluate differently from ordinary binary operators.
type LogicalExpression struct {
	nodeImpl
	expressionMarker
	Operator string
	Left     Expression
	Right    Expression
	Line     int
}

func NewLogicalExpression(operator string, left, right Expression, line int) *LogicalExpression {
	return &LogicalExpression{nodeImpl: newNodeImpl(NodeLogicalExpr), Operator: operator, Left: left, Right: right, Line: line}
}

// VariableExpression is a name reference. Every reference is a distinct
// node: the resolver keys scope depths by node identity, never by name text,
// so shadowed bindings stay unambiguous.
type VariableExpression struct {
	nodeImpl
	expressionMarker
	Name string
	Line int
}

func NewVariableExpression(name string, line int) *VariableExpression {
	return &VariableExpression{nodeImpl: newNodeImpl(NodeVariableExpr), Name: name, Line: line}
}

type AssignExpression struct {
	nodeImpl
	expressionMarker
	Name  string
	Value Expression
	Line  int
}

func NewAssignExpression(name string, value Expression, line int) *AssignExpression {
	return &AssignExpression{nodeImpl: newNodeImpl(NodeAssignExpr), Name: name, Value: value, Line: line}
}

type CallExpression struct {
	nodeImpl
	expressionMarker
	Callee    Expression
	Arguments []Expression
	Line      int
}

func NewCallExpression(callee Expression, arguments []Expression, line int) *CallExpression {
	return &CallExpression{nodeImpl: newNodeImpl(NodeCallExpr), Callee: callee, Arguments: arguments, Line: line}
}

type GetExpression struct {
	nodeImpl
	expressionMarker
	Object Expression
	Name   string
	Line   int
}

func NewGetExpression(object Expression, name string, line int) *GetExpression {
	return &GetExpression{nodeImpl: newNodeImpl(NodeGetExpr), Object: object, Name: name, Line: line}
}

type SetExpression struct {
	nodeImpl
	expressionMarker
	Object Expression
	Name   string
	Value  Expression
	Line   int
}

func NewSetExpression(object Expression, name string, value Expression, line int) *SetExpression {
	return &SetExpression{nodeImpl: newNodeImpl(NodeSetExpr), Object: object, Name: name, Value: value, Line: line}
}

type ThisExpression struct {
	nodeImpl
	expressionMarker
	Line int
}

func NewThisExpression(line int) *ThisExpression {
	return &ThisExpression{nodeImpl: newNodeImpl(NodeThisExpr), Line: line}
}

type SuperExpression struct {
	nodeImpl
	expressionMarker
	Method string
	Line   int
}

func NewSuperExpression(method string, line int) *SuperExpression {
	return &SuperExpression{nodeImpl: newNodeImpl(NodeSuperExpr), Method: method, Line: line}
}

// FunctionLiteral is an anonymous function expression.
type FunctionLiteral struct {
	nodeImpl
	expressionMarker
	Params []string
	Body   []Statement
	Line   int
}

func NewFunctionLiteral(params []string, body []Statement, line int) *FunctionLiteral {
	return &FunctionLiteral{nodeImpl: newNodeImpl(NodeFunctionLiteral), Params: params, Body: body, Line: line}
}

//-----------------------------------------------------------------------------
// Statements
//-----------------------------------------------------------------------------

type PrintStatement struct {
	nodeImpl
	statementMarker
	Expression Expression
	Line       int
}

func NewPrintStatement(expr Expression, line int) *PrintStatement {
	return &PrintStatement{nodeImpl: newNodeImpl(NodePrintStatement), Expression: expr, Line: line}
}

type ExpressionStatement struct {
	nodeImpl
	statementMarker
	Expression Expression
	Line       int
}

func NewExpressionStatement(expr Expression, line int) *ExpressionStatement {
	return &ExpressionStatement{nodeImpl: newNodeImpl(NodeExpressionStmt), Expression: expr, Line: line}
}

type VarStatement struct {
	nodeImpl
	statementMarker
	Name        string
	Initializer Expression // nil when declared without a value
	Line        int
}

func NewVarStatement(name string, initializer Expression, line int) *VarStatement {
	return &VarStatement{nodeImpl: newNodeImpl(NodeVarStatement), Name: name, Initializer: initializer, Line: line}
}

type BlockStatement struct {
	nodeImpl
	statementMarker
	Statements []Statement
	Line       int
}

func NewBlockStatement(statements []Statement, line int) *BlockStatement {
	return &BlockStatement{nodeImpl: newNodeImpl(NodeBlockStatement), Statements: statements, Line: line}
}

type IfStatement struct {
	nodeImpl
	statementMarker
	Condition Expression
	Then      Statement
	Else      Statement // nil when absent
	Line      int
}

func NewIfStatement(condition Expression, then, els Statement, line int) *IfStatement {
	return &IfStatement{nodeImpl: newNodeImpl(NodeIfStatement), Condition: condition, Then: then, Else: els, Line: line}
}

type WhileStatement struct {
	nodeImpl
	statementMarker
	Condition Expression
	Body      Statement
	Line      int
}

func NewWhileStatement(condition Expression, body Statement, line int) *WhileStatement {
	return &WhileStatement{nodeImpl: newNodeImpl(NodeWhileStatement), Condition: condition, Body: body, Line: line}
}

// ForStatement keeps the three clauses explicit rather than desugaring to
// while, so continue still runs the increment clause.
type ForStatement struct {
	nodeImpl
	statementMarker
	Initializer Statement  // VarStatement or ExpressionStatement, nil when absent
	Condition   Expression // nil means always true
	Increment   Expression // nil when absent
	Body        Statement
	Line        int
}

func NewForStatement(initializer Statement, condition, increment Expression, body Statement, line int) *ForStatement {
	return &ForStatement{nodeImpl: newNodeImpl(NodeForStatement), Initializer: initializer, Condition: condition, Increment: increment, Body: body, Line: line}
}

type FunctionDeclaration struct {
	nodeImpl
	statementMarker
	Name   string
	Params []string
	Body   []Statement
	Line   int
}

func NewFunctionDeclaration(name string, params []string, body []Statement, line int) *FunctionDeclaration {
	return &FunctionDeclaration{nodeImpl: newNodeImpl(NodeFunctionDecl), Name: name, Params: params, Body: body, Line: line}
}

type ReturnStatement struct {
	nodeImpl
	statementMarker
	Value Expression // nil for a bare return
	Line  int
}

func NewReturnStatement(value Expression, line int) *ReturnStatement {
	return &ReturnStatement{nodeImpl: newNodeImpl(NodeReturnStatement), Value: value, Line: line}
}

type BreakStatement struct {
	nodeImpl
	statementMarker
	Line int
}

func NewBreakStatement(line int) *BreakStatement {
	return &BreakStatement{nodeImpl: newNodeImpl(NodeBreakStatement), Line: line}
}

type ContinueStatement struct {
	nodeImpl
	statementMarker
	Line int
}

func NewContinueStatement(line int) *ContinueStatement {
	return &ContinueStatement{nodeImpl: newNodeImpl(NodeContinueStmt), Line: line}
}

// ClassDeclaration's Superclass is a VariableExpression so the superclass
// reference participates in ordinary scope resolution.
type ClassDeclaration struct {
	nodeImpl
	statementMarker
	Name       string
	Superclass *VariableExpression // nil when the class has no parent
	Methods    []*FunctionDeclaration
	Line       int
}

func NewClassDeclaration(name string, superclass *VariableExpression, methods []*FunctionDeclaration, line int) *ClassDeclaration {
	return &ClassDeclaration{nodeImpl: newNodeImpl(NodeClassDeclaration), Name: name, Superclass: superclass, Methods: methods, Line: line}
}
