package css

// ComponentValue is the smallest CSS syntactic unit handed to rule/
// declaration parsing: a preserved Token, a Function call, or a balanced
// SimpleBlock (spec.md §4.3, GLOSSARY "Component value").
type ComponentValue interface {
	componentValue()
}

// TokenValue wraps a single preserved token as a component value.
type TokenValue struct {
	Token Token
}

func (TokenValue) componentValue() {}

// Function is a component value of the form name(values...).
type Function struct {
	Name   string
	Values []ComponentValue
}

func (Function) componentValue() {}

// SimpleBlock is a balanced bracket/brace/paren pair and its contents
// (spec.md GLOSSARY "Simple block"). Open is the TokenType that started the
// block: LeftBraceToken, LeftBracketToken, or LeftParenToken.
type SimpleBlock struct {
	Open   TokenType
	Values []ComponentValue
}

func (SimpleBlock) componentValue() {}

var matchingClose = map[TokenType]TokenType{
	LeftBraceToken:   RightBraceToken,
	LeftBracketToken: RightBracketToken,
	LeftParenToken:   RightParenToken,
}
