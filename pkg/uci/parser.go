package uci

// Parser builds a Config from the token stream. Parsing fails fast on
// the first malformed statement; there is no partial result.
type Parser struct {
	lex *Lexer
}

// NewParser creates a parser over the given input text.
func NewParser(input string) *Parser {
	return &Parser{lex: NewLexer(input)}
}

// Parse parses a complete UCI package. The name tags the resulting
// config; it is not derived from the content (UCI files are named by
// convention), though a "package" directive in the text is recorded.
func Parse(name, input string) (*Config, error) {
	return NewParser(input).Parse(name)
}

// Parse consumes the whole token stream and returns the document.
func (p *Parser) Parse(name string) (*Config, error) {
	cfg := NewConfig(name)
	var cur *Section

	for {
		tok := p.lex.Next()
		switch tok.Type {
		case TokenEOF:
			return cfg, nil
		case TokenNewline, TokenComment:
			continue
		case TokenError:
			return nil, &LexError{Msg: tok.Value, Line: tok.Line}
		case TokenPackage:
			val, err := p.value(tok.Line)
			if err != nil {
				return nil, err
			}
			cfg.PkgName = val
		case TokenConfig:
			typ, ok := p.acceptWord()
			if !ok {
				if err := p.pendingLexError(); err != nil {
					return nil, err
				}
				return nil, &ParseError{Kind: MissingSectionType, Line: tok.Line}
			}
			cur = cfg.Add(NewSection(typ, ""))
			// Optional section name on the same line.
			if name, ok := p.acceptWord(); ok {
				cur.Name = name
			}
		case TokenOption, TokenList:
			if cur == nil {
				return nil, &ParseError{Kind: OptionOutsideSection, Line: tok.Line}
			}
			optName, ok := p.acceptWord()
			if !ok {
				if err := p.pendingLexError(); err != nil {
					return nil, err
				}
				return nil, &ParseError{Kind: MissingName, Line: tok.Line}
			}
			val, err := p.value(tok.Line)
			if err != nil {
				return nil, err
			}
			if tok.Type == TokenOption {
				cur.SetScalar(optName, val)
			} else {
				cur.AppendList(optName, val)
			}
		default:
			return nil, &ParseError{Kind: UnexpectedToken, Line: tok.Line, Tok: tok.Value}
		}
	}
}

// acceptWord consumes the next token if it is an identifier or string
// on the current line.
func (p *Parser) acceptWord() (string, bool) {
	tok := p.lex.Peek()
	if tok.Type == TokenIdent || tok.Type == TokenString {
		p.lex.Next()
		return tok.Value, true
	}
	return "", false
}

// pendingLexError surfaces a lexer error sitting at the current
// position, so it is not masked by a less specific parse error.
func (p *Parser) pendingLexError() error {
	tok := p.lex.Peek()
	if tok.Type == TokenError {
		return &LexError{Msg: tok.Value, Line: tok.Line}
	}
	return nil
}

// value requires an identifier or string before the end of the line.
func (p *Parser) value(line int) (string, error) {
	tok := p.lex.Next()
	switch tok.Type {
	case TokenIdent, TokenString:
		return tok.Value, nil
	case TokenError:
		return "", &LexError{Msg: tok.Value, Line: tok.Line}
	default:
		return "", &ParseError{Kind: MissingValue, Line: line}
	}
}
