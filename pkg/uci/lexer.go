// Package uci implements the parser and data model for the UCI
// (Unified Configuration Interface) text format used by embedded
// router firmware.
package uci

import (
	"fmt"
	"strings"
)

// TokenType represents the type of a lexer token.
type TokenType int

const (
	TokenPackage TokenType = iota // "package" keyword
	TokenConfig                   // "config" keyword
	TokenOption                   // "option" keyword
	TokenList                     // "list" keyword
	TokenIdent                    // unquoted word
	TokenString                   // quoted string
	TokenComment                  // # comment (value without the marker)
	TokenNewline                  // statement separator
	TokenEOF
	TokenError
)

func (t TokenType) String() string {
	switch t {
	case TokenPackage:
		return "'package'"
	case TokenConfig:
		return "'config'"
	case TokenOption:
		return "'option'"
	case TokenList:
		return "'list'"
	case TokenIdent:
		return "identifier"
	case TokenString:
		return "string"
	case TokenComment:
		return "comment"
	case TokenNewline:
		return "newline"
	case TokenEOF:
		return "EOF"
	case TokenError:
		return "error"
	default:
		return "unknown"
	}
}

// Token is a single lexer token.
type Token struct {
	Type  TokenType
	Value string
	Line  int
}

func (t Token) String() string {
	if t.Type == TokenIdent || t.Type == TokenString || t.Type == TokenError {
		return fmt.Sprintf("%s(%q)", t.Type, t.Value)
	}
	return t.Type.String()
}

// keywords are reserved only as the first token of a logical line.
var keywords = map[string]TokenType{
	"package": TokenPackage,
	"config":  TokenConfig,
	"option":  TokenOption,
	"list":    TokenList,
}

// Lexer tokenizes UCI configuration text. Statements are line-oriented,
// so newlines are emitted as tokens; runs of blank lines collapse into
// a single TokenNewline.
type Lexer struct {
	input       string
	pos         int
	line        int
	atLineStart bool
}

// NewLexer creates a new Lexer for the given input string.
func NewLexer(input string) *Lexer {
	return &Lexer{
		input:       input,
		line:        1,
		atLineStart: true,
	}
}

// Next returns the next token, advancing the position.
func (l *Lexer) Next() Token {
	l.skipBlank()

	if l.pos >= len(l.input) {
		return Token{Type: TokenEOF, Line: l.line}
	}

	ch := l.input[l.pos]
	line := l.line

	switch {
	case ch == '\n':
		l.advance()
		// Collapse following blank lines into this separator.
		for l.pos < len(l.input) {
			l.skipBlank()
			if l.pos < len(l.input) && l.input[l.pos] == '\n' {
				l.advance()
				continue
			}
			break
		}
		l.atLineStart = true
		return Token{Type: TokenNewline, Line: line}
	case ch == '#':
		return l.readComment(line)
	case ch == '\'' || ch == '"':
		l.atLineStart = false
		return l.readString(ch, line)
	default:
		return l.readWord(line)
	}
}

// Peek returns the next token without advancing.
func (l *Lexer) Peek() Token {
	savedPos := l.pos
	savedLine := l.line
	savedStart := l.atLineStart
	tok := l.Next()
	l.pos = savedPos
	l.line = savedLine
	l.atLineStart = savedStart
	return tok
}

func (l *Lexer) advance() {
	if l.pos < len(l.input) {
		if l.input[l.pos] == '\n' {
			l.line++
		}
		l.pos++
	}
}

// skipBlank consumes spaces, tabs and carriage returns, but not newlines.
func (l *Lexer) skipBlank() {
	for l.pos < len(l.input) {
		ch := l.input[l.pos]
		if ch == ' ' || ch == '\t' || ch == '\r' {
			l.pos++
			continue
		}
		break
	}
}

// readComment consumes "# ..." up to (not including) the newline.
func (l *Lexer) readComment(line int) Token {
	l.advance() // '#'
	start := l.pos
	for l.pos < len(l.input) && l.input[l.pos] != '\n' {
		l.advance()
	}
	return Token{Type: TokenComment, Value: l.input[start:l.pos], Line: line}
}

// readString consumes a quoted string. The closing quote must match the
// opening one. Backslash escapes are interpreted inside double quotes
// only; single-quoted text is literal up to the next single quote.
func (l *Lexer) readString(quote byte, line int) Token {
	l.advance() // opening quote
	var b strings.Builder
	for l.pos < len(l.input) {
		ch := l.input[l.pos]
		if ch == '\n' {
			break
		}
		if quote == '"' && ch == '\\' && l.pos+1 < len(l.input) {
			l.advance()
			switch l.input[l.pos] {
			case '"':
				b.WriteByte('"')
			case '\'':
				b.WriteByte('\'')
			case '\\':
				b.WriteByte('\\')
			default:
				b.WriteByte('\\')
				b.WriteByte(l.input[l.pos])
			}
			l.advance()
			continue
		}
		if ch == quote {
			l.advance()
			return Token{Type: TokenString, Value: b.String(), Line: line}
		}
		b.WriteByte(ch)
		l.advance()
	}
	return Token{Type: TokenError, Value: "unterminated quoted string", Line: line}
}

// readWord consumes an unquoted run of characters. At the start of a
// logical line the reserved keywords are recognized; anywhere else the
// same words lex as plain identifiers.
func (l *Lexer) readWord(line int) Token {
	start := l.pos
	for l.pos < len(l.input) {
		ch := l.input[l.pos]
		if ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n' || ch == '#' {
			break
		}
		l.pos++
	}
	word := l.input[start:l.pos]

	if l.atLineStart {
		l.atLineStart = false
		if typ, ok := keywords[word]; ok {
			return Token{Type: typ, Value: word, Line: line}
		}
	}
	l.atLineStart = false
	return Token{Type: TokenIdent, Value: word, Line: line}
}
