package lexer

import (
	"unicode/utf8"

	"go.pathkit.dev/jsonpath/internal/syntax"
)

// Lex tokenizes a full JSONPath query string, returning tokens ending
// with an EOF token. Scanning is byte-indexed for the ASCII-heavy
// grammar (grounded on internal/rq/expr/lexer.go's pos-walking style),
// falling back to rune decoding only for unquoted member names, where
// the grammar allows non-ASCII. String literals are scanned byte by
// byte, since their delimiters and escapes are ASCII.
func Lex(input string) ([]Token, error) {
	l := &lexState{input: input, tokens: make([]Token, 0, len(input)/2+1)}
	if err := l.run(); err != nil {
		return nil, err
	}
	return l.tokens, nil
}

type lexState struct {
	input  string
	pos    int
	tokens []Token
}

func (l *lexState) run() error {
	for l.pos < len(l.input) {
		c := l.input[l.pos]

		if c == ' ' || c == '\t' || c == '\n' || c == '\r' {
			l.pos++
			continue
		}

		switch {
		case c == '$':
			l.emit(Root, l.pos, 1)
		case c == '@':
			l.emit(Current, l.pos, 1)
		case c == '.':
			if l.peekByte(1) == '.' {
				l.emit(DotDot, l.pos, 2)
			} else {
				l.emit(Dot, l.pos, 1)
			}
		case c == '[':
			l.emit(LBracket, l.pos, 1)
		case c == ']':
			l.emit(RBracket, l.pos, 1)
		case c == '(':
			l.emit(LParen, l.pos, 1)
		case c == ')':
			l.emit(RParen, l.pos, 1)
		case c == ',':
			l.emit(Comma, l.pos, 1)
		case c == ':':
			l.emit(Colon, l.pos, 1)
		case c == '?':
			l.emit(Question, l.pos, 1)
		case c == '*':
			l.emit(Star, l.pos, 1)
		case c == '=':
			if l.peekByte(1) == '=' {
				l.emit(Eq, l.pos, 2)
			} else {
				return syntax.Errorf(l.pos, "unexpected '=', expected '=='")
			}
		case c == '!':
			if l.peekByte(1) == '=' {
				l.emit(Ne, l.pos, 2)
			} else {
				l.emit(Not, l.pos, 1)
			}
		case c == '<':
			if l.peekByte(1) == '=' {
				l.emit(Le, l.pos, 2)
			} else {
				l.emit(Lt, l.pos, 1)
			}
		case c == '>':
			if l.peekByte(1) == '=' {
				l.emit(Ge, l.pos, 2)
			} else {
				l.emit(Gt, l.pos, 1)
			}
		case c == '&':
			if l.peekByte(1) == '&' {
				l.emit(And, l.pos, 2)
			} else {
				return syntax.Errorf(l.pos, "unexpected '&', expected '&&'")
			}
		case c == '|':
			if l.peekByte(1) == '|' {
				l.emit(Or, l.pos, 2)
			} else {
				return syntax.Errorf(l.pos, "unexpected '|', expected '||'")
			}
		case c == '\'' || c == '"':
			if err := l.lexString(); err != nil {
				return err
			}
		case c == '-' || isDigit(c):
			if err := l.lexNumber(); err != nil {
				return err
			}
		default:
			if err := l.lexIdentOrKeyword(); err != nil {
				return err
			}
		}
	}

	l.tokens = append(l.tokens, Token{Kind: EOF, Pos: len(l.input)})
	return nil
}

func (l *lexState) emit(kind Kind, pos, width int) {
	l.tokens = append(l.tokens, Token{Kind: kind, Pos: pos, Text: l.input[pos : pos+width]})
	l.pos = pos + width
}

func (l *lexState) peekByte(offset int) byte {
	if l.pos+offset >= len(l.input) {
		return 0
	}
	return l.input[l.pos+offset]
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// lexNumber scans JSON number syntax: optional leading '-', no leading
// zeros except a bare '0', optional fraction, optional exponent.
func (l *lexState) lexNumber() error {
	start := l.pos
	pos := start

	if l.input[pos] == '-' {
		pos++
		if pos >= len(l.input) || !isDigit(l.input[pos]) {
			return syntax.Errorf(start, "invalid number literal")
		}
	}

	digitsStart := pos
	if l.input[pos] == '0' {
		pos++
	} else {
		for pos < len(l.input) && isDigit(l.input[pos]) {
			pos++
		}
	}
	if pos == digitsStart {
		return syntax.Errorf(start, "invalid number literal")
	}

	if pos < len(l.input) && l.input[pos] == '.' {
		pos++
		fracStart := pos
		for pos < len(l.input) && isDigit(l.input[pos]) {
			pos++
		}
		if pos == fracStart {
			return syntax.Errorf(start, "invalid number literal: missing digits after '.'")
		}
	}

	if pos < len(l.input) && (l.input[pos] == 'e' || l.input[pos] == 'E') {
		pos++
		if pos < len(l.input) && (l.input[pos] == '+' || l.input[pos] == '-') {
			pos++
		}
		expStart := pos
		for pos < len(l.input) && isDigit(l.input[pos]) {
			pos++
		}
		if pos == expStart {
			return syntax.Errorf(start, "invalid number literal: missing digits in exponent")
		}
	}

	l.tokens = append(l.tokens, Token{Kind: Number, Pos: start, Text: l.input[start:pos]})
	l.pos = pos
	return nil
}

// lexString scans a quoted string literal, preserving the surrounding
// quote characters in Text so the parser can apply the shared unescape
// helper. It tracks escapes only enough to find the matching unescaped
// closing quote; it does not validate escape contents here.
func (l *lexState) lexString() error {
	start := l.pos
	quote := l.input[start]
	pos := start + 1

	for pos < len(l.input) {
		c := l.input[pos]
		if c == '\\' {
			pos += 2
			continue
		}
		if c == quote {
			pos++
			l.tokens = append(l.tokens, Token{Kind: String, Pos: start, Text: l.input[start:pos]})
			l.pos = pos
			return nil
		}
		pos++
	}

	return syntax.Errorf(start, "unterminated string literal")
}

// lexIdentOrKeyword scans true/false/null, unquoted MemberNames, and
// FunctionNames (a lower-case name immediately followed by '(').
// MemberName start/continue characters follow §4.1: ASCII letters,
// '_', digits (continue only), and any Unicode code point >= U+0080.
func (l *lexState) lexIdentOrKeyword() error {
	start := l.pos
	r, size := utf8.DecodeRuneInString(l.input[l.pos:])
	if r == utf8.RuneError && size <= 1 {
		return syntax.Errorf(start, "invalid character %q", l.input[start])
	}
	if !isNameStart(r) {
		return syntax.Errorf(start, "unexpected character %q", string(r))
	}

	pos := start + size
	for pos < len(l.input) {
		r, size = utf8.DecodeRuneInString(l.input[pos:])
		if !isNameContinue(r) {
			break
		}
		pos += size
	}

	text := l.input[start:pos]

	// Keywords require a word boundary: the whole identifier must match
	// exactly, which the scan above already enforces (continuation runs
	// to the end of identifier characters).
	switch text {
	case "true":
		l.tokens = append(l.tokens, Token{Kind: True, Pos: start, Text: text})
		l.pos = pos
		return nil
	case "false":
		l.tokens = append(l.tokens, Token{Kind: False, Pos: start, Text: text})
		l.pos = pos
		return nil
	case "null":
		l.tokens = append(l.tokens, Token{Kind: Null, Pos: start, Text: text})
		l.pos = pos
		return nil
	}

	if isFunctionName(text) && pos < len(l.input) && l.input[pos] == '(' {
		l.tokens = append(l.tokens, Token{Kind: FuncName, Pos: start, Text: text})
		l.pos = pos
		return nil
	}

	l.tokens = append(l.tokens, Token{Kind: Name, Pos: start, Text: text})
	l.pos = pos
	return nil
}

func isNameStart(r rune) bool {
	switch {
	case r == '_':
		return true
	case r >= 'A' && r <= 'Z':
		return true
	case r >= 'a' && r <= 'z':
		return true
	case r >= 0x80 && !isSurrogate(r):
		return true
	default:
		return false
	}
}

func isNameContinue(r rune) bool {
	if r >= '0' && r <= '9' {
		return true
	}
	return isNameStart(r)
}

func isSurrogate(r rune) bool {
	return r >= 0xD800 && r <= 0xDFFF
}

// isFunctionName reports whether text matches [a-z][a-z0-9_]*, the
// grammar for function names, independent of the '(' lookahead.
func isFunctionName(text string) bool {
	if len(text) == 0 {
		return false
	}
	if text[0] < 'a' || text[0] > 'z' {
		return false
	}
	for i := 1; i < len(text); i++ {
		c := text[i]
		if !(c >= 'a' && c <= 'z' || c >= '0' && c <= '9' || c == '_') {
			return false
		}
	}
	return true
}
