package nfcheck

import (
	"io"
	"strings"
	"unicode/utf8"

	"github.com/alecthomas/participle/v2/lexer"
)

// Token type constants - negative values as per participle convention.
const (
	tEOF        lexer.TokenType = lexer.EOF
	tComment    lexer.TokenType = -(iota + 2) //nolint:mnd // participle convention
	tText                                     // attribute or relation name
	tArrow                                    // ->
	tComma                                    // ,
	tLParen                                   // (
	tRParen                                   // )
	tWhitespace                               // spaces and tabs
)

// lineDefinition implements lexer.Definition for a single line of input.
type lineDefinition struct {
	symbols map[string]lexer.TokenType
}

// newLineLexer creates the lexer Definition for relation and dependency lines.
func newLineLexer() *lineDefinition {
	return &lineDefinition{
		symbols: map[string]lexer.TokenType{
			"EOF":        tEOF,
			"Comment":    tComment,
			"Text":       tText,
			"Arrow":      tArrow,
			"Comma":      tComma,
			"Whitespace": tWhitespace,
			"(":          tLParen,
			")":          tRParen,
		},
	}
}

// Symbols returns the mapping of symbol names to token types.
func (d *lineDefinition) Symbols() map[string]lexer.TokenType {
	return d.symbols
}

// Lex creates a new Lexer for the given reader.
//
//nolint:ireturn // Required by participle's lexer.Definition interface.
func (d *lineDefinition) Lex(filename string, r io.Reader) (lexer.Lexer, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	return d.LexString(filename, string(data))
}

// LexString implements lexer.StringDefinition.
//
//nolint:ireturn // Required by participle's lexer.StringDefinition interface.
func (d *lineDefinition) LexString(filename string, input string) (lexer.Lexer, error) {
	return newLexerState(filename, input), nil
}

// lexerState holds the state for lexing one line.
type lexerState struct {
	filename string
	input    string
	offset   int
	col      int
}

func newLexerState(filename, input string) *lexerState {
	return &lexerState{
		filename: filename,
		input:    input,
		col:      1,
	}
}

// Next returns the next token. It never fails: anything that is not
// punctuation, an arrow, a comment or whitespace is name text.
func (l *lexerState) Next() (lexer.Token, error) {
	if l.eof() {
		return lexer.EOFToken(l.pos()), nil
	}

	start := l.pos()
	r := l.peek()

	switch {
	case isSpace(r):
		for !l.eof() && isSpace(l.peek()) {
			l.advance()
		}

		return l.token(tWhitespace, start), nil

	case l.match("//"):
		l.offset = len(l.input)
		l.col += utf8.RuneCountInString(l.input[start.Offset:])

		return l.token(tComment, start), nil

	case l.match("->"):
		l.advance()
		l.advance()

		return l.token(tArrow, start), nil
	}

	switch r {
	case ',':
		l.advance()
		return l.token(tComma, start), nil
	case '(':
		l.advance()
		return l.token(tLParen, start), nil
	case ')':
		l.advance()
		return l.token(tRParen, start), nil
	}

	return l.scanText(start), nil
}

// scanText consumes a name. Inner runs of whitespace belong to the name;
// whitespace before a stop sequence does not.
func (l *lexerState) scanText(start lexer.Position) lexer.Token {
	for !l.eof() && !l.atStop(l.offset) {
		if isSpace(l.peek()) {
			end := l.offset
			for end < len(l.input) && isSpace(rune(l.input[end])) {
				end++
			}

			if end == len(l.input) || l.atStop(end) {
				break
			}
		}

		l.advance()
	}

	return l.token(tText, start)
}

// atStop reports whether a name must end before offset off.
func (l *lexerState) atStop(off int) bool {
	rest := l.input[off:]
	if rest == "" {
		return true
	}

	switch rest[0] {
	case ',', '(', ')', '\n', '\r':
		return true
	}

	return strings.HasPrefix(rest, "->") || strings.HasPrefix(rest, "//")
}

func (l *lexerState) pos() lexer.Position {
	return lexer.Position{
		Filename: l.filename,
		Offset:   l.offset,
		Line:     1,
		Column:   l.col,
	}
}

func (l *lexerState) eof() bool {
	return l.offset >= len(l.input)
}

func (l *lexerState) peek() rune {
	if l.eof() {
		return 0
	}

	r, _ := utf8.DecodeRuneInString(l.input[l.offset:])

	return r
}

func (l *lexerState) advance() {
	if l.eof() {
		return
	}

	_, size := utf8.DecodeRuneInString(l.input[l.offset:])
	l.offset += size
	l.col++
}

func (l *lexerState) match(s string) bool {
	return strings.HasPrefix(l.input[l.offset:], s)
}

func (l *lexerState) token(typ lexer.TokenType, start lexer.Position) lexer.Token {
	return lexer.Token{
		Type:  typ,
		Value: l.input[start.Offset:l.offset],
		Pos:   start,
	}
}

// tokens lexes a whole line, dropping whitespace.
func (l *lexerState) tokens() []lexer.Token {
	var out []lexer.Token

	for {
		tok, _ := l.Next()
		if tok.EOF() {
			return out
		}

		if tok.Type != tWhitespace {
			out = append(out, tok)
		}
	}
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\r' || r == '\n'
}
