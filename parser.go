package nfcheck

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// maxLineLength bounds a single input line.
const maxLineLength = 1 << 20

// lineLexer is the custom lexer shared by the header and dependency grammars.
var lineLexer = newLineLexer()

var (
	headerParser = participle.MustBuild[RelationDecl](
		participle.Lexer(lineLexer),
		participle.Elide("Whitespace", "Comment"),
	)

	dependencyParser = participle.MustBuild[DependencyDecl](
		participle.Lexer(lineLexer),
		participle.Elide("Whitespace", "Comment"),
	)
)

// Parse parses a whole input and returns its relations in declaration order.
func Parse(filename string, data []byte) (*Schema, error) {
	schema := &Schema{Filename: filename}

	f := newLineFolder(filename, func(r *RelationDecl) error {
		schema.Relations = append(schema.Relations, r)
		return nil
	})

	if err := f.fold(bytes.NewReader(data)); err != nil {
		return nil, err
	}

	schema.TrailingComments = f.pending

	return schema, nil
}

// ParseReader reads relations from r and calls emit for each one as soon as
// it is complete: when the next header is seen, or at end of input. An error
// from emit stops parsing and is returned as is.
func ParseReader(filename string, r io.Reader, emit func(*RelationDecl) error) error {
	return newLineFolder(filename, emit).fold(r)
}

// lineFolder is the parser state carried from one line to the next.
type lineFolder struct {
	filename string
	emit     func(*RelationDecl) error

	// current is the relation whose dependencies are being collected.
	current *RelationDecl
	// pending holds comment lines waiting for the next declaration.
	pending []string

	line   int
	offset int
	// advance is the raw length of the last scanned line, terminator included.
	advance int
}

func newLineFolder(filename string, emit func(*RelationDecl) error) *lineFolder {
	return &lineFolder{filename: filename, emit: emit}
}

func (f *lineFolder) fold(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineLength)
	scanner.Split(f.scanLines)

	for scanner.Scan() {
		f.line++

		text := scanner.Text()
		if err := f.step(text); err != nil {
			return err
		}

		f.offset += f.advance
	}

	if err := scanner.Err(); err != nil {
		return err
	}

	return f.finish()
}

// scanLines is bufio.ScanLines, remembering how many bytes the line used so
// offsets stay right on CRLF input.
func (f *lineFolder) scanLines(data []byte, atEOF bool) (int, []byte, error) {
	advance, token, err := bufio.ScanLines(data, atEOF)
	f.advance = advance

	return advance, token, err
}

// step consumes one line.
func (f *lineFolder) step(text string) error {
	var (
		significant []lexer.Token
		comment     string
	)

	for _, tok := range newLexerState(f.filename, text).tokens() {
		if tok.Type == tComment {
			comment = strings.TrimSpace(tok.Value)
			continue
		}

		significant = append(significant, tok)
	}

	switch {
	case len(significant) == 0:
		if comment != "" {
			f.pending = append(f.pending, comment)
		}

		return nil

	case hasToken(significant, tLParen):
		return f.header(text, comment)

	default:
		return f.dependency(text, comment, significant[0].Pos)
	}
}

func (f *lineFolder) header(text, comment string) error {
	decl, err := headerParser.ParseString(f.filename, text)
	if err != nil {
		return f.errorf(text, ErrMalformedHeader, err)
	}

	if err := f.flush(); err != nil {
		return err
	}

	f.rebase(&decl.NodeMeta)

	for _, a := range decl.Attributes {
		f.rebase(&a.NodeMeta)
	}

	decl.LeadingComments = f.takePending()
	decl.TrailingComment = comment
	f.current = decl

	return nil
}

func (f *lineFolder) dependency(text, comment string, first lexer.Position) error {
	if f.current == nil {
		return &ParseError{
			Filename: f.filename,
			Line:     f.line,
			Column:   first.Column,
			Text:     text,
			Kind:     ErrDependencyBeforeRelation,
		}
	}

	decl, err := dependencyParser.ParseString(f.filename, text)
	if err != nil {
		return f.errorf(text, ErrMalformedDependency, err)
	}

	f.rebase(&decl.NodeMeta)

	for _, a := range decl.Refs() {
		f.rebase(&a.NodeMeta)
	}

	decl.LeadingComments = f.takePending()
	decl.TrailingComment = comment
	f.current.Dependencies = append(f.current.Dependencies, decl)

	return nil
}

// finish emits the last relation, if any.
func (f *lineFolder) finish() error {
	return f.flush()
}

func (f *lineFolder) flush() error {
	if f.current == nil {
		return nil
	}

	r := f.current
	f.current = nil

	return f.emit(r)
}

func (f *lineFolder) takePending() []string {
	p := f.pending
	f.pending = nil

	return p
}

// rebase moves a position produced by the single-line lexer onto the file.
func (f *lineFolder) rebase(n *NodeMeta) {
	n.Pos.Line = f.line
	n.Pos.Offset += f.offset
	n.EndPos.Line = f.line
	n.EndPos.Offset += f.offset
}

func (f *lineFolder) errorf(text string, kind error, err error) *ParseError {
	column := 1

	var perr participle.Error
	if errors.As(err, &perr) {
		column = perr.Position().Column
		err = errors.New(perr.Message())
	}

	return &ParseError{
		Filename: f.filename,
		Line:     f.line,
		Column:   column,
		Text:     text,
		Kind:     kind,
		Err:      err,
	}
}

func hasToken(tokens []lexer.Token, typ lexer.TokenType) bool {
	for _, t := range tokens {
		if t.Type == typ {
			return true
		}
	}

	return false
}
