// Package nfcheck parses relation schemas with functional dependencies.
//
// The input is line oriented. A header line opens a relation and every
// following dependency line belongs to it:
//
//	Enrolment(Student, Course, Grade, Lecturer)
//	Student, Course -> Grade
//	Course -> Lecturer
//
// Attribute names are trimmed but may contain inner spaces. A "//" starts a
// comment that runs to the end of the line.
package nfcheck

import (
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/rlch/nfcheck/fd"
)

// NodeMeta contains position information common to all AST nodes.
// Participle populates these fields during parsing; the line fold rebases
// them onto the source file.
type NodeMeta struct {
	Pos    lexer.Position `parser:""`
	EndPos lexer.Position `parser:""`
}

// Span returns the source span of this node.
func (n *NodeMeta) Span() Span { return Span{Start: n.Pos, End: n.EndPos} }

// CommentMeta holds comments attached to a node.
type CommentMeta struct {
	LeadingComments []string `parser:""`
	TrailingComment string   `parser:""`
}

// Span represents a range in source code.
type Span struct {
	Start lexer.Position
	End   lexer.Position
}

// Node is implemented by all AST nodes.
type Node interface {
	Span() Span
}

// Schema is a parsed input file: relations in the order they were declared.
type Schema struct {
	Filename  string
	Relations []*RelationDecl
	// TrailingComments are comments after the last declaration.
	TrailingComments []string
}

// RelationDecl is a relation header together with the dependencies that
// followed it.
type RelationDecl struct {
	NodeMeta
	CommentMeta

	Name       string     `parser:"@Text '('"`
	Attributes []*AttrRef `parser:"( @@ ( ',' @@ )* )? ')'"`

	// Dependencies is filled by the line fold, not the grammar.
	Dependencies []*DependencyDecl `parser:""`
}

// DependencyDecl is a functional dependency line: A, B -> C.
type DependencyDecl struct {
	NodeMeta
	CommentMeta

	LHS []*AttrRef `parser:"@@ ( ',' @@ )* Arrow"`
	RHS []*AttrRef `parser:"@@ ( ',' @@ )*"`
}

// AttrRef is one attribute name as written in the source.
type AttrRef struct {
	NodeMeta

	Name string `parser:"@Text"`
}

// AttributeNames returns the declared attribute names in source order,
// duplicates included.
func (r *RelationDecl) AttributeNames() []string {
	return refNames(r.Attributes)
}

// AttributeSet returns the declared attributes as a set.
func (r *RelationDecl) AttributeSet() fd.AttrSet {
	return fd.Attrs(r.AttributeNames()...)
}

// Relation converts the declaration into the model used by package fd.
func (r *RelationDecl) Relation() fd.Relation {
	deps := make([]fd.Dependency, len(r.Dependencies))
	for i, d := range r.Dependencies {
		deps[i] = d.Dependency()
	}

	return fd.Relation{
		Name:         r.Name,
		Attributes:   r.AttributeSet(),
		Dependencies: deps,
	}
}

// Dependency converts the declaration into the model used by package fd.
func (d *DependencyDecl) Dependency() fd.Dependency {
	return fd.NewDependency(refNames(d.LHS), refNames(d.RHS))
}

// Refs returns the attribute references of both sides, left first.
func (d *DependencyDecl) Refs() []*AttrRef {
	refs := make([]*AttrRef, 0, len(d.LHS)+len(d.RHS))
	refs = append(refs, d.LHS...)

	return append(refs, d.RHS...)
}

// Model converts every declaration in the schema, in declaration order.
func (s *Schema) Model() []fd.Relation {
	out := make([]fd.Relation, len(s.Relations))
	for i, r := range s.Relations {
		out[i] = r.Relation()
	}

	return out
}

func refNames(refs []*AttrRef) []string {
	names := make([]string, len(refs))
	for i, ref := range refs {
		names[i] = ref.Name
	}

	return names
}
