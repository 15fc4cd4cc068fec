package nfcheck

import (
	"strings"
)

// Format renders a schema back into source form, keeping comments.
// Headers are written as "Name(A, B)", dependencies as "A, B -> C", and
// relations are separated by one blank line.
func Format(s *Schema) string {
	var b strings.Builder

	f := &formatter{b: &b}
	f.formatSchema(s)

	out := strings.TrimSpace(b.String())
	if out == "" {
		return ""
	}

	return out + "\n"
}

type formatter struct {
	b *strings.Builder
}

func (f *formatter) write(s string) {
	f.b.WriteString(s)
}

func (f *formatter) blankLine() {
	f.write("\n")
}

func (f *formatter) formatSchema(s *Schema) {
	for i, r := range s.Relations {
		if i > 0 {
			f.blankLine()
		}

		f.formatRelation(r)
	}

	if len(s.TrailingComments) > 0 {
		if len(s.Relations) > 0 {
			f.blankLine()
		}

		f.comments(s.TrailingComments)
	}
}

func (f *formatter) formatRelation(r *RelationDecl) {
	f.comments(r.LeadingComments)
	f.write(r.Name)
	f.write("(")
	f.write(strings.Join(r.AttributeNames(), ", "))
	f.write(")")
	f.trailing(r.TrailingComment)

	for _, d := range r.Dependencies {
		f.comments(d.LeadingComments)
		f.write(FormatDependency(d))
		f.trailing(d.TrailingComment)
	}
}

func (f *formatter) comments(lines []string) {
	for _, c := range lines {
		f.write(c)
		f.write("\n")
	}
}

func (f *formatter) trailing(comment string) {
	if comment != "" {
		f.write(" ")
		f.write(comment)
	}

	f.write("\n")
}

// FormatDependency renders one dependency as written, keeping source order.
func FormatDependency(d *DependencyDecl) string {
	return strings.Join(refNames(d.LHS), ", ") + " -> " + strings.Join(refNames(d.RHS), ", ")
}
