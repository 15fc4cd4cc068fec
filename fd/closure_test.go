package fd_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/rlch/nfcheck/fd"
)

func TestClosure(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		x    fd.AttrSet
		deps []fd.Dependency
		want fd.AttrSet
	}{
		{
			name: "no dependencies",
			x:    set("AB"),
			want: set("AB"),
		},
		{
			name: "empty start",
			x:    set(""),
			deps: []fd.Dependency{dep("A", "B")},
			want: set(""),
		},
		{
			name: "single step",
			x:    set("A"),
			deps: []fd.Dependency{dep("A", "BC")},
			want: set("ABC"),
		},
		{
			name: "chain declared backwards",
			x:    set("A"),
			deps: []fd.Dependency{dep("C", "D"), dep("B", "C"), dep("A", "B")},
			want: set("ABCD"),
		},
		{
			name: "composite left side needs both",
			x:    set("A"),
			deps: []fd.Dependency{dep("AB", "C")},
			want: set("A"),
		},
		{
			name: "attributes outside the start set are added",
			x:    set("A"),
			deps: []fd.Dependency{dep("A", "Z")},
			want: set("AZ"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := fd.Closure(tt.x, tt.deps)
			if diff := cmp.Diff(tt.want, got, cmpSets); diff != "" {
				t.Errorf("Closure(%s) mismatch (-want +got):\n%s", tt.x, diff)
			}
		})
	}
}

func TestClosure_Properties(t *testing.T) {
	t.Parallel()

	for _, f := range fixtures {
		t.Run(f.name, func(t *testing.T) {
			t.Parallel()

			all := subsets(f.r)

			for _, x := range all {
				cx := fd.Closure(x, f.deps)

				if !x.SubsetOf(cx) {
					t.Errorf("closure(%s) = %s does not contain its input", x, cx)
				}

				if again := fd.Closure(cx, f.deps); !again.Equal(cx) {
					t.Errorf("closure not idempotent for %s: %s then %s", x, cx, again)
				}

				for _, y := range all {
					if x.SubsetOf(y) && !cx.SubsetOf(fd.Closure(y, f.deps)) {
						t.Errorf("closure not monotone: %s ⊆ %s", x, y)
					}
				}
			}
		})
	}
}

func TestIsSuperkey(t *testing.T) {
	t.Parallel()

	r := set("ABC")
	deps := []fd.Dependency{dep("A", "B"), dep("B", "C")}

	if !fd.IsSuperkey(set("A"), r, deps) {
		t.Error("A should be a superkey")
	}

	if fd.IsSuperkey(set("B"), r, deps) {
		t.Error("B should not be a superkey")
	}

	if fd.IsSuperkey(set("AZ"), r, deps) {
		t.Error("a set with an undeclared attribute is not a superkey")
	}
}
