package fd_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/rlch/nfcheck/fd"
)

func TestBuildReport_Scenarios(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		r        fd.AttrSet
		deps     []fd.Dependency
		keys     []fd.AttrSet
		prime    fd.AttrSet
		nonPrime fd.AttrSet
		nf2      bool
		nf3      bool
		bcnf     bool
		highest  fd.NormalForm
	}{
		{
			name:     "single key determines everything",
			r:        set("ABC"),
			deps:     []fd.Dependency{dep("A", "BC")},
			keys:     []fd.AttrSet{set("A")},
			prime:    set("A"),
			nonPrime: set("BC"),
			nf2:      true, nf3: true, bcnf: true,
			highest: fd.BCNF,
		},
		{
			name:     "left side reached through a chain",
			r:        set("ABC"),
			deps:     []fd.Dependency{dep("AB", "C"), dep("A", "B")},
			keys:     []fd.AttrSet{set("A")},
			prime:    set("A"),
			nonPrime: set("BC"),
			nf2:      true, nf3: true, bcnf: true,
			highest: fd.BCNF,
		},
		{
			name:     "transitive dependency",
			r:        set("ABC"),
			deps:     []fd.Dependency{dep("A", "B"), dep("B", "C")},
			keys:     []fd.AttrSet{set("A")},
			prime:    set("A"),
			nonPrime: set("BC"),
			nf2:      true, nf3: false, bcnf: false,
			highest: fd.NF2,
		},
		{
			name:     "prime right side escapes 3NF but not BCNF",
			r:        set("ABCD"),
			deps:     []fd.Dependency{dep("AB", "CD"), dep("C", "A")},
			keys:     []fd.AttrSet{set("AB"), set("BC")},
			prime:    set("ABC"),
			nonPrime: set("D"),
			nf2:      true, nf3: true, bcnf: false,
			highest: fd.NF3,
		},
		{
			name:     "partial dependency on a key attribute",
			r:        set("ABCDEF"),
			deps:     []fd.Dependency{dep("AB", "CDEF"), dep("A", "C"), dep("D", "E")},
			keys:     []fd.AttrSet{set("AB")},
			prime:    set("AB"),
			nonPrime: set("CDEF"),
			nf2:      false, nf3: false, bcnf: false,
			highest: fd.NF1,
		},
		{
			name:     "empty relation",
			r:        set(""),
			keys:     []fd.AttrSet{set("")},
			prime:    set(""),
			nonPrime: set(""),
			nf2:      true, nf3: true, bcnf: true,
			highest: fd.BCNF,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			report := fd.BuildReport(fd.Relation{Name: "R", Attributes: tt.r, Dependencies: tt.deps})

			if diff := cmp.Diff(tt.keys, report.CandidateKeys, cmpSets); diff != "" {
				t.Errorf("candidate keys mismatch (-want +got):\n%s", diff)
			}

			if diff := cmp.Diff(tt.prime, report.Prime, cmpSets); diff != "" {
				t.Errorf("prime mismatch (-want +got):\n%s", diff)
			}

			if diff := cmp.Diff(tt.nonPrime, report.NonPrime, cmpSets); diff != "" {
				t.Errorf("non-prime mismatch (-want +got):\n%s", diff)
			}

			got := []bool{report.NF2.Satisfied, report.NF3.Satisfied, report.BCNF.Satisfied}
			if diff := cmp.Diff([]bool{tt.nf2, tt.nf3, tt.bcnf}, got); diff != "" {
				t.Errorf("verdicts [2NF 3NF BCNF] mismatch (-want +got):\n%s", diff)
			}

			if report.Highest() != tt.highest {
				t.Errorf("Highest() = %s, want %s", report.Highest(), tt.highest)
			}

			for _, v := range report.Verdicts() {
				if v.Satisfied != (v.Violation == nil) {
					t.Errorf("%s: satisfied=%v but violation=%v", v.Form, v.Satisfied, v.Violation)
				}
			}
		})
	}
}

func TestPredicates_Violations(t *testing.T) {
	t.Parallel()

	r := set("ABCDE")
	deps := []fd.Dependency{dep("AB", "C"), dep("C", "D"), dep("D", "E"), dep("A", "E")}

	ok, v := fd.Is2NF(r, deps)
	if ok {
		t.Fatal("expected 2NF violation")
	}

	want := &fd.Violation{Form: fd.NF2, Dependency: dep("A", "E"), Index: 3, Attribute: "E"}
	if diff := cmp.Diff(want, v, cmpSets); diff != "" {
		t.Errorf("2NF violation mismatch (-want +got):\n%s", diff)
	}

	ok, v = fd.Is3NF(r, deps)
	if ok {
		t.Fatal("expected 3NF violation")
	}

	want = &fd.Violation{Form: fd.NF3, Dependency: dep("C", "D"), Index: 1, Attribute: "D"}
	if diff := cmp.Diff(want, v, cmpSets); diff != "" {
		t.Errorf("3NF violation mismatch (-want +got):\n%s", diff)
	}

	ok, v = fd.IsBCNF(r, deps)
	if ok {
		t.Fatal("expected BCNF violation")
	}

	want = &fd.Violation{Form: fd.BCNF, Dependency: dep("C", "D"), Index: 1}
	if diff := cmp.Diff(want, v, cmpSets); diff != "" {
		t.Errorf("BCNF violation mismatch (-want +got):\n%s", diff)
	}

	if got, want := v.Reason(), "C -> D breaks BCNF requirements ({C} is not a superkey)"; got != want {
		t.Errorf("Reason() = %q, want %q", got, want)
	}
}

func TestPredicates_FirstNonPrimeAttribute(t *testing.T) {
	t.Parallel()

	ok, v := fd.Is3NF(set("ABCD"), []fd.Dependency{dep("A", "B"), dep("B", "DC")})
	if ok {
		t.Fatal("expected 3NF violation")
	}

	if v.Attribute != "C" {
		t.Errorf("Attribute = %q, want C", v.Attribute)
	}

	if got, want := v.Reason(), "B -> C, D breaks 3NF requirements (C is non-prime)"; got != want {
		t.Errorf("Reason() = %q, want %q", got, want)
	}
}

func TestPredicates_Implication(t *testing.T) {
	t.Parallel()

	for _, f := range fixtures {
		t.Run(f.name, func(t *testing.T) {
			t.Parallel()

			nf2, _ := fd.Is2NF(f.r, f.deps)
			nf3, _ := fd.Is3NF(f.r, f.deps)
			bcnf, _ := fd.IsBCNF(f.r, f.deps)

			if bcnf && !nf3 {
				t.Error("BCNF holds but 3NF does not")
			}

			if nf3 && !nf2 {
				t.Error("3NF holds but 2NF does not")
			}
		})
	}
}

// A superkey made only of prime attributes that is not itself a candidate key
// is not exempt from the 2NF rule, while 3NF and BCNF accept it.
func TestPredicates_PrimeSuperkeyLeftSide(t *testing.T) {
	t.Parallel()

	report := fd.BuildReport(fd.Relation{
		Name:         "R",
		Attributes:   set("ABC"),
		Dependencies: []fd.Dependency{dep("A", "B"), dep("B", "A"), dep("AB", "C")},
	})

	if report.NF2.Satisfied {
		t.Error("expected 2NF violation from AB -> C")
	}

	if !report.NF3.Satisfied || !report.BCNF.Satisfied {
		t.Errorf("expected 3NF and BCNF to hold, got 3NF=%v BCNF=%v", report.NF3.Satisfied, report.BCNF.Satisfied)
	}

	if report.Highest() != fd.NF1 {
		t.Errorf("Highest() = %s, want 1NF", report.Highest())
	}

	if v := report.FirstViolation(); v == nil || v.Form != fd.NF2 {
		t.Errorf("FirstViolation() = %v, want the 2NF violation", v)
	}
}

func TestParseNormalForm(t *testing.T) {
	t.Parallel()

	for _, s := range []string{"1NF", "2nf", "3NF", "bcnf"} {
		nf, err := fd.ParseNormalForm(s)
		if err != nil {
			t.Errorf("ParseNormalForm(%q): %v", s, err)
		}

		if nf.String() == "" {
			t.Errorf("ParseNormalForm(%q) gave unnamed form", s)
		}
	}

	if _, err := fd.ParseNormalForm("4NF"); err == nil {
		t.Error("expected error for 4NF")
	}
}
