package fd

// Report is the full classification of one relation.
type Report struct {
	Relation      Relation  `json:"relation" yaml:"relation"`
	CandidateKeys []AttrSet `json:"candidate_keys" yaml:"candidate_keys"`
	Prime         AttrSet   `json:"prime" yaml:"prime"`
	NonPrime      AttrSet   `json:"non_prime" yaml:"non_prime"`
	NF2           Verdict   `json:"nf2" yaml:"nf2"`
	NF3           Verdict   `json:"nf3" yaml:"nf3"`
	BCNF          Verdict   `json:"bcnf" yaml:"bcnf"`
}

// BuildReport classifies rel with no resource limits.
func BuildReport(rel Relation) *Report {
	return buildReport(rel, CandidateKeys(rel.Attributes, rel.Dependencies))
}

// buildReport runs the checks in their fixed order: prime attributes, then
// 2NF, 3NF and BCNF, all against the same candidate keys.
func buildReport(rel Relation, keys []AttrSet) *Report {
	f := factsFor(rel.Attributes, rel.Dependencies, keys)

	return &Report{
		Relation:      rel,
		CandidateKeys: keys,
		Prime:         primeOf(keys),
		NonPrime:      f.nonPrime,
		NF2:           check2NF(f),
		NF3:           check3NF(f),
		BCNF:          checkBCNF(f),
	}
}

// Name returns the relation name.
func (r *Report) Name() string { return r.Relation.Name }

// Verdicts returns the three verdicts in check order.
func (r *Report) Verdicts() []Verdict {
	return []Verdict{r.NF2, r.NF3, r.BCNF}
}

// Satisfies reports whether the relation meets nf. Every relation is in 1NF.
func (r *Report) Satisfies(nf NormalForm) bool {
	switch nf {
	case NF1:
		return true
	case NF2:
		return r.NF2.Satisfied
	case NF3:
		return r.NF3.Satisfied
	case BCNF:
		return r.BCNF.Satisfied
	default:
		return false
	}
}

// Highest returns the strictest normal form such that it and every weaker
// form are satisfied.
func (r *Report) Highest() NormalForm {
	highest := NF1

	for _, v := range r.Verdicts() {
		if !v.Satisfied {
			break
		}

		highest = v.Form
	}

	return highest
}

// FirstViolation returns the violation of the weakest failing normal form, or
// nil when the relation is in BCNF.
func (r *Report) FirstViolation() *Violation {
	for _, v := range r.Verdicts() {
		if !v.Satisfied {
			return v.Violation
		}
	}

	return nil
}
