package augment

// Outcome is what processing a path did to the model.
type Outcome string

const (
	OutcomeOperationCreated Outcome = "operationCreated"
	OutcomeOperationExists  Outcome = "operationExists"
	OutcomeAnnotated        Outcome = "annotated"
	OutcomeInconsistent     Outcome = "inconsistent"
	OutcomeIgnored          Outcome = "ignored"
	OutcomeFailed           Outcome = "failed"
)

// Skipped reports whether the outcome left the model unchanged without an error.
func (o Outcome) Skipped() bool {
	return o == OutcomeInconsistent || o == OutcomeIgnored
}

// PathOutcome records how one generic path was handled.
type PathOutcome struct {
	Path           string
	Classification string
	Outcome        Outcome
	Verbs          []string
	Error          string
}

// Report summarizes a run.
type Report struct {
	Outcomes  []PathOutcome
	Processed int
	Failed    int
	Skipped   int
}

func (r *Report) add(o PathOutcome) {
	r.Outcomes = append(r.Outcomes, o)
	switch {
	case o.Outcome == OutcomeFailed:
		r.Failed++
	case o.Outcome.Skipped():
		r.Skipped++
	default:
		r.Processed++
	}
}

// Failures returns the outcomes of paths that failed to resolve.
func (r *Report) Failures() []PathOutcome {
	var failed []PathOutcome
	for _, o := range r.Outcomes {
		if o.Outcome == OutcomeFailed {
			failed = append(failed, o)
		}
	}
	return failed
}
