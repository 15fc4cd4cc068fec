package runner

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rlch/nfcheck"
	"github.com/rlch/nfcheck/fd"
)

const enrolmentSource = `
Enrolment(Student, Course, Grade, Lecturer)
Student, Course -> Grade
Course -> Lecturer

Student(Id, Name)
Id -> Name
`

func parse(t *testing.T, filename, src string) *nfcheck.Schema {
	t.Helper()

	schema, err := nfcheck.Parse(filename, []byte(src))
	require.NoError(t, err)

	return schema
}

func report(t *testing.T, src string) *fd.Report {
	t.Helper()

	schema := parse(t, "", src)
	require.Len(t, schema.Relations, 1)

	return fd.BuildReport(schema.Relations[0].Relation())
}

// recordingHandler keeps every event it sees.
type recordingHandler struct {
	mu     sync.Mutex
	events []Event
	errs   []string
}

func (h *recordingHandler) Event(_ context.Context, event Event, _ *Result) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.events = append(h.events, event)

	return nil
}

func (h *recordingHandler) Err(text string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.errs = append(h.errs, text)

	return nil
}

// terminal returns "relation:action" for each terminal event.
func (h *recordingHandler) terminal() []string {
	h.mu.Lock()
	defer h.mu.Unlock()

	var out []string

	for _, e := range h.events {
		if e.Action.IsTerminal() {
			out = append(out, e.Relation+":"+string(e.Action))
		}
	}

	return out
}
