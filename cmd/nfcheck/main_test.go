package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"
)

const school = `// school
Enrolment(Student, Course, Grade, Lecturer)
Student, Course -> Grade
Course -> Lecturer

Student(Id, Name)
Id -> Name
`

type runResult struct {
	stdout string
	stderr string
	code   int
}

// run executes the app in-process. Each test passes --config so the
// environment and the working directory do not leak in.
func run(t *testing.T, stdin string, args ...string) runResult {
	t.Helper()

	var stdout, stderr bytes.Buffer

	app := newApp(strings.NewReader(stdin), &stdout, &stderr)
	app.ExitErrHandler = func(context.Context, *cli.Command, error) {}

	err := app.Run(context.Background(), append([]string{"nfcheck"}, args...))

	code := 0

	var exit cli.ExitCoder

	switch {
	case errors.As(err, &exit):
		code = exit.ExitCode()
	case err != nil:
		t.Fatalf("Run() error: %v", err)
	}

	return runResult{stdout: stdout.String(), stderr: stderr.String(), code: code}
}

func writeTemp(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func emptyConfig(t *testing.T) string {
	t.Helper()

	return writeTemp(t, t.TempDir(), ".nfcheck.yaml", "color: never\n")
}

func TestCheck_Text(t *testing.T) {
	t.Parallel()

	path := writeTemp(t, t.TempDir(), "school.fd", school)

	res := run(t, "", "--config", emptyConfig(t), "check", path)

	assert.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "\t\tEnrolment\n")
	assert.Contains(t, res.stdout, "Candidate keys:\n\t{Course, Student}\n")
	assert.Contains(t, res.stdout, "2NF status:\n\tCourse -> Lecturer breaks 2NF requirements (Lecturer is non-prime)\n")
	assert.Contains(t, res.stdout, "BCNF status:\n\tThe relation is in BCNF\n")
	assert.Contains(t, res.stdout, "PASS 2 relations: 1 BCNF, 0 3NF, 0 2NF, 1 1NF")
	assert.NotContains(t, res.stdout, "\x1b[")
}

func TestCheck_Stdin(t *testing.T) {
	t.Parallel()

	res := run(t, "R(A, B)\nA -> B\n", "--config", emptyConfig(t), "check", "--format", "json")
	require.Equal(t, 0, res.code, res.stderr)

	lines := strings.Split(strings.TrimSpace(res.stdout), "\n")
	require.Len(t, lines, 2)

	var rel map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &rel))
	assert.Equal(t, "<stdin>", rel["file"])
	assert.Equal(t, "R", rel["relation"])
	assert.Equal(t, "BCNF", rel["highest"])

	var sum map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &sum))
	assert.Equal(t, "summary", sum["action"])
	assert.Equal(t, true, sum["ok"])
}

func TestCheck_Directory(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTemp(t, dir, "b/second.fd", "B(X)\n")
	writeTemp(t, dir, "a/first.fd", "A(X)\n")
	writeTemp(t, dir, "notes.txt", "not a schema")

	res := run(t, "", "--config", emptyConfig(t), "check", "-f", "yaml", dir)
	require.Equal(t, 0, res.code, res.stderr)

	first := strings.Index(res.stdout, "relation: A")
	second := strings.Index(res.stdout, "relation: B")

	require.GreaterOrEqual(t, first, 0, res.stdout)
	require.Greater(t, second, first, "files are checked in path order")
	assert.Contains(t, res.stdout, "action: summary")
}

func TestCheck_AssertionFails(t *testing.T) {
	t.Parallel()

	path := writeTemp(t, t.TempDir(), "school.fd", school)

	res := run(t, "", "--config", emptyConfig(t), "check", "--assert", `Satisfies("3NF")`, path)

	assert.Equal(t, exitFailed, res.code)
	assert.Contains(t, res.stdout, "Assertion failed:\n\tSatisfies(\"3NF\")\n")
	assert.Contains(t, res.stdout, "FAIL Enrolment: Satisfies(\"3NF\")")
}

func TestCheck_AssertionsFromConfig(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg := writeTemp(t, dir, ".nfcheck.yaml", "color: never\nassert:\n  - len(Keys) == 1\n")
	path := writeTemp(t, dir, "school.fd", school)

	res := run(t, "", "--config", cfg, "check", "--run", "^Student$", path)

	assert.Equal(t, 0, res.code, res.stdout)
	assert.NotContains(t, res.stdout, "Enrolment\n")
	assert.Contains(t, res.stdout, "1 skipped")
}

func TestCheck_EmptyFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	empty := writeTemp(t, dir, "empty.fd", "// nothing yet\n")
	one := writeTemp(t, dir, "one.fd", "R(A)\n")

	res := run(t, "", "--config", emptyConfig(t), "check", "-f", "json", empty, one)

	require.Equal(t, 0, res.code, res.stderr)
	assert.Equal(t, empty+": no relations declared\n", res.stderr)
	assert.Len(t, strings.Split(strings.TrimSpace(res.stdout), "\n"), 2)
}

func TestCheck_ParseError(t *testing.T) {
	t.Parallel()

	path := writeTemp(t, t.TempDir(), "bad.fd", "R(A, B)\nA B\n")

	res := run(t, "", "--config", emptyConfig(t), "check", path)

	assert.Equal(t, exitInput, res.code)
	assert.Empty(t, res.stdout)
	assert.Contains(t, res.stderr, path+":2:")
	assert.Contains(t, res.stderr, "malformed functional dependency")
	assert.Contains(t, res.stderr, "\tA B\n")
}

func TestCheck_DanglingAttribute(t *testing.T) {
	t.Parallel()

	path := writeTemp(t, t.TempDir(), "dangling.fd", "R(A, B)\nA -> C\n")

	res := run(t, "", "--config", emptyConfig(t), "check", path)

	assert.Equal(t, exitInput, res.code)
	assert.Contains(t, res.stderr, path+`:2:6: error: A -> C: attribute "C" is not declared by relation R`)
}

func TestCheck_TooWide(t *testing.T) {
	t.Parallel()

	path := writeTemp(t, t.TempDir(), "wide.fd", "R(A, B, C)\n")

	res := run(t, "", "--config", emptyConfig(t), "check", "--max-attributes", "2", path)

	assert.Equal(t, exitFailed, res.code)
	assert.Contains(t, res.stderr, "warning: relation R has 3 attributes")
	assert.Contains(t, res.stdout, "Error:\n\trelation R: fd: too many attributes for key enumeration")
}

func TestCheck_MaxAttributesZeroFromConfig(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg := writeTemp(t, dir, ".nfcheck.yaml", "color: never\nmax_attributes: 0\n")
	path := writeTemp(t, dir, "wide.fd", "R(A, B, C)\nA -> B, C\n")

	res := run(t, "", "--config", cfg, "check", path)

	assert.Equal(t, 0, res.code, res.stdout)
	assert.Empty(t, res.stderr)
	assert.Contains(t, res.stdout, "PASS 1 relations")
}

func TestCheck_InvalidFlags(t *testing.T) {
	t.Parallel()

	path := writeTemp(t, t.TempDir(), "ok.fd", "R(A)\n")

	for name, args := range map[string][]string{
		"format":    {"--format", "xml"},
		"color":     {"--color", "sometimes"},
		"run":       {"--run", "("},
		"assertion": {"--assert", "Keys +"},
	} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			full := append([]string{"--config", emptyConfig(t), "check"}, args...)
			res := run(t, "", append(full, path)...)
			assert.Equal(t, exitInput, res.code)
		})
	}
}

func TestCheck_NoFiles(t *testing.T) {
	t.Parallel()

	res := run(t, "", "--config", emptyConfig(t), "check", t.TempDir())
	assert.Equal(t, exitInput, res.code)
}

func TestFmt_Stdout(t *testing.T) {
	t.Parallel()

	res := run(t, "R( A,B )\n  A->B // key\n", "--config", emptyConfig(t), "fmt")

	require.Equal(t, 0, res.code, res.stderr)
	assert.Equal(t, "R(A, B)\nA -> B // key\n", res.stdout)
}

func TestFmt_Write(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	messy := writeTemp(t, dir, "messy.fd", "R(A,B)\nA->B\n")
	clean := writeTemp(t, dir, "clean.fd", "S(X)\n")

	res := run(t, "", "--config", emptyConfig(t), "fmt", "-l", dir)
	require.Equal(t, 0, res.code, res.stderr)
	assert.Equal(t, messy+"\n", res.stdout)

	res = run(t, "", "--config", emptyConfig(t), "fmt", "-w", messy, clean)
	require.Equal(t, 0, res.code, res.stderr)
	assert.Empty(t, res.stdout)

	got, err := os.ReadFile(messy)
	require.NoError(t, err)
	assert.Equal(t, "R(A, B)\nA -> B\n", string(got))
}

func TestFmt_ParseError(t *testing.T) {
	t.Parallel()

	res := run(t, "A -> B\n", "--config", emptyConfig(t), "fmt")

	assert.Equal(t, exitInput, res.code)
	assert.Contains(t, res.stderr, "<stdin>:1:1: error: functional dependency before any relation header")
}
