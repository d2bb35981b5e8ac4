package main

import (
	"bytes"
	"database/sql"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courseflow/backend/core/course"
	"github.com/courseflow/backend/core/syllabus"
	"github.com/courseflow/backend/tests"
)

const response = `Course Name: CS 101 - Intro to Programming
Instructor: Dr. Ada Lovelace

Quizzes:
- 2024-02-01: Quiz 1 - 10%

Assignments:
- 2024-02-15: Project Proposal - 20%

Midterm Exam:
- 2024-03-10: Midterm - 30%

Final Exam:
- 2024-05-01: Final Exam - 40%
`

func setup(t *testing.T, in string) (*commandLine, *bytes.Buffer) {
	t.Helper()
	ledger, _ := testutil.NewLedger(t)
	out := &bytes.Buffer{}
	return &commandLine{
		db:     &sql.DB{},
		ledger: ledger,
		rules:  syllabus.DefaultRules(),
		in:     strings.NewReader(in),
		out:    out,
	}, out
}

func writeResponse(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "response.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
}

func runCLITests(t *testing.T, cli *commandLine, tests []cliTest) {
	t.Helper()
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			switch {
			case tt.wantErr != nil:
				assert.Equal(t, tt.wantErr, err)
			case tt.wantErrStr != "":
				if assert.Error(t, err) {
					assert.Equal(t, tt.wantErrStr, err.Error())
				}
			default:
				assert.NoError(t, err)
			}
		})
	}
}

func Test_commandLine_usage(t *testing.T) {
	cli, out := setup(t, "")

	runCLITests(t, cli, []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
	})
	assert.Contains(t, out.String(), "Usage:")
}

func Test_commandLine_migrate(t *testing.T) {
	cli, _ := setup(t, "")

	original := gooseRunFunc
	defer func() { gooseRunFunc = original }()

	gooseRunFunc = func(command string, db *sql.DB, fsys fs.FS, dir string, args ...string) error {
		if _, err := fs.Stat(fsys, dir+"/00001_create_ledger.sql"); err != nil {
			return fmt.Errorf("migrations not embedded: %v", err)
		}
		switch command {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to":
			if len(args) == 0 {
				return fmt.Errorf("up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION")
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		case "create":
			if len(args) == 0 {
				return fmt.Errorf("create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]")
			}
		case "down-to":
			if len(args) == 0 {
				return fmt.Errorf("down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION")
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}

	runCLITests(t, cli, []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "create: no args", args: []string{"migrate", "create"}, wantErrStr: "create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]"},
		{name: "down-to: non-int arg", args: []string{"migrate", "down-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-to", args: []string{"migrate", "up-to", "1"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "create", args: []string{"migrate", "create", "add_notes", "sql"}},
	})

	cli.db = nil
	runCLITests(t, cli, []cliTest{
		{name: "no database", args: []string{"migrate", "up"}, wantErr: errNoDatabase},
	})
}

func Test_commandLine_clear(t *testing.T) {
	original := isTerminalFunc
	defer func() { isTerminalFunc = original }()

	tests := []struct {
		name     string
		args     []string
		terminal bool
		input    string
		wantErr  error
		cleared  bool
	}{
		{name: "confirmed", args: []string{"clear"}, terminal: true, input: "y\n", cleared: true},
		{name: "confirmed without newline", args: []string{"clear"}, terminal: true, input: "YES", cleared: true},
		{name: "declined", args: []string{"clear"}, terminal: true, input: "n\n", wantErr: errNotConfirmed},
		{name: "empty answer", args: []string{"clear"}, terminal: true, input: "", wantErr: errNotConfirmed},
		{name: "not a terminal", args: []string{"clear"}, wantErr: errNoTerminal},
		{name: "forced", args: []string{"clear", "-yes"}, cleared: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cli, _ := setup(t, tt.input)
			testutil.CreateCourse(t, cli.ledger, "Physics")
			isTerminalFunc = func(int) bool { return tt.terminal }

			err := cli.run(append([]string{"admin"}, tt.args...))
			assert.Equal(t, tt.wantErr, err)
			if tt.cleared {
				assert.Empty(t, cli.ledger.Courses())
			} else {
				assert.Len(t, cli.ledger.Courses(), 1)
			}
		})
	}
}

func Test_commandLine_parse(t *testing.T) {
	cli, out := setup(t, "")
	path := writeResponse(t, response)

	runCLITests(t, cli, []cliTest{
		{name: "no file", args: []string{"parse"}, wantErr: errHelp},
		{name: "parsed", args: []string{"parse", "-file", path}},
	})
	assert.Contains(t, out.String(), `"courseName": "Intro to Programming"`)
	assert.Empty(t, cli.ledger.Courses(), "parse never stores")

	err := cli.run([]string{"admin", "parse", "-file", filepath.Join(t.TempDir(), "missing.txt")})
	assert.Error(t, err)
}

func Test_commandLine_import(t *testing.T) {
	cli, out := setup(t, "")
	path := writeResponse(t, response)

	runCLITests(t, cli, []cliTest{
		{name: "no file", args: []string{"import"}, wantErr: errHelp},
		{name: "imported", args: []string{"import", "-file", path}},
		{name: "duplicate", args: []string{"import", "-file", path}, wantErrStr: `A course named "Intro to Programming" already exists`},
	})
	assert.Contains(t, out.String(), "with 4 assessments")

	courses := cli.ledger.Courses()
	require.Len(t, courses, 1)
	assert.Equal(t, "Dr. Ada Lovelace", courses[0].Instructor)
}

func Test_commandLine_summary(t *testing.T) {
	cli, out := setup(t, "")
	c := testutil.CreateCourse(t, cli.ledger, "Chemistry",
		testutil.Candidate("Quiz 1", syllabus.TypeQuiz, "2024-02-01", 50),
		testutil.Candidate("Final", syllabus.TypeFinal, "2024-05-01", 50),
	)

	runCLITests(t, cli, []cliTest{
		{name: "no course", args: []string{"summary"}, wantErr: errHelp},
		{name: "not found", args: []string{"summary", "-course", "99"}, wantErr: course.ErrCourseNotFound},
		{name: "summary", args: []string{"summary", "-course", strconv.Itoa(c.ID)}},
	})
	assert.Contains(t, out.String(), `"totalAssessments": 2`)
}
