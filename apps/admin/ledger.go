package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"
)

var (
	errNotConfirmed = errors.New("clear aborted")
	errNoTerminal   = errors.New("stdin is not a terminal, pass -yes to clear without confirmation")
)

func (cli *commandLine) clear(yes bool) error {
	if !yes {
		if !isTerminalFunc(cli.stdin) {
			return errNoTerminal
		}
		fmt.Fprint(cli.out, "Delete every course and assessment? [y/N]: ")
		answer, err := bufio.NewReader(cli.in).ReadString('\n')
		if err != nil && answer == "" {
			return errNotConfirmed
		}
		switch strings.ToLower(strings.TrimSpace(answer)) {
		case "y", "yes":
		default:
			return errNotConfirmed
		}
	}
	cli.ledger.ClearAll(context.Background())
	fmt.Fprintln(cli.out, "All data cleared.")
	return nil
}

func (cli *commandLine) parse(path string) error {
	response, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "reading response")
	}
	return cli.print(cli.rules.Parse(string(response)))
}

func (cli *commandLine) importResponse(path string) error {
	response, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "reading response")
	}
	res := cli.ledger.SaveSyllabus(context.Background(), cli.rules.Parse(string(response)))
	if !res.Success {
		return errors.New(res.Error)
	}
	fmt.Fprintf(cli.out, "Imported %q (id %d) with %d assessments.\n", res.Course.Name, res.CourseID, res.AssessmentCount)
	return nil
}

func (cli *commandLine) summary(courseID int) error {
	s, err := cli.ledger.Summary(courseID)
	if err != nil {
		return err
	}
	return cli.print(s)
}

func (cli *commandLine) print(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encoding output")
	}
	_, err = fmt.Fprintln(cli.out, string(data))
	return err
}
