package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"

	"golang.org/x/term"

	"github.com/courseflow/backend/core/course"
	"github.com/courseflow/backend/core/syllabus"
)

var (
	isTerminalFunc = term.IsTerminal // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	db     *sql.DB // only set for migrate
	ledger *course.Ledger
	rules  *syllabus.Rules
	in     io.Reader
	out    io.Writer
	stdin  int // file descriptor checked before prompting
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  migrate COMMAND [ARGS] - run goose migrations (up, down, status, ...)")
	fmt.Fprintln(cli.out, "  clear [-yes] - delete every course and assessment")
	fmt.Fprintln(cli.out, "  parse -file FILE - parse an LLM response and print the result")
	fmt.Fprintln(cli.out, "  import -file FILE - parse an LLM response and store the course")
	fmt.Fprintln(cli.out, "  summary -course ID - print the grade summary of a course")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	clearCmd := flag.NewFlagSet("clear", flag.ContinueOnError)
	clearYes := clearCmd.Bool("yes", false, "Do not ask for confirmation.")

	parseCmd := flag.NewFlagSet("parse", flag.ContinueOnError)
	parseFile := parseCmd.String("file", "", "Path of the LLM response to parse.")

	importCmd := flag.NewFlagSet("import", flag.ContinueOnError)
	importFile := importCmd.String("file", "", "Path of the LLM response to import.")

	summaryCmd := flag.NewFlagSet("summary", flag.ContinueOnError)
	summaryCourse := summaryCmd.Int("course", 0, "The course id.")

	for _, cmd := range []*flag.FlagSet{clearCmd, parseCmd, importCmd, summaryCmd} {
		cmd.SetOutput(cli.out)
	}

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	case "clear":
		if err := clearCmd.Parse(args[2:]); err != nil {
			return err
		}
		return cli.clear(*clearYes)
	case "parse":
		if err := parseCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *parseFile == "" {
			parseCmd.Usage()
			return errHelp
		}
		return cli.parse(*parseFile)
	case "import":
		if err := importCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *importFile == "" {
			importCmd.Usage()
			return errHelp
		}
		return cli.importResponse(*importFile)
	case "summary":
		if err := summaryCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *summaryCourse <= 0 {
			summaryCmd.Usage()
			return errHelp
		}
		return cli.summary(*summaryCourse)
	default:
		cli.printUsage()
		return errHelp
	}
}
