package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jmoiron/sqlx"
	"golang.org/x/term"

	"github.com/trezcool/mahudhurio/core/attendance"
	"github.com/trezcool/mahudhurio/core/student"
)

var (
	isTerminalFunc = term.IsTerminal // mockable
	stdinFd        = int(os.Stdin.Fd())
	stdin          = io.Reader(os.Stdin)

	errHelp         = errors.New("help provided")
	errNotConfirmed = errors.New("deletion not confirmed")
	errNoTTY        = errors.New("stdin is not a terminal: pass -yes to confirm")
)

type commandLine struct {
	db     *sqlx.DB
	out    io.Writer
	stdSvc student.ServiceInterface
	attSvc attendance.ServiceInterface
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  migrate COMMAND [ARGS]             - run a goose command (up, down, status, create NAME sql, ...)")
	fmt.Fprintln(cli.out, "  addstudent -id STUDENT_ID -name NAME - create a student")
	fmt.Fprintln(cli.out, "  deletestudent -id ID [-yes]        - delete a student and its attendance records")
	fmt.Fprintln(cli.out, "  liststudents                       - list all students")
	fmt.Fprintln(cli.out, "  sheet [-date YYYY-MM-DD]           - print the attendance sheet of a day (today by default)")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	addStudentCmd := flag.NewFlagSet("addstudent", flag.ContinueOnError)
	addStudentID := addStudentCmd.String("id", "", "The student ID, e.g. STU001.")
	addStudentName := addStudentCmd.String("name", "", "The student's full name.")

	deleteStudentCmd := flag.NewFlagSet("deletestudent", flag.ContinueOnError)
	deleteStudentID := deleteStudentCmd.Int64("id", 0, "The student's database id.")
	deleteStudentYes := deleteStudentCmd.Bool("yes", false, "Do not ask for confirmation.")

	sheetCmd := flag.NewFlagSet("sheet", flag.ContinueOnError)
	sheetDate := sheetCmd.String("date", "", "The day, as YYYY-MM-DD.")

	for _, fs := range []*flag.FlagSet{addStudentCmd, deleteStudentCmd, sheetCmd} {
		fs.SetOutput(cli.out)
	}

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	case "addstudent":
		if err := addStudentCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *addStudentID == "" || *addStudentName == "" {
			addStudentCmd.Usage()
			return errHelp
		}
		return cli.addStudent(*addStudentID, *addStudentName)
	case "deletestudent":
		if err := deleteStudentCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *deleteStudentID < 1 {
			deleteStudentCmd.Usage()
			return errHelp
		}
		return cli.deleteStudent(*deleteStudentID, *deleteStudentYes)
	case "liststudents":
		return cli.listStudents()
	case "sheet":
		if err := sheetCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		return cli.sheet(*sheetDate)
	default:
		cli.printUsage()
		return errHelp
	}
}

// confirm asks a yes/no question on stdin. It refuses to guess when stdin is not a terminal.
func (cli *commandLine) confirm(question string) error {
	if !isTerminalFunc(stdinFd) {
		return errNoTTY
	}
	fmt.Fprintf(cli.out, "%s [y/N]: ", question)
	answer, err := bufio.NewReader(stdin).ReadString('\n')
	if err != nil && err != io.EOF {
		return err
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return nil
	}
	return errNotConfirmed
}
