package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/pkg/errors"

	"github.com/trezcool/mahudhurio/core"
	"github.com/trezcool/mahudhurio/core/student"
)

func (cli *commandLine) addStudent(studentID, name string) error {
	std, err := cli.stdSvc.Create(context.Background(), student.NewStudent{StudentID: studentID, Name: name})
	if err != nil {
		if vErr, ok := errors.Cause(err).(*core.ValidationError); ok {
			return fmt.Errorf("invalid student: %v", vErr.FieldMap())
		}
		return err
	}
	fmt.Fprintf(cli.out, "created student %d: %s %s\n", std.ID, std.StudentID, std.Name)
	return nil
}

func (cli *commandLine) deleteStudent(id int64, yes bool) error {
	ctx := context.Background()
	std, err := cli.stdSvc.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !yes {
		if err = cli.confirm(fmt.Sprintf("Delete %s %s and all their attendance records?", std.StudentID, std.Name)); err != nil {
			return err
		}
	}
	if err = cli.stdSvc.Delete(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "deleted student %d: %s %s\n", std.ID, std.StudentID, std.Name)
	return nil
}

func (cli *commandLine) listStudents() error {
	students, err := cli.stdSvc.QueryAll(context.Background())
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(cli.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTUDENT ID\tNAME")
	for _, s := range students {
		fmt.Fprintf(w, "%d\t%s\t%s\n", s.ID, s.StudentID, s.Name)
	}
	return w.Flush()
}
