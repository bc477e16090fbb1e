package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/trezcool/mahudhurio/core"
	"github.com/trezcool/mahudhurio/core/attendance"
)

func (cli *commandLine) sheet(dateStr string) error {
	date := cli.attSvc.Today()
	if dateStr != "" {
		var err error
		if date, err = core.ParseDate(dateStr); err != nil {
			return fmt.Errorf("invalid date %q: expected YYYY-MM-DD", dateStr)
		}
	}

	rows, err := cli.attSvc.DaySheet(context.Background(), date)
	if err != nil {
		return err
	}

	fmt.Fprintf(cli.out, "Attendance for %s\n\n", date)
	w := tabwriter.NewWriter(cli.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "STUDENT ID\tNAME\tSTATUS")
	for _, r := range rows {
		fmt.Fprintf(w, "%s\t%s\t%s\n", r.StudentID, r.Name, r.Status.Label())
	}
	if err = w.Flush(); err != nil {
		return err
	}

	tally := attendance.TallyRows(rows)
	fmt.Fprintln(cli.out)
	for _, s := range attendance.Statuses {
		fmt.Fprintf(cli.out, "%s: %d\n", s.Label(), tally[s])
	}
	return nil
}
