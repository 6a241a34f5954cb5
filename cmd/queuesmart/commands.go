package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/pflag"

	"github.com/spec-kit/queuesmart/internal/app"
	"github.com/spec-kit/queuesmart/internal/domain"
	"github.com/spec-kit/queuesmart/internal/service"
)

func newFlagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SortFlags = false
	return fs
}

func runMigrate(ctx context.Context, c *app.Container, args []string, out io.Writer) error {
	if err := newFlagSet("migrate").Parse(args); err != nil {
		return err
	}
	// app.New has already applied the schema; a successful ping confirms it.
	if err := c.Store.Ping(ctx); err != nil {
		return err
	}
	fmt.Fprintf(out, "schema up to date (%s)\n", c.Config.Store.Driver)
	return nil
}

func runBootstrap(ctx context.Context, c *app.Container, args []string, out io.Writer) error {
	if err := newFlagSet("bootstrap").Parse(args); err != nil {
		return err
	}
	result, err := c.Bootstrap(ctx)
	if err != nil {
		return err
	}
	if result == nil {
		fmt.Fprintln(out, "staff accounts already exist; nothing to do")
		return nil
	}
	fmt.Fprintf(out, "created manager %q (id %d)\n", result.Staff.Username, result.Staff.ID)
	if c.Config.Bootstrap.ManagerPassword == "" {
		fmt.Fprintf(out, "generated password: %s\n", result.Password)
	}
	return nil
}

func runDashboard(ctx context.Context, c *app.Container, args []string, out io.Writer) error {
	fs := newFlagSet("dashboard")
	statuses := fs.StringSlice("status", nil, "statuses to include (default: all active)")
	category := fs.String("category", "", "restrict to one category")
	includeClosed := fs.Bool("include-closed", false, "include Closed tickets")
	if err := fs.Parse(args); err != nil {
		return err
	}

	filter := service.DashboardFilter{IncludeClosed: *includeClosed}
	for _, s := range *statuses {
		filter.Statuses = append(filter.Statuses, domain.TicketStatus(strings.TrimSpace(s)))
	}
	if *category != "" {
		cat := domain.TicketCategory(*category)
		filter.Category = &cat
	}

	board, err := c.Tickets.Dashboard(ctx, filter)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SCORE\tID\tCUSTOMER\tCATEGORY\tURGENCY\tSTATUS\tOPENED")
	for _, t := range board {
		customer := t.CustomerName
		if t.CustomerVulnerable {
			customer += " (vulnerable)"
		}
		fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%s\t%s\t%s\n",
			t.Score, t.ID, customer, t.Category, t.Urgency, t.Status, t.CreatedAt.Format(time.RFC3339))
	}
	return tw.Flush()
}

func runSchedule(ctx context.Context, c *app.Container, args []string, out io.Writer) error {
	fs := newFlagSet("schedule")
	staffID := fs.Int64("staff", 0, "staff member id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *staffID <= 0 {
		return fmt.Errorf("--staff is required")
	}

	appts, err := c.Appointments.ListByStaff(ctx, *staffID)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTART\tEND\tCUSTOMER\tREASON")
	for _, a := range appts {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n",
			a.ID, a.Start.Format(time.RFC3339), a.End().Format(time.RFC3339), a.CustomerName, a.Reason)
	}
	return tw.Flush()
}

func runReport(ctx context.Context, c *app.Container, args []string, out io.Writer) error {
	fs := newFlagSet("report")
	asCSV := fs.Bool("csv", false, "write CSV instead of a table")
	limit := fs.Int("limit", 0, "rows for the busiest report (default 5)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("report needs exactly one of: weekly, close-times, busiest")
	}

	var header []string
	var rows [][]string
	switch fs.Arg(0) {
	case "weekly":
		counts, err := c.Reports.WeeklyCategoryCounts(ctx)
		if err != nil {
			return err
		}
		header = []string{"week", "category", "count"}
		for _, r := range counts {
			rows = append(rows, []string{r.Week, string(r.Category), strconv.FormatInt(r.Count, 10)})
		}
	case "close-times":
		times, err := c.Reports.AverageCloseTimes(ctx)
		if err != nil {
			return err
		}
		header = []string{"category", "avg_hours"}
		for _, r := range times {
			rows = append(rows, []string{string(r.Category), strconv.FormatFloat(r.AvgHours, 'f', 2, 64)})
		}
	case "busiest":
		dates, err := c.Reports.BusiestDates(ctx, *limit)
		if err != nil {
			return err
		}
		header = []string{"date", "appointments"}
		for _, r := range dates {
			rows = append(rows, []string{r.Date, strconv.FormatInt(r.Count, 10)})
		}
	default:
		return fmt.Errorf("unknown report %q", fs.Arg(0))
	}

	if *asCSV {
		w := csv.NewWriter(out)
		if err := w.Write(header); err != nil {
			return err
		}
		if err := w.WriteAll(rows); err != nil {
			return err
		}
		return w.Error()
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.ToUpper(strings.Join(header, "\t")))
	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}
