package cli

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/facilityops/facility-ops/internal/domain"
	"github.com/facilityops/facility-ops/internal/scheduling"
	"github.com/facilityops/facility-ops/internal/service"
)

func newEnforceCommand(open Opener, date func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "enforce",
		Short: "Repair Control Room and housing block coverage for a date",
		Long: `Run one coverage sweep. Violations that cannot be repaired are listed and
make the command exit non-zero.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withEnv(cmd, open, func(ctx context.Context, env *Env) error {
				report, err := env.Schedules.Enforce(ctx, nil, date())
				if err != nil {
					return err
				}
				printReport(cmd.OutOrStdout(), report)
				return report.Err()
			})
		},
	}
}

func newSnapshotCommand(open Opener, date func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "snapshot",
		Short: "Show coverage totals and headcount for a date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withEnv(cmd, open, func(ctx context.Context, env *Env) error {
				summary, err := env.Schedules.Summary(ctx, date())
				if err != nil {
					return err
				}
				printSummary(cmd.OutOrStdout(), summary)
				return nil
			})
		},
	}
}

func newAvailabilityCommand(open Opener, date func() string) *cobra.Command {
	var start, end, location string

	cmd := &cobra.Command{
		Use:   "availability",
		Short: "List staff free for a window, optionally narrowed to a location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withEnv(cmd, open, func(ctx context.Context, env *Env) error {
				result, err := env.Staff.Available(ctx, service.AvailableQuery{
					Date:      date(),
					StartTime: start,
					EndTime:   end,
					Location:  location,
				})
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if result.DirectoryUnavailable {
					fmt.Fprintln(out, "Staff directory unavailable; no staff can be offered.")
					return nil
				}
				w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tNAME\tPOSITION\tDEPARTMENT\tBLOCK")
				for _, m := range result.Staff {
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", m.ID, m.Name, m.Position, m.Department, m.AssignedBlock)
				}
				if err := w.Flush(); err != nil {
					return err
				}
				fmt.Fprintf(out, "%d staff available\n", len(result.Staff))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&start, "start", "09:00", "Window start (HH:MM)")
	cmd.Flags().StringVar(&end, "end", "21:00", "Window end (HH:MM)")
	cmd.Flags().StringVar(&location, "location", "", "Only staff eligible for this location")
	return cmd
}

func newValidateCommand(open Opener, date func() string) *cobra.Command {
	var (
		id        string
		title     string
		entryType string
		start     string
		end       string
		location  string
		staff     []string
	)

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Dry-run the checks applied to a proposed schedule entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withEnv(cmd, open, func(ctx context.Context, env *Env) error {
				input := service.ScheduleInput{
					Title:         title,
					Type:          domain.ScheduleType(entryType),
					Date:          date(),
					StartTime:     start,
					EndTime:       end,
					Location:      location,
					AssignedStaff: staff,
				}
				if err := env.Schedules.Validate(ctx, id, input); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "OK: entry passes all checks")
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "Existing entry ID when validating an update")
	cmd.Flags().StringVar(&title, "title", "Proposed entry", "Entry title")
	cmd.Flags().StringVar(&entryType, "type", string(domain.ScheduleTypeSecurity), "Schedule type")
	cmd.Flags().StringVar(&start, "start", "09:00", "Window start (HH:MM)")
	cmd.Flags().StringVar(&end, "end", "21:00", "Window end (HH:MM)")
	cmd.Flags().StringVar(&location, "location", "", "Location name")
	cmd.Flags().StringSliceVar(&staff, "staff", nil, "Assigned staff IDs (comma separated)")
	_ = cmd.MarkFlagRequired("location")
	return cmd
}

func printReport(out io.Writer, report scheduling.Report) {
	if !report.Changed() && len(report.Failures) == 0 {
		fmt.Fprintf(out, "Coverage for %s already satisfied.\n", report.Date)
		return
	}
	for _, action := range report.Actions {
		fmt.Fprintf(out, "%-8s %-24s %s %s-%s [%s]\n",
			action.Kind, action.Invariant, action.Entry.Location,
			action.Entry.StartTime, action.Entry.EndTime,
			strings.Join(action.Entry.AssignedStaff, ","))
	}
	for _, failure := range report.Failures {
		fmt.Fprintf(out, "UNSATISFIED %s: %s\n", failure.Invariant, failure.Reason)
	}
}

func printSummary(out io.Writer, summary *service.DaySummary) {
	fmt.Fprintf(out, "Date:        %s\n", summary.Date)
	fmt.Fprintf(out, "Entries:     %d\n", summary.Entries)
	fmt.Fprintf(out, "On duty:     %d\n", len(summary.OnDuty))
	if summary.DirectoryUnavailable {
		fmt.Fprintln(out, "Free staff:  unknown (directory unavailable)")
	} else {
		fmt.Fprintf(out, "Free staff:  %d\n", summary.FreeStaff)
	}
	fmt.Fprintf(out, "Needs sweep: %t\n", summary.NeedsSweep)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "\nCATEGORY\tASSIGNMENTS")
	for _, category := range []domain.LocationCategory{domain.CategoryControlRoom, domain.CategoryBlockA, domain.CategoryBlockB} {
		fmt.Fprintf(w, "%s\t%d\n", category, summary.Coverage.Totals[category])
	}
	_ = w.Flush()

	if len(summary.Headcount) == 0 {
		return
	}
	locations := make([]string, 0, len(summary.Headcount))
	for loc := range summary.Headcount {
		locations = append(locations, string(loc))
	}
	sort.Strings(locations)
	w = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "\nLOCATION\tSTAFF")
	for _, loc := range locations {
		fmt.Fprintf(w, "%s\t%d\n", loc, summary.Headcount[domain.Location(loc)])
	}
	_ = w.Flush()
}
