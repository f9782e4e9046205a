package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sells-group/dco-dashboard/internal/activity"
	"github.com/sells-group/dco-dashboard/internal/library"
	"github.com/sells-group/dco-dashboard/internal/sheet"
)

// -- activities --

var activitiesCmd = &cobra.Command{
	Use:   "activities",
	Short: "Print the latest activity per line and machine",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := cfg.Validate("cli"); err != nil {
			return err
		}
		env, err := initApp(cfg)
		if err != nil {
			return err
		}

		line, _ := cmd.Flags().GetString("line")
		machine, _ := cmd.Flags().GetString("machine")
		showAll, _ := cmd.Flags().GetBool("all")

		full := env.Activities.Load(cmd.Context())
		t := activity.Filter(full, line, machine)
		if !showAll {
			t = activity.LatestPerGroup(t)
		}

		out := cmd.OutOrStdout()
		formatWarnings(cmd.ErrOrStderr(), full.Warnings())
		if t.Len() == 0 {
			_, _ = fmt.Fprintln(out, "No records found.")
			return nil
		}
		formatActivities(out, t.Records())
		_, _ = fmt.Fprintf(out, "\nShowing %d records\n", t.Len())
		return nil
	},
}

// -- history --

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Print every activity for one line and machine",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := cfg.Validate("cli"); err != nil {
			return err
		}
		env, err := initApp(cfg)
		if err != nil {
			return err
		}

		line, _ := cmd.Flags().GetString("line")
		machine, _ := cmd.Flags().GetString("machine")

		full := env.Activities.Load(cmd.Context())
		h := activity.HistoryForGroup(full, line, machine)

		out := cmd.OutOrStdout()
		formatWarnings(cmd.ErrOrStderr(), full.Warnings())
		if h.Len() == 0 {
			_, _ = fmt.Fprintln(out, "No history available for this line/machine.")
			return nil
		}
		formatActivities(out, h.Records())
		return nil
	},
}

// -- library --

var libraryCmd = &cobra.Command{
	Use:   "library",
	Short: "Print the technical document library",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := cfg.Validate("cli"); err != nil {
			return err
		}
		env, err := initApp(cfg)
		if err != nil {
			return err
		}

		category, _ := cmd.Flags().GetString("category")
		equipment, _ := cmd.Flags().GetString("equipment")

		full := env.Library.Load(cmd.Context())
		c := full.Filter(category, equipment)

		out := cmd.OutOrStdout()
		formatWarnings(cmd.ErrOrStderr(), full.Warnings())
		if c.Len() == 0 {
			_, _ = fmt.Fprintln(out, "No documents match those filters.")
			return nil
		}
		formatLibrary(out, c.Documents())
		return nil
	},
}

func init() {
	activitiesCmd.Flags().String("line", activity.All, "filter by line")
	activitiesCmd.Flags().String("machine", activity.All, "filter by machine")
	activitiesCmd.Flags().Bool("all", false, "print every record instead of the latest per machine")

	historyCmd.Flags().String("line", "", "line of the machine")
	historyCmd.Flags().String("machine", "", "machine name")
	_ = historyCmd.MarkFlagRequired("line")
	_ = historyCmd.MarkFlagRequired("machine")

	libraryCmd.Flags().String("category", library.All, "filter by category")
	libraryCmd.Flags().String("equipment", library.All, "filter by equipment")

	rootCmd.AddCommand(activitiesCmd, historyCmd, libraryCmd)
}

func fmtStamp(r activity.Record) string {
	if !r.HasTimestamp() {
		return "-"
	}
	return r.Timestamp.Format("2006-01-02 15:04")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// formatActivities writes a tabular list of records to w.
func formatActivities(out io.Writer, records []activity.Record) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "TIMESTAMP\tLINE\tMACHINE\tACTIVITY\tDESCRIPTION\tDOCUMENT")
	_, _ = fmt.Fprintln(w, "---------\t----\t-------\t--------\t-----------\t--------")

	for _, r := range records {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			fmtStamp(r),
			r.Line,
			r.Machine,
			truncate(r.Activity, 40),
			truncate(r.Description, 50),
			r.DocumentLink,
		)
	}
	_ = w.Flush()
}

// formatLibrary writes a tabular list of documents to w.
func formatLibrary(out io.Writer, docs []library.Document) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "NAME\tEQUIPMENT\tCATEGORY\tLINK")
	_, _ = fmt.Fprintln(w, "----\t---------\t--------\t----")

	for _, d := range docs {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", truncate(d.Name, 40), d.Equipment, d.Category, d.Link)
	}
	_ = w.Flush()
}

// formatWarnings writes load notices to w, one per line.
func formatWarnings(out io.Writer, warnings []sheet.Warning) {
	for _, wn := range warnings {
		_, _ = fmt.Fprintf(out, "warning: %s\n", wn)
	}
}
