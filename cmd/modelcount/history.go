package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/nao1215/modelcount/internal/config"
	"github.com/nao1215/modelcount/internal/database"
)

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent scans from the history database",
		Long: `List the most recent scans recorded in the history database.

Every scan is saved by default (disable with --no-save). Use --counts to
print the stored frequency table of one scan by its ID.`,
		Args: cobra.NoArgs,
		RunE: runHistoryCmd,
	}

	cmd.Flags().IntP("limit", "n", 10, "Maximum number of scans to list")
	cmd.Flags().String("db", config.XDGDataDir(), "History database directory")
	cmd.Flags().Int64("counts", 0, "Print the stored counts of the scan with this ID")

	return cmd
}

// runHistoryCmd lists recent scans or dumps one scan's counts.
func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	dbDir, err := cmd.Flags().GetString("db")
	if err != nil {
		return err
	}

	db, err := database.Open(dbDir, database.Options{CreateIfNotExists: false, EnableWAL: true})
	if err != nil {
		// A missing database only means nothing has been scanned yet.
		fmt.Fprintln(cmd.OutOrStdout(), "no scan history yet")
		return nil //nolint:nilerr // Absent history is not a failure
	}
	defer func() { _ = db.Close() }()

	scanID, err := cmd.Flags().GetInt64("counts")
	if err != nil {
		return err
	}
	if scanID > 0 {
		return printScanCounts(cmd, db, scanID)
	}

	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}
	return printRecentScans(cmd, db, limit)
}

// printRecentScans renders the scan list as a table.
func printRecentScans(cmd *cobra.Command, db *database.HistoryDB, limit int) error {
	records, err := db.RecentScans(cmd.Context(), limit)
	if err != nil {
		return fmt.Errorf("failed to list scans: %w", err)
	}
	if len(records) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no scan history yet")
		return nil
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTARTED\tDURATION\tINPUTS\tMODELS\tUNIQUE")
	for _, rec := range records {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\t%d\n",
			rec.ID,
			rec.StartedAt.Local().Format("2006-01-02 15:04:05"),
			rec.Duration,
			strings.Join(rec.Inputs, ","),
			rec.ModelsSeen,
			rec.UniqueModels,
		)
	}
	return tw.Flush()
}

// printScanCounts dumps one stored frequency table in the text report
// format.
func printScanCounts(cmd *cobra.Command, db *database.HistoryDB, scanID int64) error {
	counts, err := db.ScanCounts(cmd.Context(), scanID)
	if err != nil {
		return fmt.Errorf("failed to load counts for scan %d: %w", scanID, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Unique models: %d\n", len(counts))
	for _, vc := range counts {
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d\n", vc.Value, vc.Count)
	}
	return nil
}
