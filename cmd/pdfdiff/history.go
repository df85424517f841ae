package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/pdfdiff/internal/config"
	"github.com/nao1215/pdfdiff/internal/database"
	"github.com/nao1215/pdfdiff/internal/report"
	"github.com/spf13/cobra"
)

// defaultHistoryLimit is how many runs are listed by default.
const defaultHistoryLimit = 20

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show past comparisons",
		Long: `History lists comparisons recorded by 'pdfdiff compare'.

Each entry shows its ID, the date, both file names, the threshold, the
number of pages and the overall visual change. Use --show with an ID to
print the stored report.

Examples:
  # List the 20 most recent comparisons
  pdfdiff history

  # List every comparison
  pdfdiff history --limit 0

  # Print a stored report as Markdown
  pdfdiff history --show 3

  # Print a stored report as JSON
  pdfdiff history --show 3 --json`,
		Args: cobra.NoArgs,
		RunE: runHistoryCmd,
	}

	cmd.Flags().IntP("limit", "n", defaultHistoryLimit,
		"Maximum number of comparisons to list (0 lists all)")
	cmd.Flags().Int64P("show", "s", 0,
		"Print the report of the comparison with this ID")
	cmd.Flags().Bool("json", false,
		"Print the report selected with --show as JSON")
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .pdfdiff in current or home directory)")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	cfg := config.NewConfig()

	var err error
	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return err
	}
	if err := applyConfigFile(cfg); err != nil {
		return err
	}

	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}
	showID, err := cmd.Flags().GetInt64("show")
	if err != nil {
		return err
	}
	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}

	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx := commandContext(cmd)
	out := cmd.OutOrStdout()

	if showID > 0 {
		return showComparison(ctx, out, db, showID, jsonOutput)
	}
	return listComparisons(ctx, out, db, limit)
}

// listComparisons prints recorded comparisons, newest first.
func listComparisons(ctx context.Context, w io.Writer, db *database.HistoryDB, limit int) error {
	list, err := db.ListComparisons(ctx, limit)
	if err != nil {
		return err
	}

	if len(list) == 0 {
		fmt.Fprintln(w, "No comparisons recorded yet.")
		fmt.Fprintln(w, "\nUse 'pdfdiff compare <base> <compare>' to compare two documents.")
		return nil
	}

	fmt.Fprintf(w, "Comparison history (%d):\n\n", len(list))
	fmt.Fprintf(w, "  %-6s  %-19s  %-40s  %9s  %5s  %8s\n", "ID", "Date", "Documents", "Threshold", "Pages", "Change")
	fmt.Fprintln(w, "  "+strings.Repeat("-", 98))

	for _, c := range list {
		fmt.Fprintf(w, "  %-6d  %-19s  %-40s  %9d  %5d  %7.2f%%\n",
			c.ID,
			c.Timestamp.Format("2006-01-02 15:04:05"),
			truncate(c.BaseFile+" vs "+c.ComparedFile, 40),
			c.Threshold,
			c.Pages,
			c.OverallChangePercent,
		)
	}

	fmt.Fprintln(w, "\nUse 'pdfdiff history --show <ID>' to print a stored report.")
	return nil
}

// showComparison prints one stored report.
func showComparison(ctx context.Context, w io.Writer, db *database.HistoryDB, id int64, jsonOutput bool) error {
	r, err := db.GetReport(ctx, id)
	if err != nil {
		return err
	}
	if r == nil {
		return fmt.Errorf("comparison %d not found (use 'pdfdiff history' to list IDs)", id)
	}

	var writer report.Writer = report.NewMarkdownWriter(w)
	if jsonOutput {
		writer = report.NewJSONWriter(w, report.WithPrettyPrint())
	}
	_, err = writer.Write(r)
	return err
}

// truncate shortens s to n runes, marking the cut with "...".
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}
