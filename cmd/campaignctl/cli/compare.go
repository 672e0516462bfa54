package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/odyssey-erp/campaign-insights/internal/dashboard"
	"github.com/odyssey-erp/campaign-insights/internal/dataset"
)

// Exit codes shared by the commands.
const (
	ExitOK       = 0
	ExitFailure  = 1
	ExitNotFound = 2
	// ExitWarnings reports a dataset that loads but carries warnings.
	ExitWarnings = 10
)

// CompareOptions defines available flags for the compare command.
type CompareOptions struct {
	DatasetPath string
	Locale      string
	// ComparisonIDs selects comparisons; empty prints all of them.
	ComparisonIDs []string
	JSONOutput    bool
	Stdout        io.Writer
	Stderr        io.Writer
}

// CompareCommand prints formatted comparisons and returns the exit code.
func CompareCommand(ctx context.Context, opts CompareOptions) int {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	data, err := dataset.LoadFile(opts.DatasetPath)
	if err != nil {
		_, _ = fmt.Fprintf(opts.Stderr, "compare: %v\n", err)
		return ExitFailure
	}
	svc, err := dashboard.NewService(data, nil, nil)
	if err != nil {
		_, _ = fmt.Fprintf(opts.Stderr, "compare: %v\n", err)
		return ExitFailure
	}

	ids := opts.ComparisonIDs
	if len(ids) == 0 {
		for _, c := range data.Comparisons {
			ids = append(ids, c.ID)
		}
	}
	views := make([]dashboard.ComparisonView, 0, len(ids))
	for _, id := range ids {
		view, err := svc.Comparison(ctx, opts.Locale, id)
		switch {
		case errors.Is(err, dashboard.ErrComparisonNotFound):
			_, _ = fmt.Fprintf(opts.Stderr, "compare: unknown comparison %q\n", id)
			return ExitNotFound
		case err != nil:
			_, _ = fmt.Fprintf(opts.Stderr, "compare: %v\n", err)
			return ExitFailure
		}
		views = append(views, view)
	}

	if opts.JSONOutput {
		enc := json.NewEncoder(opts.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(views); err != nil {
			_, _ = fmt.Fprintf(opts.Stderr, "compare: encode json: %v\n", err)
			return ExitFailure
		}
		return ExitOK
	}
	for i, view := range views {
		if i > 0 {
			_, _ = fmt.Fprintln(opts.Stdout)
		}
		if err := renderComparison(opts.Stdout, view); err != nil {
			_, _ = fmt.Fprintf(opts.Stderr, "compare: %v\n", err)
			return ExitFailure
		}
	}
	return ExitOK
}

func renderComparison(out io.Writer, view dashboard.ComparisonView) error {
	_, _ = fmt.Fprintf(out, "%s\n", view.Title)
	_, _ = fmt.Fprintf(out, "A: %s (%s)\nB: %s (%s)\n\n", view.A.Name, view.A.Period, view.B.Name, view.B.Period)

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	_, _ = fmt.Fprintln(tw, "\tMetric\tA\tB\tB/A\t")
	for _, section := range view.Sections {
		for _, row := range section.Rows {
			_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t\n", section.Title, row.Label, row.A, row.B, row.Multiple)
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if len(view.Insights) > 0 {
		_, _ = fmt.Fprintln(out)
		for _, insight := range view.Insights {
			_, _ = fmt.Fprintf(out, " - %s\n", insight)
		}
	}
	return nil
}
