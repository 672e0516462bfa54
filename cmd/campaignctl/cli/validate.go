package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/odyssey-erp/campaign-insights/internal/dataset"
)

// ValidateOptions defines available flags for the validate command.
type ValidateOptions struct {
	DatasetPath string
	JSONOutput  bool
	Stdout      io.Writer
	Stderr      io.Writer
}

// ValidateSummary describes the JSON response for validate.
type ValidateSummary struct {
	OK          bool     `json:"ok"`
	Fingerprint string   `json:"fingerprint"`
	Campaigns   []string `json:"campaigns"`
	Comparisons int      `json:"comparisons"`
	Warnings    []string `json:"warnings"`
}

// ValidateCommand loads a dataset and reports its warnings. A dataset that
// fails to load exits with ExitFailure; one with warnings with ExitWarnings.
func ValidateCommand(opts ValidateOptions) int {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	data, err := dataset.LoadFile(opts.DatasetPath)
	if err != nil {
		_, _ = fmt.Fprintf(opts.Stderr, "validate: %v\n", err)
		return ExitFailure
	}
	summary := ValidateSummary{
		OK:          len(data.Warnings) == 0,
		Fingerprint: data.Fingerprint,
		Campaigns:   data.CampaignIDs(),
		Comparisons: len(data.Comparisons),
		Warnings:    append([]string{}, data.Warnings...),
	}
	if opts.JSONOutput {
		if err := json.NewEncoder(opts.Stdout).Encode(summary); err != nil {
			_, _ = fmt.Fprintf(opts.Stderr, "validate: encode json: %v\n", err)
			return ExitFailure
		}
	} else {
		_, _ = fmt.Fprintf(opts.Stdout, "Dataset %s: %d campaign(s), %d comparison(s)\n", summary.Fingerprint, len(summary.Campaigns), summary.Comparisons)
		if summary.OK {
			_, _ = fmt.Fprintln(opts.Stdout, "No warnings.")
		}
		for _, w := range summary.Warnings {
			_, _ = fmt.Fprintf(opts.Stdout, " - %s\n", w)
		}
	}
	if !summary.OK {
		return ExitWarnings
	}
	return ExitOK
}
