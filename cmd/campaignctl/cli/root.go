// Package cli implements the campaignctl commands.
package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/odyssey-erp/campaign-insights/internal/format"
	"github.com/odyssey-erp/campaign-insights/internal/platform/cache"
	"github.com/odyssey-erp/campaign-insights/jobs"
)

// exitError carries a command's exit code through cobra.
type exitError struct{ code int }

func (e exitError) Error() string { return fmt.Sprintf("exit status %d", e.code) }

// Execute runs campaignctl with args and returns the process exit code.
func Execute(args []string, stdout, stderr io.Writer) int {
	root := NewRootCommand(stdout, stderr)
	root.SetArgs(args)
	err := root.Execute()
	if err == nil {
		return ExitOK
	}
	if e, ok := err.(exitError); ok {
		return e.code
	}
	_, _ = fmt.Fprintln(stderr, err)
	return ExitFailure
}

// NewRootCommand builds the command tree. Commands never print usage on
// failure; they report through exit codes.
func NewRootCommand(stdout, stderr io.Writer) *cobra.Command {
	var datasetPath string

	root := &cobra.Command{
		Use:           "campaignctl",
		Short:         "Inspect campaign comparisons from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.PersistentFlags().StringVar(&datasetPath, "dataset", os.Getenv("DATASET_PATH"), "dataset YAML file (default: embedded dataset)")

	root.AddCommand(
		newCompareCommand(&datasetPath, stdout, stderr),
		newValidateCommand(&datasetPath, stdout, stderr),
		newLocalesCommand(stdout),
		newWarmupCommand(stdout, stderr),
	)
	return root
}

func codeErr(code int) error {
	if code == ExitOK {
		return nil
	}
	return exitError{code: code}
}

func newCompareCommand(datasetPath *string, stdout, stderr io.Writer) *cobra.Command {
	var locale string
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "compare [comparison-id...]",
		Short: "Print formatted comparisons as a table or JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			return codeErr(CompareCommand(cmd.Context(), CompareOptions{
				DatasetPath:   *datasetPath,
				Locale:        locale,
				ComparisonIDs: args,
				JSONOutput:    asJSON,
				Stdout:        stdout,
				Stderr:        stderr,
			}))
		},
	}
	cmd.Flags().StringVarP(&locale, "locale", "l", format.DefaultLocale, "output locale ("+strings.Join(format.Names(), ", ")+")")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}

func newValidateCommand(datasetPath *string, stdout, stderr io.Writer) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Load a dataset and report attribution warnings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return codeErr(ValidateCommand(ValidateOptions{
				DatasetPath: *datasetPath,
				JSONOutput:  asJSON,
				Stdout:      stdout,
				Stderr:      stderr,
			}))
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of text")
	return cmd
}

func newLocalesCommand(stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "locales",
		Short: "List supported locales",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, loc := range format.Locales() {
				_, _ = fmt.Fprintf(stdout, "%s\t%s\t%s\n", loc.Name, loc.Currency, loc.Placeholder)
			}
			return nil
		},
	}
}

func newWarmupCommand(stdout, stderr io.Writer) *cobra.Command {
	var redisAddr string
	var locales []string
	var bump bool
	cmd := &cobra.Command{
		Use:   "warmup",
		Short: "Enqueue a dashboard cache warmup for the worker",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := cache.Options(redisAddr)
			if err != nil {
				_, _ = fmt.Fprintf(stderr, "warmup: %v\n", err)
				return codeErr(ExitFailure)
			}
			client := jobs.NewClient(jobs.RedisOpt(opts))
			defer func() { _ = client.Close() }()
			return codeErr(WarmupCommand(cmd.Context(), client, WarmupOptions{
				Locales: locales,
				Bump:    bump,
				Stdout:  stdout,
				Stderr:  stderr,
			}))
		},
	}
	defaultAddr := os.Getenv("REDIS_ADDR")
	if defaultAddr == "" {
		defaultAddr = "127.0.0.1:6379"
	}
	cmd.Flags().StringVar(&redisAddr, "redis", defaultAddr, "Redis address of the job queue")
	cmd.Flags().StringSliceVar(&locales, "locale", nil, "locales to warm (default: all)")
	cmd.Flags().BoolVar(&bump, "bump", false, "invalidate cached reports first")
	return cmd
}
