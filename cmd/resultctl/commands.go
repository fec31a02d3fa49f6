package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/gradebook/internal/core"
	"github.com/JonMunkholm/gradebook/internal/logging"
)

type rootOptions struct {
	logLevel  string
	logFormat string
	plain     bool
	log       *slog.Logger
}

// newRootCmd builds the command tree. Each call returns fresh commands so
// tests can run them in isolation.
func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "resultctl",
		Short: "Inspect and export student result sheets",
		Long: `resultctl reads a result sheet (CSV with NAME, GRADE and RESULT columns)
and prints the same views the web dashboard offers.

Available subcommands:
  views   - List the view names
  summary - Count students by result
  view    - Print one derived view
  lookup  - Show one student's result
  export  - Write a view to CSV or XLSX`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			opts.log = logging.SetupWriter(cmd.ErrOrStderr(), opts.logLevel, opts.logFormat)
		},
	}
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level: debug, info, warn, error")
	root.PersistentFlags().StringVar(&opts.logFormat, "log-format", "text", "log format: text or json")
	root.PersistentFlags().BoolVar(&opts.plain, "plain", false, "print CSV instead of a table")

	root.AddCommand(
		newViewsCmd(),
		newSummaryCmd(opts),
		newViewCmd(opts),
		newLookupCmd(opts),
		newExportCmd(opts),
	)
	return root
}

func newViewsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "views",
		Short: "List the view names accepted by --kind",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			for _, k := range core.ViewKinds() {
				fmt.Fprintf(cmd.OutOrStdout(), "%-14s %s\n", k, k.Label(5))
			}
		},
	}
}

func newSummaryCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "summary FILE",
		Short: "Count students by result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := loadSheet(cmd, opts, args[0])
			if err != nil {
				return err
			}
			return printView(cmd.OutOrStdout(), core.Summarize(t), opts.plain)
		},
	}
}

func newViewCmd(opts *rootOptions) *cobra.Command {
	var (
		kind string
		n    int
	)
	cmd := &cobra.Command{
		Use:   "view FILE",
		Short: "Print one derived view of a sheet",
		Long: `Print one derived view of a sheet.

Views that need graded rows (top, average) report when no student has a
numeric grade instead of printing an empty table.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := core.ParseViewKind(kind)
			if err != nil {
				return err
			}
			t, err := loadSheet(cmd, opts, args[0])
			if err != nil {
				return err
			}
			v, err := core.BuildView(t, k, n)
			if core.IsEmptyTable(err) {
				fmt.Fprintln(cmd.OutOrStdout(), core.MapError(err).Message)
				return nil
			}
			if err != nil {
				return err
			}
			if !opts.plain {
				fmt.Fprintln(cmd.OutOrStdout(), k.Label(n))
			}
			return printView(cmd.OutOrStdout(), v, opts.plain)
		},
	}
	cmd.Flags().StringVarP(&kind, "kind", "k", string(core.ViewTop), "view to print (see 'resultctl views')")
	cmd.Flags().IntVarP(&n, "top", "n", 5, "row count of the top view")
	return cmd
}

func newLookupCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "lookup FILE NAME",
		Short: "Show one student's result with the grade rounded to two decimals",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := loadSheet(cmd, opts, args[0])
			if err != nil {
				return err
			}
			row, err := core.FindByName(t, strings.Join(args[1:], " "))
			if err != nil {
				return err
			}
			return printView(cmd.OutOrStdout(), row, opts.plain)
		},
	}
}

func newExportCmd(opts *rootOptions) *cobra.Command {
	var (
		kind   string
		n      int
		format string
		output string
	)
	cmd := &cobra.Command{
		Use:   "export FILE",
		Short: "Write a view to CSV or XLSX",
		Long: `Write a view to CSV or XLSX.

Without --output the file is named after the view, for example
top_5_students.xlsx, and written to the current directory.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := core.ParseViewKind(kind)
			if err != nil {
				return err
			}
			f, err := core.ParseFormat(format)
			if err != nil {
				return err
			}
			t, err := loadSheet(cmd, opts, args[0])
			if err != nil {
				return err
			}
			v, err := core.BuildView(t, k, n)
			if err != nil {
				return err
			}
			data, err := core.Encode(v, f)
			if err != nil {
				return err
			}

			if output == "" {
				output = k.FileStem(n) + f.Extension()
			}
			if output == "-" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return fmt.Errorf("write export: %w", err)
			}
			opts.log.Info("export written", "view", k, "format", f, "path", output, "bytes", len(data))
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes)\n", output, len(data))
			return nil
		},
	}
	cmd.Flags().StringVarP(&kind, "kind", "k", string(core.ViewTop), "view to export")
	cmd.Flags().IntVarP(&n, "top", "n", 5, "row count of the top view")
	cmd.Flags().StringVarP(&format, "format", "f", string(core.FormatCSV), "csv or xlsx")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output path, - for stdout")
	return cmd
}

// loadSheet parses the sheet at path, or stdin when path is "-".
func loadSheet(cmd *cobra.Command, opts *rootOptions, path string) (*core.Table, error) {
	r := cmd.InOrStdin()
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}
	t, err := core.ParseTable(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	opts.log.Debug("sheet loaded", "path", path, "rows", t.Len(), "skipped", t.Skipped)
	if t.Skipped > 0 {
		opts.log.Warn("rows without a name were skipped", "path", path, "count", t.Skipped)
	}
	return t, nil
}

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
var cellStyle = lipgloss.NewStyle().Padding(0, 1)

// printView writes v as a bordered table, or as CSV when plain is set.
func printView(w io.Writer, v core.View, plain bool) error {
	if plain {
		return core.Export(w, v, core.FormatCSV)
	}
	tbl := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(v.Header()...).
		Rows(v.Rows()...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	_, err := fmt.Fprintln(w, tbl.Render())
	return err
}
