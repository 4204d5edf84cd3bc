// Package main provides the CLI entry point for gridsheet.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/ukaji3/gridsheet-go/pkg/gridsheet"
	"github.com/ukaji3/gridsheet-go/pkg/gridsheet/grid"
	"github.com/ukaji3/gridsheet-go/pkg/gridsheet/output"
	"github.com/ukaji3/gridsheet-go/pkg/gridsheet/store"
	"github.com/ukaji3/gridsheet-go/pkg/gridsheet/tui"
)

var (
	backend       string
	redisAddr     string
	redisPassword string
	redisDB       int
	workbookPath  string
	sheet         string
	rows          int
	cols          int
	cellWidth     int
	cellHeight    int
	timeout       time.Duration
	logFile       string

	outputPath string
	pretty     bool
	importFrom string
)

func main() {
	defaults := gridsheet.DefaultOptions()

	rootCmd := &cobra.Command{
		Use:   "gridsheet",
		Short: "Edit spreadsheets in the terminal",
		Long: `gridsheet is a terminal grid editor with SUM and PRODUCT formulas.
Sheets are kept in memory, in redis, or in an .xlsx workbook.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE:         run,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&backend, "backend", string(defaults.Backend), "Persistence backend: memory, redis, xlsx")
	flags.StringVar(&redisAddr, "redis-addr", defaults.RedisAddr, "Redis server address")
	flags.StringVar(&redisPassword, "redis-password", "", "Redis password")
	flags.IntVar(&redisDB, "redis-db", 0, "Redis database number")
	flags.StringVar(&workbookPath, "file", "", "Workbook path for the xlsx backend")
	flags.DurationVar(&timeout, "timeout", defaults.Timeout, "Timeout for each storage call")
	flags.StringVar(&logFile, "log-file", "", "Write logs to this file (default: discard)")

	rootCmd.Flags().StringVar(&sheet, "sheet", defaults.Sheet, "Sheet to open (default: show the sheet picker)")
	rootCmd.Flags().IntVar(&rows, "rows", 0, "Grid rows (default: fit to terminal)")
	rootCmd.Flags().IntVar(&cols, "cols", 0, "Grid columns (default: fit to terminal)")
	rootCmd.Flags().IntVar(&cellWidth, "cell-width", defaults.CellWidth, "Cell width in terminal columns")
	rootCmd.Flags().IntVar(&cellHeight, "cell-height", defaults.CellHeight, "Cell height in terminal lines")

	rootCmd.AddCommand(sheetsCmd(), exportCmd(), importCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func sheetsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sheets",
		Short: "Manage the sheet catalog",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List sheets",
		Args:  cobra.NoArgs,
		RunE:  runSheetsList,
	}, &cobra.Command{
		Use:   "create NAME",
		Short: "Create an empty sheet",
		Args:  cobra.ExactArgs(1),
		RunE:  runSheetsCreate,
	})
	return cmd
}

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export SHEET",
		Short: "Export a sheet as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  runExport,
	}
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file path (default: stdout)")
	cmd.Flags().BoolVar(&pretty, "pretty", false, "Pretty-print JSON output")
	return cmd
}

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import INPUT.xlsx SHEET",
		Short: "Copy a worksheet of an xlsx file into a sheet",
		Args:  cobra.ExactArgs(2),
		RunE:  runImport,
	}
	cmd.Flags().StringVar(&importFrom, "worksheet", "", "Worksheet to read (default: the first one)")
	return cmd
}

// options builds Options from the flags. It also installs the logger, so it
// is called once per command.
func options() (gridsheet.Options, func(), error) {
	opts := gridsheet.DefaultOptions()
	opts.Backend = gridsheet.Backend(backend)
	opts.RedisAddr = redisAddr
	opts.RedisPassword = redisPassword
	opts.RedisDB = redisDB
	opts.WorkbookPath = workbookPath
	opts.Sheet = sheet
	opts.Rows = rows
	opts.Cols = cols
	opts.CellWidth = cellWidth
	opts.CellHeight = cellHeight
	opts.Timeout = timeout

	logger, closeLog, err := newLogger()
	if err != nil {
		return opts, nil, err
	}
	opts.Logger = logger
	slog.SetDefault(logger)

	if err := opts.Validate(); err != nil {
		closeLog()
		return opts, nil, err
	}
	return opts, closeLog, nil
}

func newLogger() (*slog.Logger, func(), error) {
	if logFile == "" {
		return slog.New(slog.NewTextHandler(io.Discard, nil)), func() {}, nil
	}
	f, err := tea.LogToFile(logFile, "gridsheet")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	logger := slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return logger, func() { f.Close() }, nil
}

func connect(ctx context.Context) (store.Gateway, gridsheet.Options, func(), error) {
	opts, closeLog, err := options()
	if err != nil {
		return nil, opts, nil, err
	}
	gw, err := gridsheet.Connect(ctx, opts)
	if err != nil {
		closeLog()
		return nil, opts, nil, fmt.Errorf("failed to connect to %s backend: %w", opts.Backend, err)
	}
	cleanup := func() {
		if err := gw.Close(); err != nil {
			opts.Logger.Warn("close failed", "err", err)
		}
		closeLog()
	}
	return gw, opts, cleanup, nil
}

func run(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	gw, opts, cleanup, err := connect(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	pick := !cmd.Flags().Changed("sheet")
	model, err := tui.New(ctx, gw, opts, pick)
	if err != nil {
		return err
	}

	if _, err := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run(); err != nil {
		return fmt.Errorf("terminal session failed: %w", err)
	}
	return nil
}

func runSheetsList(cmd *cobra.Command, args []string) error {
	gw, _, cleanup, err := connect(cmd.Context())
	if err != nil {
		return err
	}
	defer cleanup()

	sheets, err := gw.ListSheets(cmd.Context())
	if err != nil {
		return err
	}
	for _, s := range sheets {
		fmt.Fprintln(cmd.OutOrStdout(), s.Name)
	}
	return nil
}

func runSheetsCreate(cmd *cobra.Command, args []string) error {
	gw, _, cleanup, err := connect(cmd.Context())
	if err != nil {
		return err
	}
	defer cleanup()

	return gw.CreateSheet(cmd.Context(), args[0])
}

func runExport(cmd *cobra.Command, args []string) error {
	gw, opts, cleanup, err := connect(cmd.Context())
	if err != nil {
		return err
	}
	defer cleanup()

	doc, err := gridsheet.NewDocument(gw, opts, 1, 1)
	if err != nil {
		return err
	}
	if err := doc.Load(cmd.Context(), args[0]); err != nil {
		return err
	}

	jsonData, err := output.ToJSON(output.Sheet(args[0], doc.Grid()), pretty)
	if err != nil {
		return fmt.Errorf("serialization failed: %w", err)
	}

	if outputPath != "" {
		if err := os.WriteFile(outputPath, jsonData, 0644); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(jsonData))
	return nil
}

func runImport(cmd *cobra.Command, args []string) error {
	inputPath, target := args[0], args[1]

	if _, err := os.Stat(inputPath); os.IsNotExist(err) {
		return fmt.Errorf("file not found: %s", inputPath)
	}

	cells, err := store.ReadSheet(inputPath, importFrom)
	if err != nil {
		return err
	}

	gw, opts, cleanup, err := connect(cmd.Context())
	if err != nil {
		return err
	}
	defer cleanup()

	needRows, needCols := grid.RequiredSize(cells)
	if needRows > opts.MaxRows || needCols > opts.MaxCols {
		opts.Logger.Warn("import exceeds the editable area", "rows", needRows, "cols", needCols)
	}
	if err := gw.Save(cmd.Context(), target, cells); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "imported %d cells into %q\n", len(cells), target)
	return nil
}
