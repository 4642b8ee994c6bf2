package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/dmsqlkit/dmtrace/internal/config"
	"github.com/dmsqlkit/dmtrace/internal/exporter"
	"github.com/dmsqlkit/dmtrace/internal/ingestion"
	"github.com/dmsqlkit/dmtrace/internal/logging"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "dmtrace",
	Short: "Parse dmsql trace logs and export the records",
	Long: `dmtrace parses dmsql database trace logs into structured records
and exports them to CSV, JSONL, SQLite or Postgres sinks.`,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the dmtrace version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("dmtrace", version)
	},
}

var (
	flagConfig    string
	flagThreads   int
	flagChunkSize int
	flagErrorsOut string
)

var parseCmd = &cobra.Command{
	Use:   "parse [paths...]",
	Short: "Parse trace files and export their records",
	Long: `Parse the given trace files, or scan the configured trace directory
for dmsql*.log files when no paths are given. Records go to every exporter
configured in dmtrace.yaml; parse errors can be appended to a JSONL file.`,
	RunE: runParse,
}

func init() {
	parseCmd.Flags().StringVar(&flagConfig, "config", "", "config file (default dmtrace.yaml)")
	parseCmd.Flags().IntVar(&flagThreads, "threads", 0, "parser workers (0 = number of CPUs)")
	parseCmd.Flags().IntVar(&flagChunkSize, "chunk-size", 0, "records per batch (0 = whole file)")
	parseCmd.Flags().StringVar(&flagErrorsOut, "errors-out", "", "JSONL file to append parse errors to")
	rootCmd.AddCommand(parseCmd, versionCmd)
}

func runParse(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("threads") {
		cfg.Threads = flagThreads
	}
	if cmd.Flags().Changed("chunk-size") {
		cfg.ChunkSize = flagChunkSize
	}
	if cmd.Flags().Changed("errors-out") {
		cfg.ErrorsOut = flagErrorsOut
	}

	logger, guard, err := logging.Setup(cfg.Log)
	if err != nil {
		return err
	}
	defer guard.Close()
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	paths := args
	if len(paths) == 0 {
		paths, err = ingestion.ScanDir(cfg.SQLLogDir, logger)
		if err != nil {
			return err
		}
	}
	if len(paths) == 0 {
		logger.Info("no trace files to parse", "dir", cfg.SQLLogDir)
		return nil
	}

	opts := ingestion.Options{
		ThreadCount: cfg.Threads,
		ChunkSize:   cfg.ChunkSize,
		QueueSize:   cfg.QueueSize,
		ErrorsOut:   cfg.ErrorsOut,
		Logger:      logger,
	}

	exp, err := buildExporter(cmd, cfg)
	if err != nil {
		return err
	}

	if exp == nil {
		res, err := ingestion.ParseFilesConcurrent(ctx, paths, opts)
		if err != nil {
			return err
		}
		printSummary(cmd, res.Files)
		return nil
	}

	svc := ingestion.NewExportService(exp, opts)
	stats, files, err := svc.Run(ctx, paths)
	if err != nil {
		return err
	}
	printSummary(cmd, files)
	fmt.Fprintln(cmd.OutOrStdout(), stats.String())
	return nil
}

// buildExporter assembles the sinks from the config. nil means no sink is
// configured and the run only reports counts.
func buildExporter(cmd *cobra.Command, cfg *config.Config) (exporter.Exporter, error) {
	var sinks []exporter.Exporter

	if c := cfg.Exporters.CSV; c != nil {
		e, err := exporter.NewCSVExporter(exporter.CSVOptions{Path: c.Path, Append: c.Append})
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, e)
	}
	if c := cfg.Exporters.JSON; c != nil {
		e, err := exporter.NewJSONExporter(exporter.JSONOptions{Path: c.Path, Append: c.Append})
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, e)
	}
	if c := cfg.Exporters.SQLite; c != nil {
		e, err := exporter.NewSQLiteExporter(exporter.SQLiteOptions{
			Path: c.Path, Table: c.Table, Append: c.Append,
		})
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, e)
	}
	if c := cfg.Exporters.Postgres; c != nil {
		e, err := exporter.NewPostgresExporter(cmd.Context(), exporter.PostgresOptions{
			URL: c.URL, Table: c.Table, Append: c.Append,
		})
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, e)
	}

	switch len(sinks) {
	case 0:
		return nil, nil
	case 1:
		return sinks[0], nil
	default:
		return exporter.NewMultiExporter(sinks...), nil
	}
}

func printSummary(cmd *cobra.Command, files []ingestion.FileResult) {
	out := cmd.OutOrStdout()
	totalRecords, totalErrors := 0, 0
	for _, fr := range files {
		totalRecords += fr.Records
		totalErrors += fr.Errors
		status := "ok"
		if fr.Err != nil {
			status = fr.Err.Error()
		}
		fmt.Fprintf(out, "%s: %d records, %d errors (%s)\n",
			fr.Path, fr.Records, fr.Errors, status)
	}
	fmt.Fprintf(out, "total: %d files, %d records, %d errors\n",
		len(files), totalRecords, totalErrors)
}

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("could not load .env file", "error", err)
	}
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
