package main

import (
	"fmt"
	"os"
	"time"

	"sql-compact/internal/analyzer"
	"sql-compact/internal/auditor"
	"sql-compact/internal/cache"
	"sql-compact/internal/compressor"
	"sql-compact/internal/model"
	"sql-compact/internal/parser"
	"sql-compact/internal/reporter"
	"sql-compact/internal/workload"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const version = "v0.1.0"

var (
	inputPath  string
	reportFmt  string
	outputFile string
	topN       int
	runAudit   bool
	workers    int
	cacheTTL   time.Duration
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "sql-compact",
	Short: "Compress SQL workload statistics into structural patterns",
	Long: `sql-compact ingests statement texts paired with execution statistics
(e.g. sampled from a database activity monitor), extracts structural
features from each statement, and deduplicates the workload by
structural signature, rolling up the execution counters per pattern.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCompression()
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of sql-compact",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("sql-compact " + version)
	},
}

func init() {
	rootCmd.Flags().StringVarP(&inputPath, "input", "i", "", "Path to a JSON stats file or a directory of JSON stats files")
	rootCmd.Flags().StringVarP(&reportFmt, "report", "r", "console", "Report format (console, json)")
	rootCmd.Flags().StringVarP(&outputFile, "out", "o", "", "Output file path for the json report (default: stdout)")
	rootCmd.Flags().IntVarP(&topN, "top", "t", 20, "Number of patterns to show in the console report (0 = all)")
	rootCmd.Flags().BoolVarP(&runAudit, "audit", "a", false, "Lint the representative statement of each pattern")
	rootCmd.Flags().IntVarP(&workers, "workers", "w", 1, "Extraction workers (grouping stays in input order)")
	rootCmd.Flags().DurationVar(&cacheTTL, "cache-ttl", 5*time.Minute, "TTL for the in-memory feature cache (0 disables caching)")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	_ = rootCmd.MarkFlagRequired("input")

	rootCmd.AddCommand(versionCmd)
	rootCmd.Version = version
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func newLogger() *zap.Logger {
	if !verbose {
		return zap.NewNop()
	}
	logger, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

func runCompression() error {
	logger := newLogger()
	defer func() { _ = logger.Sync() }()

	// 1. Load the workload
	records, err := workload.Load(inputPath)
	if err != nil {
		return fmt.Errorf("loading workload: %w", err)
	}
	fmt.Printf("Loaded %d statement records from %s\n", len(records), inputPath)

	// 2. Compress
	comp := compressor.NewCompressor(analyzer.NewAnalyzer(logger), logger)
	comp.Workers = workers
	if cacheTTL > 0 {
		comp.SetCache(cache.NewMemory(), cacheTTL)
	}

	result, err := comp.Compress(records)
	if err != nil {
		return fmt.Errorf("compression failed: %w", err)
	}

	// 3. Audit hot patterns
	var findings []model.Finding
	if runAudit {
		engine := auditor.NewAuditor(parser.NewSQLParser(), logger)
		engine.Register(&auditor.UnsafeDMLRule{})
		engine.Register(&auditor.SelectStarRule{})
		engine.Register(&auditor.DeepPaginationRule{Threshold: 5000})
		engine.Register(&auditor.NegativeQueryRule{})

		findings, err = engine.Audit(result.Groups)
		if err != nil {
			return fmt.Errorf("audit failed: %w", err)
		}
	}

	// 4. Report
	var rpt model.Reporter
	switch reportFmt {
	case "json":
		rpt = reporter.NewJSONReporter(outputFile)
	default:
		rpt = reporter.NewConsoleReporter(topN)
	}

	if err := rpt.Report(result, findings); err != nil {
		return fmt.Errorf("reporting failed: %w", err)
	}

	return nil
}
