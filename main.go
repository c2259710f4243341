package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/levenlabs/go-lflag"
	"github.com/levenlabs/go-llog"
	"gopkg.in/cheggaaa/pb.v1"

	"github.com/romanandriymitsoda-coder/zev-leg-settlement-mvp/internal/config"
	"github.com/romanandriymitsoda-coder/zev-leg-settlement-mvp/internal/observability/metrics"
	profiles "github.com/romanandriymitsoda-coder/zev-leg-settlement-mvp/internal/profiles/domain"
	settlementapp "github.com/romanandriymitsoda-coder/zev-leg-settlement-mvp/internal/settlement/application"
	settlementinterfaces "github.com/romanandriymitsoda-coder/zev-leg-settlement-mvp/internal/settlement/interfaces"
)

const (
	detailsFile   = "scenario_details.csv"
	summaryFile   = "scenario_summary.csv"
	profilesFile  = "profiles.csv"
	workbookFile  = "results.xlsx"
	billChartFile = "graph1_bill_change.pdf"
	frontierFile  = "graph2_fairness_frontier.pdf"
	metricsFile   = "metrics.prom"
)

type runOptions struct {
	ConfigPath    string
	OutDir        string
	Strict        bool
	WriteProfiles bool
	Progress      bool
	Debug         bool
}

func main() {
	configPath := lflag.String("config", "", "Path to a YAML or JSON run config (defaults are used when empty)")
	outDir := lflag.String("out-dir", "", "Output directory (overrides config and ZEVLEG_OUT_DIR)")
	strict := lflag.Bool("strict", false, "Abort on the first scenario failure instead of skipping it")
	writeProfiles := lflag.Bool("write-profiles", false, "Also write the hourly profile table as profiles.csv")
	progress := lflag.Bool("progress", false, "Show a progress bar over scenarios on stderr")
	lflag.Configure()

	logger := log.New(os.Stdout, "", log.LstdFlags)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	opts := runOptions{
		ConfigPath:    *configPath,
		OutDir:        *outDir,
		Strict:        *strict,
		WriteProfiles: *writeProfiles,
		Progress:      *progress,
		Debug:         llog.GetLevel() == llog.DebugLevel,
	}
	if err := run(ctx, logger, opts); err != nil {
		logger.Printf("run failed: %v", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *log.Logger, opts runOptions) error {
	metrics.Init()

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return err
	}
	if opts.OutDir != "" {
		cfg.OutputDir = opts.OutDir
	}
	tariff, err := cfg.TariffValue()
	if err != nil {
		return err
	}
	scenarios := cfg.ScenarioValues()
	if opts.Debug {
		logger.Printf("config: year=%d seed=%d scenarios=%d out=%s", cfg.Year, cfg.Seed, len(scenarios), cfg.OutputDir)
	}

	start := time.Now()
	table, err := profiles.GenerateSyntheticYear(cfg.ProfileParams())
	if err != nil {
		return fmt.Errorf("generate profiles: %w", err)
	}
	metrics.ObserveProfileGenerate(time.Since(start))
	for _, c := range profiles.Columns() {
		total := table.Sum(c)
		metrics.SetProfileEnergy(string(c), total)
		if opts.Debug {
			logger.Printf("profiles: column=%s kwh=%.1f", c, total)
		}
	}
	logger.Printf("profiles generated: year=%d hours=%d", table.Year(), table.Len())

	serviceOpts := []settlementapp.Option{
		settlementapp.WithStrict(opts.Strict),
		settlementapp.WithPublisher(settlementinterfaces.NewLoggingPublisher(logger)),
	}
	var bar *pb.ProgressBar
	if opts.Progress {
		bar = pb.New(len(scenarios))
		bar.Output = os.Stderr
		bar.ShowTimeLeft = false
		bar.Start()
		serviceOpts = append(serviceOpts, settlementapp.WithProgress(bar))
	}
	svc := settlementapp.NewScenarioRunService(logger, serviceOpts...)
	res, runErr := svc.Run(ctx, table, tariff, scenarios)
	if bar != nil {
		bar.Finish()
	}
	if runErr != nil {
		return runErr
	}
	if len(res.Failures) > 0 {
		logger.Printf("run finished with failures: count=%d", len(res.Failures))
	}

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	info := settlementinterfaces.RunInfo{Year: cfg.Year, Seed: cfg.Seed, Currency: cfg.Currency, Tariff: tariff}
	outputs := []output{
		{detailsFile, "csv", func() ([]byte, error) { return csvBytes(res.Details, settlementinterfaces.WriteDetailsCSV) }},
		{summaryFile, "csv", func() ([]byte, error) { return csvBytes(res.Points, settlementinterfaces.WriteSummaryCSV) }},
		{workbookFile, "xlsx", func() ([]byte, error) { return settlementinterfaces.BuildResultsXLSX(info, res) }},
		{billChartFile, "pdf", func() ([]byte, error) { return settlementinterfaces.BuildBillChangePDF(res.Details, cfg.Currency) }},
		{frontierFile, "pdf", func() ([]byte, error) { return settlementinterfaces.BuildFrontierPDF(res.Points, cfg.Currency) }},
	}
	if opts.WriteProfiles {
		outputs = append(outputs, output{profilesFile, "csv", func() ([]byte, error) { return csvBytes(table, settlementinterfaces.WriteProfilesCSV) }})
	}
	for _, out := range outputs {
		if err := writeOutput(logger, filepath.Join(cfg.OutputDir, out.name), out.format, out.build); err != nil {
			return err
		}
	}

	if err := metrics.WriteTextfile(filepath.Join(cfg.OutputDir, metricsFile)); err != nil {
		logger.Printf("metrics write error: %v", err)
	}
	logger.Printf("run complete: scenarios=%d rows=%d failures=%d out=%s", len(res.Outcomes), len(res.Details), len(res.Failures), cfg.OutputDir)
	return nil
}

type output struct {
	name   string
	format string
	build  func() ([]byte, error)
}

func csvBytes[T any](v T, write func(io.Writer, T) error) ([]byte, error) {
	var buf bytes.Buffer
	if err := write(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeOutput(logger *log.Logger, path, format string, build func() ([]byte, error)) error {
	start := time.Now()
	data, err := build()
	if err == nil {
		err = os.WriteFile(path, data, 0o644)
	}
	if err != nil {
		metrics.ObserveExport(format, metrics.ResultError, time.Since(start))
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	metrics.ObserveExport(format, metrics.ResultSuccess, time.Since(start))
	logger.Printf("output written: path=%s bytes=%d", path, len(data))
	return nil
}
