// Command taxi-dashboard builds a static HTML ridership dashboard from the
// public NYC TLC trip record files.
//
// Usage:
//
//	taxi-dashboard --months 2025-01:2025-03 --output outputs/dashboard.html
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"taxi-dashboard/config"
	"taxi-dashboard/fetcher/tlc"
	"taxi-dashboard/models"
	"taxi-dashboard/services"
	"taxi-dashboard/storage"
	"taxi-dashboard/utils"
)

func main() {
	Execute()
}

// run drives fetch → load → aggregate → render and returns the absolute path
// of the written dashboard. Nothing is written unless every stage succeeds.
func run(ctx context.Context, cfg *config.Config, logger *utils.Logger, stdout io.Writer, now func() time.Time) (string, error) {
	months, err := cfg.MonthRange()
	if err != nil {
		return "", err
	}
	loc, err := cfg.Location()
	if err != nil {
		return "", err
	}

	logger.Info("=== NYC taxi dashboard starting ===")
	logger.Info("Config: months %s | dataset %s | cache %s | concurrency %d",
		models.JoinMonths(months), cfg.Dataset, cfg.CacheDir, cfg.MaxConcurrency)

	fetcher, err := tlc.New(cfg, logger, tlc.WithClock(now))
	if err != nil {
		return "", err
	}

	files, err := fetcher.EnsureAll(ctx, months)
	if err != nil {
		return "", err
	}

	zones := models.DefaultZoneLookup()
	zonePath, err := fetcher.EnsureZoneLookup(ctx)
	if err != nil {
		return "", err
	}
	if zonePath != "" {
		zones, err = storage.ReadZoneLookup(zonePath)
		if err != nil {
			return "", &models.LoadError{Path: zonePath, Err: err}
		}
		logger.Debug("Zone lookup: %d zones, max id %d", zones.Len(), zones.MaxID())
	}

	reader := storage.NewTripReader(storage.TripSchema(cfg.Dataset), loc)
	loader := services.NewLoader(reader, zones, logger)
	dataset, err := loader.Load(files)
	if err != nil {
		return "", err
	}

	aggregator := services.NewAggregator(zones, cfg.LateNightStart, cfg.LateNightEnd, cfg.TopK, logger)
	report := aggregator.Generate(dataset)
	report.Dataset = cfg.Dataset
	report.GeneratedAt = now()

	if err := services.NewSummaryPrinter(stdout).Print(report); err != nil {
		logger.Warn("Failed to print summary: %v", err)
	}

	doc, err := services.NewRenderer(cfg.ChartsJSURL, logger).Render(report)
	if err != nil {
		return "", err
	}

	// The dashboard goes last so a failed export leaves no dashboard behind.
	if cfg.CSVDir != "" {
		paths, err := storage.NewCSVWriter(cfg.CSVDir).WriteReport(report)
		if err != nil {
			return "", err
		}
		logger.Info("Exported %d CSV tables to %s", len(paths), cfg.CSVDir)
	}

	if err := storage.NewHTMLWriter().Write(cfg.OutputPath, doc); err != nil {
		return "", err
	}
	logger.Info("Dashboard written (%d bytes)", len(doc))

	path := storage.AbsPath(cfg.OutputPath)
	return path, nil
}

// errorKind names the pipeline stage that failed.
func errorKind(err error) string {
	var (
		fetchErr  *models.FetchError
		loadErr   *models.LoadError
		renderErr *models.RenderError
	)
	switch {
	case errors.As(err, &fetchErr):
		return "FetchError"
	case errors.As(err, &loadErr):
		return "LoadError"
	case errors.As(err, &renderErr):
		return "RenderError"
	default:
		return "Error"
	}
}

func describeError(err error) string {
	return fmt.Sprintf("%s: %v", errorKind(err), err)
}
