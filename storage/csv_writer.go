package storage

import (
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strconv"

	"taxi-dashboard/models"
	"taxi-dashboard/utils"
)

// CSV export file names inside the export directory.
const (
	HourlyCSV    = "hourly_ridership.csv"
	DailyCSV     = "daily_totals.csv"
	LateNightCSV = "late_night_dropoffs.csv"
)

// CSVWriter exports the summary tables as CSV files, one per table.
// Each file is replaced atomically.
type CSVWriter struct {
	dir string
}

// NewCSVWriter creates a writer for dir. The directory is created on first write.
func NewCSVWriter(dir string) *CSVWriter {
	return &CSVWriter{dir: dir}
}

// WriteReport writes all three tables and returns the paths written.
func (c *CSVWriter) WriteReport(r *models.SummaryReport) ([]string, error) {
	hourly := make([][]string, len(r.Hourly))
	for i, h := range r.Hourly {
		hourly[i] = []string{
			strconv.Itoa(h.Hour),
			strconv.Itoa(h.Trips),
			strconv.FormatFloat(h.AvgPassengers, 'f', 2, 64),
		}
	}

	daily := make([][]string, len(r.Daily))
	for i, d := range r.Daily {
		daily[i] = []string{d.Date.Format("2006-01-02"), strconv.Itoa(d.Trips)}
	}

	var lateNight [][]string
	for _, h := range r.LateNight {
		for rank, z := range h.Zones {
			lateNight = append(lateNight, []string{
				strconv.Itoa(h.Hour),
				strconv.Itoa(rank + 1),
				strconv.Itoa(z.ZoneID),
				z.ZoneName,
				strconv.Itoa(z.Trips),
			})
		}
	}

	tables := []struct {
		name   string
		header []string
		rows   [][]string
	}{
		{HourlyCSV, []string{"hour", "trips", "avg_passengers"}, hourly},
		{DailyCSV, []string{"date", "trips"}, daily},
		{LateNightCSV, []string{"hour", "rank", "zone_id", "zone", "trips"}, lateNight},
	}

	paths := make([]string, 0, len(tables))
	for _, t := range tables {
		path := filepath.Join(c.dir, t.name)
		if err := writeCSV(path, t.header, t.rows); err != nil {
			return paths, &models.RenderError{Path: path, Err: err}
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writeCSV(path string, header []string, rows [][]string) error {
	return utils.WriteFileAtomic(path, 0o644, func(out io.Writer) error {
		w := csv.NewWriter(out)
		if err := w.Write(header); err != nil {
			return fmt.Errorf("csv: write header: %w", err)
		}
		if err := w.WriteAll(rows); err != nil {
			return fmt.Errorf("csv: write rows: %w", err)
		}
		return w.Error()
	})
}
