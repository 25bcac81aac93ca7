package storage

import (
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"taxi-dashboard/models"
)

func testReport() *models.SummaryReport {
	hourly := make([]models.HourlyCount, 24)
	for i := range hourly {
		hourly[i].Hour = i
	}
	hourly[23] = models.HourlyCount{Hour: 23, Trips: 2, AvgPassengers: 1.5}

	return &models.SummaryReport{
		Hourly: hourly,
		Daily: []models.DailyCount{
			{Date: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), Trips: 0},
			{Date: time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC), Trips: 2},
		},
		LateNight: []models.LateNightHour{
			{Hour: 22},
			{Hour: 23, Zones: []models.ZoneCount{
				{ZoneID: 48, ZoneName: "Clinton East (Manhattan)", Trips: 1},
				{ZoneID: 230, ZoneName: "Times Sq/Theatre District, Manhattan", Trips: 1},
			}},
		},
	}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("parse %s: %v", path, err)
	}
	return rows
}

func TestCSVWriterWriteReport(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "csv")
	paths, err := NewCSVWriter(dir).WriteReport(testReport())
	if err != nil {
		t.Fatalf("WriteReport: %v", err)
	}
	if len(paths) != 3 {
		t.Fatalf("paths: got %d, want 3", len(paths))
	}

	hourly := readCSV(t, filepath.Join(dir, HourlyCSV))
	if len(hourly) != 25 {
		t.Errorf("hourly rows: got %d, want header + 24", len(hourly))
	}
	if got := hourly[24]; got[0] != "23" || got[1] != "2" || got[2] != "1.50" {
		t.Errorf("hour 23 row: got %v", got)
	}

	daily := readCSV(t, filepath.Join(dir, DailyCSV))
	if len(daily) != 3 || daily[2][0] != "2025-01-02" {
		t.Errorf("daily rows: got %v", daily)
	}

	late := readCSV(t, filepath.Join(dir, LateNightCSV))
	if len(late) != 3 {
		t.Fatalf("late-night rows: got %d, want header + 2", len(late))
	}
	if late[2][1] != "2" || late[2][3] != "Times Sq/Theatre District, Manhattan" {
		t.Errorf("second ranked zone: got %v", late[2])
	}
}

func TestCSVWriterUnwritableDir(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	if err := writeBytes(blocker, []byte("x")); err != nil {
		t.Fatal(err)
	}

	_, err := NewCSVWriter(blocker).WriteReport(testReport())
	var re *models.RenderError
	if !errors.As(err, &re) {
		t.Errorf("got %v, want *models.RenderError", err)
	}
}
