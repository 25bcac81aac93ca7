package services

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"golang.org/x/net/html"

	"taxi-dashboard/models"
	"taxi-dashboard/utils"
)

func januaryReport(t *testing.T) *models.SummaryReport {
	t.Helper()
	report := newTestAggregator(8).Generate(loadJanuary(t))
	report.Dataset = "yellow"
	report.GeneratedAt = time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)
	return report
}

// elementIDs parses doc and returns the id attributes of all div elements.
func elementIDs(t *testing.T, doc []byte) (ids []string, title string) {
	t.Helper()
	root, err := html.Parse(bytes.NewReader(doc))
	if err != nil {
		t.Fatalf("parse html: %v", err)
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "div":
				for _, a := range n.Attr {
					if a.Key == "id" {
						ids = append(ids, a.Val)
					}
				}
			case "title":
				if n.FirstChild != nil {
					title = n.FirstChild.Data
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return ids, title
}

func TestRenderDashboard(t *testing.T) {
	r := NewRenderer("https://cdn.example.test/echarts.min.js", utils.NewDiscardLogger())
	doc, err := r.Render(januaryReport(t))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	ids, title := elementIDs(t, doc)
	want := []string{chartHourly, chartDaily, chartLateNight}
	if strings.Join(ids, ",") != strings.Join(want, ",") {
		t.Errorf("chart ids: got %v, want %v", ids, want)
	}
	if title != "NYC Yellow Taxi Ridership Patterns" {
		t.Errorf("title: got %q", title)
	}

	page := string(doc)
	for _, s := range []string{
		"https://cdn.example.test/echarts.min.js",
		"Months covered: 2025-01",
		"Generated 2025-06-01 09:30:00 UTC",
		"negative fare",
		"2025-01-31",
		"Zone 48",
	} {
		if !strings.Contains(page, s) {
			t.Errorf("page missing %q", s)
		}
	}
}

func TestRenderEmptyReport(t *testing.T) {
	months, _ := models.ParseMonthRange("2025-01")
	ds := &models.WorkingDataset{Months: months, Stats: models.NewLoadStats()}
	report := newTestAggregator(8).Generate(ds)

	doc, err := NewRenderer("echarts.min.js", utils.NewDiscardLogger()).Render(report)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	ids, _ := elementIDs(t, doc)
	if len(ids) != 3 {
		t.Errorf("chart containers: got %d, want 3", len(ids))
	}
	if !strings.Contains(string(doc), "No trips.") {
		t.Error("empty late-night hours should say so")
	}
}

func TestRenderIsDeterministic(t *testing.T) {
	r := NewRenderer("echarts.min.js", utils.NewDiscardLogger())
	report := januaryReport(t)

	first, err := r.Render(report)
	if err != nil {
		t.Fatal(err)
	}
	second, err := r.Render(report)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(first, second) {
		t.Error("same report should render identical bytes")
	}

	later := *report
	later.GeneratedAt = report.GeneratedAt.Add(time.Hour)
	third, err := r.Render(&later)
	if err != nil {
		t.Fatal(err)
	}
	normalized := strings.ReplaceAll(string(third), "2025-06-01 10:30:00", "2025-06-01 09:30:00")
	if normalized != string(first) {
		t.Error("only the generation timestamp should differ")
	}
}
