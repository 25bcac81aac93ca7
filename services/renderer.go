package services

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"sort"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"taxi-dashboard/models"
	"taxi-dashboard/utils"
)

//go:embed templates/dashboard.html.tmpl
var templateFS embed.FS

var dashboardTmpl = template.Must(template.ParseFS(templateFS, "templates/dashboard.html.tmpl"))

// Chart element ids are fixed so identical input renders identical bytes.
const (
	chartHourly    = "chart-hourly"
	chartDaily     = "chart-daily"
	chartLateNight = "chart-late-night"
)

// Renderer turns summary tables into a self-contained HTML dashboard.
type Renderer struct {
	chartsJSURL string
	logger      *utils.Logger
	printer     *message.Printer
}

// NewRenderer creates a Renderer loading the chart runtime from chartsJSURL.
func NewRenderer(chartsJSURL string, logger *utils.Logger) *Renderer {
	return &Renderer{
		chartsJSURL: chartsJSURL,
		logger:      logger,
		printer:     message.NewPrinter(language.English),
	}
}

// optionChart is the subset of the go-echarts chart API used to export options.
type optionChart interface {
	Validate()
	JSON() map[string]interface{}
}

type chartBlock struct {
	ID     string
	Title  string
	Option template.JS
	Tall   bool
}

type labelValue struct {
	Label string
	Value string
}

type hourRow struct {
	Hour          string
	Trips         string
	AvgPassengers string
}

type rankRow struct {
	Rank  int
	Zone  string
	Trips string
}

type lateNightBlock struct {
	Label string
	Rows  []rankRow
}

type pageData struct {
	Title       string
	ChartsJSURL string
	Months      string
	Dataset     string
	GeneratedAt string
	TotalTrips  string
	RowsRead    string
	Dropped     string
	DropReasons []labelValue
	Charts      []chartBlock
	Hourly      []hourRow
	Window      string
	TopK        int
	LateNight   []lateNightBlock
}

// Render builds the HTML document for report. Only report.GeneratedAt
// varies between renders of the same tables.
func (r *Renderer) Render(report *models.SummaryReport) ([]byte, error) {
	hourly, err := r.hourlyChart(report)
	if err != nil {
		return nil, &models.RenderError{Err: err}
	}
	daily, err := r.dailyChart(report)
	if err != nil {
		return nil, &models.RenderError{Err: err}
	}
	lateNight, err := r.lateNightChart(report)
	if err != nil {
		return nil, &models.RenderError{Err: err}
	}

	dataset := report.Dataset
	if dataset == "" {
		dataset = "yellow"
	}

	data := pageData{
		Title:       fmt.Sprintf("NYC %s Taxi Ridership Patterns", titleCase(dataset)),
		ChartsJSURL: r.chartsJSURL,
		Months:      monthsLabel(report.Months),
		Dataset:     dataset,
		GeneratedAt: report.GeneratedAt.Format("2006-01-02 15:04:05 MST"),
		TotalTrips:  r.number(report.TotalTrips),
		RowsRead:    r.number(report.Stats.RowsRead),
		Dropped:     r.number(report.Stats.DroppedTotal()),
		DropReasons: r.dropReasons(report.Stats),
		Charts:      []chartBlock{hourly, daily, lateNight},
		Hourly:      r.hourRows(report.Hourly),
		Window:      fmt.Sprintf("%02d:00–%02d:59", report.WindowStart, report.WindowEnd),
		TopK:        report.TopK,
		LateNight:   r.lateNightBlocks(report.LateNight),
	}

	var buf bytes.Buffer
	if err := dashboardTmpl.Execute(&buf, data); err != nil {
		return nil, &models.RenderError{Err: fmt.Errorf("execute template: %w", err)}
	}

	r.logger.Debug("[renderer] Rendered dashboard (%d bytes)", buf.Len())
	return buf.Bytes(), nil
}

func (r *Renderer) hourlyChart(report *models.SummaryReport) (chartBlock, error) {
	const title = "Circadian Ridership (Hourly Pickups)"

	labels := make([]string, len(report.Hourly))
	points := make([]opts.LineData, len(report.Hourly))
	for i, h := range report.Hourly {
		labels[i] = fmt.Sprintf("%02d", h.Hour)
		points[i] = opts.LineData{Value: h.Trips}
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{ChartID: chartHourly}),
		charts.WithTooltipOpts(opts.Tooltip{Show: true, Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Pickup hour"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Trips"}),
	)
	line.SetXAxis(labels).AddSeries("Trips per hour", points)

	return block(chartHourly, title, line, false)
}

func (r *Renderer) dailyChart(report *models.SummaryReport) (chartBlock, error) {
	const title = "Daily Trip Totals"

	labels := make([]string, len(report.Daily))
	bars := make([]opts.BarData, len(report.Daily))
	for i, d := range report.Daily {
		labels[i] = d.Date.Format("2006-01-02")
		bars[i] = opts.BarData{Value: d.Trips}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{ChartID: chartDaily}),
		charts.WithTooltipOpts(opts.Tooltip{Show: true, Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Service day"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Trips"}),
	)
	bar.SetXAxis(labels).AddSeries("Daily trips", bars)

	return block(chartDaily, title, bar, false)
}

// lateNightChart plots a heatmap of pickup hour × drop-off zone over every
// zone that reached some hour's top list.
func (r *Renderer) lateNightChart(report *models.SummaryReport) (chartBlock, error) {
	const title = "Nighttime Drop-off Hot Spots"

	hourLabels := make([]string, len(report.LateNight))
	totals := map[int]int{}
	names := map[int]string{}
	for i, h := range report.LateNight {
		hourLabels[i] = fmt.Sprintf("%02d", h.Hour)
		for _, z := range h.Zones {
			totals[z.ZoneID] += z.Trips
			names[z.ZoneID] = z.ZoneName
		}
	}

	zoneIDs := make([]int, 0, len(totals))
	for id := range totals {
		zoneIDs = append(zoneIDs, id)
	}
	// Busiest zone first, lower id on ties.
	sort.Slice(zoneIDs, func(i, j int) bool {
		if totals[zoneIDs[i]] != totals[zoneIDs[j]] {
			return totals[zoneIDs[i]] > totals[zoneIDs[j]]
		}
		return zoneIDs[i] < zoneIDs[j]
	})

	zoneLabels := make([]string, len(zoneIDs))
	row := make(map[int]int, len(zoneIDs))
	for i, id := range zoneIDs {
		zoneLabels[i] = names[id]
		row[id] = i
	}

	maxTrips := 0
	cells := make([]opts.HeatMapData, 0)
	for x, h := range report.LateNight {
		for _, z := range h.Zones {
			cells = append(cells, opts.HeatMapData{Value: [3]interface{}{x, row[z.ZoneID], z.Trips}})
			if z.Trips > maxTrips {
				maxTrips = z.Trips
			}
		}
	}

	hm := charts.NewHeatMap()
	hm.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{ChartID: chartLateNight}),
		charts.WithTooltipOpts(opts.Tooltip{Show: true}),
		charts.WithXAxisOpts(opts.XAxis{
			Type:      "category",
			Name:      "Pickup hour",
			Data:      hourLabels,
			SplitArea: &opts.SplitArea{Show: true},
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Type:      "category",
			Data:      zoneLabels,
			SplitArea: &opts.SplitArea{Show: true},
		}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Calculable: true,
			Min:        0,
			Max:        float32(maxTrips),
			InRange: &opts.VisualMapInRange{
				Color: []string{"#440154", "#21918c", "#fde725"},
			},
		}),
	)
	hm.SetXAxis(hourLabels).AddSeries("Trips", cells)

	return block(chartLateNight, title, hm, true)
}

// block exports a chart's option object. encoding/json sorts map keys, so the
// output is stable.
func block(id, title string, c optionChart, tall bool) (chartBlock, error) {
	c.Validate()
	option, err := json.Marshal(c.JSON())
	if err != nil {
		return chartBlock{}, fmt.Errorf("marshal %s options: %w", id, err)
	}
	return chartBlock{ID: id, Title: title, Option: template.JS(option), Tall: tall}, nil
}

func (r *Renderer) hourRows(hours []models.HourlyCount) []hourRow {
	rows := make([]hourRow, len(hours))
	for i, h := range hours {
		avg := "-"
		if h.AvgPassengers > 0 {
			avg = r.printer.Sprintf("%.2f", h.AvgPassengers)
		}
		rows[i] = hourRow{
			Hour:          fmt.Sprintf("%02d:00", h.Hour),
			Trips:         r.number(h.Trips),
			AvgPassengers: avg,
		}
	}
	return rows
}

func (r *Renderer) lateNightBlocks(hours []models.LateNightHour) []lateNightBlock {
	blocks := make([]lateNightBlock, len(hours))
	for i, h := range hours {
		rows := make([]rankRow, len(h.Zones))
		for j, z := range h.Zones {
			rows[j] = rankRow{Rank: j + 1, Zone: z.ZoneName, Trips: r.number(z.Trips)}
		}
		blocks[i] = lateNightBlock{Label: fmt.Sprintf("%02d:00", h.Hour), Rows: rows}
	}
	return blocks
}

func (r *Renderer) dropReasons(stats models.LoadStats) []labelValue {
	var out []labelValue
	for _, reason := range sortedReasons(stats.Dropped) {
		out = append(out, labelValue{
			Label: strings.ReplaceAll(reason, "_", " "),
			Value: r.number(stats.Dropped[reason]),
		})
	}
	return out
}

func (r *Renderer) number(n int) string {
	return r.printer.Sprintf("%d", n)
}

func monthsLabel(months []models.MonthSpec) string {
	if len(months) == 0 {
		return "no months"
	}
	return models.JoinMonths(months)
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
