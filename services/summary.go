package services

import (
	"fmt"
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"taxi-dashboard/models"
)

// SummaryPrinter writes a console summary of the report in Markdown.
type SummaryPrinter struct {
	out     io.Writer
	printer *message.Printer
}

// NewSummaryPrinter creates a SummaryPrinter writing to out.
func NewSummaryPrinter(out io.Writer) *SummaryPrinter {
	return &SummaryPrinter{out: out, printer: message.NewPrinter(language.English)}
}

// Print writes the overview, load statistics and the headline figures.
func (s *SummaryPrinter) Print(r *models.SummaryReport) error {
	md := markdown.NewMarkdown(s.out)

	md.H1("NYC Taxi Ridership Summary")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Months", monthsLabel(r.Months)},
			{"Rows read", s.number(r.Stats.RowsRead)},
			{"Trips kept", s.number(r.TotalTrips)},
			{"Rows dropped", s.number(r.Stats.DroppedTotal())},
		},
	})
	md.PlainText("")

	if len(r.Stats.Dropped) > 0 {
		md.H2("Dropped Rows")
		md.PlainText("")
		rows := make([][]string, 0, len(r.Stats.Dropped))
		for _, reason := range sortedReasons(r.Stats.Dropped) {
			rows = append(rows, []string{reason, s.number(r.Stats.Dropped[reason])})
		}
		md.Table(markdown.TableSet{Header: []string{"Reason", "Rows"}, Rows: rows})
		md.PlainText("")
	}

	md.H2("Highlights")
	md.PlainText("")
	if r.TotalTrips == 0 {
		md.PlainText("No valid trips in the requested months.")
		md.PlainText("")
		return md.Build()
	}
	md.BulletList(s.highlights(r)...)
	md.PlainText("")

	md.H2("Late-night Hot Spots")
	md.PlainText("")
	rows := make([][]string, 0, len(r.LateNight))
	for _, h := range r.LateNight {
		if len(h.Zones) == 0 {
			continue
		}
		top := h.Zones[0]
		rows = append(rows, []string{
			fmt.Sprintf("%02d:00", h.Hour), top.ZoneName, s.number(top.Trips), strconv.Itoa(len(h.Zones)),
		})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Hour", "Top drop-off zone", "Trips", "Zones ranked"},
		Rows:   rows,
	})
	md.PlainText("")

	return md.Build()
}

func (s *SummaryPrinter) highlights(r *models.SummaryReport) []string {
	peak := r.Hourly[0]
	quiet := r.Hourly[0]
	for _, h := range r.Hourly {
		if h.Trips > peak.Trips {
			peak = h
		}
		if h.Trips < quiet.Trips {
			quiet = h
		}
	}

	var busiest models.DailyCount
	for _, d := range r.Daily {
		if d.Trips > busiest.Trips {
			busiest = d
		}
	}

	items := []string{
		fmt.Sprintf("Peak pickup hour: %02d:00 (%s trips)", peak.Hour, s.number(peak.Trips)),
		fmt.Sprintf("Quietest pickup hour: %02d:00 (%s trips)", quiet.Hour, s.number(quiet.Trips)),
	}
	if busiest.Trips > 0 {
		items = append(items, fmt.Sprintf("Busiest day: %s (%s trips)",
			busiest.Date.Format("Mon Jan 2, 2006"), s.number(busiest.Trips)))
	}
	if len(r.Daily) > 0 {
		items = append(items, fmt.Sprintf("Average trips per day: %s",
			s.number(r.TotalTrips/len(r.Daily))))
	}
	return items
}

func (s *SummaryPrinter) number(n int) string {
	return s.printer.Sprintf("%d", n)
}
