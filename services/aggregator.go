package services

import (
	"sort"
	"time"

	"taxi-dashboard/models"
	"taxi-dashboard/utils"
)

// Aggregator computes the dashboard summary tables. Its methods do not
// modify the dataset.
type Aggregator struct {
	zones       *models.ZoneLookup
	windowStart int
	windowEnd   int
	topK        int
	logger      *utils.Logger
}

// NewAggregator creates an Aggregator for the late-night window
// [windowStart, windowEnd] (inclusive, wrapping midnight when start > end)
// keeping topK zones per hour.
func NewAggregator(zones *models.ZoneLookup, windowStart, windowEnd, topK int, logger *utils.Logger) *Aggregator {
	if zones == nil {
		zones = models.DefaultZoneLookup()
	}
	return &Aggregator{
		zones:       zones,
		windowStart: windowStart,
		windowEnd:   windowEnd,
		topK:        topK,
		logger:      logger,
	}
}

// Generate computes all three tables for ds.
func (a *Aggregator) Generate(ds *models.WorkingDataset) *models.SummaryReport {
	report := &models.SummaryReport{
		Months:      ds.Months,
		TotalTrips:  ds.Len(),
		Stats:       ds.Stats,
		Hourly:      a.HourlyRidership(ds),
		Daily:       a.DailyTotals(ds, ds.Months),
		LateNight:   a.LateNightDropoffs(ds),
		WindowStart: a.windowStart,
		WindowEnd:   a.windowEnd,
		TopK:        a.topK,
	}

	a.logger.Info("[aggregator] %d trips → %d hourly buckets, %d days, %d late-night hours",
		report.TotalTrips, len(report.Hourly), len(report.Daily), len(report.LateNight))
	return report
}

// HourlyRidership counts pickups per hour of day. It always returns 24
// entries, zero-filled, summing to the number of trips.
func (a *Aggregator) HourlyRidership(ds *models.WorkingDataset) []models.HourlyCount {
	hours := make([]models.HourlyCount, 24)
	passengerSum := make([]float64, 24)
	passengerTrips := make([]int, 24)

	for i := range hours {
		hours[i].Hour = i
	}
	if ds != nil {
		for _, t := range ds.Trips {
			h := t.Pickup.Hour()
			hours[h].Trips++
			if t.Passengers > 0 {
				passengerSum[h] += t.Passengers
				passengerTrips[h]++
			}
		}
	}

	for i := range hours {
		if passengerTrips[i] > 0 {
			hours[i].AvgPassengers = round2(passengerSum[i] / float64(passengerTrips[i]))
		}
	}
	return hours
}

// DailyTotals counts pickups per calendar date over every day of months,
// ascending and zero-filled.
func (a *Aggregator) DailyTotals(ds *models.WorkingDataset, months []models.MonthSpec) []models.DailyCount {
	if len(months) == 0 {
		return []models.DailyCount{}
	}

	counts := make(map[time.Time]int)
	if ds != nil {
		for _, t := range ds.Trips {
			counts[dateOf(t.Pickup)]++
		}
	}

	first := months[0]
	last := months[len(months)-1]
	for _, m := range months {
		if m.Before(first) {
			first = m
		}
		if last.Before(m) {
			last = m
		}
	}

	end := last.Next().FirstDay()
	days := make([]models.DailyCount, 0, int(end.Sub(first.FirstDay()).Hours()/24))
	for d := first.FirstDay(); d.Before(end); d = d.AddDate(0, 0, 1) {
		days = append(days, models.DailyCount{Date: d, Trips: counts[d]})
	}
	return days
}

// LateNightDropoffs ranks drop-off zones for each hour of the late-night
// window, in window order. Each hour keeps at most topK zones sorted by trips
// descending, ties broken by lower zone id.
func (a *Aggregator) LateNightDropoffs(ds *models.WorkingDataset) []models.LateNightHour {
	window := WindowHours(a.windowStart, a.windowEnd)
	inWindow := make(map[int]map[int]int, len(window))
	for _, h := range window {
		inWindow[h] = make(map[int]int)
	}

	if ds != nil {
		for _, t := range ds.Trips {
			if zones, ok := inWindow[t.Pickup.Hour()]; ok {
				zones[t.DropoffZone]++
			}
		}
	}

	result := make([]models.LateNightHour, 0, len(window))
	for _, h := range window {
		ranked := make([]models.ZoneCount, 0, len(inWindow[h]))
		for zone, n := range inWindow[h] {
			ranked = append(ranked, models.ZoneCount{ZoneID: zone, Trips: n})
		}
		sort.Slice(ranked, func(i, j int) bool {
			if ranked[i].Trips != ranked[j].Trips {
				return ranked[i].Trips > ranked[j].Trips
			}
			return ranked[i].ZoneID < ranked[j].ZoneID
		})
		if len(ranked) > a.topK {
			ranked = ranked[:a.topK]
		}
		for i := range ranked {
			ranked[i].ZoneName = a.zones.Name(ranked[i].ZoneID)
		}
		result = append(result, models.LateNightHour{Hour: h, Zones: ranked})
	}
	return result
}

// WindowHours lists the hours of an inclusive window, wrapping midnight when
// start > end. WindowHours(22, 5) is 22, 23, 0, 1, 2, 3, 4, 5.
func WindowHours(start, end int) []int {
	var hours []int
	for h := start; ; h = (h + 1) % 24 {
		hours = append(hours, h)
		if h == end || len(hours) == 24 {
			break
		}
	}
	return hours
}

func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func round2(f float64) float64 {
	return float64(int(f*100+0.5)) / 100
}
