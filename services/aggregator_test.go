package services

import (
	"reflect"
	"testing"
	"time"

	"taxi-dashboard/models"
	"taxi-dashboard/utils"
)

func newTestAggregator(topK int) *Aggregator {
	return NewAggregator(nil, 22, 5, topK, utils.NewDiscardLogger())
}

func trip(pickup string, dropoffZone int, passengers float64) models.TripRecord {
	p := at(pickup)
	return models.TripRecord{
		Pickup: p, Dropoff: p.Add(10 * time.Minute),
		PickupZone: 1, DropoffZone: dropoffZone,
		Fare: 10, Distance: 1, Passengers: passengers,
	}
}

func TestGenerateJanuaryScenario(t *testing.T) {
	ds := loadJanuary(t)
	report := newTestAggregator(8).Generate(ds)

	sum := 0
	for _, h := range report.Hourly {
		sum += h.Trips
	}
	if sum != 3 {
		t.Errorf("hourly sum: got %d, want 3", sum)
	}
	if report.Hourly[23].Trips != 2 || report.Hourly[8].Trips != 1 {
		t.Errorf("hourly buckets: 08=%d 23=%d", report.Hourly[8].Trips, report.Hourly[23].Trips)
	}

	if len(report.Daily) != 31 {
		t.Fatalf("daily entries: got %d, want 31", len(report.Daily))
	}
	if report.Daily[2].Trips != 2 || report.Daily[30].Trips != 1 || report.Daily[0].Trips != 0 {
		t.Errorf("daily counts: jan3=%d jan31=%d jan1=%d",
			report.Daily[2].Trips, report.Daily[30].Trips, report.Daily[0].Trips)
	}

	var hour23 models.LateNightHour
	for _, h := range report.LateNight {
		if h.Hour == 23 {
			hour23 = h
		}
	}
	want := []int{48, 230}
	if len(hour23.Zones) != 2 || hour23.Zones[0].ZoneID != want[0] || hour23.Zones[1].ZoneID != want[1] {
		t.Errorf("hour 23 zones: got %+v, want ids %v", hour23.Zones, want)
	}
}

func TestHourlyRidership(t *testing.T) {
	ds := &models.WorkingDataset{Trips: []models.TripRecord{
		trip("2025-01-02 08:00", 1, 1),
		trip("2025-01-02 08:30", 1, 2),
		trip("2025-01-02 08:45", 1, 0),
		trip("2025-01-02 17:10", 1, 1),
	}}

	hours := newTestAggregator(8).HourlyRidership(ds)
	if len(hours) != 24 {
		t.Fatalf("entries: got %d, want 24", len(hours))
	}
	for i, h := range hours {
		if h.Hour != i {
			t.Errorf("entry %d has hour %d", i, h.Hour)
		}
	}
	if hours[8].Trips != 3 || hours[17].Trips != 1 {
		t.Errorf("counts: 08=%d 17=%d", hours[8].Trips, hours[17].Trips)
	}
	if hours[8].AvgPassengers != 1.5 {
		t.Errorf("avg passengers at 08: got %v, want 1.5", hours[8].AvgPassengers)
	}
	if hours[3].AvgPassengers != 0 {
		t.Errorf("empty hour avg: got %v, want 0", hours[3].AvgPassengers)
	}
}

func TestDailyTotalsSpansEveryDay(t *testing.T) {
	months, _ := models.ParseMonthRange("2024-02:2024-03")
	ds := &models.WorkingDataset{Months: months, Trips: []models.TripRecord{
		trip("2024-02-29 12:00", 1, 1),
		trip("2024-03-01 00:00", 1, 1),
		trip("2024-03-01 23:59", 1, 1),
	}}

	days := newTestAggregator(8).DailyTotals(ds, months)
	if len(days) != 29+31 {
		t.Fatalf("days: got %d, want 60", len(days))
	}
	for i := 1; i < len(days); i++ {
		if !days[i-1].Date.Before(days[i].Date) {
			t.Fatalf("days not ascending at %d", i)
		}
	}
	if days[28].Trips != 1 || days[29].Trips != 2 {
		t.Errorf("counts: feb29=%d mar1=%d", days[28].Trips, days[29].Trips)
	}
}

func TestLateNightTopK(t *testing.T) {
	var trips []models.TripRecord
	add := func(zone, n int) {
		for i := 0; i < n; i++ {
			trips = append(trips, trip("2025-01-05 01:15", zone, 1))
		}
	}
	add(10, 3)
	add(7, 2)
	add(5, 2)
	add(3, 1)
	trips = append(trips, trip("2025-01-05 12:00", 99, 1))
	ds := &models.WorkingDataset{Trips: trips}

	tests := []struct {
		topK int
		want []models.ZoneCount
	}{
		{2, []models.ZoneCount{{ZoneID: 10, ZoneName: "Zone 10", Trips: 3}, {ZoneID: 5, ZoneName: "Zone 5", Trips: 2}}},
		{3, []models.ZoneCount{
			{ZoneID: 10, ZoneName: "Zone 10", Trips: 3},
			{ZoneID: 5, ZoneName: "Zone 5", Trips: 2},
			{ZoneID: 7, ZoneName: "Zone 7", Trips: 2},
		}},
	}

	for _, tt := range tests {
		result := newTestAggregator(tt.topK).LateNightDropoffs(ds)
		if len(result) != 8 {
			t.Fatalf("window hours: got %d, want 8", len(result))
		}
		if result[0].Hour != 22 || result[2].Hour != 0 || result[7].Hour != 5 {
			t.Errorf("window order: got %d,%d,%d", result[0].Hour, result[2].Hour, result[7].Hour)
		}
		if got := result[3].Zones; !reflect.DeepEqual(got, tt.want) {
			t.Errorf("topK=%d hour 01: got %+v, want %+v", tt.topK, got, tt.want)
		}
		for _, h := range result {
			if len(h.Zones) > tt.topK {
				t.Errorf("hour %d has %d zones, more than %d", h.Hour, len(h.Zones), tt.topK)
			}
		}
	}
}

func TestLateNightZoneNames(t *testing.T) {
	zones := models.NewZoneLookup([]models.Zone{{ID: 230, Borough: "Manhattan", Name: "Times Sq/Theatre District"}})
	a := NewAggregator(zones, 22, 5, 8, utils.NewDiscardLogger())
	ds := &models.WorkingDataset{Trips: []models.TripRecord{trip("2025-01-05 23:30", 230, 1)}}

	result := a.LateNightDropoffs(ds)
	if got := result[1].Zones[0].ZoneName; got != "Times Sq/Theatre District (Manhattan)" {
		t.Errorf("zone name: got %q", got)
	}
}

func TestWindowHours(t *testing.T) {
	tests := []struct {
		start, end int
		want       []int
	}{
		{22, 5, []int{22, 23, 0, 1, 2, 3, 4, 5}},
		{1, 3, []int{1, 2, 3}},
		{23, 0, []int{23, 0}},
	}
	for _, tt := range tests {
		if got := WindowHours(tt.start, tt.end); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("WindowHours(%d, %d) = %v; want %v", tt.start, tt.end, got, tt.want)
		}
	}
	if got := WindowHours(5, 4); len(got) != 24 {
		t.Errorf("WindowHours(5, 4): got %d hours, want 24", len(got))
	}
}

func TestGenerateEmptyDataset(t *testing.T) {
	months, _ := models.ParseMonthRange("2025-02")
	ds := &models.WorkingDataset{Months: months, Stats: models.NewLoadStats()}

	report := newTestAggregator(8).Generate(ds)
	if report.TotalTrips != 0 {
		t.Errorf("total: got %d", report.TotalTrips)
	}
	if len(report.Hourly) != 24 {
		t.Errorf("hourly entries: got %d, want 24", len(report.Hourly))
	}
	if len(report.Daily) != 28 {
		t.Errorf("daily entries: got %d, want 28", len(report.Daily))
	}
	for _, h := range report.LateNight {
		if len(h.Zones) != 0 {
			t.Errorf("hour %d should have no zones", h.Hour)
		}
	}
}
