package models

import "time"

// HourlyCount is one bucket of the hourly ridership table.
type HourlyCount struct {
	Hour          int
	Trips         int
	AvgPassengers float64
}

// DailyCount is one calendar day of the daily totals table.
type DailyCount struct {
	Date  time.Time
	Trips int
}

// ZoneCount is a ranked drop-off zone within one late-night hour.
type ZoneCount struct {
	ZoneID   int
	ZoneName string
	Trips    int
}

// LateNightHour holds the top drop-off zones for one pickup hour.
type LateNightHour struct {
	Hour  int
	Zones []ZoneCount
}

// SummaryReport holds the computed tables plus the metadata shown on the dashboard.
type SummaryReport struct {
	Months      []MonthSpec
	Dataset     string
	TotalTrips  int
	Stats       LoadStats
	Hourly      []HourlyCount
	Daily       []DailyCount
	LateNight   []LateNightHour
	WindowStart int
	WindowEnd   int
	TopK        int
	GeneratedAt time.Time
}
