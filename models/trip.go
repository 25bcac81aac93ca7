package models

import "time"

// CachedFile is a monthly source file resolved to a path in the local cache.
type CachedFile struct {
	Month MonthSpec
	URL   string
	Path  string
	// Cached is true when the file was already present and no download happened.
	Cached bool
	Bytes  int64
}

// RawTrip holds the projected columns of one Parquet row before validation.
// Null timestamps are represented by the Has* flags.
type RawTrip struct {
	Pickup      time.Time
	HasPickup   bool
	Dropoff     time.Time
	HasDropoff  bool
	PickupZone  int64
	DropoffZone int64
	Fare        float64
	Distance    float64
	Passengers  float64
}

// TripRecord is a validated trip kept in the working dataset.
type TripRecord struct {
	Pickup      time.Time
	Dropoff     time.Time
	PickupZone  int
	DropoffZone int
	Fare        float64
	Distance    float64
	Passengers  float64
}

// Drop reasons recorded in LoadStats.
const (
	DropNullTimestamp       = "null_timestamp"
	DropDropoffBeforePickup = "dropoff_before_pickup"
	DropNegativeFare        = "negative_fare"
	DropNegativeDistance    = "negative_distance"
	DropZoneOutOfRange      = "zone_out_of_range"
	DropOutsideMonth        = "outside_month"
)

// LoadStats counts rows seen and dropped while loading.
type LoadStats struct {
	RowsRead int
	RowsKept int
	Dropped  map[string]int
}

// NewLoadStats returns empty stats.
func NewLoadStats() LoadStats {
	return LoadStats{Dropped: make(map[string]int)}
}

// DroppedTotal returns the number of rows dropped for any reason.
func (s LoadStats) DroppedTotal() int {
	total := 0
	for _, n := range s.Dropped {
		total += n
	}
	return total
}

// WorkingDataset is the month-ordered concatenation of valid trips.
// It is treated as read-only once loaded.
type WorkingDataset struct {
	Months []MonthSpec
	Trips  []TripRecord
	Stats  LoadStats
}

// Len returns the number of trips.
func (d *WorkingDataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Trips)
}
