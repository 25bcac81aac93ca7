package services

import (
	"sort"

	"taxi-dashboard/models"
	"taxi-dashboard/storage"
	"taxi-dashboard/utils"
)

// Loader reads cached monthly files and keeps only valid trips.
type Loader struct {
	source storage.TripSource
	zones  *models.ZoneLookup
	logger *utils.Logger
}

// NewLoader creates a Loader. A nil zone lookup falls back to ids 1..265.
func NewLoader(source storage.TripSource, zones *models.ZoneLookup, logger *utils.Logger) *Loader {
	if zones == nil {
		zones = models.DefaultZoneLookup()
	}
	return &Loader{source: source, zones: zones, logger: logger}
}

// Load reads files in the given order and concatenates their valid trips.
// An unreadable file or schema mismatch aborts with *models.LoadError.
func (l *Loader) Load(files []*models.CachedFile) (*models.WorkingDataset, error) {
	ds := &models.WorkingDataset{Stats: models.NewLoadStats()}

	for _, f := range files {
		ds.Months = append(ds.Months, f.Month)
		keptBefore := len(ds.Trips)

		read, err := l.source.ReadFile(f.Path, func(raw models.RawTrip) {
			trip, reason := l.validate(raw, f.Month)
			if reason != "" {
				ds.Stats.Dropped[reason]++
				return
			}
			ds.Trips = append(ds.Trips, trip)
		})
		if err != nil {
			return nil, &models.LoadError{Path: f.Path, Err: err}
		}

		ds.Stats.RowsRead += read
		kept := len(ds.Trips) - keptBefore
		ds.Stats.RowsKept = len(ds.Trips)
		l.logger.Info("[loader] %s: read %d rows, kept %d (dropped %d)",
			f.Month, read, kept, read-kept)
	}

	l.logger.Info("[loader] Loaded %d → %d trips (dropped %d)",
		ds.Stats.RowsRead, ds.Stats.RowsKept, ds.Stats.DroppedTotal())
	for _, reason := range sortedReasons(ds.Stats.Dropped) {
		l.logger.Debug("[loader]   dropped %-22s %d", reason, ds.Stats.Dropped[reason])
	}
	return ds, nil
}

// validate returns the cleaned trip, or the reason it was dropped.
func (l *Loader) validate(raw models.RawTrip, month models.MonthSpec) (models.TripRecord, string) {
	switch {
	case !raw.HasPickup || !raw.HasDropoff:
		return models.TripRecord{}, models.DropNullTimestamp
	case raw.Dropoff.Before(raw.Pickup):
		return models.TripRecord{}, models.DropDropoffBeforePickup
	case raw.Fare < 0:
		return models.TripRecord{}, models.DropNegativeFare
	case raw.Distance < 0:
		return models.TripRecord{}, models.DropNegativeDistance
	case !l.zones.Contains(raw.PickupZone) || !l.zones.Contains(raw.DropoffZone):
		return models.TripRecord{}, models.DropZoneOutOfRange
	case !month.Contains(raw.Pickup):
		return models.TripRecord{}, models.DropOutsideMonth
	}

	return models.TripRecord{
		Pickup:      raw.Pickup,
		Dropoff:     raw.Dropoff,
		PickupZone:  int(raw.PickupZone),
		DropoffZone: int(raw.DropoffZone),
		Fare:        raw.Fare,
		Distance:    raw.Distance,
		Passengers:  raw.Passengers,
	}, ""
}

func sortedReasons(dropped map[string]int) []string {
	reasons := make([]string, 0, len(dropped))
	for r := range dropped {
		reasons = append(reasons, r)
	}
	sort.Strings(reasons)
	return reasons
}
