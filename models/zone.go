package models

import "strconv"

// DefaultMaxZoneID is the highest TLC LocationID when no lookup table is available.
const DefaultMaxZoneID = 265

// Zone is one row of the TLC taxi zone lookup.
type Zone struct {
	ID      int
	Borough string
	Name    string
}

// ZoneLookup maps TLC LocationIDs to zones.
type ZoneLookup struct {
	zones map[int]Zone
	maxID int
}

// NewZoneLookup builds a lookup from the given zones.
func NewZoneLookup(zones []Zone) *ZoneLookup {
	z := &ZoneLookup{zones: make(map[int]Zone, len(zones))}
	for _, zone := range zones {
		z.zones[zone.ID] = zone
		if zone.ID > z.maxID {
			z.maxID = zone.ID
		}
	}
	return z
}

// DefaultZoneLookup covers ids 1..DefaultMaxZoneID without names.
func DefaultZoneLookup() *ZoneLookup {
	return &ZoneLookup{zones: map[int]Zone{}, maxID: DefaultMaxZoneID}
}

// Contains reports whether id is inside the known zone range 1..max.
func (z *ZoneLookup) Contains(id int64) bool {
	return id >= 1 && id <= int64(z.maxID)
}

// MaxID returns the highest known LocationID.
func (z *ZoneLookup) MaxID() int {
	return z.maxID
}

// Len returns the number of named zones.
func (z *ZoneLookup) Len() int {
	return len(z.zones)
}

// Name returns a display name for id, falling back to "Zone <id>".
func (z *ZoneLookup) Name(id int) string {
	if zone, ok := z.zones[id]; ok && zone.Name != "" {
		if zone.Borough != "" && zone.Borough != "N/A" && zone.Borough != "Unknown" {
			return zone.Name + " (" + zone.Borough + ")"
		}
		return zone.Name
	}
	return "Zone " + strconv.Itoa(id)
}
