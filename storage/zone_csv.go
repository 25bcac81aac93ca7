package storage

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"taxi-dashboard/models"
)

// ReadZoneLookup parses the TLC taxi_zone_lookup.csv file
// (LocationID, Borough, Zone, service_zone).
func ReadZoneLookup(path string) (*models.ZoneLookup, error) {
	f, err := os.Open(path) //nolint:gosec // paths come from the local cache
	if err != nil {
		return nil, fmt.Errorf("csv: open %q: %w", path, err)
	}
	defer f.Close()

	return ParseZoneLookup(f)
}

// ParseZoneLookup reads zone rows from r. Rows with a non-numeric id are skipped.
func ParseZoneLookup(r io.Reader) (*models.ZoneLookup, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("csv: read header: %w", err)
	}

	idx := map[string]int{}
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	idCol, ok := idx["locationid"]
	if !ok {
		return nil, errors.New("csv: missing LocationID column")
	}
	boroughCol, hasBorough := idx["borough"]
	zoneCol, hasZone := idx["zone"]

	var zones []models.Zone
	for {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csv: read row: %w", err)
		}
		if idCol >= len(rec) {
			continue
		}
		id, err := strconv.Atoi(strings.TrimSpace(rec[idCol]))
		if err != nil {
			continue
		}

		zone := models.Zone{ID: id}
		if hasBorough && boroughCol < len(rec) {
			zone.Borough = strings.TrimSpace(rec[boroughCol])
		}
		if hasZone && zoneCol < len(rec) {
			zone.Name = strings.TrimSpace(rec[zoneCol])
		}
		zones = append(zones, zone)
	}

	if len(zones) == 0 {
		return nil, errors.New("csv: no zones found")
	}
	return models.NewZoneLookup(zones), nil
}
