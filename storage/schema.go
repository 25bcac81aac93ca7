package storage

import (
	"fmt"
	"strings"

	"github.com/parquet-go/parquet-go"
)

// field indexes the projected trip columns.
type field int

const (
	fieldPickup field = iota
	fieldDropoff
	fieldPickupZone
	fieldDropoffZone
	fieldFare
	fieldDistance
	fieldPassengers
	numFields
)

var (
	timestampKinds = []parquet.Kind{parquet.Int64, parquet.Int96}
	zoneKinds      = []parquet.Kind{parquet.Int32, parquet.Int64}
	amountKinds    = []parquet.Kind{parquet.Double, parquet.Float, parquet.Int32, parquet.Int64}
)

// Column is one entry of the trip schema contract.
type Column struct {
	Name     string
	Kinds    []parquet.Kind
	Optional bool
}

// Schema is the ordered column contract a trip file must satisfy.
type Schema struct {
	Dataset string
	Columns [numFields]Column
}

// TripSchema returns the column contract for a TLC dataset. Yellow cab files
// prefix their timestamps with "tpep_", green cab files with "lpep_".
func TripSchema(dataset string) Schema {
	prefix := "tpep_"
	if dataset == "green" {
		prefix = "lpep_"
	}
	return Schema{
		Dataset: dataset,
		Columns: [numFields]Column{
			fieldPickup:      {Name: prefix + "pickup_datetime", Kinds: timestampKinds},
			fieldDropoff:     {Name: prefix + "dropoff_datetime", Kinds: timestampKinds},
			fieldPickupZone:  {Name: "PULocationID", Kinds: zoneKinds},
			fieldDropoffZone: {Name: "DOLocationID", Kinds: zoneKinds},
			fieldFare:        {Name: "fare_amount", Kinds: amountKinds},
			fieldDistance:    {Name: "trip_distance", Kinds: amountKinds},
			fieldPassengers:  {Name: "passenger_count", Kinds: amountKinds, Optional: true},
		},
	}
}

// Required lists the names of the mandatory columns in order.
func (s Schema) Required() []string {
	names := make([]string, 0, len(s.Columns))
	for _, c := range s.Columns {
		if !c.Optional {
			names = append(names, c.Name)
		}
	}
	return names
}

func (c Column) accepts(kind parquet.Kind) bool {
	for _, k := range c.Kinds {
		if k == kind {
			return true
		}
	}
	return false
}

func (c Column) kindList() string {
	names := make([]string, len(c.Kinds))
	for i, k := range c.Kinds {
		names[i] = k.String()
	}
	return strings.Join(names, "|")
}

// SchemaError describes a column that is missing or has the wrong physical type.
type SchemaError struct {
	Column string
	Got    string
	Want   string
}

func (e *SchemaError) Error() string {
	if e.Got == "" {
		return fmt.Sprintf("required column %q is missing", e.Column)
	}
	return fmt.Sprintf("column %q has type %s, want %s", e.Column, e.Got, e.Want)
}
