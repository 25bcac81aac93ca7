package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/parquet-go/parquet-go"

	"taxi-dashboard/models"
)

// julianUnixEpoch is the Julian day number of 1970-01-01, used by INT96 timestamps.
const julianUnixEpoch = 2440588

const valueBatchSize = 4096

// TripReader decodes the projected trip columns from TLC Parquet files.
// Columns outside the schema are never read.
type TripReader struct {
	schema   Schema
	location *time.Location
}

// NewTripReader creates a reader for the given schema. When loc is non-nil,
// timestamps are converted to it; otherwise the recorded wall clock is kept.
func NewTripReader(schema Schema, loc *time.Location) *TripReader {
	return &TripReader{schema: schema, location: loc}
}

// resolvedColumn is a schema column matched against a file.
type resolvedColumn struct {
	present bool
	index   int
	kind    parquet.Kind
	unit    time.Duration
}

// ReadFile validates the file schema and streams every row to fn in file
// order. It returns the number of rows read.
func (r *TripReader) ReadFile(path string, fn func(models.RawTrip)) (int, error) {
	f, err := os.Open(path) //nolint:gosec // paths come from the local cache
	if err != nil {
		return 0, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return 0, err
	}

	pf, err := parquet.OpenFile(f, info.Size())
	if err != nil {
		return 0, fmt.Errorf("open parquet: %w", err)
	}

	cols, err := r.resolve(pf.Schema())
	if err != nil {
		return 0, err
	}

	total := 0
	for g, rg := range pf.RowGroups() {
		n := int(rg.NumRows())
		batch := make([]models.RawTrip, n)
		chunks := rg.ColumnChunks()

		for fld, col := range cols {
			if !col.present {
				continue
			}
			setter := r.setter(field(fld), col)
			if err := readColumn(chunks[col.index], n, func(i int, v parquet.Value) {
				setter(&batch[i], v)
			}); err != nil {
				return total, fmt.Errorf("row group %d, column %s: %w",
					g, r.schema.Columns[fld].Name, err)
			}
		}

		for i := range batch {
			fn(batch[i])
		}
		total += n
	}
	return total, nil
}

// resolve matches the schema contract against the file once, up front.
func (r *TripReader) resolve(s *parquet.Schema) ([numFields]resolvedColumn, error) {
	var cols [numFields]resolvedColumn
	for i, c := range r.schema.Columns {
		leaf, ok := s.Lookup(c.Name)
		if !ok {
			if c.Optional {
				continue
			}
			return cols, &SchemaError{Column: c.Name}
		}

		typ := leaf.Node.Type()
		kind := typ.Kind()
		if !c.accepts(kind) {
			return cols, &SchemaError{Column: c.Name, Got: kind.String(), Want: c.kindList()}
		}

		cols[i] = resolvedColumn{
			present: true,
			index:   leaf.ColumnIndex,
			kind:    kind,
			unit:    timestampUnit(typ),
		}
	}
	return cols, nil
}

// timestampUnit returns the scale of an INT64 timestamp column. Columns
// without a logical timestamp type are read as microseconds, the unit used by
// current TLC files.
func timestampUnit(t parquet.Type) time.Duration {
	lt := t.LogicalType()
	if lt == nil || lt.Timestamp == nil {
		return time.Microsecond
	}
	switch {
	case lt.Timestamp.Unit.Millis != nil:
		return time.Millisecond
	case lt.Timestamp.Unit.Nanos != nil:
		return time.Nanosecond
	default:
		return time.Microsecond
	}
}

func (r *TripReader) setter(f field, col resolvedColumn) func(*models.RawTrip, parquet.Value) {
	switch f {
	case fieldPickup:
		return func(t *models.RawTrip, v parquet.Value) {
			t.Pickup, t.HasPickup = r.timestamp(v, col)
		}
	case fieldDropoff:
		return func(t *models.RawTrip, v parquet.Value) {
			t.Dropoff, t.HasDropoff = r.timestamp(v, col)
		}
	case fieldPickupZone:
		return func(t *models.RawTrip, v parquet.Value) { t.PickupZone = intValue(v) }
	case fieldDropoffZone:
		return func(t *models.RawTrip, v parquet.Value) { t.DropoffZone = intValue(v) }
	case fieldFare:
		return func(t *models.RawTrip, v parquet.Value) { t.Fare = floatValue(v) }
	case fieldDistance:
		return func(t *models.RawTrip, v parquet.Value) { t.Distance = floatValue(v) }
	default:
		return func(t *models.RawTrip, v parquet.Value) { t.Passengers = floatValue(v) }
	}
}

func (r *TripReader) timestamp(v parquet.Value, col resolvedColumn) (time.Time, bool) {
	if v.IsNull() {
		return time.Time{}, false
	}

	var t time.Time
	switch v.Kind() {
	case parquet.Int96:
		i96 := v.Int96()
		nanos := int64(uint64(i96[1])<<32 | uint64(i96[0]))
		days := int64(i96[2]) - julianUnixEpoch
		t = time.Unix(days*86400, nanos).UTC()
	default:
		raw := v.Int64()
		switch col.unit {
		case time.Millisecond:
			t = time.UnixMilli(raw).UTC()
		case time.Nanosecond:
			t = time.Unix(0, raw).UTC()
		default:
			t = time.UnixMicro(raw).UTC()
		}
	}

	if r.location != nil {
		t = t.In(r.location)
	}
	return t, true
}

// intValue returns 0 for nulls, which the filter then rejects as out of range.
func intValue(v parquet.Value) int64 {
	switch v.Kind() {
	case parquet.Int32:
		return int64(v.Int32())
	case parquet.Int64:
		return v.Int64()
	default:
		return 0
	}
}

func floatValue(v parquet.Value) float64 {
	switch v.Kind() {
	case parquet.Double:
		return v.Double()
	case parquet.Float:
		return float64(v.Float())
	case parquet.Int32:
		return float64(v.Int32())
	case parquet.Int64:
		return float64(v.Int64())
	default:
		return 0
	}
}

// readColumn walks every page of a column chunk, calling set with the row
// index of each value. Columns are flat, so one value is one row.
func readColumn(chunk parquet.ColumnChunk, rows int, set func(int, parquet.Value)) error {
	pages := chunk.Pages()
	defer pages.Close()

	buf := make([]parquet.Value, valueBatchSize)
	row := 0
	for {
		page, err := pages.ReadPage()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}

		values := page.Values()
		for {
			n, err := values.ReadValues(buf)
			for _, v := range buf[:n] {
				if row >= rows {
					return fmt.Errorf("more values than the %d rows in the row group", rows)
				}
				set(row, v)
				row++
			}
			if errors.Is(err, io.EOF) || (err == nil && n == 0) {
				break
			}
			if err != nil {
				return err
			}
		}
	}

	if row != rows {
		return fmt.Errorf("read %d values, want %d", row, rows)
	}
	return nil
}
