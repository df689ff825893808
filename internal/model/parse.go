package model

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Upstream state vector indices consumed by ParsePosition.
const (
	idxICAO24         = 0
	idxCallsign       = 1
	idxOriginCountry  = 2
	idxLongitude      = 5
	idxLatitude       = 6
	idxBaroAltitude   = 7
	idxVelocity       = 9
	idxTrueTrack      = 10
	idxVerticalRate   = 11
	idxGeoAltitude    = 13
	idxSquawk         = 14
	idxSpi            = 15
	idxPositionSource = 16

	// MinRowLength is the number of fields a row needs for every consumed index.
	MinRowLength = idxPositionSource + 1

	// Missing is substituted for absent numeric fields.
	Missing = -1
)

// ErrShortRow is returned for rows that do not reach the last consumed index.
var ErrShortRow = errors.New("state vector too short")

// ErrNonFinite is returned for numeric fields holding NaN or an infinity.
var ErrNonFinite = errors.New("non-finite number")

// ParseError describes a state vector field that could not be converted.
type ParseError struct {
	Row   int // row index within the report, -1 when unknown
	Index int // field index within the row, -1 for row-level errors
	Field string
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	var b strings.Builder
	if e.Row >= 0 {
		fmt.Fprintf(&b, "row %d: ", e.Row)
	}
	if e.Index >= 0 {
		fmt.Fprintf(&b, "field %s (index %d) value %q: ", e.Field, e.Index, e.Value)
	}
	b.WriteString(e.Err.Error())
	return b.String()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ParsePosition converts a raw state vector into a Position.
//
// Absent numeric fields become -1, an absent squawk becomes "" and spi is set
// only for a present, case-insensitive "true". A present value that does not
// parse as a number is an error; the row is never partially converted.
func ParsePosition(row RawRow) (Position, error) {
	if len(row) < MinRowLength {
		return Position{}, &ParseError{
			Row:   -1,
			Index: -1,
			Err:   fmt.Errorf("%w: got %d fields, need %d", ErrShortRow, len(row), MinRowLength),
		}
	}

	p := Position{
		ICAO24:        row[idxICAO24].Value,
		Callsign:      strings.TrimSpace(row[idxCallsign].Value),
		OriginCountry: strings.TrimSpace(row[idxOriginCountry].Value),
		Squawk:        strings.TrimSpace(row[idxSquawk].Value),
		Spi:           row[idxSpi].Present && strings.EqualFold(row[idxSpi].Value, "true"),
	}

	floats := []struct {
		idx  int
		name string
		dst  *float64
	}{
		{idxLongitude, "longitude", &p.Longitude},
		{idxLatitude, "latitude", &p.Latitude},
		{idxBaroAltitude, "baro_altitude", &p.BaroAltitude},
		{idxVelocity, "velocity", &p.Velocity},
		{idxTrueTrack, "true_track", &p.TrueTrack},
		{idxVerticalRate, "vertical_rate", &p.VerticalRate},
		{idxGeoAltitude, "geo_altitude", &p.GeoAltitude},
	}
	for _, f := range floats {
		v, err := parseFloatField(row, f.idx, f.name)
		if err != nil {
			return Position{}, err
		}
		*f.dst = v
	}

	p.PositionSource = Missing
	if src := row[idxPositionSource]; src.Present {
		n, err := strconv.Atoi(strings.TrimSpace(src.Value))
		if err != nil {
			return Position{}, fieldError(idxPositionSource, "position_source", src.Value, err)
		}
		p.PositionSource = n
	}

	return p, nil
}

func parseFloatField(row RawRow, idx int, name string) (float64, error) {
	f := row[idx]
	if !f.Present {
		return Missing, nil
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(f.Value), 64)
	if err != nil {
		return 0, fieldError(idx, name, f.Value, err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fieldError(idx, name, f.Value, ErrNonFinite)
	}
	return v, nil
}

func fieldError(idx int, name, value string, err error) *ParseError {
	var numErr *strconv.NumError
	if errors.As(err, &numErr) {
		err = numErr.Err
	}
	return &ParseError{Row: -1, Index: idx, Field: name, Value: value, Err: err}
}
