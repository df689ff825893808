package model

import (
	"errors"
	"strconv"
	"testing"
)

// fullRow returns a state vector with every consumed field present.
func fullRow() RawRow {
	return RawRow{
		Field("4b1805"),       // icao24
		Field("SWR1283 "),     // callsign
		Field(" Switzerland"), // origin_country
		Field("1700000000"),   // time_position
		Field("1700000001"),   // last_contact
		Field("8.5521"),       // longitude
		Field("47.4502"),      // latitude
		Field("10972.8"),      // baro_altitude
		Field("false"),        // on_ground
		Field("231.5"),        // velocity
		Field("87.3"),         // true_track
		Field("-3.25"),        // vertical_rate
		Null(),                // sensors
		Field("11277.6"),      // geo_altitude
		Field(" 1000 "),       // squawk
		Field("true"),         // spi
		Field("0"),            // position_source
	}
}

func TestParsePositionAllFieldsPresent(t *testing.T) {
	p, err := ParsePosition(fullRow())
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	want := Position{
		ICAO24:         "4b1805",
		Callsign:       "SWR1283",
		OriginCountry:  "Switzerland",
		Longitude:      8.5521,
		Latitude:       47.4502,
		BaroAltitude:   10972.8,
		Velocity:       231.5,
		TrueTrack:      87.3,
		VerticalRate:   -3.25,
		GeoAltitude:    11277.6,
		Squawk:         "1000",
		Spi:            true,
		PositionSource: 0,
	}
	if p != want {
		t.Errorf("Expected %+v, got %+v", want, p)
	}
}

func TestParsePositionMissingNumericFields(t *testing.T) {
	fields := []struct {
		idx int
		get func(Position) float64
	}{
		{idxLongitude, func(p Position) float64 { return p.Longitude }},
		{idxLatitude, func(p Position) float64 { return p.Latitude }},
		{idxBaroAltitude, func(p Position) float64 { return p.BaroAltitude }},
		{idxVelocity, func(p Position) float64 { return p.Velocity }},
		{idxTrueTrack, func(p Position) float64 { return p.TrueTrack }},
		{idxVerticalRate, func(p Position) float64 { return p.VerticalRate }},
		{idxGeoAltitude, func(p Position) float64 { return p.GeoAltitude }},
	}

	for _, f := range fields {
		t.Run(strconv.Itoa(f.idx), func(t *testing.T) {
			row := fullRow()
			row[f.idx] = Null()

			p, err := ParsePosition(row)
			if err != nil {
				t.Fatalf("Expected no error, got: %v", err)
			}
			if got := f.get(p); got != Missing {
				t.Errorf("Expected -1 for absent index %d, got %f", f.idx, got)
			}
		})
	}
}

func TestParsePositionDefaults(t *testing.T) {
	row := fullRow()
	row[idxSquawk] = Null()
	row[idxSpi] = Null()
	row[idxPositionSource] = Null()

	p, err := ParsePosition(row)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if p.Squawk != "" {
		t.Errorf("Expected empty squawk, got %q", p.Squawk)
	}
	if p.Spi {
		t.Error("Expected spi false when absent")
	}
	if p.PositionSource != Missing {
		t.Errorf("Expected position_source -1, got %d", p.PositionSource)
	}
}

func TestParsePositionSpi(t *testing.T) {
	tests := []struct {
		field RawField
		want  bool
	}{
		{Field("true"), true},
		{Field("TRUE"), true},
		{Field("True"), true},
		{Field("false"), false},
		{Field(""), false},
		{Field("1"), false},
		{Null(), false},
	}

	for _, tt := range tests {
		row := fullRow()
		row[idxSpi] = tt.field

		p, err := ParsePosition(row)
		if err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
		if p.Spi != tt.want {
			t.Errorf("spi %+v: expected %v, got %v", tt.field, tt.want, p.Spi)
		}
	}
}

func TestParsePositionMissingIdentity(t *testing.T) {
	row := fullRow()
	row[idxCallsign] = Null()

	p, err := ParsePosition(row)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if p.Callsign != "" {
		t.Errorf("Expected empty callsign, got %q", p.Callsign)
	}
}

func TestParsePositionErrors(t *testing.T) {
	t.Run("Non-numeric float", func(t *testing.T) {
		row := fullRow()
		row[idxVelocity] = Field("fast")

		_, err := ParsePosition(row)
		var pe *ParseError
		if !errors.As(err, &pe) {
			t.Fatalf("Expected *ParseError, got %v", err)
		}
		if pe.Index != idxVelocity || pe.Field != "velocity" || pe.Value != "fast" {
			t.Errorf("Unexpected error details: %+v", pe)
		}
		if !errors.Is(err, strconv.ErrSyntax) {
			t.Errorf("Expected ErrSyntax in chain, got %v", err)
		}
	})

	t.Run("Non-finite float", func(t *testing.T) {
		for _, v := range []string{"NaN", "Inf", "-Infinity"} {
			row := fullRow()
			row[idxTrueTrack] = Field(v)

			_, err := ParsePosition(row)
			var pe *ParseError
			if !errors.As(err, &pe) || pe.Field != "true_track" {
				t.Fatalf("%s: expected true_track ParseError, got %v", v, err)
			}
			if !errors.Is(err, ErrNonFinite) {
				t.Errorf("%s: expected ErrNonFinite in chain, got %v", v, err)
			}
		}
	})

	t.Run("Non-numeric position source", func(t *testing.T) {
		row := fullRow()
		row[idxPositionSource] = Field("1.5")

		_, err := ParsePosition(row)
		var pe *ParseError
		if !errors.As(err, &pe) || pe.Index != idxPositionSource {
			t.Fatalf("Expected position_source ParseError, got %v", err)
		}
	})

	t.Run("Short row", func(t *testing.T) {
		row := fullRow()[:MinRowLength-1]

		_, err := ParsePosition(row)
		if !errors.Is(err, ErrShortRow) {
			t.Fatalf("Expected ErrShortRow, got %v", err)
		}
	})
}

func TestParsePositionIgnoresExtraFields(t *testing.T) {
	row := append(fullRow(), Field("4")) // category

	p, err := ParsePosition(row)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if p.ICAO24 != "4b1805" {
		t.Errorf("Expected icao24 4b1805, got %s", p.ICAO24)
	}
}
