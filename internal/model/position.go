package model

import (
	"bytes"
	"fmt"

	"github.com/goccy/go-json"
)

// Boundary is the geographic box used to scope upstream queries.
// It is loaded once at startup and never modified.
type Boundary struct {
	LatMin float64
	LonMin float64
	LatMax float64
	LonMax float64
}

func (b Boundary) String() string {
	return fmt.Sprintf("Boundary{latMin=%g, lonMin=%g, latMax=%g, lonMax=%g}", b.LatMin, b.LonMin, b.LatMax, b.LonMax)
}

// RawField is a single nullable value from an upstream state vector.
// Scalars of any JSON type are kept as text; null leaves Present false.
type RawField struct {
	Value   string
	Present bool
}

// Field returns a present RawField holding v.
func Field(v string) RawField {
	return RawField{Value: v, Present: true}
}

// Null returns an absent RawField.
func Null() RawField {
	return RawField{}
}

// UnmarshalJSON implements json.Unmarshaler
func (f *RawField) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = RawField{}
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = Field(s)
		return nil
	}

	// Numbers, booleans and the sensors array keep their literal text.
	*f = Field(string(data))
	return nil
}

// RawRow is one upstream state vector in positional form.
//
// Index layout: [icao24, callsign, origin_country, time_position, last_contact,
// longitude, latitude, baro_altitude, on_ground, velocity, true_track,
// vertical_rate, sensors, geo_altitude, squawk, spi, position_source, ...]
type RawRow []RawField

// Position is the typed view of a single state vector.
// Numeric fields hold -1 when the upstream value was null.
type Position struct {
	ICAO24         string  `json:"icao24"`
	Callsign       string  `json:"callsign"`
	OriginCountry  string  `json:"origin_country"`
	Longitude      float64 `json:"longitude"`
	Latitude       float64 `json:"latitude"`
	BaroAltitude   float64 `json:"baro_altitude"`
	Velocity       float64 `json:"velocity"`
	TrueTrack      float64 `json:"true_track"`
	VerticalRate   float64 `json:"vertical_rate"`
	GeoAltitude    float64 `json:"geo_altitude"`
	Squawk         string  `json:"squawk"`
	Spi            bool    `json:"spi"`
	PositionSource int     `json:"position_source"`
}
