package processor

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"flight-position-gateway/internal/model"
)

// Query parameter names understood by ParseFilter.
const (
	ParamCountry = "oc"
	ParamTrackLo = "tracklo"
	ParamTrackHi = "trackhi"
)

// Filter selects positions by origin country and true track.
// A nil field disables the corresponding predicate.
type Filter struct {
	Country *string
	TrackLo *float64
	TrackHi *float64
}

// InvalidParamError reports a filter parameter that could not be parsed.
type InvalidParamError struct {
	Param string
	Value string
	Err   error
}

func (e *InvalidParamError) Error() string {
	return fmt.Sprintf("invalid %s %q: %v", e.Param, e.Value, e.Err)
}

func (e *InvalidParamError) Unwrap() error {
	return e.Err
}

// ParseFilter builds a Filter from request query parameters.
// Absent parameters leave the predicate disabled; a present track bound that
// is not a number is an error.
func ParseFilter(q url.Values) (Filter, error) {
	var f Filter

	if q.Has(ParamCountry) {
		oc := q.Get(ParamCountry)
		f.Country = &oc
	}

	var err error
	if f.TrackLo, err = parseBound(q, ParamTrackLo); err != nil {
		return Filter{}, err
	}
	if f.TrackHi, err = parseBound(q, ParamTrackHi); err != nil {
		return Filter{}, err
	}

	return f, nil
}

func parseBound(q url.Values, name string) (*float64, error) {
	if !q.Has(name) {
		return nil, nil
	}
	raw := q.Get(name)
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		if numErr, ok := err.(*strconv.NumError); ok {
			err = numErr.Err
		}
		return nil, &InvalidParamError{Param: name, Value: raw, Err: err}
	}
	return &v, nil
}

// Match reports whether p passes both predicates.
func (f Filter) Match(p model.Position) bool {
	return f.matchCountry(p) && f.matchTrack(p)
}

func (f Filter) matchCountry(p model.Position) bool {
	return f.Country == nil || strings.EqualFold(p.OriginCountry, *f.Country)
}

// matchTrack requires both bounds; with only one supplied the predicate is off.
// Arcs crossing north (lo > hi) are not supported and match nothing.
func (f Filter) matchTrack(p model.Position) bool {
	if f.TrackLo == nil || f.TrackHi == nil {
		return true
	}
	return p.TrueTrack > *f.TrackLo && p.TrueTrack < *f.TrackHi
}

// Apply returns the positions that match f, preserving input order.
func (f Filter) Apply(positions []model.Position) []model.Position {
	out := make([]model.Position, 0, len(positions))
	for _, p := range positions {
		if f.Match(p) {
			out = append(out, p)
		}
	}
	return out
}
