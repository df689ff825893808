package model

import (
	"errors"
	"fmt"
	"slices"

	"github.com/goccy/go-json"
)

// PositionReport is one upstream /states/all response.
// Positions are derived from the raw rows every time the rows are replaced.
type PositionReport struct {
	Time *int64

	rows      []RawRow
	positions []Position
}

// NewPositionReport builds a report and parses rows into positions.
func NewPositionReport(time *int64, rows []RawRow) (*PositionReport, error) {
	r := &PositionReport{Time: time}
	if err := r.SetRows(rows); err != nil {
		return nil, err
	}
	return r, nil
}

// SetRows replaces the raw rows and recomputes positions from scratch.
// The rows are copied. On error the report is left unchanged.
func (r *PositionReport) SetRows(rows []RawRow) error {
	rows = cloneRows(rows)
	positions := make([]Position, 0, len(rows))
	for i, row := range rows {
		p, err := ParsePosition(row)
		if err != nil {
			var pe *ParseError
			if errors.As(err, &pe) {
				pe.Row = i
				return pe
			}
			return fmt.Errorf("row %d: %w", i, err)
		}
		positions = append(positions, p)
	}

	r.rows = rows
	r.positions = positions
	return nil
}

// Rows returns a copy of the raw rows of the report.
func (r *PositionReport) Rows() []RawRow {
	return cloneRows(r.rows)
}

// Positions returns a copy of the parsed positions, one per row and in row order.
func (r *PositionReport) Positions() []Position {
	return slices.Clone(r.positions)
}

func cloneRows(rows []RawRow) []RawRow {
	if rows == nil {
		return nil
	}
	out := make([]RawRow, len(rows))
	for i, row := range rows {
		out[i] = slices.Clone(row)
	}
	return out
}

type reportEnvelope struct {
	Time   *int64   `json:"time"`
	States []RawRow `json:"states"`
}

// UnmarshalJSON decodes the upstream envelope. Unknown fields are ignored and
// a null states array yields an empty report.
func (r *PositionReport) UnmarshalJSON(data []byte) error {
	var env reportEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}
	if err := r.SetRows(env.States); err != nil {
		return err
	}
	r.Time = env.Time
	return nil
}
