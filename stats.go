package goequip

import (
	"errors"
	"strconv"

	"github.com/montanaflynn/stats"
)

// ErrNoNumericValues is returned by Stats when no value of the column parses
// as a number.
var ErrNoNumericValues = errors.New("column has no numeric values")

// ColumnStats summarises the numeric values of one column.
type ColumnStats struct {
	Column  string  `json:"column" yaml:"column"`
	Count   int     `json:"count" yaml:"count"`
	Skipped int     `json:"skipped" yaml:"skipped"`
	Min     float64 `json:"min" yaml:"min"`
	Max     float64 `json:"max" yaml:"max"`
	Mean    float64 `json:"mean" yaml:"mean"`
	Median  float64 `json:"median" yaml:"median"`
	StdDev  float64 `json:"stddev" yaml:"stddev"`
}

// Stats computes summary statistics over the values of column that parse as
// numbers. Other values are counted in Skipped.
func (t *RecordTable) Stats(column string) (*ColumnStats, error) {
	values, err := t.Column(column)
	if err != nil {
		return nil, err
	}

	cs := &ColumnStats{Column: column}
	data := make(stats.Float64Data, 0, len(values))
	for _, v := range values {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			cs.Skipped++
			continue
		}
		data = append(data, f)
	}
	cs.Count = len(data)
	if cs.Count == 0 {
		return cs, ErrNoNumericValues
	}

	if cs.Min, err = stats.Min(data); err != nil {
		return nil, err
	}
	if cs.Max, err = stats.Max(data); err != nil {
		return nil, err
	}
	if cs.Mean, err = stats.Mean(data); err != nil {
		return nil, err
	}
	if cs.Median, err = stats.Median(data); err != nil {
		return nil, err
	}
	if cs.StdDev, err = stats.StandardDeviation(data); err != nil {
		return nil, err
	}
	return cs, nil
}
