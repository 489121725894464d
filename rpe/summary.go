package rpe

import (
	"fmt"
	"math"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"

	"go.viam.com/trajeval/utils"
)

// Statistics summarizes one error quantity over all segments.
type Statistics struct {
	Mean   float64
	Median float64
	RMSE   float64
	P90    float64
	Max    float64
	StdDev float64
}

// Summary holds run level statistics of the relative errors.
type Summary struct {
	Segments int
	// Translation is the norm of the translation error in meters.
	Translation Statistics
	// Drift is the translation error norm as a percentage of the segment length.
	Drift Statistics
	// Rotation is the rotation error angle in degrees.
	Rotation Statistics
	// Scale is the absolute deviation of the scale error from 1.
	Scale Statistics
}

// Summarize computes the statistics of the given relative errors. No errors yield an empty summary.
func Summarize(relErrors []RelativeError) (*Summary, error) {
	if len(relErrors) == 0 {
		return &Summary{}, nil
	}
	var translation, drift, rotation, scale []float64
	for _, e := range relErrors {
		norm := e.Translation.Norm()
		translation = append(translation, norm)
		if e.Length > 0 {
			drift = append(drift, 100*norm/e.Length)
		}
		rotation = append(rotation, utils.RadToDeg(e.RotationAngle()))
		scale = append(scale, math.Abs(e.Scale-1))
	}

	summary := &Summary{Segments: len(relErrors)}
	var err error
	if summary.Translation, err = describe(translation); err != nil {
		return nil, errors.Wrap(err, "translation error")
	}
	if len(drift) > 0 {
		if summary.Drift, err = describe(drift); err != nil {
			return nil, errors.Wrap(err, "drift")
		}
	}
	if summary.Rotation, err = describe(rotation); err != nil {
		return nil, errors.Wrap(err, "rotation error")
	}
	if summary.Scale, err = describe(scale); err != nil {
		return nil, errors.Wrap(err, "scale error")
	}
	return summary, nil
}

func describe(data stats.Float64Data) (Statistics, error) {
	mean, err := stats.Mean(data)
	if err != nil {
		return Statistics{}, err
	}
	median, err := stats.Median(data)
	if err != nil {
		return Statistics{}, err
	}
	p90, err := stats.PercentileNearestRank(data, 90)
	if err != nil {
		return Statistics{}, err
	}
	maximum, err := stats.Max(data)
	if err != nil {
		return Statistics{}, err
	}
	stdDev, err := stats.StandardDeviation(data)
	if err != nil {
		return Statistics{}, err
	}
	var sumSquares float64
	for _, v := range data {
		sumSquares += v * v
	}
	return Statistics{
		Mean:   mean,
		Median: median,
		RMSE:   math.Sqrt(sumSquares / float64(len(data))),
		P90:    p90,
		Max:    maximum,
		StdDev: stdDev,
	}, nil
}

// String renders the summary as a table with one row per error quantity.
func (s *Summary) String() string {
	t := table.NewWriter()
	t.SetTitle(fmt.Sprintf("relative pose error over %d segments", s.Segments))
	t.AppendHeader(table.Row{"Error", "Mean", "Median", "RMSE", "P90", "Max", "StdDev"})
	for _, row := range []struct {
		name  string
		stats Statistics
	}{
		{"translation [m]", s.Translation},
		{"drift [%]", s.Drift},
		{"rotation [deg]", s.Rotation},
		{"scale |s-1|", s.Scale},
	} {
		t.AppendRow(table.Row{
			row.name,
			fmt.Sprintf("%.4f", row.stats.Mean),
			fmt.Sprintf("%.4f", row.stats.Median),
			fmt.Sprintf("%.4f", row.stats.RMSE),
			fmt.Sprintf("%.4f", row.stats.P90),
			fmt.Sprintf("%.4f", row.stats.Max),
			fmt.Sprintf("%.4f", row.stats.StdDev),
		})
	}
	return t.Render()
}
