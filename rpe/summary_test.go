package rpe

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"
)

func TestSummarize(t *testing.T) {
	relErrors := []RelativeError{
		{Translation: r3.Vector{X: 3, Y: 4}, Rotation: r3.Vector{Z: math.Pi / 180}, Length: 50, Scale: 1.1},
		{Translation: r3.Vector{X: 1}, Rotation: r3.Vector{X: 3 * math.Pi / 180}, Length: 50, Scale: 0.9},
	}
	summary, err := Summarize(relErrors)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, summary.Segments, test.ShouldEqual, 2)

	test.That(t, summary.Translation.Mean, test.ShouldAlmostEqual, 3.)
	test.That(t, summary.Translation.Median, test.ShouldAlmostEqual, 3.)
	test.That(t, summary.Translation.Max, test.ShouldAlmostEqual, 5.)
	test.That(t, summary.Translation.RMSE, test.ShouldAlmostEqual, math.Sqrt(13))
	test.That(t, summary.Translation.StdDev, test.ShouldAlmostEqual, 2.)

	test.That(t, summary.Drift.Mean, test.ShouldAlmostEqual, 6.)
	test.That(t, summary.Drift.Max, test.ShouldAlmostEqual, 10.)

	test.That(t, summary.Rotation.Mean, test.ShouldAlmostEqual, 2.)
	test.That(t, summary.Rotation.Max, test.ShouldAlmostEqual, 3.)

	test.That(t, summary.Scale.Mean, test.ShouldAlmostEqual, 0.1)

	table := summary.String()
	test.That(t, table, test.ShouldContainSubstring, "relative pose error over 2 segments")
	test.That(t, table, test.ShouldContainSubstring, "translation [m]")
	test.That(t, table, test.ShouldContainSubstring, "3.0000")
	test.That(t, table, test.ShouldContainSubstring, "RMSE")
}

func TestSummarizeEmpty(t *testing.T) {
	summary, err := Summarize(nil)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, summary, test.ShouldResemble, &Summary{})
	test.That(t, summary.String(), test.ShouldContainSubstring, "over 0 segments")
}

func TestSummarizeZeroLength(t *testing.T) {
	// drift is undefined for segments that do not move
	summary, err := Summarize([]RelativeError{{Translation: r3.Vector{X: 1}, Scale: 1}})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, summary.Translation.Mean, test.ShouldEqual, 1.)
	test.That(t, summary.Drift, test.ShouldResemble, Statistics{})
}
