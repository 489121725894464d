package trajectory

import (
	"testing"
	"time"

	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"go.viam.com/trajeval/spatialmath"
)

const period = int64(50 * time.Millisecond)

func TestAssociateIdentical(t *testing.T) {
	gt := straightLine(101, 0, period)
	assoc, err := Associate(gt, gt, 0, 20*time.Millisecond)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, assoc.Dropped, test.ShouldEqual, 0)
	test.That(t, assoc.Pairs, test.ShouldHaveLength, 101)
	for i, pair := range assoc.Pairs {
		test.That(t, pair.Groundtruth.Point().X, test.ShouldEqual, float64(i))
		test.That(t, pair.Estimate.Point().X, test.ShouldEqual, float64(i))
	}
	test.That(t, assoc.Stamps, test.ShouldResemble, gt.Stamps())
	test.That(t, assoc.Groundtruth(), test.ShouldHaveLength, 101)
}

func TestAssociateOffsetTolerance(t *testing.T) {
	gt := straightLine(101, 0, period)
	es := straightLine(101, int64(5*time.Millisecond), period)

	t.Run("within tolerance", func(t *testing.T) {
		assoc := mustAssociate(t, gt, es, 0, 20*time.Millisecond)
		test.That(t, assoc.Pairs, test.ShouldHaveLength, 101)
		test.That(t, assoc.Dropped, test.ShouldEqual, 0)
	})

	t.Run("outside tolerance", func(t *testing.T) {
		assoc := mustAssociate(t, gt, es, 0, time.Millisecond)
		test.That(t, assoc.Pairs, test.ShouldBeEmpty)
		test.That(t, assoc.Dropped, test.ShouldEqual, 101)
	})

	t.Run("offset compensates", func(t *testing.T) {
		assoc := mustAssociate(t, gt, es, -5*time.Millisecond, 0)
		test.That(t, assoc.Pairs, test.ShouldHaveLength, 101)
	})

	t.Run("zero tolerance drops mismatched grids", func(t *testing.T) {
		assoc := mustAssociate(t, gt, es, 0, 0)
		test.That(t, assoc.Pairs, test.ShouldBeEmpty)
		test.That(t, assoc.Dropped, test.ShouldEqual, 101)
	})
}

func TestAssociateDifferentRates(t *testing.T) {
	// groundtruth at 200Hz, estimate at 20Hz
	gt := straightLine(1001, 0, int64(5*time.Millisecond))
	es := straightLine(101, 0, int64(50*time.Millisecond))
	assoc := mustAssociate(t, gt, es, 0, time.Millisecond)
	test.That(t, assoc.Pairs, test.ShouldHaveLength, 101)
	for i, pair := range assoc.Pairs {
		test.That(t, pair.Groundtruth.Point().X, test.ShouldEqual, float64(10*i))
	}
}

func TestAssociatePartialOverlap(t *testing.T) {
	gt := straightLine(10, 0, period)
	es := straightLine(20, 0, period)
	assoc := mustAssociate(t, gt, es, 0, 20*time.Millisecond)
	test.That(t, assoc.Pairs, test.ShouldHaveLength, 10)
	test.That(t, assoc.Dropped, test.ShouldEqual, 10)
}

func TestAssociateEmpty(t *testing.T) {
	gt := straightLine(10, 0, period)
	assoc := mustAssociate(t, Trajectory{}, gt, 0, 20*time.Millisecond)
	test.That(t, assoc.Pairs, test.ShouldBeEmpty)
	test.That(t, assoc.Dropped, test.ShouldEqual, 10)

	assoc = mustAssociate(t, gt, nil, 0, 20*time.Millisecond)
	test.That(t, assoc.Pairs, test.ShouldBeEmpty)
	test.That(t, assoc.Dropped, test.ShouldEqual, 0)
}

func TestAssociateIsDeterministic(t *testing.T) {
	gt := straightLine(50, 0, period)
	es := make(Trajectory, 0, 50)
	for i := 0; i < 50; i++ {
		es = append(es, StampedPose{
			Stamp: int64(i)*period + int64(i%7)*int64(time.Millisecond),
			Pose:  spatialmath.NewPose(r3.Vector{X: float64(i), Y: 0.1}, &spatialmath.R4AA{Theta: 0.01 * float64(i), RZ: 1}),
		})
	}
	first := mustAssociate(t, gt, es, 0, 4*time.Millisecond)
	second := mustAssociate(t, gt, es, 0, 4*time.Millisecond)
	test.That(t, second.Dropped, test.ShouldEqual, first.Dropped)
	test.That(t, second.Stamps, test.ShouldResemble, first.Stamps)
	test.That(t, second.Pairs, test.ShouldHaveLength, len(first.Pairs))
	for i := range first.Pairs {
		test.That(t, first.Pairs[i].Groundtruth.Point(), test.ShouldResemble, second.Pairs[i].Groundtruth.Point())
		test.That(t, first.Pairs[i].Estimate.Point(), test.ShouldResemble, second.Pairs[i].Estimate.Point())
	}
	// i%7 in {5, 6} exceeds the 4ms tolerance
	test.That(t, first.Dropped, test.ShouldEqual, 14)
}

func mustAssociate(t *testing.T, gt, es Trajectory, offset, maxDifference time.Duration) *Association {
	t.Helper()
	assoc, err := Associate(gt, es, offset, maxDifference)
	test.That(t, err, test.ShouldBeNil)
	return assoc
}

func TestAssociateUnorderedGroundtruth(t *testing.T) {
	gt := straightLine(5, 0, period)
	gt[3].Stamp = gt[1].Stamp
	_, err := Associate(gt, straightLine(5, 0, period), 0, 20*time.Millisecond)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "groundtruth")
	test.That(t, err.Error(), test.ShouldContainSubstring, "does not follow")
}
