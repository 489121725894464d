package trajectory

import (
	"time"

	"github.com/pkg/errors"
	"github.com/samber/lo"

	"go.viam.com/trajeval/spatialmath"
)

// AlignedPair is a groundtruth pose and the estimate pose matched to it.
type AlignedPair struct {
	Groundtruth spatialmath.Pose
	Estimate    spatialmath.Pose
}

// Association is the result of matching an estimate against its groundtruth.
type Association struct {
	// Pairs are ordered like the estimate samples they came from.
	Pairs []AlignedPair
	// Stamps holds the estimate stamp of each pair.
	Stamps []int64
	// Dropped counts estimate samples without a groundtruth sample within the tolerance.
	Dropped int
}

// Groundtruth returns the groundtruth poses of the pairs.
func (a *Association) Groundtruth() []spatialmath.Pose {
	return lo.Map(a.Pairs, func(pair AlignedPair, _ int) spatialmath.Pose { return pair.Groundtruth })
}

// Associate matches every estimate sample at t with the groundtruth sample nearest to t+offset.
// Samples whose nearest groundtruth stamp is further than maxDifference away are dropped and
// counted. The groundtruth must have strictly increasing stamps.
func Associate(gt, es Trajectory, offset, maxDifference time.Duration) (*Association, error) {
	series, err := gt.Series()
	if err != nil {
		return nil, errors.Wrap(err, "groundtruth")
	}
	assoc := &Association{
		Pairs:  make([]AlignedPair, 0, len(es)),
		Stamps: make([]int64, 0, len(es)),
	}

	for _, sample := range es {
		query := sample.Stamp + int64(offset)
		gtStamp, gtPose, found := series.NearestValue(query)
		if !found || absInt64(gtStamp-query) > int64(maxDifference) {
			assoc.Dropped++
			continue
		}
		assoc.Pairs = append(assoc.Pairs, AlignedPair{Groundtruth: gtPose, Estimate: sample.Pose})
		assoc.Stamps = append(assoc.Stamps, sample.Stamp)
	}
	return assoc, nil
}

func absInt64(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}
