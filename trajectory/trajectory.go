// Package trajectory holds time-stamped pose sequences, their file formats and the temporal
// association of an estimated trajectory with its groundtruth.
package trajectory

import (
	"github.com/samber/lo"

	"go.viam.com/trajeval/spatialmath"
)

// StampedPose is a pose at a timestamp in nanoseconds.
type StampedPose struct {
	Stamp int64
	Pose  spatialmath.Pose
}

// Trajectory is a sequence of stamped poses with strictly increasing stamps.
type Trajectory []StampedPose

// Validate checks that every pose is finite and that stamps strictly increase. The returned
// error is a *MalformedPoseError naming the first offending record.
func (t Trajectory) Validate() error {
	for i, sp := range t {
		if sp.Pose == nil {
			return NewMalformedPoseError(i, sp.Stamp, "missing pose")
		}
		if !spatialmath.PoseIsFinite(sp.Pose) {
			return NewMalformedPoseError(i, sp.Stamp, "pose holds non-finite values")
		}
		if i > 0 && sp.Stamp <= t[i-1].Stamp {
			return NewMalformedPoseError(i, sp.Stamp, "stamp does not increase")
		}
	}
	return nil
}

// Stamps returns the timestamps of the trajectory.
func (t Trajectory) Stamps() []int64 {
	return lo.Map(t, func(sp StampedPose, _ int) int64 { return sp.Stamp })
}

// Poses returns the poses of the trajectory.
func (t Trajectory) Poses() []spatialmath.Pose {
	return lo.Map(t, func(sp StampedPose, _ int) spatialmath.Pose { return sp.Pose })
}

// Series returns a TimeSeries view for nearest-stamp lookups. An unordered trajectory yields
// an error.
func (t Trajectory) Series() (*TimeSeries[spatialmath.Pose], error) {
	return NewTimeSeries(t.Stamps(), t.Poses())
}
