package trajectory

import (
	"encoding/csv"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"gonum.org/v1/gonum/num/quat"

	"go.viam.com/trajeval/spatialmath"
)

// Names of the built-in formats.
const (
	FormatPose  = "pose"
	FormatEuroc = "euroc"
	FormatSWE   = "swe"
)

// A quaternion whose norm is below this is rejected rather than normalized.
const minQuaternionNorm = 1e-6

// Format parses one textual trajectory layout into a Trajectory.
type Format interface {
	Parse(r io.Reader) (Trajectory, error)
}

var (
	formatsMu sync.RWMutex
	formats   = map[string]Format{
		// timestamp, x, y, z, qx, qy, qz, qw
		FormatPose: &columnFormat{columns: 8},
		// EuRoC state groundtruth: timestamp, p_RS_R (x, y, z), q_RS (w, x, y, z), velocity and biases
		FormatEuroc: &columnFormat{columns: 8, realFirst: true},
		// sliding window estimator results: timestamp, x, y, z, qx, qy, qz, qw, then velocity and biases
		FormatSWE: &columnFormat{columns: 8},
	}
)

// RegisterFormat registers a Format under a name, replacing any previous one.
func RegisterFormat(name string, f Format) {
	formatsMu.Lock()
	defer formatsMu.Unlock()
	formats[name] = f
}

// LookupFormat returns the Format registered under name.
func LookupFormat(name string) (Format, error) {
	formatsMu.RLock()
	f, ok := formats[name]
	formatsMu.RUnlock()
	if !ok {
		return nil, NewUnsupportedFormatError(name)
	}
	return f, nil
}

// RegisteredFormats returns the sorted names of all registered formats.
func RegisteredFormats() []string {
	formatsMu.RLock()
	defer formatsMu.RUnlock()
	names := lo.Keys(formats)
	sort.Strings(names)
	return names
}

// Load parses a trajectory from r using the named format.
func Load(format string, r io.Reader) (Trajectory, error) {
	f, err := LookupFormat(format)
	if err != nil {
		return nil, err
	}
	return f.Parse(r)
}

// LoadFile parses the trajectory file at path using the named format.
func LoadFile(format, path string) (Trajectory, error) {
	f, err := LookupFormat(format)
	if err != nil {
		return nil, err
	}
	//nolint:gosec
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %q", path)
	}
	defer file.Close() //nolint:errcheck

	traj, err := f.Parse(file)
	if err != nil {
		return nil, errors.Wrapf(err, "loading %q as %q", path, format)
	}
	return traj, nil
}

// columnFormat reads comma separated rows of a nanosecond stamp, a position and a quaternion.
// Lines starting with '#' are comments, columns after the quaternion are ignored.
type columnFormat struct {
	columns int
	// realFirst is set when the quaternion is stored as w, x, y, z instead of x, y, z, w.
	realFirst bool
}

func (f *columnFormat) Parse(r io.Reader) (Trajectory, error) {
	reader := csv.NewReader(r)
	reader.Comment = '#'
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = true

	var traj Trajectory
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "reading trajectory")
		}
		if len(record) == 1 && strings.TrimSpace(record[0]) == "" {
			continue
		}
		sp, err := f.parseRecord(len(traj), record)
		if err != nil {
			return nil, err
		}
		traj = append(traj, sp)
	}

	if err := traj.Validate(); err != nil {
		return nil, err
	}
	return traj, nil
}

func (f *columnFormat) parseRecord(index int, record []string) (StampedPose, error) {
	if len(record) < f.columns {
		return StampedPose{}, NewMalformedPoseError(index, 0,
			"expected at least "+strconv.Itoa(f.columns)+" columns, got "+strconv.Itoa(len(record)))
	}
	stamp, err := strconv.ParseInt(strings.TrimSpace(record[0]), 10, 64)
	if err != nil {
		return StampedPose{}, NewMalformedPoseError(index, 0, "invalid timestamp "+strconv.Quote(record[0]))
	}

	var values [7]float64
	for i := range values {
		field := strings.TrimSpace(record[i+1])
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return StampedPose{}, NewMalformedPoseError(index, stamp, "invalid number "+strconv.Quote(field))
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return StampedPose{}, NewMalformedPoseError(index, stamp, "non-finite value in column "+strconv.Itoa(i+1))
		}
		values[i] = v
	}

	point := r3.Vector{X: values[0], Y: values[1], Z: values[2]}
	q := quat.Number{Imag: values[3], Jmag: values[4], Kmag: values[5], Real: values[6]}
	if f.realFirst {
		q = quat.Number{Real: values[3], Imag: values[4], Jmag: values[5], Kmag: values[6]}
	}
	if quat.Abs(q) < minQuaternionNorm {
		return StampedPose{}, NewMalformedPoseError(index, stamp, "zero quaternion")
	}
	orientation := spatialmath.Quaternion(q)
	return StampedPose{Stamp: stamp, Pose: spatialmath.NewPose(point, &orientation)}, nil
}
