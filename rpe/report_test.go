package rpe

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"
)

func TestResultFilename(t *testing.T) {
	test.That(t, ResultFilename("traj_relative_errors", 50), test.ShouldEqual, "traj_relative_errors_50.csv")
	test.That(t, ResultFilename("out", 7.9), test.ShouldEqual, "out_7.csv")
}

func TestWriteCSV(t *testing.T) {
	relErrors := []RelativeError{
		{
			FirstFrame:  0,
			Translation: r3.Vector{X: 5, Y: -0.000123456789},
			Rotation:    r3.Vector{Z: math.Pi / 2},
			Length:      50,
			NumFrames:   50,
			Scale:       1.1,
		},
		{
			FirstFrame:  10,
			Translation: r3.Vector{X: 1e-7, Y: 1234567, Z: -2.5},
			Length:      50.25,
			NumFrames:   51,
			Scale:       1,
		},
	}
	var buf bytes.Buffer
	test.That(t, WriteCSV(&buf, relErrors), test.ShouldBeNil)
	test.That(t, buf.String(), test.ShouldEqual,
		"# First frame index, err-tx, err-ty, err-tz, err-ax, err-ay, err-az, length, num frames, err-scale\n"+
			"0, 5, -0.000123457, 0, 0, 0, 1.5708, 50, 50, 1.1\n"+
			"10, 1e-07, 1.23457e+06, -2.5, 0, 0, 0, 50.25, 51, 1\n")
}

func TestWriteCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	test.That(t, WriteCSV(&buf, nil), test.ShouldBeNil)
	test.That(t, buf.String(), test.ShouldEqual, CSVHeader+"\n")
}

func TestWriteCSVFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ResultFilename("traj_relative_errors", 50))
	test.That(t, WriteCSVFile(path, []RelativeError{{FirstFrame: 3, NumFrames: 4, Length: 2, Scale: 1}}), test.ShouldBeNil)

	data, err := os.ReadFile(path)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, string(data), test.ShouldEqual, CSVHeader+"\n3, 0, 0, 0, 0, 0, 0, 2, 4, 1\n")

	err = WriteCSVFile(filepath.Join(dir, "missing", "out.csv"), nil)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestFormatFloat(t *testing.T) {
	test.That(t, formatFloat(math.Copysign(0, -1)), test.ShouldEqual, "0")
	test.That(t, formatFloat(-1.5e-5), test.ShouldEqual, "-1.5e-05")
	test.That(t, formatFloat(0.1+0.2), test.ShouldEqual, "0.3")
	test.That(t, formatFloat(123456.7), test.ShouldEqual, "123457")
}
