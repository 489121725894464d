package rpe

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

// CSVHeader is the first line of a relative error file.
const CSVHeader = "# First frame index, err-tx, err-ty, err-tz, err-ax, err-ay, err-az, length, num frames, err-scale"

const csvSeparator = ", "

// ResultFilename returns the name of the relative error file for a segment length.
func ResultFilename(prefix string, segmentLength float64) string {
	return prefix + "_" + strconv.Itoa(int(segmentLength)) + ".csv"
}

// WriteCSV writes the header and one row per relative error.
func WriteCSV(w io.Writer, relErrors []RelativeError) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(CSVHeader + "\n"); err != nil {
		return errors.Wrap(err, "writing header")
	}
	for _, e := range relErrors {
		if _, err := bw.WriteString(formatRow(e) + "\n"); err != nil {
			return errors.Wrapf(err, "writing segment starting at frame %d", e.FirstFrame)
		}
	}
	return bw.Flush()
}

// WriteCSVFile writes the relative errors to path, replacing any existing file.
func WriteCSVFile(path string, relErrors []RelativeError) (err error) {
	//nolint:gosec
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "creating %q", path)
	}
	defer func() {
		err = multierr.Combine(err, f.Close())
	}()
	return WriteCSV(f, relErrors)
}

func formatRow(e RelativeError) string {
	fields := []string{
		strconv.Itoa(e.FirstFrame),
		formatFloat(e.Translation.X),
		formatFloat(e.Translation.Y),
		formatFloat(e.Translation.Z),
		formatFloat(e.Rotation.X),
		formatFloat(e.Rotation.Y),
		formatFloat(e.Rotation.Z),
		formatFloat(e.Length),
		strconv.Itoa(e.NumFrames),
		formatFloat(e.Scale),
	}
	return strings.Join(fields, csvSeparator)
}

// formatFloat prints six significant digits, switching to exponent notation for large and small
// magnitudes. Negative zero is printed as 0.
func formatFloat(v float64) string {
	if v == 0 {
		return "0"
	}
	return strconv.FormatFloat(v, 'g', 6, 64)
}
