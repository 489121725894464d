package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.viam.com/test"

	"go.viam.com/trajeval/rpe"
)

// writeLine writes n poses stepping one meter along x every 100ms in the pose format.
func writeLine(t *testing.T, path string, n int, scale float64, stampOffset int64) {
	t.Helper()
	var buf bytes.Buffer
	buf.WriteString("# timestamp, x, y, z, qx, qy, qz, qw\n")
	for i := 0; i < n; i++ {
		fmt.Fprintf(&buf, "%d, %v, 0, 0, 0, 0, 0, 1\n", int64(i)*100000000+stampOffset, scale*float64(i))
	}
	test.That(t, os.WriteFile(path, buf.Bytes(), 0o600), test.ShouldBeNil)
}

func runApp(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	app := NewApp(&out, &errOut)
	err := app.Run(append([]string{"trajeval"}, args...))
	return out.String(), errOut.String(), err
}

func readRows(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	test.That(t, err, test.ShouldBeNil)
	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	test.That(t, lines[0], test.ShouldEqual, rpe.CSVHeader)
	return lines[1:]
}

func TestEvaluateAction(t *testing.T) {
	dir := t.TempDir()
	writeLine(t, filepath.Join(dir, "traj_gt.csv"), 101, 1, 0)
	writeLine(t, filepath.Join(dir, "traj_es.csv"), 101, 1.1, 5000000)

	out, errOut, err := runApp(t, "--data-dir", dir)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldContainSubstring, "wrote 6 relative errors")
	test.That(t, out, test.ShouldContainSubstring, "relative pose error over 6 segments")
	test.That(t, errOut, test.ShouldContainSubstring, "loaded trajectories")

	rows := readRows(t, filepath.Join(dir, "traj_relative_errors_50.csv"))
	test.That(t, rows, test.ShouldHaveLength, 6)
	test.That(t, rows[0], test.ShouldEqual, "0, 5, 0, 0, 0, 0, 0, 50, 50, 1.1")
	test.That(t, rows[5], test.ShouldStartWith, "50, ")
}

func TestEvaluateActionFlags(t *testing.T) {
	dir := t.TempDir()
	writeLine(t, filepath.Join(dir, "gt.csv"), 101, 1, 0)
	writeLine(t, filepath.Join(dir, "es.csv"), 101, 1, 0)

	out, _, err := runApp(t,
		"--data-dir", dir,
		"--filename-gt", "gt.csv",
		"--filename-es", "es.csv",
		"--filename-result-prefix", "rpe",
		"--segment-length", "20",
		"--skip-frames", "40",
		"--least-squares-align",
		"--least-squares-align-scale",
		"--workers", "4",
	)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldContainSubstring, "wrote 3 relative errors")

	rows := readRows(t, filepath.Join(dir, "rpe_20.csv"))
	test.That(t, rows, test.ShouldHaveLength, 3)
	test.That(t, rows[1], test.ShouldStartWith, "40, ")
}

func TestEvaluateActionConfigFile(t *testing.T) {
	dir := t.TempDir()
	writeLine(t, filepath.Join(dir, "traj_gt.csv"), 101, 1, 0)
	writeLine(t, filepath.Join(dir, "traj_es.csv"), 101, 1, 5000000)
	cfgPath := filepath.Join(dir, "rpe.json")
	cfg := `{"max_difference_sec": 0.001, "segment_length": 30}`
	test.That(t, os.WriteFile(cfgPath, []byte(cfg), 0o600), test.ShouldBeNil)

	// every sample is dropped with the tolerance of the file
	out, errOut, err := runApp(t, "--data-dir", dir, "--config", cfgPath)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldContainSubstring, "wrote 0 relative errors")
	test.That(t, errOut, test.ShouldContainSubstring, "dropped")
	test.That(t, readRows(t, filepath.Join(dir, "traj_relative_errors_30.csv")), test.ShouldResemble, []string{})

	// a flag overrides the file
	out, _, err = runApp(t, "--data-dir", dir, "--config", cfgPath, "--max-difference-sec", "0.01")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldContainSubstring, "wrote 8 relative errors")
}

func TestEvaluateActionErrors(t *testing.T) {
	dir := t.TempDir()
	writeLine(t, filepath.Join(dir, "traj_gt.csv"), 20, 1, 0)
	writeLine(t, filepath.Join(dir, "traj_es.csv"), 20, 1, 0)

	_, _, err := runApp(t, "--data-dir", dir, "--format-gt", "kitti")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, `format "kitti" is not supported`)

	_, _, err = runApp(t, "--data-dir", dir, "--least-squares-align-range", "0")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, `error validating "flags"`)

	_, _, err = runApp(t, "--data-dir", dir, "--filename-es", "missing.csv")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "loading estimate")

	test.That(t, os.WriteFile(filepath.Join(dir, "bad.csv"), []byte("1, 0, 0, NaN, 0, 0, 0, 1\n"), 0o600), test.ShouldBeNil)
	_, _, err = runApp(t, "--data-dir", dir, "--filename-es", "bad.csv")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "malformed pose record 0")
}

func TestFormatsAction(t *testing.T) {
	out, _, err := runApp(t, "formats")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldContainSubstring, "euroc\npose\nswe\n")
}

func TestEvaluateActionPaths(t *testing.T) {
	dir := t.TempDir()
	_, _, err := runApp(t, "--data-dir", dir, "--filename-gt", "")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, `"filename-gt" is required`)

	_, _, err = runApp(t, "--data-dir", dir, "--filename-es", "../traj_es.csv")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "unsafe path join")
}

func TestEvaluateActionLogLevel(t *testing.T) {
	dir := t.TempDir()
	writeLine(t, filepath.Join(dir, "traj_gt.csv"), 101, 1, 0)
	writeLine(t, filepath.Join(dir, "traj_es.csv"), 101, 1, 0)

	_, errOut, err := runApp(t, "--data-dir", dir, "--log-level", "warn")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, errOut, test.ShouldNotContainSubstring, "loaded trajectories")

	_, errOut, err = runApp(t, "--data-dir", dir, "--log-level", "warn", "--debug")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, errOut, test.ShouldContainSubstring, "selected segments")

	_, _, err = runApp(t, "--data-dir", dir, "--log-level", "loud")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "--log-level")
	test.That(t, err.Error(), test.ShouldContainSubstring, `unknown log level: "loud"`)
}
