package cli

import (
	"bytes"
	"testing"

	"github.com/fatih/color"
	"go.viam.com/test"
)

func TestSamePath(t *testing.T) {
	equal, _ := samePath("/x", "/x")
	test.That(t, equal, test.ShouldBeTrue)
	equal, _ = samePath("/x", "x")
	test.That(t, equal, test.ShouldBeFalse)
	equal, _ = samePath("/data/./traj_gt.csv", "/data/traj_gt.csv")
	test.That(t, equal, test.ShouldBeTrue)
}

func TestPrefixedOutput(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer
	infof(&buf, "wrote %d relative errors", 3)
	warningf(&buf, "nothing to do")
	printf(&buf, "%s", "plain")
	test.That(t, buf.String(), test.ShouldEqual, "Info: wrote 3 relative errors\nWarning: nothing to do\nplain\n")
}

func TestEvaluateActionSameFile(t *testing.T) {
	dir := t.TempDir()
	writeLine(t, dir+"/traj.csv", 30, 1, 0)
	_, errOut, err := runApp(t, "--data-dir", dir, "--filename-gt", "traj.csv", "--filename-es", "traj.csv", "--segment-length", "10")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, errOut, test.ShouldContainSubstring, "groundtruth and estimate are both read from")
}
