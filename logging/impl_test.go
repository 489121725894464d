package logging

import (
	"bytes"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"
	"go.viam.com/test"
)

func TestConsoleOutputFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriterLogger("trajeval", INFO, &buf)

	logger.Info("association done")
	logger.Debug("not shown")
	logger.Warnw("dropped samples", "dropped", 3)

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	test.That(t, lines, test.ShouldHaveLength, 2)

	parts := strings.Split(lines[0], "\t")
	test.That(t, parts, test.ShouldHaveLength, 5)
	test.That(t, len(parts[0]), test.ShouldEqual, len("2024-01-23T09:26:57.843Z"))
	test.That(t, parts[1], test.ShouldEqual, "INFO")
	test.That(t, parts[2], test.ShouldEqual, "trajeval")
	test.That(t, parts[3], test.ShouldStartWith, "logging/impl_test.go:")
	test.That(t, parts[4], test.ShouldEqual, "association done")

	parts = strings.Split(lines[1], "\t")
	test.That(t, parts, test.ShouldHaveLength, 6)
	test.That(t, parts[1], test.ShouldEqual, "WARN")
	test.That(t, parts[5], test.ShouldEqual, `{"dropped":3}`)
}

func TestObservedLogger(t *testing.T) {
	logger, logs := NewObservedTestLogger(t)
	logger.Debugf("computing %d segments", 6)
	logger.Infow("summary", "segments", 6)

	test.That(t, logs.Len(), test.ShouldEqual, 2)
	test.That(t, logs.All()[0].Message, test.ShouldEqual, "computing 6 segments")
	test.That(t, logs.All()[0].Level, test.ShouldEqual, zapcore.DebugLevel)
	test.That(t, logs.FilterMessage("summary").All()[0].ContextMap()["segments"], test.ShouldEqual, int64(6))

	logger.SetLevel(WARN)
	logger.Info("filtered")
	test.That(t, logs.Len(), test.ShouldEqual, 2)
	test.That(t, logger.Sync(), test.ShouldBeNil)
}

func TestSublogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriterLogger("trajeval", DEBUG, &buf)
	sub := logger.Sublogger("rpe")
	sub.Infof("%d errors", 2)
	test.That(t, buf.String(), test.ShouldContainSubstring, "trajeval.rpe")
	test.That(t, buf.String(), test.ShouldContainSubstring, "2 errors")
	test.That(t, sub.GetLevel(), test.ShouldEqual, DEBUG)
}

func TestUnpairedKey(t *testing.T) {
	logger, logs := NewObservedTestLogger(t)
	logger.Infow("msg", "key")
	test.That(t, logs.All()[0].ContextMap()["key"], test.ShouldNotBeNil)
}

func TestLevelFromString(t *testing.T) {
	for str, want := range map[string]Level{"debug": DEBUG, "INFO": INFO, "warning": WARN, "Error": ERROR} {
		level, err := LevelFromString(str)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, level, test.ShouldEqual, want)
	}
	_, err := LevelFromString("loud")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "unknown log level")
}

func TestAsZap(t *testing.T) {
	logger, logs := NewObservedTestLogger(t)
	logger.AsZap().Infow("from zap", "k", "v")
	test.That(t, logs.FilterMessage("from zap").Len(), test.ShouldEqual, 1)
}
