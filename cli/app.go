// Package cli contains the trajeval command line tool.
package cli

import (
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"go.viam.com/trajeval/logging"
	"go.viam.com/trajeval/rpe"
	"go.viam.com/trajeval/trajectory"
	"go.viam.com/trajeval/utils"
)

const (
	generalFlagConfig = "config"
	generalFlagDebug  = "debug"
	generalFlagLevel  = "log-level"

	dataFlagDir          = "data-dir"
	dataFlagFilenameEs   = "filename-es"
	dataFlagFilenameGt   = "filename-gt"
	dataFlagResultPrefix = "filename-result-prefix"
	dataFlagFormatEs     = "format-es"
	dataFlagFormatGt     = "format-gt"

	rpeFlagOffset               = "offset-sec"
	rpeFlagMaxDifference        = "max-difference-sec"
	rpeFlagSegmentLength        = "segment-length"
	rpeFlagSkipFrames           = "skip-frames"
	rpeFlagAlign                = "least-squares-align"
	rpeFlagAlignTranslationOnly = "least-squares-align-translation-only"
	rpeFlagAlignScale           = "least-squares-align-scale"
	rpeFlagAlignRange           = "least-squares-align-range"
	rpeFlagAllowPartial         = "allow-partial-segments"
	rpeFlagWorkers              = "workers"
)

// NewApp returns a new app with the trajeval CLI, Writer set to out, and ErrWriter
// set to errOut. Logs go to errOut.
func NewApp(out, errOut io.Writer) *cli.App {
	defaults := rpe.NewDefaultConfig()
	return &cli.App{
		Name:            "trajeval",
		Usage:           "evaluate the relative pose error of an estimated trajectory against its groundtruth",
		HideHelpCommand: true,
		Writer:          out,
		ErrWriter:       errOut,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    generalFlagConfig,
				Aliases: []string{"c"},
				Usage:   "load evaluation options from a JSON `FILE`, flags that are set take precedence",
			},
			&cli.BoolFlag{
				Name:    generalFlagDebug,
				Aliases: []string{"vvv"},
				Usage:   "enable debug logging, overrides --log-level",
			},
			&cli.StringFlag{
				Name:  generalFlagLevel,
				Value: "info",
				Usage: "minimum `LEVEL` of the logs written to stderr: debug, info, warn or error",
			},
			&cli.StringFlag{
				Name:  dataFlagDir,
				Value: ".",
				Usage: "directory holding the trajectories, the result is written there too",
			},
			&cli.StringFlag{
				Name:  dataFlagFilenameEs,
				Value: "traj_es.csv",
				Usage: "estimated trajectory file name",
			},
			&cli.StringFlag{
				Name:  dataFlagFilenameGt,
				Value: "traj_gt.csv",
				Usage: "groundtruth trajectory file name",
			},
			&cli.StringFlag{
				Name:  dataFlagResultPrefix,
				Value: "traj_relative_errors",
				Usage: "result file name prefix, the segment length and .csv are appended",
			},
			&cli.StringFlag{
				Name:  dataFlagFormatEs,
				Value: trajectory.FormatPose,
				Usage: "format of the estimated trajectory, one of " + strings.Join(trajectory.RegisteredFormats(), ", "),
			},
			&cli.StringFlag{
				Name:  dataFlagFormatGt,
				Value: trajectory.FormatPose,
				Usage: "format of the groundtruth trajectory, one of " + strings.Join(trajectory.RegisteredFormats(), ", "),
			},
			&cli.Float64Flag{
				Name:  rpeFlagOffset,
				Value: defaults.OffsetSec,
				Usage: "offset in seconds added to the estimate stamps before matching",
			},
			&cli.Float64Flag{
				Name:  rpeFlagMaxDifference,
				Value: defaults.MaxDifferenceSec,
				Usage: "maximum stamp difference in seconds of matched samples",
			},
			&cli.Float64Flag{
				Name:  rpeFlagSegmentLength,
				Value: defaults.SegmentLength,
				Usage: "groundtruth arc length of a segment in meters",
			},
			&cli.IntFlag{
				Name:  rpeFlagSkipFrames,
				Value: defaults.SkipFrames,
				Usage: "number of frames between segment starts",
			},
			&cli.BoolFlag{
				Name:  rpeFlagAlign,
				Usage: "fit a least-squares correction over the start of every segment",
			},
			&cli.BoolFlag{
				Name:  rpeFlagAlignTranslationOnly,
				Usage: "only correct the translation when aligning",
			},
			&cli.BoolFlag{
				Name:  rpeFlagAlignScale,
				Usage: "also fit a scale when aligning",
			},
			&cli.Float64Flag{
				Name:  rpeFlagAlignRange,
				Value: defaults.LeastSquaresAlignRange,
				Usage: "leading fraction of a segment the alignment is fit over",
			},
			&cli.BoolFlag{
				Name:  rpeFlagAllowPartial,
				Usage: "also report segments that reach the end of the trajectory before the segment length",
			},
			&cli.IntFlag{
				Name:  rpeFlagWorkers,
				Value: defaults.Workers,
				Usage: "number of segments evaluated concurrently",
			},
		},
		Action: EvaluateAction,
		Commands: []*cli.Command{
			{
				Name:   "formats",
				Usage:  "list the supported trajectory formats",
				Action: FormatsAction,
			},
		},
	}
}

// EvaluateAction is the root action: it evaluates the estimate against the groundtruth and
// writes the relative errors.
func EvaluateAction(c *cli.Context) error {
	logger, err := newLogger(c)
	if err != nil {
		return err
	}
	defer func() {
		//nolint:errcheck
		logger.Sync()
	}()

	cfg, err := configFromFlags(c)
	if err != nil {
		return err
	}

	dir := c.String(dataFlagDir)
	gtPath, err := dataPath(dir, dataFlagFilenameGt, c.String(dataFlagFilenameGt))
	if err != nil {
		return err
	}
	esPath, err := dataPath(dir, dataFlagFilenameEs, c.String(dataFlagFilenameEs))
	if err != nil {
		return err
	}
	resultPath, err := dataPath(dir, dataFlagResultPrefix,
		rpe.ResultFilename(c.String(dataFlagResultPrefix), cfg.SegmentLength))
	if err != nil {
		return err
	}
	if same, err := samePath(gtPath, esPath); err == nil && same {
		warningf(c.App.ErrWriter, "groundtruth and estimate are both read from %s", gtPath)
	}

	gt, err := trajectory.LoadFile(c.String(dataFlagFormatGt), gtPath)
	if err != nil {
		return errors.Wrap(err, "loading groundtruth")
	}
	es, err := trajectory.LoadFile(c.String(dataFlagFormatEs), esPath)
	if err != nil {
		return errors.Wrap(err, "loading estimate")
	}
	logger.Infow("loaded trajectories", "groundtruth", len(gt), "estimate", len(es))

	result, err := rpe.Evaluate(gt, es, cfg, logger.Sublogger("rpe"))
	if err != nil {
		return err
	}

	if err := rpe.WriteCSVFile(resultPath, result.Errors); err != nil {
		return err
	}
	infof(c.App.Writer, "wrote %d relative errors to %s", len(result.Errors), resultPath)

	summary, err := rpe.Summarize(result.Errors)
	if err != nil {
		return errors.Wrap(err, "summarizing relative errors")
	}
	printf(c.App.Writer, "%s", summary.String())
	return nil
}

// FormatsAction prints the names of the registered trajectory formats.
func FormatsAction(c *cli.Context) error {
	for _, name := range trajectory.RegisteredFormats() {
		printf(c.App.Writer, "%s", name)
	}
	return nil
}

// dataPath joins a file name given by flag onto the data directory.
func dataPath(dir, flag, name string) (string, error) {
	if name == "" {
		return "", utils.NewConfigValidationFieldRequiredError("flags", flag)
	}
	return utils.SafeJoinDir(dir, name)
}

func newLogger(c *cli.Context) (logging.Logger, error) {
	level := logging.DEBUG
	if !c.Bool(generalFlagDebug) {
		var err error
		if level, err = logging.LevelFromString(c.String(generalFlagLevel)); err != nil {
			return nil, errors.Wrapf(err, "--%s", generalFlagLevel)
		}
	}
	return logging.NewWriterLogger("trajeval", level, c.App.ErrWriter), nil
}

// configFromFlags reads the config file if one is given and overlays every flag that was set.
func configFromFlags(c *cli.Context) (*rpe.Config, error) {
	cfg := rpe.NewDefaultConfig()
	if path := c.String(generalFlagConfig); path != "" {
		var err error
		if cfg, err = rpe.ReadConfigFile(path); err != nil {
			return nil, err
		}
	}

	if c.IsSet(rpeFlagOffset) {
		cfg.OffsetSec = c.Float64(rpeFlagOffset)
	}
	if c.IsSet(rpeFlagMaxDifference) {
		cfg.MaxDifferenceSec = c.Float64(rpeFlagMaxDifference)
	}
	if c.IsSet(rpeFlagSegmentLength) {
		cfg.SegmentLength = c.Float64(rpeFlagSegmentLength)
	}
	if c.IsSet(rpeFlagSkipFrames) {
		cfg.SkipFrames = c.Int(rpeFlagSkipFrames)
	}
	if c.IsSet(rpeFlagAlign) {
		cfg.LeastSquaresAlign = c.Bool(rpeFlagAlign)
	}
	if c.IsSet(rpeFlagAlignTranslationOnly) {
		cfg.LeastSquaresAlignTranslationOnly = c.Bool(rpeFlagAlignTranslationOnly)
	}
	if c.IsSet(rpeFlagAlignScale) {
		cfg.LeastSquaresAlignScale = c.Bool(rpeFlagAlignScale)
	}
	if c.IsSet(rpeFlagAlignRange) {
		cfg.LeastSquaresAlignRange = c.Float64(rpeFlagAlignRange)
	}
	if c.IsSet(rpeFlagAllowPartial) {
		cfg.AllowPartialSegments = c.Bool(rpeFlagAllowPartial)
	}
	if c.IsSet(rpeFlagWorkers) {
		cfg.Workers = c.Int(rpeFlagWorkers)
	}

	source := c.String(generalFlagConfig)
	if source == "" {
		source = "flags"
	}
	if err := cfg.Validate(source); err != nil {
		return nil, err
	}
	return cfg, nil
}
