package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"time"

	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	"github.com/rifflock/lfshook"
	"github.com/sirupsen/logrus"

	"github.com/seqops/stagehand/common"
)

// Log is the global logger instance.
var Log *RunLog

// RunLog wraps *logrus.Logger with context helpers for plan, step and
// host scoped entries.
type RunLog struct {
	*logrus.Logger
}

func init() {
	// A console logger is always available; InitGlobalLogger replaces it
	// once CLI flags are parsed.
	Log, _ = NewRunLog("", false, logrus.InfoLevel, true)
}

// InitGlobalLogger initializes the global Log variable. With a non-empty
// outputPath, log lines go to a daily rotated file under that directory;
// otherwise they go to stdout with colors.
func InitGlobalLogger(outputPath string, verbose bool, defaultLevel logrus.Level) error {
	l, err := NewRunLog(outputPath, verbose, defaultLevel, outputPath == "")
	if err != nil {
		return err
	}
	Log = l
	return nil
}

// NewRunLog creates a new RunLog instance.
func NewRunLog(outputPath string, verbose bool, defaultLevel logrus.Level, forConsole bool) (*RunLog, error) {
	l := logrus.New()

	level := defaultLevel
	if verbose {
		level = logrus.DebugLevel
	}
	l.SetLevel(level)
	l.SetReportCaller(true)

	displayLevel := ShowAboveWarn
	if verbose {
		displayLevel = ShowAll
	}

	fieldsOrder := []string{
		common.PlanName, common.StepName, common.HostName, common.RunID,
	}

	if forConsole || outputPath == "" {
		l.SetFormatter(&Formatter{
			TimestampFormat:        "15:04:05",
			NoColors:               false,
			DisplayLevelName:       displayLevel,
			DisableCaller:          true, // caller info is too noisy for console runs
			FieldsDisplayWithOrder: fieldsOrder,
		})
		l.SetOutput(os.Stdout)
		return &RunLog{Logger: l}, nil
	}

	if err := os.MkdirAll(outputPath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log output directory %s: %w", outputPath, err)
	}
	logFilePath := filepath.Join(outputPath, "stagehand.log")

	writer, err := rotatelogs.New(
		logFilePath+".%Y%m%d", // daily rotation
		rotatelogs.WithLinkName(logFilePath),
		rotatelogs.WithMaxAge(7*24*time.Hour),
		rotatelogs.WithRotationTime(24*time.Hour),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize rotatelogs for %s: %w", logFilePath, err)
	}

	fileFormatter := &Formatter{
		TimestampFormat:        "2006-01-02 15:04:05.000 MST",
		NoColors:               true,
		DisplayLevelName:       displayLevel,
		FieldsDisplayWithOrder: fieldsOrder,
		FieldSeparator:         " | ",
		DisableCaller:          false,
		CustomCallerFormatter: func(frame *runtime.Frame) string {
			return fmt.Sprintf(" [%s:%d %s]", filepath.Base(frame.File), frame.Line, filepath.Base(frame.Function))
		},
	}
	l.SetFormatter(fileFormatter)

	logWriters := lfshook.WriterMap{}
	for _, lvl := range logrus.AllLevels {
		if l.IsLevelEnabled(lvl) {
			logWriters[lvl] = writer
		}
	}
	if len(logWriters) > 0 {
		l.Hooks.Add(lfshook.NewHook(logWriters, fileFormatter))
		// File output goes through the hook; the default stream would
		// duplicate every line otherwise.
		l.SetOutput(io.Discard)
	}

	return &RunLog{Logger: l}, nil
}

// ForPlan returns an entry scoped to the named plan.
func (rl *RunLog) ForPlan(planName string) *logrus.Entry {
	return rl.WithField(common.PlanName, planName)
}

// ForStep returns an entry scoped to the named step.
func (rl *RunLog) ForStep(stepID string) *logrus.Entry {
	return rl.WithField(common.StepName, stepID)
}

// ForHost returns an entry scoped to the named host.
func (rl *RunLog) ForHost(hostName string) *logrus.Entry {
	return rl.WithField(common.HostName, hostName)
}

// ErrorStep logs a step-scoped error with the error attached as a field.
func (rl *RunLog) ErrorStep(stepID string, err error, message string) {
	fields := logrus.Fields{common.StepName: stepID}
	if err != nil {
		fields["error"] = err
	}
	rl.WithFields(fields).Error(message)
}

// WarnStep logs a step-scoped warning.
func (rl *RunLog) WarnStep(stepID string, message string) {
	rl.WithField(common.StepName, stepID).Warn(message)
}

// InfoStep logs a step-scoped message.
func (rl *RunLog) InfoStep(stepID string, message string) {
	rl.WithField(common.StepName, stepID).Info(message)
}
