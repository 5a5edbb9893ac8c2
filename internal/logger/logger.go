// Package logger configures the structured logger shared by the pipeline.
//
// Logs go to stderr and, when an output directory is configured, to the
// wfmaster.log file inside it, mirroring where the exported workbooks live.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

// LogFileName is the log file created inside the output directory.
const LogFileName = "wfmaster.log"

// New creates a configured logger. level is a logrus level name ("debug",
// "info", ...); outputDir may be empty to log to stderr only.
func New(level, outputDir string) (*logrus.Logger, error) {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parsing log level: %w", err)
	}
	log.SetLevel(lvl)

	if outputDir != "" {
		if err := os.MkdirAll(outputDir, 0o755); err != nil {
			return nil, fmt.Errorf("creating output directory: %w", err)
		}
		f, err := os.OpenFile(filepath.Join(outputDir, LogFileName), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}
		log.SetOutput(io.MultiWriter(os.Stderr, f))
	}

	return log, nil
}
