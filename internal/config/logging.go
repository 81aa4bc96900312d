package config

import (
	"os"

	"github.com/sirupsen/logrus"
)

// InitLogging configures the process-wide logrus logger. JSON output is used
// unless LOG_FORMAT=text, so log aggregators can ingest fields directly.
func InitLogging() {
	if os.Getenv("LOG_FORMAT") == "text" {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}
	if lvl, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil {
		logrus.SetLevel(lvl)
	} else {
		logrus.SetLevel(logrus.InfoLevel)
	}
}
