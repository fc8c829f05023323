package utils

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Logger is the process-wide structured logger.
var Logger = logrus.New()

// serviceHook prefixes every entry with the service name so interleaved
// container logs stay attributable.
type serviceHook struct {
	service string
}

func (h *serviceHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h *serviceHook) Fire(entry *logrus.Entry) error {
	entry.Message = "[" + h.service + "] " + entry.Message
	return nil
}

// InitLogger configures Logger from LOG_LEVEL (default info).
func InitLogger(service string) {
	Logger.SetOutput(os.Stdout)

	lvl := strings.ToLower(strings.TrimSpace(os.Getenv("LOG_LEVEL")))
	if lvl == "" {
		lvl = "info"
	}
	level, err := logrus.ParseLevel(lvl)
	if err != nil {
		Logger.Warnf("Invalid LOG_LEVEL '%s', defaulting to INFO", lvl)
		level = logrus.InfoLevel
	}
	Logger.SetLevel(level)

	Logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	if service != "" {
		Logger.AddHook(&serviceHook{service: service})
	}
}
