package logging

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Setup configures the standard logrus logger. Unknown levels fall back to
// info; format "json" selects the JSON formatter, anything else text.
func Setup(level, format string) *logrus.Logger {
	l := logrus.StandardLogger()
	l.SetOutput(os.Stderr)

	lvl, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		lvl = logrus.InfoLevel
	}
	l.SetLevel(lvl)

	if strings.EqualFold(format, "json") {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return l
}

// For returns an entry tagged with the component name, the way every package
// in this module logs.
func For(component string) *logrus.Entry {
	return logrus.WithField("component", component)
}
