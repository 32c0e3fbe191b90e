package serialport

import (
	"io"

	"github.com/sirupsen/logrus"
)

var logger logrus.FieldLogger = logrus.StandardLogger()

// SetLogger routes the package's diagnostics. Lifecycle events are logged at
// debug level; passing nil silences the package. Call before using ports.
func SetLogger(l logrus.FieldLogger) {
	if l == nil {
		silent := logrus.New()
		silent.SetOutput(io.Discard)
		l = silent
	}
	logger = l
}
