package mylog

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/MarcGrol/agencyportal/lib/mycontext"
)

func init() {
	if os.Getenv("GOOGLE_CLOUD_PROJECT") != "" {
		New = newGcloudLogger
	}
}

// Cloud Logging parses each json line on stdout, the timestamp is added on ingestion.
type structuredLogger struct {
	componentName string
	logger        zerolog.Logger
}

func newGcloudLogger(componentName string) Logger {
	return newStructuredLogger(componentName, os.Stdout)
}

func newStructuredLogger(componentName string, out io.Writer) Logger {
	return structuredLogger{
		componentName: componentName,
		logger:        zerolog.New(out),
	}
}

func (l structuredLogger) Log(ctx context.Context, traceLabel string, severity Severity, format string, a ...any) {
	l.logger.Log().
		Str("component", l.componentName).
		Dict("labels", zerolog.Dict().Str("aggregate", traceLabel)).
		Str("logging.googleapis.com/trace", mycontext.TraceFromContext(ctx)).
		Str("severity", gcloudSeverity(severity)).
		Msg(l.componentName + ":" + fmt.Sprintf(format, a...))
}

func gcloudSeverity(severity Severity) string {
	if severity == SeverityWarn {
		return "WARNING"
	}
	return string(severity)
}
