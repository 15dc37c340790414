package mycontext

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
)

// CtxTraceContext is a context key for the Cloud trace of the current request (used by mylog)
type CtxTraceContext struct{}

// ContextFromHTTPRequest keeps the cancellation of the inbound request and adds its trace
func ContextFromHTTPRequest(r *http.Request) context.Context {
	return context.WithValue(r.Context(), CtxTraceContext{}, traceFromHeader(r.Header.Get("X-Cloud-Trace-Context")))
}

func traceFromHeader(traceContext string) string {
	traceID, _, _ := strings.Cut(traceContext, "/")
	if traceID == "" {
		return ""
	}

	return fmt.Sprintf("projects/%s/traces/%s", os.Getenv("GOOGLE_CLOUD_PROJECT"), traceID)
}

// TraceFromContext returns an empty string when no trace was attached
func TraceFromContext(c context.Context) string {
	trace, ok := c.Value(CtxTraceContext{}).(string)
	if !ok {
		return ""
	}
	return trace
}
