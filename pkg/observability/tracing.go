// Package observability wraps AWS X-Ray for request tracing. Tracing
// is opt-in via ENABLE_TRACING; when disabled nothing here runs.
package observability

import (
	"context"
	"net/http"

	"github.com/aws/aws-xray-sdk-go/xray"
)

// TraceHandler wraps an HTTP handler so every request runs inside an
// X-Ray segment named after the service. Subsegments opened further
// down the stack attach to it automatically.
func TraceHandler(service string, h http.Handler) http.Handler {
	return xray.Handler(xray.NewFixedSegmentNamer(service), h)
}

// Capture runs fn inside a subsegment of the current trace. Outside a
// trace it runs fn directly, so callers need no awareness of whether
// tracing is enabled.
func Capture(ctx context.Context, name string, fn func(context.Context) error) error {
	if xray.GetSegment(ctx) == nil {
		return fn(ctx)
	}
	return xray.Capture(ctx, name, fn)
}

// AddAnnotation adds an indexed annotation to the current segment, if
// any. Annotations are searchable in the X-Ray console.
func AddAnnotation(ctx context.Context, key, value string) {
	if seg := xray.GetSegment(ctx); seg != nil {
		_ = seg.AddAnnotation(key, value)
	}
}
