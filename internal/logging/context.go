package logging

import (
	"context"
	"log/slog"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldDevice names the drive, image or directory being classified.
	FieldDevice = "device"
	// FieldMediaType carries the classification result.
	FieldMediaType = "media_type"
	// FieldMRL carries the media locator derived for DVD and VCD results.
	FieldMRL = "mrl"
	// FieldSource records what triggered a classification (cli, netlink, startup).
	FieldSource = "source"
	// FieldSessionID identifies one run of the watch daemon.
	FieldSessionID = "session_id"
	// FieldEventType tags warnings and notable events with a stable identifier.
	FieldEventType = "event_type"
	// FieldErrorHint suggests the next step after a failure.
	FieldErrorHint = "error_hint"
	// FieldImpact is the user-facing consequence of a warning.
	FieldImpact = "impact"
	// FieldDecisionType groups decision logs.
	FieldDecisionType = "decision_type"
	// FieldAlert flags warnings or anomalies that should stand out in structured logs.
	FieldAlert = "alert"
)

type contextKey int

const (
	deviceKey contextKey = iota
	sessionKey
)

// ContextWithDevice tags ctx with the device being probed.
func ContextWithDevice(ctx context.Context, device string) context.Context {
	return context.WithValue(ctx, deviceKey, device)
}

// ContextWithSession tags ctx with a daemon session identifier.
func ContextWithSession(ctx context.Context, session string) context.Context {
	return context.WithValue(ctx, sessionKey, session)
}

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	var fields []slog.Attr
	if device, ok := ctx.Value(deviceKey).(string); ok && device != "" {
		fields = append(fields, slog.String(FieldDevice, device))
	}
	if session, ok := ctx.Value(sessionKey).(string); ok && session != "" {
		fields = append(fields, slog.String(FieldSessionID, session))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(Args(fields...)...)
}
