package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyGeneration = "generation"
	KeyPath       = "path"
	KeyModuleID   = "module_id"
	KeyEntry      = "entry"
	KeyURL        = "url"
	KeyClient     = "client"
	KeyClients    = "clients"
	KeyOp         = "op"
	KeyState      = "state"
	KeyDurationMS = "duration_ms"
	KeyWarnings   = "warnings"
	KeyErrors     = "errors"
	KeyError      = "error"
	KeySubject    = "subject"
	KeyAttempt    = "attempt"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func Generation(g uint64) slog.Attr   { return slog.Uint64(KeyGeneration, g) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func ModuleID(id string) slog.Attr    { return slog.String(KeyModuleID, id) }
func Entry(name string) slog.Attr     { return slog.String(KeyEntry, name) }
func URL(u string) slog.Attr          { return slog.String(KeyURL, u) }
func Client(id string) slog.Attr      { return slog.String(KeyClient, id) }
func Subject(s string) slog.Attr      { return slog.String(KeySubject, s) }
func Attempt(n int) slog.Attr         { return slog.Int(KeyAttempt, n) }
func Clients(n int) slog.Attr         { return slog.Int(KeyClients, n) }
func Op(op string) slog.Attr          { return slog.String(KeyOp, op) }
func State(s string) slog.Attr        { return slog.String(KeyState, s) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Warnings(n int) slog.Attr        { return slog.Int(KeyWarnings, n) }
func Errors(n int) slog.Attr          { return slog.Int(KeyErrors, n) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
