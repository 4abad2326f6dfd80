package logfields

import (
	"log/slog"
	"time"
)

// Canonical log field name constants to avoid drift across packages.
const (
	KeyRunID      = "run_id"
	KeyMode       = "mode"
	KeyTarget     = "target"
	KeyPage       = "page"
	KeyLang       = "lang"
	KeyDest       = "dest"
	KeyStatus     = "status"
	KeyAsset      = "asset"
	KeyDurationMS = "duration_ms"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func RunID(id string) slog.Attr      { return slog.String(KeyRunID, id) }
func Mode(m string) slog.Attr        { return slog.String(KeyMode, m) }
func Target(t string) slog.Attr      { return slog.String(KeyTarget, t) }
func Page(uri string) slog.Attr      { return slog.String(KeyPage, uri) }
func Lang(code string) slog.Attr     { return slog.String(KeyLang, code) }
func Dest(path string) slog.Attr     { return slog.String(KeyDest, path) }
func Status(s string) slog.Attr      { return slog.String(KeyStatus, s) }
func Asset(source string) slog.Attr  { return slog.String(KeyAsset, source) }
func Duration(d time.Duration) slog.Attr {
	return slog.Float64(KeyDurationMS, float64(d.Microseconds())/1000)
}
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
