// Package logger defines the small leveled logging interface consumed by
// the gateway, the REST client and the cache sweepers, together with a
// zerolog-backed default implementation. Arguments follow the slog
// convention of alternating keys and values.
package logger

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
)

type Logger interface {
	Error(msg string, args ...any)
	Warn(msg string, args ...any)
	Info(msg string, args ...any)
	Debug(msg string, args ...any)
}

// ZerologHandler adapts a zerolog.Logger to the Logger interface.
type ZerologHandler struct {
	logger zerolog.Logger
}

// New wraps an existing zerolog.Logger.
func New(l zerolog.Logger) *ZerologHandler {
	return &ZerologHandler{logger: l}
}

// Default logs JSON lines to stderr with timestamps.
func Default() *ZerologHandler {
	return New(zerolog.New(os.Stderr).With().Timestamp().Logger())
}

// Discard drops everything. Used as the fallback when no logger is
// configured.
func Discard() *ZerologHandler {
	return New(zerolog.Nop())
}

func (h *ZerologHandler) Error(msg string, args ...any) {
	h.emit(h.logger.Error(), msg, args)
}

func (h *ZerologHandler) Warn(msg string, args ...any) {
	h.emit(h.logger.Warn(), msg, args)
}

func (h *ZerologHandler) Info(msg string, args ...any) {
	h.emit(h.logger.Info(), msg, args)
}

func (h *ZerologHandler) Debug(msg string, args ...any) {
	h.emit(h.logger.Debug(), msg, args)
}

func (h *ZerologHandler) emit(ev *zerolog.Event, msg string, args []any) {
	for i := 0; i+1 < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			key = fmt.Sprint(args[i])
		}
		ev = ev.Interface(key, args[i+1])
	}
	ev.Msg(msg)
}
