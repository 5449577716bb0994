package engine

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// Logger wraps an injectable zerolog.Logger used strictly for diagnostic
// output (one line per Apply call, via LogApply) — never the
// authoritative game log, which is the Event slice Apply returns (spec
// §6.2). zerolog is used for structured logging rather than the standard
// library's log package.
type Logger struct {
	zerolog.Logger
}

// NewLogger builds a Logger writing to w (os.Stderr if nil), using a
// plain JSON zerolog writer rather than console-pretty output.
func NewLogger(w io.Writer) Logger {
	if w == nil {
		w = os.Stderr
	}
	return Logger{zerolog.New(w).With().Timestamp().Logger()}
}

// WithGame returns a child logger annotated with the game id, the
// zerolog idiom for per-request/per-entity context fields.
func (l Logger) WithGame(id bson.ObjectID) Logger {
	return Logger{l.Logger.With().Str("game_id", id.Hex()).Logger()}
}

// LogApply emits one diagnostic line per Apply call: the intent kind,
// whether it failed, and how many events it produced.
func (l Logger) LogApply(intent Intent, events []Event, fail error) {
	ev := l.Info()
	if fail != nil {
		ev = l.Warn().Err(fail)
	}
	ev.Str("player", intent.Player.Hex()).
		Str("intent", string(intent.Kind)).
		Int("events", len(events)).
		Msg("apply")
}
