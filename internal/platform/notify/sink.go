package notify

import (
	"github.com/rs/zerolog"
)

// LogSink records winner notifications in the application log. The real push
// delivery pipeline lives outside this service; the sink keeps the contract
// observable until it is wired up.
type LogSink struct {
	logger zerolog.Logger
}

func NewLogSink(logger zerolog.Logger) *LogSink {
	return &LogSink{logger: logger.With().Str("component", "notify").Logger()}
}

func (s *LogSink) NotifyWinner(userID int64, giveawayID string) {
	s.logger.Info().
		Int64("user_id", userID).
		Str("giveaway_id", giveawayID).
		Msg("Winner notification queued")
}
