package game

import (
	"github.com/rs/zerolog"

	"github.com/vladimirvolkov/tinyfootball/internal/ws"
)

// Broadcaster sends a message to every connected spectator.
type Broadcaster interface {
	Broadcast(msg ws.Message)
}

// ScoredPayload is sent once per goal.
type ScoredPayload struct {
	Team  uint8  `json:"team"` // 1 or 2
	Score [2]int `json:"score"`
}

// SpectatorRenderer streams snapshots to spectators: the full state every
// tick, plus a scored event on goals and a single gameOver at the end.
type SpectatorRenderer struct {
	out      Broadcaster
	log      zerolog.Logger
	finished bool
}

func NewSpectatorRenderer(out Broadcaster, log zerolog.Logger) *SpectatorRenderer {
	return &SpectatorRenderer{out: out, log: log}
}

func (r *SpectatorRenderer) Render(s Snapshot) {
	if r.finished {
		return
	}
	r.send(ws.MsgGameState, s.Tick, s)

	if s.Scored >= 0 {
		r.send(ws.MsgScored, s.Tick, ScoredPayload{
			Team:  uint8(s.Scored + 1),
			Score: s.Score,
		})
	}
	if s.Result != nil {
		r.send(ws.MsgGameOver, s.Tick, *s.Result)
		r.finished = true
	}
}

func (r *SpectatorRenderer) send(typ uint8, tick uint32, payload any) {
	msg, err := ws.NewMessage(typ, tick, payload)
	if err != nil {
		r.log.Error().Err(err).Uint8("type", typ).Msg("failed to encode spectator message")
		return
	}
	r.out.Broadcast(msg)
}
