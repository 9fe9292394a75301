package game

import (
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/vladimirvolkov/tinyfootball/internal/clock"
)

// Winner values in Result.
const (
	Draw      = 0
	Team1Wins = 1
	Team2Wins = 2
)

// Result is emitted once when the match clock runs out.
type Result struct {
	MatchID string `json:"matchId"`
	Score   [2]int `json:"score"`
	Winner  int    `json:"winner"` // 0=draw, 1=team 1, 2=team 2
}

// Message is the end-of-match line shown to the players.
func (r Result) Message() string {
	switch r.Winner {
	case Team1Wins:
		return "Team 1 wins!"
	case Team2Wins:
		return "Team 2 wins!"
	default:
		return "Draw!"
	}
}

func newResult(id string, score [2]int) Result {
	r := Result{MatchID: id, Score: score, Winner: Draw}
	if score[0] > score[1] {
		r.Winner = Team1Wins
	} else if score[1] > score[0] {
		r.Winner = Team2Wins
	}
	return r
}

// Snapshot is the read-only view handed to renderers after every tick. It
// is a value copy; renderers may keep it without affecting the simulation.
type Snapshot struct {
	MatchID   string  `json:"matchId"`
	Tick      uint32  `json:"tick"`
	Now       int64   `json:"now"` // ms
	Ball      Ball    `json:"ball"`
	Teams     [2]Team `json:"teams"`
	Goals     [2]Rect `json:"goals"`
	Score     [2]int  `json:"score"`
	Remaining int     `json:"remaining"` // whole seconds
	Scored    int     `json:"scored"`    // team that scored this tick, -1 if none
	Result    *Result `json:"result,omitempty"`
}

// MatchConfig holds the operational knobs of a match. The rules themselves
// are constants.
type MatchConfig struct {
	DurationSecs  int
	EdgeTriggered bool
}

func DefaultMatchConfig() MatchConfig {
	return MatchConfig{DurationSecs: MatchDurationSecs}
}

// Match owns the simulation state and advances it one tick at a time. It is
// not safe for concurrent use; the frame loop is its only caller.
type Match struct {
	ID       string
	Duration int // seconds
	Start    int64

	state  State
	mapper *Mapper
	clock  clock.Clock
	log    zerolog.Logger

	result *Result
	last   Snapshot
}

func NewMatch(cfg MatchConfig, clk clock.Clock, log zerolog.Logger) *Match {
	if cfg.DurationSecs <= 0 {
		cfg.DurationSecs = MatchDurationSecs
	}
	m := &Match{
		ID:       uuid.NewString(),
		Duration: cfg.DurationSecs,
		Start:    clk.Millis(),
		state:    NewState(),
		mapper:   NewMapper(cfg.EdgeTriggered),
		clock:    clk,
	}
	m.log = log.With().Str("match", m.ID).Logger()
	m.last = m.snapshot(m.Start, -1)
	m.log.Info().Int("duration", m.Duration).Bool("edgeTriggered", cfg.EdgeTriggered).Msg("MATCH START")
	return m
}

// State exposes the live aggregate for tests and tools that need to set up
// positions. Renderers must use snapshots instead.
func (m *Match) State() *State {
	return &m.state
}

// Over reports whether the match has produced its result.
func (m *Match) Over() bool {
	return m.result != nil
}

// Result returns the final result once the match is over.
func (m *Match) Result() (Result, bool) {
	if m.result == nil {
		return Result{}, false
	}
	return *m.result, true
}

// Remaining returns the whole seconds left at time now.
func (m *Match) Remaining(now int64) int {
	elapsed := int((now - m.Start) / 1000)
	return m.Duration - elapsed
}

// Last returns the snapshot produced by the most recent tick.
func (m *Match) Last() Snapshot {
	return m.last
}

// Step runs one full simulation tick from a key snapshot: switch, move,
// steal, kick, skill, ball, goal. Once the match is over it only returns the
// final snapshot.
func (m *Match) Step(keys KeyState) Snapshot {
	if m.result != nil {
		return m.last
	}

	s := &m.state
	s.Tick++
	now := m.clock.Millis()
	intents := m.mapper.Map(keys)

	for i := range s.Teams {
		if intents[i].Switch {
			s.Teams[i].SwitchControl()
		}
	}

	for i := range s.Teams {
		MovePlayer(s.Teams[i].Active(), &s.Ball, intents[i])
	}

	all := s.players()
	for i := range s.Teams {
		if !intents[i].Steal {
			continue
		}
		p := s.Teams[i].Active()
		if Steal(p, &s.Ball, all[:]...) {
			m.log.Debug().Int("team", i+1).Int("player", s.Teams[i].Control).Msg("STEAL")
		}
	}

	for i := range s.Teams {
		if !intents[i].Kick {
			continue
		}
		if KickBall(&s.Ball, s.Teams[i].Active()) {
			m.log.Debug().Int("team", i+1).Int("dx", s.Ball.DX).Int("dy", s.Ball.DY).Msg("KICK")
		}
	}

	if n := s.CheckPossession(); n > 1 {
		m.log.Error().Uint32("tick", s.Tick).Int("holders", n).Msg("POSSESSION: more than one holder")
	}

	for i := range s.Teams {
		switch UpdateSkill(&s.Teams[i], intents[i].Skill, now) {
		case SkillActivated:
			m.log.Info().Int("team", i+1).Msg("SKILL: boost on")
		case SkillExpired:
			m.log.Info().Int("team", i+1).Msg("SKILL: boost off")
		case SkillReady:
			m.log.Debug().Int("team", i+1).Msg("SKILL: ready")
		}
	}

	StepBall(&s.Ball)

	scored := -1
	for gi, g := range [2]Rect{Goal1, Goal2} {
		if CheckGoal(g, &s.Ball) {
			scored = ScoringTeam(gi)
			m.goal(scored)
		}
	}

	if m.Remaining(now) <= 0 {
		r := newResult(m.ID, s.Score)
		m.result = &r
		m.log.Info().Ints("score", s.Score[:]).Int("winner", r.Winner).Msg("MATCH OVER: " + r.Message())
	}

	m.last = m.snapshot(now, scored)
	return m.last
}

func (m *Match) goal(team int) {
	s := &m.state
	s.Score[team]++
	m.log.Info().Int("team", team+1).Ints("score", s.Score[:]).Msg("GOAL")
	s.ResetRound()
}

func (m *Match) snapshot(now int64, scored int) Snapshot {
	s := &m.state
	remaining := m.Remaining(now)
	if remaining < 0 {
		remaining = 0
	}
	return Snapshot{
		MatchID:   m.ID,
		Tick:      s.Tick,
		Now:       now,
		Ball:      s.Ball,
		Teams:     s.Teams,
		Goals:     [2]Rect{Goal1, Goal2},
		Score:     s.Score,
		Remaining: remaining,
		Scored:    scored,
		Result:    m.result,
	}
}
