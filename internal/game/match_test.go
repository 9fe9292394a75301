package game

import (
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladimirvolkov/tinyfootball/internal/clock"
)

func newTestMatch(t *testing.T, cfg MatchConfig) (*Match, *clock.Manual) {
	t.Helper()
	clk := clock.NewManual(0)
	return NewMatch(cfg, clk, zerolog.Nop()), clk
}

func assertKickoff(t *testing.T, s *State) {
	t.Helper()
	assert.Equal(t, CenterX, s.Ball.X)
	assert.Equal(t, CenterY, s.Ball.Y)
	assert.Zero(t, s.Ball.Speed)
	want := [2][2]int{
		{CenterX - KickoffInner, CenterX - KickoffOuter},
		{CenterX + KickoffInner, CenterX + KickoffOuter},
	}
	for ti := range s.Teams {
		for pi := range s.Teams[ti].Players {
			p := s.Teams[ti].Players[pi]
			assert.Equal(t, want[ti][pi], p.X, "team %d player %d", ti+1, pi+1)
			assert.Equal(t, CenterY, p.Y, "team %d player %d", ti+1, pi+1)
			assert.False(t, p.Holding, "team %d player %d", ti+1, pi+1)
		}
	}
}

func TestNewMatchKickoff(t *testing.T) {
	m, _ := newTestMatch(t, DefaultMatchConfig())

	_, err := uuid.Parse(m.ID)
	require.NoError(t, err)
	assert.Equal(t, MatchDurationSecs, m.Duration)
	assertKickoff(t, m.State())
	assert.Equal(t, ControlFirst, m.State().Teams[0].Control)
	assert.Equal(t, ControlFirst, m.State().Teams[1].Control)
	assert.Equal(t, MatchDurationSecs, m.Last().Remaining)
	assert.False(t, m.Over())
}

func TestBallInGoal1ScoresForTeam2(t *testing.T) {
	m, clk := newTestMatch(t, DefaultMatchConfig())
	s := m.State()
	s.Teams[1].Players[1].X = 900
	s.Ball.X, s.Ball.Y = Goal1.X+Goal1.W/2, Goal1.Y+Goal1.H/2

	clk.Advance(16)
	snap := m.Step(KeyState{})

	assert.Equal(t, [2]int{0, 1}, snap.Score)
	assert.Equal(t, 1, snap.Scored)
	assertKickoff(t, s)
	assert.Equal(t, s.Ball, snap.Ball)
}

func TestBallInGoal2ScoresForTeam1(t *testing.T) {
	m, _ := newTestMatch(t, DefaultMatchConfig())
	s := m.State()
	s.Ball.X, s.Ball.Y = Goal2.X+5, Goal2.Y+5
	s.Ball.DX, s.Ball.Speed = 1, 2

	snap := m.Step(KeyState{})

	assert.Equal(t, [2]int{1, 0}, snap.Score)
	assert.Equal(t, 0, snap.Scored)
	assertKickoff(t, s)
}

func TestGoalKeepsControlAndSkill(t *testing.T) {
	m, _ := newTestMatch(t, DefaultMatchConfig())
	m.Step(KeyState{}.Press(KeyZ, KeyL))
	s := m.State()
	require.Equal(t, ControlSecond, s.Teams[0].Control)
	require.Equal(t, SkillActive, s.Teams[0].Skill.State)

	s.Ball.X, s.Ball.Y = Goal2.X+5, Goal2.Y+5
	m.Step(KeyState{})

	assert.Equal(t, ControlSecond, s.Teams[0].Control)
	assert.Equal(t, SkillActive, s.Teams[0].Skill.State)
	assert.InDelta(t, PlayerBaseSpeed*BoostMultiplier, s.Teams[0].Players[0].Speed, 1e-9)
}

func TestStepStealThenDribbleThenKick(t *testing.T) {
	m, clk := newTestMatch(t, DefaultMatchConfig())
	s := m.State()
	// Team 1's first player starts 100px left of the ball; walk it in.
	for i := 0; i < 20 && !s.Teams[0].Players[0].Holding; i++ {
		clk.Advance(16)
		m.Step(KeyState{}.Press(KeyD, KeyJ))
	}
	require.True(t, s.Teams[0].Players[0].Holding)
	assert.Equal(t, 1, s.CheckPossession())

	clk.Advance(16)
	m.Step(KeyState{}.Press(KeyD))
	p := s.Teams[0].Players[0]
	assert.Equal(t, p.X+HoldDistance, s.Ball.X, "ball is carried in front")

	clk.Advance(16)
	snap := m.Step(KeyState{}.Press(KeyK))
	assert.False(t, snap.Teams[0].Players[0].Holding)
	assert.Greater(t, snap.Ball.X, p.X+HoldDistance, "kicked ball travels right")
	assert.Equal(t, 0, s.CheckPossession())
}

func TestSingleHolderAcrossRandomPlay(t *testing.T) {
	m, clk := newTestMatch(t, DefaultMatchConfig())
	s := m.State()
	// Both teams mash steal near the ball while moving toward it.
	script := []KeyState{
		KeyState{}.Press(KeyD, KeyJ, KeyLeft, Key1),
		KeyState{}.Press(KeyJ, Key1),
		KeyState{}.Press(KeyW, KeyJ, KeyUp, Key1),
		KeyState{}.Press(KeyK, Key1),
		KeyState{}.Press(KeyJ, Key2),
	}
	for i := 0; i < 300; i++ {
		clk.Advance(16)
		m.Step(script[i%len(script)])
		require.LessOrEqual(t, s.CheckPossession(), 1, "tick %d", i)
	}
}

func TestSwitchControlEveryHeldTick(t *testing.T) {
	m, _ := newTestMatch(t, DefaultMatchConfig())
	held := KeyState{}.Press(Key0)

	m.Step(held)
	assert.Equal(t, ControlSecond, m.State().Teams[1].Control)
	m.Step(held)
	assert.Equal(t, ControlFirst, m.State().Teams[1].Control)
}

func TestSwitchControlEdgeTriggered(t *testing.T) {
	m, _ := newTestMatch(t, MatchConfig{EdgeTriggered: true})
	held := KeyState{}.Press(Key0)

	m.Step(held)
	m.Step(held)
	assert.Equal(t, ControlSecond, m.State().Teams[1].Control)
}

func TestSwitchedPlayerMoves(t *testing.T) {
	m, _ := newTestMatch(t, DefaultMatchConfig())
	s := m.State()
	m.Step(KeyState{}.Press(KeyZ, KeyS))

	assert.Equal(t, CenterY, s.Teams[0].Players[0].Y)
	assert.Equal(t, CenterY+4, s.Teams[0].Players[1].Y, "switch happens before movement")
}

func TestMatchEndsWhenClockRunsOut(t *testing.T) {
	m, clk := newTestMatch(t, MatchConfig{DurationSecs: 2})
	m.State().Score = [2]int{1, 3}

	clk.Set(999)
	snap := m.Step(KeyState{})
	assert.Equal(t, 2, snap.Remaining)
	assert.Nil(t, snap.Result)

	clk.Set(1999)
	snap = m.Step(KeyState{})
	assert.Equal(t, 1, snap.Remaining)

	clk.Set(2000)
	snap = m.Step(KeyState{})
	require.NotNil(t, snap.Result)
	assert.Equal(t, 0, snap.Remaining)
	assert.Equal(t, Team2Wins, snap.Result.Winner)
	assert.Equal(t, "Team 2 wins!", snap.Result.Message())
	assert.Equal(t, m.ID, snap.Result.MatchID)

	res, ok := m.Result()
	require.True(t, ok)
	assert.Equal(t, *snap.Result, res)
	assert.True(t, m.Over())

	tick := snap.Tick
	clk.Set(5000)
	after := m.Step(KeyState{}.Press(KeyD))
	assert.Equal(t, tick, after.Tick, "no ticks after the final whistle")
}

func TestRemainingClampsAtZero(t *testing.T) {
	m, clk := newTestMatch(t, MatchConfig{DurationSecs: 1})
	clk.Set(60_000)
	snap := m.Step(KeyState{})
	assert.Equal(t, 0, snap.Remaining)
	assert.Equal(t, 1-60, m.Remaining(60_000))
}

func TestResultMessages(t *testing.T) {
	assert.Equal(t, "Draw!", newResult("m", [2]int{2, 2}).Message())
	assert.Equal(t, "Team 1 wins!", newResult("m", [2]int{3, 2}).Message())
	assert.Equal(t, "Team 2 wins!", newResult("m", [2]int{0, 1}).Message())
	assert.Equal(t, Draw, newResult("m", [2]int{0, 0}).Winner)
}
