package game

import "image/color"

// Field geometry & rules
const (
	TickRate          = 60
	FrameBudgetMillis = 1000 / TickRate

	WindowWidth  = 1280
	WindowHeight = 720

	PlayerRadius = 20
	BallRadius   = 10

	FieldWidth  = 1100
	FieldHeight = 600
	FieldX      = (WindowWidth - FieldWidth) / 2
	FieldY      = WindowHeight - FieldHeight - 30

	// Players may run this far past the field edge.
	MoveMargin = 30

	GoalWidth  = 30
	GoalHeight = 150
	GoalY      = (FieldHeight - GoalHeight) / 2
	// Goals sit this far outside the short edges of the field.
	GoalOffset = 20
	// Half-side of the ball's square used for goal overlap. The goal test pads
	// the ball by the player radius, not the ball radius.
	GoalReach = PlayerRadius

	HoldDistance = PlayerRadius*2 - 10

	// Kick direction is the raw holder offset (length ~HoldDistance), so the
	// effective launch velocity is roughly KickSpeed*HoldDistance px/tick.
	KickSpeed     = 2.0
	BallFriction  = 0.85
	BallStopSpeed = 0.08

	PlayerBaseSpeed = 4.0

	SkillDuration   = 5000  // ms
	SkillCooldown   = 20000 // ms
	BoostMultiplier = 1.5

	MatchDurationSecs = 300

	// Kickoff layout
	CenterX       = WindowWidth / 2
	CenterY       = WindowHeight/2 + 30
	KickoffInner  = 100
	KickoffOuter  = 500
	ControlFirst  = 1
	ControlSecond = 2
)

// Color is an RGBA colour carried in the state so every renderer draws the
// same palette.
type Color struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
	A uint8 `json:"a"`
}

func (c Color) RGBA() color.RGBA {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}

var (
	ColorTeam1 = Color{232, 109, 82, 255}
	ColorTeam2 = Color{85, 137, 227, 255}
	ColorBall  = Color{255, 255, 255, 255}
)

type Ball struct {
	X     int     `json:"x"`
	Y     int     `json:"y"`
	LastX int     `json:"lastX"` // last committed held position
	LastY int     `json:"lastY"`
	DX    int     `json:"dx"`
	DY    int     `json:"dy"`
	Speed float64 `json:"speed"`
	Color Color   `json:"color"`
}

type Player struct {
	X       int     `json:"x"`
	Y       int     `json:"y"`
	DX      int     `json:"dx"` // displacement applied last tick
	DY      int     `json:"dy"`
	Speed   float64 `json:"speed"`
	Color   Color   `json:"color"`
	Holding bool    `json:"holding"`
}

type Team struct {
	Players [2]Player `json:"players"`
	Control int       `json:"control"` // 1 or 2
	Skill   Skill     `json:"skill"`
}

// Active returns the player currently under control.
func (t *Team) Active() *Player {
	if t.Control == ControlSecond {
		return &t.Players[1]
	}
	return &t.Players[0]
}

// SwitchControl hands control to the other player.
func (t *Team) SwitchControl() {
	if t.Control == ControlFirst {
		t.Control = ControlSecond
	} else {
		t.Control = ControlFirst
	}
}

// State is the whole simulation aggregate. The match owns it and mutates it
// in place once per tick.
type State struct {
	Tick  uint32  `json:"tick"`
	Ball  Ball    `json:"ball"`
	Teams [2]Team `json:"teams"`
	Score [2]int  `json:"score"`
}

// NewState returns the kickoff state.
func NewState() State {
	s := State{
		Ball: NewBall(),
		Teams: [2]Team{
			{Control: ControlFirst},
			{Control: ControlFirst},
		},
	}
	s.Teams[0].Players[0] = NewPlayer(CenterX-KickoffInner, CenterY, ColorTeam1)
	s.Teams[0].Players[1] = NewPlayer(CenterX-KickoffOuter, CenterY, ColorTeam1)
	s.Teams[1].Players[0] = NewPlayer(CenterX+KickoffInner, CenterY, ColorTeam2)
	s.Teams[1].Players[1] = NewPlayer(CenterX+KickoffOuter, CenterY, ColorTeam2)
	return s
}

// ResetRound puts the ball and all four players back on their kickoff spots
// and clears possession. Scores, control and skill state are kept; player
// speed is untouched so an active boost still expires cleanly.
func (s *State) ResetRound() {
	s.Ball.X = CenterX
	s.Ball.Y = CenterY
	s.Ball.LastX = s.Ball.X
	s.Ball.LastY = s.Ball.Y
	s.Ball.DX = 0
	s.Ball.DY = 0
	s.Ball.Speed = 0

	kickoff := [2][2]int{
		{CenterX - KickoffInner, CenterX - KickoffOuter},
		{CenterX + KickoffInner, CenterX + KickoffOuter},
	}
	for ti := range s.Teams {
		for pi := range s.Teams[ti].Players {
			p := &s.Teams[ti].Players[pi]
			p.X = kickoff[ti][pi]
			p.Y = CenterY
			p.DX = 0
			p.DY = 0
			p.Holding = false
		}
	}
}

// players returns pointers to all four players, team 1 first.
func (s *State) players() [4]*Player {
	return [4]*Player{
		&s.Teams[0].Players[0], &s.Teams[0].Players[1],
		&s.Teams[1].Players[0], &s.Teams[1].Players[1],
	}
}

// Holder returns the team and player index of the ball holder, or -1, -1
// when the ball is free.
func (s *State) Holder() (team, player int) {
	for ti := range s.Teams {
		for pi := range s.Teams[ti].Players {
			if s.Teams[ti].Players[pi].Holding {
				return ti, pi
			}
		}
	}
	return -1, -1
}

// CheckPossession reports how many players hold the ball. Anything above
// one breaks the single-holder invariant.
func (s *State) CheckPossession() int {
	n := 0
	for _, p := range s.players() {
		if p.Holding {
			n++
		}
	}
	return n
}
