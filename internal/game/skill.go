package game

import "fmt"

// SkillState is the team-wide speed boost lifecycle.
type SkillState uint8

const (
	SkillIdle SkillState = iota
	SkillActive
	SkillCoolingDown
)

func (s SkillState) String() string {
	switch s {
	case SkillIdle:
		return "idle"
	case SkillActive:
		return "active"
	case SkillCoolingDown:
		return "cooldown"
	default:
		return fmt.Sprintf("SkillState(%d)", uint8(s))
	}
}

// Skill tracks one team's boost. Both timestamps are set by the same
// activation; the active window and the cooldown window are measured from
// them independently.
type Skill struct {
	State       SkillState `json:"state"`
	ActivatedAt int64      `json:"activatedAt"` // ms
	CooldownAt  int64      `json:"cooldownAt"`  // ms
}

// IsActive reports whether the boost is currently applied.
func (s Skill) IsActive() bool {
	return s.State == SkillActive
}

// OnCooldown reports whether a new activation is blocked. An active boost is
// always on cooldown.
func (s Skill) OnCooldown() bool {
	return s.State != SkillIdle
}

// CooldownLeft returns the milliseconds until the skill can fire again.
func (s Skill) CooldownLeft(now int64) int64 {
	if s.State == SkillIdle {
		return 0
	}
	left := SkillCooldown - (now - s.CooldownAt)
	if left < 0 {
		return 0
	}
	return left
}

// SkillEvent describes what UpdateSkill did this tick.
type SkillEvent uint8

const (
	SkillNoChange SkillEvent = iota
	SkillActivated
	SkillExpired
	SkillReady
)

// UpdateSkill runs one tick of the team's boost machine.
//
// Order: the cooldown is cleared first, activation is only considered from
// Idle (a cooling team skips it), and expiry is checked last. Activation
// multiplies both players' speed by BoostMultiplier; expiry divides it back.
func UpdateSkill(t *Team, pressed bool, now int64) SkillEvent {
	s := &t.Skill
	ev := SkillNoChange

	cooled := s.State != SkillIdle && now-s.CooldownAt >= SkillCooldown
	if cooled && s.State == SkillCoolingDown {
		s.State = SkillIdle
		ev = SkillReady
	}

	if s.State == SkillIdle {
		if pressed {
			s.State = SkillActive
			s.ActivatedAt = now
			s.CooldownAt = now
			for i := range t.Players {
				t.Players[i].Speed *= BoostMultiplier
			}
			return SkillActivated
		}
		return ev
	}

	if s.State == SkillActive && now-s.ActivatedAt >= SkillDuration {
		for i := range t.Players {
			t.Players[i].Speed /= BoostMultiplier
		}
		if cooled {
			s.State = SkillIdle
		} else {
			s.State = SkillCoolingDown
		}
		return SkillExpired
	}
	return ev
}
