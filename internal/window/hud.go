package window

import (
	"fmt"

	"github.com/vladimirvolkov/tinyfootball/internal/game"
)

func skillStatus(s game.Skill, now int64) string {
	switch s.State {
	case game.SkillActive:
		return fmt.Sprintf("BOOST %ds", (game.SkillDuration-(now-s.ActivatedAt)+999)/1000)
	case game.SkillCoolingDown:
		return fmt.Sprintf("cooldown %ds", (s.CooldownLeft(now)+999)/1000)
	default:
		return "skill ready"
	}
}

// hudLines returns the text overlay, top line first.
func hudLines(s game.Snapshot) []string {
	lines := []string{
		fmt.Sprintf("Team 1: %d - Team 2: %d", s.Score[0], s.Score[1]),
		fmt.Sprintf("Time remaining: %d seconds", s.Remaining),
		fmt.Sprintf("T1 %s | T2 %s",
			skillStatus(s.Teams[0].Skill, s.Now),
			skillStatus(s.Teams[1].Skill, s.Now)),
	}
	if s.Result != nil {
		lines = append(lines, s.Result.Message())
	}
	return lines
}
