package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGoalGeometry(t *testing.T) {
	assert.Equal(t, Rect{X: 70, Y: 315, W: 30, H: 150}, Goal1)
	assert.Equal(t, Rect{X: 1180, Y: 315, W: 30, H: 150}, Goal2)

	// Mirror images about the field centre line.
	assert.Equal(t, (FieldX+FieldX+FieldWidth), Goal1.X+Goal2.X+GoalWidth)
	assert.Equal(t, Goal1.Y, Goal2.Y)
}

func TestCheckGoal(t *testing.T) {
	tests := []struct {
		name  string
		x, y  int
		goal1 bool
		goal2 bool
	}{
		{"centre", CenterX, CenterY, false, false},
		{"inside goal 1", Goal1.X + 10, Goal1.Y + 50, true, false},
		{"inside goal 2", Goal2.X + 10, Goal2.Y + 50, false, true},
		{"padded reach touches goal 1", Goal1.X + Goal1.W + GoalReach - 1, Goal1.Y + 10, true, false},
		{"edge contact only", Goal1.X + Goal1.W + GoalReach, Goal1.Y + 10, false, false},
		{"above goal 2 mouth", Goal2.X + 10, Goal2.Y - GoalReach, false, false},
		{"just inside top of goal 2", Goal2.X + 10, Goal2.Y - GoalReach + 1, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := Ball{X: tt.x, Y: tt.y}
			assert.Equal(t, tt.goal1, CheckGoal(Goal1, &b))
			assert.Equal(t, tt.goal2, CheckGoal(Goal2, &b))
		})
	}
}

func TestScoringTeam(t *testing.T) {
	assert.Equal(t, 1, ScoringTeam(0), "goal 1 scores for team 2")
	assert.Equal(t, 0, ScoringTeam(1), "goal 2 scores for team 1")
}
