package game

// Rect is an axis-aligned rectangle in screen pixels.
type Rect struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

var (
	// Goal1 is defended by team 1; a ball in it scores for team 2.
	Goal1 = Rect{
		X: FieldX - GoalOffset,
		Y: FieldY + GoalY,
		W: GoalWidth,
		H: GoalHeight,
	}
	// Goal2 is defended by team 2; a ball in it scores for team 1.
	Goal2 = Rect{
		X: FieldX + FieldWidth - GoalWidth + GoalOffset,
		Y: FieldY + GoalY,
		W: GoalWidth,
		H: GoalHeight,
	}
	// Field is the playable area without the goal mouths.
	Field = Rect{X: FieldX, Y: FieldY, W: FieldWidth, H: FieldHeight}
)

// CheckGoal reports whether the ball's square (half-side GoalReach) overlaps
// the goal. Edges that only touch do not count.
func CheckGoal(goal Rect, b *Ball) bool {
	return b.X-GoalReach < goal.X+goal.W &&
		b.X+GoalReach > goal.X &&
		b.Y-GoalReach < goal.Y+goal.H &&
		b.Y+GoalReach > goal.Y
}

// ScoringTeam returns the index of the team credited for a ball in the goal
// at index goalIdx.
func ScoringTeam(goalIdx int) int {
	return 1 - goalIdx
}
