package game

import "math"

func NewPlayer(x, y int, c Color) Player {
	return Player{
		X:     x,
		Y:     y,
		Speed: PlayerBaseSpeed,
		Color: c,
	}
}

// Movement bounds: the field inset by the player radius, then widened by
// MoveMargin on every side.
const (
	moveMinX = FieldX + PlayerRadius - MoveMargin
	moveMaxX = FieldX + FieldWidth - PlayerRadius + MoveMargin
	moveMinY = FieldY + PlayerRadius - MoveMargin
	moveMaxY = FieldY + FieldHeight - PlayerRadius + MoveMargin
)

// MovePlayer applies the four directional intents to p and, when p holds the
// ball, drags the ball along in front of it.
//
// Each direction is tested against the bounds on its own before moving, so
// diagonals combine and are not normalised. The held ball sits HoldDistance
// away along the normalised displacement; with no accepted direction it
// returns to the last committed held spot instead of collapsing onto the
// player.
func MovePlayer(p *Player, b *Ball, in Intents) {
	newX := p.X
	newY := p.Y
	x := float64(p.X)
	y := float64(p.Y)

	moved := false
	if in.Up && y-p.Speed >= moveMinY {
		newY = int(float64(newY) - p.Speed)
		moved = true
	}
	if in.Down && y+p.Speed <= moveMaxY {
		newY = int(float64(newY) + p.Speed)
		moved = true
	}
	if in.Left && x-p.Speed >= moveMinX {
		newX = int(float64(newX) - p.Speed)
		moved = true
	}
	if in.Right && x+p.Speed <= moveMaxX {
		newX = int(float64(newX) + p.Speed)
		moved = true
	}

	dirX := float64(newX - p.X)
	dirY := float64(newY - p.Y)
	if length := math.Sqrt(dirX*dirX + dirY*dirY); length > 0 {
		dirX /= length
		dirY /= length
	}

	p.DX = newX - p.X
	p.DY = newY - p.Y
	p.X = newX
	p.Y = newY

	if !p.Holding {
		return
	}
	if moved {
		b.X = int(float64(p.X) + dirX*HoldDistance)
		b.Y = int(float64(p.Y) + dirY*HoldDistance)
		b.LastX = b.X
		b.LastY = b.Y
	} else {
		b.X = b.LastX
		b.Y = b.LastY
	}
}

// ballDistance is the player-to-ball distance truncated to whole pixels.
func ballDistance(p *Player, b *Ball) int {
	dx := p.X - b.X
	dy := p.Y - b.Y
	return int(math.Sqrt(float64(dx*dx + dy*dy)))
}

// Steal gives the ball to p when it is closer than HoldDistance. Every other
// player passed in loses possession, so a steal never leaves two holders.
func Steal(p *Player, b *Ball, others ...*Player) bool {
	if ballDistance(p, b) >= HoldDistance {
		return false
	}
	for _, o := range others {
		if o != p {
			o.Holding = false
		}
	}
	p.Holding = true
	return true
}
