package game

func NewBall() Ball {
	return Ball{
		X:     CenterX,
		Y:     CenterY,
		LastX: CenterX,
		LastY: CenterY,
		Color: ColorBall,
	}
}

// StepBall advances a free-moving ball by one tick.
//
// Nothing moves while the ball already overlaps a goal; the goal check that
// follows resets the round. Each axis is handled on its own: a tentative
// position past the field edge flips that axis' direction and leaves the
// coordinate where it was, otherwise the coordinate is committed. Speed then
// decays by BallFriction and snaps to zero under BallStopSpeed.
func StepBall(b *Ball) {
	if CheckGoal(Goal1, b) || CheckGoal(Goal2, b) {
		return
	}

	newX := int(float64(b.X) + float64(b.DX)*b.Speed)
	newY := int(float64(b.Y) + float64(b.DY)*b.Speed)

	if newX-BallRadius < FieldX || newX+BallRadius > FieldX+FieldWidth {
		b.DX = -b.DX
	} else {
		b.X = newX
	}

	if newY-BallRadius < FieldY || newY+BallRadius > FieldY+FieldHeight {
		b.DY = -b.DY
	} else {
		b.Y = newY
	}

	b.Speed *= BallFriction
	if b.Speed < BallStopSpeed {
		b.Speed = 0
	}
}

// KickBall launches the ball away from its holder. The direction is the
// current ball-to-holder offset, deliberately left unnormalised.
func KickBall(b *Ball, p *Player) bool {
	if !p.Holding {
		return false
	}
	p.Holding = false
	b.DX = b.X - p.X
	b.DY = b.Y - p.Y
	b.Speed = KickSpeed
	return true
}
