package window

import (
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/vladimirvolkov/tinyfootball/internal/game"
)

var keymap = [...]struct {
	ebiten ebiten.Key
	game   game.Key
}{
	{ebiten.KeyW, game.KeyW},
	{ebiten.KeyS, game.KeyS},
	{ebiten.KeyA, game.KeyA},
	{ebiten.KeyD, game.KeyD},
	{ebiten.KeyZ, game.KeyZ},
	{ebiten.KeyJ, game.KeyJ},
	{ebiten.KeyK, game.KeyK},
	{ebiten.KeyL, game.KeyL},
	{ebiten.KeyArrowUp, game.KeyUp},
	{ebiten.KeyArrowDown, game.KeyDown},
	{ebiten.KeyArrowLeft, game.KeyLeft},
	{ebiten.KeyArrowRight, game.KeyRight},
	{ebiten.KeyDigit0, game.Key0},
	{ebiten.KeyDigit1, game.Key1},
	{ebiten.KeyDigit2, game.Key2},
	{ebiten.KeyDigit3, game.Key3},
	{ebiten.KeyNumpad0, game.Key0},
	{ebiten.KeyNumpad1, game.Key1},
	{ebiten.KeyNumpad2, game.Key2},
	{ebiten.KeyNumpad3, game.Key3},
	{ebiten.KeyEscape, game.KeyEscape},
}

// readKeys builds a held-key snapshot from a key predicate.
func readKeys(pressed func(ebiten.Key) bool) game.KeyState {
	var ks game.KeyState
	for _, m := range keymap {
		if pressed(m.ebiten) {
			ks[m.game] = true
		}
	}
	return ks
}
