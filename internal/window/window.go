package window

import (
	"image/color"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/rs/zerolog"

	"github.com/vladimirvolkov/tinyfootball/internal/game"
)

const title = "Tiny Football"

var (
	colorGrass   = color.RGBA{46, 139, 64, 255}
	colorBorder  = color.RGBA{240, 240, 240, 255}
	colorOutside = color.RGBA{24, 70, 34, 255}
	colorGoal    = color.RGBA{210, 210, 210, 255}
	colorOutline = color.RGBA{20, 20, 20, 255}
	colorMarker  = color.RGBA{255, 220, 60, 255}
)

// Frontend is the desktop window. ebiten owns the main thread and calls
// Update/Draw; the frame loop runs elsewhere and talks to it through Poll
// and Render.
type Frontend struct {
	mu      sync.Mutex
	keys    game.KeyState
	quit    bool
	snap    game.Snapshot
	hasSnap bool

	log zerolog.Logger
}

func New(log zerolog.Logger) *Frontend {
	return &Frontend{log: log}
}

// Poll returns the keys seen by the last ebiten Update.
func (f *Frontend) Poll() (game.KeyState, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.keys, f.quit
}

// Render stores the snapshot for the next Draw.
func (f *Frontend) Render(s game.Snapshot) {
	f.mu.Lock()
	f.snap = s
	f.hasSnap = true
	f.mu.Unlock()
}

// Quit closes the window on the next Update.
func (f *Frontend) Quit() {
	f.mu.Lock()
	f.quit = true
	f.mu.Unlock()
}

// Run opens the window and blocks until it closes. It must be called from
// the main goroutine.
func (f *Frontend) Run() error {
	ebiten.SetWindowSize(game.WindowWidth, game.WindowHeight)
	ebiten.SetWindowTitle(title)

	err := ebiten.RunGame(f)
	f.Quit()
	if err != nil {
		f.log.Error().Err(err).Msg("window closed with error")
	}
	return err
}

func (f *Frontend) Update() error {
	keys := readKeys(ebiten.IsKeyPressed)

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.quit {
		return ebiten.Termination
	}
	f.keys = keys
	return nil
}

func (f *Frontend) Draw(screen *ebiten.Image) {
	f.mu.Lock()
	s, ok := f.snap, f.hasSnap
	f.mu.Unlock()

	screen.Fill(colorOutside)
	drawField(screen)
	if !ok {
		return
	}
	for i := range s.Goals {
		g := s.Goals[i]
		vector.DrawFilledRect(screen, float32(g.X), float32(g.Y), float32(g.W), float32(g.H), colorGoal, false)
	}
	for ti := range s.Teams {
		t := &s.Teams[ti]
		for pi := range t.Players {
			drawPlayer(screen, &t.Players[pi], pi+1 == t.Control)
		}
	}
	vector.DrawFilledCircle(screen, float32(s.Ball.X), float32(s.Ball.Y), game.BallRadius+1, colorOutline, true)
	vector.DrawFilledCircle(screen, float32(s.Ball.X), float32(s.Ball.Y), game.BallRadius, s.Ball.Color.RGBA(), true)

	for i, line := range hudLines(s) {
		ebitenutil.DebugPrintAt(screen, line, game.FieldX, 10+i*16)
	}
}

func (f *Frontend) Layout(outsideWidth, outsideHeight int) (int, int) {
	return game.WindowWidth, game.WindowHeight
}

func drawField(screen *ebiten.Image) {
	fx, fy := float32(game.FieldX), float32(game.FieldY)
	fw, fh := float32(game.FieldWidth), float32(game.FieldHeight)

	vector.DrawFilledRect(screen, fx, fy, fw, fh, colorGrass, false)
	vector.StrokeRect(screen, fx, fy, fw, fh, 3, colorBorder, false)
	vector.StrokeLine(screen, fx+fw/2, fy, fx+fw/2, fy+fh, 2, colorBorder, false)
	vector.StrokeCircle(screen, fx+fw/2, fy+fh/2, 70, 2, colorBorder, true)
}

func drawPlayer(screen *ebiten.Image, p *game.Player, controlled bool) {
	x, y := float32(p.X), float32(p.Y)
	vector.DrawFilledCircle(screen, x, y, game.PlayerRadius+2, colorOutline, true)
	vector.DrawFilledCircle(screen, x, y, game.PlayerRadius, p.Color.RGBA(), true)
	if controlled {
		vector.StrokeCircle(screen, x, y, game.PlayerRadius+6, 2, colorMarker, true)
	}
}
