//go:build ebiten

package main

import (
	"context"
	"image/color"
	"log"
	"math"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"katamini/internal/game"
	"katamini/internal/multiplayer"
	"katamini/internal/vec"
)

var (
	floorColor  = color.RGBA{0x2b, 0x2b, 0x35, 0xff}
	wallColor   = color.RGBA{0xd7, 0xcc, 0xc8, 0xff}
	playerColor = color.RGBA{0xff, 0x6f, 0x91, 0xff}
	auraColor   = color.RGBA{0xff, 0xff, 0x8d, 0xff}
	textShadow  = color.RGBA{0, 0, 0, 0xa0}
)

var digitKeys = []ebiten.Key{
	ebiten.Key1, ebiten.Key2, ebiten.Key3, ebiten.Key4, ebiten.Key5,
	ebiten.Key6, ebiten.Key7, ebiten.Key8, ebiten.Key9,
}

const (
	joinTimeout = 10 * time.Second
	flashFrames = 90
)

// App adapts a game.Session to ebiten.Game. It is also the loop's input
// source and renderer.
type App struct {
	session *game.Session
	loop    *game.Loop

	width, height int
	frame         game.Frame
	menu          []menuEntry

	touch   game.TouchTracker
	touchID ebiten.TouchID
	touches []ebiten.TouchID

	flash      string
	flashTicks int
}

// NewApp constructs the client for the provided session.
func NewApp(s *game.Session, width, height int) *App {
	a := &App{session: s, width: width, height: height}
	a.menu = buildMenu(s)
	return a
}

// Render keeps the latest frame for Draw.
func (a *App) Render(f game.Frame) { a.frame = f }

// Input merges keyboard and touch intents.
func (a *App) Input() game.Input {
	keys := game.Input{
		Forward: ebiten.IsKeyPressed(ebiten.KeyW) || ebiten.IsKeyPressed(ebiten.KeyArrowUp),
		Back:    ebiten.IsKeyPressed(ebiten.KeyS) || ebiten.IsKeyPressed(ebiten.KeyArrowDown),
		Left:    ebiten.IsKeyPressed(ebiten.KeyA) || ebiten.IsKeyPressed(ebiten.KeyArrowLeft),
		Right:   ebiten.IsKeyPressed(ebiten.KeyD) || ebiten.IsKeyPressed(ebiten.KeyArrowRight),
		Jump:    ebiten.IsKeyPressed(ebiten.KeySpace),
	}
	return keys.Merge(a.touch.Intent())
}

func (a *App) onSteal(from string, s multiplayer.StealAttempt) {
	a.flash = "Bumped by a bigger player!"
	a.flashTicks = flashFrames
	log.Printf("steal attempt from %s (size %.2f)", from, s.Size)
}

// Update handles per-frame logic and advances the simulation.
func (a *App) Update() error {
	if a.flashTicks > 0 {
		a.flashTicks--
	}
	switch a.session.State() {
	case game.LevelSelect:
		if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
			return ebiten.Termination
		}
		for _, e := range a.menu {
			if e.Key > len(digitKeys) || !e.Unlocked {
				continue
			}
			if inpututil.IsKeyJustPressed(digitKeys[e.Key-1]) {
				a.start(func() error { return a.session.SelectLevel(e.ID) })
				break
			}
		}
	case game.Playing:
		if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
			a.toMenu()
			return nil
		}
		a.updateTouch()
		if !a.loop.Step() {
			a.loop.Leave()
		}
	default:
		switch {
		case inpututil.IsKeyJustPressed(ebiten.KeyR):
			a.start(a.session.Retry)
		case inpututil.IsKeyJustPressed(ebiten.KeyN) && a.session.State() == game.Completed:
			if next, err := a.session.NextLevel(); err == nil {
				a.start(func() error {
					a.session.ToLevelSelect()
					return a.session.SelectLevel(next.ID)
				})
			}
		case inpututil.IsKeyJustPressed(ebiten.KeyEscape):
			a.toMenu()
		}
	}
	return nil
}

// start begins an attempt and joins its room when the level is online.
func (a *App) start(begin func() error) {
	if err := begin(); err != nil {
		log.Printf("start level: %v", err)
		return
	}
	a.touch.End()
	ctx, cancel := context.WithTimeout(context.Background(), joinTimeout)
	defer cancel()
	if err := a.loop.Join(ctx); err != nil {
		log.Printf("multiplayer unavailable, playing solo: %v", err)
	}
	a.frame = game.Frame{Snapshot: a.session.Snapshot(), Players: 1}
}

func (a *App) toMenu() {
	a.loop.Leave()
	a.session.ToLevelSelect()
	a.touch.End()
	a.menu = buildMenu(a.session)
}

func (a *App) updateTouch() {
	a.touches = inpututil.AppendJustPressedTouchIDs(a.touches[:0])
	if len(a.touches) > 0 && !a.touch.Dragging() {
		a.touchID = a.touches[0]
		x, y := ebiten.TouchPosition(a.touchID)
		a.touch.Start(float64(x), float64(y))
		return
	}
	if !a.touch.Dragging() {
		return
	}
	if inpututil.IsTouchJustReleased(a.touchID) {
		a.touch.End()
		return
	}
	x, y := ebiten.TouchPosition(a.touchID)
	a.touch.Move(float64(x), float64(y))
}

// Draw renders the current state.
func (a *App) Draw(screen *ebiten.Image) {
	screen.Fill(color.Black)
	if a.session.State() == game.LevelSelect {
		a.drawMenu(screen)
		return
	}
	a.drawWorld(screen)
	a.drawText(screen, hudLines(a.frame), 12, 12)
	if a.flashTicks > 0 {
		a.drawText(screen, []string{a.flash}, a.width/2-80, 12)
	}
	if a.frame.Phase.Terminal() {
		_, err := a.session.NextLevel()
		a.drawText(screen, resultLines(a.frame, err == nil), a.width/2-90, a.height/2-50)
	}
}

func (a *App) drawMenu(screen *ebiten.Image) {
	lines := []string{"KATAMINI", "", "Choose a level:"}
	for _, e := range a.menu {
		lines = append(lines, e.String())
	}
	lines = append(lines, "", "WASD/arrows to roll, space to jump, Esc to quit")
	a.drawText(screen, lines, 40, 40)
}

// drawWorld draws the room from above, centered on the player.
func (a *App) drawWorld(screen *ebiten.Image) {
	f := a.frame
	center := f.Player.Position
	ppu := float32(math.Min(float64(a.width), float64(a.height)) / (2 * f.Zoom * 1.5))
	toScreen := func(p vec.Vec3) (float32, float32) {
		return float32(a.width)/2 + float32(p.X-center.X)*ppu,
			float32(a.height)/2 + float32(p.Z-center.Z)*ppu
	}

	half := game.BoundsFor(f.RoomSize).Half + game.RoomMargin
	x0, y0 := toScreen(vec.Vec3{X: -half, Z: -half})
	side := float32(2*half) * ppu
	vector.DrawFilledRect(screen, x0, y0, side, side, floorColor, false)
	vector.StrokeRect(screen, x0, y0, side, side, 3, wallColor, false)

	for _, o := range f.Objects {
		x, y := toScreen(o.Position)
		r := max(float32(o.Size*game.ObjectRadiusFactor)*ppu, 1.5)
		vector.DrawFilledCircle(screen, x, y, r, parseColor(o.Color), true)
		if o.Absorbable {
			vector.StrokeCircle(screen, x, y, r+2, 1, auraColor, true)
		}
	}
	for _, g := range a.frame.Ghosts {
		x, y := toScreen(g.Position)
		vector.DrawFilledCircle(screen, x, y, float32(g.Radius())*ppu, parseColor(g.Color), true)
	}

	px, py := toScreen(center)
	pr := float32(f.Player.Scale.X*0.5) * ppu
	vector.DrawFilledCircle(screen, px, py, pr, playerColor, true)
	for _, t := range f.Trophies {
		x, y := toScreen(center.Add(t.Offset))
		vector.DrawFilledCircle(screen, x, y, max(float32(t.Scale*0.05)*ppu, 1), parseColor(t.Color), true)
	}
	hx, hy := toScreen(center.Add(f.Player.Heading.Scale(f.Player.Scale.X * 0.8)))
	vector.StrokeLine(screen, px, py, hx, hy, 2, color.White, true)
}

func (a *App) drawText(screen *ebiten.Image, lines []string, x, y int) {
	if len(lines) == 0 {
		return
	}
	w := 0
	for _, l := range lines {
		w = max(w, len(l))
	}
	vector.DrawFilledRect(screen, float32(x-6), float32(y-4), float32(w*6+12), float32(len(lines)*16+8), textShadow, false)
	for i, l := range lines {
		ebitenutil.DebugPrintAt(screen, l, x, y+i*16)
	}
}

// Layout returns the logical screen size.
func (a *App) Layout(outsideWidth, outsideHeight int) (int, int) {
	return a.width, a.height
}
