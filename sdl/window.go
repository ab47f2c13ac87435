package sdl

import (
	"fmt"

	"github.com/veandco/go-sdl2/sdl"
)

// maxSide bounds the window's longer side in pixels.
const maxSide = 800

// Window draws a board, one square of Scale pixels per cell.
type Window struct {
	Width, Height int32
	Scale         int32
	window        *sdl.Window
	renderer      *sdl.Renderer
	alive         []bool
}

func NewWindow(width, height int32) (*Window, error) {
	if width < 1 || height < 1 {
		return nil, fmt.Errorf("sdl: cannot show a %dx%d board", width, height)
	}
	scale := int32(maxSide) / width
	if s := int32(maxSide) / height; s < scale {
		scale = s
	}
	if scale < 1 {
		scale = 1
	}
	if err := sdl.Init(sdl.INIT_VIDEO); err != nil {
		return nil, err
	}
	window, err := sdl.CreateWindow("Game of Life", sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED,
		width*scale, height*scale, sdl.WINDOW_SHOWN)
	if err != nil {
		sdl.Quit()
		return nil, err
	}
	renderer, err := sdl.CreateRenderer(window, -1, sdl.RENDERER_ACCELERATED)
	if err != nil {
		window.Destroy()
		sdl.Quit()
		return nil, err
	}
	return &Window{
		Width:    width,
		Height:   height,
		Scale:    scale,
		window:   window,
		renderer: renderer,
		alive:    make([]bool, width*height),
	}, nil
}

func (w *Window) Destroy() {
	w.renderer.Destroy()
	w.window.Destroy()
	sdl.Quit()
}

func (w *Window) SetCell(x, y int, alive bool) {
	w.alive[int32(y)*w.Width+int32(x)] = alive
}

func (w *Window) RenderFrame() error {
	if err := w.renderer.SetDrawColor(0, 0, 0, 255); err != nil {
		return err
	}
	if err := w.renderer.Clear(); err != nil {
		return err
	}
	if err := w.renderer.SetDrawColor(255, 255, 255, 255); err != nil {
		return err
	}
	for i, a := range w.alive {
		if !a {
			continue
		}
		x, y := int32(i)%w.Width, int32(i)/w.Width
		rect := sdl.Rect{X: x * w.Scale, Y: y * w.Scale, W: w.Scale, H: w.Scale}
		if err := w.renderer.FillRect(&rect); err != nil {
			return err
		}
	}
	w.renderer.Present()
	return nil
}

// PollQuit drains pending window events and reports whether the user closed
// the window or pressed q or escape.
func (w *Window) PollQuit() bool {
	quit := false
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch e := event.(type) {
		case *sdl.QuitEvent:
			quit = true
		case *sdl.KeyboardEvent:
			if e.Type == sdl.KEYDOWN && (e.Keysym.Sym == sdl.K_q || e.Keysym.Sym == sdl.K_ESCAPE) {
				quit = true
			}
		}
	}
	return quit
}
