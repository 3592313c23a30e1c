package main

import (
	"github.com/bshepherdson/tc-chip8/chip8"
	"github.com/bshepherdson/tc-chip8/common"
	"github.com/pkg/errors"
	"github.com/retroenv/retrogolib/log"
	"github.com/veandco/go-sdl2/sdl"
	"github.com/veandco/go-sdl2/ttf"
)

const (
	overlayFontSize = 14
	overlayMargin   = 6
)

type Display struct {
	fg, bg uint32

	window   *sdl.Window
	renderer *sdl.Renderer
	texture  *sdl.Texture
	font     *ttf.Font
	logger   *log.Logger
}

func NewDisplay(cfg *config, logger *log.Logger) (*Display, error) {
	d := &Display{logger: logger}

	var err error
	if d.fg, err = parseColour(cfg.fg); err != nil {
		return nil, err
	}
	if d.bg, err = parseColour(cfg.bg); err != nil {
		return nil, err
	}

	if err := sdl.InitSubSystem(sdl.INIT_VIDEO); err != nil {
		return nil, errors.Wrap(err, "failed to initialize video")
	}

	// Nearest-neighbour scaling keeps the pixels square.
	sdl.SetHint(sdl.HINT_RENDER_SCALE_QUALITY, "0")

	d.window, err = sdl.CreateWindow("CHIP-8", sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED,
		int32(chip8.Width*cfg.scale), int32(chip8.Height*cfg.scale), sdl.WINDOW_SHOWN)
	if err != nil {
		d.Cleanup()
		return nil, errors.Wrap(err, "failed to create window")
	}

	d.renderer, err = sdl.CreateRenderer(d.window, -1, sdl.RENDERER_ACCELERATED)
	if err != nil {
		d.Cleanup()
		return nil, errors.Wrap(err, "failed to create renderer")
	}

	d.texture, err = d.renderer.CreateTexture(sdl.PIXELFORMAT_ARGB8888, sdl.TEXTUREACCESS_STREAMING,
		chip8.Width, chip8.Height)
	if err != nil {
		d.Cleanup()
		return nil, errors.Wrap(err, "failed to create texture")
	}

	if cfg.font != "" {
		if err := ttf.Init(); err != nil {
			d.Cleanup()
			return nil, errors.Wrap(err, "failed to initialize fonts")
		}
		if d.font, err = ttf.OpenFont(cfg.font, overlayFontSize); err != nil {
			d.Cleanup()
			return nil, errors.Wrapf(err, "failed to open font %s", cfg.font)
		}
	}
	return d, nil
}

// Nothing to read; the keyboard device owns the event queue.
func (d *Display) Poll(h *common.Host) error {
	return nil
}

func (d *Display) Present(h *common.Host) error {
	pixels, pitch, err := d.texture.Lock(nil)
	if err != nil {
		return errors.Wrap(err, "error locking texture")
	}
	fillFrame(pixels, pitch, h.Machine.Display(), d.fg, d.bg)
	d.texture.Unlock()

	if err := d.renderer.Clear(); err != nil {
		return errors.Wrap(err, "failed to clear renderer")
	}
	if err := d.renderer.Copy(d.texture, nil, nil); err != nil {
		return errors.Wrap(err, "failed to copy texture")
	}

	if d.font != nil && h.Debugger.ShowOverlay() {
		snap := h.Machine.Snapshot()
		if err := d.drawOverlay(overlayLines(&snap, h.Debugger.Mode())); err != nil {
			// The frame itself is fine; drop the overlay only.
			d.logger.Error("Overlay failed", log.Err(err))
		}
	}

	d.renderer.Present()
	return nil
}

func (d *Display) drawOverlay(lines []string) error {
	white := sdl.Color{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	y := int32(overlayMargin)
	lineHeight := int32(d.font.LineSkip())

	d.renderer.SetDrawBlendMode(sdl.BLENDMODE_BLEND)
	d.renderer.SetDrawColor(0, 0, 0, 0xa0)
	w, _ := d.window.GetSize()
	bg := sdl.Rect{X: 0, Y: 0, W: w, H: lineHeight*int32(len(lines)) + 2*overlayMargin}
	if err := d.renderer.FillRect(&bg); err != nil {
		return err
	}

	for _, line := range lines {
		surface, err := d.font.RenderUTF8Blended(line, white)
		if err != nil {
			return err
		}
		tex, err := d.renderer.CreateTextureFromSurface(surface)
		if err != nil {
			surface.Free()
			return err
		}
		dst := sdl.Rect{X: overlayMargin, Y: y, W: surface.W, H: surface.H}
		err = d.renderer.Copy(tex, nil, &dst)
		tex.Destroy()
		surface.Free()
		if err != nil {
			return err
		}
		y += lineHeight
	}
	return nil
}

func (d *Display) Cleanup() {
	if d.font != nil {
		d.font.Close()
		ttf.Quit()
	}
	if d.texture != nil {
		d.texture.Destroy()
	}
	if d.renderer != nil {
		d.renderer.Destroy()
	}
	if d.window != nil {
		d.window.Destroy()
	}
	sdl.QuitSubSystem(sdl.INIT_VIDEO)
}
