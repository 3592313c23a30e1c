package main

import (
	"math"

	"github.com/bshepherdson/tc-chip8/common"
	"github.com/pkg/errors"
	"github.com/retroenv/retrogolib/log"
	"github.com/veandco/go-sdl2/sdl"
)

const (
	sampleRate = 44100
	// Samples kept queued while the tone plays, about two frames' worth.
	beeperLead = sampleRate / 30
)

// squareWave generates signed 8-bit samples.
type squareWave struct {
	phase float64 // In periods, [0, 1).
	step  float64 // Periods per sample.
	amp   int8
}

func newSquareWave(freq, rate, volume float64) *squareWave {
	return &squareWave{
		step: freq / rate,
		amp:  int8(math.Round(volume * math.MaxInt8)),
	}
}

func (w *squareWave) fill(buf []byte) {
	for i := range buf {
		v := w.amp
		if w.phase >= 0.5 {
			v = -v
		}
		buf[i] = byte(v)

		w.phase += w.step
		if w.phase >= 1 {
			w.phase -= 1
		}
	}
}

type Beeper struct {
	dev     sdl.AudioDeviceID
	wave    *squareWave
	buf     []byte
	playing bool
	logger  *log.Logger
}

func NewBeeper(cfg *config, logger *log.Logger) (*Beeper, error) {
	if cfg.tone <= 0 || cfg.tone >= sampleRate/2 {
		return nil, errors.Errorf("tone %g Hz out of range", cfg.tone)
	}
	if err := sdl.InitSubSystem(sdl.INIT_AUDIO); err != nil {
		return nil, errors.Wrap(err, "failed to initialize audio")
	}

	want := sdl.AudioSpec{
		Freq:     sampleRate,
		Format:   sdl.AUDIO_S8,
		Channels: 1,
		Samples:  512,
	}
	var have sdl.AudioSpec
	dev, err := sdl.OpenAudioDevice("", false, &want, &have, 0)
	if err != nil {
		sdl.QuitSubSystem(sdl.INIT_AUDIO)
		return nil, errors.Wrap(err, "failed to open audio device")
	}
	sdl.PauseAudioDevice(dev, false)

	return &Beeper{
		dev:    dev,
		wave:   newSquareWave(cfg.tone, sampleRate, cfg.volume),
		buf:    make([]byte, beeperLead),
		logger: logger,
	}, nil
}

func (b *Beeper) Poll(h *common.Host) error {
	return nil
}

// Present tops the audio queue up while the sound timer runs and drops it
// as soon as the timer expires.
func (b *Beeper) Present(h *common.Host) error {
	if !h.Machine.SoundActive() {
		if b.playing {
			sdl.ClearQueuedAudio(b.dev)
			b.playing = false
		}
		return nil
	}

	b.playing = true
	queued := int(sdl.GetQueuedAudioSize(b.dev))
	if queued >= beeperLead {
		return nil
	}
	chunk := b.buf[:beeperLead-queued]
	b.wave.fill(chunk)
	if err := sdl.QueueAudio(b.dev, chunk); err != nil {
		b.logger.Error("Queueing audio failed", log.Err(err))
	}
	return nil
}

func (b *Beeper) Cleanup() {
	sdl.CloseAudioDevice(b.dev)
	sdl.QuitSubSystem(sdl.INIT_AUDIO)
}
