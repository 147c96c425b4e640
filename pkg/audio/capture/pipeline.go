package capture

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/synapse-health/guardian/pkg/audio/pcm"
)

// Source is a live mono audio input delivering float32 samples in [-1, 1]
// at a fixed native sample rate. Read blocks until it has filled buf.
//
// Implementations wrap a concrete device API (see pkg/audio/portaudio).
type Source interface {
	SampleRate() int
	Start() error
	Read(buf []float32) error
	Stop() error
	Close() error
}

// Config configures a capture Pipeline.
type Config struct {
	// Target is the output format. Defaults to pcm.Mono16K.
	Target pcm.Format

	// FramesPerBuffer is the number of native-rate samples read from the
	// device per chunk. Defaults to 4096 (~85ms at 48kHz).
	FramesPerBuffer int

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

const defaultFramesPerBuffer = 4096

// Pipeline captures audio from a Source and emits 16-bit PCM chunks at the
// target rate. Chunks are emitted in strict capture order.
type Pipeline struct {
	src    Source
	target pcm.Format
	frames int
	logger *slog.Logger

	chunks chan []byte

	mu      sync.Mutex
	started bool
	stopped bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewPipeline creates a pipeline over src. The source must not be started;
// the pipeline acquires it in Start.
func NewPipeline(src Source, cfg Config) *Pipeline {
	if !cfg.Target.Valid() {
		cfg.Target = pcm.Mono16K
	}
	if cfg.FramesPerBuffer <= 0 {
		cfg.FramesPerBuffer = defaultFramesPerBuffer
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Pipeline{
		src:    src,
		target: cfg.Target,
		frames: cfg.FramesPerBuffer,
		logger: cfg.Logger,
		chunks: make(chan []byte, 16),
	}
}

// Format returns the output format of the pipeline.
func (p *Pipeline) Format() pcm.Format {
	return p.target
}

// Chunks returns the channel of emitted audio chunks. The channel is closed
// after Stop, or after an unrecoverable device read error.
func (p *Pipeline) Chunks() <-chan []byte {
	return p.chunks
}

// Start acquires the device and begins emitting chunks. If the device cannot
// be started no partial pipeline is left running.
func (p *Pipeline) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		return errors.New("capture: already started")
	}
	if p.stopped {
		return errors.New("capture: pipeline stopped")
	}
	if p.src.SampleRate() <= 0 {
		return fmt.Errorf("capture: invalid device sample rate %d", p.src.SampleRate())
	}

	if err := p.src.Start(); err != nil {
		// Release whatever the device half-acquired.
		_ = p.src.Close()
		return fmt.Errorf("capture: start device: %w", err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})
	p.started = true

	go p.run(runCtx)
	return nil
}

func (p *Pipeline) run(ctx context.Context) {
	defer close(p.done)
	defer close(p.chunks)

	srcRate := p.src.SampleRate()
	buf := make([]float32, p.frames)
	var q []int16

	for {
		if ctx.Err() != nil {
			return
		}
		if err := p.src.Read(buf); err != nil {
			if ctx.Err() == nil {
				p.logger.Error("capture: device read failed", "err", err)
			}
			return
		}

		resampled := ResampleLinear(buf, srcRate, p.target.SampleRate)
		q = pcm.Quantize(resampled, q)
		chunk := pcm.Encode(q, nil)

		select {
		case p.chunks <- chunk:
		case <-ctx.Done():
			return
		}
	}
}

// Stop releases the device and all pipeline stages. Teardown is best-effort:
// every stage is released even if an earlier step fails, and the first error
// is returned. Stop is idempotent.
func (p *Pipeline) Stop() error {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return nil
	}
	p.stopped = true
	started := p.started
	cancel := p.cancel
	done := p.done
	p.mu.Unlock()

	if !started {
		close(p.chunks)
		return nil
	}
	cancel()

	var errs []error
	if err := p.src.Stop(); err != nil {
		errs = append(errs, fmt.Errorf("stop device: %w", err))
	}
	if err := p.src.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close device: %w", err))
	}
	<-done
	return errors.Join(errs...)
}
