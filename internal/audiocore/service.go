package audiocore

import (
	"context"
	"log/slog"

	"github.com/fenwick-audio/adrian/internal/config"
	"github.com/fenwick-audio/adrian/internal/observability/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

// service.go is the top-level public surface of §6: lifecycle, and the two
// per-participant Update entry points. Grounded on the teacher's
// manager-as-facade shape (internal/audiocore/manager.go in the retrieval
// pack owned start/stop and a per-callback Update loop over a registry of
// sources); this Service plays the same facade role over chains, catch
// buffers, and the message queues instead of audio sources.
type Service struct {
	Publisher *Publisher
	Queues    *MessageQueues
	Allocator *Allocator

	// MetricsRegistry is non-nil when cfg.Core.MetricsEnabled was set at
	// construction, for a host to expose via its own /metrics endpoint.
	MetricsRegistry *prometheus.Registry

	glideTimeInSamples float64

	cancel context.CancelFunc
	logger *slog.Logger
}

// NewService constructs a Service from the process configuration. It does
// not spawn the allocator thread; call Init for that. Returns
// ErrQuantumMisaligned if cfg.Core.DSPQuantum does not evenly divide
// BufferSize, violating §4.5's partitioning invariant from the DSP side.
func NewService(cfg *config.Settings) (*Service, error) {
	quantum := cfg.Core.DSPQuantum
	if quantum <= 0 {
		quantum = DefaultDSPQuantum
	}
	if BufferSize%quantum != 0 {
		return nil, ErrQuantumMisaligned
	}

	queueCap := cfg.Core.MessageQueueCapacity
	if queueCap <= 0 {
		queueCap = 64
	}
	sampleRate := cfg.Core.SampleRate
	if sampleRate <= 0 {
		sampleRate = 48000
	}
	glideSeconds := cfg.Core.PeakGateGlideSeconds
	if glideSeconds <= 0 {
		glideSeconds = 0.01
	}
	glideSamples := glideSeconds * float64(sampleRate)

	publisher := NewPublisher()
	queues := NewMessageQueues(queueCap)

	var reg *prometheus.Registry
	if cfg.Core.MetricsEnabled {
		reg = prometheus.NewRegistry()
		InitMetrics(metrics.NewAudioCoreMetrics(reg))
	}

	return &Service{
		Publisher:          publisher,
		Queues:             queues,
		Allocator:          NewAllocator(publisher, queues),
		MetricsRegistry:    reg,
		glideTimeInSamples: glideSamples,
		logger:             loggerFor("service"),
	}, nil
}

// Init spawns the allocator thread. non-rt: called once from non-real-time
// context during host startup.
func (s *Service) Init(ctx context.Context) {
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	go s.Allocator.Run(runCtx)
	s.logger.Info("audiocore service initialized")
}

// Shutdown requests the allocator stop and returns once the request has
// been issued. non-rt.
func (s *Service) Shutdown() {
	if s.cancel != nil {
		s.cancel()
	}
	s.logger.Info("audiocore service shutting down")
}

// AudioUpdate is the per-quantum entry point from the audio thread: drain
// the UI->audio command queue, dispatch each command, and advance the
// mipmap staging handoff for every sub-buffer with a pending audio-side
// dirty region. rt: never blocks, never allocates beyond what the caller
// already pre-sized into storage.
func (s *Service) AudioUpdate() {
	m := s.Publisher.Read()

	for {
		cmd, ok := s.Queues.RecvCommand()
		if !ok {
			break
		}
		DispatchCommand(m, cmd)
	}

	for channels, table := range m.bufferPool {
		_ = channels
		for _, svc := range table.Services {
			stageCriticalDirty(svc)
		}
	}
}

// UIUpdate is the per-frame entry point from the UI thread (§4.7): drain
// audio->UI events, diff the chain table against prev, advance mipmaps,
// and notify the allocator if the loading queue changed. non-rt.
func (s *Service) UIUpdate(prev Model, pushEvent func(HostEvent)) Model {
	curr := s.Publisher.Read()

	drainEvents(curr, s.Queues, pushEvent)
	diffChains(prev.Chains(), curr.Chains(), pushEvent)
	advanceMipmaps(curr, pushEvent)

	if loadingQueueChanged(prev.LoadingChains(), curr.LoadingChains()) {
		s.Allocator.Notify()
	}

	return curr
}

// CreateChain wraps the package-level CreateChain under UpdatePublish and
// notifies the allocator if the new chain needs background loading.
func (s *Service) CreateChain(channels, frameCount int, opts ChainOptions, clientData any) ChainID {
	var id ChainID
	s.Publisher.UpdatePublish(ParticipantUI, func(m Model) Model {
		var next Model
		next, id = CreateChain(m, channels, frameCount, opts, clientData)
		return next
	})
	if !opts.AllocateNow {
		s.Allocator.Notify()
	}
	return id
}

// ResizeChain wraps ResizeChain under UpdatePublish, notifying the
// allocator when the resize grows the chain back into the loading queue.
// Returns ErrUnknownChain for an id absent from the current snapshot,
// leaving the model untouched.
func (s *Service) ResizeChain(id ChainID, newFrameCount int) error {
	var err error
	grew := false
	s.Publisher.UpdatePublish(ParticipantUI, func(m Model) Model {
		before, ok := m.Chain(id)
		if !ok {
			err = ErrUnknownChain
			return m
		}
		next := ResizeChain(m, id, newFrameCount)
		after, _ := next.Chain(id)
		grew = after.Flags.has(ChainFlagLoading) && !before.Flags.has(ChainFlagLoading)
		return next
	})
	if grew {
		s.Allocator.Notify()
	}
	return err
}

// EraseChain wraps EraseChain under UpdatePublish. Returns ErrUnknownChain
// for an id absent from the current snapshot.
func (s *Service) EraseChain(id ChainID) error {
	var err error
	s.Publisher.UpdatePublish(ParticipantUI, func(m Model) Model {
		if _, ok := m.Chain(id); !ok {
			err = ErrUnknownChain
			return m
		}
		return EraseChain(m, id)
	})
	return err
}

// ReadChainMipmap is the UI-facing wrapper for §6's chain-scoped
// read_mipmap. Returns 0 for an unknown chain.
func (s *Service) ReadChainMipmap(id ChainID, binSize, channel, bin int) byte {
	m := s.Publisher.Read()
	chain, ok := m.Chain(id)
	if !ok {
		return 0
	}
	return ReadChainMipmap(m, chain, binSize, channel, bin)
}

// ClearChainMipmap wraps ClearChainMipmap under UpdatePublish. Returns
// ErrUnknownChain for an id absent from the current snapshot.
func (s *Service) ClearChainMipmap(id ChainID) error {
	var err error
	s.Publisher.UpdatePublish(ParticipantUI, func(m Model) Model {
		chain, ok := m.Chain(id)
		if !ok {
			err = ErrUnknownChain
			return m
		}
		ClearChainMipmap(m, chain)
		return m
	})
	return err
}

// SetChainMipmapsEnabled wraps SetChainMipmapsEnabled under UpdatePublish.
// Returns ErrUnknownChain for an id absent from the current snapshot.
func (s *Service) SetChainMipmapsEnabled(id ChainID, enabled bool) error {
	var err error
	s.Publisher.UpdatePublish(ParticipantUI, func(m Model) Model {
		if _, ok := m.Chain(id); !ok {
			err = ErrUnknownChain
			return m
		}
		return SetChainMipmapsEnabled(m, id, enabled)
	})
	return err
}

// MakeCatchBuffer wraps catch buffer creation under UpdatePublish. Returns
// ErrCatchBufferCapacityMisaligned if p is not a multiple of BufferSize.
func (s *Service) MakeCatchBuffer(channels, p int, opts ChainOptions, clientData any) (CatchBufferID, error) {
	var id CatchBufferID
	var err error
	s.Publisher.UpdatePublish(ParticipantUI, func(m Model) Model {
		var next Model
		next, id, err = MakeCatchBuffer(m, channels, p, opts, s.glideTimeInSamples, clientData)
		if err != nil {
			return m
		}
		return next
	})
	if err != nil {
		return 0, err
	}
	if !opts.AllocateNow {
		s.Allocator.Notify()
	}
	return id, nil
}

// ReconfigureCatchBuffer wraps ReconfigureCatchBuffer under UpdatePublish,
// the Service-level surface for §9's mandatory reconfigure_catch_buffer
// operation. Returns ErrUnknownCatchBuffer or
// ErrCatchBufferCapacityMisaligned, leaving the model untouched in either
// case.
func (s *Service) ReconfigureCatchBuffer(id CatchBufferID, newChannels, newP int) error {
	var err error
	s.Publisher.UpdatePublish(ParticipantUI, func(m Model) Model {
		var next Model
		next, err = ReconfigureCatchBuffer(m, id, newChannels, newP)
		if err != nil {
			return m
		}
		return next
	})
	return err
}

// EraseCatchBuffer wraps EraseCatchBuffer under UpdatePublish. Returns
// ErrUnknownCatchBuffer for an id absent from the current snapshot.
func (s *Service) EraseCatchBuffer(id CatchBufferID) error {
	var err error
	s.Publisher.UpdatePublish(ParticipantUI, func(m Model) Model {
		if _, ok := m.CatchBuffer(id); !ok {
			err = ErrUnknownCatchBuffer
			return m
		}
		return EraseCatchBuffer(m, id)
	})
	return err
}

// PlaybackStart is the UI-facing wrapper for §4.5's playback_start. Returns
// ErrUnknownCatchBuffer for an id absent from the current snapshot.
func (s *Service) PlaybackStart(id CatchBufferID, region Region) error {
	var err error
	s.Publisher.UpdatePublish(ParticipantUI, func(m Model) Model {
		if _, ok := m.CatchBuffer(id); !ok {
			err = ErrUnknownCatchBuffer
			return m
		}
		return PlaybackStart(m, id, region, s.Queues)
	})
	return err
}

// PlaybackStop is the UI-facing wrapper for §4.5's playback_stop. Returns
// ErrUnknownCatchBuffer for an id absent from the current snapshot.
func (s *Service) PlaybackStop(id CatchBufferID) error {
	var err error
	s.Publisher.UpdatePublish(ParticipantUI, func(m Model) Model {
		if _, ok := m.CatchBuffer(id); !ok {
			err = ErrUnknownCatchBuffer
			return m
		}
		return PlaybackStop(m, id, s.Queues)
	})
	return err
}

// CatchBufferProcess is the audio-facing wrapper for §4.5's per-quantum
// record/playback step. rt: reads the current snapshot once, never
// publishes.
func (s *Service) CatchBufferProcess(id CatchBufferID, input []float32, quantum int, gain, threshold float32, disableRecording bool) [2][]float32 {
	m := s.Publisher.Read()
	cb, ok := m.CatchBuffer(id)
	if !ok {
		return [2][]float32{make([]float32, quantum), make([]float32, quantum)}
	}
	return CatchBufferProcess(m, cb, s.Queues, input, quantum, gain, threshold, disableRecording)
}
