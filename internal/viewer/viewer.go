// Package viewer implements the stream viewer: lifecycle controller,
// network read loop, render consumer and FPS reporting.
//
// Two independently-paced loops cooperate through one capped buffer: the
// read loop feeds raw chunks into the demultiplexer, the render loop takes
// whatever the latest fully parsed frame is on each display tick. Frames
// the renderer never got to are dropped on purpose; the one-slot
// latest-wins handoff is what keeps latency flat when the renderer is
// slower than the network.
package viewer

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/argusview/argus/internal/core"
	"github.com/argusview/argus/internal/decode"
	"github.com/argusview/argus/internal/log"
	"github.com/argusview/argus/internal/metrics"
	"github.com/argusview/argus/internal/sink"
	"github.com/argusview/argus/internal/stream"
)

// State is the lifecycle state of the viewer.
type State int32

const (
	StateStopped State = iota
	StateStarting
	StateStreaming
)

func (s State) String() string {
	switch s {
	case StateStarting:
		return "starting"
	case StateStreaming:
		return "streaming"
	default:
		return "stopped"
	}
}

// Options tune the viewer loops.
type Options struct {
	BufferCapacity int           // intake ring size in bytes
	TickInterval   time.Duration // render tick, the display refresh stand-in
	ReportInterval time.Duration // FPS reporting interval
}

// Viewer owns exactly one streaming session at a time.
type Viewer struct {
	client *Client
	dec    decode.Decoder
	sink   sink.Sink
	opts   Options

	state atomic.Int32

	mu     sync.Mutex
	active *session // owning session, nil once torn down
	last   *session // most recent session, kept for Wait
}

// session is the per-start state: fixed dimensions, the demultiplexer and
// the cancellation handle shared by all three loops.
type session struct {
	id     string
	dims   core.Dimensions
	demux  *stream.Demux
	ctx    context.Context
	cancel context.CancelFunc

	rendered atomic.Uint64 // frames rendered since last report
	reported stream.Stats  // last stats snapshot flushed to metrics

	wg      sync.WaitGroup
	errOnce sync.Once
	err     error
}

// fail records the session's terminal error. Only the first caller wins;
// cancellation and clean EOF never record anything.
func (s *session) fail(err error) {
	s.errOnce.Do(func() { s.err = err })
}

// New creates a viewer. Zero option fields get sensible defaults.
func New(client *Client, dec decode.Decoder, snk sink.Sink, opts Options) *Viewer {
	if opts.BufferCapacity <= 0 {
		opts.BufferCapacity = 10 * 1024 * 1024
	}
	if opts.TickInterval <= 0 {
		opts.TickInterval = 16 * time.Millisecond
	}
	if opts.ReportInterval <= 0 {
		opts.ReportInterval = time.Second
	}
	return &Viewer{client: client, dec: dec, sink: snk, opts: opts}
}

// State returns the current lifecycle state.
func (v *Viewer) State() State {
	return State(v.state.Load())
}

// Start fetches the stream dimensions, opens the transport and launches
// the read, render and report loops. A no-op when a session is already
// starting or streaming. Failure before the transport opens routes back
// to Stopped without ever entering Streaming.
func (v *Viewer) Start(ctx context.Context) error {
	if !v.state.CompareAndSwap(int32(StateStopped), int32(StateStarting)) {
		return nil
	}
	metrics.SessionStatus.Set(metrics.SessionStarting)

	logger := log.GetLogger()

	dims, err := v.client.Dimensions(ctx)
	if err != nil {
		v.state.Store(int32(StateStopped))
		metrics.SessionStatus.Set(metrics.SessionStopped)
		return err
	}

	sctx, cancel := context.WithCancel(ctx)
	body, err := v.client.Open(sctx)
	if err != nil {
		cancel()
		v.state.Store(int32(StateStopped))
		metrics.SessionStatus.Set(metrics.SessionStopped)
		return err
	}

	sess := &session{
		id:     uuid.NewString()[:8],
		dims:   dims,
		demux:  stream.NewDemux(v.opts.BufferCapacity, dims),
		ctx:    sctx,
		cancel: cancel,
	}

	// Publishing the session and entering Streaming happen under one
	// lock hold so teardown never observes one without the other.
	v.mu.Lock()
	v.active = sess
	v.last = sess
	v.state.Store(int32(StateStreaming))
	v.mu.Unlock()

	metrics.SessionStatus.Set(metrics.SessionStreaming)
	logger.WithFields(map[string]interface{}{
		"session": sess.id,
		"width":   dims.Width,
		"height":  dims.Height,
	}).Info("stream session started")

	sess.wg.Add(3)
	go v.readLoop(sess, body)
	go v.renderLoop(sess)
	go v.reportLoop(sess)

	return nil
}

// Stop cancels the in-flight read and tears the session down. Safe to
// call at any time, from any goroutine, any number of times. A pure
// no-op when no session owns the viewer: a session that already ended,
// or one still starting, is never torn down through a stale handle.
func (v *Viewer) Stop() {
	v.mu.Lock()
	sess := v.active
	v.mu.Unlock()
	if sess == nil {
		return
	}
	sess.cancel()
	v.teardown(sess)
}

// Wait blocks until the current session's loops have exited and returns
// the session's terminal error, if any. Clean end-of-stream and
// deliberate cancellation return nil.
func (v *Viewer) Wait() error {
	v.mu.Lock()
	sess := v.last
	v.mu.Unlock()
	if sess == nil {
		return nil
	}
	sess.wg.Wait()
	return sess.err
}

// teardown returns the viewer to Stopped. Reached from explicit Stop and
// from the read loop's own completion or error path; every step is
// idempotent so concurrent triggers are harmless. Only the first caller
// to claim the still-owning session performs the state transition; later
// calls with the same session find it disowned and change nothing, so a
// session that already ended can never flip the state out from under a
// newer one.
func (v *Viewer) teardown(sess *session) {
	sess.cancel()
	sess.demux.Close()

	v.mu.Lock()
	if v.active == sess {
		v.active = nil
		if v.state.CompareAndSwap(int32(StateStreaming), int32(StateStopped)) {
			metrics.SessionStatus.Set(metrics.SessionStopped)
		}
	}
	v.mu.Unlock()
}

// readLoop drives byte intake: it moves chunks from the transport into
// the demultiplexer until the stream ends, fails or is cancelled.
func (v *Viewer) readLoop(sess *session, body io.ReadCloser) {
	defer sess.wg.Done()
	defer body.Close()

	logger := log.GetLogger().WithField("session", sess.id)
	buf := make([]byte, 64*1024)

	for {
		n, err := body.Read(buf)
		if n > 0 {
			if ferr := sess.demux.Feed(buf[:n]); ferr != nil {
				// BufferTooSmall or Framing: the stream is presumed
				// desynchronised, nothing to do but end the session.
				sess.fail(ferr)
				logger.WithError(ferr).Error("stream demultiplexing failed")
				break
			}
		}
		if err != nil {
			switch {
			case errors.Is(err, io.EOF):
				logger.Info("stream ended")
			case sess.ctx.Err() != nil:
				// Deliberate cancellation, not a failure.
				logger.Debug("stream read cancelled")
			default:
				sess.fail(err)
				logger.WithError(err).Error("stream transport error")
			}
			break
		}
	}

	v.teardown(sess)
}

// renderLoop is the render consumer: once per tick it takes the latest
// parsed frame, if any, decodes it and blits it at the session's fixed
// dimensions. An empty slot is the normal case when the network is the
// bottleneck; a failed decode skips the frame and nothing else.
func (v *Viewer) renderLoop(sess *session) {
	defer sess.wg.Done()

	logger := log.GetLogger().WithField("session", sess.id)
	ticker := time.NewTicker(v.opts.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-sess.ctx.Done():
			return
		case <-ticker.C:
		}
		if v.State() != StateStreaming {
			return
		}

		frame := sess.demux.Take()
		if frame == nil {
			continue
		}

		img, err := v.dec.Decode(frame.Data)
		if err != nil {
			metrics.DecodeErrorsTotal.WithLabelValues(sess.id).Inc()
			if logger.IsDebugEnabled() {
				logger.WithError(err).WithField("seq", frame.Seq).Debug("frame decode failed")
			}
			continue
		}

		if err := v.sink.Blit(img, frame.Width, frame.Height); err != nil {
			logger.WithError(err).Warn("display sink blit failed")
			continue
		}

		sess.rendered.Add(1)
		metrics.FramesRenderedTotal.WithLabelValues(sess.id).Inc()
	}
}

// reportLoop samples the frame counter on a fixed interval, resets it and
// flushes demultiplexer stats deltas to the metrics registry. Purely
// observational; it never touches the data path.
func (v *Viewer) reportLoop(sess *session) {
	defer sess.wg.Done()

	logger := log.GetLogger().WithField("session", sess.id)
	ticker := time.NewTicker(v.opts.ReportInterval)
	defer ticker.Stop()

	for {
		select {
		case <-sess.ctx.Done():
			v.flushStats(sess)
			metrics.RenderedFPS.WithLabelValues(sess.id).Set(0)
			return
		case <-ticker.C:
		}

		count := sess.rendered.Swap(0)
		fps := float64(count) / v.opts.ReportInterval.Seconds()
		metrics.RenderedFPS.WithLabelValues(sess.id).Set(fps)
		v.flushStats(sess)

		logger.Infof("rendered %d frames (%.1f fps)", count, fps)
	}
}

// flushStats pushes counter deltas since the previous snapshot. Only the
// report loop calls this, so reading sess.reported without a lock is fine.
func (v *Viewer) flushStats(sess *session) {
	cur := sess.demux.Stats()
	prev := sess.reported
	sess.reported = cur

	id := sess.id
	metrics.StreamBytesTotal.WithLabelValues(id).Add(float64(cur.BytesIn - prev.BytesIn))
	metrics.FramesParsedTotal.WithLabelValues(id).Add(float64(cur.FramesParsed - prev.FramesParsed))
	metrics.FramesDroppedTotal.WithLabelValues(id).Add(float64(cur.FramesDropped - prev.FramesDropped))
	metrics.BufferCompactionsTotal.WithLabelValues(id).Add(float64(cur.Compactions - prev.Compactions))
	metrics.BufferResetsTotal.WithLabelValues(id).Add(float64(cur.Resets - prev.Resets))
}
