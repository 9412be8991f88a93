// Package server implements the stream server: it paces a frame source at
// a target FPS and fans the encoded frames out to any number of attached
// stream clients over long-lived chunked HTTP responses.
package server

import (
	"context"
	_ "embed"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/argusview/argus/internal/log"
	"github.com/argusview/argus/internal/metrics"
	"github.com/argusview/argus/internal/source"
	"github.com/argusview/argus/internal/wire"
)

//go:embed stream.html
var streamHTML []byte

// Options configure the stream server.
type Options struct {
	Listen string
	FPS    float64
	Limits wire.Limits
}

// Server owns the frame source, the produce loop and the HTTP listener.
type Server struct {
	opts Options
	src  source.Source

	mu      sync.Mutex
	clients map[string]chan []byte

	httpSrv *http.Server
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// New creates a server around src. Start must be called before it serves.
func New(opts Options, src source.Source) *Server {
	if opts.FPS <= 0 {
		opts.FPS = 30
	}
	if opts.Limits.MaxFrameBytes == 0 {
		opts.Limits = wire.DefaultLimits()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		opts:    opts,
		src:     src,
		clients: make(map[string]chan []byte),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Start launches the produce loop and the HTTP listener.
func (s *Server) Start() error {
	r := mux.NewRouter()
	r.HandleFunc("/", s.handleIndex).Methods(http.MethodGet)
	r.HandleFunc("/stream/dimensions", s.handleDimensions).Methods(http.MethodGet)
	r.HandleFunc("/stream", s.handleStream).Methods(http.MethodPost)
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)

	s.httpSrv = &http.Server{
		Addr:        s.opts.Listen,
		Handler:     r,
		ReadTimeout: 10 * time.Second,
		// No write timeout: stream responses are unbounded by design.
	}

	s.wg.Add(1)
	go s.produceLoop()

	log.GetLogger().WithFields(map[string]interface{}{
		"listen": s.opts.Listen,
		"fps":    s.opts.FPS,
	}).Info("stream server started")

	go func() {
		if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.GetLogger().WithError(err).Error("stream server error")
		}
	}()

	return nil
}

// Stop shuts down the listener, the produce loop and the frame source.
func (s *Server) Stop(ctx context.Context) error {
	s.cancel()
	var err error
	if s.httpSrv != nil {
		err = s.httpSrv.Shutdown(ctx)
	}
	s.wg.Wait()
	if cerr := s.src.Close(); err == nil {
		err = cerr
	}
	return err
}

// produceLoop pulls frames from the source at the target FPS and offers
// each to every attached client. Slow clients have the frame dropped
// rather than queued; the next frame they accept is always a recent one.
func (s *Server) produceLoop() {
	defer s.wg.Done()

	logger := log.GetLogger()
	interval := time.Duration(float64(time.Second) / s.opts.FPS)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
		}

		payload, err := s.src.Next()
		if err != nil {
			logger.WithError(err).Warn("frame source error")
			continue
		}

		s.mu.Lock()
		for _, ch := range s.clients {
			select {
			case ch <- payload:
			default:
				// client is behind, drop the frame for it
			}
		}
		s.mu.Unlock()
	}
}

func (s *Server) attach(id string) chan []byte {
	ch := make(chan []byte, 1)
	s.mu.Lock()
	s.clients[id] = ch
	s.mu.Unlock()
	metrics.ServerClientsConnected.Inc()
	return ch
}

func (s *Server) detach(id string) {
	s.mu.Lock()
	delete(s.clients, id)
	s.mu.Unlock()
	metrics.ServerClientsConnected.Dec()
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(streamHTML)
}

func (s *Server) handleDimensions(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.src.Dimensions())
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// handleStream writes length-prefixed frames to the client until it goes
// away or the server stops. One flush per frame keeps end-to-end latency
// at a single frame interval.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	fl, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	id := uuid.NewString()[:8]
	logger := log.GetLogger().WithField("client", id)
	logger.Info("stream client attached")

	ch := s.attach(id)
	defer func() {
		s.detach(id)
		logger.Info("stream client detached")
	}()

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	fl.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-s.ctx.Done():
			return
		case payload := <-ch:
			if err := wire.WriteFrame(w, payload, s.opts.Limits); err != nil {
				logger.WithError(err).Debug("stream write failed")
				return
			}
			fl.Flush()
			metrics.ServerFramesSentTotal.WithLabelValues(id).Inc()
		}
	}
}
