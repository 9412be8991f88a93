package viewer

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/jpeg"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/argusview/argus/internal/core"
	"github.com/argusview/argus/internal/decode"
	"github.com/argusview/argus/internal/sink"
	"github.com/argusview/argus/internal/wire"
)

func testJPEG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 32, 24))
	for y := 0; y < 24; y++ {
		for x := 0; x < 32; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 8), G: uint8(y * 8), B: 64, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, &jpeg.Options{Quality: 70}))
	return buf.Bytes()
}

// testServer serves dimensions and a stream whose body is produced by
// streamFn, which runs until it returns or the client goes away.
func testServer(t *testing.T, streamFn func(w http.ResponseWriter, r *http.Request)) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/stream/dimensions", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(core.Dimensions{Width: 32, Height: 24})
	})
	mux.HandleFunc("/stream", streamFn)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestViewer(baseURL string) (*Viewer, *sink.Null) {
	snk := &sink.Null{}
	v := New(NewClient(baseURL), decode.JPEG{}, snk, Options{
		BufferCapacity: 1 << 20,
		TickInterval:   2 * time.Millisecond,
		ReportInterval: 50 * time.Millisecond,
	})
	return v, snk
}

func TestViewer_RendersLiveStream(t *testing.T) {
	payload := testJPEG(t)
	srv := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		fl := w.(http.Flusher)
		for {
			select {
			case <-r.Context().Done():
				return
			case <-time.After(5 * time.Millisecond):
			}
			if err := wire.WriteFrame(w, payload, wire.DefaultLimits()); err != nil {
				return
			}
			fl.Flush()
		}
	})

	v, snk := newTestViewer(srv.URL)
	require.NoError(t, v.Start(context.Background()))
	assert.Equal(t, StateStreaming, v.State())

	assert.Eventually(t, func() bool { return snk.Blits() > 0 },
		2*time.Second, 5*time.Millisecond, "frames should reach the sink")

	v.Stop()
	assert.NoError(t, v.Wait(), "deliberate stop is not an error")
	assert.Equal(t, StateStopped, v.State())
}

func TestViewer_CleanEndOfStream(t *testing.T) {
	payload := testJPEG(t)
	srv := testServer(t, func(w http.ResponseWriter, _ *http.Request) {
		for i := 0; i < 3; i++ {
			wire.WriteFrame(w, payload, wire.DefaultLimits())
		}
	})

	v, _ := newTestViewer(srv.URL)
	require.NoError(t, v.Start(context.Background()))

	assert.NoError(t, v.Wait(), "end of stream is not an error")
	assert.Equal(t, StateStopped, v.State())
}

func TestViewer_FramingErrorEndsSession(t *testing.T) {
	srv := testServer(t, func(w http.ResponseWriter, _ *http.Request) {
		// Header claiming ~4 GiB: can never fit any ring.
		w.Write([]byte{0xff, 0xff, 0xff, 0xff})
	})

	v, _ := newTestViewer(srv.URL)
	require.NoError(t, v.Start(context.Background()))

	err := v.Wait()
	assert.ErrorIs(t, err, core.ErrFraming)
	assert.Equal(t, StateStopped, v.State())
}

func TestViewer_DimensionsFailureAbortsStart(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/stream/dimensions", func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	v, _ := newTestViewer(srv.URL)
	err := v.Start(context.Background())
	assert.Error(t, err)
	assert.Equal(t, StateStopped, v.State())
}

func TestViewer_InvalidDimensionsAbortStart(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/stream/dimensions", func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(core.Dimensions{Width: 0, Height: 480})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	v, _ := newTestViewer(srv.URL)
	err := v.Start(context.Background())
	assert.ErrorIs(t, err, core.ErrDimensionsInvalid)
	assert.Equal(t, StateStopped, v.State())
}

func TestViewer_StartWhileActiveIsNoOp(t *testing.T) {
	payload := testJPEG(t)
	srv := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		fl := w.(http.Flusher)
		for {
			select {
			case <-r.Context().Done():
				return
			case <-time.After(5 * time.Millisecond):
			}
			if err := wire.WriteFrame(w, payload, wire.DefaultLimits()); err != nil {
				return
			}
			fl.Flush()
		}
	})

	v, _ := newTestViewer(srv.URL)
	require.NoError(t, v.Start(context.Background()))
	require.Equal(t, StateStreaming, v.State())

	assert.NoError(t, v.Start(context.Background()), "second start is a no-op")
	assert.Equal(t, StateStreaming, v.State())

	v.Stop()
	assert.NoError(t, v.Wait())
}

func TestViewer_MalformedFrameDoesNotStopSession(t *testing.T) {
	payload := testJPEG(t)
	srv := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		fl := w.(http.Flusher)
		// A zero-length frame and a garbage frame, then real ones.
		wire.WriteFrame(w, nil, wire.DefaultLimits())
		wire.WriteFrame(w, []byte("not a jpeg"), wire.DefaultLimits())
		fl.Flush()
		for {
			select {
			case <-r.Context().Done():
				return
			case <-time.After(5 * time.Millisecond):
			}
			if err := wire.WriteFrame(w, payload, wire.DefaultLimits()); err != nil {
				return
			}
			fl.Flush()
		}
	})

	v, snk := newTestViewer(srv.URL)
	require.NoError(t, v.Start(context.Background()))

	assert.Eventually(t, func() bool { return snk.Blits() > 0 },
		2*time.Second, 5*time.Millisecond, "session survives undecodable frames")

	v.Stop()
	assert.NoError(t, v.Wait())
}

func TestViewer_StopIsIdempotent(t *testing.T) {
	payload := testJPEG(t)
	srv := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		wire.WriteFrame(w, payload, wire.DefaultLimits())
		w.(http.Flusher).Flush()
		<-r.Context().Done()
	})

	v, _ := newTestViewer(srv.URL)
	require.NoError(t, v.Start(context.Background()))

	v.Stop()
	v.Stop()
	v.Stop()
	assert.NoError(t, v.Wait())
	assert.Equal(t, StateStopped, v.State())

	// The viewer is ready for a fresh start after teardown.
	require.NoError(t, v.Start(context.Background()))
	v.Stop()
	assert.NoError(t, v.Wait())
}

func TestViewer_StopDuringStartingKeepsOneSession(t *testing.T) {
	payload := testJPEG(t)

	release := make(chan struct{})
	var dimsCalls atomic.Int32
	var active, peak atomic.Int32

	mux := http.NewServeMux()
	mux.HandleFunc("/stream/dimensions", func(w http.ResponseWriter, _ *http.Request) {
		if dimsCalls.Add(1) > 1 {
			<-release // park the second session mid-start
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(core.Dimensions{Width: 32, Height: 24})
	})
	mux.HandleFunc("/stream", func(w http.ResponseWriter, r *http.Request) {
		n := active.Add(1)
		defer active.Add(-1)
		for {
			cur := peak.Load()
			if n <= cur || peak.CompareAndSwap(cur, n) {
				break
			}
		}
		fl := w.(http.Flusher)
		for {
			select {
			case <-r.Context().Done():
				return
			case <-time.After(5 * time.Millisecond):
			}
			if err := wire.WriteFrame(w, payload, wire.DefaultLimits()); err != nil {
				return
			}
			fl.Flush()
		}
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	v, _ := newTestViewer(srv.URL)

	// A first session runs to completion, leaving the viewer in Stopped.
	require.NoError(t, v.Start(context.Background()))
	v.Stop()
	require.NoError(t, v.Wait())
	require.Eventually(t, func() bool { return active.Load() == 0 },
		time.Second, time.Millisecond, "first stream connection drains")

	// A second start parks in the dimensions fetch.
	started := make(chan error, 1)
	go func() { started <- v.Start(context.Background()) }()
	require.Eventually(t, func() bool { return dimsCalls.Load() == 2 },
		time.Second, time.Millisecond)
	require.Equal(t, StateStarting, v.State())

	// A stop now has no owning session to act on. It must neither
	// disturb the start in flight nor open the door for another one.
	v.Stop()
	assert.Equal(t, StateStarting, v.State())
	assert.NoError(t, v.Start(context.Background()), "concurrent start is a no-op")
	assert.Equal(t, int32(2), dimsCalls.Load(), "no-op start never reaches the server")

	close(release)
	require.NoError(t, <-started)
	assert.Equal(t, StateStreaming, v.State())
	assert.Equal(t, int32(1), peak.Load(), "at most one stream connection at a time")

	v.Stop()
	assert.NoError(t, v.Wait())
	assert.Equal(t, StateStopped, v.State())
}

func TestClient_DimensionsOK(t *testing.T) {
	srv := testServer(t, func(http.ResponseWriter, *http.Request) {})

	dims, err := NewClient(srv.URL).Dimensions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, core.Dimensions{Width: 32, Height: 24}, dims)
}

func TestClient_OpenCancellation(t *testing.T) {
	srv := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.(http.Flusher).Flush()
		<-r.Context().Done()
	})

	ctx, cancel := context.WithCancel(context.Background())
	body, err := NewClient(srv.URL).Open(ctx)
	require.NoError(t, err)
	defer body.Close()

	cancel()
	_, err = body.Read(make([]byte, 1))
	assert.Error(t, err, "cancelled read surfaces as an error distinct from EOF")
}
