// Package metrics implements Prometheus metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// StreamBytesTotal counts raw bytes accepted by stream intake
	StreamBytesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "argus_stream_bytes_total",
			Help: "Total number of raw stream bytes received",
		},
		[]string{"session"},
	)

	// FramesParsedTotal counts frames fully parsed from the stream
	FramesParsedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "argus_frames_parsed_total",
			Help: "Total number of frames parsed from the stream",
		},
		[]string{"session"},
	)

	// FramesDroppedTotal counts frames superseded before rendering
	FramesDroppedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "argus_frames_dropped_total",
			Help: "Total number of frames superseded in the latest-frame slot before being rendered",
		},
		[]string{"session"},
	)

	// FramesRenderedTotal counts frames decoded and blitted
	FramesRenderedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "argus_frames_rendered_total",
			Help: "Total number of frames decoded and blitted to the display sink",
		},
		[]string{"session"},
	)

	// DecodeErrorsTotal counts per-frame decode failures (non-fatal)
	DecodeErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "argus_decode_errors_total",
			Help: "Total number of frames that failed image decoding",
		},
		[]string{"session"},
	)

	// BufferCompactionsTotal counts intake buffer compactions
	BufferCompactionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "argus_buffer_compactions_total",
			Help: "Total number of intake buffer compactions",
		},
		[]string{"session"},
	)

	// BufferResetsTotal counts overflow recoveries that dropped the backlog
	BufferResetsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "argus_buffer_resets_total",
			Help: "Total number of intake buffer overflow resets (bounded data loss)",
		},
		[]string{"session"},
	)

	// RenderedFPS reports frames rendered over the last reporting interval
	RenderedFPS = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "argus_rendered_fps",
			Help: "Frames rendered per second over the last reporting interval",
		},
		[]string{"session"},
	)

	// SessionStatus tracks the viewer lifecycle state
	SessionStatus = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "argus_session_status",
			Help: "Current viewer session status (0=stopped, 1=starting, 2=streaming)",
		},
	)

	// ServerClientsConnected tracks connected stream clients on the server
	ServerClientsConnected = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "argus_server_clients_connected",
			Help: "Number of clients currently attached to the frame stream",
		},
	)

	// ServerFramesSentTotal counts frames written to stream clients
	ServerFramesSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "argus_server_frames_sent_total",
			Help: "Total number of frames written to stream clients",
		},
		[]string{"client"},
	)
)

// SessionStatus gauge values
const (
	SessionStopped   = 0
	SessionStarting  = 1
	SessionStreaming = 2
)
