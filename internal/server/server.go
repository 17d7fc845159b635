// Package server exposes the synthesis engine over HTTP: POST
// /synthesize takes a full-context label and returns a WAV file,
// GET /voices lists the loaded voices, and GET /health reports
// liveness. There is no streaming endpoint: synthesis always runs to
// completion before the response is written.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/example/htsvoice/internal/audio"
	"github.com/example/htsvoice/internal/config"
	"github.com/example/htsvoice/internal/engine"
	"github.com/example/htsvoice/internal/label"
	"github.com/example/htsvoice/internal/voice"
)

// ParseLogLevel converts a case-insensitive level string to slog.Level.
// An empty string returns slog.LevelInfo. Unknown strings return an error.
func ParseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q (want debug|info|warn|error)", s)
	}
}

// SynthesisRequest carries per-request synthesis overrides layered on
// top of an Engine's loaded voice defaults.
type SynthesisRequest struct {
	config.SynthesisConfig
}

// Synthesizer produces WAV bytes from a full-context label sequence.
type Synthesizer interface {
	Synthesize(ctx context.Context, lbl label.Label, req SynthesisRequest) ([]byte, error)
}

// VoiceInfo describes one loaded voice for the /voices endpoint.
type VoiceInfo struct {
	Name              string `json:"name"`
	SamplingFrequency int    `json:"sampling_frequency"`
	FramePeriod       int    `json:"frame_period"`
	NumStates         int    `json:"num_states"`
}

// VoiceLister returns the set of loaded voices.
type VoiceLister interface {
	ListVoices() []VoiceInfo
}

// ---------------------------------------------------------------------------
// Functional options
// ---------------------------------------------------------------------------

type options struct {
	maxLabelBytes  int
	workers        int
	requestTimeout time.Duration
	logger         *slog.Logger
}

func defaultOptions() options {
	return options{
		maxLabelBytes:  65536,
		workers:        2,
		requestTimeout: 60 * time.Second,
		logger:         slog.Default(),
	}
}

// Option configures the HTTP handler.
type Option func(*options)

// WithMaxLabelBytes sets the maximum allowed label size in bytes for POST /synthesize.
func WithMaxLabelBytes(n int) Option {
	return func(o *options) { o.maxLabelBytes = n }
}

// WithWorkers sets the maximum number of concurrent synthesis calls.
func WithWorkers(n int) Option {
	return func(o *options) { o.workers = n }
}

// WithRequestTimeout sets the per-request synthesis deadline.
func WithRequestTimeout(d time.Duration) Option {
	return func(o *options) { o.requestTimeout = d }
}

// WithLogger sets the slog.Logger used for request logging.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// ---------------------------------------------------------------------------
// handler
// ---------------------------------------------------------------------------

// handler holds the dependencies needed to serve HTTP requests.
type handler struct {
	synth  Synthesizer
	voices VoiceLister
	opts   options
	sem    chan struct{} // semaphore for worker pool
	log    *slog.Logger
}

// NewHandler returns an http.Handler that serves /health, /voices, and POST /synthesize.
func NewHandler(synth Synthesizer, voices VoiceLister, optFns ...Option) http.Handler {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	h := &handler{
		synth:  synth,
		voices: voices,
		opts:   opts,
		log:    opts.logger,
	}
	if opts.workers > 0 {
		h.sem = make(chan struct{}, opts.workers)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", h.handleHealth)
	mux.HandleFunc("/voices", h.handleVoices)
	mux.HandleFunc("/synthesize", h.handleSynthesize)

	return mux
}

func buildVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}

	return "dev"
}

func (h *handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildVersion(),
	})
}

func (h *handler) handleVoices(w http.ResponseWriter, _ *http.Request) {
	voices := h.voices.ListVoices()
	if voices == nil {
		voices = []VoiceInfo{}
	}

	writeJSON(w, http.StatusOK, voices)
}

type synthesizeRequest struct {
	Label              string  `json:"label"`
	Speed              float64 `json:"speed"`
	Volume             float64 `json:"volume_db"`
	Alpha              float64 `json:"alpha"`
	Beta               float64 `json:"beta"`
	AdditionalHalfTone float64 `json:"additional_half_tone"`
	PhonemeAlignment   bool    `json:"phoneme_alignment"`
}

func (h *handler) handleSynthesize(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	if r.Body == nil {
		writeError(w, http.StatusBadRequest, "request body is required")
		return
	}

	var req synthesizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	if strings.TrimSpace(req.Label) == "" {
		writeError(w, http.StatusBadRequest, "label field is required")
		return
	}

	if len(req.Label) > h.opts.maxLabelBytes {
		writeError(w, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("label exceeds maximum size of %d bytes", h.opts.maxLabelBytes))

		return
	}

	lbl, err := (label.LineLoader{}).Load(strings.NewReader(req.Label))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid label: "+err.Error())
		return
	}

	// Acquire a worker slot — honour context cancellation while waiting.
	if !h.acquireWorker(r.Context(), w) {
		return
	}

	if h.sem != nil {
		defer func() { <-h.sem }()
	}

	// Apply per-request timeout.
	ctx, cancel := context.WithTimeout(r.Context(), h.opts.requestTimeout)
	defer cancel()

	synReq := SynthesisRequest{SynthesisConfig: config.SynthesisConfig{
		Speed:              req.Speed,
		Volume:             req.Volume,
		Alpha:              req.Alpha,
		Beta:               req.Beta,
		AdditionalHalfTone: req.AdditionalHalfTone,
		PhonemeAlignment:   req.PhonemeAlignment,
	}}
	if synReq.Speed == 0 {
		synReq.Speed = 1.0
	}

	start := time.Now()
	wav, err := h.synth.Synthesize(ctx, lbl, synReq)
	durationMS := time.Since(start).Milliseconds()

	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			h.log.WarnContext(r.Context(), "synthesis timed out",
				slog.Int("label_entries", len(lbl)),
				slog.Int64("duration_ms", durationMS),
				slog.String("error", err.Error()),
			)
			writeError(w, http.StatusGatewayTimeout, "synthesis timed out")

			return
		}

		h.log.ErrorContext(r.Context(), "synthesis failed",
			slog.Int("label_entries", len(lbl)),
			slog.Int64("duration_ms", durationMS),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, err.Error())

		return
	}

	h.log.InfoContext(r.Context(), "synthesis complete",
		slog.Int("label_entries", len(lbl)),
		slog.Int64("duration_ms", durationMS),
		slog.Int("wav_bytes", len(wav)),
	)

	w.Header().Set("Content-Type", "audio/wav")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(wav)
}

// acquireWorker tries to acquire a worker slot from the semaphore.
// Returns true on success. On failure (context cancelled) it writes an HTTP
// error and returns false. When sem is nil (no throttling) it returns true
// immediately.
func (h *handler) acquireWorker(ctx context.Context, w http.ResponseWriter) bool {
	if h.sem == nil {
		return true
	}

	select {
	case h.sem <- struct{}{}:
		return true
	default:
		h.log.Info("request queued for worker slot")

		select {
		case h.sem <- struct{}{}:
			return true
		case <-ctx.Done():
			writeError(w, http.StatusServiceUnavailable, "request cancelled while waiting for worker")
			return false
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		slog.Warn("encode JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// ---------------------------------------------------------------------------
// Server — wires handler into net/http.Server with graceful shutdown
// ---------------------------------------------------------------------------

// Server wires the HTTP handler into a net/http.Server with graceful shutdown.
type Server struct {
	cfg             config.Config
	set             voice.VoiceSet
	shutdownTimeout time.Duration
}

// New builds a Server from configuration and an already-loaded voice set.
func New(cfg config.Config, set voice.VoiceSet) *Server {
	return &Server{
		cfg:             cfg,
		set:             set,
		shutdownTimeout: 30 * time.Second,
	}
}

// WithShutdownTimeout overrides the graceful-shutdown drain period.
func (s *Server) WithShutdownTimeout(d time.Duration) *Server {
	s.shutdownTimeout = d
	return s
}

func (s *Server) Start(ctx context.Context) error {
	synth := &engineSynthesizer{set: s.set}
	voices := &engineVoiceLister{set: s.set}

	workers := s.cfg.Server.Workers
	if workers <= 0 {
		workers = 2
	}

	h := NewHandler(synth, voices,
		WithWorkers(workers),
		WithMaxLabelBytes(s.cfg.Server.MaxLabelBytes),
		WithRequestTimeout(time.Duration(s.cfg.Server.RequestTimeout)*time.Second),
	)

	httpServer := &http.Server{
		Addr:              s.cfg.Server.ListenAddr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)

	go func() {
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.shutdownTimeout)
		defer cancel()

		err := httpServer.Shutdown(shutdownCtx)
		if err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}

		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}

		return fmt.Errorf("http listen: %w", err)
	}
}

func ProbeHTTP(addr string) error {
	resp, err := http.Get("http://" + addr + "/health") //nolint:noctx
	if err != nil {
		return err
	}

	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected health status: %s", resp.Status)
	}

	return nil
}

// engineSynthesizer adapts engine.Engine to the Synthesizer interface,
// building a fresh Condition per request so concurrent requests with
// different speed/volume/alpha overrides never race on shared state.
type engineSynthesizer struct {
	set voice.VoiceSet
}

func (e *engineSynthesizer) Synthesize(ctx context.Context, lbl label.Label, req SynthesisRequest) ([]byte, error) {
	eng, err := engine.NewFromSet(e.set)
	if err != nil {
		return nil, err
	}
	req.ApplyTo(&eng.Condition)

	type result struct {
		samples []float64
		err     error
	}
	done := make(chan result, 1)
	go func() {
		samples, err := eng.Synthesize(lbl)
		done <- result{samples: samples, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-done:
		if r.err != nil {
			return nil, r.err
		}
		return audio.EncodeWAV(toFloat32(r.samples), eng.Condition.SamplingFrequency())
	}
}

func toFloat32(samples []float64) []float32 {
	out := make([]float32, len(samples))
	for i, s := range samples {
		out[i] = float32(s)
	}
	return out
}

type engineVoiceLister struct {
	set voice.VoiceSet
}

func (e *engineVoiceLister) ListVoices() []VoiceInfo {
	out := make([]VoiceInfo, len(e.set.Voices))
	for i, v := range e.set.Voices {
		out[i] = VoiceInfo{
			Name:              fmt.Sprintf("voice-%d", i),
			SamplingFrequency: v.SamplingFrequency,
			FramePeriod:       v.FramePeriod,
			NumStates:         v.NumStates,
		}
	}
	return out
}
