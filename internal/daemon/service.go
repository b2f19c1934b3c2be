// Package daemon provides the long-running projection service and its HTTP API.
package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/theirongolddev/proforma/internal/engine"
	"github.com/theirongolddev/proforma/internal/store"
)

// Config controls the daemon runtime behavior.
type Config struct {
	Addr         string
	EventsBuffer int
	Options      engine.Options // defaults for requests that omit a horizon
	Ledger       *store.Ledger  // optional; nil disables run history
}

// Snapshot is the compact service state carried in status and events.
type Snapshot struct {
	At             time.Time `json:"at"`
	Runs           int       `json:"runs"`
	Failures       int       `json:"failures"`
	LastSource     string    `json:"last_source,omitempty"`
	LastStatus     string    `json:"last_status,omitempty"`
	LastEndingCash float64   `json:"last_ending_cash"`
}

// Delta captures the change a run made to the snapshot.
type Delta struct {
	Runs       int     `json:"runs"`
	Failures   int     `json:"failures"`
	EndingCash float64 `json:"ending_cash"`
}

// Event is emitted for every projection served.
type Event struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	RunID     string    `json:"run_id,omitempty"`
	Snapshot  Snapshot  `json:"snapshot"`
	Delta     Delta     `json:"delta"`
}

// Event types.
const (
	EventSnapshot  = "snapshot"
	EventRun       = "run"
	EventRunFailed = "run_failed"
)

// Status is served at /v1/status.
type Status struct {
	StartedAt       time.Time `json:"started_at"`
	Horizon         string    `json:"horizon"`
	LedgerEnabled   bool      `json:"ledger_enabled"`
	Summary         Snapshot  `json:"summary"`
	LastError       string    `json:"last_error,omitempty"`
	EventCount      int       `json:"event_count"`
	SubscriberCount int       `json:"subscriber_count"`
}

// Service provides the daemon runtime and HTTP API.
type Service struct {
	cfg Config

	mu          sync.RWMutex
	startedAt   time.Time
	lastError   string
	snapshot    Snapshot
	nextEventID int64
	events      []Event

	nextSubID int
	subs      map[int]chan Event
}

// New returns a new daemon service with the provided config.
func New(cfg Config) *Service {
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8788"
	}
	if cfg.Options.Periods() == 0 {
		cfg.Options = engine.DefaultOptions()
	}

	return &Service{
		cfg:       cfg,
		startedAt: time.Now(),
		subs:      make(map[int]chan Event),
	}
}

// Handler returns the HTTP API.
func (s *Service) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /v1/status", s.handleStatus)
	mux.HandleFunc("POST /v1/project", s.handleProject)
	mux.HandleFunc("GET /v1/runs", s.handleRuns)
	mux.HandleFunc("GET /v1/runs/{id}", s.handleRun)
	mux.HandleFunc("GET /v1/events", s.handleEvents)
	mux.HandleFunc("GET /v1/stream", s.handleStream)
	return mux
}

// Run serves the HTTP API until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	log.Printf("proforma serve: listening on %s (horizon %s)", s.cfg.Addr, s.cfg.Options)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		return fmt.Errorf("daemon http server: %w", err)
	}
}

// ProjectRequest is the POST /v1/project body. Horizon fields left unset
// fall back to the service defaults.
type ProjectRequest struct {
	Source        string        `json:"source,omitempty"`
	Inputs        engine.Inputs `json:"inputs"`
	Months        *int          `json:"months,omitempty"`
	Quarters      *int          `json:"quarters,omitempty"`
	FundingPolicy string        `json:"funding_policy,omitempty"`
}

// ProjectResponse is the successful POST /v1/project body.
type ProjectResponse struct {
	RunID         string         `json:"run_id,omitempty"`
	Status        string         `json:"status"`
	EndingCash    float64        `json:"ending_cash"`
	MinCash       float64        `json:"min_cash"`
	MinCashPeriod string         `json:"min_cash_period"`
	Result        *engine.Result `json:"result"`
}

// ErrorResponse carries a failure message verbatim.
type ErrorResponse struct {
	Status   string           `json:"status,omitempty"`
	Error    string           `json:"error"`
	Problems []engine.Problem `json:"problems,omitempty"`
}

func (s *Service) options(req ProjectRequest) (engine.Options, error) {
	opts := s.cfg.Options
	if req.Months != nil {
		opts.Months = *req.Months
	}
	if req.Quarters != nil {
		opts.Quarters = *req.Quarters
	}
	if req.FundingPolicy != "" {
		policy, err := engine.ParseFundingPolicy(req.FundingPolicy)
		if err != nil {
			return opts, err
		}
		opts.Funding = policy
	}
	return opts, nil
}

func (s *Service) handleProject(w http.ResponseWriter, r *http.Request) {
	var req ProjectRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: fmt.Sprintf("decoding request: %v", err)})
		return
	}
	if req.Source == "" {
		req.Source = "api"
	}
	opts, err := s.options(req)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	var fingerprint string
	result, err := func() (*engine.Result, error) {
		a, err := engine.Parse(req.Inputs)
		if err != nil {
			return nil, err
		}
		fingerprint = engine.Fingerprint(a, opts)
		return engine.Compute(a, opts)
	}()

	runID := s.record(req.Source, fingerprint, result, err)

	if err != nil {
		resp := ErrorResponse{Status: "ERROR: " + err.Error(), Error: err.Error()}
		var invalid *engine.InvalidAssumptionsError
		if errors.As(err, &invalid) {
			resp.Problems = invalid.Problems
		}
		writeJSON(w, http.StatusUnprocessableEntity, resp)
		return
	}

	minCash, minPeriod := result.MinCash()
	writeJSON(w, http.StatusOK, ProjectResponse{
		RunID:         runID,
		Status:        "Success!",
		EndingCash:    result.FinalCash(),
		MinCash:       minCash,
		MinCashPeriod: minPeriod,
		Result:        result,
	})
}

// record stores the run in the ledger when one is configured and publishes
// the resulting event. It returns the run ID, or "" without a ledger.
func (s *Service) record(source, fingerprint string, result *engine.Result, projErr error) string {
	run := store.NewRun(source, fingerprint, result, projErr)
	if s.cfg.Ledger != nil {
		if err := s.cfg.Ledger.SaveRun(&run); err != nil {
			log.Printf("proforma serve: saving run: %v", err)
			s.mu.Lock()
			s.lastError = err.Error()
			s.mu.Unlock()
			run.ID = ""
		}
	}

	now := time.Now()
	s.mu.Lock()
	prev := s.snapshot
	next := prev
	next.At = now
	next.Runs++
	next.LastSource = source
	evType := EventRun
	if projErr != nil {
		next.Failures++
		next.LastStatus = "ERROR: " + projErr.Error()
		evType = EventRunFailed
	} else {
		next.LastStatus = "Success!"
		next.LastEndingCash = result.FinalCash()
	}
	s.snapshot = next
	s.nextEventID++
	ev := Event{
		ID:        s.nextEventID,
		Type:      evType,
		Timestamp: now,
		RunID:     run.ID,
		Snapshot:  next,
		Delta:     diffSnapshots(prev, next),
	}
	s.mu.Unlock()

	s.publishEvent(ev)
	return run.ID
}

func diffSnapshots(prev, curr Snapshot) Delta {
	return Delta{
		Runs:       curr.Runs - prev.Runs,
		Failures:   curr.Failures - prev.Failures,
		EndingCash: curr.LastEndingCash - prev.LastEndingCash,
	}
}

func (s *Service) publishEvent(ev Event) {
	s.mu.Lock()
	s.events = append(s.events, ev)
	if len(s.events) > s.cfg.EventsBuffer {
		s.events = s.events[len(s.events)-s.cfg.EventsBuffer:]
	}

	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	s.mu.Unlock()
}

func (s *Service) snapshotStatus() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Status{
		StartedAt:       s.startedAt,
		Horizon:         s.cfg.Options.String(),
		LedgerEnabled:   s.cfg.Ledger != nil,
		Summary:         s.snapshot,
		LastError:       s.lastError,
		EventCount:      len(s.events),
		SubscriberCount: len(s.subs),
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Service) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.snapshotStatus())
}

func (s *Service) handleRuns(w http.ResponseWriter, r *http.Request) {
	if s.cfg.Ledger == nil {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "run ledger disabled"})
		return
	}
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: fmt.Sprintf("invalid limit %q", v)})
			return
		}
		limit = n
	}
	runs, err := s.cfg.Ledger.LatestRuns(limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	if runs == nil {
		runs = []store.Run{}
	}
	writeJSON(w, http.StatusOK, runs)
}

func (s *Service) handleRun(w http.ResponseWriter, r *http.Request) {
	if s.cfg.Ledger == nil {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "run ledger disabled"})
		return
	}
	run, ok, err := s.cfg.Ledger.RunByID(r.PathValue("id"))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	if !ok {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "no such run"})
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (s *Service) handleEvents(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	events := make([]Event, len(s.events))
	copy(events, s.events)
	s.mu.RUnlock()

	writeJSON(w, http.StatusOK, events)
}

func (s *Service) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := make(chan Event, 16)
	id := s.addSubscriber(ch)
	defer s.removeSubscriber(id)

	// Send current snapshot immediately.
	current := Event{
		Type:      EventSnapshot,
		Timestamp: time.Now(),
		Snapshot:  s.snapshotStatus().Summary,
	}
	writeSSE(w, current)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-ch:
			writeSSE(w, ev)
			flusher.Flush()
		}
	}
}

func writeSSE(w http.ResponseWriter, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	_, _ = fmt.Fprintf(w, "event: %s\n", ev.Type)
	_, _ = fmt.Fprintf(w, "data: %s\n\n", data)
}

func (s *Service) addSubscriber(ch chan Event) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSubID++
	id := s.nextSubID
	s.subs[id] = ch
	return id
}

func (s *Service) removeSubscriber(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, id)
}
