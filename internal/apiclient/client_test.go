package apiclient

import (
	"context"
	"errors"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/theirongolddev/proforma/internal/daemon"
	"github.com/theirongolddev/proforma/internal/engine"
	"github.com/theirongolddev/proforma/internal/store"
)

func newServer(t *testing.T, withLedger bool) *Client {
	t.Helper()
	cfg := daemon.Config{Options: engine.Options{Months: 4, Quarters: 0}}
	if withLedger {
		ledger, err := store.Open(filepath.Join(t.TempDir(), "runs.db"))
		if err != nil {
			t.Fatal(err)
		}
		t.Cleanup(func() { _ = ledger.Close() })
		cfg.Ledger = ledger
	}
	srv := httptest.NewServer(daemon.New(cfg).Handler())
	t.Cleanup(srv.Close)
	return NewClient(srv.URL)
}

func TestNewClient(t *testing.T) {
	if NewClient("  ") != nil {
		t.Error("empty addr should give nil client")
	}
	if c := NewClient("127.0.0.1:8788/"); c.baseURL != "http://127.0.0.1:8788" {
		t.Errorf("baseURL = %q", c.baseURL)
	}
}

func TestProjectAndRuns(t *testing.T) {
	c := newServer(t, true)
	ctx := context.Background()

	resp, err := c.Project(ctx, daemon.ProjectRequest{Source: "client-test", Inputs: engine.DefaultInputs()})
	if err != nil {
		t.Fatalf("Project: %v", err)
	}
	if resp.Status != "Success!" || resp.Result.Len() != 4 || resp.RunID == "" {
		t.Fatalf("resp = %+v", resp)
	}

	runs, err := c.Runs(ctx, 5)
	if err != nil || len(runs) != 1 || runs[0].Source != "client-test" {
		t.Fatalf("Runs = %+v, %v", runs, err)
	}
	run, err := c.Run(ctx, resp.RunID)
	if err != nil || run.Result == nil || run.EndingCash != resp.EndingCash {
		t.Fatalf("Run = %+v, %v", run, err)
	}
	if _, err := c.Run(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing run err = %v", err)
	}

	st, err := c.Status(ctx)
	if err != nil || st.Summary.Runs != 1 || !st.LedgerEnabled {
		t.Errorf("Status = %+v, %v", st, err)
	}
}

func TestProjectInvalid(t *testing.T) {
	c := newServer(t, false)
	in := engine.DefaultInputs()
	in[engine.KeyOperatorCAC] = 0.0

	_, err := c.Project(context.Background(), daemon.ProjectRequest{Inputs: in})
	var apiErr *Error
	if !errors.As(err, &apiErr) || !apiErr.Invalid() {
		t.Fatalf("err = %v, want 422 *Error", err)
	}
	if !strings.Contains(apiErr.Message, engine.KeyOperatorCAC) || len(apiErr.Problems) == 0 {
		t.Errorf("error = %q problems=%v", apiErr.Message, apiErr.Problems)
	}

	if _, err := c.Runs(context.Background(), 1); !errors.Is(err, ErrNotFound) {
		t.Errorf("runs without ledger err = %v", err)
	}
}
