package enrich

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mkadlec/infosoud/internal/cases"
	"github.com/mkadlec/infosoud/internal/checkpoint"
	"github.com/mkadlec/infosoud/internal/infosoud"
)

type fakeFetcher struct {
	calls int
	fail  func(url string) bool
}

func (f *fakeFetcher) FetchTimeline(ctx context.Context, url string) (infosoud.Timeline, error) {
	f.calls++
	if f.fail != nil && f.fail(url) {
		return nil, errors.New("simulated network error")
	}
	return infosoud.Timeline{"Zahájení řízení": "01.01.2020"}, nil
}

func testTable(n int) *cases.Table {
	table := cases.NewTable([]string{cases.ColCourt, cases.ColCaseNumber, cases.ColLookupURL})
	for i := 0; i < n; i++ {
		table.Append([]string{
			"Okresní soud v Táboře",
			fmt.Sprintf("%d C %d/2020", i+1, i+1),
			fmt.Sprintf("http://example.test/case-%03d", i),
		})
	}
	return table
}

func newRunner(t *testing.T, table *cases.Table, fetcher Fetcher, chunkSize int) *Runner {
	t.Helper()
	return &Runner{
		Table:     table,
		Store:     checkpoint.New(filepath.Join(t.TempDir(), "checkpoint.csv")),
		Fetcher:   fetcher,
		ChunkSize: chunkSize,
	}
}

func TestRunProcessesWholeTableInChunks(t *testing.T) {
	table := testTable(120)
	fetcher := &fakeFetcher{}
	r := newRunner(t, table, fetcher, 50)

	result, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if result.Chunks != 3 {
		t.Errorf("expected 3 chunks (50+50+20), got %d", result.Chunks)
	}
	if result.Processed != 120 {
		t.Errorf("expected 120 processed, got %d", result.Processed)
	}
	if fetcher.calls != 120 {
		t.Errorf("expected 120 fetches, got %d", fetcher.calls)
	}

	done, err := r.Store.DoneSet()
	if err != nil {
		t.Fatalf("failed to read done-set: %v", err)
	}
	if len(done) != 120 {
		t.Errorf("expected 120 unique checkpoint keys, got %d", len(done))
	}
	for u := range done {
		if _, ok := table.URLSet()[u]; !ok {
			t.Errorf("checkpoint key %q not in case table", u)
		}
	}
}

func TestRunSecondInvocationIsNoOp(t *testing.T) {
	table := testTable(10)
	fetcher := &fakeFetcher{}
	r := newRunner(t, table, fetcher, 4)

	if _, err := r.Run(context.Background()); err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	calls := fetcher.calls

	result, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if result.Processed != 0 || fetcher.calls != calls {
		t.Errorf("expected no refetching of completed work, got %d processed", result.Processed)
	}
}

func TestRunFetchFailureDoesNotBlockChunk(t *testing.T) {
	table := testTable(5)
	failURL := table.Value(2, cases.ColLookupURL)
	fetcher := &fakeFetcher{fail: func(url string) bool { return url == failURL }}
	r := newRunner(t, table, fetcher, 50)

	result, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if result.Failed != 1 {
		t.Errorf("expected 1 failure, got %d", result.Failed)
	}
	if result.Processed != 5 {
		t.Errorf("expected all 5 cases committed, got %d", result.Processed)
	}

	stored, err := cases.Load(r.Store.Path())
	if err != nil {
		t.Fatalf("failed to load checkpoint: %v", err)
	}
	if stored.Len() != 5 {
		t.Fatalf("expected 5 checkpoint rows, got %d", stored.Len())
	}
	col := infosoud.TimelinePrefix + "Zahájení řízení"
	for i := 0; i < stored.Len(); i++ {
		v := stored.Value(i, col)
		if stored.Value(i, cases.ColLookupURL) == failURL {
			if v != "" {
				t.Errorf("expected empty timeline for failed case, got %q", v)
			}
		} else if v != "01.01.2020" {
			t.Errorf("expected real result for healthy case, got %q", v)
		}
	}
}

func TestRunStopsAtChunkBoundary(t *testing.T) {
	table := testTable(20)
	fetcher := &fakeFetcher{}
	r := newRunner(t, table, fetcher, 5)
	r.Stop = &StopFlag{}
	r.Stop.Request()

	result, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if !result.Stopped {
		t.Error("expected stopped result")
	}
	if result.Chunks != 1 || result.Processed != 5 {
		t.Errorf("expected exactly one full chunk before stop, got %+v", result)
	}

	// The in-flight chunk must have been committed before exiting.
	done, _ := r.Store.DoneSet()
	if len(done) != 5 {
		t.Errorf("expected 5 committed cases, got %d", len(done))
	}

	// A fresh run without the stop flag finishes the rest.
	r.Stop = nil
	result, err = r.Run(context.Background())
	if err != nil {
		t.Fatalf("resume run failed: %v", err)
	}
	if result.Processed != 15 {
		t.Errorf("expected 15 remaining cases, got %d", result.Processed)
	}
}

func TestRunRefusesCorruptCheckpoint(t *testing.T) {
	table := testTable(5)
	fetcher := &fakeFetcher{}
	r := newRunner(t, table, fetcher, 50)

	foreign := cases.NewTable([]string{cases.ColLookupURL})
	foreign.Append([]string{"http://example.test/not-in-table"})
	if err := r.Store.Commit(foreign); err != nil {
		t.Fatalf("failed to seed checkpoint: %v", err)
	}

	_, err := r.Run(context.Background())
	if err == nil {
		t.Fatal("expected run to refuse a checkpoint with foreign keys")
	}
	if fetcher.calls != 0 {
		t.Errorf("expected no fetches after validation failure, got %d", fetcher.calls)
	}
}

func TestRunToleratesExternalCheckpointEdit(t *testing.T) {
	table := testTable(6)
	fetcher := &fakeFetcher{}
	r := newRunner(t, table, fetcher, 3)

	if _, err := r.Run(context.Background()); err != nil {
		t.Fatalf("first run failed: %v", err)
	}

	// Externally drop one case from the checkpoint; it becomes due again.
	stored, err := cases.Load(r.Store.Path())
	if err != nil {
		t.Fatalf("failed to load checkpoint: %v", err)
	}
	trimmed := cases.NewTable(stored.Header())
	removed := table.Value(0, cases.ColLookupURL)
	for i := 0; i < stored.Len(); i++ {
		if stored.Value(i, cases.ColLookupURL) == removed {
			continue
		}
		trimmed.Append(stored.Row(i))
	}
	if err := trimmed.Write(r.Store.Path()); err != nil {
		t.Fatalf("failed to rewrite checkpoint: %v", err)
	}

	result, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if result.Processed != 1 {
		t.Errorf("expected the externally removed case to be refetched, got %d", result.Processed)
	}
}

func TestStopFlag(t *testing.T) {
	var f StopFlag
	if f.Requested() {
		t.Error("fresh flag must not be set")
	}
	f.Request()
	if !f.Requested() {
		t.Error("expected flag to be set after Request")
	}
}

func TestListenForQuit(t *testing.T) {
	var f StopFlag
	ListenForQuit(strings.NewReader("hello\nQ\n"), &f)
	if !f.Requested() {
		t.Error("expected 'Q' line to request stop")
	}

	var g StopFlag
	ListenForQuit(strings.NewReader("no quit here\n"), &g)
	if g.Requested() {
		t.Error("expected flag unset when input ends without 'q'")
	}
}
