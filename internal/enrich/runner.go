// Package enrich drives the checkpointed enrichment loop: select the
// next chunk of pending cases, fetch their timelines, commit the chunk,
// repeat. The loop is resumable — progress lives in the checkpoint
// store, so a restarted process picks up exactly where the last commit
// left off.
package enrich

import (
	"context"
	"log"
	"time"

	"github.com/mkadlec/infosoud/internal/cases"
	"github.com/mkadlec/infosoud/internal/checkpoint"
	"github.com/mkadlec/infosoud/internal/database"
	"github.com/mkadlec/infosoud/internal/infosoud"
)

// DefaultChunkSize is how many cases are fetched between commits.
const DefaultChunkSize = 50

// Fetcher retrieves one case's timeline. Implemented by infosoud.Client.
type Fetcher interface {
	FetchTimeline(ctx context.Context, url string) (infosoud.Timeline, error)
}

// Runner owns one enrichment run over a prepared case table.
type Runner struct {
	Table     *cases.Table
	Store     *checkpoint.Store
	Fetcher   Fetcher
	ChunkSize int
	Stop      *StopFlag    // optional; nil means no external stop
	History   *database.DB // optional; records the run when set
}

// Result summarizes a finished run.
type Result struct {
	Chunks    int
	Processed int
	Failed    int
	Stopped   bool
}

// Run validates the checkpoint and then processes pending cases chunk
// by chunk until the table is exhausted or a stop is requested. The
// stop flag and ctx are consulted only between chunks, never mid-chunk,
// so every committed chunk is complete.
//
// The done-set is re-read from the store on every iteration rather than
// cached: the checkpoint file may be edited by hand between runs, and
// the freshly loaded set is what makes such edits take effect.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	chunkSize := r.ChunkSize
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	if _, err := r.Store.Deduplicate(); err != nil {
		return nil, err
	}
	if err := r.Store.Validate(r.Table.URLSet()); err != nil {
		return nil, err
	}

	started := time.Now()
	result := &Result{}

	for {
		done, err := r.Store.DoneSet()
		if err != nil {
			return result, err
		}

		pending := r.Table.Pending(done, chunkSize)
		if len(pending) == 0 {
			log.Printf("All cases processed")
			break
		}

		chunk, failed := r.processChunk(ctx, pending)
		if err := r.Store.Commit(chunk); err != nil {
			return result, err
		}

		result.Chunks++
		result.Processed += len(pending)
		result.Failed += failed
		log.Printf("Committed chunk %d: %d cases (%d failed), %d/%d done overall",
			result.Chunks, len(pending), failed, len(done)+len(pending), r.Table.Len())

		if r.Stop != nil && r.Stop.Requested() {
			log.Printf("Exiting after current chunk due to user request")
			result.Stopped = true
			break
		}
		if ctx.Err() != nil {
			result.Stopped = true
			break
		}
	}

	r.recordRun(started, result)
	return result, nil
}

// processChunk fetches every case in the chunk and assembles the rows
// to commit. A failed fetch substitutes an all-empty timeline for that
// case and moves on; the case stays absent from the checkpoint only if
// the commit itself never happens.
func (r *Runner) processChunk(ctx context.Context, pending []int) (*cases.Table, int) {
	header := append(append([]string(nil), r.Table.Header()...), infosoud.TimelineColumns()...)
	chunk := cases.NewTable(header)
	failed := 0

	for k, i := range pending {
		url := r.Table.Value(i, cases.ColLookupURL)
		timeline, err := r.Fetcher.FetchTimeline(ctx, url)
		if err != nil {
			timeline = infosoud.NullTimeline()
			failed++
			log.Printf("  [%d/%d] %s %s: fetch failed: %v",
				k+1, len(pending), r.Table.Value(i, cases.ColCourt), r.Table.Value(i, cases.ColCaseNumber), err)
		} else {
			log.Printf("  [%d/%d] %s %s: %d events",
				k+1, len(pending), r.Table.Value(i, cases.ColCourt), r.Table.Value(i, cases.ColCaseNumber), len(timeline))
		}

		row := append([]string(nil), r.Table.Row(i)...)
		for _, event := range infosoud.Events {
			row = append(row, timeline[event])
		}
		chunk.Append(row)
	}

	return chunk, failed
}

func (r *Runner) recordRun(started time.Time, result *Result) {
	if r.History == nil {
		return
	}
	_, err := r.History.InsertRun(database.Run{
		StartedAt:       database.Timestamp(started),
		FinishedAt:      database.Timestamp(time.Now()),
		ChunksCommitted: result.Chunks,
		CasesProcessed:  result.Processed,
		FetchFailures:   result.Failed,
		StoppedEarly:    result.Stopped,
	})
	if err != nil {
		log.Printf("Failed to record run history: %v", err)
	}
}
