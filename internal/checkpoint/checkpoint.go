// Package checkpoint persists enrichment progress as a CSV table keyed
// by lookup URL. The file is the only durable state of the pipeline:
// a row per enriched case, rewritten wholesale on every chunk commit so
// an interrupted run always leaves the previous state intact.
package checkpoint

import (
	"errors"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"

	"github.com/mkadlec/infosoud/internal/cases"
)

// Key is the checkpoint's primary-key column.
const Key = cases.ColLookupURL

// Store is a handle on the checkpoint file. A missing file is a valid
// state meaning no work has been committed yet.
type Store struct {
	path string
}

// New creates a Store for the given checkpoint path.
func New(path string) *Store {
	return &Store{path: path}
}

// Path returns the checkpoint file path.
func (s *Store) Path() string {
	return s.path
}

// Exists reports whether the checkpoint file is present.
func (s *Store) Exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

// load reads the checkpoint table, or returns (nil, nil) when the file
// does not exist.
func (s *Store) load() (*cases.Table, error) {
	if _, err := os.Stat(s.path); errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	return cases.Load(s.path)
}

// Deduplicate drops rows with a repeated lookup URL, keeping the first
// occurrence, and rewrites the file only when something was removed.
// A missing checkpoint is a no-op. Running it twice yields the same
// file as running it once.
func (s *Store) Deduplicate() (int, error) {
	table, err := s.load()
	if err != nil || table == nil {
		return 0, err
	}

	deduped := cases.NewTable(table.Header())
	seen := make(map[string]struct{}, table.Len())
	removed := 0
	for i := 0; i < table.Len(); i++ {
		url := table.Value(i, Key)
		if url != "" {
			if _, dup := seen[url]; dup {
				removed++
				continue
			}
			seen[url] = struct{}{}
		}
		deduped.Append(table.Row(i))
	}

	if removed == 0 {
		return 0, nil
	}
	log.Printf("Removed %d duplicate rows from checkpoint", removed)
	return removed, s.writeAtomic(deduped)
}

// Validate checks the checkpoint against the current case table: every
// stored URL must exist in caseURLs and no URL may repeat. Violations
// are fatal for the run, so the error names the offending keys. A
// missing checkpoint passes trivially.
func (s *Store) Validate(caseURLs map[string]struct{}) error {
	table, err := s.load()
	if err != nil {
		return err
	}
	if table == nil {
		log.Printf("No checkpoint found, skipping validation")
		return nil
	}

	var foreign, duplicated []string
	seen := make(map[string]struct{}, table.Len())
	for i := 0; i < table.Len(); i++ {
		url := table.Value(i, Key)
		if url == "" {
			continue
		}
		if _, ok := caseURLs[url]; !ok {
			foreign = append(foreign, url)
		}
		if _, dup := seen[url]; dup {
			duplicated = append(duplicated, url)
		}
		seen[url] = struct{}{}
	}

	if len(foreign) > 0 {
		sort.Strings(foreign)
		return fmt.Errorf("checkpoint has %d URLs not present in the case table: %s",
			len(foreign), strings.Join(foreign, ", "))
	}
	if len(duplicated) > 0 {
		sort.Strings(duplicated)
		return fmt.Errorf("checkpoint has duplicate entries for: %s",
			strings.Join(duplicated, ", "))
	}

	log.Printf("Checkpoint OK: %d valid entries", table.Len())
	return nil
}

// DoneSet returns the set of lookup URLs already in the checkpoint.
// Empty when the file is missing or lacks the key column.
func (s *Store) DoneSet() (map[string]struct{}, error) {
	table, err := s.load()
	if err != nil {
		return nil, err
	}
	if table == nil || !table.HasColumn(Key) {
		return map[string]struct{}{}, nil
	}
	return table.URLSet(), nil
}

// Commit merges a processed chunk into the checkpoint and rewrites it
// atomically. On a key conflict the chunk's row wins, replacing
// whatever the store held for that URL.
func (s *Store) Commit(chunk *cases.Table) error {
	existing, err := s.load()
	if err != nil {
		return err
	}
	if existing == nil {
		return s.writeAtomic(chunk)
	}
	return s.writeAtomic(merge(existing, chunk))
}

// merge concatenates existing and chunk rows over the union of their
// headers and deduplicates by key with the last occurrence winning.
// Rows without a key value are carried through untouched.
func merge(existing, chunk *cases.Table) *cases.Table {
	header := append([]string(nil), existing.Header()...)
	have := make(map[string]struct{}, len(header))
	for _, col := range header {
		have[col] = struct{}{}
	}
	for _, col := range chunk.Header() {
		if _, ok := have[col]; !ok {
			header = append(header, col)
			have[col] = struct{}{}
		}
	}

	type keyed struct {
		url string
		row []string
	}
	var order []keyed
	position := make(map[string]int)

	add := func(t *cases.Table) {
		for i := 0; i < t.Len(); i++ {
			row := make([]string, len(header))
			for j, col := range header {
				row[j] = t.Value(i, col)
			}
			url := t.Value(i, Key)
			if url == "" {
				order = append(order, keyed{url: url, row: row})
				continue
			}
			if p, ok := position[url]; ok {
				order[p].row = row
				continue
			}
			position[url] = len(order)
			order = append(order, keyed{url: url, row: row})
		}
	}
	add(existing)
	add(chunk)

	merged := cases.NewTable(header)
	for _, k := range order {
		merged.Append(k.row)
	}
	return merged
}

// writeAtomic writes the table to a sibling temp file and renames it
// over the checkpoint, so a crash mid-write never clobbers the last
// committed state.
func (s *Store) writeAtomic(table *cases.Table) error {
	tmp := s.path + ".tmp"
	if err := table.Write(tmp); err != nil {
		return err
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replacing checkpoint: %w", err)
	}
	return nil
}
