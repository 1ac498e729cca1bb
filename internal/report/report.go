// Package report summarizes enrichment progress: how much of the case
// table is covered by the checkpoint, how complete the extracted
// timelines are, and what the recent runs did.
package report

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/yuin/goldmark"

	"github.com/mkadlec/infosoud/internal/cases"
	"github.com/mkadlec/infosoud/internal/database"
	"github.com/mkadlec/infosoud/internal/infosoud"
)

var md = goldmark.New()

// CourtCoverage counts enriched cases for one court.
type CourtCoverage struct {
	Court string
	Total int
	Done  int
}

// Coverage is the computed progress summary.
type Coverage struct {
	TotalCases int
	DoneCases  int
	Courts     []CourtCoverage
	// EventFill maps each allow-listed event to the number of enriched
	// cases with a non-empty date for it.
	EventFill map[string]int
	Runs      []database.Run
}

// Compute builds a Coverage from the case table and the checkpoint
// contents. stored may be nil when no checkpoint exists yet; runs may
// be nil when run history is unavailable.
func Compute(table, stored *cases.Table, runs []database.Run) *Coverage {
	cov := &Coverage{
		TotalCases: table.Len(),
		EventFill:  make(map[string]int, len(infosoud.Events)),
		Runs:       runs,
	}

	done := map[string]struct{}{}
	if stored != nil {
		done = stored.URLSet()
		cov.DoneCases = len(done)
		for i := 0; i < stored.Len(); i++ {
			for _, event := range infosoud.Events {
				if stored.Value(i, infosoud.TimelinePrefix+event) != "" {
					cov.EventFill[event]++
				}
			}
		}
	}

	byCourt := make(map[string]*CourtCoverage)
	for i := 0; i < table.Len(); i++ {
		court := table.Value(i, cases.ColCourt)
		cc, ok := byCourt[court]
		if !ok {
			cc = &CourtCoverage{Court: court}
			byCourt[court] = cc
		}
		cc.Total++
		if _, ok := done[table.Value(i, cases.ColLookupURL)]; ok {
			cc.Done++
		}
	}
	for _, cc := range byCourt {
		cov.Courts = append(cov.Courts, *cc)
	}
	sort.Slice(cov.Courts, func(i, j int) bool {
		if cov.Courts[i].Total != cov.Courts[j].Total {
			return cov.Courts[i].Total > cov.Courts[j].Total
		}
		return cov.Courts[i].Court < cov.Courts[j].Court
	})

	return cov
}

// Markdown renders the coverage summary as a markdown document.
func Markdown(cov *Coverage) string {
	var b strings.Builder

	b.WriteString("# Infosoud enrichment progress\n\n")
	fmt.Fprintf(&b, "**%d / %d cases enriched (%s)**\n\n",
		cov.DoneCases, cov.TotalCases, percent(cov.DoneCases, cov.TotalCases))

	b.WriteString("## Coverage by court\n\n")
	b.WriteString("| Court | Done | Total |\n|---|---:|---:|\n")
	for _, cc := range cov.Courts {
		fmt.Fprintf(&b, "| %s | %d | %d |\n", cc.Court, cc.Done, cc.Total)
	}

	b.WriteString("\n## Timeline completeness\n\n")
	b.WriteString("| Event | Cases with date |\n|---|---:|\n")
	for _, event := range infosoud.Events {
		fmt.Fprintf(&b, "| %s | %d |\n", event, cov.EventFill[event])
	}

	if len(cov.Runs) > 0 {
		b.WriteString("\n## Recent runs\n\n")
		b.WriteString("| Finished | Chunks | Cases | Failures | Stopped early |\n|---|---:|---:|---:|---|\n")
		for _, r := range cov.Runs {
			stopped := "no"
			if r.StoppedEarly {
				stopped = "yes"
			}
			fmt.Fprintf(&b, "| %s | %d | %d | %d | %s |\n",
				r.FinishedAt, r.ChunksCommitted, r.CasesProcessed, r.FetchFailures, stopped)
		}
	}

	return b.String()
}

const htmlShell = `<!DOCTYPE html>
<html lang="cs">
<head>
<meta charset="utf-8">
<title>Infosoud enrichment progress</title>
</head>
<body>
%s</body>
</html>
`

// HTML renders the markdown report into a standalone HTML page.
func HTML(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("rendering markdown: %w", err)
	}
	return fmt.Sprintf(htmlShell, buf.String()), nil
}

func percent(done, total int) string {
	if total == 0 {
		return "0.0%"
	}
	return fmt.Sprintf("%.1f%%", 100*float64(done)/float64(total))
}
