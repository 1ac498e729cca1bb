package report

import (
	"strings"
	"testing"

	"github.com/mkadlec/infosoud/internal/cases"
	"github.com/mkadlec/infosoud/internal/database"
	"github.com/mkadlec/infosoud/internal/infosoud"
)

func fixtureTables() (table, stored *cases.Table) {
	table = cases.NewTable([]string{cases.ColCourt, cases.ColLookupURL})
	table.Append([]string{"Soud A", "u1"})
	table.Append([]string{"Soud A", "u2"})
	table.Append([]string{"Soud B", "u3"})

	col := infosoud.TimelinePrefix + "Zahájení řízení"
	stored = cases.NewTable([]string{cases.ColCourt, cases.ColLookupURL, col})
	stored.Append([]string{"Soud A", "u1", "01.01.2020"})
	stored.Append([]string{"Soud B", "u3", ""})
	return table, stored
}

func TestComputeCoverage(t *testing.T) {
	table, stored := fixtureTables()

	cov := Compute(table, stored, nil)

	if cov.TotalCases != 3 || cov.DoneCases != 2 {
		t.Errorf("unexpected totals: %+v", cov)
	}
	if cov.EventFill["Zahájení řízení"] != 1 {
		t.Errorf("expected 1 filled event, got %d", cov.EventFill["Zahájení řízení"])
	}

	if len(cov.Courts) != 2 {
		t.Fatalf("expected 2 courts, got %d", len(cov.Courts))
	}
	// Soud A has more cases, so it sorts first.
	if cov.Courts[0].Court != "Soud A" || cov.Courts[0].Done != 1 || cov.Courts[0].Total != 2 {
		t.Errorf("unexpected first court coverage: %+v", cov.Courts[0])
	}
}

func TestComputeWithoutCheckpoint(t *testing.T) {
	table, _ := fixtureTables()
	cov := Compute(table, nil, nil)
	if cov.DoneCases != 0 {
		t.Errorf("expected 0 done cases without a checkpoint, got %d", cov.DoneCases)
	}
}

func TestMarkdownContainsCounts(t *testing.T) {
	table, stored := fixtureTables()
	runs := []database.Run{{FinishedAt: "2026-01-02 03:04:05", ChunksCommitted: 1, CasesProcessed: 2, StoppedEarly: true}}

	out := Markdown(Compute(table, stored, runs))

	for _, want := range []string{
		"2 / 3 cases enriched",
		"66.7%",
		"| Soud A | 1 | 2 |",
		"| Zahájení řízení | 1 |",
		"2026-01-02 03:04:05",
		"yes",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("markdown missing %q:\n%s", want, out)
		}
	}
}

func TestHTMLRender(t *testing.T) {
	table, stored := fixtureTables()
	html, err := HTML(Markdown(Compute(table, stored, nil)))
	if err != nil {
		t.Fatalf("failed to render HTML: %v", err)
	}
	if !strings.Contains(html, "<h1") {
		t.Errorf("expected rendered heading in HTML:\n%s", html)
	}
	if !strings.Contains(html, "<!DOCTYPE html>") {
		t.Error("expected full HTML document")
	}
}
