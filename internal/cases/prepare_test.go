package cases

import (
	"testing"

	"github.com/mkadlec/infosoud/internal/courts"
	"github.com/mkadlec/infosoud/internal/infosoud"
)

func testBuilder(t *testing.T) *infosoud.Builder {
	t.Helper()
	reg, err := courts.LoadDefault()
	if err != nil {
		t.Fatalf("failed to load court map: %v", err)
	}
	return infosoud.NewBuilder("", reg)
}

func TestPrepareFiltersAndDerivesURLs(t *testing.T) {
	in := NewTable([]string{ColCourt, ColCaseNumber, "extra"})
	in.Append([]string{"Okresní soud v Táboře", "12 C 123/2020-15", "a"})
	in.Append([]string{"Neznámý soud", "1 C 2/2020", "b"})
	in.Append([]string{"Okresní soud v Táboře", "not a case number", "c"})
	in.Append([]string{"Nejvyšší soud", "28 Cdo 1774/2022", "d"})

	out, res, err := Prepare(in, testBuilder(t))
	if err != nil {
		t.Fatalf("unexpected prepare error: %v", err)
	}

	if res.Kept != 2 || res.UnknownCourts != 1 || res.BadCaseNumber != 1 {
		t.Errorf("unexpected counts: %+v", res)
	}
	if out.Len() != 2 {
		t.Fatalf("expected 2 rows, got %d", out.Len())
	}
	if !out.HasColumn(ColLookupURL) {
		t.Fatal("expected lookup URL column on output")
	}
	if u := out.Value(0, ColLookupURL); u == "" {
		t.Error("expected derived URL on kept row")
	}
	if got := out.Value(0, "extra"); got != "a" {
		t.Errorf("passthrough column lost: got %q", got)
	}
}

func TestPrepareIdenticalInputsYieldIdenticalURLs(t *testing.T) {
	in := NewTable([]string{ColCourt, ColCaseNumber})
	in.Append([]string{"Městský soud v Brně", "5 C 77/2019"})
	in.Append([]string{"Městský soud v Brně", "5 C 77/2019"})

	out, _, err := Prepare(in, testBuilder(t))
	if err != nil {
		t.Fatalf("unexpected prepare error: %v", err)
	}
	if out.Value(0, ColLookupURL) != out.Value(1, ColLookupURL) {
		t.Error("expected byte-identical URLs for identical logical inputs")
	}
}

func TestPrepareRequiresColumns(t *testing.T) {
	noCourt := NewTable([]string{ColCaseNumber})
	if _, _, err := Prepare(noCourt, testBuilder(t)); err == nil {
		t.Error("expected error for missing court column")
	}

	noNumber := NewTable([]string{ColCourt})
	if _, _, err := Prepare(noNumber, testBuilder(t)); err == nil {
		t.Error("expected error for missing case-number column")
	}

	already := NewTable([]string{ColCourt, ColCaseNumber, ColLookupURL})
	if _, _, err := Prepare(already, testBuilder(t)); err == nil {
		t.Error("expected error when lookup URL column already present")
	}
}
