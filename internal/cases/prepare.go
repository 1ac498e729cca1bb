package cases

import (
	"fmt"
	"log"

	"github.com/mkadlec/infosoud/internal/caseid"
	"github.com/mkadlec/infosoud/internal/infosoud"
)

// PrepareResult counts what the preparation step kept and dropped.
type PrepareResult struct {
	Kept          int
	UnknownCourts int
	BadCaseNumber int
}

// Prepare turns a raw decisions export into the enrichment case table:
// rows with unknown courts or unparsable case numbers are dropped and
// the canonical lookup URL is appended as a new column. The input table
// must carry the court and case-number columns.
func Prepare(in *Table, builder *infosoud.Builder) (*Table, *PrepareResult, error) {
	if !in.HasColumn(ColCourt) {
		return nil, nil, fmt.Errorf("input table has no %q column", ColCourt)
	}
	if !in.HasColumn(ColCaseNumber) {
		return nil, nil, fmt.Errorf("input table has no %q column", ColCaseNumber)
	}
	if in.HasColumn(ColLookupURL) {
		return nil, nil, fmt.Errorf("input table already has a %q column", ColLookupURL)
	}

	out := NewTable(append(append([]string(nil), in.Header()...), ColLookupURL))
	res := &PrepareResult{}

	for i := 0; i < in.Len(); i++ {
		id := caseid.Parse(in.Value(i, ColCaseNumber))
		if id == nil {
			res.BadCaseNumber++
			continue
		}
		url := builder.SearchURL(in.Value(i, ColCourt), id)
		if url == "" {
			res.UnknownCourts++
			continue
		}
		out.Append(append(append([]string(nil), in.Row(i)...), url))
		res.Kept++
	}

	if res.UnknownCourts > 0 {
		log.Printf("Filtered out %d decisions with unknown or missing court names", res.UnknownCourts)
	}
	if res.BadCaseNumber > 0 {
		log.Printf("Filtered out %d rows with invalid case numbers", res.BadCaseNumber)
	}

	return out, res, nil
}
