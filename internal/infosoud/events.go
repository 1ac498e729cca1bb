// Package infosoud talks to the public infosoud.justice.cz search
// interface: it derives the canonical lookup URL for a case and extracts
// the proceeding timeline from the returned HTML page.
package infosoud

// DefaultBaseURL is the public infosoud search endpoint.
const DefaultBaseURL = "https://infosoud.justice.cz/InfoSoud/public/search.do"

// TimelinePrefix namespaces timeline columns in the checkpoint so they
// cannot collide with passthrough columns from the decisions export.
const TimelinePrefix = "timeline_"

// Events lists the proceeding events worth keeping, in the order their
// columns appear in the checkpoint. This slice is the single source of
// truth: the HTML filter, the fetch-failure fallback and the checkpoint
// column set all derive from it.
var Events = []string{
	"Zahájení řízení",
	"Nařízení jednání",
	"Vydání rozhodnutí",
	"Vyřízení věci",
	"Datum pravomocného ukončení věci",
	"Skončení věci",
}

var eventSet = func() map[string]struct{} {
	s := make(map[string]struct{}, len(Events))
	for _, e := range Events {
		s[e] = struct{}{}
	}
	return s
}()

// Timeline maps an event name to its date string. A missing key means
// the event has not happened (or was not published) yet; partial
// timelines are normal.
type Timeline map[string]string

// ImportantEvent reports whether an event name is in the allow-list.
func ImportantEvent(name string) bool {
	_, ok := eventSet[name]
	return ok
}

// NullTimeline returns a timeline with every allow-listed event mapped
// to an empty date. Used as the substitute when a fetch fails so the
// case still gets a checkpoint row with the full column set.
func NullTimeline() Timeline {
	t := make(Timeline, len(Events))
	for _, e := range Events {
		t[e] = ""
	}
	return t
}

// TimelineColumns returns the checkpoint column names for all events,
// in Events order.
func TimelineColumns() []string {
	cols := make([]string, len(Events))
	for i, e := range Events {
		cols[i] = TimelinePrefix + e
	}
	return cols
}
