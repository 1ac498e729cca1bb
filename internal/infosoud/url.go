package infosoud

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/mkadlec/infosoud/internal/caseid"
	"github.com/mkadlec/infosoud/internal/courts"
)

// Builder constructs canonical infosoud search URLs. The URL doubles as
// the checkpoint key, so construction must be deterministic down to the
// byte: identical (court, case id) inputs always yield identical URLs.
type Builder struct {
	BaseURL string
	Courts  *courts.Registry
}

// NewBuilder creates a Builder against the given registry. An empty
// baseURL falls back to the public endpoint.
func NewBuilder(baseURL string, reg *courts.Registry) *Builder {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Builder{BaseURL: baseURL, Courts: reg}
}

// SearchURL returns the lookup URL for one case, or "" when the case id
// is nil, the court name is unknown, or the descriptor carries no
// court-type code.
func (b *Builder) SearchURL(courtName string, id *caseid.ID) string {
	if id == nil {
		return ""
	}
	court, ok := b.Courts.Lookup(courtName)
	if !ok || court.TypSoudu == "" {
		return ""
	}

	// Parameter order is part of the contract; url.Values.Encode sorts
	// keys, so the query is assembled from an ordered pair slice.
	params := [][2]string{
		{"type", "spzn"},
		{"typSoudu", court.TypSoudu},
		{"cisloSenatu", strconv.Itoa(id.Senate)},
		{"druhVec", id.Matter},
		{"bcVec", strconv.Itoa(id.Sequence)},
		{"rocnik", strconv.Itoa(id.Year)},
		{"spamQuestion", "23"},
		{"agendaNc", "CIVIL"},
	}
	if court.KrajOrg != "" {
		params = append(params, [2]string{"krajOrg", court.KrajOrg})
	}
	if court.Org != "" {
		params = append(params, [2]string{"org", court.Org})
	}

	var q strings.Builder
	for i, p := range params {
		if i > 0 {
			q.WriteByte('&')
		}
		q.WriteString(url.QueryEscape(p[0]))
		q.WriteByte('=')
		q.WriteString(url.QueryEscape(p[1]))
	}
	return b.BaseURL + "?" + q.String()
}
