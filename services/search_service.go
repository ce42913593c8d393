package services

import (
	"context"
	"strings"

	"github.com/NightSight1044/legalCRM1/models"
	"gorm.io/gorm"
)

const (
	defaultSearchLimit = 10
	maxSearchLimit     = 50
)

// SearchResult is one hit of the firm-wide search
type SearchResult struct {
	Type     string `json:"type"` // "client", "case" or "document"
	ID       string `json:"id"`
	Title    string `json:"title"`
	Subtitle string `json:"subtitle,omitempty"`
}

// Search looks for query in client names, case numbers and titles, and
// document names. Each kind contributes at most limit hits.
func Search(ctx context.Context, t *Tenant, query string, limit int) ([]SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []SearchResult{}, nil
	}
	if limit <= 0 || limit > maxSearchLimit {
		limit = defaultSearchLimit
	}
	pattern := "%" + escapeLike(query) + "%"

	clients, err := findScoped[models.Client](ctx, t, func(q *gorm.DB) *gorm.DB {
		return q.Where("full_name LIKE ? ESCAPE '\\' OR company_name LIKE ? ESCAPE '\\' OR email LIKE ? ESCAPE '\\'", pattern, pattern, pattern).
			Order("created_at DESC").Limit(limit)
	})
	if err != nil {
		return nil, err
	}
	cases, err := findScoped[models.Case](ctx, t, func(q *gorm.DB) *gorm.DB {
		return q.Where("case_number LIKE ? ESCAPE '\\' OR title LIKE ? ESCAPE '\\'", pattern, pattern).
			Order("created_at DESC").Limit(limit)
	})
	if err != nil {
		return nil, err
	}
	docs, err := findScoped[models.Document](ctx, t, func(q *gorm.DB) *gorm.DB {
		return q.Where("name LIKE ? ESCAPE '\\'", pattern).
			Order("created_at DESC").Limit(limit)
	})
	if err != nil {
		return nil, err
	}

	results := make([]SearchResult, 0, len(clients)+len(cases)+len(docs))
	for i := range clients {
		results = append(results, SearchResult{Type: "client", ID: clients[i].ID, Title: clients[i].DisplayName(), Subtitle: clients[i].Email})
	}
	for _, c := range cases {
		results = append(results, SearchResult{Type: "case", ID: c.ID, Title: c.Title, Subtitle: c.CaseNumber})
	}
	for _, d := range docs {
		results = append(results, SearchResult{Type: "document", ID: d.ID, Title: d.Name, Subtitle: d.Type})
	}
	return results, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
