package docstore

import (
	"context"
	"fmt"
	"strings"

	models "docforge/internal/domain/models/docstore"
	"docforge/internal/repository/postgres"
	svc "docforge/internal/service/docstore"
)

// reservedSearchWords are boolean operators users paste from other
// search engines; they would change the query semantics, so they are
// dropped during tokenization.
var reservedSearchWords = map[string]bool{
	"AND": true, "OR": true, "NOT": true, "NEAR": true,
}

// BuildFTSQuery turns a raw search term into a tsquery expression:
// whitespace-split tokens stripped to letters and digits, reserved
// boolean operators dropped, a prefix wildcard appended to each token,
// all AND-ed together. Returns empty when nothing searchable remains.
func BuildFTSQuery(term string) string {
	var parts []string
	for _, raw := range strings.Fields(term) {
		token := strings.Map(func(r rune) rune {
			switch {
			case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
				return r
			default:
				return -1
			}
		}, raw)
		if token == "" || reservedSearchWords[strings.ToUpper(token)] {
			continue
		}
		parts = append(parts, token+":*")
	}
	return strings.Join(parts, " & ")
}

// EscapeLikePattern escapes LIKE metacharacters (backslash, percent,
// underscore) in a literal term and wraps it in wildcards.
func EscapeLikePattern(term string) string {
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(term)
	return "%" + escaped + "%"
}

// SearchDocumentsByBody runs the ranked full-text query over titles and
// current version bodies. A failure on that path (missing index,
// malformed tsquery) silently degrades to a case-insensitive substring
// match; a failure of the fallback itself propagates.
func (r *Repository) SearchDocumentsByBody(ctx context.Context, opts models.SearchOptions) ([]models.SearchResult, error) {
	opts.ApplyDefaults()
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid search options: %w", err)
	}

	results, err := r.fullTextSearch(ctx, opts)
	if err == nil {
		return results, nil
	}

	reason := "query failed"
	if postgres.IsPgUndefinedError(err) {
		reason = "full-text path unavailable"
	}
	r.logger.Warn("falling back to substring search",
		"reason", reason, "error", err, "term", opts.Term)
	return r.substringSearch(ctx, opts)
}

func (r *Repository) fullTextSearch(ctx context.Context, opts models.SearchOptions) ([]models.SearchResult, error) {
	tsquery := BuildFTSQuery(opts.Term)
	if tsquery == "" {
		return []models.SearchResult{}, nil
	}

	query := fmt.Sprintf(`
		SELECT n.id, n.title, cs.text_content,
		       ts_rank(to_tsvector($1, n.title || ' ' || cs.text_content),
		               to_tsquery($1, $2)) AS rank
		FROM %s n
		JOIN %s d ON d.node_id = n.id
		JOIN %s v ON v.version_id = d.current_version_id
		JOIN %s cs ON cs.content_hash = v.content_hash
		WHERE to_tsvector($1, n.title || ' ' || cs.text_content) @@ to_tsquery($1, $2)
		ORDER BY rank DESC
		LIMIT $3
	`, r.tables.Nodes, r.tables.Documents, r.tables.DocVersions, r.tables.ContentStore)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, opts.Language, tsquery, opts.Limit)
	if err != nil {
		return nil, fmt.Errorf("full-text query: %w", err)
	}
	defer rows.Close()

	return r.collectResults(rows, opts, true)
}

func (r *Repository) substringSearch(ctx context.Context, opts models.SearchOptions) ([]models.SearchResult, error) {
	pattern := EscapeLikePattern(opts.Term)

	query := fmt.Sprintf(`
		SELECT n.id, n.title, COALESCE(cs.text_content, ''), 0::float8 AS rank
		FROM %s n
		JOIN %s d ON d.node_id = n.id
		LEFT JOIN %s v ON v.version_id = d.current_version_id
		LEFT JOIN %s cs ON cs.content_hash = v.content_hash
		WHERE n.title ILIKE $1 OR cs.text_content ILIKE $1
		LIMIT $2
	`, r.tables.Nodes, r.tables.Documents, r.tables.DocVersions, r.tables.ContentStore)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, pattern, opts.Limit)
	if err != nil {
		return nil, fmt.Errorf("substring search: %w", err)
	}
	defer rows.Close()

	return r.collectResults(rows, opts, false)
}

type searchRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

// collectResults deduplicates by node id (first occurrence wins) and
// builds the snippet around the term.
func (r *Repository) collectResults(rows searchRows, opts models.SearchOptions, ranked bool) ([]models.SearchResult, error) {
	seen := make(map[string]bool)
	results := []models.SearchResult{}

	for rows.Next() {
		var nodeID, title, body string
		var rank float64
		if err := rows.Scan(&nodeID, &title, &body, &rank); err != nil {
			return nil, fmt.Errorf("scan search result: %w", err)
		}
		if seen[nodeID] {
			continue
		}
		seen[nodeID] = true

		result := models.SearchResult{
			NodeID:  nodeID,
			Title:   title,
			Snippet: svc.BuildSnippet(body, opts.Term, title),
		}
		if ranked {
			result.Rank = rank
		}
		results = append(results, result)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate search results: %w", err)
	}
	return results, nil
}
