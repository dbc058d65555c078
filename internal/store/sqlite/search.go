package sqlite

import (
	"context"
	"fmt"
	"strings"

	"waymark/internal/store"
)

func (c *Client) Search(ctx context.Context, query, tag string) ([]store.SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("query must not be empty")
	}

	ftsQuery := convertWebsearchToFTS5(query)
	if ftsQuery == "" {
		return nil, fmt.Errorf("query has no searchable terms: %q", query)
	}

	sqlQuery := `
	SELECT s.id, s.title, s.tags,
		   -bm25(stories_fts, 10.0, 4.0, 1.0) AS score,
		   snippet(stories_fts, 2, '**', '**', '...', 50) AS snippet
	FROM stories_fts
	JOIN stories s ON stories_fts.rowid = s.rowid
	WHERE stories_fts MATCH ?
	  AND (? = '' OR EXISTS (
		  SELECT 1 FROM json_each(s.tags) WHERE lower(json_each.value) = lower(?)
	  ))
	ORDER BY score DESC, s.title ASC
	LIMIT 50
	`

	rows, err := c.db.QueryContext(ctx, sqlQuery, ftsQuery, tag, tag)
	if err != nil {
		return nil, fmt.Errorf("searching stories: %w", err)
	}
	defer rows.Close()

	results := make([]store.SearchResult, 0)
	for rows.Next() {
		var r store.SearchResult
		var tagsText string
		err := rows.Scan(&r.ID, &r.Title, &tagsText, &r.Score, &r.Snippet)
		if err != nil {
			return nil, fmt.Errorf("scanning search result: %w", err)
		}
		if r.Tags, err = decodeTags(tagsText); err != nil {
			return nil, err
		}
		results = append(results, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating search results: %w", err)
	}

	return results, nil
}

// convertWebsearchToFTS5 maps websearch-style input (bare terms, "phrases",
// -exclusions, OR) onto an FTS5 match expression. Adjacent terms are ANDed;
// FTS5's NOT is binary so an exclusion attaches to the preceding expression.
func convertWebsearchToFTS5(query string) string {
	var result strings.Builder
	var inQuote bool
	var current strings.Builder

	join := func(op string) {
		if result.Len() == 0 {
			return
		}
		last := lastWord(result.String())
		if last == "AND" || last == "OR" || last == "NOT" {
			result.WriteString(" ")
			return
		}
		result.WriteString(" " + op + " ")
	}

	flushToken := func() {
		token := current.String()
		current.Reset()
		if token == "" {
			return
		}

		upper := strings.ToUpper(token)
		switch upper {
		case "AND", "OR", "NOT":
			if result.Len() > 0 {
				result.WriteString(" ")
				result.WriteString(upper)
			}
			return
		}

		if strings.HasPrefix(token, "-") && len(token) > 1 {
			if result.Len() == 0 {
				return
			}
			join("NOT")
			result.WriteString(quoteTerm(token[1:]))
			return
		}

		join("AND")
		result.WriteString(quoteTerm(token))
	}

	for i := 0; i < len(query); i++ {
		ch := query[i]
		switch {
		case ch == '"':
			if inQuote {
				inQuote = false
				token := current.String()
				current.Reset()
				if token != "" {
					join("AND")
					result.WriteString(`"`)
					result.WriteString(strings.ReplaceAll(token, `"`, `""`))
					result.WriteString(`"`)
				}
			} else {
				flushToken()
				inQuote = true
			}
		case inQuote:
			current.WriteByte(ch)
		case ch == ' ' || ch == '\t':
			flushToken()
		default:
			current.WriteByte(ch)
		}
	}

	flushToken()

	out := strings.TrimSpace(result.String())
	for _, op := range []string{" AND", " OR", " NOT"} {
		out = strings.TrimSuffix(out, op)
	}
	return out
}

// quoteTerm leaves plain words and prefix terms alone and quotes anything
// FTS5 would read as syntax.
func quoteTerm(term string) string {
	prefix := strings.HasSuffix(term, "*")
	word := strings.TrimSuffix(term, "*")
	plain := word != ""
	for _, r := range word {
		if !(r == '_' || r >= '0' && r <= '9' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r > 127) {
			plain = false
			break
		}
	}
	if plain {
		return term
	}
	quoted := `"` + strings.ReplaceAll(word, `"`, `""`) + `"`
	if prefix {
		quoted += "*"
	}
	return quoted
}

func lastWord(s string) string {
	words := strings.Fields(s)
	if len(words) == 0 {
		return ""
	}
	return words[len(words)-1]
}
