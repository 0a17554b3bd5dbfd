package service

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/cpcnewhaven/cpc-web-app/internal/models"
	appErrors "github.com/cpcnewhaven/cpc-web-app/pkg/errors"
)

type searchStore interface {
	All() ([]models.Sermon, error)
}

// ScriptureQuery narrows a search to a scripture reference.
type ScriptureQuery struct {
	Book    string `json:"book"`
	Chapter int    `json:"chapter"`
	Verse   int    `json:"verse"`
}

// DateRange bounds search results by sermon date. Zero values leave the
// corresponding bound open.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// SearchQuery captures every criterion of an advanced sermon search.
type SearchQuery struct {
	Query     string         `json:"query"`
	Scripture ScriptureQuery `json:"scripture"`
	Speaker   string         `json:"speaker"`
	Series    string         `json:"series"`
	Tags      []string       `json:"tags"`
	Year      int            `json:"year"`
	Dates     DateRange      `json:"dates"`
	SortBy    string         `json:"sort_by"`
	SortOrder string         `json:"sort_order"`
	Limit     int            `json:"limit"`
}

// SearchFilters lists the distinct values available for narrowing a search.
type SearchFilters struct {
	Speakers []string `json:"speakers"`
	Series   []string `json:"series"`
	Tags     []string `json:"tags"`
	Years    []string `json:"years"`
}

// SearchService runs in-memory search over the sermon archive: substring
// matching, scripture reference patterns, suggestions and filter options.
type SearchService struct {
	store  searchStore
	years  func() ([]string, error)
	logger *zap.Logger
}

// NewSearchService constructs the search service. years supplies the archive
// year list for filter options.
func NewSearchService(store searchStore, years func() ([]string, error), logger *zap.Logger) *SearchService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SearchService{store: store, years: years, logger: logger}
}

// Search applies every criterion of the query and returns matching sermons.
func (s *SearchService) Search(ctx context.Context, query SearchQuery) ([]models.Sermon, error) {
	sermons, err := s.store.All()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read sermon archive")
	}

	results := sermons
	if query.Query != "" {
		results = filterSermons(results, func(sermon models.Sermon) bool {
			return containsFold(sermon.Title, query.Query) ||
				containsFold(sermon.Scripture, query.Query) ||
				containsFold(sermon.Speaker, query.Query) ||
				containsFold(sermon.Series, query.Query)
		})
	}
	if query.Scripture.Book != "" {
		pattern, err := scripturePattern(query.Scripture)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid scripture query")
		}
		results = filterSermons(results, func(sermon models.Sermon) bool {
			return pattern.MatchString(sermon.Scripture)
		})
	}
	if query.Speaker != "" {
		results = filterSermons(results, func(sermon models.Sermon) bool {
			return containsFold(sermon.Speaker, query.Speaker)
		})
	}
	if query.Series != "" {
		results = filterSermons(results, func(sermon models.Sermon) bool {
			return containsFold(sermon.Series, query.Series)
		})
	}
	if len(query.Tags) > 0 {
		results = filterSermons(results, func(sermon models.Sermon) bool {
			return hasAnyTag(sermon, query.Tags)
		})
	}
	if query.Year > 0 {
		results = filterSermons(results, func(sermon models.Sermon) bool {
			return sermon.Date.Year() == query.Year
		})
	}
	if !query.Dates.Start.IsZero() {
		results = filterSermons(results, func(sermon models.Sermon) bool {
			return !sermon.Date.Before(query.Dates.Start)
		})
	}
	if !query.Dates.End.IsZero() {
		results = filterSermons(results, func(sermon models.Sermon) bool {
			return !sermon.Date.After(query.Dates.End)
		})
	}

	sortSermons(results, query.SortBy, query.SortOrder)
	if query.Limit > 0 && len(results) > query.Limit {
		results = results[:query.Limit]
	}
	return results, nil
}

// Suggestions returns up to ten completions for a partial query, drawn from
// titles, speakers, series names and scripture words.
func (s *SearchService) Suggestions(ctx context.Context, partial string) ([]string, error) {
	partial = strings.ToLower(strings.TrimSpace(partial))
	if partial == "" {
		return nil, nil
	}
	sermons, err := s.store.All()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read sermon archive")
	}

	seen := map[string]struct{}{}
	for _, sermon := range sermons {
		for _, word := range strings.Fields(strings.ToLower(sermon.Title)) {
			word = strings.Trim(word, ".,:;!?\"'")
			if len(word) > 3 && strings.HasPrefix(word, partial) {
				seen[word] = struct{}{}
			}
		}
		speaker := strings.ToLower(sermon.Speaker)
		if strings.HasPrefix(speaker, partial) {
			seen[speaker] = struct{}{}
		}
		series := strings.ToLower(sermon.Series)
		if series != "" && strings.HasPrefix(series, partial) {
			seen[series] = struct{}{}
		}
		for _, word := range strings.Fields(strings.ToLower(sermon.Scripture)) {
			word = strings.Trim(word, ".,:;")
			if len(word) > 2 && strings.HasPrefix(word, partial) {
				seen[word] = struct{}{}
			}
		}
	}

	suggestions := make([]string, 0, len(seen))
	for word := range seen {
		suggestions = append(suggestions, word)
	}
	sort.Strings(suggestions)
	if len(suggestions) > 10 {
		suggestions = suggestions[:10]
	}
	return suggestions, nil
}

// Filters returns the distinct speakers, series and years available.
func (s *SearchService) Filters(ctx context.Context) (*SearchFilters, error) {
	sermons, err := s.store.All()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read sermon archive")
	}

	speakers := map[string]struct{}{}
	series := map[string]struct{}{}
	tags := map[string]struct{}{}
	for _, sermon := range sermons {
		if sermon.Speaker != "" {
			speakers[sermon.Speaker] = struct{}{}
		}
		if sermon.Series != "" {
			series[sermon.Series] = struct{}{}
		}
		for _, tag := range sermon.Tags {
			if tag != "" {
				tags[tag] = struct{}{}
			}
		}
	}

	filters := &SearchFilters{
		Speakers: sortedKeys(speakers),
		Series:   sortedKeys(series),
		Tags:     sortedKeys(tags),
	}
	if s.years != nil {
		years, err := s.years()
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read sermon archive")
		}
		filters.Years = years
	}
	return filters, nil
}

func filterSermons(sermons []models.Sermon, keep func(models.Sermon) bool) []models.Sermon {
	out := sermons[:0:0]
	for _, sermon := range sermons {
		if keep(sermon) {
			out = append(out, sermon)
		}
	}
	return out
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

// hasAnyTag reports whether the sermon carries at least one of the wanted
// tags, case-insensitively.
func hasAnyTag(sermon models.Sermon, wanted []string) bool {
	for _, want := range wanted {
		for _, tag := range sermon.Tags {
			if strings.EqualFold(tag, want) {
				return true
			}
		}
	}
	return false
}

// scripturePattern builds a reference matcher: book alone is a substring,
// book+chapter anchors the chapter number, book+chapter+verse anchors both.
func scripturePattern(q ScriptureQuery) (*regexp.Regexp, error) {
	book := regexp.QuoteMeta(strings.TrimSpace(q.Book))
	switch {
	case q.Chapter > 0 && q.Verse > 0:
		return regexp.Compile(fmt.Sprintf(`(?i)%s\s*%d\s*:\s*%d`, book, q.Chapter, q.Verse))
	case q.Chapter > 0:
		return regexp.Compile(fmt.Sprintf(`(?i)%s\s*%d(\s*:\s*\d+)?`, book, q.Chapter))
	default:
		return regexp.Compile(`(?i)` + book)
	}
}

func sortSermons(sermons []models.Sermon, sortBy, sortOrder string) {
	desc := !strings.EqualFold(sortOrder, "asc")
	less := func(i, j int) bool {
		return sermons[i].Date.Before(sermons[j].Date)
	}
	switch sortBy {
	case "title":
		less = func(i, j int) bool {
			return strings.ToLower(sermons[i].Title) < strings.ToLower(sermons[j].Title)
		}
	case "speaker":
		less = func(i, j int) bool {
			return strings.ToLower(sermons[i].Speaker) < strings.ToLower(sermons[j].Speaker)
		}
	}
	sort.SliceStable(sermons, func(i, j int) bool {
		if desc {
			return less(j, i)
		}
		return less(i, j)
	})
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
