package archive

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/cpcnewhaven/cpc-web-app/internal/models"
)

// File is the on-disk shape of the sermon archive: sermons grouped under
// their four-digit year, plus optional display metadata.
type File struct {
	Title         string                     `json:"title"`
	Description   string                     `json:"description"`
	SermonsByYear map[string][]models.Sermon `json:"sermons_by_year"`
}

// Metadata summarises the archive file for the public metadata endpoint.
type Metadata struct {
	Title        string         `json:"title"`
	Description  string         `json:"description"`
	TotalSermons int            `json:"total_sermons"`
	YearCounts   map[string]int `json:"year_counts"`
}

// Store reads the year-keyed sermon archive file and serves flat, per-year
// and metadata views of it. The parsed file and the derived flat list are
// cached until the file's modification time changes, so repeated reads cost
// one os.Stat. Safe for concurrent readers.
type Store struct {
	path   string
	logger *zap.Logger

	mu      sync.RWMutex
	modTime time.Time
	file    *File
	flat    []models.Sermon
}

// NewStore creates a store over the given archive file path.
func NewStore(path string, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{path: path, logger: logger}
}

// load returns the cached file, re-reading it from disk only when its
// modification time has moved since the last parse.
func (s *Store) load() (*File, []models.Sermon, error) {
	info, err := os.Stat(s.path)
	if err != nil {
		return nil, nil, fmt.Errorf("stat archive file: %w", err)
	}

	s.mu.RLock()
	if s.file != nil && info.ModTime().Equal(s.modTime) {
		file, flat := s.file, s.flat
		s.mu.RUnlock()
		return file, flat, nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file != nil && info.ModTime().Equal(s.modTime) {
		return s.file, s.flat, nil
	}

	raw, err := os.ReadFile(s.path)
	if err != nil {
		return nil, nil, fmt.Errorf("read archive file: %w", err)
	}
	var file File
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, nil, fmt.Errorf("parse archive file: %w", err)
	}

	s.file = &file
	s.flat = flatten(&file)
	s.modTime = info.ModTime()
	s.logger.Info("sermon archive reloaded",
		zap.String("path", s.path),
		zap.Int("sermons", len(s.flat)),
		zap.Time("mod_time", s.modTime))
	return s.file, s.flat, nil
}

// flatten materialises the year map into one list, active non-archived only,
// newest first.
func flatten(file *File) []models.Sermon {
	var flat []models.Sermon
	for _, sermons := range file.SermonsByYear {
		for _, sermon := range sermons {
			if sermon.Active && !sermon.Archived {
				flat = append(flat, sermon)
			}
		}
	}
	sort.Slice(flat, func(i, j int) bool {
		return flat[i].Date.After(flat[j].Date)
	})
	return flat
}

// All returns every active, non-archived sermon, newest first.
func (s *Store) All() ([]models.Sermon, error) {
	_, flat, err := s.load()
	if err != nil {
		return nil, err
	}
	out := make([]models.Sermon, len(flat))
	copy(out, flat)
	return out, nil
}

// ByYear returns the sermons filed under one year, newest first. A year with
// no sermons returns an empty slice, not an error.
func (s *Store) ByYear(year string) ([]models.Sermon, error) {
	file, _, err := s.load()
	if err != nil {
		return nil, err
	}
	sermons := file.SermonsByYear[year]
	out := make([]models.Sermon, len(sermons))
	copy(out, sermons)
	sort.Slice(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date)
	})
	return out, nil
}

// YearCounts returns the number of sermons filed under each year.
func (s *Store) YearCounts() (map[string]int, error) {
	file, _, err := s.load()
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int, len(file.SermonsByYear))
	for year, sermons := range file.SermonsByYear {
		counts[year] = len(sermons)
	}
	return counts, nil
}

// Years returns the archive years in descending order.
func (s *Store) Years() ([]string, error) {
	counts, err := s.YearCounts()
	if err != nil {
		return nil, err
	}
	years := make([]string, 0, len(counts))
	for year := range counts {
		years = append(years, year)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(years)))
	return years, nil
}

// Metadata returns the archive title, description and per-year totals.
func (s *Store) Metadata() (*Metadata, error) {
	file, flat, err := s.load()
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int, len(file.SermonsByYear))
	for year, sermons := range file.SermonsByYear {
		counts[year] = len(sermons)
	}
	title := file.Title
	if title == "" {
		title = "Sunday Sermons"
	}
	description := file.Description
	if description == "" {
		description = "Weekly sermons from our Sunday worship services"
	}
	return &Metadata{
		Title:        title,
		Description:  description,
		TotalSermons: len(flat),
		YearCounts:   counts,
	}, nil
}

// ChapterRef is one scripture chapter hit within a book.
type ChapterRef struct {
	Chapter   int       `json:"chapter"`
	Reference string    `json:"reference"`
	Date      time.Time `json:"date"`
	Title     string    `json:"title"`
}

// SeriesProgress reports how far preaching has progressed through one book
// of scripture, both by most recent date and by highest chapter reached.
type SeriesProgress struct {
	Book            string     `json:"book"`
	LatestByDate    ChapterRef `json:"latest_by_date"`
	LatestByChapter ChapterRef `json:"latest_by_chapter"`
	TotalSermons    int        `json:"total_sermons"`
}

// LatestSeriesProgress scans scripture references for the given book and
// reports the most recent chapter preached and the highest chapter reached.
// Returns nil when no sermon references the book.
func (s *Store) LatestSeriesProgress(book string) (*SeriesProgress, error) {
	_, flat, err := s.load()
	if err != nil {
		return nil, err
	}

	pattern, err := regexp.Compile(`(?i)` + regexp.QuoteMeta(book) + `\s+(\d+)[:.]`)
	if err != nil {
		return nil, fmt.Errorf("compile book pattern: %w", err)
	}

	var refs []ChapterRef
	for _, sermon := range flat {
		match := pattern.FindStringSubmatch(sermon.Scripture)
		if match == nil {
			continue
		}
		chapter, err := strconv.Atoi(match[1])
		if err != nil {
			continue
		}
		refs = append(refs, ChapterRef{
			Chapter:   chapter,
			Reference: sermon.Scripture,
			Date:      sermon.Date,
			Title:     sermon.Title,
		})
	}
	if len(refs) == 0 {
		return nil, nil
	}

	latest := refs[0]
	highest := refs[0]
	for _, ref := range refs[1:] {
		if ref.Date.After(latest.Date) || (ref.Date.Equal(latest.Date) && ref.Chapter > latest.Chapter) {
			latest = ref
		}
		if ref.Chapter > highest.Chapter {
			highest = ref
		}
	}
	return &SeriesProgress{
		Book:            book,
		LatestByDate:    latest,
		LatestByChapter: highest,
		TotalSermons:    len(refs),
	}, nil
}
