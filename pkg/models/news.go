// Package models defines the shared data types for newsheat: news records,
// per-source scan results, ticker identities and score reports.
package models

import (
	"time"
	"unicode/utf8"
)

// NewsRecord is one normalized news mention produced by a source adapter.
// Records are never mutated after construction.
type NewsRecord struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	Source  string `json:"source"`
	URL     string `json:"url,omitempty"`
}

// NewNewsRecord builds a record; an empty snippet defaults to the title.
func NewNewsRecord(title, snippet, source string) NewsRecord {
	if snippet == "" {
		snippet = title
	}
	return NewsRecord{Title: title, Snippet: snippet, Source: source}
}

// Text returns the title plus the snippet when the snippet adds anything.
func (r NewsRecord) Text() string {
	if r.Snippet == "" || r.Snippet == r.Title {
		return r.Title
	}
	return r.Title + " " + r.Snippet
}

// TitleLen returns the title length in characters (runes), not bytes.
func (r NewsRecord) TitleLen() int {
	return utf8.RuneCountInString(r.Title)
}

// SourceResult is the bounded record list one adapter produced during a scan.
type SourceResult struct {
	Source  string        `json:"source"`
	Records []NewsRecord  `json:"records"`
	Failed  bool          `json:"failed,omitempty"` // adapter degraded to empty on an internal error
	Elapsed time.Duration `json:"elapsed"`
}

// Empty reports whether the source contributed no records.
func (s SourceResult) Empty() bool { return len(s.Records) == 0 }

// ScanResult holds every adapter's result for one scan, in registration order.
type ScanResult struct {
	Code      string         `json:"code"`
	Sources   []SourceResult `json:"sources"`
	StartedAt time.Time      `json:"started_at"`
	Elapsed   time.Duration  `json:"elapsed"`
}

// Get returns the result for the named source.
func (s *ScanResult) Get(source string) (SourceResult, bool) {
	for _, r := range s.Sources {
		if r.Source == source {
			return r, true
		}
	}
	return SourceResult{}, false
}

// ByName returns the results keyed by source name.
func (s *ScanResult) ByName() map[string]SourceResult {
	m := make(map[string]SourceResult, len(s.Sources))
	for _, r := range s.Sources {
		m[r.Source] = r
	}
	return m
}

// AllRecords concatenates every source's records in source order.
func (s *ScanResult) AllRecords() []NewsRecord {
	var all []NewsRecord
	for _, r := range s.Sources {
		all = append(all, r.Records...)
	}
	return all
}

// RecordCount returns the number of records across all sources.
func (s *ScanResult) RecordCount() int {
	n := 0
	for _, r := range s.Sources {
		n += len(r.Records)
	}
	return n
}
