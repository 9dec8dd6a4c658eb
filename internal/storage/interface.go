// Package storage keeps the records of declaration submissions.
//
// # Interface Design
//
// [ResultStore] saves one [Submission] per declaration sent, keyed by the
// result ID assigned by the submission pipeline, and lists them by client,
// target or status.
//
// # Implementations
//
// The mongodb sub-package provides a MongoDB implementation. [MemoryStore]
// keeps results for the lifetime of the process and is used when no
// database is configured.
//
// # Concurrency
//
// All store implementations must be safe for concurrent use from multiple
// goroutines.
package storage

import (
	"context"
	"time"

	"github.com/sirosfoundation/go-dpiva/pkg/submission"
)

// ResultStore persists submission results
type ResultStore interface {
	// SaveResult inserts or replaces the record with the same result ID
	SaveResult(ctx context.Context, s *Submission) error

	// GetResult retrieves a record by result ID, or nil if there is none
	GetResult(ctx context.Context, resultID string) (*Submission, error)

	// ListResults returns records matching filter, newest first
	ListResults(ctx context.Context, filter *ResultFilter) ([]*Submission, error)

	// CountResults counts records matching filter
	CountResults(ctx context.Context, filter *ResultFilter) (int64, error)

	// Close releases storage resources
	Close(ctx context.Context) error

	// Ping checks database connectivity
	Ping(ctx context.Context) error
}

// Submission is the stored record of one declaration submission
type Submission struct {
	ID          string                 `bson:"_id" json:"id"`
	ResultID    string                 `bson:"result_id" json:"resultId"`
	File        string                 `bson:"file" json:"file"`
	ClientID    string                 `bson:"client_id" json:"clientId"`
	Target      string                 `bson:"target" json:"target"`
	Status      string                 `bson:"status" json:"status"`
	State       string                 `bson:"state" json:"state"`
	Stages      map[string]StageRecord `bson:"stages" json:"stages"`
	Errors      []string               `bson:"errors" json:"errors"`
	Warnings    []string               `bson:"warnings" json:"warnings"`
	CreatedAt   time.Time              `bson:"created_at" json:"createdAt"`
	CompletedAt time.Time              `bson:"completed_at" json:"completedAt"`
}

// StageRecord is the stored outcome of one pipeline stage
type StageRecord struct {
	Status string `bson:"status" json:"status"`
	Data   string `bson:"data,omitempty" json:"data,omitempty"`
	Reason string `bson:"reason,omitempty" json:"reason,omitempty"`
}

// ResultFilter selects records. Zero fields match everything.
type ResultFilter struct {
	ClientID string
	Target   string
	Status   string
	Since    *time.Time
	Limit    int
	Offset   int
}

// FromResult converts a pipeline result to its stored record.
func FromResult(r *submission.Result) *Submission {
	s := &Submission{
		ResultID:    r.ID,
		File:        r.File,
		ClientID:    r.ClientID,
		Target:      r.Target.String(),
		Status:      string(r.Status),
		State:       string(r.State),
		Stages:      make(map[string]StageRecord, len(r.Stages)),
		Errors:      append([]string{}, r.ErrorList...),
		Warnings:    append([]string{}, r.WarningList...),
		CreatedAt:   r.CreatedAt,
		CompletedAt: r.CompletedAt,
	}
	for name, st := range r.Stages {
		s.Stages[name] = StageRecord{Status: string(st.Status), Data: st.Data, Reason: st.Reason}
	}
	return s
}

// Matches reports whether s is selected by filter, ignoring paging.
func (f *ResultFilter) Matches(s *Submission) bool {
	if f == nil {
		return true
	}
	switch {
	case f.ClientID != "" && f.ClientID != s.ClientID:
		return false
	case f.Target != "" && f.Target != s.Target:
		return false
	case f.Status != "" && f.Status != s.Status:
		return false
	case f.Since != nil && s.CreatedAt.Before(*f.Since):
		return false
	}
	return true
}
