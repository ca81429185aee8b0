package profile

import (
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"
)

// AnalysisRecord is one stored engine invocation, addressable by ID
// from the HTTP result endpoints.
type AnalysisRecord struct {
	ID        string          `json:"id"`
	CreatedAt time.Time       `json:"createdAt"`
	Report    *AnalysisReport `json:"report"`
}

// ResultStore keeps a bounded history of analysis records for the HTTP
// endpoints. Oldest records are evicted once the limit is exceeded.
type ResultStore struct {
	mu      sync.RWMutex
	records map[string]*AnalysisRecord
	order   []string
	limit   int
}

// NewResultStore creates a store retaining up to limit records; limits
// below 1 fall back to 50.
func NewResultStore(limit int) *ResultStore {
	if limit < 1 {
		limit = 50
	}
	return &ResultStore{
		records: make(map[string]*AnalysisRecord),
		limit:   limit,
	}
}

// Put stores a report under a fresh random ID and returns the record.
func (rs *ResultStore) Put(report *AnalysisReport) *AnalysisRecord {
	rec := &AnalysisRecord{
		ID:        newRecordID(),
		CreatedAt: time.Now(),
		Report:    report,
	}

	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.records[rec.ID] = rec
	rs.order = append(rs.order, rec.ID)
	for len(rs.order) > rs.limit {
		delete(rs.records, rs.order[0])
		rs.order = rs.order[1:]
	}
	return rec
}

// Get returns the record for the given ID, if present.
func (rs *ResultStore) Get(id string) (*AnalysisRecord, bool) {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	rec, ok := rs.records[id]
	return rec, ok
}

// Recent returns the stored records, newest first.
func (rs *ResultStore) Recent() []*AnalysisRecord {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	out := make([]*AnalysisRecord, 0, len(rs.order))
	for i := len(rs.order) - 1; i >= 0; i-- {
		out = append(out, rs.records[rs.order[i]])
	}
	return out
}

// Len returns the number of stored records.
func (rs *ResultStore) Len() int {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	return len(rs.records)
}

func newRecordID() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return hex.EncodeToString([]byte(time.Now().Format("150405.000000000")))
	}
	return hex.EncodeToString(buf)
}
