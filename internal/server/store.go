package server

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/CK6170/Linviz-go/models"
)

// DatasetRecord is one uploaded dataset. Key identifies its content for the
// decomposition cache; identical uploads share a key but not an ID.
type DatasetRecord struct {
	ID       string
	Key      string
	Filename string
	Created  time.Time
	Rows     [][]float64
}

// Cols is the number of features per observation.
func (r *DatasetRecord) Cols() int {
	if len(r.Rows) == 0 {
		return 0
	}
	return len(r.Rows[0])
}

// Model converts the record into its wire form.
func (r *DatasetRecord) Model() models.Dataset {
	return models.Dataset{ID: r.ID, Filename: r.Filename, Created: r.Created, Rows: r.Rows}
}

// DatasetStore keeps uploaded datasets in memory for the life of the server.
type DatasetStore struct {
	mu sync.RWMutex
	m  map[string]*DatasetRecord
}

func NewDatasetStore() *DatasetStore {
	return &DatasetStore{m: make(map[string]*DatasetRecord)}
}

func (s *DatasetStore) Put(rows [][]float64, filename string) (*DatasetRecord, error) {
	id, err := newID()
	if err != nil {
		return nil, err
	}
	rec := &DatasetRecord{
		ID:       id,
		Key:      datasetKey(rows),
		Filename: filename,
		Created:  time.Now(),
		Rows:     rows,
	}
	s.mu.Lock()
	s.m[id] = rec
	s.mu.Unlock()
	return rec, nil
}

func (s *DatasetStore) Get(id string) (*DatasetRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.m[id]
	return r, ok
}

func (s *DatasetStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.m)
}

func newID() (string, error) {
	var b [12]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", fmt.Errorf("rand: %w", err)
	}
	return hex.EncodeToString(b[:]), nil
}
