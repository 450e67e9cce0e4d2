package session

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultStoreSize bounds the number of live sessions.
const DefaultStoreSize = 256

// Upload is the workbook a session last uploaded.
type Upload struct {
	Filename   string
	Data       []byte
	Digest     string
	UploadedAt time.Time
}

// NewUpload wraps uploaded bytes with their digest.
func NewUpload(filename string, data []byte, at time.Time) Upload {
	return Upload{Filename: filename, Data: data, Digest: Digest(data), UploadedAt: at}
}

// Store maps session IDs to their last upload. A new upload replaces the
// previous one; the least recently used sessions are dropped first.
type Store struct {
	sessions *lru.Cache[string, Upload]
}

// NewStore returns a store for at most size sessions.
func NewStore(size int) (*Store, error) {
	if size <= 0 {
		size = DefaultStoreSize
	}
	sessions, err := lru.New[string, Upload](size)
	if err != nil {
		return nil, fmt.Errorf("creating session store: %w", err)
	}
	return &Store{sessions: sessions}, nil
}

// NewID returns a fresh random session ID.
func (s *Store) NewID() string {
	return uuid.NewString()
}

// Put records u as the session's current input.
func (s *Store) Put(id string, u Upload) {
	s.sessions.Add(id, u)
}

// Get returns the session's current input.
func (s *Store) Get(id string) (Upload, bool) {
	if id == "" {
		return Upload{}, false
	}
	return s.sessions.Get(id)
}
