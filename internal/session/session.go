package session

import (
	"crypto/sha256"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"tradelens/internal/classify"
	"tradelens/internal/filter"
	"tradelens/internal/ingest"
	"tradelens/internal/model"
)

// Dataset is one normalized upload. It is immutable after Load; sessions
// only filter and group it.
type Dataset struct {
	Records  []model.ShipmentRecord
	Skipped  []ingest.RowError
	Source   string
	LoadedAt time.Time
}

// Session owns one user's dataset and filter selections. Sessions never
// share data: each interaction recomputes from the session's own copy.
// A session is not safe for concurrent use; one user drives it at a time.
type Session struct {
	ID         uuid.UUID
	dataset    *Dataset
	selections filter.Selections
}

// Manager hands out sessions and caches normalized datasets by content so an
// identical re-upload skips normalization. The mutex guards only the
// manager's own registry, never session data.
type Manager struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*Session
	cache    map[[sha256.Size]byte]*Dataset
}

func NewManager() *Manager {
	return &Manager{
		sessions: make(map[uuid.UUID]*Session),
		cache:    make(map[[sha256.Size]byte]*Dataset),
	}
}

func (m *Manager) Open() *Session {
	session := &Session{
		ID:         uuid.New(),
		selections: filter.Selections{},
	}
	m.mu.Lock()
	m.sessions[session.ID] = session
	m.mu.Unlock()
	return session
}

func (m *Manager) Get(id uuid.UUID) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.sessions[id]
	return session, ok
}

// Close discards a session. Its dataset may stay in the content cache for
// later identical uploads.
func (m *Manager) Close(id uuid.UUID) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}

// Load normalizes raw CSV bytes into the session, classifying products with
// the given classifier. Loading replaces the previous dataset and resets
// the session's selections. Classification is a pure function of the mark,
// candidate list, and threshold, so the cache key covers all three.
func (m *Manager) Load(session *Session, source string, raw []byte, classifier *classify.Classifier) (*Dataset, error) {
	key := cacheKey(raw, classifier)

	m.mu.Lock()
	cached, hit := m.cache[key]
	m.mu.Unlock()

	if hit {
		session.dataset = cached
		session.selections = filter.Selections{}
		return cached, nil
	}

	result, err := ingest.ParseBytes(raw)
	if err != nil {
		return nil, err
	}
	records := result.Records
	if classifier != nil {
		for i := range records {
			records[i].ProductCategory = classifier.Classify(records[i].Mark)
		}
	}

	dataset := &Dataset{
		Records:  records,
		Skipped:  result.Skipped,
		Source:   source,
		LoadedAt: time.Now().UTC(),
	}

	m.mu.Lock()
	m.cache[key] = dataset
	m.mu.Unlock()

	session.dataset = dataset
	session.selections = filter.Selections{}
	return dataset, nil
}

func cacheKey(raw []byte, classifier *classify.Classifier) [sha256.Size]byte {
	h := sha256.New()
	h.Write(raw)
	if classifier != nil {
		h.Write([]byte{0})
		h.Write([]byte(strings.Join(classifier.Categories(), "\x00")))
		h.Write([]byte(fmt.Sprintf("\x00%g", classifier.Threshold())))
	}
	var key [sha256.Size]byte
	copy(key[:], h.Sum(nil))
	return key
}

// Dataset returns the loaded dataset, or nil before any load.
func (s *Session) Dataset() *Dataset {
	return s.dataset
}

// SetSelection replaces one dimension's selection. Values are copied.
func (s *Session) SetSelection(dim model.Dimension, values []string) {
	if len(values) == 0 {
		delete(s.selections, dim)
		return
	}
	s.selections[dim] = append([]string(nil), values...)
}

func (s *Session) ClearSelections() {
	s.selections = filter.Selections{}
}

// Selections returns a copy of the current selections.
func (s *Session) Selections() filter.Selections {
	out := make(filter.Selections, len(s.selections))
	for dim, values := range s.selections {
		out[dim] = append([]string(nil), values...)
	}
	return out
}

// Filtered recomputes the working subset from scratch. Called once per
// interaction; nothing is memoized between calls.
func (s *Session) Filtered() filter.Result {
	if s.dataset == nil {
		return filter.Result{}
	}
	return filter.Apply(s.dataset.Records, s.selections)
}

// Candidates lists the selectable values for one dimension given the
// selections on the other dimensions.
func (s *Session) Candidates(dim model.Dimension) []string {
	if s.dataset == nil {
		return nil
	}
	return filter.Candidates(s.dataset.Records, s.selections, dim)
}
