package session

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// MemoryStore is an in-process Store for tests and DB-less development.
//
// All methods are safe for concurrent use. Rows are stored by value; callers
// never observe later mutations through returned copies.
type MemoryStore struct {
	mu     sync.Mutex
	rows   map[string]Row    // session id -> row
	byHash map[string]string // refresh hash -> session id
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		rows:   make(map[string]Row),
		byHash: make(map[string]string),
	}
}

func (s *MemoryStore) Create(ctx context.Context, now time.Time, userID string, dev DeviceContext, refreshHash string, expiresAt time.Time) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	id := ulid.Make().String()
	lu := now

	s.mu.Lock()
	defer s.mu.Unlock()

	s.rows[id] = Row{
		ID:          id,
		UserID:      userID,
		RefreshHash: refreshHash,
		UserAgent:   dev.UserAgent,
		IP:          dev.IP,
		Fingerprint: dev.Fingerprint(),
		CreatedAt:   now,
		LastUsedAt:  &lu,
		ExpiresAt:   expiresAt,
	}
	s.byHash[refreshHash] = id

	return id, nil
}

func (s *MemoryStore) GetByID(ctx context.Context, sessionID string) (Row, error) {
	if err := ctx.Err(); err != nil {
		return Row{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.rows[sessionID]
	if !ok {
		return Row{}, ErrSessionNotFound
	}
	return row, nil
}

func (s *MemoryStore) GetByRefreshHash(ctx context.Context, refreshHash string) (Row, error) {
	if err := ctx.Err(); err != nil {
		return Row{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byHash[refreshHash]
	if !ok {
		return Row{}, ErrSessionNotFound
	}
	return s.rows[id], nil
}

func (s *MemoryStore) RevokeIfActive(ctx context.Context, now time.Time, sessionID string, reason RevokeReason) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.rows[sessionID]
	if !ok || row.RevokedAt != nil {
		return false, nil
	}

	t := now
	row.RevokedAt = &t
	row.RevokedReason = reason
	s.rows[sessionID] = row

	return true, nil
}

func (s *MemoryStore) RevokeAllActive(ctx context.Context, now time.Time, userID string, reason RevokeReason) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for id, row := range s.rows {
		if row.UserID != userID || row.RevokedAt != nil {
			continue
		}
		t := now
		row.RevokedAt = &t
		row.RevokedReason = reason
		s.rows[id] = row
		n++
	}
	return n, nil
}

func (s *MemoryStore) ListActive(ctx context.Context, now time.Time, userID string) ([]Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Row
	for _, row := range s.rows {
		if row.UserID == userID && row.Active(now) {
			out = append(out, row)
		}
	}

	// Newest first; ULIDs break ties deterministically.
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})

	return out, nil
}

func (s *MemoryStore) Touch(ctx context.Context, now time.Time, sessionID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.rows[sessionID]
	if !ok {
		return ErrSessionNotFound
	}
	t := now
	row.LastUsedAt = &t
	s.rows[sessionID] = row
	return nil
}

func (s *MemoryStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for id, row := range s.rows {
		if row.ExpiresAt.After(now) {
			continue
		}
		delete(s.rows, id)
		delete(s.byHash, row.RefreshHash)
		n++
	}
	return n, nil
}
