package services

import (
	"time"

	"machinedash/models"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

// SnapshotStore keeps filtered tables for a while so the export step can pick up
// exactly the rows a view was computed from.
type SnapshotStore struct {
	cache  *cache.Cache
	logger *zap.Logger
}

// NewSnapshotStore creates a store whose entries expire after ttl
func NewSnapshotStore(ttl time.Duration, logger *zap.Logger) *SnapshotStore {
	return &SnapshotStore{
		cache:  cache.New(ttl, 2*ttl),
		logger: logger,
	}
}

// Put stores a filtered table and returns its id
func (s *SnapshotStore) Put(table *models.Table) string {
	id := uuid.NewString()
	s.cache.Set(id, table, cache.DefaultExpiration)
	s.logger.Debug("Stored filtered snapshot",
		zap.String("snapshot_id", id),
		zap.Int("records", table.Len()))
	return id
}

// Get returns the snapshot, or ErrNoFilteredData when it is unknown or expired.
func (s *SnapshotStore) Get(id string) (*models.Table, error) {
	if id == "" {
		return nil, ErrNoFilteredData
	}
	value, found := s.cache.Get(id)
	if !found {
		return nil, ErrNoFilteredData
	}
	table, ok := value.(*models.Table)
	if !ok {
		return nil, ErrNoFilteredData
	}
	return table, nil
}

// Count returns the number of live snapshots (for monitoring)
func (s *SnapshotStore) Count() int {
	return s.cache.ItemCount()
}
