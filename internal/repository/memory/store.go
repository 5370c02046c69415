package memory

import (
	"strings"
	"sync"
	"time"

	"github.com/cmlabs-hris/assetverse-backend-go/internal/domain/asset"
	"github.com/cmlabs-hris/assetverse-backend-go/internal/domain/assetrequest"
	"github.com/cmlabs-hris/assetverse-backend-go/internal/domain/user"
	"github.com/google/uuid"
)

// Store keeps every collection behind one mutex so each repository call is
// atomic, the way a single document update is in the real stores.
type Store struct {
	mu       sync.RWMutex
	users    map[string]user.User
	assets   map[string]asset.Asset
	requests map[string]assetrequest.Request
	applied  map[string]string // adjustment key -> asset ID
	order    map[string]uint64
	seq      uint64
	now      func() time.Time
}

// NewStore creates an empty in-process store.
func NewStore() *Store {
	return &Store{
		users:    make(map[string]user.User),
		assets:   make(map[string]asset.Asset),
		requests: make(map[string]assetrequest.Request),
		applied:  make(map[string]string),
		order:    make(map[string]uint64),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// newID must be called with mu held.
func (s *Store) newID() string {
	s.seq++
	id := uuid.Must(uuid.NewV7()).String()
	s.order[id] = s.seq
	return id
}

func (s *Store) Users() *UserRepository {
	return &UserRepository{s: s}
}

func (s *Store) Assets() *AssetRepository {
	return &AssetRepository{s: s}
}

func (s *Store) Requests() *RequestRepository {
	return &RequestRepository{s: s}
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func ptr[T any](v T) *T {
	return &v
}
