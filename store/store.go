package store

import (
	"time"

	"github.com/athenastudy/athena/internal/profile"
	"github.com/athenastudy/athena/store/cache"
)

// Store provides database access to all raw objects.
type Store struct {
	profile *profile.Profile
	driver  Driver

	// Cache settings
	cacheConfig cache.Config

	// Caches
	userCache       *cache.Cache // cache for users/device tokens
	preferenceCache *cache.Cache // cache for reminder preferences
	templateCache   *cache.Cache // cache for reminder templates
}

// New creates a new instance of Store.
func New(driver Driver, profile *profile.Profile) *Store {
	// Default cache settings
	cacheConfig := cache.Config{
		DefaultTTL:      10 * time.Minute,
		CleanupInterval: 5 * time.Minute,
		MaxItems:        1000,
		OnEviction:      nil,
	}

	store := &Store{
		driver:          driver,
		profile:         profile,
		cacheConfig:     cacheConfig,
		userCache:       cache.New(cacheConfig),
		preferenceCache: cache.New(cacheConfig),
		templateCache:   cache.New(cacheConfig),
	}

	return store
}

func (s *Store) GetDriver() Driver {
	return s.driver
}

func (s *Store) Close() error {
	// Stop all cache cleanup goroutines
	s.userCache.Close()
	s.preferenceCache.Close()
	s.templateCache.Close()

	return s.driver.Close()
}
