package storage

import (
	"github.com/dgraph-io/ristretto"

	"github.com/centavohq/centavo/internal/model"
)

// userCache is a small read cache for user rows. Spend validation hits the
// user table on every request, so hot users are kept in memory and evicted
// whenever their balance changes.
type userCache struct {
	cache *ristretto.Cache
}

func newUserCache() (*userCache, error) {
	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 10000, // number of keys to track frequency of
		MaxCost:     1000,
		BufferItems: 64, // number of keys per Get buffer
	})
	if err != nil {
		return nil, err
	}
	return &userCache{cache: c}, nil
}

// get returns a copy of the cached user, if present. Copies keep callers
// from mutating the shared cached value.
func (c *userCache) get(id string) (*model.User, bool) {
	v, ok := c.cache.Get(id)
	if !ok {
		return nil, false
	}
	user, ok := v.(model.User)
	if !ok {
		return nil, false
	}
	return &user, true
}

func (c *userCache) set(user *model.User) {
	c.cache.Set(user.ID, *user, 1)
}

func (c *userCache) invalidate(id string) {
	c.cache.Del(id)
}

func (c *userCache) close() {
	c.cache.Close()
}
