package app

import (
	"context"

	"github.com/iov-one/dao"
)

// update runs fn with the same guarantees as the public operations. Tests
// use it to exercise failure paths no operation can reach.
func (a *App) update(ctx context.Context, fn func(dao.Context, dao.KVStore) error) error {
	return a.deliver(ctx, "update", func(ctx dao.Context, db dao.CacheableKVStore) error {
		return fn(ctx, db)
	})
}
