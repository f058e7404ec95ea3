package orm

import (
	"github.com/iov-one/dao/errors"
)

// Orm reserves 100~109 error codes

// ErrIteratorDone is returned by iterators once all entities were loaded.
var ErrIteratorDone = errors.Register(100, "iterator done")
