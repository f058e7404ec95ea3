package store

import "github.com/iov-one/dao"

// Move references for all storage types into this package
// for shorter names everywhere

type (
	ReadOnlyKVStore  = dao.ReadOnlyKVStore
	SetDeleter       = dao.SetDeleter
	KVStore          = dao.KVStore
	Batch            = dao.Batch
	Iterator         = dao.Iterator
	CacheableKVStore = dao.CacheableKVStore
	KVCacheWrap      = dao.KVCacheWrap
	CommitKVStore    = dao.CommitKVStore
	CommitID         = dao.CommitID
)

// Model groups together key and value to return
type Model struct {
	Key   []byte
	Value []byte
}
