package orm

import (
	"bytes"
	"reflect"

	"github.com/iov-one/dao"
	"github.com/iov-one/dao/errors"
	"github.com/iov-one/dao/store"
)

// Model is implemented by any entity that can be stored using ModelBucket.
type Model interface {
	dao.Persistent
	Validate() error
}

// SerialModel is a Model that is identified by a sequence generated ID.
// GetID/SetID are used to store and access the key. The ID is not part of
// the serialized value.
type SerialModel interface {
	Model
	GetID() []byte
	SetID([]byte) error
}

// ModelBucket stores models of a single type under a common key prefix.
type ModelBucket interface {
	// One query the database for a single model instance. Lookup is done
	// by the primary key. Result is loaded into given destination model.
	// This method returns ErrNotFound if the entity does not exist in the
	// database.
	// If given model type cannot be used to contain stored entity, ErrType
	// is returned.
	One(db dao.ReadOnlyKVStore, key []byte, dest Model) error

	// Has returns nil if an entity with given primary key value exists. It
	// returns ErrNotFound if no entity can be found.
	Has(db dao.ReadOnlyKVStore, key []byte) error

	// Put saves given model in the database under given key. The model is
	// validated first.
	Put(db dao.KVStore, key []byte, m Model) error

	// Create saves given serial model in the database under a newly
	// generated ID. ID field must be unset and is set on success.
	Create(db dao.KVStore, m SerialModel) error

	// Delete removes an entity with given primary key from the database.
	// Returns ErrNotFound if an entity with given key does not exist.
	Delete(db dao.KVStore, key []byte) error

	// PrefixScan will scan for all models with a primary key that begins
	// with the given prefix. If reverse is true, iterates in descending
	// order, otherwise in ascending order.
	PrefixScan(db dao.ReadOnlyKVStore, prefix []byte, reverse bool) (ModelIterator, error)

	// LastID returns the most recently generated ID, zero if Create was
	// never called.
	LastID(db dao.ReadOnlyKVStore) (uint64, error)
}

// NewModelBucket returns a ModelBucket that stores models of the same type
// as m. All keys are prefixed with the bucket name.
func NewModelBucket(name string, m Model) ModelBucket {
	tp := reflect.TypeOf(m)
	if tp.Kind() == reflect.Ptr {
		tp = tp.Elem()
	}
	return &modelBucket{
		prefix: []byte(name + ":"),
		idSeq:  NewSequence(name, "id"),
		model:  tp,
	}
}

type modelBucket struct {
	prefix []byte
	idSeq  Sequence
	model  reflect.Type
}

var _ ModelBucket = (*modelBucket)(nil)

func (mb *modelBucket) dbKey(key []byte) []byte {
	return append(append([]byte{}, mb.prefix...), key...)
}

func (mb *modelBucket) checkType(m Model) error {
	tp := reflect.TypeOf(m)
	if tp.Kind() != reflect.Ptr {
		return errors.Wrap(errors.ErrType, "model destination must be a pointer")
	}
	if mb.model != tp.Elem() {
		return errors.Wrapf(errors.ErrType, "%T cannot be represented as %s", m, mb.model)
	}
	return nil
}

func (mb *modelBucket) One(db dao.ReadOnlyKVStore, key []byte, dest Model) error {
	if err := mb.checkType(dest); err != nil {
		return err
	}
	if len(key) == 0 {
		return errors.Wrap(errors.ErrNotFound, "empty key")
	}
	raw, err := db.Get(mb.dbKey(key))
	if err != nil {
		return errors.Wrap(errors.ErrDatabase, err.Error())
	}
	if raw == nil {
		return errors.Wrapf(errors.ErrNotFound, "%T not in the store", dest)
	}
	return load(key, raw, dest)
}

func (mb *modelBucket) Has(db dao.ReadOnlyKVStore, key []byte) error {
	if len(key) == 0 {
		// nil key is a special case that would cause the store API to panic.
		return errors.ErrNotFound
	}
	ok, err := db.Has(mb.dbKey(key))
	if err != nil {
		return errors.Wrap(errors.ErrDatabase, err.Error())
	}
	if !ok {
		return errors.ErrNotFound
	}
	return nil
}

func (mb *modelBucket) Put(db dao.KVStore, key []byte, m Model) error {
	if err := mb.checkType(m); err != nil {
		return err
	}
	if len(key) == 0 {
		return errors.Wrap(errors.ErrModel, "key must be set")
	}
	if err := m.Validate(); err != nil {
		return errors.Wrap(err, "invalid model")
	}
	raw, err := m.Marshal()
	if err != nil {
		return errors.Wrap(errors.ErrModel, err.Error())
	}
	if err := db.Set(mb.dbKey(key), raw); err != nil {
		return errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return nil
}

func (mb *modelBucket) Create(db dao.KVStore, m SerialModel) error {
	if err := mb.checkType(m); err != nil {
		return err
	}
	if len(m.GetID()) != 0 {
		return errors.Wrap(errors.ErrModel, "ID must be unset")
	}
	key, err := mb.idSeq.NextVal(db)
	if err != nil {
		return errors.Wrap(err, "ID sequence")
	}
	if err := mb.Put(db, key, m); err != nil {
		return errors.Wrap(err, "cannot create in the database")
	}
	if err := m.SetID(key); err != nil {
		return errors.Wrap(err, "cannot set ID")
	}
	return nil
}

func (mb *modelBucket) Delete(db dao.KVStore, key []byte) error {
	if err := mb.Has(db, key); err != nil {
		return err
	}
	if err := db.Delete(mb.dbKey(key)); err != nil {
		return errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return nil
}

func (mb *modelBucket) PrefixScan(db dao.ReadOnlyKVStore, prefix []byte, reverse bool) (ModelIterator, error) {
	start, end := store.PrefixRange(mb.dbKey(prefix))

	var raw dao.Iterator
	var err error
	if reverse {
		raw, err = db.ReverseIterator(start, end)
	} else {
		raw, err = db.Iterator(start, end)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return &modelIterator{iterator: raw, bucketPrefix: mb.prefix, checkType: mb.checkType}, nil
}

func (mb *modelBucket) LastID(db dao.ReadOnlyKVStore) (uint64, error) {
	return mb.idSeq.Latest(db)
}

// ModelIterator loads models one by one in the order of their keys.
type ModelIterator interface {
	// LoadNext loads the current value into the passed destination and
	// moves the iterator forward. It returns the key of the loaded model
	// with the bucket prefix removed.
	// ErrIteratorDone is returned when there are no more values.
	LoadNext(dest Model) ([]byte, error)

	// Release releases the iterator.
	Release()
}

type modelIterator struct {
	// this is the raw KVStoreIterator
	iterator dao.Iterator
	// this is the bucketPrefix to strip from each key
	bucketPrefix []byte
	checkType    func(Model) error
}

func (i *modelIterator) LoadNext(dest Model) ([]byte, error) {
	if !i.iterator.Valid() {
		return nil, ErrIteratorDone
	}
	if err := i.checkType(dest); err != nil {
		return nil, err
	}
	key, value := i.iterator.Key(), i.iterator.Value()
	if !bytes.HasPrefix(key, i.bucketPrefix) {
		return nil, errors.Wrapf(errors.ErrDatabase, "key with unexpected prefix: %X", key)
	}
	key = key[len(i.bucketPrefix):]
	if err := load(key, value, dest); err != nil {
		return nil, err
	}
	if err := i.iterator.Next(); err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return key, nil
}

func (i *modelIterator) Release() {
	i.iterator.Close()
}

func load(key, value []byte, dest Model) error {
	if err := dest.Unmarshal(value); err != nil {
		return errors.Wrapf(errors.ErrModel, "unmarshaling into %T: %s", dest, err)
	}
	if sm, ok := dest.(SerialModel); ok {
		if err := sm.SetID(key); err != nil {
			return errors.Wrap(err, "setting ID")
		}
	}
	return nil
}
