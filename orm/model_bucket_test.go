package orm

import (
	"testing"

	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/dao/daotest/assert"
	"github.com/iov-one/dao/errors"
	"github.com/iov-one/dao/store"
)

// counter is a minimal serial model used to exercise buckets.
type counter struct {
	ID    []byte `protobuf:"bytes,1,opt,name=id,proto3"`
	Count int64  `protobuf:"varint,2,opt,name=count,proto3"`
}

func (c *counter) Reset()         { *c = counter{} }
func (c *counter) String() string { return proto.CompactTextString(c) }
func (*counter) ProtoMessage()    {}

// counterCodec exists so that counter itself does not implement
// proto.Marshaler.
type counterCodec struct {
	Count int64 `protobuf:"varint,2,opt,name=count,proto3"`
}

func (c *counterCodec) Reset()         { *c = counterCodec{} }
func (c *counterCodec) String() string { return proto.CompactTextString(c) }
func (*counterCodec) ProtoMessage()    {}

func (c *counter) Marshal() ([]byte, error) {
	return proto.Marshal(&counterCodec{Count: c.Count})
}

func (c *counter) Unmarshal(raw []byte) error {
	var msg counterCodec
	if err := proto.Unmarshal(raw, &msg); err != nil {
		return err
	}
	*c = counter{Count: msg.Count}
	return nil
}

func (c *counter) Validate() error {
	if c.Count < 0 {
		return errors.Wrap(errors.ErrModel, "negative count")
	}
	return nil
}

func (c *counter) GetID() []byte { return c.ID }

func (c *counter) SetID(id []byte) error {
	c.ID = id
	return nil
}

type other struct{ counter }

func TestModelBucket(t *testing.T) {
	db := store.MemStore()
	b := NewModelBucket("cnts", &counter{})

	if err := b.Put(db, []byte("c1"), &counter{Count: 1}); err != nil {
		t.Fatalf("cannot save counter instance: %s", err)
	}

	var c1 counter
	if err := b.One(db, []byte("c1"), &c1); err != nil {
		t.Fatalf("cannot get c1 counter: %s", err)
	}
	if c1.Count != 1 {
		t.Fatalf("unexpected counter state: %d", c1.Count)
	}
	assert.Equal(t, []byte("c1"), c1.ID)
	assert.Nil(t, b.Has(db, []byte("c1")))

	if err := b.Delete(db, []byte("c1")); err != nil {
		t.Fatalf("cannot delete c1 counter: %s", err)
	}
	if err := b.Delete(db, []byte("unknown")); !errors.ErrNotFound.Is(err) {
		t.Fatalf("unexpected error when deleting unexisting instance: %s", err)
	}
	if err := b.One(db, []byte("c1"), &c1); !errors.ErrNotFound.Is(err) {
		t.Fatalf("unexpected error for an unknown model get: %s", err)
	}
	assert.IsErr(t, errors.ErrNotFound, b.Has(db, nil))
}

func TestModelBucketValidation(t *testing.T) {
	db := store.MemStore()
	b := NewModelBucket("cnts", &counter{})

	assert.IsErr(t, errors.ErrModel, b.Put(db, []byte("c1"), &counter{Count: -1}))
	assert.IsErr(t, errors.ErrModel, b.Put(db, nil, &counter{Count: 1}))
	assert.IsErr(t, errors.ErrType, b.Put(db, []byte("c1"), &other{}))

	assert.Nil(t, b.Put(db, []byte("c1"), &counter{Count: 1}))
	assert.IsErr(t, errors.ErrType, b.One(db, []byte("c1"), &other{}))
}

func TestModelBucketCreate(t *testing.T) {
	db := store.MemStore()
	b := NewModelBucket("cnts", &counter{})

	last, err := b.LastID(db)
	assert.Nil(t, err)
	assert.Equal(t, uint64(0), last)

	for i := int64(1); i <= 3; i++ {
		c := &counter{Count: i * 10}
		assert.Nil(t, b.Create(db, c))
		assert.Equal(t, EncodeSequence(uint64(i)), c.ID)
	}

	// ID must not be set upfront
	assert.IsErr(t, errors.ErrModel, b.Create(db, &counter{ID: []byte("x")}))

	last, err = b.LastID(db)
	assert.Nil(t, err)
	assert.Equal(t, uint64(3), last)

	var c counter
	assert.Nil(t, b.One(db, EncodeSequence(2), &c))
	assert.Equal(t, int64(20), c.Count)
}

func TestModelBucketPrefixScan(t *testing.T) {
	db := store.MemStore()
	b := NewModelBucket("cnts", &counter{})
	// a different bucket sharing a name prefix must not leak into scans
	noise := NewModelBucket("cnts2", &counter{})
	assert.Nil(t, noise.Put(db, []byte("a1"), &counter{Count: 99}))

	for i, key := range []string{"a1", "a2", "b1"} {
		assert.Nil(t, b.Put(db, []byte(key), &counter{Count: int64(i)}))
	}

	cases := map[string]struct {
		prefix   []byte
		reverse  bool
		wantKeys []string
	}{
		"all":          {nil, false, []string{"a1", "a2", "b1"}},
		"all reversed": {nil, true, []string{"b1", "a2", "a1"}},
		"prefix":       {[]byte("a"), false, []string{"a1", "a2"}},
		"no match":     {[]byte("c"), false, nil},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			it, err := b.PrefixScan(db, tc.prefix, tc.reverse)
			assert.Nil(t, err)
			defer it.Release()

			var keys []string
			for {
				var c counter
				key, err := it.LoadNext(&c)
				if ErrIteratorDone.Is(err) {
					break
				}
				assert.Nil(t, err)
				assert.Equal(t, key, c.ID)
				keys = append(keys, string(key))
			}
			assert.Equal(t, tc.wantKeys, keys)
		})
	}
}
