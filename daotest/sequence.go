package daotest

import "encoding/binary"

// SequenceID returns an ID encoded the same way as the orm.Sequence does.
func SequenceID(n uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, n)
	return b
}
