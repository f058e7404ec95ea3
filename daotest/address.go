package daotest

import (
	"encoding/binary"
	"sync/atomic"
	"testing"

	"github.com/iov-one/dao"
)

var addrCounter uint64

// NewAddress returns a new unique address. Each call returns a different
// value, so tests can create as many investors as they need.
func NewAddress() dao.Address {
	n := atomic.AddUint64(&addrCounter, 1)
	raw := make([]byte, 8)
	binary.BigEndian.PutUint64(raw, n)
	return dao.NewAddress(append([]byte("daotest/"), raw...))
}

// ParseAddress takes an address in a human readable format and returns
// its binary representation. It fails the test if the address is not valid.
func ParseAddress(t testing.TB, encodedAddress string) dao.Address {
	t.Helper()

	addr, err := dao.ParseAddress(encodedAddress)
	if err != nil {
		t.Fatalf("cannot parse %q address: %s", encodedAddress, err)
	}
	return addr
}
