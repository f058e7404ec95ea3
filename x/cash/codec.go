package cash

import (
	"github.com/gogo/protobuf/proto"
)

// walletRecord is the wire representation of a Wallet, see codec.proto.
type walletRecord struct {
	Balance []byte `protobuf:"bytes,1,opt,name=balance,proto3" json:"balance,omitempty"`
}

func (m *walletRecord) Reset()         { *m = walletRecord{} }
func (m *walletRecord) String() string { return proto.CompactTextString(m) }
func (*walletRecord) ProtoMessage()    {}
