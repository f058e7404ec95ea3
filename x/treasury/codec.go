package treasury

import (
	"github.com/gogo/protobuf/proto"
)

// reserveRecord is the wire representation of a Reserve, see codec.proto.
type reserveRecord struct {
	Balance []byte `protobuf:"bytes,1,opt,name=balance,proto3" json:"balance,omitempty"`
}

func (m *reserveRecord) Reset()         { *m = reserveRecord{} }
func (m *reserveRecord) String() string { return proto.CompactTextString(m) }
func (*reserveRecord) ProtoMessage()    {}
