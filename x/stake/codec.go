package stake

import (
	"github.com/gogo/protobuf/proto"
)

// holdingRecord is the wire representation of a Holding, see codec.proto.
type holdingRecord struct {
	Amount []byte `protobuf:"bytes,1,opt,name=amount,proto3" json:"amount,omitempty"`
}

func (m *holdingRecord) Reset()         { *m = holdingRecord{} }
func (m *holdingRecord) String() string { return proto.CompactTextString(m) }
func (*holdingRecord) ProtoMessage()    {}
