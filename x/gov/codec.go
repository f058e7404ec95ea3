package gov

import (
	"github.com/gogo/protobuf/proto"
)

// Wire representations of the gov models, declared in codec.proto.
// Identifiers are part of the database key and are not stored in the value.

type proposalRecord struct {
	Description string `protobuf:"bytes,1,opt,name=description,proto3" json:"description,omitempty"`
	Amount      []byte `protobuf:"bytes,2,opt,name=amount,proto3" json:"amount,omitempty"`
	Recipient   []byte `protobuf:"bytes,3,opt,name=recipient,proto3" json:"recipient,omitempty"`
	Votes       []byte `protobuf:"bytes,4,opt,name=votes,proto3" json:"votes,omitempty"`
	Finalized   bool   `protobuf:"varint,5,opt,name=finalized,proto3" json:"finalized,omitempty"`
	Author      []byte `protobuf:"bytes,6,opt,name=author,proto3" json:"author,omitempty"`
}

func (m *proposalRecord) Reset()         { *m = proposalRecord{} }
func (m *proposalRecord) String() string { return proto.CompactTextString(m) }
func (*proposalRecord) ProtoMessage()    {}

type receiptRecord struct {
	Weight []byte `protobuf:"bytes,1,opt,name=weight,proto3" json:"weight,omitempty"`
}

func (m *receiptRecord) Reset()         { *m = receiptRecord{} }
func (m *receiptRecord) String() string { return proto.CompactTextString(m) }
func (*receiptRecord) ProtoMessage()    {}

type tallyRecord struct {
	Total []byte `protobuf:"bytes,1,opt,name=total,proto3" json:"total,omitempty"`
}

func (m *tallyRecord) Reset()         { *m = tallyRecord{} }
func (m *tallyRecord) String() string { return proto.CompactTextString(m) }
func (*tallyRecord) ProtoMessage()    {}

type configurationRecord struct {
	Quorum []byte `protobuf:"bytes,1,opt,name=quorum,proto3" json:"quorum,omitempty"`
}

func (m *configurationRecord) Reset()         { *m = configurationRecord{} }
func (m *configurationRecord) String() string { return proto.CompactTextString(m) }
func (*configurationRecord) ProtoMessage()    {}
