package gov

import (
	"strconv"

	"github.com/holiman/uint256"
	"github.com/iov-one/dao"
	"github.com/tendermint/tendermint/libs/common"
)

// ProposeEvent is emitted when a proposal is created.
type ProposeEvent struct {
	ProposalID uint64
	Amount     *uint256.Int
	Recipient  dao.Address
	Proposer   dao.Address
}

var _ dao.Event = (*ProposeEvent)(nil)

// EventName implements dao.Event.
func (*ProposeEvent) EventName() string { return "propose" }

// Tags implements dao.Event.
func (e *ProposeEvent) Tags() []common.KVPair {
	return []common.KVPair{
		tag("proposal", idValue(e.ProposalID)),
		tag("amount", e.Amount.Dec()),
		tag("recipient", e.Recipient.String()),
		tag("proposer", e.Proposer.String()),
	}
}

// VoteEvent is emitted when a vote is recorded.
type VoteEvent struct {
	ProposalID uint64
	Voter      dao.Address
}

var _ dao.Event = (*VoteEvent)(nil)

// EventName implements dao.Event.
func (*VoteEvent) EventName() string { return "vote" }

// Tags implements dao.Event.
func (e *VoteEvent) Tags() []common.KVPair {
	return []common.KVPair{
		tag("proposal", idValue(e.ProposalID)),
		tag("voter", e.Voter.String()),
	}
}

// FinalizeEvent is emitted when a proposal is finalized and its funds
// are released.
type FinalizeEvent struct {
	ProposalID uint64
}

var _ dao.Event = (*FinalizeEvent)(nil)

// EventName implements dao.Event.
func (*FinalizeEvent) EventName() string { return "finalize" }

// Tags implements dao.Event.
func (e *FinalizeEvent) Tags() []common.KVPair {
	return []common.KVPair{
		tag("proposal", idValue(e.ProposalID)),
	}
}

func tag(key, value string) common.KVPair {
	return common.KVPair{Key: []byte(packageName + "." + key), Value: []byte(value)}
}

func idValue(id uint64) string {
	return strconv.FormatUint(id, 10)
}
