package gov

import (
	"github.com/holiman/uint256"
	"github.com/iov-one/dao"
	"github.com/iov-one/dao/coin"
	"github.com/iov-one/dao/errors"
	"github.com/iov-one/dao/orm"
)

// ProposalBucket stores proposals under sequential IDs starting at 1.
// Proposals are never deleted, so an ID is never reused.
type ProposalBucket struct {
	orm.ModelBucket
}

// NewProposalBucket returns a bucket for proposals.
func NewProposalBucket() *ProposalBucket {
	return &ProposalBucket{
		ModelBucket: orm.NewModelBucket("govproposal", &Proposal{}),
	}
}

// Create stores a new open proposal without votes and returns its ID.
func (b *ProposalBucket) Create(
	db dao.KVStore,
	description string,
	amount *uint256.Int,
	recipient, author dao.Address,
) (uint64, error) {
	p := &Proposal{
		Description: description,
		Amount:      amount,
		Recipient:   recipient,
		Votes:       coin.Zero(),
		Author:      author,
	}
	if err := b.ModelBucket.Create(db, p); err != nil {
		return 0, errors.Wrap(err, "proposal")
	}
	return p.ID, nil
}

// GetProposal returns the proposal with given ID. ErrNotFound is returned
// for IDs that were never allocated, including zero.
func (b *ProposalBucket) GetProposal(db dao.ReadOnlyKVStore, id uint64) (*Proposal, error) {
	if id == 0 {
		return nil, errors.Wrap(errors.ErrNotFound, "proposal IDs start at 1")
	}
	var p Proposal
	if err := b.One(db, orm.EncodeSequence(id), &p); err != nil {
		return nil, errors.Wrapf(err, "proposal %d", id)
	}
	return &p, nil
}

// Update overwrites an existing proposal.
func (b *ProposalBucket) Update(db dao.KVStore, p *Proposal) error {
	key := p.GetID()
	if err := b.Has(db, key); err != nil {
		return errors.Wrapf(err, "proposal %d", p.ID)
	}
	return b.Put(db, key, p)
}

// Count returns the highest allocated proposal ID.
func (b *ProposalBucket) Count(db dao.ReadOnlyKVStore) (uint64, error) {
	return b.LastID(db)
}

// Proposals returns all proposals in ID order.
func (b *ProposalBucket) Proposals(db dao.ReadOnlyKVStore) ([]*Proposal, error) {
	it, err := b.PrefixScan(db, nil, false)
	if err != nil {
		return nil, err
	}
	defer it.Release()

	var res []*Proposal
	for {
		var p Proposal
		switch _, err := it.LoadNext(&p); {
		case err == nil:
			res = append(res, &p)
		case orm.ErrIteratorDone.Is(err):
			return res, nil
		default:
			return nil, err
		}
	}
}

// VoteBucket keeps a receipt for every (proposal, voter) pair together with
// the running vote total of each proposal.
type VoteBucket struct {
	receipts orm.ModelBucket
	tallies  orm.ModelBucket
}

// NewVoteBucket returns a bucket for votes.
func NewVoteBucket() *VoteBucket {
	return &VoteBucket{
		receipts: orm.NewModelBucket("govvote", &VoteReceipt{}),
		tallies:  orm.NewModelBucket("govtally", &Tally{}),
	}
}

// receiptKey groups all receipts of a proposal under a common prefix.
func receiptKey(id uint64, voter dao.Address) []byte {
	return append(orm.EncodeSequence(id), voter...)
}

// HasVoted returns true if the voter already voted on given proposal.
func (b *VoteBucket) HasVoted(db dao.ReadOnlyKVStore, id uint64, voter dao.Address) (bool, error) {
	switch err := b.receipts.Has(db, receiptKey(id, voter)); {
	case err == nil:
		return true, nil
	case errors.ErrNotFound.Is(err):
		return false, nil
	default:
		return false, err
	}
}

// Receipt returns the receipt of a vote. ErrNotFound is returned if the
// voter did not vote on the proposal.
func (b *VoteBucket) Receipt(db dao.ReadOnlyKVStore, id uint64, voter dao.Address) (*VoteReceipt, error) {
	var r VoteReceipt
	if err := b.receipts.One(db, receiptKey(id, voter), &r); err != nil {
		return nil, errors.Wrapf(err, "vote of %s on proposal %d", voter, id)
	}
	return &r, nil
}

// RecordVote stores the receipt and adds the weight to the proposal total.
// ErrAlreadyVoted is returned if the voter already has a receipt.
func (b *VoteBucket) RecordVote(db dao.KVStore, id uint64, voter dao.Address, weight *uint256.Int) (*uint256.Int, error) {
	if weight == nil {
		return nil, errors.Wrap(errors.ErrInput, "missing weight")
	}
	voted, err := b.HasVoted(db, id, voter)
	if err != nil {
		return nil, err
	}
	if voted {
		return nil, errors.Wrapf(errors.ErrAlreadyVoted, "%s on proposal %d", voter, id)
	}
	total, err := b.Tally(db, id)
	if err != nil {
		return nil, err
	}
	if total, err = coin.Add(total, weight); err != nil {
		return nil, errors.Wrapf(err, "tally of proposal %d", id)
	}
	if err := b.receipts.Put(db, receiptKey(id, voter), &VoteReceipt{Weight: weight}); err != nil {
		return nil, err
	}
	if err := b.tallies.Put(db, orm.EncodeSequence(id), &Tally{Total: total}); err != nil {
		return nil, err
	}
	return total, nil
}

// Tally returns the accumulated weight of all votes on a proposal.
func (b *VoteBucket) Tally(db dao.ReadOnlyKVStore, id uint64) (*uint256.Int, error) {
	var t Tally
	switch err := b.tallies.One(db, orm.EncodeSequence(id), &t); {
	case err == nil:
		return t.Total, nil
	case errors.ErrNotFound.Is(err):
		return coin.Zero(), nil
	default:
		return nil, err
	}
}

// Voters returns the addresses that voted on a proposal, in key order.
func (b *VoteBucket) Voters(db dao.ReadOnlyKVStore, id uint64) ([]dao.Address, error) {
	prefix := orm.EncodeSequence(id)
	it, err := b.receipts.PrefixScan(db, prefix, false)
	if err != nil {
		return nil, err
	}
	defer it.Release()

	var res []dao.Address
	for {
		var r VoteReceipt
		switch key, err := it.LoadNext(&r); {
		case err == nil:
			res = append(res, dao.Address(key[len(prefix):]).Clone())
		case orm.ErrIteratorDone.Is(err):
			return res, nil
		default:
			return nil, err
		}
	}
}
