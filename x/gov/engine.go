package gov

import (
	"github.com/holiman/uint256"
	"github.com/iov-one/dao"
	"github.com/iov-one/dao/coin"
	"github.com/iov-one/dao/errors"
	"github.com/iov-one/dao/gconf"
	"github.com/tendermint/tendermint/libs/log"
)

// Engine runs the proposal state machine. A proposal is open until it is
// finalized, and a finalized proposal never reopens.
//
// Engine keeps no state of its own besides the quorum and holds no lock.
// Every call operates on the store it is given, which allows a treasury
// payer to call back into the engine with the in-flight store.
type Engine struct {
	oracle    StakeOracle
	treasury  Treasury
	quorum    *uint256.Int
	proposals *ProposalBucket
	votes     *VoteBucket
}

// NewEngine returns an engine with a fixed quorum.
func NewEngine(oracle StakeOracle, treasury Treasury, quorum *uint256.Int) *Engine {
	return &Engine{
		oracle:    oracle,
		treasury:  treasury,
		quorum:    new(uint256.Int).Set(quorum),
		proposals: NewProposalBucket(),
		votes:     NewVoteBucket(),
	}
}

// LoadEngine returns an engine using the quorum of the gov configuration
// stored in db.
func LoadEngine(db gconf.ReadStore, oracle StakeOracle, treasury Treasury) (*Engine, error) {
	conf, err := LoadConfiguration(db)
	if err != nil {
		return nil, errors.Wrap(err, "gov configuration")
	}
	return NewEngine(oracle, treasury, conf.Quorum), nil
}

// Quorum returns the minimal vote weight required to finalize a proposal.
func (e *Engine) Quorum() *uint256.Int {
	return new(uint256.Int).Set(e.quorum)
}

func logger(ctx dao.Context) log.Logger {
	return dao.GetLogger(ctx).With("module", packageName)
}

// stakeOf returns the live stake of the caller. ErrUnauthorized is returned
// if the caller holds none.
func (e *Engine) stakeOf(db dao.ReadOnlyKVStore, caller dao.Address) (*uint256.Int, error) {
	if err := caller.Validate(); err != nil {
		return nil, errors.Wrap(errors.ErrUnauthorized, "invalid caller address")
	}
	stake, err := e.oracle.BalanceOf(db, caller)
	if err != nil {
		return nil, errors.Wrap(err, "stake oracle")
	}
	if stake.IsZero() {
		return nil, errors.Wrapf(errors.ErrUnauthorized, "%s holds no stake", caller)
	}
	return stake, nil
}

// CreateProposal registers a request to send amount of the treasury funds
// to recipient. The caller must hold stake and the treasury must hold at
// least amount at the time of creation.
func (e *Engine) CreateProposal(
	ctx dao.Context,
	db dao.KVStore,
	caller dao.Address,
	description string,
	amount *uint256.Int,
	recipient dao.Address,
) (uint64, error) {
	if _, err := e.stakeOf(db, caller); err != nil {
		return 0, err
	}
	if amount == nil {
		return 0, errors.Wrap(errors.ErrInvalidAmount, "missing amount")
	}
	balance, err := e.treasury.Balance(db)
	if err != nil {
		return 0, errors.Wrap(err, "treasury balance")
	}
	if amount.Gt(balance) {
		return 0, errors.Wrapf(errors.ErrInvalidAmount, "treasury holds %s, requested %s",
			coin.Format(balance), coin.Format(amount))
	}
	if err := recipient.Validate(); err != nil {
		return 0, errors.Wrap(err, "recipient")
	}

	id, err := e.proposals.Create(db, description, amount, recipient, caller)
	if err != nil {
		return 0, err
	}
	dao.EmitEvent(ctx, &ProposeEvent{
		ProposalID: id,
		Amount:     new(uint256.Int).Set(amount),
		Recipient:  recipient.Clone(),
		Proposer:   caller.Clone(),
	})
	logger(ctx).Info("proposal created",
		"proposal", id,
		"proposer", caller,
		"amount", coin.Format(amount),
		"recipient", recipient)
	return id, nil
}

// Vote adds the live stake of the caller to the proposal votes and
// returns the new total. Each holder votes at most once per proposal.
func (e *Engine) Vote(ctx dao.Context, db dao.KVStore, caller dao.Address, id uint64) (*uint256.Int, error) {
	p, err := e.proposals.GetProposal(db, id)
	if err != nil {
		return nil, err
	}
	weight, err := e.stakeOf(db, caller)
	if err != nil {
		return nil, err
	}
	total, err := e.votes.RecordVote(db, id, caller, weight)
	if err != nil {
		return nil, err
	}
	p.Votes = total
	if err := e.proposals.Update(db, p); err != nil {
		return nil, err
	}
	dao.EmitEvent(ctx, &VoteEvent{ProposalID: id, Voter: caller.Clone()})
	logger(ctx).Info("vote recorded",
		"proposal", id,
		"voter", caller,
		"weight", coin.Format(weight),
		"votes", coin.Format(total))
	return new(uint256.Int).Set(total), nil
}

// FinalizeProposal releases the funds of a proposal that reached the
// quorum.
//
// The proposal is marked finalized before the treasury is called, so any
// call back into the engine made while the funds are disbursed observes
// the final state. Disbursement runs in a nested cache. If it fails, the
// nested writes and the events emitted meanwhile are dropped, the proposal
// is reopened and the error is returned.
func (e *Engine) FinalizeProposal(ctx dao.Context, db dao.CacheableKVStore, caller dao.Address, id uint64) error {
	p, err := e.proposals.GetProposal(db, id)
	if err != nil {
		return err
	}
	if p.Finalized {
		return errors.Wrapf(errors.ErrAlreadyFinalized, "proposal %d", id)
	}
	if _, err := e.stakeOf(db, caller); err != nil {
		return err
	}
	if p.Votes.Lt(e.quorum) {
		return errors.Wrapf(errors.ErrInsufficientVotes, "proposal %d has %s, quorum is %s",
			id, coin.Format(p.Votes), coin.Format(e.quorum))
	}

	p.Finalized = true
	if err := e.proposals.Update(db, p); err != nil {
		return err
	}

	if err := e.disburse(ctx, db, p); err != nil {
		if rerr := e.reopen(db, id); rerr != nil {
			return errors.Wrapf(rerr, "reopen after failed disbursement: %s", err)
		}
		logger(ctx).Error("proposal disbursement failed",
			"proposal", id,
			"err", err)
		return err
	}

	dao.EmitEvent(ctx, &FinalizeEvent{ProposalID: id})
	logger(ctx).Info("proposal finalized",
		"proposal", id,
		"finalizer", caller,
		"amount", coin.Format(p.Amount),
		"recipient", p.Recipient)
	return nil
}

// disburse calls the treasury within a nested cache. Nothing is written to
// db and no event is kept unless the treasury succeeds.
func (e *Engine) disburse(ctx dao.Context, db dao.CacheableKVStore, p *Proposal) error {
	var savepoint int
	events, hasEvents := dao.GetEventLog(ctx)
	if hasEvents {
		savepoint = events.Savepoint()
	}

	cache := db.CacheWrap()
	err := e.treasury.Disburse(ctx, cache, p.Amount, p.Recipient)
	if err == nil {
		err = cache.Write()
	}
	if err != nil {
		cache.Discard()
		if hasEvents {
			events.Rollback(savepoint)
		}
		return errors.Wrapf(err, "disburse proposal %d", p.ID)
	}
	return nil
}

func (e *Engine) reopen(db dao.KVStore, id uint64) error {
	p, err := e.proposals.GetProposal(db, id)
	if err != nil {
		return err
	}
	p.Finalized = false
	return e.proposals.Update(db, p)
}

// Proposal returns the proposal with given ID.
func (e *Engine) Proposal(db dao.ReadOnlyKVStore, id uint64) (*Proposal, error) {
	return e.proposals.GetProposal(db, id)
}

// ProposalCount returns the number of proposals ever created, which is
// also the highest allocated ID.
func (e *Engine) ProposalCount(db dao.ReadOnlyKVStore) (uint64, error) {
	return e.proposals.Count(db)
}

// Proposals returns all proposals in ID order.
func (e *Engine) Proposals(db dao.ReadOnlyKVStore) ([]*Proposal, error) {
	return e.proposals.Proposals(db)
}

// HasVoted returns true if the voter voted on given proposal.
func (e *Engine) HasVoted(db dao.ReadOnlyKVStore, id uint64, voter dao.Address) (bool, error) {
	return e.votes.HasVoted(db, id, voter)
}

// Voters returns all addresses that voted on given proposal.
func (e *Engine) Voters(db dao.ReadOnlyKVStore, id uint64) ([]dao.Address, error) {
	if _, err := e.proposals.GetProposal(db, id); err != nil {
		return nil, err
	}
	return e.votes.Voters(db, id)
}

// VoteWeight returns the stake weight the voter contributed to a
// proposal. ErrNotFound is returned if the voter did not vote.
func (e *Engine) VoteWeight(db dao.ReadOnlyKVStore, id uint64, voter dao.Address) (*uint256.Int, error) {
	r, err := e.votes.Receipt(db, id, voter)
	if err != nil {
		return nil, err
	}
	return r.Weight, nil
}
