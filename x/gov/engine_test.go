package gov

import (
	"context"
	"testing"

	"github.com/holiman/uint256"
	"github.com/iov-one/dao"
	"github.com/iov-one/dao/coin"
	"github.com/iov-one/dao/daotest"
	"github.com/iov-one/dao/daotest/assert"
	"github.com/iov-one/dao/errors"
	"github.com/iov-one/dao/store"
	"github.com/iov-one/dao/x/cash"
	"github.com/iov-one/dao/x/stake"
	"github.com/iov-one/dao/x/treasury"
)

// fixture is a treasury of 100 units governed by five investors holding
// 200000 units each. The quorum is 500000 units and one base unit, so three
// votes are needed.
type fixture struct {
	db        dao.CacheableKVStore
	ledger    *stake.Ledger
	wallets   *cash.Controller
	treasury  *treasury.Controller
	engine    *Engine
	investors []dao.Address
	recipient dao.Address
	events    *dao.EventLog
	ctx       dao.Context
}

func newFixture(t testing.TB, payer treasury.Payer) *fixture {
	t.Helper()

	f := &fixture{
		db:        store.MemStore(),
		ledger:    stake.NewLedger(),
		wallets:   cash.NewController(),
		recipient: daotest.NewAddress(),
		events:    &dao.EventLog{},
	}
	f.ctx = dao.WithEventLog(context.Background(), f.events)
	if payer == nil {
		payer = f.wallets
	}
	f.treasury = treasury.NewController(payer)

	quorum, err := coin.ParseUnits("500000.000000000000000001")
	assert.Nil(t, err)
	f.engine = NewEngine(f.ledger, f.treasury, quorum)

	for i := 0; i < 5; i++ {
		investor := daotest.NewAddress()
		assert.Nil(t, f.ledger.Mint(f.db, investor, coin.Units(200000)))
		f.investors = append(f.investors, investor)
	}
	_, err = f.treasury.Deposit(f.db, coin.Units(100))
	assert.Nil(t, err)
	assert.Nil(t, f.wallets.Credit(f.db, f.recipient, coin.Units(10000)))
	return f
}

func (f *fixture) propose(t testing.TB, amount uint64) uint64 {
	t.Helper()
	id, err := f.engine.CreateProposal(f.ctx, f.db, f.investors[0], "send funds", coin.Units(amount), f.recipient)
	assert.Nil(t, err)
	return id
}

func (f *fixture) vote(t testing.TB, id uint64, voters int) {
	t.Helper()
	for _, v := range f.investors[:voters] {
		_, err := f.engine.Vote(f.ctx, f.db, v, id)
		assert.Nil(t, err)
	}
}

func (f *fixture) treasuryBalance(t testing.TB) string {
	t.Helper()
	balance, err := f.treasury.Balance(f.db)
	assert.Nil(t, err)
	return coin.Format(balance)
}

func (f *fixture) recipientBalance(t testing.TB) string {
	t.Helper()
	balance, err := f.wallets.Balance(f.db, f.recipient)
	assert.Nil(t, err)
	return coin.Format(balance)
}

func eventNames(l *dao.EventLog) []string {
	var names []string
	for _, e := range l.Events() {
		names = append(names, e.EventName())
	}
	return names
}

func TestCreateProposal(t *testing.T) {
	cases := map[string]struct {
		caller    func(*fixture) dao.Address
		amount    *uint256.Int
		recipient func(*fixture) dao.Address
		wantErr   *errors.Error
	}{
		"investor proposes the whole treasury": {
			caller:    func(f *fixture) dao.Address { return f.investors[0] },
			amount:    coin.Units(100),
			recipient: func(f *fixture) dao.Address { return f.recipient },
		},
		"zero amount": {
			caller:    func(f *fixture) dao.Address { return f.investors[1] },
			amount:    coin.Zero(),
			recipient: func(f *fixture) dao.Address { return f.recipient },
		},
		"amount exceeds the treasury": {
			caller:    func(f *fixture) dao.Address { return f.investors[0] },
			amount:    new(uint256.Int).AddUint64(coin.Units(100), 1),
			recipient: func(f *fixture) dao.Address { return f.recipient },
			wantErr:   errors.ErrInvalidAmount,
		},
		"missing amount": {
			caller:    func(f *fixture) dao.Address { return f.investors[0] },
			recipient: func(f *fixture) dao.Address { return f.recipient },
			wantErr:   errors.ErrInvalidAmount,
		},
		"caller without stake": {
			caller:    func(f *fixture) dao.Address { return daotest.NewAddress() },
			amount:    coin.Units(100),
			recipient: func(f *fixture) dao.Address { return f.recipient },
			wantErr:   errors.ErrUnauthorized,
		},
		"caller without stake and invalid amount": {
			caller:    func(f *fixture) dao.Address { return daotest.NewAddress() },
			amount:    coin.Units(1000),
			recipient: func(f *fixture) dao.Address { return f.recipient },
			wantErr:   errors.ErrUnauthorized,
		},
		"malformed caller": {
			caller:    func(f *fixture) dao.Address { return dao.Address{1} },
			amount:    coin.Units(100),
			recipient: func(f *fixture) dao.Address { return f.recipient },
			wantErr:   errors.ErrUnauthorized,
		},
		"malformed recipient": {
			caller:    func(f *fixture) dao.Address { return f.investors[0] },
			amount:    coin.Units(100),
			recipient: func(f *fixture) dao.Address { return dao.Address{1, 2} },
			wantErr:   errors.ErrInput,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			f := newFixture(t, nil)
			caller, recipient := tc.caller(f), tc.recipient(f)

			id, err := f.engine.CreateProposal(f.ctx, f.db, caller, "description", tc.amount, recipient)
			assert.IsErr(t, tc.wantErr, err)

			count, cerr := f.engine.ProposalCount(f.db)
			assert.Nil(t, cerr)
			if tc.wantErr != nil {
				assert.Equal(t, uint64(0), count)
				assert.Equal(t, 0, len(f.events.Events()))
				return
			}

			assert.Equal(t, uint64(1), id)
			assert.Equal(t, uint64(1), count)

			p, err := f.engine.Proposal(f.db, id)
			assert.Nil(t, err)
			assert.Equal(t, "description", p.Description)
			assert.Equal(t, tc.amount.Dec(), p.Amount.Dec())
			assert.Equal(t, recipient, p.Recipient)
			assert.Equal(t, caller, p.Author)
			assert.Equal(t, true, p.Votes.IsZero())
			assert.Equal(t, false, p.Finalized)

			assert.Equal(t, []dao.Event{&ProposeEvent{
				ProposalID: 1,
				Amount:     tc.amount,
				Recipient:  recipient,
				Proposer:   caller,
			}}, f.events.Events())
		})
	}
}

func TestProposalIDsAreSequential(t *testing.T) {
	f := newFixture(t, nil)
	for want := uint64(1); want <= 3; want++ {
		assert.Equal(t, want, f.propose(t, 10))
	}
	proposals, err := f.engine.Proposals(f.db)
	assert.Nil(t, err)
	assert.Equal(t, 3, len(proposals))
}

func TestVote(t *testing.T) {
	cases := map[string]struct {
		proposal  uint64
		voters    func(*fixture) []dao.Address
		wantErr   []*errors.Error
		wantVotes string
	}{
		"one vote": {
			proposal:  1,
			voters:    func(f *fixture) []dao.Address { return f.investors[:1] },
			wantErr:   []*errors.Error{nil},
			wantVotes: "200000",
		},
		"all investors": {
			proposal:  1,
			voters:    func(f *fixture) []dao.Address { return f.investors },
			wantErr:   []*errors.Error{nil, nil, nil, nil, nil},
			wantVotes: "1000000",
		},
		"second vote is refused": {
			proposal: 1,
			voters: func(f *fixture) []dao.Address {
				return []dao.Address{f.investors[2], f.investors[2]}
			},
			wantErr:   []*errors.Error{nil, errors.ErrAlreadyVoted},
			wantVotes: "200000",
		},
		"caller without stake": {
			proposal:  1,
			voters:    func(f *fixture) []dao.Address { return []dao.Address{daotest.NewAddress()} },
			wantErr:   []*errors.Error{errors.ErrUnauthorized},
			wantVotes: "0",
		},
		"unknown proposal": {
			proposal:  2,
			voters:    func(f *fixture) []dao.Address { return f.investors[:1] },
			wantErr:   []*errors.Error{errors.ErrNotFound},
			wantVotes: "0",
		},
		"unknown proposal is reported before missing stake": {
			proposal:  0,
			voters:    func(f *fixture) []dao.Address { return []dao.Address{daotest.NewAddress()} },
			wantErr:   []*errors.Error{errors.ErrNotFound},
			wantVotes: "0",
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			f := newFixture(t, nil)
			id := f.propose(t, 100)
			f.events.Rollback(0)

			var succeeded int
			for i, voter := range tc.voters(f) {
				total, err := f.engine.Vote(f.ctx, f.db, voter, tc.proposal)
				assert.IsErr(t, tc.wantErr[i], err)
				if err != nil {
					continue
				}
				succeeded++
				assert.Equal(t, coin.Units(200000*uint64(succeeded)).Dec(), total.Dec())

				voted, err := f.engine.HasVoted(f.db, tc.proposal, voter)
				assert.Nil(t, err)
				assert.Equal(t, true, voted)
				weight, err := f.engine.VoteWeight(f.db, tc.proposal, voter)
				assert.Nil(t, err)
				assert.Equal(t, "200000", coin.Format(weight))
			}

			p, err := f.engine.Proposal(f.db, id)
			assert.Nil(t, err)
			assert.Equal(t, tc.wantVotes, coin.Format(p.Votes))

			// one event per successful vote
			assert.Equal(t, succeeded, len(f.events.Events()))
			for _, e := range f.events.Events() {
				assert.Equal(t, "vote", e.EventName())
			}
			voters, err := f.engine.Voters(f.db, id)
			assert.Nil(t, err)
			assert.Equal(t, succeeded, len(voters))
		})
	}
}

func TestVoteWeightIsLiveStake(t *testing.T) {
	f := newFixture(t, nil)
	id := f.propose(t, 100)

	// stake moved after the proposal was created still counts
	assert.Nil(t, f.ledger.Transfer(f.db, f.investors[1], f.investors[0], coin.Units(50000)))
	total, err := f.engine.Vote(f.ctx, f.db, f.investors[0], id)
	assert.Nil(t, err)
	assert.Equal(t, "250000", coin.Format(total))

	// a holder that gave away everything cannot vote
	assert.Nil(t, f.ledger.Transfer(f.db, f.investors[2], f.investors[3], coin.Units(200000)))
	_, err = f.engine.Vote(f.ctx, f.db, f.investors[2], id)
	assert.IsErr(t, errors.ErrUnauthorized, err)
}

func TestFinalizeProposal(t *testing.T) {
	cases := map[string]struct {
		// quorum overrides the fixture quorum when set
		quorum         string
		votes          int
		caller         func(*fixture) dao.Address
		proposal       uint64
		wantErr        *errors.Error
		wantFinalized  bool
		wantTreasury   string
		wantRecipient  string
		wantEventNames []string
	}{
		"quorum reached": {
			votes:          3,
			caller:         func(f *fixture) dao.Address { return f.investors[4] },
			proposal:       1,
			wantFinalized:  true,
			wantTreasury:   "0",
			wantRecipient:  "10100",
			wantEventNames: []string{"finalize"},
		},
		"votes exactly at quorum": {
			quorum:         "600000",
			votes:          3,
			caller:         func(f *fixture) dao.Address { return f.investors[0] },
			proposal:       1,
			wantFinalized:  true,
			wantTreasury:   "0",
			wantRecipient:  "10100",
			wantEventNames: []string{"finalize"},
		},
		"votes one base unit below quorum": {
			quorum:        "600000.000000000000000001",
			votes:         3,
			caller:        func(f *fixture) dao.Address { return f.investors[0] },
			proposal:      1,
			wantErr:       errors.ErrInsufficientVotes,
			wantTreasury:  "100",
			wantRecipient: "10000",
		},
		"votes below quorum": {
			votes:         2,
			caller:        func(f *fixture) dao.Address { return f.investors[0] },
			proposal:      1,
			wantErr:       errors.ErrInsufficientVotes,
			wantTreasury:  "100",
			wantRecipient: "10000",
		},
		"caller without stake with quorum reached": {
			votes:         3,
			caller:        func(f *fixture) dao.Address { return daotest.NewAddress() },
			proposal:      1,
			wantErr:       errors.ErrUnauthorized,
			wantTreasury:  "100",
			wantRecipient: "10000",
		},
		"caller without stake below quorum": {
			votes:         0,
			caller:        func(f *fixture) dao.Address { return daotest.NewAddress() },
			proposal:      1,
			wantErr:       errors.ErrUnauthorized,
			wantTreasury:  "100",
			wantRecipient: "10000",
		},
		"unknown proposal": {
			votes:         3,
			caller:        func(f *fixture) dao.Address { return f.investors[0] },
			proposal:      7,
			wantErr:       errors.ErrNotFound,
			wantTreasury:  "100",
			wantRecipient: "10000",
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			f := newFixture(t, nil)
			if tc.quorum != "" {
				quorum, err := coin.ParseUnits(tc.quorum)
				assert.Nil(t, err)
				f.engine = NewEngine(f.ledger, f.treasury, quorum)
			}
			id := f.propose(t, 100)
			f.vote(t, id, tc.votes)
			f.events.Rollback(0)

			err := f.engine.FinalizeProposal(f.ctx, f.db, tc.caller(f), tc.proposal)
			assert.IsErr(t, tc.wantErr, err)

			p, err := f.engine.Proposal(f.db, id)
			assert.Nil(t, err)
			assert.Equal(t, tc.wantFinalized, p.Finalized)
			assert.Equal(t, tc.wantTreasury, f.treasuryBalance(t))
			assert.Equal(t, tc.wantRecipient, f.recipientBalance(t))
			assert.Equal(t, tc.wantEventNames, eventNames(f.events))
		})
	}
}

func TestFinalizeTwice(t *testing.T) {
	f := newFixture(t, nil)
	id := f.propose(t, 40)
	f.vote(t, id, 3)
	assert.Nil(t, f.engine.FinalizeProposal(f.ctx, f.db, f.investors[0], id))
	assert.Equal(t, "60", f.treasuryBalance(t))

	f.events.Rollback(0)
	err := f.engine.FinalizeProposal(f.ctx, f.db, f.investors[1], id)
	assert.IsErr(t, errors.ErrAlreadyFinalized, err)
	assert.Equal(t, "60", f.treasuryBalance(t))
	assert.Equal(t, "10040", f.recipientBalance(t))
	assert.Equal(t, 0, len(f.events.Events()))

	// the finalized state is checked before the caller stake
	err = f.engine.FinalizeProposal(f.ctx, f.db, daotest.NewAddress(), id)
	assert.IsErr(t, errors.ErrAlreadyFinalized, err)
}

func TestFinalizeInsufficientTreasury(t *testing.T) {
	f := newFixture(t, nil)
	first := f.propose(t, 80)
	second := f.propose(t, 80)
	f.vote(t, first, 3)
	f.vote(t, second, 3)
	assert.Nil(t, f.engine.FinalizeProposal(f.ctx, f.db, f.investors[0], first))

	f.events.Rollback(0)
	err := f.engine.FinalizeProposal(f.ctx, f.db, f.investors[0], second)
	assert.IsErr(t, errors.ErrInsufficientFunds, err)

	p, err := f.engine.Proposal(f.db, second)
	assert.Nil(t, err)
	assert.Equal(t, false, p.Finalized)
	assert.Equal(t, "20", f.treasuryBalance(t))
	assert.Equal(t, 0, len(f.events.Events()))
}

func TestFinalizeReentrantPayer(t *testing.T) {
	var (
		f        *fixture
		innerErr error
		calls    int
	)
	payer := treasury.PayerFunc(func(ctx dao.Context, db dao.KVStore, to dao.Address, amount *uint256.Int) error {
		calls++
		cdb, ok := db.(dao.CacheableKVStore)
		if !ok {
			t.Fatalf("payer store %T cannot be cache wrapped", db)
		}
		innerErr = f.engine.FinalizeProposal(ctx, cdb, f.investors[1], 1)
		return f.wallets.Pay(ctx, db, to, amount)
	})
	f = newFixture(t, payer)
	id := f.propose(t, 100)
	f.vote(t, id, 3)
	f.events.Rollback(0)

	assert.Nil(t, f.engine.FinalizeProposal(f.ctx, f.db, f.investors[0], id))
	assert.IsErr(t, errors.ErrAlreadyFinalized, innerErr)
	assert.Equal(t, 1, calls)

	p, err := f.engine.Proposal(f.db, id)
	assert.Nil(t, err)
	assert.Equal(t, true, p.Finalized)
	assert.Equal(t, "0", f.treasuryBalance(t))
	assert.Equal(t, "10100", f.recipientBalance(t))
	assert.Equal(t, []string{"finalize"}, eventNames(f.events))
}

// payerEvent is emitted by a payer to check events are dropped with the
// failed disbursement.
type payerEvent struct{ FinalizeEvent }

func (*payerEvent) EventName() string { return "payer" }

func TestFinalizeFailingPayer(t *testing.T) {
	var f *fixture
	payer := treasury.PayerFunc(func(ctx dao.Context, db dao.KVStore, to dao.Address, amount *uint256.Int) error {
		if err := f.wallets.Pay(ctx, db, to, amount); err != nil {
			return err
		}
		dao.EmitEvent(ctx, &payerEvent{})
		return errors.Wrap(errors.ErrInput, "recipient refused the funds")
	})
	f = newFixture(t, payer)
	id := f.propose(t, 100)
	f.vote(t, id, 3)
	f.events.Rollback(0)

	err := f.engine.FinalizeProposal(f.ctx, f.db, f.investors[0], id)
	assert.IsErr(t, errors.ErrInput, err)

	p, err := f.engine.Proposal(f.db, id)
	assert.Nil(t, err)
	assert.Equal(t, false, p.Finalized)
	assert.Equal(t, "600000", coin.Format(p.Votes))
	assert.Equal(t, "100", f.treasuryBalance(t))
	assert.Equal(t, "10000", f.recipientBalance(t))
	assert.Equal(t, 0, len(f.events.Events()))
}

func TestFiveInvestorScenario(t *testing.T) {
	f := newFixture(t, nil)
	assert.Equal(t, "500000000000000000000001", f.engine.Quorum().Dec())

	id := f.propose(t, 100)
	f.vote(t, id, 2)
	err := f.engine.FinalizeProposal(f.ctx, f.db, f.investors[0], id)
	assert.IsErr(t, errors.ErrInsufficientVotes, err)

	_, err = f.engine.Vote(f.ctx, f.db, f.investors[2], id)
	assert.Nil(t, err)
	assert.Nil(t, f.engine.FinalizeProposal(f.ctx, f.db, f.investors[0], id))

	assert.Equal(t, "10100", f.recipientBalance(t))
	assert.Equal(t, []string{"propose", "vote", "vote", "vote", "finalize"}, eventNames(f.events))
}

func TestLoadEngine(t *testing.T) {
	db := store.MemStore()
	_, err := LoadEngine(db, stake.NewLedger(), treasury.NewController(nil))
	assert.IsErr(t, errors.ErrNotFound, err)

	opts := dao.Options{"conf": []byte(`{"gov": {"quorum": "10.5"}}`)}
	assert.Nil(t, Initializer{}.FromGenesis(opts, db))
	e, err := LoadEngine(db, stake.NewLedger(), treasury.NewController(nil))
	assert.Nil(t, err)
	assert.Equal(t, "10.5", coin.Format(e.Quorum()))

	// the returned quorum is a copy
	e.Quorum().SetUint64(1)
	assert.Equal(t, "10.5", coin.Format(e.Quorum()))
}
