package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/holiman/uint256"
	"github.com/iov-one/dao"
	"github.com/iov-one/dao/coin"
	"github.com/iov-one/dao/errors"
	"github.com/iov-one/dao/x/cash"
	"github.com/iov-one/dao/x/gov"
	"github.com/iov-one/dao/x/stake"
	"github.com/iov-one/dao/x/treasury"
	"github.com/tendermint/tendermint/libs/log"
)

// App serializes all access to the store. The engine is created from the
// gov configuration once genesis is loaded.
type App struct {
	mu sync.Mutex

	store  dao.CommitKVStore
	logger log.Logger
	sinks  []dao.EventSink

	// chainID is loaded from db in initialization
	// saved once in InitGenesis
	chainID string

	ledger   *stake.Ledger
	wallets  *cash.Controller
	treasury *treasury.Controller
	engine   *gov.Engine
}

// New returns an application using given store. The latest committed
// version is loaded and, if genesis was already applied, the engine is
// restored from the stored configuration.
func New(store dao.CommitKVStore, logger log.Logger) (*App, error) {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	if err := store.LoadLatestVersion(); err != nil {
		return nil, errors.Wrap(err, "load latest version")
	}

	wallets := cash.NewController()
	a := &App{
		store:    store,
		logger:   logger,
		ledger:   stake.NewLedger(),
		wallets:  wallets,
		treasury: treasury.NewController(wallets),
	}

	chainID, err := loadChainID(store)
	if err != nil {
		return nil, err
	}
	if chainID == "" {
		return a, nil
	}
	engine, err := gov.LoadEngine(store, a.ledger, a.treasury)
	if err != nil {
		return nil, errors.Wrapf(err, "chain %s", chainID)
	}
	a.chainID = chainID
	a.engine = engine

	version, err := store.LatestVersion()
	if err != nil {
		return nil, err
	}
	logger.Info("state loaded",
		"release", dao.Version(),
		"chain", chainID,
		"version", version.Version,
		"hash", fmt.Sprintf("%X", version.Hash))
	return a, nil
}

// Subscribe registers a sink that receives events of every committed
// operation. Sinks are called with the application lock held and must not
// call back into the App.
func (a *App) Subscribe(sink dao.EventSink) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.sinks = append(a.sinks, sink)
}

// ChainID returns the chain ID set at genesis, or an empty string.
func (a *App) ChainID() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.chainID
}

// CommitInfo returns the latest committed version.
func (a *App) CommitInfo() (dao.CommitID, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.store.LatestVersion()
}

// Close releases the store.
func (a *App) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.store.Close()
}

// InitGenesis applies the genesis state and commits it as the first
// version. It can be called only once per store.
func (a *App) InitGenesis(ctx context.Context, gen *Genesis) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.chainID != "" {
		return errors.Wrapf(errors.ErrUnauthorized, "genesis already loaded for chain %s", a.chainID)
	}
	ctx = a.context(ctx, "init_genesis")
	start := time.Now()

	var engine *gov.Engine
	err := a.commit(ctx, func(ctx dao.Context, db dao.CacheableKVStore) error {
		if err := saveChainID(db, gen.ChainID); err != nil {
			return err
		}
		if err := Initializers().FromGenesis(gen.AppState, db); err != nil {
			return errors.Wrap(err, "genesis")
		}
		var err error
		if engine, err = gov.LoadEngine(db, a.ledger, a.treasury); err != nil {
			return err
		}
		supply, err := a.ledger.TotalSupply(db)
		if err != nil {
			return err
		}
		if engine.Quorum().Gt(supply) {
			dao.GetLogger(ctx).Error("quorum exceeds the total stake, no proposal can be finalized",
				"quorum", coin.Format(engine.Quorum()),
				"supply", coin.Format(supply))
		}
		return nil
	})
	logDuration(ctx, start, "genesis loaded", err, false)
	if err != nil {
		return err
	}
	a.chainID = gen.ChainID
	a.engine = engine
	return nil
}

func (a *App) context(ctx context.Context, call string) dao.Context {
	ctx = dao.WithLogger(ctx, a.logger)
	if a.chainID != "" {
		ctx = dao.WithLogInfo(ctx, "chain", a.chainID)
	}
	return dao.WithLogInfo(ctx, "call", call)
}

// commit runs fn in a cache wrap of the store. On success the changes are
// committed as a new version and the events are published. On failure,
// including a panic, all changes and events are dropped.
func (a *App) commit(ctx dao.Context, fn func(dao.Context, dao.CacheableKVStore) error) error {
	events := &dao.EventLog{}
	ctx = dao.WithEventLog(ctx, events)

	cache := a.store.CacheWrap()
	if err := run(ctx, cache, fn); err != nil {
		cache.Discard()
		return err
	}
	if err := cache.Write(); err != nil {
		a.store.Rollback()
		return errors.Wrap(err, "write cache")
	}
	id, err := a.store.Commit()
	if err != nil {
		a.store.Rollback()
		return errors.Wrap(err, "commit")
	}
	dao.GetLogger(ctx).Debug("committed",
		"version", id.Version,
		"hash", fmt.Sprintf("%X", id.Hash))

	for _, e := range events.Events() {
		for _, s := range a.sinks {
			s.Publish(e)
		}
	}
	return nil
}

// run calls fn and turns a panic into ErrPanic.
func run(ctx dao.Context, db dao.CacheableKVStore, fn func(dao.Context, dao.CacheableKVStore) error) (err error) {
	defer errors.Recover(&err)
	return fn(ctx, db)
}

// deliver runs a state changing operation. It fails if genesis was not
// loaded yet.
func (a *App) deliver(ctx context.Context, call string, fn func(dao.Context, dao.CacheableKVStore) error) (err error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	dctx := a.context(ctx, call)
	start := time.Now()
	defer func() { logDuration(dctx, start, call, err, false) }()

	if a.engine == nil {
		return errors.Wrap(errors.ErrHuman, "genesis not loaded")
	}
	return a.commit(dctx, fn)
}

// query runs a read only operation against the latest committed state.
func (a *App) query(ctx context.Context, call string, fn func(dao.ReadOnlyKVStore) error) (err error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	qctx := a.context(ctx, call)
	start := time.Now()
	defer func() { logDuration(qctx, start, call, err, true) }()

	if a.engine == nil {
		return errors.Wrap(errors.ErrHuman, "genesis not loaded")
	}
	// the working tree always equals the committed state between calls
	cache := a.store.CacheWrap()
	defer cache.Discard()
	defer errors.Recover(&err)
	return fn(cache)
}

// CreateProposal registers a new proposal on behalf of the caller.
func (a *App) CreateProposal(
	ctx context.Context,
	caller dao.Address,
	description string,
	amount *uint256.Int,
	recipient dao.Address,
) (id uint64, err error) {
	err = a.deliver(ctx, "create_proposal", func(ctx dao.Context, db dao.CacheableKVStore) error {
		id, err = a.engine.CreateProposal(ctx, db, caller, description, amount, recipient)
		return err
	})
	return id, err
}

// Vote adds the stake of the caller to a proposal.
func (a *App) Vote(ctx context.Context, caller dao.Address, id uint64) (total *uint256.Int, err error) {
	err = a.deliver(ctx, "vote", func(ctx dao.Context, db dao.CacheableKVStore) error {
		total, err = a.engine.Vote(ctx, db, caller, id)
		return err
	})
	return total, err
}

// FinalizeProposal releases the funds of a proposal that reached the
// quorum.
func (a *App) FinalizeProposal(ctx context.Context, caller dao.Address, id uint64) error {
	return a.deliver(ctx, "finalize_proposal", func(ctx dao.Context, db dao.CacheableKVStore) error {
		return a.engine.FinalizeProposal(ctx, db, caller, id)
	})
}

// Deposit funds the treasury and returns its new balance.
func (a *App) Deposit(ctx context.Context, amount *uint256.Int) (balance *uint256.Int, err error) {
	err = a.deliver(ctx, "deposit", func(ctx dao.Context, db dao.CacheableKVStore) error {
		balance, err = a.treasury.Deposit(db, amount)
		return err
	})
	return balance, err
}

// TransferStake moves stake between two holders.
func (a *App) TransferStake(ctx context.Context, from, to dao.Address, amount *uint256.Int) error {
	return a.deliver(ctx, "transfer_stake", func(ctx dao.Context, db dao.CacheableKVStore) error {
		return a.ledger.Transfer(db, from, to, amount)
	})
}

// Proposal returns a single proposal.
func (a *App) Proposal(ctx context.Context, id uint64) (p *gov.Proposal, err error) {
	err = a.query(ctx, "proposal", func(db dao.ReadOnlyKVStore) error {
		p, err = a.engine.Proposal(db, id)
		return err
	})
	return p, err
}

// ProposalCount returns the number of proposals created.
func (a *App) ProposalCount(ctx context.Context) (n uint64, err error) {
	err = a.query(ctx, "proposal_count", func(db dao.ReadOnlyKVStore) error {
		n, err = a.engine.ProposalCount(db)
		return err
	})
	return n, err
}

// Proposals returns all proposals in ID order.
func (a *App) Proposals(ctx context.Context) (ps []*gov.Proposal, err error) {
	err = a.query(ctx, "proposals", func(db dao.ReadOnlyKVStore) error {
		ps, err = a.engine.Proposals(db)
		return err
	})
	return ps, err
}

// HasVoted returns true if the voter voted on the proposal.
func (a *App) HasVoted(ctx context.Context, id uint64, voter dao.Address) (voted bool, err error) {
	err = a.query(ctx, "has_voted", func(db dao.ReadOnlyKVStore) error {
		voted, err = a.engine.HasVoted(db, id, voter)
		return err
	})
	return voted, err
}

// Voters returns all addresses that voted on the proposal.
func (a *App) Voters(ctx context.Context, id uint64) (voters []dao.Address, err error) {
	err = a.query(ctx, "voters", func(db dao.ReadOnlyKVStore) error {
		voters, err = a.engine.Voters(db, id)
		return err
	})
	return voters, err
}

// Quorum returns the vote weight required to finalize a proposal.
func (a *App) Quorum(ctx context.Context) (q *uint256.Int, err error) {
	err = a.query(ctx, "quorum", func(dao.ReadOnlyKVStore) error {
		q = a.engine.Quorum()
		return nil
	})
	return q, err
}

// TreasuryBalance returns the funds held by the treasury.
func (a *App) TreasuryBalance(ctx context.Context) (b *uint256.Int, err error) {
	err = a.query(ctx, "treasury_balance", func(db dao.ReadOnlyKVStore) error {
		b, err = a.treasury.Balance(db)
		return err
	})
	return b, err
}

// StakeOf returns the stake held by an address.
func (a *App) StakeOf(ctx context.Context, holder dao.Address) (s *uint256.Int, err error) {
	err = a.query(ctx, "stake_of", func(db dao.ReadOnlyKVStore) error {
		s, err = a.ledger.BalanceOf(db, holder)
		return err
	})
	return s, err
}

// TotalStake returns the stake supply.
func (a *App) TotalStake(ctx context.Context) (s *uint256.Int, err error) {
	err = a.query(ctx, "total_stake", func(db dao.ReadOnlyKVStore) error {
		s, err = a.ledger.TotalSupply(db)
		return err
	})
	return s, err
}

// WalletBalance returns the funds held by an address.
func (a *App) WalletBalance(ctx context.Context, owner dao.Address) (b *uint256.Int, err error) {
	err = a.query(ctx, "wallet_balance", func(db dao.ReadOnlyKVStore) error {
		b, err = a.wallets.Balance(db, owner)
		return err
	})
	return b, err
}
