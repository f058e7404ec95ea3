package stake

import (
	"github.com/holiman/uint256"
	"github.com/iov-one/dao"
	"github.com/iov-one/dao/coin"
	"github.com/iov-one/dao/errors"
	"github.com/iov-one/dao/orm"
)

// Ledger keeps stake balances of all holders together with the total
// supply.
type Ledger struct {
	holdings orm.ModelBucket
	supply   orm.ModelBucket
}

// NewLedger returns a ledger operating on the stake buckets.
func NewLedger() *Ledger {
	return &Ledger{
		holdings: NewHoldingBucket(),
		supply:   NewSupplyBucket(),
	}
}

// BalanceOf returns the stake units held by given address. Unknown
// holders have a zero balance.
func (l *Ledger) BalanceOf(db dao.ReadOnlyKVStore, holder dao.Address) (*uint256.Int, error) {
	return l.load(db, l.holdings, holder)
}

// TotalSupply returns the sum of all balances.
func (l *Ledger) TotalSupply(db dao.ReadOnlyKVStore) (*uint256.Int, error) {
	return l.load(db, l.supply, supplyKey)
}

func (l *Ledger) load(db dao.ReadOnlyKVStore, b orm.ModelBucket, key []byte) (*uint256.Int, error) {
	var h Holding
	switch err := b.One(db, key, &h); {
	case err == nil:
		return h.Amount, nil
	case errors.ErrNotFound.Is(err):
		return coin.Zero(), nil
	default:
		return nil, err
	}
}

// Mint creates new stake units owned by given address.
func (l *Ledger) Mint(db dao.KVStore, to dao.Address, amount *uint256.Int) error {
	if amount == nil {
		return errors.Wrap(errors.ErrInput, "missing amount")
	}
	if err := to.Validate(); err != nil {
		return errors.Wrap(err, "recipient")
	}
	supply, err := l.TotalSupply(db)
	if err != nil {
		return err
	}
	if supply, err = coin.Add(supply, amount); err != nil {
		return errors.Wrap(err, "total supply")
	}
	balance, err := l.BalanceOf(db, to)
	if err != nil {
		return err
	}
	if balance, err = coin.Add(balance, amount); err != nil {
		return errors.Wrap(err, "balance")
	}
	if err := l.supply.Put(db, supplyKey, &Holding{Amount: supply}); err != nil {
		return err
	}
	return l.holdings.Put(db, to, &Holding{Amount: balance})
}

// Transfer moves stake units between two holders. ErrInsufficientFunds is
// returned if the sender does not hold enough.
func (l *Ledger) Transfer(db dao.KVStore, from, to dao.Address, amount *uint256.Int) error {
	if amount == nil {
		return errors.Wrap(errors.ErrInput, "missing amount")
	}
	if err := from.Validate(); err != nil {
		return errors.Wrap(err, "sender")
	}
	if err := to.Validate(); err != nil {
		return errors.Wrap(err, "recipient")
	}
	src, err := l.BalanceOf(db, from)
	if err != nil {
		return err
	}
	if src.Lt(amount) {
		return errors.Wrapf(errors.ErrInsufficientFunds, "%s holds %s", from, coin.Format(src))
	}
	src = new(uint256.Int).Sub(src, amount)
	if err := l.holdings.Put(db, from, &Holding{Amount: src}); err != nil {
		return err
	}

	// read after the write, so a transfer to self is a no-op
	dst, err := l.BalanceOf(db, to)
	if err != nil {
		return err
	}
	if dst, err = coin.Add(dst, amount); err != nil {
		return errors.Wrap(err, "recipient balance")
	}
	return l.holdings.Put(db, to, &Holding{Amount: dst})
}
