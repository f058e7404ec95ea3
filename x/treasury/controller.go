package treasury

import (
	"github.com/holiman/uint256"
	"github.com/iov-one/dao"
	"github.com/iov-one/dao/coin"
	"github.com/iov-one/dao/errors"
	"github.com/iov-one/dao/orm"
)

// Payer delivers disbursed funds to the recipient. It receives the same
// store the disbursement runs on and may call back into the governance
// engine.
type Payer interface {
	Pay(ctx dao.Context, db dao.KVStore, recipient dao.Address, amount *uint256.Int) error
}

// PayerFunc provides Payer interface support.
type PayerFunc func(ctx dao.Context, db dao.KVStore, recipient dao.Address, amount *uint256.Int) error

// Pay calls the function.
func (fn PayerFunc) Pay(ctx dao.Context, db dao.KVStore, recipient dao.Address, amount *uint256.Int) error {
	return fn(ctx, db, recipient, amount)
}

// Controller manages the treasury balance.
type Controller struct {
	bucket orm.ModelBucket
	payer  Payer
}

// NewController returns a controller handing all disbursed funds to given
// payer.
func NewController(payer Payer) *Controller {
	return &Controller{
		bucket: NewBucket(),
		payer:  payer,
	}
}

// Balance returns the funds currently held by the treasury.
func (c *Controller) Balance(db dao.ReadOnlyKVStore) (*uint256.Int, error) {
	var r Reserve
	switch err := c.bucket.One(db, reserveKey, &r); {
	case err == nil:
		return r.Balance, nil
	case errors.ErrNotFound.Is(err):
		return coin.Zero(), nil
	default:
		return nil, err
	}
}

// Deposit adds funds to the treasury and returns the new balance. Deposits
// are not subject to governance.
func (c *Controller) Deposit(db dao.KVStore, amount *uint256.Int) (*uint256.Int, error) {
	if amount == nil {
		return nil, errors.Wrap(errors.ErrInput, "missing amount")
	}
	balance, err := c.Balance(db)
	if err != nil {
		return nil, err
	}
	if balance, err = coin.Add(balance, amount); err != nil {
		return nil, errors.Wrap(err, "treasury balance")
	}
	if err := c.bucket.Put(db, reserveKey, &Reserve{Balance: balance}); err != nil {
		return nil, err
	}
	return balance, nil
}

// Disburse releases the amount from the treasury to the recipient.
// ErrInsufficientFunds is returned if the treasury does not hold enough.
//
// The balance is reduced before the payer is called. Callers must discard
// all writes to db if an error is returned.
func (c *Controller) Disburse(ctx dao.Context, db dao.KVStore, amount *uint256.Int, recipient dao.Address) error {
	if amount == nil {
		return errors.Wrap(errors.ErrInput, "missing amount")
	}
	balance, err := c.Balance(db)
	if err != nil {
		return err
	}
	if balance.Lt(amount) {
		return errors.Wrapf(errors.ErrInsufficientFunds, "treasury holds %s, requested %s",
			coin.Format(balance), coin.Format(amount))
	}
	rest := new(uint256.Int).Sub(balance, amount)
	if err := c.bucket.Put(db, reserveKey, &Reserve{Balance: rest}); err != nil {
		return err
	}
	if err := c.payer.Pay(ctx, db, recipient, amount); err != nil {
		return errors.Wrapf(err, "pay %s", recipient)
	}
	dao.GetLogger(ctx).Info("treasury disbursed",
		"recipient", recipient,
		"amount", coin.Format(amount),
		"balance", coin.Format(rest))
	return nil
}
