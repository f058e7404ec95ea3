package cash

import (
	"github.com/holiman/uint256"
	"github.com/iov-one/dao"
	"github.com/iov-one/dao/coin"
	"github.com/iov-one/dao/errors"
	"github.com/iov-one/dao/orm"
)

// Controller reads and credits wallets. It pays out treasury
// disbursements.
type Controller struct {
	bucket orm.ModelBucket
}

// NewController returns a controller operating on the wallet bucket.
func NewController() *Controller {
	return &Controller{bucket: NewBucket()}
}

// Balance returns the funds held by given address. Unknown addresses have
// an empty wallet.
func (c *Controller) Balance(db dao.ReadOnlyKVStore, owner dao.Address) (*uint256.Int, error) {
	var w Wallet
	switch err := c.bucket.One(db, owner, &w); {
	case err == nil:
		return w.Balance, nil
	case errors.ErrNotFound.Is(err):
		return coin.Zero(), nil
	default:
		return nil, err
	}
}

// Credit adds the amount to the wallet of given address. It fails if the
// balance would overflow.
func (c *Controller) Credit(db dao.KVStore, owner dao.Address, amount *uint256.Int) error {
	if amount == nil {
		return errors.Wrap(errors.ErrInput, "missing amount")
	}
	if err := owner.Validate(); err != nil {
		return errors.Wrap(err, "owner")
	}
	balance, err := c.Balance(db, owner)
	if err != nil {
		return err
	}
	if balance, err = coin.Add(balance, amount); err != nil {
		return errors.Wrapf(err, "wallet of %s", owner)
	}
	return c.bucket.Put(db, owner, &Wallet{Balance: balance})
}

// Pay credits the recipient. It implements the treasury payer.
func (c *Controller) Pay(ctx dao.Context, db dao.KVStore, recipient dao.Address, amount *uint256.Int) error {
	if err := c.Credit(db, recipient, amount); err != nil {
		return err
	}
	dao.GetLogger(ctx).Debug("wallet credited", "recipient", recipient, "amount", coin.Format(amount))
	return nil
}
