package cash

import (
	"github.com/gogo/protobuf/proto"
	"github.com/holiman/uint256"
	"github.com/iov-one/dao/coin"
	"github.com/iov-one/dao/errors"
	"github.com/iov-one/dao/orm"
)

// Wallet holds the currency owned by a single address, which is the key
// of the wallet in the bucket.
type Wallet struct {
	Balance *uint256.Int
}

var _ orm.Model = (*Wallet)(nil)

// Validate ensures the wallet is well formed.
func (w *Wallet) Validate() error {
	if w.Balance == nil {
		return errors.Wrap(errors.ErrModel, "missing balance")
	}
	return nil
}

// Marshal implements dao.Persistent.
func (w *Wallet) Marshal() ([]byte, error) {
	return proto.Marshal(&walletRecord{Balance: coin.Encode(w.Balance)})
}

// Unmarshal implements dao.Persistent.
func (w *Wallet) Unmarshal(raw []byte) error {
	var rec walletRecord
	if err := proto.Unmarshal(raw, &rec); err != nil {
		return errors.Wrap(errors.ErrModel, err.Error())
	}
	balance, err := coin.Decode(rec.Balance)
	if err != nil {
		return err
	}
	w.Balance = balance
	return nil
}

// NewBucket returns a bucket storing wallets by owner address.
func NewBucket() orm.ModelBucket {
	return orm.NewModelBucket("cash", &Wallet{})
}
