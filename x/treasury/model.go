package treasury

import (
	"github.com/gogo/protobuf/proto"
	"github.com/holiman/uint256"
	"github.com/iov-one/dao/coin"
	"github.com/iov-one/dao/errors"
	"github.com/iov-one/dao/orm"
)

// Reserve is the treasury balance singleton.
type Reserve struct {
	Balance *uint256.Int
}

var _ orm.Model = (*Reserve)(nil)

// Validate ensures the reserve is well formed.
func (r *Reserve) Validate() error {
	if r.Balance == nil {
		return errors.Wrap(errors.ErrModel, "missing balance")
	}
	return nil
}

// Marshal implements dao.Persistent.
func (r *Reserve) Marshal() ([]byte, error) {
	return proto.Marshal(&reserveRecord{Balance: coin.Encode(r.Balance)})
}

// Unmarshal implements dao.Persistent.
func (r *Reserve) Unmarshal(raw []byte) error {
	var rec reserveRecord
	if err := proto.Unmarshal(raw, &rec); err != nil {
		return errors.Wrap(errors.ErrModel, err.Error())
	}
	balance, err := coin.Decode(rec.Balance)
	if err != nil {
		return err
	}
	r.Balance = balance
	return nil
}

var reserveKey = []byte("reserve")

// NewBucket returns the bucket holding the reserve.
func NewBucket() orm.ModelBucket {
	return orm.NewModelBucket("treasury", &Reserve{})
}
