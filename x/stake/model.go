package stake

import (
	"github.com/gogo/protobuf/proto"
	"github.com/holiman/uint256"
	"github.com/iov-one/dao/coin"
	"github.com/iov-one/dao/errors"
	"github.com/iov-one/dao/orm"
)

// Holding is the amount of stake units owned by a single address. The
// address is the key of the holding and is not part of the value.
type Holding struct {
	Amount *uint256.Int
}

var _ orm.Model = (*Holding)(nil)

// Validate ensures the holding is well formed.
func (h *Holding) Validate() error {
	if h.Amount == nil {
		return errors.Wrap(errors.ErrModel, "missing amount")
	}
	return nil
}

// Marshal implements dao.Persistent.
func (h *Holding) Marshal() ([]byte, error) {
	return proto.Marshal(&holdingRecord{Amount: coin.Encode(h.Amount)})
}

// Unmarshal implements dao.Persistent.
func (h *Holding) Unmarshal(raw []byte) error {
	var rec holdingRecord
	if err := proto.Unmarshal(raw, &rec); err != nil {
		return errors.Wrap(errors.ErrModel, err.Error())
	}
	amount, err := coin.Decode(rec.Amount)
	if err != nil {
		return err
	}
	h.Amount = amount
	return nil
}

const (
	holdingBucket = "stake"
	supplyBucket  = "stakesupply"
)

var supplyKey = []byte("total")

// NewHoldingBucket returns a bucket storing Holdings by owner address.
func NewHoldingBucket() orm.ModelBucket {
	return orm.NewModelBucket(holdingBucket, &Holding{})
}

// NewSupplyBucket returns a bucket with a single Holding, the total amount
// of stake units ever minted.
func NewSupplyBucket() orm.ModelBucket {
	return orm.NewModelBucket(supplyBucket, &Holding{})
}
