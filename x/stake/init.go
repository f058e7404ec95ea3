package stake

import (
	"github.com/iov-one/dao"
	"github.com/iov-one/dao/coin"
	"github.com/iov-one/dao/errors"
)

const optKey = "stake"

// GenesisHolding is used to parse the json from genesis file. The amount is
// given in whole units with up to 18 decimals, for example "200000".
type GenesisHolding struct {
	Address dao.Address `json:"address"`
	Amount  string      `json:"amount"`
}

// Initializer fulfils the Initializer interface to load data from
// the genesis file
type Initializer struct{}

var _ dao.Initializer = Initializer{}

// FromGenesis mints the initial stake of every listed holder.
func (Initializer) FromGenesis(opts dao.Options, kv dao.KVStore) error {
	var holdings []GenesisHolding
	if err := opts.ReadOptions(optKey, &holdings); err != nil {
		return err
	}
	ledger := NewLedger()
	for i, h := range holdings {
		amount, err := coin.ParseUnits(h.Amount)
		if err != nil {
			return errors.Wrapf(err, "stake holding #%d", i)
		}
		if err := ledger.Mint(kv, h.Address, amount); err != nil {
			return errors.Wrapf(err, "stake holding #%d", i)
		}
	}
	return nil
}
