package treasury

import (
	"github.com/iov-one/dao"
	"github.com/iov-one/dao/coin"
	"github.com/iov-one/dao/errors"
)

const optKey = "treasury"

// Genesis is the treasury section of the genesis file.
type Genesis struct {
	// Deposit is the initial balance in whole units, for example "100".
	Deposit string `json:"deposit"`
}

// Initializer fulfils the Initializer interface to load data from
// the genesis file
type Initializer struct{}

var _ dao.Initializer = Initializer{}

// FromGenesis deposits the initial treasury funds.
func (Initializer) FromGenesis(opts dao.Options, kv dao.KVStore) error {
	var g Genesis
	if err := opts.ReadOptions(optKey, &g); err != nil {
		return err
	}
	if g.Deposit == "" {
		return nil
	}
	amount, err := coin.ParseUnits(g.Deposit)
	if err != nil {
		return errors.Wrap(err, "treasury deposit")
	}
	// the controller is only used for deposits, so no payer is needed
	_, err = NewController(nil).Deposit(kv, amount)
	return err
}
