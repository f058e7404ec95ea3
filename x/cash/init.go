package cash

import (
	"github.com/iov-one/dao"
	"github.com/iov-one/dao/coin"
	"github.com/iov-one/dao/errors"
)

const optKey = "cash"

// GenesisAccount is used to parse the json from genesis file. The amount
// is given in whole units with up to 18 decimals.
type GenesisAccount struct {
	Address dao.Address `json:"address"`
	Amount  string      `json:"amount"`
}

// Initializer fulfils the Initializer interface to load data from
// the genesis file
type Initializer struct{}

var _ dao.Initializer = Initializer{}

// FromGenesis will parse initial account info from genesis
// and save it to the database
func (Initializer) FromGenesis(opts dao.Options, kv dao.KVStore) error {
	var accts []GenesisAccount
	if err := opts.ReadOptions(optKey, &accts); err != nil {
		return err
	}
	ctrl := NewController()
	for i, acct := range accts {
		amount, err := coin.ParseUnits(acct.Amount)
		if err != nil {
			return errors.Wrapf(err, "cash account #%d", i)
		}
		if err := ctrl.Credit(kv, acct.Address, amount); err != nil {
			return errors.Wrapf(err, "cash account #%d", i)
		}
	}
	return nil
}
