package gov

import (
	"github.com/holiman/uint256"
	"github.com/iov-one/dao"
)

// StakeOracle reports the live stake of holders. The engine never
// modifies stake.
type StakeOracle interface {
	BalanceOf(db dao.ReadOnlyKVStore, holder dao.Address) (*uint256.Int, error)
	TotalSupply(db dao.ReadOnlyKVStore) (*uint256.Int, error)
}

// Treasury holds the funds released by finalized proposals.
type Treasury interface {
	Balance(db dao.ReadOnlyKVStore) (*uint256.Int, error)
	// Disburse releases funds to the recipient. All writes to db must be
	// discarded if an error is returned.
	Disburse(ctx dao.Context, db dao.KVStore, amount *uint256.Int, recipient dao.Address) error
}
