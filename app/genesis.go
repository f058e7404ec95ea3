package app

import (
	"encoding/json"
	"io/ioutil"
	"regexp"

	"github.com/iov-one/dao"
	"github.com/iov-one/dao/errors"
	"github.com/iov-one/dao/gconf"
	"github.com/iov-one/dao/x/cash"
	"github.com/iov-one/dao/x/gov"
	"github.com/iov-one/dao/x/stake"
	"github.com/iov-one/dao/x/treasury"
)

// Genesis file format.
type Genesis struct {
	ChainID  string      `json:"chain_id"`
	AppState dao.Options `json:"app_state"`
}

// LoadGenesis reads a genesis file.
func LoadGenesis(filePath string) (*Genesis, error) {
	raw, err := ioutil.ReadFile(filePath)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "read genesis file: %s", err)
	}
	var gen Genesis
	if err := json.Unmarshal(raw, &gen); err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "unmarshal genesis file: %s", err)
	}
	return &gen, nil
}

// Initializers returns the genesis initializers of all extensions, in the
// order they must run.
func Initializers() dao.Initializer {
	return dao.ChainInitializers(
		gov.Initializer{},
		stake.Initializer{},
		cash.Initializer{},
		treasury.Initializer{},
	)
}

// IsValidChainID ensures chain IDs are short human readable names.
var IsValidChainID = regexp.MustCompile(`^[a-zA-Z0-9_\-]{6,20}$`).MatchString

// _dao: is a prefix for application internal data
const chainIDKey = "_dao:chainID"

// loadChainID returns the chain id stored if any.
func loadChainID(kv gconf.ReadStore) (string, error) {
	v, err := kv.Get([]byte(chainIDKey))
	if err != nil {
		return "", errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return string(v), nil
}

// saveChainID stores a chain id in the kv store.
// Returns error if already set, or invalid name
func saveChainID(kv dao.KVStore, chainID string) error {
	if !IsValidChainID(chainID) {
		return errors.Wrapf(errors.ErrInput, "chain id: %v", chainID)
	}
	k := []byte(chainIDKey)
	exists, err := kv.Has(k)
	if err != nil {
		return errors.Wrap(errors.ErrDatabase, err.Error())
	}
	if exists {
		return errors.Wrap(errors.ErrUnauthorized, "can't modify chain id after genesis init")
	}
	if err := kv.Set(k, []byte(chainID)); err != nil {
		return errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return nil
}
