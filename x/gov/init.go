package gov

import (
	"github.com/iov-one/dao"
	"github.com/iov-one/dao/gconf"
)

// Initializer fulfils the Initializer interface to load data from
// the genesis file
type Initializer struct{}

var _ dao.Initializer = Initializer{}

// FromGenesis stores the gov configuration, found under
// conf.gov in the genesis file.
func (Initializer) FromGenesis(opts dao.Options, kv dao.KVStore) error {
	return gconf.InitConfig(kv, opts, packageName, &Configuration{})
}
