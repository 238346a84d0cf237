package spvstore

import (
	"math/big"

	"github.com/dot5enko/spvstore/internal/bitcoin"
)

// Params is the narrow collaborator contract the store needs from the
// surrounding network/chain configuration: just enough to synthesize the
// genesis StoredBlock for an empty store. Everything else about chain
// validation (difficulty rules, script/address handling, peer discovery)
// is out of scope and lives entirely outside this interface.
type Params interface {
	GenesisHeader() bitcoin.Header
	GenesisWork() *big.Int
}

// GenesisStoredBlock synthesizes height-0 StoredBlock for params.
func GenesisStoredBlock(params Params) StoredBlock {
	return StoredBlock{
		Header:    params.GenesisHeader(),
		ChainWork: new(big.Int).Set(params.GenesisWork()),
		Height:    0,
	}
}
