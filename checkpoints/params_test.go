package checkpoints

import (
	"math/big"

	"github.com/dot5enko/spvstore/spvstore"
	"github.com/dot5enko/spvstore/internal/bitcoin"
)

type fakeArchiveParams struct {
	genesis bitcoin.Header
	work    *big.Int
}

func (p fakeArchiveParams) GenesisHeader() bitcoin.Header { return p.genesis }
func (p fakeArchiveParams) GenesisWork() *big.Int         { return p.work }

func testArchiveParams() spvstore.Params {
	var h bitcoin.Header
	h.Version = 1
	h.TimeSeconds = 1317972665
	h.Bits = 0x1e0ffff0
	h.Nonce = 2084524493
	return fakeArchiveParams{genesis: h, work: big.NewInt(1)}
}
