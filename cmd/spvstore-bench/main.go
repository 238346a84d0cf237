// Command spvstore-bench drives the store's §8.8 performance budget
// (100,000 put + set-chain-head cycles in under 5 seconds) against a
// real on-disk file, adapting the teacher's testCycles harness from
// main.go.
package main

import (
	"flag"
	"log"
	"math/big"
	"os"
	"time"

	"github.com/dot5enko/spvstore/spvstore"
	"github.com/dot5enko/spvstore/internal/bitcoin"
)

type benchParams struct {
	genesis bitcoin.Header
	work    *big.Int
}

func (p benchParams) GenesisHeader() bitcoin.Header { return p.genesis }
func (p benchParams) GenesisWork() *big.Int         { return p.work }

func testCycles(n int, label string, cb func()) {
	before := time.Now()

	for i := 0; i < n; i++ {
		cb()
	}

	after := time.Since(before)

	perCycle := after.Nanoseconds() / int64(n)
	log.Printf("%s: %d cycles in %s (%d ns/cycle)", label, n, after, perCycle)
}

func main() {
	path := flag.String("path", "./spvstore-bench.dat", "path to the backing store file")
	capacity := flag.Uint("capacity", 200000, "store capacity (slot count)")
	cycles := flag.Int("cycles", 100000, "number of put+set_chain_head cycles to run")
	flag.Parse()

	os.Remove(*path)

	var genesis bitcoin.Header
	genesis.Version = 1
	genesis.TimeSeconds = 1317972665
	genesis.Bits = 0x1e0ffff0
	genesis.Nonce = 2084524493
	params := benchParams{genesis: genesis, work: big.NewInt(1)}

	store, err := spvstore.Open(params, *path, uint32(*capacity), false)
	if err != nil {
		log.Fatalf("open store: %v", err)
	}
	defer store.Close()
	defer os.Remove(*path)

	prev := spvstore.GenesisStoredBlock(params)

	testCycles(*cycles, "put+set_chain_head", func() {
		next := prev.Header
		next.Nonce++
		next.PrevBlockHash = prev.Hash()

		block := spvstore.StoredBlock{
			Header:    next,
			ChainWork: new(big.Int).Add(prev.ChainWork, big.NewInt(1)),
			Height:    prev.Height + 1,
		}

		if err := store.Put(block); err != nil {
			log.Fatalf("put: %v", err)
		}
		if err := store.SetChainHead(block); err != nil {
			log.Fatalf("set chain head: %v", err)
		}

		prev = block
	})
}
