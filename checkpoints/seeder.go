package checkpoints

import (
	"fmt"

	"github.com/dot5enko/spvstore/spvstore"
	"github.com/dot5enko/spvstore/internal/blog"
)

// walletSafetyMarginSecs backdates a wallet's stated birthday before
// selecting checkpoints, matching CheckpointManager's hedge against clock
// skew between the wallet creator and whoever built the checkpoint
// archive.
const walletSafetyMarginSecs = 7 * 24 * 60 * 60

// Seed puts the checkpoint(s) covering walletBirthdaySecs into store and
// sets the last one as the chain head, bootstrapping a fresh store without
// replaying headers from genesis (spec.md §9).
func Seed(store *spvstore.Store, archive *Archive, walletBirthdaySecs int64) error {
	checkpointTime := walletBirthdaySecs - walletSafetyMarginSecs

	blocks := archive.CheckpointsBefore(checkpointTime, store.Params())
	if len(blocks) == 0 {
		return fmt.Errorf("checkpoints: no checkpoints available before %d", checkpointTime)
	}

	for _, b := range blocks {
		if err := store.Put(b); err != nil {
			return fmt.Errorf("checkpoints: seeding checkpoint at height %d: %w", b.Height, err)
		}
	}

	head := blocks[len(blocks)-1]
	if err := store.SetChainHead(head); err != nil {
		return fmt.Errorf("checkpoints: setting chain head to height %d: %w", head.Height, err)
	}

	blog.Info("store seeded from checkpoint archive", "height", head.Height, "checkpoints", len(blocks))
	return nil
}
