package checkpoints

import (
	"os"

	"golang.org/x/sync/singleflight"
)

// loadGroup collapses concurrent Load calls for the same archive path into
// a single parse: checkpoint archives are read once at wallet startup but
// several subsystems (the seeder, a diagnostics command, a reload on
// SIGHUP) may ask for the same path around the same time.
var loadGroup singleflight.Group

// Load reads and parses the checkpoint archive at path. Concurrent calls
// for the same path share one underlying parse.
func Load(path string) (*Archive, error) {
	v, err, _ := loadGroup.Do(path, func() (any, error) {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		return Parse(f)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Archive), nil
}
