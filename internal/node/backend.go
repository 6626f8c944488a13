package node

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/LeJamon/goLPLockd/internal/storage/database"
	"github.com/LeJamon/goLPLockd/internal/storage/database/leveldb"
	"github.com/LeJamon/goLPLockd/internal/storage/database/memory"
	"github.com/LeJamon/goLPLockd/internal/storage/database/pebble"
)

// stateDBName is the name of the ledger database under the data directory.
const stateDBName = "state"

// OpenDatabase opens the ledger key/value backend under dir. The returned
// closer releases it.
func OpenDatabase(backend, dir string) (database.DB, io.Closer, error) {
	switch backend {
	case database.BackendPebble:
		db, err := pebble.Open(filepath.Join(dir, stateDBName))
		if err != nil {
			return nil, nil, err
		}
		return db, db, nil
	case database.BackendLevelDB:
		db, err := leveldb.Open(dir)
		if err != nil {
			return nil, nil, err
		}
		return db, db, nil
	case database.BackendMemory, "":
		db := memory.New()
		return db, db, nil
	default:
		return nil, nil, fmt.Errorf("%w %q", database.ErrUnknownBackend, backend)
	}
}
