package kvstore

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/pathways/core"
	"github.com/trezcool/pathways/core/kv"
	"github.com/trezcool/pathways/storage/database"
	inmemkv "github.com/trezcool/pathways/storage/kvstore/inmem"
	"github.com/trezcool/pathways/storage/kvstore/rediskv"
	sqlkv "github.com/trezcool/pathways/storage/kvstore/sqlstore"
)

// Open returns the key-value backend selected by conf.Storage.Backend.
// SQL backends are created and migrated when needed.
func Open(ctx context.Context, conf *core.Config) (kv.Store, error) {
	switch conf.Storage.Backend {
	case core.StorageMemory:
		return inmemkv.Open(conf.Storage.QuotaBytes), nil
	case core.StorageSQLite, core.StoragePostgres:
		if err := database.CreateIfNotExist(conf); err != nil {
			return nil, err
		}
		db, err := database.Open(conf)
		if err != nil {
			return nil, errors.Wrap(err, "opening database")
		}
		if err = database.Migrate(db); err != nil {
			_ = db.Close()
			return nil, err
		}
		return sqlkv.New(db).WithPollInterval(conf.Storage.PollInterval), nil
	case core.StorageRedis:
		return rediskv.Open(ctx, conf.Redis)
	}
	return nil, errors.Errorf("unknown storage backend %q", conf.Storage.Backend)
}
