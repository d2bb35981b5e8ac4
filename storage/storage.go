package storage

import (
	"github.com/pkg/errors"

	"github.com/courseflow/backend/core"
	"github.com/courseflow/backend/core/course"
	"github.com/courseflow/backend/storage/database"
	"github.com/courseflow/backend/storage/database/inmem"
	"github.com/courseflow/backend/storage/database/jsonfile"
	"github.com/courseflow/backend/storage/database/sqlx"
)

const (
	EngineJSONFile = "jsonfile"
	EngineMemory   = "memory"
	EnginePostgres = "postgres"
)

var ErrUnknownEngine = errors.New("unknown storage engine")

// Open returns the ledger store selected by storage.engine and a function releasing it.
// The postgres engine creates and migrates the database first.
func Open(conf *core.Config) (course.Store, func() error, error) {
	noop := func() error { return nil }

	switch conf.Storage.Engine {
	case EngineMemory:
		return inmemdb.NewCourseStore(), noop, nil
	case EngineJSONFile, "":
		return jsondb.NewCourseStore(conf.Storage.Path), noop, nil
	case EnginePostgres:
		if err := database.CreateIfNotExist(conf); err != nil {
			return nil, nil, errors.Wrap(err, "creating database")
		}
		db, err := database.Connect(conf)
		if err != nil {
			return nil, nil, err
		}
		if err = database.Migrate(db.DB); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return sqlxrepos.NewCourseStore(db), db.Close, nil
	default:
		return nil, nil, errors.Wrap(ErrUnknownEngine, conf.Storage.Engine)
	}
}
