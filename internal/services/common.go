package services

import (
	"errors"

	"github.com/localnerve/tevor-api/internal/metrics"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// quiet returns a session that does not log, used for lookups where a
// missing row is an expected outcome.
func quiet(db *gorm.DB) *gorm.DB {
	return db.Session(&gorm.Session{Logger: db.Logger.LogMode(logger.Silent)})
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// Services bundles the components the HTTP handlers call
type Services struct {
	IDs      *IDAllocator
	Stock    *StockLedger
	Requests *PartRequestRegistry
	Users    *UserDirectory
	Jobs     *JobManager
}

// New wires every component on db. Each caching component gets its own
// cache of cacheSize entries.
func New(db *gorm.DB, cacheSize int, log zerolog.Logger, m *metrics.Metrics) *Services {
	ids := NewIDAllocator(db)
	stock := NewStockLedger(db, cacheSize, log, m)
	requests := NewPartRequestRegistry(db, cacheSize, log, m)
	users := NewUserDirectory(db, ids, cacheSize, log)

	return &Services{
		IDs:      ids,
		Stock:    stock,
		Requests: requests,
		Users:    users,
		Jobs:     NewJobManager(db, ids, stock, requests, users, log, m),
	}
}
