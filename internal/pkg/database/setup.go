package database

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/ManuelReschke/tiersync/app/models"
	"github.com/ManuelReschke/tiersync/app/repository"
)

const maxRetries = 5

var retryDelay = 5 * time.Second

// Dialector picks the GORM driver for a subscriber store backend.
func Dialector(backend, dsn string) (gorm.Dialector, error) {
	switch backend {
	case repository.BackendPostgres:
		return postgres.Open(dsn), nil
	case repository.BackendMySQL:
		// "user:pass@tcp(127.0.0.1:3306)/dbname?charset=utf8mb4&parseTime=True&loc=Local"
		return mysql.New(mysql.Config{
			DSN:               dsn,
			DefaultStringSize: 256,
		}), nil
	default:
		return nil, fmt.Errorf("database: unsupported backend %q", backend)
	}
}

// SetupDatabase connects to the subscriber database, retrying while the
// server comes up, and makes sure the subscriber table exists.
func SetupDatabase(backend, dsn string, log *zap.Logger) (*gorm.DB, error) {
	dialector, err := Dialector(backend, dsn)
	if err != nil {
		return nil, err
	}
	return open(dialector, log)
}

func open(dialector gorm.Dialector, log *zap.Logger) (*gorm.DB, error) {
	var (
		db  *gorm.DB
		err error
	)
	for i := 0; i < maxRetries; i++ {
		db, err = gorm.Open(dialector, &gorm.Config{
			SkipDefaultTransaction: true,
			Logger:                 gormlogger.Default.LogMode(gormlogger.Warn),
		})
		if err == nil {
			if err = db.AutoMigrate(&models.Subscriber{}); err != nil {
				return nil, fmt.Errorf("database: migrate %s: %w", models.SubscriberTable, err)
			}
			return db, nil
		}

		log.Warn("failed to connect to database", zap.Int("try", i+1), zap.Int("max", maxRetries), zap.Error(err))
		if i < maxRetries-1 {
			time.Sleep(retryDelay)
		}
	}
	return nil, fmt.Errorf("database: connect: %w", err)
}
