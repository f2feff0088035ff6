package database

import (
	"sync"
	"time"

	"goalspace-backend/pkg/logger"
)

// databasePool caches one database instance for the whole process so
// warm serverless invocations and the long-running server share a
// connection.
type databasePool struct {
	instance DatabaseInterface
	config   DatabaseConfig
	lastUsed time.Time
}

var (
	globalPool *databasePool
	poolMutex  sync.Mutex
)

// GetDatabase returns the shared database instance, creating or
// recreating it when the configuration changed, the connection aged
// out, or the health check fails.
func GetDatabase(config DatabaseConfig, log *logger.Logger) (DatabaseInterface, error) {
	poolMutex.Lock()
	defer poolMutex.Unlock()

	if globalPool == nil || shouldRecreateConnection(globalPool, config, log) {
		if globalPool != nil && globalPool.instance != nil {
			_ = globalPool.instance.Close()
		}

		instance, err := NewDatabase(config)
		if err != nil {
			return nil, err
		}
		log.Info("database connection created")
		globalPool = &databasePool{
			instance: instance,
			config:   config,
			lastUsed: time.Now(),
		}
	} else {
		globalPool.lastUsed = time.Now()
	}

	return globalPool.instance, nil
}

func shouldRecreateConnection(pool *databasePool, newConfig DatabaseConfig, log *logger.Logger) bool {
	if pool == nil || pool.instance == nil {
		return true
	}

	if pool.config != newConfig {
		log.Info("database configuration changed, recreating connection")
		return true
	}

	if time.Since(pool.lastUsed) > 30*time.Minute {
		log.Info("database connection expired, recreating")
		return true
	}

	if err := pool.instance.HealthCheck(); err != nil {
		log.Warn("database health check failed, recreating", "error", err)
		return true
	}

	return false
}
