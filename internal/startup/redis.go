package startup

import (
	"context"
	"os"
	"time"

	"github.com/fueltrackr/internal/logger"
	redisstorage "github.com/fueltrackr/internal/storage/redis"
)

// ConnectRedisWithRetry подключается к Redis с повторами; после maxWait процесс завершается.
func ConnectRedisWithRetry(redisURL string, sessionTTL, codeTTL, maxWait time.Duration) *redisstorage.Client {
	deadline := time.Now().Add(maxWait)
	backoff := 2 * time.Second
	for {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		client, err := redisstorage.New(ctx, redisURL, sessionTTL, codeTTL)
		cancel()
		if err == nil {
			return client
		}
		if time.Now().After(deadline) {
			logger.Errorf("redis (gave up after %v): %v", maxWait, err)
			os.Exit(1)
		}
		logger.Errorf("redis connect failed, retry in %v: %v", backoff, err)
		time.Sleep(backoff)
		if backoff < 30*time.Second {
			backoff *= 2
		}
	}
}
