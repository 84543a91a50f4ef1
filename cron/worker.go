package cron

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"ruach/config"
	"ruach/models"
	"ruach/services/tasks"

	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
)

// TranscriptSink stores synced conversation logs.
type TranscriptSink interface {
	SaveTranscript(ctx context.Context, payload models.HistorySyncPayload) error
}

// InitHistorySyncWorker runs the async worker in background.
func InitHistorySyncWorker(sink TranscriptSink) {
	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisSyncQueueDB,
	}

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeHistorySync, handleHistorySyncTask(sink))

	// Start Redis health monitor
	go monitorRedisConnection()

	// Start async worker with retry logic
	go func() {
		log.Println("[HistorySyncWorker] 🚀 Starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[HistorySyncWorker] ❌ Attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Fatal("[HistorySyncWorker] ❗ Max retry attempts reached. Exiting.")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second) // Exponential backoff
			} else {
				break
			}
		}
	}()
}

func handleHistorySyncTask(sink TranscriptSink) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p models.HistorySyncPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			log.Printf("[HistorySyncHandler] 🔴 Invalid payload: %v", err)
			return err
		}

		if err := sink.SaveTranscript(ctx, p); err != nil {
			log.Printf("[HistorySyncHandler] ❌ Failed to save transcript for session %s: %v", p.SessionKey, err)
			return err
		}
		return nil
	}
}

// monitorRedisConnection pings Redis periodically to detect failures at runtime.
func monitorRedisConnection() {
	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisSyncQueueDB,
	})

	ctx := context.Background()

	for {
		if err := client.Ping(ctx).Err(); err != nil {
			log.Printf("[HistorySyncWorker] ⚠️ Redis connection lost: %v", err)
		}
		time.Sleep(10 * time.Second)
	}
}
