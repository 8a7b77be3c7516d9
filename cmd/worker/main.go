package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"flowi_ledger/internal/logger"
	"flowi_ledger/internal/models"
	"flowi_ledger/internal/services"
	"flowi_ledger/internal/store"
	"flowi_ledger/internal/tasks"
)

func main() {
	if err := logger.Setup(envOr("LOG_LEVEL", "info"), envOr("LOG_FORMAT", "console")); err != nil {
		panic(err)
	}
	log := logger.WithComponent("worker")
	if err := godotenv.Load(); err != nil {
		log.Info().Msg("No .env file found, using system environment variables")
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal().Msg("DATABASE_URL not set")
	}
	db, err := services.InitDB(databaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}

	var cache *services.RedisCache
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		cache, err = services.NewRedisCache(redisURL)
		if err != nil {
			log.Warn().Err(err).Msg("Redis unavailable, snapshot caching disabled")
			cache = nil
		}
	}

	ledgerStore := store.NewGormStore(db)
	deps := &tasks.Deps{
		Sweeper: services.NewSweeperService(ledgerStore),
		Aging:   services.NewAgingService(ledgerStore, nil),
		Cache:   cache,
	}

	tasks.DefineTasks()

	pollInterval := 5 * time.Minute
	if v := os.Getenv("WORKER_POLL_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			pollInterval = d
		}
	}

	log.Info().Dur("interval", pollInterval).Msg("Worker started")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan
		log.Info().Msg("Shutting down worker...")
		cancel()
	}()

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	// Run once on start, then on every tick
	processScheduledTasks(ctx, db, deps)

	for {
		select {
		case <-ticker.C:
			processScheduledTasks(ctx, db, deps)
		case <-ctx.Done():
			return
		}
	}
}

func processScheduledTasks(ctx context.Context, db *gorm.DB, deps *tasks.Deps) {
	log := logger.WithComponent("worker")

	var pendingTasks []models.ScheduledTask
	now := time.Now()
	if err := db.Where("status = ? AND due <= ?", models.ScheduledTaskStatusActive, now).Find(&pendingTasks).Error; err != nil {
		log.Error().Err(err).Msg("Error fetching pending tasks")
		return
	}

	if len(pendingTasks) == 0 {
		return
	}
	log.Info().Int("count", len(pendingTasks)).Msg("Found pending tasks")

	for _, task := range pendingTasks {
		if ctx.Err() != nil {
			return
		}
		executeTask(ctx, db, deps, task, 1)
	}
}

func executeTask(ctx context.Context, db *gorm.DB, deps *tasks.Deps, task models.ScheduledTask, curAttempt int) {
	log := logger.WithComponent("worker")
	log.Info().Str("task", task.TaskName).Uint("id", task.ID).Int("attempt", curAttempt).Msg("Processing task")

	handler, found := tasks.GetHandler(task.TaskName)
	if !found {
		log.Error().Str("task", task.TaskName).Msg("Task handler not found, marking as failure")

		now := time.Now()
		db.Model(&task).Updates(map[string]interface{}{
			"status":   models.ScheduledTaskStatusFailure,
			"last_run": &now,
		})
		db.Create(&models.ScheduledTaskHistory{
			ScheduledTaskID: task.ID,
			TaskName:        task.TaskName,
			RunAt:           now,
			Status:          "handler_not_found",
			AttemptNumber:   curAttempt,
			Arguments:       task.Arguments,
			Result:          map[string]interface{}{"error": "Handler not found"},
		})
		return
	}

	startTime := time.Now()
	result, err := handler(ctx, deps, task)
	runtimeMs := int(time.Since(startTime).Milliseconds())

	status := "success"
	var resultData map[string]interface{}
	if err != nil {
		status = "failure"
		resultData = map[string]interface{}{"error": err.Error()}
		log.Error().Err(err).Str("task", task.TaskName).Msg("Task failed")
	} else {
		resultData = result
		log.Info().Str("task", task.TaskName).Msg("Task completed")
	}

	db.Create(&models.ScheduledTaskHistory{
		ScheduledTaskID: task.ID,
		TaskName:        task.TaskName,
		RunAt:           startTime,
		RuntimeMs:       runtimeMs,
		Status:          status,
		AttemptNumber:   curAttempt,
		Arguments:       task.Arguments,
		Result:          resultData,
	})

	taskUpdates := map[string]interface{}{
		"last_run": &startTime,
	}

	if status != "success" {
		if curAttempt < task.MaxAttempt {
			executeTask(ctx, db, deps, task, curAttempt+1)
			return
		}
		taskUpdates["status"] = models.ScheduledTaskStatusFailure
	} else {
		switch task.TaskType {
		case models.ScheduledTaskTypeOneTime:
			taskUpdates["status"] = models.ScheduledTaskStatusDone
		case models.ScheduledTaskTypeRecurring:
			nextDue := task.NextDue()
			// the next due must be in the future, otherwise the task would
			// run again on every poll
			if nextDue.After(task.Due) {
				taskUpdates["status"] = models.ScheduledTaskStatusActive
				taskUpdates["due"] = nextDue
			} else {
				taskUpdates["status"] = models.ScheduledTaskStatusDone
			}
		}
	}

	db.Model(&task).Updates(taskUpdates)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
