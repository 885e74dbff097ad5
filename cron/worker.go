package cron

import (
	"context"
	"log"
	"time"

	"knead/config"
	"knead/services/approval"
	"knead/services/booking"

	"github.com/hibiken/asynq"
)

const (
	TypeCompletionSweep = "booking:completion_sweep"
	TypeApprovalRepair  = "approval:repair_grants"
)

// InitMaintenanceWorker runs the async worker and its periodic schedule in
// the background. The worker hosts the two convergence jobs: the completion
// sweep that closes the lifecycle tail, and the approval repair pass that
// heals capability grants lost to partial failures.
func InitMaintenanceWorker(sweeper *booking.CompletionSweeper, approvalSvc approval.ApprovalService) {
	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 2,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeCompletionSweep, handleCompletionSweep(sweeper))
	mux.HandleFunc(TypeApprovalRepair, handleApprovalRepair(approvalSvc))

	go func() {
		log.Println("[MaintenanceWorker] starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[MaintenanceWorker] attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Fatal("[MaintenanceWorker] max retry attempts reached, exiting")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second)
			} else {
				break
			}
		}
	}()

	go runSchedule(redisOpts)
}

// runSchedule registers the periodic maintenance tasks.
func runSchedule(redisOpts asynq.RedisClientOpt) {
	scheduler := asynq.NewScheduler(redisOpts, &asynq.SchedulerOpts{Location: time.Local})

	if _, err := scheduler.Register("@every 5m", asynq.NewTask(TypeCompletionSweep, nil)); err != nil {
		log.Printf("[MaintenanceWorker] failed to register completion sweep: %v", err)
	}
	if _, err := scheduler.Register("@every 10m", asynq.NewTask(TypeApprovalRepair, nil)); err != nil {
		log.Printf("[MaintenanceWorker] failed to register approval repair: %v", err)
	}

	if err := scheduler.Run(); err != nil {
		log.Printf("[MaintenanceWorker] scheduler stopped: %v", err)
	}
}

func handleCompletionSweep(sweeper *booking.CompletionSweeper) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		completed, err := sweeper.Sweep()
		if err != nil {
			log.Printf("[CompletionSweep] sweep failed: %v", err)
			return err
		}
		if completed > 0 {
			log.Printf("[CompletionSweep] marked %d bookings completed", completed)
		}
		return nil
	}
}

func handleApprovalRepair(approvalSvc approval.ApprovalService) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		repaired, err := approvalSvc.RepairGrants()
		if err != nil {
			log.Printf("[ApprovalRepair] repair pass failed: %v", err)
			return err
		}
		if repaired > 0 {
			log.Printf("[ApprovalRepair] repaired %d capability grants", repaired)
		}
		return nil
	}
}
