// Package job holds the cron jobs run by the web server.
package job

import (
	"context"
	"time"

	"github.com/ehb/ragchat/logger"
	"github.com/ehb/ragchat/util/common"
)

// Pinger is satisfied by the store executor.
type Pinger interface {
	Ping(ctx context.Context) error
}

// CheckStoreJob logs when the relational store becomes unreachable and when
// it recovers. It never retries anything on behalf of requests.
type CheckStoreJob struct {
	store   Pinger
	timeout time.Duration

	failures int
}

func NewCheckStoreJob(store Pinger) *CheckStoreJob {
	return &CheckStoreJob{store: store, timeout: 10 * time.Second}
}

func (j *CheckStoreJob) Run() {
	defer common.Recover("check store job")

	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	if err := j.store.Ping(ctx); err != nil {
		j.failures++
		if j.failures == 1 {
			logger.Error("store unreachable:", err)
		} else {
			logger.Warningf("store still unreachable after %d checks: %v", j.failures, err)
		}
		return
	}
	if j.failures > 0 {
		logger.Infof("store reachable again after %d failed checks", j.failures)
	}
	j.failures = 0
}
