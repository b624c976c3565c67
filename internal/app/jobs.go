/**
 * @description
 * Scheduled background jobs for the memory service. The refresh job re-runs
 * the analysis flow for memory documents whose last update is older than the
 * configured age, so long-lived memories track the user's current banking data
 * without a manual rebuild.
 */

package app

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/wo-aiml-user/finance-agent/internal/domain"
	"github.com/wo-aiml-user/finance-agent/internal/store"
)

// Jobs bundles the scheduled maintenance tasks.
type Jobs struct {
	service *Service
	maxAge  time.Duration
}

// NewJobs creates the job set for the given service.
func NewJobs(service *Service, maxAge time.Duration) *Jobs {
	return &Jobs{service: service, maxAge: maxAge}
}

// RefreshStaleMemories rebuilds every memory document older than maxAge.
// Users whose raw banking data has since disappeared are skipped.
func (j *Jobs) RefreshStaleMemories() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	docs, err := j.service.ListMemories(ctx)
	if err != nil {
		log.Printf("level=error component=jobs msg=\"stale memory scan failed\" err=%v", err)
		return
	}

	cutoff := time.Now().UTC().Add(-j.maxAge)
	var refreshed, failed, skipped int
	for _, doc := range docs {
		if doc.UpdatedAt.After(cutoff) {
			continue
		}
		result, err := j.service.BuildMemory(ctx, doc.UserID)
		switch {
		case errors.Is(err, store.ErrRawProfileNotFound):
			skipped++
		case err != nil:
			failed++
			log.Printf("level=warn component=jobs msg=\"stale memory refresh errored\" user_id=%s err=%v", doc.UserID, err)
		case result.Status != domain.AnalysisStatusSuccess:
			failed++
			log.Printf("level=warn component=jobs msg=\"stale memory refresh failed\" user_id=%s err=%q", doc.UserID, result.Error)
		default:
			refreshed++
		}
	}

	log.Printf("level=info component=jobs msg=\"stale memory refresh complete\" scanned=%d refreshed=%d failed=%d skipped=%d",
		len(docs), refreshed, failed, skipped)
}

// NewScheduler wires the jobs into a cron scheduler using the given spec.
func NewScheduler(jobs *Jobs, schedule string) (*cron.Cron, error) {
	c := cron.New(cron.WithChain(cron.Recover(cron.DefaultLogger)))
	if _, err := c.AddFunc(schedule, jobs.RefreshStaleMemories); err != nil {
		return nil, err
	}
	return c, nil
}
