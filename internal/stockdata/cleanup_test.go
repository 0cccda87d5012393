package stockdata

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

type fakePruner struct {
	deleted int64
	err     error
	runs    int
}

func (p *fakePruner) DeleteExpired() (int64, error) {
	p.runs++
	return p.deleted, p.err
}

func TestCleanupJobRun(t *testing.T) {
	pruner := &fakePruner{deleted: 3}
	job := NewCleanupJob(pruner, zerolog.Nop())

	job.Run()
	assert.Equal(t, 1, pruner.runs)
}

func TestCleanupJobRunError(t *testing.T) {
	pruner := &fakePruner{err: errors.New("locked")}
	job := NewCleanupJob(pruner, zerolog.Nop())

	// Errors are logged, not propagated; cron keeps the schedule.
	job.Run()
	assert.Equal(t, 1, pruner.runs)
}
