package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/staffplan/internal/db"
	"github.com/alexanderramin/staffplan/internal/domain"
	"github.com/alexanderramin/staffplan/internal/lock"
	"github.com/alexanderramin/staffplan/internal/repository"
	"github.com/google/uuid"
)

// engine is the plumbing shared by the mutating services.
type engine struct {
	uow    db.UnitOfWork
	locker lock.Locker
	repos  repository.Repos
}

// lockedTx holds the locks of keys while fn runs in one transaction. The
// repos passed to fn are scoped to that transaction.
func (e engine) lockedTx(ctx context.Context, keys []string, fn func(ctx context.Context, r repository.Repos) error) error {
	release, err := e.locker.Acquire(ctx, keys...)
	if err != nil {
		if errors.Is(err, lock.ErrNotObtained) {
			return domain.Conflictf("allocation is being changed by another request, retry")
		}
		return fmt.Errorf("acquiring allocation lock: %w", err)
	}
	defer release()

	return e.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		return fn(ctx, repository.NewSQLiteRepos(tx))
	})
}

func appendAudit(ctx context.Context, r repository.Repos, allocationID string, action domain.AuditAction, detail string, now time.Time) error {
	return r.Audit.Append(ctx, &domain.AuditEntry{
		ID:                uuid.New().String(),
		PhaseAllocationID: allocationID,
		Action:            action,
		Detail:            detail,
		CreatedAt:         now,
	})
}

func nowUTC() time.Time {
	return time.Now().UTC()
}
