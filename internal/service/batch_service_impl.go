package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/alexanderramin/staffplan/internal/app"
	"github.com/alexanderramin/staffplan/internal/db"
	"github.com/alexanderramin/staffplan/internal/domain"
	"github.com/alexanderramin/staffplan/internal/lock"
	"github.com/alexanderramin/staffplan/internal/repository"
	"github.com/google/uuid"
)

// codeInternal labels a batch item that failed for a reason outside the
// domain taxonomy.
const codeInternal domain.ErrorCode = "InternalError"

type batchService struct {
	engine
	observer UseCaseObserver
}

func NewBatchService(uow db.UnitOfWork, locker lock.Locker, repos repository.Repos, observers ...UseCaseObserver) BatchService {
	return &batchService{
		engine:   engine{uow: uow, locker: locker, repos: repos},
		observer: useCaseObserverOrNoop(observers),
	}
}

// ApproveBatch decides every item in its own transaction. A failing item is
// reported and skipped; it never rolls back the others.
func (s *batchService) ApproveBatch(ctx context.Context, req app.BatchRequest) (resp *app.BatchResponse, err error) {
	fields := map[string]any{
		"items":  len(req.Items),
		"action": req.DefaultAction,
	}
	ctx, done := startUseCase(ctx, s.observer, "approve-batch", fields)
	defer done(&err)

	if req.DefaultAction == "" {
		req.DefaultAction = domain.WeeklyEventApprove
	}
	switch req.DefaultAction {
	case domain.WeeklyEventApprove:
	case domain.WeeklyEventReject:
		if err := domain.ValidateRejectionReason(req.RejectionReason); err != nil {
			return nil, err
		}
	default:
		return nil, domain.Validationf("batch action must be approve or reject, got %q", req.DefaultAction)
	}
	if len(req.Items) == 0 {
		return nil, domain.Validationf("at least one weekly allocation is required")
	}

	resp = &app.BatchResponse{BatchID: uuid.New().String(), Failed: []app.BatchFailure{}}
	for _, item := range req.Items {
		if strings.TrimSpace(item.ID) == "" {
			resp.Failed = append(resp.Failed, app.BatchFailure{ID: item.ID, Reason: domain.CodeValidation, Message: "missing id"})
			continue
		}
		wreq := app.WeeklyActionRequest{
			WeeklyAllocationID: item.ID,
			Action:             req.DefaultAction,
			RejectionReason:    req.RejectionReason,
		}
		if req.DefaultAction == domain.WeeklyEventApprove {
			wreq.ApprovedHours = item.ApprovedHours
		}
		if _, err := decideWeek(ctx, s.engine, wreq); err != nil {
			code := domain.CodeOf(err)
			if code == "" {
				code = codeInternal
			}
			resp.Failed = append(resp.Failed, app.BatchFailure{ID: item.ID, Reason: code, Message: err.Error()})
			continue
		}
		resp.Updated++
	}

	fields["batch_id"] = resp.BatchID
	fields["updated"] = resp.Updated
	fields["failed"] = len(resp.Failed)

	record := &domain.ApprovalBatch{
		ID:           resp.BatchID,
		Action:       req.DefaultAction,
		ItemCount:    len(req.Items),
		UpdatedCount: resp.Updated,
		FailedCount:  len(resp.Failed),
		CreatedAt:    nowUTC(),
	}
	// Items are already committed; a failed record write becomes a warning.
	recordErr := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		return repository.NewSQLiteApprovalBatchRepo(tx).Create(ctx, record)
	})
	if recordErr != nil {
		fields["record_error"] = recordErr.Error()
		resp.Warnings = append(resp.Warnings, fmt.Sprintf("batch %s was applied but its record was not saved: %v", resp.BatchID, recordErr))
	}
	return resp, nil
}
