package httpapi

import (
	"time"

	"github.com/alexanderramin/staffplan/internal/app"
	"github.com/alexanderramin/staffplan/internal/capacity"
	"github.com/alexanderramin/staffplan/internal/domain"
	"github.com/shopspring/decimal"
)

// Requests. Hours decode from JSON numbers or strings into exact decimals.

type submitWeekRequest struct {
	PhaseAllocationID     string           `json:"phaseAllocationId" binding:"required"`
	WeekStartDate         string           `json:"weekStartDate" binding:"required,date"`
	PlannedHours          *decimal.Decimal `json:"plannedHours" binding:"required,hours"`
	ClearRejection        bool             `json:"clearRejection"`
	ConsultantDescription string           `json:"consultantDescription"`
}

type weekHoursRequest struct {
	WeekStartDate         string           `json:"weekStartDate" binding:"required,date"`
	PlannedHours          *decimal.Decimal `json:"plannedHours" binding:"required,hours"`
	ConsultantDescription string           `json:"consultantDescription"`
}

type submitWeeksRequest struct {
	PhaseAllocationID string             `json:"phaseAllocationId" binding:"required"`
	Weeks             []weekHoursRequest `json:"weeks" binding:"required,min=1,dive"`
	ClearRejection    bool               `json:"clearRejection"`
}

type reallocationRequest struct {
	FromPhaseID    string           `json:"fromPhaseId" binding:"required"`
	UnplannedHours *decimal.Decimal `json:"unplannedHours" binding:"omitempty,hours"`
	Notes          string           `json:"notes"`
}

type createAllocationRequest struct {
	ConsultantID string               `json:"consultantId" binding:"required"`
	PhaseID      string               `json:"phaseId" binding:"required"`
	Hours        *decimal.Decimal     `json:"hours" binding:"required,hours"`
	Reallocation *reallocationRequest `json:"reallocation"`
}

type phaseActionRequest struct {
	Action             string           `json:"action" binding:"required"`
	RejectionReason    string           `json:"rejectionReason"`
	ModifiedHours      *decimal.Decimal `json:"modifiedHours" binding:"omitempty,hours"`
	ModificationReason string           `json:"modificationReason"`
}

type weeklyActionRequest struct {
	Action          string           `json:"action" binding:"required,oneof=approve reject modify"`
	ApprovedHours   *decimal.Decimal `json:"approvedHours" binding:"omitempty,hours"`
	RejectionReason string           `json:"rejectionReason"`
}

type batchItemRequest struct {
	ID            string           `json:"id"`
	ApprovedHours *decimal.Decimal `json:"approvedHours" binding:"omitempty,hours"`
}

type batchRequest struct {
	Allocations     []batchItemRequest `json:"allocations" binding:"required,min=1,dive"`
	DefaultAction   string             `json:"defaultAction" binding:"omitempty,oneof=approve reject"`
	RejectionReason string             `json:"rejectionReason"`
}

type availabilityQuery struct {
	StartDate        string   `form:"startDate" json:"startDate" binding:"required,date"`
	EndDate          string   `form:"endDate" json:"endDate" binding:"required,date"`
	ExcludeProjectID string   `form:"excludeProjectId" json:"excludeProjectId"`
	ConsultantIDs    []string `form:"consultantId" json:"consultantId"`
	Scale            string   `form:"scale" json:"scale"`
}

type createConsultantRequest struct {
	Name  string `json:"name"`
	Email string `json:"email" binding:"omitempty,email"`
}

type createProjectRequest struct {
	Name string `json:"name" binding:"required"`
}

type createPhaseRequest struct {
	Name       string `json:"name" binding:"required"`
	StartDate  string `json:"startDate" binding:"required,date"`
	EndDate    string `json:"endDate" binding:"required,date"`
	OrderIndex int    `json:"orderIndex"`
}

type hourChangeRequest struct {
	PhaseAllocationID string           `json:"phaseAllocationId" binding:"required"`
	ChangeType        string           `json:"changeType" binding:"required,oneof=ADJUSTMENT SHIFT"`
	RequestedHours    *decimal.Decimal `json:"requestedHours" binding:"required,hours"`
	FromWeekStartDate string           `json:"fromWeekStartDate" binding:"omitempty,date"`
	ToWeekStartDate   string           `json:"toWeekStartDate" binding:"omitempty,date"`
	Reason            string           `json:"reason" binding:"required"`
}

type hourChangeDecisionRequest struct {
	Action          string `json:"action" binding:"required,oneof=approve reject"`
	RejectionReason string `json:"rejectionReason"`
}

// Responses. Hours are rendered as JSON numbers.

func hours(d decimal.Decimal) float64 {
	return d.InexactFloat64()
}

func hoursRef(d decimal.Decimal) *float64 {
	f := hours(d)
	return &f
}

func nullableHours(d decimal.NullDecimal) *float64 {
	if !d.Valid {
		return nil
	}
	return hoursRef(d.Decimal)
}

func date(t time.Time) string {
	return t.Format(domain.DateLayout)
}

func optionalDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return date(*t)
}

type consultantDTO struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

func toConsultant(c *domain.Consultant) consultantDTO {
	return consultantDTO{ID: c.ID, Name: c.DisplayName(), Email: c.Email}
}

type projectDTO struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type phaseDTO struct {
	ID         string `json:"id"`
	ProjectID  string `json:"projectId"`
	Name       string `json:"name"`
	StartDate  string `json:"startDate"`
	EndDate    string `json:"endDate"`
	OrderIndex int    `json:"orderIndex"`
}

func toPhase(p *domain.Phase) phaseDTO {
	return phaseDTO{
		ID:         p.ID,
		ProjectID:  p.ProjectID,
		Name:       p.Name,
		StartDate:  date(p.StartDate),
		EndDate:    date(p.EndDate),
		OrderIndex: p.OrderIndex,
	}
}

type compositionEntryDTO struct {
	Seq                    int      `json:"seq"`
	OriginalHours          *float64 `json:"originalHours,omitempty"`
	ReallocatedHours       *float64 `json:"reallocatedHours,omitempty"`
	ReallocatedFromPhaseID string   `json:"reallocatedFromPhaseId,omitempty"`
	SourceAllocationID     string   `json:"sourceAllocationId,omitempty"`
	Timestamp              string   `json:"timestamp"`
}

type allocationDTO struct {
	ID                  string                `json:"id"`
	ConsultantID        string                `json:"consultantId"`
	PhaseID             string                `json:"phaseId"`
	TotalHours          float64               `json:"totalHours"`
	ApprovalStatus      string                `json:"approvalStatus"`
	RejectionReason     string                `json:"rejectionReason,omitempty"`
	ModificationReason  string                `json:"modificationReason,omitempty"`
	IsComposite         bool                  `json:"isComposite"`
	CompositionMetadata []compositionEntryDTO `json:"compositionMetadata,omitempty"`
	ParentAllocationID  string                `json:"parentAllocationId,omitempty"`
	ApprovedAt          string                `json:"approvedAt,omitempty"`
	CreatedAt           string                `json:"createdAt"`
}

func toAllocation(a *domain.PhaseAllocation) *allocationDTO {
	if a == nil {
		return nil
	}
	out := &allocationDTO{
		ID:                 a.ID,
		ConsultantID:       a.ConsultantID,
		PhaseID:            a.PhaseID,
		TotalHours:         hours(a.TotalHours),
		ApprovalStatus:     string(a.ApprovalStatus),
		RejectionReason:    domain.StrFromPtr(a.RejectionReason),
		ModificationReason: domain.StrFromPtr(a.ModificationReason),
		IsComposite:        a.IsComposite,
		ParentAllocationID: domain.StrFromPtr(a.ParentAllocationID),
		CreatedAt:          a.CreatedAt.Format(time.RFC3339),
	}
	if a.ApprovedAt != nil {
		out.ApprovedAt = a.ApprovedAt.Format(time.RFC3339)
	}
	for _, e := range a.CompositionMetadata {
		out.CompositionMetadata = append(out.CompositionMetadata, compositionEntryDTO{
			Seq:                    e.Seq,
			OriginalHours:          nullableHours(e.OriginalHours),
			ReallocatedHours:       nullableHours(e.ReallocatedHours),
			ReallocatedFromPhaseID: domain.StrFromPtr(e.ReallocatedFromPhaseID),
			SourceAllocationID:     domain.StrFromPtr(e.SourceAllocationID),
			Timestamp:              e.Timestamp.Format(time.RFC3339),
		})
	}
	return out
}

type weekDTO struct {
	ID                    string   `json:"id"`
	PhaseAllocationID     string   `json:"phaseAllocationId"`
	WeekStartDate         string   `json:"weekStartDate"`
	WeekEndDate           string   `json:"weekEndDate"`
	WeekNumber            int      `json:"weekNumber"`
	Year                  int      `json:"year"`
	ProposedHours         *float64 `json:"proposedHours"`
	ApprovedHours         *float64 `json:"approvedHours"`
	PlanningStatus        string   `json:"planningStatus"`
	RejectionReason       string   `json:"rejectionReason,omitempty"`
	ConsultantDescription string   `json:"consultantDescription,omitempty"`
	SubmissionBatchID     string   `json:"submissionBatchId,omitempty"`
}

func toWeek(w *domain.WeeklyAllocation) weekDTO {
	return weekDTO{
		ID:                    w.ID,
		PhaseAllocationID:     w.PhaseAllocationID,
		WeekStartDate:         date(w.WeekStartDate),
		WeekEndDate:           date(w.WeekEndDate),
		WeekNumber:            w.WeekNumber,
		Year:                  w.Year,
		ProposedHours:         nullableHours(w.ProposedHours),
		ApprovedHours:         nullableHours(w.ApprovedHours),
		PlanningStatus:        string(w.PlanningStatus),
		RejectionReason:       domain.StrFromPtr(w.RejectionReason),
		ConsultantDescription: w.ConsultantDescription,
		SubmissionBatchID:     w.SubmissionBatchID,
	}
}

func toWeeks(ws []*domain.WeeklyAllocation) []weekDTO {
	out := make([]weekDTO, 0, len(ws))
	for _, w := range ws {
		out = append(out, toWeek(w))
	}
	return out
}

type auditDTO struct {
	Action    string `json:"action"`
	Detail    string `json:"detail"`
	CreatedAt string `json:"createdAt"`
}

type allocationDetailDTO struct {
	Allocation     *allocationDTO `json:"allocation"`
	Weeks          []weekDTO      `json:"weeks"`
	Audit          []auditDTO     `json:"audit"`
	CommittedHours float64        `json:"committedHours"`
	RemainingHours float64        `json:"remainingHours"`
}

func toAllocationDetail(d *app.AllocationDetail) allocationDetailDTO {
	out := allocationDetailDTO{
		Allocation:     toAllocation(d.Allocation),
		Weeks:          toWeeks(d.Weeks),
		Audit:          make([]auditDTO, 0, len(d.Audit)),
		CommittedHours: hours(d.Committed),
		RemainingHours: hours(d.Remaining),
	}
	for _, e := range d.Audit {
		out.Audit = append(out.Audit, auditDTO{Action: string(e.Action), Detail: e.Detail, CreatedAt: e.CreatedAt.Format(time.RFC3339)})
	}
	return out
}

type pendingWeekDTO struct {
	weekDTO
	ProjectName string `json:"projectName"`
	PhaseName   string `json:"phaseName"`
}

type pendingSubmissionDTO struct {
	Key               string           `json:"key"`
	SubmissionBatchID string           `json:"submissionBatchId,omitempty"`
	ConsultantID      string           `json:"consultantId"`
	ConsultantName    string           `json:"consultantName"`
	SubmittedAt       string           `json:"submittedAt"`
	Legacy            bool             `json:"legacy"`
	TotalHours        float64          `json:"totalHours"`
	Weeks             []pendingWeekDTO `json:"weeks"`
}

func toPendingSubmission(p app.PendingSubmission) pendingSubmissionDTO {
	out := pendingSubmissionDTO{
		Key:               p.Key,
		SubmissionBatchID: p.SubmissionBatchID,
		ConsultantID:      p.ConsultantID,
		ConsultantName:    p.ConsultantName,
		SubmittedAt:       p.SubmittedAt.Format(time.RFC3339),
		Legacy:            p.Legacy,
		TotalHours:        hours(p.TotalHours),
		Weeks:             make([]pendingWeekDTO, 0, len(p.Weeks)),
	}
	for _, w := range p.Weeks {
		out.Weeks = append(out.Weeks, pendingWeekDTO{weekDTO: toWeek(w.Week), ProjectName: w.ProjectName, PhaseName: w.PhaseName})
	}
	return out
}

type contributionDTO struct {
	PhaseAllocationID string  `json:"phaseAllocationId"`
	ProjectID         string  `json:"projectId"`
	ProjectName       string  `json:"projectName"`
	PhaseID           string  `json:"phaseId"`
	PhaseName         string  `json:"phaseName"`
	Hours             float64 `json:"hours"`
}

type weekLoadDTO struct {
	WeekStartDate string            `json:"weekStartDate"`
	WeekEndDate   string            `json:"weekEndDate"`
	WeekNumber    int               `json:"weekNumber"`
	Year          int               `json:"year"`
	Hours         float64           `json:"hours"`
	Status        string            `json:"status"`
	Allocations   []contributionDTO `json:"allocations"`
}

type consultantLoadDTO struct {
	Consultant          consultantDTO `json:"consultant"`
	AllocatedHours      float64       `json:"allocatedHours"`
	TotalAllocatedHours float64       `json:"totalAllocatedHours"`
	AverageHoursPerWeek float64       `json:"averageHoursPerWeek"`
	TotalAvailable      float64       `json:"totalAvailable"`
	OverallStatus       string        `json:"overallStatus"`
	Trend               string        `json:"trend"`
	WeeklyBreakdown     []weekLoadDTO `json:"weeklyBreakdown"`
}

type availabilityDTO struct {
	StartDate   string              `json:"startDate"`
	EndDate     string              `json:"endDate"`
	Scale       string              `json:"scale"`
	Consultants []consultantLoadDTO `json:"consultants"`
}

func toAvailability(r *app.AvailabilityResponse) availabilityDTO {
	out := availabilityDTO{
		StartDate:   date(r.Start),
		EndDate:     date(r.End),
		Scale:       r.Scale,
		Consultants: make([]consultantLoadDTO, 0, len(r.Consultants)),
	}
	for _, c := range r.Consultants {
		out.Consultants = append(out.Consultants, toConsultantLoad(c.Consultant, c.Load))
	}
	return out
}

func toConsultantLoad(c *domain.Consultant, l capacity.ConsultantLoad) consultantLoadDTO {
	out := consultantLoadDTO{
		Consultant:          toConsultant(c),
		AllocatedHours:      hours(l.TotalAllocated),
		TotalAllocatedHours: hours(l.TotalAllocated),
		AverageHoursPerWeek: hours(l.AverageHoursPerWeek),
		TotalAvailable:      hours(l.TotalAvailable),
		OverallStatus:       string(l.OverallStatus),
		Trend:               string(l.Trend),
		WeeklyBreakdown:     make([]weekLoadDTO, 0, len(l.Weeks)),
	}
	for _, w := range l.Weeks {
		wl := weekLoadDTO{
			WeekStartDate: date(w.WeekStart),
			WeekEndDate:   date(w.WeekEnd),
			WeekNumber:    w.WeekNumber,
			Year:          w.Year,
			Hours:         hours(w.Hours),
			Status:        string(w.Status),
			Allocations:   make([]contributionDTO, 0, len(w.Contributions)),
		}
		for _, ct := range w.Contributions {
			wl.Allocations = append(wl.Allocations, contributionDTO{
				PhaseAllocationID: ct.PhaseAllocationID,
				ProjectID:         ct.ProjectID,
				ProjectName:       ct.ProjectName,
				PhaseID:           ct.PhaseID,
				PhaseName:         ct.PhaseName,
				Hours:             hours(ct.Hours),
			})
		}
		out.WeeklyBreakdown = append(out.WeeklyBreakdown, wl)
	}
	return out
}

type hourChangeDTO struct {
	ID                string  `json:"id"`
	PhaseAllocationID string  `json:"phaseAllocationId"`
	ChangeType        string  `json:"changeType"`
	RequestedHours    float64 `json:"requestedHours"`
	FromWeekStartDate string  `json:"fromWeekStartDate,omitempty"`
	ToWeekStartDate   string  `json:"toWeekStartDate,omitempty"`
	Reason            string  `json:"reason"`
	Status            string  `json:"status"`
	RejectionReason   string  `json:"rejectionReason,omitempty"`
	DecidedAt         string  `json:"decidedAt,omitempty"`
	CreatedAt         string  `json:"createdAt"`
}

func toHourChange(hc *domain.HourChangeRequest) hourChangeDTO {
	out := hourChangeDTO{
		ID:                hc.ID,
		PhaseAllocationID: hc.PhaseAllocationID,
		ChangeType:        string(hc.ChangeType),
		RequestedHours:    hours(hc.RequestedHours),
		FromWeekStartDate: optionalDate(hc.FromWeekStart),
		ToWeekStartDate:   optionalDate(hc.ToWeekStart),
		Reason:            hc.Reason,
		Status:            string(hc.Status),
		RejectionReason:   domain.StrFromPtr(hc.RejectionReason),
		CreatedAt:         hc.CreatedAt.Format(time.RFC3339),
	}
	if hc.DecidedAt != nil {
		out.DecidedAt = hc.DecidedAt.Format(time.RFC3339)
	}
	return out
}
