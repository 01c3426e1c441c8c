package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/alexanderramin/staffplan/internal/app"
	"github.com/alexanderramin/staffplan/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

func parseDates(values ...string) ([]time.Time, error) {
	out := make([]time.Time, 0, len(values))
	for _, v := range values {
		d, err := domain.ParseDate(v)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

func optionalDatePtr(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	d, err := domain.ParseDate(s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func hoursOrZero(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}

// --- directory ---

func (h *handler) listConsultants(c *gin.Context) {
	list, err := h.svc.Directory.ListConsultants(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	out := make([]consultantDTO, 0, len(list))
	for _, cs := range list {
		out = append(out, toConsultant(cs))
	}
	c.JSON(http.StatusOK, gin.H{"consultants": out})
}

func (h *handler) createConsultant(c *gin.Context) {
	var req createConsultantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.failBinding(c, err)
		return
	}
	cs, err := h.svc.Directory.CreateConsultant(c.Request.Context(), req.Name, req.Email)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, toConsultant(cs))
}

func (h *handler) getConsultant(c *gin.Context) {
	cs, err := h.svc.Directory.GetConsultant(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toConsultant(cs))
}

func (h *handler) listProjects(c *gin.Context) {
	list, err := h.svc.Directory.ListProjects(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	out := make([]projectDTO, 0, len(list))
	for _, p := range list {
		out = append(out, projectDTO{ID: p.ID, Name: p.Name})
	}
	c.JSON(http.StatusOK, gin.H{"projects": out})
}

func (h *handler) createProject(c *gin.Context) {
	var req createProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.failBinding(c, err)
		return
	}
	p, err := h.svc.Directory.CreateProject(c.Request.Context(), req.Name)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, projectDTO{ID: p.ID, Name: p.Name})
}

func (h *handler) listPhases(c *gin.Context) {
	list, err := h.svc.Directory.ListPhases(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	out := make([]phaseDTO, 0, len(list))
	for _, p := range list {
		out = append(out, toPhase(p))
	}
	c.JSON(http.StatusOK, gin.H{"phases": out})
}

func (h *handler) createPhase(c *gin.Context) {
	var req createPhaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.failBinding(c, err)
		return
	}
	dates, err := parseDates(req.StartDate, req.EndDate)
	if err != nil {
		h.fail(c, err)
		return
	}
	p := &domain.Phase{
		ProjectID:  c.Param("id"),
		Name:       req.Name,
		StartDate:  dates[0],
		EndDate:    dates[1],
		OrderIndex: req.OrderIndex,
	}
	if err := h.svc.Directory.CreatePhase(c.Request.Context(), p); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, toPhase(p))
}

// --- phase allocations ---

func (h *handler) listAllocations(c *gin.Context) {
	status := domain.PhaseApprovalStatus(strings.ToUpper(c.Query("status")))
	list, err := h.svc.Ledger.ListAllocations(c.Request.Context(), status)
	if err != nil {
		h.fail(c, err)
		return
	}
	out := make([]*allocationDTO, 0, len(list))
	for _, a := range list {
		out = append(out, toAllocation(a))
	}
	c.JSON(http.StatusOK, gin.H{"allocations": out})
}

func (h *handler) createAllocation(c *gin.Context) {
	var req createAllocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.failBinding(c, err)
		return
	}
	origin := domain.AllocationOrigin{Kind: domain.OriginAssignment}
	if r := req.Reallocation; r != nil {
		origin = domain.AllocationOrigin{
			Kind: domain.OriginReallocation,
			Source: &domain.ReallocationSource{
				FromPhaseID:    r.FromPhaseID,
				UnplannedHours: hoursOrZero(r.UnplannedHours),
				Notes:          r.Notes,
			},
		}
	}
	resp, err := h.svc.Ledger.CreateOrMergeAllocation(c.Request.Context(), app.CreateAllocationRequest{
		ConsultantID: req.ConsultantID,
		PhaseID:      req.PhaseID,
		Hours:        *req.Hours,
		Origin:       origin,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	status := http.StatusCreated
	if resp.Merged {
		status = http.StatusOK
	}
	c.JSON(status, gin.H{"allocation": toAllocation(resp.Allocation), "merged": resp.Merged})
}

func (h *handler) getAllocation(c *gin.Context) {
	detail, err := h.svc.Ledger.GetAllocation(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toAllocationDetail(detail))
}

func (h *handler) phaseAction(c *gin.Context) {
	var req phaseActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.failBinding(c, err)
		return
	}
	resp, err := h.svc.Approval.ApplyPhaseAction(c.Request.Context(), app.PhaseActionRequest{
		AllocationID:       c.Param("id"),
		Action:             domain.PhaseEvent(strings.ToLower(req.Action)),
		RejectionReason:    req.RejectionReason,
		ModifiedHours:      req.ModifiedHours,
		ModificationReason: req.ModificationReason,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"allocation":   toAllocation(resp.Allocation),
		"deleted":      resp.Deleted,
		"mergedIntoId": resp.MergedIntoID,
	})
}

// --- weekly allocations ---

func (h *handler) submitWeek(c *gin.Context) {
	var req submitWeekRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.failBinding(c, err)
		return
	}
	weekStart, err := domain.ParseDate(req.WeekStartDate)
	if err != nil {
		h.fail(c, err)
		return
	}
	w, err := h.svc.Ledger.SubmitWeeklyHours(c.Request.Context(), app.SubmitWeekRequest{
		PhaseAllocationID:     req.PhaseAllocationID,
		WeekStart:             weekStart,
		Hours:                 *req.PlannedHours,
		ClearRejection:        req.ClearRejection,
		ConsultantDescription: req.ConsultantDescription,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "week": toWeek(w)})
}

func (h *handler) submitWeeks(c *gin.Context) {
	var req submitWeeksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.failBinding(c, err)
		return
	}
	in := app.SubmitWeeksRequest{PhaseAllocationID: req.PhaseAllocationID, ClearRejection: req.ClearRejection}
	for _, w := range req.Weeks {
		weekStart, err := domain.ParseDate(w.WeekStartDate)
		if err != nil {
			h.fail(c, err)
			return
		}
		in.Weeks = append(in.Weeks, app.WeekHours{
			WeekStart:             weekStart,
			Hours:                 *w.PlannedHours,
			ConsultantDescription: w.ConsultantDescription,
		})
	}
	resp, err := h.svc.Ledger.SubmitWeeks(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"ok":                true,
		"submissionBatchId": resp.SubmissionBatchID,
		"weeks":             toWeeks(resp.Weeks),
	})
}

func (h *handler) weeklyAction(c *gin.Context) {
	var req weeklyActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.failBinding(c, err)
		return
	}
	w, err := h.svc.Approval.ApplyWeeklyAction(c.Request.Context(), app.WeeklyActionRequest{
		WeeklyAllocationID: c.Param("id"),
		Action:             domain.WeeklyEvent(req.Action),
		ApprovedHours:      req.ApprovedHours,
		RejectionReason:    req.RejectionReason,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toWeek(w))
}

func (h *handler) batch(c *gin.Context) {
	var req batchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.failBinding(c, err)
		return
	}
	in := app.BatchRequest{
		DefaultAction:   domain.WeeklyEvent(req.DefaultAction),
		RejectionReason: req.RejectionReason,
	}
	if in.DefaultAction == "" {
		in.DefaultAction = domain.WeeklyEventApprove
	}
	for _, it := range req.Allocations {
		in.Items = append(in.Items, app.BatchItem{ID: it.ID, ApprovedHours: it.ApprovedHours})
	}
	resp, err := h.svc.Batch.ApproveBatch(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	failed := make([]gin.H, 0, len(resp.Failed))
	for _, f := range resp.Failed {
		failed = append(failed, gin.H{"id": f.ID, "reason": f.Reason, "message": f.Message})
	}
	body := gin.H{
		"ok":      true,
		"batchId": resp.BatchID,
		"updated": resp.Updated,
		"failed":  failed,
	}
	if len(resp.Warnings) > 0 {
		body["warnings"] = resp.Warnings
	}
	c.JSON(http.StatusOK, body)
}

func (h *handler) pendingSubmissions(c *gin.Context) {
	groups, err := h.svc.Approval.ListPendingSubmissions(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	out := make([]pendingSubmissionDTO, 0, len(groups))
	for _, g := range groups {
		out = append(out, toPendingSubmission(g))
	}
	c.JSON(http.StatusOK, gin.H{"submissions": out})
}

// --- availability ---

func (h *handler) availability(c *gin.Context) {
	var q availabilityQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.failBinding(c, err)
		return
	}
	dates, err := parseDates(q.StartDate, q.EndDate)
	if err != nil {
		h.fail(c, err)
		return
	}
	resp, err := h.svc.Availability.Availability(c.Request.Context(), app.AvailabilityRequest{
		Start:            dates[0],
		End:              dates[1],
		ExcludeProjectID: q.ExcludeProjectID,
		ConsultantIDs:    q.ConsultantIDs,
		Scale:            q.Scale,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toAvailability(resp))
}

// --- hour change requests ---

func (h *handler) listHourChanges(c *gin.Context) {
	status := domain.HourChangeStatus(strings.ToUpper(c.Query("status")))
	list, err := h.svc.HourChanges.List(c.Request.Context(), status)
	if err != nil {
		h.fail(c, err)
		return
	}
	out := make([]hourChangeDTO, 0, len(list))
	for _, hc := range list {
		out = append(out, toHourChange(hc))
	}
	c.JSON(http.StatusOK, gin.H{"requests": out})
}

func (h *handler) createHourChange(c *gin.Context) {
	var req hourChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.failBinding(c, err)
		return
	}
	from, err := optionalDatePtr(req.FromWeekStartDate)
	if err != nil {
		h.fail(c, err)
		return
	}
	to, err := optionalDatePtr(req.ToWeekStartDate)
	if err != nil {
		h.fail(c, err)
		return
	}
	hc, err := h.svc.HourChanges.Create(c.Request.Context(), app.HourChangeRequest{
		PhaseAllocationID: req.PhaseAllocationID,
		ChangeType:        domain.HourChangeType(req.ChangeType),
		RequestedHours:    *req.RequestedHours,
		FromWeekStart:     from,
		ToWeekStart:       to,
		Reason:            req.Reason,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, toHourChange(hc))
}

func (h *handler) decideHourChange(c *gin.Context) {
	var req hourChangeDecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.failBinding(c, err)
		return
	}
	hc, err := h.svc.HourChanges.Decide(c.Request.Context(), app.HourChangeDecision{
		ID:              c.Param("id"),
		Approve:         req.Action == "approve",
		RejectionReason: req.RejectionReason,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toHourChange(hc))
}
