package domain

// PhaseApprovalStatus is the approval ladder state of a PhaseAllocation.
type PhaseApprovalStatus string

const (
	PhasePending         PhaseApprovalStatus = "PENDING"
	PhaseApproved        PhaseApprovalStatus = "APPROVED"
	PhaseRejected        PhaseApprovalStatus = "REJECTED"
	PhaseDeletionPending PhaseApprovalStatus = "DELETION_PENDING"
	PhaseExpired         PhaseApprovalStatus = "EXPIRED"
	PhaseForfeited       PhaseApprovalStatus = "FORFEITED"
)

// PhaseApprovalStatuses lists every PhaseApprovalStatus.
var PhaseApprovalStatuses = []PhaseApprovalStatus{
	PhasePending, PhaseApproved, PhaseRejected, PhaseDeletionPending, PhaseExpired, PhaseForfeited,
}

// WeeklyPlanningStatus is the approval state of a single WeeklyAllocation.
type WeeklyPlanningStatus string

const (
	WeeklyPending  WeeklyPlanningStatus = "PENDING"
	WeeklyApproved WeeklyPlanningStatus = "APPROVED"
	WeeklyModified WeeklyPlanningStatus = "MODIFIED"
	WeeklyRejected WeeklyPlanningStatus = "REJECTED"
)

// WeeklyPlanningStatuses lists every WeeklyPlanningStatus.
var WeeklyPlanningStatuses = []WeeklyPlanningStatus{
	WeeklyPending, WeeklyApproved, WeeklyModified, WeeklyRejected,
}

// PhaseEvent is an action applied to a PhaseAllocation.
type PhaseEvent string

const (
	PhaseEventApprove          PhaseEvent = "approve"
	PhaseEventReject           PhaseEvent = "reject"
	PhaseEventModify           PhaseEvent = "modify"
	PhaseEventModifyAndApprove PhaseEvent = "modify-approve"
	PhaseEventRequestDeletion  PhaseEvent = "request-deletion"
	PhaseEventDelete           PhaseEvent = "delete"
	PhaseEventRejectDeletion   PhaseEvent = "reject-deletion"
	PhaseEventExpire           PhaseEvent = "expire"
	PhaseEventForfeit          PhaseEvent = "forfeit"
)

// PhaseEvents lists every PhaseEvent.
var PhaseEvents = []PhaseEvent{
	PhaseEventApprove, PhaseEventReject, PhaseEventModify, PhaseEventModifyAndApprove,
	PhaseEventRequestDeletion, PhaseEventDelete, PhaseEventRejectDeletion,
	PhaseEventExpire, PhaseEventForfeit,
}

// WeeklyEvent is an approver action applied to a WeeklyAllocation.
type WeeklyEvent string

const (
	WeeklyEventApprove WeeklyEvent = "approve"
	WeeklyEventModify  WeeklyEvent = "modify"
	WeeklyEventReject  WeeklyEvent = "reject"
)

// WeeklyEvents lists every WeeklyEvent.
var WeeklyEvents = []WeeklyEvent{WeeklyEventApprove, WeeklyEventModify, WeeklyEventReject}

// OriginKind records why a PhaseAllocation request was raised.
type OriginKind string

const (
	OriginAssignment   OriginKind = "assignment"
	OriginReallocation OriginKind = "reallocation"
)

type HourChangeType string

const (
	HourChangeAdjustment HourChangeType = "ADJUSTMENT"
	HourChangeShift      HourChangeType = "SHIFT"
)

type HourChangeStatus string

const (
	HourChangePending  HourChangeStatus = "PENDING"
	HourChangeApproved HourChangeStatus = "APPROVED"
	HourChangeRejected HourChangeStatus = "REJECTED"
)

type AuditAction string

const (
	AuditCreated          AuditAction = "created"
	AuditComposed         AuditAction = "composed"
	AuditTransition       AuditAction = "transition"
	AuditMergedIntoParent AuditAction = "merged_into_parent"
	AuditWeekReparented   AuditAction = "week_reparented"
	AuditHourChange       AuditAction = "hour_change_applied"
	AuditDeleted          AuditAction = "deleted"
	AuditParentDetached   AuditAction = "parent_detached"
	AuditWeeksClosed      AuditAction = "weeks_closed"
)
