package app

import (
	"time"

	"github.com/alexanderramin/staffplan/internal/capacity"
	"github.com/alexanderramin/staffplan/internal/domain"
)

type AvailabilityRequest struct {
	Start            time.Time
	End              time.Time
	ExcludeProjectID string
	ConsultantIDs    []string
	// Scale names the preset used to grade single weeks.
	Scale string
}

type ConsultantAvailability struct {
	Consultant *domain.Consultant
	Load       capacity.ConsultantLoad
}

type AvailabilityResponse struct {
	Start       time.Time
	End         time.Time
	Scale       string
	Consultants []ConsultantAvailability
}
