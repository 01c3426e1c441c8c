// Package importer loads a staffing plan (a project, its phases, the
// consultants on it and their requested hours) from a JSON file.
package importer

import (
	"encoding/json"
	"fmt"
	"os"
)

// PlanImport is the top-level JSON structure of a staffing plan file.
type PlanImport struct {
	Project     ProjectImport      `json:"project"`
	Phases      []PhaseImport      `json:"phases"`
	Consultants []ConsultantImport `json:"consultants,omitempty"`
	Allocations []AllocationImport `json:"allocations,omitempty"`
}

type ProjectImport struct {
	Name string `json:"name"`
}

// PhaseImport defines a dated phase. Ref names it within the file.
type PhaseImport struct {
	Ref       string `json:"ref"`
	Name      string `json:"name"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Order     int    `json:"order"`
}

// ConsultantImport defines a consultant. An email matching an existing
// consultant reuses that record.
type ConsultantImport struct {
	Ref   string `json:"ref"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// AllocationImport requests hours for a consultant in a phase. Hours is a
// decimal string such as "120" or "37.5".
type AllocationImport struct {
	ConsultantRef string `json:"consultant_ref"`
	PhaseRef      string `json:"phase_ref"`
	Hours         string `json:"hours"`
}

// LoadPlan reads and parses a staffing plan JSON file.
func LoadPlan(path string) (*PlanImport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var plan PlanImport
	if err := json.Unmarshal(data, &plan); err != nil {
		return nil, fmt.Errorf("parsing plan file: %w", err)
	}
	return &plan, nil
}
