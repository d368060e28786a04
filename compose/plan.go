// Package compose turns a free-text automation goal plus a snapshot of
// current sensor values into a service composition plan, by prompting a
// chat-completion model and extracting the structured payload from its
// answer. Every failure mode degrades to a usable plan: canned examples
// when no model is reachable, a parsing_failed placeholder when the answer
// carries no decodable JSON.
package compose

import (
	"fmt"

	"github.com/google/uuid"
)

// Status records how far a plan made it through generation and validation.
type Status string

// Plan statuses.
const (
	StatusGenerated        Status = "generated"
	StatusValidated        Status = "validated"
	StatusValidationFailed Status = "validation_failed"
	StatusParsingFailed    Status = "parsing_failed"
)

// PlanService is one service slot in a composition.
type PlanService struct {
	ServiceID    string   `json:"service_id"`
	Role         string   `json:"role"`
	Priority     int      `json:"priority"`
	Inputs       []string `json:"inputs,omitempty"`
	Outputs      []string `json:"outputs,omitempty"`
	Dependencies []string `json:"dependencies,omitempty"`
}

// Validation is the outcome of checking a plan against the service catalog.
// Errors make the plan invalid; warnings and suggestions do not.
type Validation struct {
	IsValid     bool     `json:"is_valid"`
	Errors      []string `json:"errors,omitempty"`
	Warnings    []string `json:"warnings,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// Plan is one composition result. Immutable once returned.
type Plan struct {
	ID         string        `json:"id"`
	CreatedAt  int64         `json:"created_at"` // unix ms
	Goal       string        `json:"goal"`
	RawOutput  string        `json:"raw_output"`
	Services   []PlanService `json:"services"`
	Validation Validation    `json:"validation"`
	Status     Status        `json:"status"`
}

// HistoryEntry is the trimmed record kept per composition request.
type HistoryEntry struct {
	PlanID       string `json:"plan_id"`
	CreatedAt    int64  `json:"created_at"`
	Goal         string `json:"goal"`
	Status       Status `json:"status"`
	IsValid      bool   `json:"is_valid"`
	ServiceCount int    `json:"service_count"`
}

// NewPlanID builds a plan identifier.
func NewPlanID() string {
	return fmt.Sprintf("composition_%s", uuid.NewString()[:8])
}
