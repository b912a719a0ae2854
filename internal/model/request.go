package model

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusCollected Status = "collected"
)

func ParseStatus(raw string) (Status, bool) {
	switch Status(raw) {
	case StatusPending:
		return StatusPending, true
	case StatusCollected:
		return StatusCollected, true
	default:
		return "", false
	}
}

func (s Status) Valid() bool {
	_, ok := ParseStatus(string(s))
	return ok
}

// Label is the text shown on a request card badge. Anything that is not pending reads as collected.
func (s Status) Label() string {
	if s == StatusPending {
		return "Pending"
	}
	return "Collected"
}

// Toggle returns the status an admin action moves the request to.
func (s Status) Toggle() Status {
	if s == StatusPending {
		return StatusCollected
	}
	return StatusPending
}

type SubmitterCategory string

const (
	SubmitterPublic SubmitterCategory = "public"
)

type WasteRequest struct {
	ID        string // client-side reference, never used for store operations
	BackendID uuid.UUID
	UserType  SubmitterCategory
	Name      string
	Phone     string
	Address   string
	Area      string
	WasteType string
	Weight    float64
	Price     float64
	Status    Status
	CreatedAt time.Time
}

func (r *WasteRequest) Clone() *WasteRequest {
	if r == nil {
		return nil
	}
	cp := *r
	return &cp
}

// CloneAll deep-copies a snapshot so that each holder can mutate its own records.
func CloneAll(items []*WasteRequest) []*WasteRequest {
	out := make([]*WasteRequest, 0, len(items))
	for _, item := range items {
		out = append(out, item.Clone())
	}
	return out
}
