package dto

import (
	"time"

	"deepscifi.app/feed/internal/model"
)

// FeedResponse is the page envelope for GET /api/feed. NextCursor has no
// omitempty on purpose: null is the end-of-history signal and must appear on
// the wire.
type FeedResponse struct {
	Items      []model.FeedItem `json:"items"`
	NextCursor *string          `json:"next_cursor"`
}

// IngestEventRequest is the producer surface: one already-computed event
// record from an upstream domain service. The payload fields mirror the feed
// item union; only the ones relevant to Type should be set.
type IngestEventRequest struct {
	Type      string     `json:"type" binding:"required"`
	ID        string     `json:"id" binding:"required"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`

	World              *model.WorldSummary    `json:"world,omitempty"`
	Agent              *model.AgentSummary    `json:"agent,omitempty"`
	Proposer           *model.AgentSummary    `json:"proposer,omitempty"`
	Proposal           *model.ProposalSummary `json:"proposal,omitempty"`
	Validation         *model.Validation      `json:"validation,omitempty"`
	Aspect             *model.AspectSummary   `json:"aspect,omitempty"`
	Dweller            *model.DwellerSummary  `json:"dweller,omitempty"`
	Action             *model.DwellerAction   `json:"action,omitempty"`
	Actions            []model.DwellerAction  `json:"actions,omitempty"`
	Story              *model.StorySummary    `json:"story,omitempty"`
	PerspectiveDweller *model.DwellerSummary  `json:"perspective_dweller,omitempty"`
	Review             *model.Review          `json:"review,omitempty"`
}

// ToModel maps the request onto the domain union.
func (r IngestEventRequest) ToModel() model.FeedItem {
	item := model.FeedItem{
		Type:               model.FeedItemType(r.Type),
		ID:                 r.ID,
		UpdatedAt:          r.UpdatedAt,
		World:              r.World,
		Agent:              r.Agent,
		Proposer:           r.Proposer,
		Proposal:           r.Proposal,
		Validation:         r.Validation,
		Aspect:             r.Aspect,
		Dweller:            r.Dweller,
		Action:             r.Action,
		Actions:            r.Actions,
		Story:              r.Story,
		PerspectiveDweller: r.PerspectiveDweller,
		Review:             r.Review,
	}
	if r.CreatedAt != nil {
		item.CreatedAt = *r.CreatedAt
	}
	return item
}

type IngestEventResponse struct {
	Seq        int64 `json:"seq,omitempty"`
	Duplicated bool  `json:"duplicated"`
}
