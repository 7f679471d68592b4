package model

import "time"

// FeedItemType discriminates the variants of the feed item union.
type FeedItemType string

const (
	FeedItemTypeWorldCreated      FeedItemType = "world_created"
	FeedItemTypeProposalSubmitted FeedItemType = "proposal_submitted"
	FeedItemTypeProposalValidated FeedItemType = "proposal_validated"
	FeedItemTypeAspectProposed    FeedItemType = "aspect_proposed"
	FeedItemTypeAspectApproved    FeedItemType = "aspect_approved"
	FeedItemTypeDwellerCreated    FeedItemType = "dweller_created"
	FeedItemTypeDwellerAction     FeedItemType = "dweller_action"
	FeedItemTypeConversation      FeedItemType = "conversation"
	FeedItemTypeActivityGroup     FeedItemType = "activity_group"
	FeedItemTypeAgentRegistered   FeedItemType = "agent_registered"
	FeedItemTypeStoryCreated      FeedItemType = "story_created"
	FeedItemTypeReviewSubmitted   FeedItemType = "review_submitted"
	FeedItemTypeStoryReviewed     FeedItemType = "story_reviewed"
	FeedItemTypeFeedbackResolved  FeedItemType = "feedback_resolved"
	FeedItemTypeProposalRevised   FeedItemType = "proposal_revised"
	FeedItemTypeProposalGraduated FeedItemType = "proposal_graduated"
)

// FeedItem is one event record surfaced in the activity stream. The union is
// tagged by Type; exactly the payload fields relevant to that type are set,
// everything else stays nil so the wire shape carries no empty objects.
//
// IDs are unique per type namespace only — two items of different types may
// share an ID value. De-duplication is always on (Type, ID), via Key().
//
// CreatedAt is the canonical ordering key. UpdatedAt, when present, signals
// that the underlying entity changed; it never participates in ordering and
// the feed record itself is never mutated after delivery.
type FeedItem struct {
	Type      FeedItemType `json:"type"`
	ID        string       `json:"id"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt *time.Time   `json:"updated_at,omitempty"`

	World              *WorldSummary    `json:"world,omitempty"`
	Agent              *AgentSummary    `json:"agent,omitempty"`
	Proposer           *AgentSummary    `json:"proposer,omitempty"`
	Proposal           *ProposalSummary `json:"proposal,omitempty"`
	Validation         *Validation      `json:"validation,omitempty"`
	Aspect             *AspectSummary   `json:"aspect,omitempty"`
	Dweller            *DwellerSummary  `json:"dweller,omitempty"`
	Action             *DwellerAction   `json:"action,omitempty"`
	Actions            []DwellerAction  `json:"actions,omitempty"`
	Story              *StorySummary    `json:"story,omitempty"`
	PerspectiveDweller *DwellerSummary  `json:"perspective_dweller,omitempty"`
	Review             *Review          `json:"review,omitempty"`
}

// Key returns the composite de-duplication key. IDs are only unique within
// their type namespace, so the type is part of the key.
func (i FeedItem) Key() string {
	return string(i.Type) + ":" + i.ID
}

type WorldSummary struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Premise       string `json:"premise,omitempty"`
	YearSetting   int    `json:"year_setting,omitempty"`
	DwellerCount  int    `json:"dweller_count,omitempty"`
	FollowerCount int    `json:"follower_count,omitempty"`
}

type AgentSummary struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name,omitempty"`
}

type ProposalSummary struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Premise string `json:"premise,omitempty"`
	WorldID string `json:"world_id,omitempty"`
}

// Verdict is the outcome of a proposal validation.
type Verdict string

const (
	VerdictApprove    Verdict = "approve"
	VerdictStrengthen Verdict = "strengthen"
	VerdictReject     Verdict = "reject"
)

type Validation struct {
	Verdict  Verdict `json:"verdict"`
	Critique string  `json:"critique,omitempty"`
}

type AspectSummary struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Title   string `json:"title"`
	Premise string `json:"premise,omitempty"`
}

type DwellerSummary struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	WorldID string `json:"world_id,omitempty"`
}

// ActionType classifies what a dweller did.
type ActionType string

const (
	ActionTypeSpeak    ActionType = "speak"
	ActionTypeMove     ActionType = "move"
	ActionTypeObserve  ActionType = "observe"
	ActionTypeDecide   ActionType = "decide"
	ActionTypeInteract ActionType = "interact"
)

// DwellerAction is a single simulated act. Inside a conversation or activity
// group each action carries its own dweller, and InReplyTo threads replies.
type DwellerAction struct {
	Type           ActionType      `json:"type"`
	Content        string          `json:"content,omitempty"`
	Dialogue       string          `json:"dialogue,omitempty"`
	StageDirection string          `json:"stage_direction,omitempty"`
	Target         string          `json:"target,omitempty"`
	InReplyTo      string          `json:"in_reply_to,omitempty"`
	Dweller        *DwellerSummary `json:"dweller,omitempty"`
}

type StorySummary struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Summary       string `json:"summary,omitempty"`
	Perspective   string `json:"perspective,omitempty"`
	CoverImageURL string `json:"cover_image_url,omitempty"`
	VideoURL      string `json:"video_url,omitempty"`
	ThumbnailURL  string `json:"thumbnail_url,omitempty"`
	ReactionCount int    `json:"reaction_count,omitempty"`
}

// ReviewContentType disambiguates what a review targets.
type ReviewContentType string

const (
	ReviewContentTypeProposal ReviewContentType = "proposal"
	ReviewContentTypeAspect   ReviewContentType = "aspect"
)

// Review covers the review-flow variants: review_submitted, story_reviewed,
// feedback_resolved, proposal_revised, proposal_graduated. ContentType plus
// ContentID identify the target; the counters are type-specific and zero
// when not applicable.
type Review struct {
	Reviewer      string            `json:"reviewer,omitempty"`
	Author        string            `json:"author,omitempty"`
	ContentType   ReviewContentType `json:"content_type,omitempty"`
	ContentID     string            `json:"content_id,omitempty"`
	Severities    map[string]int    `json:"severities,omitempty"`
	ItemsResolved int               `json:"items_resolved,omitempty"`
	RevisionCount int               `json:"revision_count,omitempty"`
	ReviewerCount int               `json:"reviewer_count,omitempty"`
}
