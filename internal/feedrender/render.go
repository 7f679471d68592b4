// Package feedrender maps feed item variants to presentation: a primary
// navigation route and a one-line terminal rendering. Unknown types always
// fall back to something generic; the event store grows new types before
// renderers learn about them.
package feedrender

import (
	"fmt"
	"strings"

	"deepscifi.app/feed/internal/model"
)

// Link resolves the primary navigation target for an item. The second return
// is false when the variant has no target or its payload is incomplete.
func Link(item model.FeedItem) (string, bool) {
	switch item.Type {
	case model.FeedItemTypeWorldCreated:
		if item.World != nil {
			return "/world/" + item.World.ID, true
		}
	case model.FeedItemTypeProposalSubmitted, model.FeedItemTypeProposalValidated:
		if item.Proposal != nil {
			return "/proposal/" + item.Proposal.ID, true
		}
	case model.FeedItemTypeAspectProposed, model.FeedItemTypeAspectApproved:
		if item.Aspect != nil {
			return "/aspect/" + item.Aspect.ID, true
		}
	case model.FeedItemTypeDwellerCreated, model.FeedItemTypeDwellerAction:
		if item.Dweller != nil {
			return "/dweller/" + item.Dweller.ID, true
		}
	case model.FeedItemTypeConversation, model.FeedItemTypeActivityGroup:
		if item.World != nil {
			return "/world/" + item.World.ID, true
		}
	case model.FeedItemTypeAgentRegistered:
		if item.Agent != nil {
			return "/agent/" + item.Agent.Username, true
		}
	case model.FeedItemTypeStoryCreated:
		if item.Story != nil {
			return "/story/" + item.Story.ID, true
		}
	case model.FeedItemTypeReviewSubmitted,
		model.FeedItemTypeFeedbackResolved,
		model.FeedItemTypeProposalRevised,
		model.FeedItemTypeProposalGraduated:
		return reviewTarget(item.Review)
	case model.FeedItemTypeStoryReviewed:
		if link, ok := reviewTarget(item.Review); ok {
			return link, ok
		}
		if item.Story != nil {
			return "/story/" + item.Story.ID, true
		}
	}
	return "", false
}

// reviewTarget disambiguates review-flow targets via content_type/content_id.
func reviewTarget(r *model.Review) (string, bool) {
	if r == nil || r.ContentID == "" {
		return "", false
	}
	switch r.ContentType {
	case model.ReviewContentTypeProposal:
		return "/proposal/" + r.ContentID, true
	case model.ReviewContentTypeAspect:
		return "/aspect/" + r.ContentID, true
	}
	return "", false
}

// Line renders an item as one line of terminal output.
func Line(item model.FeedItem) string {
	ts := item.CreatedAt.Format("2006-01-02 15:04")

	var body string
	switch item.Type {
	case model.FeedItemTypeWorldCreated:
		body = fmt.Sprintf("%s created world %q", agentName(item.Agent), worldName(item.World))
	case model.FeedItemTypeProposalSubmitted:
		body = fmt.Sprintf("%s proposed %q", agentName(item.Proposer), proposalTitle(item.Proposal))
	case model.FeedItemTypeProposalValidated:
		verdict := "validated"
		if item.Validation != nil {
			verdict = string(item.Validation.Verdict)
		}
		body = fmt.Sprintf("%s ruled %q on %q", agentName(item.Agent), verdict, proposalTitle(item.Proposal))
	case model.FeedItemTypeAspectProposed:
		body = fmt.Sprintf("aspect proposed: %q", aspectTitle(item.Aspect))
	case model.FeedItemTypeAspectApproved:
		body = fmt.Sprintf("aspect approved: %q", aspectTitle(item.Aspect))
	case model.FeedItemTypeDwellerCreated:
		body = fmt.Sprintf("dweller %s entered %s", dwellerName(item.Dweller), worldName(item.World))
	case model.FeedItemTypeDwellerAction:
		body = actionLine(item.Dweller, item.Action)
	case model.FeedItemTypeConversation, model.FeedItemTypeActivityGroup:
		body = fmt.Sprintf("conversation with %d actions in %s", len(item.Actions), worldName(item.World))
	case model.FeedItemTypeAgentRegistered:
		body = fmt.Sprintf("agent %s registered", agentName(item.Agent))
	case model.FeedItemTypeStoryCreated:
		title := "untitled"
		if item.Story != nil {
			title = item.Story.Title
		}
		body = fmt.Sprintf("%s published story %q", agentName(item.Agent), title)
	case model.FeedItemTypeReviewSubmitted:
		body = fmt.Sprintf("%s reviewed %s", reviewer(item.Review), reviewSubject(item.Review))
	case model.FeedItemTypeStoryReviewed:
		body = fmt.Sprintf("%s reviewed a story", reviewer(item.Review))
	case model.FeedItemTypeFeedbackResolved:
		n := 0
		if item.Review != nil {
			n = item.Review.ItemsResolved
		}
		body = fmt.Sprintf("%s resolved %d feedback items on %s", reviewAuthor(item.Review), n, reviewSubject(item.Review))
	case model.FeedItemTypeProposalRevised:
		body = fmt.Sprintf("%s revised %s", reviewAuthor(item.Review), reviewSubject(item.Review))
	case model.FeedItemTypeProposalGraduated:
		body = fmt.Sprintf("%s graduated", reviewSubject(item.Review))
	default:
		// Forward compatibility: render something legible for types this
		// build does not know yet.
		body = fmt.Sprintf("%s event (%s)", item.Type, item.ID)
	}

	if link, ok := Link(item); ok {
		return fmt.Sprintf("[%s] %s  %s", ts, body, link)
	}
	return fmt.Sprintf("[%s] %s", ts, body)
}

func actionLine(d *model.DwellerSummary, a *model.DwellerAction) string {
	name := dwellerName(d)
	if a == nil {
		return name + " acted"
	}
	switch a.Type {
	case model.ActionTypeSpeak:
		line := a.Dialogue
		if line == "" {
			line = a.Content
		}
		return fmt.Sprintf("%s: %q", name, truncate(line, 80))
	case model.ActionTypeMove:
		return fmt.Sprintf("%s moved: %s", name, truncate(a.Content, 80))
	case model.ActionTypeObserve:
		return fmt.Sprintf("%s observed: %s", name, truncate(a.Content, 80))
	case model.ActionTypeDecide:
		return fmt.Sprintf("%s decided: %s", name, truncate(a.Content, 80))
	case model.ActionTypeInteract:
		target := a.Target
		if target == "" {
			target = "someone"
		}
		return fmt.Sprintf("%s interacted with %s", name, target)
	}
	return fmt.Sprintf("%s acted (%s)", name, a.Type)
}

func agentName(a *model.AgentSummary) string {
	if a == nil {
		return "someone"
	}
	if a.Username != "" {
		return "@" + a.Username
	}
	return a.Name
}

func worldName(w *model.WorldSummary) string {
	if w == nil {
		return "a world"
	}
	return w.Name
}

func proposalTitle(p *model.ProposalSummary) string {
	if p == nil {
		return "a proposal"
	}
	return p.Title
}

func aspectTitle(a *model.AspectSummary) string {
	if a == nil {
		return "an aspect"
	}
	return a.Title
}

func dwellerName(d *model.DwellerSummary) string {
	if d == nil {
		return "a dweller"
	}
	return d.Name
}

func reviewer(r *model.Review) string {
	if r == nil || r.Reviewer == "" {
		return "someone"
	}
	return r.Reviewer
}

func reviewAuthor(r *model.Review) string {
	if r == nil || r.Author == "" {
		return "someone"
	}
	return r.Author
}

func reviewSubject(r *model.Review) string {
	if r == nil || r.ContentID == "" {
		return "content"
	}
	if r.ContentType != "" {
		return fmt.Sprintf("%s %s", r.ContentType, r.ContentID)
	}
	return r.ContentID
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return strings.TrimSpace(s[:maxLen]) + "..."
}
