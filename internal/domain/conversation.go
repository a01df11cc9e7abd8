package domain

import (
	"fmt"
	"sort"
	"strings"
)

// Conversation groups a flat comment list into conversation-starter comments
// and their replies. Both views reference the shared comment set through
// integer IDs and a lookup table rather than holding the comments twice.
type Conversation struct {
	byID     map[int64]ReviewComment
	starters []int64
	replies  map[int64][]int64
}

// NewConversation builds a Conversation from the raw comment list. Comments
// are ordered chronologically (CreatedAt is RFC3339, which sorts
// lexicographically); replies whose parent is not a starter in the set are
// dropped.
func NewConversation(comments []ReviewComment) *Conversation {
	ordered := make([]ReviewComment, len(comments))
	copy(ordered, comments)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].CreatedAt < ordered[j].CreatedAt
	})

	c := &Conversation{
		byID:    make(map[int64]ReviewComment, len(ordered)),
		replies: make(map[int64][]int64),
	}

	for _, cm := range ordered {
		c.byID[cm.ID] = cm
		if !cm.IsReply() {
			c.starters = append(c.starters, cm.ID)
		}
	}

	for _, cm := range ordered {
		if !cm.IsReply() {
			continue
		}
		parent, ok := c.byID[cm.InReplyToID]
		if !ok || parent.IsReply() {
			continue
		}
		c.replies[parent.ID] = append(c.replies[parent.ID], cm.ID)
	}

	return c
}

// Starters returns the conversation-starting comments in chronological order.
func (c *Conversation) Starters() []ReviewComment {
	out := make([]ReviewComment, 0, len(c.starters))
	for _, id := range c.starters {
		out = append(out, c.byID[id])
	}
	return out
}

// Replies returns the replies to the given starter, oldest first.
func (c *Conversation) Replies(starterID int64) []ReviewComment {
	ids := c.replies[starterID]
	out := make([]ReviewComment, 0, len(ids))
	for _, id := range ids {
		out = append(out, c.byID[id])
	}
	return out
}

// Comment looks up a comment by ID.
func (c *Conversation) Comment(id int64) (ReviewComment, bool) {
	cm, ok := c.byID[id]
	return cm, ok
}

// Thread renders a starter and its replies as "login: body" lines. This is
// the text shown alongside the resolved range, e.g. as a diagnostic message.
func (c *Conversation) Thread(starterID int64) string {
	starter, ok := c.byID[starterID]
	if !ok {
		return ""
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s: %s", starter.User.Login, starter.Body)
	for _, id := range c.replies[starterID] {
		reply := c.byID[id]
		fmt.Fprintf(&sb, "\n%s: %s", reply.User.Login, reply.Body)
	}
	return sb.String()
}
