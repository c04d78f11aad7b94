package enums

import (
	"fmt"
	"strings"
)

// ReactionType is the kind of reaction a user leaves on a review.
type ReactionType string

const (
	ReactionHelpful   ReactionType = "helpful"
	ReactionLike      ReactionType = "like"
	ReactionLove      ReactionType = "love"
	ReactionHaha      ReactionType = "haha"
	ReactionWow       ReactionType = "wow"
	ReactionSad       ReactionType = "sad"
	ReactionAngry     ReactionType = "angry"
	ReactionUnhelpful ReactionType = "unhelpful"
)

var validReactionTypes = []ReactionType{
	ReactionHelpful,
	ReactionLike,
	ReactionLove,
	ReactionHaha,
	ReactionWow,
	ReactionSad,
	ReactionAngry,
	ReactionUnhelpful,
}

func (r ReactionType) String() string {
	return string(r)
}

func (r ReactionType) IsValid() bool {
	for _, candidate := range validReactionTypes {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseReactionType trims and lowercases before matching.
func ParseReactionType(value string) (ReactionType, error) {
	normalized := ReactionType(strings.ToLower(strings.TrimSpace(value)))
	if normalized.IsValid() {
		return normalized, nil
	}
	return "", fmt.Errorf("invalid reaction type %q", value)
}
