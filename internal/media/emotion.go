package media

import "strings"

// EmotionAll disables emotion filtering on list queries.
const EmotionAll = "all"

var emotions = map[string]struct{}{
	"happy":   {},
	"sleepy":  {},
	"playful": {},
	"kicking": {},
	"calm":    {},
}

func NormalizeEmotion(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

func ValidEmotion(tag string) bool {
	_, ok := emotions[tag]
	return ok
}
