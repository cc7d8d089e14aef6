package model

import "strings"

type Emotion string

const (
	EmotionNeutral = Emotion("neutral")
	EmotionHappy   = Emotion("happy")
	EmotionAngry   = Emotion("angry")
	EmotionSad     = Emotion("sad")
	EmotionCurious = Emotion("curious")
	EmotionAnxious = Emotion("anxious")
)

var AllEmotions = []Emotion{
	EmotionNeutral, EmotionHappy, EmotionAngry, EmotionSad, EmotionCurious, EmotionAnxious,
}

// ParseEmotion maps free text to an emotion, falling back to neutral.
func ParseEmotion(s string) Emotion {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.Trim(s, ".!\"'`")
	for _, emotion := range AllEmotions {
		if string(emotion) == s {
			return emotion
		}
	}
	return EmotionNeutral
}
