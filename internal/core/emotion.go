package core

import "edusense-backend/internal/store"

// EmotionSummary is the all-time frequency count and normalized distribution
// of a user's logged emotions.
type EmotionSummary struct {
	Frequency    map[string]int     `json:"frequency"`
	Distribution map[string]float64 `json:"distribution"`
	Total        int                `json:"total"`
}

// SummarizeEmotions counts emotion labels across the given logs. An entry
// with an empty emotion counts as "neutral". Total is clamped to 1 so the
// distribution never divides by zero; with no logs at all the result is
// empty maps and a total of 1.
func SummarizeEmotions(logs []store.EmotionLog) EmotionSummary {
	frequency := map[string]int{}
	for _, entry := range logs {
		emotion := entry.Emotion
		if emotion == "" {
			emotion = "neutral"
		}
		frequency[emotion]++
	}

	total := 0
	for _, count := range frequency {
		total += count
	}
	if total == 0 {
		total = 1
	}

	distribution := make(map[string]float64, len(frequency))
	for emotion, count := range frequency {
		distribution[emotion] = float64(count) / float64(total)
	}

	return EmotionSummary{
		Frequency:    frequency,
		Distribution: distribution,
		Total:        total,
	}
}
