package memory

import (
	"fmt"
	"time"

	"github.com/lily-ai/lily/internal/emotion"
)

// ConversationSummary renders a compact digest of a user's dialogue history.
// An empty history yields a fixed empty-history summary, never an error.
func ConversationSummary(stats ConversationStats) string {
	if stats.TurnCount == 0 {
		return "This is our first conversation; there is no prior history with this user."
	}
	return fmt.Sprintf(
		"We have exchanged %d messages so far (%d from the user, %d from me). The last one was %s.",
		stats.TurnCount,
		stats.UserTurns,
		stats.AssistantTurns,
		humanizeSince(stats.LastAt),
	)
}

// EmotionalSummary renders a digest of the user's recent emotional timeline:
// the dominant emotion, average intensity, and whether intensity is rising.
func EmotionalSummary(records []EmotionRecord) string {
	if len(records) == 0 {
		return "I have no emotional history with this user yet."
	}

	counts := make(map[emotion.Emotion]int)
	var sum float64
	for _, r := range records {
		counts[r.Emotion]++
		sum += r.Intensity
	}

	dominant := records[len(records)-1].Emotion
	best := 0
	for _, e := range []emotion.Emotion{
		emotion.Neutral, emotion.Happy, emotion.Excited,
		emotion.Worried, emotion.Sad, emotion.Curious,
	} {
		if counts[e] > best {
			dominant = e
			best = counts[e]
		}
	}

	trend := "steady"
	if n := len(records); n >= 2 {
		switch {
		case records[n-1].Intensity > records[0].Intensity+0.1:
			trend = "rising"
		case records[n-1].Intensity < records[0].Intensity-0.1:
			trend = "falling"
		}
	}

	return fmt.Sprintf(
		"Over the last %d interactions my dominant emotion has been %s (average intensity %.2f, %s).",
		len(records), dominant, sum/float64(len(records)), trend,
	)
}

func humanizeSince(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "moments ago"
	case d < time.Hour:
		return fmt.Sprintf("%d minutes ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%d hours ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%d days ago", int(d.Hours()/24))
	}
}
