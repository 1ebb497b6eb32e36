package sentiment

import (
	"github.com/jonreiter/govader"

	"github.com/sentinela-labs/sentinela/internal/textutil"
)

var analyzer = govader.NewSentimentIntensityAnalyzer()

// Analyze scores the emotional charge of a post with VADER. The compound
// score lands in [-1, 1]; strongly charged language is a weak fake-news
// signal the agent feeds into its prompt alongside the classifier score.
func Analyze(text string) (float64, string) {
	plain := textutil.Normalize(text)

	scores := analyzer.PolarityScores(plain)
	compound := scores.Compound

	var label string
	if compound >= 0.20 {
		label = "positive"
	} else if compound <= -0.20 {
		label = "negative"
	} else {
		label = "neutral"
	}

	return compound, label
}
