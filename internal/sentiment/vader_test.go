package sentiment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnalyzeLabels(t *testing.T) {
	score, label := Analyze("This is wonderful, amazing and great news!")
	assert.Greater(t, score, 0.20)
	assert.Equal(t, "positive", label)

	score, label = Analyze("This is horrible, disgusting, terrible lies!")
	assert.Less(t, score, -0.20)
	assert.Equal(t, "negative", label)

	_, label = Analyze("the meeting is at three")
	assert.Equal(t, "neutral", label)
}

func TestAnalyzeStripsMarkdown(t *testing.T) {
	// markdown noise must not change the neutral reading of plain content
	_, label := Analyze("[schedule](https://example.com) for **today**")
	assert.Equal(t, "neutral", label)
}
