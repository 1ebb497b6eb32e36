package classifier

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/knights-analytics/hugot"
	"github.com/knights-analytics/hugot/pipelines"

	"github.com/sentinela-labs/sentinela/internal/textutil"
)

// NeutralScore is returned whenever inference fails. The workflow keeps
// going on a neutral signal instead of surfacing classifier errors.
const NeutralScore = 0.5

// Input budget of BERT-family models; text is truncated before tokenization.
const maxInputRunes = 1500

// Classifier scores raw post text with a local ONNX sequence-classification
// model. Higher scores mean more likely fake.
type Classifier struct {
	pipeline *pipelines.TextClassificationPipeline
	model    string
}

// New downloads the classification model when missing and builds the
// pipeline on the shared hugot session.
func New(session *hugot.Session, modelName, modelDir string) (*Classifier, error) {
	modelPath, err := hugot.DownloadModel(modelName, modelDir, hugot.NewDownloadOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to fetch classifier model %s: %w", modelName, err)
	}

	config := hugot.TextClassificationConfig{
		ModelPath: modelPath,
		Name:      "fakeNewsClassificationPipeline",
	}
	pipeline, err := hugot.NewPipeline(session, config)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize classification pipeline: %w", err)
	}

	slog.Info("[Classifier] Classification pipeline ready",
		slog.String("model", modelName),
		slog.String("path", modelPath))

	return &Classifier{pipeline: pipeline, model: modelName}, nil
}

// Classify returns a fake-news score in [0,1], rounded to 3 decimals.
// Any inference failure degrades to NeutralScore.
func (c *Classifier) Classify(_ context.Context, text string) float64 {
	input := textutil.Truncate(textutil.Normalize(text), maxInputRunes)
	if input == "" {
		return NeutralScore
	}

	output, err := c.pipeline.RunPipeline([]string{input})
	if err != nil {
		slog.Warn("[Classifier] Inference failed, using neutral score",
			slog.String("error", err.Error()))
		return NeutralScore
	}

	if len(output.ClassificationOutputs) == 0 || len(output.ClassificationOutputs[0]) == 0 {
		slog.Warn("[Classifier] Empty pipeline output, using neutral score")
		return NeutralScore
	}

	score := ScoreFromLabels(output.ClassificationOutputs[0])
	slog.Debug("[Classifier] Scored post",
		slog.Float64("bert_score", score))
	return score
}

// ScoreFromLabels maps per-class scores to the probability of the "fake"
// class. Models label that class FAKE or LABEL_1 depending on how they were
// exported; when only the genuine class is present its score is inverted.
func ScoreFromLabels(outputs []pipelines.ClassificationOutput) float64 {
	for _, out := range outputs {
		switch strings.ToUpper(out.Label) {
		case "FAKE", "LABEL_1":
			return Round3(float64(out.Score))
		}
	}

	for _, out := range outputs {
		switch strings.ToUpper(out.Label) {
		case "REAL", "TRUE", "LABEL_0":
			return Round3(1 - float64(out.Score))
		}
	}

	return NeutralScore
}

// Round3 rounds to 3 decimal places, the precision verdicts are reported in.
func Round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
