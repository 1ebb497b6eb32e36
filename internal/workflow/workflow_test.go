package workflow

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sentinela-labs/sentinela/internal/models"
)

type fakeClassifier struct {
	score float64
	calls int
}

func (f *fakeClassifier) Classify(_ context.Context, _ string) float64 {
	f.calls++
	return f.score
}

type fakeAgent struct {
	out   models.PostAnalysisOutput
	calls int
}

func (f *fakeAgent) Analyze(_ context.Context, in models.PostAnalysisInput) models.PostAnalysisOutput {
	f.calls++
	out := f.out
	out.BertScore = in.BertScore
	return out
}

type fakeStore struct {
	entries map[string]models.PostAnalysisOutput
	saveOK  bool
	saves   int
}

func newFakeStore() *fakeStore {
	return &fakeStore{entries: map[string]models.PostAnalysisOutput{}, saveOK: true}
}

func (f *fakeStore) key(post models.PostInput) string {
	return post.Text + "|" + post.SocialNetwork + "|" + post.Trend
}

func (f *fakeStore) GetAnalysis(_ context.Context, post models.PostInput) (*models.PostAnalysisOutput, bool) {
	out, ok := f.entries[f.key(post)]
	if !ok {
		return nil, false
	}
	return &out, true
}

func (f *fakeStore) SaveAnalysis(_ context.Context, post models.PostInput, out models.PostAnalysisOutput) bool {
	f.saves++
	if !f.saveOK {
		return false
	}
	f.entries[f.key(post)] = out
	return true
}

type fakePublisher struct {
	published int
}

func (f *fakePublisher) PublishAnalysis(_ models.PostInput, _ models.PostAnalysisOutput) {
	f.published++
}

func verdict() models.PostAnalysisOutput {
	return models.PostAnalysisOutput{
		RiskLevel:       models.RiskAlto,
		RiskScore:       0.63,
		Confidence:      0.9,
		Reasoning:       "Contradiz fontes confiáveis.",
		RelevantSources: []string{"G1"},
		Factors:         map[string]any{"bert_score": 0.7},
	}
}

func post() models.PostInput {
	return models.PostInput{
		Text:          "Breaking: cientistas descobrem...",
		SocialNetwork: "Facebook",
	}
}

func TestProcessPostFullPipeline(t *testing.T) {
	cls := &fakeClassifier{score: 0.7}
	agt := &fakeAgent{out: verdict()}
	store := newFakeStore()
	pub := &fakePublisher{}

	resp := New(cls, agt, store, pub).ProcessPost(context.Background(), post())

	require.NotNil(t, resp.FromCache)
	assert.False(t, *resp.FromCache)
	assert.False(t, resp.Error)
	assert.Equal(t, models.RiskAlto, resp.RiskLevel)
	assert.Equal(t, 0.7, resp.BertScore)
	assert.NotEmpty(t, resp.Reasoning)
	assert.Equal(t, 1, store.saves)
	assert.Equal(t, 1, pub.published)
}

func TestProcessPostSecondRequestHitsCache(t *testing.T) {
	cls := &fakeClassifier{score: 0.7}
	agt := &fakeAgent{out: verdict()}
	store := newFakeStore()

	wf := New(cls, agt, store, nil)

	first := wf.ProcessPost(context.Background(), post())
	second := wf.ProcessPost(context.Background(), post())

	require.NotNil(t, second.FromCache)
	assert.True(t, *second.FromCache)
	assert.Equal(t, first.RiskLevel, second.RiskLevel)
	assert.Equal(t, first.RiskScore, second.RiskScore)
	assert.Equal(t, first.BertScore, second.BertScore)
	assert.Equal(t, first.Confidence, second.Confidence)

	// classifier and agent must not run again on a hit
	assert.Equal(t, 1, cls.calls)
	assert.Equal(t, 1, agt.calls)
}

func TestProcessPostEmptyTextIsError(t *testing.T) {
	resp := New(&fakeClassifier{}, &fakeAgent{}, nil, nil).
		ProcessPost(context.Background(), models.PostInput{Text: "   "})

	assert.True(t, resp.Error)
	assert.NotEmpty(t, resp.ErrorMessage)
	assert.Equal(t, models.RiskMedio, resp.RiskLevel)
	assert.Equal(t, 0.5, resp.RiskScore)
	assert.Equal(t, 0.0, resp.Confidence)
	assert.Nil(t, resp.FromCache)
}

func TestProcessPostSaveFailureDoesNotFailRequest(t *testing.T) {
	store := newFakeStore()
	store.saveOK = false

	resp := New(&fakeClassifier{score: 0.3}, &fakeAgent{out: verdict()}, store, nil).
		ProcessPost(context.Background(), post())

	assert.False(t, resp.Error)
	require.NotNil(t, resp.FromCache)
	assert.False(t, *resp.FromCache)
	assert.Equal(t, 1, store.saves)
}

func TestProcessPostWithoutStore(t *testing.T) {
	resp := New(&fakeClassifier{score: 0.5}, &fakeAgent{out: verdict()}, nil, nil).
		ProcessPost(context.Background(), post())

	assert.False(t, resp.Error)
	require.NotNil(t, resp.FromCache)
	assert.False(t, *resp.FromCache)
}

func TestProcessPostRoundsScores(t *testing.T) {
	out := verdict()
	out.RiskScore = 0.719991
	out.Confidence = 0.123456

	resp := New(&fakeClassifier{score: 0.799999}, &fakeAgent{out: out}, nil, nil).
		ProcessPost(context.Background(), post())

	assert.Equal(t, 0.72, resp.RiskScore)
	assert.Equal(t, 0.8, resp.BertScore)
	assert.Equal(t, 0.123, resp.Confidence)
}

type panickingAgent struct{}

func (panickingAgent) Analyze(_ context.Context, _ models.PostAnalysisInput) models.PostAnalysisOutput {
	panic("boom")
}

func TestProcessPostRecoversFromPanic(t *testing.T) {
	resp := New(&fakeClassifier{score: 0.5}, panickingAgent{}, nil, nil).
		ProcessPost(context.Background(), post())

	assert.True(t, resp.Error)
	assert.Contains(t, resp.ErrorMessage, "boom")
	assert.Equal(t, models.RiskMedio, resp.RiskLevel)
}
