package models

// Risk levels a post can be classified into, from least to most severe.
const (
	RiskBaixo   = "BAIXO"
	RiskMedio   = "MEDIO"
	RiskAlto    = "ALTO"
	RiskCritico = "CRITICO"
)

// ValidRiskLevel reports whether level is one of the four known risk levels.
func ValidRiskLevel(level string) bool {
	switch level {
	case RiskBaixo, RiskMedio, RiskAlto, RiskCritico:
		return true
	}
	return false
}

// PostInput is a raw user-submitted post. Empty strings mean the optional
// fields were not provided.
type PostInput struct {
	Text             string         `json:"text"`
	Metadata         map[string]any `json:"metadata"`
	ImageDescription string         `json:"image_description,omitempty"`
	SocialNetwork    string         `json:"social_network,omitempty"`
	Trend            string         `json:"trend,omitempty"`
}

// PostAnalysisInput is the post plus the local classifier score. It is an
// intermediate value and never persisted.
type PostAnalysisInput struct {
	PostInput
	BertScore float64 `json:"bert_score"`
}

// PostAnalysisOutput is the structured verdict for a post.
type PostAnalysisOutput struct {
	RiskLevel       string         `json:"risk_level"`
	RiskScore       float64        `json:"risk_score"`
	BertScore       float64        `json:"bert_score"`
	Confidence      float64        `json:"confidence"`
	Reasoning       string         `json:"reasoning"`
	RelevantSources []string       `json:"relevant_sources"`
	Factors         map[string]any `json:"factors"`
}

// AnalysisResponse is what the workflow hands back to the HTTP layer.
// FromCache is absent on the error path.
type AnalysisResponse struct {
	PostAnalysisOutput
	FromCache    *bool  `json:"from_cache,omitempty"`
	Error        bool   `json:"error,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`
}
