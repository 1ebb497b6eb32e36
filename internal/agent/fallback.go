package agent

import "github.com/sentinela-labs/sentinela/internal/models"

const fallbackReasoning = "Análise automática baseada no score BERT devido a erro no processamento."

// Fallback is the deterministic score-only classification used whenever the
// retrieval/LLM path fails. Thresholds are inclusive at the lower bound:
// 0.8 is CRITICO, 0.6 is ALTO, 0.4 is MEDIO.
func Fallback(in models.PostAnalysisInput) models.PostAnalysisOutput {
	var riskLevel string
	var riskScore float64

	switch {
	case in.BertScore >= 0.8:
		riskLevel = models.RiskCritico
		riskScore = in.BertScore
	case in.BertScore >= 0.6:
		riskLevel = models.RiskAlto
		riskScore = in.BertScore * 0.9
	case in.BertScore >= 0.4:
		riskLevel = models.RiskMedio
		riskScore = in.BertScore * 0.7
	default:
		riskLevel = models.RiskBaixo
		riskScore = in.BertScore * 0.5
	}

	return models.PostAnalysisOutput{
		RiskLevel:       riskLevel,
		RiskScore:       riskScore,
		BertScore:       in.BertScore,
		Confidence:      0.6,
		Reasoning:       fallbackReasoning,
		RelevantSources: []string{},
		Factors: map[string]any{
			"bert_score":     in.BertScore,
			"has_image":      in.ImageDescription != "",
			"metadata_count": len(in.Metadata),
		},
	}
}
