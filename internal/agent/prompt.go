package agent

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sentinela-labs/sentinela/internal/models"
)

const systemPrompt = `Você é um especialista em detecção de fake news. Sua tarefa é analisar posts e determinar o nível de risco de serem fake news.

Você receberá:
1. O texto do post
2. Metadados (curtidas, upvotes, etc.)
3. Descrição da imagem (se houver)
4. Score do BERT (0-1, onde 1 = mais provável de ser fake news)
5. Contexto de notícias de fontes confiáveis para comparação

Considere os seguintes fatores:
- Score do BERT (quanto maior, mais risco)
- Comparação com notícias confiáveis similares
- Metadados (posts com muitas curtidas podem ser mais perigosos se forem fake)
- Consistência entre texto e descrição da imagem
- Qualidade e credibilidade das fontes encontradas

Classifique o risco em:
- BAIXO: Post parece confiável, score BERT baixo, fontes confiáveis confirmam
- MEDIO: Algumas inconsistências, score BERT moderado
- ALTO: Muitas inconsistências, score BERT alto, contradiz fontes confiáveis
- CRITICO: Muito provável fake news, score BERT muito alto, contradições claras

Sempre forneça uma justificativa clara e detalhada.`

// BuildPrompt assembles the analysis prompt for the LLM: post text,
// classifier score, retrieved context and the optional post attributes.
// Metadata keys are sorted so the prompt is deterministic.
func BuildPrompt(in models.PostAnalysisInput, context string, sentimentScore float64, sentimentLabel string) string {
	var b strings.Builder

	b.WriteString("Analise o seguinte post para detectar fake news:\n")
	fmt.Fprintf(&b, "\nTEXTO DO POST:\n%s\n", in.Text)
	fmt.Fprintf(&b, "\nSCORE BERT: %.3f (0=confiável, 1=fake news)\n", in.BertScore)
	fmt.Fprintf(&b, "\nSENTIMENTO (VADER): %.3f (%s)\n", sentimentScore, sentimentLabel)

	if context != "" {
		fmt.Fprintf(&b, "\nCONTEXTO DE NOTÍCIAS CONFIÁVEIS SIMILARES:\n%s\n", context)
	}

	if in.ImageDescription != "" {
		fmt.Fprintf(&b, "\nDESCRIÇÃO DA IMAGEM:\n%s\n", in.ImageDescription)
	}

	if len(in.Metadata) > 0 {
		b.WriteString("\nMETADADOS:\n")
		keys := make([]string, 0, len(in.Metadata))
		for key := range in.Metadata {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			fmt.Fprintf(&b, "  - %s: %v\n", key, in.Metadata[key])
		}
	}

	if in.SocialNetwork != "" {
		fmt.Fprintf(&b, "\nREDE SOCIAL: %s\n", in.SocialNetwork)
	}

	b.WriteString("\n\nForneça sua análise estruturada considerando: " +
		"- O score do BERT (quanto maior, mais risco) " +
		"- A comparação com as notícias confiáveis fornecidas " +
		"- Os metadados do post " +
		"- A consistência entre texto e imagem " +
		"- O nível de risco deve ser: BAIXO, MEDIO, ALTO ou CRITICO")

	return b.String()
}
