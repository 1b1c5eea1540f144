package services

import (
	"context"
	"fmt"
	"os"
	"strings"

	"google.golang.org/genai"
)

// Explainer produces an optional narrative for a set of ranked
// suggestions. It is advisory only: callers must treat any error as "no
// explanation" and never let it fail the suggestion itself.
type Explainer interface {
	Explain(ctx context.Context, sig TopicSignature, ranked []ScoreBreakdown) (string, error)
}

// GeminiExplainer asks the Gemini API to narrate why the top candidates
// fit the topic.
type GeminiExplainer struct {
	client *genai.Client
	model  string
}

// NewGeminiExplainer builds the client from GEMINI_API_KEY/GEMINI_MODEL.
func NewGeminiExplainer(ctx context.Context) (*GeminiExplainer, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is not set")
	}

	model := os.Getenv("GEMINI_MODEL")
	if model == "" {
		model = "gemini-2.0-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiExplainer{client: client, model: model}, nil
}

func (e *GeminiExplainer) Explain(ctx context.Context, sig TopicSignature, ranked []ScoreBreakdown) (string, error) {
	result, err := e.client.Models.GenerateContent(ctx, e.model, genai.Text(buildExplainPrompt(sig, ranked)), nil)
	if err != nil {
		return "", fmt.Errorf("gemini explain failed: %w", err)
	}

	text := strings.TrimSpace(result.Text())
	if text == "" {
		return "", fmt.Errorf("gemini returned empty explanation")
	}
	return text, nil
}

func buildExplainPrompt(sig TopicSignature, ranked []ScoreBreakdown) string {
	var b strings.Builder
	b.WriteString("You are assisting a capstone coordinator. Explain briefly, in plain language, ")
	b.WriteString("why the following reviewers were suggested for this topic. ")
	b.WriteString("Mention matched skills and workload where relevant. Do not invent facts.\n\n")
	fmt.Fprintf(&b, "Topic: %s\n", sig.Title)
	if sig.Category != "" {
		fmt.Fprintf(&b, "Category: %s\n", sig.Category)
	}
	if sig.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n", sig.Description)
	}

	b.WriteString("\nRanked suggestions:\n")
	for i, s := range ranked {
		fmt.Fprintf(&b, "%d. %s: overall %.2f, skill match %.2f (matched: %s), performance %.2f, active assignments %d\n",
			i+1, s.Candidate.FullName, s.OverallScore, s.SkillMatch.Overall,
			strings.Join(s.SkillMatch.MatchedSkills, ", "), s.Performance.Score,
			s.Candidate.ActiveAssignments)
	}
	return b.String()
}
