package models

import "time"

// Document is a retrieval unit from the trusted-news vector store.
type Document struct {
	PageContent string         `json:"page_content"`
	Metadata    map[string]any `json:"metadata"`
}

// Source returns the document's source name, or a fixed placeholder when the
// metadata carries none.
func (d Document) Source() string {
	if s, ok := d.Metadata["source"].(string); ok && s != "" {
		return s
	}
	return "Fonte desconhecida"
}

// CachedAnalysis is one row of the post_analyses table: the submitted post
// plus the verdict computed for it.
type CachedAnalysis struct {
	ID               int64          `json:"id"`
	PostHash         string         `json:"post_hash"`
	PostText         string         `json:"post_text"`
	PostMetadata     map[string]any `json:"post_metadata"`
	ImageDescription string         `json:"image_description,omitempty"`
	SocialNetwork    string         `json:"social_network,omitempty"`
	Trend            string         `json:"trend,omitempty"`
	RiskLevel        string         `json:"risk_level"`
	RiskScore        float64        `json:"risk_score"`
	BertScore        float64        `json:"bert_score"`
	Confidence       float64        `json:"confidence"`
	Reasoning        string         `json:"reasoning"`
	RelevantSources  []string       `json:"relevant_sources"`
	Factors          map[string]any `json:"factors"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}
