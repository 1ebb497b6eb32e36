package events

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/confluentinc/confluent-kafka-go/kafka"

	"github.com/sentinela-labs/sentinela/internal/cache"
	"github.com/sentinela-labs/sentinela/internal/models"
)

const (
	analysisTopic   = "post-analyses"
	produceAttempts = 3
)

// AnalysisEvent is the message published for every freshly computed verdict.
type AnalysisEvent struct {
	PostHash      string  `json:"post_hash"`
	SocialNetwork string  `json:"social_network,omitempty"`
	Trend         string  `json:"trend,omitempty"`
	RiskLevel     string  `json:"risk_level"`
	RiskScore     float64 `json:"risk_score"`
	BertScore     float64 `json:"bert_score"`
	Confidence    float64 `json:"confidence"`
	AnalyzedAt    string  `json:"analyzed_at"`
}

// Publisher emits completed analyses to Kafka so downstream consumers
// (dashboards, moderation queues) can react. Publication is fire-and-forget:
// a broker outage never affects the request that produced the verdict.
type Publisher struct {
	producer *kafka.Producer
}

func NewPublisher(broker string) (*Publisher, error) {
	slog.Info("[EventsPublisher] Initializing Kafka producer...",
		slog.String("broker", broker))

	p, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers": broker,
		"acks":              "all",
	})
	if err != nil {
		return nil, err
	}

	slog.Info("[EventsPublisher] Kafka producer initialized")
	return &Publisher{producer: p}, nil
}

// PublishAnalysis serializes the verdict and produces it keyed by the post
// fingerprint. Failures are logged and dropped.
func (p *Publisher) PublishAnalysis(post models.PostInput, out models.PostAnalysisOutput) {
	event := AnalysisEvent{
		PostHash:      cache.Fingerprint(post),
		SocialNetwork: post.SocialNetwork,
		Trend:         post.Trend,
		RiskLevel:     out.RiskLevel,
		RiskScore:     out.RiskScore,
		BertScore:     out.BertScore,
		Confidence:    out.Confidence,
		AnalyzedAt:    time.Now().UTC().Format(time.RFC3339),
	}

	jsonData, err := json.Marshal(event)
	if err != nil {
		slog.Warn("[EventsPublisher] Failed to marshal event",
			slog.String("error", err.Error()))
		return
	}

	topic := analysisTopic
	msg := &kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &topic, Partition: kafka.PartitionAny},
		Key:            []byte(event.PostHash),
		Value:          jsonData,
	}

	for i := 0; i < produceAttempts; i++ {
		err = p.producer.Produce(msg, nil)
		if err == nil {
			slog.Debug("[EventsPublisher] Analysis event published",
				slog.String("hash", event.PostHash[:8]),
				slog.String("risk_level", event.RiskLevel))
			return
		}
		slog.Warn("[EventsPublisher] Failed to produce event, retrying...",
			slog.Int("attempt", i+1))
	}

	slog.Warn("[EventsPublisher] Dropping analysis event",
		slog.String("error", err.Error()))
}

func (p *Publisher) Close() {
	slog.Info("[EventsPublisher] Flushing Kafka producer before shutdown...")
	if remaining := p.producer.Flush(5000); remaining > 0 {
		slog.Warn("[EventsPublisher] Not all events were delivered before shutdown",
			slog.Int("remaining", remaining))
	}
	p.producer.Close()
}
