package interfaces

import (
	"context"
	"errors"
	"log"

	"github.com/romanandriymitsoda-coder/zev-leg-settlement-mvp/internal/settlement/application"
)

// LoggingPublisher logs settled scenarios.
type LoggingPublisher struct {
	logger *log.Logger
}

// NewLoggingPublisher constructs a logging publisher.
func NewLoggingPublisher(logger *log.Logger) *LoggingPublisher {
	if logger == nil {
		logger = log.Default()
	}
	return &LoggingPublisher{logger: logger}
}

// PublishScenarioSettled logs the event, one line per rule.
func (p *LoggingPublisher) PublishScenarioSettled(_ context.Context, event application.ScenarioSettled) error {
	if p == nil {
		return errors.New("scenario publisher: nil publisher")
	}
	p.logger.Printf("scenario settled: scenario=%s mode=%s community_bill=%.2f", event.Scenario, event.Mode, event.CommunityBill)
	for _, point := range event.Points {
		p.logger.Printf("fairness: label=%s loser_share=%.3f max_increase=%.2f", point.Label, point.LoserShare, point.MaxIncrease)
	}
	return nil
}
