// internal/sink/sns.go
package sink

import (
	"context"
	"encoding/json"
	"fmt"

	"checklist-engine/internal/common/aws"
	"checklist-engine/internal/models"
)

// SNSSink publishes incidents as JSON messages to an SNS topic for downstream
// fanout.
type SNSSink struct {
	client   *aws.SNSClient
	topicARN string
}

func NewSNSSink(client *aws.SNSClient, topicARN string) *SNSSink {
	return &SNSSink{client: client, topicARN: topicARN}
}

func (s *SNSSink) Name() string { return "sns" }

func (s *SNSSink) Publish(ctx context.Context, incident *models.Incident) error {
	body, err := json.Marshal(incident)
	if err != nil {
		return fmt.Errorf("marshal incident: %w", err)
	}
	if err := s.client.PublishMessage(ctx, s.topicARN, string(body)); err != nil {
		return fmt.Errorf("publish incident: %w", err)
	}
	return nil
}
