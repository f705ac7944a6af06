// internal/sink/elasticsearch.go
package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"checklist-engine/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
)

// ElasticsearchSink indexes incidents into a reporting index, keyed by
// incident id so redelivery overwrites instead of duplicating.
type ElasticsearchSink struct {
	client *elasticsearch.Client
	index  string
}

func NewElasticsearchSink(client *elasticsearch.Client, index string) *ElasticsearchSink {
	return &ElasticsearchSink{client: client, index: index}
}

func (s *ElasticsearchSink) Name() string { return "elasticsearch" }

func (s *ElasticsearchSink) Publish(ctx context.Context, incident *models.Incident) error {
	body, err := json.Marshal(incident)
	if err != nil {
		return fmt.Errorf("marshal incident: %w", err)
	}

	res, err := s.client.Index(
		s.index,
		bytes.NewReader(body),
		s.client.Index.WithDocumentID(incident.ID),
		s.client.Index.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("index incident: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("index incident: %s", res.Status())
	}
	return nil
}
