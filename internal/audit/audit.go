// Package audit indexes finished dispatch outcomes into Elasticsearch for
// operator search. Indexing is best-effort: failures are logged and never
// affect the dispatch result.
package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	"github.com/elastic/go-elasticsearch/v8/esapi"

	"legalease-notifications/internal/common/database"
	"legalease-notifications/internal/common/logger"
	"legalease-notifications/internal/models"
)

// Entry is one indexed dispatch outcome.
type Entry struct {
	NotificationID string    `json:"notification_id"`
	UserID         string    `json:"user_id"`
	Category       string    `json:"category"`
	Status         string    `json:"status"`
	Priority       string    `json:"priority"`
	ErrorMessage   string    `json:"error_message,omitempty"`
	RetryCount     int       `json:"retry_count"`
	DispatchedAt   time.Time `json:"dispatched_at"`
}

// Indexer writes dispatch outcomes to an Elasticsearch index.
type Indexer struct {
	es     *database.ElasticsearchClient
	index  string
	logger logger.Logger
}

func NewIndexer(es *database.ElasticsearchClient, index string, log logger.Logger) *Indexer {
	return &Indexer{es: es, index: index, logger: log}
}

// Record indexes one outcome, keyed by notification ID so a retry overwrites
// the earlier attempt's document.
func (i *Indexer) Record(ctx context.Context, n *models.Notification, category models.Category) {
	entry := Entry{
		NotificationID: n.ID,
		UserID:         n.UserID,
		Category:       string(category),
		Status:         string(n.Status),
		Priority:       string(n.Priority),
		ErrorMessage:   n.ErrorMessage,
		RetryCount:     n.RetryCount,
		DispatchedAt:   time.Now().UTC(),
	}

	body, err := json.Marshal(entry)
	if err != nil {
		i.logger.Error("marshal audit entry", map[string]interface{}{"error": err})
		return
	}

	req := esapi.IndexRequest{
		Index:      i.index,
		DocumentID: n.ID,
		Body:       bytes.NewReader(body),
	}
	res, err := req.Do(ctx, i.es.Client)
	if err != nil {
		i.logger.Warn("audit index failed", map[string]interface{}{
			"error":          err,
			"notificationId": n.ID,
		})
		return
	}
	defer res.Body.Close()
	if res.IsError() {
		i.logger.Warn("audit index rejected", map[string]interface{}{
			"status":         res.Status(),
			"notificationId": n.ID,
		})
	}
}
