package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/jonesrussell/north-cloud/stayscope/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/stayscope/internal/domain"
)

// maxLoggedItemErrors caps how many per-document failures are logged per request.
const maxLoggedItemErrors = 5

// BulkResult counts the outcome of one bulk request.
type BulkResult struct {
	Indexed int
	Failed  int
}

type bulkResponse struct {
	Errors bool `json:"errors"`
	Items  []map[string]struct {
		ID     string `json:"_id"`
		Status int    `json:"status"`
		Error  *struct {
			Type   string `json:"type"`
			Reason string `json:"reason"`
		} `json:"error,omitempty"`
	} `json:"items"`
}

// BulkUpsert writes docs to index keyed by booking id, so repeated runs
// overwrite documents instead of duplicating them. Item-level failures are
// counted in the result rather than returned as an error.
func (g *Gateway) BulkUpsert(ctx context.Context, index string, docs []domain.BookingDocument) (BulkResult, error) {
	if len(docs) == 0 {
		return BulkResult{}, nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for i := range docs {
		meta := map[string]any{
			"index": map[string]any{
				"_index": index,
				"_id":    docs[i].DocumentID(),
			},
		}
		if err := enc.Encode(meta); err != nil {
			return BulkResult{}, fmt.Errorf("encode bulk meta: %w", err)
		}
		if err := enc.Encode(docs[i]); err != nil {
			return BulkResult{}, fmt.Errorf("encode booking %d: %w", docs[i].ID, err)
		}
	}

	res, err := g.client.Bulk(
		bytes.NewReader(buf.Bytes()),
		g.client.Bulk.WithContext(ctx),
	)
	if err = classify("bulk", res, err); err != nil {
		return BulkResult{}, err
	}
	defer closeBody(res)

	var out bulkResponse
	if err = json.NewDecoder(res.Body).Decode(&out); err != nil {
		return BulkResult{}, fmt.Errorf("decode bulk response: %w", err)
	}

	result := BulkResult{}
	for _, item := range out.Items {
		for _, op := range item {
			if op.Error == nil && op.Status < 300 {
				result.Indexed++
				continue
			}
			result.Failed++
			if result.Failed <= maxLoggedItemErrors && op.Error != nil {
				g.log.Warn("Bulk item failed",
					logger.String("index", index),
					logger.String("id", op.ID),
					logger.Int("status", op.Status),
					logger.String("error_type", op.Error.Type),
					logger.String("reason", op.Error.Reason),
				)
			}
		}
	}
	return result, nil
}
