package destinations

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"flatfile/internal/config"
	"flatfile/internal/record"
)

// ── Webhook destination ─────────────────────────────────────
// POSTs records as JSON batches. A failed batch aborts the write; there
// is no retry.

const webhookBatchSize = 500

type webhookDest struct {
	http    *resty.Client
	url     string
	table   string
	mapping []config.ColumnMapping
}

type webhookPayload struct {
	Table   string           `json:"table"`
	Mode    string           `json:"mode"`
	Records []map[string]any `json:"records"`
}

func newWebhookDest(cfg config.DestConfig, mapping []config.ColumnMapping) (*webhookDest, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("webhook destination needs a url")
	}
	c := resty.New().SetTimeout(30 * time.Second)
	return &webhookDest{http: c, url: cfg.URL, table: cfg.Table, mapping: mapping}, nil
}

func (w *webhookDest) Write(ctx context.Context, schema *record.Schema, records []*record.Record, mode Mode) (int, error) {
	plan, err := buildPlan(schema, w.mapping)
	if err != nil {
		return 0, err
	}

	rows := make([]map[string]any, 0, len(records))
	for _, rec := range records {
		vals, err := plan.row(rec)
		if err != nil {
			return 0, err
		}
		row := make(map[string]any, len(vals))
		for i, v := range vals {
			if v == nil {
				continue
			}
			row[plan.columns[i]] = v
		}
		rows = append(rows, row)
	}

	written := 0
	for start := 0; start < len(rows); start += webhookBatchSize {
		end := start + webhookBatchSize
		if end > len(rows) {
			end = len(rows)
		}
		payload := webhookPayload{Table: w.table, Mode: string(mode), Records: rows[start:end]}
		resp, err := w.http.R().SetContext(ctx).SetBody(payload).Post(w.url)
		if err != nil {
			return written, fmt.Errorf("post batch: %w", err)
		}
		if resp.IsError() {
			return written, fmt.Errorf("post batch: %s; body: %s", resp.Status(), resp.String())
		}
		written += end - start
	}
	return written, nil
}

func (w *webhookDest) Close() error { return nil }
