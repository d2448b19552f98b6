package groq

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/bill-extraction/internal/extraction"
	"github.com/joseph-ayodele/bill-extraction/internal/llm"
)

// ExtractItems implements llm.ItemExtractor over Groq chat/completions. The
// model's array output is sanitized, schema-validated, and unmarshalled into
// the same CandidateItem shape the heuristic pipeline produces.
func (c *Client) ExtractItems(ctx context.Context, req llm.ExtractRequest) ([]extraction.CandidateItem, []byte, error) {
	rid := uuid.New().String()
	start := time.Now()

	c.logger.Info("llm.extract.start",
		"req_id", rid,
		"model", c.cfg.Model,
		"temp", c.cfg.Temperature,
		"text_len", len(req.OCRText),
		"prep_confidence", req.PrepConfidence,
	)

	body := map[string]any{
		"model":       c.cfg.Model,
		"temperature": c.cfg.Temperature,
		"max_tokens":  2048,
		"messages": []map[string]any{
			{"role": "system", "content": llm.BuildSystemPrompt()},
			{"role": "user", "content": llm.BuildUserPrompt(req.OCRText, req.DocumentHint)},
		},
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	headers := map[string]string{"Authorization": "Bearer " + c.cfg.APIKey}
	raw, _, err := llm.SendJSON(ctx, c.http, endpoint, body, headers, c.logger)
	if err != nil {
		c.logger.Error("llm.extract.http_error",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, raw, err
	}

	var cc struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &cc); err != nil {
		c.logger.Error("llm.extract.decode_error",
			"req_id", rid, "error", err, "raw_bytes", len(raw),
		)
		return nil, raw, fmt.Errorf("decode groq response: %w", err)
	}
	if len(cc.Choices) == 0 {
		c.logger.Error("llm.extract.no_choices", "req_id", rid)
		return nil, raw, fmt.Errorf("no choices in groq response")
	}
	content := []byte(strings.TrimSpace(cc.Choices[0].Message.Content))

	schema := llm.BuildLineItemsJSONSchema()
	if err := llm.ValidateJSONAgainstSchema(schema, content); err != nil {
		// Near-miss output is common; sanitize and re-validate before
		// giving up.
		cleaned, fixes, sErr := llm.NormalizeLineItemsJSON(content, c.logger)
		if sErr != nil {
			c.logger.Error("llm.extract.sanitize_failed",
				"req_id", rid, "error", sErr,
				"elapsed_ms", time.Since(start).Milliseconds(),
			)
			return nil, content, fmt.Errorf("sanitize failed: %w", sErr)
		}
		if vErr := llm.ValidateJSONAgainstSchema(schema, cleaned); vErr != nil {
			c.logger.Error("llm.extract.schema_validation_failed",
				"req_id", rid, "error", vErr,
				"elapsed_ms", time.Since(start).Milliseconds(),
			)
			return nil, content, fmt.Errorf("schema validation failed: %w", vErr)
		}
		c.logger.Warn("llm.extract.sanitize_applied", "req_id", rid, "fixes", fixes)
		content = cleaned
	}

	var items []extraction.CandidateItem
	if err := json.Unmarshal(content, &items); err != nil {
		c.logger.Error("llm.extract.unmarshal_failed", "req_id", rid, "error", err)
		return nil, content, fmt.Errorf("unmarshal items: %w", err)
	}

	c.logger.Info("llm.extract.ok",
		"req_id", rid,
		"items", len(items),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return items, content, nil
}
