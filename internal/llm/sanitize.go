package llm

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
)

// NormalizeLineItemsJSON makes a best effort at turning near-miss model
// output into a schema-valid line-item array:
//   - strips markdown code fences and prose around the JSON array
//   - renames known field synonyms (name -> item_name, qty -> item_quantity, ...)
//   - coerces numeric strings to numbers
//   - fills a missing quantity with 1 and derives a missing rate or amount
//     from the other two
//   - drops entries that still lack a usable name or amount
//
// Returns the cleaned JSON, a list of applied fixes for logging, and an
// error only when no JSON array can be recovered at all.
func NormalizeLineItemsJSON(raw []byte, logger *slog.Logger) ([]byte, []string, error) {
	if logger == nil {
		logger = slog.Default()
	}

	trimmed := extractJSONArray(string(raw))
	if trimmed == "" {
		return nil, nil, fmt.Errorf("sanitize: no JSON array in model output")
	}

	var entries []map[string]any
	if err := json.Unmarshal([]byte(trimmed), &entries); err != nil {
		return nil, nil, fmt.Errorf("sanitize: decode: %w", err)
	}

	var notes []string
	out := make([]map[string]any, 0, len(entries))
	for i, m := range entries {
		renameKey(m, "name", "item_name", &notes)
		renameKey(m, "description", "item_name", &notes)
		renameKey(m, "qty", "item_quantity", &notes)
		renameKey(m, "quantity", "item_quantity", &notes)
		renameKey(m, "rate", "item_rate", &notes)
		renameKey(m, "price", "item_rate", &notes)
		renameKey(m, "unit_price", "item_rate", &notes)
		renameKey(m, "amount", "item_amount", &notes)
		renameKey(m, "total", "item_amount", &notes)

		name, _ := m["item_name"].(string)
		name = strings.TrimSpace(name)
		if name == "" {
			notes = append(notes, fmt.Sprintf("item[%d](no name)", i))
			continue
		}

		qty, qtyOK := coerceNumber(m["item_quantity"])
		rate, rateOK := coerceNumber(m["item_rate"])
		amount, amountOK := coerceNumber(m["item_amount"])

		if !qtyOK {
			qty = 1
			notes = append(notes, fmt.Sprintf("item[%d](quantity defaulted)", i))
		}
		if !amountOK && rateOK {
			amount = qty * rate
			amountOK = true
			notes = append(notes, fmt.Sprintf("item[%d](amount derived)", i))
		}
		if !rateOK && amountOK && qty > 0 {
			rate = amount / qty
			notes = append(notes, fmt.Sprintf("item[%d](rate derived)", i))
		}
		if !amountOK {
			notes = append(notes, fmt.Sprintf("item[%d](no amount)", i))
			continue
		}

		out = append(out, map[string]any{
			"item_name":     name,
			"item_quantity": qty,
			"item_rate":     rate,
			"item_amount":   amount,
		})
	}

	b, err := json.Marshal(out)
	if err != nil {
		return nil, notes, fmt.Errorf("sanitize: encode: %w", err)
	}
	if len(notes) > 0 {
		logger.Warn("llm.extract.sanitize", "fixes", notes)
	}
	return b, notes, nil
}

// extractJSONArray returns the outermost [...] span of s, tolerating code
// fences and surrounding prose. Empty when no array brackets are present.
func extractJSONArray(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")

	start := strings.Index(s, "[")
	end := strings.LastIndex(s, "]")
	if start < 0 || end <= start {
		return ""
	}
	return s[start : end+1]
}

func renameKey(m map[string]any, from, to string, notes *[]string) {
	v, ok := m[from]
	if !ok {
		return
	}
	if _, exists := m[to]; !exists {
		m[to] = v
		*notes = append(*notes, from+"->"+to)
	}
	delete(m, from)
}

func coerceNumber(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case string:
		s := strings.TrimSpace(strings.Trim(t, "₹$€£ "))
		s = strings.ReplaceAll(s, ",", "")
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
