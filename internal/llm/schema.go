package llm

// BuildLineItemsJSONSchema returns a JSON-Schema (draft 2020-12 subset) for
// the line-item array the model must produce. We use it locally to validate
// model output before trusting it.
func BuildLineItemsJSONSchema() map[string]any {
	return map[string]any{
		"type": "array",
		"items": map[string]any{
			"type":                 "object",
			"additionalProperties": false,
			"properties": map[string]any{
				"item_name":     map[string]any{"type": "string", "minLength": 1},
				"item_quantity": map[string]any{"type": "number"},
				"item_rate":     map[string]any{"type": "number"},
				"item_amount":   map[string]any{"type": "number"},
			},
			"required": []string{"item_name", "item_quantity", "item_rate", "item_amount"},
		},
	}
}
