package llm

import "strings"

// BuildSystemPrompt frames the model as a bill parser constrained to the
// line-item array shape.
func BuildSystemPrompt() string {
	parts := []string{
		"You are an expert at parsing medical bills, invoices, pharmacy receipts, and financial documents.",
		"Extract ALL line items from the OCR text you are given.",
		"For each item provide: item_name (string), item_quantity (number, default 1 if not specified), item_rate (unit price, number), item_amount (line total, number).",
		"Include every purchasable item; do not skip any.",
		"Ignore header rows (like 'S.No', 'Item', 'Description').",
		"Ignore subtotals, totals, taxes, and discounts.",
		"Treat each line as: [description] [qty] x [rate] = [amount].",
		"If only two numbers exist on a line: the first is the quantity, the second is the amount.",
		"Return ONLY a valid JSON array, no markdown, no explanations.",
	}
	return strings.Join(parts, " ")
}

// BuildUserPrompt carries the OCR text, capped so a garbled scan cannot blow
// the context window.
func BuildUserPrompt(ocrText, documentHint string) string {
	const maxOCRChars = 6000

	var b strings.Builder
	if documentHint != "" {
		b.WriteString("Document: ")
		b.WriteString(documentHint)
		b.WriteString("\n\n")
	}
	b.WriteString("OCR TEXT:\n")
	if len(ocrText) > maxOCRChars {
		b.WriteString(ocrText[:maxOCRChars])
	} else {
		b.WriteString(ocrText)
	}
	b.WriteString("\n\nReturn JSON array only (no other text):")
	return b.String()
}
