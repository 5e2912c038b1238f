package claude

import "fmt"

// buildTransactionPrompt returns the extraction prompt for one transaction
// sheet. The model classifies and normalizes rows; all VAT math happens
// locally afterwards.
func buildTransactionPrompt(sheetText, period string) string {
	return fmt.Sprintf(`You are a Swedish bookkeeping assistant. The CSV below contains raw bank or platform transactions for the period %s. Classify and normalize every data row.

IMPORTANT INSTRUCTIONS:
- Classify each row as "sale" or "cost". Platform fees, subscriptions and purchases are costs; charging revenue and roaming revenue are sales.
- Keep the original sign of gross amounts. Costs are usually negative in the source.
- vat_rate is a percentage (25, 12, 6 or 0). EV roaming sales are VAT-free (rate 0).
- When the sheet has explicit net and VAT columns, copy them; otherwise derive net and VAT from the gross amount and the rate.
- Use category keys when a row clearly matches one: private_charging, public_charging, roaming, subscription, platform_fee, service_fee, electricity.
- Do not invent rows. Do not skip rows that have an amount.

Return ONLY valid JSON with no markdown formatting, no code fences, no explanation, just the raw JSON object:
{
  "transactions": [
    {
      "amount": 0,
      "net_amount": 0,
      "vat_amount": 0,
      "vat_rate": 0,
      "type": "sale",
      "description": "",
      "category": "",
      "date": ""
    }
  ],
  "confidence": 0,
  "insights": ["short Swedish observations about the data, at most 3"]
}

"confidence" is 0-100 for how certain you are about the classification overall.

CSV:
%s`, period, sheetText)
}
