package productgen

import (
	"bytes"
	"strings"
	"text/template"
)

var instructionTemplate = template.Must(template.New("instruction").Parse(
	`Generate {{.Count}} unique skincare products as a JSON array. Each product must follow this structure:
{
  "product_id": "prod_1" (increment for each product),
  "collection_id": "collection-name" (vary: e.g., "hydration", "anti-aging", "acne-care", "brightening"),
  "name": "Product Name" (creative and unique),
  "description": "Detailed description (2-3 sentences)",
  "price": float (between 15.00 and 250.00),
  "cost_price": float (calculated from the profit margin, always below price),
  "profit_margin": float (between 30.00 and 75.00),
  "inventory": int (between 20 and 500),
  "rating": float (between 3.5 and 5.0),
  "ingredients": [list of 3-6 key ingredients],
  "concerns_addressed": [list of 2-4 skin concerns like "Dryness", "Aging", "Acne", "Hyperpigmentation"],
  "texture": "texture type ({{.Textures}})",
  "image": "/products/product-slug.jpg"
}

IMPORTANT RULES:
1. Vary profit margins realistically:
{{- range .Bands}}
   - {{.Label}}: {{.Min}}-{{.Max}}% margin
{{- end}}

2. Use realistic skincare ingredients: Hyaluronic Acid, Niacinamide, Retinol, Vitamin C, Ceramides, Peptides, AHA/BHA, Squalane, etc.

3. Create diverse product types: cleansers, toners, serums, moisturizers, masks, sunscreens, eye creams, treatments

4. Make each product COMPLETELY UNIQUE with different names, descriptions, and ingredient combinations

5. Return ONLY a valid JSON array starting with [ and ending with ], no markdown formatting or explanations`))

var Textures = []string{"Cream", "Gel", "Serum", "Oil", "Lotion", "Foam", "Balm", "Mist"}

type bandRule struct {
	Label string
	Min   float64
	Max   float64
}

// BuildInstruction renders the generation prompt for count products.
func BuildInstruction(count int) (string, error) {
	bands := []PriceBand{PriceBandHigh, PriceBandMid, PriceBandBudget}

	rules := make([]bandRule, len(bands))
	for i, b := range bands {
		min, max := b.MarginRange()
		rules[i] = bandRule{b.Label(), min, max}
	}

	data := struct {
		Count    int
		Textures string
		Bands    []bandRule
	}{
		Count:    count,
		Textures: strings.Join(Textures, ", "),
		Bands:    rules,
	}

	var buf bytes.Buffer
	if err := instructionTemplate.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}
