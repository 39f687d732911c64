package productgen

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/flarexio/productgen/llm"
	"github.com/flarexio/productgen/vector"
)

var (
	ErrParse           = errors.New("invalid product JSON")
	ErrNoRecords       = errors.New("no product records")
	ErrInvalidCount    = errors.New("product count must be positive")
	ErrVectorDBNotSet  = errors.New("vector database not set")
	ErrNoProductsFound = errors.New("no products found")
	ErrBackendNotSet   = errors.New("language model backend not set")
)

const (
	DefaultCollection = "SkincareProducts"
	DefaultOutput     = "datasets/skincare_products.json"
	DefaultCount      = 50
)

type Config struct {
	LLM       llm.Config      `yaml:"llm"`
	Vector    vector.Config   `yaml:"vector"`
	Generator GeneratorConfig `yaml:"generator"`
}

type GeneratorConfig struct {
	Count   int      `json:"count" yaml:"count"`
	Output  string   `json:"output" yaml:"output"`
	Timeout Duration `json:"timeout" yaml:"timeout"`
}

func DefaultConfig() Config {
	return Config{
		LLM: llm.Config{
			Mode: llm.ModeLocal,
		},
		Vector: vector.Config{
			Driver:     vector.DriverChromem,
			Collection: DefaultCollection,
		},
		Generator: GeneratorConfig{
			Count:   DefaultCount,
			Output:  DefaultOutput,
			Timeout: Duration(10 * time.Minute),
		},
	}
}

type Duration time.Duration

func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

func (d Duration) MarshalJSON() ([]byte, error) {
	str := d.Duration().String()
	return json.Marshal(str)
}

func (d *Duration) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}

	duration, err := time.ParseDuration(str)
	if err != nil {
		return err
	}

	*d = Duration(duration)
	return nil
}

func (d Duration) MarshalYAML() (any, error) {
	return d.Duration().String(), nil
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var str string
	if err := value.Decode(&str); err != nil {
		return err
	}

	duration, err := time.ParseDuration(str)
	if err != nil {
		return err
	}

	*d = Duration(duration)
	return nil
}

type ProductRecord struct {
	ProductID         string   `json:"product_id"`
	CollectionID      string   `json:"collection_id"`
	Name              string   `json:"name"`
	Description       string   `json:"description"`
	Price             float64  `json:"price"`
	CostPrice         float64  `json:"cost_price"`
	ProfitMargin      float64  `json:"profit_margin"`
	Inventory         int      `json:"inventory"`
	Rating            float64  `json:"rating"`
	Ingredients       []string `json:"ingredients"`
	ConcernsAddressed []string `json:"concerns_addressed"`
	Texture           string   `json:"texture"`
	Image             string   `json:"image"`
}

// UnmarshalJSON also accepts "id", which older prompts asked the model for.
func (p *ProductRecord) UnmarshalJSON(data []byte) error {
	type productRecord ProductRecord

	aux := struct {
		*productRecord
		ID string `json:"id"`
	}{
		productRecord: (*productRecord)(p),
	}

	if err := json.Unmarshal(data, &aux); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			typeErr.Struct = "ProductRecord"
			typeErr.Field = strings.TrimPrefix(typeErr.Field, "productRecord.")
		}

		return err
	}

	if p.ProductID == "" {
		p.ProductID = aux.ID
	}

	return nil
}

type PriceBand string

const (
	PriceBandBudget PriceBand = "budget"
	PriceBandMid    PriceBand = "mid"
	PriceBandHigh   PriceBand = "high"
)

func PriceBandOf(price float64) PriceBand {
	switch {
	case price < 40:
		return PriceBandBudget
	case price <= 100:
		return PriceBandMid
	default:
		return PriceBandHigh
	}
}

func (b PriceBand) Label() string {
	switch b {
	case PriceBandBudget:
		return "Budget (<$40)"
	case PriceBandMid:
		return "Mid-range ($40-100)"
	case PriceBandHigh:
		return "High-end (>$100)"
	default:
		return string(b)
	}
}

// MarginRange is the expected profit margin, in percent, for the band.
func (b PriceBand) MarginRange() (min float64, max float64) {
	switch b {
	case PriceBandBudget:
		return 30, 50
	case PriceBandMid:
		return 45, 60
	default:
		return 55, 75
	}
}

// WithinPolicy is informational; generated records are never rejected by it.
func (p ProductRecord) WithinPolicy() bool {
	min, max := PriceBandOf(p.Price).MarginRange()
	return p.ProfitMargin >= min && p.ProfitMargin <= max && p.Price > p.CostPrice
}

func ProductSchema(cfg vector.Config) vector.Schema {
	name := cfg.Collection
	if name == "" {
		name = DefaultCollection
	}

	return vector.Schema{
		Name:       name,
		Vectorizer: cfg.Vectorizer,
		Properties: []vector.Property{
			{Name: "product_id", DataType: vector.DataTypeText},
			{Name: "collection_id", DataType: vector.DataTypeText},
			{Name: "name", DataType: vector.DataTypeText},
			{Name: "description", DataType: vector.DataTypeText},
			{Name: "price", DataType: vector.DataTypeNumber},
			{Name: "cost_price", DataType: vector.DataTypeNumber},
			{Name: "profit_margin", DataType: vector.DataTypeNumber},
			{Name: "inventory", DataType: vector.DataTypeInt},
			{Name: "rating", DataType: vector.DataTypeNumber},
			{Name: "ingredients", DataType: vector.DataTypeTextArray},
			{Name: "concerns_addressed", DataType: vector.DataTypeTextArray},
			{Name: "texture", DataType: vector.DataTypeText},
			{Name: "image", DataType: vector.DataTypeText},
		},
	}
}

func ProductToDocument(p ProductRecord) vector.Document {
	return vector.Document{
		ID:      p.ProductID,
		Content: buildSearchContent(p),
		Properties: map[string]any{
			"product_id":         p.ProductID,
			"collection_id":      p.CollectionID,
			"name":               p.Name,
			"description":        p.Description,
			"price":              p.Price,
			"cost_price":         p.CostPrice,
			"profit_margin":      p.ProfitMargin,
			"inventory":          p.Inventory,
			"rating":             p.Rating,
			"ingredients":        p.Ingredients,
			"concerns_addressed": p.ConcernsAddressed,
			"texture":            p.Texture,
			"image":              p.Image,
		},
	}
}

func buildSearchContent(p ProductRecord) string {
	var parts []string

	parts = append(parts, p.Name)

	if p.Description != "" {
		parts = append(parts, p.Description)
	}

	if p.Texture != "" {
		parts = append(parts, "Texture: "+p.Texture)
	}

	if len(p.Ingredients) > 0 {
		parts = append(parts, "Ingredients: "+strings.Join(p.Ingredients, ", "))
	}

	if len(p.ConcernsAddressed) > 0 {
		parts = append(parts, "Concerns: "+strings.Join(p.ConcernsAddressed, ", "))
	}

	return strings.Join(parts, "\n")
}

func DocumentToProduct(doc vector.Document) (ProductRecord, error) {
	var p ProductRecord

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           &p,
	})

	if err != nil {
		return ProductRecord{}, err
	}

	if err := decoder.Decode(doc.Properties); err != nil {
		return ProductRecord{}, fmt.Errorf("decode document %s: %w", doc.ID, err)
	}

	if p.ProductID == "" {
		p.ProductID = doc.ID
	}

	return p, nil
}
