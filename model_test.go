package productgen

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gopkg.in/yaml.v3"

	"github.com/flarexio/productgen/llm"
	"github.com/flarexio/productgen/vector"
)

func TestConfigYAMLUnmarshal(t *testing.T) {
	assert := assert.New(t)

	input := `llm:
  mode: remote
  local:
    url: http://localhost:11434
    model: mistral
  remote:
    model: deepseek-chat
    apiKeyEnv: DEEPSEEK_API_KEY
    timeout: 3m
vector:
  driver: weaviate
  url: http://localhost:8080
  grpcHost: localhost:50051
  collection: SkincareProducts
  vectorizer: text2vec-transformers
generator:
  count: 20
  output: datasets/skincare_products.json
  timeout: 90s`

	cfg := DefaultConfig()
	if err := yaml.Unmarshal([]byte(input), &cfg); err != nil {
		assert.Fail(err.Error())
		return
	}

	assert.Equal(llm.ModeRemote, cfg.LLM.Mode)
	assert.Equal("mistral", cfg.LLM.Local.Model)
	assert.Equal(3*time.Minute, cfg.LLM.Remote.Timeout)
	assert.Equal(vector.DriverWeaviate, cfg.Vector.Driver)
	assert.Equal("localhost:50051", cfg.Vector.GRPCHost)
	assert.Equal(20, cfg.Generator.Count)
	assert.Equal(90*time.Second, cfg.Generator.Timeout.Duration())
}

func TestGeneratorConfigJSONUnmarshal(t *testing.T) {
	assert := assert.New(t)

	input := `{
		"count": 10,
		"output": "out/products.json"
	}`

	var cfg GeneratorConfig
	if err := json.Unmarshal([]byte(input), &cfg); err != nil {
		assert.Fail(err.Error())
		return
	}

	assert.Equal(10, cfg.Count)
	assert.Equal(time.Duration(0), cfg.Timeout.Duration(), "no timeout when omitted")

	bs, err := json.Marshal(GeneratorConfig{Timeout: Duration(2 * time.Minute)})
	assert.NoError(err)
	assert.Contains(string(bs), `"timeout":"2m0s"`)
}

func TestProductRecordLegacyID(t *testing.T) {
	assert := assert.New(t)

	input := `{
		"id": "prod_7",
		"name": "Barrier Balm",
		"price": 28.5,
		"inventory": 75,
		"ingredients": ["Ceramides", "Squalane"]
	}`

	var p ProductRecord
	if err := json.Unmarshal([]byte(input), &p); err != nil {
		assert.Fail(err.Error())
		return
	}

	assert.Equal("prod_7", p.ProductID)
	assert.Equal("Barrier Balm", p.Name)
	assert.Equal(75, p.Inventory)

	var q ProductRecord
	err := json.Unmarshal([]byte(`{"product_id":"prod_1","id":"ignored"}`), &q)
	assert.NoError(err)
	assert.Equal("prod_1", q.ProductID)
}

func TestProductRecordTypeError(t *testing.T) {
	assert := assert.New(t)

	var p ProductRecord
	err := json.Unmarshal([]byte(`{"product_id":"prod_1","price":"abc"}`), &p)

	var typeErr *json.UnmarshalTypeError
	if !assert.ErrorAs(err, &typeErr) {
		return
	}

	assert.Equal("ProductRecord", typeErr.Struct)
	assert.Equal("price", typeErr.Field)
	assert.Contains(err.Error(), "ProductRecord.price")
	assert.NotContains(err.Error(), "productRecord")
}

func TestPriceBands(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(PriceBandBudget, PriceBandOf(39.99))
	assert.Equal(PriceBandMid, PriceBandOf(40))
	assert.Equal(PriceBandMid, PriceBandOf(100))
	assert.Equal(PriceBandHigh, PriceBandOf(100.01))

	min, max := PriceBandHigh.MarginRange()
	assert.Equal(55.0, min)
	assert.Equal(75.0, max)

	assert.True(ProductRecord{Price: 120, CostPrice: 40, ProfitMargin: 66.7}.WithinPolicy())
	assert.False(ProductRecord{Price: 20, CostPrice: 8, ProfitMargin: 60}.WithinPolicy())
}

func TestProductSchema(t *testing.T) {
	assert := assert.New(t)

	schema := ProductSchema(vector.Config{Vectorizer: "text2vec-transformers"})

	assert.Equal(DefaultCollection, schema.Name)
	assert.Len(schema.Properties, 13)

	p, ok := schema.Property("ingredients")
	assert.True(ok)
	assert.Equal(vector.DataTypeTextArray, p.DataType)

	p, ok = schema.Property("inventory")
	assert.True(ok)
	assert.Equal(vector.DataTypeInt, p.DataType)
}

func TestDocumentRoundTrip(t *testing.T) {
	assert := assert.New(t)

	p := ProductRecord{
		ProductID:         "prod_3",
		CollectionID:      "brightening",
		Name:              "Glow Tonic",
		Description:       "An exfoliating toner.",
		Price:             45,
		CostPrice:         22.5,
		ProfitMargin:      50,
		Inventory:         300,
		Rating:            4.4,
		Ingredients:       []string{"Glycolic Acid", "Niacinamide"},
		ConcernsAddressed: []string{"Dullness"},
		Texture:           "Mist",
		Image:             "/products/glow-tonic.jpg",
	}

	doc := ProductToDocument(p)
	assert.Equal("prod_3", doc.ID)
	assert.Contains(doc.Content, "Ingredients: Glycolic Acid, Niacinamide")
	assert.Contains(doc.Content, "Texture: Mist")

	// stores hand numbers back as float64 and arrays as []any
	doc.Properties["inventory"] = float64(300)
	doc.Properties["ingredients"] = []any{"Glycolic Acid", "Niacinamide"}

	decoded, err := DocumentToProduct(doc)
	if err != nil {
		assert.Fail(err.Error())
		return
	}

	assert.Equal(p, decoded)
}
