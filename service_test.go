package productgen

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/flarexio/productgen/persistence/chromem"
	"github.com/flarexio/productgen/vector"
)

type fakeBackend struct {
	response string
	err      error
	prompts  []string
}

func (b *fakeBackend) Complete(ctx context.Context, prompt string) (string, error) {
	b.prompts = append(b.prompts, prompt)
	return b.response, b.err
}

func (b *fakeBackend) GetModel() string {
	return "fake/model"
}

var keywords = []string{"retinol", "hyaluronic", "niacinamide", "cream", "serum"}

func keywordEmbedding(ctx context.Context, text string) ([]float32, error) {
	text = strings.ToLower(text)

	embedding := make([]float32, len(keywords)+1)
	for i, kw := range keywords {
		embedding[i] = float32(strings.Count(text, kw))
	}

	embedding[len(keywords)] = 0.1
	return embedding, nil
}

const generated = "```json\n" + `[
  {"product_id": "prod_1", "collection_id": "hydration", "name": "Hyaluronic Cloud Cream", "description": "Hyaluronic acid cream.", "price": 20, "cost_price": 12, "profit_margin": 40, "inventory": 100, "rating": 4.5, "ingredients": ["Hyaluronic Acid"], "concerns_addressed": ["Dryness"], "texture": "Cream", "image": "/products/cloud-cream.jpg"},
  {"product_id": "prod_2", "collection_id": "anti-aging", "name": "Retinol Night Serum", "description": "Retinol serum for overnight renewal.", "price": 120, "cost_price": 48, "profit_margin": 60, "inventory": 50, "rating": 4.8, "ingredients": ["Retinol", "Peptides"], "concerns_addressed": ["Aging"], "texture": "Serum", "image": "/products/night-serum.jpg"}
]` + "\n```"

type serviceTestSuite struct {
	suite.Suite
	ctx     context.Context
	cfg     Config
	backend *fakeBackend
	store   *vector.Manager
	svc     Service
}

func (suite *serviceTestSuite) SetupTest() {
	ctx := context.Background()

	cfg := DefaultConfig()
	cfg.Generator.Output = filepath.Join(suite.T().TempDir(), "datasets", "skincare_products.json")

	opener := chromem.Opener(chromem.WithEmbeddingFunc(keywordEmbedding))

	store, err := vector.Open(ctx, cfg.Vector, opener)
	if err != nil {
		suite.Fail(err.Error())
		return
	}

	if err := store.CreateSchema(ctx, ProductSchema(cfg.Vector)); err != nil {
		suite.Fail(err.Error())
		return
	}

	backend := &fakeBackend{response: generated}

	svc, err := NewService(ctx, cfg, backend, store)
	if err != nil {
		suite.Fail(err.Error())
		return
	}

	suite.ctx = ctx
	suite.cfg = cfg
	suite.backend = backend
	suite.store = store
	suite.svc = svc
}

func (suite *serviceTestSuite) TearDownTest() {
	if suite.svc != nil {
		suite.svc.Close()
	}
}

func (suite *serviceTestSuite) TestGenerateProducts() {
	result, err := suite.svc.GenerateProducts(suite.ctx, 2)
	if err != nil {
		suite.Fail(err.Error())
		return
	}

	suite.Equal(GenerationSucceeded, result.Status)
	suite.Equal(2, result.Requested)
	suite.Equal("fake/model", result.Model)
	suite.Len(result.Products, 2)
	suite.Equal("Retinol Night Serum", result.Products[1].Name)

	suite.Len(suite.backend.prompts, 1, "exactly one generation request")
	suite.Contains(suite.backend.prompts[0], "Generate 2 unique skincare products")
	suite.Contains(suite.backend.prompts[0], "High-end (>$100): 55-75% margin")
}

func (suite *serviceTestSuite) TestGenerateProductsParseFailure() {
	suite.backend.response = "Sorry, I can only describe products in prose."

	result, err := suite.svc.GenerateProducts(suite.ctx, 5)
	if err != nil {
		suite.Fail(err.Error())
		return
	}

	suite.True(result.Failed())
	suite.ErrorIs(result.Err, ErrParse)
	suite.Empty(result.Products)
	suite.Equal(5, result.Requested)
	suite.Equal(suite.backend.response, result.Raw)
}

func (suite *serviceTestSuite) TestGenerateProductsBackendFailure() {
	suite.backend.err = errors.New("connection refused")

	result, err := suite.svc.GenerateProducts(suite.ctx, 5)
	if err != nil {
		suite.Fail(err.Error())
		return
	}

	suite.True(result.Failed())
	suite.Equal("connection refused", result.Error)
}

func (suite *serviceTestSuite) TestGenerateProductsEmptyIsNotFailure() {
	suite.backend.response = "[]"

	result, err := suite.svc.GenerateProducts(suite.ctx, 3)
	if err != nil {
		suite.Fail(err.Error())
		return
	}

	suite.False(result.Failed())
	suite.Empty(result.Products)
}

func (suite *serviceTestSuite) TestGenerateProductsInvalidCount() {
	_, err := suite.svc.GenerateProducts(suite.ctx, 0)
	suite.ErrorIs(err, ErrInvalidCount)
	suite.Empty(suite.backend.prompts)
}

func (suite *serviceTestSuite) TestSaveProducts() {
	products, err := ParseProducts(generated)
	if err != nil {
		suite.Fail(err.Error())
		return
	}

	path, err := suite.svc.SaveProducts(suite.ctx, products)
	suite.NoError(err)
	suite.Equal(suite.cfg.Generator.Output, path)

	loaded, err := Load(path)
	suite.NoError(err)
	suite.Equal(products, loaded)

	_, err = suite.svc.SaveProducts(suite.ctx, nil)
	suite.ErrorIs(err, ErrNoRecords)
}

func (suite *serviceTestSuite) TestImportAndSearchProducts() {
	products, err := ParseProducts(generated)
	if err != nil {
		suite.Fail(err.Error())
		return
	}

	n, err := suite.svc.ImportProducts(suite.ctx, products)
	suite.NoError(err)
	suite.Equal(2, n)

	found, err := suite.svc.SearchProducts(suite.ctx, "retinol serum", 1)
	if err != nil {
		suite.Fail(err.Error())
		return
	}

	suite.Len(found, 1)
	suite.Equal(products[1], found[0])
}

func (suite *serviceTestSuite) TestImportWithoutProductID() {
	n, err := suite.svc.ImportProducts(suite.ctx, []ProductRecord{{Name: "Nameless"}})
	suite.Error(err)
	suite.Equal(0, n)
}

func (suite *serviceTestSuite) TestSearchEmptyCollection() {
	_, err := suite.svc.SearchProducts(suite.ctx, "retinol")
	suite.ErrorIs(err, ErrNoProductsFound)
}

func (suite *serviceTestSuite) TestWithoutStore() {
	svc, err := NewService(suite.ctx, suite.cfg, suite.backend, nil)
	if err != nil {
		suite.Fail(err.Error())
		return
	}

	_, err = svc.SearchProducts(suite.ctx, "retinol")
	suite.ErrorIs(err, ErrVectorDBNotSet)

	_, err = svc.ImportProducts(suite.ctx, nil)
	suite.ErrorIs(err, ErrVectorDBNotSet)

	suite.NoError(svc.Close())
}

func TestServiceTestSuite(t *testing.T) {
	suite.Run(t, new(serviceTestSuite))
}
