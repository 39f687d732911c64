package chromem

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/flarexio/productgen/vector"
)

var keywords = []string{"retinol", "hyaluronic", "niacinamide", "spf", "cleanser"}

func keywordEmbedding(ctx context.Context, text string) ([]float32, error) {
	text = strings.ToLower(text)

	embedding := make([]float32, len(keywords)+1)
	for i, kw := range keywords {
		embedding[i] = float32(strings.Count(text, kw))
	}

	embedding[len(keywords)] = 0.1
	return embedding, nil
}

var schema = vector.Schema{
	Name:       "SkincareProducts",
	Vectorizer: "keyword",
	Properties: []vector.Property{
		{Name: "name", DataType: vector.DataTypeText},
		{Name: "price", DataType: vector.DataTypeNumber},
		{Name: "inventory", DataType: vector.DataTypeInt},
		{Name: "ingredients", DataType: vector.DataTypeTextArray},
	},
}

type chromemTestSuite struct {
	suite.Suite
	ctx context.Context
	db  vector.VectorDB
}

func (suite *chromemTestSuite) SetupTest() {
	cfg := vector.Config{
		Driver:     vector.DriverChromem,
		Persistent: false,
		Collection: schema.Name,
	}

	db, err := NewChromemVectorDB(cfg, WithEmbeddingFunc(keywordEmbedding))
	if err != nil {
		suite.Fail(err.Error())
		return
	}

	suite.ctx = context.Background()
	suite.db = db
}

func (suite *chromemTestSuite) TestReady() {
	ready, err := suite.db.Ready(suite.ctx)
	suite.NoError(err)
	suite.True(ready)
}

func (suite *chromemTestSuite) TestReadyEmbeddingDown() {
	down := func(ctx context.Context, text string) ([]float32, error) {
		return nil, errors.New("connection refused")
	}

	db, err := NewChromemVectorDB(vector.Config{}, WithEmbeddingFunc(down))
	if err != nil {
		suite.Fail(err.Error())
		return
	}

	ready, err := db.Ready(suite.ctx)
	suite.Error(err)
	suite.False(ready)
}

func (suite *chromemTestSuite) TestCreateSchemaTwice() {
	suite.NoError(suite.db.CreateSchema(suite.ctx, schema))

	err := suite.db.CreateSchema(suite.ctx, schema)
	suite.ErrorIs(err, vector.ErrSchemaConflict)
}

func (suite *chromemTestSuite) TestCollectionNotFound() {
	_, err := suite.db.Collection(suite.ctx, schema)
	suite.ErrorIs(err, vector.ErrCollectionNotFound)
}

func (suite *chromemTestSuite) TestAddFindQuery() {
	if err := suite.db.CreateSchema(suite.ctx, schema); err != nil {
		suite.Fail(err.Error())
		return
	}

	c, err := suite.db.Collection(suite.ctx, schema)
	if err != nil {
		suite.Fail(err.Error())
		return
	}

	empty, err := c.Query(suite.ctx, "retinol", 5)
	suite.NoError(err)
	suite.Empty(empty)

	docs := []vector.Document{
		{
			ID:      "prod_1",
			Content: "Night Renewal Serum retinol retinol",
			Properties: map[string]any{
				"name":        "Night Renewal Serum",
				"price":       89.5,
				"inventory":   120,
				"ingredients": []string{"Retinol", "Squalane"},
			},
		},
		{
			ID:      "prod_2",
			Content: "Dew Drop Gel hyaluronic",
			Properties: map[string]any{
				"name":        "Dew Drop Gel",
				"price":       32.0,
				"inventory":   400,
				"ingredients": []string{"Hyaluronic Acid"},
			},
		},
	}

	for _, doc := range docs {
		suite.NoError(c.AddDocument(suite.ctx, doc))
	}

	count, err := c.Count(suite.ctx)
	suite.NoError(err)
	suite.Equal(2, count)

	found, err := c.FindDocument(suite.ctx, "prod_1")
	if err != nil {
		suite.Fail(err.Error())
		return
	}

	suite.Equal("Night Renewal Serum", found.Properties["name"])
	suite.Equal(89.5, found.Properties["price"])
	suite.Equal(120, found.Properties["inventory"])
	suite.Equal([]string{"Retinol", "Squalane"}, found.Properties["ingredients"])

	results, err := c.Query(suite.ctx, "retinol", 10)
	if err != nil {
		suite.Fail(err.Error())
		return
	}

	suite.Len(results, 2)
	suite.Equal("prod_1", results[0].ID)
}

func (suite *chromemTestSuite) TestClosed() {
	suite.NoError(suite.db.Close())

	err := suite.db.CreateSchema(suite.ctx, schema)
	suite.ErrorIs(err, vector.ErrStoreClosed)
}

func TestChromemTestSuite(t *testing.T) {
	suite.Run(t, new(chromemTestSuite))
}
