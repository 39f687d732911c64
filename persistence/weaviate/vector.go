package weaviate

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-openapi/strfmt"
	"github.com/google/uuid"
	"github.com/weaviate/weaviate-go-client/v4/weaviate"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/auth"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/fault"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"

	wgrpc "github.com/weaviate/weaviate-go-client/v4/weaviate/grpc"

	"github.com/flarexio/productgen/vector"
)

const (
	DefaultURL        = "http://localhost:8080"
	DefaultGRPCHost   = "localhost:50051"
	DefaultVectorizer = "text2vec-transformers"
)

var ErrInvalidResponse = errors.New("invalid weaviate response")

func Opener() vector.Opener {
	return func(ctx context.Context, cfg vector.Config) (vector.VectorDB, error) {
		return NewWeaviateVectorDB(cfg)
	}
}

// NewWeaviateVectorDB builds a client for the configured URL. The URL
// drives the connection; nothing is dialed until the first request.
func NewWeaviateVectorDB(cfg vector.Config) (vector.VectorDB, error) {
	rawURL := cfg.URL
	if rawURL == "" {
		rawURL = DefaultURL
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}

	if u.Host == "" {
		return nil, fmt.Errorf("invalid weaviate url: %s", rawURL)
	}

	wcfg := weaviate.Config{
		Host:   u.Host,
		Scheme: u.Scheme,
	}

	if cfg.APIKey != "" {
		wcfg.AuthConfig = auth.ApiKey{Value: cfg.APIKey}
	}

	if host := grpcHost(u, cfg.GRPCHost); host != "" {
		wcfg.GrpcConfig = &wgrpc.Config{
			Host:    host,
			Secured: u.Scheme == "https",
		}
	}

	client, err := weaviate.NewClient(wcfg)
	if err != nil {
		return nil, err
	}

	return &weaviateVectorDB{client, cfg.Vectorizer}, nil
}

// grpcHost falls back to the default gRPC port for a local server.
func grpcHost(u *url.URL, configured string) string {
	if configured != "" {
		return configured
	}

	if u.Hostname() == "localhost" {
		return DefaultGRPCHost
	}

	return ""
}

type weaviateVectorDB struct {
	client     *weaviate.Client
	vectorizer string
}

func (v *weaviateVectorDB) Ready(ctx context.Context) (bool, error) {
	if v.client == nil {
		return false, vector.ErrStoreClosed
	}

	return v.client.Misc().ReadyChecker().Do(ctx)
}

func (v *weaviateVectorDB) CreateSchema(ctx context.Context, schema vector.Schema) error {
	if v.client == nil {
		return vector.ErrStoreClosed
	}

	vectorizer := schema.Vectorizer
	if vectorizer == "" {
		vectorizer = v.vectorizer
	}
	if vectorizer == "" {
		vectorizer = DefaultVectorizer
	}

	class := &models.Class{
		Class:      schema.Name,
		Vectorizer: vectorizer,
		Properties: make([]*models.Property, len(schema.Properties)),
	}

	for i, p := range schema.Properties {
		class.Properties[i] = &models.Property{
			Name:     p.Name,
			DataType: []string{string(p.DataType)},
		}
	}

	err := v.client.Schema().ClassCreator().WithClass(class).Do(ctx)
	if err != nil {
		var werr *fault.WeaviateClientError
		if errors.As(err, &werr) && werr.StatusCode == http.StatusUnprocessableEntity {
			return fmt.Errorf("%w: %s", vector.ErrSchemaConflict, werr.Msg)
		}

		return err
	}

	return nil
}

func (v *weaviateVectorDB) Collection(ctx context.Context, schema vector.Schema) (vector.Collection, error) {
	if v.client == nil {
		return nil, vector.ErrStoreClosed
	}

	exists, err := v.client.Schema().ClassExistenceChecker().
		WithClassName(schema.Name).
		Do(ctx)

	if err != nil {
		return nil, err
	}

	if !exists {
		return nil, fmt.Errorf("%w: %s", vector.ErrCollectionNotFound, schema.Name)
	}

	return &collection{v.client, schema}, nil
}

// Close drops the client; the HTTP transport keeps no session to end.
func (v *weaviateVectorDB) Close() error {
	v.client = nil
	return nil
}

type collection struct {
	client *weaviate.Client
	schema vector.Schema
}

// ObjectID maps a document id onto the UUID space weaviate requires.
func ObjectID(id string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(id)).String()
}

func (c *collection) AddDocument(ctx context.Context, doc vector.Document) error {
	props := make(map[string]any, len(doc.Properties))
	for k, v := range doc.Properties {
		props[k] = v
	}

	object := &models.Object{
		Class:      c.schema.Name,
		ID:         strfmt.UUID(ObjectID(doc.ID)),
		Properties: props,
	}

	// batch writes replace an object with the same id
	resp, err := c.client.Batch().ObjectsBatcher().
		WithObjects(object).
		Do(ctx)

	if err != nil {
		return err
	}

	for _, r := range resp {
		if r.Result == nil || r.Result.Errors == nil {
			continue
		}

		msgs := make([]string, 0, len(r.Result.Errors.Error))
		for _, e := range r.Result.Errors.Error {
			msgs = append(msgs, e.Message)
		}

		return fmt.Errorf("object %s: %s", doc.ID, strings.Join(msgs, "; "))
	}

	return nil
}

func (c *collection) FindDocument(ctx context.Context, id string) (vector.Document, error) {
	objects, err := c.client.Data().ObjectsGetter().
		WithClassName(c.schema.Name).
		WithID(ObjectID(id)).
		Do(ctx)

	if err != nil {
		return vector.Document{}, err
	}

	if len(objects) == 0 {
		return vector.Document{}, fmt.Errorf("document not found: %s", id)
	}

	raw, ok := objects[0].Properties.(map[string]any)
	if !ok {
		return vector.Document{}, ErrInvalidResponse
	}

	props, err := vector.NormalizeProperties(c.schema, raw)
	if err != nil {
		return vector.Document{}, err
	}

	return vector.Document{
		ID:         id,
		Properties: props,
	}, nil
}

func (c *collection) Query(ctx context.Context, query string, k int) ([]vector.Document, error) {
	fields := make([]graphql.Field, 0, len(c.schema.Properties)+1)
	for _, name := range c.schema.PropertyNames() {
		fields = append(fields, graphql.Field{Name: name})
	}

	fields = append(fields, graphql.Field{
		Name:   "_additional",
		Fields: []graphql.Field{{Name: "id"}},
	})

	nearText := c.client.GraphQL().NearTextArgBuilder().
		WithConcepts([]string{query})

	resp, err := c.client.GraphQL().Get().
		WithClassName(c.schema.Name).
		WithFields(fields...).
		WithNearText(nearText).
		WithLimit(k).
		Do(ctx)

	if err != nil {
		return nil, err
	}

	items, err := classResults(resp, "Get", c.schema.Name)
	if err != nil {
		return nil, err
	}

	docs := make([]vector.Document, 0, len(items))
	for _, item := range items {
		raw, ok := item.(map[string]any)
		if !ok {
			return nil, ErrInvalidResponse
		}

		props, err := vector.NormalizeProperties(c.schema, raw)
		if err != nil {
			return nil, err
		}

		var id string
		if additional, ok := raw["_additional"].(map[string]any); ok {
			id, _ = additional["id"].(string)
		}

		docs = append(docs, vector.Document{
			ID:         id,
			Properties: props,
		})
	}

	return docs, nil
}

func (c *collection) Count(ctx context.Context) (int, error) {
	meta := graphql.Field{
		Name:   "meta",
		Fields: []graphql.Field{{Name: "count"}},
	}

	resp, err := c.client.GraphQL().Aggregate().
		WithClassName(c.schema.Name).
		WithFields(meta).
		Do(ctx)

	if err != nil {
		return 0, err
	}

	items, err := classResults(resp, "Aggregate", c.schema.Name)
	if err != nil {
		return 0, err
	}

	if len(items) == 0 {
		return 0, nil
	}

	item, ok := items[0].(map[string]any)
	if !ok {
		return 0, ErrInvalidResponse
	}

	m, ok := item["meta"].(map[string]any)
	if !ok {
		return 0, ErrInvalidResponse
	}

	count, ok := m["count"].(float64)
	if !ok {
		return 0, ErrInvalidResponse
	}

	return int(count), nil
}

func classResults(resp *models.GraphQLResponse, operation string, class string) ([]any, error) {
	if len(resp.Errors) > 0 {
		msgs := make([]string, len(resp.Errors))
		for i, e := range resp.Errors {
			msgs[i] = e.Message
		}

		return nil, errors.New(strings.Join(msgs, "; "))
	}

	op, ok := resp.Data[operation].(map[string]any)
	if !ok {
		return nil, ErrInvalidResponse
	}

	items, ok := op[class].([]any)
	if !ok {
		return nil, ErrInvalidResponse
	}

	return items, nil
}
