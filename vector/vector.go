package vector

import (
	"context"
	"errors"
)

var (
	ErrConnection            = errors.New("vector store not ready")
	ErrSchemaConflict        = errors.New("collection already exists")
	ErrConfigurationMismatch = errors.New("store endpoint configuration mismatch")
	ErrUnsupportedDriver     = errors.New("unsupported vector store driver")
	ErrCollectionNotFound    = errors.New("collection not found")
	ErrStoreClosed           = errors.New("vector store closed")
)

type Driver string

const (
	DriverChromem  Driver = "chromem"
	DriverWeaviate Driver = "weaviate"
)

type Config struct {
	Driver     Driver `yaml:"driver"`
	URL        string `yaml:"url"`
	GRPCHost   string `yaml:"grpcHost"`
	APIKey     string `yaml:"apiKey"`
	Persistent bool   `yaml:"persistent"`
	Path       string `yaml:"path"`
	Collection string `yaml:"collection"`

	// Vectorizer names the store-side module (weaviate) or the embedding
	// model (chromem) used to embed document content.
	Vectorizer   string `yaml:"vectorizer"`
	EmbeddingURL string `yaml:"embeddingURL"`
}

// VectorDB is a connection handle to a vector store that computes
// embeddings itself.
type VectorDB interface {
	Ready(ctx context.Context) (bool, error)
	CreateSchema(ctx context.Context, schema Schema) error
	Collection(ctx context.Context, schema Schema) (Collection, error)
	Close() error
}

type Collection interface {
	AddDocument(ctx context.Context, doc Document) error
	FindDocument(ctx context.Context, id string) (Document, error)
	Query(ctx context.Context, query string, k int) ([]Document, error)
	Count(ctx context.Context) (int, error)
}

type Document struct {
	ID         string         `json:"id"`
	Content    string         `json:"content"`
	Properties map[string]any `json:"properties,omitempty"`
}

// Opener establishes a VectorDB connection for the given config.
type Opener func(ctx context.Context, cfg Config) (VectorDB, error)
