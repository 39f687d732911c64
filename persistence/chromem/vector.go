package chromem

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/philippgille/chromem-go"
	"github.com/spf13/cast"

	"github.com/flarexio/productgen/vector"
)

const (
	DefaultEmbeddingModel = "nomic-embed-text"
	DefaultEmbeddingURL   = "http://localhost:11434/api"
)

type Option func(*chromemVectorDB)

// WithEmbeddingFunc overrides the Ollama embedding function collections use.
func WithEmbeddingFunc(fn chromem.EmbeddingFunc) Option {
	return func(db *chromemVectorDB) {
		db.embed = fn
	}
}

func Opener(opts ...Option) vector.Opener {
	return func(ctx context.Context, cfg vector.Config) (vector.VectorDB, error) {
		return NewChromemVectorDB(cfg, opts...)
	}
}

func NewChromemVectorDB(cfg vector.Config, opts ...Option) (vector.VectorDB, error) {
	var db *chromem.DB
	if !cfg.Persistent {
		db = chromem.NewDB()
	} else {
		d, err := chromem.NewPersistentDB(filepath.Clean(cfg.Path), false)
		if err != nil {
			return nil, err
		}

		db = d
	}

	model := cfg.Vectorizer
	if model == "" {
		model = DefaultEmbeddingModel
	}

	embeddingURL := cfg.EmbeddingURL
	if embeddingURL == "" {
		embeddingURL = DefaultEmbeddingURL
	}

	v := &chromemVectorDB{
		db:    db,
		embed: chromem.NewEmbeddingFuncOllama(model, embeddingURL),
	}

	for _, opt := range opts {
		opt(v)
	}

	return v, nil
}

type chromemVectorDB struct {
	db    *chromem.DB
	embed chromem.EmbeddingFunc
}

// Ready reports whether the embedded store can vectorize content, which
// is the only part of it living outside the process.
func (v *chromemVectorDB) Ready(ctx context.Context) (bool, error) {
	if v.db == nil {
		return false, vector.ErrStoreClosed
	}

	if _, err := v.embed(ctx, "ready"); err != nil {
		return false, err
	}

	return true, nil
}

func (v *chromemVectorDB) CreateSchema(ctx context.Context, schema vector.Schema) error {
	if v.db == nil {
		return vector.ErrStoreClosed
	}

	if c := v.db.GetCollection(schema.Name, v.embed); c != nil {
		return fmt.Errorf("%w: %s", vector.ErrSchemaConflict, schema.Name)
	}

	metadata := map[string]string{
		"vectorizer": schema.Vectorizer,
		"properties": describe(schema),
	}

	_, err := v.db.CreateCollection(schema.Name, metadata, v.embed)
	return err
}

func (v *chromemVectorDB) Collection(ctx context.Context, schema vector.Schema) (vector.Collection, error) {
	if v.db == nil {
		return nil, vector.ErrStoreClosed
	}

	c := v.db.GetCollection(schema.Name, v.embed)
	if c == nil {
		return nil, fmt.Errorf("%w: %s", vector.ErrCollectionNotFound, schema.Name)
	}

	return &collection{c, schema}, nil
}

func (v *chromemVectorDB) Close() error {
	v.db = nil
	return nil
}

type collection struct {
	collection *chromem.Collection
	schema     vector.Schema
}

func (c *collection) AddDocument(ctx context.Context, doc vector.Document) error {
	metadata, err := encodeProperties(c.schema, doc.Properties)
	if err != nil {
		return err
	}

	document := chromem.Document{
		ID:       doc.ID,
		Metadata: metadata,
		Content:  doc.Content,
	}

	return c.collection.AddDocument(ctx, document)
}

func (c *collection) FindDocument(ctx context.Context, id string) (vector.Document, error) {
	document, err := c.collection.GetByID(ctx, id)
	if err != nil {
		return vector.Document{}, err
	}

	props, err := decodeProperties(c.schema, document.Metadata)
	if err != nil {
		return vector.Document{}, err
	}

	return vector.Document{
		ID:         document.ID,
		Content:    document.Content,
		Properties: props,
	}, nil
}

func (c *collection) Query(ctx context.Context, query string, k int) ([]vector.Document, error) {
	if k > c.collection.Count() {
		k = c.collection.Count()
	}

	if k == 0 {
		return nil, nil
	}

	results, err := c.collection.Query(ctx, query, k, nil, nil)
	if err != nil {
		return nil, err
	}

	docs := make([]vector.Document, len(results))
	for i, result := range results {
		props, err := decodeProperties(c.schema, result.Metadata)
		if err != nil {
			return nil, err
		}

		docs[i] = vector.Document{
			ID:         result.ID,
			Content:    result.Content,
			Properties: props,
		}
	}

	return docs, nil
}

func (c *collection) Count(ctx context.Context) (int, error) {
	return c.collection.Count(), nil
}

func describe(schema vector.Schema) string {
	parts := make([]string, len(schema.Properties))
	for i, p := range schema.Properties {
		parts[i] = p.Name + ":" + string(p.DataType)
	}

	return strings.Join(parts, ",")
}

// chromem metadata is string-only; values are encoded by their schema type.
func encodeProperties(schema vector.Schema, props map[string]any) (map[string]string, error) {
	metadata := make(map[string]string, len(props))
	for _, p := range schema.Properties {
		value, ok := props[p.Name]
		if !ok || value == nil {
			continue
		}

		switch p.DataType {
		case vector.DataTypeTextArray:
			items, err := cast.ToStringSliceE(value)
			if err != nil {
				return nil, fmt.Errorf("property %s: %w", p.Name, err)
			}

			bs, err := json.Marshal(items)
			if err != nil {
				return nil, err
			}

			metadata[p.Name] = string(bs)

		default:
			s, err := cast.ToStringE(value)
			if err != nil {
				return nil, fmt.Errorf("property %s: %w", p.Name, err)
			}

			metadata[p.Name] = s
		}
	}

	return metadata, nil
}

func decodeProperties(schema vector.Schema, metadata map[string]string) (map[string]any, error) {
	props := make(map[string]any, len(metadata))
	for _, p := range schema.Properties {
		raw, ok := metadata[p.Name]
		if !ok {
			continue
		}

		var (
			value any
			err   error
		)

		switch p.DataType {
		case vector.DataTypeNumber:
			value, err = cast.ToFloat64E(raw)
		case vector.DataTypeInt:
			value, err = cast.ToIntE(raw)
		case vector.DataTypeTextArray:
			var items []string
			err = json.Unmarshal([]byte(raw), &items)
			value = items
		default:
			value = raw
		}

		if err != nil {
			return nil, fmt.Errorf("property %s: %w", p.Name, err)
		}

		props[p.Name] = value
	}

	return props, nil
}
