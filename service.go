package productgen

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/flarexio/productgen/llm"
	"github.com/flarexio/productgen/vector"
)

// Service defines the core logic of the product generator.
type Service interface {

	// Close releases the vector store connection, if any.
	Close() error

	// GenerateProducts asks the language model for count products in a
	// single request. Generation and parse failures are reported in the
	// result, not as an error.
	GenerateProducts(ctx context.Context, count int) (*GenerationResult, error)

	// SaveProducts writes products to the configured dataset file.
	SaveProducts(ctx context.Context, products []ProductRecord) (string, error)

	// ImportProducts adds products to the vector collection.
	ImportProducts(ctx context.Context, products []ProductRecord) (int, error)

	// SearchProducts returns the products most similar to the query.
	SearchProducts(ctx context.Context, query string, k ...int) ([]ProductRecord, error)
}

type ServiceMiddleware func(Service) Service

type GenerationStatus string

const (
	GenerationSucceeded GenerationStatus = "generated"
	GenerationFailed    GenerationStatus = "failed"
)

// GenerationResult tells a failed generation apart from an empty one.
type GenerationResult struct {
	Status    GenerationStatus `json:"status"`
	Requested int              `json:"requested"`
	Model     string           `json:"model"`
	Products  []ProductRecord  `json:"products"`
	Error     string           `json:"error,omitempty"`

	Raw string `json:"-"`
	Err error  `json:"-"`
}

func (r *GenerationResult) Failed() bool {
	return r.Status == GenerationFailed
}

func (r *GenerationResult) fail(err error) *GenerationResult {
	r.Status = GenerationFailed
	r.Products = []ProductRecord{}
	r.Err = err
	r.Error = err.Error()
	return r
}

// NewService wires a backend and an optional vector store. Either may be
// nil when the caller only needs the other half.
func NewService(ctx context.Context, cfg Config, backend llm.TextGenerator, store *vector.Manager) (Service, error) {
	log := zap.L().With(
		zap.String("service", "productgen"),
	)

	svc := &service{
		backend: backend,
		store:   store,
		cfg:     cfg,
		log:     log,
	}

	if store != nil {
		schema := ProductSchema(cfg.Vector)

		collection, err := store.Collection(ctx, schema)
		if err != nil {
			return nil, err
		}

		svc.collection = collection
	}

	return svc, nil
}

type service struct {
	backend llm.TextGenerator

	// Vector collection (thread-safe by itself)
	store      *vector.Manager
	collection vector.Collection

	cfg Config
	log *zap.Logger
}

func (svc *service) Close() error {
	if svc.store == nil {
		return nil
	}

	return svc.store.Close()
}

func (svc *service) GenerateProducts(ctx context.Context, count int) (*GenerationResult, error) {
	if count < 1 {
		return nil, ErrInvalidCount
	}

	if svc.backend == nil {
		return nil, ErrBackendNotSet
	}

	log := svc.log.With(
		zap.String("action", "generate_products"),
		zap.Int("count", count),
	)

	result := &GenerationResult{
		Requested: count,
		Model:     svc.backend.GetModel(),
	}

	instruction, err := BuildInstruction(count)
	if err != nil {
		return nil, err
	}

	if timeout := svc.cfg.Generator.Timeout.Duration(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	log.Debug("sending generation request", zap.String("prompt", instruction))

	raw, err := svc.backend.Complete(ctx, instruction)
	if err != nil {
		return result.fail(err), nil
	}

	result.Raw = raw

	log.Debug("received generation response", zap.String("response", raw))

	products, err := ParseProducts(raw)
	if err != nil {
		return result.fail(err), nil
	}

	result.Status = GenerationSucceeded
	result.Products = products

	return result, nil
}

func (svc *service) SaveProducts(ctx context.Context, products []ProductRecord) (string, error) {
	if len(products) == 0 {
		return "", ErrNoRecords
	}

	path := svc.cfg.Generator.Output
	if path == "" {
		path = DefaultOutput
	}

	if err := Persist(products, path); err != nil {
		return "", err
	}

	return path, nil
}

func (svc *service) ImportProducts(ctx context.Context, products []ProductRecord) (int, error) {
	if svc.collection == nil {
		return 0, ErrVectorDBNotSet
	}

	var (
		count int
		errs  []error
	)

	for _, p := range products {
		log := svc.log.With(
			zap.String("action", "import_products"),
			zap.String("product_id", p.ProductID),
		)

		if p.ProductID == "" {
			errs = append(errs, fmt.Errorf("product %q has no product_id", p.Name))
			continue
		}

		if err := svc.collection.AddDocument(ctx, ProductToDocument(p)); err != nil {
			log.Error(err.Error())
			errs = append(errs, fmt.Errorf("product %s: %w", p.ProductID, err))
			continue
		}

		count++
	}

	return count, errors.Join(errs...)
}

func (svc *service) SearchProducts(ctx context.Context, query string, k ...int) ([]ProductRecord, error) {
	if svc.collection == nil {
		return nil, ErrVectorDBNotSet
	}

	n := 5 // Default number of results to return
	if len(k) > 0 && k[0] > 0 {
		n = k[0]
	}

	docs, err := svc.collection.Query(ctx, query, n)
	if err != nil {
		return nil, err
	}

	if len(docs) == 0 {
		return nil, ErrNoProductsFound
	}

	products := make([]ProductRecord, len(docs))
	for i, doc := range docs {
		p, err := DocumentToProduct(doc)
		if err != nil {
			return nil, err
		}

		products[i] = p
	}

	return products, nil
}
