package productgen

import (
	"context"

	"go.uber.org/zap"
)

func LoggingMiddleware(log *zap.Logger) ServiceMiddleware {
	log = log.With(
		zap.String("service", "productgen"),
	)

	return func(next Service) Service {
		log.Info("service initialized")

		return &loggingMiddleware{
			log:  log,
			next: next,
		}
	}
}

type loggingMiddleware struct {
	log  *zap.Logger
	next Service
}

func (mw *loggingMiddleware) Close() error {
	log := mw.log.With(
		zap.String("action", "close"),
	)

	err := mw.next.Close()
	if err != nil {
		log.Error(err.Error())
		return err
	}

	log.Info("service closed")
	return nil
}

func (mw *loggingMiddleware) GenerateProducts(ctx context.Context, count int) (*GenerationResult, error) {
	log := mw.log.With(
		zap.String("action", "generate_products"),
		zap.Int("count", count),
	)

	result, err := mw.next.GenerateProducts(ctx, count)
	if err != nil {
		log.Error(err.Error())
		return nil, err
	}

	log = log.With(
		zap.String("model", result.Model),
		zap.String("status", string(result.Status)),
	)

	if result.Failed() {
		log.Warn(result.Error, zap.String("preview", Preview(result.Raw, 500)))
		return result, nil
	}

	log.Info("products generated", zap.Int("generated", len(result.Products)))
	return result, nil
}

func (mw *loggingMiddleware) SaveProducts(ctx context.Context, products []ProductRecord) (string, error) {
	log := mw.log.With(
		zap.String("action", "save_products"),
		zap.Int("count", len(products)),
	)

	path, err := mw.next.SaveProducts(ctx, products)
	if err != nil {
		log.Error(err.Error())
		return "", err
	}

	log.Info("products saved", zap.String("path", path))
	return path, nil
}

func (mw *loggingMiddleware) ImportProducts(ctx context.Context, products []ProductRecord) (int, error) {
	log := mw.log.With(
		zap.String("action", "import_products"),
		zap.Int("count", len(products)),
	)

	n, err := mw.next.ImportProducts(ctx, products)
	if err != nil {
		log.Error(err.Error(), zap.Int("imported", n))
		return n, err
	}

	log.Info("products imported", zap.Int("imported", n))
	return n, nil
}

func (mw *loggingMiddleware) SearchProducts(ctx context.Context, query string, k ...int) ([]ProductRecord, error) {
	var n int
	if len(k) > 0 {
		n = k[0]
	}

	log := mw.log.With(
		zap.String("action", "search_products"),
		zap.String("query", query),
	)

	if n > 0 {
		log = log.With(
			zap.Int("k", n),
		)
	}

	products, err := mw.next.SearchProducts(ctx, query, k...)
	if err != nil {
		log.Error(err.Error())
		return nil, err
	}

	log.Info("products searched", zap.Int("count", len(products)))
	return products, nil
}
