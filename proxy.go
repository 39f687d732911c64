package productgen

import (
	"context"
	"errors"
)

// ProxyMiddleware serves Service calls through remote endpoints.
func ProxyMiddleware(endpoints *EndpointSet) ServiceMiddleware {
	return func(next Service) Service {
		return &proxyMiddleware{
			endpoints: endpoints,
		}
	}
}

type proxyMiddleware struct {
	endpoints *EndpointSet
}

func (mw *proxyMiddleware) Close() error {
	return nil
}

func (mw *proxyMiddleware) GenerateProducts(ctx context.Context, count int) (*GenerationResult, error) {
	req := GenerateProductsRequest{
		Count: count,
	}

	resp, err := mw.endpoints.GenerateProducts(ctx, req)
	if err != nil {
		return nil, err
	}

	result, ok := resp.(GenerateProductsResponse)
	if !ok || result.GenerationResult == nil {
		return nil, errors.New("invalid response type")
	}

	if result.Error != "" {
		result.Err = errors.New(result.Error)
	}

	return result.GenerationResult, nil
}

func (mw *proxyMiddleware) SaveProducts(ctx context.Context, products []ProductRecord) (string, error) {
	return "", errors.New("saving products remotely is not supported")
}

func (mw *proxyMiddleware) ImportProducts(ctx context.Context, products []ProductRecord) (int, error) {
	req := ImportProductsRequest{
		Products: products,
	}

	resp, err := mw.endpoints.ImportProducts(ctx, req)
	if err != nil {
		return 0, err
	}

	result, ok := resp.(ImportProductsResponse)
	if !ok {
		return 0, errors.New("invalid response type")
	}

	if result.Error != "" {
		return result.Imported, errors.New(result.Error)
	}

	return result.Imported, nil
}

func (mw *proxyMiddleware) SearchProducts(ctx context.Context, query string, k ...int) ([]ProductRecord, error) {
	n := 0
	if len(k) > 0 {
		n = k[0]
	}

	req := SearchProductsRequest{
		Query: query,
		K:     n,
	}

	resp, err := mw.endpoints.SearchProducts(ctx, req)
	if err != nil {
		return nil, err
	}

	products, ok := resp.([]ProductRecord)
	if !ok {
		return nil, errors.New("invalid response type")
	}

	return products, nil
}
