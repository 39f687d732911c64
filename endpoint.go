package productgen

import (
	"context"
	"errors"

	"github.com/go-kit/kit/endpoint"
)

type EndpointSet struct {
	GenerateProducts endpoint.Endpoint
	ImportProducts   endpoint.Endpoint
	SearchProducts   endpoint.Endpoint
}

type GenerateProductsRequest struct {
	Count int  `json:"count" form:"count"`
	Save  bool `json:"save,omitempty" form:"save"`
}

type GenerateProductsResponse struct {
	*GenerationResult
	Summary *Summary `json:"summary,omitempty"`
	Path    string   `json:"path,omitempty"`
}

func GenerateProductsEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req, ok := request.(GenerateProductsRequest)
		if !ok {
			return nil, errors.New("invalid request type")
		}

		result, err := svc.GenerateProducts(ctx, req.Count)
		if err != nil {
			return nil, err
		}

		resp := GenerateProductsResponse{
			GenerationResult: result,
		}

		if len(result.Products) == 0 {
			return resp, nil
		}

		summary, err := Summarize(result.Products)
		if err != nil {
			return nil, err
		}

		resp.Summary = &summary

		if req.Save {
			path, err := svc.SaveProducts(ctx, result.Products)
			if err != nil {
				return nil, err
			}

			resp.Path = path
		}

		return resp, nil
	}
}

type ImportProductsRequest struct {
	Products []ProductRecord `json:"products"`
}

type ImportProductsResponse struct {
	Imported int    `json:"imported"`
	Error    string `json:"error,omitempty"`
}

func ImportProductsEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req, ok := request.(ImportProductsRequest)
		if !ok {
			return nil, errors.New("invalid request type")
		}

		n, err := svc.ImportProducts(ctx, req.Products)
		if err != nil && n == 0 {
			return nil, err
		}

		resp := ImportProductsResponse{Imported: n}
		if err != nil {
			resp.Error = err.Error()
		}

		return resp, nil
	}
}

type SearchProductsRequest struct {
	Query string `json:"query" form:"query"`
	K     int    `json:"k,omitempty" form:"k"`
}

func SearchProductsEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req, ok := request.(SearchProductsRequest)
		if !ok {
			return nil, errors.New("invalid request type")
		}

		return svc.SearchProducts(ctx, req.Query, req.K)
	}
}
