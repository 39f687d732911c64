package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-kit/kit/endpoint"

	"github.com/flarexio/productgen"
	"github.com/flarexio/productgen/vector"
)

func GenerateProductsHandler(endpoint endpoint.Endpoint) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req productgen.GenerateProductsRequest
		if err := c.ShouldBind(&req); err != nil {
			c.String(http.StatusBadRequest, err.Error())
			c.Error(err)
			c.Abort()
			return
		}

		if req.Count == 0 {
			req.Count = productgen.DefaultCount
		}

		ctx := c.Request.Context()
		resp, err := endpoint(ctx, req)
		if err != nil {
			c.String(statusOf(err), err.Error())
			c.Error(err)
			c.Abort()
			return
		}

		result, ok := resp.(productgen.GenerateProductsResponse)
		if ok && result.Failed() {
			c.JSON(http.StatusBadGateway, &result)
			return
		}

		c.JSON(http.StatusOK, &resp)
	}
}

func SearchProductsHandler(endpoint endpoint.Endpoint) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req productgen.SearchProductsRequest
		if err := c.ShouldBindQuery(&req); err != nil {
			c.String(http.StatusBadRequest, err.Error())
			c.Error(err)
			c.Abort()
			return
		}

		if req.Query == "" {
			err := errors.New("query is required")
			c.String(http.StatusBadRequest, err.Error())
			c.Error(err)
			c.Abort()
			return
		}

		ctx := c.Request.Context()
		resp, err := endpoint(ctx, req)
		if err != nil {
			c.String(statusOf(err), err.Error())
			c.Error(err)
			c.Abort()
			return
		}

		c.JSON(http.StatusOK, &resp)
	}
}

func ImportProductsHandler(endpoint endpoint.Endpoint) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req productgen.ImportProductsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.String(http.StatusBadRequest, err.Error())
			c.Error(err)
			c.Abort()
			return
		}

		ctx := c.Request.Context()
		resp, err := endpoint(ctx, req)
		if err != nil {
			c.String(statusOf(err), err.Error())
			c.Error(err)
			c.Abort()
			return
		}

		c.JSON(http.StatusOK, &resp)
	}
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, productgen.ErrInvalidCount):
		return http.StatusBadRequest

	case errors.Is(err, productgen.ErrNoProductsFound),
		errors.Is(err, vector.ErrCollectionNotFound):
		return http.StatusNotFound

	case errors.Is(err, productgen.ErrVectorDBNotSet),
		errors.Is(err, productgen.ErrBackendNotSet),
		errors.Is(err, vector.ErrStoreClosed):
		return http.StatusServiceUnavailable

	default:
		return http.StatusExpectationFailed
	}
}
