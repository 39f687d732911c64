package http

import (
	"github.com/gin-gonic/gin"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/flarexio/productgen"

	mcpE "github.com/flarexio/productgen/mcp"
)

type RouterConfig struct {
	GenerateRate  float64 `yaml:"generateRate"`
	GenerateBurst int     `yaml:"generateBurst"`
}

func DefaultRouterConfig() RouterConfig {
	return RouterConfig{
		GenerateRate:  0.1,
		GenerateBurst: 1,
	}
}

func AddRouters(r *gin.Engine, endpoints productgen.EndpointSet, cfg RouterConfig) {
	if cfg.GenerateRate <= 0 {
		cfg = DefaultRouterConfig()
	}

	// RESTful API routes
	api := r.Group("/api")
	{
		api.POST("/products/generate",
			RateLimit(cfg.GenerateRate, cfg.GenerateBurst),
			GenerateProductsHandler(endpoints.GenerateProducts),
		)
		api.GET("/products/search", SearchProductsHandler(endpoints.SearchProducts))
		api.POST("/products/import", ImportProductsHandler(endpoints.ImportProducts))
	}
}

func AddStreamableRouters(r *gin.Engine, endpoints map[mcp.MCPMethod]mcpE.MCPEndpoint) {
	mcp := r.Group("/mcp")
	{
		mcp.POST("/", MCPStreamableHandler(endpoints))
	}
}
