package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/spf13/cast"

	"github.com/flarexio/productgen"
)

var ErrUnknownTool = errors.New("unknown tool")

type JSONRPCRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      mcp.RequestId   `json:"id"`
	Method  mcp.MCPMethod   `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

func errorResponse(id mcp.RequestId, code int, message string) mcp.JSONRPCError {
	return mcp.JSONRPCError{
		JSONRPC: mcp.JSONRPC_VERSION,
		ID:      id,
		Error: struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
			Data    any    `json:"data,omitempty"`
		}{
			Code:    code,
			Message: message,
		},
	}
}

func MethodNotFound(id mcp.RequestId) mcp.JSONRPCError {
	return errorResponse(id, mcp.METHOD_NOT_FOUND, "method not found")
}

type MCPEndpoint func(ctx context.Context, req JSONRPCRequest) mcp.JSONRPCMessage

const MCPSERVER_INSTRUCTIONS string = `ProductGen generates synthetic skincare product catalogs with a language model and indexes them in a vector store.

Available tools:
- generate_products: Generate a batch of products in a single model request and summarize their pricing
- search_products: Find indexed products using natural language queries
- import_products: Add product records to the vector store

Generated products follow a tiered pricing policy: budget (<$40) at 30-50% margin, mid-range ($40-100) at 45-60%, high-end (>$100) at 55-75%.`

const (
	ToolGenerateProducts = "generate_products"
	ToolSearchProducts   = "search_products"
	ToolImportProducts   = "import_products"
)

// Tools lists the tools served by CallToolEndpoint.
func Tools() []mcp.Tool {
	return []mcp.Tool{
		mcp.NewTool(ToolGenerateProducts,
			mcp.WithDescription("Generate skincare products with the configured language model and return them with pricing statistics."),
			mcp.WithNumber("count",
				mcp.Description("Number of products to generate"),
				mcp.Required(),
			),
		),
		mcp.NewTool(ToolSearchProducts,
			mcp.WithDescription("Search indexed skincare products by semantic similarity."),
			mcp.WithString("query",
				mcp.Description("Natural language search query"),
				mcp.Required(),
			),
			mcp.WithNumber("k",
				mcp.Description("Maximum number of results, defaults to 5"),
			),
		),
		mcp.NewTool(ToolImportProducts,
			mcp.WithDescription("Import skincare product records into the vector store."),
			mcp.WithArray("products",
				mcp.Description("Product records, each with a unique product_id"),
				mcp.Required(),
				mcp.Items(map[string]any{"type": "object"}),
			),
		),
	}
}

func InitializeEndpoint(svc productgen.Service) MCPEndpoint {
	return func(ctx context.Context, req JSONRPCRequest) mcp.JSONRPCMessage {
		var params mcp.InitializeParams
		if err := json.Unmarshal(req.Params, &params); err != nil {
			return errorResponse(req.ID, mcp.INVALID_PARAMS, err.Error())
		}

		protocolVersion := mcp.LATEST_PROTOCOL_VERSION
		if clientVersion := params.ProtocolVersion; clientVersion != "" {
			if slices.Contains(mcp.ValidProtocolVersions, clientVersion) {
				protocolVersion = clientVersion
			}
		}

		result := &mcp.InitializeResult{
			ProtocolVersion: protocolVersion,
			Capabilities: mcp.ServerCapabilities{
				Tools: &struct {
					ListChanged bool `json:"listChanged,omitempty"`
				}{},
			},
			ServerInfo: mcp.Implementation{
				Name:    "productgen",
				Version: "1.0.0",
			},
			Instructions: MCPSERVER_INSTRUCTIONS,
		}

		return mcp.JSONRPCResponse{
			JSONRPC: mcp.JSONRPC_VERSION,
			ID:      req.ID,
			Result:  result,
		}
	}
}

func PingEndpoint(svc productgen.Service) MCPEndpoint {
	return func(ctx context.Context, req JSONRPCRequest) mcp.JSONRPCMessage {
		return mcp.JSONRPCResponse{
			JSONRPC: mcp.JSONRPC_VERSION,
			ID:      req.ID,
			Result:  struct{}{}, // empty response
		}
	}
}

func ListToolsEndpoint(svc productgen.Service) MCPEndpoint {
	return func(ctx context.Context, req JSONRPCRequest) mcp.JSONRPCMessage {
		result := &mcp.ListToolsResult{
			Tools: Tools(),
		}

		return mcp.JSONRPCResponse{
			JSONRPC: mcp.JSONRPC_VERSION,
			ID:      req.ID,
			Result:  result,
		}
	}
}

func CallToolEndpoint(svc productgen.Service) MCPEndpoint {
	return func(ctx context.Context, req JSONRPCRequest) mcp.JSONRPCMessage {
		var params mcp.CallToolParams
		if err := json.Unmarshal(req.Params, &params); err != nil {
			return errorResponse(req.ID, mcp.INVALID_PARAMS, err.Error())
		}

		callToolReq := mcp.CallToolRequest{
			Request: mcp.Request{
				Method: string(req.Method),
			},
			Params: params,
		}

		result, err := CallTool(ctx, svc, callToolReq)
		if err != nil {
			if errors.Is(err, ErrUnknownTool) {
				return errorResponse(req.ID, mcp.INVALID_PARAMS, err.Error())
			}

			return errorResponse(req.ID, mcp.INTERNAL_ERROR, err.Error())
		}

		return mcp.JSONRPCResponse{
			JSONRPC: mcp.JSONRPC_VERSION,
			ID:      req.ID,
			Result:  result,
		}
	}
}

// CallTool dispatches a tool call to the service. Service failures are
// returned as error results so the client model can read them.
func CallTool(ctx context.Context, svc productgen.Service, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()

	var (
		resp any
		err  error
	)

	switch req.Params.Name {
	case ToolGenerateProducts:
		resp, err = generateProducts(ctx, svc, args)

	case ToolSearchProducts:
		resp, err = searchProducts(ctx, svc, args)

	case ToolImportProducts:
		resp, err = importProducts(ctx, svc, args)

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownTool, req.Params.Name)
	}

	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	bs, err := json.Marshal(resp)
	if err != nil {
		return nil, err
	}

	return mcp.NewToolResultText(string(bs)), nil
}

func generateProducts(ctx context.Context, svc productgen.Service, args map[string]any) (any, error) {
	count, err := cast.ToIntE(args["count"])
	if err != nil {
		return nil, fmt.Errorf("invalid count: %w", err)
	}

	result, err := svc.GenerateProducts(ctx, count)
	if err != nil {
		return nil, err
	}

	if result.Failed() {
		return nil, fmt.Errorf("generation failed: %s", result.Error)
	}

	resp := productgen.GenerateProductsResponse{
		GenerationResult: result,
	}

	if len(result.Products) > 0 {
		summary, err := productgen.Summarize(result.Products)
		if err != nil {
			return nil, err
		}

		resp.Summary = &summary
	}

	return resp, nil
}

func searchProducts(ctx context.Context, svc productgen.Service, args map[string]any) (any, error) {
	query := cast.ToString(args["query"])
	if query == "" {
		return nil, errors.New("query is required")
	}

	k := cast.ToInt(args["k"])

	return svc.SearchProducts(ctx, query, k)
}

func importProducts(ctx context.Context, svc productgen.Service, args map[string]any) (any, error) {
	raw, ok := args["products"]
	if !ok {
		return nil, errors.New("products are required")
	}

	bs, err := json.Marshal(raw)
	if err != nil {
		return nil, err
	}

	var products []productgen.ProductRecord
	if err := json.Unmarshal(bs, &products); err != nil {
		return nil, err
	}

	n, err := svc.ImportProducts(ctx, products)

	resp := productgen.ImportProductsResponse{Imported: n}
	if err != nil {
		if n == 0 {
			return nil, err
		}

		resp.Error = err.Error()
	}

	return resp, nil
}
