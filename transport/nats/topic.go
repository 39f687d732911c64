package nats

import (
	"github.com/nats-io/nats.go/micro"

	"github.com/flarexio/productgen"
)

func AddEndpoints(group micro.Group, endpoints productgen.EndpointSet) {
	group.AddEndpoint("generate_products", GenerateProductsHandler(endpoints.GenerateProducts))
	group.AddEndpoint("import_products", ImportProductsHandler(endpoints.ImportProducts))
	group.AddEndpoint("search_products", SearchProductsHandler(endpoints.SearchProducts))
}
