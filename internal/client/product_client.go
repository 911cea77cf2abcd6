package client

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/kaanchinar/petshop-storefront/internal/domain"
)

// ProductClient is the read-only view of the remote product catalog.
type ProductClient struct {
	base *baseClient
}

func NewProductClient(baseURL string, timeout time.Duration) *ProductClient {
	return &ProductClient{base: newBaseClient("product-api", baseURL, timeout)}
}

type productListDTO struct {
	Products []domain.Product `json:"products"`
}

func (c *ProductClient) List(ctx context.Context) ([]domain.Product, error) {
	var dto productListDTO
	if err := c.base.do(ctx, http.MethodGet, "/products", nil, &dto); err != nil {
		return nil, err
	}
	return dto.Products, nil
}

func (c *ProductClient) Get(ctx context.Context, id int64) (*domain.Product, error) {
	var p domain.Product
	if err := c.base.do(ctx, http.MethodGet, fmt.Sprintf("/products/%d", id), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}
