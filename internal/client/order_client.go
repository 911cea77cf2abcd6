package client

import (
	"context"
	"net/http"
	"time"

	"github.com/kaanchinar/petshop-storefront/internal/domain"
)

// OrderClient talks to the remote order resource. The server consumes the
// current cart when the order is created, so only the shipping block and
// notes travel in the request.
type OrderClient struct {
	base *baseClient
}

func NewOrderClient(baseURL string, timeout time.Duration) *OrderClient {
	return &OrderClient{base: newBaseClient("order-api", baseURL, timeout)}
}

type createOrderDTO struct {
	UserID          string `json:"user_id"`
	ShippingAddress string `json:"shipping_address"`
	Notes           string `json:"notes"`
	IdempotencyKey  string `json:"idempotency_key"`
}

type createdOrderDTO struct {
	ID string `json:"id"`
}

// CreateOrder submits one order-creation request and returns the remote
// order id.
func (c *OrderClient) CreateOrder(ctx context.Context, userID string, req domain.OrderRequest) (string, error) {
	dto := createOrderDTO{
		UserID:          userID,
		ShippingAddress: req.ShippingAddress,
		Notes:           req.Notes,
		IdempotencyKey:  req.IdempotencyKey,
	}

	var created createdOrderDTO
	if err := c.base.do(ctx, http.MethodPost, "/orders", dto, &created); err != nil {
		return "", err
	}
	return created.ID, nil
}
