package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/kaanchinar/petshop-storefront/internal/domain"
)

// CartClient talks to the remote cart resource. The remote response is the
// single source of truth; callers reconcile by re-reading after a mutation.
type CartClient struct {
	base *baseClient
}

func NewCartClient(baseURL string, timeout time.Duration) *CartClient {
	return &CartClient{base: newBaseClient("cart-api", baseURL, timeout)}
}

type cartItemDTO struct {
	ID          string  `json:"id"`
	ProductID   int64   `json:"product_id"`
	ProductName string  `json:"product_name"`
	UnitPrice   float64 `json:"unit_price"`
	Quantity    int     `json:"quantity"`
}

type cartDTO struct {
	UserID string        `json:"user_id"`
	Items  []cartItemDTO `json:"items"`
}

type addCartItemDTO struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

type updateCartItemDTO struct {
	Quantity int `json:"quantity"`
}

// Get fetches the authoritative cart state, mapped to the display shape.
func (c *CartClient) Get(ctx context.Context, userID string) ([]domain.CartLineItem, error) {
	var dto cartDTO
	err := c.base.do(ctx, http.MethodGet, "/carts/"+url.PathEscape(userID), nil, &dto)
	if err != nil {
		return nil, err
	}

	items := make([]domain.CartLineItem, 0, len(dto.Items))
	for _, it := range dto.Items {
		lineID := it.ID
		items = append(items, domain.CartLineItem{
			RemoteLineID: &lineID,
			ProductID:    it.ProductID,
			Name:         it.ProductName,
			UnitPrice:    it.UnitPrice,
			Quantity:     it.Quantity,
		})
	}
	return items, nil
}

func (c *CartClient) AddItem(ctx context.Context, userID string, productID int64, quantity int) error {
	path := fmt.Sprintf("/carts/%s/items", url.PathEscape(userID))
	return c.base.do(ctx, http.MethodPost, path, addCartItemDTO{ProductID: productID, Quantity: quantity}, nil)
}

func (c *CartClient) UpdateItem(ctx context.Context, userID, lineItemID string, quantity int) error {
	path := fmt.Sprintf("/carts/%s/items/%s", url.PathEscape(userID), url.PathEscape(lineItemID))
	return c.base.do(ctx, http.MethodPut, path, updateCartItemDTO{Quantity: quantity}, nil)
}

func (c *CartClient) RemoveItem(ctx context.Context, userID, lineItemID string) error {
	path := fmt.Sprintf("/carts/%s/items/%s", url.PathEscape(userID), url.PathEscape(lineItemID))
	return c.base.do(ctx, http.MethodDelete, path, nil, nil)
}

func (c *CartClient) Clear(ctx context.Context, userID string) error {
	return c.base.do(ctx, http.MethodDelete, "/carts/"+url.PathEscape(userID), nil, nil)
}
