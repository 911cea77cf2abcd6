package orders

import (
	"context"
	"errors"

	"github.com/kaanchinar/petshop-storefront/internal/domain"
)

var (
	ErrOrderNotFound  = errors.New("order not found")
	ErrDuplicateOrder = errors.New("order already recorded")
)

// Repository is the storefront's local order-history storage
// Consumers define this interface, not the Postgres implementation
type Repository interface {
	SaveOrder(ctx context.Context, record *domain.OrderRecord) error
	GetOrderByID(ctx context.Context, userID, id string) (*domain.OrderRecord, error)
	ListOrdersByUserID(ctx context.Context, userID string) ([]*domain.OrderRecord, error)
	Close() error
}

// Credentials holds everything needed to reach Postgres and its migrations.
type Credentials struct {
	Host              string
	Port              int
	User              string
	Password          string
	DBName            string
	MigrationsDirPath string
}
