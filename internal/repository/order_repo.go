package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/atelierhq/storefront_api/internal/models"
)

// OrderRepository handles data access for orders.
type OrderRepository struct {
	db *sqlx.DB
}

// NewOrderRepository creates a new OrderRepository.
func NewOrderRepository(db *sqlx.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// Create inserts a new order row. The caller supplies the id.
func (r *OrderRepository) Create(o *models.Order) error {
	const q = `
        INSERT INTO orders (
            id, customer_name, customer_email, items, total_price, status, created_at, updated_at
        ) VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
        RETURNING created_at, updated_at`

	return r.db.QueryRow(q,
		o.ID, o.CustomerName, o.CustomerEmail, o.Items, o.TotalPrice, o.Status,
	).Scan(&o.CreatedAt, &o.UpdatedAt)
}

// GetByID returns an order by id.
func (r *OrderRepository) GetByID(id string) (*models.Order, error) {
	const q = `SELECT * FROM orders WHERE id = $1 LIMIT 1`
	var o models.Order
	if err := r.db.Get(&o, q, id); err != nil {
		return nil, err
	}
	return &o, nil
}

// Transition moves an order to status to, but only while its current status
// is one of from. The check and the write are one statement, so two callers
// racing on the same order cannot both succeed. It returns sql.ErrNoRows
// when the order is missing or its status did not match.
func (r *OrderRepository) Transition(id string, to models.OrderStatus, from ...models.OrderStatus) (*models.Order, error) {
	const q = `
        UPDATE orders SET
            status = $2::text,
            paid_at = CASE WHEN $2::text = 'paid' THEN NOW() ELSE paid_at END,
            delivered_at = CASE WHEN $2::text = 'delivered' THEN NOW() ELSE delivered_at END,
            cancelled_at = CASE WHEN $2::text = 'cancelled' THEN NOW() ELSE cancelled_at END,
            updated_at = NOW()
        WHERE id = $1 AND status = ANY($3)
        RETURNING *`

	allowed := make([]string, len(from))
	for i, s := range from {
		allowed[i] = string(s)
	}

	var o models.Order
	if err := r.db.Get(&o, q, id, string(to), pq.Array(allowed)); err != nil {
		return nil, err
	}
	return &o, nil
}

// OrderFilter holds filters for order listing.
type OrderFilter struct {
	Status        *string
	CustomerEmail *string
	StartDate     *string
	EndDate       *string
	Page          int
	Limit         int
}

// OrderListResult contains paginated order results.
type OrderListResult struct {
	Orders     []models.Order
	TotalItems int
	TotalPages int
	Page       int
	Limit      int
}

// List returns orders with filters and pagination, newest first.
func (r *OrderRepository) List(filter *OrderFilter) (*OrderListResult, error) {
	baseQ := `FROM orders WHERE 1=1`
	args := []interface{}{}
	argIdx := 1

	if filter.Status != nil && *filter.Status != "" {
		baseQ += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, *filter.Status)
		argIdx++
	}
	if filter.CustomerEmail != nil && *filter.CustomerEmail != "" {
		baseQ += fmt.Sprintf(" AND customer_email ILIKE $%d", argIdx)
		args = append(args, "%"+*filter.CustomerEmail+"%")
		argIdx++
	}
	if filter.StartDate != nil && *filter.StartDate != "" {
		baseQ += fmt.Sprintf(" AND created_at >= $%d::date", argIdx)
		args = append(args, *filter.StartDate)
		argIdx++
	}
	if filter.EndDate != nil && *filter.EndDate != "" {
		baseQ += fmt.Sprintf(" AND created_at < ($%d::date + interval '1 day')", argIdx)
		args = append(args, *filter.EndDate)
		argIdx++
	}

	var total int
	if err := r.db.Get(&total, "SELECT COUNT(*) "+baseQ, args...); err != nil {
		return nil, err
	}

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	if filter.Limit > 100 {
		filter.Limit = 100
	}
	offset := (filter.Page - 1) * filter.Limit
	totalPages := (total + filter.Limit - 1) / filter.Limit

	selectQ := fmt.Sprintf(`SELECT * %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, baseQ, argIdx, argIdx+1)
	args = append(args, filter.Limit, offset)

	orders := []models.Order{}
	if err := r.db.Select(&orders, selectQ, args...); err != nil && err != sql.ErrNoRows {
		return nil, err
	}

	return &OrderListResult{
		Orders:     orders,
		TotalItems: total,
		TotalPages: totalPages,
		Page:       filter.Page,
		Limit:      filter.Limit,
	}, nil
}

// ListPendingBefore returns up to limit pending orders created before cutoff,
// oldest first.
func (r *OrderRepository) ListPendingBefore(cutoff time.Time, limit int) ([]models.Order, error) {
	const q = `
        SELECT * FROM orders
        WHERE status = $1 AND created_at < $2
        ORDER BY created_at ASC
        LIMIT $3`

	orders := []models.Order{}
	if err := r.db.Select(&orders, q, string(models.OrderStatusPending), cutoff, limit); err != nil {
		return nil, err
	}
	return orders, nil
}
