package transactions

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/edupay-labs/edupay-backend/pkg/pagination"
)

// projection is the shared SELECT list. Column expressions stay portable
// across postgres and sqlite so repo tests can run against an in-memory DB.
// payment_time is selected raw and coalesced in Go; see resolvePaymentTime.
const projection = `
payment_statuses.id AS id,
payment_statuses.collect_id AS collect_id,
orders.school_id AS school_id,
orders.trustee_id AS trustee_id,
orders.gateway_name AS gateway,
payment_statuses.order_amount AS order_amount,
payment_statuses.transaction_amount AS transaction_amount,
payment_statuses.status AS status,
COALESCE(NULLIF(payment_statuses.custom_order_id, ''), payment_statuses.collect_request_id) AS custom_order_id,
payment_statuses.collect_request_id AS collect_request_id,
payment_statuses.payment_time AS payment_time,
payment_statuses.payment_mode AS payment_mode,
payment_statuses.payment_details AS payment_details,
payment_statuses.bank_reference AS bank_reference,
payment_statuses.payment_message AS payment_message,
payment_statuses.error_message AS error_message,
payment_statuses.created_at AS created_at,
payment_statuses.updated_at AS updated_at`

// sortColumns whitelists the sortable fields and maps them onto the same
// expressions the projection uses, so sorting by a coalesced field sees the
// coalesced value.
var sortColumns = map[string]string{
	"payment_time":       "COALESCE(payment_statuses.payment_time, payment_statuses.created_at)",
	"order_amount":       "payment_statuses.order_amount",
	"transaction_amount": "payment_statuses.transaction_amount",
	"status":             "payment_statuses.status",
	"custom_order_id":    "COALESCE(NULLIF(payment_statuses.custom_order_id, ''), payment_statuses.collect_request_id)",
	"collect_request_id": "payment_statuses.collect_request_id",
	"created_at":         "payment_statuses.created_at",
	"updated_at":         "payment_statuses.updated_at",
	"school_id":          "orders.school_id",
	"gateway":            "orders.gateway_name",
}

const defaultSortField = "payment_time"

// ListFilter carries the filter, search, and ordering axes of the list query.
// Pagination is handled separately by the caller.
type ListFilter struct {
	Status   string
	SchoolID string
	Search   string
	Sort     string
	Order    string
}

// matchKind ranks the flexible-key lookup predicates. Lower values win when a
// key happens to match more than one identifier column.
type matchKind int

const (
	matchCollectRequestID matchKind = iota
	matchCustomOrderID
	matchCollectID
	matchStatusID
)

type keyMatcher struct {
	kind   matchKind
	column string
}

// flexibleKeyMatchers is the ranked predicate for the status-by-key lookup.
// UUID columns are cast to text so a single string key can probe all four.
var flexibleKeyMatchers = []keyMatcher{
	{kind: matchCollectRequestID, column: "payment_statuses.collect_request_id"},
	{kind: matchCustomOrderID, column: "payment_statuses.custom_order_id"},
	{kind: matchCollectID, column: "CAST(payment_statuses.collect_id AS TEXT)"},
	{kind: matchStatusID, column: "CAST(payment_statuses.id AS TEXT)"},
}

// Repository is the read-only query surface over payment statuses joined to
// orders. It never mutates either table.
type Repository interface {
	List(ctx context.Context, filter ListFilter, page pagination.Params) ([]Transaction, pagination.Meta, error)
	ListBySchool(ctx context.Context, schoolID string, page pagination.Params) ([]Transaction, pagination.Meta, error)
	FindByFlexibleKey(ctx context.Context, key string) (*Transaction, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a transactions repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// baseListQuery applies the status filter before the join, then joins the
// owning order and applies the order-side filters. Building it fresh for the
// count and the page keeps the two queries independent.
func (r *repository) baseListQuery(ctx context.Context, filter ListFilter) *gorm.DB {
	query := r.db.WithContext(ctx).Table("payment_statuses")

	if filter.Status != "" {
		query = query.Where("payment_statuses.status = ?", filter.Status)
	}

	query = query.Joins("INNER JOIN orders ON orders.id = payment_statuses.collect_id")

	if filter.SchoolID != "" {
		query = query.Where("orders.school_id = ?", filter.SchoolID)
	}
	if filter.Search != "" {
		needle := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where(
			"LOWER(CAST(payment_statuses.collect_id AS TEXT)) LIKE ? OR LOWER(orders.gateway_name) LIKE ? OR LOWER(payment_statuses.collect_request_id) LIKE ?",
			needle, needle, needle,
		)
	}
	return query
}

func orderClause(sort, direction string) string {
	column, ok := sortColumns[sort]
	if !ok {
		column = sortColumns[defaultSortField]
	}
	dir := "DESC"
	if strings.EqualFold(direction, "asc") {
		dir = "ASC"
	}
	// id tiebreaker keeps page boundaries stable under equal sort keys
	return fmt.Sprintf("%s %s, payment_statuses.id ASC", column, dir)
}

func (r *repository) List(ctx context.Context, filter ListFilter, page pagination.Params) ([]Transaction, pagination.Meta, error) {
	var total int64
	if err := r.baseListQuery(ctx, filter).Count(&total).Error; err != nil {
		return nil, pagination.Meta{}, err
	}

	rows := []Transaction{}
	err := r.baseListQuery(ctx, filter).
		Select(projection).
		Order(orderClause(filter.Sort, filter.Order)).
		Offset(page.Offset()).
		Limit(page.Limit).
		Scan(&rows).Error
	if err != nil {
		return nil, pagination.Meta{}, err
	}
	for i := range rows {
		rows[i].resolvePaymentTime()
	}

	return rows, pagination.NewMeta(page, total), nil
}

func (r *repository) ListBySchool(ctx context.Context, schoolID string, page pagination.Params) ([]Transaction, pagination.Meta, error) {
	filter := ListFilter{SchoolID: schoolID, Sort: defaultSortField, Order: "desc"}
	return r.List(ctx, filter, page)
}

// FindByFlexibleKey matches one identifier string against the ranked matcher
// columns as a single OR predicate, preferring the higher-ranked column when
// several match. The order join is a LEFT JOIN here: a status row whose order
// is missing must still be returned.
func (r *repository) FindByFlexibleKey(ctx context.Context, key string) (*Transaction, error) {
	predicates := make([]string, 0, len(flexibleKeyMatchers))
	rankCases := make([]string, 0, len(flexibleKeyMatchers))
	args := make([]any, 0, len(flexibleKeyMatchers))
	rankArgs := make([]any, 0, len(flexibleKeyMatchers))
	for _, m := range flexibleKeyMatchers {
		predicates = append(predicates, m.column+" = ?")
		rankCases = append(rankCases, fmt.Sprintf("WHEN %s = ? THEN %d", m.column, m.kind))
		args = append(args, key)
		rankArgs = append(rankArgs, key)
	}
	rankExpr := "CASE " + strings.Join(rankCases, " ") + " ELSE 99 END"

	var row Transaction
	result := r.db.WithContext(ctx).
		Table("payment_statuses").
		Select(projection).
		Joins("LEFT JOIN orders ON orders.id = payment_statuses.collect_id").
		Where(strings.Join(predicates, " OR "), args...).
		Clauses(clause.OrderBy{
			Expression: clause.Expr{SQL: rankExpr, Vars: rankArgs, WithoutParentheses: true},
		}).
		Limit(1).
		Scan(&row)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}
	row.resolvePaymentTime()
	return &row, nil
}
