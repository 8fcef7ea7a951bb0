package transactions

import (
	"context"

	"github.com/edupay-labs/edupay-backend/pkg/config"
	pkgerrors "github.com/edupay-labs/edupay-backend/pkg/errors"
	"github.com/edupay-labs/edupay-backend/pkg/pagination"
)

// ListQuery is the validated query surface of the all-transactions listing.
type ListQuery struct {
	Page     pagination.Params
	Sort     string
	Order    string
	Status   string
	SchoolID string
	Search   string
}

// ListResult pairs a page of transactions with its pagination envelope.
type ListResult struct {
	Transactions []Transaction   `json:"transactions"`
	Pagination   pagination.Meta `json:"pagination"`
}

// ServiceParams groups dependencies for the transactions service.
type ServiceParams struct {
	Repo   Repository
	Config config.TransactionsConfig
}

// Service answers the dashboard's read queries. Pure reads, no gateway calls.
type Service struct {
	repo Repository
	cfg  config.TransactionsConfig
}

// NewService builds a transactions service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "transactions repo required")
	}
	return &Service{repo: params.Repo, cfg: params.Config}, nil
}

func (s *Service) List(ctx context.Context, query ListQuery) (*ListResult, error) {
	page := query.Page.Normalize(s.cfg.DefaultLimit, s.cfg.MaxLimit)
	filter := ListFilter{
		Status:   query.Status,
		SchoolID: query.SchoolID,
		Search:   query.Search,
		Sort:     query.Sort,
		Order:    query.Order,
	}

	rows, meta, err := s.repo.List(ctx, filter, page)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list transactions")
	}
	return &ListResult{Transactions: rows, Pagination: meta}, nil
}

// ListBySchool lists one school's transactions, newest payment first. It
// carries its own default page size, independent of the all-transactions one.
func (s *Service) ListBySchool(ctx context.Context, schoolID string, page pagination.Params) (*ListResult, error) {
	if schoolID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "school id required")
	}
	page = page.Normalize(s.cfg.SchoolDefaultLimit, s.cfg.MaxLimit)

	rows, meta, err := s.repo.ListBySchool(ctx, schoolID, page)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list school transactions")
	}
	return &ListResult{Transactions: rows, Pagination: meta}, nil
}

// CheckStatus resolves one transaction by any of its identifiers.
func (s *Service) CheckStatus(ctx context.Context, key string) (*Transaction, error) {
	if key == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transaction identifier required")
	}

	row, err := s.repo.FindByFlexibleKey(ctx, key)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "look up transaction")
	}
	if row == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "transaction not found")
	}
	return row, nil
}
