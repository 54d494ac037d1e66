package products

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgerrors "github.com/essenza-market/essenza-backend/pkg/errors"
	"github.com/essenza-market/essenza-backend/pkg/pagination"
)

const featuredLimit = 8

// ServiceParams groups dependencies for the catalog service.
type ServiceParams struct {
	ProductRepo *Repository
}

// Service exposes the public catalog surface.
type Service interface {
	GetProducts(ctx context.Context, filter ListFilter) ([]ProductDTO, error)
	GetProduct(ctx context.Context, id uuid.UUID) (ProductDTO, error)
	SearchProducts(ctx context.Context, filter SearchFilter) (SearchPageDTO, error)
	GetNewArrivals(ctx context.Context) ([]ProductDTO, error)
	GetPopularProducts(ctx context.Context) ([]ProductDTO, error)
}

type service struct {
	productRepo *Repository
}

// NewService builds a catalog service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.ProductRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product repo is required")
	}
	return &service{productRepo: params.ProductRepo}, nil
}

// GetProducts lists the catalog with optional filters.
func (s *service) GetProducts(ctx context.Context, filter ListFilter) ([]ProductDTO, error) {
	items, err := s.productRepo.List(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	return FromModels(items), nil
}

// GetProduct loads one product and records the view.
func (s *service) GetProduct(ctx context.Context, id uuid.UUID) (ProductDTO, error) {
	if id == uuid.Nil {
		return ProductDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	product, err := s.productRepo.IncrementViews(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ProductDTO{}, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "product not found")
		}
		return ProductDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return FromModel(product), nil
}

// SearchProducts runs the paginated storefront search.
func (s *service) SearchProducts(ctx context.Context, filter SearchFilter) (SearchPageDTO, error) {
	items, total, err := s.productRepo.Search(ctx, filter)
	if err != nil {
		return SearchPageDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "search products")
	}
	return SearchPageDTO{
		Products:      FromModels(items),
		TotalPages:    pagination.TotalPages(total, filter.Page.Limit),
		CurrentPage:   filter.Page.Number,
		TotalProducts: total,
		SearchQuery:   filter.Query,
	}, nil
}

// GetNewArrivals returns the newest flagged arrivals.
func (s *service) GetNewArrivals(ctx context.Context) ([]ProductDTO, error) {
	items, err := s.productRepo.ListFeatured(ctx, "is_new_arrival", featuredLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list new arrivals")
	}
	return FromModels(items), nil
}

// GetPopularProducts returns the popular-flagged products.
func (s *service) GetPopularProducts(ctx context.Context) ([]ProductDTO, error) {
	items, err := s.productRepo.ListFeatured(ctx, "is_popular", featuredLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list popular products")
	}
	return FromModels(items), nil
}
