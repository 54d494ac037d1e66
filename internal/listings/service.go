package listings

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/essenza-market/essenza-backend/internal/products"
	"github.com/essenza-market/essenza-backend/internal/profiles"
	"github.com/essenza-market/essenza-backend/pkg/db/models"
	"github.com/essenza-market/essenza-backend/pkg/enums"
	pkgerrors "github.com/essenza-market/essenza-backend/pkg/errors"
	"github.com/essenza-market/essenza-backend/pkg/logger"
	"github.com/essenza-market/essenza-backend/pkg/pagination"
	"github.com/essenza-market/essenza-backend/pkg/storage/cloudinary"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// ServiceParams groups dependencies for the listing service.
type ServiceParams struct {
	ListingRepo       *Repository
	ProfileRepo       *profiles.Repository
	Uploader          cloudinary.Uploader
	TransactionRunner txRunner
	Logger            *logger.Logger
}

// Service exposes the seller-facing listing lifecycle.
type Service interface {
	CreateListing(ctx context.Context, sellerID uuid.UUID, sellerName string, input CreateListingInput, images []ImageUpload) (products.ProductDTO, error)
	GetMyListings(ctx context.Context, sellerID uuid.UUID, status *string, page pagination.Page) (ListingsPageDTO, error)
	GetMyListing(ctx context.Context, sellerID, listingID uuid.UUID) (products.ProductDTO, error)
	UpdateListing(ctx context.Context, sellerID, listingID uuid.UUID, input UpdateListingInput) (products.ProductDTO, error)
	AddImages(ctx context.Context, sellerID, listingID uuid.UUID, images []ImageUpload) (products.ProductDTO, error)
	RemoveImage(ctx context.Context, sellerID, listingID uuid.UUID, index int) (products.ProductDTO, error)
	ActivateListing(ctx context.Context, sellerID, listingID uuid.UUID) (products.ProductDTO, error)
	DeleteListing(ctx context.Context, sellerID, listingID uuid.UUID) error
	DashboardStats(ctx context.Context, sellerID uuid.UUID) (DashboardStatsDTO, error)
}

type service struct {
	listingRepo *Repository
	profileRepo *profiles.Repository
	uploader    cloudinary.Uploader
	txRunner    txRunner
	logg        *logger.Logger
}

func NewService(params ServiceParams) (Service, error) {
	if params.ListingRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "listing repo is required")
	}
	if params.ProfileRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "profile repo is required")
	}
	if params.Uploader == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "uploader is required")
	}
	if params.TransactionRunner == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transaction runner is required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "logger is required")
	}
	return &service{
		listingRepo: params.ListingRepo,
		profileRepo: params.ProfileRepo,
		uploader:    params.Uploader,
		txRunner:    params.TransactionRunner,
		logg:        params.Logger,
	}, nil
}

// CreateListing uploads the gallery, persists the listing in moderation and
// bumps the seller's product counter.
func (s *service) CreateListing(ctx context.Context, sellerID uuid.UUID, sellerName string, input CreateListingInput, images []ImageUpload) (products.ProductDTO, error) {
	if sellerID == uuid.Nil {
		return products.ProductDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "seller id is required")
	}
	if input.Price.LessThanOrEqual(decimal.Zero) {
		return products.ProductDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "price must be positive")
	}
	if len(images) == 0 {
		return products.ProductDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "at least one image is required")
	}
	if len(images) > MaxImages {
		return products.ProductDTO{}, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("at most %d images are allowed", MaxImages))
	}

	category, err := enums.ParseProductCategory(input.Category)
	if err != nil {
		return products.ProductDTO{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category")
	}
	condition, err := enums.ParseProductCondition(input.Condition)
	if err != nil {
		return products.ProductDTO{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid condition")
	}
	concentration, err := enums.ParseConcentration(input.Concentration)
	if err != nil {
		return products.ProductDTO{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid concentration")
	}

	originalPrice := input.OriginalPrice
	if originalPrice.LessThanOrEqual(decimal.Zero) {
		originalPrice = input.Price
	}

	urls, err := s.uploadAll(ctx, images)
	if err != nil {
		return products.ProductDTO{}, err
	}

	product := &models.Product{
		Name:            strings.TrimSpace(input.Name),
		Description:     strings.TrimSpace(input.Description),
		LongDescription: strings.TrimSpace(input.LongDescription),
		Price:           input.Price,
		OriginalPrice:   originalPrice,
		Category:        category,
		Size:            input.Size,
		Stock:           input.Stock,
		Images:          pq.StringArray(urls),
		SellerID:        &sellerID,
		SellerName:      sellerName,
		Condition:       condition,
		Brand:           strings.TrimSpace(input.Brand),
		Notes:           pq.StringArray(input.Notes),
		Concentration:   concentration,
		ReleaseYear:     input.ReleaseYear,
		IsApproved:      false,
		Status:          enums.ListingStatusPending,
	}

	err = s.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.listingRepo.WithTx(tx).Create(ctx, product); err != nil {
			return err
		}
		return s.profileRepo.WithTx(tx).AdjustTotalProducts(ctx, sellerID, 1)
	})
	if err != nil {
		s.destroyAll(ctx, urls)
		return products.ProductDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create listing")
	}
	return products.FromModel(product), nil
}

// GetMyListings pages through the seller's own listings.
func (s *service) GetMyListings(ctx context.Context, sellerID uuid.UUID, status *string, page pagination.Page) (ListingsPageDTO, error) {
	if sellerID == uuid.Nil {
		return ListingsPageDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "seller id is required")
	}
	var statusFilter *enums.ListingStatus
	if status != nil && *status != "" {
		parsed, err := enums.ParseListingStatus(*status)
		if err != nil {
			return ListingsPageDTO{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter")
		}
		statusFilter = &parsed
	}

	items, total, err := s.listingRepo.ListBySeller(ctx, sellerID, statusFilter, page)
	if err != nil {
		return ListingsPageDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list listings")
	}
	return ListingsPageDTO{
		Products:    products.FromModels(items),
		TotalPages:  pagination.TotalPages(total, page.Limit),
		CurrentPage: page.Number,
		Total:       total,
	}, nil
}

// GetMyListing returns one of the seller's own listings regardless of status.
func (s *service) GetMyListing(ctx context.Context, sellerID, listingID uuid.UUID) (products.ProductDTO, error) {
	listing, err := s.loadOwned(ctx, sellerID, listingID)
	if err != nil {
		return products.ProductDTO{}, err
	}
	return products.FromModel(listing), nil
}

// UpdateListing applies a partial update. Updating a published listing pulls
// it back into moderation; sold listings are immutable.
func (s *service) UpdateListing(ctx context.Context, sellerID, listingID uuid.UUID, input UpdateListingInput) (products.ProductDTO, error) {
	listing, err := s.loadOwned(ctx, sellerID, listingID)
	if err != nil {
		return products.ProductDTO{}, err
	}
	if listing.Status == enums.ListingStatusSold {
		return products.ProductDTO{}, pkgerrors.New(pkgerrors.CodeStateConflict, "sold listings cannot be updated")
	}

	fields := map[string]any{}
	if input.Name != nil {
		fields["name"] = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		fields["description"] = strings.TrimSpace(*input.Description)
	}
	if input.LongDescription != nil {
		fields["long_description"] = strings.TrimSpace(*input.LongDescription)
	}
	if input.Price != nil {
		if input.Price.LessThanOrEqual(decimal.Zero) {
			return products.ProductDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "price must be positive")
		}
		fields["price"] = *input.Price
	}
	if input.OriginalPrice != nil {
		fields["original_price"] = *input.OriginalPrice
	}
	if input.Category != nil {
		category, err := enums.ParseProductCategory(*input.Category)
		if err != nil {
			return products.ProductDTO{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category")
		}
		fields["category"] = category
	}
	if input.Size != nil {
		fields["size"] = *input.Size
	}
	if input.Stock != nil {
		if *input.Stock < 0 {
			return products.ProductDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "stock cannot be negative")
		}
		fields["stock"] = *input.Stock
	}
	if input.Condition != nil {
		condition, err := enums.ParseProductCondition(*input.Condition)
		if err != nil {
			return products.ProductDTO{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid condition")
		}
		fields["condition"] = condition
	}
	if input.Brand != nil {
		fields["brand"] = strings.TrimSpace(*input.Brand)
	}
	if input.Notes != nil {
		fields["notes"] = pq.StringArray(input.Notes)
	}
	if input.Concentration != nil {
		concentration, err := enums.ParseConcentration(*input.Concentration)
		if err != nil {
			return products.ProductDTO{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid concentration")
		}
		fields["concentration"] = concentration
	}
	if input.ReleaseYear != nil {
		fields["release_year"] = *input.ReleaseYear
	}
	if len(fields) == 0 {
		return products.FromModel(listing), nil
	}

	// Any content change re-enters moderation.
	switch listing.Status {
	case enums.ListingStatusApproved:
		next, err := Transition(listing.Status, EventRevise)
		if err != nil {
			return products.ProductDTO{}, err
		}
		fields["status"] = next
		fields["is_approved"] = false
	case enums.ListingStatusDraft, enums.ListingStatusRejected:
		next, err := Transition(listing.Status, EventSubmit)
		if err != nil {
			return products.ProductDTO{}, err
		}
		fields["status"] = next
		fields["is_approved"] = false
	}

	if err := s.listingRepo.UpdateFields(ctx, listingID, fields); err != nil {
		return products.ProductDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update listing")
	}
	return s.reload(ctx, listingID)
}

// AddImages appends uploaded images to the gallery, capped at MaxImages.
func (s *service) AddImages(ctx context.Context, sellerID, listingID uuid.UUID, images []ImageUpload) (products.ProductDTO, error) {
	listing, err := s.loadOwned(ctx, sellerID, listingID)
	if err != nil {
		return products.ProductDTO{}, err
	}
	if listing.Status == enums.ListingStatusSold {
		return products.ProductDTO{}, pkgerrors.New(pkgerrors.CodeStateConflict, "sold listings cannot be updated")
	}
	if len(images) == 0 {
		return products.ProductDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "no images supplied")
	}
	if len(listing.Images)+len(images) > MaxImages {
		return products.ProductDTO{}, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("at most %d images are allowed", MaxImages))
	}

	urls, err := s.uploadAll(ctx, images)
	if err != nil {
		return products.ProductDTO{}, err
	}

	merged := append(append(pq.StringArray{}, listing.Images...), urls...)
	if err := s.listingRepo.UpdateFields(ctx, listingID, map[string]any{"images": merged}); err != nil {
		s.destroyAll(ctx, urls)
		return products.ProductDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update listing images")
	}
	return s.reload(ctx, listingID)
}

// RemoveImage drops one gallery entry by index. The last image cannot be
// removed.
func (s *service) RemoveImage(ctx context.Context, sellerID, listingID uuid.UUID, index int) (products.ProductDTO, error) {
	listing, err := s.loadOwned(ctx, sellerID, listingID)
	if err != nil {
		return products.ProductDTO{}, err
	}
	if listing.Status == enums.ListingStatusSold {
		return products.ProductDTO{}, pkgerrors.New(pkgerrors.CodeStateConflict, "sold listings cannot be updated")
	}
	if index < 0 || index >= len(listing.Images) {
		return products.ProductDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "image index out of range")
	}
	if len(listing.Images) == 1 {
		return products.ProductDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "a listing needs at least one image")
	}

	removed := listing.Images[index]
	remaining := append(pq.StringArray{}, listing.Images[:index]...)
	remaining = append(remaining, listing.Images[index+1:]...)

	if err := s.listingRepo.UpdateFields(ctx, listingID, map[string]any{"images": remaining}); err != nil {
		return products.ProductDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update listing images")
	}
	s.destroyAll(ctx, []string{removed})
	return s.reload(ctx, listingID)
}

// ActivateListing publishes a pending listing.
func (s *service) ActivateListing(ctx context.Context, sellerID, listingID uuid.UUID) (products.ProductDTO, error) {
	listing, err := s.loadOwned(ctx, sellerID, listingID)
	if err != nil {
		return products.ProductDTO{}, err
	}
	next, err := Transition(listing.Status, EventActivate)
	if err != nil {
		return products.ProductDTO{}, err
	}
	fields := map[string]any{"status": next, "is_approved": true}
	if err := s.listingRepo.UpdateFields(ctx, listingID, fields); err != nil {
		return products.ProductDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "activate listing")
	}
	return s.reload(ctx, listingID)
}

// DeleteListing removes a listing that never sold, its images included.
func (s *service) DeleteListing(ctx context.Context, sellerID, listingID uuid.UUID) error {
	listing, err := s.loadOwned(ctx, sellerID, listingID)
	if err != nil {
		return err
	}
	if listing.SoldCount > 0 {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "listings with sales cannot be deleted")
	}

	err = s.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.listingRepo.WithTx(tx).Delete(ctx, listingID); err != nil {
			return err
		}
		return s.profileRepo.WithTx(tx).AdjustTotalProducts(ctx, sellerID, -1)
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete listing")
	}
	s.destroyAll(ctx, listing.Images)
	return nil
}

// DashboardStats summarizes the seller's listing activity.
func (s *service) DashboardStats(ctx context.Context, sellerID uuid.UUID) (DashboardStatsDTO, error) {
	if sellerID == uuid.Nil {
		return DashboardStatsDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "seller id is required")
	}
	row, err := s.listingRepo.DashboardStats(ctx, sellerID)
	if err != nil {
		return DashboardStatsDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load dashboard stats")
	}
	return DashboardStatsDTO{
		TotalListings:    row.TotalListings,
		ActiveListings:   row.ActiveListings,
		PendingListings:  row.PendingListings,
		SoldListings:     row.SoldListings,
		TotalViews:       row.TotalViews,
		TotalItemsSold:   row.TotalItemsSold,
		EstimatedRevenue: row.EstimatedRevenue,
	}, nil
}

// loadOwned resolves a listing the caller may manage. A listing owned by
// someone else yields Forbidden, a missing one NotFound.
func (s *service) loadOwned(ctx context.Context, sellerID, listingID uuid.UUID) (*models.Product, error) {
	if sellerID == uuid.Nil || listingID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "seller id and listing id are required")
	}
	listing, err := s.listingRepo.FindOwned(ctx, listingID, sellerID)
	if err == nil {
		return listing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load listing")
	}
	if _, err := s.listingRepo.FindByID(ctx, listingID); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "not authorized to manage this listing")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load listing")
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "listing not found")
}

func (s *service) reload(ctx context.Context, listingID uuid.UUID) (products.ProductDTO, error) {
	listing, err := s.listingRepo.FindByID(ctx, listingID)
	if err != nil {
		return products.ProductDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload listing")
	}
	return products.FromModel(listing), nil
}

// uploadAll pushes every image to the store, cleaning up on partial failure.
func (s *service) uploadAll(ctx context.Context, images []ImageUpload) ([]string, error) {
	urls := make([]string, 0, len(images))
	for _, img := range images {
		result, err := s.uploader.Upload(ctx, img.Name, img.Content)
		if err != nil {
			s.destroyAll(ctx, urls)
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upload image")
		}
		urls = append(urls, result.SecureURL)
	}
	return urls, nil
}

// destroyAll removes stored images best-effort; failures are logged, not
// surfaced.
func (s *service) destroyAll(ctx context.Context, urls []string) {
	for _, url := range urls {
		publicID := publicIDFromURL(url)
		if publicID == "" {
			continue
		}
		if err := s.uploader.Destroy(ctx, publicID); err != nil {
			s.logg.Warn(s.logg.WithField(ctx, "public_id", publicID), "failed to destroy stored image")
		}
	}
}

// publicIDFromURL extracts the Cloudinary public id from a delivery URL, e.g.
// https://res.cloudinary.com/demo/image/upload/v123/folder/name.jpg yields
// folder/name.
func publicIDFromURL(url string) string {
	marker := "/upload/"
	idx := strings.Index(url, marker)
	if idx < 0 {
		return ""
	}
	rest := url[idx+len(marker):]
	if slash := strings.Index(rest, "/"); slash >= 0 && strings.HasPrefix(rest, "v") {
		version := rest[1:slash]
		if version != "" && strings.Trim(version, "0123456789") == "" {
			rest = rest[slash+1:]
		}
	}
	if dot := strings.LastIndex(rest, "."); dot > 0 {
		rest = rest[:dot]
	}
	return rest
}
