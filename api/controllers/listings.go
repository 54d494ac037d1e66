package controllers

import (
	"context"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/essenza-market/essenza-backend/api/middleware"
	"github.com/essenza-market/essenza-backend/api/responses"
	"github.com/essenza-market/essenza-backend/api/validators"
	listingsvc "github.com/essenza-market/essenza-backend/internal/listings"
	"github.com/essenza-market/essenza-backend/pkg/db/models"
	pkgerrors "github.com/essenza-market/essenza-backend/pkg/errors"
	"github.com/essenza-market/essenza-backend/pkg/logger"
	"github.com/essenza-market/essenza-backend/pkg/pagination"
)

// maxListingFormBytes bounds a whole multipart listing submission.
const maxListingFormBytes = (listingsvc.MaxImages + 1) * listingsvc.MaxImageBytes

type sellerDirectory interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// CreateListing accepts a multipart submission: a JSON data part plus up
// to five image files.
func CreateListing(svc listingsvc.Service, sellers sellerDirectory, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil || sellers == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "listing service unavailable"))
			return
		}

		sellerID := middleware.UserIDFromContext(r.Context())

		input, images, cleanup, err := parseListingForm(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		defer cleanup()

		seller, err := sellers.FindByID(r.Context(), sellerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "resolve seller"))
			return
		}

		listing, err := svc.CreateListing(r.Context(), sellerID, seller.Name, *input, images)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, listing)
	}
}

// GetMyListings lists the seller's own products with an optional status filter.
func GetMyListings(svc listingsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "listing service unavailable"))
			return
		}

		page, err := validators.ParseQueryInt(r, "page", 1, 1, 10000)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", 12, 1, 100)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var status *string
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" && !strings.EqualFold(raw, "all") {
			status = &raw
		}

		result, err := svc.GetMyListings(r.Context(), middleware.UserIDFromContext(r.Context()), status, pagination.Normalize(page, limit))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// GetMyListing serves one of the seller's own products in any status.
func GetMyListing(svc listingsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "listing service unavailable"))
			return
		}

		listingID, err := validators.ParseUUID(chi.URLParam(r, "productId"), "product id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		listing, err := svc.GetMyListing(r.Context(), middleware.UserIDFromContext(r.Context()), listingID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, listing)
	}
}

// UpdateListing applies a partial update; edits to approved listings
// re-enter moderation.
func UpdateListing(svc listingsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "listing service unavailable"))
			return
		}

		listingID, err := validators.ParseUUID(chi.URLParam(r, "productId"), "product id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload listingsvc.UpdateListingInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		listing, err := svc.UpdateListing(r.Context(), middleware.UserIDFromContext(r.Context()), listingID, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, listing)
	}
}

// AddListingImages appends uploaded images, capped at the listing maximum.
func AddListingImages(svc listingsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "listing service unavailable"))
			return
		}

		listingID, err := validators.ParseUUID(chi.URLParam(r, "productId"), "product id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		images, cleanup, err := parseImageFiles(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		defer cleanup()

		listing, err := svc.AddImages(r.Context(), middleware.UserIDFromContext(r.Context()), listingID, images)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, listing)
	}
}

// RemoveListingImage drops the image at the given index.
func RemoveListingImage(svc listingsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "listing service unavailable"))
			return
		}

		listingID, err := validators.ParseUUID(chi.URLParam(r, "productId"), "product id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		index, err := validators.ParsePathInt(chi.URLParam(r, "imageIndex"), "image index")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		listing, err := svc.RemoveImage(r.Context(), middleware.UserIDFromContext(r.Context()), listingID, index)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, listing)
	}
}

// ActivateListing moves a pending listing to approved.
func ActivateListing(svc listingsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "listing service unavailable"))
			return
		}

		listingID, err := validators.ParseUUID(chi.URLParam(r, "productId"), "product id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		listing, err := svc.ActivateListing(r.Context(), middleware.UserIDFromContext(r.Context()), listingID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, listing)
	}
}

// DeleteListing removes an unsold listing and its images.
func DeleteListing(svc listingsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "listing service unavailable"))
			return
		}

		listingID, err := validators.ParseUUID(chi.URLParam(r, "productId"), "product id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteListing(r.Context(), middleware.UserIDFromContext(r.Context()), listingID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]bool{"deleted": true})
	}
}

// DashboardStats aggregates the seller's listing counters and revenue.
func DashboardStats(svc listingsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "listing service unavailable"))
			return
		}

		stats, err := svc.DashboardStats(r.Context(), middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, stats)
	}
}

func parseListingForm(r *http.Request) (*listingsvc.CreateListingInput, []listingsvc.ImageUpload, func(), error) {
	if err := r.ParseMultipartForm(maxListingFormBytes); err != nil {
		return nil, nil, func() {}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart form")
	}

	var input listingsvc.CreateListingInput
	if err := validators.DecodeJSONValue(r.FormValue("data"), &input); err != nil {
		return nil, nil, func() {}, err
	}

	images, cleanup, err := openImageFiles(r.MultipartForm)
	if err != nil {
		return nil, nil, cleanup, err
	}
	return &input, images, cleanup, nil
}

func parseImageFiles(r *http.Request) ([]listingsvc.ImageUpload, func(), error) {
	if err := r.ParseMultipartForm(maxListingFormBytes); err != nil {
		return nil, func() {}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart form")
	}
	return openImageFiles(r.MultipartForm)
}

func openImageFiles(form *multipart.Form) ([]listingsvc.ImageUpload, func(), error) {
	var opened []multipart.File
	cleanup := func() {
		for _, f := range opened {
			_ = f.Close()
		}
	}

	if form == nil {
		return nil, cleanup, nil
	}

	headers := form.File["images"]
	if len(headers) > listingsvc.MaxImages {
		return nil, cleanup, pkgerrors.New(pkgerrors.CodeValidation, "too many images")
	}

	images := make([]listingsvc.ImageUpload, 0, len(headers))
	for _, header := range headers {
		if header.Size > listingsvc.MaxImageBytes {
			return nil, cleanup, pkgerrors.New(pkgerrors.CodeValidation, "image exceeds the 5MB limit").WithDetails(map[string]any{"file": header.Filename})
		}
		file, err := header.Open()
		if err != nil {
			return nil, cleanup, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "open uploaded image")
		}
		opened = append(opened, file)
		images = append(images, listingsvc.ImageUpload{Name: header.Filename, Content: file})
	}
	return images, cleanup, nil
}
