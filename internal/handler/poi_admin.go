package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/openpoi/poi-directory/internal/apperr"
	"github.com/openpoi/poi-directory/internal/middleware"
	"github.com/openpoi/poi-directory/internal/model"
	"github.com/openpoi/poi-directory/internal/queue"
	"github.com/openpoi/poi-directory/internal/repository"
	"github.com/openpoi/poi-directory/internal/service"
)

// POIAdminHandler implements the admin-only POI mutations.  The role gate
// runs upstream; every principal reaching these handlers is an admin.
// Events may be nil, in which case mutations simply go unannounced.
type POIAdminHandler struct {
	POIs   *repository.POIRepo
	Events *service.Publisher
}

func NewPOIAdminHandler(p *repository.POIRepo, events *service.Publisher) *POIAdminHandler {
	return &POIAdminHandler{POIs: p, Events: events}
}

type createPOIReq struct {
	Name        string  `json:"name"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Address     string  `json:"address"`
	Province    string  `json:"province"`
	City        string  `json:"city"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
	HasImage    bool    `json:"has_image"`
	ImageURL    string  `json:"image_url"`
	HasWebsite  bool    `json:"has_website"`
	WebsiteURL  string  `json:"website_url"`
}

func validCoords(lat, lon float64) bool {
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

// Create inserts a new POI, stamping the acting admin as its creator.
func (h *POIAdminHandler) Create(c echo.Context) error {
	var req createPOIReq
	if err := c.Bind(&req); err != nil {
		return apperr.BadRequest("VALIDATION_ERROR", "invalid request body")
	}
	if req.Name == "" {
		return apperr.BadRequest("VALIDATION_ERROR", "name is required")
	}
	if !validCoords(req.Latitude, req.Longitude) {
		return apperr.BadRequest("VALIDATION_ERROR", "latitude must be in [-90,90] and longitude in [-180,180]")
	}

	p, _ := middleware.CurrentPrincipal(c)
	actorID := p.User.ID

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	poi, err := h.POIs.Create(ctx, model.POI{
		Name:        req.Name,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		Address:     req.Address,
		Province:    req.Province,
		City:        req.City,
		Category:    req.Category,
		Description: req.Description,
		HasImage:    req.HasImage,
		ImageURL:    req.ImageURL,
		HasWebsite:  req.HasWebsite,
		WebsiteURL:  req.WebsiteURL,
		CreatedBy:   &actorID,
	})
	if err != nil {
		return apperr.Internal(err)
	}

	h.publishChange(ctx, queue.ActionCreated, poi, actorID)
	return success(c, http.StatusCreated, "POI created", echo.Map{"poi": poi})
}

// Update applies a partial patch.  The patch structure is allow-listed:
// unknown JSON keys are dropped during decoding and can never touch the
// store.  Coordinates are re-validated when present.
func (h *POIAdminHandler) Update(c echo.Context) error {
	id, err := poiIDParam(c)
	if err != nil {
		return err
	}
	var patch repository.POIPatch
	if err := c.Bind(&patch); err != nil {
		return apperr.BadRequest("VALIDATION_ERROR", "invalid request body")
	}
	if patch.Name != nil && *patch.Name == "" {
		return apperr.BadRequest("VALIDATION_ERROR", "name must not be empty")
	}
	if patch.Latitude != nil && (*patch.Latitude < -90 || *patch.Latitude > 90) {
		return apperr.BadRequest("VALIDATION_ERROR", "latitude must be in [-90,90]")
	}
	if patch.Longitude != nil && (*patch.Longitude < -180 || *patch.Longitude > 180) {
		return apperr.BadRequest("VALIDATION_ERROR", "longitude must be in [-180,180]")
	}

	p, _ := middleware.CurrentPrincipal(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	poi, err := h.POIs.Update(ctx, id, patch)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("POI_NOT_FOUND", "POI not found")
		}
		return apperr.Internal(err)
	}

	h.publishChange(ctx, queue.ActionUpdated, poi, p.User.ID)
	return success(c, http.StatusOK, "POI updated", echo.Map{"poi": poi})
}

// Delete removes a POI permanently and immediately.
func (h *POIAdminHandler) Delete(c echo.Context) error {
	id, err := poiIDParam(c)
	if err != nil {
		return err
	}
	p, _ := middleware.CurrentPrincipal(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	poi, err := h.POIs.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("POI_NOT_FOUND", "POI not found")
		}
		return apperr.Internal(err)
	}
	if err := h.POIs.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("POI_NOT_FOUND", "POI not found")
		}
		return apperr.Internal(err)
	}

	h.publishChange(ctx, queue.ActionDeleted, poi, p.User.ID)
	return c.NoContent(http.StatusNoContent)
}

// publishChange emits a poi.changed event.  Publishing is best effort; a
// broker outage must not fail the mutation that already committed.
func (h *POIAdminHandler) publishChange(ctx context.Context, action string, poi model.POI, actorID uint64) {
	if err := h.Events.PublishPOIChanged(ctx, queue.POIChangedEvent{
		Action:     action,
		POIID:      poi.ID,
		Name:       poi.Name,
		ActorID:    actorID,
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	}); err != nil {
		log.Printf("publish poi.changed (%s, id=%d): %v", action, poi.ID, err)
	}
}

func poiIDParam(c echo.Context) (uint64, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.BadRequest("VALIDATION_ERROR", "invalid POI id")
	}
	return id, nil
}
