package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/openpoi/poi-directory/internal/apperr"
	"github.com/openpoi/poi-directory/internal/repository"
)

// POIPublicHandler serves the API-key-protected read endpoints: filtered
// search and single-POI fetch.  Rate limiting runs upstream.
type POIPublicHandler struct {
	POIs *repository.POIRepo
}

func NewPOIPublicHandler(p *repository.POIRepo) *POIPublicHandler {
	return &POIPublicHandler{POIs: p}
}

// Search translates query parameters into a planned search.  Filters:
// name (substring, case-insensitive), province/category (exact),
// has_image/has_website (booleans), one bounding box (all four of
// min_lat/min_lon/max_lat/max_lon) and one radius filter (all three of
// center_lat/center_lon/radius_km).  Results are ordered by name and
// paginated with per_page capped at 100.
func (h *POIPublicHandler) Search(c echo.Context) error {
	q, err := parseSearchQuery(c)
	if err != nil {
		return err
	}
	q.Normalize()

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	items, total, err := h.POIs.Search(ctx, q)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrInvalidBBox):
			return apperr.BadRequest("QUERY_INVALID_BBOX", "bounding box invalid: min latitude/longitude must not exceed max")
		case errors.Is(err, repository.ErrInvalidRadius):
			return apperr.BadRequest("QUERY_INVALID_RADIUS", "radius must be greater than zero")
		default:
			return apperr.Internal(err)
		}
	}

	return success(c, http.StatusOK, "", echo.Map{
		"pois":     items,
		"total":    total,
		"page":     q.Page,
		"pages":    q.Pages(total),
		"per_page": q.PerPage,
	})
}

// GetPublic returns a single POI by id for API-key callers.
func (h *POIPublicHandler) GetPublic(c echo.Context) error {
	id, err := poiIDParam(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	poi, err := h.POIs.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("POI_NOT_FOUND", "POI not found")
		}
		return apperr.Internal(err)
	}
	return success(c, http.StatusOK, "", echo.Map{"poi": poi})
}

// parseSearchQuery builds the search query from URL parameters.  A spatial
// filter only takes effect when all of its parameters are present, the
// same contract as the original API.
func parseSearchQuery(c echo.Context) (repository.POISearchQuery, error) {
	q := repository.POISearchQuery{
		Name:     strings.TrimSpace(c.QueryParam("name")),
		Province: strings.TrimSpace(c.QueryParam("province")),
		Category: strings.TrimSpace(c.QueryParam("category")),
	}

	var err error
	if q.HasImage, err = boolParam(c, "has_image"); err != nil {
		return q, err
	}
	if q.HasWebsite, err = boolParam(c, "has_website"); err != nil {
		return q, err
	}

	minLat, e1 := floatParam(c, "min_lat")
	minLon, e2 := floatParam(c, "min_lon")
	maxLat, e3 := floatParam(c, "max_lat")
	maxLon, e4 := floatParam(c, "max_lon")
	if err := firstErr(e1, e2, e3, e4); err != nil {
		return q, err
	}
	if minLat != nil && minLon != nil && maxLat != nil && maxLon != nil {
		q.BBox = &repository.BoundingBox{
			MinLat: *minLat, MinLon: *minLon,
			MaxLat: *maxLat, MaxLon: *maxLon,
		}
	}

	centerLat, e1 := floatParam(c, "center_lat")
	centerLon, e2 := floatParam(c, "center_lon")
	radiusKM, e3 := floatParam(c, "radius_km")
	if err := firstErr(e1, e2, e3); err != nil {
		return q, err
	}
	if centerLat != nil && centerLon != nil && radiusKM != nil {
		q.Radius = &repository.RadiusFilter{
			CenterLat: *centerLat, CenterLon: *centerLon, RadiusKM: *radiusKM,
		}
	}

	if q.Page, err = intParam(c, "page"); err != nil {
		return q, err
	}
	if q.PerPage, err = intParam(c, "per_page"); err != nil {
		return q, err
	}
	return q, nil
}

func intParam(c echo.Context, name string) (int, error) {
	s := c.QueryParam(name)
	if s == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, apperr.BadRequest("VALIDATION_ERROR", "parameter "+name+" must be an integer")
	}
	return v, nil
}

func floatParam(c echo.Context, name string) (*float64, error) {
	s := c.QueryParam(name)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, apperr.BadRequest("VALIDATION_ERROR", "parameter "+name+" must be a number")
	}
	return &v, nil
}

func boolParam(c echo.Context, name string) (*bool, error) {
	s := c.QueryParam(name)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return nil, apperr.BadRequest("VALIDATION_ERROR", "parameter "+name+" must be true or false")
	}
	return &v, nil
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
