package repository

import (
	"context"
	"errors"
	"math"
	"strings"

	"github.com/openpoi/poi-directory/internal/model"
)

// Search filter validation failures.  Handlers translate these into 400
// responses with their own error codes.
var (
	ErrInvalidBBox   = errors.New("invalid bounding box: min must not exceed max")
	ErrInvalidRadius = errors.New("invalid radius: must be greater than zero")
)

// Pagination defaults and the hard cap applied regardless of what the
// caller asks for.
const (
	DefaultPerPage = 10
	MaxPerPage     = 100
)

// kmPerDegree is the approximate surface distance of one degree of
// latitude.  Longitude degrees shrink by cos(latitude).
const kmPerDegree = 111.0

// BoundingBox is a rectangular lat/lon region filter.
type BoundingBox struct {
	MinLat, MinLon float64
	MaxLat, MaxLon float64
}

// Validate rejects boxes whose minimum exceeds their maximum.
func (b BoundingBox) Validate() error {
	if b.MinLat > b.MaxLat || b.MinLon > b.MaxLon {
		return ErrInvalidBBox
	}
	return nil
}

// RadiusFilter approximates a circle of RadiusKM around a center point.
type RadiusFilter struct {
	CenterLat, CenterLon float64
	RadiusKM             float64
}

// Validate rejects non-positive radii.
func (r RadiusFilter) Validate() error {
	if r.RadiusKM <= 0 {
		return ErrInvalidRadius
	}
	return nil
}

// Bounds converts the radius into a degree-based rectangle.  This is a
// rectangular approximation, not a great-circle distance: the latitude
// half-width is km/111 and the longitude half-width divides by
// 111*cos(lat).  At latitude exactly 0 the divisor falls back to plain
// 111; cos(0)=1 makes the fallback mathematically redundant, but it is
// preserved as documented behavior of the original service.
func (r RadiusFilter) Bounds() BoundingBox {
	latDelta := r.RadiusKM / kmPerDegree
	div := kmPerDegree * math.Cos(r.CenterLat*math.Pi/180)
	if r.CenterLat == 0 {
		div = kmPerDegree
	}
	lonDelta := r.RadiusKM / div
	return BoundingBox{
		MinLat: r.CenterLat - latDelta,
		MaxLat: r.CenterLat + latDelta,
		MinLon: r.CenterLon - lonDelta,
		MaxLon: r.CenterLon + lonDelta,
	}
}

// POISearchQuery defines filters and pagination for the public search.
// All present filters are AND-ed together.  BBox and Radius may both be
// set; each contributes its own range predicates independently, with no
// precedence between them (a known imprecision kept from the original).
type POISearchQuery struct {
	Name       string // case-insensitive substring match
	Province   string // exact match
	Category   string // exact match
	HasImage   *bool
	HasWebsite *bool
	BBox       *BoundingBox
	Radius     *RadiusFilter
	Page       int
	PerPage    int
}

// Validate checks the spatial filters.
func (q POISearchQuery) Validate() error {
	if q.BBox != nil {
		if err := q.BBox.Validate(); err != nil {
			return err
		}
	}
	if q.Radius != nil {
		if err := q.Radius.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Normalize clamps pagination: page defaults to 1, per_page to 10, and
// per_page never exceeds 100 no matter what the caller requested.
func (q *POISearchQuery) Normalize() {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PerPage < 1 {
		q.PerPage = DefaultPerPage
	}
	if q.PerPage > MaxPerPage {
		q.PerPage = MaxPerPage
	}
}

// predicates renders the filter set as SQL conditions plus their
// arguments.  Kept separate from Search so the planning step is testable
// without a database.
func (q POISearchQuery) predicates() ([]string, []any) {
	where := []string{}
	args := []any{}

	if q.Name != "" {
		where = append(where, "LOWER(name) LIKE ?")
		args = append(args, "%"+strings.ToLower(q.Name)+"%")
	}
	if q.Province != "" {
		where = append(where, "province = ?")
		args = append(args, q.Province)
	}
	if q.Category != "" {
		where = append(where, "category = ?")
		args = append(args, q.Category)
	}
	if q.HasImage != nil {
		where = append(where, "has_image = ?")
		args = append(args, *q.HasImage)
	}
	if q.HasWebsite != nil {
		where = append(where, "has_website = ?")
		args = append(args, *q.HasWebsite)
	}
	if q.BBox != nil {
		where = append(where, "latitude >= ?", "latitude <= ?", "longitude >= ?", "longitude <= ?")
		args = append(args, q.BBox.MinLat, q.BBox.MaxLat, q.BBox.MinLon, q.BBox.MaxLon)
	}
	if q.Radius != nil {
		rect := q.Radius.Bounds()
		where = append(where, "latitude BETWEEN ? AND ?", "longitude BETWEEN ? AND ?")
		args = append(args, rect.MinLat, rect.MaxLat, rect.MinLon, rect.MaxLon)
	}
	return where, args
}

// Search runs the planned query: one COUNT for the total and one page
// SELECT ordered by name ascending (the only supported order).
func (r *POIRepo) Search(ctx context.Context, q POISearchQuery) ([]model.POI, int64, error) {
	if err := q.Validate(); err != nil {
		return nil, 0, err
	}
	q.Normalize()

	where, args := q.predicates()
	cond := "1=1"
	if len(where) > 0 {
		cond = strings.Join(where, " AND ")
	}

	var total int64
	if err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM pois WHERE "+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := q.PerPage
	offset := (q.Page - 1) * q.PerPage
	argsData := append(append([]any{}, args...), limit, offset)

	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+poiCols+" FROM pois WHERE "+cond+" ORDER BY name ASC LIMIT ? OFFSET ?",
		argsData...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]model.POI, 0, limit)
	for rows.Next() {
		var p model.POI
		if err := rows.Scan(&p.ID, &p.Name, &p.Latitude, &p.Longitude,
			&p.Address, &p.Province, &p.City, &p.Category, &p.Description,
			&p.HasImage, &p.ImageURL, &p.HasWebsite, &p.WebsiteURL,
			&p.CreatedBy, &p.CreatedOn, &p.UpdatedOn); err != nil {
			return nil, 0, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// Pages returns the total page count for a result set of total items at
// the query's effective page size.
func (q POISearchQuery) Pages(total int64) int64 {
	per := int64(q.PerPage)
	if per < 1 {
		per = DefaultPerPage
	}
	return (total + per - 1) / per
}
