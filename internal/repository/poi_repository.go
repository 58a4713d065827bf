package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/openpoi/poi-directory/internal/model"
)

type POIRepo struct{ DB *sql.DB }

func NewPOIRepo(db *sql.DB) *POIRepo { return &POIRepo{DB: db} }

const poiCols = `id, name, latitude, longitude,
	COALESCE(address,''), COALESCE(province,''), COALESCE(city,''),
	COALESCE(category,''), COALESCE(description,''),
	has_image, COALESCE(image_url,''), has_website, COALESCE(website_url,''),
	created_by, created_on, updated_on`

// POIPatch is the allow-listed partial update for a POI.  Only non-nil
// fields are written; keys outside this set are dropped during JSON
// decoding, so an unknown attribute can never reach the store.
type POIPatch struct {
	Name        *string  `json:"name"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
	Address     *string  `json:"address"`
	Province    *string  `json:"province"`
	City        *string  `json:"city"`
	Category    *string  `json:"category"`
	Description *string  `json:"description"`
	HasImage    *bool    `json:"has_image"`
	ImageURL    *string  `json:"image_url"`
	HasWebsite  *bool    `json:"has_website"`
	WebsiteURL  *string  `json:"website_url"`
}

// Assignments renders the patch as SQL SET fragments with their arguments.
// updated_on is always refreshed, even for an empty patch.
func (p POIPatch) Assignments() ([]string, []any) {
	set := []string{}
	args := []any{}
	add := func(col string, v any) {
		set = append(set, col+"=?")
		args = append(args, v)
	}
	if p.Name != nil {
		add("name", *p.Name)
	}
	if p.Latitude != nil {
		add("latitude", *p.Latitude)
	}
	if p.Longitude != nil {
		add("longitude", *p.Longitude)
	}
	if p.Address != nil {
		add("address", *p.Address)
	}
	if p.Province != nil {
		add("province", *p.Province)
	}
	if p.City != nil {
		add("city", *p.City)
	}
	if p.Category != nil {
		add("category", *p.Category)
	}
	if p.Description != nil {
		add("description", *p.Description)
	}
	if p.HasImage != nil {
		add("has_image", *p.HasImage)
	}
	if p.ImageURL != nil {
		add("image_url", *p.ImageURL)
	}
	if p.HasWebsite != nil {
		add("has_website", *p.HasWebsite)
	}
	if p.WebsiteURL != nil {
		add("website_url", *p.WebsiteURL)
	}
	set = append(set, "updated_on=UTC_TIMESTAMP()")
	return set, args
}

// Create inserts a POI and returns the stored row including timestamps.
func (r *POIRepo) Create(ctx context.Context, p model.POI) (model.POI, error) {
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO pois
		 (name, latitude, longitude, address, province, city, category, description,
		  has_image, image_url, has_website, website_url, created_by)
		 VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		p.Name, p.Latitude, p.Longitude, p.Address, p.Province, p.City, p.Category,
		p.Description, p.HasImage, p.ImageURL, p.HasWebsite, p.WebsiteURL, p.CreatedBy)
	if err != nil {
		return model.POI{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.POI{}, err
	}
	return r.GetByID(ctx, uint64(id))
}

// GetByID fetches a POI by id; missing rows report ErrNotFound.
func (r *POIRepo) GetByID(ctx context.Context, id uint64) (model.POI, error) {
	var p model.POI
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+poiCols+" FROM pois WHERE id=? LIMIT 1", id).
		Scan(&p.ID, &p.Name, &p.Latitude, &p.Longitude,
			&p.Address, &p.Province, &p.City, &p.Category, &p.Description,
			&p.HasImage, &p.ImageURL, &p.HasWebsite, &p.WebsiteURL,
			&p.CreatedBy, &p.CreatedOn, &p.UpdatedOn)
	if err == sql.ErrNoRows {
		return model.POI{}, ErrNotFound
	}
	return p, err
}

// Update applies a partial patch to an existing POI and returns the
// refreshed row.  The target is loaded first so an unknown id surfaces as
// ErrNotFound rather than a silent zero-row update.
func (r *POIRepo) Update(ctx context.Context, id uint64, patch POIPatch) (model.POI, error) {
	if _, err := r.GetByID(ctx, id); err != nil {
		return model.POI{}, err
	}
	set, args := patch.Assignments()
	args = append(args, id)
	_, err := r.DB.ExecContext(ctx,
		"UPDATE pois SET "+strings.Join(set, ", ")+" WHERE id=?", args...)
	if err != nil {
		return model.POI{}, err
	}
	return r.GetByID(ctx, id)
}

// Delete removes a POI permanently.  Unknown ids report ErrNotFound.
func (r *POIRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM pois WHERE id=?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
