package model

import "time"

// POI represents a point-of-interest row in the `pois` table.  Latitude is
// bounded to [-90,90] and longitude to [-180,180]; both are validated at
// creation and on patch.  CreatedBy records the admin who created the
// record and is nullable because POIs survive their creator.  UpdatedOn is
// refreshed by every mutation.
//
// The JSON tags define the public representation returned by both the
// admin and the public endpoints; CreatedBy is audit metadata and is not
// exposed.
type POI struct {
	ID          uint64    `json:"id"`          // pois.id
	Name        string    `json:"name"`        // pois.name
	Latitude    float64   `json:"latitude"`    // pois.latitude
	Longitude   float64   `json:"longitude"`   // pois.longitude
	Address     string    `json:"address"`     // pois.address
	Province    string    `json:"province"`    // pois.province
	City        string    `json:"city"`        // pois.city
	Category    string    `json:"category"`    // pois.category
	Description string    `json:"description"` // pois.description
	HasImage    bool      `json:"has_image"`   // pois.has_image
	ImageURL    string    `json:"image_url"`   // pois.image_url
	HasWebsite  bool      `json:"has_website"` // pois.has_website
	WebsiteURL  string    `json:"website_url"` // pois.website_url
	CreatedBy   *uint64   `json:"-"`           // pois.created_by (nullable)
	CreatedOn   time.Time `json:"created_on"`  // pois.created_on
	UpdatedOn   time.Time `json:"updated_on"`  // pois.updated_on
}
