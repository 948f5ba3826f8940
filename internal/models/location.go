package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/noah-isme/event-attendance-api/pkg/geo"
)

// LocationPurpose tags what a location may be assigned as.
type LocationPurpose string

const (
	LocationPurposeRegistration LocationPurpose = "REGISTRATION"
	LocationPurposeVenue        LocationPurpose = "VENUE"
)

// GeofenceShape selects the containment test for a location.
type GeofenceShape string

const (
	GeofenceShapeCircle  GeofenceShape = "CIRCLE"
	GeofenceShapePolygon GeofenceShape = "POLYGON"
)

// Ring is a polygon boundary persisted as jsonb.
type Ring []geo.Vertex

// Value stores the ring as jsonb.
func (r Ring) Value() (driver.Value, error) {
	if r == nil {
		return nil, nil
	}
	return json.Marshal([]geo.Vertex(r))
}

// Scan reads the ring from a jsonb column.
func (r *Ring) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*r = nil
		return nil
	case []byte:
		return json.Unmarshal(v, (*[]geo.Vertex)(r))
	case string:
		return json.Unmarshal([]byte(v), (*[]geo.Vertex)(r))
	default:
		return fmt.Errorf("ring: unsupported scan type %T", src)
	}
}

// Location is a geofenced area usable for registration or as a venue.
type Location struct {
	ID           string          `db:"id" json:"id"`
	Name         string          `db:"name" json:"name"`
	Purpose      LocationPurpose `db:"purpose" json:"purpose"`
	Shape        GeofenceShape   `db:"shape" json:"shape"`
	CenterLat    *float64        `db:"center_lat" json:"center_lat,omitempty"`
	CenterLon    *float64        `db:"center_lon" json:"center_lon,omitempty"`
	RadiusMeters *float64        `db:"radius_meters" json:"radius_meters,omitempty"`
	Boundary     Ring            `db:"boundary" json:"boundary,omitempty"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time       `db:"updated_at" json:"updated_at"`
}

// Contains reports whether the coordinate is inside the location's geofence.
// Incomplete circle definitions contain nothing.
func (l Location) Contains(lat, lon float64) bool {
	switch l.Shape {
	case GeofenceShapeCircle:
		if l.CenterLat == nil || l.CenterLon == nil || l.RadiusMeters == nil {
			return false
		}
		return geo.CircleContains(lat, lon, *l.CenterLat, *l.CenterLon, *l.RadiusMeters)
	case GeofenceShapePolygon:
		return geo.PolygonContains(lat, lon, l.Boundary)
	default:
		return false
	}
}
