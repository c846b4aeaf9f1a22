package models

import (
	"net/url"
	"strconv"

	"github.com/shopspring/decimal"
)

// Court is a public court listing, as served by /canchas and /canchas/{id}.
type Court struct {
	ID          int             `json:"id"`
	Name        string          `json:"nombre"`
	Location    string          `json:"ubicacion"`
	Price       decimal.Decimal `json:"precio"`
	Image       string          `json:"imagen,omitempty"`
	Sport       string          `json:"deporte,omitempty"`
	Lat         *float64        `json:"lat,omitempty"`
	Lng         *float64        `json:"lng,omitempty"`
	Rating      float64         `json:"rating,omitempty"`
	Gallery     []string        `json:"gallery,omitempty"`
	Description string          `json:"description,omitempty"`
	Services    []CourtService  `json:"services,omitempty"`
	Reviews     []Review        `json:"reviews,omitempty"`
	Active      *bool           `json:"estado,omitempty"`
	IsFavorite  bool            `json:"is_favorito,omitempty"`

	// Distance in km from the caller's position, set by location sorting.
	Distance *float64 `json:"-"`
}

// InMaintenance reports whether the court is listed but not bookable.
func (c *Court) InMaintenance() bool {
	return c.Active != nil && !*c.Active
}

// CourtService is an amenity shown on the court detail page.
type CourtService struct {
	Name string `json:"name"`
	Icon string `json:"icon,omitempty"`
}

// CourtFilter narrows the public court list.
type CourtFilter struct {
	District string
	Sport    string
}

// Query renders the filter as the ?ubicacion=&deporte= query string.
func (f CourtFilter) Query() url.Values {
	q := url.Values{}
	if f.District != "" {
		q.Set("ubicacion", f.District)
	}
	if f.Sport != "" {
		q.Set("deporte", f.Sport)
	}
	return q
}

// SportType is an entry of /catalogos/tipos-deporte.
type SportType struct {
	ID   int    `json:"id_tipo_deporte"`
	Name string `json:"nombre"`
}

// SurfaceType is an entry of /catalogos/tipos-superficie.
type SurfaceType struct {
	ID   int    `json:"id_tipo_superficie"`
	Name string `json:"nombre"`
}

// Venue (sede) groups a company's courts at one address.
type Venue struct {
	ID        int      `json:"id_sede,omitempty"`
	Name      string   `json:"nombre_sede"`
	Address   string   `json:"ubicacion_texto"`
	Latitude  *float64 `json:"latitud"`
	Longitude *float64 `json:"longitud"`
}

// ManagedCourt is a court as seen by its owning company (/empresa/canchas).
type ManagedCourt struct {
	ID            int             `json:"id_cancha,omitempty"`
	VenueID       int             `json:"id_sede"`
	VenueName     string          `json:"nombre_sede,omitempty"`
	SportTypeID   int             `json:"id_tipo_deporte"`
	SportType     string          `json:"tipo_deporte,omitempty"`
	SurfaceTypeID int             `json:"id_tipo_superficie"`
	SurfaceType   string          `json:"tipo_superficie,omitempty"`
	Name          string          `json:"nombre"`
	PricePerHour  decimal.Decimal `json:"precio_por_hora"`
	Description   string          `json:"descripcion"`
	PhotoURL1     string          `json:"foto_url_1"`
	PhotoURL2     string          `json:"foto_url_2,omitempty"`
	PhotoURL3     string          `json:"foto_url_3,omitempty"`
	Active        bool            `json:"estado"`
}

// ManagedCourtFilter narrows /empresa/canchas.
type ManagedCourtFilter struct {
	VenueID     int
	SportTypeID int
}

// Query renders the filter as the ?sede=&deporte= query string.
func (f ManagedCourtFilter) Query() url.Values {
	q := url.Values{}
	if f.VenueID > 0 {
		q.Set("sede", strconv.Itoa(f.VenueID))
	}
	if f.SportTypeID > 0 {
		q.Set("deporte", strconv.Itoa(f.SportTypeID))
	}
	return q
}

// SlotStatus is the availability of one hourly start slot.
type SlotStatus string

const (
	SlotAvailable   SlotStatus = "available"
	SlotOccupied    SlotStatus = "occupied"
	SlotUnavailable SlotStatus = "unavailable"
)

// Availability maps "HH:MM" start times to their status. Missing keys mean
// unavailable.
type Availability map[string]SlotStatus

// Status returns the status for slot, defaulting to unavailable.
func (a Availability) Status(slot string) SlotStatus {
	if s, ok := a[slot]; ok && s != "" {
		return s
	}
	return SlotUnavailable
}
