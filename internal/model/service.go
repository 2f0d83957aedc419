package model

import "time"

// Service is a bookable catalog entry managed by administrators.
//
// Fields:
//  ID          – primary key identifier.
//  Name        – service name shown in the catalog.
//  Description – free-text description.
//  Price       – current price; appointments snapshot it at booking time.
//  Images      – attached images in display order.
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – last update timestamp.
type Service struct {
	ID          uint64         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Price       float64        `json:"price"`
	Images      []ServiceImage `json:"images,omitempty"`
	CreatedAt   time.Time      `json:"-"`
	UpdatedAt   time.Time      `json:"-"`
}

// ServiceImage is a single stored image attached to a service. Each image
// keeps its own identifier and object-storage key so removal is an exact
// match on the id rather than a substring search over URLs.
//
// Fields:
//  ID        – primary key identifier.
//  ServiceID – owning service.
//  ObjectKey – key of the stored object (services/<id>/<uuid><ext>).
//  URL       – public URL returned to clients.
//  Position  – display order within the service.
type ServiceImage struct {
	ID        uint64 `json:"id"`
	ServiceID uint64 `json:"-"`
	ObjectKey string `json:"-"`
	URL       string `json:"url"`
	Position  int    `json:"position"`
}
