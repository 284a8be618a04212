// File: internal/property/model.go
package property

import (
	"time"

	"estatehub_backend/internal/common"
	"estatehub_backend/internal/user"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PropertyType is the listing kind.
type PropertyType string

const (
	TypeForSale PropertyType = "FOR_SALE"
	TypeForRent PropertyType = "FOR_RENT"
)

// PropertyStatus is the lifecycle state of a listing.
type PropertyStatus string

const (
	StatusAvailable PropertyStatus = "AVAILABLE"
	StatusBooked    PropertyStatus = "BOOKED"
	StatusSold      PropertyStatus = "SOLD"
	StatusInactive  PropertyStatus = "INACTIVE"
)

// statusTransitions is the closed edge set of the property lifecycle.
// BOOKED -> AVAILABLE is the cascade reset; SOLD is terminal.
var statusTransitions = map[PropertyStatus][]PropertyStatus{
	StatusAvailable: {StatusBooked, StatusInactive},
	StatusBooked:    {StatusSold, StatusAvailable},
	StatusInactive:  {StatusAvailable},
	StatusSold:      {},
}

// CanTransition reports whether from -> to is a legal property transition.
func CanTransition(from, to PropertyStatus) bool {
	for _, s := range statusTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Property represents a listing owned by a seller.
type Property struct {
	common.BaseModel
	SellerID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	Seller      *user.User      `gorm:"foreignKey:SellerID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Title       string          `gorm:"type:varchar(100);not null"`
	Slug        string          `gorm:"type:varchar(120);not null;uniqueIndex"`
	Address     string          `gorm:"type:text;not null"`
	City        string          `gorm:"type:varchar(50);not null;index"`
	Description string          `gorm:"type:text"`
	Type        PropertyType    `gorm:"type:varchar(10);not null"`
	Price       decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Status      PropertyStatus  `gorm:"type:varchar(10);not null;default:'AVAILABLE';index"`
	IsFeatured  bool            `gorm:"not null;default:false"`
	Images      []PropertyImage `gorm:"foreignKey:PropertyID;constraint:OnDelete:CASCADE;"`
}

func (Property) TableName() string {
	return "properties"
}

// PropertyImage is a cascade participant only; upload storage is out of scope.
type PropertyImage struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	PropertyID uuid.UUID `gorm:"type:uuid;not null;index" json:"property_id"`
	ImageURL   string    `gorm:"type:text;not null" json:"image_url"`
	SortOrder  int       `gorm:"default:0" json:"sort_order"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// BeforeCreate assigns a UUID when the caller has not set one.
func (i *PropertyImage) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

func (PropertyImage) TableName() string {
	return "property_images"
}

// --- DTOs ---

type CreatePropertyRequest struct {
	Title       string          `json:"title" binding:"required,min=5,max=100"`
	Address     string          `json:"address" binding:"required"`
	City        string          `json:"city" binding:"required,max=50"`
	Description string          `json:"description,omitempty"`
	Type        PropertyType    `json:"type" binding:"required,oneof=FOR_SALE FOR_RENT"`
	Price       decimal.Decimal `json:"price" binding:"required"`
	ImageURLs   []string        `json:"image_urls,omitempty" binding:"omitempty,dive,url"`
	// SellerID is honored only when the caller is an admin listing on a
	// seller's behalf; sellers always list as themselves.
	SellerID *uuid.UUID `json:"seller_id,omitempty"`
}

type UpdatePropertyRequest struct {
	Title       *string          `json:"title,omitempty" binding:"omitempty,min=5,max=100"`
	Address     *string          `json:"address,omitempty"`
	City        *string          `json:"city,omitempty" binding:"omitempty,max=50"`
	Description *string          `json:"description,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty"`
}

type SetFeaturedRequest struct {
	IsFeatured bool `json:"is_featured"`
}

type PropertySearchQuery struct {
	common.PaginationQuery
	City     string `form:"city"`
	Type     string `form:"type" binding:"omitempty,oneof=FOR_SALE FOR_RENT"`
	Status   string `form:"status" binding:"omitempty,oneof=AVAILABLE BOOKED SOLD INACTIVE"`
	SellerID string `form:"seller_id"`
	Featured *bool  `form:"featured"`
	MaxPrice string `form:"max_price"`
}

type PropertyResponse struct {
	ID          uuid.UUID         `json:"id"`
	SellerID    uuid.UUID         `json:"seller_id"`
	Seller      *user.UserResponse `json:"seller,omitempty"`
	Title       string            `json:"title"`
	Slug        string            `json:"slug"`
	Address     string            `json:"address"`
	City        string            `json:"city"`
	Description string            `json:"description,omitempty"`
	Type        PropertyType      `json:"type"`
	Price       decimal.Decimal   `json:"price"`
	Status      PropertyStatus    `json:"status"`
	IsFeatured  bool              `json:"is_featured"`
	Images      []PropertyImage   `json:"images,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// ToPropertyResponse converts a Property model to its response DTO.
func ToPropertyResponse(p *Property) PropertyResponse {
	resp := PropertyResponse{
		ID:          p.ID,
		SellerID:    p.SellerID,
		Title:       p.Title,
		Slug:        p.Slug,
		Address:     p.Address,
		City:        p.City,
		Description: p.Description,
		Type:        p.Type,
		Price:       p.Price,
		Status:      p.Status,
		IsFeatured:  p.IsFeatured,
		Images:      p.Images,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	if p.Seller != nil {
		sellerResp := user.ToUserResponse(p.Seller)
		resp.Seller = &sellerResp
	}
	return resp
}
