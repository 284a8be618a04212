// File: internal/visit/model.go
package visit

import (
	"time"

	"estatehub_backend/internal/common"
	"estatehub_backend/internal/property"
	"estatehub_backend/internal/user"

	"github.com/google/uuid"
)

// VisitStatus is the decision state of a visit request.
type VisitStatus string

const (
	StatusPending  VisitStatus = "PENDING"
	StatusApproved VisitStatus = "APPROVED"
	StatusRejected VisitStatus = "REJECTED"
)

// VisitRequest is a tenant's request to view a property, decided by the
// seller. An approved visit may carry the agent assigned to conduct it.
type VisitRequest struct {
	common.BaseModel
	PropertyID    uuid.UUID          `gorm:"type:uuid;not null;index:idx_visit_property_tenant"`
	Property      *property.Property `gorm:"foreignKey:PropertyID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	TenantID      uuid.UUID          `gorm:"type:uuid;not null;index:idx_visit_property_tenant"`
	Tenant        *user.User         `gorm:"foreignKey:TenantID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	AgentID       *uuid.UUID         `gorm:"type:uuid"`
	Agent         *user.User         `gorm:"foreignKey:AgentID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;"`
	PreferredDate time.Time          `gorm:"type:date;not null"`
	Message       string             `gorm:"type:text"`
	Status        VisitStatus        `gorm:"type:varchar(10);not null;default:'PENDING';index"`
	DecidedAt     *time.Time
}

func (VisitRequest) TableName() string {
	return "visit_requests"
}

// --- DTOs ---

type SubmitVisitRequest struct {
	PropertyID    uuid.UUID `json:"property_id" binding:"required"`
	PreferredDate string    `json:"preferred_date" binding:"required"`
	Message       string    `json:"message,omitempty"`
}

type DecideVisitRequest struct {
	// Approve true approves the visit, false rejects it.
	Approve bool       `json:"approve"`
	AgentID *uuid.UUID `json:"agent_id,omitempty"`
}

type VisitListQuery struct {
	common.PaginationQuery
	Status     string `form:"status" binding:"omitempty,oneof=PENDING APPROVED REJECTED"`
	PropertyID string `form:"property_id"`
}

type VisitResponse struct {
	ID            uuid.UUID                  `json:"id"`
	PropertyID    uuid.UUID                  `json:"property_id"`
	Property      *property.PropertyResponse `json:"property,omitempty"`
	TenantID      uuid.UUID                  `json:"tenant_id"`
	Tenant        *user.UserResponse         `json:"tenant,omitempty"`
	AgentID       *uuid.UUID                 `json:"agent_id,omitempty"`
	Agent         *user.UserResponse         `json:"agent,omitempty"`
	PreferredDate string                     `json:"preferred_date"`
	Message       string                     `json:"message,omitempty"`
	Status        VisitStatus                `json:"status"`
	DecidedAt     *time.Time                 `json:"decided_at,omitempty"`
	CreatedAt     time.Time                  `json:"created_at"`
}

// ToVisitResponse converts a VisitRequest model to its response DTO.
func ToVisitResponse(v *VisitRequest) VisitResponse {
	resp := VisitResponse{
		ID:            v.ID,
		PropertyID:    v.PropertyID,
		TenantID:      v.TenantID,
		AgentID:       v.AgentID,
		PreferredDate: v.PreferredDate.Format("2006-01-02"),
		Message:       v.Message,
		Status:        v.Status,
		DecidedAt:     v.DecidedAt,
		CreatedAt:     v.CreatedAt,
	}
	if v.Property != nil {
		propResp := property.ToPropertyResponse(v.Property)
		resp.Property = &propResp
	}
	if v.Tenant != nil {
		tenantResp := user.ToUserResponse(v.Tenant)
		resp.Tenant = &tenantResp
	}
	if v.Agent != nil {
		agentResp := user.ToUserResponse(v.Agent)
		resp.Agent = &agentResp
	}
	return resp
}
