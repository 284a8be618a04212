// File: internal/visit/repository.go
package visit

import (
	"context"
	"errors"
	"time"

	"estatehub_backend/internal/common"
	"estatehub_backend/internal/platform/database"
	"estatehub_backend/internal/property"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines data access for visit requests.
type Repository interface {
	Submit(ctx context.Context, visit *VisitRequest) error
	FindByID(ctx context.Context, id uuid.UUID) (*VisitRequest, error)
	Decide(ctx context.Context, id uuid.UUID, approve bool, agentID *uuid.UUID) (*VisitRequest, error)
	ListByTenant(ctx context.Context, tenantID uuid.UUID, query VisitListQuery) ([]VisitRequest, int64, error)
	ListBySeller(ctx context.Context, sellerID uuid.UUID, query VisitListQuery) ([]VisitRequest, int64, error)
	ListByAgent(ctx context.Context, agentID uuid.UUID, query VisitListQuery) ([]VisitRequest, int64, error)
	CountByStatus(ctx context.Context, status VisitStatus) (int64, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewGORMRepository creates a GORM-backed visit repository.
func NewGORMRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

// Submit inserts the visit after checking the one-pending-per-pair rule
// under lock on the property row.
func (r *gormRepository) Submit(ctx context.Context, visit *VisitRequest) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var prop property.Property
		if err := database.LockForUpdate(tx).First(&prop, "id = ?", visit.PropertyID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return common.ErrNotFound.WithDetails("Property not found.")
			}
			return err
		}
		if prop.Status == property.StatusSold || prop.Status == property.StatusInactive {
			return common.ErrPreconditionFailed.WithDetails("This property is not open for visits.")
		}

		var pending int64
		err := tx.Model(&VisitRequest{}).
			Where("property_id = ? AND tenant_id = ? AND status = ?",
				visit.PropertyID, visit.TenantID, StatusPending).
			Count(&pending).Error
		if err != nil {
			return err
		}
		if pending > 0 {
			return common.ErrConflict.WithDetails("You already have a pending visit request for this property.")
		}
		return tx.Create(visit).Error
	})
}

func (r *gormRepository) FindByID(ctx context.Context, id uuid.UUID) (*VisitRequest, error) {
	var visit VisitRequest
	err := r.db.WithContext(ctx).
		Preload("Property").
		Preload("Tenant").
		Preload("Agent").
		First(&visit, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithDetails("Visit request not found.")
		}
		return nil, err
	}
	return &visit, nil
}

// Decide transitions a PENDING visit to APPROVED or REJECTED. Re-reads
// the row under lock so two concurrent decisions cannot both win.
func (r *gormRepository) Decide(ctx context.Context, id uuid.UUID, approve bool, agentID *uuid.UUID) (*VisitRequest, error) {
	var visit VisitRequest
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := database.LockForUpdate(tx).First(&visit, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return common.ErrNotFound.WithDetails("Visit request not found.")
			}
			return err
		}
		if visit.Status != StatusPending {
			return common.ErrPreconditionFailed.WithDetails("This visit request has already been decided.")
		}

		now := time.Now().UTC()
		updates := map[string]interface{}{
			"decided_at": now,
		}
		if approve {
			updates["status"] = StatusApproved
			if agentID != nil {
				updates["agent_id"] = *agentID
				visit.AgentID = agentID
			}
			visit.Status = StatusApproved
		} else {
			updates["status"] = StatusRejected
			visit.Status = StatusRejected
		}
		visit.DecidedAt = &now
		return tx.Model(&VisitRequest{}).Where("id = ?", id).Updates(updates).Error
	})
	if err != nil {
		return nil, err
	}
	return &visit, nil
}

func (r *gormRepository) ListByTenant(ctx context.Context, tenantID uuid.UUID, query VisitListQuery) ([]VisitRequest, int64, error) {
	tx := r.db.WithContext(ctx).Model(&VisitRequest{}).Where("tenant_id = ?", tenantID)
	return r.list(tx, query)
}

func (r *gormRepository) ListBySeller(ctx context.Context, sellerID uuid.UUID, query VisitListQuery) ([]VisitRequest, int64, error) {
	tx := r.db.WithContext(ctx).Model(&VisitRequest{}).
		Where("property_id IN (SELECT id FROM properties WHERE seller_id = ?)", sellerID)
	return r.list(tx, query)
}

func (r *gormRepository) ListByAgent(ctx context.Context, agentID uuid.UUID, query VisitListQuery) ([]VisitRequest, int64, error) {
	tx := r.db.WithContext(ctx).Model(&VisitRequest{}).Where("agent_id = ?", agentID)
	return r.list(tx, query)
}

func (r *gormRepository) list(tx *gorm.DB, query VisitListQuery) ([]VisitRequest, int64, error) {
	if query.Status != "" {
		tx = tx.Where("status = ?", query.Status)
	}
	if query.PropertyID != "" {
		propertyID, err := uuid.Parse(query.PropertyID)
		if err != nil {
			return nil, 0, common.ErrBadRequest.WithDetails("Invalid property_id filter.")
		}
		tx = tx.Where("property_id = ?", propertyID)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var visits []VisitRequest
	err := tx.Preload("Property").
		Preload("Tenant").
		Preload("Agent").
		Order("created_at DESC").
		Offset(query.Offset()).
		Limit(query.Limit()).
		Find(&visits).Error
	if err != nil {
		return nil, 0, err
	}
	return visits, total, nil
}

func (r *gormRepository) CountByStatus(ctx context.Context, status VisitStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&VisitRequest{}).
		Where("status = ?", status).Count(&count).Error
	return count, err
}
