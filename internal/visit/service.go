// File: internal/visit/service.go
package visit

import (
	"context"
	"time"

	"estatehub_backend/internal/common"
	"estatehub_backend/internal/notification"
	"estatehub_backend/internal/user"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service defines the visit-request business operations.
type Service interface {
	Submit(ctx context.Context, tenantID uuid.UUID, req SubmitVisitRequest) (*VisitRequest, error)
	GetByID(ctx context.Context, actorID uuid.UUID, actorRole common.Role, id uuid.UUID) (*VisitRequest, error)
	Decide(ctx context.Context, actorID uuid.UUID, actorRole common.Role, id uuid.UUID, req DecideVisitRequest) (*VisitRequest, error)
	ListMine(ctx context.Context, actorID uuid.UUID, actorRole common.Role, query VisitListQuery) ([]VisitRequest, int64, error)
}

// ServiceImplementation implements Service.
type ServiceImplementation struct {
	repo     Repository
	userRepo user.Repository
	notifier notification.Service
	logger   *zap.Logger
}

// NewService creates a visit service.
func NewService(repo Repository, userRepo user.Repository, notifier notification.Service, logger *zap.Logger) *ServiceImplementation {
	return &ServiceImplementation{
		repo:     repo,
		userRepo: userRepo,
		notifier: notifier,
		logger:   logger.Named("VisitService"),
	}
}

var _ Service = (*ServiceImplementation)(nil)

func (s *ServiceImplementation) Submit(ctx context.Context, tenantID uuid.UUID, req SubmitVisitRequest) (*VisitRequest, error) {
	preferredDate, err := time.Parse("2006-01-02", req.PreferredDate)
	if err != nil {
		return nil, common.ErrBadRequest.WithDetails("preferred_date must be in YYYY-MM-DD format.")
	}

	visit := &VisitRequest{
		PropertyID:    req.PropertyID,
		TenantID:      tenantID,
		PreferredDate: preferredDate,
		Message:       req.Message,
		Status:        StatusPending,
	}
	if err := s.repo.Submit(ctx, visit); err != nil {
		return nil, err
	}
	s.logger.Info("Visit request submitted",
		zap.String("visitID", visit.ID.String()),
		zap.String("propertyID", req.PropertyID.String()),
		zap.String("tenantID", tenantID.String()))
	return s.repo.FindByID(ctx, visit.ID)
}

func (s *ServiceImplementation) GetByID(ctx context.Context, actorID uuid.UUID, actorRole common.Role, id uuid.UUID) (*VisitRequest, error) {
	visit, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.canAccess(visit, actorID, actorRole); err != nil {
		return nil, err
	}
	return visit, nil
}

func (s *ServiceImplementation) canAccess(visit *VisitRequest, actorID uuid.UUID, actorRole common.Role) error {
	switch {
	case actorRole == common.RoleAdmin:
		return nil
	case visit.TenantID == actorID:
		return nil
	case visit.Agent != nil && visit.Agent.ID == actorID:
		return nil
	case visit.Property != nil && visit.Property.SellerID == actorID:
		return nil
	}
	return common.ErrForbidden.WithDetails("You are not a party to this visit request.")
}

func (s *ServiceImplementation) Decide(ctx context.Context, actorID uuid.UUID, actorRole common.Role, id uuid.UUID, req DecideVisitRequest) (*VisitRequest, error) {
	visit, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if actorRole != common.RoleAdmin {
		if visit.Property == nil || visit.Property.SellerID != actorID {
			return nil, common.ErrForbidden.WithDetails("Only the property's seller can decide this visit request.")
		}
	}

	// An agent id that does not resolve to an AGENT account is dropped
	// rather than failing the decision.
	var agentID *uuid.UUID
	if req.Approve && req.AgentID != nil {
		agent, err := s.userRepo.FindByID(ctx, *req.AgentID)
		if err == nil && agent.Role == common.RoleAgent {
			agentID = &agent.ID
		} else {
			s.logger.Warn("Ignoring agent assignment on visit approval",
				zap.String("visitID", id.String()),
				zap.String("agentID", req.AgentID.String()))
		}
	}

	decided, err := s.repo.Decide(ctx, id, req.Approve, agentID)
	if err != nil {
		return nil, err
	}

	event := notification.EventVisitRejected
	if req.Approve {
		event = notification.EventVisitApproved
	}
	s.notifier.Notify(ctx, decided.TenantID, event, "visit_request", decided.ID)
	if agentID != nil {
		s.notifier.Notify(ctx, *agentID, notification.EventVisitApproved, "visit_request", decided.ID)
	}

	s.logger.Info("Visit request decided",
		zap.String("visitID", id.String()),
		zap.Bool("approved", req.Approve))
	return s.repo.FindByID(ctx, id)
}

func (s *ServiceImplementation) ListMine(ctx context.Context, actorID uuid.UUID, actorRole common.Role, query VisitListQuery) ([]VisitRequest, int64, error) {
	switch actorRole {
	case common.RoleTenant:
		return s.repo.ListByTenant(ctx, actorID, query)
	case common.RoleSeller:
		return s.repo.ListBySeller(ctx, actorID, query)
	case common.RoleAgent:
		return s.repo.ListByAgent(ctx, actorID, query)
	default:
		return nil, 0, common.ErrForbidden.WithDetails("This listing is scoped to tenants, sellers and agents.")
	}
}
