package service

import (
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/stratuminvest/stratum-backend/internal/apperrors"
	"github.com/stratuminvest/stratum-backend/internal/models"
	"github.com/stratuminvest/stratum-backend/internal/repository"
)

type PlanService interface {
	CreatePlan(plan *models.Plan) error
	GetPlan(id string) (*models.Plan, error)
	// GetPlans with activeOnly set is the non-admin view.
	GetPlans(activeOnly bool) ([]*models.Plan, error)
	UpdatePlan(plan *models.Plan) error
	DeletePlan(id primitive.ObjectID) error
}

type planService struct {
	planRepo repository.PlanRepository
	invRepo  repository.InvestmentRepository
}

func NewPlanService(planRepo repository.PlanRepository, invRepo repository.InvestmentRepository) PlanService {
	return &planService{planRepo: planRepo, invRepo: invRepo}
}

func validatePlan(plan *models.Plan) error {
	if plan.Name == "" {
		return apperrors.Validationf("plan name is required")
	}
	if plan.Price <= 0 {
		return apperrors.Validationf("plan price must be positive")
	}
	if plan.DailyProfitRate < 0 || plan.DailyProfitRate > 1 {
		return apperrors.Validationf("daily profit rate must be between 0 and 1")
	}
	if plan.DurationDays <= 0 {
		return apperrors.Validationf("plan duration must be positive")
	}
	return nil
}

func (s *planService) CreatePlan(plan *models.Plan) error {
	if err := validatePlan(plan); err != nil {
		return err
	}
	existing, err := s.planRepo.GetPlanByName(plan.Name)
	if err != nil {
		return err
	}
	if existing != nil {
		return apperrors.Conflictf("plan %q already exists", plan.Name)
	}
	return s.planRepo.SavePlan(plan)
}

func (s *planService) GetPlan(id string) (*models.Plan, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperrors.Validationf("invalid plan ID")
	}
	return s.planRepo.GetPlanByID(objID)
}

func (s *planService) GetPlans(activeOnly bool) ([]*models.Plan, error) {
	return s.planRepo.GetAllPlans(activeOnly)
}

// UpdatePlan never touches duration; the term length is fixed at creation.
func (s *planService) UpdatePlan(plan *models.Plan) error {
	existing, err := s.planRepo.GetPlanByID(plan.ID)
	if err != nil {
		return err
	}
	if existing == nil {
		return apperrors.NotFoundf("plan %s", plan.ID.Hex())
	}
	plan.DurationDays = existing.DurationDays
	if err := validatePlan(plan); err != nil {
		return err
	}
	return s.planRepo.UpdatePlan(plan)
}

func (s *planService) DeletePlan(id primitive.ObjectID) error {
	active, err := s.invRepo.CountActiveByPlanID(id)
	if err != nil {
		return err
	}
	if active > 0 {
		return apperrors.Conflictf("plan has %d active investments", active)
	}
	return s.planRepo.DeletePlan(id)
}
