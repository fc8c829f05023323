package services

import (
	"context"

	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/dtos"
	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/models"
)

// Dashboard views.
const (
	ViewOverview    = "overview"
	ViewFacilities  = "facilities"
	ViewAgreements  = "agreements"
	ViewStatistics  = "statistics"
	ViewReferrals   = "referrals"
	ViewCustomers   = "customers"
	ViewCommissions = "commissions"
)

// StatsAPI is the remote REC statistics endpoint.
type StatsAPI interface {
	RECStats(ctx context.Context, userID string) (*models.RECStats, error)
}

type DashboardService interface {
	Navigation(sess *models.Session) (*dtos.DashboardResponse, error)
	Stats(ctx context.Context, sess *models.Session) (*models.RECStats, error)
}

type dashboardService struct {
	api StatsAPI
}

func NewDashboardService(api StatsAPI) DashboardService {
	return &dashboardService{api: api}
}

// Navigation picks the views of the session's role.
func (s *dashboardService) Navigation(sess *models.Session) (*dtos.DashboardResponse, error) {
	if !sess.Authenticated() {
		return nil, loginRequired()
	}
	views := viewsFor(sess.UserType, sess.PartnerType)
	return &dtos.DashboardResponse{
		UserType:    sess.UserType,
		PartnerType: sess.PartnerType,
		Views:       views,
		DefaultView: views[0],
	}, nil
}

// Stats proxies the REC statistics of the current user.
func (s *dashboardService) Stats(ctx context.Context, sess *models.Session) (*models.RECStats, error) {
	rctx, userID, err := remoteCtx(ctx, sess)
	if err != nil {
		return nil, err
	}
	stats, err := s.api.RECStats(rctx, userID)
	if err != nil {
		return nil, err
	}
	if stats == nil {
		stats = &models.RECStats{}
	}
	return stats, nil
}

func viewsFor(ut models.UserType, pt *models.PartnerType) []string {
	switch ut {
	case models.UserTypePartner:
		if pt == nil {
			return []string{ViewOverview, ViewAgreements}
		}
		switch *pt {
		case models.PartnerTypeInstaller:
			return []string{ViewOverview, ViewCustomers, ViewReferrals, ViewCommissions, ViewAgreements}
		case models.PartnerTypeSalesAgent:
			return []string{ViewOverview, ViewCustomers, ViewReferrals, ViewCommissions}
		case models.PartnerTypeFinanceCompany:
			return []string{ViewOverview, ViewCustomers, ViewFacilities, ViewAgreements}
		}
		return []string{ViewOverview, ViewAgreements}
	case models.UserTypeCommercial:
		return []string{ViewOverview, ViewFacilities, ViewStatistics, ViewAgreements}
	default:
		return []string{ViewOverview, ViewFacilities, ViewStatistics, ViewReferrals, ViewAgreements}
	}
}
