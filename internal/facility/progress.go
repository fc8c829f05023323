package facility

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/models"
	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/utils"
)

// Progress stages shown on facility cards.
const (
	StageRegistered = iota + 1
	StageAgreementSigned
	StageFinancialInfo
	StageMetersLinked
	StageVerified
	StageCommissioned
)

// ProgressSource answers the completeness checks of the heuristic.
type ProgressSource interface {
	GetAgreement(ctx context.Context, userID string) (*models.Agreement, error)
	GetFinancialInfo(ctx context.Context, userID string) (*models.FinancialInfo, error)
	ListUtilityAccounts(ctx context.Context, userID string) ([]models.UtilityAccount, error)
}

// Stage returns the facility's progress stage. The API's registrationStage
// wins when present; otherwise the heuristic runs.
func Stage(ctx context.Context, src ProgressSource, userID string, f *models.Facility) int {
	if f.RegistrationStage >= StageRegistered && f.RegistrationStage <= StageCommissioned {
		return f.RegistrationStage
	}
	return HeuristicStage(ctx, src, userID, f)
}

// HeuristicStage runs the independent checks concurrently, waits for all of
// them, and returns the highest contiguous completed stage. A failing check
// counts as not completed.
func HeuristicStage(ctx context.Context, src ProgressSource, userID string, f *models.Facility) int {
	var agreementOK, financialOK, metersOK bool

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a, err := src.GetAgreement(gctx, userID)
		if err != nil {
			utils.Logger.WithError(err).Debug("progress: agreement check failed")
			return nil
		}
		agreementOK = a.Complete()
		return nil
	})
	g.Go(func() error {
		fi, err := src.GetFinancialInfo(gctx, userID)
		if err != nil {
			utils.Logger.WithError(err).Debug("progress: financial info check failed")
			return nil
		}
		financialOK = fi != nil && fi.FinanceType != ""
		return nil
	})
	g.Go(func() error {
		accts, err := src.ListUtilityAccounts(gctx, userID)
		if err != nil {
			utils.Logger.WithError(err).Debug("progress: utility account check failed")
			return nil
		}
		metersOK = len(accts) > 0 && len(f.MeterIDs) > 0
		return nil
	})
	_ = g.Wait()

	verified := strings.EqualFold(f.Status, models.FacilityStatusVerified)
	commissioned := verified && f.COD != nil && f.SystemSizeKW != nil

	return contiguous(agreementOK, financialOK, metersOK, verified, commissioned)
}

// contiguous counts leading true values on top of StageRegistered.
func contiguous(done ...bool) int {
	stage := StageRegistered
	for _, ok := range done {
		if !ok {
			break
		}
		stage++
	}
	return stage
}
