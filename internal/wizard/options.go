package wizard

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/models"
	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/utils"
	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/utils/dcarbon"
)

const (
	noticeFinanceTypes = "Could not load finance types"
	noticeInstallers   = "Could not load installers"
)

// StepOptions is the remote dropdown data offered by the financial step. A
// list that failed to load is empty and named in Notices.
type StepOptions struct {
	FinanceTypes []dcarbon.FinanceType `json:"financeTypes"`
	Installers   []dcarbon.Installer   `json:"installers"`
	Notices      []string              `json:"notices,omitempty"`

	financeTypesLoaded bool
	installersLoaded   bool
}

// Options loads the dropdown data for the current step. Steps without
// remote options get nil.
func (e *Engine) Options(ctx context.Context, sess *models.Session, st *State) *StepOptions {
	if e.api == nil || st == nil || st.Completed || st.StepName() != StepFinancial {
		return nil
	}
	if sess != nil && sess.AuthToken != "" {
		ctx = dcarbon.ContextWithToken(ctx, sess.AuthToken)
	}
	return e.financialOptions(ctx)
}

func (e *Engine) financialOptions(ctx context.Context) *StepOptions {
	var (
		types      []dcarbon.FinanceType
		installers []dcarbon.Installer
		typesErr   error
		instErr    error
		g          errgroup.Group
	)
	g.Go(func() error {
		types, typesErr = e.api.ListFinanceTypes(ctx)
		return nil
	})
	g.Go(func() error {
		installers, instErr = e.api.ListInstallers(ctx)
		return nil
	})
	_ = g.Wait()

	opts := &StepOptions{FinanceTypes: []dcarbon.FinanceType{}, Installers: []dcarbon.Installer{}}
	if typesErr != nil {
		utils.Logger.WithError(typesErr).Warn("finance types unavailable")
		opts.Notices = append(opts.Notices, noticeFinanceTypes)
	} else {
		opts.financeTypesLoaded = true
		if types != nil {
			opts.FinanceTypes = types
		}
	}
	if instErr != nil {
		utils.Logger.WithError(instErr).Warn("installers unavailable")
		opts.Notices = append(opts.Notices, noticeInstallers)
	} else {
		opts.installersLoaded = true
		if installers != nil {
			opts.Installers = installers
		}
	}
	return opts
}

// check matches the chosen finance type and installer against the loaded
// lists by id or name. Lists that failed to load or came back empty are
// not enforced.
func (o *StepOptions) check(financeType, installer string) []utils.FieldError {
	var fields []utils.FieldError
	if o.financeTypesLoaded && len(o.FinanceTypes) > 0 && !o.hasFinanceType(financeType) {
		fields = append(fields, utils.FieldError{Field: "financeType", Message: "Select one of the listed finance types"})
	}
	installer = strings.TrimSpace(installer)
	if installer != "" && o.installersLoaded && len(o.Installers) > 0 && !o.hasInstaller(installer) {
		fields = append(fields, utils.FieldError{Field: "installer", Message: "Select one of the listed installers"})
	}
	return fields
}

func (o *StepOptions) hasFinanceType(v string) bool {
	v = strings.TrimSpace(v)
	for _, ft := range o.FinanceTypes {
		if strings.EqualFold(ft.ID, v) || strings.EqualFold(ft.Name, v) {
			return true
		}
	}
	return false
}

func (o *StepOptions) hasInstaller(v string) bool {
	for _, in := range o.Installers {
		if strings.EqualFold(in.ID, v) || strings.EqualFold(in.Name, v) {
			return true
		}
	}
	return false
}
