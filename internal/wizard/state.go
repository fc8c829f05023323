package wizard

import (
	"encoding/json"

	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/models"
	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/session"
)

// State is the wizard position saved in the session.
type State struct {
	Flow       Flow              `json:"flow"`
	Step       int               `json:"step"`
	Completed  bool              `json:"completed"`
	FlowLocked bool              `json:"flowLocked,omitempty"`
	Seeds      map[string]string `json:"seeds,omitempty"`
}

func (s *State) StepName() string {
	steps := flowSteps[s.Flow]
	if s.Step < 0 || s.Step >= len(steps) {
		return ""
	}
	return steps[s.Step]
}

// View is what the portal returns for the current wizard position.
type View struct {
	Flow       Flow              `json:"flow"`
	Step       int               `json:"step"`
	StepName   string            `json:"stepName"`
	Steps      []string          `json:"steps"`
	Completed  bool              `json:"completed"`
	FlowLocked bool              `json:"flowLocked"`
	Locked     map[string]string `json:"lockedFields,omitempty"`
	Data       json.RawMessage   `json:"data,omitempty"`
	Options    *StepOptions      `json:"options,omitempty"`
}

// NewView renders st, including any saved data for the current step.
func NewView(sess *models.Session, st *State) View {
	v := View{
		Flow:       st.Flow,
		Step:       st.Step,
		StepName:   st.StepName(),
		Steps:      Steps(st.Flow),
		Completed:  st.Completed,
		FlowLocked: st.FlowLocked,
		Locked:     st.Seeds,
	}
	if raw, ok := sess.Values[session.WizardStepKey(string(st.Flow), v.StepName)]; ok {
		v.Data = append(json.RawMessage(nil), raw...)
	}
	return v
}

func loadState(sess *models.Session) (*State, error) {
	var st State
	ok, err := session.GetJSON(sess, session.KeyWizardState, &st)
	if err != nil || !ok {
		return nil, err
	}
	return &st, nil
}

func saveState(sess *models.Session, st *State) error {
	return session.SetJSON(sess, session.KeyWizardState, st)
}

// CommercialRole returns the role chosen on the company step of whichever
// commercial flow the session went through, or "".
func CommercialRole(sess *models.Session) models.CommercialRole {
	for _, f := range []Flow{FlowCommercialOwner, FlowCommercialOperator} {
		var company companyForm
		ok, err := session.GetJSON(sess, session.WizardStepKey(string(f), StepCompany), &company)
		if err == nil && ok && company.CommercialRole != "" {
			return company.CommercialRole
		}
	}
	return ""
}
