// Package facility holds the facility list bookkeeping, the progress
// heuristic, the create/edit form state machine and payload building.
package facility

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/models"
)

// PageLimit is the fixed page size of the facility list.
const PageLimit = 10

const filterAll = "all"

// ListQuery is the filter and pagination state of the facility list.
type ListQuery struct {
	Page            int    `json:"page"`
	Name            string `json:"facilityName"`
	Role            string `json:"commercialRole"`
	EntityType      string `json:"entityType"`
	UtilityProvider string `json:"utilityProvider"`
	MeterID         string `json:"meterId"`
	Status          string `json:"status"`
	CreatedAt       string `json:"createdAt"`
}

// ParseListQuery reads a ListQuery from request query parameters.
func ParseListQuery(v url.Values) ListQuery {
	q := ListQuery{
		Name:            v.Get("facilityName"),
		Role:            v.Get("commercialRole"),
		EntityType:      v.Get("entityType"),
		UtilityProvider: v.Get("utilityProvider"),
		MeterID:         v.Get("meterId"),
		Status:          v.Get("status"),
		CreatedAt:       v.Get("createdAt"),
	}
	q.Page, _ = strconv.Atoi(v.Get("page"))
	return q
}

// Values encodes q for the remote list endpoint. Empty and "All" filters are
// omitted, page defaults to 1 and limit is always PageLimit.
func (q ListQuery) Values() url.Values {
	out := url.Values{}
	page := q.Page
	if page < 1 {
		page = 1
	}
	out.Set("page", strconv.Itoa(page))
	out.Set("limit", strconv.Itoa(PageLimit))

	set := func(key, val string) {
		val = strings.TrimSpace(val)
		if val == "" || strings.EqualFold(val, filterAll) {
			return
		}
		out.Set(key, val)
	}
	set("facilityName", q.Name)
	set("commercialRole", q.Role)
	set("entityType", q.EntityType)
	set("utilityProvider", q.UtilityProvider)
	set("meterId", q.MeterID)
	set("status", q.Status)
	set("createdAt", q.CreatedAt)
	return out
}

// FilterLocal applies q to an already-fetched list. String comparisons are
// case-insensitive; name and meter id match by substring.
func FilterLocal(in []models.Facility, q ListQuery) []models.Facility {
	out := make([]models.Facility, 0, len(in))
	for _, f := range in {
		if matches(f, q) {
			out = append(out, f)
		}
	}
	return out
}

func matches(f models.Facility, q ListQuery) bool {
	if active(q.Name) && !containsFold(f.FacilityName, q.Name) && !containsFold(f.Nickname, q.Name) {
		return false
	}
	if active(q.Role) && !strings.EqualFold(string(f.CommercialRole), q.Role) {
		return false
	}
	if active(q.EntityType) && !strings.EqualFold(string(f.EntityType), q.EntityType) {
		return false
	}
	if active(q.UtilityProvider) && !strings.EqualFold(f.UtilityProvider, q.UtilityProvider) {
		return false
	}
	if active(q.Status) && !strings.EqualFold(f.Status, q.Status) {
		return false
	}
	if active(q.MeterID) && !anyContainsFold(f.MeterIDs, q.MeterID) {
		return false
	}
	if active(q.CreatedAt) && !sameDay(f.CreatedAt, q.CreatedAt) {
		return false
	}
	return true
}

func active(v string) bool {
	v = strings.TrimSpace(v)
	return v != "" && !strings.EqualFold(v, filterAll)
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(strings.TrimSpace(sub)))
}

func anyContainsFold(ss []string, sub string) bool {
	for _, s := range ss {
		if containsFold(s, sub) {
			return true
		}
	}
	return false
}

func sameDay(t time.Time, day string) bool {
	d, err := time.Parse(time.DateOnly, strings.TrimSpace(day))
	if err != nil {
		return false
	}
	return t.UTC().Format(time.DateOnly) == d.Format(time.DateOnly)
}
