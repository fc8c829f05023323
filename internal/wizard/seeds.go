package wizard

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/utils"
)

const lockedFieldMessage = "%s is pre-filled from your invitation and cannot be changed"

// mergeSeeds overlays locked seed values onto the client's step data for the
// fields form declares. A client value that differs from a seed is rejected.
func mergeSeeds(raw json.RawMessage, seeds map[string]string, form any) (json.RawMessage, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		raw = json.RawMessage("{}")
	}
	if len(seeds) == 0 {
		return raw, nil
	}

	var data map[string]any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, utils.NewValidationError("", "Invalid form data")
	}

	declared := jsonFields(form)
	var fields []utils.FieldError
	for key, seed := range seeds {
		if !declared[key] {
			continue
		}
		if v, ok := data[key]; ok && v != nil {
			if s := strings.TrimSpace(fmt.Sprint(v)); s != "" && !strings.EqualFold(s, seed) {
				fields = append(fields, utils.FieldError{
					Field:   key,
					Message: fmt.Sprintf(lockedFieldMessage, utils.Humanize(key)),
				})
				continue
			}
		}
		data[key] = seed
	}
	if err := utils.AsValidationError(fields); err != nil {
		return nil, err
	}
	return json.Marshal(data)
}

// jsonFields lists the JSON names of form's exported fields, including those
// of embedded structs.
func jsonFields(form any) map[string]bool {
	out := map[string]bool{}
	t := reflect.TypeOf(form)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	collectFields(t, out)
	return out
}

func collectFields(t reflect.Type, out map[string]bool) {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.Anonymous && f.Type.Kind() == reflect.Struct {
			collectFields(f.Type, out)
			continue
		}
		if !f.IsExported() {
			continue
		}
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			continue
		}
		if name == "" {
			name = f.Name
		}
		out[name] = true
	}
}
