package eligibility

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/tidwall/gjson"
)

type Gender string

const (
	GenderMale        Gender = "MALE"
	GenderFemale      Gender = "FEMALE"
	GenderTransgender Gender = "TRANSGENDER"
)

// ParseGender maps free-form gender input onto a Gender tag. The second
// return value is false when the input is empty or unrecognised.
func ParseGender(value string) (Gender, bool) {
	switch Normalize(value) {
	case "MALE", "M", "MAN":
		return GenderMale, true
	case "FEMALE", "F", "WOMAN":
		return GenderFemale, true
	case "TRANSGENDER", "T", "TG", "THIRD GENDER", "OTHER":
		return GenderTransgender, true
	default:
		return "", false
	}
}

type RequirementKind int

const (
	KindScalar RequirementKind = iota
	KindGenderKeyed
)

// Requirement is the exam-side value for one field: either a scalar string
// or a per-gender mapping of scalar strings.
type Requirement struct {
	kind     RequirementKind
	scalar   string
	byGender map[Gender]string
}

func Scalar(value string) Requirement {
	return Requirement{kind: KindScalar, scalar: value}
}

func GenderKeyed(values map[Gender]string) Requirement {
	m := make(map[Gender]string, len(values))
	for g, v := range values {
		m[g] = v
	}
	return Requirement{kind: KindGenderKeyed, byGender: m}
}

func (r Requirement) Kind() RequirementKind { return r.kind }

func (r Requirement) IsGenderKeyed() bool { return r.kind == KindGenderKeyed }

// Value returns the scalar value; it is empty for gender-keyed requirements.
func (r Requirement) Value() string { return r.scalar }

// ForGender returns the scalar entry for a gender in a gender-keyed
// requirement.
func (r Requirement) ForGender(g Gender) (string, bool) {
	v, ok := r.byGender[g]
	return v, ok
}

// GenderMap returns a display copy of the gender-keyed entries.
func (r Requirement) GenderMap() map[string]string {
	if r.kind != KindGenderKeyed {
		return nil
	}
	out := make(map[string]string, len(r.byGender))
	for g, v := range r.byGender {
		out[string(g)] = v
	}
	return out
}

// String renders the requirement for display.
func (r Requirement) String() string {
	if r.kind == KindScalar {
		return r.scalar
	}
	keys := make([]string, 0, len(r.byGender))
	for g := range r.byGender {
		keys = append(keys, string(g))
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, r.byGender[Gender(k)]))
	}
	return strings.Join(parts, "; ")
}

func (r Requirement) MarshalJSON() ([]byte, error) {
	if r.kind == KindGenderKeyed {
		return json.Marshal(r.GenderMap())
	}
	return json.Marshal(r.scalar)
}

func (r *Requirement) UnmarshalJSON(data []byte) error {
	if !gjson.ValidBytes(data) {
		return fmt.Errorf("requirement: invalid json")
	}
	req, err := requirementFromResult(gjson.ParseBytes(data))
	if err != nil {
		return err
	}
	*r = req
	return nil
}

// requirementFromResult decodes one exam-record field value. Strings and
// numbers are scalars, arrays become comma-joined allow-lists and objects are
// gender-keyed.
func requirementFromResult(res gjson.Result) (Requirement, error) {
	switch {
	case !res.Exists() || res.Type == gjson.Null:
		return Scalar(""), nil
	case res.Type == gjson.String:
		return Scalar(res.String()), nil
	case res.Type == gjson.Number:
		return Scalar(res.Raw), nil
	case res.Type == gjson.True || res.Type == gjson.False:
		return Scalar(strings.ToUpper(res.Raw)), nil
	case res.IsArray():
		var items []string
		for _, item := range res.Array() {
			if item.IsObject() || item.IsArray() {
				return Requirement{}, fmt.Errorf("requirement: nested value in list: %s", item.Raw)
			}
			items = append(items, item.String())
		}
		return Scalar(strings.Join(items, ", ")), nil
	case res.IsObject():
		values := make(map[Gender]string)
		var err error
		res.ForEach(func(key, value gjson.Result) bool {
			g, ok := ParseGender(key.String())
			if !ok {
				err = fmt.Errorf("requirement: unknown gender key %q", key.String())
				return false
			}
			if value.IsObject() || value.IsArray() {
				err = fmt.Errorf("requirement: gender %s value must be scalar", g)
				return false
			}
			values[g] = value.String()
			return true
		})
		if err != nil {
			return Requirement{}, err
		}
		return GenderKeyed(values), nil
	default:
		return Requirement{}, fmt.Errorf("requirement: unsupported value %s", res.Raw)
	}
}
