package eligibility

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// Profile keys read by the registered checkers.
const (
	ProfileEmploymentStatus = "employmentStatus"
	ProfileGapYears         = "gapYears"
	ProfileMaritalStatus    = "maritalStatus"
	ProfileGender           = "gender"
	ProfileNCCWing          = "nccWing"
	ProfileWeight           = "weight"
	ProfileHeight           = "height"
	ProfileDateOfBirth      = "dateOfBirth"
	ProfileEducation        = "education"
	ProfileCategory         = "category"
	ProfileNationality      = "nationality"
	ProfilePercentage       = "percentage"
)

// UserProfile maps profile field names to scalar values.
type UserProfile map[string]string

// Get returns the trimmed value for key, or "" when absent.
func (p UserProfile) Get(key string) string {
	if p == nil {
		return ""
	}
	return strings.TrimSpace(p[key])
}

// Gender returns the profile's gender tag, if one was given and recognised.
func (p UserProfile) Gender() (Gender, bool) {
	return ParseGender(p.Get(ProfileGender))
}

// UnmarshalJSON accepts strings, numbers and booleans; null drops the key.
func (p *UserProfile) UnmarshalJSON(data []byte) error {
	if !gjson.ValidBytes(data) {
		return fmt.Errorf("profile: invalid json")
	}
	res := gjson.ParseBytes(data)
	if res.Type == gjson.Null {
		*p = UserProfile{}
		return nil
	}
	if !res.IsObject() {
		return fmt.Errorf("profile: expected object, got %s", res.Type)
	}
	out := UserProfile{}
	var err error
	res.ForEach(func(key, value gjson.Result) bool {
		switch {
		case value.Type == gjson.Null:
		case value.IsObject() || value.IsArray():
			err = fmt.Errorf("profile: field %q must be a scalar", key.String())
			return false
		case value.Type == gjson.Number:
			out[key.String()] = value.Raw
		default:
			out[key.String()] = value.String()
		}
		return true
	})
	if err != nil {
		return err
	}
	*p = out
	return nil
}
