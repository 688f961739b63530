package validation

import "fmt"

// ProfileSchema describes a candidate profile as accepted by the eligibility
// workers. Unknown keys are allowed as long as they are scalars.
const ProfileSchema = `{
  "type": "object",
  "properties": {
    "gender": {"type": ["string", "null"], "pattern": "(?i)^\\s*(m|f|t|tg|male|female|man|woman|transgender|third gender|other)?\\s*$"},
    "dateOfBirth": {"type": ["string", "null"], "maxLength": 32},
    "weight": {"type": ["string", "number", "null"]},
    "height": {"type": ["string", "number", "null"]},
    "percentage": {"type": ["string", "number", "null"]},
    "gapYears": {"type": ["string", "integer", "null"]},
    "maritalStatus": {"type": ["string", "null"], "maxLength": 64},
    "employmentStatus": {"type": ["string", "null"], "maxLength": 128},
    "nccWing": {"type": ["string", "null"], "maxLength": 64},
    "education": {"type": ["string", "null"], "maxLength": 128},
    "category": {"type": ["string", "null"], "maxLength": 64},
    "nationality": {"type": ["string", "null"], "maxLength": 64}
  },
  "additionalProperties": {"type": ["string", "number", "boolean", "null"]}
}`

// JobSchema builds a job-variable schema whose "profile" property is a
// candidate profile. properties holds the remaining top-level property
// definitions as a JSON object body without braces, and may be empty.
func JobSchema(properties string, required ...string) string {
	req := `"profile"`
	for _, r := range required {
		req += fmt.Sprintf(", %q", r)
	}
	if properties != "" {
		properties = ",\n    " + properties
	}
	return fmt.Sprintf(`{
  "type": "object",
  "properties": {
    "profile": %s%s
  },
  "required": [%s]
}`, ProfileSchema, properties, req)
}
