package notifyeligibilityresults

import "exam-eligibility/internal/common/validation"

var inputSchema = validation.MustCompile(TaskType, `{
  "type": "object",
  "properties": {
    "scanId": {"type": "string", "minLength": 1, "maxLength": 64},
    "candidateEmail": {"type": "string", "format": "email"},
    "candidateName": {"type": "string", "maxLength": 255},
    "summaries": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "examCode": {"type": "string"},
          "examLabel": {"type": "string"},
          "divisions": {"type": "array", "items": {"type": "string"}},
          "totalEligible": {"type": "integer", "minimum": 0}
        },
        "required": ["examCode"]
      }
    }
  },
  "required": ["scanId", "candidateEmail", "summaries"]
}`)
