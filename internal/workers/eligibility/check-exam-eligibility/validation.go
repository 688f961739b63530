package checkexameligibility

import "exam-eligibility/internal/common/validation"

var inputSchema = validation.MustCompile(TaskType, validation.JobSchema(
	`"examCode": {"type": "string", "minLength": 1, "maxLength": 64},
    "exam": {"type": "object"}`,
))
