package scanexameligibility

import "exam-eligibility/internal/common/validation"

var inputSchema = validation.MustCompile(TaskType, validation.JobSchema(
	`"scanId": {"type": "string", "pattern": "^[A-Za-z0-9._:-]{1,64}$"},
    "candidateEmail": {"type": "string", "format": "email"}`,
))
