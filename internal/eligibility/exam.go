package eligibility

import (
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
)

// DivisionKeys are the record keys that may hold divisions, in the order
// they are tried.
var DivisionKeys = []string{"academies", "posts", "divisions", "departments", "branches", "courses"}

// FlatDivision names the single unit of an exam without divisions.
const FlatDivision = "ALL"

var ErrInvalidExamRecord = errors.New("invalid exam record")

// ExamRecord is an exam posting resolved at ingestion into either a flat
// requirement set or an ordered list of divisions.
type ExamRecord struct {
	Code             string
	Name             string
	ConductingBody   string
	Session          string
	AgeReferenceDate string

	// Requirements holds the exam-level requirements. Divisioned exams are
	// evaluated on their division requirements only.
	Requirements map[string]Requirement

	DivisionKey string
	Divisions   []Division
}

type Division struct {
	Name         string
	Session      string
	Requirements map[string]Requirement
}

func (e *ExamRecord) IsDivisioned() bool {
	return e != nil && e.DivisionKey != ""
}

// Label is the display name of the exam.
func (e *ExamRecord) Label() string {
	if e.Name != "" {
		return e.Name
	}
	return e.Code
}

// Units returns the evaluation units of the exam: one synthetic "ALL"
// division for flat exams, or every division in source order. A field a
// division leaves out is unrestricted for that division. Only the session
// falls back to the exam level.
func (e *ExamRecord) Units() []Division {
	if !e.IsDivisioned() {
		return []Division{{Name: FlatDivision, Session: e.Session, Requirements: e.Requirements}}
	}
	units := make([]Division, 0, len(e.Divisions))
	for _, d := range e.Divisions {
		session := d.Session
		if session == "" {
			session = e.Session
		}
		units = append(units, Division{Name: d.Name, Session: session, Requirements: d.Requirements})
	}
	return units
}

// RawDivision is one division entry as found in the source record.
type RawDivision struct {
	Name string
	Raw  gjson.Result
}

// DivisionLayout describes how a record is structured.
type DivisionLayout struct {
	IsDivisioned bool
	DivisionKey  string
	Divisions    []RawDivision
}

// DetectDivisions returns the first division key, in priority order, whose
// value is an object. It does not check that divisions share a schema.
func DetectDivisions(record gjson.Result) DivisionLayout {
	if !record.IsObject() {
		return DivisionLayout{}
	}
	for _, key := range DivisionKeys {
		v := record.Get(key)
		if !v.IsObject() {
			continue
		}
		layout := DivisionLayout{IsDivisioned: true, DivisionKey: key}
		v.ForEach(func(name, value gjson.Result) bool {
			layout.Divisions = append(layout.Divisions, RawDivision{Name: name.String(), Raw: value})
			return true
		})
		return layout
	}
	return DivisionLayout{}
}

// ParseExamRecord decodes an exam record using the default checker set to
// decide which keys are requirements.
func ParseExamRecord(data []byte) (*ExamRecord, error) {
	return parseExamRecord(data, requirementKeys(defaultCheckers))
}

func parseExamRecord(data []byte, keys map[string]bool) (*ExamRecord, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: malformed json", ErrInvalidExamRecord)
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, fmt.Errorf("%w: expected object, got %s", ErrInvalidExamRecord, root.Type)
	}

	exam := &ExamRecord{
		Code:             firstString(root, "code", "examCode"),
		Name:             firstString(root, "name", "examName"),
		ConductingBody:   firstString(root, "conductingBody"),
		Session:          firstString(root, "session"),
		AgeReferenceDate: firstString(root, "ageReferenceDate"),
	}

	reqs, err := parseRequirements(root, keys)
	if err != nil {
		return nil, err
	}
	exam.Requirements = reqs

	layout := DetectDivisions(root)
	if !layout.IsDivisioned {
		return exam, nil
	}
	exam.DivisionKey = layout.DivisionKey
	exam.Divisions = make([]Division, 0, len(layout.Divisions))
	for _, rd := range layout.Divisions {
		if !rd.Raw.IsObject() {
			return nil, fmt.Errorf("%w: %s.%s is not an object", ErrInvalidExamRecord, layout.DivisionKey, rd.Name)
		}
		dreqs, err := parseRequirements(rd.Raw, keys)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", layout.DivisionKey, rd.Name, err)
		}
		exam.Divisions = append(exam.Divisions, Division{
			Name:         rd.Name,
			Session:      firstString(rd.Raw, "session"),
			Requirements: dreqs,
		})
	}
	return exam, nil
}

func parseRequirements(obj gjson.Result, keys map[string]bool) (map[string]Requirement, error) {
	reqs := make(map[string]Requirement)
	var err error
	obj.ForEach(func(key, value gjson.Result) bool {
		k := key.String()
		if !keys[k] {
			return true
		}
		r, perr := requirementFromResult(value)
		if perr != nil {
			err = fmt.Errorf("%w: field %s: %v", ErrInvalidExamRecord, k, perr)
			return false
		}
		reqs[k] = r
		return true
	})
	return reqs, err
}

func firstString(obj gjson.Result, keys ...string) string {
	for _, k := range keys {
		if v := obj.Get(k); v.Exists() && v.Type != gjson.Null {
			return v.String()
		}
	}
	return ""
}
