package eligibility

import (
	"fmt"
	"sort"
)

// Qualification levels, lowest first.
var educationLadder = map[string]int{
	"10TH":             1,
	"MATRIC":           1,
	"MATRICULATION":    1,
	"SSC":              1,
	"SECONDARY":        1,
	"12TH":             2,
	"10+2":             2,
	"HSC":              2,
	"INTERMEDIATE":     2,
	"HIGHER SECONDARY": 2,
	"DIPLOMA":          3,
	"GRADUATE":         4,
	"GRADUATION":       4,
	"BACHELOR":         4,
	"BACHELORS":        4,
	"DEGREE":           4,
	"UG":               4,
	"POST GRADUATE":    5,
	"POSTGRADUATE":     5,
	"POST GRADUATION":  5,
	"MASTER":           5,
	"MASTERS":          5,
	"PG":               5,
	"DOCTORATE":        6,
	"PHD":              6,
	"PH.D":             6,
}

var levelNames = map[int]string{
	1: "10TH",
	2: "12TH",
	3: "DIPLOMA",
	4: "GRADUATE",
	5: "POST GRADUATE",
	6: "DOCTORATE",
}

// ladderKeys holds the ladder terms longest first so "POST GRADUATE" is
// found before "GRADUATE".
var ladderKeys = func() []string {
	keys := make([]string, 0, len(educationLadder))
	for k := range educationLadder {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	return keys
}()

// EducationLevel places a normalized qualification on the ladder.
func EducationLevel(value string) (int, bool) {
	n := Normalize(value)
	if n == "" {
		return 0, false
	}
	if lvl, ok := educationLadder[n]; ok {
		return lvl, true
	}
	for _, k := range ladderKeys {
		if len(k) > 3 && containsWord(n, k) {
			return educationLadder[k], true
		}
	}
	return 0, false
}

// CheckEducation passes when the candidate's qualification is at or above
// the lowest ladder level the requirement names. Terms off the ladder fall
// back to the loose allow-list rule.
func CheckEducation(user, requirement string) FieldVerdict {
	v := FieldVerdict{Field: FieldEducation, UserValue: displayValue(user)}
	if IsNoRestriction(requirement) {
		v.ExamRequirement = NoRestriction
		v.Eligible = true
		return v
	}
	allowed := ParseList(requirement)
	v.ExamRequirement = listDisplay(allowed, requirement)

	minLevel := 0
	var offLadder []string
	for _, a := range allowed {
		if lvl, ok := EducationLevel(a); ok {
			if minLevel == 0 || lvl < minLevel {
				minLevel = lvl
			}
			continue
		}
		offLadder = append(offLadder, a)
	}
	if minLevel > 0 && len(offLadder) == 0 {
		v.ExamRequirement = fmt.Sprintf("Minimum %s", levelNames[minLevel])
	}

	u := Normalize(user)
	if u == "" {
		return v
	}
	if userLevel, ok := EducationLevel(u); ok && minLevel > 0 && userLevel >= minLevel {
		v.Eligible = true
		return v
	}
	for _, a := range offLadder {
		if substringMatch(a, u) {
			v.Eligible = true
			return v
		}
	}
	return v
}

func containsWord(s, word string) bool {
	for i := 0; i+len(word) <= len(s); i++ {
		if s[i:i+len(word)] != word {
			continue
		}
		before := i == 0 || !isAlnum(s[i-1])
		after := i+len(word) == len(s) || !isAlnum(s[i+len(word)])
		if before && after {
			return true
		}
	}
	return false
}

func isAlnum(b byte) bool {
	return b >= 'A' && b <= 'Z' || b >= '0' && b <= '9'
}
