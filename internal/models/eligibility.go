package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// EligibilitySpec selects which students are expected at an event.
type EligibilitySpec struct {
	AllStudents bool     `json:"all_students"`
	ClusterIDs  []string `json:"cluster_ids,omitempty"`
	CourseIDs   []string `json:"course_ids,omitempty"`
	SectionIDs  []string `json:"section_ids,omitempty"`
	YearLevels  []int    `json:"year_levels,omitempty"`
}

// HasTargets reports whether the spec selects anyone before year filtering.
func (s EligibilitySpec) HasTargets() bool {
	return s.AllStudents || len(s.ClusterIDs) > 0 || len(s.CourseIDs) > 0 || len(s.SectionIDs) > 0
}

// Value stores the spec as jsonb.
func (s EligibilitySpec) Value() (driver.Value, error) {
	return json.Marshal(s)
}

// Scan reads the spec from a jsonb column.
func (s *EligibilitySpec) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*s = EligibilitySpec{}
		return nil
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	default:
		return fmt.Errorf("eligibility: unsupported scan type %T", src)
	}
}
