package models

// Cluster groups courses (for example a college or department).
type Cluster struct {
	ID   string `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

// Course belongs to a cluster and owns sections.
type Course struct {
	ID        string `db:"id" json:"id"`
	ClusterID string `db:"cluster_id" json:"cluster_id"`
	Name      string `db:"name" json:"name"`
}

// Section is a year-level class within a course.
type Section struct {
	ID        string `db:"id" json:"id"`
	CourseID  string `db:"course_id" json:"course_id"`
	Name      string `db:"name" json:"name"`
	YearLevel int    `db:"year_level" json:"year_level"`
}

// Student is a roster entry with its current section and account status.
type Student struct {
	ID        string  `db:"id" json:"id"`
	FullName  string  `db:"full_name" json:"full_name"`
	SectionID *string `db:"section_id" json:"section_id,omitempty"`
	YearLevel *int    `db:"year_level" json:"year_level,omitempty"`
	Active    bool    `db:"active" json:"active"`
}
