package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/event-attendance-api/internal/models"
)

const studentSelect = `SELECT s.id, s.full_name, s.section_id, sec.year_level, s.active
FROM students s LEFT JOIN sections sec ON sec.id = s.section_id`

// RosterRepository reads the cluster/course/section/student hierarchy.
type RosterRepository struct {
	db *sqlx.DB
}

// NewRosterRepository constructs the repository.
func NewRosterRepository(db *sqlx.DB) *RosterRepository {
	return &RosterRepository{db: db}
}

// ListActiveStudents returns every active student with their current year level.
func (r *RosterRepository) ListActiveStudents(ctx context.Context) ([]models.Student, error) {
	query := studentSelect + ` WHERE s.active = TRUE ORDER BY s.id`
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query); err != nil {
		return nil, fmt.Errorf("list active students: %w", err)
	}
	return students, nil
}

// ListStudentsBySectionIDs returns the students currently in any of the sections.
func (r *RosterRepository) ListStudentsBySectionIDs(ctx context.Context, sectionIDs []string) ([]models.Student, error) {
	query := studentSelect + ` WHERE s.section_id = ANY($1) ORDER BY s.id`
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, pq.Array(sectionIDs)); err != nil {
		return nil, fmt.Errorf("list students by section: %w", err)
	}
	return students, nil
}

// FindClustersByIDs returns the clusters that exist among ids.
func (r *RosterRepository) FindClustersByIDs(ctx context.Context, ids []string) ([]models.Cluster, error) {
	const query = `SELECT id, name FROM clusters WHERE id = ANY($1)`
	var clusters []models.Cluster
	if err := r.db.SelectContext(ctx, &clusters, query, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("find clusters: %w", err)
	}
	return clusters, nil
}

// FindCoursesByIDs returns the courses that exist among ids.
func (r *RosterRepository) FindCoursesByIDs(ctx context.Context, ids []string) ([]models.Course, error) {
	const query = `SELECT id, cluster_id, name FROM courses WHERE id = ANY($1)`
	var courses []models.Course
	if err := r.db.SelectContext(ctx, &courses, query, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("find courses: %w", err)
	}
	return courses, nil
}

// FindSectionsByIDs returns the sections that exist among ids.
func (r *RosterRepository) FindSectionsByIDs(ctx context.Context, ids []string) ([]models.Section, error) {
	const query = `SELECT id, course_id, name, year_level FROM sections WHERE id = ANY($1)`
	var sections []models.Section
	if err := r.db.SelectContext(ctx, &sections, query, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("find sections: %w", err)
	}
	return sections, nil
}

// ListCoursesByClusterIDs returns every course of the clusters.
func (r *RosterRepository) ListCoursesByClusterIDs(ctx context.Context, clusterIDs []string) ([]models.Course, error) {
	const query = `SELECT id, cluster_id, name FROM courses WHERE cluster_id = ANY($1)`
	var courses []models.Course
	if err := r.db.SelectContext(ctx, &courses, query, pq.Array(clusterIDs)); err != nil {
		return nil, fmt.Errorf("list courses by cluster: %w", err)
	}
	return courses, nil
}

// ListSectionsByCourseIDs returns every section of the courses.
func (r *RosterRepository) ListSectionsByCourseIDs(ctx context.Context, courseIDs []string) ([]models.Section, error) {
	const query = `SELECT id, course_id, name, year_level FROM sections WHERE course_id = ANY($1)`
	var sections []models.Section
	if err := r.db.SelectContext(ctx, &sections, query, pq.Array(courseIDs)); err != nil {
		return nil, fmt.Errorf("list sections by course: %w", err)
	}
	return sections, nil
}
