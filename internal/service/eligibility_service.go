package service

import (
	"context"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/event-attendance-api/internal/models"
	appErrors "github.com/noah-isme/event-attendance-api/pkg/errors"
)

type rosterRepository interface {
	ListActiveStudents(ctx context.Context) ([]models.Student, error)
	FindClustersByIDs(ctx context.Context, ids []string) ([]models.Cluster, error)
	FindCoursesByIDs(ctx context.Context, ids []string) ([]models.Course, error)
	FindSectionsByIDs(ctx context.Context, ids []string) ([]models.Section, error)
	ListCoursesByClusterIDs(ctx context.Context, clusterIDs []string) ([]models.Course, error)
	ListSectionsByCourseIDs(ctx context.Context, courseIDs []string) ([]models.Section, error)
	ListStudentsBySectionIDs(ctx context.Context, sectionIDs []string) ([]models.Student, error)
}

// MissingRosterIDs lists referenced roster ids that do not exist.
type MissingRosterIDs struct {
	ClusterIDs []string `json:"cluster_ids,omitempty"`
	CourseIDs  []string `json:"course_ids,omitempty"`
	SectionIDs []string `json:"section_ids,omitempty"`
}

func (m MissingRosterIDs) empty() bool {
	return len(m.ClusterIDs) == 0 && len(m.CourseIDs) == 0 && len(m.SectionIDs) == 0
}

// EligibilityService expands eligibility specs into concrete student rosters.
type EligibilityService struct {
	repo   rosterRepository
	logger *zap.Logger
}

// NewEligibilityService constructs the resolver.
func NewEligibilityService(repo rosterRepository, logger *zap.Logger) *EligibilityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EligibilityService{repo: repo, logger: logger}
}

// Validate checks the spec's shape and that every referenced id exists.
func (s *EligibilityService) Validate(ctx context.Context, spec models.EligibilitySpec) error {
	normalized, err := normalizeSpec(spec)
	if err != nil {
		return err
	}
	if normalized.AllStudents {
		return nil
	}
	return s.ensureReferencesExist(ctx, normalized)
}

// Resolve returns the deduplicated, active students the spec selects,
// ordered by student id.
func (s *EligibilityService) Resolve(ctx context.Context, spec models.EligibilitySpec) ([]models.Student, error) {
	normalized, err := normalizeSpec(spec)
	if err != nil {
		return nil, err
	}

	var candidates []models.Student
	if normalized.AllStudents {
		candidates, err = s.repo.ListActiveStudents(ctx)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load students")
		}
	} else {
		if err := s.ensureReferencesExist(ctx, normalized); err != nil {
			return nil, err
		}
		sectionIDs, err := s.expandSections(ctx, normalized)
		if err != nil {
			return nil, err
		}
		if len(sectionIDs) > 0 {
			candidates, err = s.repo.ListStudentsBySectionIDs(ctx, sectionIDs)
			if err != nil {
				return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load section students")
			}
		}
	}

	roster := filterRoster(candidates, normalized.YearLevels)
	s.logger.Debug("eligibility resolved",
		zap.Bool("all_students", normalized.AllStudents),
		zap.Int("candidates", len(candidates)),
		zap.Int("eligible", len(roster)),
	)
	return roster, nil
}

// expandSections cascades cluster -> course -> section and unions the result
// with explicitly listed sections.
func (s *EligibilityService) expandSections(ctx context.Context, spec models.EligibilitySpec) ([]string, error) {
	courseIDs := newIDSet(spec.CourseIDs...)
	if len(spec.ClusterIDs) > 0 {
		courses, err := s.repo.ListCoursesByClusterIDs(ctx, spec.ClusterIDs)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to expand clusters")
		}
		for _, course := range courses {
			courseIDs.add(course.ID)
		}
	}

	sectionIDs := newIDSet(spec.SectionIDs...)
	if courseIDs.len() > 0 {
		sections, err := s.repo.ListSectionsByCourseIDs(ctx, courseIDs.sorted())
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to expand courses")
		}
		for _, section := range sections {
			sectionIDs.add(section.ID)
		}
	}
	return sectionIDs.sorted(), nil
}

func (s *EligibilityService) ensureReferencesExist(ctx context.Context, spec models.EligibilitySpec) error {
	var missing MissingRosterIDs

	if len(spec.ClusterIDs) > 0 {
		clusters, err := s.repo.FindClustersByIDs(ctx, spec.ClusterIDs)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load clusters")
		}
		found := newIDSet()
		for _, c := range clusters {
			found.add(c.ID)
		}
		missing.ClusterIDs = found.missing(spec.ClusterIDs)
	}
	if len(spec.CourseIDs) > 0 {
		courses, err := s.repo.FindCoursesByIDs(ctx, spec.CourseIDs)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load courses")
		}
		found := newIDSet()
		for _, c := range courses {
			found.add(c.ID)
		}
		missing.CourseIDs = found.missing(spec.CourseIDs)
	}
	if len(spec.SectionIDs) > 0 {
		sections, err := s.repo.FindSectionsByIDs(ctx, spec.SectionIDs)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load sections")
		}
		found := newIDSet()
		for _, sec := range sections {
			found.add(sec.ID)
		}
		missing.SectionIDs = found.missing(spec.SectionIDs)
	}

	if !missing.empty() {
		return appErrors.WithDetails(appErrors.ErrNotFound, "eligibility references unknown clusters, courses or sections", missing)
	}
	return nil
}

// normalizeSpec trims and deduplicates ids, rejecting blanks and empty specs.
func normalizeSpec(spec models.EligibilitySpec) (models.EligibilitySpec, error) {
	out := models.EligibilitySpec{AllStudents: spec.AllStudents}
	var err error
	if out.ClusterIDs, err = normalizeIDs("cluster", spec.ClusterIDs); err != nil {
		return out, err
	}
	if out.CourseIDs, err = normalizeIDs("course", spec.CourseIDs); err != nil {
		return out, err
	}
	if out.SectionIDs, err = normalizeIDs("section", spec.SectionIDs); err != nil {
		return out, err
	}
	for _, level := range spec.YearLevels {
		if level <= 0 {
			return out, appErrors.Clone(appErrors.ErrValidation, "year levels must be positive")
		}
	}
	out.YearLevels = spec.YearLevels
	if !out.HasTargets() {
		return out, appErrors.Clone(appErrors.ErrValidation, "eligibility must select all students or at least one cluster, course or section")
	}
	return out, nil
}

func normalizeIDs(kind string, ids []string) ([]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	set := newIDSet()
	for _, id := range ids {
		trimmed := strings.TrimSpace(id)
		if trimmed == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, kind+" ids must not be blank")
		}
		set.add(trimmed)
	}
	return set.sorted(), nil
}

func filterRoster(students []models.Student, yearLevels []int) []models.Student {
	levels := make(map[int]struct{}, len(yearLevels))
	for _, l := range yearLevels {
		levels[l] = struct{}{}
	}
	seen := make(map[string]struct{}, len(students))
	out := make([]models.Student, 0, len(students))
	for _, st := range students {
		if !st.Active {
			continue
		}
		if _, dup := seen[st.ID]; dup {
			continue
		}
		if len(levels) > 0 {
			if st.YearLevel == nil {
				continue
			}
			if _, ok := levels[*st.YearLevel]; !ok {
				continue
			}
		}
		seen[st.ID] = struct{}{}
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

type idSet map[string]struct{}

func newIDSet(ids ...string) idSet {
	set := make(idSet, len(ids))
	for _, id := range ids {
		set.add(id)
	}
	return set
}

func (s idSet) add(id string) { s[id] = struct{}{} }

func (s idSet) len() int { return len(s) }

func (s idSet) sorted() []string {
	out := make([]string, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func (s idSet) missing(ids []string) []string {
	var out []string
	for _, id := range ids {
		if _, ok := s[id]; !ok {
			out = append(out, id)
		}
	}
	return out
}
