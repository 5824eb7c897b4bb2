package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/coaching-center-api/internal/models"
)

const facultyColumns = `f.id, f.name, f.email, f.phone_number, f.employment_type, f.is_active, f.created_at, f.updated_at`

// FacultyRepository manages persistence for faculty, their skills and weekly availability.
type FacultyRepository struct {
	db *sqlx.DB
}

// NewFacultyRepository constructs a FacultyRepository.
func NewFacultyRepository(db *sqlx.DB) *FacultyRepository {
	return &FacultyRepository{db: db}
}

// List returns faculty matching filters with skills and availability attached.
func (r *FacultyRepository) List(ctx context.Context, filter models.FacultyFilter) ([]models.Faculty, error) {
	query := fmt.Sprintf("SELECT %s FROM faculty f WHERE 1=1", facultyColumns)
	var args []interface{}
	if filter.ID != "" {
		args = append(args, filter.ID)
		query += fmt.Sprintf(" AND f.id = $%d", len(args))
	}
	if filter.SkillID != "" {
		args = append(args, filter.SkillID)
		query += fmt.Sprintf(" AND EXISTS (SELECT 1 FROM faculty_skills fs WHERE fs.faculty_id = f.id AND fs.skill_id = $%d)", len(args))
	}
	if filter.Active != nil {
		args = append(args, *filter.Active)
		query += fmt.Sprintf(" AND f.is_active = $%d", len(args))
	}
	query += " ORDER BY f.name ASC"

	var faculty []models.Faculty
	if err := r.db.SelectContext(ctx, &faculty, query, args...); err != nil {
		return nil, fmt.Errorf("list faculty: %w", err)
	}
	if err := r.attach(ctx, faculty); err != nil {
		return nil, err
	}
	return faculty, nil
}

// FindByID fetches a faculty with skills and availability.
func (r *FacultyRepository) FindByID(ctx context.Context, id string) (*models.Faculty, error) {
	query := fmt.Sprintf("SELECT %s FROM faculty f WHERE f.id = $1", facultyColumns)
	var faculty models.Faculty
	if err := r.db.GetContext(ctx, &faculty, query, id); err != nil {
		return nil, err
	}
	list := []models.Faculty{faculty}
	if err := r.attach(ctx, list); err != nil {
		return nil, err
	}
	return &list[0], nil
}

// attach loads skills and availability for every faculty in two batched queries.
func (r *FacultyRepository) attach(ctx context.Context, faculty []models.Faculty) error {
	if len(faculty) == 0 {
		return nil
	}
	ids := make([]string, 0, len(faculty))
	index := make(map[string]int, len(faculty))
	for i := range faculty {
		ids = append(ids, faculty[i].ID)
		index[faculty[i].ID] = i
		faculty[i].Skills = []models.Skill{}
		faculty[i].Availability = []models.AvailabilityWindow{}
	}

	const skillsQuery = `SELECT fs.faculty_id, s.id AS skill_id, s.name AS skill_name
FROM faculty_skills fs JOIN skills s ON s.id = fs.skill_id
WHERE fs.faculty_id = ANY($1) ORDER BY s.name ASC`
	var links []models.FacultySkill
	if err := r.db.SelectContext(ctx, &links, skillsQuery, pq.Array(ids)); err != nil {
		return fmt.Errorf("list faculty skills: %w", err)
	}
	for _, link := range links {
		if i, ok := index[link.FacultyID]; ok {
			faculty[i].Skills = append(faculty[i].Skills, models.Skill{ID: link.SkillID, Name: link.SkillName})
		}
	}

	const availabilityQuery = `SELECT id, faculty_id, day_of_week, start_time::text AS start_time, end_time::text AS end_time
FROM faculty_availability WHERE faculty_id = ANY($1) ORDER BY faculty_id, day_of_week`
	var windows []models.AvailabilityWindow
	if err := r.db.SelectContext(ctx, &windows, availabilityQuery, pq.Array(ids)); err != nil {
		return fmt.Errorf("list faculty availability: %w", err)
	}
	for _, w := range windows {
		if i, ok := index[w.FacultyID]; ok {
			faculty[i].Availability = append(faculty[i].Availability, w)
		}
	}
	return nil
}

// Create inserts a faculty and links its skills in one transaction.
func (r *FacultyRepository) Create(ctx context.Context, faculty *models.Faculty, skillIDs []string) (err error) {
	if faculty.ID == "" {
		faculty.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	faculty.CreatedAt = now
	faculty.UpdatedAt = now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create faculty: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const query = `INSERT INTO faculty (id, name, email, phone_number, employment_type, is_active, created_at, updated_at)
		VALUES (:id, :name, :email, :phone_number, :employment_type, :is_active, :created_at, :updated_at)`
	if _, err = tx.NamedExecContext(ctx, query, faculty); err != nil {
		return fmt.Errorf("create faculty: %w", err)
	}
	if err = insertFacultySkills(ctx, tx, faculty.ID, skillIDs); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit create faculty: %w", err)
	}
	return nil
}

// Update modifies a faculty. A non-nil skillIDs replaces the skill links.
func (r *FacultyRepository) Update(ctx context.Context, faculty *models.Faculty, skillIDs []string) (err error) {
	faculty.UpdatedAt = time.Now().UTC()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin update faculty: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const query = `UPDATE faculty SET name = :name, email = :email, phone_number = :phone_number,
		employment_type = :employment_type, is_active = :is_active, updated_at = :updated_at WHERE id = :id`
	if _, err = tx.NamedExecContext(ctx, query, faculty); err != nil {
		return fmt.Errorf("update faculty: %w", err)
	}
	if skillIDs != nil {
		if _, err = tx.ExecContext(ctx, `DELETE FROM faculty_skills WHERE faculty_id = $1`, faculty.ID); err != nil {
			return fmt.Errorf("clear faculty skills: %w", err)
		}
		if err = insertFacultySkills(ctx, tx, faculty.ID, skillIDs); err != nil {
			return err
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit update faculty: %w", err)
	}
	return nil
}

func insertFacultySkills(ctx context.Context, tx *sqlx.Tx, facultyID string, skillIDs []string) error {
	for _, skillID := range skillIDs {
		if strings.TrimSpace(skillID) == "" {
			continue
		}
		const query = `INSERT INTO faculty_skills (faculty_id, skill_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`
		if _, err := tx.ExecContext(ctx, query, facultyID, skillID); err != nil {
			return fmt.Errorf("link faculty skill: %w", err)
		}
	}
	return nil
}

// Delete removes a faculty record.
func (r *FacultyRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM faculty WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete faculty: %w", err)
	}
	return nil
}

// ListAvailability returns the weekly windows of a faculty.
func (r *FacultyRepository) ListAvailability(ctx context.Context, facultyID string) ([]models.AvailabilityWindow, error) {
	const query = `SELECT id, faculty_id, day_of_week, start_time::text AS start_time, end_time::text AS end_time
FROM faculty_availability WHERE faculty_id = $1 ORDER BY day_of_week`
	var windows []models.AvailabilityWindow
	if err := r.db.SelectContext(ctx, &windows, query, facultyID); err != nil {
		return nil, fmt.Errorf("list availability: %w", err)
	}
	return windows, nil
}

// ReplaceAvailability swaps every window of a faculty atomically.
func (r *FacultyRepository) ReplaceAvailability(ctx context.Context, facultyID string, windows []models.AvailabilityWindow) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace availability: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM faculty_availability WHERE faculty_id = $1`, facultyID); err != nil {
		return fmt.Errorf("clear availability: %w", err)
	}
	const query = `INSERT INTO faculty_availability (id, faculty_id, day_of_week, start_time, end_time)
		VALUES (:id, :faculty_id, :day_of_week, :start_time, :end_time)`
	for i := range windows {
		if windows[i].ID == "" {
			windows[i].ID = uuid.NewString()
		}
		windows[i].FacultyID = facultyID
		if _, err = tx.NamedExecContext(ctx, query, windows[i]); err != nil {
			return fmt.Errorf("insert availability: %w", err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit availability: %w", err)
	}
	return nil
}

// SkillRepository reads the skill catalogue.
type SkillRepository struct {
	db *sqlx.DB
}

// NewSkillRepository constructs a SkillRepository.
func NewSkillRepository(db *sqlx.DB) *SkillRepository {
	return &SkillRepository{db: db}
}

// List returns every skill ordered by name.
func (r *SkillRepository) List(ctx context.Context) ([]models.Skill, error) {
	var skills []models.Skill
	if err := r.db.SelectContext(ctx, &skills, `SELECT id, name FROM skills ORDER BY name ASC`); err != nil {
		return nil, fmt.Errorf("list skills: %w", err)
	}
	return skills, nil
}
