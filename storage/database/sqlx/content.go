package sqlxrepos

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/sarvashiksha/backend/core/content"
	"github.com/sarvashiksha/backend/storage/database"
)

const (
	assignmentColumns = `id, class_id, teacher_id, title, description, assignment_type, quiz_data, due_date, created_at, updated_at`
	materialColumns   = `id, class_id, teacher_id, title, description, url, created_at`
)

type assignmentRow struct {
	ID          string         `db:"id"`
	ClassID     string         `db:"class_id"`
	TeacherID   string         `db:"teacher_id"`
	Title       string         `db:"title"`
	Description string         `db:"description"`
	Type        string         `db:"assignment_type"`
	QuizData    types.JSONText `db:"quiz_data"`
	DueDate     null.Time      `db:"due_date"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
}

func toAssignmentRow(a content.Assignment) (assignmentRow, error) {
	quizData, err := json.Marshal(a.QuizData)
	if err != nil {
		return assignmentRow{}, errors.Wrap(err, "encoding quiz data")
	}
	row := assignmentRow{
		ID:          a.ID,
		ClassID:     a.ClassID,
		TeacherID:   a.TeacherID,
		Title:       a.Title,
		Description: a.Description,
		Type:        a.Type,
		QuizData:    types.JSONText(quizData),
		DueDate:     null.TimeFromPtr(a.DueDate),
		CreatedAt:   a.CreatedAt.UTC(),
		UpdatedAt:   a.UpdatedAt.UTC(),
	}
	return row, nil
}

func (r assignmentRow) toAssignment() (content.Assignment, error) {
	a := content.Assignment{
		ID:          r.ID,
		ClassID:     r.ClassID,
		TeacherID:   r.TeacherID,
		Title:       r.Title,
		Description: r.Description,
		Type:        r.Type,
		CreatedAt:   r.CreatedAt.UTC(),
		UpdatedAt:   r.UpdatedAt.UTC(),
	}
	if err := r.QuizData.Unmarshal(&a.QuizData); err != nil {
		return content.Assignment{}, errors.Wrap(err, "decoding quiz data")
	}
	if a.QuizData.Questions == nil {
		a.QuizData.Questions = []content.Question{}
	}
	if r.DueDate.Valid {
		due := r.DueDate.Time.UTC()
		a.DueDate = &due
	}
	return a, nil
}

type materialRow struct {
	ID          string    `db:"id"`
	ClassID     string    `db:"class_id"`
	TeacherID   string    `db:"teacher_id"`
	Title       string    `db:"title"`
	Description string    `db:"description"`
	URL         string    `db:"url"`
	CreatedAt   time.Time `db:"created_at"`
}

func (r materialRow) toMaterial() content.Material {
	return content.Material{
		ID:          r.ID,
		ClassID:     r.ClassID,
		TeacherID:   r.TeacherID,
		Title:       r.Title,
		Description: r.Description,
		URL:         r.URL,
		CreatedAt:   r.CreatedAt.UTC(),
	}
}

type contentRepository struct {
	db *sqlx.DB
}

var _ content.Repository = (*contentRepository)(nil) // interface compliance check

func NewContentRepository(db *sqlx.DB) *contentRepository {
	return &contentRepository{db: db}
}

func (repo contentRepository) CreateAssignment(ctx context.Context, a content.Assignment) (content.Assignment, error) {
	a.ID = uuid.New().String()
	row, err := toAssignmentRow(a)
	if err != nil {
		return content.Assignment{}, err
	}
	q := `INSERT INTO assignment (` + assignmentColumns + `)
		VALUES (:id, :class_id, :teacher_id, :title, :description, :assignment_type, :quiz_data, :due_date, :created_at, :updated_at)`
	if _, err = repo.db.NamedExecContext(ctx, q, row); err != nil {
		return content.Assignment{}, errors.Wrap(err, "inserting assignment")
	}
	return a, nil
}

func (repo contentRepository) GetAssignment(ctx context.Context, id string) (content.Assignment, error) {
	if !isUUID(id) {
		return content.Assignment{}, content.ErrAssignmentNotFound
	}
	var row assignmentRow
	if err := repo.db.GetContext(ctx, &row, `SELECT `+assignmentColumns+` FROM assignment WHERE id = $1`, id); err != nil {
		return content.Assignment{}, trapNoRowsErr(err, content.ErrAssignmentNotFound, "finding assignment")
	}
	return row.toAssignment()
}

func (repo contentRepository) QueryAssignments(ctx context.Context, filter content.AssignmentFilter) ([]content.Assignment, error) {
	var w where
	if filter.ClassID != "" {
		if !isUUID(filter.ClassID) {
			return []content.Assignment{}, nil
		}
		w.add("class_id = ?", filter.ClassID)
	}
	if filter.TeacherID != "" {
		if !isUUID(filter.TeacherID) {
			return []content.Assignment{}, nil
		}
		w.add("teacher_id = ?", filter.TeacherID)
	}

	var rows []assignmentRow
	q := `SELECT ` + assignmentColumns + ` FROM assignment` + w.String() + ` ORDER BY created_at DESC`
	if err := repo.db.SelectContext(ctx, &rows, q, w.args...); err != nil {
		return nil, errors.Wrap(err, "querying assignments")
	}
	assignments := make([]content.Assignment, 0, len(rows))
	for _, r := range rows {
		a, err := r.toAssignment()
		if err != nil {
			return nil, err
		}
		assignments = append(assignments, a)
	}
	return assignments, nil
}

func (repo contentRepository) DeleteAssignment(ctx context.Context, id string) error {
	if !isUUID(id) {
		return content.ErrAssignmentNotFound
	}
	if _, err := repo.db.ExecContext(ctx, `DELETE FROM assignment WHERE id = $1`, id); err != nil {
		if database.IsForeignKeyViolation(err, database.SubmissionAssignmentFK) {
			return content.ErrAssignmentHasSubmissions
		}
		return errors.Wrap(err, "deleting assignment")
	}
	return nil
}

func (repo contentRepository) CreateMaterial(ctx context.Context, m content.Material) (content.Material, error) {
	m.ID = uuid.New().String()
	row := materialRow{
		ID:          m.ID,
		ClassID:     m.ClassID,
		TeacherID:   m.TeacherID,
		Title:       m.Title,
		Description: m.Description,
		URL:         m.URL,
		CreatedAt:   m.CreatedAt.UTC(),
	}
	q := `INSERT INTO material (` + materialColumns + `)
		VALUES (:id, :class_id, :teacher_id, :title, :description, :url, :created_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, row); err != nil {
		return content.Material{}, errors.Wrap(err, "inserting material")
	}
	return m, nil
}

func (repo contentRepository) GetMaterial(ctx context.Context, id string) (content.Material, error) {
	if !isUUID(id) {
		return content.Material{}, content.ErrMaterialNotFound
	}
	var row materialRow
	if err := repo.db.GetContext(ctx, &row, `SELECT `+materialColumns+` FROM material WHERE id = $1`, id); err != nil {
		return content.Material{}, trapNoRowsErr(err, content.ErrMaterialNotFound, "finding material")
	}
	return row.toMaterial(), nil
}

func (repo contentRepository) QueryMaterials(ctx context.Context, classID string) ([]content.Material, error) {
	if !isUUID(classID) {
		return []content.Material{}, nil
	}
	var rows []materialRow
	q := `SELECT ` + materialColumns + ` FROM material WHERE class_id = $1 ORDER BY created_at DESC`
	if err := repo.db.SelectContext(ctx, &rows, q, classID); err != nil {
		return nil, errors.Wrap(err, "querying materials")
	}
	materials := make([]content.Material, 0, len(rows))
	for _, r := range rows {
		materials = append(materials, r.toMaterial())
	}
	return materials, nil
}

func (repo contentRepository) DeleteMaterial(ctx context.Context, id string) error {
	if !isUUID(id) {
		return content.ErrMaterialNotFound
	}
	if _, err := repo.db.ExecContext(ctx, `DELETE FROM material WHERE id = $1`, id); err != nil {
		return errors.Wrap(err, "deleting material")
	}
	return nil
}
