package sqlxrepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/sarvashiksha/backend/core/class"
	"github.com/sarvashiksha/backend/core/user"
	"github.com/sarvashiksha/backend/storage/database"
)

const classSelect = `SELECT c.id, c.teacher_id, c.name, c.description, c.grade_level, c.enrollment_code,
		c.created_at, c.updated_at,
		COALESCE(array_agg(cs.student_id::text ORDER BY cs.enrolled_at) FILTER (WHERE cs.student_id IS NOT NULL), '{}') AS student_ids
	FROM class c
	LEFT JOIN class_student cs ON cs.class_id = c.id`

const classGroupBy = ` GROUP BY c.id`

type classRow struct {
	ID             string         `db:"id"`
	TeacherID      string         `db:"teacher_id"`
	Name           string         `db:"name"`
	Description    string         `db:"description"`
	GradeLevel     string         `db:"grade_level"`
	EnrollmentCode string         `db:"enrollment_code"`
	CreatedAt      time.Time      `db:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at"`
	StudentIDs     pq.StringArray `db:"student_ids"`
}

func toClassRow(cls class.Class) classRow {
	return classRow{
		ID:             cls.ID,
		TeacherID:      cls.TeacherID,
		Name:           cls.Name,
		Description:    cls.Description,
		GradeLevel:     cls.GradeLevel,
		EnrollmentCode: cls.EnrollmentCode,
		CreatedAt:      cls.CreatedAt.UTC(),
		UpdatedAt:      cls.UpdatedAt.UTC(),
	}
}

func (r classRow) toClass() class.Class {
	ids := []string(r.StudentIDs)
	if ids == nil {
		ids = []string{}
	}
	return class.Class{
		ID:             r.ID,
		TeacherID:      r.TeacherID,
		Name:           r.Name,
		Description:    r.Description,
		GradeLevel:     r.GradeLevel,
		EnrollmentCode: r.EnrollmentCode,
		StudentIDs:     ids,
		CreatedAt:      r.CreatedAt.UTC(),
		UpdatedAt:      r.UpdatedAt.UTC(),
	}
}

type classRepository struct {
	db *sqlx.DB
}

var _ class.Repository = (*classRepository)(nil) // interface compliance check

func NewClassRepository(db *sqlx.DB) *classRepository {
	return &classRepository{db: db}
}

func (repo classRepository) trapCodeErr(err error, msg string) error {
	if database.IsUniqueViolation(err, "class_enrollment_code_key") {
		return class.ErrCodeTaken
	}
	return errors.Wrap(err, msg)
}

func (repo classRepository) CreateClass(ctx context.Context, cls class.Class) (class.Class, error) {
	cls.ID = uuid.New().String()
	q := `INSERT INTO class (id, teacher_id, name, description, grade_level, enrollment_code, created_at, updated_at)
		VALUES (:id, :teacher_id, :name, :description, :grade_level, :enrollment_code, :created_at, :updated_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, toClassRow(cls)); err != nil {
		return class.Class{}, repo.trapCodeErr(err, "inserting class")
	}
	if cls.StudentIDs == nil {
		cls.StudentIDs = []string{}
	}
	return cls, nil
}

func (repo classRepository) getOne(ctx context.Context, cond string, arg interface{}) (class.Class, error) {
	var row classRow
	if err := repo.db.GetContext(ctx, &row, classSelect+" WHERE "+cond+classGroupBy, arg); err != nil {
		return class.Class{}, trapNoRowsErr(err, class.ErrNotFound, "finding class")
	}
	return row.toClass(), nil
}

func (repo classRepository) GetClass(ctx context.Context, id string) (class.Class, error) {
	if !isUUID(id) {
		return class.Class{}, class.ErrNotFound
	}
	return repo.getOne(ctx, "c.id = $1", id)
}

func (repo classRepository) GetClassByCode(ctx context.Context, code string) (class.Class, error) {
	return repo.getOne(ctx, "c.enrollment_code = $1", code)
}

func (repo classRepository) QueryClasses(ctx context.Context, filter class.QueryFilter) ([]class.Class, error) {
	var w where
	if filter.TeacherID != "" {
		if !isUUID(filter.TeacherID) {
			return []class.Class{}, nil
		}
		w.add("c.teacher_id = ?", filter.TeacherID)
	}
	if filter.StudentID != "" {
		if !isUUID(filter.StudentID) {
			return []class.Class{}, nil
		}
		w.add("c.id IN (SELECT class_id FROM class_student WHERE student_id = ?)", filter.StudentID)
	}

	var rows []classRow
	q := classSelect + w.String() + classGroupBy + ` ORDER BY c.created_at DESC`
	if err := repo.db.SelectContext(ctx, &rows, q, w.args...); err != nil {
		return nil, errors.Wrap(err, "querying classes")
	}
	classes := make([]class.Class, 0, len(rows))
	for _, r := range rows {
		classes = append(classes, r.toClass())
	}
	return classes, nil
}

func (repo classRepository) UpdateClass(ctx context.Context, cls class.Class) (class.Class, error) {
	if !isUUID(cls.ID) {
		return class.Class{}, class.ErrNotFound
	}
	q := `UPDATE class SET name = :name, description = :description, grade_level = :grade_level,
			enrollment_code = :enrollment_code, updated_at = :updated_at
		WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, q, toClassRow(cls))
	if err != nil {
		return class.Class{}, repo.trapCodeErr(err, "updating class")
	}
	if n, err := res.RowsAffected(); err != nil {
		return class.Class{}, errors.Wrap(err, "updating class")
	} else if n == 0 {
		return class.Class{}, class.ErrNotFound
	}
	return cls, nil
}

func (repo classRepository) DeleteClass(ctx context.Context, id string) error {
	if !isUUID(id) {
		return class.ErrNotFound
	}
	if _, err := repo.db.ExecContext(ctx, `DELETE FROM class WHERE id = $1`, id); err != nil {
		if database.IsForeignKeyViolation(err, database.SubmissionAssignmentFK) {
			return class.ErrHasSubmissions
		}
		return errors.Wrap(err, "deleting class")
	}
	return nil
}

func (repo classRepository) AddStudent(ctx context.Context, classID, studentID string) error {
	if !isUUID(classID, studentID) {
		return class.ErrNotFound
	}
	q := `INSERT INTO class_student (class_id, student_id, enrolled_at) VALUES ($1, $2, $3)`
	if _, err := repo.db.ExecContext(ctx, q, classID, studentID, time.Now().UTC()); err != nil {
		if database.IsUniqueViolation(err) {
			return class.ErrAlreadyEnrolled
		}
		return errors.Wrap(err, "enrolling student")
	}
	return nil
}

func (repo classRepository) RemoveStudent(ctx context.Context, classID, studentID string) error {
	if !isUUID(classID, studentID) {
		return class.ErrNotEnrolled
	}
	res, err := repo.db.ExecContext(ctx, `DELETE FROM class_student WHERE class_id = $1 AND student_id = $2`, classID, studentID)
	if err != nil {
		return errors.Wrap(err, "removing student")
	}
	if n, err := res.RowsAffected(); err != nil {
		return errors.Wrap(err, "removing student")
	} else if n == 0 {
		return class.ErrNotEnrolled
	}
	return nil
}

func (repo classRepository) ListStudents(ctx context.Context, classID string) ([]user.User, error) {
	if !isUUID(classID) {
		return nil, class.ErrNotFound
	}
	var rows []userRow
	q := `SELECT u.id, u.name, u.username, u.email, u.role, u.grade, u.is_active, u.password_hash,
			u.created_at, u.updated_at, u.last_login
		FROM "user" u
		JOIN class_student cs ON cs.student_id = u.id
		WHERE cs.class_id = $1
		ORDER BY u.name, u.id`
	if err := repo.db.SelectContext(ctx, &rows, q, classID); err != nil {
		return nil, errors.Wrap(err, "listing students")
	}
	return toUsers(rows), nil
}
