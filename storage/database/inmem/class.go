package inmemdb

import (
	"context"
	"sort"
	"strings"

	"github.com/sarvashiksha/backend/core/class"
	"github.com/sarvashiksha/backend/core/user"
)

type classRepository struct {
	db *DB
}

var _ class.Repository = (*classRepository)(nil) // interface compliance check

func NewClassRepository(db *DB) *classRepository {
	return &classRepository{db: db}
}

func copyClass(cls *class.Class) class.Class {
	c := *cls
	c.StudentIDs = append([]string{}, cls.StudentIDs...)
	return c
}

func (repo *classRepository) codeTaken(code, excludedID string) bool {
	for _, cls := range repo.db.classes {
		if cls.ID != excludedID && cls.EnrollmentCode == code {
			return true
		}
	}
	return false
}

func (repo *classRepository) CreateClass(_ context.Context, cls class.Class) (class.Class, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if repo.codeTaken(cls.EnrollmentCode, "") {
		return class.Class{}, class.ErrCodeTaken
	}
	cls.ID = repo.db.newID()
	cls.StudentIDs = []string{}
	c := copyClass(&cls)
	repo.db.classes[cls.ID] = &c
	return cls, nil
}

func (repo *classRepository) GetClass(_ context.Context, id string) (class.Class, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if cls, ok := repo.db.classes[id]; ok {
		return copyClass(cls), nil
	}
	return class.Class{}, class.ErrNotFound
}

func (repo *classRepository) GetClassByCode(_ context.Context, code string) (class.Class, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, cls := range repo.db.classes {
		if strings.EqualFold(cls.EnrollmentCode, code) {
			return copyClass(cls), nil
		}
	}
	return class.Class{}, class.ErrNotFound
}

func (repo *classRepository) QueryClasses(_ context.Context, filter class.QueryFilter) ([]class.Class, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	classes := make([]class.Class, 0)
	for _, cls := range repo.db.classes {
		if filter.TeacherID != "" && cls.TeacherID != filter.TeacherID {
			continue
		}
		if filter.StudentID != "" && !cls.HasStudent(filter.StudentID) {
			continue
		}
		classes = append(classes, copyClass(cls))
	}
	// newest first
	sort.Slice(classes, func(i, j int) bool { return repo.db.before(classes[j].ID, classes[i].ID) })
	return classes, nil
}

func (repo *classRepository) UpdateClass(_ context.Context, cls class.Class) (class.Class, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.classes[cls.ID]
	if !ok {
		return class.Class{}, class.ErrNotFound
	}
	if repo.codeTaken(cls.EnrollmentCode, cls.ID) {
		return class.Class{}, class.ErrCodeTaken
	}
	// the roster is only changed through AddStudent & RemoveStudent
	cls.StudentIDs = orig.StudentIDs
	c := copyClass(&cls)
	repo.db.classes[cls.ID] = &c
	return copyClass(&c), nil
}

func (repo *classRepository) DeleteClass(_ context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	if repo.db.classHasSubmissions(id) {
		return class.ErrHasSubmissions
	}
	repo.db.deleteClass(id)
	return nil
}

func (repo *classRepository) AddStudent(_ context.Context, classID, studentID string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	cls, ok := repo.db.classes[classID]
	if !ok {
		return class.ErrNotFound
	}
	if _, ok = repo.db.users[studentID]; !ok {
		return user.ErrNotFound
	}
	if cls.HasStudent(studentID) {
		return class.ErrAlreadyEnrolled
	}
	cls.StudentIDs = append(cls.StudentIDs, studentID)
	return nil
}

func (repo *classRepository) RemoveStudent(_ context.Context, classID, studentID string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	cls, ok := repo.db.classes[classID]
	if !ok {
		return class.ErrNotEnrolled
	}
	for i, id := range cls.StudentIDs {
		if id == studentID {
			cls.StudentIDs = append(cls.StudentIDs[:i:i], cls.StudentIDs[i+1:]...)
			return nil
		}
	}
	return class.ErrNotEnrolled
}

func (repo *classRepository) ListStudents(_ context.Context, classID string) ([]user.User, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	cls, ok := repo.db.classes[classID]
	if !ok {
		return nil, class.ErrNotFound
	}
	students := make([]user.User, 0, len(cls.StudentIDs))
	for _, id := range cls.StudentIDs {
		if usr, ok := repo.db.users[id]; ok {
			students = append(students, *usr)
		}
	}
	sort.SliceStable(students, func(i, j int) bool {
		if students[i].Name != students[j].Name {
			return students[i].Name < students[j].Name
		}
		return students[i].ID < students[j].ID
	})
	return students, nil
}
