package inmemdb

import (
	"context"
	"sort"

	"github.com/sarvashiksha/backend/core/class"
	"github.com/sarvashiksha/backend/core/content"
)

type contentRepository struct {
	db *DB
}

var _ content.Repository = (*contentRepository)(nil) // interface compliance check

func NewContentRepository(db *DB) *contentRepository {
	return &contentRepository{db: db}
}

func copyAssignment(a *content.Assignment) content.Assignment {
	c := *a
	c.QuizData.Questions = make([]content.Question, len(a.QuizData.Questions))
	for i, q := range a.QuizData.Questions {
		q.Options = append([]string{}, q.Options...)
		c.QuizData.Questions[i] = q
	}
	if a.DueDate != nil {
		due := *a.DueDate
		c.DueDate = &due
	}
	return c
}

func (repo *contentRepository) CreateAssignment(_ context.Context, a content.Assignment) (content.Assignment, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.classes[a.ClassID]; !ok {
		return content.Assignment{}, class.ErrNotFound
	}
	a.ID = repo.db.newID()
	stored := copyAssignment(&a)
	repo.db.assignments[a.ID] = &stored
	return copyAssignment(&stored), nil
}

func (repo *contentRepository) GetAssignment(_ context.Context, id string) (content.Assignment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if a, ok := repo.db.assignments[id]; ok {
		return copyAssignment(a), nil
	}
	return content.Assignment{}, content.ErrAssignmentNotFound
}

func (repo *contentRepository) QueryAssignments(_ context.Context, filter content.AssignmentFilter) ([]content.Assignment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	assignments := make([]content.Assignment, 0)
	for _, a := range repo.db.assignments {
		if filter.ClassID != "" && a.ClassID != filter.ClassID {
			continue
		}
		if filter.TeacherID != "" && a.TeacherID != filter.TeacherID {
			continue
		}
		assignments = append(assignments, copyAssignment(a))
	}
	sort.Slice(assignments, func(i, j int) bool { return repo.db.before(assignments[j].ID, assignments[i].ID) })
	return assignments, nil
}

func (repo *contentRepository) DeleteAssignment(_ context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	if repo.db.assignmentHasSubmissions(id) {
		return content.ErrAssignmentHasSubmissions
	}
	repo.db.deleteAssignment(id)
	return nil
}

func (repo *contentRepository) CreateMaterial(_ context.Context, m content.Material) (content.Material, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.classes[m.ClassID]; !ok {
		return content.Material{}, class.ErrNotFound
	}
	m.ID = repo.db.newID()
	stored := m
	repo.db.materials[m.ID] = &stored
	return m, nil
}

func (repo *contentRepository) GetMaterial(_ context.Context, id string) (content.Material, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if m, ok := repo.db.materials[id]; ok {
		return *m, nil
	}
	return content.Material{}, content.ErrMaterialNotFound
}

func (repo *contentRepository) QueryMaterials(_ context.Context, classID string) ([]content.Material, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	materials := make([]content.Material, 0)
	for _, m := range repo.db.materials {
		if m.ClassID == classID {
			materials = append(materials, *m)
		}
	}
	sort.Slice(materials, func(i, j int) bool { return repo.db.before(materials[j].ID, materials[i].ID) })
	return materials, nil
}

func (repo *contentRepository) DeleteMaterial(_ context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	delete(repo.db.materials, id)
	return nil
}
