package inmemdb

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/vipinkoroth/sarvodaya/core"
	"github.com/vipinkoroth/sarvodaya/core/student"
)

type studentRepository struct {
	db *studentTable
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *DB) *studentRepository {
	return &studentRepository{db: db.student}
}

func (repo *studentRepository) query() []student.Student {
	students := make([]student.Student, 0, len(repo.db.t))
	for _, s := range repo.db.t {
		students = append(students, *s)
	}
	return students
}

func (repo *studentRepository) CheckAdmissionNoUniqueness(_ context.Context, admissionNo string, excluded []student.Student) error {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	excludedIDs := make(map[string]bool, len(excluded))
	for _, st := range excluded {
		excludedIDs[st.ID] = true
	}

	for _, st := range repo.query() {
		if st.AdmissionNo == admissionNo && !excludedIDs[st.ID] {
			return student.ErrAdmissionExists
		}
	}
	return nil
}

func (repo *studentRepository) CreateStudent(_ context.Context, st student.Student) (student.Student, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	st.ID = uuid.New().String()
	repo.db.t[st.ID] = &st
	return st, nil
}

func (repo *studentRepository) GetStudentByID(_ context.Context, id string) (student.Student, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if st, ok := repo.db.t[id]; ok {
		return *st, nil
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *studentRepository) GetStudentByAdmissionNo(_ context.Context, admissionNo string) (student.Student, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, st := range repo.query() {
		if st.AdmissionNo == admissionNo {
			return st, nil
		}
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *studentRepository) QueryStudents(_ context.Context, filter *student.QueryFilter, ordering []core.DBOrdering) ([]student.Student, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	students := make([]student.Student, 0)
	for _, st := range repo.query() {
		if matchesStudentFilter(st, filter) {
			students = append(students, st)
		}
	}
	sort.Slice(students, func(i, j int) bool {
		if students[i].Class != students[j].Class {
			return students[i].Class < students[j].Class
		}
		if students[i].Division != students[j].Division {
			return students[i].Division < students[j].Division
		}
		return students[i].Name < students[j].Name
	})
	return students, nil
}

func matchesStudentFilter(st student.Student, filter *student.QueryFilter) bool {
	if filter == nil {
		return true
	}
	if filter.Search != "" {
		kw := strings.ToLower(filter.Search)
		if !strings.Contains(strings.ToLower(st.Name), kw) &&
			!strings.Contains(strings.ToLower(st.AdmissionNo), kw) &&
			!strings.Contains(st.Mobile, filter.Search) {
			return false
		}
	}
	if filter.Class != "" && st.Class != filter.Class {
		return false
	}
	if filter.Division != "" && st.Division != filter.Division {
		return false
	}
	if filter.BusStop != "" && st.BusStop != filter.BusStop {
		return false
	}
	return true
}

func (repo *studentRepository) UpdateStudent(_ context.Context, st student.Student) (student.Student, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.t[st.ID]; !ok {
		return student.Student{}, student.ErrNotFound
	}
	repo.db.t[st.ID] = &st
	return st, nil
}

func (repo *studentRepository) DeleteStudentsByID(_ context.Context, ids []string) (int, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	var cnt int
	for _, id := range ids {
		if _, ok := repo.db.t[id]; ok {
			delete(repo.db.t, id)
			cnt++
		}
	}
	return cnt, nil
}
