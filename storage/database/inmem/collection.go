package inmemdb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/vipinkoroth/sarvodaya/core"
	"github.com/vipinkoroth/sarvodaya/core/collection"
)

type collectionRepository struct {
	db *collectionTables
}

var _ collection.Repository = (*collectionRepository)(nil) // interface compliance check

func NewCollectionRepository(db *DB) *collectionRepository {
	return &collectionRepository{db: db.collection}
}

func (repo *collectionRepository) CreateTeacherEntry(_ context.Context, e collection.TeacherEntry) (collection.TeacherEntry, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	e.ID = uuid.New().String()
	repo.db.teacher[e.ID] = &e
	return e, nil
}

func (repo *collectionRepository) GetTeacherEntryByID(_ context.Context, id string) (collection.TeacherEntry, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if e, ok := repo.db.teacher[id]; ok {
		return *e, nil
	}
	return collection.TeacherEntry{}, collection.ErrNotFound
}

func (repo *collectionRepository) QueryTeacherEntries(_ context.Context, filter *collection.QueryFilter, ordering []core.DBOrdering) ([]collection.TeacherEntry, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	entries := make([]collection.TeacherEntry, 0)
	for _, e := range repo.db.teacher {
		if filter != nil {
			if filter.Section != "" && e.Section != filter.Section {
				continue
			}
			if filter.Teacher != "" && e.FromTeacher != filter.Teacher {
				continue
			}
			if filter.Category != "" && e.Category != filter.Category {
				continue
			}
			if !filter.DateFrom.IsZero() && e.Date.Before(filter.DateFrom) {
				continue
			}
			if !filter.DateTo.IsZero() && e.Date.After(filter.DateTo) {
				continue
			}
		}
		entries = append(entries, *e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Date.After(entries[j].Date) })
	return entries, nil
}

func (repo *collectionRepository) UpdateTeacherEntry(_ context.Context, e collection.TeacherEntry) (collection.TeacherEntry, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.teacher[e.ID]; !ok {
		return collection.TeacherEntry{}, collection.ErrNotFound
	}
	repo.db.teacher[e.ID] = &e
	return e, nil
}

func (repo *collectionRepository) DeleteTeacherEntriesByID(_ context.Context, ids []string) (int, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	var cnt int
	for _, id := range ids {
		if _, ok := repo.db.teacher[id]; ok {
			delete(repo.db.teacher, id)
			cnt++
		}
	}
	return cnt, nil
}

func (repo *collectionRepository) CreateSectionEntry(_ context.Context, e collection.SectionEntry) (collection.SectionEntry, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	e.ID = uuid.New().String()
	repo.db.section[e.ID] = &e
	return e, nil
}

func (repo *collectionRepository) GetSectionEntryByID(_ context.Context, id string) (collection.SectionEntry, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if e, ok := repo.db.section[id]; ok {
		return *e, nil
	}
	return collection.SectionEntry{}, collection.ErrNotFound
}

func (repo *collectionRepository) QuerySectionEntries(_ context.Context, filter *collection.QueryFilter, ordering []core.DBOrdering) ([]collection.SectionEntry, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	entries := make([]collection.SectionEntry, 0)
	for _, e := range repo.db.section {
		if filter != nil {
			if filter.Section != "" && e.FromSection != filter.Section {
				continue
			}
			if filter.Category != "" && e.Category != filter.Category {
				continue
			}
			if !filter.DateFrom.IsZero() && e.Date.Before(filter.DateFrom) {
				continue
			}
			if !filter.DateTo.IsZero() && e.Date.After(filter.DateTo) {
				continue
			}
		}
		entries = append(entries, *e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Date.After(entries[j].Date) })
	return entries, nil
}

func (repo *collectionRepository) UpdateSectionEntry(_ context.Context, e collection.SectionEntry) (collection.SectionEntry, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.section[e.ID]; !ok {
		return collection.SectionEntry{}, collection.ErrNotFound
	}
	repo.db.section[e.ID] = &e
	return e, nil
}

func (repo *collectionRepository) DeleteSectionEntriesByID(_ context.Context, ids []string) (int, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	var cnt int
	for _, id := range ids {
		if _, ok := repo.db.section[id]; ok {
			delete(repo.db.section, id)
			cnt++
		}
	}
	return cnt, nil
}
