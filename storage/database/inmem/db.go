// Package inmemdb is the process-local fallback store used when no database
// is configured. State lives for the life of the process only.
package inmemdb

import (
	"sync"

	"github.com/vipinkoroth/sarvodaya/core/collection"
	"github.com/vipinkoroth/sarvodaya/core/fees"
	"github.com/vipinkoroth/sarvodaya/core/payment"
	"github.com/vipinkoroth/sarvodaya/core/student"
	"github.com/vipinkoroth/sarvodaya/core/user"
)

type (
	DB struct {
		user       *userTable
		student    *studentTable
		payment    *paymentTable
		feeConfig  *feeConfigTable
		collection *collectionTables
	}

	userTable struct {
		t     map[string]*user.User
		mutex sync.RWMutex
	}

	studentTable struct {
		t     map[string]*student.Student
		mutex sync.RWMutex
	}

	paymentTable struct {
		t     map[string]*payment.Payment
		mutex sync.RWMutex
	}

	feeConfigTable struct {
		cfg   *fees.Config
		mutex sync.RWMutex
	}

	collectionTables struct {
		teacher map[string]*collection.TeacherEntry
		section map[string]*collection.SectionEntry
		mutex   sync.RWMutex
	}
)

func Open() (*DB, error) {
	db := &DB{
		user:      &userTable{t: make(map[string]*user.User)},
		student:   &studentTable{t: make(map[string]*student.Student)},
		payment:   &paymentTable{t: make(map[string]*payment.Payment)},
		feeConfig: &feeConfigTable{},
		collection: &collectionTables{
			teacher: make(map[string]*collection.TeacherEntry),
			section: make(map[string]*collection.SectionEntry),
		},
	}
	return db, nil
}
