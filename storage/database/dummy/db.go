package dummydb

import (
	"sync"

	"github.com/trezcool/kelasi/core/alert"
	"github.com/trezcool/kelasi/core/attendance"
	"github.com/trezcool/kelasi/core/class"
	"github.com/trezcool/kelasi/core/course"
	"github.com/trezcool/kelasi/core/evaluation"
	"github.com/trezcool/kelasi/core/justification"
	"github.com/trezcool/kelasi/core/notification"
	"github.com/trezcool/kelasi/core/user"
)

// DB is an in-memory store for tests and local hacking. A single lock guards
// all tables; repositories join across tables under it.
type DB struct {
	sync.RWMutex
	users          map[string]*user.User
	classes        map[string]*class.Class
	courses        map[string]*course.Course
	records        map[string]*attendance.Record
	alerts         map[string]*alert.Alert
	justifications map[string]*justification.Justification
	notifications  map[string]*notification.Notification
	evaluations    map[string]*evaluation.Evaluation
}

func Open() (*DB, error) {
	db := &DB{
		users:          make(map[string]*user.User),
		classes:        make(map[string]*class.Class),
		courses:        make(map[string]*course.Course),
		records:        make(map[string]*attendance.Record),
		alerts:         make(map[string]*alert.Alert),
		justifications: make(map[string]*justification.Justification),
		notifications:  make(map[string]*notification.Notification),
		evaluations:    make(map[string]*evaluation.Evaluation),
	}
	return db, nil
}
