package inmemdb

// The helpers below mirror the foreign key rules of the SQL schema: classes, assignments
// & users cascade, except that no delete may remove a submission (ON DELETE RESTRICT).
// They must be called with the lock held.

func (db *DB) assignmentHasSubmissions(id string) bool {
	for _, s := range db.submissions {
		if s.AssignmentID == id {
			return true
		}
	}
	return false
}

func (db *DB) classHasSubmissions(id string) bool {
	for aID, a := range db.assignments {
		if a.ClassID == id && db.assignmentHasSubmissions(aID) {
			return true
		}
	}
	return false
}

func (db *DB) userHasSubmissions(id string) bool {
	for _, s := range db.submissions {
		if s.StudentID == id {
			return true
		}
	}
	for cID, cls := range db.classes {
		if cls.TeacherID == id && db.classHasSubmissions(cID) {
			return true
		}
	}
	return false
}

func (db *DB) deleteClass(id string) {
	if _, ok := db.classes[id]; !ok {
		return
	}
	delete(db.classes, id)
	for aID, a := range db.assignments {
		if a.ClassID == id {
			db.deleteAssignment(aID)
		}
	}
	for mID, m := range db.materials {
		if m.ClassID == id {
			delete(db.materials, mID)
		}
	}
}

func (db *DB) deleteAssignment(id string) {
	delete(db.assignments, id)
}

func (db *DB) cascadeUser(id string) {
	for cID, cls := range db.classes {
		if cls.TeacherID == id {
			db.deleteClass(cID)
			continue
		}
		for i, sID := range cls.StudentIDs {
			if sID == id {
				cls.StudentIDs = append(cls.StudentIDs[:i:i], cls.StudentIDs[i+1:]...)
				break
			}
		}
	}
	for nID, n := range db.notifications {
		if n.UserID == id {
			delete(db.notifications, nID)
		}
	}
}
