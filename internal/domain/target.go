package domain

// TargetDimension identifies which kind of place a task applies to.
type TargetDimension string

const (
	TargetNone        TargetDimension = ""
	TargetWarehouse   TargetDimension = "warehouse"
	TargetRoom        TargetDimension = "room"
	TargetReservation TargetDimension = "reservation"
)

// TaskTarget is the populated target of a task.
type TaskTarget struct {
	Dimension TargetDimension
	Value     string
}

// Target returns the task's target. When more than one field is populated the
// warehouse wins over the room, and the room over the reservation.
func (t *Task) Target() TaskTarget {
	switch {
	case t.ToWarehouseID != nil:
		return TaskTarget{Dimension: TargetWarehouse, Value: *t.ToWarehouseID}
	case t.ToRoomID != nil:
		return TaskTarget{Dimension: TargetRoom, Value: *t.ToRoomID}
	case t.ToReservationID != nil:
		return TaskTarget{Dimension: TargetReservation, Value: *t.ToReservationID}
	default:
		return TaskTarget{}
	}
}

// targetValue returns the task's value in the given dimension, if populated.
func (t *Task) targetValue(d TargetDimension) (string, bool) {
	var v *string
	switch d {
	case TargetWarehouse:
		v = t.ToWarehouseID
	case TargetRoom:
		v = t.ToRoomID
	case TargetReservation:
		v = t.ToReservationID
	}
	if v == nil {
		return "", false
	}
	return *v, true
}

// SharesTargetWith reports whether sibling works on the same place as t.
// The sibling's target decides the dimension; t must have that same dimension
// populated with the same value.
func (t *Task) SharesTargetWith(sibling *Task) bool {
	target := sibling.Target()
	if target.Dimension == TargetNone {
		return false
	}
	value, ok := t.targetValue(target.Dimension)
	return ok && value == target.Value
}

// ConflictingSiblings returns the tasks that lose the claim when primary is claimed.
// The primary itself and REJECTED siblings are never returned. Scan order is kept.
func ConflictingSiblings(primary *Task, siblings []*Task) []*Task {
	var conflicts []*Task
	for _, sibling := range siblings {
		if sibling.ID == primary.ID {
			continue
		}
		if sibling.StatusKey == TaskStatusRejected {
			continue
		}
		if primary.SharesTargetWith(sibling) {
			conflicts = append(conflicts, sibling)
		}
	}
	return conflicts
}

// RequiresConflictScan reports whether moving the task to status must mark
// siblings on the same target as claimed by someone else.
func (t *Task) RequiresConflictScan(status TaskStatus) bool {
	return status == TaskStatusWaiting && !t.MustBeFinishedByAllWhos
}
