package lifecycle

import "sync/atomic"

// Snapshot is a point-in-time view of the process-wide context counters.
type Snapshot struct {
	// Created is the number of contexts created so far.
	Created uint64
	// Alive is the number of contexts created and not yet cancelled.
	Alive uint64
	// Cancelled counts cancellations per reason.
	Cancelled map[Reason]uint64
}

type counters struct {
	created  atomic.Uint64
	byUser   atomic.Uint64
	byParent atomic.Uint64
	byTimer  atomic.Uint64
}

var stats counters

func (s *counters) cancelled(r Reason) {
	switch r {
	case ReasonUser:
		s.byUser.Add(1)
	case ReasonParent:
		s.byParent.Add(1)
	case ReasonTimeout:
		s.byTimer.Add(1)
	}
}

// Stats returns the current context counters.
func Stats() Snapshot {
	user := stats.byUser.Load()
	parent := stats.byParent.Load()
	timer := stats.byTimer.Load()
	created := stats.created.Load()

	var alive uint64
	if total := user + parent + timer; created > total {
		alive = created - total
	}

	return Snapshot{
		Created: created,
		Alive:   alive,
		Cancelled: map[Reason]uint64{
			ReasonUser:    user,
			ReasonParent:  parent,
			ReasonTimeout: timer,
		},
	}
}
