package tasks

import "fmt"

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data
}

// Operation phase enumeration
type Phase int

const (
	AcquireLock Phase = iota
	CheckoutModel
	TrainDocuments
	CheckinModel
)

func (p Phase) String() string {
	switch p {
	case AcquireLock:
		return "acquire_lock"
	case CheckoutModel:
		return "checkout"
	case TrainDocuments:
		return "train"
	case CheckinModel:
		return "checkin"
	default:
		return ""
	}
}

// sendProgress sends a progress update through the channel without blocking.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

func acquireLockUpdate(key string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   AcquireLock,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Waiting for lock %s...", key),
	}
}

func checkoutUpdate(id int64, bootstrapped bool) ProgressUpdate {
	msg := fmt.Sprintf("Checked out classifier %d", id)
	if bootstrapped {
		msg = fmt.Sprintf("Bootstrapped classifier %d", id)
	}
	return ProgressUpdate{Phase: CheckoutModel, Step: 1, Total: 1, Message: msg}
}

func trainUpdate(step, total int, doc Document) ProgressUpdate {
	return ProgressUpdate{
		Phase:   TrainDocuments,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s", step, total, doc.Label),
		Data:    doc,
	}
}

func trainFailedUpdate(step, total int, doc Document, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   TrainDocuments,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, doc.Label, err),
		Data:    doc,
	}
}

func checkinUpdate(id int64, instances int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CheckinModel,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("✓ Checked in classifier %d (%d instances)", id, instances),
	}
}
