package orders_test

import (
	"sync"

	"mets-backend/internal/models"
	"mets-backend/internal/notify"
)

type recordedNote struct {
	message  string
	severity notify.Severity
}

type recordingNotifier struct {
	mu    sync.Mutex
	notes []recordedNote
}

func (r *recordingNotifier) Notify(message string, severity notify.Severity) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes = append(r.notes, recordedNote{message: message, severity: severity})
}

func (r *recordingNotifier) all() []recordedNote {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]recordedNote(nil), r.notes...)
}

func ids(list []models.Order) []string {
	out := make([]string, len(list))
	for i, o := range list {
		out[i] = o.ID
	}
	return out
}
