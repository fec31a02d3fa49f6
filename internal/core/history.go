package core

import "sync"

// DefaultHistorySize is the number of upload records kept in memory.
const DefaultHistorySize = 100

// uploadHistory is a bounded newest-first list of successful uploads.
type uploadHistory struct {
	mu      sync.Mutex
	max     int
	records []UploadRecord
}

func newUploadHistory(max int) *uploadHistory {
	if max <= 0 {
		max = DefaultHistorySize
	}
	return &uploadHistory{max: max}
}

func (h *uploadHistory) add(rec UploadRecord) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.records = append([]UploadRecord{rec}, h.records...)
	if len(h.records) > h.max {
		h.records = h.records[:h.max]
	}
}

// list returns a copy, newest first. limit <= 0 returns everything.
func (h *uploadHistory) list(limit int) []UploadRecord {
	h.mu.Lock()
	defer h.mu.Unlock()

	n := len(h.records)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]UploadRecord, n)
	copy(out, h.records[:n])
	return out
}
