package core

import (
	"strings"
	"sync"
	"time"
)

// CleanString trims all leading and trailing whitespace in `s` and optionally lowers it.
func CleanString(s string, lower ...bool) string {
	s = strings.TrimSpace(s)
	if len(lower) > 0 && lower[0] {
		return strings.ToLower(s)
	}
	return s
}

var (
	NowFunc = time.Now // mockable

	idMu   sync.Mutex
	lastID int64
)

// NextID returns a record id derived from the current time in milliseconds.
// Ids are strictly increasing within the process, even when several are issued in the same millisecond.
func NextID() int64 {
	idMu.Lock()
	defer idMu.Unlock()

	id := NowFunc().UnixNano() / int64(time.Millisecond)
	if id <= lastID {
		id = lastID + 1
	}
	lastID = id
	return id
}

// DisplayTime formats t the way timestamps are shown in dashboards.
func DisplayTime(t time.Time) string {
	return t.Format("Jan 2, 2006 3:04 PM")
}
