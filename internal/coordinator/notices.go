package coordinator

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/attendance-ledger/internal/model"
)

// NoticeBoard keeps the most recent user-visible notices in a bounded ring.
type NoticeBoard struct {
	mu    sync.Mutex
	items []model.Notice
	limit int
	now   func() time.Time
}

// NewNoticeBoard returns a board holding at most limit notices (50 when
// limit is not positive).
func NewNoticeBoard(limit int, now func() time.Time) *NoticeBoard {
	if limit <= 0 {
		limit = 50
	}
	if now == nil {
		now = time.Now
	}
	return &NoticeBoard{limit: limit, now: now}
}

// Post appends a notice, evicting the oldest when full.
func (b *NoticeBoard) Post(level model.NoticeLevel, msg string) model.Notice {
	n := model.Notice{ID: uuid.NewString(), Level: level, Message: msg, At: b.now()}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.items = append(b.items, n)
	if over := len(b.items) - b.limit; over > 0 {
		b.items = append([]model.Notice(nil), b.items[over:]...)
	}
	return n
}

// List returns the notices oldest first.
func (b *NoticeBoard) List() []model.Notice {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]model.Notice(nil), b.items...)
}
