package device

import (
	"fmt"
	"io"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/i474232898/weatherpick/internal/weather"
)

// LogNotifier prints notices to w (typically stderr) and logs them.
type LogNotifier struct {
	mu     sync.Mutex
	w      io.Writer
	logger *zap.Logger
}

func NewLogNotifier(w io.Writer, logger *zap.Logger) *LogNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogNotifier{w: w, logger: logger}
}

func (n *LogNotifier) Notify(text string) {
	n.logger.Info("notice", zap.String("text", text))
	n.write("ℹ", text)
}

func (n *LogNotifier) NotifyError(text string) {
	n.logger.Warn("notice", zap.String("text", text))
	n.write("⚠", text)
}

func (n *LogNotifier) write(mark, text string) {
	if n.w == nil {
		return
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	fmt.Fprintf(n.w, "%s %s\n", mark, text)
}

// Notice is one buffered notification.
type Notice struct {
	Level string    `json:"level"`
	Text  string    `json:"text"`
	At    time.Time `json:"at"`
}

// NoticeBuffer keeps the most recent notices for clients that poll for them.
type NoticeBuffer struct {
	mu      sync.Mutex
	max     int
	notices []Notice
	now     func() time.Time
}

// NewNoticeBuffer keeps at most max notices; max <= 0 means 20.
func NewNoticeBuffer(max int) *NoticeBuffer {
	if max <= 0 {
		max = 20
	}
	return &NoticeBuffer{max: max, now: time.Now}
}

func (b *NoticeBuffer) Notify(text string)      { b.add("info", text) }
func (b *NoticeBuffer) NotifyError(text string) { b.add("error", text) }

func (b *NoticeBuffer) add(level, text string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.notices = append(b.notices, Notice{Level: level, Text: text, At: b.now().UTC()})
	if over := len(b.notices) - b.max; over > 0 {
		b.notices = append([]Notice(nil), b.notices[over:]...)
	}
}

// Drain returns the buffered notices, oldest first, and empties the buffer.
func (b *NoticeBuffer) Drain() []Notice {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := b.notices
	b.notices = nil
	if out == nil {
		out = []Notice{}
	}
	return out
}

// Fanout delivers each notice to every wrapped notifier.
type Fanout []weather.Notifier

func (f Fanout) Notify(text string) {
	for _, n := range f {
		n.Notify(text)
	}
}

func (f Fanout) NotifyError(text string) {
	for _, n := range f {
		n.NotifyError(text)
	}
}
