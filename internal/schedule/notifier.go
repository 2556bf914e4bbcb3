package schedule

import (
	"sync"
	"time"
)

// DefaultNoticeTTL is how long a notice stays visible.
const DefaultNoticeTTL = 3 * time.Second

// Tone distinguishes success from failure notices.
type Tone string

const (
	ToneSuccess Tone = "success"
	ToneError   Tone = "error"
)

// Notice is a transient, auto-dismissing message for the user.
type Notice struct {
	ID        int64     `json:"id"`
	Message   string    `json:"message"`
	Tone      Tone      `json:"tone"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Notifier keeps the notices of one session.
type Notifier struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     Clock
	seq     int64
	notices []Notice
}

// NewNotifier creates a notifier. Zero ttl uses DefaultNoticeTTL.
func NewNotifier(ttl time.Duration, now Clock) *Notifier {
	if ttl <= 0 {
		ttl = DefaultNoticeTTL
	}
	if now == nil {
		now = time.Now
	}
	return &Notifier{ttl: ttl, now: now}
}

func (n *Notifier) Success(msg string) Notice { return n.push(msg, ToneSuccess) }
func (n *Notifier) Error(msg string) Notice   { return n.push(msg, ToneError) }

func (n *Notifier) push(msg string, tone Tone) Notice {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.seq++
	notice := Notice{ID: n.seq, Message: msg, Tone: tone, ExpiresAt: n.now().Add(n.ttl)}
	n.notices = append(n.notices, notice)
	return notice
}

// Active drops expired notices and returns the rest, oldest first.
func (n *Notifier) Active() []Notice {
	n.mu.Lock()
	defer n.mu.Unlock()
	now := n.now()
	kept := n.notices[:0]
	for _, notice := range n.notices {
		if now.Before(notice.ExpiresAt) {
			kept = append(kept, notice)
		}
	}
	n.notices = kept
	return append([]Notice(nil), kept...)
}

// Dismiss removes a notice before it expires.
func (n *Notifier) Dismiss(id int64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for i, notice := range n.notices {
		if notice.ID == id {
			n.notices = append(n.notices[:i], n.notices[i+1:]...)
			return
		}
	}
}
