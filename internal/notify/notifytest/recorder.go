// Package notifytest provides an in-memory notify.Notifier for tests.
package notifytest

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/ariefcatur/go-pizza-bot/internal/notify"
)

var ErrUnreachable = errors.New("target unreachable")

type Sent struct {
	To  notify.Target
	Ref notify.MessageRef
	Msg notify.Message
}

type Edited struct {
	Ref notify.MessageRef
	Msg notify.Message
}

// Recorder keeps every call it receives. Targets listed in Fail get
// ErrUnreachable instead of being recorded.
type Recorder struct {
	mu      sync.Mutex
	nextID  int
	Sent    []Sent
	Edited  []Edited
	Deleted []notify.MessageRef
	Fail    map[notify.Target]bool
	Names   map[notify.Target]string
}

func New() *Recorder {
	return &Recorder{Fail: map[notify.Target]bool{}, Names: map[notify.Target]string{}}
}

func (r *Recorder) Send(_ context.Context, to notify.Target, msg notify.Message) (notify.MessageRef, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Fail[to] {
		return notify.MessageRef{}, ErrUnreachable
	}
	r.nextID++
	ref := notify.MessageRef{Chat: to, ID: r.nextID, Caption: msg.Media != nil}
	r.Sent = append(r.Sent, Sent{To: to, Ref: ref, Msg: msg})
	return ref, nil
}

func (r *Recorder) Edit(_ context.Context, ref notify.MessageRef, msg notify.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Fail[ref.Chat] {
		return ErrUnreachable
	}
	r.Edited = append(r.Edited, Edited{Ref: ref, Msg: msg})
	return nil
}

func (r *Recorder) Delete(_ context.Context, ref notify.MessageRef) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Fail[ref.Chat] {
		return ErrUnreachable
	}
	r.Deleted = append(r.Deleted, ref)
	return nil
}

func (r *Recorder) DisplayName(_ context.Context, who notify.Target) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if name, ok := r.Names[who]; ok {
		return name, nil
	}
	return "", ErrUnreachable
}

// To returns the messages sent to one target, in order.
func (r *Recorder) To(t notify.Target) []notify.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []notify.Message
	for _, s := range r.Sent {
		if s.To == t {
			out = append(out, s.Msg)
		}
	}
	return out
}

// Last returns the last message sent to t, or the zero message.
func (r *Recorder) Last(t notify.Target) notify.Message {
	msgs := r.To(t)
	if len(msgs) == 0 {
		return notify.Message{}
	}
	return msgs[len(msgs)-1]
}

// Contains reports whether any message to t contains substr.
func (r *Recorder) Contains(t notify.Target, substr string) bool {
	for _, m := range r.To(t) {
		if strings.Contains(m.Text, substr) {
			return true
		}
	}
	return false
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Sent, r.Edited, r.Deleted = nil, nil, nil
}
