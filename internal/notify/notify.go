// Package notify turns rejected cart operations into the short messages shown
// to the shopper.
package notify

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/nikolayk812/rocketshoes-cart/internal/domain"
	"github.com/nikolayk812/rocketshoes-cart/pkg/logger"
)

const (
	MsgOutOfStock     = "Quantidade solicitada fora de estoque"
	MsgAddFailed      = "Erro na adição do produto"
	MsgRemoveFailed   = "Erro na remoção do produto"
	MsgUpdateFailed   = "Erro na alteração de quantidade do produto"
	MsgProductsFailed = "Erro ao carregar os produtos"
)

type Level string

const (
	LevelError Level = "error"
	LevelInfo  Level = "info"
)

type Notification struct {
	Level   Level  `json:"level"`
	Message string `json:"message"`
}

type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// Message picks the shopper-facing text for a failed operation.
func Message(err error) string {
	if errors.Is(err, domain.ErrInsufficientStock) {
		return MsgOutOfStock
	}

	opErr, ok := domain.AsOpError(err)
	if !ok {
		return MsgAddFailed
	}

	switch opErr.Op {
	case domain.OpRemove:
		return MsgRemoveFailed
	case domain.OpUpdateAmount:
		return MsgUpdateFailed
	case domain.OpListProducts:
		return MsgProductsFailed
	default:
		return MsgAddFailed
	}
}

func ForError(err error) Notification {
	return Notification{Level: LevelError, Message: Message(err)}
}

// Log writes notifications to the structured log.
type Log struct {
	log *logger.Logger
}

func NewLog(log *logger.Logger) *Log {
	return &Log{log: log}
}

func (l *Log) Notify(ctx context.Context, n Notification) {
	ctx = l.log.WithField(ctx, "level_hint", n.Level)
	l.log.Info(ctx, "notify: "+n.Message)
}

// Recorder keeps notifications in memory until drained. The HTTP layer hands
// them back to the shopper with the next response.
type Recorder struct {
	mu      sync.Mutex
	pending []Notification
}

// MaxPending is how many undrained notifications a Recorder keeps. Older ones
// are dropped first.
const MaxPending = 50

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Notify(_ context.Context, n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.pending) == MaxPending {
		r.pending = slices.Delete(r.pending, 0, 1)
	}
	r.pending = append(r.pending, n)
}

func (r *Recorder) Drain() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := r.pending
	r.pending = nil
	return out
}

// Fanout delivers every notification to each of its notifiers in order.
type Fanout []Notifier

func (f Fanout) Notify(ctx context.Context, n Notification) {
	for _, notifier := range f {
		notifier.Notify(ctx, n)
	}
}

type nop struct{}

func (nop) Notify(context.Context, Notification) {}

func Nop() Notifier {
	return nop{}
}
