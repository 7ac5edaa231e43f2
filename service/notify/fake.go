package notify

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/khaledhikmat/vs-tomato/service/lgr"
)

// FakeService logs notifications instead of sending them. It is used when email is
// disabled and in tests.
type FakeService struct {
	mu       sync.Mutex
	messages []string
	failing  error
}

func NewFake() *FakeService {
	return &FakeService{}
}

func (svc *FakeService) FailWith(err error) {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	svc.failing = err
}

func (svc *FakeService) Send(ctx context.Context, text string) error {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	svc.mu.Lock()
	defer svc.mu.Unlock()
	if svc.failing != nil {
		return svc.failing
	}

	svc.messages = append(svc.messages, text)
	lgr.Logger.InfoContext(ctx, "notification", slog.String("message", text))
	return nil
}

func (svc *FakeService) Messages() []string {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	return append([]string(nil), svc.messages...)
}
