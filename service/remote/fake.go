package remote

import (
	"context"
	"sync"
)

type FakeService struct {
	mu      sync.Mutex
	uploads map[string][]byte
	failing error
}

func NewFake() *FakeService {
	return &FakeService{
		uploads: map[string][]byte{},
	}
}

func (svc *FakeService) FailWith(err error) {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	svc.failing = err
}

func (svc *FakeService) Upload(_ context.Context, data []byte, remoteName string) error {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	if svc.failing != nil {
		return svc.failing
	}
	svc.uploads[remoteName] = append([]byte(nil), data...)
	return nil
}

func (svc *FakeService) Uploads() map[string][]byte {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	out := make(map[string][]byte, len(svc.uploads))
	for k, v := range svc.uploads {
		out[k] = v
	}
	return out
}
