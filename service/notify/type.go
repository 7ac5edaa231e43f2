package notify

import "context"

// IService delivers a text notification. Empty text is a no-op.
type IService interface {
	Send(ctx context.Context, text string) error
}
