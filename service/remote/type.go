package remote

import "context"

// IService uploads bytes under a remote file name.
type IService interface {
	Upload(ctx context.Context, data []byte, remoteName string) error
}
