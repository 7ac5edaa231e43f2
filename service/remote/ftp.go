package remote

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jlaffaye/ftp"
	"golang.org/x/xerrors"

	"github.com/khaledhikmat/vs-tomato/service/config"
	"github.com/khaledhikmat/vs-tomato/service/lgr"
)

const dialTimeout = 10 * time.Second

type ftpService struct {
	params config.FTPParameters
}

// NewFTP connects, stores and quits on every upload.
func NewFTP(cfgSvc config.IService) IService {
	return &ftpService{
		params: cfgSvc.GetFTPParameters(),
	}
}

func (svc *ftpService) Upload(ctx context.Context, data []byte, remoteName string) error {
	addr := fmt.Sprintf("%s:%d", svc.params.Server, svc.params.Port)

	conn, err := ftp.Dial(addr,
		ftp.DialWithContext(ctx),
		ftp.DialWithTimeout(dialTimeout),
	)
	if err != nil {
		return xerrors.Errorf("connecting to ftp server %s: %w", addr, err)
	}
	defer func() {
		if err := conn.Quit(); err != nil {
			lgr.Logger.Warn("ftp quit failed", slog.String("server", addr), slog.Any("error", err))
		}
	}()

	if err := conn.Login(svc.params.User, svc.params.Password); err != nil {
		return xerrors.Errorf("ftp login to %s as %s: %w", addr, svc.params.User, err)
	}

	if err := conn.Stor(remoteName, bytes.NewReader(data)); err != nil {
		return xerrors.Errorf("ftp upload of %s to %s: %w", remoteName, addr, err)
	}

	lgr.Logger.InfoContext(ctx, "data uploaded",
		slog.String("server", addr),
		slog.String("file", remoteName),
		slog.Int("bytes", len(data)),
	)
	return nil
}
