package wpcli

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"

	"github.com/walteh/presspatch/pkg/config"
	"github.com/walteh/presspatch/pkg/remote"
)

// Dialer opens one SSH connection per session. Dial failures are
// classified as connectivity faults so the coordinator can abort a
// sequential batch instead of failing every item individually.
type Dialer struct {
	Server config.ServerDefinition
}

// Dial implements remote.Dialer.
func (d *Dialer) Dial(ctx context.Context) (remote.Session, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().
		Str("host", d.Server.Host).
		Int("port", d.Server.Port).
		Str("user", d.Server.User).
		Msg("dialing ssh session")

	key, err := os.ReadFile(d.Server.KeyFile)
	if err != nil {
		return nil, errors.Errorf("reading ssh key %s: %w", d.Server.KeyFile, err)
	}
	signer, err := ssh.ParsePrivateKey(key)
	if err != nil {
		return nil, errors.Errorf("parsing ssh key: %w", err)
	}

	hostKeys, err := hostKeyCallback(d.Server)
	if err != nil {
		return nil, err
	}
	sshCfg := &ssh.ClientConfig{
		User:            d.Server.User,
		Auth:            []ssh.AuthMethod{ssh.PublicKeys(signer)},
		HostKeyCallback: hostKeys,
		Timeout:         15 * time.Second,
	}

	addr := net.JoinHostPort(d.Server.Host, fmt.Sprintf("%d", d.Server.Port))
	client, err := ssh.Dial("tcp", addr, sshCfg)
	if err != nil {
		return nil, errors.Errorf("dialing %s: %w: %w", addr, remote.ErrConnectivity, err)
	}

	return NewClient(&sshRunner{client: client}, d.Server), nil
}

// hostKeyCallback verifies the remote host key against the server's
// known_hosts file when one is configured. Without one, verification
// is skipped, which trusts the network between us and the host.
func hostKeyCallback(srv config.ServerDefinition) (ssh.HostKeyCallback, error) {
	if srv.KnownHostsFile == "" {
		return ssh.InsecureIgnoreHostKey(), nil
	}
	cb, err := knownhosts.New(srv.KnownHostsFile)
	if err != nil {
		return nil, errors.Errorf("loading known_hosts %s: %w", srv.KnownHostsFile, err)
	}
	return cb, nil
}

// sshRunner runs each command in a fresh exec session on one shared
// SSH connection, which is how wp-cli invocations multiplex over a
// single authenticated transport.
type sshRunner struct {
	client *ssh.Client
}

func (r *sshRunner) Run(ctx context.Context, cmd string) (string, string, error) {
	session, err := r.client.NewSession()
	if err != nil {
		return "", "", errors.Errorf("opening ssh exec session: %w: %w", remote.ErrConnectivity, err)
	}
	defer session.Close()

	var stdout, stderr bytes.Buffer
	session.Stdout = &stdout
	session.Stderr = &stderr

	done := make(chan error, 1)
	go func() {
		done <- session.Run(cmd)
	}()

	select {
	case <-ctx.Done():
		// Best effort: signal the remote process, then report the
		// cancellation. The remote side effect may still land.
		_ = session.Signal(ssh.SIGKILL)
		return stdout.String(), stderr.String(), errors.Errorf("remote command cancelled: %w", ctx.Err())
	case err := <-done:
		if err != nil {
			return stdout.String(), stderr.String(), errors.Errorf("remote command failed: %w", err)
		}
		return stdout.String(), stderr.String(), nil
	}
}

func (r *sshRunner) Close() error {
	return r.client.Close()
}
