package connector

import (
	"bytes"
	"context"
	"io"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
)

// Config holds the parameters for dialing a single SSH target.
type Config struct {
	Username   string
	Password   string
	Address    string
	Port       int
	PrivateKey string
	Timeout    time.Duration
}

var _ Connection = (*connection)(nil)

type connection struct {
	mu         sync.Mutex
	sshclient  *ssh.Client
	sftpclient *sftp.Client
	config     Config
}

// NewConnection dials the target described by cfg and returns an
// established Connection.
func NewConnection(cfg Config) (Connection, error) {
	cfg, err := validateConfig(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "failed to validate ssh connection parameters")
	}

	authMethods := make([]ssh.AuthMethod, 0)
	if len(cfg.Password) > 0 {
		authMethods = append(authMethods, ssh.Password(cfg.Password))
	}
	if len(cfg.PrivateKey) > 0 {
		signer, parseErr := ssh.ParsePrivateKey([]byte(cfg.PrivateKey))
		if parseErr != nil {
			return nil, errors.Wrap(parseErr, "the given SSH key could not be parsed")
		}
		authMethods = append(authMethods, ssh.PublicKeys(signer))
	}

	sshClientConfig := &ssh.ClientConfig{
		User:            cfg.Username,
		Timeout:         cfg.Timeout,
		Auth:            authMethods,
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
	}

	endpoint := net.JoinHostPort(cfg.Address, strconv.Itoa(cfg.Port))
	client, err := ssh.Dial("tcp", endpoint, sshClientConfig)
	if err != nil {
		return nil, errors.Wrapf(err, "could not establish connection to %s", endpoint)
	}

	sftpClient, err := sftp.NewClient(client)
	if err != nil {
		_ = client.Close()
		return nil, errors.Wrap(err, "failed to create SFTP client")
	}

	return &connection{
		sshclient:  client,
		sftpclient: sftpClient,
		config:     cfg,
	}, nil
}

func validateConfig(cfg Config) (Config, error) {
	if cfg.Username == "" {
		return cfg, errors.New("no username specified for SSH connection")
	}
	if cfg.Address == "" {
		return cfg, errors.New("no address specified for SSH connection")
	}
	if cfg.Password == "" && cfg.PrivateKey == "" {
		return cfg, errors.New("no authentication method specified for SSH connection")
	}
	if cfg.Port <= 0 {
		cfg.Port = 22
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	return cfg, nil
}

func (c *connection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var firstErr error
	if c.sftpclient != nil {
		if err := c.sftpclient.Close(); err != nil {
			firstErr = err
		}
		c.sftpclient = nil
	}
	if c.sshclient != nil {
		if err := c.sshclient.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		c.sshclient = nil
	}
	return firstErr
}

// Exec runs cmd on the target. A context cancellation sends SIGINT to
// the remote session and reports the context error.
func (c *connection) Exec(ctx context.Context, cmd string) (stdout []byte, stderr []byte, exitCode int, err error) {
	sess, err := c.sshclient.NewSession()
	if err != nil {
		return nil, nil, -1, errors.Wrap(err, "failed to create session")
	}
	defer sess.Close()

	var stdoutBuf, stderrBuf bytes.Buffer
	sess.Stdout = &stdoutBuf
	sess.Stderr = &stderrBuf

	if err := sess.Start(strings.TrimSpace(cmd)); err != nil {
		return nil, stderrBuf.Bytes(), -1, errors.Wrapf(err, "failed to start command: %s", cmd)
	}

	waitDone := make(chan error, 1)
	go func() {
		waitDone <- sess.Wait()
	}()

	select {
	case <-ctx.Done():
		_ = sess.Signal(ssh.SIGINT)
		select {
		case <-time.After(250 * time.Millisecond):
		case <-waitDone:
		}
		return stdoutBuf.Bytes(), stderrBuf.Bytes(), -1, errors.Wrap(ctx.Err(), "command execution cancelled")

	case waitErr := <-waitDone:
		if waitErr == nil {
			return stdoutBuf.Bytes(), stderrBuf.Bytes(), 0, nil
		}
		if exitErr, ok := waitErr.(*ssh.ExitError); ok {
			return stdoutBuf.Bytes(), stderrBuf.Bytes(), exitErr.ExitStatus(), nil
		}
		return stdoutBuf.Bytes(), stderrBuf.Bytes(), -1, waitErr
	}
}

// UploadFile copies a local file to remotePath over SFTP, creating
// parent directories as needed.
func (c *connection) UploadFile(ctx context.Context, localPath, remotePath string, mode os.FileMode) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	src, err := os.Open(localPath)
	if err != nil {
		return errors.Wrapf(err, "failed to open local file %s", localPath)
	}
	defer src.Close()

	if err := c.sftpclient.MkdirAll(filepath.Dir(remotePath)); err != nil {
		return errors.Wrapf(err, "failed to create remote directory for %s", remotePath)
	}

	dst, err := c.sftpclient.Create(remotePath)
	if err != nil {
		return errors.Wrapf(err, "failed to create remote file %s", remotePath)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return errors.Wrapf(err, "failed to copy %s to remote %s", localPath, remotePath)
	}
	if err := c.sftpclient.Chmod(remotePath, mode); err != nil {
		return errors.Wrapf(err, "failed to chmod remote file %s", remotePath)
	}
	return nil
}

// DownloadFile copies remotePath from the target to localPath.
func (c *connection) DownloadFile(ctx context.Context, remotePath, localPath string) error {
	src, err := c.Fetch(ctx, remotePath)
	if err != nil {
		return err
	}
	defer src.Close()

	if err := os.MkdirAll(filepath.Dir(localPath), 0755); err != nil {
		return errors.Wrapf(err, "failed to create local directory for %s", localPath)
	}
	dst, err := os.Create(localPath)
	if err != nil {
		return errors.Wrapf(err, "failed to create local file %s", localPath)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return errors.Wrapf(err, "failed to copy remote %s to %s", remotePath, localPath)
	}
	return nil
}

// Fetch opens a remote file for reading.
func (c *connection) Fetch(ctx context.Context, remotePath string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := c.sftpclient.Open(remotePath)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open remote file %s", remotePath)
	}
	return f, nil
}
