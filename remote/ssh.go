package remote

import (
	"context"
	"io"
	"log"
	"net"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/crypto/ssh"

	"github.com/james-lawrence/rbcbench/backoff"
	"github.com/james-lawrence/rbcbench/internal/x/sshx"
)

// Conn a connection to a single host.
type Conn interface {
	// Run the command, blocks until the command exits or the context is done.
	Run(ctx context.Context, cmd string, stdin io.Reader, stdout, stderr io.Writer) error
	Close() error
}

// Dialer establishes connections to hosts.
type Dialer interface {
	Dial(ctx context.Context, host string) (Conn, error)
}

// SSHOption customize the ssh dialer.
type SSHOption func(*SSHDialer)

// SSHOptionPort set the port to connect to.
func SSHOptionPort(p int) SSHOption {
	return func(d *SSHDialer) {
		d.port = p
	}
}

// SSHOptionRetry set the backoff strategy and number of attempts used when dialing.
func SSHOptionRetry(s backoff.Strategy, attempts int) SSHOption {
	return func(d *SSHDialer) {
		d.retry = s
		d.attempts = max(1, attempts)
	}
}

// NewSSHDialer authenticates as user with the private key at keypath.
func NewSSHDialer(user, keypath string, options ...SSHOption) (d SSHDialer, err error) {
	var (
		signer ssh.Signer
	)

	if signer, err = sshx.Signer(keypath); err != nil {
		return d, err
	}

	d = SSHDialer{
		config: &ssh.ClientConfig{
			User:            user,
			Auth:            []ssh.AuthMethod{ssh.PublicKeys(signer)},
			HostKeyCallback: ssh.InsecureIgnoreHostKey(),
			Timeout:         10 * time.Second,
		},
		port:     22,
		retry:    backoff.New(backoff.Exponential(500*time.Millisecond), backoff.Maximum(10*time.Second), backoff.Jitter(0.25)),
		attempts: 5,
	}

	for _, opt := range options {
		opt(&d)
	}

	return d, nil
}

// SSHDialer dials hosts over ssh.
type SSHDialer struct {
	config   *ssh.ClientConfig
	port     int
	retry    backoff.Strategy
	attempts int
}

// Dial implements Dialer.
func (t SSHDialer) Dial(ctx context.Context, host string) (_ Conn, err error) {
	var (
		client *ssh.Client
		addr   = net.JoinHostPort(host, strconv.Itoa(t.port))
	)

	err = backoff.Retry(ctx, t.retry, t.attempts, func(attempt int) (cause error) {
		if attempt > 0 {
			log.Println("retrying connection", addr, "attempt", attempt)
		}

		client, cause = t.dial(ctx, addr)
		return cause
	})

	if err != nil {
		return nil, errors.Wrapf(err, "unable to connect to %s", addr)
	}

	return sshConn{client: client}, nil
}

func (t SSHDialer) dial(ctx context.Context, addr string) (_ *ssh.Client, err error) {
	var (
		conn  net.Conn
		cconn ssh.Conn
		chans <-chan ssh.NewChannel
		reqs  <-chan *ssh.Request
		d     = net.Dialer{Timeout: t.config.Timeout}
	)

	if conn, err = d.DialContext(ctx, "tcp", addr); err != nil {
		return nil, errors.WithStack(err)
	}

	if cconn, chans, reqs, err = ssh.NewClientConn(conn, addr, t.config); err != nil {
		conn.Close()
		return nil, errors.WithStack(err)
	}

	return ssh.NewClient(cconn, chans, reqs), nil
}

type sshConn struct {
	client *ssh.Client
}

func (t sshConn) Run(ctx context.Context, cmd string, stdin io.Reader, stdout, stderr io.Writer) (err error) {
	var (
		session *ssh.Session
		done    = make(chan error, 1)
	)

	if session, err = t.client.NewSession(); err != nil {
		return errors.Wrap(err, "unable to open session")
	}
	defer session.Close()

	session.Stdin = stdin
	session.Stdout = stdout
	session.Stderr = stderr

	if err = session.Start(cmd); err != nil {
		return errors.WithStack(err)
	}

	go func() {
		done <- session.Wait()
	}()

	select {
	case err = <-done:
		return err
	case <-ctx.Done():
		// stop waiting, the remote process may continue running.
		_ = session.Signal(ssh.SIGTERM)
		return errors.WithStack(ctx.Err())
	}
}

func (t sshConn) Close() error {
	return t.client.Close()
}
