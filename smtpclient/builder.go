package smtpclient

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"io"
	"net"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sendkit/smtpsend"
	"github.com/sendkit/smtpsend/internal/textproto"
)

// Option configures a Builder.
type Option func(*Builder)

// Builder is the value-typed, functional-options configuration surface
// for a Session (§4.6 Client Builder). Build it with New, customize with
// Option values, then call Connect to run the full connect/EHLO/TLS/AUTH
// pipeline under a single timeout budget.
type Builder struct {
	host string
	port string

	implicitTLS       bool
	allowInvalidCerts bool
	tlsConfig         *tls.Config
	rootCAs           *x509.CertPool

	localName string
	localAddr net.Addr

	credentials   *smtp.Credentials
	timeout       time.Duration
	dialer        *net.Dialer
	log           *logrus.Entry
}

// New creates a Builder targeting host:port and applies opts in order.
// Defaults: no TLS until STARTTLS is negotiated, a 30s timeout for
// Connect, the system hostname as the EHLO domain, and a discard logger.
func New(host, port string, opts ...Option) *Builder {
	localName := "localhost"
	if h, err := os.Hostname(); err == nil && h != "" {
		localName = h
	}

	discard := logrus.New()
	discard.SetOutput(io.Discard)

	b := &Builder{
		host:      host,
		port:      port,
		localName: localName,
		timeout:   30 * time.Second,
		dialer:    &net.Dialer{},
		log:       logrus.NewEntry(discard),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// WithImplicitTLS wraps the connection in TLS immediately after connect
// (e.g. port 465), instead of the default plaintext-then-optional-STARTTLS
// flow.
func WithImplicitTLS() Option {
	return func(b *Builder) { b.implicitTLS = true }
}

// WithLocalName sets the hostname announced in EHLO/HELO.
func WithLocalName(name string) Option {
	return func(b *Builder) { b.localName = name }
}

// WithLocalAddr binds the outgoing TCP connection's source address.
func WithLocalAddr(addr net.Addr) Option {
	return func(b *Builder) { b.localAddr = addr }
}

// WithCredentials configures AUTH to run after EHLO (and after STARTTLS,
// when the server advertises it).
func WithCredentials(creds smtp.Credentials) Option {
	return func(b *Builder) { b.credentials = &creds }
}

// WithTimeout sets the deadline for Connect as a whole: dial, TLS
// handshake, banner, EHLO, STARTTLS and AUTH share one budget of d. It is
// not applied to each I/O operation separately, and Session methods called
// after Connect are bounded only by the deadline of the context passed to
// them.
func WithTimeout(d time.Duration) Option {
	return func(b *Builder) { b.timeout = d }
}

// WithDialer sets a custom net.Dialer.
func WithDialer(d *net.Dialer) Option {
	return func(b *Builder) { b.dialer = d }
}

// WithTLSConfig sets the base TLS configuration. ServerName defaults to the
// target host when the config leaves it empty; InsecureSkipVerify/RootCAs
// set by other options are applied on top.
func WithTLSConfig(c *tls.Config) Option {
	return func(b *Builder) { b.tlsConfig = c }
}

// WithAllowInvalidCerts disables TLS certificate verification. Intended
// for testing against self-signed endpoints only.
func WithAllowInvalidCerts() Option {
	return func(b *Builder) { b.allowInvalidCerts = true }
}

// WithRootCAs sets the trust store used to verify the server's
// certificate, overriding the system root store.
func WithRootCAs(pool *x509.CertPool) Option {
	return func(b *Builder) { b.rootCAs = pool }
}

// WithLogger sets the logrus entry session lifecycle events are logged
// through.
func WithLogger(log *logrus.Entry) Option {
	return func(b *Builder) { b.log = log }
}

func (b *Builder) tlsClientConfig() *tls.Config {
	cfg := b.tlsConfig.Clone()
	if cfg == nil {
		cfg = &tls.Config{}
	}
	if cfg.ServerName == "" {
		cfg.ServerName = b.host
	}
	if b.allowInvalidCerts {
		cfg.InsecureSkipVerify = true
	}
	if b.rootCAs != nil {
		cfg.RootCAs = b.rootCAs
	}
	return cfg
}

// Connect runs the full §4.6 pipeline: TCP connect (with source bind if
// configured), optional immediate TLS handshake, banner read, EHLO,
// optional STARTTLS + fresh EHLO, optional AUTH — all within the one
// timeout set by WithTimeout, which covers the whole call rather than each
// I/O operation, and returns a ready Session in PhaseReady or
// PhaseAuthenticated.
func (b *Builder) Connect(ctx context.Context) (*Session, error) {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	dialer := *b.dialer
	if b.localAddr != nil {
		dialer.LocalAddr = b.localAddr
	}

	addr := net.JoinHostPort(b.host, b.port)
	nc, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, smtp.IOError(fmt.Errorf("dial %s: %w", addr, err))
	}

	isTLS := false
	if b.implicitTLS {
		tlsConn := tls.Client(nc, b.tlsClientConfig())
		if err := tlsConn.HandshakeContext(ctx); err != nil {
			nc.Close()
			return nil, smtp.TLSError(err)
		}
		nc = tlsConn
		isTLS = true
	}

	s := &Session{
		conn:      textproto.NewConn(nc),
		netConn:   nc,
		phase:     PhaseDisconnected,
		localName: b.localName,
		tls:       isTLS,
		tlsConfig: b.tlsClientConfig(),
		log:       b.log,
	}

	if err := s.greet(ctx); err != nil {
		nc.Close()
		return nil, err
	}
	if err := s.ehlo(ctx); err != nil {
		nc.Close()
		return nil, err
	}

	if !isTLS && s.exts.Has(smtp.ExtSTARTTLS) {
		if err := s.StartTLS(ctx, s.tlsConfig); err != nil {
			nc.Close()
			return nil, err
		}
	}

	if b.credentials != nil {
		if !s.exts.Has(smtp.ExtAUTH) {
			nc.Close()
			return nil, smtp.UnsupportedAuthError(nil, b.credentials.Kind.String())
		}
		if err := s.Authenticate(ctx, *b.credentials); err != nil {
			nc.Close()
			return nil, err
		}
	}

	return s, nil
}
