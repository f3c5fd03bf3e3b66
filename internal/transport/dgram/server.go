package dgram

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/pion/dtls/v2"

	"coap-adapter-go/internal/domain/auth"
	"coap-adapter-go/internal/domain/pipeline"
	"coap-adapter-go/internal/platform/errors"
	"coap-adapter-go/internal/platform/logging"
)

const (
	defaultCloseTimeout = 5 * time.Second
	connectTimeout      = 30 * time.Second
)

// ServerConfig stores the settings required to expose the datagram transport.
type ServerConfig struct {
	IP              string
	Port            int
	MaxPacketSize   int
	InsecureEnabled bool
	InsecurePort    int
}

// SecretProvider resolves the pre-shared key for a handshake identity hint.
type SecretProvider interface {
	SecretFor(hint []byte) ([]byte, error)
}

// Server terminates DTLS-PSK sessions and feeds decoded uploads into the
// ingestion pipeline. An optional plain UDP listener serves anonymous peers.
type Server struct {
	cfg      ServerConfig
	provider SecretProvider
	pipe     *pipeline.Pipeline
	logger   *logging.Logger
}

// NewServer builds a datagram transport server.
func NewServer(cfg ServerConfig, provider SecretProvider, pipe *pipeline.Pipeline, logger *logging.Logger) *Server {
	if cfg.MaxPacketSize <= 0 {
		cfg.MaxPacketSize = DefaultMaxSize
	}
	return &Server{
		cfg:      cfg,
		provider: provider,
		pipe:     pipe,
		logger:   logger,
	}
}

// Start opens the listeners and serves until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	const op = "dgram.start"

	addr := &net.UDPAddr{IP: net.ParseIP(s.cfg.IP), Port: s.cfg.Port}
	listener, err := dtls.Listen("udp", addr, s.dtlsConfig(ctx))
	if err != nil {
		return errors.Wrap(errors.KindTransport, op, "opening secured listener", err)
	}

	var insecure *net.UDPConn
	if s.cfg.InsecureEnabled {
		insecure, err = net.ListenUDP("udp", &net.UDPAddr{IP: net.ParseIP(s.cfg.IP), Port: s.cfg.InsecurePort})
		if err != nil {
			listener.Close()
			return errors.Wrap(errors.KindTransport, op, "opening insecure listener", err)
		}
	}

	go func() {
		<-ctx.Done()
		listener.Close()
		if insecure != nil {
			insecure.Close()
		}
	}()

	if s.logger != nil {
		s.logger.InfoTag("Dgram", "secured listener on %s:%d", s.cfg.IP, s.cfg.Port)
		if insecure != nil {
			s.logger.InfoTag("Dgram", "insecure listener on %s:%d", s.cfg.IP, s.cfg.InsecurePort)
		}
	}

	if insecure != nil {
		go s.serveInsecure(ctx, insecure)
	}
	s.acceptLoop(ctx, listener)
	return nil
}

func (s *Server) dtlsConfig(ctx context.Context) *dtls.Config {
	return &dtls.Config{
		PSK:             s.provider.SecretFor,
		PSKIdentityHint: []byte("coap-adapter"),
		CipherSuites:    []dtls.CipherSuiteID{dtls.TLS_PSK_WITH_AES_128_CCM_8},
		ConnectContextMaker: func() (context.Context, func()) {
			return context.WithTimeout(ctx, connectTimeout)
		},
	}
}

func (s *Server) acceptLoop(ctx context.Context, listener net.Listener) {
	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			if s.logger != nil {
				s.logger.WarnTag("Dgram", "accept failed: %v", err)
			}
			continue
		}
		go s.serveConn(ctx, conn)
	}
}

// serveConn handles one established DTLS session. The peer identity comes
// from the PSK hint the handshake already verified.
func (s *Server) serveConn(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	dtlsConn, ok := conn.(*dtls.Conn)
	if !ok {
		return
	}
	state := dtlsConn.ConnectionState()
	identity, err := auth.ParseIdentityHint(string(state.IdentityHint))
	if err != nil {
		// The handshake only succeeds with a parseable hint; a failure here
		// means the session predates a registry change.
		if s.logger != nil {
			s.logger.WarnTag("Dgram", "dropping session with unusable identity from %s", conn.RemoteAddr())
		}
		return
	}

	buf := make([]byte, s.cfg.MaxPacketSize)
	for {
		n, err := conn.Read(buf)
		if err != nil {
			return
		}
		reply := s.handleDatagram(ctx, identity, buf[:n])
		if reply == nil {
			continue
		}
		if _, err := conn.Write(reply); err != nil {
			return
		}
	}
}

// serveInsecure reads anonymous uploads from the plain UDP socket.
func (s *Server) serveInsecure(ctx context.Context, conn *net.UDPConn) {
	buf := make([]byte, s.cfg.MaxPacketSize)
	for {
		n, peer, err := conn.ReadFromUDP(buf)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			continue
		}
		reply := s.handleDatagram(ctx, auth.Anonymous(), buf[:n])
		if reply == nil {
			continue
		}
		if _, err := conn.WriteToUDP(reply, peer); err != nil && ctx.Err() != nil {
			return
		}
	}
}

// handleDatagram decodes one request frame, runs it through the pipeline and
// returns the encoded reply. A nil return means no reply is owed.
func (s *Server) handleDatagram(ctx context.Context, identity auth.Identity, data []byte) []byte {
	msg, err := Decode(data)
	if err != nil {
		// Without a decodable frame there is no message id to reply to.
		return nil
	}
	if msg.Code != CodePOST {
		return s.encodeReply(msg.Response(CodeBadRequest, nil))
	}

	resp := s.pipe.Handle(ctx, pipeline.Request{
		Identity: identity,
		Path:     msg.Path,
		Payload:  msg.Payload,
	})
	return s.encodeReply(msg.Response(ResponseCode(resp.Status), nil))
}

func (s *Server) encodeReply(m Message) []byte {
	wire, err := Encode(m, s.cfg.MaxPacketSize)
	if err != nil {
		if s.logger != nil {
			s.logger.WarnTag("Dgram", "encoding reply %s: %v", m.Code, err)
		}
		return nil
	}
	return wire
}

// ResponseCode maps a pipeline outcome to its wire code.
func ResponseCode(status pipeline.Status) Code {
	switch status {
	case pipeline.StatusAccepted:
		return CodeChanged
	case pipeline.StatusBadRequest:
		return CodeBadRequest
	case pipeline.StatusNotFound:
		return CodeNotFound
	case pipeline.StatusForbidden:
		return CodeForbidden
	default:
		return CodeServiceUnavailable
	}
}

// Addr returns the secured listen address string.
func (s *Server) Addr() string {
	return fmt.Sprintf("%s:%d", s.cfg.IP, s.cfg.Port)
}
