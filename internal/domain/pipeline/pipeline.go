// Package pipeline runs each upload through the fixed ingestion sequence:
// parse the request path, resolve the authorized target, forward downstream,
// map the outcome to a terminal status.
package pipeline

import (
	"context"
	"strings"
	"time"

	"coap-adapter-go/internal/domain/auth"
	"coap-adapter-go/internal/domain/downstream"
	"coap-adapter-go/internal/platform/errors"
	"coap-adapter-go/internal/platform/logging"
)

const defaultRequestTimeout = 10 * time.Second

// Status is the terminal outcome class of one upload.
type Status int

const (
	StatusAccepted Status = iota
	StatusBadRequest
	StatusNotFound
	StatusForbidden
	StatusUnavailable
)

func (s Status) String() string {
	switch s {
	case StatusAccepted:
		return "accepted"
	case StatusBadRequest:
		return "bad-request"
	case StatusNotFound:
		return "not-found"
	case StatusForbidden:
		return "forbidden"
	default:
		return "unavailable"
	}
}

// Request is one decoded upload attempt, transport already stripped away.
type Request struct {
	Identity    auth.Identity
	Path        string
	ContentType string
	Payload     []byte
}

// Response carries the terminal status back to the transport.
type Response struct {
	Status Status
}

// Pipeline wires the resolver and the downstream sink behind a per-request
// deadline.
type Pipeline struct {
	resolver *auth.Resolver
	sink     downstream.Sink
	logger   *logging.Logger
	timeout  time.Duration
}

func New(resolver *auth.Resolver, sink downstream.Sink, logger *logging.Logger, timeout time.Duration) *Pipeline {
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	return &Pipeline{
		resolver: resolver,
		sink:     sink,
		logger:   logger,
		timeout:  timeout,
	}
}

// Handle processes one upload. Every failure collapses to one of the
// terminal classes; internal detail stays in the log.
func (p *Pipeline) Handle(ctx context.Context, req Request) Response {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	tenantID, deviceID, err := splitPath(req.Path)
	if err != nil {
		return p.fail(req, err)
	}
	if deviceID == "" {
		// Short form: the device is the authenticated peer itself.
		if req.Identity.IsAnonymous() {
			return p.fail(req, errors.New(errors.KindBadRequest, "pipeline.handle", "path names no device and peer is anonymous"))
		}
		deviceID = req.Identity.AuthID
	}
	if len(req.Payload) == 0 {
		return p.fail(req, errors.New(errors.KindBadRequest, "pipeline.handle", "empty payload"))
	}

	target, err := p.resolver.Resolve(ctx, req.Identity, tenantID, deviceID)
	if err != nil {
		return p.fail(req, err)
	}

	msg := downstream.NewMessage(target, req.ContentType, req.Payload)
	if err := p.sink.Forward(ctx, msg); err != nil {
		return p.fail(req, err)
	}

	if p.logger != nil {
		p.logger.Debug("accepted upload %s from %s to %s/%s", msg.ID, req.Identity, target.TenantID, target.DeviceID)
	}
	return Response{Status: StatusAccepted}
}

func (p *Pipeline) fail(req Request, err error) Response {
	status := statusFor(err)
	if p.logger != nil {
		p.logger.Warn("rejected upload from %s on %q: %s (%v)", req.Identity, req.Path, status, err)
	}
	return Response{Status: status}
}

func statusFor(err error) Status {
	switch errors.KindOf(err) {
	case errors.KindBadRequest:
		return StatusBadRequest
	case errors.KindNotFound:
		return StatusNotFound
	case errors.KindForbidden:
		return StatusForbidden
	default:
		return StatusUnavailable
	}
}

// splitPath parses "t/{tenant}/{device}" or "t/{tenant}". A returned empty
// device means the short form was used.
func splitPath(path string) (tenantID, deviceID string, err error) {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	if len(segments) < 2 || len(segments) > 3 || segments[0] != "t" {
		return "", "", errors.New(errors.KindBadRequest, "pipeline.path", "malformed request path")
	}
	tenantID = segments[1]
	if len(segments) == 3 {
		deviceID = segments[2]
	}
	if tenantID == "" || (len(segments) == 3 && deviceID == "") {
		return "", "", errors.New(errors.KindBadRequest, "pipeline.path", "malformed request path")
	}
	return tenantID, deviceID, nil
}
