package session

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"connectrpc.com/connect"
	"github.com/mcdev12/livesession/go/internal/models"
	"github.com/rs/zerolog/log"
)

const (
	// ServiceName is the fully-qualified name of the session service.
	ServiceName = "livesession.v1.SessionService"

	CreateSessionProcedure = "/" + ServiceName + "/CreateSession"
	GetSessionProcedure    = "/" + ServiceName + "/GetSession"
	ExecuteProcedure       = "/" + ServiceName + "/Execute"

	// HostKeyHeader carries the host key on RPC calls.
	HostKeyHeader = "X-Host-Key"
)

// SessionApp defines what the service layer needs from the session application
type SessionApp interface {
	CreateSession(ctx context.Context, locale string) (*CreateSessionResult, error)
	GetView(ctx context.Context, code string, actor Actor) (*View, error)
	Execute(ctx context.Context, code string, actor Actor, cmd Command) (*Result, error)
}

type CreateSessionRequest struct {
	Locale string `json:"locale"`
}

type GetSessionRequest struct {
	RoomCode string `json:"room_code"`
}

type ExecuteRequest struct {
	RoomCode string          `json:"room_code"`
	Command  string          `json:"command"`
	Payload  json.RawMessage `json:"payload,omitempty"`
}

// Service exposes the session App over connect with a JSON codec
type Service struct {
	app SessionApp
}

// NewService creates a new session service
func NewService(app SessionApp) *Service {
	return &Service{app: app}
}

// CreateSession opens a new room
func (s *Service) CreateSession(ctx context.Context, req *connect.Request[CreateSessionRequest]) (*connect.Response[CreateSessionResult], error) {
	res, err := s.app.CreateSession(ctx, req.Msg.Locale)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(res), nil
}

// GetSession returns the role-scoped view of a room
func (s *Service) GetSession(ctx context.Context, req *connect.Request[GetSessionRequest]) (*connect.Response[View], error) {
	view, err := s.app.GetView(ctx, req.Msg.RoomCode, actorFromHeader(req.Header()))
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(view), nil
}

// Execute applies one command to a room
func (s *Service) Execute(ctx context.Context, req *connect.Request[ExecuteRequest]) (*connect.Response[Result], error) {
	cmd, err := DecodeCommand(req.Msg.Command, req.Msg.Payload)
	if err != nil {
		return nil, toConnectError(err)
	}

	res, err := s.app.Execute(ctx, req.Msg.RoomCode, actorFromHeader(req.Header()), cmd)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(res), nil
}

// RegisterRoutes mounts the service procedures on mux.
func (s *Service) RegisterRoutes(mux *http.ServeMux, opts ...connect.HandlerOption) {
	opts = append([]connect.HandlerOption{WithJSONCodec()}, opts...)

	mux.Handle(CreateSessionProcedure, connect.NewUnaryHandler(CreateSessionProcedure, s.CreateSession, opts...))
	mux.Handle(GetSessionProcedure, connect.NewUnaryHandler(GetSessionProcedure, s.GetSession, opts...))
	mux.Handle(ExecuteProcedure, connect.NewUnaryHandler(ExecuteProcedure, s.Execute, opts...))
}

func actorFromHeader(h http.Header) Actor {
	if key := h.Get(HostKeyHeader); key != "" {
		return Host(key)
	}
	return Participant()
}

// toConnectError maps domain errors onto connect codes.
func toConnectError(err error) error {
	code := codeFor(err)
	if code == connect.CodeInternal {
		log.Error().Err(err).Msg("unexpected session error")
	}
	return connect.NewError(code, err)
}

func codeFor(err error) connect.Code {
	switch {
	case errors.Is(err, models.ErrValidation):
		return connect.CodeInvalidArgument
	case errors.Is(err, models.ErrNotFound):
		return connect.CodeNotFound
	case errors.Is(err, models.ErrInvalidTransition):
		return connect.CodeFailedPrecondition
	case errors.Is(err, models.ErrForbidden):
		return connect.CodePermissionDenied
	case errors.Is(err, context.Canceled):
		return connect.CodeCanceled
	case errors.Is(err, context.DeadlineExceeded):
		return connect.CodeDeadlineExceeded
	default:
		return connect.CodeInternal
	}
}

// ErrorCode returns the connect code name used for err on every transport.
func ErrorCode(err error) string {
	var cerr *connect.Error
	if errors.As(err, &cerr) {
		return cerr.Code().String()
	}
	return codeFor(err).String()
}
