package control

import (
	"context"
	"errors"
	"math"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/covertcloak/scripture-alarm/internal/logger"
	"github.com/covertcloak/scripture-alarm/internal/service/trigger"
	"github.com/covertcloak/scripture-alarm/internal/timer"
)

// Alerts abstracts the trigger controller operations exposed over the API.
type Alerts interface {
	Dismiss(ctx context.Context, alarmID int) (int, error)
	Snooze(ctx context.Context, alarmID int) (map[int]time.Time, error)
	ReadAgain(ctx context.Context, alarmID int) (int, error)
	Sessions() []trigger.SessionInfo
}

// Timers abstracts the scheduler operations exposed over the API.
type Timers interface {
	Reconcile(ctx context.Context) error
	Pending() []timer.Entry
}

// Server implements ControlServer.
type Server struct {
	// alerts routes user actions to the ringing sessions.
	alerts Alerts
	// timers reports and reconciles the armed timers.
	timers Timers
}

var _ ControlServer = (*Server)(nil)

// NewServer wires the controller and scheduler into a gRPC handler.
func NewServer(alerts Alerts, timers Timers) *Server {
	return &Server{
		alerts: alerts,
		timers: timers,
	}
}

// Dismiss ends the alert of the requested alarm, or all alerts for id 0.
func (s *Server) Dismiss(ctx context.Context, req *wrapperspb.Int64Value) (*wrapperspb.Int64Value, error) {
	alarmID, err := alarmIDFrom(req)
	if err != nil {
		return nil, err
	}

	count, err := s.alerts.Dismiss(ctx, alarmID)
	if err != nil {
		return nil, toStatus(ctx, err, "unable to dismiss")
	}

	return wrapperspb.Int64(int64(count)), nil
}

// Snooze ends the alert of the requested alarm, or all alerts for id 0,
// and replies with the re-fire instant of each.
func (s *Server) Snooze(ctx context.Context, req *wrapperspb.Int64Value) (*structpb.Struct, error) {
	alarmID, err := alarmIDFrom(req)
	if err != nil {
		return nil, err
	}

	snoozed, err := s.alerts.Snooze(ctx, alarmID)
	if err != nil && len(snoozed) == 0 {
		return nil, toStatus(ctx, err, "unable to snooze")
	}

	if err != nil {
		logger.WarnKV(ctx, "Some alerts were not snoozed", "error", err)
	}

	reply, err := snoozeToStruct(snoozed)
	if err != nil {
		return nil, status.Error(codes.Internal, "unable to encode snooze times")
	}

	return reply, nil
}

// ReadAgain replays the verse of the requested alert, or all alerts for id 0.
func (s *Server) ReadAgain(ctx context.Context, req *wrapperspb.Int64Value) (*wrapperspb.Int64Value, error) {
	alarmID, err := alarmIDFrom(req)
	if err != nil {
		return nil, err
	}

	count, err := s.alerts.ReadAgain(ctx, alarmID)
	if err != nil {
		return nil, toStatus(ctx, err, "unable to read again")
	}

	return wrapperspb.Int64(int64(count)), nil
}

// Status lists the active alerts and the armed timers.
func (s *Server) Status(context.Context, *emptypb.Empty) (*structpb.Struct, error) {
	reply, err := statusToStruct(s.alerts.Sessions(), s.timers.Pending())
	if err != nil {
		return nil, status.Error(codes.Internal, "unable to encode status")
	}

	return reply, nil
}

// Reload reconciles the timers with the alarm store.
func (s *Server) Reload(ctx context.Context, _ *emptypb.Empty) (*emptypb.Empty, error) {
	if err := s.timers.Reconcile(ctx); err != nil {
		return nil, toStatus(ctx, err, "unable to reload alarms")
	}

	return new(emptypb.Empty), nil
}

// alarmIDFrom validates the requested alarm id. A missing request means 0.
func alarmIDFrom(req *wrapperspb.Int64Value) (int, error) {
	value := req.GetValue()
	if value < 0 || value > math.MaxInt32 {
		return 0, status.Errorf(codes.InvalidArgument, "alarm id %d out of range", value)
	}

	return int(value), nil
}

// toStatus maps domain errors onto gRPC codes.
func toStatus(ctx context.Context, err error, message string) error {
	code := codes.Internal

	switch {
	case errors.Is(err, trigger.ErrNoSession):
		code = codes.NotFound
	case errors.Is(err, trigger.ErrTooSoon):
		code = codes.ResourceExhausted
	case errors.Is(err, trigger.ErrSpeechUnavailable),
		errors.Is(err, trigger.ErrSessionEnded),
		errors.Is(err, timer.ErrPreciseAlarmDenied):
		code = codes.FailedPrecondition
	case errors.Is(err, trigger.ErrClosed):
		code = codes.Unavailable
	case errors.Is(err, context.Canceled):
		code = codes.Canceled
	case errors.Is(err, context.DeadlineExceeded):
		code = codes.DeadlineExceeded
	}

	if code == codes.Internal {
		logger.ErrorKV(ctx, message, "error", err)

		return status.Error(code, message)
	}

	return status.Error(code, message+": "+err.Error())
}
