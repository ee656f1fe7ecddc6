package dispatch

import (
	"context"

	"github.com/rs/zerolog"
)

// Recorder persists a summary of each accepted request.
type Recorder interface {
	Record(ctx context.Context, req GenerationRequest, out Outcome) error
}

// Service plans, submits and records a request.
type Service struct {
	aggregator *Aggregator
	recorder   Recorder
	logger     zerolog.Logger
}

func NewService(aggregator *Aggregator, recorder Recorder, logger *zerolog.Logger) *Service {
	l := zerolog.Nop()
	if logger != nil {
		l = *logger
	}
	return &Service{aggregator: aggregator, recorder: recorder, logger: l}
}

// Submit never fails; recorder errors are logged only.
func (s *Service) Submit(ctx context.Context, req GenerationRequest) Outcome {
	units := Plan(req)
	out := s.aggregator.Dispatch(ctx, req, units)
	if s.recorder != nil {
		if err := s.recorder.Record(ctx, req, out); err != nil {
			s.logger.Warn().Err(err).Str("request_id", req.RequestID).Msg("dispatch ledger write failed")
		}
	}
	return out
}
