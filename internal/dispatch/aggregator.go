package dispatch

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"vto/internal/domain"
)

// StatusAccepted is the only status an accept-and-acknowledge endpoint reports.
const StatusAccepted = "accepted"

const defaultSubmitTimeout = 10 * time.Second

// Invoker submits a payload to the named function without waiting for its result.
type Invoker interface {
	Invoke(ctx context.Context, functionName string, payload []byte) (int32, error)
}

// Outcome summarises a dispatch. Status is always StatusAccepted.
type Outcome struct {
	Status      string
	OutputNames []string
	Units       int
	Submitted   int
	Failed      int
	Skipped     bool
}

type AggregatorOptions struct {
	Invoker       Invoker
	FunctionName  string
	SubmitTimeout time.Duration
	Logger        *zerolog.Logger
}

// Aggregator submits units one after another and never fails the request.
type Aggregator struct {
	invoker      Invoker
	functionName string
	timeout      time.Duration
	logger       zerolog.Logger
}

func NewAggregator(opts AggregatorOptions) *Aggregator {
	timeout := opts.SubmitTimeout
	if timeout <= 0 {
		timeout = defaultSubmitTimeout
	}
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	return &Aggregator{
		invoker:      opts.Invoker,
		functionName: opts.FunctionName,
		timeout:      timeout,
		logger:       logger,
	}
}

// Dispatch submits every unit. Failures are logged per unit and do not stop the rest.
func (a *Aggregator) Dispatch(ctx context.Context, req GenerationRequest, units []Unit) Outcome {
	out := Outcome{
		Status:      StatusAccepted,
		OutputNames: req.OutputNames(),
		Units:       len(units),
	}
	log := a.logger.With().
		Str("request_id", req.RequestID).
		Str("group_id", req.GroupID).
		Str("user_id", req.UserID).
		Str("operation", string(req.Operation())).
		Logger()

	if a.functionName == "" || a.invoker == nil {
		log.Error().Msg("generation function is not configured, skipping submission")
		out.Skipped = true
		return out
	}

	for i, unit := range units {
		ulog := log.With().Int("image_index", unit.ImageIndex).Logger()
		if len(unit.IgnoredParams) > 0 {
			ulog.Info().Strs("ignored", unit.IgnoredParams).Msg("parameters not supported by model were dropped")
		}
		if err := a.submit(ctx, unit); err != nil {
			out.Failed++
			ulog.Error().Err(err).Msgf("unit %d/%d submission failed", i+1, len(units))
			continue
		}
		out.Submitted++
		ulog.Info().Msgf("unit %d/%d submitted", i+1, len(units))
	}
	return out
}

func (a *Aggregator) submit(ctx context.Context, unit Unit) error {
	payload, err := domain.MarshalEvent(unit.Params)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()
	_, err = a.invoker.Invoke(ctx, a.functionName, payload)
	return err
}
