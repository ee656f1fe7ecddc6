// Package invoke submits worker events to the generation function.
package invoke

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awslambda "github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/lambda/types"
	"github.com/rs/zerolog"

	"vto/internal/dispatch"
)

// LambdaAPI is the subset of *lambda.Client used here.
type LambdaAPI interface {
	Invoke(ctx context.Context, params *awslambda.InvokeInput, optFns ...func(*awslambda.Options)) (*awslambda.InvokeOutput, error)
}

// LambdaInvoker submits payloads with the asynchronous Event invocation type.
type LambdaInvoker struct {
	client LambdaAPI
	logger zerolog.Logger
}

func NewLambdaInvoker(client LambdaAPI, logger *zerolog.Logger) *LambdaInvoker {
	l := zerolog.Nop()
	if logger != nil {
		l = *logger
	}
	return &LambdaInvoker{client: client, logger: l}
}

// Invoke returns the status code reported by Lambda, 202 on an accepted event.
func (i *LambdaInvoker) Invoke(ctx context.Context, functionName string, payload []byte) (int32, error) {
	if i == nil || i.client == nil {
		return 0, errors.New("invoke: lambda client is not configured")
	}
	out, err := i.client.Invoke(ctx, &awslambda.InvokeInput{
		FunctionName:   aws.String(functionName),
		InvocationType: types.InvocationTypeEvent,
		Payload:        payload,
	})
	if err != nil {
		return 0, fmt.Errorf("invoke %s: %w", functionName, err)
	}
	if out.FunctionError != nil {
		return out.StatusCode, fmt.Errorf("invoke %s: function error %s", functionName, aws.ToString(out.FunctionError))
	}
	i.logger.Debug().Str("function", functionName).Int32("status", out.StatusCode).Msg("event submitted")
	return out.StatusCode, nil
}

var _ dispatch.Invoker = (*LambdaInvoker)(nil)
