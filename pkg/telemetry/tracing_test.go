package telemetry

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestEmployeeFromPayload(t *testing.T) {
	e, ok := EmployeeFromPayload([]byte(`{"shopId":4,"userId":9,"type":"day_in"}`))
	require.True(t, ok)
	assert.Equal(t, Employee{ShopID: 4, UserID: 9}, e)

	_, ok = EmployeeFromPayload([]byte(`{"shopId":4}`))
	assert.False(t, ok)

	_, ok = EmployeeFromPayload([]byte(`not json`))
	assert.False(t, ok)
}

func TestTraceContextRoundTripsThroughSQSAttributes(t *testing.T) {
	tp := sdktrace.NewTracerProvider()
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	ctx, span := otel.Tracer("test").Start(context.Background(), "publish")
	attrs := InjectTraceContext(ctx)
	span.End()
	require.Contains(t, attrs, "traceparent")

	msg := types.Message{
		MessageId:         aws.String("m-1"),
		Body:              aws.String(`{"shopId":1,"userId":2}`),
		MessageAttributes: attrs,
	}
	consumerCtx, consumerSpan := StartSpanFromSQSMessage(context.Background(), msg)
	defer consumerSpan.End()

	assert.Equal(t, span.SpanContext().TraceID(), consumerSpan.SpanContext().TraceID())
	e, ok := EmployeeFromContext(consumerCtx)
	require.True(t, ok)
	assert.Equal(t, int64(2), e.UserID)
}
