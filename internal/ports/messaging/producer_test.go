package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSQSClient struct {
	inputs []*sqs.SendMessageInput
	err    error
}

func (f *fakeSQSClient) SendMessage(_ context.Context, params *sqs.SendMessageInput, _ ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	f.inputs = append(f.inputs, params)
	return &sqs.SendMessageOutput{}, f.err
}

func TestProducer_RoutesByEvent(t *testing.T) {
	client := &fakeSQSClient{}
	p := NewSQSProducer(client, "sync-url", "email-url")
	ctx := context.Background()

	recorded := EventRecorded{EventID: "e1", ShopID: 1, UserID: 2, Type: "day_in", DateAt: "2025-03-10", TimeAt: "08:00:00", Operation: OperationCreate}
	closed := ShiftClosed{EventID: "e2", ShopID: 1, UserID: 2, DateAt: "2025-03-10", ShiftEndedAt: time.Now(), HoursWorked: 8}

	require.NoError(t, p.PublishEventRecorded(ctx, recorded))
	require.NoError(t, p.PublishShiftClosed(ctx, closed))
	require.Len(t, client.inputs, 2)

	assert.Equal(t, "sync-url", aws.ToString(client.inputs[0].QueueUrl))
	assert.Equal(t, "EVENT_RECORDED", aws.ToString(client.inputs[0].MessageAttributes["EventType"].StringValue))
	var got EventRecorded
	require.NoError(t, json.Unmarshal([]byte(aws.ToString(client.inputs[0].MessageBody)), &got))
	assert.Equal(t, recorded, got)

	assert.Equal(t, "email-url", aws.ToString(client.inputs[1].QueueUrl))
	assert.Equal(t, "SHIFT_CLOSED", aws.ToString(client.inputs[1].MessageAttributes["EventType"].StringValue))
}

func TestProducer_SendFailure(t *testing.T) {
	client := &fakeSQSClient{err: errors.New("queue does not exist")}
	p := NewSQSProducer(client, "sync-url", "email-url")

	err := p.PublishEventRecorded(context.Background(), EventRecorded{EventID: "e1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to send message")
}
