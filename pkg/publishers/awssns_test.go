package publishers

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/samvad-hq/dxy-snapshot/internal/domain"
	"github.com/samvad-hq/dxy-snapshot/internal/logger"
)

type fakeSNSClient struct {
	input *sns.PublishInput
	err   error
}

func (f *fakeSNSClient) Publish(_ context.Context, params *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &sns.PublishOutput{MessageId: aws.String("msg-123")}, nil
}

func TestSNSPublisherPublishSuccess(t *testing.T) {
	client := &fakeSNSClient{}
	sender := &snsPublisher{
		topicARN: "arn:aws:sns:::topic",
		client:   client,
		log:      &logger.NopLogger{},
	}

	reading := domain.IndexReading{Ticker: "DXY", Value: 97.42, Source: "polygon", MarketStatus: "open"}
	err := sender.Publish(context.Background(), NewEvent(reading))
	if err != nil {
		t.Fatalf("Publish returned error: %v", err)
	}
	if client.input == nil {
		t.Fatalf("client was not called")
	}
	if got := aws.ToString(client.input.TopicArn); got != "arn:aws:sns:::topic" {
		t.Fatalf("TopicArn = %s", got)
	}
	attr, ok := client.input.MessageAttributes["ticker"]
	if !ok || attr.StringValue == nil || aws.ToString(attr.StringValue) != "DXY" {
		t.Fatalf("ticker attribute missing or wrong: %#v", attr)
	}
	if attr.DataType == nil || aws.ToString(attr.DataType) != "String" {
		t.Fatalf("DataType should be String, got %#v", attr.DataType)
	}
	for name, want := range map[string]string{AttrSource: "polygon", AttrMarketStatus: "open"} {
		if got := aws.ToString(client.input.MessageAttributes[name].StringValue); got != want {
			t.Fatalf("%s attribute = %q, want %q", name, got, want)
		}
	}
	if _, ok := client.input.MessageAttributes[AttrFetchedAt]; ok {
		t.Fatalf("zero fetched_at should not be sent")
	}
	if got := aws.ToString(client.input.Subject); got != "DXY index reading" {
		t.Fatalf("Subject = %q", got)
	}
	if client.input.Message == nil || !strings.Contains(aws.ToString(client.input.Message), `"ticker":"DXY"`) {
		t.Fatalf("Message missing ticker: %s", aws.ToString(client.input.Message))
	}
}

func TestSNSPublisherPublishError(t *testing.T) {
	client := &fakeSNSClient{err: errors.New("boom")}
	sender := &snsPublisher{
		topicARN: "arn:aws:sns:::topic",
		client:   client,
		log:      &logger.NopLogger{},
	}

	err := sender.Publish(context.Background(), NewEvent(domain.IndexReading{Ticker: "DXY", Value: 97.42}))
	if err == nil {
		t.Fatalf("expected error from Publish")
	}
}
