// Package reporting ships error-level log entries to external sinks.
package reporting

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"marketpulse/internal/common/aws"
	"marketpulse/internal/common/logger"
	"marketpulse/internal/common/metrics"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	sestypes "github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	snstypes "github.com/aws/aws-sdk-go-v2/service/sns/types"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

func record(sink string, err error) error {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	metrics.ReportsDelivered.WithLabelValues(sink, outcome).Inc()
	return err
}

// ==========================
// SNS
// ==========================

// SNSReporter publishes each entry as JSON to an SNS topic.
type SNSReporter struct {
	client   *aws.SNSClient
	topicARN string
}

func NewSNSReporter(client *aws.SNSClient, topicARN string) *SNSReporter {
	return &SNSReporter{client: client, topicARN: topicARN}
}

func (r *SNSReporter) Report(ctx context.Context, entry logger.Entry) error {
	body, err := json.Marshal(entry)
	if err != nil {
		return record("sns", fmt.Errorf("marshal entry: %w", err))
	}
	_, err = r.client.Publish(ctx, &sns.PublishInput{
		TopicArn: awssdk.String(r.topicARN),
		Subject:  awssdk.String(subject(entry)),
		Message:  awssdk.String(string(body)),
		MessageAttributes: map[string]snstypes.MessageAttributeValue{
			"level": {DataType: awssdk.String("String"), StringValue: awssdk.String(string(entry.Level))},
		},
	})
	if err != nil {
		err = fmt.Errorf("sns publish: %w", err)
	}
	return record("sns", err)
}

// ==========================
// SES
// ==========================

// SESReporter emails each entry to a fixed list of recipients.
type SESReporter struct {
	client *aws.SESClient
	from   string
	to     []string
}

func NewSESReporter(client *aws.SESClient, from string, to []string) *SESReporter {
	return &SESReporter{client: client, from: from, to: to}
}

func (r *SESReporter) Report(ctx context.Context, entry logger.Entry) error {
	body, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return record("ses", fmt.Errorf("marshal entry: %w", err))
	}
	_, err = r.client.SendEmail(ctx, &ses.SendEmailInput{
		Source:      awssdk.String(r.from),
		Destination: &sestypes.Destination{ToAddresses: r.to},
		Message: &sestypes.Message{
			Subject: &sestypes.Content{Data: awssdk.String(subject(entry))},
			Body: &sestypes.Body{
				Text: &sestypes.Content{Data: awssdk.String(string(body))},
			},
		},
	})
	if err != nil {
		err = fmt.Errorf("ses send: %w", err)
	}
	return record("ses", err)
}

// ==========================
// Elasticsearch
// ==========================

// ElasticsearchReporter indexes each entry as a document.
type ElasticsearchReporter struct {
	client *elasticsearch.Client
	index  string
}

func NewElasticsearchReporter(client *elasticsearch.Client, index string) *ElasticsearchReporter {
	return &ElasticsearchReporter{client: client, index: index}
}

func (r *ElasticsearchReporter) Report(ctx context.Context, entry logger.Entry) error {
	body, err := json.Marshal(entry)
	if err != nil {
		return record("elasticsearch", fmt.Errorf("marshal entry: %w", err))
	}

	req := esapi.IndexRequest{
		Index: r.index,
		Body:  bytes.NewReader(body),
	}
	res, err := req.Do(ctx, r.client)
	if err != nil {
		return record("elasticsearch", fmt.Errorf("index entry: %w", err))
	}
	defer res.Body.Close()

	if res.IsError() {
		return record("elasticsearch", fmt.Errorf("index entry: %s", res.Status()))
	}
	return record("elasticsearch", nil)
}

// ==========================
// Fan-out
// ==========================

// MultiReporter hands each entry to every sink and joins their failures.
type MultiReporter []logger.Reporter

func (m MultiReporter) Report(ctx context.Context, entry logger.Entry) error {
	var failed []string
	for _, r := range m {
		if err := r.Report(ctx, entry); err != nil {
			failed = append(failed, err.Error())
		}
	}
	if len(failed) > 0 {
		return fmt.Errorf("report entry: %s", strings.Join(failed, "; "))
	}
	return nil
}

func subject(entry logger.Entry) string {
	s := "[marketpulse] " + entry.Message
	if entry.Context != "" {
		s = fmt.Sprintf("[marketpulse] %s: %s", entry.Context, entry.Message)
	}
	// SES and SNS both cap subjects at 100 characters.
	if r := []rune(s); len(r) > 100 {
		s = string(r[:97]) + "..."
	}
	return s
}
