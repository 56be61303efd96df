package reporting

import (
	"context"
	"fmt"
	"time"

	"marketpulse/internal/common/aws"
	"marketpulse/internal/common/config"
	"marketpulse/internal/common/database"
	"marketpulse/internal/common/logger"
)

// FromConfig builds the reporter for every enabled sink. It returns nil when no
// sink is enabled, which leaves the logger in its reporter-less mode.
func FromConfig(ctx context.Context, cfg config.ReportingConfig, esCfg config.ElasticsearchConfig) (logger.Reporter, time.Duration, error) {
	var sinks MultiReporter

	if cfg.SNS.Enabled {
		client, err := aws.NewSNSClient(ctx, cfg.SNS.Region)
		if err != nil {
			return nil, 0, fmt.Errorf("sns reporter: %w", err)
		}
		sinks = append(sinks, NewSNSReporter(client, cfg.SNS.TopicARN))
	}

	if cfg.SES.Enabled {
		client, err := aws.NewSESClient(ctx, cfg.SES.Region)
		if err != nil {
			return nil, 0, fmt.Errorf("ses reporter: %w", err)
		}
		sinks = append(sinks, NewSESReporter(client, cfg.SES.FromEmail, cfg.SES.ToEmails))
	}

	if cfg.Elasticsearch.Enabled {
		es, err := database.NewElasticsearch(esCfg)
		if err != nil {
			return nil, 0, fmt.Errorf("elasticsearch reporter: %w", err)
		}
		sinks = append(sinks, NewElasticsearchReporter(es.Client, cfg.Elasticsearch.Index))
	}

	timeout := config.GetDuration(cfg.Timeout)
	switch len(sinks) {
	case 0:
		return nil, timeout, nil
	case 1:
		return sinks[0], timeout, nil
	}
	return sinks, timeout, nil
}
