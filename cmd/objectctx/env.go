package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/acksell/objectctx/catalog"
	"github.com/acksell/objectctx/config"
	"github.com/acksell/objectctx/dynamodb/ddbsdk"
	"github.com/acksell/objectctx/dynamodb/ddbstore"
	"github.com/acksell/objectctx/moc"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

// env is the configured backend and a fresh context over it.
type env struct {
	cfg    config.Config
	log    moc.Logger
	moc    *moc.Context
	closer func() error
}

func openEnv(ctx context.Context, configPath string) (*env, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	logger := moc.NewStdLogger(log.New(os.Stderr, "objectctx: ", log.LstdFlags), cfg.Verbose)
	model := catalog.Model(cfg.TablePrefix)

	var (
		client ddbsdk.AWSDynamoClientV2
		closer = func() error { return nil }
	)
	switch cfg.Backend {
	case config.BackendBadger, config.BackendMemory:
		opts := ddbstore.StoreOptions{Path: cfg.DataDir, InMemory: cfg.Backend == config.BackendMemory}
		if cfg.Verbose {
			opts.Logger = logger
		}
		store, err := ddbstore.New(opts, model.Tables()...)
		if err != nil {
			return nil, fmt.Errorf("open store: %w", err)
		}
		client = store
		closer = store.Close
	case config.BackendDynamoDB:
		awsCfg, err := loadAWSConfig(ctx, cfg)
		if err != nil {
			return nil, err
		}
		client = dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
			if cfg.Endpoint != "" {
				o.BaseEndpoint = aws.String(cfg.Endpoint)
			}
		})
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}

	opts := []moc.Option{moc.WithLogger(logger)}
	if cfg.StrictMatching {
		opts = append(opts, moc.WithStrictMatching())
	}
	if cfg.EventuallyConsistentReads {
		opts = append(opts, moc.WithEventualConsistency())
	}
	logger.Debugf("using %s backend, tables %v", cfg.Backend, model.EntityNames())
	return &env{
		cfg:    cfg,
		log:    logger,
		moc:    moc.New(ddbsdk.New(client), model, opts...),
		closer: closer,
	}, nil
}

func (e *env) Close() {
	if err := e.closer(); err != nil {
		e.log.Errorf("close store: %v", err)
	}
}

func loadAWSConfig(ctx context.Context, cfg config.Config) (aws.Config, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("load aws config: %w", err)
	}
	return awsCfg, nil
}
