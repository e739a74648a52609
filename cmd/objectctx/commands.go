package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/acksell/objectctx/catalog"
	"github.com/acksell/objectctx/config"
	"github.com/acksell/objectctx/moc"

	"github.com/aws/aws-sdk-go-v2/service/sts"
)

func runImport() error {
	fs := flag.NewFlagSet("import", flag.ExitOnError)

	var (
		configPath = fs.String("config", "", "config file (default: objectctx.yaml in this or a parent directory)")
		kind       = fs.String("kind", "", "entity kind: city, country, product or group")
		dryRun     = fs.Bool("dry-run", false, "decode only, do not save")
	)

	fs.Usage = func() {
		fmt.Println(`objectctx import - Decode JSON payloads and save the entities

Usage:
  objectctx import -kind <kind> [flags] <file>...

A file may hold {"items": [...]}, an array of objects or a single object.
Use - to read from stdin. Entities already stored are updated, new ones
created. All files are saved in one transaction.

Flags:`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(os.Args[1:]); err != nil {
		return err
	}
	if *kind == "" || fs.NArg() == 0 {
		fs.Usage()
		return errors.New("kind and at least one file are required")
	}

	ctx := context.Background()
	e, err := openEnv(ctx, *configPath)
	if err != nil {
		return err
	}
	defer e.Close()

	decoder := catalog.NewDecoder(e.moc)
	for _, path := range fs.Args() {
		data, err := readInput(path)
		if err != nil {
			return err
		}
		decoded, err := decoder.Decode(ctx, *kind, data)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		fmt.Printf("%s: %d decoded\n", path, len(decoded))
	}

	if *dryRun {
		fmt.Printf("dry run: %d entities decoded, nothing saved\n", e.moc.Count())
		return nil
	}

	var saved moc.SaveEvent
	e.moc.OnDidSave(func(ev moc.SaveEvent) {
		saved = ev
	})
	if err := e.moc.Save(ctx); err != nil {
		return err
	}
	fmt.Printf("saved: %d created, %d updated\n", len(saved.Inserted), len(saved.Updated))
	return nil
}

func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

func runGet() error {
	fs := flag.NewFlagSet("get", flag.ExitOnError)

	var (
		configPath = fs.String("config", "", "config file (default: objectctx.yaml in this or a parent directory)")
		kind       = fs.String("kind", "", "entity kind: city, country, product or group")
		id         = fs.Int64("id", 0, "entity id")
	)
	if err := fs.Parse(os.Args[1:]); err != nil {
		return err
	}
	ops, err := lookupKind(*kind)
	if err != nil {
		return err
	}

	ctx := context.Background()
	e, err := openEnv(ctx, *configPath)
	if err != nil {
		return err
	}
	defer e.Close()

	found, err := ops.get(ctx, e.moc, *id)
	if err != nil {
		return err
	}
	if found == nil {
		return fmt.Errorf("%s %d not found", *kind, *id)
	}
	return printEntity(os.Stdout, found, true)
}

func runList() error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)

	var (
		configPath = fs.String("config", "", "config file (default: objectctx.yaml in this or a parent directory)")
		kind       = fs.String("kind", "", "entity kind: city, country, product or group")
		limit      = fs.Int("limit", 0, "maximum number of entities, 0 for all")
	)
	if err := fs.Parse(os.Args[1:]); err != nil {
		return err
	}
	ops, err := lookupKind(*kind)
	if err != nil {
		return err
	}

	ctx := context.Background()
	e, err := openEnv(ctx, *configPath)
	if err != nil {
		return err
	}
	defer e.Close()

	found, err := ops.list(ctx, e.moc, *limit)
	if err != nil {
		return err
	}
	for _, entity := range found {
		if err := printEntity(os.Stdout, entity, false); err != nil {
			return err
		}
	}
	return nil
}

func runWhoami() error {
	fs := flag.NewFlagSet("whoami", flag.ExitOnError)
	configPath := fs.String("config", "", "config file (default: objectctx.yaml in this or a parent directory)")
	if err := fs.Parse(os.Args[1:]); err != nil {
		return err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if cfg.Backend != config.BackendDynamoDB {
		return fmt.Errorf("backend is %s, whoami needs the %s backend", cfg.Backend, config.BackendDynamoDB)
	}

	ctx := context.Background()
	awsCfg, err := loadAWSConfig(ctx, cfg)
	if err != nil {
		return err
	}
	out, err := sts.NewFromConfig(awsCfg).GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return fmt.Errorf("get caller identity: %w", err)
	}
	fmt.Printf("account: %s\narn:     %s\nuser:    %s\nregion:  %s\n",
		deref(out.Account), deref(out.Arn), deref(out.UserId), awsCfg.Region)
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
