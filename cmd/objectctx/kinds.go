package main

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/acksell/objectctx/catalog"
	"github.com/acksell/objectctx/moc"
)

type kindOps struct {
	// get returns nil when nothing is stored under id.
	get  func(ctx context.Context, c *moc.Context, id int64) (moc.Entity, error)
	list func(ctx context.Context, c *moc.Context, limit int) ([]moc.Entity, error)
}

var kinds = map[string]kindOps{
	"city":    opsFor[catalog.City](),
	"country": opsFor[catalog.Country](),
	"product": opsFor[catalog.Product](),
	"group":   opsFor[catalog.Group](),
}

func lookupKind(kind string) (kindOps, error) {
	ops, ok := kinds[strings.ToLower(kind)]
	if !ok {
		names := make([]string, 0, len(kinds))
		for name := range kinds {
			names = append(names, name)
		}
		slices.Sort(names)
		return kindOps{}, fmt.Errorf("unknown kind %q, want one of %s", kind, strings.Join(names, ", "))
	}
	return ops, nil
}

func opsFor[T any, PT moc.EntityPtr[T]]() kindOps {
	return kindOps{
		get: func(ctx context.Context, c *moc.Context, id int64) (moc.Entity, error) {
			e, err := moc.Get[T, PT](ctx, id, c)
			if err != nil || e == nil {
				return nil, err
			}
			return e, nil
		},
		list: func(ctx context.Context, c *moc.Context, limit int) ([]moc.Entity, error) {
			found, err := moc.Fetch[T, PT](ctx, c, moc.FetchRequest[PT]{
				Less: func(a, b PT) bool {
					return a.GetID() < b.GetID()
				},
				Limit: limit,
			})
			if err != nil {
				return nil, err
			}
			out := make([]moc.Entity, len(found))
			for i, e := range found {
				out[i] = e
			}
			return out, nil
		},
	}
}
