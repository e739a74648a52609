package main

import (
	"fmt"
	"io"

	"github.com/acksell/objectctx/catalog"
	"github.com/acksell/objectctx/moc"

	json "github.com/goccy/go-json"
)

type productView struct {
	*catalog.Product
	Link   string          `json:"link"`
	Photos []catalog.Photo `json:"photos"`
	Price  *catalog.Price  `json:"price,omitempty"`
}

// view expands the encoded product fields for printing.
func view(e moc.Entity) (any, error) {
	p, ok := e.(*catalog.Product)
	if !ok {
		return e, nil
	}
	photos, err := p.Photos()
	if err != nil {
		return nil, err
	}
	v := productView{Product: p, Link: p.Link(), Photos: photos}
	if len(p.PriceData) > 0 {
		price, err := p.Price()
		if err != nil {
			return nil, err
		}
		v.Price = &price
	}
	return v, nil
}

func printEntity(w io.Writer, e moc.Entity, indent bool) error {
	v, err := view(e)
	if err != nil {
		return err
	}
	var data []byte
	if indent {
		data, err = json.MarshalIndent(v, "", "  ")
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return fmt.Errorf("encode %s %d: %w", e.EntityName(), e.GetID(), err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
