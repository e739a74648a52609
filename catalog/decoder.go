package catalog

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/acksell/objectctx/moc"

	json "github.com/goccy/go-json"
)

var (
	ErrEmptyPayload = errors.New("catalog: empty payload")
	ErrMissingID    = errors.New("catalog: missing id")
	ErrUnknownKind  = errors.New("catalog: unknown kind")
)

// Decoder turns API payloads into entities registered in Context. Entities
// already known to the context or its store are updated in place, unknown
// ones are inserted. Nothing is saved.
//
// A payload is a single object, an array of objects or an {"items": [...]}
// envelope. When an item fails to decode, the items before it stay applied
// to the context; use Context.Rollback to discard them.
type Decoder struct {
	Context *moc.Context
}

func NewDecoder(c *moc.Context) *Decoder {
	return &Decoder{Context: c}
}

func (d *Decoder) context() *moc.Context {
	if d == nil {
		return nil
	}
	return d.Context
}

func (d *Decoder) Cities(ctx context.Context, data []byte) ([]*City, error) {
	return decodeAll[*City, cityPayload](ctx, d.context(), data)
}

func (d *Decoder) Countries(ctx context.Context, data []byte) ([]*Country, error) {
	return decodeAll[*Country, countryPayload](ctx, d.context(), data)
}

func (d *Decoder) Products(ctx context.Context, data []byte) ([]*Product, error) {
	return decodeAll[*Product, productPayload](ctx, d.context(), data)
}

func (d *Decoder) Groups(ctx context.Context, data []byte) ([]*Group, error) {
	return decodeAll[*Group, groupPayload](ctx, d.context(), data)
}

// Product decodes a payload and returns its first product.
func (d *Decoder) Product(ctx context.Context, data []byte) (*Product, error) {
	products, err := d.Products(ctx, data)
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return nil, ErrEmptyPayload
	}
	return products[0], nil
}

// Decode decodes a payload of the named kind: city, country, product or group.
func (d *Decoder) Decode(ctx context.Context, kind string, data []byte) ([]moc.Entity, error) {
	switch strings.ToLower(kind) {
	case "city", "cities":
		cities, err := d.Cities(ctx, data)
		return entities(cities, err)
	case "country", "countries":
		countries, err := d.Countries(ctx, data)
		return entities(countries, err)
	case "product", "products":
		products, err := d.Products(ctx, data)
		return entities(products, err)
	case "group", "groups":
		groups, err := d.Groups(ctx, data)
		return entities(groups, err)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
}

func entities[E moc.Entity](in []E, err error) ([]moc.Entity, error) {
	if err != nil {
		return nil, err
	}
	out := make([]moc.Entity, len(in))
	for i, e := range in {
		out[i] = e
	}
	return out, nil
}

type payloadPtr[P any, E any] interface {
	*P
	apply(ctx context.Context, c *moc.Context) (E, error)
}

func decodeAll[E any, P any, PP payloadPtr[P, E]](ctx context.Context, c *moc.Context, data []byte) ([]E, error) {
	if c == nil {
		return nil, moc.ErrInvalidContext
	}
	raws, err := splitPayload(data)
	if err != nil {
		return nil, err
	}
	out := make([]E, 0, len(raws))
	for i, raw := range raws {
		var p P
		if err := unmarshalJSON(raw, &p); err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		e, err := PP(&p).apply(ctx, c)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		out = append(out, e)
	}
	return out, nil
}

func splitPayload(data []byte) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, ErrEmptyPayload
	}
	if trimmed[0] == '[' {
		var items []json.RawMessage
		if err := unmarshalJSON(trimmed, &items); err != nil {
			return nil, err
		}
		return items, nil
	}
	var envelope struct {
		Items *[]json.RawMessage `json:"items"`
	}
	if err := unmarshalJSON(trimmed, &envelope); err != nil {
		return nil, err
	}
	if envelope.Items != nil {
		return *envelope.Items, nil
	}
	return []json.RawMessage{trimmed}, nil
}

func requireID(kind string, id *int64) error {
	if id == nil {
		return fmt.Errorf("%w: %s", ErrMissingID, kind)
	}
	return nil
}

type cityPayload struct {
	ID    *int64 `json:"id"`
	Title string `json:"title"`
}

func (p *cityPayload) apply(ctx context.Context, c *moc.Context) (*City, error) {
	if err := requireID(CityEntity, p.ID); err != nil {
		return nil, err
	}
	city, err := moc.InitOrGetFirst[City](ctx, *p.ID, c)
	if err != nil {
		return nil, err
	}
	city.Title = p.Title
	return city, nil
}

type countryPayload struct {
	ID    *int64 `json:"id"`
	Title string `json:"title"`
}

func (p *countryPayload) apply(ctx context.Context, c *moc.Context) (*Country, error) {
	if err := requireID(CountryEntity, p.ID); err != nil {
		return nil, err
	}
	country, err := moc.InitOrGetFirst[Country](ctx, *p.ID, c)
	if err != nil {
		return nil, err
	}
	country.Title = p.Title
	return country, nil
}

type productPayload struct {
	ID          *int64  `json:"id"`
	OwnerID     int64   `json:"owner_id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	IsFavorite  bool    `json:"is_favorite"`
	Photos      []Photo `json:"photos"`
	Price       *Price  `json:"price"`
}

func (p *productPayload) apply(ctx context.Context, c *moc.Context) (*Product, error) {
	if err := requireID(ProductEntity, p.ID); err != nil {
		return nil, err
	}
	if p.Price == nil {
		return nil, fmt.Errorf("catalog: product %d has no price", *p.ID)
	}
	product, err := moc.InitOrGetFirst[Product](ctx, *p.ID, c)
	if err != nil {
		return nil, err
	}
	product.OwnerID = p.OwnerID
	product.Title = p.Title
	product.Description = p.Description
	product.IsFavorite = p.IsFavorite
	if err := product.SetPhotos(p.Photos); err != nil {
		return nil, err
	}
	if err := product.SetPrice(*p.Price); err != nil {
		return nil, err
	}
	return product, nil
}

type groupPayload struct {
	ID         *int64       `json:"id"`
	Name       string       `json:"name"`
	Photo50    string       `json:"photo_50"`
	Photo100   string       `json:"photo_100"`
	Photo200   string       `json:"photo_200"`
	Visibility Visibility   `json:"is_closed"`
	City       *cityPayload `json:"city"`
}

func (p *groupPayload) apply(ctx context.Context, c *moc.Context) (*Group, error) {
	if err := requireID(GroupEntity, p.ID); err != nil {
		return nil, err
	}
	group, err := moc.InitOrGetFirst[Group](ctx, *p.ID, c)
	if err != nil {
		return nil, err
	}
	group.Name = p.Name
	group.Photo50 = p.Photo50
	group.Photo100 = p.Photo100
	group.Photo200 = p.Photo200
	group.Visibility = p.Visibility
	group.CityID = 0
	if p.City != nil {
		city, err := p.City.apply(ctx, c)
		if err != nil {
			return nil, fmt.Errorf("group %d city: %w", *p.ID, err)
		}
		group.CityID = city.ID
	}
	return group, nil
}

func marshalJSON(v any) ([]byte, error) {
	return json.Marshal(v)
}

func unmarshalJSON(data []byte, v any) error {
	return json.Unmarshal(data, v)
}
