// Package catalog holds the market catalog entities and decodes them from
// API payloads into a moc.Context.
package catalog

import (
	"fmt"

	"github.com/acksell/objectctx/moc"
)

const (
	CityEntity    = "City"
	CountryEntity = "Country"
	ProductEntity = "Product"
	GroupEntity   = "Group"
)

// Model returns the moc model with all catalog entities registered.
func Model(tablePrefix string) *moc.Model {
	return moc.NewModel(tablePrefix).Register(&City{}, &Country{}, &Product{}, &Group{})
}

type City struct {
	ID    int64  `dynamodbav:"id" json:"id"`
	Title string `dynamodbav:"title" json:"title"`
}

func (c *City) EntityName() string { return CityEntity }
func (c *City) GetID() int64       { return c.ID }
func (c *City) SetID(id int64)     { c.ID = id }

type Country struct {
	ID    int64  `dynamodbav:"id" json:"id"`
	Title string `dynamodbav:"title" json:"title"`
}

func (c *Country) EntityName() string { return CountryEntity }
func (c *Country) GetID() int64       { return c.ID }
func (c *Country) SetID(id int64)     { c.ID = id }

// Product is a market item. Photos and price are kept as encoded JSON.
type Product struct {
	ID          int64  `dynamodbav:"id" json:"id"`
	OwnerID     int64  `dynamodbav:"owner_id" json:"owner_id"`
	Title       string `dynamodbav:"title" json:"title"`
	Description string `dynamodbav:"description" json:"description"`
	IsFavorite  bool   `dynamodbav:"is_favorite" json:"is_favorite"`
	PhotosData  []byte `dynamodbav:"photos" json:"-"`
	PriceData   []byte `dynamodbav:"price" json:"-"`
}

func (p *Product) EntityName() string { return ProductEntity }
func (p *Product) GetID() int64       { return p.ID }
func (p *Product) SetID(id int64)     { p.ID = id }

func (p *Product) IsValid() error {
	if len(p.PriceData) == 0 {
		return fmt.Errorf("product %d has no price", p.ID)
	}
	return nil
}

// Link is the product page on the market.
func (p *Product) Link() string {
	return fmt.Sprintf("https://vk.com/market%d?w=product%d_%d", p.OwnerID, p.OwnerID, p.ID)
}

func (p *Product) Photos() ([]Photo, error) {
	var photos []Photo
	if len(p.PhotosData) == 0 {
		return photos, nil
	}
	if err := unmarshalJSON(p.PhotosData, &photos); err != nil {
		return nil, fmt.Errorf("product %d photos: %w", p.ID, err)
	}
	return photos, nil
}

func (p *Product) SetPhotos(photos []Photo) error {
	data, err := marshalJSON(photos)
	if err != nil {
		return fmt.Errorf("product %d photos: %w", p.ID, err)
	}
	p.PhotosData = data
	return nil
}

func (p *Product) Price() (Price, error) {
	var price Price
	if len(p.PriceData) == 0 {
		return price, fmt.Errorf("product %d has no price", p.ID)
	}
	if err := unmarshalJSON(p.PriceData, &price); err != nil {
		return Price{}, fmt.Errorf("product %d price: %w", p.ID, err)
	}
	return price, nil
}

func (p *Product) SetPrice(price Price) error {
	data, err := marshalJSON(price)
	if err != nil {
		return fmt.Errorf("product %d price: %w", p.ID, err)
	}
	p.PriceData = data
	return nil
}

type Visibility int16

const (
	VisibilityOpened Visibility = iota
	VisibilityClosed
	VisibilityPrivate
)

func (v Visibility) String() string {
	switch v {
	case VisibilityOpened:
		return "opened"
	case VisibilityClosed:
		return "closed"
	case VisibilityPrivate:
		return "private"
	}
	return fmt.Sprintf("Visibility(%d)", int16(v))
}

// Group is a community running a market. Its city is stored by id.
type Group struct {
	ID         int64      `dynamodbav:"id" json:"id"`
	Name       string     `dynamodbav:"name" json:"name"`
	Photo50    string     `dynamodbav:"photo_50" json:"photo_50"`
	Photo100   string     `dynamodbav:"photo_100" json:"photo_100"`
	Photo200   string     `dynamodbav:"photo_200" json:"photo_200"`
	Visibility Visibility `dynamodbav:"is_closed" json:"is_closed"`
	CityID     int64      `dynamodbav:"city_id,omitempty" json:"city_id,omitempty"`
}

func (g *Group) EntityName() string { return GroupEntity }
func (g *Group) GetID() int64       { return g.ID }
func (g *Group) SetID(id int64)     { g.ID = id }

// PhotoSizes returns the square avatars, smallest first.
func (g *Group) PhotoSizes() PhotoSizes {
	return PhotoSizes{
		{Type: PhotoSizeCustom, Src: g.Photo50, Width: 50, Height: 50},
		{Type: PhotoSizeCustom, Src: g.Photo100, Width: 100, Height: 100},
		{Type: PhotoSizeCustom, Src: g.Photo200, Width: 200, Height: 200},
	}
}
