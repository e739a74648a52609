package catalog

import (
	"context"
	"testing"

	"github.com/acksell/objectctx/dynamodb/ddbsdk"
	"github.com/acksell/objectctx/moc"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestContext(t *testing.T) (*moc.Context, ddbsdk.IO) {
	t.Helper()
	model := Model("test-")
	io := ddbsdk.NewMemoryClient(model.Tables()...)
	return moc.New(io, model), io
}

const productPayloadJSON = `{
  "id": 42,
  "owner_id": -1001,
  "title": "Mug",
  "description": "Blue mug",
  "is_favorite": true,
  "price": {"amount": "12300", "currency": {"id": 643, "name": "RUB"}, "text": "123 rub."},
  "photos": [{
    "id": 5, "album_id": -53, "owner_id": -1001, "text": "", "date": 1604000000,
    "sizes": [
      {"type": "x", "url": "https://img/x.jpg", "width": 604, "height": 604},
      {"type": "o", "url": "https://img/o.jpg", "width": 130, "height": 87},
      {"type": "m", "url": "https://img/m.jpg", "width": 130, "height": 130}
    ]
  }]
}`

func TestDecoder_Cities(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		payload string
		want    []string
	}{
		{name: "items envelope", payload: `{"items": [{"id": 1, "title": "Moscow"}, {"id": 2, "title": "Tver"}]}`, want: []string{"Moscow", "Tver"}},
		{name: "array", payload: `[{"id": 1, "title": "Moscow"}]`, want: []string{"Moscow"}},
		{name: "single object", payload: ` {"id": 2, "title": "Tver"}`, want: []string{"Tver"}},
		{name: "empty envelope", payload: `{"items": []}`, want: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestContext(t)
			cities, err := NewDecoder(c).Cities(ctx, []byte(tt.payload))
			require.NoError(t, err)
			got := make([]string, 0, len(cities))
			for _, city := range cities {
				got = append(got, city.Title)
			}
			assert.Equal(t, tt.want, got)
			assert.Equal(t, len(tt.want), c.CountOf(CityEntity))
		})
	}
}

func TestDecoder_UpdatesKnownEntity(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestContext(t)
	d := NewDecoder(c)

	first, err := d.Cities(ctx, []byte(`{"id": 1, "title": "Moscow"}`))
	require.NoError(t, err)
	second, err := d.Cities(ctx, []byte(`{"id": 1, "title": "Moskva"}`))
	require.NoError(t, err)

	assert.Same(t, first[0], second[0])
	assert.Equal(t, "Moskva", first[0].Title)
	assert.Equal(t, 1, c.Count())
}

func TestDecoder_UpdatesStoredEntity(t *testing.T) {
	ctx := context.Background()
	c, io := newTestContext(t)
	_, err := NewDecoder(c).Countries(ctx, []byte(`{"id": 1, "title": "Russia"}`))
	require.NoError(t, err)
	require.NoError(t, c.Save(ctx))

	fresh := moc.New(io, Model("test-"))
	countries, err := NewDecoder(fresh).Countries(ctx, []byte(`{"id": 1, "title": "Rossiya"}`))
	require.NoError(t, err)
	assert.Equal(t, &Country{ID: 1, Title: "Rossiya"}, countries[0])
	assert.True(t, fresh.HasChanges())

	var saved moc.SaveEvent
	fresh.OnDidSave(func(e moc.SaveEvent) { saved = e })
	require.NoError(t, fresh.Save(ctx))
	assert.Equal(t, []moc.ObjectKey{{Name: CountryEntity, ID: 1}}, saved.Updated)
	assert.Empty(t, saved.Inserted)
}

func TestDecoder_Product(t *testing.T) {
	ctx := context.Background()
	c, io := newTestContext(t)

	product, err := NewDecoder(c).Product(ctx, []byte(productPayloadJSON))
	require.NoError(t, err)
	assert.Equal(t, int64(42), product.ID)
	assert.Equal(t, "Mug", product.Title)
	assert.True(t, product.IsFavorite)
	assert.Equal(t, "https://vk.com/market-1001?w=product-1001_42", product.Link())

	price, err := product.Price()
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("12300").Equal(price.Amount))
	assert.True(t, decimal.NewFromInt(123).Equal(price.Units()))
	assert.Equal(t, Currency{ID: 643, Name: "RUB"}, price.Currency)

	photos, err := product.Photos()
	require.NoError(t, err)
	require.Len(t, photos, 1)
	assert.Equal(t, PhotoSizes{
		{Type: PhotoSizeM, Src: "https://img/m.jpg", Width: 130, Height: 130},
		{Type: PhotoSizeX, Src: "https://img/x.jpg", Width: 604, Height: 604},
	}, photos[0].Sizes)
	assert.Equal(t, 2020, photos[0].Time().Year())

	require.NoError(t, c.Save(ctx))

	reloaded, err := moc.InitOrGetFirst[Product](ctx, 42, moc.New(io, Model("test-")))
	require.NoError(t, err)
	reloadedPhotos, err := reloaded.Photos()
	require.NoError(t, err)
	assert.Equal(t, photos, reloadedPhotos)
	reloadedPrice, err := reloaded.Price()
	require.NoError(t, err)
	assert.Equal(t, price.Text, reloadedPrice.Text)
	assert.True(t, price.Amount.Equal(reloadedPrice.Amount))
}

func TestDecoder_ProductWithoutPrice(t *testing.T) {
	c, _ := newTestContext(t)

	_, err := NewDecoder(c).Products(context.Background(), []byte(`{"id": 1, "title": "free"}`))
	require.Error(t, err)
	assert.Equal(t, 0, c.Count())

	// a product created by the accessor alone cannot be saved
	_, err = moc.InitOrGetFirst[Product](context.Background(), 1, c)
	require.NoError(t, err)
	err = c.Save(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "has no price")
}

func TestDecoder_GroupResolvesCity(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestContext(t)
	d := NewDecoder(c)

	cities, err := d.Cities(ctx, []byte(`{"id": 1, "title": "Moscow"}`))
	require.NoError(t, err)

	groups, err := d.Groups(ctx, []byte(`{"items": [{
		"id": 7, "name": "Shop", "is_closed": 2,
		"photo_50": "https://img/50", "photo_100": "https://img/100", "photo_200": "https://img/200",
		"city": {"id": 1, "title": "Moskva"}
	}]}`))
	require.NoError(t, err)
	require.Len(t, groups, 1)

	group := groups[0]
	assert.Equal(t, int64(1), group.CityID)
	assert.Equal(t, VisibilityPrivate, group.Visibility)
	assert.Equal(t, "private", group.Visibility.String())
	assert.Equal(t, "Moskva", cities[0].Title, "the nested city updates the registered one")
	assert.Equal(t, 1, c.CountOf(CityEntity))

	sizes := group.PhotoSizes()
	require.Len(t, sizes, 3)
	assert.Equal(t, "https://img/50", sizes[0].Src)
	assert.Equal(t, 200, sizes[2].Width)
}

func TestDecoder_Decode(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestContext(t)
	d := NewDecoder(c)

	decoded, err := d.Decode(ctx, "Country", []byte(`[{"id": 1, "title": "Russia"}, {"id": 2, "title": "Belarus"}]`))
	require.NoError(t, err)
	require.Len(t, decoded, 2)
	assert.Equal(t, &Country{ID: 2, Title: "Belarus"}, decoded[1])

	_, err = d.Decode(ctx, "planet", []byte(`{"id": 1}`))
	require.ErrorIs(t, err, ErrUnknownKind)
}

func TestDecoder_Errors(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestContext(t)

	tests := []struct {
		name    string
		decoder *Decoder
		payload string
		wantErr error
	}{
		{name: "nil decoder", decoder: nil, payload: `{"id": 1}`, wantErr: moc.ErrInvalidContext},
		{name: "missing context", decoder: NewDecoder(nil), payload: `{"id": 1}`, wantErr: moc.ErrInvalidContext},
		{name: "missing id", decoder: NewDecoder(c), payload: `{"title": "nowhere"}`, wantErr: ErrMissingID},
		{name: "empty", decoder: NewDecoder(c), payload: "  ", wantErr: ErrEmptyPayload},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.decoder.Cities(ctx, []byte(tt.payload))
			require.ErrorIs(t, err, tt.wantErr)
		})
	}

	_, err := NewDecoder(c).Cities(ctx, []byte(`{"id": "one"}`))
	require.Error(t, err)
}
