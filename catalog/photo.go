package catalog

import (
	"slices"
	"time"

	json "github.com/goccy/go-json"
)

type PhotoSizeType string

const (
	PhotoSizeCustom PhotoSizeType = "custom"

	// Proportional copies, by maximum side.
	PhotoSizeS PhotoSizeType = "s" // 75px
	PhotoSizeM PhotoSizeType = "m" // 130px
	PhotoSizeX PhotoSizeType = "x" // 604px
	PhotoSizeY PhotoSizeType = "y" // 807px
	PhotoSizeZ PhotoSizeType = "z" // 1080x1024
	PhotoSizeW PhotoSizeType = "w" // 2560x2048

	// Copies cropped to 3:2 when the original is wider than that.
	PhotoSizeO PhotoSizeType = "o"
	PhotoSizeP PhotoSizeType = "p"
	PhotoSizeQ PhotoSizeType = "q"
	PhotoSizeR PhotoSizeType = "r"
)

// IsAspectRatioOriginal reports whether copies of this type keep the original proportions.
func (t PhotoSizeType) IsAspectRatioOriginal() bool {
	switch t {
	case PhotoSizeS, PhotoSizeM, PhotoSizeX, PhotoSizeY, PhotoSizeZ, PhotoSizeW:
		return true
	}
	return false
}

type PhotoSize struct {
	Type   PhotoSizeType `json:"type"`
	Src    string        `json:"src"`
	Width  int           `json:"width"`
	Height int           `json:"height"`
}

// UnmarshalJSON accepts the source under "url" as sent by the API, or under
// "src" as written by MarshalJSON.
func (s *PhotoSize) UnmarshalJSON(data []byte) error {
	var raw struct {
		Type   PhotoSizeType `json:"type"`
		URL    *string       `json:"url"`
		Src    string        `json:"src"`
		Width  int           `json:"width"`
		Height int           `json:"height"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = PhotoSize{Type: raw.Type, Src: raw.Src, Width: raw.Width, Height: raw.Height}
	if raw.URL != nil {
		s.Src = *raw.URL
	}
	return nil
}

// PhotoSizes are ordered by width. Decoding drops cropped sizes.
type PhotoSizes []PhotoSize

func (s *PhotoSizes) UnmarshalJSON(data []byte) error {
	var all []PhotoSize
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}
	sizes := slices.DeleteFunc(all, func(p PhotoSize) bool {
		return !p.Type.IsAspectRatioOriginal()
	})
	slices.SortStableFunc(sizes, func(a, b PhotoSize) int {
		return a.Width - b.Width
	})
	*s = sizes
	return nil
}

// BestFor returns the smallest size strictly larger than width x height,
// or the largest size when none is. ok is false when there are no sizes.
func (s PhotoSizes) BestFor(width, height int) (size PhotoSize, ok bool) {
	if len(s) == 0 {
		return PhotoSize{}, false
	}
	for _, p := range s {
		if p.Width > width && p.Height > height {
			return p, true
		}
	}
	return s[len(s)-1], true
}

type Photo struct {
	ID      int64      `json:"id"`
	AlbumID int64      `json:"album_id"`
	OwnerID int64      `json:"owner_id"`
	Text    string     `json:"text"`
	Date    int64      `json:"date"`
	Sizes   PhotoSizes `json:"sizes"`
	Width   *int       `json:"width,omitempty"`
	Height  *int       `json:"height,omitempty"`
}

// Time is the upload time; Date holds seconds since the Unix epoch.
func (p Photo) Time() time.Time {
	return time.Unix(p.Date, 0).UTC()
}
