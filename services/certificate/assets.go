package certificate

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// AssetNames are the file names of the template and fonts inside an AssetStore.
type AssetNames struct {
	Template string
	Regular  string
	Bold     string
	Italic   string
}

func DefaultAssetNames() AssetNames {
	return AssetNames{
		Template: "template.pdf",
		Regular:  "Regular.ttf",
		Bold:     "Bold.ttf",
		Italic:   "Italic.ttf",
	}
}

// Assets holds the raw template and font bytes for one generation.
type Assets struct {
	Template []byte
	Fonts    map[FontWeight][]byte
}

// AssetStore returns the raw bytes of a named template or font file.
type AssetStore interface {
	Fetch(ctx context.Context, name string) ([]byte, error)
}

// LoadAssets reads the template and the three fonts. Any failure is reported
// as TemplateAssetMissing.
func LoadAssets(ctx context.Context, store AssetStore, names AssetNames) (Assets, error) {
	assets := Assets{Fonts: make(map[FontWeight][]byte, 3)}

	files := []struct {
		name string
		dst  func([]byte)
	}{
		{names.Template, func(b []byte) { assets.Template = b }},
		{names.Regular, func(b []byte) { assets.Fonts[FontRegular] = b }},
		{names.Bold, func(b []byte) { assets.Fonts[FontBold] = b }},
		{names.Italic, func(b []byte) { assets.Fonts[FontItalic] = b }},
	}
	for _, f := range files {
		data, err := store.Fetch(ctx, f.name)
		if err == nil && len(data) == 0 {
			err = errors.New("empty file")
		}
		if err != nil {
			return Assets{}, newError(KindTemplateAssetMissing,
				"Certificate template or font is not available!", fmt.Errorf("%s: %w", f.name, err))
		}
		f.dst(data)
	}
	return assets, nil
}

// DirAssetStore reads assets from a local directory.
type DirAssetStore struct {
	Dir string
}

func (s DirAssetStore) Fetch(_ context.Context, name string) ([]byte, error) {
	if name == "" || strings.Contains(name, "..") {
		return nil, fs.ErrInvalid
	}
	return os.ReadFile(filepath.Join(s.Dir, name))
}

// HTTPAssetStore downloads assets from a base URL on every call.
type HTTPAssetStore struct {
	client *resty.Client
}

func NewHTTPAssetStore(baseURL string, timeout time.Duration) *HTTPAssetStore {
	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetRetryCount(0)
	return &HTTPAssetStore{client: client}
}

func (s *HTTPAssetStore) Fetch(ctx context.Context, name string) ([]byte, error) {
	resp, err := s.client.R().
		SetContext(ctx).
		Get("/" + strings.TrimLeft(name, "/"))
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("GET %s: %s", name, resp.Status())
	}
	return resp.Body(), nil
}
