package certificate

import (
	"fmt"
	"log"

	"certdesk/config"

	"gorm.io/gorm"
)

// NewFromConfig builds the Service described by cfg: the layout file is
// loaded and validated, and assets come from ASSETS_BASE_URL when set or
// from ASSETS_DIR otherwise.
func NewFromConfig(db *gorm.DB, cfg *config.Config) (*Service, error) {
	layout, err := LoadLayout(cfg.LayoutFile)
	if err != nil {
		return nil, err
	}

	var assets AssetStore = DirAssetStore{Dir: cfg.AssetsDir}
	if cfg.AssetsBaseURL != "" {
		assets = NewHTTPAssetStore(cfg.AssetsBaseURL, cfg.AssetHTTPTimeout)
		log.Printf("[CERTIFICATE] Loading template and fonts from %s", cfg.AssetsBaseURL)
	} else {
		log.Printf("[CERTIFICATE] Loading template and fonts from %s", cfg.AssetsDir)
	}

	svc, err := NewService(db, assets, LocalFileStore{Dir: cfg.OutputDir, PublicPath: cfg.PublicPath}, Options{
		PublicBaseURL: cfg.PublicBaseURL,
		CourseLabel:   cfg.CourseLabel,
		Layout:        layout,
		AssetNames: AssetNames{
			Template: cfg.TemplateFile,
			Regular:  cfg.FontRegular,
			Bold:     cfg.FontBold,
			Italic:   cfg.FontItalic,
		},
		BatchConcurrency: cfg.BatchConcurrency,
	})
	if err != nil {
		return nil, fmt.Errorf("certificate service: %w", err)
	}
	return svc, nil
}
