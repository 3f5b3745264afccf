package services

import (
	"strings"

	"agrasar-api/pkg/models"
)

// SchemeCatalog は市民向けに案内するスキームの一覧です。
type SchemeCatalog struct {
	schemes []models.Scheme
}

func NewSchemeCatalog(schemes []models.Scheme) *SchemeCatalog {
	return &SchemeCatalog{schemes: append([]models.Scheme(nil), schemes...)}
}

// All は全スキームを返します。
func (c *SchemeCatalog) All() []models.Scheme {
	return append([]models.Scheme(nil), c.schemes...)
}

// Search は名前・説明・分類のいずれかに query を含むスキームを返します（大文字小文字を区別しない）。
func (c *SchemeCatalog) Search(query string) []models.Scheme {
	query = strings.ToLower(strings.TrimSpace(query))
	out := make([]models.Scheme, 0, len(c.schemes))
	for _, s := range c.schemes {
		if query == "" ||
			strings.Contains(strings.ToLower(s.Name), query) ||
			strings.Contains(strings.ToLower(s.Description), query) ||
			strings.Contains(strings.ToLower(s.Category), query) {
			out = append(out, s)
		}
	}
	return out
}

// Get はIDでスキームを探します。
func (c *SchemeCatalog) Get(id string) (models.Scheme, bool) {
	for _, s := range c.schemes {
		if s.ID == id {
			return s, true
		}
	}
	return models.Scheme{}, false
}
