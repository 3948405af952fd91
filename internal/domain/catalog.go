package domain

// CatalogEntry est une catégorie Xtream ou un groupe M3U sélectionnable.
// Pour un groupe M3U, ID et Name valent tous deux le group-title.
type CatalogEntry struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	ItemCount int         `json:"itemCount"`
	Selected  bool        `json:"selected"`
	Type      ContentType `json:"type"`
}

// CatalogKind indique comment filtrer une liste (les catégories exposent un id brut).
type CatalogKind string

const (
	KindCategory CatalogKind = "category"
	KindGroup    CatalogKind = "group"
)

func (p Provider) CatalogKind() CatalogKind {
	if p == ProviderM3U {
		return KindGroup
	}
	return KindCategory
}
