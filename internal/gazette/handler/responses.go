package handler

import (
	"gazette/internal/gazette/models"
)

// FamilyResponse is the wire shape for an identity family. Records carry
// their own JSON tags; the wrapper adds the key so clients do not have to
// dig it out of the master row.
type FamilyResponse struct {
	LinkageKey string                  `json:"linkage_key"`
	Master     *models.GazetteRecord   `json:"master"`
	Variants   []*models.GazetteRecord `json:"variants"`
}

// FromFamily converts a domain family into its response shape.
func FromFamily(f *models.IdentityFamily) FamilyResponse {
	return FamilyResponse{
		LinkageKey: f.LinkageKey().String(),
		Master:     f.Master,
		Variants:   f.Variants,
	}
}
