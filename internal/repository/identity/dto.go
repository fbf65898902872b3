package identity

import (
	"encoding/json"
	"fmt"

	"github.com/facegate/facegate/internal/domain"
)

// doc is the RedisJSON representation of an identity record.
type doc struct {
	ID         string  `json:"id"`
	FullName   string  `json:"full_name"`
	Phone      string  `json:"phone,omitempty"`
	Email      string  `json:"email,omitempty"`
	Employer   string  `json:"employer,omitempty"`
	Position   string  `json:"position,omitempty"`
	Reputation float64 `json:"reputation"`
	Notes      string  `json:"notes,omitempty"`
	ImageRef   string  `json:"image_ref"`
	CreatedAt  int64   `json:"created_at"`
	UpdatedAt  int64   `json:"updated_at"`
}

func toDoc(ident domain.Identity) doc {
	return doc{
		ID:         ident.ID(),
		FullName:   ident.FullName(),
		Phone:      ident.Phone(),
		Email:      ident.Email(),
		Employer:   ident.Employer(),
		Position:   ident.Position(),
		Reputation: ident.Reputation(),
		Notes:      ident.Notes(),
		ImageRef:   ident.ImageRef(),
		CreatedAt:  ident.CreatedAt(),
		UpdatedAt:  ident.UpdatedAt(),
	}
}

func fromDoc(d doc) domain.Identity {
	return domain.ReconstructIdentity(d.ID, domain.Attributes{
		FullName:   d.FullName,
		Phone:      d.Phone,
		Email:      d.Email,
		Employer:   d.Employer,
		Position:   d.Position,
		Reputation: d.Reputation,
		Notes:      d.Notes,
		ImageRef:   d.ImageRef,
	}, d.CreatedAt, d.UpdatedAt)
}

// parseJSONGetResult decodes a JSON.GET $ response, which wraps the
// document in a one-element array.
func parseJSONGetResult(raw []byte) (domain.Identity, error) {
	var docs []doc
	if err := json.Unmarshal(raw, &docs); err != nil {
		return domain.Identity{}, fmt.Errorf("unmarshal identity: %w", err)
	}
	if len(docs) == 0 {
		return domain.Identity{}, domain.ErrRecordNotFound
	}
	return fromDoc(docs[0]), nil
}

// parseSearchDoc decodes the root document from an FT.SEARCH entry on
// a JSON index. Unlike JSON.GET $, the "$" field is a plain object.
func parseSearchDoc(raw string) (domain.Identity, error) {
	var d doc
	if err := json.Unmarshal([]byte(raw), &d); err != nil {
		return domain.Identity{}, fmt.Errorf("unmarshal identity: %w", err)
	}
	return fromDoc(d), nil
}
