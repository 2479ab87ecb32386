package model

import (
	"time"

	"github.com/verdicttrace/verdicttrace/pkg/domain/types"
)

// Complaint is a product-complaint record held by the search collaborator.
// The core reads complaints only as aggregation input and exemplar evidence;
// it never mutates them.
type Complaint struct {
	ID              types.ComplaintID `json:"id"`
	ProductSKU      string            `json:"productSku"`
	ProductName     string            `json:"productName"`
	Title           string            `json:"title"`
	Summary         string            `json:"summary"`
	FailureMode     string            `json:"failureMode"`
	InjuryMentioned bool              `json:"injuryMentioned"`
	Location        string            `json:"location"`
	GeoRegion       string            `json:"geoRegion"`
	CreatedAt       time.Time         `json:"createdAt"`
}

// Excerpt returns the complaint fields used as exemplar evidence in
// narrative prompts
func (c *Complaint) Excerpt() ComplaintExcerpt {
	return ComplaintExcerpt{
		Title:           c.Title,
		Summary:         c.Summary,
		Location:        c.Location,
		InjuryMentioned: c.InjuryMentioned,
	}
}

// ComplaintExcerpt is the reduced complaint view handed to the narrative
// generator
type ComplaintExcerpt struct {
	Title           string `json:"title"`
	Summary         string `json:"summary"`
	Location        string `json:"location"`
	InjuryMentioned bool   `json:"injury"`
}
