// Package pricing holds the pricing configuration documents and computes
// itemized invoices for decoded order codes.
package pricing

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultFreeMinutes is the overtime allowance when neither the package nor
// the document sets one.
const DefaultFreeMinutes = 5

// PackageID accepts either a JSON number or a JSON string and keeps the
// canonical text used for matching (2, 2.0 and "2" all become "2").
type PackageID string

func (id *PackageID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = PackageID(s)
		return nil
	}
	f, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("invalid package id %s: %w", data, err)
	}
	*id = PackageID(strconv.FormatFloat(f, 'f', -1, 64))
	return nil
}

func (id PackageID) String() string { return string(id) }

// DeadlineTier applies to deadlines up to MaxDays days.
type DeadlineTier struct {
	MaxDays decimal.Decimal `json:"max_days"`
	Amount  decimal.Decimal `json:"amount"`
	Percent decimal.Decimal `json:"percent"`
}

type Package struct {
	ID                   PackageID        `json:"id"`
	Name                 string           `json:"name"`
	Price                decimal.Decimal  `json:"price"`
	OvertimeRate         decimal.Decimal  `json:"overtime_rate"`
	FreeMinutes          *decimal.Decimal `json:"free_minutes,omitempty"`
	DeadlineTiers        []DeadlineTier   `json:"deadline_tiers,omitempty"`
	BufferFee            *decimal.Decimal `json:"buffer_fee,omitempty"`
	IncludedRevisions    *decimal.Decimal `json:"included_revisions,omitempty"`
	Revisions            *decimal.Decimal `json:"revisions,omitempty"`
	ExtraRevisionPercent decimal.Decimal  `json:"extra_revision_percent"`
}

// Included is the number of free revisions: included_revisions, else
// revisions, else 0.
func (p Package) Included() decimal.Decimal {
	switch {
	case p.IncludedRevisions != nil:
		return *p.IncludedRevisions
	case p.Revisions != nil:
		return *p.Revisions
	}
	return decimal.Zero
}

// Prices is the packages/contact document.
type Prices struct {
	Packages             []Package        `json:"packages"`
	FreeMinutes          *decimal.Decimal `json:"free_minutes,omitempty"`
	DeadlineTiers        []DeadlineTier   `json:"deadline_tiers,omitempty"`
	BufferFee            decimal.Decimal  `json:"buffer_fee"`
	WhatsApp             string           `json:"whatsapp"`
	BackupRequestMessage string           `json:"backup_request_message"`
}

// FindPackage looks a package up by its canonical id text.
func (p *Prices) FindPackage(id string) (Package, bool) {
	if p == nil {
		return Package{}, false
	}
	for _, pkg := range p.Packages {
		if pkg.ID.String() == id {
			return pkg, true
		}
	}
	return Package{}, false
}

// Promo discounts package base prices. An empty PackageIDs list applies the
// promo to every package.
type Promo struct {
	Enabled         bool            `json:"enabled"`
	Name            string          `json:"name,omitempty"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	DiscountAmount  decimal.Decimal `json:"discount_amount"`
	PackageIDs      []PackageID     `json:"package_ids,omitempty"`
}

func (p *Promo) appliesTo(id PackageID) bool {
	if p == nil || !p.Enabled {
		return false
	}
	if len(p.PackageIDs) == 0 {
		return true
	}
	for _, candidate := range p.PackageIDs {
		if strings.TrimSpace(candidate.String()) == id.String() {
			return true
		}
	}
	return false
}
