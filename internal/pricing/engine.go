// Package pricing computes quote prices and effort estimates from the
// compiled-in service catalog.
package pricing

import (
	"fmt"
	"strings"

	"github.com/hongminglow/itarix-api/internal/apperr"
)

var (
	// ErrInvalidService is returned for a service name missing from the catalog.
	ErrInvalidService = apperr.New(apperr.Validation, "invalid service")
	// ErrInvalidTier is returned for a tier the service does not price.
	ErrInvalidTier = apperr.New(apperr.Validation, "invalid tier")
	// ErrSubtypeRequired is returned when a request names no business subtype.
	ErrSubtypeRequired = apperr.New(apperr.Validation, "type is required")
)

// Engine prices requests against a catalog. It holds no mutable state.
type Engine struct {
	catalog *Catalog
}

// NewEngine returns an engine reading from catalog.
func NewEngine(catalog *Catalog) *Engine {
	return &Engine{catalog: catalog}
}

// Catalog exposes the catalog the engine prices against.
func (e *Engine) Catalog() *Catalog { return e.catalog }

// FilterFeatures keeps the requested keys the service sells to subtype, in
// request order. Unknown keys and repeated keys are dropped.
func (e *Engine) FilterFeatures(service, subtype string, requested []string) []string {
	def, ok := e.catalog.Service(service)
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(requested))
	seen := make(map[string]struct{}, len(requested))
	for _, key := range requested {
		f, ok := def.Feature(key)
		if !ok || !f.AppliesTo(subtype) {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, key)
	}
	return out
}

// ComputePrice returns base[tier] plus per-page cost from the second page on
// plus every applicable feature, floored at zero.
func (e *Engine) ComputePrice(service string, tier Tier, subtype string, pages int, features []string) (int, error) {
	def, ok := e.catalog.Service(service)
	if !ok {
		return 0, apperr.Wrap(apperr.Validation, ErrInvalidService.Message, fmt.Errorf("service %q", service))
	}
	total, ok := def.BasePrice[tier]
	if !ok {
		return 0, apperr.Wrap(apperr.Validation, ErrInvalidTier.Message, fmt.Errorf("tier %q", tier))
	}
	if def.HasPageCost() {
		total += extraPages(pages) * def.PageCost
	}
	for _, key := range distinct(features) {
		f, ok := def.Feature(key)
		if !ok || !f.AppliesTo(subtype) {
			continue
		}
		total += f.Price
	}
	return max(0, total), nil
}

// ComputeHours estimates effort. It is advisory, so an unknown service or
// tier contributes zero instead of failing.
func (e *Engine) ComputeHours(service string, tier Tier, pages int, features []string) int {
	def, ok := e.catalog.Service(service)
	if !ok {
		return 0
	}
	hours := def.BaseHours[tier]
	if def.HasPageCost() {
		hours += extraPages(pages) * (def.PageCost / HourlyRate)
	}
	for _, key := range distinct(features) {
		if f, ok := def.Feature(key); ok {
			hours += f.Hours
		}
	}
	return max(0, hours)
}

// Request is a client-supplied pricing question.
type Request struct {
	Service  string
	Tier     Tier
	Subtype  string
	Pages    int
	Features []string
}

// Estimate is the priced answer to a Request.
type Estimate struct {
	Service  string   `json:"service"`
	Tier     Tier     `json:"tier"`
	Subtype  string   `json:"type"`
	Pages    int      `json:"pages"`
	Features []string `json:"features"`
	Price    int      `json:"priceNumber"`
	Hours    int      `json:"estimatedHours"`
}

// Estimate validates req against the catalog, filters its features and
// computes price and hours from the same filtered set. Services without a
// per-page cost are always quoted for a single page.
func (e *Engine) Estimate(req Request) (Estimate, error) {
	def, ok := e.catalog.Service(req.Service)
	if !ok {
		return Estimate{}, ErrInvalidService
	}
	if !ValidTier(req.Tier) {
		return Estimate{}, ErrInvalidTier
	}
	subtype := strings.TrimSpace(req.Subtype)
	if subtype == "" {
		return Estimate{}, ErrSubtypeRequired
	}

	pages := 1
	if def.HasPageCost() {
		pages = max(1, req.Pages)
	}

	features := e.FilterFeatures(req.Service, subtype, req.Features)
	price, err := e.ComputePrice(req.Service, req.Tier, subtype, pages, features)
	if err != nil {
		return Estimate{}, err
	}
	return Estimate{
		Service:  req.Service,
		Tier:     req.Tier,
		Subtype:  subtype,
		Pages:    pages,
		Features: features,
		Price:    price,
		Hours:    e.ComputeHours(req.Service, req.Tier, pages, features),
	}, nil
}

func extraPages(pages int) int {
	return max(0, pages-1)
}

func distinct(keys []string) []string {
	if len(keys) < 2 {
		return keys
	}
	seen := make(map[string]struct{}, len(keys))
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}
