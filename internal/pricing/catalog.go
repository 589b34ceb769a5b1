package pricing

import "sort"

// Tier selects base price and base effort for a service.
type Tier string

const (
	TierBasic   Tier = "basic"
	TierPro     Tier = "pro"
	TierPremium Tier = "premium"
)

// Tiers lists every tier in ascending order.
var Tiers = []Tier{TierBasic, TierPro, TierPremium}

// HourlyRate converts per-page cost into per-page effort hours.
const HourlyRate = 20

// Feature is an optional add-on priced on top of the base tier.
type Feature struct {
	Key      string   `json:"key"`
	Price    int      `json:"price"`
	Hours    int      `json:"hours,omitempty"`
	Subtypes []string `json:"subtypes,omitempty"`
}

// AppliesTo reports whether the feature may be sold to the given business subtype.
func (f Feature) AppliesTo(subtype string) bool {
	if len(f.Subtypes) == 0 {
		return true
	}
	for _, s := range f.Subtypes {
		if s == subtype {
			return true
		}
	}
	return false
}

// ServiceDefinition is one catalog entry. PageCost of zero means the service
// is not priced per page.
type ServiceDefinition struct {
	Name      string       `json:"name"`
	BasePrice map[Tier]int `json:"basePrice"`
	BaseHours map[Tier]int `json:"baseHours"`
	PageCost  int          `json:"pageCost,omitempty"`
	Features  []Feature    `json:"features"`

	index map[string]int
}

// HasPageCost reports whether extra pages change the price.
func (d *ServiceDefinition) HasPageCost() bool { return d.PageCost > 0 }

// Feature looks up a feature by key.
func (d *ServiceDefinition) Feature(key string) (Feature, bool) {
	i, ok := d.index[key]
	if !ok {
		return Feature{}, false
	}
	return d.Features[i], true
}

// Catalog is the immutable set of priced services. It is safe for concurrent
// reads and is never mutated after construction.
type Catalog struct {
	services map[string]*ServiceDefinition
}

// NewCatalog indexes the given definitions. Later duplicates replace earlier ones.
func NewCatalog(defs ...ServiceDefinition) *Catalog {
	c := &Catalog{services: make(map[string]*ServiceDefinition, len(defs))}
	for _, def := range defs {
		d := def
		d.index = make(map[string]int, len(d.Features))
		for i, f := range d.Features {
			d.index[f.Key] = i
		}
		c.services[d.Name] = &d
	}
	return c
}

// Service returns the definition for name.
func (c *Catalog) Service(name string) (*ServiceDefinition, bool) {
	d, ok := c.services[name]
	return d, ok
}

// ServiceNames returns the catalog's service names sorted alphabetically.
func (c *Catalog) ServiceNames() []string {
	names := make([]string, 0, len(c.services))
	for name := range c.services {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Services returns copies of every definition, sorted by name.
func (c *Catalog) Services() []ServiceDefinition {
	out := make([]ServiceDefinition, 0, len(c.services))
	for _, name := range c.ServiceNames() {
		d := *c.services[name]
		d.BasePrice = copyTiers(d.BasePrice)
		d.BaseHours = copyTiers(d.BaseHours)
		d.Features = append([]Feature(nil), d.Features...)
		d.index = nil
		out = append(out, d)
	}
	return out
}

// ValidTier reports whether t is one of the known tiers.
func ValidTier(t Tier) bool {
	for _, known := range Tiers {
		if known == t {
			return true
		}
	}
	return false
}

func copyTiers(in map[Tier]int) map[Tier]int {
	out := make(map[Tier]int, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func tiers(basic, pro, premium int) map[Tier]int {
	return map[Tier]int{TierBasic: basic, TierPro: pro, TierPremium: premium}
}

var defaultCatalog = NewCatalog(
	ServiceDefinition{
		Name:      "Web Services",
		BasePrice: tiers(160, 400, 800),
		BaseHours: tiers(8, 20, 40),
		PageCost:  200,
		Features: []Feature{
			{Key: "seo", Price: 50},
			{Key: "schema", Price: 35},
			{Key: "speed", Price: 40},
			{Key: "analytics", Price: 30},
			{Key: "contact_form", Price: 20},
			{Key: "map", Price: 20},
			{Key: "faq", Price: 25},
			{Key: "search", Price: 40},
			{Key: "blog", Price: 40},
			{Key: "gallery", Price: 30},
			{Key: "video_section", Price: 30},
			{Key: "newsletter", Price: 25},
			{Key: "popup", Price: 20},
			{Key: "social", Price: 20},
			{Key: "instagram_feed", Price: 25},
			{Key: "testimonials", Price: 25},
			{Key: "multi_language", Price: 60, Hours: 2},
			{Key: "cms", Price: 60},
			{Key: "protected_pages", Price: 25},
			{Key: "booking", Price: 80, Hours: 4, Subtypes: []string{
				"salon", "spa", "clinic", "gym", "photography", "tailor", "auto", "club", "restaurant",
				"car_rental", "driving_school", "education", "lawyer", "trainer", "hotel",
			}},
			{Key: "order_online", Price: 120, Hours: 6, Subtypes: []string{
				"bakery", "cafe", "restaurant", "florist", "grocery", "pharmacy", "printshop", "foodtruck", "butcher",
			}},
			{Key: "product_catalog", Price: 60, Subtypes: []string{
				"retail", "florist", "furniture", "bookstore", "mobile", "pet", "hardware", "optic", "kids",
				"grocery", "car_rental", "printshop",
			}},
			{Key: "cart", Price: 120, Hours: 6, Subtypes: []string{
				"retail", "bakery", "florist", "bookstore", "mobile", "kids", "grocery", "printshop", "butcher",
			}},
			{Key: "gdpr", Price: 35},
			{Key: "accessibility", Price: 40},
			{Key: "security", Price: 35},
			{Key: "backup", Price: 20},
		},
	},
	ServiceDefinition{
		Name:      "ERP Systems",
		BasePrice: tiers(500, 1000, 1800),
		BaseHours: tiers(25, 50, 90),
		Features: []Feature{
			{Key: "pos", Price: 100, Hours: 6, Subtypes: []string{
				"retail", "bakery", "cafe", "restaurant", "florist", "bookstore", "mobile", "hardware", "kids",
				"furniture", "pharmacy", "butcher",
			}},
			{Key: "appointments", Price: 70, Subtypes: []string{"salon", "spa", "clinic", "gym", "tailor", "club"}},
			{Key: "inventory", Price: 80},
			{Key: "crm", Price: 50},
			{Key: "sales_reports", Price: 60},
			{Key: "staff", Price: 60},
			{Key: "project_mgmt", Price: 70, Hours: 6},
		},
	},
	ServiceDefinition{
		Name:      "Mobile Applications",
		BasePrice: tiers(600, 1000, 1800),
		BaseHours: tiers(30, 50, 90),
		Features: []Feature{
			{Key: "push", Price: 50},
			{Key: "auth", Price: 60},
			{Key: "sms_verification", Price: 50},
			{Key: "analytics", Price: 40},
			{Key: "payments", Price: 100, Hours: 5, Subtypes: []string{
				"shop_app", "booking_app", "delivery_app", "event_app", "restaurant_app", "fitness_app", "kids_app",
				"photo_app", "taxi_app", "news_app", "inventory_app", "finance_app", "volunteer_app", "custom",
			}},
			{Key: "chat", Price: 80, Hours: 4, Subtypes: []string{
				"community_app", "event_app", "fitness_app", "photo_app", "volunteer_app", "custom",
			}},
			{Key: "gps_tracking", Price: 70, Hours: 5, Subtypes: []string{"delivery_app", "taxi_app", "fitness_app", "custom"}},
		},
	},
	ServiceDefinition{
		Name:      "E-Commerce",
		BasePrice: tiers(800, 1400, 2400),
		BaseHours: tiers(40, 70, 120),
		Features: []Feature{
			{Key: "seo", Price: 50},
			{Key: "analytics", Price: 40},
			{Key: "product_filters", Price: 50},
			{Key: "reviews", Price: 40},
			{Key: "wishlist", Price: 35},
			{Key: "subscription", Price: 70, Hours: 4},
			{Key: "multi_vendor", Price: 120, Hours: 6, Subtypes: []string{"marketplace"}},
		},
	},
	ServiceDefinition{
		Name:      "Custom Software",
		BasePrice: tiers(400, 900, 1600),
		BaseHours: tiers(20, 45, 80),
		Features: []Feature{
			{Key: "auth", Price: 120},
			{Key: "docs", Price: 100},
			{Key: "integration_feature", Price: 100, Hours: 6, Subtypes: []string{"integration", "api", "saas", "erp"}},
			{Key: "custom_ui", Price: 120, Hours: 4},
		},
	},
	ServiceDefinition{
		Name:      "SaaS Application",
		BasePrice: tiers(400, 900, 1600),
		BaseHours: tiers(20, 45, 80),
		Features: []Feature{
			{Key: "billing", Price: 90, Hours: 4},
			{Key: "sso", Price: 65, Hours: 4},
			{Key: "audit_log", Price: 40},
			{Key: "custom_dashboard", Price: 50},
		},
	},
)

// DefaultCatalog returns the compiled-in catalog shared by the whole process.
func DefaultCatalog() *Catalog { return defaultCatalog }
