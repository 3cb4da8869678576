package profile

import (
	"slices"
	"strings"

	"github.com/aprenmaker/hubauth/core/identity"
)

// Capacity limits assigned to derived profiles.
const (
	CommunityCapacity    = 10
	EducatorCapacity     = 25
	OrganizationCapacity = 30
)

// ExternalPrefix prefixes the access id of profiles derived from an external identity.
const ExternalPrefix = "external_"

// DomainRule grants an organization level to emails whose domain contains Match.
type DomainRule struct {
	Match        string   `json:"match" yaml:"match"`
	Level        Level    `json:"level" yaml:"level"`
	Organization string   `json:"organization" yaml:"organization"`
	RoleLabel    string   `json:"role_label" yaml:"role_label"`
	Permissions  []string `json:"permissions" yaml:"permissions"`
	Tools        []string `json:"tools" yaml:"tools"`
}

// DefaultDomainRules are the organization domains recognized out of the box.
func DefaultDomainRules() []DomainRule {
	return []DomainRule{
		{
			Match:        "gva.es",
			Level:        LevelSecondary,
			Organization: "Valencia Region",
			RoleLabel:    "ESO Educator",
			Permissions:  []string{"eso_content", "regional_resources"},
			Tools:        []string{"computers", "sensors"},
		},
		{
			Match:        "educa.madrid.org",
			Level:        LevelSecondary,
			Organization: "Madrid Education",
			RoleLabel:    "ESO Technology Teacher",
			Permissions:  []string{"eso_content", "regional_resources"},
			Tools:        []string{"computers", "multimeter"},
		},
	}
}

// DefaultEducationalMarkers are the domain substrings that mark an educational email.
var DefaultEducationalMarkers = []string{"edu", "school", "university", "college"}

// Deriver builds profiles for external identities.
//
// Rules run in a fixed order and only ever add permissions and tools:
// community baseline, educational domain, organization domain, then
// provider-specific grants.
type Deriver struct {
	rules   []DomainRule
	markers []string
}

// DeriverOption configures a Deriver.
type DeriverOption func(*Deriver)

// WithDomainRules replaces the organization rules. The first matching rule wins.
func WithDomainRules(rules ...DomainRule) DeriverOption {
	return func(d *Deriver) { d.rules = rules }
}

// WithEducationalMarkers replaces the educational domain markers.
func WithEducationalMarkers(markers ...string) DeriverOption {
	return func(d *Deriver) { d.markers = markers }
}

// NewDeriver returns a Deriver with the default rules unless overridden.
func NewDeriver(opts ...DeriverOption) *Deriver {
	d := &Deriver{
		rules:   DefaultDomainRules(),
		markers: DefaultEducationalMarkers,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Derive builds the profile for id. The result is deterministic for a given
// identity and rule set.
func (d *Deriver) Derive(id identity.Identity) Profile {
	domain := id.Domain()
	provider := strings.ToLower(id.Provider)

	p := Profile{
		AccessID:         ExternalPrefix + id.ID,
		DisplayName:      displayName(id),
		RoleLabel:        "Community Member",
		Organization:     "AprenMaker Community",
		Level:            LevelCommunity,
		Permissions:      []string{"view_community", "save_local"},
		Tools:            []string{"computers"},
		CapacityLimit:    CommunityCapacity,
		AvatarURL:        id.AvatarURL,
		Email:            id.Email,
		IdentityProvider: provider,
	}

	educational := d.educational(domain)
	if educational {
		p.Level = LevelGenericEducator
		p.RoleLabel = "Educator"
		p.Organization = domain
		p.CapacityLimit = EducatorCapacity
		p.Permissions = add(p.Permissions, "create_curriculum", "educational_resources")
		p.Tools = add(p.Tools, "arduino", "3d_printer")
	}

	if rule, ok := d.match(domain); ok {
		p.Level = rule.Level
		if rule.RoleLabel != "" {
			p.RoleLabel = rule.RoleLabel
		}
		if rule.Organization != "" {
			p.Organization = rule.Organization
		}
		p.CapacityLimit = OrganizationCapacity
		p.Permissions = add(p.Permissions, rule.Permissions...)
		p.Tools = add(p.Tools, rule.Tools...)
	}

	switch provider {
	case "github":
		p.Permissions = add(p.Permissions, "github_integration")
	case "google":
		if educational {
			if p.Level == LevelCommunity {
				p.Level = LevelGenericEducator
				p.RoleLabel = "Educator"
				p.CapacityLimit = EducatorCapacity
			}
			p.Permissions = add(p.Permissions, "classroom_integration")
		}
	}

	return p
}

func (d *Deriver) educational(domain string) bool {
	if domain == "" {
		return false
	}
	for _, m := range d.markers {
		if m != "" && strings.Contains(domain, m) {
			return true
		}
	}
	return false
}

func (d *Deriver) match(domain string) (DomainRule, bool) {
	if domain == "" {
		return DomainRule{}, false
	}
	for _, r := range d.rules {
		if r.Match != "" && strings.Contains(domain, strings.ToLower(r.Match)) {
			return r, true
		}
	}
	return DomainRule{}, false
}

func displayName(id identity.Identity) string {
	if name := strings.TrimSpace(id.Name); name != "" {
		return name
	}
	if local := id.LocalPart(); local != "" {
		return local
	}
	return "Educator"
}

// add appends tokens not already present, keeping order.
func add(set []string, tokens ...string) []string {
	for _, t := range tokens {
		if !slices.Contains(set, t) {
			set = append(set, t)
		}
	}
	return set
}
