package profile

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// Registry maps access codes to profiles. It is immutable after construction
// and lookups ignore case.
type Registry struct {
	byCode map[string]Profile
}

// NewRegistry builds a registry keyed by each profile's AccessID.
// Codes that collide case-insensitively are rejected.
func NewRegistry(profiles ...Profile) (*Registry, error) {
	r := &Registry{byCode: make(map[string]Profile, len(profiles))}
	for _, p := range profiles {
		if err := p.Validate(); err != nil {
			return nil, err
		}
		key := strings.ToLower(p.AccessID)
		if _, exists := r.byCode[key]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateCode, p.AccessID)
		}
		r.byCode[key] = p.Clone()
	}
	return r, nil
}

// Lookup returns a copy of the profile for code.
func (r *Registry) Lookup(code string) (Profile, bool) {
	if r == nil {
		return Profile{}, false
	}
	p, ok := r.byCode[strings.ToLower(strings.TrimSpace(code))]
	if !ok {
		return Profile{}, false
	}
	return p.Clone(), true
}

// Codes returns all registered codes in sorted order.
func (r *Registry) Codes() []string {
	codes := make([]string, 0, len(r.byCode))
	for k := range r.byCode {
		codes = append(codes, k)
	}
	slices.Sort(codes)
	return codes
}

// Len returns the number of registered profiles.
func (r *Registry) Len() int { return len(r.byCode) }

// registryFile is the YAML layout read by LoadRegistry.
type registryFile struct {
	Profiles []Profile `yaml:"profiles"`
}

// LoadRegistry reads a YAML document of the form
//
//	profiles:
//	  - access_id: valencia_eso_2025
//	    display_name: ESO Technology Teacher
//	    level: secondary
//	    permissions: [create_curriculum, save_local]
//	    tools: [arduino, computers]
func LoadRegistry(r io.Reader) (*Registry, error) {
	var doc registryFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("profile: decode registry: %w", err)
	}
	for i := range doc.Profiles {
		// An omitted list means "nothing granted", not a broken profile.
		if doc.Profiles[i].Permissions == nil {
			doc.Profiles[i].Permissions = []string{}
		}
		if doc.Profiles[i].Tools == nil {
			doc.Profiles[i].Tools = []string{}
		}
	}
	return NewRegistry(doc.Profiles...)
}

// WriteRegistry encodes r in the LoadRegistry format.
func WriteRegistry(w io.Writer, r *Registry) error {
	doc := registryFile{Profiles: make([]Profile, 0, r.Len())}
	for _, code := range r.Codes() {
		doc.Profiles = append(doc.Profiles, r.byCode[code])
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("profile: encode registry: %w", err)
	}
	return enc.Close()
}

// DefaultRegistry returns the built-in access codes.
func DefaultRegistry() *Registry {
	r, err := NewRegistry(defaultProfiles()...)
	if err != nil {
		panic(err)
	}
	return r
}

func defaultProfiles() []Profile {
	return []Profile{
		{
			AccessID:               "valencia_eso_2025",
			DisplayName:            "ESO Technology Teacher",
			RoleLabel:              "ESO Educator",
			Organization:           "Valencia Region",
			Level:                  LevelSecondary,
			Permissions:            []string{"create_curriculum", "save_local", "view_community", "eso_content"},
			Tools:                  []string{"arduino", "3d_printer", "computers", "basic_sensors", "hand_tools"},
			CapacityLimit:          25,
			SessionDurationMinutes: 50,
		},
		{
			AccessID:               "madrid_eso_2025",
			DisplayName:            "Madrid ESO Instructor",
			RoleLabel:              "ESO Technology Teacher",
			Organization:           "Madrid Education",
			Level:                  LevelSecondary,
			Permissions:            []string{"create_curriculum", "save_local", "view_community", "eso_content"},
			Tools:                  []string{"arduino", "computers", "basic_sensors", "multimeter"},
			CapacityLimit:          30,
			SessionDurationMinutes: 50,
		},
		{
			AccessID:               "fp_digital_2025",
			DisplayName:            "FP Digital Fabrication Instructor",
			RoleLabel:              "FP Technology Teacher",
			Organization:           "FP Fabrication Center",
			Level:                  LevelVocational,
			Permissions:            []string{"create_curriculum", "save_local", "view_community", "advanced_tools", "fp_content"},
			Tools:                  []string{"laser_cutter", "3d_printer", "cnc", "arduino", "advanced_electronics", "soldering_station"},
			CapacityLimit:          15,
			SessionDurationMinutes: 120,
		},
		{
			AccessID:               "fp_design_2025",
			DisplayName:            "FP Product Design Teacher",
			RoleLabel:              "Design Technology Instructor",
			Organization:           "FP Design Institute",
			Level:                  LevelVocational,
			Permissions:            []string{"create_curriculum", "save_local", "view_community", "design_tools", "fp_content"},
			Tools:                  []string{"laser_cutter", "3d_printer", "computers", "design_software"},
			CapacityLimit:          12,
			SessionDurationMinutes: 180,
		},
		{
			AccessID:      "admin_hub_2025",
			DisplayName:   "Platform Administrator",
			RoleLabel:     "System Administrator",
			Organization:  "AprenMaker Hub",
			Level:         LevelAdministrator,
			Permissions:   []string{Wildcard},
			Tools:         []string{Wildcard},
			CapacityLimit: 0,
		},
		{
			AccessID:               "demo_teacher",
			DisplayName:            "Demo Teacher Account",
			RoleLabel:              "Demo User",
			Organization:           "Demo School",
			Level:                  LevelDemo,
			Permissions:            []string{"create_curriculum", "view_community"},
			Tools:                  []string{"arduino", "3d_printer", "computers"},
			CapacityLimit:          20,
			SessionDurationMinutes: 60,
		},
	}
}
