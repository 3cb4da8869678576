package profile_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aprenmaker/hubauth/core/identity"
	"github.com/aprenmaker/hubauth/core/profile"
)

func TestDeriver_Community(t *testing.T) {
	t.Parallel()

	p := profile.NewDeriver().Derive(identity.Identity{ID: "1", Email: "sam@example.com", Provider: "email"})

	assert.Equal(t, "external_1", p.AccessID)
	assert.Equal(t, "sam", p.DisplayName)
	assert.Equal(t, profile.LevelCommunity, p.Level)
	assert.Equal(t, []string{"view_community", "save_local"}, p.Permissions)
	assert.Equal(t, []string{"computers"}, p.Tools)
	assert.Equal(t, profile.CommunityCapacity, p.CapacityLimit)
	assert.NoError(t, p.Validate())
}

func TestDeriver_EducationalDomain(t *testing.T) {
	t.Parallel()

	p := profile.NewDeriver().Derive(identity.Identity{ID: "2", Name: "Dr. Ruiz", Email: "ruiz@cs.university.example"})

	assert.Equal(t, "Dr. Ruiz", p.DisplayName)
	assert.Equal(t, profile.LevelGenericEducator, p.Level)
	assert.Equal(t, []string{"view_community", "save_local", "create_curriculum", "educational_resources"}, p.Permissions)
	assert.Equal(t, []string{"computers", "arduino", "3d_printer"}, p.Tools)
	assert.Equal(t, profile.EducatorCapacity, p.CapacityLimit)
}

func TestDeriver_OrganizationBeatsGenericEducational(t *testing.T) {
	t.Parallel()

	d := profile.NewDeriver()
	generic := d.Derive(identity.Identity{ID: "3", Email: "ana@some.edu"})
	org := d.Derive(identity.Identity{ID: "3", Email: "ana@educa.madrid.org"})

	assert.Equal(t, profile.LevelSecondary, org.Level)
	assert.Equal(t, "Madrid Education", org.Organization)
	assert.Equal(t, profile.OrganizationCapacity, org.CapacityLimit)
	assert.Subset(t, org.Permissions, generic.Permissions)
	assert.Subset(t, org.Tools, generic.Tools)
	assert.Contains(t, org.Permissions, "eso_content")
}

func TestDeriver_GitHub(t *testing.T) {
	t.Parallel()

	p := profile.NewDeriver().Derive(identity.Identity{ID: "4", Email: "dev@example.com", Provider: "GitHub"})
	assert.Equal(t, profile.LevelCommunity, p.Level)
	assert.Contains(t, p.Permissions, "github_integration")
	assert.Equal(t, "github", p.IdentityProvider)
	assert.True(t, p.External())
}

func TestDeriver_Google(t *testing.T) {
	t.Parallel()

	d := profile.NewDeriver()

	edu := d.Derive(identity.Identity{ID: "5", Email: "t@school.org", Provider: "google"})
	assert.Equal(t, profile.LevelGenericEducator, edu.Level)
	assert.Contains(t, edu.Permissions, "classroom_integration")

	plain := d.Derive(identity.Identity{ID: "6", Email: "t@gmail.com", Provider: "google"})
	assert.Equal(t, profile.LevelCommunity, plain.Level)
	assert.NotContains(t, plain.Permissions, "classroom_integration")

	// An organization level is never lowered by the provider rule.
	org := d.Derive(identity.Identity{ID: "7", Email: "t@edu.gva.es", Provider: "google"})
	assert.Equal(t, profile.LevelSecondary, org.Level)
	assert.Contains(t, org.Permissions, "classroom_integration")
}

func TestDeriver_CustomRules(t *testing.T) {
	t.Parallel()

	d := profile.NewDeriver(
		profile.WithEducationalMarkers("academy"),
		profile.WithDomainRules(profile.DomainRule{
			Match:       "fablab.cat",
			Level:       profile.LevelVocational,
			Permissions: []string{"fp_content"},
			Tools:       []string{"laser_cutter"},
		}),
	)

	p := d.Derive(identity.Identity{ID: "8", Email: "x@fablab.cat"})
	assert.Equal(t, profile.LevelVocational, p.Level)
	assert.Equal(t, "Community Member", p.RoleLabel)
	assert.Contains(t, p.Tools, "laser_cutter")

	school := d.Derive(identity.Identity{ID: "9", Email: "x@school.org"})
	assert.Equal(t, profile.LevelCommunity, school.Level)
}

func TestDeriver_Deterministic(t *testing.T) {
	t.Parallel()

	d := profile.NewDeriver()
	id := identity.Identity{ID: "10", Email: "a@gva.es", Provider: "github"}
	assert.Equal(t, d.Derive(id), d.Derive(id))
}
