package profile_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aprenmaker/hubauth/core/profile"
)

func TestProfile_Validate(t *testing.T) {
	t.Parallel()

	valid := profile.Profile{
		AccessID:    "code",
		Level:       profile.LevelDemo,
		Permissions: []string{},
		Tools:       []string{},
	}
	require.NoError(t, valid.Validate())

	tests := map[string]func(p *profile.Profile){
		"empty access id":   func(p *profile.Profile) { p.AccessID = "" },
		"unknown level":     func(p *profile.Profile) { p.Level = "wizard" },
		"nil permissions":   func(p *profile.Profile) { p.Permissions = nil },
		"nil tools":         func(p *profile.Profile) { p.Tools = nil },
		"negative capacity": func(p *profile.Profile) { p.CapacityLimit = -1 },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			p := valid.Clone()
			mutate(&p)
			assert.ErrorIs(t, p.Validate(), profile.ErrInvalidProfile)
		})
	}
}

func TestProfile_UnknownLevelError(t *testing.T) {
	t.Parallel()

	p := profile.Profile{AccessID: "x", Level: "eso", Permissions: []string{}, Tools: []string{}}
	assert.ErrorIs(t, p.Validate(), profile.ErrUnknownLevel)

	_, err := profile.ParseLevel("fp")
	assert.ErrorIs(t, err, profile.ErrUnknownLevel)

	lvl, err := profile.ParseLevel("vocational")
	require.NoError(t, err)
	assert.Equal(t, profile.LevelVocational, lvl)
}

func TestProfile_WildcardCapability(t *testing.T) {
	t.Parallel()

	admin := profile.Profile{Permissions: []string{profile.Wildcard}}
	for _, token := range []string{"create_curriculum", "never_enumerated_token", ""} {
		assert.True(t, admin.Can(token), token)
	}

	demo := profile.Profile{Permissions: []string{"view_community"}}
	assert.True(t, demo.Can("view_community"))
	assert.False(t, demo.Can("create_curriculum"))
}

func TestProfile_AvailableTools(t *testing.T) {
	t.Parallel()

	all := profile.Profile{Tools: []string{profile.Wildcard}}
	assert.Equal(t, profile.ToolCatalog, all.AvailableTools())
	assert.NotContains(t, all.AvailableTools(), profile.Wildcard)

	some := profile.Profile{Tools: []string{"arduino", "cnc"}}
	tools := some.AvailableTools()
	assert.Equal(t, []string{"arduino", "cnc"}, tools)

	tools[0] = "mutated"
	assert.Equal(t, "arduino", some.Tools[0])
}

func TestRestrictionsFor(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "basic", profile.RestrictionsFor(profile.LevelSecondary).Complexity)
	assert.Equal(t, "independent", profile.RestrictionsFor(profile.LevelVocational).SafetyLevel)
	assert.Equal(t, []string{profile.Wildcard}, profile.RestrictionsFor(profile.LevelAdministrator).Methodologies)
	assert.Equal(t, profile.RestrictionsFor(profile.LevelDemo), profile.RestrictionsFor(profile.LevelCommunity))
}
