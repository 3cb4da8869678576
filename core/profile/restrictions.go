package profile

// Restrictions describe what kind of projects a level may plan.
type Restrictions struct {
	Complexity      string   `json:"complexity"`
	ProjectDuration string   `json:"project_duration"`
	Methodologies   []string `json:"methodologies"`
	SafetyLevel     string   `json:"safety_level"`
}

var restrictionsByLevel = map[Level]Restrictions{
	LevelSecondary: {
		Complexity:      "basic",
		ProjectDuration: "short",
		Methodologies:   []string{"project_based", "collaborative", "hands_on"},
		SafetyLevel:     "supervised",
	},
	LevelVocational: {
		Complexity:      "advanced",
		ProjectDuration: "extended",
		Methodologies:   []string{"design_thinking", "project_based", "inquiry_based", "industry_simulation"},
		SafetyLevel:     "independent",
	},
	LevelAdministrator: {
		Complexity:      Wildcard,
		ProjectDuration: Wildcard,
		Methodologies:   []string{Wildcard},
		SafetyLevel:     Wildcard,
	},
	LevelDemo: {
		Complexity:      "basic",
		ProjectDuration: "short",
		Methodologies:   []string{"project_based", "collaborative"},
		SafetyLevel:     "supervised",
	},
}

// RestrictionsFor returns the restrictions of level. Levels without their
// own entry get the demo restrictions.
func RestrictionsFor(level Level) Restrictions {
	r, ok := restrictionsByLevel[level]
	if !ok {
		r = restrictionsByLevel[LevelDemo]
	}
	r.Methodologies = append([]string(nil), r.Methodologies...)
	return r
}
