package domain

// SkillType separates technical from soft skills.
type SkillType string

const (
	SkillTechnical SkillType = "technical"
	SkillSoft      SkillType = "soft"
)

// ValidSkillTypes is the closed set of skill types.
var ValidSkillTypes = map[SkillType]bool{
	SkillTechnical: true,
	SkillSoft:      true,
}

// Proficiency is the self-assessed level of a skill.
type Proficiency string

const (
	ProficiencyBeginner     Proficiency = "beginner"
	ProficiencyIntermediate Proficiency = "intermediate"
	ProficiencyAdvanced     Proficiency = "advanced"
	ProficiencyExpert       Proficiency = "expert"
)

// ValidProficiencies is the closed set of proficiency levels.
var ValidProficiencies = map[Proficiency]bool{
	ProficiencyBeginner:     true,
	ProficiencyIntermediate: true,
	ProficiencyAdvanced:     true,
	ProficiencyExpert:       true,
}

// MaxSkillNameLength bounds Skill.Name.
const MaxSkillNameLength = 50

// Skill is an entry of the skills section.
type Skill struct {
	ID          string      `json:"_id"`
	Name        string      `json:"name"`
	Type        SkillType   `json:"type"`
	Proficiency Proficiency `json:"proficiency"`

	// Icon is a symbolic name resolved through the icon table (optional).
	Icon string `json:"icon"`
}

// Key implements Entity.
func (s Skill) Key() string { return s.ID }

// SkillDraft is the editable part of a Skill.
type SkillDraft struct {
	Name        string      `json:"name"`
	Type        SkillType   `json:"type"`
	Proficiency Proficiency `json:"proficiency"`
	Icon        string      `json:"icon"`
}

// SkillDraftFrom seeds a draft from an existing skill.
func SkillDraftFrom(s Skill) SkillDraft {
	return SkillDraft{
		Name:        s.Name,
		Type:        s.Type,
		Proficiency: s.Proficiency,
		Icon:        s.Icon,
	}
}

// Apply returns a copy of s carrying the draft's field values.
func (d SkillDraft) Apply(s Skill) Skill {
	s.Name = d.Name
	s.Type = d.Type
	s.Proficiency = d.Proficiency
	s.Icon = d.Icon
	return s
}

// SkillTypeFilter restricts a skill listing; "all" disables it.
type SkillTypeFilter string

const SkillFilterAll SkillTypeFilter = "all"

// ParseSkillTypeFilter accepts "", "all", "technical" or "soft".
// Anything else falls back to "all".
func ParseSkillTypeFilter(s string) SkillTypeFilter {
	if ValidSkillTypes[SkillType(s)] {
		return SkillTypeFilter(s)
	}
	return SkillFilterAll
}
