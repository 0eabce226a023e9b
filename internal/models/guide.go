package models

import (
	"time"
)

// DateLayout is the format of Guide.LastUpdated.
const DateLayout = "2006-01-02"

// Guide is an SZGF character guide. Optional sections are nil when disabled.
type Guide struct {
	Author        string         `json:"author" yaml:"author"`
	LastUpdated   string         `json:"last_updated" yaml:"last_updated"`
	Character     Character      `json:"character" yaml:"character"`
	Description   string         `json:"description" yaml:"description"`
	Weapons       []Weapon       `json:"weapons" yaml:"weapons"`
	Discs         *Discs         `json:"discs" yaml:"discs"`
	Stat          *Stat          `json:"stat" yaml:"stat"`
	SkillPriority *SkillPriority `json:"skill_priority" yaml:"skill_priority"`
	Skills        []Skill        `json:"skills" yaml:"skills"`
	Mindscapes    []Mindscape    `json:"mindscapes" yaml:"mindscapes"`
	Team          *Team          `json:"team" yaml:"team"`
	Rotation      *Rotation      `json:"rotation" yaml:"rotation"`
}

// Character identifies the agent the guide is about.
type Character struct {
	Name   string  `json:"name" yaml:"name"`
	Rarity int     `json:"rarity" yaml:"rarity"` // 4 (A-rank) or 5 (S-rank)
	Banner *string `json:"banner" yaml:"banner"`
}

// Weapon is a recommended W-Engine.
type Weapon struct {
	Name        string  `json:"name" yaml:"name"`
	Description string  `json:"description" yaml:"description"`
	Title       *string `json:"title" yaml:"title"`
	Icon        *string `json:"icon" yaml:"icon"`
}

// Discs groups drive disc recommendations.
type Discs struct {
	FourPieces    []DiscSet      `json:"four_pieces" yaml:"four_pieces"`
	TwoPieces     []DiscSet      `json:"two_pieces" yaml:"two_pieces"`
	ExtraSections []ExtraSection `json:"extra_sections" yaml:"extra_sections"`
}

// DiscSet is a drive disc set. For two-piece entries Name may hold up to two
// set names joined by SetSeparator.
type DiscSet struct {
	Name        string  `json:"name" yaml:"name"`
	Description string  `json:"description" yaml:"description"`
	Icon        *string `json:"icon" yaml:"icon"`
}

// ExtraSection is a free-form titled block appended to a section.
type ExtraSection struct {
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description" yaml:"description"`
}

// Stat holds disc stat recommendations.
type Stat struct {
	MainStats     []MainStat     `json:"main_stats" yaml:"main_stats"`
	SubStats      string         `json:"sub_stats" yaml:"sub_stats"`
	BaselineStats string         `json:"baseline_stats" yaml:"baseline_stats"`
	ExtraSections []ExtraSection `json:"extra_sections" yaml:"extra_sections"`
}

// MainStat is the main stat priority for disc slot Pos (4, 5 or 6).
type MainStat struct {
	Pos          int    `json:"pos" yaml:"pos"`
	StatPriority string `json:"stat_priority" yaml:"stat_priority"`
}

// SkillPriority orders skill levels; each entry holds skills of equal priority.
type SkillPriority struct {
	Description string        `json:"description" yaml:"description"`
	Priorities  [][]SkillType `json:"priorities" yaml:"priorities"`
}

// Skill explains one of the agent's skills.
type Skill struct {
	Title       string  `json:"title" yaml:"title"`
	Description string  `json:"description" yaml:"description"`
	Explanation string  `json:"explanation" yaml:"explanation"`
	Demo        *string `json:"demo" yaml:"demo"`
}

// Team lists team compositions.
type Team struct {
	Teams         []TeamComp     `json:"teams" yaml:"teams"`
	ExtraSections []ExtraSection `json:"extra_sections" yaml:"extra_sections"`
}

// TeamComp is a single team composition.
type TeamComp struct {
	Name        string       `json:"name" yaml:"name"`
	Description *string      `json:"description" yaml:"description"`
	Characters  []TeamMember `json:"characters" yaml:"characters"`
}

// TeamMember is a team slot. Name may hold one to three alternatives joined
// by SetSeparator.
type TeamMember struct {
	Name string `json:"name" yaml:"name"`
}

// Rotation describes the recommended skill rotation.
type Rotation struct {
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description" yaml:"description"`
}

// Mindscape comments on mindscape cinema Num (1..6).
type Mindscape struct {
	Num         int    `json:"num" yaml:"num"`
	Description string `json:"description" yaml:"description"`
}

// NewGuide returns the document a fresh editing session starts from.
func NewGuide(today time.Time) Guide {
	return Guide{
		LastUpdated: today.Format(DateLayout),
		Character:   Character{Rarity: 5},
		Weapons:     []Weapon{},
		Skills:      []Skill{},
		Mindscapes:  []Mindscape{},
	}
}

// --- Section skeletons ---

func NewDiscs() *Discs {
	return &Discs{FourPieces: []DiscSet{}, TwoPieces: []DiscSet{}, ExtraSections: []ExtraSection{}}
}

func NewStat() *Stat {
	return &Stat{MainStats: []MainStat{}, ExtraSections: []ExtraSection{}}
}

func NewSkillPriority() *SkillPriority {
	return &SkillPriority{Priorities: [][]SkillType{}}
}

func NewTeam() *Team {
	return &Team{Teams: []TeamComp{}, ExtraSections: []ExtraSection{}}
}

func NewRotation() *Rotation {
	return &Rotation{}
}

// --- Item templates ---

func NewWeapon() Weapon             { return Weapon{} }
func NewDiscSet() DiscSet           { return DiscSet{} }
func NewExtraSection() ExtraSection { return ExtraSection{} }
func NewMainStat() MainStat         { return MainStat{Pos: 4} }
func NewPriorityLevel() []SkillType { return []SkillType{} }
func NewSkill() Skill               { return Skill{} }
func NewTeamComp() TeamComp         { return TeamComp{Characters: []TeamMember{}} }
func NewTeamMember() TeamMember     { return TeamMember{} }
func NewMindscape() Mindscape       { return Mindscape{Num: 1} }
