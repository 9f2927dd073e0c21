package domain

import "errors"

var (
	ErrInvalidContent = errors.New("invalid portfolio content")
	ErrInvalidLayout  = errors.New("invalid layout")
)

// Section ids, in their default display order
const (
	SectionAbout    = "about"
	SectionSkills   = "skills"
	SectionProjects = "projects"
	SectionSnippets = "snippets"
	SectionGitHub   = "github"
	SectionBlog     = "blog"
)

// DefaultSections is the layout used until the master saves one.
var DefaultSections = []string{
	SectionAbout,
	SectionSkills,
	SectionProjects,
	SectionGitHub,
	SectionSnippets,
	SectionBlog,
}

// IsSection reports whether id names a known section.
func IsSection(id string) bool {
	for _, s := range DefaultSections {
		if s == id {
			return true
		}
	}
	return false
}

type SocialLink struct {
	Label string `json:"label" firestore:"label"`
	URL   string `json:"url" firestore:"url"`
}

type About struct {
	Name      string       `json:"name" firestore:"name"`
	Headline  string       `json:"headline" firestore:"headline"`
	Bio       string       `json:"bio" firestore:"bio"`
	Location  string       `json:"location,omitempty" firestore:"location"`
	Email     string       `json:"email,omitempty" firestore:"email"`
	AvatarURL string       `json:"avatar_url,omitempty" firestore:"avatarUrl"`
	ResumeURL string       `json:"resume_url,omitempty" firestore:"resumeUrl"`
	Socials   []SocialLink `json:"socials" firestore:"socials"`
}

type Skill struct {
	ID       string `json:"id" firestore:"id"`
	Name     string `json:"name" firestore:"name"`
	Category string `json:"category" firestore:"category"`
	// Level is a 0-100 proficiency
	Level int    `json:"level" firestore:"level"`
	Icon  string `json:"icon,omitempty" firestore:"icon"`
}

type Project struct {
	ID          string   `json:"id" firestore:"id"`
	Title       string   `json:"title" firestore:"title"`
	Description string   `json:"description" firestore:"description"`
	TechStack   []string `json:"tech_stack" firestore:"techStack"`
	RepoURL     string   `json:"repo_url,omitempty" firestore:"repoUrl"`
	LiveURL     string   `json:"live_url,omitempty" firestore:"liveUrl"`
	ImageURL    string   `json:"image_url,omitempty" firestore:"imageUrl"`
	Featured    bool     `json:"featured" firestore:"featured"`
}

type Snippet struct {
	ID          string `json:"id" firestore:"id"`
	Title       string `json:"title" firestore:"title"`
	Language    string `json:"language" firestore:"language"`
	Code        string `json:"code" firestore:"code"`
	Description string `json:"description,omitempty" firestore:"description"`
}

type Layout struct {
	Sections []string `json:"sections" firestore:"sections"`
}

// Portfolio is everything the public site renders on the landing page.
type Portfolio struct {
	About    *About    `json:"about"`
	Skills   []Skill   `json:"skills"`
	Projects []Project `json:"projects"`
	Snippets []Snippet `json:"snippets"`
	Layout   Layout    `json:"layout"`
}
