package domain

// ResourceType distinguishes watchable content from hands-on activities.
type ResourceType string

const (
	ResourceVideo    ResourceType = "video"
	ResourceActivity ResourceType = "activity"
)

// Resource is a mood-tagged wellness resource shown on the resources tab.
type Resource struct {
	ID          ResourceID
	Title       string
	Type        ResourceType
	Moods       []string
	Duration    string // display string, e.g. "10 min"; empty for activities
	Description string
}
