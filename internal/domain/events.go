package domain

// ResourceJobPosts is the resource name used for topics and the search index.
const ResourceJobPosts = "job-posts"

// Lifecycle event kinds. A topic is "<resource>.<kind>".
const (
	EventKindCreated = "created"
	EventKindUpdated = "updated"
	EventKindDeleted = "deleted"
)

// Topic names for job post lifecycle events.
const (
	TopicJobPostCreated = ResourceJobPosts + "." + EventKindCreated
	TopicJobPostUpdated = ResourceJobPosts + "." + EventKindUpdated
	TopicJobPostDeleted = ResourceJobPosts + "." + EventKindDeleted
)

// Topic builds the topic name for a resource and event kind.
func Topic(resource, kind string) string {
	return resource + "." + kind
}

// DeletedPayload is the value published on a deleted event.
type DeletedPayload struct {
	ID string `json:"id"`
}
