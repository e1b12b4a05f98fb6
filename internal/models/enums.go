package models

// Settings categories. Each names the namespace whose values populate the
// corresponding enum-like field.
const (
	CategoryStatus   = "status"
	CategoryType     = "type"
	CategoryPriority = "priority"
	CategoryAudience = "target audience"
)

// VideoStatus is the production stage of a video.
type VideoStatus string

const (
	StatusIdle      VideoStatus = "idle"
	StatusScripted  VideoStatus = "scripted"
	StatusRecorded  VideoStatus = "recorded"
	StatusEdited    VideoStatus = "edited"
	StatusThumbnail VideoStatus = "thumbnail"
	StatusCreated   VideoStatus = "created"
	StatusPublished VideoStatus = "published"
)

// KnownStatuses lists the built-in statuses in production order.
func KnownStatuses() []VideoStatus {
	return []VideoStatus{
		StatusIdle, StatusScripted, StatusRecorded, StatusEdited,
		StatusThumbnail, StatusCreated, StatusPublished,
	}
}

// IsKnown reports whether s is a built-in status.
func (s VideoStatus) IsKnown() bool {
	for _, k := range KnownStatuses() {
		if s == k {
			return true
		}
	}
	return false
}

// Platform is where a video is published. Platforms are a closed set.
type Platform string

const (
	PlatformYouTube   Platform = "youtube"
	PlatformTikTok    Platform = "tiktok"
	PlatformInstagram Platform = "instagram"
	PlatformTwitch    Platform = "twitch"
	PlatformTwitter   Platform = "twitter"
)

// DefaultPlatform is used when an idea is converted into a video.
const DefaultPlatform = PlatformYouTube

// KnownPlatforms lists every supported platform.
func KnownPlatforms() []Platform {
	return []Platform{PlatformYouTube, PlatformTikTok, PlatformInstagram, PlatformTwitch, PlatformTwitter}
}

// IsKnown reports whether p is a supported platform.
func (p Platform) IsKnown() bool {
	for _, k := range KnownPlatforms() {
		if p == k {
			return true
		}
	}
	return false
}

// VideoType is the kind of content. Ideas carry the same value as their
// content type.
type VideoType string

const (
	TypeTutorial VideoType = "tutorial"
	TypeDevlog   VideoType = "devlog"
	TypeReview   VideoType = "review"
	TypeTalking  VideoType = "talking"
	TypeStream   VideoType = "stream"
	TypeOther    VideoType = "other"
)

// KnownTypes lists the built-in video types.
func KnownTypes() []VideoType {
	return []VideoType{TypeTutorial, TypeDevlog, TypeReview, TypeTalking, TypeStream, TypeOther}
}

// IsKnown reports whether t is a built-in type.
func (t VideoType) IsKnown() bool {
	for _, k := range KnownTypes() {
		if t == k {
			return true
		}
	}
	return false
}

// Priority orders scheduled work.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// KnownPriorities lists the built-in priorities.
func KnownPriorities() []Priority {
	return []Priority{PriorityLow, PriorityMedium, PriorityHigh}
}

// IsKnown reports whether p is a built-in priority.
func (p Priority) IsKnown() bool {
	for _, k := range KnownPriorities() {
		if p == k {
			return true
		}
	}
	return false
}

// Audience is the intended viewer level of an idea.
type Audience string

const (
	AudienceBeginner     Audience = "beginner"
	AudienceIntermediate Audience = "intermediate"
	AudienceAdvanced     Audience = "advanced"
)

// KnownAudiences lists the built-in audiences.
func KnownAudiences() []Audience {
	return []Audience{AudienceBeginner, AudienceIntermediate, AudienceAdvanced}
}

// IsKnown reports whether a is a built-in audience.
func (a Audience) IsKnown() bool {
	for _, k := range KnownAudiences() {
		if a == k {
			return true
		}
	}
	return false
}

// Catalog is the set of user-defined values per settings category. Values
// outside the built-in sets are accepted when the catalog holds them, which
// is how users extend statuses, types, priorities and audiences.
type Catalog map[string]map[string]bool

// NewCatalog indexes settings by category.
func NewCatalog(settings []Setting) Catalog {
	c := make(Catalog)
	for _, s := range settings {
		c.Add(s.Category, s.Value)
	}
	return c
}

// Add registers value under category.
func (c Catalog) Add(category, value string) {
	if c[category] == nil {
		c[category] = make(map[string]bool)
	}
	c[category][value] = true
}

// Has reports whether category contains value. A nil catalog has nothing.
func (c Catalog) Has(category, value string) bool {
	if c == nil {
		return false
	}
	return c[category][value]
}

// AllowsStatus reports whether s is built in or registered in the catalog.
func (c Catalog) AllowsStatus(s VideoStatus) bool {
	return s.IsKnown() || c.Has(CategoryStatus, string(s))
}

// AllowsType reports whether t is built in or registered in the catalog.
func (c Catalog) AllowsType(t VideoType) bool {
	return t.IsKnown() || c.Has(CategoryType, string(t))
}

// AllowsPriority reports whether p is built in or registered in the catalog.
func (c Catalog) AllowsPriority(p Priority) bool {
	return p.IsKnown() || c.Has(CategoryPriority, string(p))
}

// AllowsAudience reports whether a is built in or registered in the catalog.
func (c Catalog) AllowsAudience(a Audience) bool {
	return a.IsKnown() || c.Has(CategoryAudience, string(a))
}
