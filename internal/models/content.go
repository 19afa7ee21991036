package models

import (
	"strings"
	"time"
)

// ContentStatus is the moderation state of a content record.
type ContentStatus string

const (
	StatusPending  ContentStatus = "pending"
	StatusApproved ContentStatus = "approved"
	StatusRejected ContentStatus = "rejected"
)

// Statuses lists every status in display order.
var Statuses = []ContentStatus{StatusPending, StatusApproved, StatusRejected}

func (s ContentStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// ContentKind names one of the moderated content types.
type ContentKind string

const (
	KindMember       ContentKind = "member"
	KindProject      ContentKind = "project"
	KindNews         ContentKind = "news"
	KindGallery      ContentKind = "gallery"
	KindRegistration ContentKind = "registration"
)

// Kinds lists every moderated kind.
var Kinds = []ContentKind{KindMember, KindProject, KindNews, KindGallery, KindRegistration}

// Collection is the document store collection and the REST path segment for k.
func (k ContentKind) Collection() string {
	switch k {
	case KindMember:
		return "members"
	case KindProject:
		return "projects"
	case KindNews:
		return "news"
	case KindGallery:
		return "gallery"
	case KindRegistration:
		return "registrations"
	}
	return string(k)
}

// ContentBase holds the moderation fields shared by every content kind.
// It is stored inline in each document.
type ContentBase struct {
	ID             string        `json:"id"                       bson:"_id"`
	Status         ContentStatus `json:"status"                   bson:"status"`
	CreatedBy      string        `json:"createdBy,omitempty"      bson:"createdBy,omitempty"`
	ApprovedBy     string        `json:"approvedBy,omitempty"     bson:"approvedBy,omitempty"`
	ModeratedAt    *time.Time    `json:"moderatedAt,omitempty"    bson:"moderatedAt,omitempty"`
	ModerationNote string        `json:"moderationNote,omitempty" bson:"moderationNote,omitempty"`
	CreatedAt      time.Time     `json:"createdAt"                bson:"createdAt"`
	UpdatedAt      time.Time     `json:"updatedAt"                bson:"updatedAt"`

	// Display names resolved from the identity store; never persisted.
	CreatedByName  string `json:"createdByName,omitempty"  bson:"-"`
	ApprovedByName string `json:"approvedByName,omitempty" bson:"-"`
}

func (b *ContentBase) Base() *ContentBase { return b }

// Record is implemented by a pointer to every moderated kind.
type Record interface {
	Base() *ContentBase
	Kind() ContentKind
}

// Normalizer is implemented by kinds that clean their payload before validation.
type Normalizer interface {
	Normalize()
}

// Redactor is implemented by kinds whose records carry personal data that
// must not reach readers without the read-all privilege.
type Redactor interface {
	Redact()
}

// Member is a club member profile shown on the Members page.
type Member struct {
	ContentBase `bson:",inline"`
	Name        string `json:"name"                 bson:"name"                 validate:"required,max=80"`
	Position    string `json:"position"             bson:"position"             validate:"required,max=80"`
	Bio         string `json:"bio,omitempty"        bson:"bio,omitempty"        validate:"max=2000"`
	PhotoURL    string `json:"photoUrl,omitempty"   bson:"photoUrl,omitempty"   validate:"omitempty,url"`
	JoinedYear  int    `json:"joinedYear,omitempty" bson:"joinedYear,omitempty" validate:"omitempty,gte=1900,lte=2100"`
}

func (Member) Kind() ContentKind { return KindMember }

func (m *Member) Normalize() {
	m.Name = strings.TrimSpace(m.Name)
	m.Position = strings.TrimSpace(m.Position)
	m.Bio = strings.TrimSpace(m.Bio)
	m.PhotoURL = strings.TrimSpace(m.PhotoURL)
}

// Project is a club activity or initiative.
type Project struct {
	ContentBase `bson:",inline"`
	Title       string     `json:"title"               bson:"title"               validate:"required,max=160"`
	Description string     `json:"description"         bson:"description"         validate:"required"`
	ImageURL    string     `json:"imageUrl,omitempty"  bson:"imageUrl,omitempty"  validate:"omitempty,url"`
	Location    string     `json:"location,omitempty"  bson:"location,omitempty"`
	StartDate   *time.Time `json:"startDate,omitempty" bson:"startDate,omitempty"`
	EndDate     *time.Time `json:"endDate,omitempty"   bson:"endDate,omitempty"`
}

func (Project) Kind() ContentKind { return KindProject }

func (p *Project) Normalize() {
	p.Title = strings.TrimSpace(p.Title)
	p.Description = strings.TrimSpace(p.Description)
	p.ImageURL = strings.TrimSpace(p.ImageURL)
	p.Location = strings.TrimSpace(p.Location)
}

// NewsArticle is a markdown news post.
type NewsArticle struct {
	ContentBase   `bson:",inline"`
	Title         string `json:"title"                   bson:"title"                   validate:"required,max=160"`
	Summary       string `json:"summary,omitempty"       bson:"summary,omitempty"       validate:"max=500"`
	Body          string `json:"body"                    bson:"body"                    validate:"required"`
	CoverImageURL string `json:"coverImageUrl,omitempty" bson:"coverImageUrl,omitempty" validate:"omitempty,url"`

	BodyHTML string `json:"bodyHtml,omitempty" bson:"-"`
}

func (NewsArticle) Kind() ContentKind { return KindNews }

func (n *NewsArticle) Normalize() {
	n.Title = strings.TrimSpace(n.Title)
	n.Summary = strings.TrimSpace(n.Summary)
	n.Body = strings.TrimSpace(n.Body)
	n.CoverImageURL = strings.TrimSpace(n.CoverImageURL)
}

// GalleryImage is a photo published in the gallery.
type GalleryImage struct {
	ContentBase `bson:",inline"`
	Title       string     `json:"title"                 bson:"title"                 validate:"required,max=160"`
	Description string     `json:"description,omitempty" bson:"description,omitempty"`
	ImageURL    string     `json:"imageUrl"              bson:"imageUrl"              validate:"required,url"`
	TakenAt     *time.Time `json:"takenAt,omitempty"     bson:"takenAt,omitempty"`
}

func (GalleryImage) Kind() ContentKind { return KindGallery }

func (g *GalleryImage) Normalize() {
	g.Title = strings.TrimSpace(g.Title)
	g.Description = strings.TrimSpace(g.Description)
	g.ImageURL = strings.TrimSpace(g.ImageURL)
}

// Registration is a membership application.
type Registration struct {
	ContentBase   `bson:",inline"`
	FullName      string   `json:"fullName"                bson:"fullName"                validate:"required,max=120"`
	Email         string   `json:"email,omitempty"         bson:"email"                   validate:"required,email"`
	Phone         string   `json:"phone,omitempty"         bson:"phone"                   validate:"required,max=32"`
	DateOfBirth   string   `json:"dateOfBirth,omitempty"   bson:"dateOfBirth,omitempty"   validate:"omitempty,datetime=2006-01-02"`
	School        string   `json:"school,omitempty"        bson:"school,omitempty"`
	Address       string   `json:"address,omitempty"       bson:"address,omitempty"`
	GuardianName  string   `json:"guardianName,omitempty"  bson:"guardianName,omitempty"`
	GuardianPhone string   `json:"guardianPhone,omitempty" bson:"guardianPhone,omitempty" validate:"max=32"`
	Interests     []string `json:"interests,omitempty"     bson:"interests,omitempty"     validate:"max=20,dive,max=60"`
	Motivation    string   `json:"motivation,omitempty"    bson:"motivation,omitempty"    validate:"max=2000"`
}

func (Registration) Kind() ContentKind { return KindRegistration }

func (r *Registration) Normalize() {
	r.FullName = strings.TrimSpace(r.FullName)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Phone = strings.TrimSpace(r.Phone)
	r.DateOfBirth = strings.TrimSpace(r.DateOfBirth)
	r.School = strings.TrimSpace(r.School)
	r.Address = strings.TrimSpace(r.Address)
	r.GuardianName = strings.TrimSpace(r.GuardianName)
	r.GuardianPhone = strings.TrimSpace(r.GuardianPhone)
	r.Motivation = strings.TrimSpace(r.Motivation)
}

// Redact strips contact details and other personal data.
func (r *Registration) Redact() {
	r.Email = ""
	r.Phone = ""
	r.DateOfBirth = ""
	r.Address = ""
	r.GuardianName = ""
	r.GuardianPhone = ""
	r.Motivation = ""
}

// RecordPtr constrains generic code to pointers of moderated kinds.
type RecordPtr[T any] interface {
	*T
	Record
}
