package history

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/iapss/iapss-backend/internal/domain/analysis"
)

// Attachment references an uploaded file (problem image or code file).
type Attachment struct {
	URL          string `json:"url"`
	OriginalName string `json:"originalName,omitempty"`
	MimeType     string `json:"mimeType,omitempty"`
	Size         int64  `json:"size,omitempty"`
}

// Record is one accepted analysis, owned by a single user.
type Record struct {
	ID              uuid.UUID                           `gorm:"type:uuid;primaryKey" json:"id"`
	UserID          uuid.UUID                           `gorm:"type:uuid;not null;index:idx_history_owner_kind,priority:1" json:"user_id"`
	Kind            analysis.Kind                       `gorm:"column:kind;not null;index:idx_history_owner_kind,priority:2" json:"kind"`
	InputText       string                              `gorm:"column:input_text;type:text" json:"inputText"`
	Language        string                              `gorm:"column:language;index" json:"language,omitempty"`
	Attachments     datatypes.JSONType[[]Attachment]    `gorm:"column:attachments" json:"attachments"`
	Result          datatypes.JSONType[analysis.Result] `gorm:"column:result" json:"result"`
	Fallback        bool                                `gorm:"column:fallback;not null;default:false" json:"fallback"`
	Difficulty      string                              `gorm:"column:difficulty;index" json:"difficulty,omitempty"`
	IsFavorite      bool                                `gorm:"column:is_favorite;not null;default:false" json:"isFavorite"`
	Tags            []Tag                               `gorm:"foreignKey:HistoryID;constraint:OnDelete:CASCADE" json:"-"`
	Topics          []Topic                             `gorm:"foreignKey:HistoryID;constraint:OnDelete:CASCADE" json:"-"`
	FeedbackRating  *int                                `gorm:"column:feedback_rating" json:"-"`
	FeedbackComment string                              `gorm:"column:feedback_comment" json:"-"`
	CreatedAt       time.Time                           `gorm:"not null;index" json:"createdAt"`
	UpdatedAt       time.Time                           `gorm:"not null" json:"updatedAt"`
}

func (Record) TableName() string { return "history_record" }

func (r *Record) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// TagNames flattens the tag association for responses.
func (r *Record) TagNames() []string {
	out := make([]string, 0, len(r.Tags))
	for _, t := range r.Tags {
		out = append(out, t.Tag)
	}
	return out
}

// Feedback returns the owner's rating, or nil when none was given.
func (r *Record) Feedback() *Feedback {
	if r.FeedbackRating == nil {
		return nil
	}
	return &Feedback{Rating: *r.FeedbackRating, Comment: r.FeedbackComment}
}

// MarshalJSON exposes tags as a plain string list and feedback as a nested object.
func (r Record) MarshalJSON() ([]byte, error) {
	type plain Record
	return json.Marshal(struct {
		plain
		Tags     []string  `json:"tags"`
		Feedback *Feedback `json:"feedback"`
	}{plain: plain(r), Tags: r.TagNames(), Feedback: r.Feedback()})
}

// Tag is a user-assigned label on a record.
type Tag struct {
	HistoryID uuid.UUID `gorm:"type:uuid;primaryKey" json:"-"`
	Tag       string    `gorm:"primaryKey;index" json:"tag"`
}

func (Tag) TableName() string { return "history_tag" }

// Topic is a denormalised problem topic, kept for filtering and aggregation.
type Topic struct {
	HistoryID uuid.UUID `gorm:"type:uuid;primaryKey" json:"-"`
	Topic     string    `gorm:"primaryKey;index" json:"topic"`
}

func (Topic) TableName() string { return "history_topic" }

// Feedback is the owner's rating of a result.
type Feedback struct {
	Rating  int    `gorm:"column:rating" json:"rating"`
	Comment string `gorm:"column:comment" json:"comment"`
}
