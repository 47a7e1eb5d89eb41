package notification

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	TypeResultAlert = "RESULT_ALERT"
	TypeCAAlert     = "CA_ALERT"
	TypeCustom      = "CUSTOM"

	StatusSent      = "SENT"
	StatusFailed    = "FAILED"
	StatusScheduled = "SCHEDULED"

	ChannelEmail = "email"
	ChannelSMS   = "sms"
)

var (
	ErrNotificationNotFound = errors.New("notification not found")

	// ErrAllChannelsFailed is returned only when every requested,
	// resolvable channel failed; single-channel failures are absorbed.
	ErrAllChannelsFailed = errors.New("all notification channels failed")
)

// Metadata carries delivery hints. ScheduledFor is stored as-is; only
// notifications created through the schedule path defer delivery.
type Metadata struct {
	Priority     string     `bson:"priority" json:"priority"`
	Template     string     `bson:"template" json:"template"`
	ScheduledFor *time.Time `bson:"scheduled_for,omitempty" json:"scheduled_for,omitempty"`
}

// ChannelOutcome records what happened on one delivery channel.
type ChannelOutcome struct {
	Channel string `bson:"channel" json:"channel"`
	Sent    bool   `bson:"sent" json:"sent"`
	Skipped bool   `bson:"skipped" json:"skipped"` // no contact info for the channel
	Error   string `bson:"error,omitempty" json:"error,omitempty"`
}

// Notification is one record per logical dispatch, independent of how
// many channels actually sent.
type Notification struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	StudentID primitive.ObjectID `bson:"student_id" json:"student_id"`
	SchoolID  primitive.ObjectID `bson:"school_id" json:"school_id"`
	Message   string             `bson:"message" json:"message"`
	Type      string             `bson:"type" json:"type"`
	Metadata  Metadata           `bson:"metadata" json:"metadata"`
	Channels  []ChannelOutcome   `bson:"channels" json:"channels"`
	Status    string             `bson:"status" json:"status"`
	SentAt    time.Time          `bson:"sent_at" json:"sent_at"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}

// SendOptions replaces the loose option bag of ad-hoc clients: named
// fields with documented defaults.
type SendOptions struct {
	// Channels defaults to both email and sms when empty.
	Channels []string `json:"channels"`
	// Priority defaults to "normal".
	Priority string `json:"priority"`
	// Template defaults to "default".
	Template string `json:"template"`
	// ScheduledFor is inert metadata on a plain send.
	ScheduledFor *time.Time `json:"scheduledFor"`
}

func (o *SendOptions) applyDefaults() {
	if len(o.Channels) == 0 {
		o.Channels = []string{ChannelEmail, ChannelSMS}
	}
	if o.Priority == "" {
		o.Priority = "normal"
	}
	if o.Template == "" {
		o.Template = "default"
	}
}

// BulkResult reports the outcome for one recipient of a bulk send.
type BulkResult struct {
	StudentID    string        `json:"studentId"`
	Success      bool          `json:"success"`
	Notification *Notification `json:"notification,omitempty"`
	Error        string        `json:"error,omitempty"`
}

// TypeCount is one row of the stats endpoint.
type TypeCount struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
}

// VolumeSummary aggregates daily dispatch volume over the range.
type VolumeSummary struct {
	Total      int     `json:"total"`
	PerDayMean float64 `json:"perDayMean"`
	PerDayMax  float64 `json:"perDayMax"`
}

// StatsReport is the response of the stats endpoint.
type StatsReport struct {
	DateRange  int           `json:"dateRange"`
	Statistics []TypeCount   `json:"statistics"`
	Volume     VolumeSummary `json:"volume"`
}
