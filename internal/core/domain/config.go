package domain

import (
	"time"
)

type ConfigStatus string

const (
	ConfigActive   ConfigStatus = "active"
	ConfigInactive ConfigStatus = "inactive"
)

// AnimationConfig is one entry of the animation_configs scheduling log. At
// most one entry is active at a time.
type AnimationConfig struct {
	ID            string
	AnimationID   string
	AnimationType string
	EventType     string
	Shape         PersistenceShape
	StartTime     time.Time
	FrameRate     float64
	FrameCount    int
	DocumentType  string
	Status        ConfigStatus
	CreatedAt     time.Time
}

func NewAnimationConfig(ws DeploymentWriteSet, createdAt time.Time) AnimationConfig {
	spec := ws.Spec()

	return AnimationConfig{
		AnimationID:   spec.ID,
		AnimationType: spec.ID,
		EventType:     spec.EventTypeOrDefault(),
		Shape:         ws.Shape(),
		StartTime:     ws.StartTime(),
		FrameRate:     spec.FrameRateHz,
		FrameCount:    spec.FrameCount,
		DocumentType:  spec.DocumentType(),
		Status:        ConfigActive,
		CreatedAt:     createdAt,
	}
}

func (c AnimationConfig) Fields() Fields {
	return Fields{
		"animationStartTime": FormatTimestamp(c.StartTime),
		"eventType":          c.EventType,
		"animationType":      c.AnimationType,
		"shape":              string(c.Shape),
		"animationData": map[string]any{
			"animationId": c.AnimationID,
			"frameRate":   rateValue(c.FrameRate),
			"frameCount":  int64(c.FrameCount),
			"type":        c.DocumentType,
		},
		"createdAt": FormatTimestamp(c.CreatedAt),
		"status":    string(c.Status),
	}
}

func (c AnimationConfig) IsActive() bool {
	return c.Status == ConfigActive
}

// EndTime is derived from the stored frame rate and count.
func (c AnimationConfig) EndTime() time.Time {
	if c.FrameRate <= 0 {
		return c.StartTime
	}

	return c.StartTime.Add(time.Duration(float64(c.FrameCount) / c.FrameRate * float64(time.Second)))
}

// AnimationConfigFromDocument is lenient: entries written by older tools may
// lack fields, and unparsable timestamps are left zero.
func AnimationConfigFromDocument(doc Document) AnimationConfig {
	c := AnimationConfig{
		ID:            doc.ID,
		AnimationType: stringField(doc.Fields, "animationType"),
		EventType:     stringField(doc.Fields, "eventType"),
		Shape:         PersistenceShape(stringField(doc.Fields, "shape")),
		Status:        ConfigStatus(stringField(doc.Fields, "status")),
	}

	if t, err := ParseTimestamp(stringField(doc.Fields, "animationStartTime")); err == nil {
		c.StartTime = t
	}

	if t, err := ParseTimestamp(stringField(doc.Fields, "createdAt")); err == nil {
		c.CreatedAt = t
	}

	if data, ok := doc.Fields["animationData"].(map[string]any); ok {
		c.AnimationID = stringField(data, "animationId")
		c.DocumentType = stringField(data, "type")
		if n, ok := AsInt64(data["frameCount"]); ok {
			c.FrameCount = int(n)
		}
		if f, ok := AsFloat64(data["frameRate"]); ok {
			c.FrameRate = f
		}
	}

	if c.AnimationID == "" {
		c.AnimationID = c.AnimationType
	}

	return c
}

func stringField(fields map[string]any, key string) string {
	s, _ := fields[key].(string)
	return s
}

// Trigger is an animation_triggers entry requested for a single seat.
type Trigger struct {
	AnimationType string
	UserID        string
	AnimationData map[string]any
	StartTime     time.Time
	CreatedAt     time.Time
}

func (t Trigger) Fields() Fields {
	return Fields{
		"animationType": t.AnimationType,
		"userId":        t.UserID,
		"animationData": t.AnimationData,
		"startTime":     FormatTimestamp(t.StartTime),
		"status":        "triggered",
		"createdAt":     FormatTimestamp(t.CreatedAt),
	}
}

// AnimationActivatedEvent is published after a deployment becomes the active
// animation.
type AnimationActivatedEvent struct {
	ConfigID    string    `json:"config_id"`
	AnimationID string    `json:"animation_id"`
	EventType   string    `json:"event_type"`
	Shape       string    `json:"shape"`
	StartTime   string    `json:"start_time"`
	EndTime     string    `json:"end_time"`
	Seats       int       `json:"seats"`
	ActivatedAt time.Time `json:"activated_at"`
}
