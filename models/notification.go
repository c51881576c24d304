package models

import "time"

type NotificationType string

const (
	NotificationXPGained            NotificationType = "xp_gained"
	NotificationLevelUp             NotificationType = "level_up"
	NotificationAchievementUnlocked NotificationType = "achievement_unlocked"
)

// Notification is the delivery-agnostic record the gamification core emits;
// presentation layers poll and mark them read.
type Notification struct {
	ID        string           `gorm:"primaryKey;type:uuid" json:"id"`
	UserID    string           `gorm:"index;not null" json:"user_id"`
	Type      NotificationType `gorm:"type:varchar(32);not null" json:"type"`
	Title     string           `gorm:"not null" json:"title"`
	Message   string           `gorm:"type:text" json:"message"`
	Read      bool             `gorm:"default:false;index" json:"read"`
	CreatedAt time.Time        `gorm:"autoCreateTime;index" json:"created_at"`
}
