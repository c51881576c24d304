package models

import "time"

// XPHistory is the append-only ledger of XP grants. Rows are never updated
// or deleted by the application; the user's total_xp is the running sum.
type XPHistory struct {
	ID        string    `gorm:"primaryKey;type:uuid" json:"id"`
	UserID    string    `gorm:"index;not null" json:"user_id"`
	XPGained  int64     `gorm:"not null" json:"xp_gained"`
	Reason    string    `gorm:"size:255" json:"reason"`
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}
