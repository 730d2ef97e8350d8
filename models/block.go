package models

import "time"

// FullDayMinute marks a block without a time range.
const FullDayMinute = -1

type Block struct {
	BlockID   string    `bson:"block_id" json:"block_id"`     // Unique identifier for the block
	Date      string    `bson:"date" json:"date"`             // Date (e.g., "2025-02-25")
	Start     int       `bson:"start" json:"start"`           // Start time in minutes from midnight, -1 for full-day
	End       int       `bson:"end" json:"end"`               // End time in minutes from midnight, -1 for full-day
	Reason    string    `bson:"reason" json:"reason"`         // Reason for blocking (e.g., "inventory day", "private event")
	CreatedAt time.Time `bson:"created_at" json:"created_at"` // Timestamp when the block was created
}

// FullDay reports whether the block covers the whole date.
func (b Block) FullDay() bool {
	return b.Start == FullDayMinute || b.End == FullDayMinute
}

// Covers reports whether the given minute-of-day falls inside the block.
func (b Block) Covers(minute int) bool {
	if b.FullDay() {
		return true
	}
	return minute >= b.Start && minute < b.End
}
