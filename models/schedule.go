package models

import "time"

// ScheduleConfig is the shop-wide booking configuration. There is exactly one
// document; admins mutate it, every booking request reads it.
type ScheduleConfig struct {
	OpenMinute          int       `bson:"openMinute" json:"openMinute"`                   // minutes from midnight (e.g., 540 for 9:00 AM)
	CloseMinute         int       `bson:"closeMinute" json:"closeMinute"`                 // minutes from midnight (e.g., 1260 for 9:00 PM)
	SlotIntervalMinutes int       `bson:"slotIntervalMinutes" json:"slotIntervalMinutes"` // spacing between pickup slots
	PrepBufferMinutes   int       `bson:"prepBufferMinutes" json:"prepBufferMinutes"`     // minimum lead time for same-day pickups
	CapacityPerSlot     int       `bson:"capacityPerSlot" json:"capacityPerSlot"`         // max active orders per slot
	UpdatedAt           time.Time `bson:"updatedAt" json:"updatedAt"`
}

// ScheduleConfigUpdate carries an admin edit. Nil fields keep the current value.
type ScheduleConfigUpdate struct {
	OpenTime            *string `json:"openTime,omitempty"`  // "15:04"
	CloseTime           *string `json:"closeTime,omitempty"` // "15:04"
	SlotIntervalMinutes *int    `json:"slotIntervalMinutes,omitempty"`
	PrepBufferMinutes   *int    `json:"prepBufferMinutes,omitempty"`
	CapacityPerSlot     *int    `json:"capacityPerSlot,omitempty"`
}
