package model

import (
	"encoding/json"
	"time"
)

// DateLayout is the calendar-day format used on the wire and in the database.
const DateLayout = "2006-01-02"

// Glasses is a day's glass list as the client sent it: a JSON array whose
// elements the server never interprets. It is stored and returned byte for byte.
type Glasses = json.RawMessage

// EmptyGlasses is the stored form of a day with no glasses.
var EmptyGlasses = Glasses("[]")

// Glass is the element shape of the default day served before the first save.
// Saved glasses may carry any fields.
type Glass struct {
	IsEmpty bool   `json:"isEmpty"`
	Amount  string `json:"amount"`
}

// WaterIntake is the stored record for one user on one calendar day.
// At most one row exists per (UserID, Date).
type WaterIntake struct {
	ID        int64     `json:"id"        db:"id"`
	UserID    int64     `json:"userId"    db:"user_id"`
	Date      time.Time `json:"date"      db:"date"` // midnight UTC of the day
	Glasses   Glasses   `json:"glasses"   db:"glasses"`
	Liters    float64   `json:"liters"    db:"liters"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// DailyIntake is what clients read back for a day: either the stored record's
// payload or a synthesized default.
type DailyIntake struct {
	Glasses Glasses `json:"glasses"`
	Liters  float64 `json:"liters"`
}
