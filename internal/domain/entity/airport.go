package entity

import (
	"time"

	"gorm.io/gorm"
)

// Airport represents airport reference data, including the timezone used to
// resolve Julian flight dates into local calendar dates.
type Airport struct {
	ID          uint
	AirportCode string
	AirportName string
	CityCode    string
	CityName    string
	GmtTz       string
	TzName      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   gorm.DeletedAt
}
