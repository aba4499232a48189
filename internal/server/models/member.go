package models

import "time"

// MemberStatus tracks how established a member is. Progression is driven by
// Sunday attendance: one visit keeps FIRST_TIMER, a second promotes to
// SECOND_TIMER, three or more make a FULL_MEMBER.
type MemberStatus string

const (
	StatusFirstTimer  MemberStatus = "FIRST_TIMER"
	StatusSecondTimer MemberStatus = "SECOND_TIMER"
	StatusFullMember  MemberStatus = "FULL_MEMBER"
)

type ConversionStatus string

const (
	ConversionNotConverted ConversionStatus = "NOT_CONVERTED"
	ConversionConverted    ConversionStatus = "CONVERTED"
)

type Member struct {
	ID               string           `json:"id"`
	Name             string           `json:"name"`
	Email            *string          `json:"email,omitempty"`
	Phone            string           `json:"phone"`
	Address          string           `json:"address,omitempty"`
	Gender           string           `json:"gender,omitempty"`
	ZoneID           string           `json:"zoneId"`
	CellID           string           `json:"cellId"`
	Status           MemberStatus     `json:"status"`
	ConversionStatus ConversionStatus `json:"conversionStatus"`
	SundayAttendance int              `json:"sundayAttendance"`
	FirstVisit       time.Time        `json:"firstVisit"`
	LastVisit        time.Time        `json:"lastVisit"`
	ConversionDate   *time.Time       `json:"conversionDate,omitempty"`
	PrayerRequest    string           `json:"prayerRequest,omitempty"`
	Interests        []string         `json:"interests,omitempty"`
	EducationLevel   string           `json:"educationLevel,omitempty"`
	AgeRange         string           `json:"ageRange,omitempty"`
	BirthDate        *time.Time       `json:"birthDate,omitempty"`
	CreatedAt        time.Time        `json:"createdAt"`
}

// MemberFilter narrows List queries. Zero values mean "no constraint".
type MemberFilter struct {
	Status           MemberStatus
	ConversionStatus ConversionStatus
	ZoneID           string
	CellID           string
	Gender           string
	AgeRange         string
	Search           string
	FirstVisitStart  *time.Time
	FirstVisitEnd    *time.Time
	LastVisitStart   *time.Time
	LastVisitEnd     *time.Time
	Limit            int
	Offset           int
}
