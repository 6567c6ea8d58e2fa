package model

import (
	"fmt"
	"strings"
	"time"
)

// LostItem is a reported lost item. Image fields stay nil until an upload
// succeeds.
type LostItem struct {
	ID             int64     `json:"id" db:"id"`
	UserID         *int64    `json:"user_id" db:"user_id"`
	Title          string    `json:"title" db:"title"`
	Description    string    `json:"description" db:"description"`
	Location       string    `json:"location" db:"location"`
	DateLost       string    `json:"date_lost" db:"date_lost"`
	Contact        string    `json:"contact" db:"contact"`
	Status         string    `json:"status" db:"status"`
	ImagePath      *string   `json:"image_path" db:"image_path"`
	ImageURL       *string   `json:"image_url" db:"image_url"`
	FoundImagePath *string   `json:"found_image_path" db:"found_image_path"`
	FoundImageURL  *string   `json:"found_image_url" db:"found_image_url"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

// Item statuses.
const (
	ItemStatusLost  = "lost"
	ItemStatusFound = "found"
)

// MaxDescriptionLength bounds item descriptions.
const MaxDescriptionLength = 10000

// DateLayout is the storage format of LostItem.DateLost.
const DateLayout = "2006-01-02"

// ValidStatus reports whether status is a known item status.
func ValidStatus(status string) bool {
	return status == ItemStatusLost || status == ItemStatusFound
}

// ParseDate accepts a calendar date (2006-01-02) or an RFC 3339 timestamp and
// returns it in DateLayout.
func ParseDate(value string) (string, error) {
	value = strings.TrimSpace(value)
	if t, err := time.Parse(DateLayout, value); err == nil {
		return t.Format(DateLayout), nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.Format(DateLayout), nil
	}
	return "", fmt.Errorf("must be a valid date (YYYY-MM-DD)")
}

// ItemFields holds item attributes as submitted by a client. A nil field was
// not supplied.
type ItemFields struct {
	Title       *string `json:"title" validate:"required,min=1,max=255"`
	Description *string `json:"description" validate:"required,min=1,max=10000"`
	Location    *string `json:"location" validate:"required,min=1,max=255"`
	DateLost    *string `json:"date_lost" validate:"required,date"`
	Contact     *string `json:"contact" validate:"required,min=1,max=255"`
	Status      *string `json:"status" validate:"omitnil,oneof=lost found"`
}

// Validate checks the fields, trimming text and normalizing DateLost in
// place. With requireAll set every field needed to create an item must be
// present; otherwise only supplied fields are checked.
func (f *ItemFields) Validate(requireAll bool) ValidationErrors {
	supplied := []string{}
	for name, v := range map[string]*string{
		"Title":       f.Title,
		"Description": f.Description,
		"Location":    f.Location,
		"DateLost":    f.DateLost,
		"Contact":     f.Contact,
		"Status":      f.Status,
	} {
		if v != nil {
			*v = strings.TrimSpace(*v)
			supplied = append(supplied, name)
		}
	}

	var errs ValidationErrors
	if requireAll {
		errs = Validate(f)
	} else {
		errs = ValidatePartial(f, supplied...)
	}

	if _, bad := errs["date_lost"]; !bad && f.DateLost != nil {
		*f.DateLost, _ = ParseDate(*f.DateLost)
	}
	return errs
}
