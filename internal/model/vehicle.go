package model

import "time"

// Vehicle is a registered show entry.
type Vehicle struct {
	ID                 int64      `gorm:"primaryKey" json:"id"`
	EntryNumber        int        `gorm:"uniqueIndex;not null" json:"entry_number"`
	OwnerName          string     `gorm:"size:255;not null" json:"owner_name"`
	OwnerEmail         string     `gorm:"size:255;not null" json:"owner_email,omitempty"`
	OwnerPhone         *string    `gorm:"size:255" json:"owner_phone,omitempty"`
	City               string     `gorm:"size:255" json:"city"`
	State              string     `gorm:"size:255" json:"state"`
	VehicleYear        int        `gorm:"not null" json:"vehicle_year"`
	VehicleMake        string     `gorm:"size:255;not null" json:"vehicle_make"`
	VehicleModel       string     `gorm:"size:255;not null" json:"vehicle_model"`
	VehicleDescription *string    `gorm:"size:255" json:"vehicle_description,omitempty"`
	ImageURL1          *string    `gorm:"column:image_url_1;size:1024" json:"image_url_1,omitempty"`
	ImageURL2          *string    `gorm:"column:image_url_2;size:1024" json:"image_url_2,omitempty"`
	ImageURL3          *string    `gorm:"column:image_url_3;size:1024" json:"image_url_3,omitempty"`
	ImageURL4          *string    `gorm:"column:image_url_4;size:1024" json:"image_url_4,omitempty"`
	ImageURL5          *string    `gorm:"column:image_url_5;size:1024" json:"image_url_5,omitempty"`
	Photos             []string   `gorm:"serializer:json;type:text" json:"photos"`
	CheckedIn          bool       `gorm:"not null;default:false;index" json:"checked_in"`
	CheckInTime        *time.Time `json:"check_in_time,omitempty"`
	Approved           bool       `gorm:"not null;default:false" json:"approved"`
	ProfileURL         string     `gorm:"size:255" json:"profile_url"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// SetPhotos stores urls in both the photos list and the numbered image
// columns. URLs past the fifth only land in the list.
func (v *Vehicle) SetPhotos(urls []string) {
	v.Photos = append([]string(nil), urls...)
	slots := []**string{&v.ImageURL1, &v.ImageURL2, &v.ImageURL3, &v.ImageURL4, &v.ImageURL5}
	for i, slot := range slots {
		if i < len(urls) {
			u := urls[i]
			*slot = &u
		} else {
			*slot = nil
		}
	}
}

// PrimaryImageURL returns the first photo, or "" if the vehicle has none.
func (v *Vehicle) PrimaryImageURL() string {
	if v.ImageURL1 != nil && *v.ImageURL1 != "" {
		return *v.ImageURL1
	}
	if len(v.Photos) > 0 {
		return v.Photos[0]
	}
	return ""
}
