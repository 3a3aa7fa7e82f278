package models

import "time"

// User is a staff member authenticated by a client certificate common name
type User struct {
	ID         uint64    `gorm:"primaryKey;autoIncrement" json:"-"`
	UserID     string    `gorm:"column:userid;uniqueIndex;size:16;not null" json:"userid"`
	Name       string    `gorm:"size:255;not null" json:"name"`
	ShortName  string    `gorm:"column:shortname;size:64;not null" json:"shortname"`
	Roles      Roles     `gorm:"embedded;embeddedPrefix:role_" json:"roles"`
	Cert       string    `gorm:"uniqueIndex;size:255;not null" json:"-"`
	Deleted    bool      `gorm:"not null;default:false;index" json:"-"`
	CreatedBy  string    `gorm:"size:16;not null" json:"createdBy"`
	ModifiedBy string    `gorm:"size:16;not null" json:"modifiedBy"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// TableName overrides the table name for User
func (User) TableName() string {
	return "users"
}
