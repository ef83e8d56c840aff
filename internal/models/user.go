package models

import "strconv"

type User struct {
	BaseModel
	Email        string `gorm:"size:254;uniqueIndex:idx_users_email;not null"`
	Username     string `gorm:"size:150;uniqueIndex:idx_users_username;not null"`
	FirstName    string `gorm:"size:150;not null"`
	LastName     string `gorm:"size:150;not null"`
	PasswordHash string `gorm:"not null"`
	Avatar       string `gorm:"size:255"` // storage key, empty when unset
}

// Subject is the identifier used in tokens, logs and the access policy.
func (u *User) Subject() string {
	return strconv.FormatUint(uint64(u.ID), 10)
}
