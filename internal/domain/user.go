package domain

import "time"

// User is an account allowed to import into or wipe the database.
type User struct {
	ID             uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name           string    `gorm:"column:name;not null;uniqueIndex:uq_user_name" json:"name"`
	HashedPassword string    `gorm:"column:hashed_password;not null" json:"-"`
	CreatedAt      time.Time `gorm:"not null" json:"createdAt"`
}

func (User) TableName() string { return "user" }
