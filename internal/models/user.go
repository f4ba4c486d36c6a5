package models

import "time"

type UserRole string

const (
	RoleCustomer UserRole = "Customer"
	RoleAdmin    UserRole = "Admin"
)

// User represents the application user account.
type User struct {
	ID              string     `bson:"_id" json:"id"`
	Email           string     `bson:"email" json:"email"`
	Name            string     `bson:"name" json:"name"`
	PasswordHash    string     `bson:"passwordHash" json:"-"`
	Role            UserRole   `bson:"role" json:"role"`
	Address         string     `bson:"address,omitempty" json:"address,omitempty"`
	PhoneNumber     string     `bson:"phoneNumber,omitempty" json:"phoneNumber,omitempty"`
	IsEmailVerified bool       `bson:"isEmailVerified" json:"isEmailVerified"`
	CreatedAt       time.Time  `bson:"createdAt" json:"createdAt"`
	ModifiedAt      *time.Time `bson:"modifiedAt,omitempty" json:"modifiedAt,omitempty"`
}
