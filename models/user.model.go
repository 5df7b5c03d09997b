package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

// Address represents an entry of the user's address book
type Address struct {
	ID                  string `bson:"id" json:"id"`
	ReceiverName        string `bson:"receiver_name" json:"receiverName" validate:"required"`
	ReceiverCountryCode string `bson:"receiver_country_code" json:"receiverCountryCode" validate:"required"`
	ReceiverPhoneNumber string `bson:"receiver_phone_number" json:"receiverPhoneNumber" validate:"required"`
	AddressLineOne      string `bson:"address_line_one" json:"addressLineOne" validate:"required"`
	AddressLineTwo      string `bson:"address_line_two,omitempty" json:"addressLineTwo,omitempty"`
	Postcode            string `bson:"postcode" json:"postcode" validate:"required"`
	City                string `bson:"city" json:"city" validate:"required"`
	State               string `bson:"state" json:"state" validate:"required"`
	Country             string `bson:"country" json:"country" validate:"required"`
	IsDefault           bool   `bson:"is_default" json:"isDefault"`
	Tag                 string `bson:"tag,omitempty" json:"tag,omitempty"`
}

// AccountDetails is the editable part of the user profile
type AccountDetails struct {
	FullName    string `bson:"full_name" json:"fullName" validate:"required"`
	Gender      string `bson:"gender" json:"gender" validate:"required,oneof=M F"`
	Email       string `bson:"email" json:"email" validate:"required,email"`
	PhoneNumber string `bson:"phone_number" json:"phoneNumber" validate:"required,numeric,min=7,max=15"`
	DOB         string `bson:"dob" json:"dob" validate:"required,datetime=2006-01-02"`
}

// User represents a record of the user store
type User struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	AccountDetails    `bson:",inline"`
	Password          string    `bson:"password,omitempty" json:"-"`
	Addresses         []Address `bson:"addresses" json:"addresses"`
	Roles             []string  `bson:"roles" json:"roles"`
	IsVerified        bool      `bson:"is_verified" json:"is_verified"`
	VerificationToken string    `bson:"verification_token" json:"-"`
}

// HasRole reports whether the user holds role
func (u User) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// UserDetails is the signed-in user as kept in the state tree
type UserDetails struct {
	UID      string `json:"uid"`
	DOB      string `json:"dob"`
	Gender   string `json:"gender"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}

// Details converts a user record into the state-tree representation
func (u User) Details() UserDetails {
	return UserDetails{
		UID:      u.ID.Hex(),
		DOB:      u.DOB,
		Gender:   u.Gender,
		FullName: u.FullName,
		Email:    u.Email,
	}
}
