package profile

import "github.com/pharmalink/pharmacy-pos/pkg/types"

// User is the staff member half of the profile.
type User struct {
	ID    types.ID `json:"id,omitempty"`
	Name  string   `json:"name"`
	Email string   `json:"email"`
	Role  string   `json:"role,omitempty"`
}

// Pharmacy is the pharmacy half of the profile.
type Pharmacy struct {
	ID            types.ID `json:"id,omitempty"`
	Name          string   `json:"name"`
	Address       string   `json:"address"`
	Phone         string   `json:"phone"`
	LicenseNumber string   `json:"licenseNumber"`
	State         string   `json:"state,omitempty"`
	LGA           string   `json:"lga,omitempty"`
	Ward          string   `json:"ward,omitempty"`
	Latitude      float64  `json:"latitude"`
	Longitude     float64  `json:"longitude"`
	Status        string   `json:"status,omitempty"`
}

// Profile is the signed-in user together with their pharmacy.
type Profile struct {
	User     User     `json:"user"`
	Pharmacy Pharmacy `json:"pharmacy"`
}

// UpdateRequest edits the editable profile fields. The license number may be blank.
type UpdateRequest struct {
	UserName        string `json:"userName" validate:"required"`
	UserEmail       string `json:"userEmail" validate:"required,email"`
	PharmacyName    string `json:"pharmacyName" validate:"required"`
	PharmacyAddress string `json:"pharmacyAddress" validate:"required"`
	PharmacyPhone   string `json:"pharmacyPhone" validate:"required"`
	PharmacyLicense string `json:"pharmacyLicense"`
}

type updateUserBody struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type updatePharmacyBody struct {
	Name          string  `json:"name"`
	Address       string  `json:"address"`
	Phone         string  `json:"phone"`
	LicenseNumber string  `json:"licenseNumber"`
	State         string  `json:"state"`
	LGA           string  `json:"lga"`
	Ward          string  `json:"ward"`
	Latitude      float64 `json:"latitude"`
	Longitude     float64 `json:"longitude"`
}

type updateBody struct {
	User     updateUserBody     `json:"user"`
	Pharmacy updatePharmacyBody `json:"pharmacy"`
}
