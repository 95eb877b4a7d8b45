package model

import "time"

const (
	RoleFarmer = "farmer"
	RoleAdmin  = "admin"
)

const (
	StatusPending  = "Pending"
	StatusApproved = "Approved"
	StatusRejected = "Rejected"
)

type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type PowerRequest struct {
	ID            string
	FarmerID      string
	FarmerName    string
	Area          string
	PowerRequired float64
	Purpose       string
	Status        string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
