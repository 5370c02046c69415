package user

import "time"

type Role string

const (
	RoleHR       Role = "hr"       // Registers assets and reviews requests for a company
	RoleEmployee Role = "employee" // Requests assets from the HR they are affiliated with
)

type User struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	Role        Role       `json:"role"`
	Name        string     `json:"name"`
	Photo       string     `json:"photo,omitempty"`
	HREmail     *string    `json:"hrEmail,omitempty"`
	CompanyName *string    `json:"companyName,omitempty"`
	CompanyLogo *string    `json:"companyLogo,omitempty"`
	JoinedDate  *time.Time `json:"joinedDate,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// IsHR checks if user manages a company
func (u *User) IsHR() bool {
	return u.Role == RoleHR
}

// IsAffiliated checks if an employee belongs to an HR's team
func (u *User) IsAffiliated() bool {
	return u.HREmail != nil && *u.HREmail != ""
}

// Affiliation is what joining a team stamps on an employee.
type Affiliation struct {
	HREmail     string
	CompanyName string
	CompanyLogo string
	JoinedDate  time.Time
}

// Filter narrows user listings. Zero values do not filter.
type Filter struct {
	HREmail      *string
	Unaffiliated bool
	Role         *Role
}
