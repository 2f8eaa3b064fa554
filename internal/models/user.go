package models

import "time"

// User is a staff member who can hold and move documents.
type User struct {
	ID            string           `db:"id" json:"id"`
	Username      string           `db:"username" json:"username"`
	FullName      string           `db:"full_name" json:"fullName"`
	Designation   string           `db:"designation" json:"designation,omitempty"`
	Email         *string          `db:"email" json:"email,omitempty"`
	Active        bool             `db:"active" json:"active"`
	IsSuperuser   bool             `db:"is_superuser" json:"isSuperuser"`
	IsSectionHead bool             `db:"is_section_head" json:"isSectionHead"`
	SectionID     *string          `db:"section_id" json:"sectionId,omitempty"`
	SectionName   *string          `db:"section_name" json:"sectionName,omitempty"`
	SubSectionID  *string          `db:"sub_section_id" json:"subSectionId,omitempty"`
	Roles         []RoleAssignment `db:"-" json:"roles"`
	CreatedAt     time.Time        `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time        `db:"updated_at" json:"updatedAt"`
}

// Section returns the user's section id or "" when unassigned.
func (u *User) Section() string {
	if u == nil || u.SectionID == nil {
		return ""
	}
	return *u.SectionID
}

// Section is an organisational unit documents move between.
type Section struct {
	ID   string `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
	Code string `db:"code" json:"code"`
}

// SubSection belongs to exactly one section.
type SubSection struct {
	ID        string `db:"id" json:"id"`
	SectionID string `db:"section_id" json:"sectionId"`
	Name      string `db:"name" json:"name"`
}

// Recipient is a valid forwarding target.
type Recipient struct {
	UserID        string  `json:"userId"`
	FullName      string  `json:"fullName"`
	Designation   string  `json:"designation,omitempty"`
	SectionID     string  `json:"sectionId"`
	SectionName   string  `json:"sectionName"`
	SubSectionID  *string `json:"subSectionId,omitempty"`
	IsSectionHead bool    `json:"isSectionHead"`
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
