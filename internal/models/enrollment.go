package models

import "time"

// Enrollment links a student to a course
type Enrollment struct {
	ID             int       `json:"id"`
	UserID         int       `json:"userId"`
	CourseID       int       `json:"courseId"`
	CertificateURL *string   `json:"certificateUrl"`
	EnrolledAt     time.Time `json:"enrolledAt"`
}

// EnrollmentDetails is an enrollment joined with its course and module counts
type EnrollmentDetails struct {
	Enrollment
	StudentName      string
	StudentEmail     string
	CourseTitle      string
	CourseImageURL   string
	MentorName       string
	CompletedModules int
	TotalModules     int
}

// Progress returns completed/total in [0,1], 0 for a course without modules
func (d *EnrollmentDetails) Progress() float64 {
	return ComputeProgress(d.CompletedModules, d.TotalModules)
}

// ComputeProgress returns completed/total clamped to [0,1], 0 when total is 0
func ComputeProgress(completed, total int) float64 {
	if total <= 0 || completed <= 0 {
		return 0
	}
	if completed >= total {
		return 1
	}
	return float64(completed) / float64(total)
}

// EnrollmentResponse is the student's view of an enrollment
type EnrollmentResponse struct {
	ID               int       `json:"id"`
	CourseID         int       `json:"courseId"`
	CourseTitle      string    `json:"courseTitle"`
	CourseImageURL   string    `json:"courseImageUrl"`
	MentorName       string    `json:"mentorName"`
	Progress         float64   `json:"progress"`
	CompletedModules int       `json:"completedModules"`
	TotalModules     int       `json:"totalModules"`
	CertificateURL   *string   `json:"certificateUrl"`
	EnrolledAt       time.Time `json:"enrolledAt"`
}

// ToResponse converts details to the student's view
func (d *EnrollmentDetails) ToResponse() EnrollmentResponse {
	return EnrollmentResponse{
		ID:               d.ID,
		CourseID:         d.CourseID,
		CourseTitle:      d.CourseTitle,
		CourseImageURL:   d.CourseImageURL,
		MentorName:       d.MentorName,
		Progress:         d.Progress(),
		CompletedModules: d.CompletedModules,
		TotalModules:     d.TotalModules,
		CertificateURL:   d.CertificateURL,
		EnrolledAt:       d.EnrolledAt,
	}
}

// ModulesWithStatus lists a course's modules with the caller's completions
type ModulesWithStatus struct {
	Modules          []Module `json:"modules"`
	CompletedModules []int    `json:"completedModules"`
	CertificateURL   *string  `json:"certificateUrl"`
}

// ProgressResponse carries a progress fraction
type ProgressResponse struct {
	Progress float64 `json:"progress"`
}

// Certificate is an issued course completion certificate
type Certificate struct {
	ID                int       `json:"id"`
	UserID            int       `json:"userId"`
	CourseID          int       `json:"courseId"`
	CertificateNumber string    `json:"certificateNumber"`
	URL               string    `json:"certificateUrl"`
	IssuedAt          time.Time `json:"issuedAt"`
	CourseTitle       string    `json:"courseTitle,omitempty"`
	MentorName        string    `json:"mentorName,omitempty"`
}

// EnrollmentFilter narrows enrollment detail queries, nil fields are ignored
type EnrollmentFilter struct {
	UserID   *int
	CourseID *int
	MentorID *int
}
