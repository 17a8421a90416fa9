package models

// Mentor is a user with role MENTOR and a teaching profile
type Mentor struct {
	ID            int    `json:"id"`
	UserID        int    `json:"userId"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	Expertise     string `json:"expertise"`
	Bio           string `json:"bio"`
	ImageURL      string `json:"imageUrl"`
	CoursesCount  int    `json:"coursesCount"`
	StudentsCount int    `json:"studentsCount"`
}

// MentorRequest is the "mentor" JSON part of admin mentor create/update forms
type MentorRequest struct {
	Name      string `json:"name" validate:"required,max=255"`
	Email     string `json:"email" validate:"required,email,max=255"`
	Password  string `json:"password" validate:"omitempty,min=6,max=72"`
	Expertise string `json:"expertise" validate:"max=255"`
	Bio       string `json:"bio"`
}

// MentorCourseStats is one row of the mentor dashboard
type MentorCourseStats struct {
	CourseID           int     `json:"courseId"`
	Title              string  `json:"title"`
	EnrolledStudents   int     `json:"enrolledStudents"`
	AverageProgress    float64 `json:"averageProgress"`
	CertificatesIssued int     `json:"certificatesIssued"`
}

// MentorDashboard summarises the caller's courses
type MentorDashboard struct {
	Mentor  Mentor              `json:"mentor"`
	Courses []MentorCourseStats `json:"courses"`
}
