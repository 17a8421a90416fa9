package models

// AdminUserRequest is used by admin user create and update
type AdminUserRequest struct {
	Name     string `json:"name" validate:"required,max=255"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"omitempty,min=6,max=72"`
	Role     Role   `json:"role" validate:"omitempty,oneof=STUDENT"`
}

// AdminResetPasswordRequest sets a new password for a user
type AdminResetPasswordRequest struct {
	NewPassword string `json:"newPassword" validate:"required,min=6,max=72"`
}

// EnrollmentStats are platform-wide enrollment counters
type EnrollmentStats struct {
	Total          int
	Completed      int
	ActiveStudents int
}

// Analytics is the admin dashboard summary
type Analytics struct {
	TotalUsers         int     `json:"totalUsers"`
	TotalStudents      int     `json:"totalStudents"`
	TotalMentors       int     `json:"totalMentors"`
	TotalAdmins        int     `json:"totalAdmins"`
	TotalCourses       int     `json:"totalCourses"`
	TotalModules       int     `json:"totalModules"`
	TotalEnrollments   int     `json:"totalEnrollments"`
	ActiveStudents     int     `json:"activeStudents"`
	CompletedCourses   int     `json:"completedCourses"`
	InProgressCourses  int     `json:"inProgressCourses"`
	CertificatesIssued int     `json:"certificatesIssued"`
	TotalRevenue       float64 `json:"totalRevenue"`
	StudentPercentage  int     `json:"studentPercentage"`
	MentorPercentage   int     `json:"mentorPercentage"`
	AdminPercentage    int     `json:"adminPercentage"`
	CompletionRate     int     `json:"completionRate"`
}

// ProgressStatus describes how far a student is in a course
type ProgressStatus string

// ProgressStatus constants
const (
	ProgressCompleted  ProgressStatus = "completed"
	ProgressInProgress ProgressStatus = "in-progress"
	ProgressNotStarted ProgressStatus = "not-started"
)

// StudentProgressRow is one row of the admin student progress report
type StudentProgressRow struct {
	ID               int            `json:"id"`
	Name             string         `json:"name"`
	Email            string         `json:"email"`
	CourseTitle      string         `json:"courseTitle"`
	MentorName       string         `json:"mentorName"`
	Progress         int            `json:"progress"`
	CompletedModules int            `json:"completedModules"`
	TotalModules     int            `json:"totalModules"`
	Status           ProgressStatus `json:"status"`
	CertificateURL   *string        `json:"certificateUrl"`
}
