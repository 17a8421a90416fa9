package client

import (
	"context"
	"math"

	"github.com/mentornest/backend/internal/models"
)

// LoginPath is where guarded views send visitors without a suitable session
const LoginPath = "/login"

// ClampProgress bounds a server progress fraction to [0,1]. NaN and negative
// values count as no progress.
func ClampProgress(raw float64) float64 {
	switch {
	case math.IsNaN(raw) || raw <= 0:
		return 0
	case raw >= 1:
		return 1
	default:
		return raw
	}
}

// ProgressPercent converts a progress fraction to a whole percentage in [0,100]
func ProgressPercent(raw float64) int {
	return int(math.Round(ClampProgress(raw) * 100))
}

// EffectiveProgress returns the progress to display. A server value above 1
// is distrusted and replaced by completed/total when the counts are known.
func EffectiveProgress(raw float64, completed, total int) float64 {
	if raw > 1 && total > 0 {
		return ClampProgress(float64(completed) / float64(total))
	}
	return ClampProgress(raw)
}

// FilterCourses applies the catalog search and category filters the server
// uses for GET /courses to an already loaded list
func FilterCourses(courses []models.Course, search, category string) []models.Course {
	return models.FilterCourses(courses, search, category)
}

// Session is the signed-in state of an application
type Session struct {
	Token string
	User  *models.UserResponse
}

// Authenticated reports whether the session has both a token and a user
func (s Session) Authenticated() bool {
	return s.Token != "" && s.User != nil
}

// LoadSession re-fetches the profile behind the stored token. Without a token
// it returns an empty session and no request is made.
func (c *Client) LoadSession(ctx context.Context) (Session, error) {
	token := c.Token()
	if token == "" {
		return Session{}, nil
	}

	user, err := c.Me(ctx)
	if err != nil {
		return Session{}, err
	}

	return Session{Token: c.Token(), User: user}, nil
}

// Guard decides whether a view restricted to roles may be shown. With no
// roles any authenticated session passes. Otherwise the redirect target is
// returned with ok set to false.
func Guard(session Session, roles ...models.Role) (redirect string, ok bool) {
	if !session.Authenticated() {
		return LoginPath, false
	}
	if len(roles) == 0 {
		return "", true
	}
	for _, role := range roles {
		if session.User.Role == role {
			return "", true
		}
	}
	return LoginPath, false
}

// CertificateAvailability tells a view whether certificate actions are enabled
type CertificateAvailability struct {
	Available bool
	Message   string
}

// CertificateState gates certificate view and download on a finished course
func CertificateState(progress float64) CertificateAvailability {
	if ClampProgress(progress) < 1 {
		return CertificateAvailability{Message: "Complete all modules to earn your certificate"}
	}
	return CertificateAvailability{Available: true, Message: "Certificate ready"}
}

// CallToAction is the empty-state prompt shown instead of a list
type CallToAction struct {
	Message string
	Label   string
	Path    string
}

// CourseSummary is one enrolled course as shown on the dashboard
type CourseSummary struct {
	CourseID       int
	Title          string
	MentorName     string
	Percent        int
	CertificateURL *string
}

// Dashboard summarises a student's enrollments
type Dashboard struct {
	Empty          bool
	CallToAction   *CallToAction
	Courses        []CourseSummary
	Completed      int
	InProgress     int
	AveragePercent int
}

var browseCourses = CallToAction{
	Message: "No courses enrolled yet",
	Label:   "Browse Courses",
	Path:    "/courses",
}

// BuildDashboard summarises enrollments. Zero enrollments give an empty
// dashboard with a call-to-action.
func BuildDashboard(enrollments []models.EnrollmentResponse) Dashboard {
	if len(enrollments) == 0 {
		cta := browseCourses
		return Dashboard{Empty: true, CallToAction: &cta, Courses: []CourseSummary{}}
	}

	d := Dashboard{Courses: make([]CourseSummary, 0, len(enrollments))}
	total := 0.0
	for _, e := range enrollments {
		progress := EffectiveProgress(e.Progress, e.CompletedModules, e.TotalModules)
		total += progress
		if progress >= 1 {
			d.Completed++
		} else if progress > 0 {
			d.InProgress++
		}
		d.Courses = append(d.Courses, CourseSummary{
			CourseID:       e.CourseID,
			Title:          e.CourseTitle,
			MentorName:     e.MentorName,
			Percent:        ProgressPercent(progress),
			CertificateURL: e.CertificateURL,
		})
	}
	d.AveragePercent = ProgressPercent(total / float64(len(enrollments)))

	return d
}

// LoadDashboard fetches the student's enrollments and summarises them. On
// error the returned dashboard is the empty one so views can still render.
func (c *Client) LoadDashboard(ctx context.Context) (Dashboard, error) {
	enrollments, err := c.MyCourses(ctx)
	if err != nil {
		return BuildDashboard(nil), err
	}
	return BuildDashboard(enrollments), nil
}
