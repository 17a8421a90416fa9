package client

import (
	"context"

	"github.com/mentornest/backend/internal/models"
	"golang.org/x/sync/errgroup"
)

var finishCourse = CallToAction{
	Message: "No certificates earned yet",
	Label:   "Continue Learning",
	Path:    "/dashboard",
}

// CertificatesView lists the certificates a student has earned
type CertificatesView struct {
	Empty        bool
	CallToAction *CallToAction
	Certificates []models.Certificate
}

// BuildCertificatesView prepares the certificates view. Without enrollments
// the call-to-action points to the catalog, with enrollments but nothing
// earned it points back to the dashboard.
func BuildCertificatesView(certificates []models.Certificate, enrollments []models.EnrollmentResponse) CertificatesView {
	if len(certificates) > 0 {
		return CertificatesView{Certificates: certificates}
	}

	cta := finishCourse
	if len(enrollments) == 0 {
		cta = browseCourses
	}
	return CertificatesView{Empty: true, CallToAction: &cta, Certificates: []models.Certificate{}}
}

// LoadCertificatesView fetches certificates and enrollments together. On
// error the returned view is the empty one so it can still render.
func (c *Client) LoadCertificatesView(ctx context.Context) (CertificatesView, error) {
	var (
		certificates []models.Certificate
		enrollments  []models.EnrollmentResponse
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		certificates, err = c.Certificates(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		enrollments, err = c.MyCourses(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return BuildCertificatesView(nil, nil), err
	}

	return BuildCertificatesView(certificates, enrollments), nil
}

// Profile is the signed-in user with a summary of their learning
type Profile struct {
	User         models.UserResponse
	Enrolled     int
	Completed    int
	Certificates int
	Empty        bool
	CallToAction *CallToAction
}

// BuildProfile summarises enrollments for the profile view
func BuildProfile(user models.UserResponse, enrollments []models.EnrollmentResponse) Profile {
	d := BuildDashboard(enrollments)
	p := Profile{
		User:         user,
		Enrolled:     len(enrollments),
		Completed:    d.Completed,
		Empty:        d.Empty,
		CallToAction: d.CallToAction,
	}
	for _, e := range enrollments {
		if e.CertificateURL != nil {
			p.Certificates++
		}
	}
	return p
}

// LoadProfile fetches the profile and, for students, their enrollments. A
// failure to load enrollments leaves the empty-state summary and returns the
// error alongside it.
func (c *Client) LoadProfile(ctx context.Context) (*Profile, error) {
	user, err := c.Me(ctx)
	if err != nil {
		return nil, err
	}
	if user.Role != models.RoleStudent {
		return &Profile{User: *user}, nil
	}

	enrollments, err := c.MyCourses(ctx)
	if err != nil {
		p := BuildProfile(*user, nil)
		return &p, err
	}

	p := BuildProfile(*user, enrollments)
	return &p, nil
}
