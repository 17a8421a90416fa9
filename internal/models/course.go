package models

import "time"

// Course is a sellable course
type Course struct {
	ID             int       `json:"id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Price          float64   `json:"price"`
	ImageURL       string    `json:"imageUrl"`
	Category       string    `json:"category"`
	MentorID       *int      `json:"mentorId"`
	MentorName     string    `json:"mentorName"`
	MentorImageURL string    `json:"mentorImageUrl"`
	CreatedAt      time.Time `json:"createdAt"`
}

// IsFree reports whether the course can be enrolled in without payment
func (c *Course) IsFree() bool {
	return c.Price <= 0
}

// CourseRequest is used by admin create and update
type CourseRequest struct {
	Title       string  `json:"title" validate:"required,max=255"`
	Description string  `json:"description"`
	Price       float64 `json:"price" validate:"gte=0"`
	ImageURL    string  `json:"imageUrl" validate:"max=512"`
	Category    string  `json:"category" validate:"max=100"`
	MentorID    *int    `json:"mentorId" validate:"omitempty,gt=0"`
}

// Module is a video lesson inside a course
type Module struct {
	ID          int    `json:"id"`
	CourseID    int    `json:"courseId"`
	Title       string `json:"title"`
	VideoURL    string `json:"videoUrl"`
	Summary     string `json:"summary"`
	ResourceURL string `json:"resourceUrl"`
	Position    int    `json:"position"`
}

// ModuleRequest is used by admin create and update
type ModuleRequest struct {
	Title       string `json:"title" validate:"required,max=255"`
	VideoURL    string `json:"videoUrl" validate:"max=512"`
	Summary     string `json:"summary"`
	ResourceURL string `json:"resourceUrl" validate:"max=512"`
	Position    int    `json:"position" validate:"gte=0"`
}
