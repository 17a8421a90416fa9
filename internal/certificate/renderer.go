// Package certificate renders course completion certificates as PNG images
package certificate

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// Image size in pixels
const (
	Width  = 1400
	Height = 900
)

var (
	navy  = color.RGBA{R: 0x1f, G: 0x2a, B: 0x5a, A: 0xff}
	gold  = color.RGBA{R: 0xb8, G: 0x8a, B: 0x2e, A: 0xff}
	gray  = color.RGBA{R: 0x55, G: 0x55, B: 0x55, A: 0xff}
	black = color.RGBA{R: 0x11, G: 0x11, B: 0x11, A: 0xff}
)

// Data is the content printed on a certificate
type Data struct {
	StudentName       string
	CourseTitle       string
	MentorName        string
	CertificateNumber string
	IssuedAt          time.Time
}

type faces struct {
	title   font.Face
	heading font.Face
	body    font.Face
	italic  font.Face
	small   font.Face
}

// Renderer draws certificates with the Go fonts
type Renderer struct {
	faces faces
}

// NewRenderer parses the embedded fonts
func NewRenderer() (*Renderer, error) {
	bold, err := opentype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse bold font: %w", err)
	}
	regular, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse regular font: %w", err)
	}
	italic, err := opentype.Parse(goitalic.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse italic font: %w", err)
	}

	newFace := func(f *opentype.Font, size float64) (font.Face, error) {
		return opentype.NewFace(f, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingFull})
	}

	var r Renderer
	specs := []struct {
		dst  *font.Face
		font *opentype.Font
		size float64
	}{
		{&r.faces.title, bold, 64},
		{&r.faces.heading, bold, 48},
		{&r.faces.body, regular, 28},
		{&r.faces.italic, italic, 28},
		{&r.faces.small, regular, 22},
	}
	for _, spec := range specs {
		face, err := newFace(spec.font, spec.size)
		if err != nil {
			return nil, fmt.Errorf("failed to create font face: %w", err)
		}
		*spec.dst = face
	}

	return &r, nil
}

// Render draws the certificate and returns PNG bytes
func (r *Renderer) Render(data Data) ([]byte, error) {
	img := image.NewRGBA(image.Rect(0, 0, Width, Height))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	// Double border
	drawFrame(img, 30, 12, navy)
	drawFrame(img, 58, 3, navy)

	r.centered(img, r.faces.title, navy, 210, "Certificate of Completion")
	fillRect(img, image.Rect(Width/2-160, 240, Width/2+160, 244), gold)
	r.centered(img, r.faces.italic, gray, 320, "This certifies that")
	r.centered(img, r.faces.heading, black, 400, data.StudentName)
	r.centered(img, r.faces.italic, gray, 470, "has successfully completed")
	r.centered(img, r.faces.heading, navy, 550, data.CourseTitle)

	if data.MentorName != "" {
		r.centered(img, r.faces.body, black, 620, "Mentor: "+data.MentorName)
	}

	r.centered(img, r.faces.small, gray, 740, "Issued on "+data.IssuedAt.UTC().Format("January 2, 2006"))
	r.centered(img, r.faces.small, gray, 780, "Certificate No. "+data.CertificateNumber)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode certificate: %w", err)
	}

	return buf.Bytes(), nil
}

// centered draws text horizontally centred with its baseline at y
func (r *Renderer) centered(img draw.Image, face font.Face, c color.Color, y int, text string) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: face,
	}
	width := d.MeasureString(text).Round()
	d.Dot = fixed.P((Width-width)/2, y)
	d.DrawString(text)
}

func fillRect(img draw.Image, rect image.Rectangle, c color.Color) {
	draw.Draw(img, rect, image.NewUniform(c), image.Point{}, draw.Src)
}

// drawFrame draws a rectangular frame inset by margin with the given thickness
func drawFrame(img draw.Image, margin, thickness int, c color.Color) {
	outer := image.Rect(margin, margin, Width-margin, Height-margin)
	fillRect(img, image.Rect(outer.Min.X, outer.Min.Y, outer.Max.X, outer.Min.Y+thickness), c)
	fillRect(img, image.Rect(outer.Min.X, outer.Max.Y-thickness, outer.Max.X, outer.Max.Y), c)
	fillRect(img, image.Rect(outer.Min.X, outer.Min.Y, outer.Min.X+thickness, outer.Max.Y), c)
	fillRect(img, image.Rect(outer.Max.X-thickness, outer.Min.Y, outer.Max.X, outer.Max.Y), c)
}

// NewNumber returns a certificate number of the form MN-XXXXXXXX
func NewNumber() string {
	id := strings.ReplaceAll(uuid.New().String(), "-", "")
	return "MN-" + strings.ToUpper(id[:8])
}

// FileName returns the storage file name of a certificate. The number keeps
// names of certificates issued in the same second apart.
func FileName(userID, courseID int, number string, issuedAt time.Time) string {
	return fmt.Sprintf("certificate_%d_%d_%d_%s.png", userID, courseID, issuedAt.Unix(), number)
}
