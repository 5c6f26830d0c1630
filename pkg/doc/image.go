package doc

import (
	"fmt"
	"math"
	"path"
	"strconv"
	"strings"
)

// Length is a distance in English Metric Units.
type Length int64

// EMU per unit.
const (
	EMU        Length = 1
	Centimetre Length = 360000
	Millimetre Length = 36000
	Inch       Length = 914400
	Point      Length = 12700
	Pixel      Length = 9525
)

var lengthUnits = map[string]Length{
	"emu": EMU,
	"cm":  Centimetre,
	"mm":  Millimetre,
	"in":  Inch,
	"pt":  Point,
	"px":  Pixel,
}

// ParseLength parses a number with an optional unit suffix (cm, mm, in, pt,
// px, emu). A bare number is centimetres. "None" and the empty string are
// the zero length, meaning unset.
func ParseLength(s string) (Length, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "none") {
		return 0, nil
	}

	unit := Centimetre
	num := s
	for suffix, u := range lengthUnits {
		if strings.HasSuffix(strings.ToLower(s), suffix) {
			unit = u
			num = strings.TrimSpace(s[:len(s)-len(suffix)])
			break
		}
	}

	v, err := strconv.ParseFloat(num, 64)
	if err != nil || v <= 0 || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, fmt.Errorf("invalid length %q", s)
	}
	return Length(math.Round(v * float64(unit))), nil
}

// Pixels converts l to whole pixels at 96 DPI.
func (l Length) Pixels() int {
	return int(math.Round(float64(l) / float64(Pixel)))
}

// Image is an inline picture. Zero dimensions keep the natural size.
type Image struct {
	Path   string // as written in the source document
	Source string // file within the resource file system, empty for remote images
	Width  Length
	Height Length

	// Attachment is set once the image is stored as a page attachment;
	// renderers then reference it instead of Path.
	Attachment *Attachment
}

// Attachment names an image uploaded to a Confluence page.
type Attachment struct {
	Name       string
	FileID     string // media file ID, needed by ADF
	Collection string // media collection of the page, "contentId-<page ID>"
}

// IsRemote reports whether p points at a URL rather than a file.
func IsRemote(p string) bool {
	return strings.Contains(p, "://") || strings.HasPrefix(p, "data:")
}

// Images returns every image of d in document order, table cells included.
func (d *Document) Images() []*Image {
	var imgs []*Image
	collect := func(ps []*Paragraph) {
		for _, p := range ps {
			for _, r := range p.Runs {
				if r.Image != nil {
					imgs = append(imgs, r.Image)
				}
			}
		}
	}
	for _, b := range d.Blocks {
		switch b := b.(type) {
		case *Paragraph:
			collect([]*Paragraph{b})
		case *Table:
			for i := 0; i < b.Rows; i++ {
				for j := 0; j < b.Cols; j++ {
					if c, err := b.Cell(i, j); err == nil {
						collect(c.Paragraphs())
					}
				}
			}
		}
	}
	return imgs
}

// AttachmentNames gives every local image of d a file name unique within
// the page and returns the sources keyed by name. Images sharing a source
// share a name; different sources with the same base name get a numeric
// prefix.
func (d *Document) AttachmentNames() map[string]string {
	bySource := make(map[string]string)
	sources := make(map[string]string)
	for _, img := range d.Images() {
		if img.Source == "" {
			continue
		}
		name, ok := bySource[img.Source]
		if !ok {
			name = path.Base(img.Source)
			for n := 2; sources[name] != ""; n++ {
				name = fmt.Sprintf("%d-%s", n, path.Base(img.Source))
			}
			bySource[img.Source] = name
			sources[name] = img.Source
		}
		img.Attachment = &Attachment{Name: name}
	}
	return sources
}
