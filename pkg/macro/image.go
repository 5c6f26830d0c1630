package macro

import (
	"errors"
	"strconv"
	"strings"

	"github.com/Ickli/gostdocx/pkg/doc"
)

// image inserts a picture as its own paragraph.
type image struct {
	bare
	in  *Interpreter
	img *doc.Image
}

func newImage(in *Interpreter, args []string) (Handler, error) {
	if err := requireArgs(args, 1, "image PATH [WIDTH [HEIGHT]]"); err != nil {
		return nil, err
	}
	if len(args) > 3 {
		return nil, errorf(ErrArity, "usage: image PATH [WIDTH [HEIGHT]]")
	}

	var size [2]doc.Length
	for i, s := range args[1:] {
		l, err := doc.ParseLength(s)
		if err != nil {
			return nil, wrap(ErrUsage, err)
		}
		size[i] = l
	}

	fi, err := in.Stat(args[0])
	if err != nil {
		return nil, err
	}
	if fi.IsDir() {
		return nil, errorf(ErrResource, "%s is a directory", args[0])
	}

	return &image{
		bare: bare{NameImage},
		in:   in,
		img:  &doc.Image{Path: args[0], Source: in.Resolve(args[0]), Width: size[0], Height: size[1]},
	}, nil
}

func (h *image) Finalize() error {
	p, err := h.in.Receiver().AddParagraph("", StyleImage)
	if err != nil {
		return err
	}
	p.AddImage(h.img)
	return nil
}

// imageCaption numbers and writes a figure caption. In stick mode the
// caption continues the preceding paragraph, usually the image itself.
type imageCaption struct {
	in    *Interpreter
	stick bool
	num   int
	lines []string
}

func newImageCaption(in *Interpreter, args []string) (Handler, error) {
	h := &imageCaption{in: in, stick: in.Options().StickCaptions}
	if len(args) > 0 {
		switch args[0] {
		case "stick":
			h.stick = true
		case "separate":
			h.stick = false
		default:
			return nil, errorf(ErrUsage, "caption mode must be stick or separate, got %q", args[0])
		}
	}
	// Numbers are taken in source order, before any nested content runs.
	h.num = in.Counters().NextCaption()
	return h, nil
}

func (h *imageCaption) Name() string { return NameImageCaption }

func (h *imageCaption) Consume(line Line) error {
	h.lines = append(h.lines, line.Text)
	return nil
}

func (h *imageCaption) Finalize() error {
	sheet := h.in.Styles()
	text := sheet.CaptionPrefix + strconv.Itoa(h.num) + sheet.CaptionInfix + strings.Join(h.lines, "\n")
	r := h.in.Receiver()

	if !h.stick {
		_, err := r.AddParagraph(text, StyleImageCaption)
		return err
	}
	if _, err := r.AddRun("\n"+text, ""); err != nil {
		if errors.Is(err, doc.ErrNoParagraph) {
			return errorf(ErrState, "caption must directly follow a paragraph")
		}
		return err
	}
	return nil
}
