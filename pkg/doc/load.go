package doc

import (
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/Ickli/gostdocx/pkg/style"
)

// LoadFile reads a document from fsys, choosing the importer by extension:
// .md and .markdown are markdown, .json and .adf are ADF.
func LoadFile(fsys fs.FS, name string, sheet *style.Sheet) (*Document, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(path.Ext(name)) {
	case ".md", ".markdown":
		d := FromMarkdown(data, sheet)
		for _, img := range d.Images() {
			if !IsRemote(img.Path) && !path.IsAbs(img.Path) {
				img.Source = path.Join(path.Dir(name), img.Path)
			}
		}
		return d, nil
	case ".json", ".adf":
		d, err := FromADF(data, sheet)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		return d, nil
	}
	return nil, fmt.Errorf("%s: unsupported document type %q", name, path.Ext(name))
}
