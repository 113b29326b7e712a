package pbr

import (
	"path/filepath"
	"strings"
)

// Format is an image container format.
type Format int

// Supported container formats.
const (
	FormatTGA = Format(iota + 1)
	FormatTIFF
	FormatPNG
)

// AllFormats lists every supported format in output order.
var AllFormats = []Format{FormatTGA, FormatTIFF, FormatPNG}

func (f Format) String() string {
	switch f {
	case FormatTGA:
		return "tga"
	case FormatTIFF:
		return "tif"
	case FormatPNG:
		return "png"
	default:
		return "unknown"
	}
}

// Ext returns the file extension written for the format, including the dot.
func (f Format) Ext() string {
	return "." + f.String()
}

// FormatFromExt maps a file extension, with or without the leading dot, to
// its format. The match is case-insensitive.
func FormatFromExt(ext string) (Format, bool) {
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "tga":
		return FormatTGA, true
	case "tif", "tiff":
		return FormatTIFF, true
	case "png":
		return FormatPNG, true
	}

	return 0, false
}

// FormatFromPath returns the format of path based on its extension.
func FormatFromPath(path string) (Format, error) {
	f, ok := FormatFromExt(filepath.Ext(path))
	if !ok {
		return 0, newErrorf(KindUnsupportedFormat, path, "unknown extension %q", filepath.Ext(path))
	}

	return f, nil
}

// ParseFormats parses a comma separated list of format names such as
// "tga,tif,png". Duplicates are ignored.
func ParseFormats(list string) ([]Format, error) {
	var formats []Format
	seen := make(map[Format]bool)

	for _, name := range strings.Split(list, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}

		f, ok := FormatFromExt(name)
		if !ok {
			return nil, newErrorf(KindUnsupportedFormat, "", "unknown format %q", name)
		}

		if !seen[f] {
			seen[f] = true
			formats = append(formats, f)
		}
	}

	if len(formats) == 0 {
		return nil, newErrorf(KindUnsupportedFormat, "", "no output formats given")
	}

	return formats, nil
}
