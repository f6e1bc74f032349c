package imgutil

import (
	"errors"
	"io"
	"strconv"
	"strings"

	exif "github.com/dsoprea/go-exif/v3"
)

// OrientationUnknown is returned when a file carries no EXIF orientation tag.
const OrientationUnknown = 0

// ReadOrientation returns the EXIF Orientation tag (1-8) of rs, or
// OrientationUnknown when the file has no EXIF block or no such tag.
func ReadOrientation(rs io.ReadSeeker) (int, error) {
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return OrientationUnknown, err
	}

	tags, _, err := exif.GetFlatExifDataUniversalSearchWithReadSeeker(rs, nil, true)
	if err != nil {
		if isNoExif(err) {
			return OrientationUnknown, nil
		}
		return OrientationUnknown, err
	}

	for _, tag := range tags {
		if tag.TagName != "Orientation" {
			continue
		}
		value, convErr := strconv.Atoi(strings.TrimSpace(tag.FormattedFirst))
		if convErr != nil || value < 1 || value > 8 {
			return OrientationUnknown, nil
		}
		return value, nil
	}

	return OrientationUnknown, nil
}

// DescribeOrientation renders an EXIF orientation value for humans.
func DescribeOrientation(o int) string {
	switch o {
	case 1:
		return "normal"
	case 2:
		return "mirrored horizontally"
	case 3:
		return "rotated 180"
	case 4:
		return "mirrored vertically"
	case 5:
		return "mirrored horizontally, rotated 270"
	case 6:
		return "rotated 90"
	case 7:
		return "mirrored horizontally, rotated 90"
	case 8:
		return "rotated 270"
	default:
		return "none"
	}
}

func isNoExif(err error) bool {
	if errors.Is(err, exif.ErrNoExif) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "no exif")
}
