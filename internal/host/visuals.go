package host

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"sort"
)

func writeThumbnail(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// DominantColors buckets opaque pixels into a 4-bit-per-channel grid and
// returns up to n of the most common buckets as #rrggbb strings.
func DominantColors(img image.Image, n int) []string {
	counts := make(map[uint16]int)
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, a := img.At(x, y).RGBA()
			if a < 0x8000 {
				continue
			}
			key := uint16(r>>12)<<8 | uint16(g>>12)<<4 | uint16(bl>>12)
			counts[key]++
		}
	}

	keys := make([]uint16, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})
	if len(keys) > n {
		keys = keys[:n]
	}

	colors := make([]string, 0, len(keys))
	for _, k := range keys {
		// expand each nibble to the middle of its bucket
		r := uint8(k>>8&0xf)<<4 | 0x8
		g := uint8(k>>4&0xf)<<4 | 0x8
		bl := uint8(k&0xf)<<4 | 0x8
		colors = append(colors, fmt.Sprintf("#%02x%02x%02x", r, g, bl))
	}
	return colors
}
