package viewer

import (
	"hash/fnv"
	"math/rand/v2"
	"strconv"

	"github.com/dustin/go-humanize"
)

var (
	resolutions = []string{"1920 x 1080", "2560 x 1440", "1200 x 800", "3840 x 2160"}
	formats     = []string{"WebP", "PNG", "JPEG"}
	colorSpaces = []string{"sRGB", "Display P3", "Adobe RGB"}
)

// TechnicalData is the illustrative metadata shown in the fullscreen info panel.
type TechnicalData struct {
	Resolution string
	Format     string
	ColorSpace string
	FileSize   string
}

// Technical derives the metadata for one slide. It depends only on
// (projectID, index) so nothing needs caching across slide changes.
func Technical(projectID string, index int) TechnicalData {
	h := fnv.New64a()
	_, _ = h.Write([]byte(projectID))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(strconv.Itoa(index)))
	seed := h.Sum64()
	r := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	mb := 0.5 + r.Float64()*2
	return TechnicalData{
		Resolution: resolutions[r.IntN(len(resolutions))],
		Format:     formats[r.IntN(len(formats))],
		ColorSpace: colorSpaces[r.IntN(len(colorSpaces))],
		FileSize:   humanize.Bytes(uint64(mb * 1e6)),
	}
}
