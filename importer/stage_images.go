package importer

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/h2non/filetype"
	"github.com/lodestone3d/lodestone/scenegraph"
	_ "golang.org/x/image/webp"
)

// imageStage decodes every referenced image into RGBA8 pixels. A broken or
// unsupported image is a warning, not a failure; the texture stage
// substitutes a placeholder for any slot left empty here.
type imageStage struct {
	count int
}

var _ pipelineStage = &imageStage{}

func (s *imageStage) stage() Stage { return StageImages }

func (s *imageStage) prepare(st *importState) error {
	s.count = len(st.doc.Images)
	return nil
}

func (s *imageStage) total() int { return s.count }

func (s *imageStage) step(st *importState, i int) error {
	img := &st.doc.Images[i]

	raw, err := imageBytes(st, i, img)
	if err != nil {
		st.warn("image %d: %v", i, err)
		return nil
	}

	mime := img.MimeType
	if kind, kerr := filetype.Match(raw); kerr == nil && kind != filetype.Unknown {
		mime = kind.MIME.Value
	}

	decoded, _, derr := image.Decode(bytes.NewReader(raw))
	if derr != nil {
		st.warn("image %d (%s): decode failed: %v", i, mime, derr)
		return nil
	}

	bounds := decoded.Bounds()
	rgba := image.NewRGBA(bounds)
	draw.Draw(rgba, bounds, decoded, bounds.Min, draw.Src)

	st.cache.images[i] = st.sink.InternImage(&scenegraph.Image{
		Name:     fallbackName(img.Name, "image", i),
		MimeType: mime,
		Pixels:   rgba.Pix,
		Width:    bounds.Dx(),
		Height:   bounds.Dy(),
	})
	return nil
}

// imageBytes fetches the raw encoded bytes of an image from whichever source
// the document specifies.
func imageBytes(st *importState, idx int, img *gltfImage) ([]byte, error) {
	switch {
	case img.BufferView != nil:
		data, err := st.reader.viewBytes(*img.BufferView)
		if err != nil {
			return nil, err
		}
		return data, nil
	case strings.HasPrefix(img.URI, "data:"):
		return decodeDataURI(img.URI)
	case img.URI != "":
		path := filepath.Join(st.baseDir, filepath.FromSlash(img.URI))
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("external file %q: %w", img.URI, err)
		}
		return data, nil
	default:
		return nil, fmt.Errorf("no bufferView or URI")
	}
}
