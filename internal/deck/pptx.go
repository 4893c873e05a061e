// Package deck reads slide decks in PPTX form: slide text, embedded image
// references, and the image bytes themselves. Only the pieces of the OOXML
// package the pipeline needs are parsed; everything else is ignored.
package deck

import (
	"archive/zip"
	"encoding/xml"
	"io"
	"path"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

const (
	nsDrawing  = "http://schemas.openxmlformats.org/drawingml/2006/main"
	nsRelation = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
)

// SupportedImageExt lists the raster formats carried into the dataset.
// Vector and metafile embeds (emf/wmf) are skipped and counted.
var SupportedImageExt = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true,
	".bmp": true, ".webp": true, ".tif": true, ".tiff": true,
}

// Slide is one slide's extracted content: collapsed text and the archive
// paths of its embedded images, in document order.
type Slide struct {
	Number       int
	Text         string
	ImageTargets []string
}

// Reader walks a PPTX archive.
type Reader struct {
	zr    *zip.Reader
	files map[string]*zip.File
}

var slidePathPattern = regexp.MustCompile(`^ppt/slides/slide(\d+)\.xml$`)

// NewReader wraps an already-opened zip reader.
func NewReader(zr *zip.Reader) *Reader {
	files := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		files[f.Name] = f
	}
	return &Reader{zr: zr, files: files}
}

// OpenReader opens a PPTX file from disk. Close the returned closer when done.
func OpenReader(filename string) (*Reader, io.Closer, error) {
	rc, err := zip.OpenReader(filename)
	if err != nil {
		return nil, nil, eris.Wrapf(err, "deck: open %s", filename)
	}
	return NewReader(&rc.Reader), rc, nil
}

// Slides returns every slide in slide-number order with text and resolved
// image targets. A slide with no relationships part simply has no images.
func (r *Reader) Slides() ([]Slide, error) {
	var paths []string
	for name := range r.files {
		if slidePathPattern.MatchString(name) {
			paths = append(paths, name)
		}
	}
	sort.Slice(paths, func(i, j int) bool {
		return slideNumber(paths[i]) < slideNumber(paths[j])
	})

	slides := make([]Slide, 0, len(paths))
	for _, p := range paths {
		num := slideNumber(p)
		raw, err := r.readFile(p)
		if err != nil {
			return nil, err
		}
		text, relIDs, err := parseSlide(raw)
		if err != nil {
			return nil, eris.Wrapf(err, "deck: parse %s", p)
		}

		rels := map[string]string{}
		relPath := "ppt/slides/_rels/slide" + strconv.Itoa(num) + ".xml.rels"
		if _, ok := r.files[relPath]; ok {
			relRaw, err := r.readFile(relPath)
			if err != nil {
				return nil, err
			}
			rels, err = parseImageRelationships(relRaw)
			if err != nil {
				return nil, eris.Wrapf(err, "deck: parse %s", relPath)
			}
		}

		var targets []string
		for _, rid := range relIDs {
			if target := rels[rid]; target != "" {
				targets = append(targets, resolveTarget(p, target))
			}
		}
		slides = append(slides, Slide{Number: num, Text: text, ImageTargets: targets})
	}
	return slides, nil
}

// ReadImage returns the raw bytes of an image archive member.
func (r *Reader) ReadImage(target string) ([]byte, error) {
	f, ok := r.files[target]
	if !ok {
		return nil, eris.Errorf("deck: image %s not in archive", target)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, eris.Wrapf(err, "deck: open %s", target)
	}
	defer rc.Close()
	b, err := io.ReadAll(rc)
	if err != nil {
		return nil, eris.Wrapf(err, "deck: read %s", target)
	}
	return b, nil
}

func (r *Reader) readFile(name string) ([]byte, error) {
	f := r.files[name]
	rc, err := f.Open()
	if err != nil {
		return nil, eris.Wrapf(err, "deck: open %s", name)
	}
	defer rc.Close()
	b, err := io.ReadAll(rc)
	if err != nil {
		return nil, eris.Wrapf(err, "deck: read %s", name)
	}
	return b, nil
}

func slideNumber(p string) int {
	m := slidePathPattern.FindStringSubmatch(p)
	if m == nil {
		return 0
	}
	n, _ := strconv.Atoi(m[1])
	return n
}

// parseSlide walks the slide XML in one pass, collecting run text from a:t
// elements and relationship IDs from a:blip r:embed attributes.
func parseSlide(raw []byte) (string, []string, error) {
	dec := xml.NewDecoder(strings.NewReader(string(raw)))

	var texts []string
	var relIDs []string
	inText := false
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Space == nsDrawing && t.Name.Local == "t" {
				inText = true
			}
			if t.Name.Space == nsDrawing && t.Name.Local == "blip" {
				for _, attr := range t.Attr {
					if attr.Name.Space == nsRelation && attr.Name.Local == "embed" && attr.Value != "" {
						relIDs = append(relIDs, attr.Value)
					}
				}
			}
		case xml.EndElement:
			if t.Name.Space == nsDrawing && t.Name.Local == "t" {
				inText = false
			}
		case xml.CharData:
			if inText {
				if s := strings.TrimSpace(string(t)); s != "" {
					texts = append(texts, s)
				}
			}
		}
	}
	return collapseSpaces(strings.Join(texts, " ")), relIDs, nil
}

type relationships struct {
	Relationship []struct {
		ID     string `xml:"Id,attr"`
		Type   string `xml:"Type,attr"`
		Target string `xml:"Target,attr"`
	} `xml:"Relationship"`
}

// parseImageRelationships maps relationship IDs to targets, keeping only
// image relationships.
func parseImageRelationships(raw []byte) (map[string]string, error) {
	var rels relationships
	if err := xml.Unmarshal(raw, &rels); err != nil {
		return nil, err
	}
	out := make(map[string]string, len(rels.Relationship))
	for _, rel := range rels.Relationship {
		if strings.HasSuffix(rel.Type, "/image") {
			out[rel.ID] = rel.Target
		}
	}
	return out, nil
}

// resolveTarget normalizes a relationship target ("../media/image3.png")
// against the slide's archive path.
func resolveTarget(base, target string) string {
	return path.Clean(path.Join(path.Dir(base), target))
}

var spaceRun = regexp.MustCompile(`\s+`)

func collapseSpaces(s string) string {
	return strings.TrimSpace(spaceRun.ReplaceAllString(s, " "))
}
