package deck

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const slideXMLTemplate = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<p:sld xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main"
       xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships"
       xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main">
  <p:cSld><p:spTree>
    <p:sp><p:txBody>
      <a:p><a:r><a:t>Sussex chair,</a:t></a:r><a:r><a:t>  ebonized beech </a:t></a:r></a:p>
      <a:p><a:r><a:t>c. 1865</a:t></a:r></a:p>
    </p:txBody></p:sp>
    <p:pic><p:blipFill><a:blip r:embed="rId2"/></p:blipFill></p:pic>
    <p:pic><p:blipFill><a:blip r:embed="rId3"/></p:blipFill></p:pic>
  </p:spTree></p:cSld>
</p:sld>`

const relsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
  <Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideLayout" Target="../slideLayouts/slideLayout1.xml"/>
  <Relationship Id="rId2" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/image" Target="../media/image1.png"/>
  <Relationship Id="rId3" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/image" Target="../media/image2.emf"/>
</Relationships>`

const emptySlideXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<p:sld xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main"
       xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main">
  <p:cSld><p:spTree/></p:cSld>
</p:sld>`

func buildTestArchive(t *testing.T) *Reader {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	files := map[string]string{
		// Out of lexical order on purpose; slide10 must sort after slide2.
		"ppt/slides/slide10.xml":           emptySlideXML,
		"ppt/slides/slide2.xml":            slideXMLTemplate,
		"ppt/slides/_rels/slide2.xml.rels": relsXML,
		"ppt/media/image1.png":             "not-really-png",
		"ppt/media/image2.emf":             "metafile",
	}
	for name, body := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	return NewReader(zr)
}

func TestSlides(t *testing.T) {
	r := buildTestArchive(t)

	slides, err := r.Slides()
	require.NoError(t, err)
	require.Len(t, slides, 2)

	assert.Equal(t, 2, slides[0].Number)
	assert.Equal(t, "Sussex chair, ebonized beech c. 1865", slides[0].Text)
	assert.Equal(t,
		[]string{"ppt/media/image1.png", "ppt/media/image2.emf"},
		slides[0].ImageTargets)

	// Numeric slide ordering, and a slide without a rels part.
	assert.Equal(t, 10, slides[1].Number)
	assert.Empty(t, slides[1].Text)
	assert.Empty(t, slides[1].ImageTargets)
}

func TestReadImage(t *testing.T) {
	r := buildTestArchive(t)

	b, err := r.ReadImage("ppt/media/image1.png")
	require.NoError(t, err)
	assert.Equal(t, "not-really-png", string(b))

	_, err = r.ReadImage("ppt/media/missing.png")
	assert.Error(t, err)
}

func TestSupportedImageExt(t *testing.T) {
	assert.True(t, SupportedImageExt[".png"])
	assert.True(t, SupportedImageExt[".jpeg"])
	assert.False(t, SupportedImageExt[".emf"])
	assert.False(t, SupportedImageExt[".wmf"])
}

func TestLoadDecks(t *testing.T) {
	dir := t.TempDir()
	manifest := filepath.Join(dir, "decks.yaml")
	require.NoError(t, os.WriteFile(manifest, []byte(`
decks:
  - id: art_nouveau
    title: "Week 5: Art Nouveau"
    source: decks/art_nouveau.pptx
    default_region: Europe
    default_style: Art Nouveau
    default_background_en: "Part of late-19th-century reform movements."
    default_background_zh: "属于19世纪末设计改革思潮的一部分。"
    tags: ["Week 5"]
`), 0o644))

	decks, err := LoadDecks(manifest)
	require.NoError(t, err)
	require.Len(t, decks, 1)
	assert.Equal(t, "art_nouveau", decks[0].ID)
	assert.Equal(t, "Europe", decks[0].DefaultRegion)
	assert.Equal(t, []string{"Week 5"}, decks[0].Tags)
}

func TestLoadDecksRejectsDuplicates(t *testing.T) {
	dir := t.TempDir()
	manifest := filepath.Join(dir, "decks.yaml")
	require.NoError(t, os.WriteFile(manifest, []byte(`
decks:
  - {id: a, title: A, source: a.pptx}
  - {id: a, title: B, source: b.pptx}
`), 0o644))

	_, err := LoadDecks(manifest)
	assert.Error(t, err)
}
