// Package pptx writes minimal PresentationML packages: one master, one
// title-and-content layout, and a slide per entry with optional notes and
// one picture.
package pptx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"time"
)

// MIMEType is the content type of a .pptx file.
const MIMEType = "application/vnd.openxmlformats-officedocument.presentationml.presentation"

// Slide geometry in EMU for a 4:3 presentation.
const (
	SlideWidth  int64 = 9144000
	SlideHeight int64 = 6858000
)

// Presentation is the document to write.
type Presentation struct {
	Title   string
	Author  string
	Created time.Time
	Slides  []Slide
}

// Slide is one title-and-content slide.
type Slide struct {
	Title   string
	Bullets []string
	Notes   string
	Picture *Picture
}

// Picture is an embedded JPEG with its pixel dimensions.
type Picture struct {
	Data        []byte
	Width       int
	Height      int
	Description string
}

// Encode returns the package bytes for p.
func Encode(p *Presentation) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, p); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write streams the package for p to w.
func Write(w io.Writer, p *Presentation) error {
	if p == nil {
		p = &Presentation{}
	}
	created := p.Created
	if created.IsZero() {
		created = time.Now()
	}

	pkg := &packageWriter{zw: zip.NewWriter(w)}
	types := newContentTypes()

	pkg.rels("_rels/.rels", []relationship{
		{ID: "rId1", Type: relOfficeDocument, Target: "ppt/presentation.xml"},
		{ID: "rId2", Type: relCoreProps, Target: "docProps/core.xml"},
		{ID: "rId3", Type: relExtendedProps, Target: "docProps/app.xml"},
	})
	pkg.part("docProps/core.xml", corePropsXML(p.Title, p.Author, created))
	types.override("/docProps/core.xml", ctCoreProps)
	pkg.part("docProps/app.xml", appPropsXML(len(p.Slides)))
	types.override("/docProps/app.xml", ctExtendedProps)

	presRels := []relationship{
		{ID: "rId1", Type: relSlideMaster, Target: "slideMasters/slideMaster1.xml"},
		{ID: "rId2", Type: relNotesMaster, Target: "notesMasters/notesMaster1.xml"},
		{ID: "rId3", Type: relTheme, Target: "theme/theme1.xml"},
		{ID: "rId4", Type: relPresProps, Target: "presProps.xml"},
		{ID: "rId5", Type: relViewProps, Target: "viewProps.xml"},
		{ID: "rId6", Type: relTableStyles, Target: "tableStyles.xml"},
	}
	const firstSlideRel = 7
	for i := range p.Slides {
		presRels = append(presRels, relationship{
			ID:     fmt.Sprintf("rId%d", firstSlideRel+i),
			Type:   relSlide,
			Target: fmt.Sprintf("slides/slide%d.xml", i+1),
		})
	}
	pkg.rels("ppt/_rels/presentation.xml.rels", presRels)
	pkg.part("ppt/presentation.xml", presentationXML(len(p.Slides), firstSlideRel))
	types.override("/ppt/presentation.xml", ctPresentation)

	pkg.part("ppt/presProps.xml", presPropsXML)
	types.override("/ppt/presProps.xml", ctPresProps)
	pkg.part("ppt/viewProps.xml", viewPropsXML)
	types.override("/ppt/viewProps.xml", ctViewProps)
	pkg.part("ppt/tableStyles.xml", tableStylesXML)
	types.override("/ppt/tableStyles.xml", ctTableStyles)

	pkg.part("ppt/theme/theme1.xml", themeXML)
	types.override("/ppt/theme/theme1.xml", ctTheme)
	pkg.part("ppt/theme/theme2.xml", themeXML)
	types.override("/ppt/theme/theme2.xml", ctTheme)

	pkg.part("ppt/slideMasters/slideMaster1.xml", slideMasterXML)
	pkg.rels("ppt/slideMasters/_rels/slideMaster1.xml.rels", []relationship{
		{ID: "rId1", Type: relSlideLayout, Target: "../slideLayouts/slideLayout1.xml"},
		{ID: "rId2", Type: relTheme, Target: "../theme/theme1.xml"},
	})
	types.override("/ppt/slideMasters/slideMaster1.xml", ctSlideMaster)

	pkg.part("ppt/slideLayouts/slideLayout1.xml", slideLayoutXML)
	pkg.rels("ppt/slideLayouts/_rels/slideLayout1.xml.rels", []relationship{
		{ID: "rId1", Type: relSlideMaster, Target: "../slideMasters/slideMaster1.xml"},
	})
	types.override("/ppt/slideLayouts/slideLayout1.xml", ctSlideLayout)

	pkg.part("ppt/notesMasters/notesMaster1.xml", notesMasterXML)
	pkg.rels("ppt/notesMasters/_rels/notesMaster1.xml.rels", []relationship{
		{ID: "rId1", Type: relTheme, Target: "../theme/theme2.xml"},
	})
	types.override("/ppt/notesMasters/notesMaster1.xml", ctNotesMaster)

	imageCount := 0
	for i, slide := range p.Slides {
		n := i + 1
		slideRels := []relationship{
			{ID: "rId1", Type: relSlideLayout, Target: "../slideLayouts/slideLayout1.xml"},
			{ID: "rId2", Type: relNotesSlide, Target: fmt.Sprintf("../notesSlides/notesSlide%d.xml", n)},
		}

		var pictureRel string
		if slide.Picture != nil && len(slide.Picture.Data) > 0 {
			imageCount++
			media := fmt.Sprintf("image%d.jpeg", imageCount)
			pkg.raw("ppt/media/"+media, slide.Picture.Data)
			pictureRel = "rId3"
			slideRels = append(slideRels, relationship{ID: pictureRel, Type: relImage, Target: "../media/" + media})
		}

		pkg.part(fmt.Sprintf("ppt/slides/slide%d.xml", n), slideXML(slide, pictureRel))
		pkg.rels(fmt.Sprintf("ppt/slides/_rels/slide%d.xml.rels", n), slideRels)
		types.override(fmt.Sprintf("/ppt/slides/slide%d.xml", n), ctSlide)

		pkg.part(fmt.Sprintf("ppt/notesSlides/notesSlide%d.xml", n), notesSlideXML(slide.Notes))
		pkg.rels(fmt.Sprintf("ppt/notesSlides/_rels/notesSlide%d.xml.rels", n), []relationship{
			{ID: "rId1", Type: relNotesMaster, Target: "../notesMasters/notesMaster1.xml"},
			{ID: "rId2", Type: relSlide, Target: fmt.Sprintf("../slides/slide%d.xml", n)},
		})
		types.override(fmt.Sprintf("/ppt/notesSlides/notesSlide%d.xml", n), ctNotesSlide)
	}

	contentTypes, err := types.marshal()
	if err != nil {
		return err
	}
	pkg.raw("[Content_Types].xml", contentTypes)

	if pkg.err != nil {
		_ = pkg.zw.Close()
		return pkg.err
	}
	return pkg.zw.Close()
}

// packageWriter records the first write failure and skips later parts.
type packageWriter struct {
	zw  *zip.Writer
	err error
}

func (p *packageWriter) part(name, body string) {
	p.raw(name, []byte(body))
}

func (p *packageWriter) raw(name string, body []byte) {
	if p.err != nil {
		return
	}
	w, err := p.zw.Create(name)
	if err != nil {
		p.err = fmt.Errorf("create %s: %w", name, err)
		return
	}
	if _, err := w.Write(body); err != nil {
		p.err = fmt.Errorf("write %s: %w", name, err)
	}
}

func (p *packageWriter) rels(name string, rels []relationship) {
	if p.err != nil {
		return
	}
	body, err := marshalXML(relationships{Xmlns: nsPackageRels, Items: rels})
	if err != nil {
		p.err = fmt.Errorf("encode %s: %w", name, err)
		return
	}
	p.raw(name, body)
}

type relationships struct {
	XMLName xml.Name       `xml:"Relationships"`
	Xmlns   string         `xml:"xmlns,attr"`
	Items   []relationship `xml:"Relationship"`
}

type relationship struct {
	ID     string `xml:"Id,attr"`
	Type   string `xml:"Type,attr"`
	Target string `xml:"Target,attr"`
}

type contentTypes struct {
	XMLName   xml.Name              `xml:"Types"`
	Xmlns     string                `xml:"xmlns,attr"`
	Defaults  []contentTypeDefault  `xml:"Default"`
	Overrides []contentTypeOverride `xml:"Override"`
}

type contentTypeDefault struct {
	Extension   string `xml:"Extension,attr"`
	ContentType string `xml:"ContentType,attr"`
}

type contentTypeOverride struct {
	PartName    string `xml:"PartName,attr"`
	ContentType string `xml:"ContentType,attr"`
}

func newContentTypes() *contentTypes {
	return &contentTypes{
		Xmlns: "http://schemas.openxmlformats.org/package/2006/content-types",
		Defaults: []contentTypeDefault{
			{Extension: "rels", ContentType: ctRelationships},
			{Extension: "xml", ContentType: ctXML},
			{Extension: "jpeg", ContentType: ctJPEG},
		},
	}
}

func (c *contentTypes) override(partName, contentType string) {
	c.Overrides = append(c.Overrides, contentTypeOverride{PartName: partName, ContentType: contentType})
}

func (c *contentTypes) marshal() ([]byte, error) {
	return marshalXML(c)
}

func marshalXML(v any) ([]byte, error) {
	body, err := xml.Marshal(v)
	if err != nil {
		return nil, err
	}
	return append([]byte(xmlHeader), body...), nil
}
