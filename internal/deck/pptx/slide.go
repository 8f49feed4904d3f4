package pptx

import (
	"encoding/xml"
	"fmt"
	"strings"
	"time"
)

// Placeholder frames in EMU.
var (
	titleFrame   = frame{X: 457200, Y: 274638, W: 8229600, H: 1143000}
	bodyFrame    = frame{X: 457200, Y: 1600200, W: 8229600, H: 4525963}
	narrowBody   = frame{X: 457200, Y: 1600200, W: 4572000, H: 4525963}
	picturePanel = frame{X: 5181600, Y: 1600200, W: 3505200, H: 4525963}
)

type frame struct {
	X, Y, W, H int64
}

func (f frame) xfrm() string {
	return fmt.Sprintf(`<a:xfrm><a:off x="%d" y="%d"/><a:ext cx="%d" cy="%d"/></a:xfrm>`, f.X, f.Y, f.W, f.H)
}

// fitPicture returns the largest frame inside panel with the picture's
// aspect ratio, centered.
func fitPicture(width, height int, panel frame) frame {
	if width <= 0 || height <= 0 {
		return panel
	}
	w := panel.W
	h := w * int64(height) / int64(width)
	if h > panel.H {
		h = panel.H
		w = h * int64(width) / int64(height)
	}
	return frame{
		X: panel.X + (panel.W-w)/2,
		Y: panel.Y + (panel.H-h)/2,
		W: w,
		H: h,
	}
}

func escape(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}

const langAttr = `lang="de-DE"`

// paragraph renders one a:p, turning embedded newlines into line breaks.
func paragraph(text string) string {
	lines := strings.Split(text, "\n")
	var b strings.Builder
	b.WriteString("<a:p>")
	for i, line := range lines {
		if i > 0 {
			b.WriteString(`<a:br><a:rPr ` + langAttr + `/></a:br>`)
		}
		if line == "" {
			continue
		}
		b.WriteString(`<a:r><a:rPr ` + langAttr + ` dirty="0"/><a:t>` + escape(line) + `</a:t></a:r>`)
	}
	b.WriteString(`<a:endParaRPr ` + langAttr + `/></a:p>`)
	return b.String()
}

func paragraphs(texts []string) string {
	if len(texts) == 0 {
		return `<a:p><a:endParaRPr ` + langAttr + `/></a:p>`
	}
	var b strings.Builder
	for _, text := range texts {
		b.WriteString(paragraph(text))
	}
	return b.String()
}

func openRoot(tag string) string {
	return xmlHeader + `<` + tag + ` xmlns:a="` + nsDrawing + `" xmlns:r="` + nsRelationships + `" xmlns:p="` + nsPresentation + `">`
}

func slideXML(slide Slide, pictureRel string) string {
	body := bodyFrame
	if pictureRel != "" {
		body = narrowBody
	}

	var b strings.Builder
	b.WriteString(openRoot("p:sld"))
	b.WriteString(`<p:cSld><p:spTree>` + emptyGroupProps)

	b.WriteString(`<p:sp><p:nvSpPr><p:cNvPr id="2" name="Title 1"/><p:cNvSpPr><a:spLocks noGrp="1"/></p:cNvSpPr><p:nvPr><p:ph type="title"/></p:nvPr></p:nvSpPr>`)
	b.WriteString(`<p:spPr>` + titleFrame.xfrm() + `</p:spPr>`)
	b.WriteString(`<p:txBody><a:bodyPr/><a:lstStyle/>` + paragraph(slide.Title) + `</p:txBody></p:sp>`)

	b.WriteString(`<p:sp><p:nvSpPr><p:cNvPr id="3" name="Content Placeholder 2"/><p:cNvSpPr><a:spLocks noGrp="1"/></p:cNvSpPr><p:nvPr><p:ph idx="1"/></p:nvPr></p:nvSpPr>`)
	b.WriteString(`<p:spPr>` + body.xfrm() + `</p:spPr>`)
	b.WriteString(`<p:txBody><a:bodyPr><a:normAutofit/></a:bodyPr><a:lstStyle/>` + paragraphs(slide.Bullets) + `</p:txBody></p:sp>`)

	if pictureRel != "" {
		fit := fitPicture(slide.Picture.Width, slide.Picture.Height, picturePanel)
		b.WriteString(`<p:pic><p:nvPicPr><p:cNvPr id="4" name="Picture 3" descr="` + escape(slide.Picture.Description) + `"/>`)
		b.WriteString(`<p:cNvPicPr><a:picLocks noChangeAspect="1"/></p:cNvPicPr><p:nvPr/></p:nvPicPr>`)
		b.WriteString(`<p:blipFill><a:blip r:embed="` + pictureRel + `"/><a:stretch><a:fillRect/></a:stretch></p:blipFill>`)
		b.WriteString(`<p:spPr>` + fit.xfrm() + `<a:prstGeom prst="rect"><a:avLst/></a:prstGeom></p:spPr></p:pic>`)
	}

	b.WriteString(`</p:spTree></p:cSld><p:clrMapOvr><a:masterClrMapping/></p:clrMapOvr></p:sld>`)
	return b.String()
}

func notesSlideXML(notes string) string {
	var lines []string
	if strings.TrimSpace(notes) != "" {
		lines = strings.Split(strings.TrimSpace(notes), "\n")
	}

	var b strings.Builder
	b.WriteString(openRoot("p:notes"))
	b.WriteString(`<p:cSld><p:spTree>` + emptyGroupProps)
	b.WriteString(`<p:sp><p:nvSpPr><p:cNvPr id="2" name="Slide Image Placeholder 1"/><p:cNvSpPr><a:spLocks noGrp="1" noRot="1" noChangeAspect="1"/></p:cNvSpPr><p:nvPr><p:ph type="sldImg"/></p:nvPr></p:nvSpPr><p:spPr/></p:sp>`)
	b.WriteString(`<p:sp><p:nvSpPr><p:cNvPr id="3" name="Notes Placeholder 2"/><p:cNvSpPr><a:spLocks noGrp="1"/></p:cNvSpPr><p:nvPr><p:ph type="body" idx="3"/></p:nvPr></p:nvSpPr><p:spPr/>`)
	b.WriteString(`<p:txBody><a:bodyPr/><a:lstStyle/>` + paragraphs(lines) + `</p:txBody></p:sp>`)
	b.WriteString(`</p:spTree></p:cSld><p:clrMapOvr><a:masterClrMapping/></p:clrMapOvr></p:notes>`)
	return b.String()
}

func presentationXML(slides, firstRel int) string {
	var b strings.Builder
	b.WriteString(openRoot("p:presentation"))
	b.WriteString(`<p:sldMasterIdLst><p:sldMasterId id="2147483648" r:id="rId1"/></p:sldMasterIdLst>`)
	b.WriteString(`<p:notesMasterIdLst><p:notesMasterId r:id="rId2"/></p:notesMasterIdLst>`)
	if slides > 0 {
		b.WriteString(`<p:sldIdLst>`)
		for i := 0; i < slides; i++ {
			fmt.Fprintf(&b, `<p:sldId id="%d" r:id="rId%d"/>`, 256+i, firstRel+i)
		}
		b.WriteString(`</p:sldIdLst>`)
	}
	fmt.Fprintf(&b, `<p:sldSz cx="%d" cy="%d" type="screen4x3"/><p:notesSz cx="%d" cy="%d"/>`, SlideWidth, SlideHeight, SlideHeight, SlideWidth)
	b.WriteString(`</p:presentation>`)
	return b.String()
}

func corePropsXML(title, author string, created time.Time) string {
	stamp := created.UTC().Format(time.RFC3339)
	return xmlHeader + `<cp:coreProperties xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties"` +
		` xmlns:dc="http://purl.org/dc/elements/1.1/" xmlns:dcterms="http://purl.org/dc/terms/"` +
		` xmlns:dcmitype="http://purl.org/dc/dcmitype/" xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance">` +
		`<dc:title>` + escape(title) + `</dc:title>` +
		`<dc:creator>` + escape(author) + `</dc:creator>` +
		`<dcterms:created xsi:type="dcterms:W3CDTF">` + stamp + `</dcterms:created>` +
		`<dcterms:modified xsi:type="dcterms:W3CDTF">` + stamp + `</dcterms:modified>` +
		`</cp:coreProperties>`
}

func appPropsXML(slides int) string {
	return xmlHeader + fmt.Sprintf(`<Properties xmlns="http://schemas.openxmlformats.org/officeDocument/2006/extended-properties">`+
		`<TotalTime>0</TotalTime><Slides>%d</Slides><Notes>%d</Notes></Properties>`, slides, slides)
}
