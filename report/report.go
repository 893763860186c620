// Package report renders a filed case into a shareable PDF document: the
// reporter's details, the third party's details, both document sets and the
// damage photos, laid out on a fixed-size page.
package report

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg" // decode support for report thumbnails
	_ "image/png"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/pkg/errors"

	"github.com/crashdoc/crashdoc-api/api"
	"github.com/crashdoc/crashdoc-api/log"
)

// ContentType is the MIME type of a generated report, for the platform
// share step.
const ContentType = "application/pdf"

const (
	pageWidth  = 600
	pageHeight = 1000

	marginX = 40
	marginY = 40

	imageSize    = 100
	imageSpacing = 120
	imagesPerRow = 4

	logoWidth  = 200
	logoHeight = 100

	headerSize = 14
	titleSize  = 20
	textSize   = 11
	lineHeight = 18
)

// ImageStatus is the outcome of one image embed attempt.
type ImageStatus string

const (
	ImageSucceeded = ImageStatus("succeeded")

	// the URL's extension is not an embeddable format, or the slot was empty
	ImageSkipped = ImageStatus("skipped")

	ImageFailed = ImageStatus("failed")
)

// ImageResult is one entry in the generation manifest.
type ImageResult struct {
	URL     string
	Section string
	Status  ImageStatus
	Err     error
}

// Manifest records what happened to every image the case referenced. Failures
// here never fail the document; they are for display and diagnostics.
type Manifest []ImageResult

// Failed returns the manifest entries for images that could not be embedded.
func (m Manifest) Failed() Manifest {
	var failed Manifest
	for _, r := range m {
		if r.Status == ImageFailed {
			failed = append(failed, r)
		}
	}
	return failed
}

// Fetcher retrieves image content by URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// HTTPFetcher fetches images over HTTP with a bounded timeout.
type HTTPFetcher struct {
	client *http.Client
}

func NewHTTPFetcher() *HTTPFetcher {
	return &HTTPFetcher{client: &http.Client{Timeout: time.Second * 30}}
}

func (h *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := h.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("image fetch returned %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// Generator renders case reports into a documents directory.
type Generator struct {
	fetcher Fetcher
	outDir  string

	// optional PNG logo, drawn top-right of the first page
	Logo []byte
}

// NewGenerator builds a Generator writing into outDir.
func NewGenerator(outDir string, fetcher Fetcher) *Generator {
	if fetcher == nil {
		fetcher = NewHTTPFetcher()
	}
	return &Generator{
		fetcher: fetcher,
		outDir:  outDir,
	}
}

// Generate renders the case into a PDF and returns the written file's path
// along with the per-image manifest. Individual image failures are recorded
// and logged but never fail the document; only a file-level failure does.
func (g *Generator) Generate(ctx context.Context, cs api.Case) (string, Manifest, error) {
	pdf := fpdf.NewCustom(&fpdf.InitType{
		UnitStr: "pt",
		Size:    fpdf.SizeType{Wd: pageWidth, Ht: pageHeight},
	})
	pdf.SetMargins(marginX, marginY, marginX)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	d := &document{
		pdf:     pdf,
		fetcher: g.fetcher,
		y:       marginY,
	}

	d.drawLogo(g.Logo)
	d.title("My Case")
	if cs.ReferenceNumber != "" {
		d.text("Reference: " + cs.ReferenceNumber)
	}
	d.space(lineHeight)

	d.header("User Information")
	d.partyFields(cs.Reporter.IDNumber, cs.Reporter.PhoneNumber, cs.Reporter.VehicleNumber,
		cs.Reporter.LicenseNumber, cs.Reporter.VehicleModel)

	d.header("Documents")
	d.imageRow(ctx, "user documents", cs.Reporter.Documents.URLs())

	d.header("Third Party Information")
	d.partyFields(cs.ThirdParty.IDNumber, cs.ThirdParty.PhoneNumber, cs.ThirdParty.VehicleNumber,
		cs.ThirdParty.LicenseNumber, cs.ThirdParty.VehicleModel)

	d.header("Documents")
	d.imageRow(ctx, "third party documents", cs.ThirdParty.Documents.URLs())

	d.header("Damage Photos")
	d.imageRow(ctx, "damage photos", cs.DamagePhotos.URLs())

	if cs.DamageNarrative != "" {
		d.space(lineHeight)
		d.header("Damage Assessment")
		d.text(cs.DamageNarrative)
	}

	if err := os.MkdirAll(g.outDir, 0o755); err != nil {
		return "", d.manifest, api.NewAppError(err, api.ErrorReportGeneration, api.CategoryInternal)
	}

	name := "case.pdf"
	if cs.ReferenceNumber != "" {
		name = fmt.Sprintf("case_%s.pdf", cs.ReferenceNumber)
	}
	path := filepath.Join(g.outDir, name)

	if err := pdf.OutputFileAndClose(path); err != nil {
		err = errors.Wrap(err, "writing report file")
		return "", d.manifest, api.NewAppError(err, api.ErrorReportGeneration, api.CategoryInternal)
	}

	return path, d.manifest, nil
}

// document tracks the render cursor and the image manifest for one report.
type document struct {
	pdf      *fpdf.Fpdf
	fetcher  Fetcher
	y        float64
	manifest Manifest
	images   int
}

func (d *document) drawLogo(logo []byte) {
	if len(logo) == 0 {
		return
	}
	opts := fpdf.ImageOptions{ImageType: "PNG"}
	d.pdf.RegisterImageOptionsReader("logo", opts, bytes.NewReader(logo))
	d.pdf.ImageOptions("logo", pageWidth-marginX-logoWidth, marginY, logoWidth, logoHeight, false, opts, 0, "")
}

func (d *document) ensureRoom(height float64) {
	if d.y+height <= pageHeight-marginY {
		return
	}
	d.pdf.AddPage()
	d.y = marginY
}

func (d *document) title(s string) {
	d.ensureRoom(titleSize + lineHeight)
	d.pdf.SetFont("Helvetica", "B", titleSize)
	d.pdf.Text(marginX, d.y+titleSize, s)
	d.y += titleSize + lineHeight
}

func (d *document) header(s string) {
	d.ensureRoom(headerSize + lineHeight)
	d.pdf.SetFont("Helvetica", "B", headerSize)
	d.pdf.Text(marginX, d.y+headerSize, s)
	d.y += headerSize + lineHeight/2
}

func (d *document) text(s string) {
	d.ensureRoom(lineHeight)
	d.pdf.SetFont("Helvetica", "", textSize)
	d.pdf.Text(marginX, d.y+textSize, s)
	d.y += lineHeight
}

func (d *document) space(h float64) {
	d.y += h
}

// partyFields writes the labeled detail lines, skipping empty values.
func (d *document) partyFields(idNumber, phoneNumber, vehicleNumber, licenseNumber, vehicleModel string) {
	fields := []struct {
		label, value string
	}{
		{"ID Number", idNumber},
		{"Phone Number", phoneNumber},
		{"Vehicle Number", vehicleNumber},
		{"License Number", licenseNumber},
		{"Vehicle Model", vehicleModel},
	}
	for _, f := range fields {
		if f.value == "" {
			continue
		}
		d.text(fmt.Sprintf("%s: %s", f.label, f.value))
	}
	d.space(lineHeight / 2)
}

// imageRow embeds the given image URLs as fixed-size thumbnails, four per
// row. Empty slots render nothing, unsupported formats are skipped, and a
// fetch or decode failure costs only that image.
func (d *document) imageRow(ctx context.Context, section string, urls []string) {
	col := 0
	drawn := false
	for _, url := range urls {
		if url == "" {
			continue
		}

		imageType, ok := imageTypeByExtension(url)
		if !ok {
			d.manifest = append(d.manifest, ImageResult{URL: url, Section: section, Status: ImageSkipped})
			continue
		}

		content, err := d.fetcher.Fetch(ctx, url)
		if err != nil {
			log.WithFields(map[string]any{"url": url, "section": section}).
				Errorf("report image fetch failed: %s", err)
			d.manifest = append(d.manifest, ImageResult{URL: url, Section: section, Status: ImageFailed, Err: err})
			continue
		}

		if col == 0 {
			d.ensureRoom(imageSpacing)
		}

		x := marginX + float64(col)*imageSpacing
		if err := d.embed(url, imageType, content, x, d.y); err != nil {
			log.WithFields(map[string]any{"url": url, "section": section}).
				Errorf("report image embed failed: %s", err)
			d.manifest = append(d.manifest, ImageResult{URL: url, Section: section, Status: ImageFailed, Err: err})
			continue
		}

		d.manifest = append(d.manifest, ImageResult{URL: url, Section: section, Status: ImageSucceeded})
		drawn = true
		col++
		if col == imagesPerRow {
			col = 0
			d.y += imageSpacing
		}
	}
	if col > 0 {
		d.y += imageSpacing
	}
	if !drawn {
		d.space(lineHeight / 2)
	}
}

func (d *document) embed(url, imageType string, content []byte, x, y float64) error {
	if _, _, err := image.DecodeConfig(bytes.NewReader(content)); err != nil {
		return errors.Wrap(err, "decoding image")
	}

	d.images++
	name := fmt.Sprintf("img%d", d.images)
	opts := fpdf.ImageOptions{ImageType: imageType}
	d.pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(content))
	if err := d.pdf.Error(); err != nil {
		// clear the error so one bad image does not poison the document
		d.pdf.ClearError()
		return err
	}
	d.pdf.ImageOptions(name, x, y, imageSize, imageSize, false, opts, 0, "")
	if err := d.pdf.Error(); err != nil {
		d.pdf.ClearError()
		return err
	}
	return nil
}

// imageTypeByExtension maps a URL to the embeddable fpdf image type. Only
// JPEG and PNG are supported; anything else is skipped.
func imageTypeByExtension(url string) (string, bool) {
	trimmed := url
	if i := strings.IndexAny(trimmed, "?#"); i >= 0 {
		trimmed = trimmed[:i]
	}
	switch strings.ToLower(filepath.Ext(trimmed)) {
	case ".jpg", ".jpeg":
		return "JPG", true
	case ".png":
		return "PNG", true
	default:
		return "", false
	}
}
