package flow

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/crashdoc/crashdoc-api/api"
)

// Stage is the accumulator's position in the case-assembly journey. Stages
// only ever advance, and only when the current stage's data passes
// validation.
type Stage string

const (
	StageThirdPartyDetails = Stage("EnteringThirdPartyDetails")
	StageDamagePhotos      = Stage("EnteringDamagePhotos")
	StageReview            = Stage("ReviewingCase")
)

// PhotoState is one damage photo slot's position in its upload lifecycle.
type PhotoState string

const (
	PhotoEmpty        = PhotoState("Empty")
	PhotoLocalPreview = PhotoState("LocalPreview")
	PhotoUploading    = PhotoState("Uploading")
	PhotoUploaded     = PhotoState("Uploaded")
	PhotoFailed       = PhotoState("Failed")
)

// NumPhotoSlots is the fixed number of damage photo slots on a case.
const NumPhotoSlots = 5

// PhotoSlot is a snapshot of one slot's state. URL is set once the upload
// completes; Err once it fails.
type PhotoSlot struct {
	State PhotoState
	Name  string
	URL   string
	Err   error
}

// Uploader stores image content and returns the stored URL. *Client
// satisfies it.
type Uploader interface {
	Upload(ctx context.Context, name string, content []byte) (string, error)
}

// Assessor grades a set of damage photos. *Client satisfies it.
type Assessor interface {
	Classify(ctx context.Context, input api.ClassificationInput) (api.ClassificationOutput, error)
}

// Upload implements Uploader on the API client.
func (c *Client) Upload(ctx context.Context, name string, content []byte) (string, error) {
	out, err := c.UploadFile(ctx, name, content)
	if err != nil {
		return "", err
	}
	return out.SecureURL, nil
}

// Accumulator collects a case's data across the assembly stages. Photo
// uploads run in the background; slots complete in any order and a failed
// slot can be retried without disturbing the others. Safe for concurrent use.
type Accumulator struct {
	uploader Uploader

	mu         sync.Mutex
	wg         sync.WaitGroup
	stage      Stage
	thirdParty api.ThirdPartyInfo
	reporter   *api.OnboardingInfo
	photos     [NumPhotoSlots]PhotoSlot
	severity   string
	narrative  string
	submitting bool
}

// NewAccumulator starts a fresh case at the third-party details stage.
func NewAccumulator(uploader Uploader) *Accumulator {
	a := &Accumulator{
		uploader: uploader,
		stage:    StageThirdPartyDetails,
	}
	for i := range a.photos {
		a.photos[i].State = PhotoEmpty
	}
	return a
}

// Stage returns the current assembly stage.
func (a *Accumulator) Stage() Stage {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stage
}

// SetThirdParty records the other driver's details. No validation happens
// here; fields are checked when the stage transition is attempted.
func (a *Accumulator) SetThirdParty(info api.ThirdPartyInfo) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.thirdParty = info
}

// SetReporter records reporter details supplied inline. Only guests need
// this; a user's details come from the stored onboarding profile at
// submission time.
func (a *Accumulator) SetReporter(info api.OnboardingInfo) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.reporter = &info
}

// ContinueToPhotos validates the third-party details and advances to the
// damage photos stage. Any field failure blocks the transition and names the
// field.
func (a *Accumulator) ContinueToPhotos() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stage != StageThirdPartyDetails {
		return errors.Errorf("cannot enter damage photos from stage %s", a.stage)
	}
	if err := ValidateThirdParty(a.thirdParty); err != nil {
		return err
	}
	if a.reporter != nil {
		if err := ValidateReporter(*a.reporter); err != nil {
			return err
		}
	}

	a.stage = StageDamagePhotos
	return nil
}

// AttachPhoto previews the image in the given slot (1-based) and uploads it
// in the background. A slot may be re-attached after a failure or to replace
// an earlier photo; there is no cancellation of an upload already running.
func (a *Accumulator) AttachPhoto(ctx context.Context, slot int, name string, content []byte) error {
	if slot < 1 || slot > NumPhotoSlots {
		return errors.Errorf("photo slot must be between 1 and %d, got %d", NumPhotoSlots, slot)
	}
	idx := slot - 1

	a.mu.Lock()
	if a.photos[idx].State == PhotoLocalPreview || a.photos[idx].State == PhotoUploading {
		a.mu.Unlock()
		return errors.Errorf("photo slot %d is still uploading", slot)
	}
	a.photos[idx] = PhotoSlot{State: PhotoLocalPreview, Name: name}
	a.wg.Add(1)
	a.mu.Unlock()

	go func() {
		defer a.wg.Done()

		a.mu.Lock()
		a.photos[idx].State = PhotoUploading
		a.mu.Unlock()

		url, err := a.uploader.Upload(ctx, name, content)

		a.mu.Lock()
		defer a.mu.Unlock()
		if err != nil {
			a.photos[idx] = PhotoSlot{State: PhotoFailed, Name: name, Err: err}
			return
		}
		a.photos[idx] = PhotoSlot{State: PhotoUploaded, Name: name, URL: url}
	}()

	return nil
}

// PhotoSlots returns a snapshot of all slot states.
func (a *Accumulator) PhotoSlots() [NumPhotoSlots]PhotoSlot {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.photos
}

// WaitForUploads blocks until no uploads are in flight.
func (a *Accumulator) WaitForUploads() {
	a.wg.Wait()
}

// Assess grades the uploaded damage photos. It is optional and separate from
// the stage transitions; a case may be submitted without an assessment.
func (a *Accumulator) Assess(ctx context.Context, assessor Assessor) error {
	urls := a.uploadedPhotoSet().PresentURLs()

	out, err := assessor.Classify(ctx, api.ClassificationInput{ImageURLs: urls})
	if err != nil {
		return errors.Wrap(err, "assessing damage")
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.severity = out.Severity
	a.narrative = out.Narrative
	return nil
}

// ContinueToReview advances to the review stage. Photos are never required;
// slots still uploading simply will not appear in the review until they
// finish.
func (a *Accumulator) ContinueToReview() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stage != StageDamagePhotos {
		return errors.Errorf("cannot enter review from stage %s", a.stage)
	}
	a.stage = StageReview
	return nil
}

// Review assembles the case input from whatever has been collected. Empty
// values stay empty; only uploaded photos are included.
func (a *Accumulator) Review() api.CaseCreateInput {
	a.mu.Lock()
	defer a.mu.Unlock()

	return api.CaseCreateInput{
		Reporter:        a.reporter,
		ThirdParty:      a.thirdParty,
		DamagePhotos:    a.photoSetLocked(),
		DamageSeverity:  a.severity,
		DamageNarrative: a.narrative,
	}
}

func (a *Accumulator) uploadedPhotoSet() api.DamagePhotoSet {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.photoSetLocked()
}

func (a *Accumulator) photoSetLocked() api.DamagePhotoSet {
	var set api.DamagePhotoSet
	urls := []*string{
		&set.DamagePhoto1, &set.DamagePhoto2, &set.DamagePhoto3, &set.DamagePhoto4, &set.DamagePhoto5,
	}
	for i, slot := range a.photos {
		if slot.State == PhotoUploaded {
			*urls[i] = slot.URL
		}
	}
	return set
}
