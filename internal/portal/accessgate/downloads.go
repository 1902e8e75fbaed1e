package accessgate

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/dmitrijs2005/photoportal/internal/api"
	"github.com/dmitrijs2005/photoportal/internal/common"
	"github.com/google/uuid"
)

const localIDPrefix = "local-"

var (
	ErrRequestPending = errors.New("premium request already pending")
	ErrDownloadBusy   = errors.New("download already in progress")
	ErrSignedIn       = errors.New("direct download is only available before sign-in")
)

// Refresh reloads the dashboard data: the global download PIN and the
// user's purchase requests. Images waiting on a request go back to Idle
// once the request has been decided.
func (e *Engine) Refresh(ctx context.Context) error {
	e.mu.Lock()
	signedIn := e.user != nil
	e.mu.Unlock()
	if !signedIn {
		return common.ErrorUnauthorized
	}

	pin, err := e.gw.GetDownloadPin(ctx)
	if err != nil {
		e.failed(ctx, "Could not load download settings", err)
		return err
	}
	prs, err := e.gw.ListPurchaseRequests(ctx, false)
	if err != nil {
		e.failed(ctx, "Could not load purchase requests", err)
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.globalPin, e.pinLoaded = pin, true
	e.purchases = prs
	for id, st := range e.downloads {
		if st == RequestSubmitted && !e.hasStatusLocked(id, api.StatusPending) {
			e.downloads[id] = Idle
		}
	}
	return nil
}

func (e *Engine) loadPin(ctx context.Context) error {
	e.mu.Lock()
	loaded := e.pinLoaded
	e.mu.Unlock()
	if loaded {
		return nil
	}

	pin, err := e.gw.GetDownloadPin(ctx)
	if err != nil {
		e.failed(ctx, "Could not load download settings", err)
		return err
	}
	e.mu.Lock()
	e.globalPin, e.pinLoaded = pin, true
	e.mu.Unlock()
	return nil
}

// VerifyGlobalPin compares candidate with the cached global download PIN.
// The comparison is plain string equality on a value fetched from the
// gateway; an admin changing the PIN is only seen after the next Refresh.
func (e *Engine) VerifyGlobalPin(candidate string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pinLoaded && candidate == e.globalPin
}

// Purchases returns the locally known purchase requests, newest first.
func (e *Engine) Purchases() []*api.PurchaseRequest {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]*api.PurchaseRequest, 0, len(e.purchases))
	for _, pr := range e.purchases {
		cp := *pr
		out = append(out, &cp)
	}
	return out
}

func (e *Engine) hasStatusLocked(imageID, status string) bool {
	if e.user == nil {
		return false
	}
	for _, pr := range e.purchases {
		if pr.ImageID == imageID && pr.UserID == e.user.UserID && pr.Status == status {
			return true
		}
	}
	return false
}

// PremiumControl tells a view which premium control to show for imageID.
func (e *Engine) PremiumControl(imageID string) Control {
	e.mu.Lock()
	defer e.mu.Unlock()
	switch {
	case e.hasStatusLocked(imageID, api.StatusApproved):
		return ControlDownloadPremium
	case e.hasStatusLocked(imageID, api.StatusPending), e.downloads[imageID] == RequestSubmitted:
		return ControlPending
	}
	return ControlRequestPremium
}

func (e *Engine) DownloadState(imageID string) DownloadState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.downloads[imageID]
}

// Prompt reports the flow waiting for a global PIN, if any.
func (e *Engine) Prompt() (Action, string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pending.action, e.pending.target
}

// CancelPrompt abandons the flow waiting for a global PIN.
func (e *Engine) CancelPrompt() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.clearPromptLocked()
}

func (e *Engine) clearPromptLocked() {
	if e.pending.action == ActionPremiumRequest && e.downloads[e.pending.target] == PromptingGlobalPin {
		e.downloads[e.pending.target] = Idle
	}
	e.pending = prompt{}
}

// BeginPremiumRequest opens the global PIN prompt for a premium download
// of imageID. Images with an approved request download directly instead.
func (e *Engine) BeginPremiumRequest(ctx context.Context, imageID string) error {
	e.mu.Lock()
	switch {
	case e.user == nil:
		e.mu.Unlock()
		return common.ErrorUnauthorized
	case e.hasStatusLocked(imageID, api.StatusApproved):
		e.mu.Unlock()
		return ErrAlreadyApproved
	case e.hasStatusLocked(imageID, api.StatusPending), e.downloads[imageID] == RequestSubmitted:
		e.mu.Unlock()
		return ErrRequestPending
	case e.downloads[imageID] == Watermarking:
		e.mu.Unlock()
		return ErrDownloadBusy
	}
	e.mu.Unlock()

	if err := e.loadPin(ctx); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.clearPromptLocked()
	e.downloads[imageID] = PromptingGlobalPin
	e.pending = prompt{action: ActionPremiumRequest, target: imageID}
	return nil
}

// BeginCollectionDownload opens the global PIN prompt for downloading every
// image of an unlocked collection.
func (e *Engine) BeginCollectionDownload(ctx context.Context, collectionID string) error {
	e.mu.Lock()
	_, ok := e.unlocked[collectionID]
	e.mu.Unlock()
	if !ok {
		return common.ErrCollectionLocked
	}

	if err := e.loadPin(ctx); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.clearPromptLocked()
	e.pending = prompt{action: ActionCollectionDownload, target: collectionID}
	return nil
}

// SubmitGlobalPin answers the open prompt. A matching PIN runs the pending
// action; a mismatch closes the prompt with an error.
func (e *Engine) SubmitGlobalPin(ctx context.Context, candidate string) error {
	e.mu.Lock()
	p := e.pending
	e.mu.Unlock()

	if p.action == ActionNone {
		return common.ErrNoActiveDownloadFlow
	}
	if strings.TrimSpace(candidate) == "" {
		e.notifier.Error("Please enter the download PIN")
		return common.ErrEmptyPin
	}

	match := e.VerifyGlobalPin(candidate)

	e.mu.Lock()
	if e.pending != p {
		e.mu.Unlock()
		return common.ErrNoActiveDownloadFlow
	}
	e.clearPromptLocked()
	e.mu.Unlock()

	if !match {
		e.notifier.Error("Invalid download PIN")
		return common.ErrInvalidPin
	}

	switch p.action {
	case ActionPremiumRequest:
		_, err := e.RequestPremiumDownload(ctx, p.target)
		return err
	case ActionCollectionDownload:
		_, err := e.downloadCollection(ctx, p.target)
		return err
	}
	return nil
}

// RequestPremiumDownload records a pending purchase request for imageID.
// The request is added to the local list before the gateway answers and
// stays there if the gateway rejects it.
func (e *Engine) RequestPremiumDownload(ctx context.Context, imageID string) (*api.PurchaseRequest, error) {
	e.mu.Lock()
	if e.user == nil {
		e.mu.Unlock()
		return nil, common.ErrorUnauthorized
	}
	local := &api.PurchaseRequest{
		ID:        localIDPrefix + uuid.NewString(),
		UserID:    e.user.UserID,
		ImageID:   imageID,
		Status:    api.StatusPending,
		CreatedAt: time.Now(),
	}
	e.purchases = append([]*api.PurchaseRequest{local}, e.purchases...)
	e.downloads[imageID] = RequestSubmitted
	e.mu.Unlock()

	pr, err := e.gw.CreatePurchaseRequest(ctx, imageID)
	if err != nil {
		e.failed(ctx, "Could not submit the premium request", err, "image_id", imageID)
		return local, err
	}

	e.mu.Lock()
	for i, cur := range e.purchases {
		if cur.ID == local.ID {
			e.purchases[i] = pr
			break
		}
	}
	e.mu.Unlock()

	e.notifier.Success("Premium request submitted, waiting for approval")
	return pr, nil
}

// DownloadOriginal saves the unmodified image. It requires an approved
// purchase request for the image; the PIN is not asked again.
func (e *Engine) DownloadOriginal(ctx context.Context, img *api.Image) (string, error) {
	e.mu.Lock()
	approved := e.hasStatusLocked(img.ID, api.StatusApproved)
	e.mu.Unlock()
	if !approved {
		e.notifier.Error("Premium download needs an approved request")
		return "", common.ErrPremiumNotApproved
	}

	name := fileName(img)
	p, err := e.dl.Download(ctx, img.URL, name)
	if err != nil {
		e.failed(ctx, "Download failed", err, "image_id", img.ID)
		return "", err
	}
	e.notifier.Success("Downloaded " + name)
	return p, nil
}

// DownloadWatermarked saves a watermarked copy of the image. When the image
// cannot be rendered the original bytes are saved instead and the result is
// reported as degraded.
func (e *Engine) DownloadWatermarked(ctx context.Context, img *api.Image) (string, error) {
	e.mu.Lock()
	prev := e.downloads[img.ID]
	if prev == Watermarking {
		e.mu.Unlock()
		return "", ErrDownloadBusy
	}
	if prev == Idle {
		e.downloads[img.ID] = Watermarking
	}
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		if e.downloads[img.ID] == Watermarking {
			e.downloads[img.ID] = Idle
		}
		e.mu.Unlock()
	}()

	src, err := e.dl.Fetch(ctx, img.URL)
	if err != nil {
		e.failed(ctx, "Could not fetch the image", err, "image_id", img.ID)
		return "", err
	}

	out, err := e.renderer.Render(src)
	if err != nil {
		e.logger.Warn(ctx, "Watermark failed, saving original", "image_id", img.ID, "error", err)
		p, serr := e.dl.Save(fileName(img), src)
		if serr != nil {
			e.failed(ctx, "Download failed", serr, "image_id", img.ID)
			return "", serr
		}
		e.notifier.Degraded("Watermark could not be applied, downloaded the original")
		return p, nil
	}

	name := watermarkedName(img)
	p, err := e.dl.Save(name, out)
	if err != nil {
		e.failed(ctx, "Download failed", err, "image_id", img.ID)
		return "", err
	}
	e.notifier.Success("Downloaded " + name)
	return p, nil
}

// downloadCollection triggers one download per image with the configured
// delay between triggers and reports the outcome once.
func (e *Engine) downloadCollection(ctx context.Context, collectionID string) (int, error) {
	images, err := e.gw.ListImages(ctx, collectionID)
	if err != nil {
		e.failed(ctx, "Could not load collection images", err, "collection_id", collectionID)
		return 0, err
	}
	if len(images) == 0 {
		e.notifier.Warning("This collection has no images")
		return 0, nil
	}

	var done int
	for i, img := range images {
		if i > 0 {
			e.sleep(e.delay)
		}
		if _, err := e.dl.Download(ctx, img.URL, fileName(img)); err != nil {
			e.logger.Error(ctx, "Collection item download failed", "image_id", img.ID, "error", err)
			continue
		}
		done++
	}

	if done == len(images) {
		e.notifier.Success(fmt.Sprintf("Downloaded %d images", done))
	} else {
		e.notifier.Warning(fmt.Sprintf("Downloaded %d of %d images", done, len(images)))
	}
	return done, nil
}

// CreateTimeLimitedLink mints a signed link for an object path. A zero ttl
// uses the configured default.
func (e *Engine) CreateTimeLimitedLink(ctx context.Context, objectPath string, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = e.linkTTL
	}
	url, err := e.gw.CreateSignedURL(ctx, objectPath, ttl)
	if err != nil {
		e.failed(ctx, "Could not create a download link", err, "path", objectPath)
		return "", err
	}
	return url, nil
}

// DownloadGalleryImage is the anonymous gallery download: the image is
// fetched through a short-lived signed link rather than its public URL.
// Once a user is bound, originals only go through the premium flow.
func (e *Engine) DownloadGalleryImage(ctx context.Context, img *api.Image) (string, error) {
	e.mu.Lock()
	signedIn := e.user != nil
	e.mu.Unlock()
	if signedIn {
		e.notifier.Error("Signed in: use 'wm' or 'premium' to download")
		return "", ErrSignedIn
	}

	url, err := e.CreateTimeLimitedLink(ctx, img.StoragePath, 0)
	if err != nil {
		return "", err
	}
	name := fileName(img)
	p, err := e.dl.Download(ctx, url, name)
	if err != nil {
		e.failed(ctx, "Download failed", err, "image_id", img.ID)
		return "", err
	}
	e.notifier.Success("Downloaded " + name)
	return p, nil
}

func fileName(img *api.Image) string {
	ext := path.Ext(img.StoragePath)
	if ext == "" {
		ext = ".jpg"
	}
	return baseName(img) + ext
}

func watermarkedName(img *api.Image) string {
	return baseName(img) + "-watermarked.jpg"
}

func baseName(img *api.Image) string {
	if t := strings.TrimSpace(img.Title); t != "" {
		return t
	}
	return img.ID
}
