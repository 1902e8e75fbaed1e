package cli

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/photoportal/internal/api"
	"github.com/dmitrijs2005/photoportal/internal/common"
	"github.com/dmitrijs2005/photoportal/internal/portal/accessgate"
)

func (a *App) listedImage(arg, usage string) (*api.Image, error) {
	img, err := pick(a.listed, arg)
	if err != nil {
		printlnFn("Usage: " + usage + " <n> (see 'gallery' or an open collection)")
		return nil, err
	}
	return img, nil
}

// Download saves a public gallery image through a short-lived signed link.
// It works only before signing in and only on the gallery listing.
func (a *App) Download(ctx context.Context, arg string) error {
	if a.listing != listingGallery {
		printlnFn("Use 'gallery' first; collection images go through 'wm' or 'premium'")
		return errBadArgument
	}
	img, err := a.listedImage(arg, "download")
	if err != nil {
		return err
	}
	_, err = a.engine.DownloadGalleryImage(ctx, img)
	return err
}

// Watermark saves a watermarked copy of an image.
func (a *App) Watermark(ctx context.Context, arg string) error {
	img, err := a.listedImage(arg, "wm")
	if err != nil {
		return err
	}
	_, err = a.engine.DownloadWatermarked(ctx, img)
	return err
}

// Premium starts a premium request: the global download PIN is asked and,
// when it matches, a pending purchase request is filed.
func (a *App) Premium(ctx context.Context, arg string) error {
	if err := a.requireSignIn(); err != nil {
		return err
	}
	img, err := a.listedImage(arg, "premium")
	if err != nil {
		return err
	}

	if err := a.engine.BeginPremiumRequest(ctx, img.ID); err != nil {
		switch {
		case errors.Is(err, accessgate.ErrAlreadyApproved):
			printlnFn("Already approved, use 'original " + arg + "'")
		case errors.Is(err, accessgate.ErrRequestPending):
			printlnFn("A request for this image is waiting for approval")
		}
		return err
	}
	return a.submitGlobalPin(ctx)
}

// Original downloads the unmodified image once its request is approved.
func (a *App) Original(ctx context.Context, arg string) error {
	if err := a.requireSignIn(); err != nil {
		return err
	}
	img, err := a.listedImage(arg, "original")
	if err != nil {
		return err
	}
	_, err = a.engine.DownloadOriginal(ctx, img)
	return err
}

// DownloadCollection downloads every image of the open collection after
// the global download PIN.
func (a *App) DownloadCollection(ctx context.Context) error {
	if err := a.requireSignIn(); err != nil {
		return err
	}
	id := a.engine.Current()
	if id == "" {
		printlnFn("Open a collection first")
		return common.ErrCollectionLocked
	}
	if err := a.engine.BeginCollectionDownload(ctx, id); err != nil {
		if errors.Is(err, common.ErrCollectionLocked) {
			printlnFn("Unlock the collection first")
		}
		return err
	}
	return a.submitGlobalPin(ctx)
}

func (a *App) submitGlobalPin(ctx context.Context) error {
	pin, err := getSecret("Enter download PIN", a.out)
	if err != nil {
		a.engine.CancelPrompt()
		return err
	}
	defer common.WipeByteArray(pin)

	err = a.engine.SubmitGlobalPin(ctx, string(pin))
	if errors.Is(err, common.ErrEmptyPin) {
		a.engine.CancelPrompt()
	}
	return err
}
