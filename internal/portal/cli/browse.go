package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/photoportal/internal/api"
	"github.com/dmitrijs2005/photoportal/internal/common"
	"github.com/dmitrijs2005/photoportal/internal/portal/accessgate"
)

const hireText = `Planning a wedding, portrait or event session?
Write to the studio with the date, the location and what you have in mind,
and you will get an answer within two working days.`

// SetTab switches the dashboard tab and shows it.
func (a *App) SetTab(ctx context.Context, arg string) error {
	t, err := ParseTab(arg)
	if err != nil {
		printlnFn(err.Error())
		return errBadArgument
	}
	if t != TabGallery && t != TabHire {
		if err := a.requireSignIn(); err != nil {
			return err
		}
	}
	a.tab = t
	return a.Show(ctx)
}

// SetView switches the gallery tab between images and collections.
func (a *App) SetView(ctx context.Context, arg string) error {
	m, err := ParseViewMode(arg)
	if err != nil {
		printlnFn(err.Error())
		return errBadArgument
	}
	a.mode = m
	a.tab = TabGallery
	return a.Show(ctx)
}

// Show renders the current tab.
func (a *App) Show(ctx context.Context) error {
	switch a.tab {
	case TabProfile:
		return a.Profile(ctx)
	case TabGallery:
		if a.mode == ModeCollections {
			return a.Collections(ctx)
		}
		return a.Gallery(ctx)
	case TabPurchases:
		return a.Purchases(ctx)
	case TabHire:
		printlnFn(hireText)
	}
	return nil
}

func (a *App) Profile(context.Context) error {
	id := a.identity()
	if id == nil {
		printlnFn("Not signed in. Use 'signin' or 'signup'.")
		return nil
	}
	printlnFn(fmt.Sprintf("Name:  %s\nEmail: %s\nRole:  %s", id.Name, id.Email, id.Role))
	return nil
}

// Gallery lists the public gallery.
func (a *App) Gallery(ctx context.Context) error {
	images, err := a.gw.ListGallery(ctx, a.config.GalleryLimit)
	if err != nil {
		return a.fail(ctx, "Could not load the gallery", err)
	}
	a.listed, a.listing = images, listingGallery
	a.printImages(images)
	return nil
}

func (a *App) Collections(ctx context.Context) error {
	cols, err := a.gw.ListCollections(ctx)
	if err != nil {
		return a.fail(ctx, "Could not load collections", err)
	}
	a.collections = cols
	if len(cols) == 0 {
		printlnFn("No collections yet")
		return nil
	}
	for i, c := range cols {
		lock := "locked"
		if a.engine.IsUnlocked(c.ID) {
			lock = "unlocked"
		}
		printlnFn(fmt.Sprintf("%3d. %s [%s] %s", i+1, c.Title, lock, c.Description))
	}
	return nil
}

// Open selects a collection from the last listing. A collection that is
// still locked asks for its PIN.
func (a *App) Open(ctx context.Context, arg string) error {
	if err := a.requireSignIn(); err != nil {
		return err
	}
	col, err := pick(a.collections, arg)
	if err != nil {
		printlnFn("Usage: open <n> (see 'collections')")
		return err
	}

	images, st, err := a.engine.SelectCollection(ctx, col.ID)
	if err != nil {
		return err
	}
	a.tab, a.mode = TabGallery, ModeCollections
	if st == accessgate.Unlocked {
		a.listed, a.listing = images, listingCollection
		printlnFn("Collection: " + col.Title)
		a.printImages(images)
		return nil
	}
	return a.Unlock(ctx)
}

// Unlock asks for the PIN of the collection waiting for one. Wrong PINs can
// be retried without limit.
func (a *App) Unlock(ctx context.Context) error {
	id := a.engine.Current()
	if id == "" || a.engine.CollectionState(id) != accessgate.PromptingPin {
		printlnFn("No collection is waiting for a PIN. Use 'open <n>' first.")
		return common.ErrNoActiveCollectionPin
	}

	pin, err := getSecret("Enter collection PIN", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(pin)

	images, err := a.engine.UnlockCollection(ctx, id, string(pin))
	if err != nil {
		if errors.Is(err, common.ErrInvalidPin) {
			printlnFn("Type 'unlock' to try again")
		}
		return err
	}
	a.listed, a.listing = images, listingCollection
	a.printImages(images)
	return nil
}

func (a *App) Leave(context.Context) error {
	a.engine.LeaveCollection()
	a.listed, a.listing = nil, listingNone
	printlnFn("Left the collection")
	return nil
}

// Purchases lists the user's purchase requests with the premium control
// each image currently gets.
func (a *App) Purchases(ctx context.Context) error {
	if err := a.requireSignIn(); err != nil {
		return err
	}
	prs := a.engine.Purchases()
	if len(prs) == 0 {
		printlnFn("No purchase requests")
		return nil
	}
	for i, pr := range prs {
		printlnFn(fmt.Sprintf("%3d. image %s  %-8s  %s", i+1, pr.ImageID, pr.Status, pr.CreatedAt.Format("2006-01-02 15:04")))
	}
	return nil
}

// Refresh reloads the global PIN and purchase requests.
func (a *App) Refresh(ctx context.Context) error {
	if err := a.requireSignIn(); err != nil {
		return err
	}
	if err := a.engine.Refresh(ctx); err != nil {
		return err
	}
	a.notifier.Success("Dashboard refreshed")
	return nil
}

func (a *App) printImages(images []*api.Image) {
	if len(images) == 0 {
		printlnFn("No images")
		return
	}
	signedIn := a.isSignedIn()
	for i, img := range images {
		line := fmt.Sprintf("%3d. %s", i+1, titleOf(img))
		if signedIn {
			line += "  [" + a.engine.PremiumControl(img.ID).String() + "]"
		}
		printlnFn(line)
	}
}

func titleOf(img *api.Image) string {
	if img.Title != "" {
		return img.Title
	}
	return img.ID
}

// pick returns the 1-based arg-th element of items.
func pick[T any](items []T, arg string) (T, error) {
	var zero T
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 || n > len(items) {
		return zero, errBadArgument
	}
	return items[n-1], nil
}
