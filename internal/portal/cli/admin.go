package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/photoportal/internal/api"
	"github.com/dmitrijs2005/photoportal/internal/common"
)

// Requests lists every purchase request for review.
func (a *App) Requests(ctx context.Context) error {
	if err := a.requireAdmin(); err != nil {
		return err
	}
	prs, err := a.gw.ListPurchaseRequests(ctx, true)
	if err != nil {
		return a.fail(ctx, "Could not load purchase requests", err)
	}
	a.requests = prs
	if len(prs) == 0 {
		printlnFn("No purchase requests")
		return nil
	}
	for i, pr := range prs {
		printlnFn(fmt.Sprintf("%3d. user %s  image %s  %s", i+1, pr.UserID, pr.ImageID, pr.Status))
	}
	return nil
}

func (a *App) Approve(ctx context.Context, arg string) error {
	return a.decide(ctx, arg, api.StatusApproved)
}

func (a *App) Deny(ctx context.Context, arg string) error {
	return a.decide(ctx, arg, api.StatusDenied)
}

func (a *App) decide(ctx context.Context, arg, status string) error {
	if err := a.requireAdmin(); err != nil {
		return err
	}
	pr, err := pick(a.requests, arg)
	if err != nil {
		printlnFn("Usage: approve|deny <n> (see 'requests')")
		return err
	}
	updated, err := a.gw.UpdatePurchaseRequestStatus(ctx, pr.ID, status)
	if err != nil {
		return a.fail(ctx, "Could not update the request", err)
	}
	*pr = *updated
	a.notifier.Success("Request " + status)
	return nil
}

// SetGlobalPin replaces the global download PIN. Already cached values in
// other sessions are not revoked.
func (a *App) SetGlobalPin(ctx context.Context) error {
	if err := a.requireAdmin(); err != nil {
		return err
	}
	pin, confirm, err := a.newPin("New download PIN")
	if err != nil {
		return err
	}
	if pin != confirm {
		a.notifier.Error("PINs do not match")
		return common.ErrorValidation
	}
	if err := a.gw.SetDownloadPin(ctx, pin); err != nil {
		return a.fail(ctx, "Could not update the download PIN", err)
	}
	a.notifier.Success("Download PIN updated")
	return a.engine.Refresh(ctx)
}

func (a *App) NewCollection(ctx context.Context) error {
	if err := a.requireAdmin(); err != nil {
		return err
	}
	title, err := getSimpleText(a.reader, "Collection title", a.out)
	if err != nil {
		return err
	}
	desc, err := getSimpleText(a.reader, "Description (optional)", a.out)
	if err != nil {
		return err
	}
	pin, confirm, err := a.newPin("Collection PIN")
	if err != nil {
		return err
	}

	switch {
	case title == "":
		a.notifier.Error("A title is required")
		return common.ErrorValidation
	case pin != confirm:
		a.notifier.Error("PINs do not match")
		return common.ErrorValidation
	}

	col, err := a.gw.CreateCollection(ctx, title, desc, pin)
	if err != nil {
		return a.fail(ctx, "Could not create the collection", err)
	}
	a.notifier.Success("Collection " + col.Title + " created")
	return nil
}

// ChangeCollectionPin sets a new PIN on the open collection.
func (a *App) ChangeCollectionPin(ctx context.Context) error {
	if err := a.requireAdmin(); err != nil {
		return err
	}
	id := a.engine.Current()
	if id == "" {
		printlnFn("Open a collection first")
		return errBadArgument
	}
	pin, confirm, err := a.newPin("New collection PIN")
	if err != nil {
		return err
	}
	if pin != confirm {
		a.notifier.Error("PINs do not match")
		return common.ErrorValidation
	}
	if err := a.gw.SetCollectionPin(ctx, id, pin); err != nil {
		return a.fail(ctx, "Could not change the collection PIN", err)
	}
	a.notifier.Success("Collection PIN changed")
	return nil
}

// newPin asks for a PIN and its confirmation. An empty PIN is rejected.
func (a *App) newPin(prompt string) (string, string, error) {
	pin, err := getSecret(prompt, a.out)
	if err != nil {
		return "", "", err
	}
	defer common.WipeByteArray(pin)
	confirm, err := getSecret("Repeat the PIN", a.out)
	if err != nil {
		return "", "", err
	}
	defer common.WipeByteArray(confirm)

	p := strings.TrimSpace(string(pin))
	if p == "" {
		a.notifier.Error("The PIN cannot be empty")
		return "", "", common.ErrEmptyPin
	}
	return p, strings.TrimSpace(string(confirm)), nil
}

// Upload adds a local image file to the open collection.
func (a *App) Upload(ctx context.Context, path string) error {
	if err := a.requireAdmin(); err != nil {
		return err
	}
	id := a.engine.Current()
	if id == "" {
		printlnFn("Open a collection first")
		return errBadArgument
	}
	if path == "" {
		printlnFn("Usage: upload <file>")
		return errBadArgument
	}

	content, err := os.ReadFile(path)
	if err != nil {
		a.notifier.Error("Cannot read " + path)
		return err
	}
	title, err := getSimpleText(a.reader, "Image title (optional)", a.out)
	if err != nil {
		return err
	}
	name := filepath.Base(path)
	if title == "" {
		title = strings.TrimSuffix(name, filepath.Ext(name))
	}

	img, err := a.gw.UploadImage(ctx, id, title, name, http.DetectContentType(content), content)
	if err != nil {
		return a.fail(ctx, "Upload failed", err)
	}
	a.listed = append(a.listed, img)
	a.notifier.Success("Uploaded " + img.Title)
	return nil
}

func (a *App) DeleteImage(ctx context.Context, arg string) error {
	if err := a.requireAdmin(); err != nil {
		return err
	}
	img, err := a.listedImage(arg, "rmimage")
	if err != nil {
		return err
	}
	if err := a.gw.DeleteImage(ctx, img.ID); err != nil {
		return a.fail(ctx, "Could not delete the image", err)
	}
	a.listed = without(a.listed, img)
	a.notifier.Success("Deleted " + titleOf(img))
	return nil
}

func (a *App) Users(ctx context.Context) error {
	if err := a.requireAdmin(); err != nil {
		return err
	}
	users, err := a.gw.ListUsers(ctx)
	if err != nil {
		return a.fail(ctx, "Could not load users", err)
	}
	a.users = users
	for i, u := range users {
		printlnFn(fmt.Sprintf("%3d. %-30s %-20s %s", i+1, u.Email, u.Name, u.Role))
	}
	return nil
}

// DeleteUser removes an account. A signed-in session of that user is
// forced back to sign-in through the realtime channel.
func (a *App) DeleteUser(ctx context.Context, arg string) error {
	if err := a.requireAdmin(); err != nil {
		return err
	}
	u, err := pick(a.users, arg)
	if err != nil {
		printlnFn("Usage: rmuser <n> (see 'users')")
		return err
	}
	if err := a.gw.DeleteUser(ctx, u.ID); err != nil {
		return a.fail(ctx, "Could not delete the user", err)
	}
	a.users = without(a.users, u)
	a.notifier.Success("Deleted " + u.Email)
	return nil
}

func without[T comparable](items []T, v T) []T {
	out := items[:0:0]
	for _, it := range items {
		if it != v {
			out = append(out, it)
		}
	}
	return out
}
