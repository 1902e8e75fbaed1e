package cli

import "fmt"

// Tab is the dashboard section on screen.
type Tab int

const (
	TabProfile Tab = iota
	TabGallery
	TabPurchases
	TabHire
)

var tabNames = map[Tab]string{
	TabProfile:   "profile",
	TabGallery:   "gallery",
	TabPurchases: "purchases",
	TabHire:      "hire",
}

func (t Tab) String() string {
	if s, ok := tabNames[t]; ok {
		return s
	}
	return "unknown"
}

func ParseTab(s string) (Tab, error) {
	for t, name := range tabNames {
		if name == s {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown tab %q (profile, gallery, purchases, hire)", s)
}

// ViewMode switches the gallery tab between public images and collections.
type ViewMode int

const (
	ModeGallery ViewMode = iota
	ModeCollections
)

func (m ViewMode) String() string {
	switch m {
	case ModeGallery:
		return "gallery"
	case ModeCollections:
		return "collections"
	}
	return "unknown"
}

func ParseViewMode(s string) (ViewMode, error) {
	switch s {
	case "gallery":
		return ModeGallery, nil
	case "collections":
		return ModeCollections, nil
	}
	return 0, fmt.Errorf("unknown view %q (gallery, collections)", s)
}
