package accessgate

// CollectionState is where a single collection stands for this session.
type CollectionState int

const (
	Locked CollectionState = iota
	PromptingPin
	Unlocked
	// LockedCached is a collection the user has left after unlocking it.
	// Selecting it again skips the PIN prompt.
	LockedCached
)

func (s CollectionState) String() string {
	switch s {
	case Locked:
		return "locked"
	case PromptingPin:
		return "prompting-pin"
	case Unlocked:
		return "unlocked"
	case LockedCached:
		return "locked-cached"
	}
	return "unknown"
}

// DownloadState is the per-image download flow.
type DownloadState int

const (
	Idle DownloadState = iota
	Watermarking
	PromptingGlobalPin
	RequestSubmitted
)

func (s DownloadState) String() string {
	switch s {
	case Idle:
		return "idle"
	case Watermarking:
		return "watermarking"
	case PromptingGlobalPin:
		return "prompting-global-pin"
	case RequestSubmitted:
		return "request-submitted"
	}
	return "unknown"
}

// Action is what a pending global PIN prompt will do once the PIN matches.
type Action int

const (
	ActionNone Action = iota
	ActionPremiumRequest
	ActionCollectionDownload
)

func (a Action) String() string {
	switch a {
	case ActionNone:
		return "none"
	case ActionPremiumRequest:
		return "premium-request"
	case ActionCollectionDownload:
		return "collection-download"
	}
	return "unknown"
}

// Control is the premium control a view shows next to an image.
type Control int

const (
	ControlRequestPremium Control = iota
	ControlPending
	ControlDownloadPremium
)

func (c Control) String() string {
	switch c {
	case ControlRequestPremium:
		return "Request Premium"
	case ControlPending:
		return "Pending Approval"
	case ControlDownloadPremium:
		return "Download Premium"
	}
	return "unknown"
}
