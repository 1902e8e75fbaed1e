// Package notify prints the portal's transient notifications.
package notify

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

type Kind int

const (
	KindSuccess Kind = iota
	KindError
	KindWarning
	KindDegraded
)

func (k Kind) label() string {
	switch k {
	case KindSuccess:
		return "OK"
	case KindError:
		return "ERROR"
	case KindWarning:
		return "WARN"
	case KindDegraded:
		return "DEGRADED"
	}
	return "INFO"
}

type Notifier struct {
	mu     sync.Mutex
	w      io.Writer
	badges map[Kind]lipgloss.Style
}

// New writes notifications to w. Colours follow what w supports.
func New(w io.Writer) *Notifier {
	r := lipgloss.NewRenderer(w)
	badge := r.NewStyle().Bold(true).Padding(0, 1)
	return &Notifier{
		w: w,
		badges: map[Kind]lipgloss.Style{
			KindSuccess:  badge.Foreground(lipgloss.Color("0")).Background(lipgloss.Color("10")),
			KindError:    badge.Foreground(lipgloss.Color("15")).Background(lipgloss.Color("9")),
			KindWarning:  badge.Foreground(lipgloss.Color("0")).Background(lipgloss.Color("11")),
			KindDegraded: badge.Foreground(lipgloss.Color("0")).Background(lipgloss.Color("214")),
		},
	}
}

func (n *Notifier) Notify(k Kind, msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	_, _ = fmt.Fprintf(n.w, "%s %s\n", n.badges[k].Render(k.label()), msg)
}

func (n *Notifier) Success(msg string)  { n.Notify(KindSuccess, msg) }
func (n *Notifier) Error(msg string)    { n.Notify(KindError, msg) }
func (n *Notifier) Warning(msg string)  { n.Notify(KindWarning, msg) }
func (n *Notifier) Degraded(msg string) { n.Notify(KindDegraded, msg) }
