// Package confirm implements confirm-then-act dialogs for destructive
// operations.
//
// A Dialog moves Closed -> Open -> Confirming and then back to Closed or
// Open. Failures of the action are never returned to the caller; they are
// handed to the notifier so the outcome is shown apart from the dialog.
package confirm

import (
	"context"
	"errors"
	"sync"

	"github.com/bryan-buckman/pressroom/internal/apierr"
	"github.com/bryan-buckman/pressroom/internal/notify"
)

// State of a Dialog.
type State int

const (
	Closed State = iota
	Open
	Confirming
)

func (s State) String() string {
	switch s {
	case Open:
		return "open"
	case Confirming:
		return "confirming"
	default:
		return "closed"
	}
}

// Severity styles the confirm button.
type Severity string

const (
	Danger  Severity = "danger"
	Warning Severity = "warning"
	Info    Severity = "info"
)

var (
	ErrBusy    = errors.New("confirmation in progress")
	ErrNotOpen = errors.New("dialog is not open")
)

// Options describe one confirmation.
type Options struct {
	Title        string
	Message      string
	ConfirmLabel string
	CancelLabel  string
	Severity     Severity
	Action       func(ctx context.Context) error

	AutoCloseOnSuccess bool
	// SuccessMessage, when set, is shown as a success notification.
	SuccessMessage string
	// ErrorTitle titles the failure notification; defaults to "Error".
	ErrorTitle string
}

// Dialog is a single confirmation dialog instance.
type Dialog struct {
	mu       sync.Mutex
	notifier *notify.Notifier
	state    State
	opts     Options
}

// New returns a closed dialog reporting outcomes to n.
func New(n *notify.Notifier) *Dialog {
	return &Dialog{notifier: n}
}

// State returns the current state.
func (d *Dialog) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Options returns what the dialog is currently asking.
func (d *Dialog) Options() Options {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.opts
}

// CanClose reports whether the close affordance is enabled.
func (d *Dialog) CanClose() bool {
	return d.State() != Confirming
}

// Open shows the dialog with opts, replacing any pending question.
func (d *Dialog) Open(opts Options) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state == Confirming {
		return ErrBusy
	}
	if opts.ConfirmLabel == "" {
		opts.ConfirmLabel = "Confirm"
	}
	if opts.CancelLabel == "" {
		opts.CancelLabel = "Cancel"
	}
	if opts.Severity == "" {
		opts.Severity = Danger
	}
	d.opts = opts
	d.state = Open
	return nil
}

// Cancel closes an open dialog. It is ignored while confirming.
func (d *Dialog) Cancel() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state != Open {
		return false
	}
	d.state = Closed
	return true
}

// Confirm runs the action once. It reports whether the action succeeded;
// err is only ErrNotOpen or ErrBusy.
func (d *Dialog) Confirm(ctx context.Context) (bool, error) {
	d.mu.Lock()
	switch d.state {
	case Confirming:
		d.mu.Unlock()
		return false, ErrBusy
	case Closed:
		d.mu.Unlock()
		return false, ErrNotOpen
	}
	d.state = Confirming
	opts := d.opts
	d.mu.Unlock()

	var err error
	if opts.Action != nil {
		err = run(ctx, opts.Action)
	}

	d.mu.Lock()
	switch {
	case err != nil:
		d.state = Open
	case opts.AutoCloseOnSuccess:
		d.state = Closed
	default:
		d.state = Open
	}
	d.mu.Unlock()

	if err != nil {
		title := opts.ErrorTitle
		if title == "" {
			title = "Error"
		}
		d.notifier.Error(title, apierr.Message(err, apierr.DefaultMessage))
		return false, nil
	}
	if opts.SuccessMessage != "" {
		d.notifier.Success("Success", opts.SuccessMessage)
	}
	return true, nil
}

// run calls action, turning a panic into an error.
func run(ctx context.Context, action func(context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &apierr.Error{Kind: apierr.KindCustom, Text: "The action failed unexpectedly."}
		}
	}()
	return action(ctx)
}
