package workspace

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// SessionState is the slice of session state the controller reads and
// mutates when a selection lands.
type SessionState interface {
	CurrentWorkspace() *Workspace
	SetCurrentWorkspace(ws *Workspace)
}

// DefaultSetter is the backend collaborator that persists which
// workspace is the caller's default. The call is idempotent on the
// backend side.
type DefaultSetter interface {
	SetDefaultWorkspace(ctx context.Context, workspaceID string) error
}

// Controller decides which workspace may become current and rejects
// disallowed selections with a specific reason.
type Controller struct {
	state   SessionState
	backend DefaultSetter
	nowTime func() time.Time
	log     zerolog.Logger
}

type ControllerOption func(*Controller)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) ControllerOption {
	return func(c *Controller) {
		c.nowTime = nowFunc
	}
}

func WithLogger(log zerolog.Logger) ControllerOption {
	return func(c *Controller) {
		c.log = log
	}
}

func NewController(state SessionState, backend DefaultSetter, options ...ControllerOption) *Controller {
	c := &Controller{
		state:   state,
		backend: backend,
		nowTime: time.Now,
		log:     zerolog.Nop(),
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// SelectDefault picks the workspace flagged as default, falling back to
// the first in list order. Nil on an empty list.
func SelectDefault(workspaces []Workspace) *Workspace {
	if len(workspaces) == 0 {
		return nil
	}
	for i := range workspaces {
		if workspaces[i].IsDefault {
			return &workspaces[i]
		}
	}
	return &workspaces[0]
}

// ApplyDefault installs the default workspace from a fresh list when no
// current workspace is set. First load wins: an existing explicit
// selection is never overridden.
func (c *Controller) ApplyDefault(workspaces []Workspace) *Workspace {
	if current := c.state.CurrentWorkspace(); current != nil {
		return current
	}
	ws := SelectDefault(workspaces)
	if ws != nil {
		c.state.SetCurrentWorkspace(ws)
	}
	return ws
}

// TrySelect makes ws the current workspace. A workspace outside its
// access window is rejected with an *AccessDeniedError. On a permitted
// selection the backend default is set first; only after that call
// succeeds does the session state change, so a backend failure leaves
// the previous selection intact.
func (c *Controller) TrySelect(ctx context.Context, ws Workspace) error {
	if denied := AvailabilityAt(ws, c.nowTime()); denied != nil {
		c.log.Info().
			Str("workspaceId", ws.WorkspaceID).
			Str("reason", string(denied.Reason)).
			Msg("workspace selection denied")
		return denied
	}

	if err := c.backend.SetDefaultWorkspace(ctx, ws.WorkspaceID); err != nil {
		return err
	}

	c.state.SetCurrentWorkspace(&ws)
	return nil
}
