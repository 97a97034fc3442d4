package session

import "ext2view/internal/remote"

type MenuKind int

const (
	MenuHidden MenuKind = iota
	MenuBackground
	MenuItem
)

type MenuAction int

const (
	ActionNewFile MenuAction = iota
	ActionNewFolder
	ActionRefresh
	ActionOpen
	ActionView
	ActionEdit
	ActionCreateShortcut
	ActionDelete
)

func (a MenuAction) Label() string {
	switch a {
	case ActionNewFile:
		return "New file"
	case ActionNewFolder:
		return "New folder"
	case ActionRefresh:
		return "Refresh"
	case ActionOpen:
		return "Open"
	case ActionView:
		return "View"
	case ActionEdit:
		return "Edit"
	case ActionCreateShortcut:
		return "Create shortcut"
	case ActionDelete:
		return "Delete"
	default:
		return ""
	}
}

type Point struct {
	X int
	Y int
}

type Rect struct {
	X int
	Y int
	W int
	H int
}

func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X < r.X+r.W && p.Y >= r.Y && p.Y < r.Y+r.H
}

type MenuState struct {
	Kind     MenuKind
	Position Point
	Target   remote.Entry
	Cursor   int
}

// ContextMenuController tracks the right-click menu. At most one menu is
// shown; its rectangle is computed here so hit testing and drawing agree.
type ContextMenuController struct {
	state   MenuState
	screenW int
	screenH int
}

func NewContextMenuController() *ContextMenuController {
	return &ContextMenuController{}
}

func (c *ContextMenuController) Resize(w, h int) {
	c.screenW = w
	c.screenH = h
}

func (c *ContextMenuController) State() MenuState { return c.state }

func (c *ContextMenuController) Visible() bool { return c.state.Kind != MenuHidden }

// RightClick opens the background menu when target is nil and the item menu
// otherwise. A right-click on ".." changes nothing. It reports whether the
// state changed.
func (c *ContextMenuController) RightClick(p Point, target *remote.Entry) bool {
	if target == nil {
		c.state = MenuState{Kind: MenuBackground, Position: p}
		return true
	}
	if target.IsParent() {
		return false
	}
	c.state = MenuState{Kind: MenuItem, Position: p, Target: *target}
	return true
}

// PrimaryClick selects the action under p when p hits a menu row and hides
// the menu whenever p is outside it.
func (c *ContextMenuController) PrimaryClick(p Point) (MenuAction, bool) {
	if !c.Visible() {
		return 0, false
	}
	b := c.Bounds()
	if !b.Contains(p) {
		c.Escape()
		return 0, false
	}
	row := p.Y - b.Y - 1
	actions := c.Actions()
	if row < 0 || row >= len(actions) {
		return 0, false
	}
	c.Escape()
	return actions[row], true
}

func (c *ContextMenuController) Escape() {
	c.state = MenuState{}
}

func (c *ContextMenuController) Move(delta int) {
	n := len(c.Actions())
	if n == 0 {
		return
	}
	c.state.Cursor = (c.state.Cursor + delta + n) % n
}

func (c *ContextMenuController) Select() (MenuAction, bool) {
	actions := c.Actions()
	if len(actions) == 0 {
		return 0, false
	}
	a := actions[c.state.Cursor]
	c.Escape()
	return a, true
}

func (c *ContextMenuController) Actions() []MenuAction {
	switch c.state.Kind {
	case MenuBackground:
		return []MenuAction{ActionNewFile, ActionNewFolder, ActionRefresh}
	case MenuItem:
		if c.state.Target.IsDir {
			return []MenuAction{ActionOpen, ActionCreateShortcut, ActionDelete}
		}
		return []MenuAction{ActionView, ActionEdit, ActionCreateShortcut, ActionDelete}
	default:
		return nil
	}
}

func (c *ContextMenuController) Bounds() Rect {
	actions := c.Actions()
	if len(actions) == 0 {
		return Rect{}
	}
	w := 0
	for _, a := range actions {
		if l := len(a.Label()); l > w {
			w = l
		}
	}
	r := Rect{X: c.state.Position.X, Y: c.state.Position.Y, W: w + 4, H: len(actions) + 2}
	if c.screenW > 0 && r.X+r.W > c.screenW {
		r.X = c.screenW - r.W
	}
	if c.screenH > 0 && r.Y+r.H > c.screenH {
		r.Y = c.screenH - r.H
	}
	if r.X < 0 {
		r.X = 0
	}
	if r.Y < 0 {
		r.Y = 0
	}
	return r
}
