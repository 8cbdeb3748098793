package corner

import (
	"regexp"
	"strings"
)

// WindowType is the window-manager role of a window.
type WindowType int

// Window types recognized by Managed.
const (
	TypeNormal WindowType = iota
	TypeDialog
	TypeDesktop
	TypeDock
	TypeToolbar
	TypeMenu
	TypeUtility
	TypeSplash
	TypeDropdownMenu
	TypePopupMenu
	TypeTooltip
	TypeNotification
	TypeOnScreenDisplay
	TypeComboBox
)

// WindowInfo is the window state that decides whether corners are rounded.
type WindowInfo struct {
	Type       WindowType
	Class      string
	Caption    string
	Managed    bool // the window manager controls placement and decoration
	FullScreen bool
	Special    bool
	Popup      bool
	LockScreen bool
	Modal      bool
	Decorated  bool
	HasShadow  bool
}

// undecoratedShells are shell and launcher window classes that draw their
// own outlines when they have no decoration.
var undecoratedShells = []string{
	"plasma",
	"krunner",
	"sddm",
	"vmware-user",
	"latte-dock",
	"lattedock",
	"plank",
	"cairo-dock",
	"albert",
	"ulauncher",
	"ksplash",
	"ksmserver",
	"sourcegit",
}

var jetbrainsHelperCaption = regexp.MustCompile(`win[0-9]+`)

// Managed reports whether the window gets rounded corners.
func Managed(w WindowInfo) bool {
	switch w.Type {
	case TypeDesktop, TypePopupMenu, TypeTooltip, TypeDropdownMenu, TypeSplash,
		TypeOnScreenDisplay, TypeUtility, TypeDock, TypeToolbar, TypeMenu:
		return false
	}
	if !w.Managed || w.FullScreen || w.Special || w.Popup || w.LockScreen {
		return false
	}

	class := strings.ToLower(w.Class)
	if !w.Decorated {
		for _, c := range undecoratedShells {
			if strings.Contains(class, c) {
				return false
			}
		}
		if strings.Contains(class, "reaper") && !w.HasShadow {
			return false
		}
	}
	if strings.Contains(class, "xwaylandvideobridge") {
		return false
	}
	if strings.Contains(class, "jetbrains") && jetbrainsHelperCaption.MatchString(w.Caption) {
		return false
	}
	if strings.Contains(class, "plasma") && w.Type != TypeNormal && w.Type != TypeDialog && !w.Modal {
		return false
	}
	return true
}
