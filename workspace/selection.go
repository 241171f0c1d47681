package workspace

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"

	"github.com/vocdoni/proof-artifacts/config"
)

type selectionKind int

const (
	selectDefaultOrAll selectionKind = iota
	selectAll
	selectOne
)

// Selection decides which members of a workspace are targets of a run.
type Selection struct {
	kind selectionKind
	name string
}

var (
	// DefaultOrAll selects the default member of the workspace, or every
	// member when there is no default one.
	DefaultOrAll = Selection{kind: selectDefaultOrAll}
	// All selects every member of the workspace.
	All = Selection{kind: selectAll}
)

// Selected selects the member with the given name.
func Selected(name string) Selection {
	return Selection{kind: selectOne, name: name}
}

// ErrConflictingSelection is returned when a package and the whole workspace
// are selected at the same time.
var ErrConflictingSelection = errors.New("a package and the whole workspace cannot be selected at the same time")

// NewSelection returns the selection of the CLI flags: a package name, the
// whole workspace or, if none is set, the default member.
func NewSelection(pkg string, workspace bool) (Selection, error) {
	switch {
	case pkg != "" && workspace:
		return Selection{}, ErrConflictingSelection
	case pkg != "":
		return Selected(pkg), nil
	case workspace:
		return All, nil
	}
	return DefaultOrAll, nil
}

func (s Selection) String() string {
	switch s.kind {
	case selectAll:
		return "all"
	case selectOne:
		return "package " + s.name
	}
	return "default or all"
}

// UnknownTargetError is returned when the selected package is not a member
// of the workspace.
type UnknownTargetError struct {
	Name string
}

func (e *UnknownTargetError) Error() string {
	return fmt.Sprintf("package %q is not a member of the workspace", e.Name)
}

func (s Selection) apply(ws *Workspace, m *Manifest) ([]*Target, error) {
	switch s.kind {
	case selectAll:
		return ws.Members, nil
	case selectOne:
		t, ok := ws.Target(s.name)
		if !ok {
			return nil, &UnknownTargetError{Name: s.name}
		}
		return []*Target{t}, nil
	}
	if m.Workspace == nil || m.Workspace.DefaultMember == "" {
		return ws.Members, nil
	}
	// the default member is a directory, as the members list
	dir := filepath.Join(ws.RootDir, m.Workspace.DefaultMember)
	i := slices.IndexFunc(ws.Members, func(t *Target) bool { return t.RootDir == dir })
	if i < 0 {
		return nil, &ManifestError{
			Path:   filepath.Join(ws.RootDir, config.ManifestFile),
			Reason: fmt.Sprintf("default-member %q is not a member", m.Workspace.DefaultMember),
		}
	}
	return []*Target{ws.Members[i]}, nil
}
