package builtin

import (
	"context"
	"log/slog"
	"maps"
	"slices"

	git "github.com/go-git/go-git/v5"

	"github.com/ardnew/whale/lang"
)

func gitSpecs() []lang.Spec {
	return []lang.Spec{
		{
			Name:  "git_status",
			Group: groupGit,
			Description: "Return the changed files of the repository holding path (default \".\") " +
				"as a table of path, status and staged.",
			Params:  []string{"path"},
			MaxArgs: 1,
			Kinds:   [][]lang.Kind{stringKind},
			Macro:   gitStatus,
		},
	}
}

func gitStatus(_ context.Context, call *lang.Invocation) (lang.Value, error) {
	dir := "."
	if len(call.Args) > 0 {
		dir = call.Arg(0).Str()
	}

	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return lang.Empty(), external(err, slog.String("path", dir))
	}

	wt, err := repo.Worktree()
	if err != nil {
		return lang.Empty(), external(err, slog.String("path", dir))
	}

	status, err := wt.Status()
	if err != nil {
		return lang.Empty(), external(err, slog.String("path", dir))
	}

	var rows [][]lang.Value

	for _, path := range slices.Sorted(maps.Keys(status)) {
		fs := status[path]

		// A worktree change hides a staged one for the same path.
		switch {
		case fs.Worktree == git.Untracked:
			rows = append(rows, statusRow(path, "created", false))
		case fs.Worktree != git.Unmodified:
			rows = append(rows, statusRow(path, statusName(fs.Worktree), false))
		case fs.Staging != git.Unmodified:
			rows = append(rows, statusRow(path, statusName(fs.Staging), true))
		}
	}

	t, err := lang.NewTable([]string{"path", "status", "staged"}, rows...)
	if err != nil {
		return lang.Empty(), err
	}

	return lang.TableValue(t), nil
}

func statusRow(path, status string, staged bool) []lang.Value {
	return []lang.Value{lang.String(path), lang.String(status), lang.Bool(staged)}
}

func statusName(code git.StatusCode) string {
	switch code {
	case git.Added, git.Untracked:
		return "created"
	case git.Deleted:
		return "deleted"
	case git.Modified:
		return "modified"
	case git.Renamed:
		return "renamed"
	case git.Copied:
		return "copied"
	case git.UpdatedButUnmerged:
		return "unmerged"
	default:
		return string(code)
	}
}
