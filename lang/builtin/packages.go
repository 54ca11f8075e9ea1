package builtin

import (
	"context"
	"slices"
	"strings"

	"github.com/ardnew/whale/lang"
)

// packageManager is the command the packages group drives.
const packageManager = "dnf"

func (c *config) packageSpecs() []lang.Spec {
	// dnf builds a spec that runs "dnf -y <verb...> <names...>", taking the
	// names from the first argument when the spec has one.
	dnf := func(name, desc string, verb ...string) lang.Spec {
		return lang.Spec{
			Name:        name,
			Group:       groupPackages,
			Description: desc,
			Params:      []string{"names"},
			MinArgs:     1,
			MaxArgs:     1,
			Kinds:       [][]lang.Kind{wordsKind},
			Macro: func(ctx context.Context, call *lang.Invocation) (lang.Value, error) {
				names, err := words(call.Arg(0))
				if err != nil {
					return lang.Empty(), err
				}

				if len(names) == 0 {
					return lang.Empty(), lang.ErrArityMismatch.Errorf("%s: no names given", name)
				}

				return c.privileged(ctx, call, slices.Concat(verb, names)...)
			},
		}
	}

	return []lang.Spec{
		dnf("install_package", "Install one or more packages.", "install"),
		dnf("uninstall_package", "Remove one or more packages.", "remove"),
		dnf("enable_copr_repository", "Enable one or more COPR repositories.", "copr", "enable"),
		{
			Name:        "enable_rpm_repositories",
			Group:       groupPackages,
			Description: "Add one or more RPM repositories by URL, one command per repository.",
			Params:      []string{"urls"},
			MinArgs:     1,
			MaxArgs:     1,
			Kinds:       [][]lang.Kind{wordsKind},
			Macro: func(ctx context.Context, call *lang.Invocation) (lang.Value, error) {
				urls, err := words(call.Arg(0))
				if err != nil {
					return lang.Empty(), err
				}

				out := make([]string, 0, len(urls))

				for _, url := range urls {
					v, err := c.privileged(ctx, call, "config-manager", "--add-repo", url)
					if err != nil {
						return lang.Empty(), err
					}

					out = append(out, v.Str())
				}

				return lang.String(strings.Join(out, "\n")), nil
			},
		},
		{
			Name:        "upgrade_packages",
			Group:       groupPackages,
			Description: "Upgrade every installed package.",
			Macro: func(ctx context.Context, call *lang.Invocation) (lang.Value, error) {
				return c.privileged(ctx, call, "upgrade")
			},
		},
	}
}

// privileged runs "dnf -y args...", through sudo unless it is disabled.
func (c *config) privileged(ctx context.Context, call *lang.Invocation, args ...string) (lang.Value, error) {
	return c.sudoRun(ctx, call, packageManager, slices.Concat([]string{"-y"}, args)...)
}

func (c *config) sudoRun(
	ctx context.Context,
	call *lang.Invocation,
	name string,
	args ...string,
) (lang.Value, error) {
	if c.sudo {
		return c.run(ctx, call, "sudo", slices.Concat([]string{name}, args)...)
	}

	return c.run(ctx, call, name, args...)
}
