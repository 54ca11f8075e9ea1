package builtin

import (
	"context"
	"log/slog"

	"github.com/shirou/gopsutil/v4/disk"

	"github.com/ardnew/whale/lang"
)

func (c *config) diskSpecs() []lang.Spec {
	return []lang.Spec{
		{
			Name:        "list_disks",
			Group:       groupDisk,
			Description: "List mounted file systems as a table of device, mount_point, file_system, total, free and used_percent.",
			Macro:       listDisks,
		},
		{
			Name:  "partition_disk",
			Group: groupDisk,
			Description: "Partition a disk with parted, erasing it. The map needs path, label, name, " +
				"filesystem and range (a list of start and end).",
			Params:  []string{"options"},
			MinArgs: 1,
			MaxArgs: 1,
			Kinds:   [][]lang.Kind{mapKind},
			Macro:   c.partitionDisk,
		},
	}
}

func listDisks(ctx context.Context, _ *lang.Invocation) (lang.Value, error) {
	parts, err := disk.PartitionsWithContext(ctx, false)
	if err != nil {
		return lang.Empty(), external(err)
	}

	rows := make([][]lang.Value, 0, len(parts))

	for _, p := range parts {
		row := []lang.Value{
			lang.String(p.Device),
			lang.String(p.Mountpoint),
			lang.String(p.Fstype),
			lang.Empty(),
			lang.Empty(),
			lang.Empty(),
		}

		// Usage is unavailable for some pseudo file systems.
		if u, err := disk.UsageWithContext(ctx, p.Mountpoint); err == nil {
			row[3] = lang.Int(int64(min(u.Total, uint64(1<<62))))
			row[4] = lang.Int(int64(min(u.Free, uint64(1<<62))))
			row[5] = lang.Float(u.UsedPercent)
		}

		rows = append(rows, row)
	}

	t, err := lang.NewTable(
		[]string{"device", "mount_point", "file_system", "total", "free", "used_percent"},
		rows...,
	)
	if err != nil {
		return lang.Empty(), err
	}

	return lang.TableValue(t), nil
}

func (c *config) partitionDisk(ctx context.Context, call *lang.Invocation) (lang.Value, error) {
	opts := call.Arg(0).Map()

	field := func(key string) (string, error) {
		v, _ := opts.Get(key)
		if err := v.Expect(lang.KindString); err != nil {
			return "", lang.WrapError(err).With(slog.String("field", key))
		}

		return v.Str(), nil
	}

	var args [4]string

	for i, key := range []string{"path", "label", "name", "filesystem"} {
		s, err := field(key)
		if err != nil {
			return lang.Empty(), err
		}

		args[i] = s
	}

	rv, _ := opts.Get("range")

	bounds, err := lang.Strings(rv)
	if err != nil {
		return lang.Empty(), lang.WrapError(err).With(slog.String("field", "range"))
	}

	if len(bounds) != 2 {
		return lang.Empty(), lang.ErrArityMismatch.Errorf("range needs a start and an end, got %d values", len(bounds)).
			With(slog.String("field", "range"))
	}

	path, label, name, fs := args[0], args[1], args[2], args[3]

	return c.sudoRun(ctx, call, "parted", "--script", path,
		"mklabel", label,
		"mkpart", name, fs, bounds[0], bounds[1],
	)
}
