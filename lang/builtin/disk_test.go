package builtin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ardnew/whale/lang"
)

const partition = `(path = "/dev/sdz", label = "gpt", name = "data", filesystem = "ext4", range = ("0%", "100%"))`

func TestPartitionDisk(t *testing.T) {
	h := newHarness()
	h.mustEval(t, "partition_disk("+partition+")")

	assert.Equal(t,
		[]string{"sudo parted --script /dev/sdz mklabel gpt mkpart data ext4 0% 100%"},
		h.runner.commands())
}

func TestPartitionDisk_Errors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   error
	}{
		{"missing field", `partition_disk((path = "/dev/sdz"))`, lang.ErrTypeMismatch},
		{"wrong field kind", `partition_disk(` + partition + `:get("path"))`, lang.ErrTypeMismatch},
		{"short range", `o = ` + partition + `; o.range = ("0%",); partition_disk(o)`, lang.ErrArityMismatch},
		{"range kind", `o = ` + partition + `; o.range = 5; partition_disk(o)`, lang.ErrTypeMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness()

			_, err := h.eval(t, tt.source)
			require.ErrorIs(t, err, tt.want)
			assert.Empty(t, h.runner.commands())
		})
	}
}

func TestListDisks(t *testing.T) {
	h := newHarness()

	v, err := h.eval(t, "list_disks()")
	if err != nil {
		t.Skipf("partitions unavailable: %v", err)
	}

	require.Equal(t, lang.KindTable, v.Kind())
	assert.Equal(t,
		[]string{"device", "mount_point", "file_system", "total", "free", "used_percent"},
		v.Table().Columns())
}
