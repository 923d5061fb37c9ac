package xedge

import (
	"github.com/roadrunner-server/errors"
	"github.com/spf13/afero"
)

// "disk_root" value selecting the network-only mode, the engine serves no files
const noDisk string = "-"

// mountDisk roots the engine filesystem at dir, creating it when missing.
// An empty dir returns a nil fs.
func mountDisk(base afero.Fs, dir string) (afero.Fs, error) {
	const op = errors.Op("xedge_mount_disk")
	if dir == "" {
		return nil, nil
	}

	err := base.MkdirAll(dir, 0o755)
	if err != nil {
		return nil, errors.E(op, err)
	}

	ok, err := afero.IsDir(base, dir)
	if err != nil {
		return nil, errors.E(op, err)
	}
	if !ok {
		return nil, errors.E(op, errors.Errorf("disk root is not a directory: %s", dir))
	}

	return afero.NewBasePathFs(base, dir), nil
}
