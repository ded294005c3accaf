package shm

import (
	"fmt"
	"strings"

	"golang.org/x/sys/unix"
)

// shmPath resolves a POSIX shared-memory name like "/rashplayer_shm"
// to its tmpfs backing file.
func shmPath(name string) string {
	return "/dev/shm/" + strings.TrimPrefix(name, "/")
}

// Attach maps an existing region created by the capture producer. The
// region must already be sized and stamped; a missing object, short
// file, or foreign magic fails the attach.
func Attach(name string) (*Region, error) {
	fd, err := unix.Open(shmPath(name), unix.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("shm: open %q: %w", name, err)
	}
	defer unix.Close(fd)

	var st unix.Stat_t
	if err := unix.Fstat(fd, &st); err != nil {
		return nil, fmt.Errorf("shm: stat %q: %w", name, err)
	}
	if st.Size < int64(TOTAL_SIZE) {
		return nil, fmt.Errorf("shm: %q is %d bytes, want %d: %w",
			name, st.Size, TOTAL_SIZE, ErrNotAttached)
	}

	buf, err := unix.Mmap(fd, 0, TOTAL_SIZE,
		unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("shm: mmap %q: %w", name, err)
	}

	r := fromBytes(buf, true)
	if !r.Valid() {
		r.Close()
		return nil, fmt.Errorf("shm: %q magic mismatch: %w", name, ErrNotAttached)
	}
	return r, nil
}

// Create makes (or truncates) a region and stamps it with the bridge
// magic. This is the producer side of the handoff; the consumer uses
// Attach.
func Create(name string) (*Region, error) {
	fd, err := unix.Open(shmPath(name), unix.O_CREAT|unix.O_RDWR, 0o666)
	if err != nil {
		return nil, fmt.Errorf("shm: create %q: %w", name, err)
	}
	defer unix.Close(fd)

	if err := unix.Ftruncate(fd, int64(TOTAL_SIZE)); err != nil {
		return nil, fmt.Errorf("shm: truncate %q: %w", name, err)
	}

	buf, err := unix.Mmap(fd, 0, TOTAL_SIZE,
		unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("shm: mmap %q: %w", name, err)
	}

	r := fromBytes(buf, true)
	r.stamp()
	return r, nil
}

// Unlink removes the named region from the system. Mappings already
// attached stay usable until closed.
func Unlink(name string) error {
	if err := unix.Unlink(shmPath(name)); err != nil {
		return fmt.Errorf("shm: unlink %q: %w", name, err)
	}
	return nil
}

func unmap(buf []byte) error {
	return unix.Munmap(buf)
}
