//go:build unix

package process

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"golang.org/x/sys/unix"
)

// LookPath resolves file to an absolute path of an executable regular file.
//
// An absolute file is checked as is, and so is a relative one containing a
// slash. Otherwise each directory in dirs is tried in order; a nil dirs
// means the directories in $PATH. It returns ErrNotFound when nothing
// matches.
func LookPath(file string, dirs []string) (string, error) {
	if file == "" {
		return "", ErrNotFound
	}
	if strings.Contains(file, "/") {
		return checkCandidate(file)
	}

	if dirs == nil {
		dirs = filepath.SplitList(os.Getenv("PATH"))
	}
	for _, dir := range dirs {
		if dir == "" {
			dir = "."
		}
		if path, err := checkCandidate(filepath.Join(dir, file)); err == nil {
			return path, nil
		}
	}
	return "", ErrNotFound
}

func checkCandidate(path string) (string, error) {
	if !isExecutable(path) {
		return "", ErrNotFound
	}
	return filepath.Abs(path)
}

// isExecutable reports whether path is a regular file the effective user may
// execute. Root may execute any file with at least one execute bit.
func isExecutable(path string) bool {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return false
	}
	mode := uint32(st.Mode)
	if mode&unix.S_IFMT != unix.S_IFREG {
		return false
	}

	euid := uint32(unix.Geteuid())
	switch {
	case euid == 0:
		return mode&(unix.S_IXUSR|unix.S_IXGRP|unix.S_IXOTH) != 0
	case st.Uid == euid:
		return mode&unix.S_IXUSR != 0
	case isGroupMember(st.Gid):
		return mode&unix.S_IXGRP != 0
	default:
		return mode&unix.S_IXOTH != 0
	}
}

// supplementaryGroups is queried once per process.
var supplementaryGroups = sync.OnceValue(func() []int {
	groups, err := unix.Getgroups()
	if err != nil {
		return nil
	}
	return groups
})

func isGroupMember(gid uint32) bool {
	if uint32(unix.Getgid()) == gid || uint32(unix.Getegid()) == gid {
		return true
	}
	return slices.Contains(supplementaryGroups(), int(gid))
}
