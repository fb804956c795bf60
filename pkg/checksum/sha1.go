// Package checksum derives content fingerprints for instance log bundles.
// Fingerprints are SHA-1 hex digests computed purely from file bytes and
// directory structure, so a bundle copied or re-delivered under a new path
// still collapses to the same identity.
package checksum

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

const bufferSize = 65536

// HashFile returns the SHA-1 digest of a file's raw bytes, streamed in
// fixed-size chunks.
func HashFile(filePath string) (string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to open file %s: %w", filePath, err)
	}
	defer file.Close()

	hasher := sha1.New()
	buf := make([]byte, bufferSize)
	if _, err := io.CopyBuffer(hasher, file, buf); err != nil {
		return "", fmt.Errorf("failed to copy file content to hasher for file %s: %w", filePath, err)
	}

	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// dirFrame is one directory level on the traversal worklist. File digests
// are collected first, then each subdirectory's digest in name order, and
// the level's digest is taken over the concatenated hex strings.
type dirFrame struct {
	path    string
	subdirs []string
	next    int
	digests []string
}

func newDirFrame(dirPath string) (*dirFrame, error) {
	entries, err := os.ReadDir(dirPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dirPath, err)
	}

	frame := &dirFrame{path: dirPath}
	// os.ReadDir returns entries sorted by name, which fixes the digest
	// ordering for files and subdirectories alike.
	for _, entry := range entries {
		if entry.IsDir() {
			frame.subdirs = append(frame.subdirs, entry.Name())
			continue
		}
		digest, err := HashFile(filepath.Join(dirPath, entry.Name()))
		if err != nil {
			return nil, err
		}
		frame.digests = append(frame.digests, digest)
	}
	return frame, nil
}

func (f *dirFrame) finish() string {
	sum := sha1.Sum([]byte(strings.Join(f.digests, "")))
	return hex.EncodeToString(sum[:])
}

// HashDir returns the SHA-1 digest of a directory tree. The traversal uses
// an explicit stack rather than recursion so arbitrarily deep trees cannot
// exhaust the call stack.
func HashDir(dirPath string) (string, error) {
	root, err := newDirFrame(dirPath)
	if err != nil {
		return "", err
	}

	stack := []*dirFrame{root}
	for {
		top := stack[len(stack)-1]
		if top.next < len(top.subdirs) {
			child, err := newDirFrame(filepath.Join(top.path, top.subdirs[top.next]))
			if err != nil {
				return "", err
			}
			top.next++
			stack = append(stack, child)
			continue
		}

		digest := top.finish()
		stack = stack[:len(stack)-1]
		if len(stack) == 0 {
			return digest, nil
		}
		parent := stack[len(stack)-1]
		parent.digests = append(parent.digests, digest)
	}
}

// HashInstance returns the fingerprint of an instance bundle: the digest
// over the concatenated digests of the instance directory, the event log
// and the computer-identity capture, in that fixed order. Components whose
// path does not exist are omitted rather than treated as errors, matching
// partially delivered bundles.
func HashInstance(dirPath, logPath, txtPath string) (string, error) {
	var digests []string

	if info, err := os.Stat(dirPath); err == nil && info.IsDir() {
		digest, err := HashDir(dirPath)
		if err != nil {
			return "", err
		}
		digests = append(digests, digest)
	}
	for _, path := range []string{logPath, txtPath} {
		if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
			digest, err := HashFile(path)
			if err != nil {
				return "", err
			}
			digests = append(digests, digest)
		}
	}

	sum := sha1.Sum([]byte(strings.Join(digests, "")))
	return hex.EncodeToString(sum[:]), nil
}
