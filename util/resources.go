// util/resources.go
// Copyright(c) 2022-2026 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package util

import (
	"bytes"
	"io"
	"io/fs"
	"path/filepath"

	"github.com/mmp/maxspeed/resources"

	"github.com/klauspost/compress/zstd"
)

// Unfortunately, unlike io.ReadCloser, the zstd Decoder's Close() method
// doesn't return an error, so we need to make our own custom ReadCloser
// interface.
type ResourceReadCloser interface {
	io.Reader
	Close()
}

type bytesReadCloser struct {
	*bytes.Reader
}

func (bytesReadCloser) Close() {}

// OpenResource provides a ResourceReadCloser to access the specified file
// from fsys; if it's zstd compressed, the Reader will handle
// decompression transparently.
func OpenResource(fsys fs.FS, path string) (ResourceReadCloser, error) {
	f, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, err
	}
	br := bytesReadCloser{bytes.NewReader(f)}

	if filepath.Ext(path) == ".zst" {
		zr, err := zstd.NewReader(br, zstd.WithDecoderConcurrency(0))
		if err != nil {
			return nil, err
		}
		return zr, nil
	}

	return br, nil
}

// LoadResource opens the given file from the embedded resources. It
// panics if the file is not found since missing resources are pretty much
// impossible to recover from.
func LoadResource(path string) ResourceReadCloser {
	r, err := OpenResource(resources.FS, path)
	if err != nil {
		panic(err)
	}
	return r
}
