/*
 * archive.go, part of prirun.
 *
 *
 * Copyright 2024 prirun contributors
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 *
 */

//Package archive compresses engine output files once they have been read,
//using zstd.
package archive

import (
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"
)

//Extension is appended to the name of compressed files.
const Extension = ".zst"

//Compress writes filename compressed to filename+Extension and removes
//the original. It returns the name of the compressed file. If anything
//fails the original is left in place.
func Compress(filename string) (string, error) {
	in, err := os.Open(filename)
	if err != nil {
		return "", err
	}
	defer in.Close()
	target := filename + Extension
	out, err := os.Create(target)
	if err != nil {
		return "", err
	}
	w, err := zstd.NewWriter(out, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
	if err != nil {
		out.Close()
		os.Remove(target)
		return "", err
	}
	if _, err = io.Copy(w, in); err == nil {
		err = w.Close()
	} else {
		w.Close()
	}
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(target)
		return "", fmt.Errorf("archive: compressing %s: %w", filename, err)
	}
	in.Close()
	if err := os.Remove(filename); err != nil {
		return target, err
	}
	return target, nil
}

//Open returns a reader with the decompressed contents of the file
//filename, which must have been written by Compress. The caller must
//close it.
func Open(filename string) (io.ReadCloser, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	d, err := zstd.NewReader(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	return &reader{d, f}, nil
}

type reader struct {
	d *zstd.Decoder
	f *os.File
}

func (r *reader) Read(p []byte) (int, error) { return r.d.Read(p) }

func (r *reader) Close() error {
	r.d.Close()
	return r.f.Close()
}
