package io

import (
	"errors"
	"os"
)

// File wraps the lifecycle of the backing file for a mapped store: existence
// check before open, create-on-first-open, and the handful of raw
// operations callers need once a mapping is established over it.
type File struct {
	path   string
	file   *os.File
	opened bool

	existed bool
}

func NewFile(path string) *File {

	_, err := os.Stat(path)

	return &File{
		path:    path,
		existed: err == nil,
	}
}

// Existed reports whether the file was present before Open was called.
func (f *File) Existed() bool {
	return f.existed
}

// Open opens the file for reading and writing, creating it with the given
// permissions if it does not yet exist.
func (f *File) Open(perm os.FileMode) (topErr error) {

	f.file, topErr = os.OpenFile(f.path, os.O_CREATE|os.O_RDWR, perm)

	if topErr == nil {
		f.opened = true
	}

	return topErr
}

func (f *File) Close() error {
	if !f.opened {
		return nil
	}

	return f.file.Close()
}

func (f *File) Raw() *os.File {
	return f.file
}

func (f *File) Size() (int64, error) {
	if !f.opened {
		return 0, errors.New("file not opened")
	}

	info, err := f.file.Stat()
	if err != nil {
		return 0, err
	}

	return info.Size(), nil
}

func (f *File) Truncate(size int64) error {
	if !f.opened {
		return errors.New("file not opened")
	}

	return f.file.Truncate(size)
}

func (f *File) ReadAt(out []byte, off int64) (err error) {
	if !f.opened {
		return errors.New("file not opened")
	}

	readBytes, err := f.file.ReadAt(out, off)
	if err != nil {
		return err
	}

	if readBytes != len(out) {
		return errors.New("read bytes mismatch")
	}

	return nil
}

func (f *File) WriteAt(in []byte, off int64) (err error) {
	if !f.opened {
		return errors.New("file not opened")
	}

	writtenBytes, err := f.file.WriteAt(in, off)
	if err != nil {
		return err
	}

	if writtenBytes != len(in) {
		return errors.New("written bytes mismatch")
	}

	return nil
}

// FillZeroes writes size zero bytes to the file at offset.
func (f *File) FillZeroes(offset int64, size int) (err error) {
	if !f.opened {
		return errors.New("file not opened")
	}

	zeroes := make([]byte, size)

	writtenBytes, err := f.file.WriteAt(zeroes, offset)
	if err != nil {
		return err
	}

	if writtenBytes != len(zeroes) {
		return errors.New("written bytes mismatch")
	}

	return nil
}
