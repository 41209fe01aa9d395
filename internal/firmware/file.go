package firmware

import (
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/muurk/apdefaults/internal/container"
	"github.com/muurk/apdefaults/internal/defaults"
	"github.com/muurk/apdefaults/internal/logging"
)

// File is a decoded firmware file.
type File struct {
	// Path is the file the firmware was loaded from
	Path string

	// Format is the container encoding, chosen once at load time
	Format container.Format

	meta   *container.Metadata
	image  []byte
	header *defaults.Header
}

// Load reads path and decodes it using the format implied by its extension.
func Load(path string) (*File, error) {
	return LoadAs(path, container.FormatForPath(path))
}

// LoadAs reads path and decodes it as format.
func LoadAs(path string, format container.Format) (*File, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read firmware file: %w", err)
	}
	return LoadBytes(path, format, raw)
}

// LoadBytes decodes raw file contents. name is recorded as the File's Path.
func LoadBytes(name string, format container.Format, raw []byte) (*File, error) {
	meta, image, err := container.Decode(format, raw)
	if err != nil {
		logging.Error("Failed to decode firmware",
			zap.String("path", name),
			zap.String("format", format.String()),
			zap.Error(err),
		)
		return nil, err
	}

	logging.LogContainer("loaded", name, format.String(), len(image))

	return &File{
		Path:   name,
		Format: format,
		meta:   meta,
		image:  image,
	}, nil
}

// Image returns the current firmware image. Callers must not modify it.
func (f *File) Image() []byte {
	return f.image
}

// Metadata returns the container metadata decoded with the image.
func (f *File) Metadata() *container.Metadata {
	return f.meta
}

// Checksum returns the lowercase hex MD5 of the current image.
func (f *File) Checksum() string {
	return container.Checksum(f.image)
}

// Header returns the located defaults header, or nil before Locate succeeds.
func (f *File) Header() *defaults.Header {
	return f.header
}

// Locate scans the image for the defaults region.
func (f *File) Locate() (*defaults.Header, error) {
	h, err := defaults.Locate(f.image, 0)
	if err != nil {
		if !errors.Is(err, defaults.ErrNotFound) {
			logging.Error("Malformed defaults header", zap.String("path", f.Path), zap.Error(err))
		}
		return nil, err
	}

	f.header = h
	logging.LogRegion("found", h.Offset, h.MaxLength, h.Length)
	return h, nil
}

// Contents returns the current defaults payload, locating the region first
// if needed.
func (f *File) Contents() ([]byte, error) {
	h, err := f.ensureHeader()
	if err != nil {
		return nil, err
	}

	contents := h.Contents(f.image)
	logging.LogRawBytes("Defaults region", contents)
	return contents, nil
}

// SetContents replaces the defaults payload. On error the image is unchanged.
func (f *File) SetContents(payload []byte) error {
	h, err := f.ensureHeader()
	if err != nil {
		return err
	}

	patched, err := defaults.SetContents(f.image, h, payload)
	if err != nil {
		return err
	}

	updated, err := defaults.Locate(patched, h.Offset)
	if err != nil {
		return fmt.Errorf("patched image failed verification: %w", err)
	}

	f.image = patched
	f.header = updated
	logging.LogRegion("patched", updated.Offset, updated.MaxLength, updated.Length)
	return nil
}

// SetContentsFromFile replaces the defaults payload with the contents of path.
func (f *File) SetContentsFromFile(path string) error {
	payload, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read defaults file: %w", err)
	}

	logging.Info("Setting defaults", zap.String("from", path), zap.Int("length", len(payload)))
	return f.SetContents(payload)
}

// Encode renders the current image in the file's original container format.
func (f *File) Encode() ([]byte, error) {
	return container.Encode(f.meta, f.image)
}

// Save encodes the firmware and writes it atomically to path, or back to
// the loaded path when path is empty.
func (f *File) Save(path string) error {
	if path == "" {
		path = f.Path
	}

	data, err := f.Encode()
	if err != nil {
		return fmt.Errorf("failed to encode %s firmware: %w", f.Format, err)
	}

	if err := WriteFileAtomic(path, data, 0644); err != nil {
		return err
	}

	logging.LogContainer("saved", path, f.Format.String(), len(f.image))
	return nil
}

func (f *File) ensureHeader() (*defaults.Header, error) {
	if f.header != nil {
		return f.header, nil
	}
	return f.Locate()
}
