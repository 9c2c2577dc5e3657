package xlexport

import (
	"archive/zip"
	"bytes"
	"compress/flate"
	"fmt"
	"io"
	"slices"
)

// Package is an xlsx archive held in memory as named parts.
// Part order is preserved when the archive is written back.
type Package struct {
	names []string
	parts map[string][]byte
}

// OpenPackage reads every part of an xlsx archive.
func OpenPackage(data []byte) (*Package, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPackage, err)
	}
	p := &Package{parts: make(map[string][]byte, len(zr.File))}
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		if _, dup := p.parts[f.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate part %q", ErrInvalidPackage, f.Name)
		}
		body, err := readZipFile(f)
		if err != nil {
			return nil, fmt.Errorf("%w: read %s: %v", ErrInvalidPackage, f.Name, err)
		}
		p.names = append(p.names, f.Name)
		p.parts[f.Name] = body
	}
	if _, ok := p.parts[ContentTypesPart]; !ok {
		return nil, fmt.Errorf("%w: missing %s", ErrInvalidPackage, ContentTypesPart)
	}
	return p, nil
}

func readZipFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// Names returns the part names in archive order.
func (p *Package) Names() []string {
	return slices.Clone(p.names)
}

// Part returns the bytes of a part.
func (p *Package) Part(name string) ([]byte, bool) {
	b, ok := p.parts[name]
	return b, ok
}

// Has reports whether the part exists.
func (p *Package) Has(name string) bool {
	_, ok := p.parts[name]
	return ok
}

// SetPart replaces a part in place or appends a new one.
func (p *Package) SetPart(name string, data []byte) {
	if _, ok := p.parts[name]; !ok {
		p.names = append(p.names, name)
	}
	p.parts[name] = data
}

// Clone returns a copy that can be modified independently.
func (p *Package) Clone() *Package {
	c := &Package{names: slices.Clone(p.names), parts: make(map[string][]byte, len(p.parts))}
	for k, v := range p.parts {
		c.parts[k] = v
	}
	return c
}

// Write writes the archive with every part deflated at the given level.
func (p *Package) Write(w io.Writer, level int) error {
	zw := zip.NewWriter(w)
	zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, level)
	})
	for _, name := range p.names {
		fw, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate})
		if err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
		if _, err := fw.Write(p.parts[name]); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
	}
	return zw.Close()
}

// Bytes serializes the archive at maximum compression.
func (p *Package) Bytes() ([]byte, error) {
	return p.BytesLevel(flate.BestCompression)
}

// BytesLevel serializes the archive at a flate compression level.
func (p *Package) BytesLevel(level int) ([]byte, error) {
	var buf bytes.Buffer
	if err := p.Write(&buf, level); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
