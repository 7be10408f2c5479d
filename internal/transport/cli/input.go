package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/kailas-cloud/booruq/internal/domain/image"
)

// imageEnvelope covers the board API's list and single-image responses.
type imageEnvelope struct {
	Images *[]image.Image `json:"images"`
	Image  *image.Image   `json:"image"`
}

// readImages decodes a JSON array of images, an {"images": [...]} page,
// an {"image": {...}} wrapper or a bare image object.
func readImages(r io.Reader) ([]image.Image, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read images: %w", err)
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, errors.New("no image data")
	}

	if data[0] == '[' {
		var images []image.Image
		if err := json.Unmarshal(data, &images); err != nil {
			return nil, fmt.Errorf("decode image list: %w", err)
		}
		return images, nil
	}

	var env imageEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode images: %w", err)
	}
	switch {
	case env.Images != nil:
		return *env.Images, nil
	case env.Image != nil:
		return []image.Image{*env.Image}, nil
	}

	var img image.Image
	if err := json.Unmarshal(data, &img); err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return []image.Image{img}, nil
}

// readImageSources reads every file in paths, or stdin when paths is empty or "-".
func readImageSources(stdin io.Reader, paths []string) ([]image.Image, error) {
	if len(paths) == 0 {
		return readImages(stdin)
	}
	var all []image.Image
	for _, p := range paths {
		images, err := readImageFile(stdin, p)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p, err)
		}
		all = append(all, images...)
	}
	return all, nil
}

func readImageFile(stdin io.Reader, path string) ([]image.Image, error) {
	if path == "-" {
		return readImages(stdin)
	}
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return readImages(f)
}

// readSnapshot loads interactions from path. An empty path means no data.
func readSnapshot(path string) (image.Snapshot, error) {
	if path == "" {
		return image.NoSnapshot(), nil
	}
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return image.Snapshot{}, fmt.Errorf("read interactions: %w", err)
	}
	data = bytes.TrimSpace(data)

	var items []image.Interaction
	if len(data) > 0 && data[0] == '{' {
		var env struct {
			Interactions []image.Interaction `json:"interactions"`
		}
		if err := json.Unmarshal(data, &env); err != nil {
			return image.Snapshot{}, fmt.Errorf("decode interactions: %w", err)
		}
		items = env.Interactions
	} else if err := json.Unmarshal(data, &items); err != nil {
		return image.Snapshot{}, fmt.Errorf("decode interactions: %w", err)
	}
	return image.NewSnapshot(items), nil
}
