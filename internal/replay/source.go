package replay

import (
	"bytes"
	"compress/bzip2"
	"compress/gzip"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// Extension is the file suffix of an uncompressed replay.
const Extension = ".SC2Replay"

var compressedSuffixes = []string{".gz", ".bz2", ".zst"}

// SourceConfig controls replay discovery.
type SourceConfig struct {
	Directories []string
	Exclude     []string // directory base names to skip, e.g. "Customs"
	FollowLinks bool
	Depth       int // maximum directory depth below each root; 0 or less means unlimited
}

// IsReplayPath reports whether name looks like a (possibly compressed) replay.
func IsReplayPath(name string) bool {
	lower := strings.ToLower(name)
	for _, suf := range compressedSuffixes {
		lower = strings.TrimSuffix(lower, suf)
	}
	return strings.HasSuffix(lower, strings.ToLower(Extension))
}

// Discover walks the configured directories and returns replay paths sorted by path.
// Paths given directly as files are included as-is when they look like replays.
func Discover(cfg SourceConfig) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}

	exclude := make(map[string]bool, len(cfg.Exclude))
	for _, e := range cfg.Exclude {
		exclude[e] = true
	}

	for _, root := range cfg.Directories {
		info, err := os.Stat(root)
		if err != nil {
			return nil, fmt.Errorf("stat replay dir: %w", err)
		}
		if !info.IsDir() {
			if IsReplayPath(root) {
				add(root)
			}
			continue
		}
		if err := walk(root, 0, cfg, exclude, add); err != nil {
			return nil, err
		}
	}
	sort.Strings(out)
	return out, nil
}

func walk(dir string, depth int, cfg SourceConfig, exclude map[string]bool, add func(string)) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read dir %s: %w", dir, err)
	}
	for _, e := range entries {
		path := filepath.Join(dir, e.Name())
		isDir := e.IsDir()
		if e.Type()&fs.ModeSymlink != 0 {
			if !cfg.FollowLinks {
				continue
			}
			info, err := os.Stat(path)
			if err != nil {
				continue // dangling link
			}
			isDir = info.IsDir()
		}
		if isDir {
			if exclude[e.Name()] {
				continue
			}
			if cfg.Depth > 0 && depth+1 > cfg.Depth {
				continue
			}
			if err := walk(path, depth+1, cfg, exclude, add); err != nil {
				return err
			}
			continue
		}
		if IsReplayPath(e.Name()) {
			add(path)
		}
	}
	return nil
}

// ReadFile returns the uncompressed replay bytes, unpacking .gz, .bz2 and .zst files.
func ReadFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open replay: %w", err)
	}
	defer f.Close()

	var src io.Reader = f
	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, ".bz2"):
		src = bzip2.NewReader(f)
	case strings.HasSuffix(lower, ".zst"):
		dec, err := zstd.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("zstd: %w", err)
		}
		defer dec.Close()
		src = dec
	case strings.HasSuffix(lower, ".gz"):
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("gzip: %w", err)
		}
		defer gz.Close()
		src = gz
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, src); err != nil {
		return nil, fmt.Errorf("read replay: %w", err)
	}
	return buf.Bytes(), nil
}
