package replay

import (
	"bufio"
	"bytes"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"

	"github.com/icza/mpq"

	"github.com/pable/zeratul/internal/slug"
)

const (
	gameStringsPath = `enUS.SC2Data\LocalizedData\GameStrings.txt`
	minimapPath     = `Minimap.tga`
)

// MapResolver fills in map metadata and minimap bytes from the local
// Battle.net cache and an optional directory of pre-extracted minimaps.
type MapResolver struct {
	CacheDirs  []string
	MinimapDir string
}

// Resolve returns the best MapInfo it can find for a map title. Missing
// archives or images are not errors: the map is still importable by name.
func (m *MapResolver) Resolve(title string, cacheHandles []string) MapInfo {
	info := MapInfo{Name: title}

	if archive := m.findArchive(cacheHandles); archive != "" {
		readArchive(archive, &info)
		info.Name = title
	}

	if img := m.minimapOverride(title); img != nil {
		info.Minimap = img
	}
	return info
}

// findArchive maps .s2ma cache handles onto files in the Battle.net cache.
func (m *MapResolver) findArchive(handles []string) string {
	for i := len(handles) - 1; i >= 0; i-- {
		ext, hash, ok := parseCacheHandle(handles[i])
		if !ok || ext != "s2ma" {
			continue
		}
		for _, dir := range m.CacheDirs {
			p := filepath.Join(dir, hash[0:2], hash[2:4], hash+"."+ext)
			if _, err := os.Stat(p); err == nil {
				return p
			}
		}
	}
	return ""
}

// parseCacheHandle decodes a 40-byte cache handle: 4-byte extension,
// 4-byte region, 32-byte SHA-256 of the file.
func parseCacheHandle(h string) (ext, hash string, ok bool) {
	if len(h) != 40 {
		return "", "", false
	}
	ext = strings.TrimRight(h[0:4], "\x00 ")
	return ext, hex.EncodeToString([]byte(h[8:40])), true
}

func readArchive(path string, info *MapInfo) {
	m, err := mpq.NewFromFile(path)
	if err != nil {
		return
	}
	defer m.Close()

	if data, err := m.FileByName(gameStringsPath); err == nil {
		strs := parseGameStrings(data)
		info.Author = strs["DocInfo/Author"]
		info.Website = strs["DocInfo/Website"]
		info.Description = strs["DocInfo/DescLong"]
		if info.Description == "" {
			info.Description = strs["DocInfo/DescShort"]
		}
	}
	if data, err := m.FileByName(minimapPath); err == nil {
		info.Minimap = data
	}
}

// parseGameStrings reads key=value lines from a map's GameStrings.txt.
func parseGameStrings(data []byte) map[string]string {
	out := make(map[string]string)
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		k, v, ok := strings.Cut(sc.Text(), "=")
		if !ok {
			continue
		}
		out[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	return out
}

func (m *MapResolver) minimapOverride(title string) []byte {
	if m.MinimapDir == "" {
		return nil
	}
	base := slug.Make(title)
	for _, ext := range []string{".png", ".jpg", ".jpeg", ".tga"} {
		data, err := os.ReadFile(filepath.Join(m.MinimapDir, base+ext))
		if err == nil {
			return data
		}
	}
	return nil
}
