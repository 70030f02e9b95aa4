package replay

import (
	"bytes"
	"compress/gzip"
	"os"
	"path/filepath"
	"testing"

	"github.com/icza/s2prot"
)

func touch(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// ---- Discovery ----

func TestDiscover_FiltersAndSorts(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "b.SC2Replay"), nil)
	touch(t, filepath.Join(root, "a.SC2Replay.gz"), nil)
	touch(t, filepath.Join(root, "notes.txt"), nil)
	touch(t, filepath.Join(root, "Multiplayer", "c.SC2Replay"), nil)
	touch(t, filepath.Join(root, "Customs", "d.SC2Replay"), nil)

	got, err := Discover(SourceConfig{Directories: []string{root}, Exclude: []string{"Customs"}})
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	want := []string{
		filepath.Join(root, "Multiplayer", "c.SC2Replay"),
		filepath.Join(root, "a.SC2Replay.gz"),
		filepath.Join(root, "b.SC2Replay"),
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d paths, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("path[%d]: want %s, got %s", i, want[i], got[i])
		}
	}
}

func TestDiscover_Depth(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "top.SC2Replay"), nil)
	touch(t, filepath.Join(root, "one", "mid.SC2Replay"), nil)
	touch(t, filepath.Join(root, "one", "two", "deep.SC2Replay"), nil)

	got, err := Discover(SourceConfig{Directories: []string{root}, Depth: 1})
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("depth 1: expected 2 replays, got %v", got)
	}
}

func TestDiscover_FileArgAndDedup(t *testing.T) {
	root := t.TempDir()
	p := filepath.Join(root, "x.SC2Replay")
	touch(t, p, nil)

	got, err := Discover(SourceConfig{Directories: []string{root, p}})
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(got) != 1 || got[0] != p {
		t.Errorf("expected [%s], got %v", p, got)
	}
}

func TestDiscover_MissingDir(t *testing.T) {
	if _, err := Discover(SourceConfig{Directories: []string{filepath.Join(t.TempDir(), "nope")}}); err == nil {
		t.Error("expected error for missing directory")
	}
}

func TestIsReplayPath(t *testing.T) {
	cases := map[string]bool{
		"game.SC2Replay":     true,
		"game.sc2replay":     true,
		"game.SC2Replay.zst": true,
		"game.SC2Replay.bz2": true,
		"game.dem":           false,
		"SC2Replay":          false,
	}
	for name, want := range cases {
		if got := IsReplayPath(name); got != want {
			t.Errorf("IsReplayPath(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestReadFile_Gzip(t *testing.T) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	zw.Write([]byte("MPQ\x1b payload"))
	zw.Close()

	p := filepath.Join(t.TempDir(), "r.SC2Replay.gz")
	touch(t, p, buf.Bytes())

	got, err := ReadFile(p)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(got) != "MPQ\x1b payload" {
		t.Errorf("unexpected content %q", got)
	}
}

// ---- Replay graph helpers ----

func TestRealType(t *testing.T) {
	one := func() *Team { return &Team{Players: []*Player{{}}} }
	two := func() *Team { return &Team{Players: []*Player{{}, {}}} }

	cases := []struct {
		name  string
		teams []*Team
		want  string
	}{
		{"1v1", []*Team{one(), one()}, "1v1"},
		{"2v2", []*Team{two(), two()}, "2v2"},
		{"uneven sorted", []*Team{two(), one()}, "1v2"},
		{"ffa", []*Team{one(), one(), one()}, "FFA"},
	}
	for _, c := range cases {
		if got := RealType(c.teams); got != c.want {
			t.Errorf("%s: want %s, got %s", c.name, c.want, got)
		}
	}
}

func TestLengthSeconds_LastEvent(t *testing.T) {
	r := &Replay{Events: []Event{{Second: 10}, {Second: 612}, {Second: 300}}}
	if got := r.LengthSeconds(); got != 612 {
		t.Errorf("expected 612, got %d", got)
	}
}

func TestComputers(t *testing.T) {
	human := &Player{Name: "a", IsHuman: true}
	ai := &Player{Name: "b"}
	r := &Replay{Teams: []*Team{{Players: []*Player{human}}, {Players: []*Player{ai}}}}
	got := r.Computers()
	if len(got) != 1 || got[0] != ai {
		t.Errorf("expected only the AI player, got %v", got)
	}
}

// ---- Catalog ----

func TestDefaultCatalog(t *testing.T) {
	c, err := DefaultCatalog()
	if err != nil {
		t.Fatalf("DefaultCatalog: %v", err)
	}

	probe := c.NewUnit("Probe")
	if probe == nil || !probe.IsWorker || probe.Minerals != 50 {
		t.Errorf("Probe: expected 50-mineral worker, got %+v", probe)
	}
	if n := c.NewUnit("Nexus"); n == nil || !n.IsBuilding {
		t.Errorf("Nexus: expected building, got %+v", n)
	}
	if m := c.NewUnit("Marine"); m == nil || !m.IsArmy || m.IsWorker {
		t.Errorf("Marine: expected army unit, got %+v", m)
	}
	if c.NewUnit("MineralField") != nil {
		t.Error("uncatalogued unit types should be ignored")
	}
}

func TestParseCatalog_RejectsUnknownClass(t *testing.T) {
	_, err := ParseCatalog([]byte("Foo: {minerals: 1, vespene: 0, class: [hero]}\n"))
	if err == nil {
		t.Error("expected error for unknown class")
	}
}

func trackerEvent(name string, fields s2prot.Struct) s2prot.Event {
	return s2prot.Event{Struct: fields, EvtType: &s2prot.EvtType{Name: name + "Event"}}
}

func TestCollectUnits_TypeChange(t *testing.T) {
	cat, err := DefaultCatalog()
	if err != nil {
		t.Fatalf("DefaultCatalog: %v", err)
	}
	zerg := &Player{Name: "alice"}
	terran := &Player{Name: "bob"}
	byPID := map[int64]*Player{1: zerg, 2: terran}

	evts := []s2prot.Event{
		trackerEvent("UnitBorn", s2prot.Struct{"loop": int64(100), "unitTagIndex": int64(7), "unitTagRecycle": int64(1), "unitTypeName": "Zergling", "controlPlayerId": int64(1)}),
		trackerEvent("UnitTypeChange", s2prot.Struct{"loop": int64(200), "unitTagIndex": int64(7), "unitTagRecycle": int64(1), "unitTypeName": "BanelingCocoon"}),
		trackerEvent("UnitTypeChange", s2prot.Struct{"loop": int64(300), "unitTagIndex": int64(7), "unitTagRecycle": int64(1), "unitTypeName": "Baneling"}),
		trackerEvent("UnitDied", s2prot.Struct{"loop": int64(400), "unitTagIndex": int64(7), "unitTagRecycle": int64(1), "killerPlayerId": int64(2)}),
	}
	d := &S2Decoder{catalog: cat}
	d.collectUnits(evts, byPID)

	if len(zerg.Units) != 1 {
		t.Fatalf("expected one unit record, got %d", len(zerg.Units))
	}
	u := zerg.Units[0]
	if u.Name != "Baneling" || u.Minerals != 50 || u.Vespene != 25 || !u.IsArmy {
		t.Errorf("expected a 50/25 army Baneling, got %+v", u)
	}
	if !u.Destroyed() || u.DiedAt != 400 {
		t.Errorf("expected the Baneling to die at loop 400, got %+v", u)
	}
	if len(terran.Kills) != 1 || terran.Kills[0] != u {
		t.Errorf("expected the kill credited to bob, got %v", terran.Kills)
	}
}

func TestMorph_UncataloguedKeepsType(t *testing.T) {
	cat, err := DefaultCatalog()
	if err != nil {
		t.Fatalf("DefaultCatalog: %v", err)
	}
	u := cat.NewUnit("Hatchery")
	if cat.Morph(u, "SiegeTankSieged") {
		t.Error("uncatalogued type should not morph")
	}
	if !cat.Morph(u, "Lair") || u.Name != "Lair" || u.Minerals != 450 || !u.IsBuilding {
		t.Errorf("expected a 450-mineral Lair, got %+v", u)
	}
}

// ---- Map metadata ----

func TestParseCacheHandle(t *testing.T) {
	hash := bytes.Repeat([]byte{0xab}, 32)
	h := "s2ma\x00\x00US" + string(hash)

	ext, hex, ok := parseCacheHandle(h)
	if !ok {
		t.Fatal("expected handle to parse")
	}
	if ext != "s2ma" {
		t.Errorf("ext: want s2ma, got %q", ext)
	}
	if len(hex) != 64 || hex[:4] != "abab" {
		t.Errorf("unexpected hash %s", hex)
	}

	if _, _, ok := parseCacheHandle("short"); ok {
		t.Error("expected short handle to be rejected")
	}
}

func TestParseGameStrings(t *testing.T) {
	data := []byte("\xef\xbb\xbfDocInfo/Name=Ice Age\r\nDocInfo/Author=Blizzard Entertainment\nbogus line\n")
	got := parseGameStrings(data)
	if got["DocInfo/Name"] != "Ice Age" {
		t.Errorf("Name: got %q", got["DocInfo/Name"])
	}
	if got["DocInfo/Author"] != "Blizzard Entertainment" {
		t.Errorf("Author: got %q", got["DocInfo/Author"])
	}
}

func TestResolve_MinimapOverride(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "ice-age.png"), []byte("png-bytes"))

	m := &MapResolver{MinimapDir: dir}
	info := m.Resolve("Ice Age", nil)
	if info.Name != "Ice Age" {
		t.Errorf("name: got %q", info.Name)
	}
	if string(info.Minimap) != "png-bytes" {
		t.Errorf("expected override minimap, got %q", info.Minimap)
	}

	if got := m.Resolve("Unknown Map", nil); got.Minimap != nil {
		t.Error("expected no minimap for unknown map")
	}
}

func TestFiletimeToTime(t *testing.T) {
	// 2015-01-01T00:00:00Z
	ft := int64(1420070400)*10_000_000 + filetimeUnixEpoch
	got := filetimeToTime(ft)
	if got.Year() != 2015 || got.Month() != 1 || got.Day() != 1 || got.Hour() != 0 {
		t.Errorf("unexpected time %v", got)
	}
	if !filetimeToTime(0).IsZero() {
		t.Error("expected zero time for zero FILETIME")
	}
}
