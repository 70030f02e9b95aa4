package replay

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/icza/s2prot"
	"github.com/icza/s2prot/rep"
)

// Game loops per game second.
const loopsPerSecond = 16

// FILETIME of the Unix epoch (100ns ticks since 1601-01-01).
const filetimeUnixEpoch = 116444736000000000

// details.playerList[].control
const controlComputer = 3

var gateways = map[int64]string{
	1:  "us",
	2:  "eu",
	3:  "kr",
	5:  "cn",
	6:  "sea",
	98: "xx",
}

var colorNames = map[[3]int64]string{
	{180, 20, 30}:   "Red",
	{0, 66, 255}:    "Blue",
	{28, 167, 234}:  "Teal",
	{84, 0, 129}:    "Purple",
	{235, 225, 41}:  "Yellow",
	{254, 138, 14}:  "Orange",
	{22, 128, 0}:    "Green",
	{204, 166, 252}: "Light Pink",
	{31, 1, 201}:    "Violet",
	{82, 84, 148}:   "Light Grey",
	{16, 98, 70}:    "Dark Green",
	{78, 42, 4}:     "Brown",
	{150, 255, 145}: "Light Green",
	{35, 35, 35}:    "Dark Grey",
	{229, 91, 176}:  "Pink",
}

// DecoderConfig holds the settings for S2Decoder.
type DecoderConfig struct {
	MapCacheDirs []string
	MinimapDir   string
	Catalog      Catalog // nil means the embedded default
}

// S2Decoder decodes replays with s2prot.
type S2Decoder struct {
	catalog Catalog
	maps    *MapResolver
}

// NewS2Decoder builds a decoder from cfg.
func NewS2Decoder(cfg DecoderConfig) (*S2Decoder, error) {
	catalog := cfg.Catalog
	if catalog == nil {
		var err error
		if catalog, err = DefaultCatalog(); err != nil {
			return nil, err
		}
	}
	return &S2Decoder{
		catalog: catalog,
		maps:    &MapResolver{CacheDirs: cfg.MapCacheDirs, MinimapDir: cfg.MinimapDir},
	}, nil
}

// Decode reads and decodes the replay at path. Panics inside the protocol
// decoder are returned as errors.
func (d *S2Decoder) Decode(path string) (r *Replay, err error) {
	defer func() {
		if p := recover(); p != nil {
			r, err = nil, fmt.Errorf("decode replay: panic: %v", p)
		}
	}()

	data, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	rp, err := rep.New(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode replay: %w", err)
	}
	defer rp.Close()

	header := rp.Header.Struct
	details := rp.Details.Struct
	initData := rp.InitData.Struct

	r = &Replay{
		Path:      path,
		StartTime: filetimeToTime(details.Int("timeUTC")),
		Release:   releaseString(header.Structv("version")),
	}

	userIDs := slotUsers(initData)
	leagues := highestLeagues(initData)

	// Tracker events address players by their 1-based index in playerList.
	byPID := make(map[int64]*Player)
	byUser := make(map[int64]*Player)
	teams := make(map[int64]*Team)

	for i, el := range details.Array("playerList") {
		ps, ok := el.(s2prot.Struct)
		if !ok {
			continue
		}
		if ps.Int("observe") != 0 {
			continue
		}
		p := d.buildPlayer(ps, leagues, userIDs)
		byPID[int64(i+1)] = p
		if uid, ok := userIDs[ps.Int("workingSetSlotId")]; ok {
			byUser[uid] = p
		}

		teamID := ps.Int("teamId")
		t := teams[teamID]
		if t == nil {
			t = &Team{Number: int(teamID) + 1, Result: resultLabel(ps.Int("result"))}
			teams[teamID] = t
		}
		t.Players = append(t.Players, p)
		if r.Region == "" {
			r.Region = p.Region
		}
	}

	for _, t := range teams {
		r.Teams = append(r.Teams, t)
	}
	sort.Slice(r.Teams, func(i, j int) bool { return r.Teams[i].Number < r.Teams[j].Number })
	r.RealType = RealType(r.Teams)

	for i := range rp.GameEvts {
		e := rp.GameEvts[i]
		ev := Event{Second: int(e.Int("loop") / loopsPerSecond), Name: eventName(e)}
		r.Events = append(r.Events, ev)
		if p := byUser[e.Int("userid", "userId")]; p != nil {
			p.Events = append(p.Events, ev)
		}
	}

	if rp.TrackerEvts != nil {
		d.collectUnits(rp.TrackerEvts.Evts, byPID)
	}

	var handles []string
	for _, h := range details.Array("cacheHandles") {
		handles = append(handles, blobString(h))
	}
	r.Map = d.maps.Resolve(stringValue(details, "title"), handles)

	return r, nil
}

func (d *S2Decoder) buildPlayer(ps s2prot.Struct, leagues map[int64]int, userIDs map[int64]int64) *Player {
	toon := ps.Structv("toon")
	region := gateways[toon.Int("region")]
	name := stringValue(ps, "name")

	p := &Player{
		Name:     name,
		Region:   region,
		Race:     stringValue(ps, "race"),
		Handicap: int(ps.Int("handicap")),
		IsHuman:  ps.Int("control") != controlComputer,
		Color:    colorName(ps.Structv("color")),
	}
	if region != "" && toon.Int("id") != 0 {
		p.URL = fmt.Sprintf("http://%s.battle.net/sc2/en/profile/%d/%d/%s/", region, toon.Int("id"), toon.Int("realm"), name)
	}
	if uid, ok := userIDs[ps.Int("workingSetSlotId")]; ok {
		p.HighestLeague = leagues[uid]
	}
	return p
}

// collectUnits replays tracker events into per-player unit and kill lists.
func (d *S2Decoder) collectUnits(evts []s2prot.Event, byPID map[int64]*Player) {
	units := make(map[int64]*Unit)
	tag := func(e s2prot.Event) int64 {
		return e.Int("unitTagIndex")<<18 | e.Int("unitTagRecycle")
	}

	for i := range evts {
		e := evts[i]
		loop := e.Int("loop")
		switch eventName(e) {
		case "UnitBorn", "UnitInit":
			owner := byPID[e.Int("controlPlayerId")]
			if owner == nil {
				continue
			}
			u := d.catalog.NewUnit(stringValue(e.Struct, "unitTypeName"))
			if u == nil {
				continue
			}
			u.Owner = owner
			u.StartedAt = loop
			if eventName(e) == "UnitBorn" {
				u.FinishedAt = loop
			}
			units[tag(e)] = u
			owner.Units = append(owner.Units, u)
		case "UnitDone":
			if u := units[tag(e)]; u != nil {
				u.FinishedAt = loop
			}
		case "UnitTypeChange":
			// Cocoons and mode switches are not catalogued and keep the
			// unit's previous type.
			if u := units[tag(e)]; u != nil {
				d.catalog.Morph(u, stringValue(e.Struct, "unitTypeName"))
			}
		case "UnitDied":
			u := units[tag(e)]
			if u == nil {
				continue
			}
			u.DiedAt = loop
			if killer := byPID[e.Int("killerPlayerId")]; killer != nil {
				u.Killer = killer
				killer.Kills = append(killer.Kills, u)
			}
			delete(units, tag(e))
		}
	}
}

// slotUsers maps lobby working-set slot ids to user ids.
func slotUsers(initData s2prot.Struct) map[int64]int64 {
	out := make(map[int64]int64)
	for _, el := range initData.Array("syncLobbyState", "lobbyState", "slots") {
		slot, ok := el.(s2prot.Struct)
		if !ok || slot.Value("userId") == nil {
			continue
		}
		out[slot.Int("workingSetSlotId")] = slot.Int("userId")
	}
	return out
}

func highestLeagues(initData s2prot.Struct) map[int64]int {
	out := make(map[int64]int)
	for i, el := range initData.Array("syncLobbyState", "userInitialData") {
		u, ok := el.(s2prot.Struct)
		if !ok {
			continue
		}
		out[int64(i)] = int(u.Int("highestLeague"))
	}
	return out
}

func eventName(e s2prot.Event) string {
	if e.EvtType == nil {
		return ""
	}
	return strings.TrimSuffix(e.EvtType.Name, "Event")
}

func releaseString(v s2prot.Struct) string {
	return fmt.Sprintf("%d.%d.%d.%d", v.Int("major"), v.Int("minor"), v.Int("revision"), v.Int("build"))
}

func resultLabel(code int64) string {
	switch code {
	case 1:
		return "Win"
	case 2:
		return "Loss"
	case 3:
		return "Tie"
	}
	return "Unknown"
}

func colorName(c s2prot.Struct) string {
	rgb := [3]int64{c.Int("r"), c.Int("g"), c.Int("b")}
	if name, ok := colorNames[rgb]; ok {
		return name
	}
	return fmt.Sprintf("#%02x%02x%02x", rgb[0], rgb[1], rgb[2])
}

func filetimeToTime(ft int64) time.Time {
	if ft <= filetimeUnixEpoch {
		return time.Time{}
	}
	ticks := ft - filetimeUnixEpoch
	return time.Unix(ticks/10_000_000, (ticks%10_000_000)*100).UTC()
}

// stringValue reads a string or blob field.
func stringValue(s s2prot.Struct, path ...string) string {
	return blobString(s.Value(path...))
}

func blobString(v interface{}) string {
	switch x := v.(type) {
	case string:
		return x
	case []byte:
		return string(x)
	}
	return ""
}
