package rawmatch

import (
	"bytes"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
)

// List decodes feed fields that appear as either a single object or an
// array of objects. It always yields a slice; null and absent become empty.
type List[T any] []T

func (l *List[T]) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*l = nil
		return nil
	}
	if data[0] == '[' {
		var items []T
		if err := sonic.Unmarshal(data, &items); err != nil {
			return err
		}
		*l = items
		return nil
	}
	var single T
	if err := sonic.Unmarshal(data, &single); err != nil {
		return err
	}
	*l = List[T]{single}
	return nil
}

// StatValue tolerates stat values encoded as JSON strings or bare numbers.
type StatValue string

func (v *StatValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*v = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := sonic.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = StatValue(s)
		return nil
	}
	*v = StatValue(data)
	return nil
}

func (v StatValue) Int() int {
	trimmed := strings.TrimSpace(string(v))
	if trimmed == "" {
		return 0
	}
	if n, err := strconv.Atoi(trimmed); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return int(f)
	}
	return 0
}

// Document is one raw match document as delivered by the feed (MA3 shape).
// Only fields the engine consumes are modeled; unknown fields are ignored.
type Document struct {
	MatchInfo MatchInfo `json:"matchInfo"`
	LiveData  LiveData  `json:"liveData"`
}

func (d Document) MatchID() string {
	return strings.TrimSpace(d.MatchInfo.ID)
}

type MatchInfo struct {
	ID          string           `json:"id"`
	Date        string           `json:"date"`
	Contestants List[Contestant] `json:"contestant"`
}

type Contestant struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Position string `json:"position"`
}

type LiveData struct {
	MatchDetails  MatchDetails       `json:"matchDetails"`
	Goals         List[Goal]         `json:"goal"`
	Substitutions List[Substitution] `json:"substitution"`
	LineUps       List[LineUp]       `json:"lineUp"`
}

type MatchDetails struct {
	MatchStatus string `json:"matchStatus"`
	Scores      Scores `json:"scores"`
}

type Scores struct {
	Total ScorePair `json:"total"`
}

type ScorePair struct {
	Home int `json:"home"`
	Away int `json:"away"`
}

type Goal struct {
	ContestantID string `json:"contestantId"`
	PeriodID     int    `json:"periodId"`
	TimeMin      int    `json:"timeMin"`
}

type Substitution struct {
	ContestantID string `json:"contestantId"`
	PeriodID     int    `json:"periodId"`
	TimeMin      int    `json:"timeMin"`
	PlayerOnID   string `json:"playerOnId"`
	PlayerOffID  string `json:"playerOffId"`
}

type LineUp struct {
	ContestantID  string             `json:"contestantId"`
	Players       List[Player]       `json:"player"`
	TeamOfficials List[TeamOfficial] `json:"teamOfficial"`
	Stats         List[Stat]         `json:"stat"`
}

// PositionSubstitute marks bench players in lineup blocks; every other
// position value denotes a starter.
const PositionSubstitute = "Substitute"

type Player struct {
	PlayerID  string     `json:"playerId"`
	FirstName string     `json:"firstName"`
	LastName  string     `json:"lastName"`
	MatchName string     `json:"matchName"`
	Position  string     `json:"position"`
	Stats     List[Stat] `json:"stat"`
}

// DisplayName prefers the feed's matchName and falls back to the last name.
func (p Player) DisplayName() string {
	if name := strings.TrimSpace(p.MatchName); name != "" {
		return name
	}
	return strings.TrimSpace(p.LastName)
}

func (p Player) IsStarter() bool {
	return p.Position != PositionSubstitute
}

type TeamOfficial struct {
	Type           string `json:"type"`
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	ShortFirstName string `json:"shortFirstName"`
	ShortLastName  string `json:"shortLastName"`
	MatchName      string `json:"matchName"`
}

type Stat struct {
	Type  string    `json:"type"`
	Value StatValue `json:"value"`
}

// Meta describes one consolidated corpus snapshot.
type Meta struct {
	Competition          string    `json:"competition"`
	Season               string    `json:"season"`
	TournamentCalendarID string    `json:"tournamentCalendarId"`
	LastUpdate           time.Time `json:"lastUpdate"`
	DownloadMode         string    `json:"downloadMode"`
	TotalMatches         int       `json:"totalMatches"`
	NewDownloads         int       `json:"newDownloads"`
	Errors               int       `json:"errors"`
	FromCache            int       `json:"fromCache"`
	OnlyPlayed           bool      `json:"onlyPlayed"`
	FilterDate           string    `json:"filterDate,omitempty"`
}

const (
	DownloadModeFull        = "full"
	DownloadModeIncremental = "incremental"
)

// Corpus is the immutable raw input of every analytics query.
type Corpus struct {
	Meta      Meta
	Documents []Document
}
