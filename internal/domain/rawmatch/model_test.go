package rawmatch

import (
	"testing"

	"github.com/bytedance/sonic"
)

func TestList_UnmarshalWrapsSingleObject(t *testing.T) {
	t.Parallel()

	var got List[Contestant]
	if err := sonic.Unmarshal([]byte(`{"id":"t1","name":"Levante","position":"home"}`), &got); err != nil {
		t.Fatalf("unmarshal single object: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("unexpected element count: got=%d want=1", len(got))
	}
	if got[0].ID != "t1" || got[0].Position != "home" {
		t.Fatalf("unexpected element: %+v", got[0])
	}
}

func TestList_UnmarshalKeepsArray(t *testing.T) {
	t.Parallel()

	var got List[Goal]
	if err := sonic.Unmarshal([]byte(`[{"timeMin":12},{"timeMin":47}]`), &got); err != nil {
		t.Fatalf("unmarshal array: %v", err)
	}
	if len(got) != 2 || got[0].TimeMin != 12 || got[1].TimeMin != 47 {
		t.Fatalf("unexpected goals: %+v", got)
	}
}

func TestList_UnmarshalNullIsEmpty(t *testing.T) {
	t.Parallel()

	got := List[Goal]{{TimeMin: 1}}
	if err := sonic.Unmarshal([]byte(`null`), &got); err != nil {
		t.Fatalf("unmarshal null: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("null must clear the list, got=%+v", got)
	}
}

func TestStatValue_IntToleratesEncodings(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		raw  string
		want int
	}{
		{name: "quoted integer", raw: `{"type":"totalRedCard","value":"2"}`, want: 2},
		{name: "bare integer", raw: `{"type":"totalRedCard","value":1}`, want: 1},
		{name: "bare float", raw: `{"type":"minsPlayed","value":90.0}`, want: 90},
		{name: "garbage", raw: `{"type":"x","value":"n/a"}`, want: 0},
		{name: "null", raw: `{"type":"x","value":null}`, want: 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var stat Stat
			if err := sonic.Unmarshal([]byte(tc.raw), &stat); err != nil {
				t.Fatalf("unmarshal stat: %v", err)
			}
			if got := stat.Value.Int(); got != tc.want {
				t.Fatalf("unexpected value: got=%d want=%d", got, tc.want)
			}
		})
	}
}

func TestPlayer_DisplayNameFallsBackToLastName(t *testing.T) {
	t.Parallel()

	withMatchName := Player{MatchName: "J. Garcia", LastName: "Garcia Perez"}
	if got := withMatchName.DisplayName(); got != "J. Garcia" {
		t.Fatalf("unexpected display name: got=%q want=%q", got, "J. Garcia")
	}

	withoutMatchName := Player{MatchName: "  ", LastName: "Garcia Perez"}
	if got := withoutMatchName.DisplayName(); got != "Garcia Perez" {
		t.Fatalf("unexpected fallback name: got=%q want=%q", got, "Garcia Perez")
	}
}

func TestPlayer_IsStarter(t *testing.T) {
	t.Parallel()

	if (Player{Position: "Substitute"}).IsStarter() {
		t.Fatal("substitute reported as starter")
	}
	if !(Player{Position: "Goalkeeper"}).IsStarter() {
		t.Fatal("goalkeeper not reported as starter")
	}
}

func TestDocument_UnmarshalConsumedFields(t *testing.T) {
	t.Parallel()

	raw := `{
		"matchInfo": {
			"id": "m1",
			"date": "2025-08-17Z",
			"contestant": [
				{"id": "t1", "name": "Levante", "position": "home"},
				{"id": "t2", "name": "Almeria", "position": "away"}
			]
		},
		"liveData": {
			"matchDetails": {"matchStatus": "Played", "scores": {"total": {"home": 2, "away": 1}}},
			"goal": {"contestantId": "t1", "periodId": 1, "timeMin": 30},
			"substitution": [{"contestantId": "t1", "periodId": 2, "timeMin": 60, "playerOnId": "p9", "playerOffId": "p1"}],
			"lineUp": [
				{"contestantId": "t1", "player": [{"playerId": "p1", "matchName": "A. Uno", "position": "Defender"}], "stat": [{"type": "totalRedCard", "value": "0"}]},
				{"contestantId": "t2", "player": [{"playerId": "p2", "matchName": "B. Dos", "position": "Substitute"}]}
			]
		}
	}`

	var doc Document
	if err := sonic.Unmarshal([]byte(raw), &doc); err != nil {
		t.Fatalf("unmarshal document: %v", err)
	}

	if doc.MatchID() != "m1" {
		t.Fatalf("unexpected match id: got=%q want=%q", doc.MatchID(), "m1")
	}
	if len(doc.MatchInfo.Contestants) != 2 {
		t.Fatalf("unexpected contestant count: got=%d want=2", len(doc.MatchInfo.Contestants))
	}
	if len(doc.LiveData.Goals) != 1 || doc.LiveData.Goals[0].TimeMin != 30 {
		t.Fatalf("single goal object not wrapped: %+v", doc.LiveData.Goals)
	}
	if doc.LiveData.MatchDetails.Scores.Total.Home != 2 {
		t.Fatalf("unexpected home score: got=%d want=2", doc.LiveData.MatchDetails.Scores.Total.Home)
	}
	if len(doc.LiveData.LineUps) != 2 || doc.LiveData.LineUps[0].Stats[0].Value.Int() != 0 {
		t.Fatalf("unexpected lineups: %+v", doc.LiveData.LineUps)
	}
	if doc.LiveData.Substitutions[0].PlayerOnID != "p9" {
		t.Fatalf("unexpected substitution: %+v", doc.LiveData.Substitutions[0])
	}
}
