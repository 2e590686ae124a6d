package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/riftbound/duel-server-go/internal/carddef"
	"github.com/riftbound/duel-server-go/internal/game"
)

func testLibrary() map[string]*carddef.Card {
	lib := map[string]*carddef.Card{
		"grunt": {ID: "grunt", Name: "Grunt", Kind: carddef.KindUnit,
			Domains: []carddef.Domain{carddef.DomainFury}, Cost: 1, Might: 2},
		"rune-fury": {ID: "rune-fury", Name: "Fury Rune", Kind: carddef.KindRune,
			Domains: []carddef.Domain{carddef.DomainFury}},
		"legend": {ID: "legend", Name: "Legend", Kind: carddef.KindLegend,
			Domains: []carddef.Domain{carddef.DomainFury}},
		"bf": {ID: "bf", Name: "Proving Grounds", Kind: carddef.KindBattlefield},
	}
	return lib
}

func testDeckSpec(name string) DeckSpec {
	spec := DeckSpec{Name: name, Legend: "legend", Battlefield: "bf"}
	for i := 0; i < 12; i++ {
		spec.Cards = append(spec.Cards, "grunt")
	}
	for i := 0; i < 10; i++ {
		spec.Runes = append(spec.Runes, "rune-fury")
	}
	return spec
}

func testServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	srv := New(Options{
		Engine:  game.NewEngine(nil),
		Library: testLibrary(),
	})
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return srv, ts
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	return resp
}

func decodeInto(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func createGame(t *testing.T, ts *httptest.Server) string {
	t.Helper()
	resp := postJSON(t, ts.URL+"/api/games", createGameRequest{
		Seed:  42,
		Decks: [2]DeckSpec{testDeckSpec("Alice"), testDeckSpec("Bob")},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created createGameResponse
	decodeInto(t, resp, &created)
	require.NotEmpty(t, created.GameID)
	return created.GameID
}

func TestCreateAndFetchGame(t *testing.T) {
	_, ts := testServer(t)
	id := createGame(t, ts)

	resp, err := http.Get(ts.URL + "/api/games/" + id + "?player=0")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var view GameView
	decodeInto(t, resp, &view)
	require.Equal(t, "MULLIGAN", view.Phase)
	require.Len(t, view.Players[0].Hand, 4)
	require.Len(t, view.Battlefields, 2)
}

func TestCreateGameRejectsUnknownCard(t *testing.T) {
	_, ts := testServer(t)
	bad := testDeckSpec("Alice")
	bad.Cards[0] = "no-such-card"
	resp := postJSON(t, ts.URL+"/api/games", createGameRequest{
		Decks: [2]DeckSpec{bad, testDeckSpec("Bob")},
	})
	resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSubmitActionAdvancesGame(t *testing.T) {
	_, ts := testServer(t)
	id := createGame(t, ts)
	actions := ts.URL + "/api/games/" + id + "/actions"

	var view GameView
	for player := 0; player < 2; player++ {
		resp := postJSON(t, actions, game.Action{
			Type: game.ActionConfirmMulligan, Player: player,
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		decodeInto(t, resp, &view)
	}
	require.Equal(t, "AWAKEN", view.Phase)

	resp := postJSON(t, actions, game.Action{
		Type: game.ActionAdvancePhase, Player: view.TurnPlayer,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeInto(t, resp, &view)
	require.Equal(t, "SCORING", view.Phase)
}

func TestSubmitRejectedActionReturns422(t *testing.T) {
	_, ts := testServer(t)
	id := createGame(t, ts)

	// Advancing during mulligan is illegal.
	resp := postJSON(t, ts.URL+"/api/games/"+id+"/actions", game.Action{
		Type: game.ActionAdvancePhase, Player: 0,
	})
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	var body map[string]string
	decodeInto(t, resp, &body)
	require.Contains(t, body["error"], "mulligan")
}

func TestGetGameRedactsOpponentHand(t *testing.T) {
	_, ts := testServer(t)
	id := createGame(t, ts)

	resp, err := http.Get(ts.URL + "/api/games/" + id + "?player=0")
	require.NoError(t, err)
	var view GameView
	decodeInto(t, resp, &view)

	for _, c := range view.Players[0].Hand {
		require.Equal(t, "grunt", c.DefID)
	}
	for _, c := range view.Players[1].Hand {
		require.Equal(t, "hidden", c.DefID)
	}
}

func TestUnknownGameReturns404(t *testing.T) {
	_, ts := testServer(t)
	resp, err := http.Get(ts.URL + "/api/games/nope")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestReplayGrowsWithActions(t *testing.T) {
	_, ts := testServer(t)
	id := createGame(t, ts)
	actions := ts.URL + "/api/games/" + id + "/actions"

	for player := 0; player < 2; player++ {
		resp := postJSON(t, actions, game.Action{
			Type: game.ActionConfirmMulligan, Player: player,
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		resp.Body.Close()
	}

	resp, err := http.Get(ts.URL + "/api/games/" + id + "/replay")
	require.NoError(t, err)
	var body struct {
		GameID  string             `json:"gameId"`
		Actions []game.ReplayEntry `json:"actions"`
	}
	decodeInto(t, resp, &body)
	require.Equal(t, id, body.GameID)
	require.Len(t, body.Actions, 2)
	for i, entry := range body.Actions {
		require.Equal(t, i+1, entry.Seq)
		require.Equal(t, game.ActionConfirmMulligan, entry.Action.Type)
	}
}

func TestListGames(t *testing.T) {
	_, ts := testServer(t)
	want := map[string]bool{}
	want[createGame(t, ts)] = true
	want[createGame(t, ts)] = true

	resp, err := http.Get(ts.URL + "/api/games")
	require.NoError(t, err)
	var body map[string][]string
	decodeInto(t, resp, &body)
	require.Len(t, body["games"], 2)
	for _, id := range body["games"] {
		require.True(t, want[id], "unexpected game id %s", id)
	}
}

func TestMatchesDisabledWithoutDatabase(t *testing.T) {
	_, ts := testServer(t)
	resp, err := http.Get(ts.URL + "/api/matches")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusNotImplemented, resp.StatusCode)
}

func TestListCards(t *testing.T) {
	_, ts := testServer(t)
	resp, err := http.Get(ts.URL + "/api/cards")
	require.NoError(t, err)
	var body struct {
		Cards []carddef.Card `json:"cards"`
	}
	decodeInto(t, resp, &body)
	require.Len(t, body.Cards, len(testLibrary()))
}

func TestSpectatorSeesBothHandsHidden(t *testing.T) {
	_, ts := testServer(t)
	id := createGame(t, ts)

	resp, err := http.Get(fmt.Sprintf("%s/api/games/%s", ts.URL, id))
	require.NoError(t, err)
	var view GameView
	decodeInto(t, resp, &view)
	for p := 0; p < 2; p++ {
		for _, c := range view.Players[p].Hand {
			require.Equal(t, "hidden", c.DefID)
		}
	}
}
