package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/directory-backend/internal/browser"
	"github.com/ignatzorin/directory-backend/internal/models"
	"github.com/ignatzorin/directory-backend/internal/repository"
	"github.com/ignatzorin/directory-backend/internal/service"
)

func strPtr(s string) *string { return &s }

func newSession(t *testing.T, ctx context.Context) (*browser.Session, uuid.UUID) {
	t.Helper()

	store := repository.NewMemoryRepository()
	kenya := uuid.New()
	_, err := store.ImportFixtures(context.Background(),
		[]models.Location{{ID: kenya, Name: "Kenya", Type: models.LocationTypeCountry}},
		[]models.Profile{
			{ID: uuid.New(), Name: "Wanjiru", UserType: models.UserTypeFreelancer, PrimarySkill: strPtr("Design"), Visibility: models.VisibilityPublic, LocationID: &kenya},
			{ID: uuid.New(), Name: "Java House", UserType: models.UserTypeBusiness, BusinessType: strPtr("Restaurant"), Visibility: models.VisibilityPublic},
		},
		[]models.Group{
			{ID: uuid.New(), Name: "Makers", Category: strPtr("Crafts"), Scope: models.GroupScopeLocal, IsPublic: true},
		},
	)
	require.NoError(t, err)

	return browser.NewSession(ctx,
		service.NewSearchService(store),
		service.NewFacetService(store, nil, time.Minute),
	), kenya
}

func TestDispatch(t *testing.T) {
	s, kenya := newSession(t, context.Background())

	require.NoError(t, Dispatch(s, Command{Type: CommandSetTab, Value: "businesses"}))
	s.Wait()
	assert.Equal(t, models.DomainBusiness, s.Snapshot().ActiveTab)
	require.Len(t, s.Snapshot().Profiles, 1)
	assert.Equal(t, "Java House", s.Snapshot().Profiles[0].Name)

	require.NoError(t, Dispatch(s, Command{Type: CommandSetTab, Value: "users"}))
	require.NoError(t, Dispatch(s, Command{Type: CommandSetLocation, Value: kenya.String()}))
	require.NoError(t, Dispatch(s, Command{Type: CommandSetCategory, Value: "design"}))
	require.NoError(t, Dispatch(s, Command{Type: CommandSetSearch, Value: " wan "}))
	s.Wait()
	st := s.Snapshot()
	assert.Equal(t, "wan", st.SearchTerm)
	require.Len(t, st.Profiles, 1)
	assert.Equal(t, "Wanjiru", st.Profiles[0].Name)

	require.NoError(t, Dispatch(s, Command{Type: CommandSetCategory, Value: models.SentinelAllCategories}))
	require.NoError(t, Dispatch(s, Command{Type: CommandSetLocation, Value: models.SentinelDefaultCountry}))
	require.NoError(t, Dispatch(s, Command{Type: CommandRefresh}))
	s.Wait()
	assert.Nil(t, s.Snapshot().SelectedCategory)
	assert.Nil(t, s.Snapshot().SelectedLocation)

	assert.ErrorIs(t, Dispatch(s, Command{Type: CommandSetTab, Value: "planets"}), models.ErrUnknownDomain)
	assert.Error(t, Dispatch(s, Command{Type: CommandSetLocation, Value: "not-a-uuid"}))
	assert.Error(t, Dispatch(s, Command{Type: "dance"}))
}

func readUntil(t *testing.T, conn *websocket.Conn, match func(Message, browser.State) bool) browser.State {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	for {
		_, raw, err := conn.ReadMessage()
		require.NoError(t, err)

		var env struct {
			Type string          `json:"type"`
			Data json.RawMessage `json:"data"`
		}
		require.NoError(t, json.Unmarshal(raw, &env))

		var st browser.State
		if env.Type == EventState {
			require.NoError(t, json.Unmarshal(env.Data, &st))
		}
		if match(Message{Type: env.Type, Data: string(env.Data)}, st) {
			return st
		}
	}
}

func TestClient_EndToEnd(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub()
	go hub.Run(ctx)

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		session, _ := newSession(t, r.Context())
		client := NewClient(conn, hub, session)
		if hub.Register(client) {
			client.Run(r.Context())
		}
	}))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.Close()

	st := readUntil(t, conn, func(m Message, st browser.State) bool {
		return m.Type == EventState && !st.Loading && len(st.Profiles) > 0
	})
	assert.Equal(t, models.DomainPeople, st.ActiveTab)
	assert.Equal(t, "Wanjiru", st.Profiles[0].Name)
	assert.Equal(t, 1, hub.Count())

	require.NoError(t, conn.WriteJSON(Command{Type: CommandSetTab, Value: "groups"}))
	st = readUntil(t, conn, func(m Message, st browser.State) bool {
		return m.Type == EventState && st.ActiveTab == models.DomainGroup && !st.Loading && len(st.Groups) > 0
	})
	assert.Equal(t, "Makers", st.Groups[0].Name)

	require.NoError(t, conn.WriteJSON(Command{Type: CommandSetTab, Value: "planets"}))
	readUntil(t, conn, func(m Message, _ browser.State) bool {
		return m.Type == EventError && strings.Contains(m.Data.(string), "неизвестная вкладка")
	})

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{")))
	readUntil(t, conn, func(m Message, _ browser.State) bool {
		return m.Type == EventError
	})
}

func TestHub_ShutdownClosesClients(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub()
	done := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(done)
	}()

	cancel()
	<-done

	assert.False(t, hub.Register(&Client{id: uuid.New()}))
	hub.Unregister(&Client{id: uuid.New()})
	assert.Equal(t, 0, hub.Count())
}
