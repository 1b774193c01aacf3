package outbreakapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"outbreakinfo/lib/telemetry"

	"github.com/mazen160/go-random"
	"github.com/stretchr/testify/require"
)

func setup(t testing.TB, handler http.Handler, token string) (*Client, func()) {
	cleanup := telemetry.SetupForTesting(t, "test:lib/outbreakapi")

	server := httptest.NewServer(handler)
	opts := ClientOptions{BaseURL: server.URL}
	if token != "" {
		opts.Tokens = StaticToken(token)
	}
	client, err := NewClient(opts)
	require.NoError(t, err)

	return client, func() {
		server.Close()
		cleanup()
	}
}

func writeJson(t testing.TB, w http.ResponseWriter, status int, body any) {
	w.Header().Set("content-type", "application/json")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(body)
	require.NoError(t, err)
}

func TestErrorPolicy(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/html", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("content-type", "text/html")
		w.Write([]byte("<html>not an api</html>"))
	})
	mux.HandleFunc("/client-error", func(w http.ResponseWriter, r *http.Request) {
		writeJson(t, w, http.StatusBadRequest, map[string]bool{"success": false})
	})
	mux.HandleFunc("/server-error", func(w http.ResponseWriter, r *http.Request) {
		writeJson(t, w, http.StatusInternalServerError, map[string]bool{"success": false})
	})

	client, cleanup := setup(t, mux, "")
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	_, err := Query[map[string]any](ctx, client, "html", nil, false)
	require.ErrorIs(t, err, ErrMissingEndpoint)

	_, err = Query[map[string]any](ctx, client, "client-error", nil, false)
	require.ErrorIs(t, err, ErrClientRequest)

	_, err = Query[map[string]any](ctx, client, "server-error", nil, false)
	require.ErrorIs(t, err, ErrServerRequest)
}

func TestAuthorizationHeader(t *testing.T) {
	token, err := random.String(16)
	require.NoError(t, err)

	var gotAuth string
	mux := http.NewServeMux()
	mux.HandleFunc("/genomics/sequence-count", func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		writeJson(t, w, http.StatusOK, map[string]any{"results": []any{}})
	})

	client, cleanup := setup(t, mux, token)
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	_, err = Results[[]struct{}](ctx, client, "genomics/sequence-count", nil, true)
	require.NoError(t, err)
	require.Equal(t, "Bearer "+token, gotAuth)
}

func TestAnonymousAccess(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/covid19/query", func(w http.ResponseWriter, r *http.Request) {
		require.Empty(t, r.Header.Get("Authorization"))
		writeJson(t, w, http.StatusOK, map[string]any{"hits": []any{}})
	})

	client, cleanup := setup(t, mux, "")
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	_, err := Hits[struct{}](ctx, client, "covid19/query", nil, false)
	require.NoError(t, err)

	// same client cannot touch endpoints that require a token
	_, err = Hits[struct{}](ctx, client, "covid19/query", nil, true)
	require.ErrorIs(t, err, ErrNotAuthenticated)
}

type scrollRow struct {
	N int `json:"n"`
}

func TestScrollHits(t *testing.T) {
	var requests []url.Values
	mux := http.NewServeMux()
	mux.HandleFunc("/covid19/query", func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		requests = append(requests, query)

		if query.Get("scroll_id") == "" {
			writeJson(t, w, http.StatusOK, map[string]any{
				"_scroll_id": "scroll-0",
				"hits":       []scrollRow{{N: 1}, {N: 2}},
			})
			return
		}
		writeJson(t, w, http.StatusOK, map[string]any{
			"success": true,
			"hits":    []scrollRow{{N: 3}},
		})
	})

	client, cleanup := setup(t, mux, "")
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	params := url.Values{}
	params.Set("q", "location_id:(USA)")
	rows, err := ScrollHits[scrollRow](ctx, client, "covid19/query", params, false)
	require.NoError(t, err)
	require.Equal(t, []scrollRow{{N: 1}, {N: 2}, {N: 3}}, rows)

	require.Len(t, requests, 2)
	require.Equal(t, "true", requests[0].Get("fetch_all"))
	require.Equal(t, "location_id:(USA)", requests[0].Get("q"))
	require.Equal(t, "scroll-0", requests[1].Get("scroll_id"))
	require.Equal(t, "0", requests[1].Get("page"))
}

func TestMultiSearch(t *testing.T) {
	token, err := random.String(16)
	require.NoError(t, err)

	mux := http.NewServeMux()
	mux.HandleFunc("/wastewater_metadata/query", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)

		var body multiSearchRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "sra_accession", body.Scopes)
		require.Equal(t, []string{"SRR1", "SRR2", "SRR3"}, body.Q)

		writeJson(t, w, http.StatusOK, []map[string]any{
			{"n": 1},
			{"query": "SRR2", "notfound": true},
			{"n": 3},
		})
	})

	client, cleanup := setup(t, mux, token)
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	rows, err := MultiSearch[scrollRow](
		ctx, client, "wastewater_metadata/query",
		"sra_accession", []string{"SRR1", "SRR2", "SRR3"},
	)
	require.NoError(t, err)
	require.Equal(t, []scrollRow{{N: 1}, {N: 3}}, rows)
}

func TestAuthenticationFlow(t *testing.T) {
	sessionToken, err := random.String(16)
	require.NoError(t, err)
	bearer, err := random.String(32)
	require.NoError(t, err)

	polls := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/genomics/get-auth-token", func(w http.ResponseWriter, r *http.Request) {
		writeJson(t, w, http.StatusOK, AuthSession{
			Token: sessionToken,
			URL:   "https://api.outbreak.info/login",
		})
	})
	mux.HandleFunc("/genomics/check-auth-token", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer "+sessionToken, r.Header.Get("Authorization"))
		polls++
		if polls < 2 {
			writeJson(t, w, http.StatusOK, authStatus{Authenticated: false})
			return
		}
		writeJson(t, w, http.StatusOK, authStatus{
			Authenticated: true,
			Token:         bearer,
		})
	})

	client, cleanup := setup(t, mux, "")
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*30)
	defer cancel()

	session, err := client.StartAuthentication(ctx)
	require.NoError(t, err)
	require.Equal(t, sessionToken, session.Token)
	require.NotEmpty(t, session.URL)

	token, err := client.WaitForAuthentication(ctx, session, time.Millisecond*10)
	require.NoError(t, err)
	require.Equal(t, bearer, token)
	require.Equal(t, 2, polls)
}

func TestLuceneHelpers(t *testing.T) {
	require.Equal(t, "BA.1 OR BA.2", OrJoin([]string{"BA.1", "BA.2"}))
	require.Equal(t, "S:E484K AND S:N501Y", AndJoin([]string{"S:E484K", "S:N501Y"}))
	require.Equal(t, "pangolin_lineage_crumbs:*;XBB.1.5;*", Crumbs("pangolin_lineage_crumbs", "XBB.1.5"))
	require.Equal(t, "true", BoolString(true))
	require.Equal(t, "false", BoolString(false))
}
