package web

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/ncmlookup/internal/auth"
	"github.com/JonMunkholm/ncmlookup/internal/ncm"
)

func TestSearchItems(t *testing.T) {
	env := setupTestServer(t, nil)
	_, token := env.store.seedUser(t, env.issuer, "ana@example.com", auth.RoleClient)

	tests := []struct {
		name      string
		query     url.Values
		wantItems []string
	}{
		{"no filters", url.Values{}, []string{"1", "2"}},
		{"ALL by description", url.Values{"q": {"eletrico"}}, []string{"2"}},
		{"NCM field", url.Values{"q": {"8407"}, "field": {"NCM"}}, []string{"1"}},
		{"two filters", url.Values{"q": {"motor"}, "q2": {"8501"}, "field2": {"NCM"}}, []string{"2"}},
		{"no match", url.Values{"q": {"trator"}}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, http.MethodGet, "/itens/search?"+tt.query.Encode(), nil, token)
			require.Equal(t, http.StatusOK, w.Code, w.Body.String())

			page := decodeBody[ncm.Page](t, w)
			items := []string{}
			for _, row := range page.Data {
				items = append(items, row.Item)
			}
			assert.Equal(t, tt.wantItems, items)
			assert.Equal(t, len(tt.wantItems), page.TotalItems)
			assert.Equal(t, 1, page.Page)
		})
	}
}

func TestSearchItems_Paging(t *testing.T) {
	env := setupTestServer(t, nil)
	_, token := env.store.seedUser(t, env.issuer, "ana@example.com", auth.RoleClient)

	w := env.do(t, http.MethodGet, "/itens/search?limit=1&page=9", nil, token)
	require.Equal(t, http.StatusOK, w.Code)

	page := decodeBody[ncm.Page](t, w)
	assert.Equal(t, 2, page.TotalPages)
	assert.Equal(t, 2, page.Page, "page is clamped to the last one")
	require.Len(t, page.Data, 1)
	assert.Equal(t, "2", page.Data[0].Item)
}

func TestSearchItems_Validation(t *testing.T) {
	env := setupTestServer(t, nil)
	_, token := env.store.seedUser(t, env.issuer, "ana@example.com", auth.RoleClient)

	for _, query := range []string{
		"field=PRECO",
		"field2=cbs",
		"page=0",
		"page=abc",
		"limit=0",
		"limit=201",
	} {
		t.Run(query, func(t *testing.T) {
			w := env.do(t, http.MethodGet, "/itens/search?"+query, nil, token)
			assert.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())
		})
	}

	t.Run("column with spaces", func(t *testing.T) {
		q := url.Values{"q": {"motor"}, "field": {"DESCRIÇÃO DO PRODUTO"}}
		w := env.do(t, http.MethodGet, "/itens/search?"+q.Encode(), nil, token)
		assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	})
}

func TestSearchItems_RequiresAuth(t *testing.T) {
	env := setupTestServer(t, nil)

	w := env.do(t, http.MethodGet, "/itens/search", nil, "")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestItemDetails(t *testing.T) {
	env := setupTestServer(t, nil)
	_, token := env.store.seedUser(t, env.issuer, "ana@example.com", auth.RoleClient)

	w := env.do(t, http.MethodGet, "/itens/details?ncm=8407.10.00", nil, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	details := decodeBody[ncm.Details](t, w)
	require.Equal(t, 1, details.Count)
	assert.Equal(t, "Motor a diesel", details.Data[0].ProductDescription)

	w = env.do(t, http.MethodGet, "/itens/details?item=2", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, decodeBody[ncm.Details](t, w).Count)

	w = env.do(t, http.MethodGet, "/itens/details", nil, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "NCM002", decodeBody[ErrorResponse](t, w).Code)
}

func TestReloadItems(t *testing.T) {
	env := setupTestServer(t, nil)
	_, clientToken := env.store.seedUser(t, env.issuer, "ana@example.com", auth.RoleClient)
	_, adminToken := env.store.seedUser(t, env.issuer, "root@example.com", auth.RoleAdministrator)

	w := env.do(t, http.MethodPost, "/itens/reload", nil, clientToken)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(t, http.MethodPost, "/itens/reload", nil, adminToken)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	status := decodeBody[ncm.Status](t, w)
	assert.True(t, status.Loaded)
	assert.Equal(t, int64(1), status.Loads)
}

func TestSearchItems_ResourceMissing(t *testing.T) {
	env := setupTestServer(t, nil)
	_, token := env.store.seedUser(t, env.issuer, "ana@example.com", auth.RoleClient)
	env.server.items = ncm.NewCache(ncm.Source{ResourceDir: t.TempDir()}, ncm.WithReader(fixtureSheets))

	w := env.do(t, http.MethodGet, "/itens/search", nil, token)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Excel file not found in package.", decodeBody[ErrorResponse](t, w).Detail)
}
