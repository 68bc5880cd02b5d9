/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tomoncle/bakery/database"
	"github.com/tomoncle/bakery/model"
	"github.com/tomoncle/bakery/model/modeltest"
	"github.com/uptrace/bun"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fixture struct {
	t      *testing.T
	db     *bun.DB
	router *gin.Engine
}

func newFixture(t *testing.T) *fixture {
	return newFixtureWith(t, modeltest.Open(t))
}

func newFixtureWith(t *testing.T, factory *database.BaseDatabaseFactory) *fixture {
	return &fixture{
		t:  t,
		db: factory.GetDB(),
		router: NewRouter(Dependencies{
			DB:      factory,
			Health:  factory,
			Metrics: NewMetrics(factory),
		}),
	}
}

// seed stores the two sample bakeries with goods and returns them.
func (f *fixture) seed() (*model.Bakery, *model.Bakery) {
	donuts := modeltest.InsertBakery(f.t, f.db, "Delightful donuts")
	crullers := modeltest.InsertBakery(f.t, f.db, "Incredible crullers")
	modeltest.InsertBakedGood(f.t, f.db, donuts.ID, "Chocolate dipped donut", 2.75)
	modeltest.InsertBakedGood(f.t, f.db, donuts.ID, "Apple-spice filled donut", 3.5)
	modeltest.InsertBakedGood(f.t, f.db, crullers.ID, "Glazed honey cruller", 3.25)
	modeltest.InsertBakedGood(f.t, f.db, crullers.ID, "Chocolate cruller", 5)
	return donuts, crullers
}

func (f *fixture) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func (f *fixture) get(path string) *httptest.ResponseRecorder {
	return f.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (f *fixture) form(method, path string, values url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return f.do(req)
}

func (f *fixture) multipart(method, path string, values map[string]string) *httptest.ResponseRecorder {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range values {
		require.NoError(f.t, mw.WriteField(k, v))
	}
	require.NoError(f.t, mw.Close())
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return f.do(req)
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestIndex(t *testing.T) {
	f := newFixture(t)

	w := f.get("/")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Equal(t, "<h1>Bakery GET-POST-PATCH-DELETE API</h1>", w.Body.String())
}

func TestListBakeries(t *testing.T) {
	f := newFixture(t)

	w := f.get("/bakeries")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())

	donuts, crullers := f.seed()
	w = f.get("/bakeries")
	require.Equal(t, http.StatusOK, w.Code)
	bakeries := decode[[]model.Bakery](t, w)
	require.Len(t, bakeries, 2)
	assert.Equal(t, donuts.ID, bakeries[0].ID)
	assert.Equal(t, crullers.ID, bakeries[1].ID)
	require.Len(t, bakeries[0].BakedGoods, 2)
	assert.Equal(t, "Chocolate dipped donut", bakeries[0].BakedGoods[0].Name)
	assert.Equal(t, donuts.ID, bakeries[0].BakedGoods[0].BakeryID)
}

func TestGetBakery(t *testing.T) {
	f := newFixture(t)
	donuts, _ := f.seed()

	w := f.get("/bakeries/1")
	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, float64(donuts.ID), body["id"])
	assert.Equal(t, "Delightful donuts", body["name"])
	assert.Len(t, body["baked_goods"], 2)
	assert.Contains(t, body, "created_at")
	assert.Contains(t, body, "updated_at")
}

func TestGetBakeryWithoutGoodsRendersEmptyList(t *testing.T) {
	f := newFixture(t)
	modeltest.InsertBakery(t, f.db, "Empty shelves")

	w := f.get("/bakeries/1")
	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, []any{}, body["baked_goods"])
}

func TestGetBakeryNotFound(t *testing.T) {
	f := newFixture(t)
	f.seed()

	for _, path := range []string{"/bakeries/99", "/bakeries/0", "/bakeries/-1", "/bakeries/abc"} {
		w := f.get(path)
		assert.Equal(t, http.StatusNotFound, w.Code, path)
		assert.JSONEq(t, `{"message":"Bakery not found."}`, w.Body.String(), path)
	}
}

func TestPatchBakeryURLEncoded(t *testing.T) {
	f := newFixture(t)
	f.seed()

	w := f.form(http.MethodPatch, "/bakeries/1", url.Values{"name": {"Donut palace"}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	bakery := decode[model.Bakery](t, w)
	assert.Equal(t, "Donut palace", bakery.Name)
	assert.Len(t, bakery.BakedGoods, 2)

	w = f.get("/bakeries/1")
	assert.Equal(t, "Donut palace", decode[model.Bakery](t, w).Name)
}

func TestPatchBakeryMultipart(t *testing.T) {
	f := newFixture(t)
	f.seed()

	w := f.multipart(http.MethodPatch, "/bakeries/2", map[string]string{"name": "Cruller corner"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Cruller corner", decode[model.Bakery](t, w).Name)
}

func TestPatchBakeryEmptyFormChangesNothing(t *testing.T) {
	f := newFixture(t)
	f.seed()

	w := f.form(http.MethodPatch, "/bakeries/1", url.Values{})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Delightful donuts", decode[model.Bakery](t, w).Name)
}

func TestPatchBakeryRejectsInput(t *testing.T) {
	f := newFixture(t)
	f.seed()

	w := f.form(http.MethodPatch, "/bakeries/1", url.Values{"id": {"7"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"message":"Field not allowed: id."}`, w.Body.String())

	w = f.form(http.MethodPatch, "/bakeries/1", url.Values{"name": {""}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"message":"Invalid input.","errors":{"name":"is required"}}`, w.Body.String())

	w = f.get("/bakeries/1")
	assert.Equal(t, "Delightful donuts", decode[model.Bakery](t, w).Name)
}

func TestPatchBakeryNotFound(t *testing.T) {
	f := newFixture(t)

	w := f.form(http.MethodPatch, "/bakeries/5", url.Values{"name": {"Ghost"}})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"message":"Bakery not found."}`, w.Body.String())

	w = f.form(http.MethodPatch, "/bakeries/x", url.Values{"name": {"Ghost"}})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListBakedGoods(t *testing.T) {
	f := newFixture(t)

	w := f.get("/baked_goods")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())

	f.seed()
	w = f.get("/baked_goods")
	require.Equal(t, http.StatusOK, w.Code)
	goods := decode[[]model.BakedGood](t, w)
	require.Len(t, goods, 4)
	for i, g := range goods {
		assert.Equal(t, int64(i+1), g.ID)
	}
}

func TestBakedGoodsByPrice(t *testing.T) {
	f := newFixture(t)

	w := f.get("/baked_goods/by_price")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())

	f.seed()
	w = f.get("/baked_goods/by_price")
	require.Equal(t, http.StatusOK, w.Code)
	goods := decode[[]model.BakedGood](t, w)
	require.Len(t, goods, 4)
	prices := make([]float64, len(goods))
	for i, g := range goods {
		prices[i] = g.Price
	}
	assert.Equal(t, []float64{5, 3.5, 3.25, 2.75}, prices)
}

func TestMostExpensiveBakedGood(t *testing.T) {
	f := newFixture(t)

	w := f.get("/baked_goods/most_expensive")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"message":"Baked good not found."}`, w.Body.String())

	f.seed()
	w = f.get("/baked_goods/most_expensive")
	require.Equal(t, http.StatusOK, w.Code)
	good := decode[model.BakedGood](t, w)
	assert.Equal(t, "Chocolate cruller", good.Name)
	assert.Equal(t, 5.0, good.Price)
}

func TestGetBakedGood(t *testing.T) {
	f := newFixture(t)
	f.seed()

	w := f.get("/baked_goods/3")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Glazed honey cruller", decode[model.BakedGood](t, w).Name)

	w = f.get("/baked_goods/30")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"message":"Baked good not found."}`, w.Body.String())
}

func TestCreateBakedGood(t *testing.T) {
	f := newFixture(t)
	f.seed()

	w := f.form(http.MethodPost, "/baked_goods", url.Values{
		"name":      {"Boston cream donut"},
		"price":     {"4.25"},
		"bakery_id": {"1"},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, float64(5), body["id"])
	assert.Equal(t, "Boston cream donut", body["name"])
	assert.Equal(t, 4.25, body["price"])
	assert.Equal(t, float64(1), body["bakery_id"])
	assert.Contains(t, body, "created_at")

	w = f.get("/bakeries/1")
	assert.Len(t, decode[model.Bakery](t, w).BakedGoods, 3)
}

func TestCreateBakedGoodMultipart(t *testing.T) {
	f := newFixture(t)
	f.seed()

	w := f.multipart(http.MethodPost, "/baked_goods", map[string]string{
		"name":      "Old fashioned",
		"price":     "2",
		"bakery_id": "2",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, int64(2), decode[model.BakedGood](t, w).BakeryID)
}

func TestCreateBakedGoodValidation(t *testing.T) {
	f := newFixture(t)
	f.seed()

	cases := []struct {
		name   string
		values url.Values
		want   string
	}{
		{
			name:   "missing fields",
			values: url.Values{"name": {"Plain"}},
			want:   `{"message":"Invalid input.","errors":{"price":"is required","bakery_id":"is required"}}`,
		},
		{
			name:   "bad price",
			values: url.Values{"name": {"Plain"}, "price": {"free"}, "bakery_id": {"1"}},
			want:   `{"message":"Invalid input.","errors":{"price":"must be a number"}}`,
		},
		{
			name:   "unknown bakery",
			values: url.Values{"name": {"Plain"}, "price": {"1"}, "bakery_id": {"99"}},
			want:   `{"message":"Invalid input.","errors":{"bakery_id":"bakery does not exist"}}`,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := f.form(http.MethodPost, "/baked_goods", tc.values)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.JSONEq(t, tc.want, w.Body.String())
		})
	}

	w := f.get("/baked_goods")
	assert.Len(t, decode[[]model.BakedGood](t, w), 4)
}

func TestDeleteBakedGood(t *testing.T) {
	f := newFixture(t)
	f.seed()

	req := httptest.NewRequest(http.MethodDelete, "/baked_goods/2", nil)
	w := f.do(req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"delete_successful":true,"message":"Baked good deleted."}`, w.Body.String())

	w = f.get("/baked_goods/2")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = f.do(httptest.NewRequest(http.MethodDelete, "/baked_goods/2", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"message":"Baked good not found."}`, w.Body.String())

	w = f.do(httptest.NewRequest(http.MethodDelete, "/baked_goods/nope", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUnknownRouteAndMethod(t *testing.T) {
	f := newFixture(t)

	w := f.get("/cakes")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"message":"Not found."}`, w.Body.String())

	w = f.do(httptest.NewRequest(http.MethodDelete, "/bakeries/1", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.JSONEq(t, `{"message":"Method not allowed."}`, w.Body.String())
}

func TestHealthz(t *testing.T) {
	f := newFixture(t)

	w := f.get("/healthz")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Contains(t, body, "database")
	assert.Contains(t, body, "pool")
}

func TestMetricsExposeRoutePatterns(t *testing.T) {
	f := newFixture(t)
	f.seed()
	f.get("/bakeries/1")
	f.get("/bakeries/2")

	w := f.get("/metrics")
	require.Equal(t, http.StatusOK, w.Code)
	body, err := io.ReadAll(w.Body)
	require.NoError(t, err)
	text := string(body)
	assert.Contains(t, text, `bakery_http_requests_total{method="GET",route="/bakeries/:id",status="200"} 2`)
	assert.Contains(t, text, "bakery_http_request_duration_seconds")
	assert.Contains(t, text, "go_goroutines")
}

func TestRoutesFollowReconnectedPool(t *testing.T) {
	factory := modeltest.OpenFile(t)
	f := newFixtureWith(t, factory)
	f.seed()

	require.Equal(t, http.StatusOK, f.get("/bakeries").Code)
	require.NoError(t, factory.GetManager().Reconnect(context.Background()))

	w := f.get("/bakeries")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Len(t, decode[[]model.Bakery](t, w), 2)

	w = f.form(http.MethodPost, "/baked_goods", url.Values{
		"name":      {"Old fashioned"},
		"price":     {"2"},
		"bakery_id": {"1"},
	})
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, http.StatusOK, f.get("/healthz").Code)

	w = f.get("/metrics")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `go_sql_open_connections{db_name="bakery"}`)
}
