package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/marketplace-api/internal/config"
	"github.com/iliyamo/marketplace-api/internal/model"
	"github.com/iliyamo/marketplace-api/internal/queue"
	"github.com/iliyamo/marketplace-api/internal/repository/memory"
	"github.com/iliyamo/marketplace-api/internal/service"
)

type api struct {
	t     *testing.T
	e     *echo.Echo
	store *memory.Store
}

func newAPI(t *testing.T) *api {
	t.Helper()
	return newAPIWith(t, nil)
}

// newAPIWith lets a test adjust the dependencies before the router is built.
func newAPIWith(t *testing.T, adjust func(*Deps)) *api {
	t.Helper()
	log := zap.NewNop()
	st := memory.New()
	events := queue.NopPublisher{}
	tokens := service.NewRefreshTokenService(st.Tokens(), log)
	d := Deps{
		Auth:       service.NewAuthService(st.Users(), tokens, "test-secret", 15*time.Minute, time.Hour, log),
		Users:      service.NewUserService(st.Users(), events, bcrypt.MinCost, log),
		Offers:     service.NewOfferService(st.Offers(), events, log),
		Categories: service.NewCategoryService(st.Categories(), log),
		Comments:   service.NewCommentService(st.Comments(), events, log),
		Cache:      config.CacheConfig{},
		RateLimit:  config.RateLimitConfig{},
		Log:        log,
	}
	if adjust != nil {
		adjust(&d)
	}
	return &api{t: t, e: New(d), store: st}
}

type resp struct {
	Code int
	Body []byte
}

func (r resp) json(t *testing.T, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(r.Body, v), string(r.Body))
}

func (a *api) do(method, path string, body any, authz string) resp {
	a.t.Helper()
	var rdr *bytes.Reader
	switch b := body.(type) {
	case nil:
		rdr = bytes.NewReader(nil)
	case string:
		rdr = bytes.NewReader([]byte(b))
	default:
		bs, err := json.Marshal(b)
		require.NoError(a.t, err)
		rdr = bytes.NewReader(bs)
	}
	req := httptest.NewRequest(method, path, rdr)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if authz != "" {
		req.Header.Set(echo.HeaderAuthorization, authz)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return resp{Code: rec.Code, Body: rec.Body.Bytes()}
}

func userBody(name, email string) map[string]string {
	return map[string]string{
		"name":           name,
		"email":          email,
		"password":       "123456",
		"passwordRepeat": "123456",
		"avatar":         "avatar.jpg",
	}
}

type tokens struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

func (a *api) signup(name, email string) (uint64, tokens) {
	a.t.Helper()
	r := a.do(http.MethodPost, "/api/user", userBody(name, email), "")
	require.Equal(a.t, http.StatusCreated, r.Code, string(r.Body))
	var u model.User
	r.json(a.t, &u)

	r = a.do(http.MethodPost, "/api/user/login", map[string]string{"email": email, "password": "123456"}, "")
	require.Equal(a.t, http.StatusOK, r.Code, string(r.Body))
	var tk tokens
	r.json(a.t, &tk)
	return u.ID, tk
}

func (a *api) category(name string) uint64 {
	a.t.Helper()
	c := &model.Category{Name: name}
	require.NoError(a.t, a.store.Categories().Create(context.Background(), c))
	return c.ID
}

func offerBody(title string, categories ...uint64) map[string]any {
	return map[string]any{
		"title":       title,
		"description": strings.Repeat("Great condition, barely used. ", 3),
		"type":        "offer",
		"sum":         2500,
		"picture":     "item.png",
		"categories":  categories,
	}
}

func (a *api) postOffer(access string, body map[string]any) model.Offer {
	a.t.Helper()
	r := a.do(http.MethodPost, "/api/offer", body, "Bearer "+access)
	require.Equal(a.t, http.StatusCreated, r.Code, string(r.Body))
	var o model.Offer
	r.json(a.t, &o)
	return o
}

func id(v uint64) string { return strconv.FormatUint(v, 10) }

func TestHealth(t *testing.T) {
	a := newAPI(t)
	r := a.do(http.MethodGet, "/healthz", nil, "")
	assert.Equal(t, http.StatusOK, r.Code)
	assert.Equal(t, "ok", string(r.Body))
}

func TestUnknownRoute(t *testing.T) {
	a := newAPI(t)
	r := a.do(http.MethodGet, "/api/nope", nil, "")
	assert.Equal(t, http.StatusNotFound, r.Code)
	assert.JSONEq(t, `{"error":"Not Found"}`, string(r.Body))
}

func TestRegister(t *testing.T) {
	a := newAPI(t)

	r := a.do(http.MethodPost, "/api/user", userBody("James Bond", "jamesBond@mail.com"), "")
	require.Equal(t, http.StatusCreated, r.Code)
	var body map[string]any
	r.json(t, &body)
	assert.NotZero(t, body["id"])
	assert.NotEmpty(t, body["password"])
	assert.NotEqual(t, "123456", body["password"])

	r = a.do(http.MethodPost, "/api/user", userBody("James Bond", "jamesbond@mail.com"), "")
	assert.Equal(t, http.StatusBadRequest, r.Code, "duplicate email")

	bad := userBody("James Bond 007", "jamesBond.mail.com")
	bad["passwordRepeat"] = "654321"
	r = a.do(http.MethodPost, "/api/user", bad, "")
	require.Equal(t, http.StatusBadRequest, r.Code)
	var verr struct {
		Details map[string]string `json:"details"`
	}
	r.json(t, &verr)
	assert.Contains(t, verr.Details, "name")
	assert.Contains(t, verr.Details, "email")
	assert.Contains(t, verr.Details, "passwordRepeat")

	r = a.do(http.MethodGet, "/api/user", nil, "")
	require.Equal(t, http.StatusOK, r.Code)
	assert.NotContains(t, string(r.Body), `"password"`)
}

func TestRegister_RejectsOversizedFields(t *testing.T) {
	a := newAPI(t)

	long := userBody("James Bond", "jamesBond@mail.com")
	long["password"] = strings.Repeat("p", 73)
	long["passwordRepeat"] = long["password"]
	r := a.do(http.MethodPost, "/api/user", long, "")
	require.Equal(t, http.StatusBadRequest, r.Code, string(r.Body))
	var verr struct {
		Details map[string]string `json:"details"`
	}
	r.json(t, &verr)
	assert.Contains(t, verr.Details, "password")

	avatar := userBody("James Bond", "jamesBond@mail.com")
	avatar["avatar"] = strings.Repeat("a", 300) + ".jpg"
	r = a.do(http.MethodPost, "/api/user", avatar, "")
	assert.Equal(t, http.StatusBadRequest, r.Code, string(r.Body))
}

func TestLogin(t *testing.T) {
	a := newAPI(t)
	a.signup("James Bond", "jamesBond@mail.com")

	r := a.do(http.MethodPost, "/api/user/login", map[string]string{"email": "jamesBond@mail.com", "password": "123456"}, "")
	require.Equal(t, http.StatusOK, r.Code)
	var tk tokens
	r.json(t, &tk)
	assert.NotEmpty(t, tk.AccessToken)
	assert.NotEmpty(t, tk.RefreshToken)

	r = a.do(http.MethodPost, "/api/user/login", map[string]string{"email": "jamesBond@mail.com", "password": "1234567"}, "")
	assert.Equal(t, http.StatusForbidden, r.Code)

	r = a.do(http.MethodPost, "/api/user/login", map[string]string{"email": "nobody@mail.com", "password": "123456"}, "")
	assert.Equal(t, http.StatusForbidden, r.Code)

	r = a.do(http.MethodPost, "/api/user/login", map[string]string{"email": "jamesBond", "password": "123"}, "")
	assert.Equal(t, http.StatusBadRequest, r.Code)
}

func TestRefresh(t *testing.T) {
	a := newAPI(t)
	_, tk := a.signup("James Bond", "jamesBond@mail.com")

	r := a.do(http.MethodPost, "/api/user/refresh", map[string]string{"token": tk.RefreshToken}, "")
	require.Equal(t, http.StatusOK, r.Code)
	var next tokens
	r.json(t, &next)
	assert.NotEqual(t, tk.RefreshToken, next.RefreshToken)
	assert.NotEmpty(t, next.AccessToken)

	r = a.do(http.MethodPost, "/api/user/refresh", map[string]string{"token": tk.RefreshToken}, "")
	assert.Equal(t, http.StatusNotFound, r.Code, "second redemption")

	r = a.do(http.MethodPost, "/api/user/refresh", map[string]string{"token": "unknown"}, "")
	assert.Equal(t, http.StatusNotFound, r.Code)

	assert.Equal(t, http.StatusBadRequest, a.do(http.MethodPost, "/api/user/refresh", `{}`, "").Code)
	assert.Equal(t, http.StatusBadRequest, a.do(http.MethodPost, "/api/user/refresh", `{"token":42}`, "").Code)
}

func TestLogout(t *testing.T) {
	a := newAPI(t)
	_, tk := a.signup("James Bond", "jamesBond@mail.com")
	authz := "Bearer " + tk.AccessToken + " " + tk.RefreshToken

	r := a.do(http.MethodDelete, "/api/user/logout", nil, authz)
	assert.Equal(t, http.StatusBadRequest, r.Code, "body token is required")

	r = a.do(http.MethodDelete, "/api/user/logout", map[string]string{"token": tk.RefreshToken}, "Bearer forged "+tk.RefreshToken)
	assert.Equal(t, http.StatusForbidden, r.Code)

	r = a.do(http.MethodDelete, "/api/user/logout", map[string]string{"token": tk.RefreshToken}, authz)
	assert.Equal(t, http.StatusNoContent, r.Code)

	r = a.do(http.MethodPost, "/api/user/refresh", map[string]string{"token": tk.RefreshToken}, "")
	assert.Equal(t, http.StatusNotFound, r.Code, "revoked token")

	r = a.do(http.MethodDelete, "/api/user/logout", map[string]string{"token": "never-issued"}, authz)
	assert.Equal(t, http.StatusNoContent, r.Code, "unknown token behaves like a known one")
}

func TestOffers(t *testing.T) {
	a := newAPI(t)
	_, owner := a.signup("James Bond", "jamesBond@mail.com")
	_, other := a.signup("Eve Moneypenny", "eve@mail.com")
	books := a.category("Books")
	games := a.category("Games")

	r := a.do(http.MethodPost, "/api/offer", offerBody("Complete chess set", games), "")
	assert.Equal(t, http.StatusForbidden, r.Code, "anonymous create")

	r = a.do(http.MethodPost, "/api/offer", map[string]any{"title": "short"}, "Bearer "+owner.AccessToken)
	assert.Equal(t, http.StatusBadRequest, r.Code)

	r = a.do(http.MethodPost, "/api/offer", offerBody("Complete chess set", 99), "Bearer "+owner.AccessToken)
	assert.Equal(t, http.StatusBadRequest, r.Code, "unknown category")

	o := a.postOffer(owner.AccessToken, offerBody("Complete chess set", games, books))
	assert.Len(t, o.Categories, 2)

	r = a.do(http.MethodGet, "/api/offer/"+id(o.ID), nil, "")
	require.Equal(t, http.StatusOK, r.Code)
	var got model.Offer
	r.json(t, &got)
	assert.Equal(t, "Complete chess set", got.Title)

	assert.Equal(t, http.StatusNotFound, a.do(http.MethodGet, "/api/offer/999", nil, "").Code)
	assert.Equal(t, http.StatusBadRequest, a.do(http.MethodGet, "/api/offer/abc", nil, "").Code)

	upd := offerBody("Complete chess set with clock", games)
	r = a.do(http.MethodPut, "/api/offer/"+id(o.ID), upd, "Bearer "+other.AccessToken)
	assert.Equal(t, http.StatusForbidden, r.Code, "non-owner update")

	r = a.do(http.MethodPut, "/api/offer/"+id(o.ID), upd, "Bearer "+owner.AccessToken)
	require.Equal(t, http.StatusOK, r.Code)
	r.json(t, &got)
	assert.Equal(t, "Complete chess set with clock", got.Title)
	assert.Len(t, got.Categories, 1)

	r = a.do(http.MethodGet, "/api/offer", nil, "")
	require.Equal(t, http.StatusOK, r.Code)
	var all []model.Offer
	r.json(t, &all)
	assert.Len(t, all, 1)

	r = a.do(http.MethodDelete, "/api/offer/"+id(o.ID), nil, "Bearer "+other.AccessToken)
	assert.Equal(t, http.StatusForbidden, r.Code, "non-owner delete")

	r = a.do(http.MethodDelete, "/api/offer/"+id(o.ID), nil, "Bearer "+owner.AccessToken)
	require.Equal(t, http.StatusOK, r.Code)
	r.json(t, &got)
	assert.Equal(t, o.ID, got.ID)

	assert.Equal(t, http.StatusNotFound, a.do(http.MethodGet, "/api/offer/"+id(o.ID), nil, "").Code)
}

func TestComments(t *testing.T) {
	a := newAPI(t)
	_, seller := a.signup("James Bond", "jamesBond@mail.com")
	_, buyer := a.signup("Eve Moneypenny", "eve@mail.com")
	o := a.postOffer(seller.AccessToken, offerBody("Vintage film camera", a.category("Miscellaneous")))
	base := "/api/offer/" + id(o.ID) + "/comments"

	r := a.do(http.MethodGet, base, nil, "")
	require.Equal(t, http.StatusOK, r.Code)
	assert.JSONEq(t, `[]`, string(r.Body))

	r = a.do(http.MethodPost, base, map[string]string{"text": "too short"}, "Bearer "+buyer.AccessToken)
	assert.Equal(t, http.StatusBadRequest, r.Code)

	r = a.do(http.MethodPost, base, map[string]string{"text": "Does it come with the original lens?"}, "")
	assert.Equal(t, http.StatusForbidden, r.Code)

	r = a.do(http.MethodPost, "/api/offer/999/comments", map[string]string{"text": "Does it come with the original lens?"}, "Bearer "+buyer.AccessToken)
	assert.Equal(t, http.StatusNotFound, r.Code)

	r = a.do(http.MethodPost, base, map[string]string{"text": "Does it come with the original lens?"}, "Bearer "+buyer.AccessToken)
	require.Equal(t, http.StatusCreated, r.Code, string(r.Body))
	var c model.Comment
	r.json(t, &c)

	// The seller did not write the comment: rejected and nothing removed.
	r = a.do(http.MethodDelete, base+"/"+id(c.ID), nil, "Bearer "+seller.AccessToken)
	assert.Equal(t, http.StatusForbidden, r.Code)
	r = a.do(http.MethodGet, base, nil, "")
	var list []model.Comment
	r.json(t, &list)
	assert.Len(t, list, 1)

	r = a.do(http.MethodDelete, base+"/"+id(c.ID), nil, "Bearer "+buyer.AccessToken)
	require.Equal(t, http.StatusOK, r.Code)
	var deleted model.Comment
	r.json(t, &deleted)
	assert.Equal(t, c.ID, deleted.ID)

	r = a.do(http.MethodDelete, base+"/"+id(c.ID), nil, "Bearer "+buyer.AccessToken)
	assert.Equal(t, http.StatusNotFound, r.Code)
}

func TestOfferDeleteRemovesComments(t *testing.T) {
	a := newAPI(t)
	_, seller := a.signup("James Bond", "jamesBond@mail.com")
	o := a.postOffer(seller.AccessToken, offerBody("Vintage film camera", a.category("Miscellaneous")))
	base := "/api/offer/" + id(o.ID) + "/comments"
	r := a.do(http.MethodPost, base, map[string]string{"text": "Still available for pickup today?"}, "Bearer "+seller.AccessToken)
	require.Equal(t, http.StatusCreated, r.Code)
	var c model.Comment
	r.json(t, &c)

	require.Equal(t, http.StatusOK, a.do(http.MethodDelete, "/api/offer/"+id(o.ID), nil, "Bearer "+seller.AccessToken).Code)

	_, err := a.store.Comments().GetByID(context.Background(), c.ID)
	assert.Error(t, err)
}

func TestCategories(t *testing.T) {
	a := newAPI(t)
	_, tk := a.signup("James Bond", "jamesBond@mail.com")
	books := a.category("Books")
	a.category("Animals")
	a.postOffer(tk.AccessToken, offerBody("Collected works of Chekhov", books))

	r := a.do(http.MethodGet, "/api/category", nil, "")
	require.Equal(t, http.StatusOK, r.Code)
	var cats []model.Category
	r.json(t, &cats)
	require.Len(t, cats, 2)
	assert.Equal(t, 1, cats[0].OffersCount)
	assert.Equal(t, 0, cats[1].OffersCount)
	assert.Contains(t, string(r.Body), `"name":"Animals","offersCount":0`)

	r = a.do(http.MethodGet, "/api/category/"+id(books), nil, "")
	require.Equal(t, http.StatusOK, r.Code)
	var one struct {
		Name   string        `json:"name"`
		Offers []model.Offer `json:"offers"`
	}
	r.json(t, &one)
	assert.Equal(t, "Books", one.Name)
	assert.Len(t, one.Offers, 1)

	assert.Equal(t, http.StatusNotFound, a.do(http.MethodGet, "/api/category/999", nil, "").Code)

	r = a.do(http.MethodPost, "/api/category", map[string]string{"name": "Furniture"}, "Bearer "+tk.AccessToken)
	assert.Equal(t, http.StatusCreated, r.Code)
	r = a.do(http.MethodPost, "/api/category", map[string]string{"name": "furniture"}, "Bearer "+tk.AccessToken)
	assert.Equal(t, http.StatusConflict, r.Code)
	r = a.do(http.MethodPost, "/api/category", map[string]string{"name": "Furniture"}, "")
	assert.Equal(t, http.StatusForbidden, r.Code)
}

func TestSearch(t *testing.T) {
	a := newAPI(t)
	_, tk := a.signup("James Bond", "jamesBond@mail.com")
	books := a.category("Books")
	a.postOffer(tk.AccessToken, offerBody("Collected works of Chekhov", books))
	a.postOffer(tk.AccessToken, offerBody("Road bicycle, 54cm frame", books))

	r := a.do(http.MethodGet, "/api/search?query=chekhov", nil, "")
	require.Equal(t, http.StatusOK, r.Code)
	var found []model.Offer
	r.json(t, &found)
	require.Len(t, found, 1)
	assert.Equal(t, "Collected works of Chekhov", found[0].Title)

	r = a.do(http.MethodGet, "/api/search?query=piano", nil, "")
	require.Equal(t, http.StatusOK, r.Code)
	assert.JSONEq(t, `[]`, string(r.Body))

	assert.Equal(t, http.StatusBadRequest, a.do(http.MethodGet, "/api/search?query=%20", nil, "").Code)
}

func TestOfferGet_ServedFromCache(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	a := newAPIWith(t, func(d *Deps) {
		d.Redis = rdb
		d.Cache = config.CacheConfig{
			Enabled:      true,
			Methods:      map[string]bool{http.MethodGet: true},
			TTL:          time.Minute,
			Prefix:       "test:cache",
			MaxBodyBytes: 1 << 20,
		}
	})
	_, tk := a.signup("James Bond", "jamesBond@mail.com")
	books := a.category("Books")
	o := a.postOffer(tk.AccessToken, offerBody("Collected works of Chekhov", books))
	path := "/api/offer/" + id(o.ID)

	first := a.do(http.MethodGet, path, nil, "")
	require.Equal(t, http.StatusOK, first.Code)

	// Removed behind the API: no invalidation, and a hit never reaches the
	// existence check.
	require.NoError(t, a.store.Offers().Delete(context.Background(), o.ID))
	second := a.do(http.MethodGet, path, nil, "")
	require.Equal(t, http.StatusOK, second.Code)
	assert.JSONEq(t, string(first.Body), string(second.Body))

	// Any successful write bumps the generation.
	a.postOffer(tk.AccessToken, offerBody("Complete chess set with board", books))
	r := a.do(http.MethodGet, path, nil, "")
	assert.Equal(t, http.StatusNotFound, r.Code)
}
