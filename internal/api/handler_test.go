package api

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"shop-service/internal/apperror"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testContext(t *testing.T) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	return c, rec
}

func TestCartIDFromCookie(t *testing.T) {
	h := &Handler{}

	c, _ := testContext(t)
	assert.Nil(t, h.cartIDFromCookie(c), "no cookie")

	c, _ = testContext(t)
	c.Request.AddCookie(&http.Cookie{Name: cartCookieName, Value: "not-a-uuid"})
	assert.Nil(t, h.cartIDFromCookie(c), "malformed cookie")

	id := uuid.New()
	c, _ = testContext(t)
	c.Request.AddCookie(&http.Cookie{Name: cartCookieName, Value: id.String()})
	got := h.cartIDFromCookie(c)
	require.NotNil(t, got)
	assert.Equal(t, id, *got)
}

func TestSetAndClearCartCookie(t *testing.T) {
	h := &Handler{}
	id := uuid.New()

	c, rec := testContext(t)
	h.setCartCookie(c, id)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, cartCookieName, cookies[0].Name)
	assert.Equal(t, id.String(), cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)

	c, rec = testContext(t)
	h.clearCartCookie(c)
	cookies = rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Empty(t, cookies[0].Value)
	assert.Negative(t, cookies[0].MaxAge)
}

func TestRespondErrorMapping(t *testing.T) {
	h := &Handler{}

	tests := []struct {
		err  error
		code int
	}{
		{apperror.ErrCartNotFound, http.StatusNotFound},
		{apperror.ErrProductVanished, http.StatusNotFound},
		{apperror.ErrEmptyCart, http.StatusBadRequest},
		{apperror.ErrInvalidStatus, http.StatusBadRequest},
		{&apperror.InsufficientStockError{ProductName: "widget"}, http.StatusBadRequest},
		{errors.New("db down"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		c, rec := testContext(t)
		h.respondError(c, tt.err)
		assert.Equal(t, tt.code, rec.Code, "error %v", tt.err)
	}
}

func TestParseID(t *testing.T) {
	c, rec := testContext(t)
	id, ok := parseID(c, "nope")
	assert.False(t, ok)
	assert.Equal(t, uuid.Nil, id)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	want := uuid.New()
	c, _ = testContext(t)
	got, ok := parseID(c, want.String())
	assert.True(t, ok)
	assert.Equal(t, want, got)
}
