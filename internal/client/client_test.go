package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"access_review/internal/models"
)

func TestGetAppManagerUsers(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/dashboard/app-manager/users", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`[{"id":"1","name":"Ann","email":"ann@example.com","application":"Jira","role":"Viewer","status":"Active","avatarUrl":"x"}]`))
	}))
	defer srv.Close()

	users, err := New(srv.URL, WithToken("tok")).GetAppManagerUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "Ann", users[0].Name)
}

func TestCreateUser_ErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		var in NewUser
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.Equal(t, "EXTA341", in.BusinessUserID)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"application 'Nope' not found"}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL).CreateUser(context.Background(), NewUser{
		Name: "Lena", Email: "lena@example.com", BusinessUserID: "EXTA341", Application: "Nope", Role: "Analyst",
	})
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Contains(t, apiErr.Body, "application 'Nope' not found")
}

func TestListRecordsAndAct(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/records":
			assert.Equal(t, "second", r.URL.Query().Get("stage"))
			assert.Empty(t, r.URL.Query().Get("application"))
			_, _ = w.Write([]byte(`{"records":[{"id":"r1","reviewStatus":"Retained"}]}`))
		case "/api/v1/records/r1/actions":
			var in map[string]string
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&in))
			assert.Equal(t, "Approve", in["action"])
			_, _ = w.Write([]byte(`{"record":{"id":"r1","reviewStatus":"Approved"}}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()
	c := New(srv.URL)

	recs, err := c.ListRecords(context.Background(), "second", "", "")
	require.NoError(t, err)
	require.Len(t, recs, 1)

	rec, err := c.Act(context.Background(), "r1", "Approve", "", "Owner")
	require.NoError(t, err)
	assert.Equal(t, models.ReviewApproved, rec.ReviewStatus)

	err = c.DeleteUser(context.Background(), "r1")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
}
