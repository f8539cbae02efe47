// Copyright (C) RedfishTools, Inc.
// SPDX-License-Identifier: MIT

package redfish

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetRetriesTransientFailures(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"Id": "RootService"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, false)
	data, err := client.Get(context.Background(), "/redfish/v1/")
	require.NoError(t, err)
	assert.Equal(t, "RootService", data["Id"])
	assert.Equal(t, int32(2), attempts.Load())
}

func TestGetDoesNotRetryClientErrors(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error": {"message": "resource missing"}}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, false)
	_, err := client.Get(context.Background(), "/redfish/v1/Nope")
	require.Error(t, err)
	assert.Equal(t, int32(1), attempts.Load())

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusNotFound, statusErr.Status)
	assert.Equal(t, "resource missing", statusErr.Message)
}

func TestStatusErrorPrefersExtendedInfo(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": {"message": "see @Message.ExtendedInfo",
			"@Message.ExtendedInfo": [{"Message": "property is read-only"}]}}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, false)
	_, err := client.Get(context.Background(), "/redfish/v1/Systems/1")
	require.Error(t, err)

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, "property is read-only", statusErr.Message)
}

func TestClientIdentificationHeaders(t *testing.T) {
	var agent, correlation, token string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		agent = r.Header.Get("User-Agent")
		correlation = r.Header.Get("X-Correlation-Id")
		token = r.Header.Get("X-Auth-Token")
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, false, WithToken("secret-token"))
	_, err := client.Get(context.Background(), "/redfish/v1/")
	require.NoError(t, err)
	assert.Equal(t, "rfctl", agent)
	assert.NotEmpty(t, correlation)
	assert.Equal(t, "secret-token", token)
}

func TestLogin(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, sessionsPath, r.URL.Path)

		var creds map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
		if creds["UserName"] != "admin" || creds["Password"] != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error": {"message": "invalid credentials"}}`))
			return
		}
		w.Header().Set("X-Auth-Token", "token-123")
		w.Header().Set("Location", "/redfish/v1/SessionService/Sessions/42")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"@odata.id": "/redfish/v1/SessionService/Sessions/42"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, false)
	session, err := client.Login(context.Background(), "admin", "secret")
	require.NoError(t, err)
	assert.Equal(t, "token-123", session.Token)
	assert.Equal(t, "/redfish/v1/SessionService/Sessions/42", session.Location)
	assert.Equal(t, "admin", session.Username)
	assert.Equal(t, "token-123", client.Token())

	_, err = client.Login(context.Background(), "admin", "wrong")
	require.Error(t, err)
	assert.ErrorContains(t, err, "invalid credentials")
}

func TestLogout(t *testing.T) {
	var deleted string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		deleted = r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, false, WithToken("token-123"))

	// Absolute session URIs are reduced to their path.
	err := client.Logout(context.Background(), srv.URL+"/redfish/v1/SessionService/Sessions/42")
	require.NoError(t, err)
	assert.Equal(t, "/redfish/v1/SessionService/Sessions/42", deleted)
	assert.Empty(t, client.Token())

	err = client.Logout(context.Background(), "")
	assert.Error(t, err)
}
