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
	"context"
	"errors"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tomoncle/bakery/database"
	"github.com/tomoncle/bakery/service"
)

func TestServerStartStop(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "pong")
	})
	srv := NewServer(handler, ServerOptions{Addr: "127.0.0.1:0", ShutdownTimeout: time.Second})
	errCh, err := srv.Start()
	require.NoError(t, err)

	resp, err := http.Get("http://" + srv.Addr() + "/")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, "pong", string(body))

	require.NoError(t, srv.Stop(context.Background()))
	_, open := <-errCh
	assert.False(t, open)
}

func TestServerStartFailsOnBusyAddress(t *testing.T) {
	first := NewServer(http.NotFoundHandler(), ServerOptions{Addr: "127.0.0.1:0"})
	_, err := first.Start()
	require.NoError(t, err)
	t.Cleanup(func() { _ = first.Stop(context.Background()) })

	second := NewServer(http.NotFoundHandler(), ServerOptions{Addr: first.Addr()})
	_, err = second.Start()
	assert.Error(t, err)
}

func TestNewServerDefaults(t *testing.T) {
	srv := NewServer(http.NotFoundHandler(), ServerOptions{})
	assert.Equal(t, ":5555", srv.Addr())
	assert.Equal(t, 15*time.Second, srv.http.ReadTimeout)
	assert.Equal(t, 10*time.Second, srv.opts.ShutdownTimeout)
}

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err     error
		code    int
		message string
	}{
		{service.ErrBakeryNotFound, http.StatusNotFound, "Bakery not found."},
		{service.ErrBakedGoodNotFound, http.StatusNotFound, "Baked good not found."},
		{&service.ValidationError{Message: "Field not allowed: id."}, http.StatusBadRequest, "Field not allowed: id."},
		{&service.ConstraintError{Kind: database.DuplicateKeyErr}, http.StatusConflict, "Resource already exists."},
		{&service.ConstraintError{Kind: database.ForeignKeyViolationErr}, http.StatusBadRequest, "Referenced resource does not exist."},
		{&service.ConstraintError{Kind: database.NotNullViolationErr}, http.StatusBadRequest, "Invalid input."},
		{errors.New("disk on fire"), http.StatusInternalServerError, "Internal server error."},
	}
	for _, tc := range cases {
		code, body := statusFor(tc.err)
		assert.Equal(t, tc.code, code, tc.err.Error())
		assert.Equal(t, tc.message, body.Message)
	}
}
