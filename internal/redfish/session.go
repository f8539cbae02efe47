// Copyright (C) RedfishTools, Inc.
// SPDX-License-Identifier: MIT

package redfish

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"

	"github.com/cockroachdb/errors"
)

const sessionsPath = "/redfish/v1/SessionService/Sessions"

// Session is the result of a successful login.
type Session struct {
	Token    string
	Location string
	Username string
}

// Login creates a Redfish session and returns the token and the session
// resource URI needed to destroy it later. The client is updated to use the
// new token.
func (c *Client) Login(ctx context.Context, username, password string) (*Session, error) {
	payload := map[string]string{
		"UserName": username,
		"Password": password,
	}
	body, headers, err := c.Post(ctx, sessionsPath, payload)
	if err != nil {
		return nil, errors.Wrap(err, "session creation failed")
	}

	token := headers.Get(authTokenHeader)
	if token == "" {
		return nil, errors.New("session service returned no auth token")
	}

	location := headers.Get("Location")
	if location == "" {
		// Some services only report the session URI in the body.
		var created struct {
			ODataID string `json:"@odata.id"`
		}
		if err := json.Unmarshal(body, &created); err == nil {
			location = created.ODataID
		}
	}

	c.token = token
	return &Session{Token: token, Location: location, Username: username}, nil
}

// Logout destroys the session at location and clears the client token.
func (c *Client) Logout(ctx context.Context, location string) error {
	if location == "" {
		return errors.New("no session location to log out of")
	}
	// Location headers are sometimes absolute URLs.
	if strings.HasPrefix(location, "http") {
		if parsed, err := url.Parse(location); err == nil {
			location = parsed.Path
		}
	}
	if err := c.Delete(ctx, location); err != nil {
		return errors.Wrap(err, "session teardown failed")
	}
	c.token = ""
	return nil
}
