package twitter

import (
	"errors"

	twitter "github.com/g8rswimmer/go-twitter/v2"
	"golang.org/x/oauth2"

	"github.com/chatgpt-twitter-bot/server/internal/bot/model"
)

// toPostError converts transport errors into model.PostError so they can be
// classified. Unknown errors are returned unchanged.
func toPostError(err error) error {
	if err == nil {
		return nil
	}

	var resp *twitter.ErrorResponse
	if errors.As(err, &resp) {
		return &model.PostError{Status: resp.StatusCode, Detail: resp.Detail, Description: resp.Title, Err: err}
	}

	var httpErr *twitter.HTTPError
	if errors.As(err, &httpErr) {
		return &model.PostError{Status: httpErr.StatusCode, Description: httpErr.Status, Err: err}
	}

	var retrieve *oauth2.RetrieveError
	if errors.As(err, &retrieve) {
		status := 0
		if retrieve.Response != nil {
			status = retrieve.Response.StatusCode
		}
		return &model.PostError{Status: status, Description: retrieve.ErrorDescription, Err: err}
	}
	return err
}
