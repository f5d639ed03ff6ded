package chat

import "errors"

var (
	ErrProviderUnavailable = errors.New("chat provider unavailable")
	ErrInvalidResponse     = errors.New("chat provider returned invalid response")
)
