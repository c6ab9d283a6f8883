package chat

import "errors"

var ErrEmptyMessage = errors.New("message text is empty")
