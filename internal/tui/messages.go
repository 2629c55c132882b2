package tui

import (
	"time"

	"github.com/pkoukk/tiktoken-go"
)

type (
	frameMsg     time.Time
	tokenizerMsg struct {
		enc *tiktoken.Tiktoken
	}
)
