package client

import (
	"fmt"

	"github.com/dmitrijs2005/docarchive/internal/common"
)

var (
	ErrUnavailable       = fmt.Errorf("server unavailable: %w", common.ErrNetwork)
	ErrUnexpectedStatus  = fmt.Errorf("unexpected status: %w", common.ErrNetwork)
	ErrMalformedResponse = fmt.Errorf("malformed response: %w", common.ErrNetwork)
)
