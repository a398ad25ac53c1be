package types

import "github.com/m-mizutani/goerr/v2"

var (
	ErrInvalidOption      = goerr.New("invalid option")
	ErrValidationFailed   = goerr.New("validation failed")
	ErrInvalidWebhookData = goerr.New("invalid webhook data")

	// Pipeline error taxonomy. Only ErrSourceFetch, ErrScanEngine and
	// ErrArtifactConflict are fatal to a run; the others degrade the run
	// with a recorded annotation.
	ErrSourceFetch      = goerr.New("source revision unavailable")
	ErrScanEngine       = goerr.New("scan engine failed")
	ErrAIAnalysis       = goerr.New("ai analysis failed")
	ErrNotifyDelivery   = goerr.New("notification delivery failed")
	ErrArtifactConflict = goerr.New("artifact already exists")

	ErrStageOrder = goerr.New("stage transition out of order")
)
