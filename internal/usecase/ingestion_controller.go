package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/stockboard/backend/internal/domain"
	"go.uber.org/zap"
)

// IngestionState is a state of the scan-and-save flow
type IngestionState string

const (
	StateIdle          IngestionState = "Idle"
	StateFileSelected  IngestionState = "FileSelected"
	StateRecognizing   IngestionState = "Recognizing"
	StateTextAvailable IngestionState = "TextAvailable"
	StateResolving     IngestionState = "Resolving"
	StateResolved      IngestionState = "Resolved"
	StateFailed        IngestionState = "Failed"
)

// Severity tags a user-facing status message
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
)

// User-facing messages
const (
	msgNoFile        = "Please upload a file first."
	msgProcessing    = "Processing file..."
	msgExtracted     = "Barcode extracted successfully!"
	msgScanFailed    = "Failed to process file. Please try again."
	msgNoBarcode     = "No barcode to save. Please scan a file or enter a barcode."
	msgSaving        = "Looking up product..."
	msgSaved         = "Product added successfully!"
	msgNoResponse    = "No response from the server. Please check your network connection."
	msgGenericRemote = "An error occurred. Please try again."
)

// ScanStatus is a snapshot of the ingestion controller
type ScanStatus struct {
	State       IngestionState        `json:"state"`
	Barcode     string                `json:"barcode"`
	Message     string                `json:"message,omitempty"`
	Severity    Severity              `json:"severity,omitempty"`
	ErrorKind   string                `json:"errorKind,omitempty"`
	SelectionID string                `json:"selectionId,omitempty"`
	FileName    string                `json:"fileName,omitempty"`
	Busy        bool                  `json:"busy"`
	Product     *domain.ProductRecord `json:"product,omitempty"`
}

// Resolver resolves a candidate barcode to a product record
type Resolver interface {
	Resolve(ctx context.Context, identifier string) (*domain.ProductRecord, error)
}

// IngestionController drives one operator's scan-and-save flow.
// At most one Scan or Save runs at a time; a new Select cancels it.
type IngestionController struct {
	recognizer domain.Recognizer
	resolver   Resolver
	onResolved func(domain.ProductRecord)
	logger     *zap.Logger

	mu         sync.Mutex
	state      IngestionState
	input      *domain.ScannedInput
	selection  uuid.UUID
	identifier string
	message    string
	severity   Severity
	errKind    string
	product    *domain.ProductRecord
	busy       bool
	cancel     context.CancelFunc
}

// NewIngestionController creates a controller in the Idle state.
// onResolved is called once per successful Save while the controller's
// lock is held, so it must not call back into the controller.
func NewIngestionController(
	recognizer domain.Recognizer,
	resolver Resolver,
	onResolved func(domain.ProductRecord),
	logger *zap.Logger,
) *IngestionController {
	if onResolved == nil {
		onResolved = func(domain.ProductRecord) {}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &IngestionController{
		recognizer: recognizer,
		resolver:   resolver,
		onResolved: onResolved,
		logger:     logger.Named("ingestion"),
		state:      StateIdle,
	}
}

// Status returns the current snapshot
func (c *IngestionController) Status() ScanStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.statusLocked()
}

// Select replaces the current input, clearing the barcode and message.
// Any pending Scan or Save for the previous input is cancelled and its
// result discarded.
func (c *IngestionController) Select(input domain.ScannedInput) ScanStatus {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}

	c.input = &input
	c.selection = uuid.New()
	c.identifier = ""
	c.product = nil
	c.busy = false
	c.setLocked(StateFileSelected, "", "", "")

	c.logger.Debug("input selected",
		zap.String("selection", c.selection.String()),
		zap.String("file", input.FileName),
		zap.String("media_type", input.MediaType),
		zap.Int("bytes", len(input.Data)))

	return c.statusLocked()
}

// SetIdentifier replaces the barcode text directly, bypassing recognition.
// This is the retry path after a failed scan or lookup.
func (c *IngestionController) SetIdentifier(text string) (ScanStatus, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.busy {
		return c.statusLocked(), domain.ErrOperationInFlight
	}

	c.identifier = text
	c.product = nil
	c.setLocked(StateTextAvailable, "", "", "")
	return c.statusLocked(), nil
}

// Scan runs recognition on the selected input and stores the normalized text
func (c *IngestionController) Scan(ctx context.Context) (ScanStatus, error) {
	c.mu.Lock()
	if c.busy {
		defer c.mu.Unlock()
		return c.statusLocked(), fmt.Errorf("%w: %s", domain.ErrOperationInFlight, c.state)
	}
	if c.input == nil {
		defer c.mu.Unlock()
		c.failLocked(domain.KindNoInputSelected, msgNoFile)
		return c.statusLocked(), domain.ErrNoInputSelected
	}

	input := *c.input
	ctx, selection := c.beginLocked(ctx, StateRecognizing, msgProcessing)
	c.mu.Unlock()

	text, err := c.recognizer.Recognize(ctx, input)

	c.mu.Lock()
	defer c.mu.Unlock()

	if stale := c.endLocked(selection); stale != nil {
		return c.statusLocked(), stale
	}

	if err != nil {
		if !errors.Is(err, domain.ErrRecognition) {
			err = fmt.Errorf("%w: %v", domain.ErrRecognition, err)
		}
		c.logger.Warn("recognition failed", zap.String("file", input.FileName), zap.Error(err))
		c.failLocked(domain.KindRecognitionError, msgScanFailed)
		return c.statusLocked(), err
	}

	c.identifier = Normalize(text)
	c.setLocked(StateTextAvailable, msgExtracted, SeveritySuccess, "")
	c.logger.Info("barcode extracted", zap.String("barcode", c.identifier))
	return c.statusLocked(), nil
}

// Save resolves the current barcode and hands the record to the host
func (c *IngestionController) Save(ctx context.Context) (ScanStatus, error) {
	c.mu.Lock()
	if c.busy {
		defer c.mu.Unlock()
		return c.statusLocked(), fmt.Errorf("%w: %s", domain.ErrOperationInFlight, c.state)
	}

	identifier := Normalize(c.identifier)
	if identifier == "" {
		defer c.mu.Unlock()
		c.failLocked(domain.KindEmptyIdentifier, msgNoBarcode)
		return c.statusLocked(), domain.ErrEmptyIdentifier
	}

	c.identifier = identifier
	ctx, selection := c.beginLocked(ctx, StateResolving, msgSaving)
	c.mu.Unlock()

	product, err := c.resolver.Resolve(ctx, identifier)

	c.mu.Lock()
	defer c.mu.Unlock()

	if stale := c.endLocked(selection); stale != nil {
		return c.statusLocked(), stale
	}

	if err != nil {
		c.failLocked(domain.KindOf(err), resolveMessage(err))
		return c.statusLocked(), err
	}

	c.product = product
	c.setLocked(StateResolved, msgSaved, SeveritySuccess, "")
	c.onResolved(*product)
	return c.statusLocked(), nil
}

// beginLocked marks the controller busy and binds ctx to the current selection
func (c *IngestionController) beginLocked(ctx context.Context, state IngestionState, message string) (context.Context, uuid.UUID) {
	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.busy = true
	c.setLocked(state, message, SeverityInfo, "")
	return ctx, c.selection
}

// endLocked releases the busy flag. It returns ErrStaleSelection, leaving
// state untouched, when the selection changed while the operation ran.
func (c *IngestionController) endLocked(selection uuid.UUID) error {
	if selection != c.selection {
		c.logger.Debug("discarding result for replaced selection", zap.String("selection", selection.String()))
		return fmt.Errorf("%w: %s", domain.ErrStaleSelection, selection)
	}
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.busy = false
	return nil
}

func (c *IngestionController) setLocked(state IngestionState, message string, severity Severity, kind string) {
	c.state = state
	c.message = message
	c.severity = severity
	c.errKind = kind
}

func (c *IngestionController) failLocked(kind, message string) {
	c.setLocked(StateFailed, message, SeverityError, kind)
}

func (c *IngestionController) statusLocked() ScanStatus {
	status := ScanStatus{
		State:     c.state,
		Barcode:   c.identifier,
		Message:   c.message,
		Severity:  c.severity,
		ErrorKind: c.errKind,
		Busy:      c.busy,
	}
	if c.input != nil {
		status.SelectionID = c.selection.String()
		status.FileName = c.input.FileName
	}
	if c.product != nil {
		product := *c.product
		status.Product = &product
	}
	return status
}

// resolveMessage picks the user-facing text for a failed lookup
func resolveMessage(err error) string {
	if errors.Is(err, domain.ErrTransientFailure) {
		return msgNoResponse
	}

	var remoteErr *domain.RemoteError
	if errors.As(err, &remoteErr) {
		if remoteErr.Message != "" {
			return "Error: " + remoteErr.Message
		}
		return "Error: " + msgGenericRemote
	}
	return "Error: " + err.Error()
}
