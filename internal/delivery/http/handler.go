package http

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stockboard/backend/internal/domain"
	"github.com/stockboard/backend/internal/usecase"
	"go.uber.org/zap"
)

// maxUploadBytes bounds a single scanned image
const maxUploadBytes = 10 << 20

// Handler holds dependencies for HTTP handlers
type Handler struct {
	ingestion *usecase.IngestionController
	board     *usecase.BoardController
	reporting domain.ReportingStore
	logger    *zap.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(
	ingestion *usecase.IngestionController,
	board *usecase.BoardController,
	reporting domain.ReportingStore,
	logger *zap.Logger,
) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Handler{
		ingestion: ingestion,
		board:     board,
		reporting: reporting,
		logger:    logger.Named("http"),
	}
}

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error string              `json:"error"`
	Kind  string              `json:"kind"`
	Scan  *usecase.ScanStatus `json:"scan,omitempty"`
	Board *BoardResponse      `json:"board,omitempty"`
}

// BoardResponse is the board as served to clients
type BoardResponse struct {
	Generation uint64           `json:"generation"`
	Board      domain.Partition `json:"board"`
}

// MoveRequest is the body of a drag-and-drop move
type MoveRequest struct {
	ItemID      string            `json:"itemId" binding:"required"`
	Destination domain.BucketName `json:"destination" binding:"required"`
}

// MoveResponse reports the outcome of a move and the resulting board
type MoveResponse struct {
	Outcome usecase.MoveOutcome `json:"outcome"`
	BoardResponse
}

// BarcodeRequest replaces the scanner's barcode text
type BarcodeRequest struct {
	Barcode string `json:"barcode"`
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "stockboard-backend",
		"version": "1.0.0",
	})
}

// GetScanStatus returns the ingestion state
func (h *Handler) GetScanStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.ingestion.Status())
}

// SelectFile accepts the image to scan as multipart field "file"
func (h *Handler) SelectFile(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		status := h.ingestion.Status()
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Please upload a file first.",
			Kind:  domain.KindNoInputSelected,
			Scan:  &status,
		})
		return
	}

	file, err := header.Open()
	if err != nil {
		h.fail(c, err, nil)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes+1))
	if err != nil {
		h.fail(c, err, nil)
		return
	}
	if len(data) > maxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{Error: "file too large", Kind: domain.KindRecognitionError})
		return
	}

	input := domain.NewScannedInput(header.Filename, header.Header.Get("Content-Type"), data)
	c.JSON(http.StatusOK, h.ingestion.Select(input))
}

// Scan runs recognition on the selected file
func (h *Handler) Scan(c *gin.Context) {
	status, err := h.ingestion.Scan(c.Request.Context())
	if err != nil {
		h.fail(c, err, &status)
		return
	}
	c.JSON(http.StatusOK, status)
}

// SetBarcode replaces the barcode text by hand
func (h *Handler) SetBarcode(c *gin.Context) {
	var req BarcodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Kind: domain.KindEmptyIdentifier})
		return
	}

	status, err := h.ingestion.SetIdentifier(req.Barcode)
	if err != nil {
		h.fail(c, err, &status)
		return
	}
	c.JSON(http.StatusOK, status)
}

// Save resolves the barcode and adds the product to the board
func (h *Handler) Save(c *gin.Context) {
	status, err := h.ingestion.Save(c.Request.Context())
	if err != nil {
		h.fail(c, err, &status)
		return
	}
	c.JSON(http.StatusOK, status)
}

// GetBoard returns the current partition
func (h *Handler) GetBoard(c *gin.Context) {
	c.JSON(http.StatusOK, h.boardResponse(h.board.Partition()))
}

// RefreshBoard rebuilds the partition from the remote store
func (h *Handler) RefreshBoard(c *gin.Context) {
	partition, err := h.board.Refresh(c.Request.Context())
	if err != nil {
		h.fail(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, h.boardResponse(partition))
}

// MoveItem drops an item onto a bucket
func (h *Handler) MoveItem(c *gin.Context) {
	var req MoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Kind: domain.KindRejected})
		return
	}

	partition, outcome, err := h.board.Drop(c.Request.Context(), req.ItemID, req.Destination)
	if err != nil {
		h.logger.Info("move not applied",
			zap.String("item", req.ItemID),
			zap.String("destination", string(req.Destination)),
			zap.String("outcome", string(outcome)),
			zap.Error(err))
		board := h.boardResponse(partition)
		code, body := h.errorResponse(c, err, nil)
		body.Board = &board
		c.JSON(code, body)
		return
	}

	c.JSON(http.StatusOK, MoveResponse{Outcome: outcome, BoardResponse: h.boardResponse(partition)})
}

// Analytics proxies the remote category summary
func (h *Handler) Analytics(c *gin.Context) {
	analytics, err := h.reporting.Analytics(c.Request.Context())
	if err != nil {
		h.fail(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, analytics)
}

// SearchProducts proxies the remote product search
func (h *Handler) SearchProducts(c *gin.Context) {
	query := usecase.NormalizeSearch(domain.SearchQuery{
		Name:     c.Query("name"),
		Category: c.Query("category"),
	})

	products, err := h.reporting.Search(c.Request.Context(), query)
	if err != nil {
		h.fail(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

func (h *Handler) boardResponse(partition domain.Partition) BoardResponse {
	return BoardResponse{Generation: h.board.Generation(), Board: partition}
}

// fail writes err with the status code of its kind
func (h *Handler) fail(c *gin.Context, err error, scan *usecase.ScanStatus) {
	code, body := h.errorResponse(c, err, scan)
	c.JSON(code, body)
}

// errorResponse picks the status and body for err, logging server-side failures
func (h *Handler) errorResponse(c *gin.Context, err error, scan *usecase.ScanStatus) (int, ErrorResponse) {
	kind := domain.KindOf(err)
	code := statusCode(kind)

	message := err.Error()
	if scan != nil && scan.Message != "" && scan.Severity == usecase.SeverityError {
		message = scan.Message
	}

	if code >= http.StatusInternalServerError {
		h.logger.Warn("request failed",
			zap.String("path", c.FullPath()),
			zap.String("kind", kind),
			zap.Error(err))
	}

	return code, ErrorResponse{Error: message, Kind: kind, Scan: scan}
}

// statusCode maps an error kind to an HTTP status
func statusCode(kind string) int {
	switch kind {
	case domain.KindNoInputSelected, domain.KindEmptyIdentifier:
		return http.StatusBadRequest
	case domain.KindRecognitionError:
		return http.StatusUnprocessableEntity
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindTransientFailure, domain.KindSyncFailed, domain.KindMalformedResponse, domain.KindRejected:
		return http.StatusBadGateway
	case domain.KindOperationInFlight, domain.KindStaleSelection:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// NotFound answers unknown routes in the API's error shape
func (h *Handler) NotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, ErrorResponse{Error: "route not found", Kind: domain.KindNotFound})
}
