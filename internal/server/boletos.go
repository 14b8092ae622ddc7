package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/joseph-ayodele/boletos-tracker/internal/boletos"
	"github.com/joseph-ayodele/boletos-tracker/internal/common"
	"github.com/joseph-ayodele/boletos-tracker/internal/entity"
	"github.com/joseph-ayodele/boletos-tracker/internal/export"
	"github.com/joseph-ayodele/boletos-tracker/internal/utils"
)

const (
	msgBillCreated = "Boleto adicionado com sucesso."
	msgBillUpdated = "Boleto atualizado com sucesso."
	msgBillRemoved = "Boleto removido com sucesso."
)

// BillResponse is the wire form of a bill. Valor is an exact two-decimal JSON number.
type BillResponse struct {
	ID            int64       `json:"id"`
	Fornecedor    string      `json:"fornecedor"`
	Valor         json.Number `json:"valor"`
	Vencimento    string      `json:"vencimento"`
	Status        string      `json:"status"`
	Anexo         *string     `json:"anexo"`
	DataPagamento *string     `json:"dataPagamento"`
}

// ListBillsResponse is the body of GET /api/boletos.
type ListBillsResponse struct {
	Boletos   []BillResponse `json:"boletos"`
	Pendentes []BillResponse `json:"pendentes"`
	Pagos     []BillResponse `json:"pagos"`
}

type createBillRequest struct {
	Fornecedor string          `json:"fornecedor"`
	Valor      json.RawMessage `json:"valor"`
	Vencimento string          `json:"vencimento"`
	Anexo      *string         `json:"anexo"`
	Status     *string         `json:"status"`
}

type updateStatusRequest struct {
	Status        string  `json:"status"`
	DataPagamento *string `json:"dataPagamento"`
}

// BillsHandler serves the /api/boletos resource.
type BillsHandler struct {
	svc      boletos.Service
	exporter *export.Service
	logger   *slog.Logger
}

func NewBillsHandler(svc boletos.Service, exporter *export.Service, logger *slog.Logger) *BillsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &BillsHandler{svc: svc, exporter: exporter, logger: logger}
}

func (h *BillsHandler) List(c *gin.Context) {
	list, err := h.svc.ListBills(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, ListBillsResponse{
		Boletos:   toBillResponses(list.All),
		Pendentes: toBillResponses(list.Pending),
		Pagos:     toBillResponses(list.Paid),
	})
}

func (h *BillsHandler) Get(c *gin.Context) {
	id, ok := billID(c)
	if !ok {
		return
	}
	bill, err := h.svc.GetBill(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"boleto": toBillResponse(bill)})
}

func (h *BillsHandler) Create(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read request body"})
		return
	}
	if err := validateBody(createBillValidator, body); err != nil {
		writeError(c, h.logger, err)
		return
	}

	var req createBillRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(c, h.logger, common.NewValidationError("", nil, "request body must be valid JSON"))
		return
	}
	amount, err := rawAmount(req.Valor)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	in := boletos.CreateBillInput{
		Supplier:   req.Fornecedor,
		Amount:     amount,
		DueDate:    req.Vencimento,
		Attachment: req.Anexo,
	}
	if req.Status != nil {
		in.Status = *req.Status
	}

	id, err := h.svc.CreateBill(c.Request.Context(), in)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.Header("Location", fmt.Sprintf("/api/boletos/%d", id))
	c.JSON(http.StatusCreated, gin.H{"id": id, "message": msgBillCreated})
}

func (h *BillsHandler) UpdateStatus(c *gin.Context) {
	id, ok := billID(c)
	if !ok {
		return
	}
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read request body"})
		return
	}
	if err := validateBody(updateStatusValidator, body); err != nil {
		writeError(c, h.logger, err)
		return
	}

	var req updateStatusRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(c, h.logger, common.NewValidationError("", nil, "request body must be valid JSON"))
		return
	}

	err = h.svc.UpdateStatus(c.Request.Context(), id, boletos.UpdateStatusInput{
		Status:      strings.TrimSpace(req.Status),
		PaymentDate: req.DataPagamento,
	})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": msgBillUpdated})
}

func (h *BillsHandler) Delete(c *gin.Context) {
	id, ok := billID(c)
	if !ok {
		return
	}
	if err := h.svc.RemoveBill(c.Request.Context(), id); err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": msgBillRemoved})
}

func (h *BillsHandler) ExportXLSX(c *gin.Context) {
	xlsx, err := h.exporter.ExportBillsXLSX(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	filename := fmt.Sprintf("boletos-%s.xlsx", time.Now().UTC().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, export.ContentTypeXLSX, xlsx)
}

// billID parses the :id path parameter, writing a 400 when it is not a positive integer.
func billID(c *gin.Context) (int64, bool) {
	raw := c.Param("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid bill id %q", raw)})
		return 0, false
	}
	return id, true
}

// rawAmount keeps the literal text of valor, whether it was sent as a JSON
// number (1234.56) or a string ("1.234,56"), so no float rounding happens.
func rawAmount(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", common.NewValidationError("valor", nil, "is required")
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", common.NewValidationError("valor", string(raw), "must be a number")
		}
		return s, nil
	}
	return string(raw), nil
}

func toBillResponse(b *entity.Bill) BillResponse {
	return BillResponse{
		ID:            b.ID,
		Fornecedor:    b.Supplier,
		Valor:         json.Number(b.Amount.StringFixed(2)),
		Vencimento:    utils.FormatYMD(b.DueDate),
		Status:        string(b.Status),
		Anexo:         b.Attachment,
		DataPagamento: utils.FormatOptionalYMD(b.PaymentDate),
	}
}

func toBillResponses(bills []*entity.Bill) []BillResponse {
	out := make([]BillResponse, 0, len(bills))
	for _, b := range bills {
		out = append(out, toBillResponse(b))
	}
	return out
}
