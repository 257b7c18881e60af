package errors

import "errors"

// ErrPermissionDenied 操作者不具备执行该操作所需的角色能力
var ErrPermissionDenied = errors.New("无权限执行该操作")
