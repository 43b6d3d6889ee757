package core

import (
	"errors"
)

var (
	ErrSwapchainBooting    = errors.New("swapchain resized or recreated, booting")
	ErrNotInitialized      = errors.New("renderer not initialized")
	ErrAlreadyInitialized  = errors.New("renderer already initialized")
	ErrBackendNotAvailable = errors.New("renderer backend not available")
	ErrBackendInitialize   = errors.New("renderer backend failed to initialize")
	ErrShaderCreate        = errors.New("built-in shader creation failed")
	ErrRenderpassBegin     = errors.New("begin renderpass failed")
	ErrRenderpassEnd       = errors.New("end renderpass failed")
	ErrShuttingDown        = errors.New("end frame failed, shutting down")
	ErrNoMaterial          = errors.New("no material available for geometry")
	ErrUnknown             = errors.New("unknown")
)
