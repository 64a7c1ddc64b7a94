package gpu

import "errors"

var (
	ErrShaderCompile         = errors.New("shader compilation failed")
	ErrShaderLink            = errors.New("shader program link failed")
	ErrIncompleteFramebuffer = errors.New("framebuffer incomplete")
	ErrAttachmentSize        = errors.New("attachment size mismatch")
)
